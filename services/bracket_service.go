package services

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/dastin1501/PPL-Referee/brackets"
	"github.com/dastin1501/PPL-Referee/models"
	"github.com/dastin1501/PPL-Referee/repositories"
	"golang.org/x/sync/errgroup"
)

// TournamentBrackets is a tournament with every category rebuilt from its
// registrations and persisted overlays, plus the unified match list of all
// categories in category order.
type TournamentBrackets struct {
	Tournament *models.Tournament
	Categories []*models.Category
	Matches    []*models.ScheduledMatch
}

// CategoryBracket is the bracket view of one category.
type CategoryBracket struct {
	Category *models.Category         `json:"category"`
	Label    string                   `json:"label"`
	Matches  []*models.ScheduledMatch `json:"matches"`
}

// GroupMatchesInput is a partial group overlay. Match records are merged
// field by field onto the stored ones; standings replace the stored list
// when present.
type GroupMatchesInput struct {
	Matches   map[string]models.MatchRecord `json:"matches"`
	Standings []models.Standing             `json:"standings,omitempty"`
}

type BracketService interface {
	LoadTournament(ctx context.Context, tournamentID int) (*TournamentBrackets, error)
	GetCategoryBracket(ctx context.Context, tournamentID int, categoryID string) (*CategoryBracket, error)
	SaveGroupMatches(ctx context.Context, tournamentID int, categoryID, groupID string, in GroupMatchesInput) (*models.Group, error)
	SaveEliminationMatch(ctx context.Context, tournamentID int, categoryID, matchKey string, rec models.MatchRecord) (*models.EliminationMatch, error)
	SubmissionState(ctx context.Context, tournamentID int, categoryID string, role models.UserRole) (*brackets.SubmissionState, error)
	ApplyScheduleUpdates(ctx context.Context, exec repositories.SQLExecutor, categories []*models.Category, updates models.BracketUpdates) error
}

type bracketService struct {
	tx               Transactor
	tournamentRepo   repositories.TournamentRepository
	categoryRepo     repositories.CategoryRepository
	registrationRepo repositories.RegistrationRepository
	groupRepo        repositories.GroupRepository
	hub              brackets.Broadcaster
	logger           *slog.Logger

	defaultBracketSize int
}

func NewBracketService(
	tx Transactor,
	tournamentRepo repositories.TournamentRepository,
	categoryRepo repositories.CategoryRepository,
	registrationRepo repositories.RegistrationRepository,
	groupRepo repositories.GroupRepository,
	hub brackets.Broadcaster,
	logger *slog.Logger,
	defaultBracketSize int,
) BracketService {
	if logger == nil {
		logger = slog.Default()
	}
	return &bracketService{
		tx:                 tx,
		tournamentRepo:     tournamentRepo,
		categoryRepo:       categoryRepo,
		registrationRepo:   registrationRepo,
		groupRepo:          groupRepo,
		hub:                hub,
		logger:             logger,
		defaultBracketSize: brackets.NormalizeBracketSize(defaultBracketSize),
	}
}

func (s *bracketService) LoadTournament(ctx context.Context, tournamentID int) (*TournamentBrackets, error) {
	var (
		tournament *models.Tournament
		categories []*models.Category
		regs       []models.Registration
		groups     map[string][]*models.Group
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		categories, err = s.categoryRepo.ListByTournament(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		regs, err = s.registrationRepo.ListByTournament(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		groups, err = s.groupRepo.ListByTournament(gCtx, tournamentID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load tournament %d: %w", tournamentID, handleRepositoryError(err))
	}

	out := &TournamentBrackets{Tournament: tournament, Matches: make([]*models.ScheduledMatch, 0)}
	for _, cat := range categories {
		cat.TournamentDates = tournament.Dates
		s.applyDefaults(cat)
		built := brackets.BuildCategory(cat, regs, groups[cat.ID])
		matches, err := brackets.UnifiedMatches(ctx, built)
		if err != nil {
			return nil, err
		}
		out.Categories = append(out.Categories, built)
		out.Matches = append(out.Matches, matches...)
	}
	tournament.Categories = out.Categories
	return out, nil
}

func (s *bracketService) loadCategory(ctx context.Context, tournamentID int, categoryID string) (*models.Category, error) {
	var (
		tournament *models.Tournament
		category   *models.Category
		regs       []models.Registration
		persisted  []*models.Group
	)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tournament, err = s.tournamentRepo.GetByID(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		category, err = s.categoryRepo.GetByID(gCtx, tournamentID, categoryID)
		return err
	})
	g.Go(func() error {
		var err error
		regs, err = s.registrationRepo.ListByTournament(gCtx, tournamentID)
		return err
	})
	g.Go(func() error {
		var err error
		persisted, err = s.groupRepo.ListByCategory(gCtx, nil, categoryID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load category %s: %w", categoryID, handleRepositoryError(err))
	}

	category.TournamentDates = tournament.Dates
	s.applyDefaults(category)
	return brackets.BuildCategory(category, regs, persisted), nil
}

// applyDefaults gives categories without a configured size the engine default.
func (s *bracketService) applyDefaults(cat *models.Category) {
	if cat.BracketSize == 0 {
		cat.BracketSize = s.defaultBracketSize
	}
}

func (s *bracketService) GetCategoryBracket(ctx context.Context, tournamentID int, categoryID string) (*CategoryBracket, error) {
	cat, err := s.loadCategory(ctx, tournamentID, categoryID)
	if err != nil {
		return nil, err
	}
	matches, err := brackets.UnifiedMatches(ctx, cat)
	if err != nil {
		return nil, err
	}
	return &CategoryBracket{Category: cat, Label: cat.Label(), Matches: matches}, nil
}

func (s *bracketService) SubmissionState(ctx context.Context, tournamentID int, categoryID string, role models.UserRole) (*brackets.SubmissionState, error) {
	cat, err := s.loadCategory(ctx, tournamentID, categoryID)
	if err != nil {
		return nil, err
	}
	st := brackets.CheckSubmission(cat, role)
	return &st, nil
}

func validateGroupInput(g *models.Group, in GroupMatchesInput) error {
	if len(in.Matches) == 0 && in.Standings == nil {
		return fmt.Errorf("%w: nothing to save", ErrValidationFailed)
	}
	n := len(brackets.GroupPlayers(g))
	for key := range in.Matches {
		i, j, ok := brackets.ParsePairKey(key)
		if !ok {
			return fmt.Errorf("%w: invalid match key %q", ErrValidationFailed, key)
		}
		if n > 0 && (i >= n || j >= n) {
			return fmt.Errorf("%w: match key %q is outside a group of %d", ErrValidationFailed, key, n)
		}
	}
	return nil
}

func (s *bracketService) SaveGroupMatches(ctx context.Context, tournamentID int, categoryID, groupID string, in GroupMatchesInput) (*models.Group, error) {
	cat, err := s.loadCategory(ctx, tournamentID, categoryID)
	if err != nil {
		return nil, err
	}
	if cat.PointsSubmitted {
		return nil, fmt.Errorf("%w: points of category %s are already submitted", ErrForbiddenOperation, categoryID)
	}
	group := cat.GroupByID(groupID)
	if group == nil {
		return nil, ErrGroupNotFound
	}
	if err := validateGroupInput(group, in); err != nil {
		return nil, err
	}

	var saved *models.Group
	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		persisted, err := s.groupRepo.LockByCategory(ctx, exec, categoryID)
		if err != nil {
			return err
		}
		stored := findGroup(persisted, groupID)
		next := &models.Group{
			ID:        group.ID,
			Letter:    group.Letter,
			Name:      group.Name,
			Standings: stored.Standings,
			Matches:   brackets.MergeOverlays(stored.Matches, in.Matches),
		}
		if in.Standings != nil {
			next.Standings = in.Standings
		}
		if err := s.groupRepo.Upsert(ctx, exec, categoryID, next); err != nil {
			return err
		}
		saved = next
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, handleRepositoryError(err))
	}

	out := *group
	out.Standings = append([]models.Standing(nil), group.Standings...)
	brackets.ApplyPersistedGroups([]*models.Group{&out}, []*models.Group{saved})

	s.logger.InfoContext(ctx, "group matches saved",
		slog.Int("tournament_id", tournamentID),
		slog.String("category_id", categoryID),
		slog.String("group_id", groupID),
		slog.Int("records", len(in.Matches)))
	s.broadcast(tournamentID, brackets.MessageGroupMatchesUpdated, map[string]interface{}{
		"tournament_id": tournamentID,
		"category_id":   categoryID,
		"group_id":      groupID,
	})
	return &out, nil
}

// SaveEliminationMatch merges rec onto the stored elimination record of
// matchKey and returns the match resolved against the updated overlay, so a
// recorded winner immediately feeds later rounds.
func (s *bracketService) SaveEliminationMatch(ctx context.Context, tournamentID int, categoryID, matchKey string, rec models.MatchRecord) (*models.EliminationMatch, error) {
	cat, err := s.loadCategory(ctx, tournamentID, categoryID)
	if err != nil {
		return nil, err
	}
	if cat.PointsSubmitted {
		return nil, fmt.Errorf("%w: points of category %s are already submitted", ErrForbiddenOperation, categoryID)
	}
	if findElimination(cat, matchKey) == nil {
		return nil, fmt.Errorf("%w: no elimination match %q in category %s", ErrMatchNotFound, matchKey, categoryID)
	}
	if len(rec) == 0 {
		return nil, fmt.Errorf("%w: nothing to save", ErrValidationFailed)
	}

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		stored, err := s.categoryRepo.LockEliminationOverlay(ctx, exec, categoryID)
		if err != nil {
			return err
		}
		merged := brackets.MergeOverlays(stored, map[string]models.MatchRecord{matchKey: rec})
		return s.categoryRepo.UpdateEliminationOverlay(ctx, exec, categoryID, merged)
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, handleRepositoryError(err))
	}

	cat, err = s.loadCategory(ctx, tournamentID, categoryID)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "elimination match saved",
		slog.Int("tournament_id", tournamentID),
		slog.String("category_id", categoryID),
		slog.String("match_key", matchKey))
	s.broadcast(tournamentID, brackets.MessageEliminationUpdated, map[string]interface{}{
		"tournament_id": tournamentID,
		"category_id":   categoryID,
		"match_key":     matchKey,
	})
	return findElimination(cat, matchKey), nil
}

func findElimination(cat *models.Category, key string) *models.EliminationMatch {
	for _, m := range cat.EliminationMatches {
		if m.Key == key {
			return m
		}
	}
	return nil
}

// ApplyScheduleUpdates writes schedule-derived overlay changes through exec.
// Categories and groups are locked in sorted order.
func (s *bracketService) ApplyScheduleUpdates(ctx context.Context, exec repositories.SQLExecutor, categories []*models.Category, updates models.BracketUpdates) error {
	byID := make(map[string]*models.Category, len(categories))
	for _, c := range categories {
		byID[c.ID] = c
	}

	for _, categoryID := range sortedKeys(updates) {
		cat, ok := byID[categoryID]
		if !ok {
			return fmt.Errorf("category %s: %w", categoryID, ErrCategoryNotFound)
		}
		persisted, err := s.groupRepo.LockByCategory(ctx, exec, categoryID)
		if err != nil {
			return err
		}
		byGroup := updates[categoryID]
		for _, groupID := range sortedKeys(byGroup) {
			group := cat.GroupByID(groupID)
			if group == nil {
				return fmt.Errorf("category %s group %s: %w", categoryID, groupID, ErrGroupNotFound)
			}
			records := make(map[string]models.MatchRecord, len(byGroup[groupID]))
			for key, u := range byGroup[groupID] {
				records[key] = u.Record()
			}
			stored := findGroup(persisted, groupID)
			next := &models.Group{
				ID:        group.ID,
				Letter:    group.Letter,
				Name:      group.Name,
				Standings: stored.Standings,
				Matches:   brackets.MergeOverlays(stored.Matches, records),
			}
			if err := s.groupRepo.Upsert(ctx, exec, categoryID, next); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *bracketService) broadcast(tournamentID int, msgType string, payload interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastToRoom(roomFor(tournamentID), brackets.WebSocketMessage{
		Type:    msgType,
		Payload: payload,
		RoomID:  roomFor(tournamentID),
	})
}

// findGroup returns the persisted group or an empty one.
func findGroup(groups []*models.Group, id string) *models.Group {
	for _, g := range groups {
		if g != nil && g.ID == id {
			return g
		}
	}
	return &models.Group{ID: id}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
