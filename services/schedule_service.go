package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/dastin1501/PPL-Referee/brackets"
	"github.com/dastin1501/PPL-Referee/models"
	"github.com/dastin1501/PPL-Referee/repositories"
	"github.com/dastin1501/PPL-Referee/schedule"
	"github.com/dastin1501/PPL-Referee/storage"
)

// ScheduleView is a schedule document with its conflict matrix, one
// [slot][court] matrix per venue.
type ScheduleView struct {
	Document  *models.ScheduleDocument `json:"document"`
	Conflicts [][][]bool               `json:"conflicts"`
}

// MatchQuery selects from the unified match list. With AvailableOnly set,
// matches placed on Date's grid are left out.
type MatchQuery struct {
	Date          string
	Filter        schedule.MatchFilter
	AvailableOnly bool
}

type MatchListView struct {
	Matches         []*models.ScheduledMatch `json:"matches"`
	CategoryOptions []string                 `json:"category_options"`
	StageOptions    []string                 `json:"stage_options"`
}

// SlotSeriesInput describes a run of consecutive slots. An empty start time
// continues after the venue's last slot; a zero duration uses the default.
// ReplaceTail regenerates the previous uncommitted series instead of
// appending; Commit freezes the resulting series.
type SlotSeriesInput struct {
	StartTime       string `json:"start_time"`
	DurationMinutes int    `json:"duration_minutes"`
	Count           int    `json:"count"`
	ReplaceTail     bool   `json:"replace_tail"`
	Commit          bool   `json:"commit"`
}

// ScheduleOptions are the engine defaults used for new or legacy grids.
type ScheduleOptions struct {
	Defaults    schedule.Defaults
	SlotMinutes int
}

type ScheduleService interface {
	GetSchedule(ctx context.Context, tournamentID int, date string) (*ScheduleView, error)
	SaveSchedule(ctx context.Context, tournamentID int, date string, doc *models.ScheduleDocument) (*ScheduleView, error)
	ListMatches(ctx context.Context, tournamentID int, q MatchQuery) (*MatchListView, error)

	AddSlots(ctx context.Context, tournamentID int, date string, venue int, in SlotSeriesInput) (*ScheduleView, error)
	RemoveSlot(ctx context.Context, tournamentID int, date string, venue, row int) (*ScheduleView, error)
	SetCourtCount(ctx context.Context, tournamentID int, date string, venue, count int) (*ScheduleView, error)
	PlaceMatch(ctx context.Context, tournamentID int, date string, venue, row, col int, matchID string) (*ScheduleView, error)
	SetNote(ctx context.Context, tournamentID int, date string, venue, row, col int, text string) (*ScheduleView, error)
	ClearCell(ctx context.Context, tournamentID int, date string, venue, row, col int) (*ScheduleView, error)
	AddVenue(ctx context.Context, tournamentID int, date, name string) (*ScheduleView, error)
	RemoveVenue(ctx context.Context, tournamentID int, date string, venue int) (*ScheduleView, error)
}

type scheduleService struct {
	tx             Transactor
	bracketService BracketService
	scheduleRepo   repositories.ScheduleRepository
	archiver       storage.ScheduleArchiver
	hub            brackets.Broadcaster
	logger         *slog.Logger
	opts           ScheduleOptions
}

func NewScheduleService(
	tx Transactor,
	bracketService BracketService,
	scheduleRepo repositories.ScheduleRepository,
	archiver storage.ScheduleArchiver,
	hub brackets.Broadcaster,
	logger *slog.Logger,
	opts ScheduleOptions,
) ScheduleService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.SlotMinutes < 1 {
		opts.SlotMinutes = 30
	}
	return &scheduleService{
		tx:             tx,
		bracketService: bracketService,
		scheduleRepo:   scheduleRepo,
		archiver:       archiver,
		hub:            hub,
		logger:         logger,
		opts:           opts,
	}
}

// defaultsFor prefers the tournament's own venue name for new grids.
func (s *scheduleService) defaultsFor(t *models.Tournament) schedule.Defaults {
	d := s.opts.Defaults
	if t != nil && strings.TrimSpace(t.VenueName) != "" {
		d.VenueName = t.VenueName
	}
	return d
}

// loadedSchedule is a tournament's brackets plus one day's grid at a version.
type loadedSchedule struct {
	brackets *TournamentBrackets
	grid     *schedule.Grid
	version  int
}

func (s *scheduleService) load(ctx context.Context, tournamentID int, date string) (*loadedSchedule, error) {
	tb, err := s.bracketService.LoadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	if err := validateDate(date, tb.Tournament.Dates); err != nil {
		return nil, err
	}
	grid, version, err := s.loadGrid(ctx, tb.Tournament, date)
	if err != nil {
		return nil, err
	}
	return &loadedSchedule{brackets: tb, grid: grid, version: version}, nil
}

func (s *scheduleService) loadGrid(ctx context.Context, t *models.Tournament, date string) (*schedule.Grid, int, error) {
	d := s.defaultsFor(t)
	stored, err := s.scheduleRepo.Get(ctx, nil, t.ID, date)
	if errors.Is(err, repositories.ErrScheduleNotFound) {
		return schedule.NewGrid(date, d), 0, nil
	}
	if err != nil {
		return nil, 0, handleRepositoryError(err)
	}
	grid, _, err := schedule.ParseDocument(stored.Document, d)
	if err != nil {
		return nil, 0, fmt.Errorf("schedule %s of tournament %d is unreadable: %w", date, t.ID, err)
	}
	if grid.Date() != date {
		grid = grid.WithDate(date)
	}
	return grid, stored.Version, nil
}

func (s *scheduleService) view(ls *loadedSchedule, doc *models.ScheduleDocument) *ScheduleView {
	lookup := schedule.LookupFromMatches(ls.brackets.Matches)
	conflicts := make([][][]bool, ls.grid.VenueCount())
	for v := range conflicts {
		// venue indexes come from the grid itself
		conflicts[v], _ = ls.grid.Conflicts(v, lookup)
	}
	return &ScheduleView{Document: doc, Conflicts: conflicts}
}

func (s *scheduleService) GetSchedule(ctx context.Context, tournamentID int, date string) (*ScheduleView, error) {
	ls, err := s.load(ctx, tournamentID, date)
	if err != nil {
		return nil, err
	}
	doc := ls.grid.Document(0)
	doc.Version = ls.version
	return s.view(ls, doc), nil
}

// SaveSchedule replaces a day's document. doc.Version must equal the stored
// version.
func (s *scheduleService) SaveSchedule(ctx context.Context, tournamentID int, date string, doc *models.ScheduleDocument) (*ScheduleView, error) {
	if doc == nil {
		return nil, fmt.Errorf("%w: schedule document is required", ErrValidationFailed)
	}
	ls, err := s.load(ctx, tournamentID, date)
	if err != nil {
		return nil, err
	}
	if doc.Version != ls.version {
		return nil, ErrScheduleConflict
	}
	grid, err := schedule.FromDocument(doc, s.defaultsFor(ls.brackets.Tournament))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrValidationFailed, err)
	}
	if dups := grid.DuplicatePlacements(); len(dups) > 0 {
		return nil, fmt.Errorf("%w: matches placed more than once: %s", ErrValidationFailed, strings.Join(dups, ", "))
	}
	if grid.Date() != date {
		grid = grid.WithDate(date)
	}
	return s.persist(ctx, ls, grid)
}

// mutate applies fn to a copy of the day's grid and saves it. The stored
// document is unchanged when fn or the save fails.
func (s *scheduleService) mutate(ctx context.Context, tournamentID int, date string, fn func(g *schedule.Grid, tb *TournamentBrackets) error) (*ScheduleView, error) {
	ls, err := s.load(ctx, tournamentID, date)
	if err != nil {
		return nil, err
	}
	next := ls.grid.Clone()
	if err := fn(next, ls.brackets); err != nil {
		return nil, handleGridError(err)
	}
	return s.persist(ctx, ls, next)
}

func (s *scheduleService) persist(ctx context.Context, ls *loadedSchedule, grid *schedule.Grid) (*ScheduleView, error) {
	tournamentID := ls.brackets.Tournament.ID
	date := grid.Date()

	doc := grid.Document(0)
	doc.Version = ls.version + 1
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, err)
	}
	updates := grid.BracketUpdates(ls.brackets.Matches, ls.brackets.Categories)

	err = s.tx.WithinTx(ctx, func(exec repositories.SQLExecutor) error {
		version, err := s.scheduleRepo.Save(ctx, exec, tournamentID, date, data, ls.version)
		if err != nil {
			return err
		}
		doc.Version = version
		return s.bracketService.ApplyScheduleUpdates(ctx, exec, ls.brackets.Categories, updates)
	})
	if err != nil {
		mapped := handleRepositoryError(err)
		if errors.Is(mapped, ErrScheduleConflict) {
			return nil, ErrScheduleConflict
		}
		s.logger.ErrorContext(ctx, "schedule save failed",
			slog.Int("tournament_id", tournamentID), slog.String("date", date), slog.Any("error", err))
		return nil, fmt.Errorf("%w: %w", ErrSaveFailed, mapped)
	}

	s.logger.InfoContext(ctx, "schedule saved",
		slog.Int("tournament_id", tournamentID),
		slog.String("date", date),
		slog.Int("version", doc.Version),
		slog.Int("bracket_updates", countUpdates(updates)))

	if s.hub != nil {
		room := roomFor(tournamentID)
		s.hub.BroadcastToRoom(room, brackets.WebSocketMessage{
			Type: brackets.MessageScheduleUpdated,
			Payload: map[string]interface{}{
				"tournament_id": tournamentID,
				"date":          date,
				"version":       doc.Version,
			},
			RoomID: room,
		})
	}
	s.archive(ctx, ls.brackets.Tournament, doc)

	saved := &loadedSchedule{brackets: ls.brackets, grid: grid, version: doc.Version}
	return s.view(saved, doc), nil
}

func (s *scheduleService) archive(ctx context.Context, t *models.Tournament, doc *models.ScheduleDocument) {
	if s.archiver == nil {
		return
	}
	res, err := s.archiver.Archive(ctx, t, doc)
	if err != nil {
		s.logger.WarnContext(ctx, "schedule archive failed",
			slog.Int("tournament_id", t.ID), slog.String("date", doc.ScheduleDate), slog.Any("error", err))
		return
	}
	s.logger.DebugContext(ctx, "schedule archived", slog.String("key", res.Key))
}

func countUpdates(u models.BracketUpdates) int {
	n := 0
	for _, groups := range u {
		for _, keys := range groups {
			n += len(keys)
		}
	}
	return n
}

func (s *scheduleService) ListMatches(ctx context.Context, tournamentID int, q MatchQuery) (*MatchListView, error) {
	tb, err := s.bracketService.LoadTournament(ctx, tournamentID)
	if err != nil {
		return nil, err
	}
	out := &MatchListView{
		CategoryOptions: schedule.CategoryOptions(tb.Matches),
		StageOptions:    schedule.StageOptions(tb.Matches),
	}
	if !q.AvailableOnly {
		out.Matches = schedule.FilterMatches(tb.Matches, q.Filter)
		return out, nil
	}

	date := q.Date
	if date == "" {
		date = tb.Tournament.FirstDate()
	}
	if err := validateDate(date, tb.Tournament.Dates); err != nil {
		return nil, err
	}
	grid, _, err := s.loadGrid(ctx, tb.Tournament, date)
	if err != nil {
		return nil, err
	}
	out.Matches = schedule.AvailableMatches(tb.Matches, grid.PlacedIDs(), q.Filter)
	return out, nil
}

func (s *scheduleService) AddSlots(ctx context.Context, tournamentID int, date string, venue int, in SlotSeriesInput) (*ScheduleView, error) {
	return s.mutate(ctx, tournamentID, date, func(g *schedule.Grid, _ *TournamentBrackets) error {
		start, duration := strings.TrimSpace(in.StartTime), in.DurationMinutes
		if start == "" || duration == 0 {
			hintStart, hintDuration, err := g.NextSlotHint(venue)
			if err != nil {
				return err
			}
			if start == "" {
				start = hintStart
			}
			if duration == 0 {
				duration, _ = strconv.Atoi(hintDuration)
			}
		}
		if duration == 0 {
			duration = s.opts.SlotMinutes
		}

		var err error
		if in.ReplaceTail {
			_, err = g.ReplaceTailSeries(venue, start, duration, in.Count)
		} else {
			_, err = g.AddSlotSeries(venue, start, duration, in.Count)
		}
		if err != nil {
			return err
		}
		if in.Commit {
			return g.CommitSeries(venue)
		}
		return nil
	})
}

func (s *scheduleService) RemoveSlot(ctx context.Context, tournamentID int, date string, venue, row int) (*ScheduleView, error) {
	return s.mutate(ctx, tournamentID, date, func(g *schedule.Grid, _ *TournamentBrackets) error {
		return g.RemoveSlot(venue, row)
	})
}

func (s *scheduleService) SetCourtCount(ctx context.Context, tournamentID int, date string, venue, count int) (*ScheduleView, error) {
	return s.mutate(ctx, tournamentID, date, func(g *schedule.Grid, _ *TournamentBrackets) error {
		return g.SetCourtCount(venue, count)
	})
}

func (s *scheduleService) PlaceMatch(ctx context.Context, tournamentID int, date string, venue, row, col int, matchID string) (*ScheduleView, error) {
	return s.mutate(ctx, tournamentID, date, func(g *schedule.Grid, tb *TournamentBrackets) error {
		for _, m := range tb.Matches {
			if m.ID == matchID {
				return g.Place(venue, row, col, m)
			}
		}
		return fmt.Errorf("%s: %w", matchID, schedule.ErrMatchNotFound)
	})
}

func (s *scheduleService) SetNote(ctx context.Context, tournamentID int, date string, venue, row, col int, text string) (*ScheduleView, error) {
	return s.mutate(ctx, tournamentID, date, func(g *schedule.Grid, _ *TournamentBrackets) error {
		return g.SetNote(venue, row, col, text)
	})
}

func (s *scheduleService) ClearCell(ctx context.Context, tournamentID int, date string, venue, row, col int) (*ScheduleView, error) {
	return s.mutate(ctx, tournamentID, date, func(g *schedule.Grid, _ *TournamentBrackets) error {
		return g.Clear(venue, row, col)
	})
}

func (s *scheduleService) AddVenue(ctx context.Context, tournamentID int, date, name string) (*ScheduleView, error) {
	return s.mutate(ctx, tournamentID, date, func(g *schedule.Grid, _ *TournamentBrackets) error {
		g.AddVenue(name)
		return nil
	})
}

func (s *scheduleService) RemoveVenue(ctx context.Context, tournamentID int, date string, venue int) (*ScheduleView, error) {
	return s.mutate(ctx, tournamentID, date, func(g *schedule.Grid, _ *TournamentBrackets) error {
		return g.RemoveVenue(venue)
	})
}
