package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/dastin1501/PPL-Referee/brackets"
	"github.com/dastin1501/PPL-Referee/models"
	"github.com/dastin1501/PPL-Referee/repositories"
	"github.com/dastin1501/PPL-Referee/schedule"
	"github.com/dastin1501/PPL-Referee/storage"
)

type fakeTx struct{}

func (fakeTx) WithinTx(ctx context.Context, fn func(exec repositories.SQLExecutor) error) error {
	return fn(nil)
}

type fakeTournamentRepo struct {
	tournaments map[int]*models.Tournament
}

func (r *fakeTournamentRepo) GetByID(ctx context.Context, id int) (*models.Tournament, error) {
	t, ok := r.tournaments[id]
	if !ok {
		return nil, repositories.ErrTournamentNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *fakeTournamentRepo) List(ctx context.Context) ([]*models.Tournament, error) {
	var out []*models.Tournament
	for _, t := range r.tournaments {
		cp := *t
		out = append(out, &cp)
	}
	return out, nil
}

type fakeCategoryRepo struct {
	categories []*models.Category
}

func (r *fakeCategoryRepo) ListByTournament(ctx context.Context, tournamentID int) ([]*models.Category, error) {
	var out []*models.Category
	for _, c := range r.categories {
		if c.TournamentID == tournamentID {
			cp := *c
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (r *fakeCategoryRepo) GetByID(ctx context.Context, tournamentID int, categoryID string) (*models.Category, error) {
	for _, c := range r.categories {
		if c.TournamentID == tournamentID && c.ID == categoryID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrCategoryNotFound
}

func (r *fakeCategoryRepo) find(categoryID string) *models.Category {
	for _, c := range r.categories {
		if c.ID == categoryID {
			return c
		}
	}
	return nil
}

func (r *fakeCategoryRepo) LockEliminationOverlay(ctx context.Context, exec repositories.SQLExecutor, categoryID string) (map[string]models.MatchRecord, error) {
	c := r.find(categoryID)
	if c == nil {
		return nil, repositories.ErrCategoryNotFound
	}
	return brackets.MergeOverlays(nil, c.EliminationOverlay), nil
}

func (r *fakeCategoryRepo) UpdateEliminationOverlay(ctx context.Context, exec repositories.SQLExecutor, categoryID string, overlay map[string]models.MatchRecord) error {
	c := r.find(categoryID)
	if c == nil {
		return repositories.ErrCategoryNotFound
	}
	c.EliminationOverlay = overlay
	return nil
}

type fakeRegistrationRepo struct {
	regs []models.Registration
}

func (r *fakeRegistrationRepo) ListByTournament(ctx context.Context, tournamentID int) ([]models.Registration, error) {
	var out []models.Registration
	for _, reg := range r.regs {
		if reg.TournamentID == tournamentID {
			out = append(out, reg)
		}
	}
	return out, nil
}

type fakeGroupRepo struct {
	mu        sync.Mutex
	groups    map[string]map[string]*models.Group
	upsertErr error
}

func (r *fakeGroupRepo) list(categoryID string) []*models.Group {
	var out []*models.Group
	for _, g := range r.groups[categoryID] {
		cp := *g
		out = append(out, &cp)
	}
	return out
}

func (r *fakeGroupRepo) ListByCategory(ctx context.Context, exec repositories.SQLExecutor, categoryID string) ([]*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(categoryID), nil
}

func (r *fakeGroupRepo) ListByTournament(ctx context.Context, tournamentID int) (map[string][]*models.Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make(map[string][]*models.Group)
	for categoryID := range r.groups {
		out[categoryID] = r.list(categoryID)
	}
	return out, nil
}

func (r *fakeGroupRepo) LockByCategory(ctx context.Context, exec repositories.SQLExecutor, categoryID string) ([]*models.Group, error) {
	return r.ListByCategory(ctx, exec, categoryID)
}

func (r *fakeGroupRepo) Upsert(ctx context.Context, exec repositories.SQLExecutor, categoryID string, g *models.Group) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.upsertErr != nil {
		return r.upsertErr
	}
	if r.groups[categoryID] == nil {
		r.groups[categoryID] = make(map[string]*models.Group)
	}
	cp := *g
	r.groups[categoryID][g.ID] = &cp
	return nil
}

func (r *fakeGroupRepo) record(categoryID, groupID, key string) models.MatchRecord {
	r.mu.Lock()
	defer r.mu.Unlock()
	g := r.groups[categoryID][groupID]
	if g == nil {
		return nil
	}
	return g.Matches[key]
}

type fakeScheduleRepo struct {
	docs    map[string]*repositories.StoredSchedule
	saveErr error
}

func scheduleKey(tournamentID int, date string) string {
	return fmt.Sprintf("%d/%s", tournamentID, date)
}

func (r *fakeScheduleRepo) Get(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, date string) (*repositories.StoredSchedule, error) {
	s, ok := r.docs[scheduleKey(tournamentID, date)]
	if !ok {
		return nil, repositories.ErrScheduleNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *fakeScheduleRepo) ListDates(ctx context.Context, tournamentID int) ([]string, error) {
	return nil, nil
}

func (r *fakeScheduleRepo) Save(ctx context.Context, exec repositories.SQLExecutor, tournamentID int, date string, document []byte, expectedVersion int) (int, error) {
	if r.saveErr != nil {
		return 0, r.saveErr
	}
	key := scheduleKey(tournamentID, date)
	current := 0
	if s, ok := r.docs[key]; ok {
		current = s.Version
	}
	if current != expectedVersion {
		return 0, repositories.ErrScheduleVersionConflict
	}
	r.docs[key] = &repositories.StoredSchedule{
		TournamentID: tournamentID,
		ScheduleDate: date,
		Document:     document,
		Version:      expectedVersion + 1,
	}
	return expectedVersion + 1, nil
}

type fakeHub struct {
	mu       sync.Mutex
	messages []interface{}
	rooms    []string
}

func (h *fakeHub) BroadcastToRoom(roomID string, message interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.rooms = append(h.rooms, roomID)
	h.messages = append(h.messages, message)
}

func (h *fakeHub) last() brackets.WebSocketMessage {
	h.mu.Lock()
	defer h.mu.Unlock()
	if len(h.messages) == 0 {
		return brackets.WebSocketMessage{}
	}
	msg, _ := h.messages[len(h.messages)-1].(brackets.WebSocketMessage)
	return msg
}

type fakeArchiver struct {
	docs []*models.ScheduleDocument
	err  error
}

func (a *fakeArchiver) Archive(ctx context.Context, t *models.Tournament, doc *models.ScheduleDocument) (*storage.UploadResult, error) {
	if a.err != nil {
		return nil, a.err
	}
	a.docs = append(a.docs, doc)
	return &storage.UploadResult{Key: storage.ArchiveKey(t, doc.ScheduleDate)}, nil
}

type fixture struct {
	categories  *fakeCategoryRepo
	groups      *fakeGroupRepo
	schedules   *fakeScheduleRepo
	hub         *fakeHub
	archiver    *fakeArchiver
	bracketSvc  BracketService
	scheduleSvc ScheduleService
}

// newFixture seeds tournament 1 with one single-group category "c1" holding
// Ann, Ben and Cat.
func newFixture() *fixture {
	f := &fixture{
		groups:    &fakeGroupRepo{groups: map[string]map[string]*models.Group{}},
		schedules: &fakeScheduleRepo{docs: map[string]*repositories.StoredSchedule{}},
		hub:       &fakeHub{},
		archiver:  &fakeArchiver{},
	}
	tournaments := &fakeTournamentRepo{tournaments: map[int]*models.Tournament{
		1: {ID: 1, Name: "City Cup", VenueName: "Sports Hall", Dates: []string{"2024-06-01", "2024-06-02"}},
	}}
	categories := &fakeCategoryRepo{categories: []*models.Category{
		{ID: "c1", TournamentID: 1, Division: "Men's Singles", SkillLevel: "Open", Tier: 1, BracketSize: 1},
	}}
	var regs []models.Registration
	for i, name := range []string{"Ann", "Ben", "Cat"} {
		regs = append(regs, models.Registration{
			ID: i + 1, TournamentID: 1, CategoryID: "c1", Status: models.RegistrationApproved, PlayerName: name,
		})
	}
	regs = append(regs, models.Registration{ID: 9, TournamentID: 1, CategoryID: "c1", Status: models.RegistrationPending, PlayerName: "Zed"})

	f.categories = categories
	f.bracketSvc = NewBracketService(fakeTx{}, tournaments, categories, &fakeRegistrationRepo{regs: regs}, f.groups, f.hub, nil, brackets.DefaultBracketSize)
	f.scheduleSvc = NewScheduleService(fakeTx{}, f.bracketSvc, f.schedules, f.archiver, f.hub, nil, ScheduleOptions{
		Defaults:    schedule.Defaults{CourtCount: 2},
		SlotMinutes: 30,
	})
	return f
}
