package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/dastin1501/PPL-Referee/brackets"
	"github.com/dastin1501/PPL-Referee/models"
	"github.com/dastin1501/PPL-Referee/schedule"
)

const day1 = "2024-06-01"

func TestGetScheduleNewDay(t *testing.T) {
	f := newFixture()
	view, err := f.scheduleSvc.GetSchedule(context.Background(), 1, day1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	doc := view.Document
	if doc.Version != 0 || doc.ScheduleDate != day1 || len(doc.Venues) != 1 {
		t.Fatalf("unexpected document %+v", doc)
	}
	if doc.Venues[0].Name != "Sports Hall" || doc.CourtCount != 2 {
		t.Fatalf("new grid should use tournament venue and default courts, got %s/%d", doc.Venues[0].Name, doc.CourtCount)
	}
	if len(f.schedules.docs) != 0 {
		t.Fatalf("reading must not persist")
	}

	for _, bad := range []string{"2024-07-01", "06/01/2024"} {
		if _, err := f.scheduleSvc.GetSchedule(context.Background(), 1, bad); !errors.Is(err, ErrValidationFailed) {
			t.Fatalf("date %s: expected ErrValidationFailed, got %v", bad, err)
		}
	}
}

func TestPlaceMatchWritesBracketOverlay(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	view, err := f.scheduleSvc.AddSlots(ctx, 1, day1, 0, SlotSeriesInput{StartTime: "09:00", DurationMinutes: 30, Count: 3})
	if err != nil {
		t.Fatalf("add slots: %v", err)
	}
	if view.Document.Version != 1 || len(view.Document.TimeSlots) != 3 || view.Document.TimeSlots[2].EndTime != "10:30" {
		t.Fatalf("unexpected document after slots: %+v", view.Document)
	}

	view, err = f.scheduleSvc.PlaceMatch(ctx, 1, day1, 0, 1, 1, "rr-c1-group-a-0-0")
	if err != nil {
		t.Fatalf("place: %v", err)
	}
	if view.Document.Version != 2 {
		t.Fatalf("expected version 2, got %d", view.Document.Version)
	}
	rec := f.groups.record("c1", "group-a", "0-0")
	want := map[string]string{"date": day1, "time": "09:30", "court": "2", "venue": "Sports Hall"}
	for k, v := range want {
		if rec.String(k) != v {
			t.Fatalf("overlay %s: got %q, expected %q (%v)", k, rec.String(k), v, rec)
		}
	}

	// moving keeps a single placement and rewrites the overlay
	if _, err := f.scheduleSvc.PlaceMatch(ctx, 1, day1, 0, 0, 0, "rr-c1-group-a-0-0"); err != nil {
		t.Fatal(err)
	}
	if rec := f.groups.record("c1", "group-a", "0-0"); rec.String("time") != "09:00" || rec.String("court") != "1" {
		t.Fatalf("overlay not moved: %v", rec)
	}

	if _, err := f.scheduleSvc.ClearCell(ctx, 1, day1, 0, 0, 0); err != nil {
		t.Fatal(err)
	}
	rec = f.groups.record("c1", "group-a", "0-0")
	if rec.String("date") != "" || rec.String("time") != "" || rec.String("court") != "" {
		t.Fatalf("cleared match should be unscheduled: %v", rec)
	}

	if len(f.archiver.docs) != 4 {
		t.Fatalf("expected 4 archived snapshots, got %d", len(f.archiver.docs))
	}
	last := f.hub.messages[len(f.hub.messages)-1].(brackets.WebSocketMessage)
	if last.Type != brackets.MessageScheduleUpdated || last.RoomID != "tournament_1" {
		t.Fatalf("unexpected broadcast %+v", last)
	}
}

func TestMutationErrorsLeaveScheduleUnchanged(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.scheduleSvc.AddSlots(ctx, 1, day1, 0, SlotSeriesInput{StartTime: "09:00", DurationMinutes: 30, Count: 1}); err != nil {
		t.Fatal(err)
	}
	stored := string(f.schedules.docs[scheduleKey(1, day1)].Document)

	tests := []struct {
		name    string
		run     func() error
		wantErr error
		gridErr error
	}{
		{"cell out of range", func() error {
			_, err := f.scheduleSvc.PlaceMatch(ctx, 1, day1, 0, 5, 0, "rr-c1-group-a-0-0")
			return err
		}, ErrValidationFailed, schedule.ErrCellOutOfRange},
		{"unknown match", func() error {
			_, err := f.scheduleSvc.PlaceMatch(ctx, 1, day1, 0, 0, 0, "rr-c1-group-a-9-9")
			return err
		}, ErrMatchNotFound, schedule.ErrMatchNotFound},
		{"last venue", func() error {
			_, err := f.scheduleSvc.RemoveVenue(ctx, 1, day1, 0)
			return err
		}, ErrValidationFailed, schedule.ErrLastVenue},
		{"bad series", func() error {
			_, err := f.scheduleSvc.AddSlots(ctx, 1, day1, 0, SlotSeriesInput{StartTime: "late", Count: 2})
			return err
		}, ErrValidationFailed, schedule.ErrInvalidSlotSeries},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			if !errors.Is(err, tt.wantErr) || !errors.Is(err, tt.gridErr) {
				t.Fatalf("expected %v and %v, got %v", tt.wantErr, tt.gridErr, err)
			}
			if got := string(f.schedules.docs[scheduleKey(1, day1)].Document); got != stored {
				t.Fatalf("stored document changed")
			}
		})
	}

	f.schedules.saveErr = errors.New("connection reset")
	if _, err := f.scheduleSvc.AddVenue(ctx, 1, day1, "Annex"); !errors.Is(err, ErrSaveFailed) {
		t.Fatalf("expected ErrSaveFailed, got %v", err)
	}
}

func TestAddSlotsContinuesAndReplacesTail(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	if _, err := f.scheduleSvc.AddSlots(ctx, 1, day1, 0, SlotSeriesInput{StartTime: "08:00", DurationMinutes: 45, Count: 1}); err != nil {
		t.Fatal(err)
	}
	if _, err := f.scheduleSvc.AddSlots(ctx, 1, day1, 0, SlotSeriesInput{Count: 4, ReplaceTail: true}); err != nil {
		t.Fatal(err)
	}
	view, err := f.scheduleSvc.AddSlots(ctx, 1, day1, 0, SlotSeriesInput{StartTime: "08:45", DurationMinutes: 45, Count: 2, ReplaceTail: true})
	if err != nil {
		t.Fatal(err)
	}
	slots := view.Document.TimeSlots
	if len(slots) != 3 || slots[0].StartTime != "08:00" || slots[2].StartTime != "09:30" {
		t.Fatalf("unexpected slots %+v", slots)
	}
	if view.Document.Venues[0].SlotSeriesLen != 2 {
		t.Fatalf("tail length should persist, got %d", view.Document.Venues[0].SlotSeriesLen)
	}
}

func TestSaveScheduleVersionCheck(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	view, err := f.scheduleSvc.SetCourtCount(ctx, 1, day1, 0, 3)
	if err != nil {
		t.Fatal(err)
	}

	doc := view.Document
	doc.Version = 0
	if _, err := f.scheduleSvc.SaveSchedule(ctx, 1, day1, doc); !errors.Is(err, ErrScheduleConflict) {
		t.Fatalf("stale version: expected ErrScheduleConflict, got %v", err)
	}

	data := []byte(`{"scheduleDate": "", "courtCount": 2, "version": 1,
		"timeSlots": [{"id": "s1", "startTime": "13:00", "duration": "60", "endTime": "14:00"}],
		"assignments": [[{"id": "rr-c1-group-a-0-1", "label": "Ann vs Cat"}, {"id": "rr-c1-group-a-1-0", "label": "Ben vs Cat"}]]}`)
	var legacy models.ScheduleDocument
	if err := json.Unmarshal(data, &legacy); err != nil {
		t.Fatal(err)
	}
	saved, err := f.scheduleSvc.SaveSchedule(ctx, 1, day1, &legacy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if saved.Document.Version != 2 || saved.Document.ScheduleDate != day1 {
		t.Fatalf("unexpected saved document %+v", saved.Document)
	}
	if !saved.Conflicts[0][0][0] || !saved.Conflicts[0][0][1] {
		t.Fatalf("Cat is double-booked in slot 0: %v", saved.Conflicts)
	}
	if rec := f.groups.record("c1", "group-a", "1-0"); rec.String("court") != "2" || rec.String("time") != "13:00" {
		t.Fatalf("overlay not written: %v", rec)
	}

	dup := saved.Document
	dup.Assignments[0][1] = dup.Assignments[0][0]
	dup.Venues = nil
	if _, err := f.scheduleSvc.SaveSchedule(ctx, 1, day1, dup); !errors.Is(err, ErrValidationFailed) {
		t.Fatalf("duplicate placement: expected ErrValidationFailed, got %v", err)
	}
}

func TestListMatches(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.scheduleSvc.AddSlots(ctx, 1, day1, 0, SlotSeriesInput{StartTime: "09:00", DurationMinutes: 30, Count: 1})
	if _, err := f.scheduleSvc.PlaceMatch(ctx, 1, day1, 0, 0, 0, "rr-c1-group-a-0-0"); err != nil {
		t.Fatal(err)
	}

	all, err := f.scheduleSvc.ListMatches(ctx, 1, MatchQuery{})
	if err != nil {
		t.Fatal(err)
	}
	if len(all.Matches) != 5 || all.CategoryOptions[0] != schedule.FilterAll || len(all.StageOptions) != 4 {
		t.Fatalf("unexpected list %d %v %v", len(all.Matches), all.CategoryOptions, all.StageOptions)
	}

	avail, err := f.scheduleSvc.ListMatches(ctx, 1, MatchQuery{AvailableOnly: true, Filter: schedule.MatchFilter{Stage: models.StageRoundRobin}})
	if err != nil {
		t.Fatal(err)
	}
	if len(avail.Matches) != 2 {
		t.Fatalf("expected 2 available group matches, got %d", len(avail.Matches))
	}
	for _, m := range avail.Matches {
		if m.ID == "rr-c1-group-a-0-0" {
			t.Fatalf("placed match listed as available")
		}
	}

	other, err := f.scheduleSvc.ListMatches(ctx, 1, MatchQuery{Date: "2024-06-02", AvailableOnly: true})
	if err != nil || len(other.Matches) != 5 {
		t.Fatalf("the pool is per day: %v %v", err, other)
	}
}

func TestArchiveFailureIsNotFatal(t *testing.T) {
	f := newFixture()
	f.archiver.err = errors.New("bucket gone")
	view, err := f.scheduleSvc.AddVenue(context.Background(), 1, day1, "")
	if err != nil {
		t.Fatalf("archive errors must not fail the save: %v", err)
	}
	if len(view.Document.Venues) != 2 || view.Document.Venues[1].Name != "Venue 2" {
		t.Fatalf("unexpected venues %+v", view.Document.Venues)
	}
}
