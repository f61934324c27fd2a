package schedule

import (
	"errors"
	"fmt"
	"testing"

	"github.com/dastin1501/PPL-Referee/models"
)

func testGrid(courts int) *Grid {
	g := NewGrid("2024-06-01", Defaults{CourtCount: courts})
	n := 0
	g.SetIDGenerator(func() string {
		n++
		return fmt.Sprintf("id%d", n)
	})
	return g
}

func match(id, category, vs string) *models.ScheduledMatch {
	m := &models.ScheduledMatch{ID: id, Category: category, Type: models.MatchTypeGroup}
	m.PlayersVs = vs
	m.Label = vs
	return m
}

func mustAddSlots(t *testing.T, g *Grid, v int, start string, duration, count int) {
	t.Helper()
	if _, err := g.AddSlotSeries(v, start, duration, count); err != nil {
		t.Fatalf("add slots: %v", err)
	}
}

func mustPlace(t *testing.T, g *Grid, v, row, col int, m *models.ScheduledMatch) {
	t.Helper()
	if err := g.Place(v, row, col, m); err != nil {
		t.Fatalf("place %s: %v", m.ID, err)
	}
}

func slotTimes(v models.Venue) []string {
	out := make([]string, len(v.TimeSlots))
	for i, s := range v.TimeSlots {
		out[i] = s.StartTime + "-" + s.EndTime
	}
	return out
}

func TestAddSlotSeries(t *testing.T) {
	g := testGrid(2)
	slots, err := g.AddSlotSeries(0, "09:00", 30, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"09:00-09:30", "09:30-10:00", "10:00-10:30"}
	for i, s := range slots {
		if got := s.StartTime + "-" + s.EndTime; got != want[i] || s.Duration != "30" {
			t.Fatalf("slot %d: got %s (%s), expected %s", i, got, s.Duration, want[i])
		}
	}
	v, _ := g.Venue(0)
	if len(v.Assignments) != 3 || len(v.Assignments[2]) != 2 {
		t.Fatalf("expected 3x2 grid, got %d rows", len(v.Assignments))
	}

	if _, err := g.AddSlotSeries(0, "9am", 30, 1); !errors.Is(err, ErrInvalidSlotSeries) {
		t.Fatalf("expected ErrInvalidSlotSeries, got %v", err)
	}
	if _, err := g.AddSlotSeries(0, "09:00", 0, 1); !errors.Is(err, ErrInvalidSlotSeries) {
		t.Fatalf("expected ErrInvalidSlotSeries, got %v", err)
	}
}

func TestReplaceTailSeriesKeepsEarlierSlots(t *testing.T) {
	g := testGrid(1)
	if _, err := g.AddSlotSeries(0, "08:00", 60, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := g.ReplaceTailSeries(0, "09:00", 30, 4); err != nil {
		t.Fatal(err)
	}
	if _, err := g.ReplaceTailSeries(0, "09:00", 30, 2); err != nil {
		t.Fatal(err)
	}
	v, _ := g.Venue(0)
	got := fmt.Sprint(slotTimes(v))
	want := fmt.Sprint([]string{"08:00-09:00", "09:00-09:30", "09:30-10:00"})
	if got != want {
		t.Fatalf("got %s, expected %s", got, want)
	}
	if len(v.Assignments) != 3 {
		t.Fatalf("rows out of step with slots: %d", len(v.Assignments))
	}

	if err := g.CommitSeries(0); err != nil {
		t.Fatal(err)
	}
	if _, err := g.ReplaceTailSeries(0, "10:00", 30, 1); err != nil {
		t.Fatal(err)
	}
	v, _ = g.Venue(0)
	if len(v.TimeSlots) != 4 {
		t.Fatalf("committed series should be kept, got %v", slotTimes(v))
	}
}

func TestAppendClosesPreviewSeries(t *testing.T) {
	g := testGrid(1)
	if _, err := g.ReplaceTailSeries(0, "09:00", 30, 3); err != nil {
		t.Fatal(err)
	}
	mustAddSlots(t, g, 0, "13:00", 60, 1)
	if _, err := g.ReplaceTailSeries(0, "09:00", 30, 2); err != nil {
		t.Fatal(err)
	}
	v, _ := g.Venue(0)
	got := fmt.Sprint(slotTimes(v))
	want := fmt.Sprint([]string{"09:00-09:30", "09:30-10:00", "10:00-10:30", "13:00-14:00", "09:00-09:30", "09:30-10:00"})
	if got != want {
		t.Fatalf("got %s, expected %s", got, want)
	}
	if len(v.Assignments) != len(v.TimeSlots) {
		t.Fatalf("rows out of step with slots: %d vs %d", len(v.Assignments), len(v.TimeSlots))
	}
}

func TestSeriesStartIsNormalized(t *testing.T) {
	g := testGrid(1)
	slots, err := g.AddSlotSeries(0, " 9:05", 30, 2)
	if err != nil {
		t.Fatal(err)
	}
	if slots[0].StartTime != "09:05" || slots[1].StartTime != "09:35" {
		t.Fatalf("expected 09:05 and 09:35, got %s and %s", slots[0].StartTime, slots[1].StartTime)
	}
}

func TestRemoveSlotAndHint(t *testing.T) {
	g := testGrid(1)
	mustAddSlots(t, g, 0, "09:00", 20, 3)
	if err := g.Place(0, 1, 0, match("m1", "c", "A vs B")); err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveSlot(0, 1); err != nil {
		t.Fatal(err)
	}
	if _, ok := g.PlacedIDs()["m1"]; ok {
		t.Fatalf("placement in removed slot should be gone")
	}
	if err := g.RemoveSlot(0, 5); !errors.Is(err, ErrSlotOutOfRange) {
		t.Fatalf("expected ErrSlotOutOfRange, got %v", err)
	}
	start, dur, err := g.NextSlotHint(0)
	if err != nil || start != "10:00" || dur != "20" {
		t.Fatalf("hint: %s %s %v", start, dur, err)
	}
}

func TestPlaceMovesMatch(t *testing.T) {
	g := testGrid(2)
	mustAddSlots(t, g, 0, "09:00", 30, 2)
	g.AddVenue("Annex")
	g.SetCourtCount(1, 2)
	mustAddSlots(t, g, 1, "09:00", 30, 1)

	m := match("m1", "c", "A vs B")
	if err := g.Place(0, 0, 0, m); err != nil {
		t.Fatal(err)
	}
	if err := g.Place(1, 0, 1, m); err != nil {
		t.Fatal(err)
	}
	v, r, c, ok := g.Locate("m1")
	if !ok || v != 1 || r != 0 || c != 1 {
		t.Fatalf("expected m1 at (1,0,1), got (%d,%d,%d) %v", v, r, c, ok)
	}
	if len(g.PlacedIDs()) != 1 {
		t.Fatalf("match placed more than once")
	}
	ven, _ := g.Venue(0)
	if ven.Assignments[0][0] != nil {
		t.Fatalf("previous cell not cleared")
	}

	if err := g.Place(0, 0, 5, m); !errors.Is(err, ErrCellOutOfRange) {
		t.Fatalf("expected ErrCellOutOfRange, got %v", err)
	}
	if err := g.Place(0, 0, 0, &models.ScheduledMatch{}); !errors.Is(err, ErrMatchRequired) {
		t.Fatalf("expected ErrMatchRequired, got %v", err)
	}
}

func TestPlaceReplacesDestination(t *testing.T) {
	g := testGrid(1)
	mustAddSlots(t, g, 0, "09:00", 30, 1)
	mustPlace(t, g, 0, 0, 0, match("m1", "c", "A vs B"))
	mustPlace(t, g, 0, 0, 0, match("m2", "c", "C vs D"))
	ids := g.PlacedIDs()
	if _, ok := ids["m1"]; ok || len(ids) != 1 {
		t.Fatalf("expected only m2 placed, got %v", ids)
	}
	if err := g.Clear(0, 0, 0); err != nil {
		t.Fatal(err)
	}
	if len(g.PlacedIDs()) != 0 {
		t.Fatalf("clear left a placement")
	}
}

func TestSetCourtCount(t *testing.T) {
	g := testGrid(3)
	mustAddSlots(t, g, 0, "09:00", 30, 1)
	mustPlace(t, g, 0, 0, 0, match("keep", "c", "A vs B"))
	mustPlace(t, g, 0, 0, 2, match("drop", "c", "C vs D"))

	if err := g.SetCourtCount(0, 2); err != nil {
		t.Fatal(err)
	}
	ids := g.PlacedIDs()
	if _, ok := ids["keep"]; !ok {
		t.Fatalf("retained column lost its placement")
	}
	if _, ok := ids["drop"]; ok {
		t.Fatalf("dropped column still placed")
	}

	g.SetCourtCount(0, 0)
	v, _ := g.Venue(0)
	if v.CourtCount != 1 || len(v.Assignments[0]) != 1 {
		t.Fatalf("court count should clamp to 1, got %d", v.CourtCount)
	}
	g.SetCourtCount(0, 4)
	v, _ = g.Venue(0)
	if len(v.Assignments[0]) != 4 || v.Assignments[0][0] == nil || v.Assignments[0][3] != nil {
		t.Fatalf("grow should keep column 0 and add empty cells")
	}
}

func TestVenues(t *testing.T) {
	g := testGrid(2)
	if err := g.RemoveVenue(0); !errors.Is(err, ErrLastVenue) {
		t.Fatalf("expected ErrLastVenue, got %v", err)
	}
	if i := g.AddVenue(""); i != 1 {
		t.Fatalf("expected index 1, got %d", i)
	}
	v, _ := g.Venue(1)
	if v.Name != "Venue 2" || v.CourtCount != 1 {
		t.Fatalf("unexpected new venue %+v", v)
	}
	if err := g.RenameVenue(1, "Hall B"); err != nil {
		t.Fatal(err)
	}
	if err := g.RemoveVenue(0); err != nil {
		t.Fatal(err)
	}
	v, _ = g.Venue(0)
	if g.VenueCount() != 1 || v.Name != "Hall B" {
		t.Fatalf("wrong venue removed: %+v", v)
	}
	if _, err := g.Venue(3); !errors.Is(err, ErrVenueOutOfRange) {
		t.Fatalf("expected ErrVenueOutOfRange, got %v", err)
	}
}

func TestSetNote(t *testing.T) {
	g := testGrid(1)
	mustAddSlots(t, g, 0, "12:00", 60, 1)
	mustPlace(t, g, 0, 0, 0, match("m1", "c", "A vs B"))
	if err := g.SetNote(0, 0, 0, " Lunch "); err != nil {
		t.Fatal(err)
	}
	v, _ := g.Venue(0)
	a := v.Assignments[0][0]
	if !a.IsNote() || a.Text != "Lunch" || a.ID != "note-id2" {
		t.Fatalf("unexpected note %+v", a)
	}
	if len(g.PlacedIDs()) != 0 {
		t.Fatalf("note should replace the placement")
	}
	g.SetNote(0, 0, 0, "  ")
	v, _ = g.Venue(0)
	if v.Assignments[0][0] != nil {
		t.Fatalf("blank note should clear the cell")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := testGrid(1)
	mustAddSlots(t, g, 0, "09:00", 30, 1)
	c := g.Clone()
	mustPlace(t, c, 0, 0, 0, match("m1", "c", "A vs B"))
	c.AddVenue("x")
	if len(g.PlacedIDs()) != 0 || g.VenueCount() != 1 {
		t.Fatalf("clone mutation leaked into original")
	}
}
