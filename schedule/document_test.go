package schedule

import (
	"encoding/json"
	"testing"

	"github.com/dastin1501/PPL-Referee/models"
)

func TestParseLegacyDocument(t *testing.T) {
	data := []byte(`{
		"scheduleDate": "2024-06-01",
		"timeSlots": ["09:00", {"id": "s2", "startTime": "09:30", "duration": "30", "endTime": "10:00"}],
		"assignments": [[{"id": "m1", "label": "A vs B"}, null, {"label": "no id"}]],
		"version": 3
	}`)
	g, version, err := ParseDocument(data, Defaults{CourtCount: 2, VenueName: "Main Hall"})
	if err != nil {
		t.Fatal(err)
	}
	if version != 3 || g.Date() != "2024-06-01" || g.VenueCount() != 1 {
		t.Fatalf("unexpected grid: version %d date %s venues %d", version, g.Date(), g.VenueCount())
	}
	v, _ := g.Venue(0)
	if v.Name != "Main Hall" || v.CourtCount != 3 {
		t.Fatalf("expected Main Hall with 3 courts from row width, got %s %d", v.Name, v.CourtCount)
	}
	if v.TimeSlots[0].StartTime != "09:00" || v.TimeSlots[0].ID == "" || v.TimeSlots[1].ID != "s2" {
		t.Fatalf("slots not normalized: %+v", v.TimeSlots)
	}
	if len(v.Assignments) != 2 || len(v.Assignments[1]) != 3 {
		t.Fatalf("rows not padded to slots x courts")
	}
	if v.Assignments[0][2] != nil {
		t.Fatalf("match without id should be dropped")
	}
	if _, ok := g.PlacedIDs()["m1"]; !ok {
		t.Fatalf("m1 lost")
	}
}

func TestParseDocumentDefaults(t *testing.T) {
	g, _, err := ParseDocument([]byte(`{"scheduleDate":"2024-06-02"}`), Defaults{})
	if err != nil {
		t.Fatal(err)
	}
	v, _ := g.Venue(0)
	if v.Name != DefaultVenueName || v.CourtCount != DefaultCourtCount {
		t.Fatalf("got %s %d", v.Name, v.CourtCount)
	}
	if _, _, err := ParseDocument([]byte(`{"timeSlots": [42]}`), Defaults{}); err == nil {
		t.Fatalf("expected error for a numeric slot")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	g := testGrid(2)
	mustAddSlots(t, g, 0, "09:00", 30, 2)
	mustPlace(t, g, 0, 1, 1, match("m1", "Open", "A vs B"))
	g.AddVenue("Annex")
	mustAddSlots(t, g, 1, "13:00", 45, 1)
	g.SetNote(1, 0, 0, "Warmup")

	doc := g.Document(1)
	if doc.CourtCount != 1 || len(doc.TimeSlots) != 1 || doc.TimeSlots[0].StartTime != "13:00" {
		t.Fatalf("top level should mirror selected venue: %+v", doc)
	}
	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	back, _, err := ParseDocument(data, Defaults{})
	if err != nil {
		t.Fatal(err)
	}
	again, _ := json.Marshal(back.Document(1))
	if string(again) != string(data) {
		t.Fatalf("round trip changed document:\n%s\n%s", data, again)
	}
}

func TestBracketUpdates(t *testing.T) {
	g := testGrid(2)
	mustAddSlots(t, g, 0, "09:00", 30, 2)

	placed := &models.ScheduledMatch{ID: "rr-c1-group-a-0-0", Type: models.MatchTypeGroup, CategoryID: "c1", GroupID: "group-a", MatchKey: "0-0"}
	elim := &models.ScheduledMatch{ID: "elimgen-c1-final", Type: models.MatchTypeElimination, CategoryID: "c1", MatchKey: "final"}
	mustPlace(t, g, 0, 1, 1, placed)
	mustPlace(t, g, 0, 0, 0, elim)

	cat := &models.Category{ID: "c1", Groups: []*models.Group{{
		ID: "group-a",
		Matches: map[string]models.MatchRecord{
			"0-0": {"date": "2024-06-01", "time": "08:00"},
			"0-1": {"date": "2024-06-01", "time": "11:00", "court": "2"},
			"1-0": {"date": "2024-06-02", "time": "09:00"},
		},
	}}}

	updates := g.BracketUpdates([]*models.ScheduledMatch{placed, elim}, []*models.Category{cat})
	group := updates["c1"]["group-a"]
	if len(updates["c1"]) != 1 || len(group) != 2 {
		t.Fatalf("unexpected updates %+v", updates)
	}
	want := models.MatchScheduleUpdate{Date: "2024-06-01", Time: "09:30", Court: "2", Venue: DefaultVenueName}
	if group["0-0"] != want {
		t.Fatalf("placed update: got %+v", group["0-0"])
	}
	if !group["0-1"].Cleared() {
		t.Fatalf("unplaced same-day match should be cleared, got %+v", group["0-1"])
	}
	if _, ok := group["1-0"]; ok {
		t.Fatalf("other days must not be touched")
	}
	if _, ok := group["0-1"].Record()[models.RecordVenue]; ok {
		t.Fatalf("cleared record should not carry a venue")
	}
}

func TestDuplicatePlacementsAndWithDate(t *testing.T) {
	data := []byte(`{"scheduleDate": "", "courtCount": 2,
		"timeSlots": ["09:00", "09:30"],
		"assignments": [[{"id": "m1"}, {"id": "m2"}], [{"id": "m1"}, {"type": "note", "text": "x", "id": "note-1"}]]}`)
	g, _, err := ParseDocument(data, Defaults{})
	if err != nil {
		t.Fatal(err)
	}
	if d := g.DuplicatePlacements(); len(d) != 1 || d[0] != "m1" {
		t.Fatalf("expected m1 duplicated, got %v", d)
	}
	dated := g.WithDate("2024-06-03")
	if dated.Date() != "2024-06-03" || g.Date() != "" {
		t.Fatalf("WithDate should copy: %q %q", dated.Date(), g.Date())
	}
}
