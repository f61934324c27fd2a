package schedule

import (
	"testing"

	"github.com/dastin1501/PPL-Referee/models"
)

func TestConflicts(t *testing.T) {
	g := testGrid(3)
	mustAddSlots(t, g, 0, "09:00", 30, 2)
	mustPlace(t, g, 0, 0, 0, match("m1", "Open", "Ann vs Bea"))
	mustPlace(t, g, 0, 0, 1, match("m2", "Open", "bea vs Cid"))
	mustPlace(t, g, 0, 0, 2, match("m3", "Seniors", "Ann vs Dan"))
	mustPlace(t, g, 0, 1, 0, match("m4", "Open", "Ann vs Cid"))

	grid, err := g.Conflicts(0, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]bool{{true, true, false}, {false, false, false}}
	for r := range want {
		for c := range want[r] {
			if grid[r][c] != want[r][c] {
				t.Fatalf("cell (%d,%d): got %v, expected %v", r, c, grid[r][c], want[r][c])
			}
		}
	}
}

func TestConflictsIgnoreTBDAndUseLookup(t *testing.T) {
	g := testGrid(2)
	mustAddSlots(t, g, 0, "09:00", 30, 1)
	mustPlace(t, g, 0, 0, 0, match("e1", "Open", "TBD vs TBD"))
	mustPlace(t, g, 0, 0, 1, match("e2", "Open", "TBD vs Zed"))

	if hit, _ := g.HasConflict(0, 0, 0, nil); hit {
		t.Fatalf("TBD sides must not conflict")
	}

	m1, m2 := match("e1", "Open", "Ann vs Bea"), match("e2", "Open", "Zed vs Ann")
	lookup := LookupFromMatches([]*models.ScheduledMatch{m1, m2})
	hit, err := g.HasConflict(0, 0, 1, lookup)
	if err != nil || !hit {
		t.Fatalf("resolved names should conflict, got %v %v", hit, err)
	}
}
