package schedule

import (
	"fmt"
	"testing"

	"github.com/dastin1501/PPL-Referee/models"
)

func pool() []*models.ScheduledMatch {
	a := match("rr-1", "Open", "Ann vs Bea")
	a.Stage, a.DisplayNumber = models.StageRoundRobin, "GA1"
	b := match("rr-2", "Open", "Cid vs Dan")
	b.Stage, b.DisplayNumber = models.StageRoundRobin, "GA2"
	c := match("el-1", "Seniors", "Winner SF1 vs Winner SF2")
	c.Stage, c.DisplayNumber, c.SeedVs = models.StageGold, "FINAL", "WSF1 vs WSF2"
	return []*models.ScheduledMatch{a, b, c}
}

func ids(ms []*models.ScheduledMatch) string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return fmt.Sprint(out)
}

func TestAvailableMatches(t *testing.T) {
	tests := []struct {
		name   string
		placed map[string]struct{}
		filter MatchFilter
		want   string
	}{
		{"all", nil, MatchFilter{}, "[rr-1 rr-2 el-1]"},
		{"placed excluded", map[string]struct{}{"rr-2": {}}, MatchFilter{Category: FilterAll}, "[rr-1 el-1]"},
		{"category", nil, MatchFilter{Category: "Seniors"}, "[el-1]"},
		{"stage", nil, MatchFilter{Stage: models.StageRoundRobin}, "[rr-1 rr-2]"},
		{"search players", nil, MatchFilter{Search: "dan"}, "[rr-2]"},
		{"search seeds", nil, MatchFilter{Search: "wsf2"}, "[el-1]"},
		{"search number", nil, MatchFilter{Search: "ga1"}, "[rr-1]"},
		{"no hit", nil, MatchFilter{Search: "zzz"}, "[]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(AvailableMatches(pool(), tt.placed, tt.filter))
			if got != tt.want {
				t.Fatalf("got %s, expected %s", got, tt.want)
			}
		})
	}
}

func TestOptions(t *testing.T) {
	if got := fmt.Sprint(CategoryOptions(pool())); got != "[All Open Seniors]" {
		t.Fatalf("categories: %s", got)
	}
	if got := fmt.Sprint(StageOptions(pool())); got != "[All Battle for Gold Round robin]" {
		t.Fatalf("stages: %s", got)
	}
}
