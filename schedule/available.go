package schedule

import (
	"sort"
	"strings"

	"github.com/dastin1501/PPL-Referee/models"
)

// FilterAll matches every category or stage.
const FilterAll = "All"

// MatchFilter narrows the available-match pool. Empty fields or "All" do not
// filter.
type MatchFilter struct {
	Category string
	Stage    string
	Search   string
}

func (f MatchFilter) accepts(m *models.ScheduledMatch) bool {
	if f.Category != "" && f.Category != FilterAll && m.Category != f.Category {
		return false
	}
	if f.Stage != "" && f.Stage != FilterAll && m.Stage != f.Stage {
		return false
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	hay := strings.ToLower(strings.Join([]string{
		m.PlayersVs, m.Label, m.SeedVs, m.DisplayNumber, m.MatchNumber, m.Category, m.Stage,
	}, " "))
	return strings.Contains(hay, q)
}

// FilterMatches applies a filter, keeping list order.
func FilterMatches(all []*models.ScheduledMatch, f MatchFilter) []*models.ScheduledMatch {
	out := make([]*models.ScheduledMatch, 0, len(all))
	for _, m := range all {
		if m != nil && m.ID != "" && f.accepts(m) {
			out = append(out, m)
		}
	}
	return out
}

// AvailableMatches returns the filtered matches not currently placed.
func AvailableMatches(all []*models.ScheduledMatch, placed map[string]struct{}, f MatchFilter) []*models.ScheduledMatch {
	filtered := FilterMatches(all, f)
	out := filtered[:0]
	for _, m := range filtered {
		if _, ok := placed[m.ID]; !ok {
			out = append(out, m)
		}
	}
	return out
}

// CategoryOptions lists the distinct categories, sorted, with "All" first.
func CategoryOptions(all []*models.ScheduledMatch) []string {
	return options(all, func(m *models.ScheduledMatch) string { return m.Category })
}

// StageOptions lists the distinct stages, sorted, with "All" first.
func StageOptions(all []*models.ScheduledMatch) []string {
	return options(all, func(m *models.ScheduledMatch) string { return m.Stage })
}

func options(all []*models.ScheduledMatch, field func(*models.ScheduledMatch) string) []string {
	seen := make(map[string]struct{})
	for _, m := range all {
		if v := field(m); v != "" {
			seen[v] = struct{}{}
		}
	}
	vals := make([]string, 0, len(seen))
	for v := range seen {
		vals = append(vals, v)
	}
	sort.Strings(vals)
	return append([]string{FilterAll}, vals...)
}
