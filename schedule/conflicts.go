package schedule

import (
	"strings"

	"github.com/dastin1501/PPL-Referee/models"
)

// PlayersLookup returns the current "X vs Y" text of a match by id. It lets
// conflict checks see names resolved after the match was placed.
type PlayersLookup func(matchID string) (string, bool)

// LookupFromMatches indexes a unified match list for conflict checks.
func LookupFromMatches(matches []*models.ScheduledMatch) PlayersLookup {
	byID := make(map[string]string, len(matches))
	for _, m := range matches {
		byID[m.ID] = m.PlayersVs
	}
	return func(id string) (string, bool) {
		vs, ok := byID[id]
		return vs, ok
	}
}

// cellPlayers returns the lowercased entrant names of a placed match,
// skipping TBD sides.
func cellPlayers(a *models.Assignment, lookup PlayersLookup) []string {
	if !a.IsMatch() {
		return nil
	}
	vs := a.Label
	if lookup != nil {
		if cur, ok := lookup(a.ID); ok {
			vs = cur
		}
	}
	var out []string
	for _, p := range strings.Split(vs, " vs ") {
		p = strings.ToLower(strings.TrimSpace(p))
		if p == "" || p == "tbd" {
			continue
		}
		out = append(out, p)
	}
	return out
}

// rowConflicts flags the cells of one time row whose entrants also appear in
// another placement of the same category in that row.
func rowConflicts(row []*models.Assignment, lookup PlayersLookup) []bool {
	type catPlayer struct{ category, player string }
	counts := make(map[catPlayer]int)
	players := make([][]string, len(row))
	for c, a := range row {
		players[c] = cellPlayers(a, lookup)
		for _, p := range players[c] {
			counts[catPlayer{a.Category, p}]++
		}
	}
	out := make([]bool, len(row))
	for c, a := range row {
		for _, p := range players[c] {
			if counts[catPlayer{a.Category, p}] > 1 {
				out[c] = true
				break
			}
		}
	}
	return out
}

// Conflicts returns a [slot][court] matrix marking double-booked cells of a
// venue.
func (g *Grid) Conflicts(v int, lookup PlayersLookup) ([][]bool, error) {
	ven, err := g.venue(v)
	if err != nil {
		return nil, err
	}
	out := make([][]bool, len(ven.Assignments))
	for r, row := range ven.Assignments {
		out[r] = rowConflicts(row, lookup)
	}
	return out, nil
}

// HasConflict reports whether one cell is double-booked within its row.
func (g *Grid) HasConflict(v, row, col int, lookup PlayersLookup) (bool, error) {
	ven, err := g.cell(v, row, col)
	if err != nil {
		return false, err
	}
	return rowConflicts(ven.Assignments[row], lookup)[col], nil
}
