package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Category is one competition division of a tournament. It owns its groups
// and elimination matches; both are recomputed from registrations and then
// overlaid with persisted records.
type Category struct {
	ID            string      `json:"id" db:"id"`
	TournamentID  int         `json:"tournament_id" db:"tournament_id"`
	Division      string      `json:"division" db:"division"`
	AgeCategory   string      `json:"age_category,omitempty" db:"age_category"`
	SkillLevel    string      `json:"skill_level,omitempty" db:"skill_level"`
	Tier          int         `json:"tier,omitempty" db:"tier"`
	BracketSize   int         `json:"bracket_size" db:"bracket_size"`
	GamesPerMatch int         `json:"games_per_match" db:"games_per_match"`
	EntrantKind   EntrantKind `json:"entrant_kind" db:"-"`

	// TournamentDates are copied from the owning tournament.
	TournamentDates []string `json:"tournament_dates,omitempty" db:"-"`

	Groups             []*Group               `json:"groups" db:"-"`
	EliminationMatches []*EliminationMatch    `json:"elimination_matches" db:"-"`
	EliminationOverlay map[string]MatchRecord `json:"elimination_overlay,omitempty" db:"-"`
	PointsSubmitted    bool                   `json:"points_submitted" db:"points_submitted"`
}

// Label renders "division - skill - age", skipping empty parts.
func (c *Category) Label() string {
	skill := strings.TrimSpace(c.SkillLevel)
	if skill == "Open" && c.Tier > 0 {
		skill = fmt.Sprintf("Open Tier %d", c.Tier)
	}
	parts := make([]string, 0, 3)
	for _, p := range []string{strings.TrimSpace(c.Division), skill, strings.TrimSpace(c.AgeCategory)} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		return "Tournament Category"
	}
	return strings.Join(parts, " - ")
}

// FirstDate returns the first tournament day or "".
func (c *Category) FirstDate() string {
	if len(c.TournamentDates) == 0 {
		return ""
	}
	return c.TournamentDates[0]
}

// GroupByLetter returns the first group with the given letter.
func (c *Category) GroupByLetter(letter string) *Group {
	for _, g := range c.Groups {
		if g.Letter == letter {
			return g
		}
	}
	return nil
}

// GroupByID returns the group with the given id.
func (c *Category) GroupByID(id string) *Group {
	for _, g := range c.Groups {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Group is one round-robin pool. Entrants are in seed order.
type Group struct {
	ID        string                 `json:"id"`
	Letter    string                 `json:"letter"`
	Name      string                 `json:"name"`
	Entrants  []Entrant              `json:"entrants"`
	Standings []Standing             `json:"standings"`
	Matches   map[string]MatchRecord `json:"matches"`
}

// RankedNames returns display names in rank order: standings when present,
// otherwise the original seed order.
func (g *Group) RankedNames() []string {
	if g == nil {
		return nil
	}
	if len(g.Standings) > 0 {
		out := make([]string, len(g.Standings))
		for i, s := range g.Standings {
			out[i] = s.Entrant.DisplayName
		}
		return out
	}
	out := make([]string, len(g.Entrants))
	for i, e := range g.Entrants {
		out[i] = e.DisplayName
	}
	return out
}

// MatchRecord is a persisted per-match overlay (date, time, court, venue,
// scores and whatever else a collaborator stored). Unknown keys are kept.
type MatchRecord map[string]any

// Common overlay keys.
const (
	RecordDate        = "date"
	RecordTime        = "time"
	RecordCourt       = "court"
	RecordVenue       = "venue"
	RecordWinner      = "winner"
	RecordPlayer1     = "player1"
	RecordPlayer2     = "player2"
	RecordPlayer1Name = "player1Name"
	RecordPlayer2Name = "player2Name"
)

// String returns the value at key as text. Numbers are formatted without a
// fraction when integral; anything else non-string yields "".
func (m MatchRecord) String(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	switch t := v.(type) {
	case string:
		return t
	case float64:
		if t == float64(int64(t)) {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case fmt.Stringer:
		return t.String()
	}
	return ""
}

// Clone returns a shallow copy.
func (m MatchRecord) Clone() MatchRecord {
	out := make(MatchRecord, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Merge returns a new record with every field of m, then every field of
// overlay on top. Neither input is modified.
func (m MatchRecord) Merge(overlay MatchRecord) MatchRecord {
	out := make(MatchRecord, len(m)+len(overlay))
	for k, v := range m {
		out[k] = v
	}
	for k, v := range overlay {
		out[k] = v
	}
	return out
}
