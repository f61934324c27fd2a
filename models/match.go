package models

import (
	"fmt"
	"strings"
)

// Stage labels double as machine keys and display text.
const (
	StageRoundRobin   = "Round robin"
	StageRoundOf16    = "Round of 16"
	StageQuarterFinal = "Quarter-Final"
	StageSemiFinal    = "Semi-Final"
	StageBronze       = "Battle for Bronze"
	StageGold         = "Battle for Gold"
)

type MatchType string

const (
	MatchTypeGroup       MatchType = "group"
	MatchTypeElimination MatchType = "elimination"
)

type SeedRefKind int

const (
	SeedDirect SeedRefKind = iota
	SeedOutcome
)

type Outcome string

const (
	OutcomeWinner Outcome = "winner"
	OutcomeLoser  Outcome = "loser"
)

// SeedRef is one side of an elimination match: either a group seed (A1) or
// the winner/loser of another elimination match.
type SeedRef struct {
	Kind     SeedRefKind `json:"kind"`
	Letter   string      `json:"letter,omitempty"`
	Index    int         `json:"index,omitempty"` // 1-based
	MatchKey string      `json:"match_key,omitempty"`
	Code     string      `json:"code,omitempty"`
	Outcome  Outcome     `json:"outcome,omitempty"`
}

func DirectSeed(letter string, index int) SeedRef {
	return SeedRef{Kind: SeedDirect, Letter: letter, Index: index}
}

func MatchOutcome(matchKey, code string, outcome Outcome) SeedRef {
	return SeedRef{Kind: SeedOutcome, MatchKey: matchKey, Code: code, Outcome: outcome}
}

// Token is the compact form: "A1", "WQF1", "LSF2".
func (r SeedRef) Token() string {
	if r.Kind == SeedDirect {
		return fmt.Sprintf("%s%d", r.Letter, r.Index)
	}
	if r.Outcome == OutcomeLoser {
		return "L" + r.Code
	}
	return "W" + r.Code
}

// String is the unresolved display text: "A1", "Winner QF1", "Loser SF2".
func (r SeedRef) String() string {
	if r.Kind == SeedDirect {
		return r.Token()
	}
	if r.Outcome == OutcomeLoser {
		return "Loser " + r.Code
	}
	return "Winner " + r.Code
}

// EliminationMatch is one node of a fixed elimination template.
type EliminationMatch struct {
	Key     string  `json:"key"`
	Code    string  `json:"code"`
	Stage   string  `json:"stage"`
	Seed1   SeedRef `json:"seed1"`
	Seed2   SeedRef `json:"seed2"`
	Player1 string  `json:"player1"`
	Player2 string  `json:"player2"`
	Winner  string  `json:"winner,omitempty"`

	Date  string `json:"date,omitempty"`
	Time  string `json:"time,omitempty"`
	Court string `json:"court,omitempty"`
	Venue string `json:"venue,omitempty"`
}

// Resolved reports whether both sides carry entrant names rather than
// symbolic references or placeholders.
func (m *EliminationMatch) Resolved() bool {
	return m.Player1 != m.Seed1.String() && m.Player2 != m.Seed2.String() &&
		!IsPlaceholderName(m.Player1) && !IsPlaceholderName(m.Player2)
}

// ScheduledMatch is an item of the unified match list shown to schedulers.
type ScheduledMatch struct {
	ID            string    `json:"id"`
	Type          MatchType `json:"type"`
	Category      string    `json:"category"`
	CategoryID    string    `json:"category_id"`
	Bracket       string    `json:"bracket,omitempty"`
	GroupID       string    `json:"group_id,omitempty"`
	MatchKey      string    `json:"match_key"`
	MatchNumber   string    `json:"match_number"`
	DisplayNumber string    `json:"display_number"`
	Seed1         string    `json:"seed1"`
	Seed2         string    `json:"seed2"`
	SeedVs        string    `json:"seed_vs"`
	Player1       string    `json:"player1"`
	Player2       string    `json:"player2"`
	PlayersVs     string    `json:"players_vs"`
	Stage         string    `json:"stage"`
	Label         string    `json:"label"`

	Date  string `json:"date,omitempty"`
	Time  string `json:"time,omitempty"`
	Court string `json:"court,omitempty"`
	Venue string `json:"venue,omitempty"`
}

// SetPlayers updates both sides and the derived "X vs Y" text.
func (m *ScheduledMatch) SetPlayers(p1, p2 string) {
	m.Player1, m.Player2 = p1, p2
	m.PlayersVs = p1 + " vs " + p2
	m.Label = m.PlayersVs
}

// Placeholder display names.
const (
	PlaceholderUnknown = "Unknown Player"
	PlaceholderTBD     = "TBD"
)

// IsPlaceholderName reports names that stand in for a missing entrant.
func IsPlaceholderName(name string) bool {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "tbd", "unknown", "unknown player", "undefined undefined":
		return true
	}
	return false
}
