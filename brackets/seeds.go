package brackets

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/dastin1501/PPL-Referee/models"
)

var seedToken = regexp.MustCompile(`(?i)^([A-H])(\d+)$`)

// ParseSeed splits a seed token such as "B3" into its letter and 1-based index.
func ParseSeed(token string) (letter string, index int, ok bool) {
	m := seedToken.FindStringSubmatch(strings.TrimSpace(token))
	if m == nil {
		return "", 0, false
	}
	n, err := strconv.Atoi(m[2])
	if err != nil || n < 1 {
		return "", 0, false
	}
	return strings.ToUpper(m[1]), n, true
}

// SeedTable holds each group's ranked display names by letter.
type SeedTable map[string][]string

// NewSeedTable builds the table from current groups. The first group seen for
// a letter wins.
func NewSeedTable(groups []*models.Group) SeedTable {
	t := make(SeedTable, len(groups))
	for _, g := range groups {
		l := GroupLetter(g)
		if _, ok := t[l]; ok {
			continue
		}
		t[l] = g.RankedNames()
	}
	return t
}

// Lookup returns the entrant at a 1-based rank in a group.
func (t SeedTable) Lookup(letter string, index int) (string, bool) {
	names := t[letter]
	if index < 1 || index > len(names) {
		return "", false
	}
	name := names[index-1]
	if name == "" {
		return "", false
	}
	return name, true
}

// Resolve substitutes a seed token with its entrant name. Anything that is not
// a seed token, or does not resolve, comes back unchanged.
func (t SeedTable) Resolve(token string) string {
	letter, n, ok := ParseSeed(token)
	if !ok {
		return token
	}
	if name, ok := t.Lookup(letter, n); ok {
		return name
	}
	return token
}

// ResolveMatches rewrites player text across a unified match list.
//
// Group matches are re-resolved from their seeds so a change in standings
// order shows up; when a seed does not resolve the previous player text is
// kept, then the seed itself. Elimination matches only have their direct
// seeds re-resolved; winner/loser placeholders are left to ResolveElimination.
func ResolveMatches(matches []*models.ScheduledMatch, table SeedTable) {
	for _, m := range matches {
		switch m.Type {
		case models.MatchTypeGroup:
			p1 := resolveSide(table, m.Seed1, m.Player1)
			p2 := resolveSide(table, m.Seed2, m.Player2)
			m.SetPlayers(p1, p2)
		case models.MatchTypeElimination:
			p1, p2 := m.Player1, m.Player2
			if _, _, ok := ParseSeed(m.Seed1); ok && (p1 == m.Seed1 || models.IsPlaceholderName(p1)) {
				p1 = table.Resolve(m.Seed1)
			}
			if _, _, ok := ParseSeed(m.Seed2); ok && (p2 == m.Seed2 || models.IsPlaceholderName(p2)) {
				p2 = table.Resolve(m.Seed2)
			}
			m.SetPlayers(p1, p2)
		}
	}
}

func resolveSide(table SeedTable, seed, previous string) string {
	if letter, n, ok := ParseSeed(seed); ok {
		if name, ok := table.Lookup(letter, n); ok {
			return name
		}
	}
	if previous != "" {
		return previous
	}
	return seed
}
