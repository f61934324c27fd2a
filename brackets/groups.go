package brackets

import (
	"regexp"
	"strings"

	"github.com/dastin1501/PPL-Referee/models"
)

const DefaultBracketSize = 4

var groupLetters = []string{"A", "B", "C", "D", "E", "F", "G", "H"}

// NormalizeBracketSize maps anything outside {1,2,4,8} to the default.
func NormalizeBracketSize(size int) int {
	switch size {
	case 1, 2, 4, 8:
		return size
	}
	return DefaultBracketSize
}

// GroupLetters returns the group letters used for a bracket size.
func GroupLetters(size int) []string {
	return groupLetters[:NormalizeBracketSize(size)]
}

// GroupID is "group-" plus the lowercase letter.
func GroupID(letter string) string {
	return "group-" + strings.ToLower(letter)
}

// GroupCapacities splits total entrants across groupCount groups. The first
// total%groupCount groups get one extra slot.
func GroupCapacities(total, groupCount int) []int {
	if groupCount <= 0 {
		return nil
	}
	base, rem := total/groupCount, total%groupCount
	caps := make([]int, groupCount)
	for i := range caps {
		caps[i] = base
		if i < rem {
			caps[i]++
		}
	}
	return caps
}

// AllocateGroups partitions entrants into balanced groups by dealing them one
// at a time across groups that still have capacity. Every group gets zeroed
// standings. Zero entrants still yields the empty groups.
func AllocateGroups(entrants []models.Entrant, bracketSize int) []*models.Group {
	letters := GroupLetters(bracketSize)
	caps := GroupCapacities(len(entrants), len(letters))

	groups := make([]*models.Group, len(letters))
	for i, l := range letters {
		groups[i] = &models.Group{
			ID:        GroupID(l),
			Letter:    l,
			Name:      "Group " + l,
			Entrants:  make([]models.Entrant, 0, caps[i]),
			Standings: make([]models.Standing, 0, caps[i]),
			Matches:   make(map[string]models.MatchRecord),
		}
	}

	next := 0
	for next < len(entrants) {
		placed := false
		for b := 0; b < len(groups) && next < len(entrants); b++ {
			if len(groups[b].Entrants) >= caps[b] {
				continue
			}
			e := entrants[next]
			next++
			groups[b].Entrants = append(groups[b].Entrants, e)
			groups[b].Standings = append(groups[b].Standings, models.NewStanding(e))
			placed = true
		}
		if !placed {
			break
		}
	}
	return groups
}

var (
	groupIDLetter   = regexp.MustCompile(`(?i)group-([a-z])`)
	trailingLetter  = regexp.MustCompile(`(?i)([a-z])$`)
	groupNameLetter = regexp.MustCompile(`(?i)\b([A-H])\b`)
)

// GroupLetter returns the bracket letter of a group, deriving it from the id
// or name when the letter field is missing.
func GroupLetter(g *models.Group) string {
	if g.Letter != "" {
		return strings.ToUpper(g.Letter)
	}
	if m := groupIDLetter.FindStringSubmatch(g.ID); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := trailingLetter.FindStringSubmatch(g.ID); m != nil {
		return strings.ToUpper(m[1])
	}
	if m := groupNameLetter.FindStringSubmatch(g.Name); m != nil {
		return strings.ToUpper(m[1])
	}
	return "A"
}
