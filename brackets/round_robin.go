package brackets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/dastin1501/PPL-Referee/models"
)

type RoundRobinGenerator struct{}

func NewRoundRobinGenerator() BracketGenerator {
	return &RoundRobinGenerator{}
}

func (g *RoundRobinGenerator) GetName() string {
	return "RoundRobin"
}

// GenerateBracket lists the round-robin matches of every group in the
// category, group by group.
func (g *RoundRobinGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.ScheduledMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cat := params.Category
	if cat == nil {
		return nil, errors.New("RoundRobinGenerator: category is required")
	}

	matches := make([]*models.ScheduledMatch, 0)
	for _, group := range cat.Groups {
		matches = append(matches, EnumerateGroup(cat, group)...)
	}
	return matches, nil
}

// PairKey encodes the unordered pair (i, j), i < j, as "i-(j-i-1)".
func PairKey(i, j int) string {
	return fmt.Sprintf("%d-%d", i, j-i-1)
}

// ParsePairKey is the inverse of PairKey.
func ParsePairKey(key string) (i, j int, ok bool) {
	parts := strings.SplitN(key, "-", 2)
	if len(parts) != 2 {
		return 0, 0, false
	}
	i, err := strconv.Atoi(parts[0])
	if err != nil || i < 0 {
		return 0, 0, false
	}
	off, err := strconv.Atoi(parts[1])
	if err != nil || off < 0 {
		off = 0
	}
	return i, i + 1 + off, true
}

// GroupPlayers returns the seed-ordered names used for pairing: the group's
// entrants, or its standings when no entrants are recorded, with placeholder
// names dropped.
func GroupPlayers(g *models.Group) []string {
	var raw []string
	switch {
	case len(g.Entrants) > 0:
		raw = make([]string, len(g.Entrants))
		for i, e := range g.Entrants {
			raw[i] = e.DisplayName
		}
	case len(g.Standings) > 0:
		raw = make([]string, len(g.Standings))
		for i, s := range g.Standings {
			raw[i] = s.Entrant.DisplayName
		}
	}
	players := make([]string, 0, len(raw))
	for _, p := range raw {
		if !models.IsPlaceholderName(p) {
			players = append(players, strings.TrimSpace(p))
		}
	}
	return players
}

type pairSlot struct {
	key  string
	i, j int
	date int64
	tod  int
}

// EnumerateGroup produces the ordered, numbered round-robin matches of one
// group. Matches are sorted by (date, time) keeping enumeration order for
// ties; each distinct (date, time) gets the next base number and its members
// a 1-based suffix, shown only when the slot holds more than one match.
func EnumerateGroup(cat *models.Category, g *models.Group) []*models.ScheduledMatch {
	players := GroupPlayers(g)
	firstDate := cat.FirstDate()

	pairs := make([]pairSlot, 0, len(players)*(len(players)-1)/2+len(g.Matches))
	if len(players) > 0 {
		for i := 0; i < len(players); i++ {
			for j := i + 1; j < len(players); j++ {
				pairs = append(pairs, pairSlot{key: PairKey(i, j), i: i, j: j})
			}
		}
	} else {
		for k := range g.Matches {
			i, j, ok := ParsePairKey(k)
			if !ok {
				continue
			}
			pairs = append(pairs, pairSlot{key: k, i: i, j: j})
		}
		sort.Slice(pairs, func(a, b int) bool {
			if pairs[a].i != pairs[b].i {
				return pairs[a].i < pairs[b].i
			}
			return pairs[a].j < pairs[b].j
		})
	}

	for n := range pairs {
		rec := g.Matches[pairs[n].key]
		pairs[n].date = dateValue(rec.String(models.RecordDate), firstDate)
		pairs[n].tod = timeValue(rec.String(models.RecordTime))
	}
	sort.SliceStable(pairs, func(a, b int) bool {
		if pairs[a].date != pairs[b].date {
			return pairs[a].date < pairs[b].date
		}
		return pairs[a].tod < pairs[b].tod
	})

	type slotKey struct {
		date int64
		tod  int
	}
	rank := make(map[slotKey]int)
	size := make(map[slotKey]int)
	base := make([]int, len(pairs))
	suffix := make([]int, len(pairs))
	for n, p := range pairs {
		sk := slotKey{p.date, p.tod}
		if _, ok := rank[sk]; !ok {
			rank[sk] = len(rank) + 1
		}
		size[sk]++
		base[n] = rank[sk]
		suffix[n] = size[sk]
	}

	letter := GroupLetter(g)
	label := cat.Label()
	out := make([]*models.ScheduledMatch, 0, len(pairs))
	for n, p := range pairs {
		rec := g.Matches[p.key]

		number := strconv.Itoa(base[n])
		if size[slotKey{p.date, p.tod}] > 1 {
			number = fmt.Sprintf("%d.%d", base[n], suffix[n])
		}

		seed1 := fmt.Sprintf("%s%d", letter, p.i+1)
		seed2 := fmt.Sprintf("%s%d", letter, p.j+1)
		m := &models.ScheduledMatch{
			ID:            fmt.Sprintf("rr-%s-%s-%s", cat.ID, g.ID, p.key),
			Type:          models.MatchTypeGroup,
			Category:      label,
			CategoryID:    cat.ID,
			Bracket:       letter,
			GroupID:       g.ID,
			MatchKey:      p.key,
			MatchNumber:   "G" + number,
			DisplayNumber: "G" + letter + number,
			Seed1:         seed1,
			Seed2:         seed2,
			SeedVs:        seed1 + " vs " + seed2,
			Stage:         models.StageRoundRobin,
			Date:          rec.String(models.RecordDate),
			Time:          rec.String(models.RecordTime),
			Court:         rec.String(models.RecordCourt),
			Venue:         rec.String(models.RecordVenue),
		}
		m.SetPlayers(
			sideText(players, p.i, rec, models.RecordPlayer1Name, models.RecordPlayer1),
			sideText(players, p.j, rec, models.RecordPlayer2Name, models.RecordPlayer2),
		)
		out = append(out, m)
	}
	return out
}

func sideText(players []string, idx int, rec models.MatchRecord, keys ...string) string {
	if idx < len(players) && players[idx] != "" {
		return players[idx]
	}
	for _, k := range keys {
		if v := strings.TrimSpace(rec.String(k)); v != "" {
			return v
		}
	}
	return models.PlaceholderTBD
}

var clockPattern = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

// dateValue turns an overlay date (or the fallback) into a sort key; anything
// unparseable sorts as 0.
func dateValue(raw, fallback string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = strings.TrimSpace(fallback)
	}
	if raw == "" {
		return 0
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.Unix()
		}
	}
	return 0
}

// timeValue turns "H:MM" into minutes since midnight, 0 otherwise.
func timeValue(raw string) int {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return h*60 + mm
}
