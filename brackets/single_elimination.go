package brackets

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/dastin1501/PPL-Referee/models"
)

// templateMatch is one row of a fixed seeding table.
type templateMatch struct {
	key   string
	code  string
	stage string
	seed1 models.SeedRef
	seed2 models.SeedRef
}

func direct(token string) models.SeedRef {
	l, n, _ := ParseSeed(token)
	return models.DirectSeed(l, n)
}

func winnerOf(key, code string) models.SeedRef {
	return models.MatchOutcome(key, code, models.OutcomeWinner)
}

func loserOf(key, code string) models.SeedRef {
	return models.MatchOutcome(key, code, models.OutcomeLoser)
}

func pair(key, code, stage string, s1, s2 models.SeedRef) templateMatch {
	return templateMatch{key: key, code: code, stage: stage, seed1: s1, seed2: s2}
}

// Rounds after the first are shared by every size >= 2.
var (
	medalRounds = []templateMatch{
		pair("bronze", "BRZ", models.StageBronze, loserOf("sf1", "SF1"), loserOf("sf2", "SF2")),
		pair("final", "FINAL", models.StageGold, winnerOf("sf1", "SF1"), winnerOf("sf2", "SF2")),
	}
	semisFromQuarters = []templateMatch{
		pair("sf1", "SF1", models.StageSemiFinal, winnerOf("qf1", "QF1"), winnerOf("qf2", "QF2")),
		pair("sf2", "SF2", models.StageSemiFinal, winnerOf("qf3", "QF3"), winnerOf("qf4", "QF4")),
	}
)

func concat(parts ...[]templateMatch) []templateMatch {
	var out []templateMatch
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// eliminationTemplates are fixed seeding tables with a bronze match. Rows are
// ordered so every outcome reference points at an earlier row.
var eliminationTemplates = map[int][]templateMatch{
	1: {
		pair("final", "FINAL", models.StageGold, direct("A1"), direct("A2")),
		pair("bronze", "BRZ", models.StageBronze, direct("A3"), direct("A4")),
	},
	2: concat([]templateMatch{
		pair("sf1", "SF1", models.StageSemiFinal, direct("A1"), direct("B2")),
		pair("sf2", "SF2", models.StageSemiFinal, direct("B1"), direct("A2")),
	}, medalRounds),
	4: concat([]templateMatch{
		pair("qf1", "QF1", models.StageQuarterFinal, direct("A1"), direct("D2")),
		pair("qf2", "QF2", models.StageQuarterFinal, direct("B1"), direct("C2")),
		pair("qf3", "QF3", models.StageQuarterFinal, direct("C1"), direct("B2")),
		pair("qf4", "QF4", models.StageQuarterFinal, direct("D1"), direct("A2")),
	}, semisFromQuarters, medalRounds),
	8: concat([]templateMatch{
		pair("r16-1", "R16-1", models.StageRoundOf16, direct("A1"), direct("H2")),
		pair("r16-2", "R16-2", models.StageRoundOf16, direct("B1"), direct("G2")),
		pair("r16-3", "R16-3", models.StageRoundOf16, direct("C1"), direct("F2")),
		pair("r16-4", "R16-4", models.StageRoundOf16, direct("D1"), direct("E2")),
		pair("r16-5", "R16-5", models.StageRoundOf16, direct("E1"), direct("D2")),
		pair("r16-6", "R16-6", models.StageRoundOf16, direct("F1"), direct("C2")),
		pair("r16-7", "R16-7", models.StageRoundOf16, direct("G1"), direct("B2")),
		pair("r16-8", "R16-8", models.StageRoundOf16, direct("H1"), direct("A2")),
		pair("qf1", "QF1", models.StageQuarterFinal, winnerOf("r16-1", "R16-1"), winnerOf("r16-2", "R16-2")),
		pair("qf2", "QF2", models.StageQuarterFinal, winnerOf("r16-3", "R16-3"), winnerOf("r16-4", "R16-4")),
		pair("qf3", "QF3", models.StageQuarterFinal, winnerOf("r16-5", "R16-5"), winnerOf("r16-6", "R16-6")),
		pair("qf4", "QF4", models.StageQuarterFinal, winnerOf("r16-7", "R16-7"), winnerOf("r16-8", "R16-8")),
	}, semisFromQuarters, medalRounds),
}

// GenerateElimination instantiates the template for a bracket size. Sides
// hold their symbolic text until ResolveElimination runs.
func GenerateElimination(bracketSize int) []*models.EliminationMatch {
	tpl := eliminationTemplates[NormalizeBracketSize(bracketSize)]
	out := make([]*models.EliminationMatch, len(tpl))
	for i, t := range tpl {
		out[i] = &models.EliminationMatch{
			Key:     t.key,
			Code:    t.code,
			Stage:   t.stage,
			Seed1:   t.seed1,
			Seed2:   t.seed2,
			Player1: t.seed1.String(),
			Player2: t.seed2.String(),
		}
	}
	return out
}

type result struct {
	winner, loser string
}

// ResolveElimination fills in player names in one forward pass. Direct seeds
// resolve from the seed table; outcome references resolve once the referenced
// match has a recorded winner and otherwise read "Winner QF1" / "Loser SF2".
// Explicit player names and results stored in overlay take precedence.
func ResolveElimination(matches []*models.EliminationMatch, table SeedTable, overlay map[string]models.MatchRecord) {
	results := make(map[string]result, len(matches))
	side := func(ref models.SeedRef) string {
		if ref.Kind == models.SeedDirect {
			return table.Resolve(ref.Token())
		}
		if r, ok := results[ref.MatchKey]; ok {
			name := r.winner
			if ref.Outcome == models.OutcomeLoser {
				name = r.loser
			}
			if name != "" {
				return name
			}
		}
		return ref.String()
	}

	for _, m := range matches {
		rec := overlay[m.Key]
		m.Player1 = explicitName(rec, side(m.Seed1), models.RecordPlayer1Name, models.RecordPlayer1)
		m.Player2 = explicitName(rec, side(m.Seed2), models.RecordPlayer2Name, models.RecordPlayer2)
		m.Winner = strings.TrimSpace(rec.String(models.RecordWinner))
		m.Date = rec.String(models.RecordDate)
		m.Time = rec.String(models.RecordTime)
		m.Court = rec.String(models.RecordCourt)
		m.Venue = rec.String(models.RecordVenue)

		switch {
		case m.Winner == "":
		case m.Winner == m.Player1:
			results[m.Key] = result{winner: m.Player1, loser: m.Player2}
		case m.Winner == m.Player2:
			results[m.Key] = result{winner: m.Player2, loser: m.Player1}
		default:
			results[m.Key] = result{winner: m.Winner}
		}
	}
}

func explicitName(rec models.MatchRecord, fallback string, keys ...string) string {
	for _, k := range keys {
		if v := strings.TrimSpace(rec.String(k)); v != "" && !models.IsPlaceholderName(v) {
			return v
		}
	}
	return fallback
}

type SingleEliminationGenerator struct{}

func NewSingleEliminationGenerator() BracketGenerator {
	return &SingleEliminationGenerator{}
}

func (g *SingleEliminationGenerator) GetName() string {
	return "SingleElimination"
}

// GenerateBracket builds the elimination stage for the category's bracket
// size. A category without entrants has no elimination stage.
func (g *SingleEliminationGenerator) GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.ScheduledMatch, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cat := params.Category
	if cat == nil {
		return nil, errors.New("SingleEliminationGenerator: category is required")
	}
	if !hasEntrants(cat.Groups) {
		return []*models.ScheduledMatch{}, nil
	}

	elim := cat.EliminationMatches
	if len(elim) == 0 {
		elim = GenerateElimination(EliminationSize(cat))
		ResolveElimination(elim, NewSeedTable(cat.Groups), cat.EliminationOverlay)
	}
	return EliminationListItems(cat, elim), nil
}

// EliminationSize is the bracket size driving the elimination template: the
// configured size when valid, else the number of groups.
func EliminationSize(cat *models.Category) int {
	switch cat.BracketSize {
	case 1, 2, 4, 8:
		return cat.BracketSize
	}
	return NormalizeBracketSize(len(cat.Groups))
}

// EliminationListItems converts elimination matches to unified list items.
func EliminationListItems(cat *models.Category, elim []*models.EliminationMatch) []*models.ScheduledMatch {
	label := cat.Label()
	out := make([]*models.ScheduledMatch, 0, len(elim))
	for _, em := range elim {
		s1, s2 := em.Seed1.Token(), em.Seed2.Token()
		m := &models.ScheduledMatch{
			ID:            fmt.Sprintf("elimgen-%s-%s", cat.ID, em.Key),
			Type:          models.MatchTypeElimination,
			Category:      label,
			CategoryID:    cat.ID,
			MatchKey:      em.Key,
			MatchNumber:   em.Code,
			DisplayNumber: em.Code,
			Seed1:         s1,
			Seed2:         s2,
			SeedVs:        s1 + " vs " + s2,
			Stage:         em.Stage,
			Date:          em.Date,
			Time:          em.Time,
			Court:         em.Court,
			Venue:         em.Venue,
		}
		m.SetPlayers(em.Player1, em.Player2)
		out = append(out, m)
	}
	return out
}

var roundNumber = regexp.MustCompile(`(\d+)`)

// StageFromRound maps a free-text round title to a stage label.
func StageFromRound(round string) string {
	r := strings.ToLower(strings.TrimSpace(round))
	switch {
	case strings.Contains(r, "bronze"):
		return models.StageBronze
	case strings.Contains(r, "quarter"):
		return models.StageQuarterFinal
	case strings.Contains(r, "semi"):
		return models.StageSemiFinal
	case strings.Contains(r, "round of 16"), strings.Contains(r, "r16"):
		return models.StageRoundOf16
	case strings.Contains(r, "battle for gold"), r == "final", strings.HasPrefix(r, "final:"):
		return models.StageGold
	case r == "":
		return "Elimination"
	}
	return strings.TrimSpace(round)
}

// CodeFromRound maps a free-text round title to a display code.
func CodeFromRound(round string) string {
	s := strings.TrimSpace(round)
	lower := strings.ToLower(s)
	n := roundNumber.FindString(s)
	switch {
	case strings.Contains(lower, "round of 16"), strings.Contains(lower, "r16"):
		nums := roundNumber.FindAllString(s, -1)
		for i := len(nums) - 1; i >= 0; i-- {
			if nums[i] != "16" {
				return "R16-" + nums[i]
			}
		}
		return "R16"
	case strings.Contains(lower, "quarter"):
		return "QF" + n
	case strings.Contains(lower, "semi"):
		return "SF" + n
	case strings.Contains(lower, "bronze"):
		return "BRZ"
	case strings.Contains(lower, "final"):
		return "FINAL"
	case s == "":
		return "ELIM"
	}
	return strings.ToUpper(s)
}

// KeyForCode returns the template key of a display code ("QF2" -> "qf2").
func KeyForCode(code string) string {
	switch code {
	case "BRZ":
		return "bronze"
	case "FINAL":
		return "final"
	}
	return strings.ToLower(code)
}

// LegacyEliminationOverlay converts stored elimination records that carry a
// free-text round/title instead of a template key into an overlay keyed by
// template key. Records whose code cannot be placed are skipped.
func LegacyEliminationOverlay(records []models.MatchRecord) map[string]models.MatchRecord {
	out := make(map[string]models.MatchRecord, len(records))
	for _, rec := range records {
		code := strings.TrimSpace(rec.String("matchId"))
		if code == "" {
			round := rec.String("round")
			if round == "" {
				round = rec.String("title")
			}
			code = CodeFromRound(round)
		}
		key := KeyForCode(strings.ToUpper(code))
		if key == "" || key == "elim" {
			continue
		}
		out[key] = rec.Clone()
	}
	return out
}
