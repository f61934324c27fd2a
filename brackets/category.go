package brackets

import (
	"context"
	"fmt"

	"github.com/dastin1501/PPL-Referee/models"
)

// BuildCategory recomputes a category from its registrations: entrants are
// resolved and allocated into groups, persisted group state is merged back on
// key, and the elimination template is generated and resolved. A category
// without approved entrants gets no groups and no elimination stage. The
// input category is not modified.
func BuildCategory(cat *models.Category, regs []models.Registration, persisted []*models.Group) *models.Category {
	out := *cat
	if out.EntrantKind == "" {
		out.EntrantKind = DetectEntrantKind(out.Division)
	}
	out.BracketSize = NormalizeBracketSize(cat.BracketSize)
	out.TournamentDates = append([]string(nil), cat.TournamentDates...)
	out.EliminationOverlay = MergeOverlays(nil, cat.EliminationOverlay)

	entrants := ResolveEntrants(regs, &out)
	if len(entrants) == 0 {
		out.Groups = []*models.Group{}
		out.EliminationMatches = []*models.EliminationMatch{}
		return &out
	}
	out.Groups = AllocateGroups(entrants, out.BracketSize)
	ApplyPersistedGroups(out.Groups, persisted)

	out.EliminationMatches = GenerateElimination(out.BracketSize)
	ResolveElimination(out.EliminationMatches, NewSeedTable(out.Groups), out.EliminationOverlay)
	return &out
}

// DefaultGenerators is the generator chain used for the unified match list.
func DefaultGenerators() []BracketGenerator {
	return []BracketGenerator{NewRoundRobinGenerator(), NewSingleEliminationGenerator()}
}

// UnifiedMatches runs the generators over a built category and then the seed
// resolution pass, returning group matches followed by elimination matches.
func UnifiedMatches(ctx context.Context, cat *models.Category, generators ...BracketGenerator) ([]*models.ScheduledMatch, error) {
	if len(generators) == 0 {
		generators = DefaultGenerators()
	}
	params := GenerateBracketParams{Category: cat}
	matches := make([]*models.ScheduledMatch, 0)
	for _, g := range generators {
		generated, err := g.GenerateBracket(ctx, params)
		if err != nil {
			return nil, fmt.Errorf("%s generator failed for category %s: %w", g.GetName(), cat.ID, err)
		}
		matches = append(matches, generated...)
	}
	ResolveMatches(matches, NewSeedTable(cat.Groups))
	return matches, nil
}

// SubmissionState tells whether a category's points can be submitted.
type SubmissionState struct {
	Submittable bool     `json:"submittable"`
	CanSubmit   bool     `json:"can_submit"`
	Unresolved  []string `json:"unresolved,omitempty"`
}

// CheckSubmission reports a category as submittable when it has at least one
// entrant and every group seed feeding the elimination stage resolves to an
// entrant. Submission itself is further gated on the caller's role.
func CheckSubmission(cat *models.Category, role models.UserRole) SubmissionState {
	var st SubmissionState
	table := NewSeedTable(cat.Groups)
	for _, m := range cat.EliminationMatches {
		for _, ref := range []models.SeedRef{m.Seed1, m.Seed2} {
			if ref.Kind != models.SeedDirect {
				continue
			}
			if _, ok := table.Lookup(ref.Letter, ref.Index); !ok {
				st.Unresolved = append(st.Unresolved, ref.Token())
			}
		}
	}
	st.Submittable = hasEntrants(cat.Groups) && len(st.Unresolved) == 0
	st.CanSubmit = st.Submittable && role.CanSubmitPoints()
	return st
}

func hasEntrants(groups []*models.Group) bool {
	for _, g := range groups {
		if len(g.Entrants) > 0 {
			return true
		}
	}
	return false
}
