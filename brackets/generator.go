package brackets

import (
	"context"

	"github.com/dastin1501/PPL-Referee/models"
)

// GenerateBracketParams carries a category whose groups are already allocated.
type GenerateBracketParams struct {
	Category *models.Category
}

// BracketGenerator turns a category into display-ready matches for the
// unified match list.
type BracketGenerator interface {
	GenerateBracket(ctx context.Context, params GenerateBracketParams) ([]*models.ScheduledMatch, error)

	GetName() string
}
