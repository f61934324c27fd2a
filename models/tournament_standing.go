package models

// Standing is a per-entrant aggregate inside a group.
// Score submission updates it outside the engine; allocation only zeroes it.
type Standing struct {
	Entrant       Entrant `json:"entrant"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	PointsFor     int     `json:"points_for"`
	PointsAgainst int     `json:"points_against"`
	Qualified     bool    `json:"qualified"`
}

// NewStanding returns the zero standing for an entrant.
func NewStanding(e Entrant) Standing {
	return Standing{Entrant: e}
}
