package models

import "time"

// Tournament is the slice of tournament data the bracket and schedule engine needs.
type Tournament struct {
	ID        int       `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	VenueName string    `json:"venue_name,omitempty" db:"venue_name"`
	Dates     []string  `json:"dates" db:"dates"` // YYYY-MM-DD, ascending
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	Categories []*Category `json:"categories,omitempty" db:"-"`
}

// FirstDate returns the first tournament day or "".
func (t *Tournament) FirstDate() string {
	if t == nil || len(t.Dates) == 0 {
		return ""
	}
	return t.Dates[0]
}
