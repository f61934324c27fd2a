package models

import "time"

// RegistrationStatus mirrors the registration status values stored in the DB.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationApproved RegistrationStatus = "approved"
	RegistrationRejected RegistrationStatus = "rejected"
	RegistrationReserved RegistrationStatus = "reserved"
	RegistrationWaiting  RegistrationStatus = "waiting"
)

// PersonRef is a denormalized player record attached to a registration.
type PersonRef struct {
	ID        string `json:"id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Name      string `json:"name,omitempty"`
	TeamName  string `json:"team_name,omitempty"`
}

// Registration is a raw entry for one category of a tournament.
// CategoryRef holds either the category ID or its division name.
type Registration struct {
	ID           int                `json:"id" db:"id"`
	TournamentID int                `json:"tournament_id" db:"tournament_id"`
	CategoryID   string             `json:"category_id,omitempty" db:"category_id"`
	CategoryRef  string             `json:"category_ref,omitempty" db:"category_ref"`
	Status       RegistrationStatus `json:"status" db:"status"`
	PlayerName   string             `json:"player_name,omitempty" db:"player_name"`
	TeamName     string             `json:"team_name,omitempty" db:"team_name"`
	Player       *PersonRef         `json:"player,omitempty" db:"player"`
	Partner      *PersonRef         `json:"partner,omitempty" db:"partner"`
	TeamMembers  []PersonRef        `json:"team_members,omitempty" db:"team_members"`
	CreatedAt    time.Time          `json:"created_at" db:"created_at"`
}

// EntrantKind is how a category fields its sides.
type EntrantKind string

const (
	EntrantSingles EntrantKind = "singles"
	EntrantDoubles EntrantKind = "doubles"
	EntrantTeam    EntrantKind = "team"
)

// Entrant is the canonical display identity derived from a registration.
type Entrant struct {
	ID          string      `json:"id"`
	DisplayName string      `json:"display_name"`
	Kind        EntrantKind `json:"kind"`
}
