package brackets

import (
	"strconv"
	"strings"

	"github.com/dastin1501/PPL-Referee/models"
)

// DetectEntrantKind derives the entrant kind from a division name.
func DetectEntrantKind(division string) models.EntrantKind {
	name := strings.ToLower(division)
	switch {
	case strings.Contains(name, "doubles"):
		return models.EntrantDoubles
	case strings.Contains(name, "team"):
		return models.EntrantTeam
	default:
		return models.EntrantSingles
	}
}

func personName(p *models.PersonRef) string {
	if p == nil {
		return ""
	}
	if full := strings.TrimSpace(p.FirstName + " " + p.LastName); full != "" {
		return full
	}
	return strings.TrimSpace(p.Name)
}

// ResolveEntrant computes the display identity of a registration. It never
// returns an empty name and never leaks a record identifier.
func ResolveEntrant(reg models.Registration, kind models.EntrantKind) models.Entrant {
	e := models.Entrant{ID: strconv.Itoa(reg.ID), Kind: kind}

	switch kind {
	case models.EntrantDoubles:
		sides := make([]string, 0, 2)
		for _, p := range []*models.PersonRef{reg.Player, reg.Partner} {
			if n := personName(p); n != "" {
				sides = append(sides, n)
			}
		}
		e.DisplayName = strings.Join(sides, " / ")

	case models.EntrantTeam:
		if name := strings.TrimSpace(reg.TeamName); name != "" {
			e.DisplayName = name
			break
		}
		names := make([]string, 0, 2)
		for i := 0; i < len(reg.TeamMembers) && i < 2; i++ {
			m := reg.TeamMembers[i]
			if n := strings.TrimSpace(m.FirstName + " " + m.LastName); n != "" {
				names = append(names, n)
			}
		}
		switch {
		case len(names) > 0:
			e.DisplayName = strings.Join(names, " / ")
		case reg.Player != nil && strings.TrimSpace(reg.Player.TeamName) != "":
			e.DisplayName = strings.TrimSpace(reg.Player.TeamName)
		case strings.TrimSpace(reg.PlayerName) != "":
			e.DisplayName = strings.TrimSpace(reg.PlayerName)
		default:
			e.DisplayName = "Team"
		}

	default:
		if n := strings.TrimSpace(reg.PlayerName); n != "" {
			e.DisplayName = n
		} else {
			e.DisplayName = personName(reg.Player)
		}
	}

	if e.DisplayName == "" {
		e.DisplayName = models.PlaceholderUnknown
	}
	return e
}

// IsApprovedFor reports whether a registration takes part in the category:
// approved, and referencing it by id or by division name.
func IsApprovedFor(reg models.Registration, cat *models.Category) bool {
	if !strings.EqualFold(string(reg.Status), string(models.RegistrationApproved)) {
		return false
	}
	if reg.CategoryID != "" && reg.CategoryID == cat.ID {
		return true
	}
	ref := reg.CategoryRef
	return ref != "" && (ref == cat.ID || ref == cat.Division)
}

// ResolveEntrants filters registrations to the category's approved entries
// and resolves each one, keeping registration order.
func ResolveEntrants(regs []models.Registration, cat *models.Category) []models.Entrant {
	kind := cat.EntrantKind
	if kind == "" {
		kind = DetectEntrantKind(cat.Division)
	}
	out := make([]models.Entrant, 0, len(regs))
	for _, reg := range regs {
		if IsApprovedFor(reg, cat) {
			out = append(out, ResolveEntrant(reg, kind))
		}
	}
	return out
}
