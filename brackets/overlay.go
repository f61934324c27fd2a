package brackets

import "github.com/dastin1501/PPL-Referee/models"

// MergeOverlays merges two keyed overlay maps. Keys from both sides survive;
// for a shared key every field of overlay wins over base. Inputs are not
// modified.
func MergeOverlays(base, overlay map[string]models.MatchRecord) map[string]models.MatchRecord {
	out := make(map[string]models.MatchRecord, len(base)+len(overlay))
	for k, rec := range base {
		out[k] = rec.Clone()
	}
	for k, rec := range overlay {
		if cur, ok := out[k]; ok {
			out[k] = cur.Merge(rec)
		} else {
			out[k] = rec.Clone()
		}
	}
	return out
}

// ApplyPersistedGroups carries persisted group state onto freshly allocated
// groups with the same id: match overlays are merged on pair key, and stored
// standings replace the zero standings when they cover exactly the group's
// current entrants.
func ApplyPersistedGroups(fresh, persisted []*models.Group) {
	byID := make(map[string]*models.Group, len(persisted))
	for _, g := range persisted {
		if g != nil {
			byID[g.ID] = g
		}
	}
	for _, g := range fresh {
		old, ok := byID[g.ID]
		if !ok {
			continue
		}
		g.Matches = MergeOverlays(g.Matches, old.Matches)
		if sameEntrants(g.Entrants, old.Standings) {
			g.Standings = append([]models.Standing(nil), old.Standings...)
		}
	}
}

func sameEntrants(entrants []models.Entrant, standings []models.Standing) bool {
	if len(standings) == 0 || len(entrants) != len(standings) {
		return false
	}
	names := make(map[string]int, len(entrants))
	for _, e := range entrants {
		names[e.DisplayName]++
	}
	for _, s := range standings {
		if names[s.Entrant.DisplayName] == 0 {
			return false
		}
		names[s.Entrant.DisplayName]--
	}
	return true
}
