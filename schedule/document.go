package schedule

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/dastin1501/PPL-Referee/models"
	"github.com/google/uuid"
)

type rawVenue struct {
	Name          string                 `json:"name"`
	VenueName     string                 `json:"venueName"`
	CourtCount    int                    `json:"courtCount"`
	TimeSlots     []json.RawMessage      `json:"timeSlots"`
	Assignments   [][]*models.Assignment `json:"assignments"`
	SlotSeriesLen int                    `json:"slotSeriesLen"`
}

type rawDocument struct {
	ScheduleDate string                 `json:"scheduleDate"`
	CourtCount   int                    `json:"courtCount"`
	TimeSlots    []json.RawMessage      `json:"timeSlots"`
	Assignments  [][]*models.Assignment `json:"assignments"`
	Venues       []rawVenue             `json:"venues"`
	Version      int                    `json:"version"`
}

// ParseDocument decodes a stored schedule document, accepting the legacy
// forms: plain "HH:MM" strings as time slots, a single venue described only by
// the top-level fields, and venues without assignments. The result is a Grid
// normalized so that every venue has one row per slot and one cell per court.
func ParseDocument(data []byte, d Defaults) (*Grid, int, error) {
	var raw rawDocument
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, 0, fmt.Errorf("decode schedule document: %w", err)
	}
	g := &Grid{date: raw.ScheduleDate, newID: uuid.NewString}

	if len(raw.Venues) > 0 {
		for i, rv := range raw.Venues {
			name := rv.Name
			if name == "" {
				name = rv.VenueName
			}
			if name == "" {
				name = "Venue " + strconv.Itoa(i+1)
			}
			ven, err := g.normalizeVenue(name, rv.CourtCount, rv.TimeSlots, rv.Assignments, 1)
			if err != nil {
				return nil, 0, fmt.Errorf("venue %d: %w", i, err)
			}
			ven.SlotSeriesLen = rv.SlotSeriesLen
			g.venues = append(g.venues, ven)
		}
		return g, raw.Version, nil
	}

	ven, err := g.normalizeVenue(d.venueName(), raw.CourtCount, raw.TimeSlots, raw.Assignments, d.courtCount())
	if err != nil {
		return nil, 0, err
	}
	g.venues = []*models.Venue{ven}
	return g, raw.Version, nil
}

func (g *Grid) normalizeVenue(name string, courts int, rawSlots []json.RawMessage, rows [][]*models.Assignment, fallbackCourts int) (*models.Venue, error) {
	slots := make([]models.ScheduleSlot, 0, len(rawSlots))
	for i, rs := range rawSlots {
		slot, err := g.decodeSlot(rs)
		if err != nil {
			return nil, fmt.Errorf("time slot %d: %w", i, err)
		}
		slots = append(slots, slot)
	}

	if courts < 1 {
		for _, row := range rows {
			if len(row) > courts {
				courts = len(row)
			}
		}
	}
	if courts < 1 {
		courts = fallbackCourts
	}

	ven := newVenue(name, courts)
	ven.TimeSlots = slots
	ven.Assignments = make([][]*models.Assignment, len(slots))
	for r := range slots {
		var row []*models.Assignment
		if r < len(rows) {
			row = rows[r]
		}
		ven.Assignments[r] = resizeRow(row, courts)
		for c, a := range ven.Assignments[r] {
			if a != nil && a.ID == "" && !a.IsNote() {
				ven.Assignments[r][c] = nil
			}
		}
	}
	return ven, nil
}

func (g *Grid) decodeSlot(data json.RawMessage) (models.ScheduleSlot, error) {
	var start string
	if err := json.Unmarshal(data, &start); err == nil {
		return models.ScheduleSlot{ID: g.newID(), StartTime: strings.TrimSpace(start)}, nil
	}
	var slot models.ScheduleSlot
	if err := json.Unmarshal(data, &slot); err != nil {
		return slot, err
	}
	if slot.ID == "" {
		slot.ID = g.newID()
	}
	return slot, nil
}

// Document exports the grid. The top-level court count, slots and assignments
// mirror the selected venue.
func (g *Grid) Document(selected int) *models.ScheduleDocument {
	doc := &models.ScheduleDocument{
		ScheduleDate: g.date,
		Venues:       make([]models.Venue, len(g.venues)),
	}
	for i, v := range g.venues {
		doc.Venues[i] = cloneVenue(v)
	}
	if selected < 0 || selected >= len(doc.Venues) {
		selected = 0
	}
	if len(doc.Venues) > 0 {
		cur := cloneVenue(g.venues[selected])
		doc.CourtCount = cur.CourtCount
		doc.TimeSlots = cur.TimeSlots
		doc.Assignments = cur.Assignments
	}
	return doc
}

// FromDocument rebuilds a grid from an exported document.
func FromDocument(doc *models.ScheduleDocument, d Defaults) (*Grid, error) {
	data, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode schedule document: %w", err)
	}
	g, _, err := ParseDocument(data, d)
	return g, err
}

// BracketUpdates derives the group overlay writes implied by this grid: every
// placed group match gets this day's date, its slot start time, its 1-based
// court and its venue name. Group matches the categories still record on this
// day but that are no longer placed get their date, time and court cleared.
func (g *Grid) BracketUpdates(matches []*models.ScheduledMatch, categories []*models.Category) models.BracketUpdates {
	byID := make(map[string]*models.ScheduledMatch, len(matches))
	for _, m := range matches {
		byID[m.ID] = m
	}

	out := make(models.BracketUpdates)
	type placedKey struct{ cat, group, key string }
	placed := make(map[placedKey]bool)
	day := strings.TrimSpace(g.date)

	for _, ven := range g.venues {
		for r, row := range ven.Assignments {
			start := ""
			if r < len(ven.TimeSlots) {
				start = strings.TrimSpace(ven.TimeSlots[r].StartTime)
			}
			for c, a := range row {
				if !a.IsMatch() {
					continue
				}
				m, ok := byID[a.ID]
				if !ok || m.Type != models.MatchTypeGroup || m.MatchKey == "" {
					continue
				}
				groupID := m.GroupID
				if groupID == "" {
					groupID = "group-" + strings.ToLower(m.Bracket)
				}
				out.Set(m.CategoryID, groupID, m.MatchKey, models.MatchScheduleUpdate{
					Date:  day,
					Time:  start,
					Court: strconv.Itoa(c + 1),
					Venue: ven.Name,
				})
				placed[placedKey{m.CategoryID, groupID, m.MatchKey}] = true
			}
		}
	}

	if day == "" {
		return out
	}
	for _, cat := range categories {
		for _, grp := range cat.Groups {
			for key, rec := range grp.Matches {
				if strings.TrimSpace(rec.String(models.RecordDate)) != day {
					continue
				}
				if placed[placedKey{cat.ID, grp.ID, key}] {
					continue
				}
				out.Set(cat.ID, grp.ID, key, models.MatchScheduleUpdate{})
			}
		}
	}
	return out
}
