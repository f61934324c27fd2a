package schedule

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/dastin1501/PPL-Referee/models"
	"github.com/google/uuid"
)

const (
	DefaultCourtCount = 4
	DefaultVenueName  = "Venue 1"
)

// Defaults are used when a grid is created or a legacy document lacks data.
type Defaults struct {
	CourtCount int
	VenueName  string
}

func (d Defaults) courtCount() int {
	if d.CourtCount < 1 {
		return DefaultCourtCount
	}
	return d.CourtCount
}

func (d Defaults) venueName() string {
	if strings.TrimSpace(d.VenueName) == "" {
		return DefaultVenueName
	}
	return d.VenueName
}

// Grid is the schedule of one day: a list of venues, each a slots x courts
// matrix. Every mutation either applies fully or returns an error and leaves
// the grid untouched.
type Grid struct {
	date   string
	venues []*models.Venue
	newID  func() string
}

// NewGrid returns a grid with one empty venue.
func NewGrid(date string, d Defaults) *Grid {
	g := &Grid{date: date, newID: uuid.NewString}
	g.venues = []*models.Venue{newVenue(d.venueName(), d.courtCount())}
	return g
}

func newVenue(name string, courts int) *models.Venue {
	return &models.Venue{
		Name:        name,
		CourtCount:  courts,
		TimeSlots:   []models.ScheduleSlot{},
		Assignments: [][]*models.Assignment{},
	}
}

// SetIDGenerator replaces the slot/note id source.
func (g *Grid) SetIDGenerator(f func() string) {
	if f != nil {
		g.newID = f
	}
}

func (g *Grid) Date() string { return g.date }

func (g *Grid) VenueCount() int { return len(g.venues) }

// Venue returns a copy of a venue.
func (g *Grid) Venue(v int) (models.Venue, error) {
	if v < 0 || v >= len(g.venues) {
		return models.Venue{}, ErrVenueOutOfRange
	}
	return cloneVenue(g.venues[v]), nil
}

// Clone returns a deep copy sharing only the id generator.
func (g *Grid) Clone() *Grid {
	out := &Grid{date: g.date, newID: g.newID, venues: make([]*models.Venue, len(g.venues))}
	for i, v := range g.venues {
		c := cloneVenue(v)
		out.venues[i] = &c
	}
	return out
}

func cloneVenue(v *models.Venue) models.Venue {
	c := *v
	c.TimeSlots = append([]models.ScheduleSlot{}, v.TimeSlots...)
	c.Assignments = make([][]*models.Assignment, len(v.Assignments))
	for r, row := range v.Assignments {
		c.Assignments[r] = make([]*models.Assignment, len(row))
		for col, a := range row {
			if a != nil {
				cp := *a
				c.Assignments[r][col] = &cp
			}
		}
	}
	return c
}

func (g *Grid) venue(v int) (*models.Venue, error) {
	if v < 0 || v >= len(g.venues) {
		return nil, fmt.Errorf("venue %d: %w", v, ErrVenueOutOfRange)
	}
	return g.venues[v], nil
}

func (g *Grid) cell(v, row, col int) (*models.Venue, error) {
	ven, err := g.venue(v)
	if err != nil {
		return nil, err
	}
	if row < 0 || row >= len(ven.Assignments) || col < 0 || col >= ven.CourtCount {
		return nil, fmt.Errorf("venue %d cell (%d,%d): %w", v, row, col, ErrCellOutOfRange)
	}
	return ven, nil
}

// AddVenue appends an empty single-court venue and returns its index. An
// empty name becomes "Venue N".
func (g *Grid) AddVenue(name string) int {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "Venue " + strconv.Itoa(len(g.venues)+1)
	}
	g.venues = append(g.venues, newVenue(name, 1))
	return len(g.venues) - 1
}

// RenameVenue changes a venue's display name.
func (g *Grid) RenameVenue(v int, name string) error {
	ven, err := g.venue(v)
	if err != nil {
		return err
	}
	ven.Name = name
	return nil
}

// RemoveVenue deletes a venue; at least one must remain.
func (g *Grid) RemoveVenue(v int) error {
	if _, err := g.venue(v); err != nil {
		return err
	}
	if len(g.venues) <= 1 {
		return ErrLastVenue
	}
	g.venues = append(g.venues[:v], g.venues[v+1:]...)
	return nil
}

// SetCourtCount resizes every row of a venue to n courts (minimum 1), keeping
// placements in retained columns.
func (g *Grid) SetCourtCount(v, n int) error {
	ven, err := g.venue(v)
	if err != nil {
		return err
	}
	if n < 1 {
		n = 1
	}
	for r, row := range ven.Assignments {
		ven.Assignments[r] = resizeRow(row, n)
	}
	ven.CourtCount = n
	return nil
}

func resizeRow(row []*models.Assignment, n int) []*models.Assignment {
	if len(row) >= n {
		return row[:n:n]
	}
	out := make([]*models.Assignment, n)
	copy(out, row)
	return out
}

// buildSeries produces count chained slots and their empty rows.
func (g *Grid) buildSeries(start string, durationMinutes, count, courts int) ([]models.ScheduleSlot, [][]*models.Assignment, error) {
	startMin, ok := ParseClock(start)
	if !ok || durationMinutes <= 0 {
		return nil, nil, ErrInvalidSlotSeries
	}
	if count < 1 {
		count = 1
	}
	slots := make([]models.ScheduleSlot, 0, count)
	rows := make([][]*models.Assignment, 0, count)
	cur := FormatClock(startMin)
	for i := 0; i < count; i++ {
		end := EndTime(cur, durationMinutes)
		slots = append(slots, models.ScheduleSlot{
			ID:        g.newID(),
			StartTime: cur,
			Duration:  strconv.Itoa(durationMinutes),
			EndTime:   end,
		})
		rows = append(rows, make([]*models.Assignment, courts))
		cur = end
	}
	return slots, rows, nil
}

// AddSlotSeries appends count consecutive slots, each starting where the
// previous one ends, and returns them. Appending closes any open preview
// series, so later preview edits leave these slots alone.
func (g *Grid) AddSlotSeries(v int, start string, durationMinutes, count int) ([]models.ScheduleSlot, error) {
	ven, err := g.venue(v)
	if err != nil {
		return nil, err
	}
	slots, rows, err := g.buildSeries(start, durationMinutes, count, ven.CourtCount)
	if err != nil {
		return nil, err
	}
	ven.TimeSlots = append(ven.TimeSlots, slots...)
	ven.Assignments = append(ven.Assignments, rows...)
	ven.SlotSeriesLen = 0
	return slots, nil
}

// ReplaceTailSeries regenerates the series most recently produced by this
// method: the last SlotSeriesLen rows are replaced with a fresh series of
// count slots, so earlier slots survive a changing preview count.
func (g *Grid) ReplaceTailSeries(v int, start string, durationMinutes, count int) ([]models.ScheduleSlot, error) {
	ven, err := g.venue(v)
	if err != nil {
		return nil, err
	}
	slots, rows, err := g.buildSeries(start, durationMinutes, count, ven.CourtCount)
	if err != nil {
		return nil, err
	}
	keep := len(ven.TimeSlots) - ven.SlotSeriesLen
	if keep < 0 {
		keep = 0
	}
	keepRows := len(ven.Assignments) - ven.SlotSeriesLen
	if keepRows < 0 {
		keepRows = 0
	}
	ven.TimeSlots = append(ven.TimeSlots[:keep:keep], slots...)
	ven.Assignments = append(ven.Assignments[:keepRows:keepRows], rows...)
	ven.SlotSeriesLen = len(slots)
	return slots, nil
}

// CommitSeries stops tracking the tail series; the next ReplaceTailSeries
// appends instead of replacing.
func (g *Grid) CommitSeries(v int) error {
	ven, err := g.venue(v)
	if err != nil {
		return err
	}
	ven.SlotSeriesLen = 0
	return nil
}

// RemoveSlot deletes one time row and its placements.
func (g *Grid) RemoveSlot(v, row int) error {
	ven, err := g.venue(v)
	if err != nil {
		return err
	}
	if row < 0 || row >= len(ven.TimeSlots) {
		return fmt.Errorf("venue %d slot %d: %w", v, row, ErrSlotOutOfRange)
	}
	ven.TimeSlots = append(ven.TimeSlots[:row:row], ven.TimeSlots[row+1:]...)
	if row < len(ven.Assignments) {
		ven.Assignments = append(ven.Assignments[:row:row], ven.Assignments[row+1:]...)
	}
	ven.SlotSeriesLen = 0
	return nil
}

// NextSlotHint suggests the start and duration for the next slot of a venue:
// the last slot's end (or start) and its duration.
func (g *Grid) NextSlotHint(v int) (start, duration string, err error) {
	ven, err := g.venue(v)
	if err != nil {
		return "", "", err
	}
	if len(ven.TimeSlots) == 0 {
		return "", "", nil
	}
	last := ven.TimeSlots[len(ven.TimeSlots)-1]
	start = last.EndTime
	if start == "" {
		start = last.StartTime
	}
	return start, last.Duration, nil
}

// Locate finds the cell holding a match anywhere in the grid.
func (g *Grid) Locate(matchID string) (v, row, col int, ok bool) {
	for vi, ven := range g.venues {
		for r, cells := range ven.Assignments {
			for c, a := range cells {
				if a.IsMatch() && a.ID == matchID {
					return vi, r, c, true
				}
			}
		}
	}
	return 0, 0, 0, false
}

// Place moves a match into a cell. Its previous cell, in any venue, is
// cleared first; whatever the destination held is replaced.
func (g *Grid) Place(v, row, col int, m *models.ScheduledMatch) error {
	if m == nil || m.ID == "" {
		return ErrMatchRequired
	}
	ven, err := g.cell(v, row, col)
	if err != nil {
		return err
	}
	if pv, pr, pc, ok := g.Locate(m.ID); ok {
		g.venues[pv].Assignments[pr][pc] = nil
	}
	ven.Assignments[row][col] = models.PlacementFor(m)
	return nil
}

// Clear empties a cell. A match placed there becomes available again.
func (g *Grid) Clear(v, row, col int) error {
	ven, err := g.cell(v, row, col)
	if err != nil {
		return err
	}
	ven.Assignments[row][col] = nil
	return nil
}

// SetNote puts a free-text note in a cell, replacing any placement. Blank text
// clears the cell.
func (g *Grid) SetNote(v, row, col int, text string) error {
	ven, err := g.cell(v, row, col)
	if err != nil {
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" {
		ven.Assignments[row][col] = nil
		return nil
	}
	ven.Assignments[row][col] = &models.Assignment{
		ID:   "note-" + g.newID(),
		Type: models.AssignmentNote,
		Text: text,
	}
	return nil
}

// PlacedIDs returns the ids of all placed matches.
func (g *Grid) PlacedIDs() map[string]struct{} {
	ids := make(map[string]struct{})
	for _, ven := range g.venues {
		for _, cells := range ven.Assignments {
			for _, a := range cells {
				if a.IsMatch() {
					ids[a.ID] = struct{}{}
				}
			}
		}
	}
	return ids
}

// WithDate returns a copy of the grid for the given day.
func (g *Grid) WithDate(date string) *Grid {
	c := g.Clone()
	c.date = date
	return c
}

// DuplicatePlacements lists match ids placed in more than one cell.
func (g *Grid) DuplicatePlacements() []string {
	seen := make(map[string]int)
	var dups []string
	for _, ven := range g.venues {
		for _, cells := range ven.Assignments {
			for _, a := range cells {
				if !a.IsMatch() {
					continue
				}
				seen[a.ID]++
				if seen[a.ID] == 2 {
					dups = append(dups, a.ID)
				}
			}
		}
	}
	return dups
}
