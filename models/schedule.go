package models

// Schedule documents keep the camelCase shape collaborators already persist,
// so they can be written back verbatim.

// ScheduleSlot is one time row of a venue grid.
type ScheduleSlot struct {
	ID        string `json:"id"`
	StartTime string `json:"startTime"`
	Duration  string `json:"duration"` // minutes as text, "" for legacy slots
	EndTime   string `json:"endTime"`
}

const AssignmentNote = "note"

// Assignment is the content of one grid cell: a match placement or a note.
// An empty cell is a nil *Assignment.
type Assignment struct {
	ID            string `json:"id"`
	Type          string `json:"type,omitempty"`
	Text          string `json:"text,omitempty"`
	Key           string `json:"key,omitempty"`
	Label         string `json:"label,omitempty"`
	Category      string `json:"category,omitempty"`
	SeedVs        string `json:"seedVs,omitempty"`
	DisplayNumber string `json:"displayNumber,omitempty"`
	MatchNumber   string `json:"matchNumber,omitempty"`
	Stage         string `json:"stage,omitempty"`
}

func (a *Assignment) IsNote() bool {
	return a != nil && a.Type == AssignmentNote
}

func (a *Assignment) IsMatch() bool {
	return a != nil && a.Type != AssignmentNote && a.ID != ""
}

// PlacementFor builds the cell content for a placed match.
func PlacementFor(m *ScheduledMatch) *Assignment {
	return &Assignment{
		ID:            m.ID,
		Key:           m.MatchKey,
		Label:         m.PlayersVs,
		Category:      m.Category,
		SeedVs:        m.SeedVs,
		DisplayNumber: m.DisplayNumber,
		MatchNumber:   m.MatchNumber,
		Stage:         m.Stage,
	}
}

// Venue is an independent slots x courts matrix. Assignments are indexed
// [slot][court].
type Venue struct {
	Name        string          `json:"name"`
	CourtCount  int             `json:"courtCount"`
	TimeSlots   []ScheduleSlot  `json:"timeSlots"`
	Assignments [][]*Assignment `json:"assignments"`

	// SlotSeriesLen is the length of the most recently generated tail series,
	// 0 once the series is committed.
	SlotSeriesLen int `json:"slotSeriesLen,omitempty"`
}

// ScheduleDocument is the persisted schedule for one tournament day. The
// top-level courtCount/timeSlots/assignments mirror the selected venue for
// single-venue consumers.
type ScheduleDocument struct {
	ScheduleDate string          `json:"scheduleDate"`
	CourtCount   int             `json:"courtCount"`
	TimeSlots    []ScheduleSlot  `json:"timeSlots"`
	Assignments  [][]*Assignment `json:"assignments"`
	Venues       []Venue         `json:"venues"`
	Version      int             `json:"version"`
}

// MatchScheduleUpdate is the group overlay written back on schedule save.
// All fields empty unschedules the match.
type MatchScheduleUpdate struct {
	Date  string `json:"date"`
	Time  string `json:"time"`
	Court string `json:"court"`
	Venue string `json:"venue,omitempty"`
}

// BracketUpdates is keyed category id -> group id -> pair key.
type BracketUpdates map[string]map[string]map[string]MatchScheduleUpdate

func (b BracketUpdates) Set(categoryID, groupID, matchKey string, u MatchScheduleUpdate) {
	if b[categoryID] == nil {
		b[categoryID] = make(map[string]map[string]MatchScheduleUpdate)
	}
	if b[categoryID][groupID] == nil {
		b[categoryID][groupID] = make(map[string]MatchScheduleUpdate)
	}
	b[categoryID][groupID][matchKey] = u
}

func (u MatchScheduleUpdate) Cleared() bool {
	return u.Date == "" && u.Time == "" && u.Court == "" && u.Venue == ""
}

// Record converts an update into an overlay record.
func (u MatchScheduleUpdate) Record() MatchRecord {
	rec := MatchRecord{RecordDate: u.Date, RecordTime: u.Time, RecordCourt: u.Court}
	if !u.Cleared() {
		rec[RecordVenue] = u.Venue
	}
	return rec
}
