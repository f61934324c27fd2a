package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/dastin1501/PPL-Referee/models"
	"github.com/dastin1501/PPL-Referee/schedule"
	"github.com/dastin1501/PPL-Referee/services"
)

type ScheduleHandler struct {
	scheduleService services.ScheduleService
}

func NewScheduleHandler(ss services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{scheduleService: ss}
}

type courtCountInput struct {
	Count int `json:"count"`
}

// cellInput sets a cell to a match placement or, when Note is present, a note.
type cellInput struct {
	MatchID string  `json:"match_id"`
	Note    *string `json:"note"`
}

type venueInput struct {
	Name string `json:"name"`
}

// scheduleTarget is the tournament and day every schedule route addresses.
type scheduleTarget struct {
	tournamentID int
	date         string
}

func readScheduleTarget(r *http.Request) (scheduleTarget, error) {
	id, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		return scheduleTarget{}, err
	}
	date, err := getStringFromURL(r, "date")
	if err != nil {
		return scheduleTarget{}, err
	}
	return scheduleTarget{tournamentID: id, date: date}, nil
}

// readCell reads the venue, row and col URL params.
func readCell(r *http.Request) (venue, row, col int, err error) {
	if venue, err = getIndexFromURL(r, "venue"); err != nil {
		return
	}
	if row, err = getIndexFromURL(r, "row"); err != nil {
		return
	}
	col, err = getIndexFromURL(r, "col")
	return
}

func writeScheduleView(w http.ResponseWriter, r *http.Request, view *services.ScheduleView, err error) {
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	if err := writeJSON(w, http.StatusOK, jsonResponse{"schedule": view}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMatchesHandler handles GET /tournaments/{tournamentID}/matches
func (h *ScheduleHandler) ListMatchesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	query := r.URL.Query()
	q := services.MatchQuery{
		Date: strings.TrimSpace(query.Get("date")),
		Filter: schedule.MatchFilter{
			Category: query.Get("category"),
			Stage:    query.Get("stage"),
			Search:   query.Get("q"),
		},
	}
	if v := query.Get("available"); v != "" {
		available, err := strconv.ParseBool(v)
		if err != nil {
			badRequestResponse(w, r, errors.New("invalid available query parameter"))
			return
		}
		q.AvailableOnly = available
	}

	view, err := h.scheduleService.ListMatches(r.Context(), tournamentID, q)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, view, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetScheduleHandler handles GET /tournaments/{tournamentID}/schedules/{date}
func (h *ScheduleHandler) GetScheduleHandler(w http.ResponseWriter, r *http.Request) {
	target, err := readScheduleTarget(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.scheduleService.GetSchedule(r.Context(), target.tournamentID, target.date)
	writeScheduleView(w, r, view, err)
}

// SaveScheduleHandler handles PUT /tournaments/{tournamentID}/schedules/{date}
func (h *ScheduleHandler) SaveScheduleHandler(w http.ResponseWriter, r *http.Request) {
	target, err := readScheduleTarget(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var doc models.ScheduleDocument
	if err := readJSON(w, r, &doc); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.scheduleService.SaveSchedule(r.Context(), target.tournamentID, target.date, &doc)
	writeScheduleView(w, r, view, err)
}

// AddSlotsHandler handles POST .../schedules/{date}/venues/{venue}/slots
func (h *ScheduleHandler) AddSlotsHandler(w http.ResponseWriter, r *http.Request) {
	target, err := readScheduleTarget(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	venue, err := getIndexFromURL(r, "venue")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input services.SlotSeriesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.scheduleService.AddSlots(r.Context(), target.tournamentID, target.date, venue, input)
	writeScheduleView(w, r, view, err)
}

// RemoveSlotHandler handles DELETE .../schedules/{date}/venues/{venue}/slots/{row}
func (h *ScheduleHandler) RemoveSlotHandler(w http.ResponseWriter, r *http.Request) {
	target, err := readScheduleTarget(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	venue, err := getIndexFromURL(r, "venue")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	row, err := getIndexFromURL(r, "row")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.scheduleService.RemoveSlot(r.Context(), target.tournamentID, target.date, venue, row)
	writeScheduleView(w, r, view, err)
}

// SetCourtCountHandler handles PUT .../schedules/{date}/venues/{venue}/courts
func (h *ScheduleHandler) SetCourtCountHandler(w http.ResponseWriter, r *http.Request) {
	target, err := readScheduleTarget(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	venue, err := getIndexFromURL(r, "venue")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input courtCountInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.scheduleService.SetCourtCount(r.Context(), target.tournamentID, target.date, venue, input.Count)
	writeScheduleView(w, r, view, err)
}

// SetCellHandler handles PUT .../schedules/{date}/venues/{venue}/cells/{row}/{col}
func (h *ScheduleHandler) SetCellHandler(w http.ResponseWriter, r *http.Request) {
	target, err := readScheduleTarget(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	venue, row, col, err := readCell(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input cellInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	matchID := strings.TrimSpace(input.MatchID)
	var view *services.ScheduleView
	switch {
	case matchID != "" && input.Note != nil:
		badRequestResponse(w, r, errors.New("body must contain either match_id or note, not both"))
		return
	case matchID != "":
		view, err = h.scheduleService.PlaceMatch(r.Context(), target.tournamentID, target.date, venue, row, col, matchID)
	case input.Note != nil:
		view, err = h.scheduleService.SetNote(r.Context(), target.tournamentID, target.date, venue, row, col, *input.Note)
	default:
		badRequestResponse(w, r, errors.New("body must contain match_id or note"))
		return
	}
	writeScheduleView(w, r, view, err)
}

// ClearCellHandler handles DELETE .../schedules/{date}/venues/{venue}/cells/{row}/{col}
func (h *ScheduleHandler) ClearCellHandler(w http.ResponseWriter, r *http.Request) {
	target, err := readScheduleTarget(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	venue, row, col, err := readCell(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.scheduleService.ClearCell(r.Context(), target.tournamentID, target.date, venue, row, col)
	writeScheduleView(w, r, view, err)
}

// AddVenueHandler handles POST .../schedules/{date}/venues
func (h *ScheduleHandler) AddVenueHandler(w http.ResponseWriter, r *http.Request) {
	target, err := readScheduleTarget(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	var input venueInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.scheduleService.AddVenue(r.Context(), target.tournamentID, target.date, strings.TrimSpace(input.Name))
	writeScheduleView(w, r, view, err)
}

// RemoveVenueHandler handles DELETE .../schedules/{date}/venues/{venue}
func (h *ScheduleHandler) RemoveVenueHandler(w http.ResponseWriter, r *http.Request) {
	target, err := readScheduleTarget(r)
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	venue, err := getIndexFromURL(r, "venue")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	view, err := h.scheduleService.RemoveVenue(r.Context(), target.tournamentID, target.date, venue)
	writeScheduleView(w, r, view, err)
}
