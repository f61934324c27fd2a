package handlers

import (
	"net/http"

	"github.com/dastin1501/PPL-Referee/middleware"
	"github.com/dastin1501/PPL-Referee/models"
	"github.com/dastin1501/PPL-Referee/services"
)

type BracketHandler struct {
	bracketService services.BracketService
}

func NewBracketHandler(bs services.BracketService) *BracketHandler {
	return &BracketHandler{bracketService: bs}
}

// GetCategoryBracketHandler handles GET /tournaments/{tournamentID}/categories/{categoryID}/bracket
func (h *BracketHandler) GetCategoryBracketHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	categoryID, err := getStringFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	bracket, err := h.bracketService.GetCategoryBracket(r.Context(), tournamentID, categoryID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"bracket": bracket}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveGroupMatchesHandler handles PUT /tournaments/{tournamentID}/categories/{categoryID}/groups/{groupID}/matches
func (h *BracketHandler) SaveGroupMatchesHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	categoryID, err := getStringFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	groupID, err := getStringFromURL(r, "groupID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input services.GroupMatchesInput
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	group, err := h.bracketService.SaveGroupMatches(r.Context(), tournamentID, categoryID, groupID, input)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"group": group}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// SaveEliminationMatchHandler handles PUT /tournaments/{tournamentID}/categories/{categoryID}/elimination/{matchKey}
func (h *BracketHandler) SaveEliminationMatchHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	categoryID, err := getStringFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchKey, err := getStringFromURL(r, "matchKey")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var rec models.MatchRecord
	if err := readJSON(w, r, &rec); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	match, err := h.bracketService.SaveEliminationMatch(r.Context(), tournamentID, categoryID, matchKey, rec)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"match": match}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetSubmissionHandler handles GET /tournaments/{tournamentID}/categories/{categoryID}/submission.
// Callers whose token carries no usable role get canSubmit=false.
func (h *BracketHandler) GetSubmissionHandler(w http.ResponseWriter, r *http.Request) {
	tournamentID, err := getIDFromURL(r, "tournamentID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	categoryID, err := getStringFromURL(r, "categoryID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	role := middleware.CallerRole(r.Context())

	state, err := h.bracketService.SubmissionState(r.Context(), tournamentID, categoryID, role)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"submission": state}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
