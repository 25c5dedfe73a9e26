package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bracket-pool/middleware"
	"github.com/Dosada05/bracket-pool/services"
	"github.com/go-chi/chi/v5"
)

type ResultHandler struct {
	resultService services.ResultService
}

func NewResultHandler(rs services.ResultService) *ResultHandler {
	return &ResultHandler{
		resultService: rs,
	}
}

// RecordHandler обрабатывает PUT /pools/{poolID}/results/{matchupUID}.
// Повторная запись того же матчапа — это исправление (upsert).
func (h *ResultHandler) RecordHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchupUID := chi.URLParam(r, "matchupUID")
	if matchupUID == "" {
		badRequestResponse(w, r, errors.New("missing matchupUID in URL path"))
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to record results")
		return
	}

	var input struct {
		WinnerTeamID int `json:"winner_team_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.WinnerTeamID <= 0 {
		badRequestResponse(w, r, errors.New("winner_team_id is required"))
		return
	}

	result, err := h.resultService.RecordResult(r.Context(), poolID, currentUserID, matchupUID, input.WinnerTeamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"result": result}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// DeleteHandler обрабатывает DELETE /pools/{poolID}/results/{matchupUID}
func (h *ResultHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	matchupUID := chi.URLParam(r, "matchupUID")
	if matchupUID == "" {
		badRequestResponse(w, r, errors.New("missing matchupUID in URL path"))
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to delete results")
		return
	}

	if err := h.resultService.DeleteResult(r.Context(), poolID, currentUserID, matchupUID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListHandler обрабатывает GET /pools/{poolID}/results
func (h *ResultHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	results, err := h.resultService.ListResults(r.Context(), poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"results": results}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
