package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bracket-pool/middleware"
	"github.com/Dosada05/bracket-pool/models"
	"github.com/Dosada05/bracket-pool/services"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type EntryHandler struct {
	entryService services.EntryService
}

func NewEntryHandler(es services.EntryService) *EntryHandler {
	return &EntryHandler{
		entryService: es,
	}
}

// SubmitHandler обрабатывает PUT /pools/{poolID}/entry.
// Повторная отправка до блокировки полностью заменяет прогнозы.
func (h *EntryHandler) SubmitHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to submit entry")
		return
	}

	var input struct {
		Picks map[string]int `json:"picks"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}

	entry, err := h.entryService.SubmitEntry(r.Context(), poolID, currentUserID, input.Picks)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetOwnHandler обрабатывает GET /pools/{poolID}/entry
func (h *EntryHandler) GetOwnHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to view own entry")
		return
	}

	entry, err := h.entryService.GetOwnEntry(r.Context(), poolID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// GetByPublicIDHandler обрабатывает GET /entries/{publicID}.
// Прогнозы проходят через туман войны: скрытая запись отдаётся без picks.
func (h *EntryHandler) GetByPublicIDHandler(w http.ResponseWriter, r *http.Request) {
	publicIDStr := chi.URLParam(r, "publicID")
	publicID, err := uuid.Parse(publicIDStr)
	if err != nil {
		badRequestResponse(w, r, errors.New("invalid entry public id"))
		return
	}

	viewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to view entry")
		return
	}
	viewerRole, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user role")
		return
	}

	entry, err := h.entryService.GetEntryByPublicID(r.Context(), publicID, viewerID, viewerRole == models.RoleAdmin)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entry": entry}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListHandler обрабатывает GET /pools/{poolID}/entries
func (h *EntryHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	viewerID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to list entries")
		return
	}
	viewerRole, err := middleware.GetUserRoleFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "failed to identify current user role")
		return
	}

	entries, err := h.entryService.ListPoolEntries(r.Context(), poolID, viewerID, viewerRole == models.RoleAdmin)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"entries": entries}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
