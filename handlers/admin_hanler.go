package handlers

import (
	"net/http"
	"strconv"

	"github.com/Dosada05/bracket-pool/repositories"
	"github.com/Dosada05/bracket-pool/services"
)

type AdminUserHandler struct {
	adminUserService services.AdminUserService
}

func NewAdminUserHandler(s services.AdminUserService) *AdminUserHandler {
	return &AdminUserHandler{adminUserService: s}
}

// ListUsers обрабатывает GET /admin/users
func (h *AdminUserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := repositories.UserFilter{
		Limit:  toInt(q.Get("limit"), 20),
		Offset: toInt(q.Get("offset"), 0),
	}
	if search := q.Get("search"); search != "" {
		filter.Search = &search
	}
	if role := q.Get("role"); role != "" {
		filter.Role = &role
	}

	res, err := h.adminUserService.ListUsers(r.Context(), filter)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res, nil)
}

// DeleteUser обрабатывает DELETE /admin/users/{userID}
func (h *AdminUserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	userID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.adminUserService.DeleteUser(r.Context(), userID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toInt(s string, def int) int {
	if i, err := strconv.Atoi(s); err == nil {
		return i
	}
	return def
}
