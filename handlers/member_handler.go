package handlers

import (
	"errors"
	"net/http"

	"github.com/Dosada05/bracket-pool/middleware"
	"github.com/Dosada05/bracket-pool/services"
	"github.com/go-chi/chi/v5"
)

type MemberHandler struct {
	memberService services.MemberService
}

func NewMemberHandler(ms services.MemberService) *MemberHandler {
	return &MemberHandler{
		memberService: ms,
	}
}

// JoinHandler обрабатывает POST /invites/{token}/accept
func (h *MemberHandler) JoinHandler(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		badRequestResponse(w, r, errors.New("missing invite token in URL path"))
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to join pool")
		return
	}

	membership, err := h.memberService.JoinByInvite(r.Context(), token, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"membership": membership}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// ListMembersHandler обрабатывает GET /pools/{poolID}/members
func (h *MemberHandler) ListMembersHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	members, err := h.memberService.ListMembers(r.Context(), poolID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"members": members}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveMemberHandler обрабатывает DELETE /pools/{poolID}/members/{userID}.
// Владелец исключает любого участника, участник может выйти сам.
func (h *MemberHandler) RemoveMemberHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	targetUserID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to remove member")
		return
	}

	if err := h.memberService.RemoveMember(r.Context(), poolID, targetUserID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// GrantExceptionHandler обрабатывает POST /pools/{poolID}/exceptions
func (h *MemberHandler) GrantExceptionHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to grant exception")
		return
	}

	var input struct {
		ViewerUserID int `json:"viewer_user_id"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ViewerUserID <= 0 {
		badRequestResponse(w, r, errors.New("viewer_user_id is required"))
		return
	}

	exception, err := h.memberService.GrantException(r.Context(), poolID, input.ViewerUserID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"exception": exception}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RevokeExceptionHandler обрабатывает DELETE /pools/{poolID}/exceptions/{userID}
func (h *MemberHandler) RevokeExceptionHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}
	viewerUserID, err := getIDFromURL(r, "userID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to revoke exception")
		return
	}

	if err := h.memberService.RevokeException(r.Context(), poolID, viewerUserID, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListExceptionsHandler обрабатывает GET /pools/{poolID}/exceptions
func (h *MemberHandler) ListExceptionsHandler(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required to list exceptions")
		return
	}

	exceptions, err := h.memberService.ListExceptions(r.Context(), poolID, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"exceptions": exceptions}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
