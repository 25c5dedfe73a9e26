package handlers

import (
	"net/http"

	"github.com/Dosada05/bracket-pool/brackets"
)

type GameTypeHandler struct{}

func NewGameTypeHandler() *GameTypeHandler {
	return &GameTypeHandler{}
}

// ListHandler обрабатывает GET /gametypes
func (h *GameTypeHandler) ListHandler(w http.ResponseWriter, r *http.Request) {
	if err := writeJSON(w, http.StatusOK, jsonResponse{"game_types": brackets.AllGameTypes()}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}
