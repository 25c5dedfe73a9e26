package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Dosada05/bracket-pool/middleware"
	"github.com/Dosada05/bracket-pool/services"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// В продакшене здесь должна быть проверка Origin,
		// чтобы разрешать подключения только с доверенных доменов.
		return true
	},
}

// WebSocketHandler держит интерактивную сессию проверки конфигурации:
// владелец шлёт кандидатов на полуфинальные слоты и сразу видит отчёт
// валидатора, не сохраняя ничего в базу.
type WebSocketHandler struct {
	configService services.BracketConfigService
	logger        *slog.Logger
}

func NewWebSocketHandler(cs services.BracketConfigService, logger *slog.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		configService: cs,
		logger:        logger,
	}
}

type configCheckReply struct {
	Validation *services.ValidationReport `json:"validation,omitempty"`
	Error      string                     `json:"error,omitempty"`
}

// ServeConfigCheck обрабатывает GET /ws/pools/{poolID}/config.
// Одно соединение обслуживает одного клиента, без широковещания.
func (h *WebSocketHandler) ServeConfigCheck(w http.ResponseWriter, r *http.Request) {
	poolID, err := getIDFromURL(r, "poolID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "authentication required for config check session")
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// upgrader.Upgrade сам отправляет HTTP ошибку клиенту.
		h.logger.Warn("websocket upgrade failed",
			slog.Int("pool_id", poolID), slog.Any("error", err))
		return
	}
	defer conn.Close()

	h.logger.Debug("config check session started",
		slog.Int("pool_id", poolID), slog.Int("user_id", currentUserID))

	for {
		var candidate services.SemifinalInput
		if err := conn.ReadJSON(&candidate); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("config check session closed",
					slog.Int("pool_id", poolID), slog.Any("error", err))
			}
			return
		}

		report, err := h.configService.CheckCandidate(r.Context(), poolID, currentUserID, candidate)
		if err != nil {
			reply := configCheckReply{Error: err.Error()}
			if errors.Is(err, services.ErrOwnerActionForbidden) || errors.Is(err, services.ErrPoolNotFound) {
				// Сессия не имеет смысла, отвечаем и закрываем.
				_ = conn.WriteJSON(reply)
				return
			}
			if writeErr := conn.WriteJSON(reply); writeErr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(configCheckReply{Validation: &report}); err != nil {
			return
		}
	}
}
