package handler

import (
	"net/http"

	"github.com/google/uuid"
	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/middleware"
	"servibid/internal/domain/entity"
	ws "servibid/internal/infrastructure/websocket"
	"servibid/pkg/errors"
	"servibid/pkg/logger"
	"servibid/pkg/response"
)

type WebSocketHandler struct {
	wsManager *ws.Manager
	upgrader  gorillaws.Upgrader
}

func NewWebSocketHandler(wsManager *ws.Manager) *WebSocketHandler {
	return &WebSocketHandler{
		wsManager: wsManager,
		upgrader: gorillaws.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// Any origin: CORS for the REST API is configured separately.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

// HandleWebSocket upgrades GET /ws?userId=&userType=&chatId=. The connection
// joins the caller's personal room and, when chatId names a chat the caller
// belongs to, that chat room.
func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID := middleware.UserID(c)
	if userID == "" {
		return response.Error(c, errors.Unauthorized("Authentication required", nil))
	}
	role := middleware.Role(c)
	if role != entity.RoleCustomer && role != entity.RoleProvider {
		return response.Error(c, errors.Validation("userType must be customer or provider"))
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// The upgrader has already written the HTTP error.
		logger.Warn("websocket upgrade failed for %s: %v", userID, err)
		return nil
	}

	client := ws.NewClient(uuid.NewString(), userID, role)
	client.Conn = conn
	h.wsManager.Connect(client)

	if chatID := c.QueryParam("chatId"); chatID != "" {
		if h.wsManager.Authorize(c.Request().Context(), client, chatID) {
			h.wsManager.Join(client, chatID)
		} else {
			logger.Warn("user %s denied initial join of chat %s", userID, chatID)
		}
	}

	go client.WritePump()
	go client.ReadPump(h.wsManager)

	return nil
}
