package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
)

// SetupWebSocketRouter registers the push channel. Identity comes from the
// query string because browsers cannot set handshake headers.
func SetupWebSocketRouter(e *echo.Echo) {
	e.GET("/ws", handler.GetWebSocketHandler().HandleWebSocket)
}
