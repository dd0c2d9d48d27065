package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
)

func SetupNotificationRouter(e *echo.Echo) {
	notificationHandler := handler.GetNotificationHandler()

	e.GET("/notifications/:userId", notificationHandler.GetNotifications)
	e.PUT("/notifications/mark-read/:userId", notificationHandler.MarkAllRead)
}
