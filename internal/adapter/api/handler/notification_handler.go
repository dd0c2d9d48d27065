package handler

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/usecase"
	"servibid/pkg/response"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	notifications, err := h.notificationUseCase.List(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, notifications)
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	modified, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"modifiedCount": modified})
}
