package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
)

// SetupChatRouter sets up chat and message routes. Message routes take the
// caller from the resolved identity.
func SetupChatRouter(e *echo.Echo) {
	chatHandler := handler.GetChatHandler()

	e.POST("/chats", chatHandler.CreateChat)
	e.GET("/chats/existing", chatHandler.GetExistingChat)
	e.GET("/chats/:userId", chatHandler.GetUserChats)

	e.POST("/chats/:chatId/messages", chatHandler.SendMessage)
	e.GET("/chats/:chatId/messages", chatHandler.GetChatMessages)
	e.PUT("/messages/mark-seen", chatHandler.MarkMessagesSeen)
}
