package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/middleware"
	"servibid/internal/usecase"
	"servibid/pkg/response"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type createChatRequest struct {
	CustomerID string `json:"customerId"`
	ProviderID string `json:"providerId"`
}

type sendMessageRequest struct {
	Text     string  `json:"text"`
	FileURL  string  `json:"fileUrl"`
	FileName string  `json:"fileName"`
	FileSize int64   `json:"fileSize"`
	FileType string  `json:"fileType"`
	Duration float64 `json:"duration"`
	Type     string  `json:"type"`
}

type markSeenRequest struct {
	MessageIDs []string `json:"messageIds"`
	UserID     string   `json:"userId"`
}

func (h *ChatHandler) CreateChat(c echo.Context) error {
	var req createChatRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	chat, created, err := h.chatUseCase.GetOrCreateChat(c.Request().Context(), req.CustomerID, req.ProviderID)
	if err != nil {
		return response.Error(c, err)
	}

	if created {
		return response.SuccessWithMessage(c, http.StatusCreated, "Chat created", chat)
	}
	return response.SuccessWithMessage(c, http.StatusOK, "Existing chat found", chat)
}

func (h *ChatHandler) GetExistingChat(c echo.Context) error {
	chat, err := h.chatUseCase.FindExistingChat(c.Request().Context(), c.QueryParam("customerId"), c.QueryParam("providerId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, chat)
}

func (h *ChatHandler) GetUserChats(c echo.Context) error {
	chats, err := h.chatUseCase.ListChatsForUser(c.Request().Context(), c.Param("userId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, chats)
}

// SendMessage takes the sender from the caller identity, never from the body.
func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	message, err := h.chatUseCase.SendMessage(c.Request().Context(), usecase.SendMessageInput{
		ChatID:   c.Param("chatId"),
		SenderID: middleware.UserID(c),
		Text:     req.Text,
		FileURL:  req.FileURL,
		FileName: req.FileName,
		FileSize: req.FileSize,
		FileType: req.FileType,
		Duration: req.Duration,
		Type:     req.Type,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, message)
}

func (h *ChatHandler) GetChatMessages(c echo.Context) error {
	messages, err := h.chatUseCase.ListMessages(c.Request().Context(), c.Param("chatId"), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, messages)
}

func (h *ChatHandler) MarkMessagesSeen(c echo.Context) error {
	var req markSeenRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	userID := req.UserID
	if uid := middleware.UserID(c); uid != "" {
		userID = uid
	}

	modified, err := h.chatUseCase.MarkMessagesSeen(c.Request().Context(), req.MessageIDs, userID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"modifiedCount": modified})
}
