package handler

import (
	ws "servibid/internal/infrastructure/websocket"
	"servibid/internal/usecase"
)

var (
	userHandler         *UserHandler
	requestHandler      *RequestHandler
	bidHandler          *BidHandler
	reviewHandler       *ReviewHandler
	chatHandler         *ChatHandler
	notificationHandler *NotificationHandler
	paymentHandler      *PaymentHandler
	transactionHandler  *TransactionHandler
	fileHandler         *FileHandler
	gamificationHandler *GamificationHandler
	catalogHandler      *CatalogHandler
	healthHandler       *HealthHandler
	webSocketHandler    *WebSocketHandler
)

func Setup(
	accountUseCase *usecase.AccountUseCase,
	requestUseCase *usecase.RequestUseCase,
	bidUseCase *usecase.BidUseCase,
	reviewUseCase *usecase.ReviewUseCase,
	chatUseCase *usecase.ChatUseCase,
	notificationUseCase *usecase.NotificationUseCase,
	paymentUseCase *usecase.PaymentUseCase,
	uploadUseCase *usecase.UploadUseCase,
	standingUseCase *usecase.StandingUseCase,
	catalogUseCase *usecase.CatalogUseCase,
	wsManager *ws.Manager,
	version string,
) {
	userHandler = NewUserHandler(accountUseCase)
	requestHandler = NewRequestHandler(requestUseCase, uploadUseCase)
	bidHandler = NewBidHandler(bidUseCase)
	reviewHandler = NewReviewHandler(reviewUseCase)
	chatHandler = NewChatHandler(chatUseCase)
	notificationHandler = NewNotificationHandler(notificationUseCase)
	paymentHandler = NewPaymentHandler(paymentUseCase)
	transactionHandler = NewTransactionHandler(paymentUseCase)
	fileHandler = NewFileHandler(uploadUseCase)
	gamificationHandler = NewGamificationHandler(standingUseCase)
	catalogHandler = NewCatalogHandler(catalogUseCase)
	healthHandler = NewHealthHandler(version)
	webSocketHandler = NewWebSocketHandler(wsManager)
}

func GetUserHandler() *UserHandler {
	return userHandler
}

func GetRequestHandler() *RequestHandler {
	return requestHandler
}

func GetBidHandler() *BidHandler {
	return bidHandler
}

func GetReviewHandler() *ReviewHandler {
	return reviewHandler
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func GetPaymentHandler() *PaymentHandler {
	return paymentHandler
}

func GetTransactionHandler() *TransactionHandler {
	return transactionHandler
}

func GetFileHandler() *FileHandler {
	return fileHandler
}

func GetGamificationHandler() *GamificationHandler {
	return gamificationHandler
}

func GetCatalogHandler() *CatalogHandler {
	return catalogHandler
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func GetWebSocketHandler() *WebSocketHandler {
	return webSocketHandler
}
