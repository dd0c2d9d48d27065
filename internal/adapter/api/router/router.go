package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/middleware"
)

// Setup registers every route. Identify runs on all of them; handlers decide
// whether a missing identity is an error.
func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, paymentLimiter *middleware.IPRateLimiter) {
	e.Use(authMiddleware.Identify)

	SetupHealthRouter(e)
	SetupUserRouter(e)
	SetupCatalogRouter(e)
	SetupRequestRouter(e)
	SetupReviewRouter(e)
	SetupChatRouter(e)
	SetupNotificationRouter(e)
	SetupPaymentRouter(e, paymentLimiter)
	SetupTransactionRouter(e)
	SetupFileRouter(e)
	SetupGamificationRouter(e)
	SetupWebSocketRouter(e)
}
