package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
	"servibid/internal/adapter/api/middleware"
)

// SetupPaymentRouter registers the gateway routes behind the per-IP limiter.
func SetupPaymentRouter(e *echo.Echo, limiter *middleware.IPRateLimiter) {
	paymentHandler := handler.GetPaymentHandler()

	var mw []echo.MiddlewareFunc
	if limiter != nil {
		mw = append(mw, limiter.RateLimitMiddleware())
	}

	e.POST("/create-stripe-customer", paymentHandler.CreateGatewayCustomer, mw...)
	e.POST("/create-ephemeral-key", paymentHandler.CreateEphemeralKey, mw...)
	e.POST("/create-payment-intent", paymentHandler.CreatePaymentIntent, mw...)
	e.POST("/handle-payment-success", paymentHandler.HandlePaymentSuccess, mw...)
}
