package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
)

// SetupRequestRouter covers requests and the bids placed on them.
func SetupRequestRouter(e *echo.Echo) {
	requestHandler := handler.GetRequestHandler()
	bidHandler := handler.GetBidHandler()

	e.POST("/request", requestHandler.CreateRequest)
	e.GET("/requests/:customerID", requestHandler.GetCustomerRequests)
	e.GET("/requests-by-provider/:providerId", requestHandler.GetProviderRequests)
	e.GET("/available-requests", requestHandler.GetAvailableRequests)
	e.PUT("/requests/:id", requestHandler.UpdateRequest)
	e.PUT("/requests/:id/state", requestHandler.TransitionState)
	e.DELETE("/requests/:id", requestHandler.CancelRequest)

	e.POST("/place-bid", bidHandler.PlaceBid)
	e.GET("/bids/:requestId", bidHandler.GetBids)
	e.PUT("/bids/mark-seen/:requestId", bidHandler.MarkSeen)
}
