package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
)

func SetupReviewRouter(e *echo.Echo) {
	reviewHandler := handler.GetReviewHandler()

	e.POST("/reviews", reviewHandler.CreateReview)
	e.POST("/reviews/existence", reviewHandler.CheckExistence)
	e.DELETE("/reviews/:requestId", reviewHandler.DeleteReview)
	e.GET("/provider-reviews/:providerId", reviewHandler.GetProviderReviews)
}
