package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
	"servibid/pkg/metrics"
)

func SetupHealthRouter(e *echo.Echo) {
	healthHandler := handler.GetHealthHandler()
	e.GET("/health", healthHandler.CheckHealth)
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))
}
