package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
)

func SetupCatalogRouter(e *echo.Echo) {
	e.GET("/services/:category", handler.GetCatalogHandler().GetServicesByCategory)
}
