package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
)

func SetupUserRouter(e *echo.Echo) {
	userHandler := handler.GetUserHandler()

	e.POST("/customer", userHandler.RegisterCustomer)
	e.GET("/customer/:email", userHandler.GetCustomerByEmail)
	e.PUT("/customer/:email", userHandler.UpdateCustomer)
	e.GET("/customer-by-id/:id", userHandler.GetCustomerByID)

	e.POST("/provider", userHandler.RegisterProvider)
	e.GET("/provider/:email", userHandler.GetProviderByEmail)
	e.PUT("/provider/:id", userHandler.UpdateProvider)
	e.GET("/serviceProvider/:id", userHandler.GetProviderByID)

	e.GET("/user/:id", userHandler.GetUser)
}
