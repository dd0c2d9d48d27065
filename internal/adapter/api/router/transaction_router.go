package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
)

func SetupTransactionRouter(e *echo.Echo) {
	transactionHandler := handler.GetTransactionHandler()

	e.GET("/transactions/:customerId", transactionHandler.GetCustomerTransactions)
	e.GET("/transactions/request/:requestId", transactionHandler.GetRequestTransaction)
}
