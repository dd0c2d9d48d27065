package handler

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/usecase"
	"servibid/pkg/response"
)

type TransactionHandler struct {
	paymentUseCase *usecase.PaymentUseCase
}

func NewTransactionHandler(paymentUseCase *usecase.PaymentUseCase) *TransactionHandler {
	return &TransactionHandler{
		paymentUseCase: paymentUseCase,
	}
}

func (h *TransactionHandler) GetCustomerTransactions(c echo.Context) error {
	txns, err := h.paymentUseCase.TransactionsByCustomer(c.Request().Context(), c.Param("customerId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, txns)
}

func (h *TransactionHandler) GetRequestTransaction(c echo.Context) error {
	txn, err := h.paymentUseCase.TransactionByRequest(c.Request().Context(), c.Param("requestId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, txn)
}
