package handler

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/usecase"
	"servibid/pkg/response"
)

type PaymentHandler struct {
	paymentUseCase *usecase.PaymentUseCase
}

func NewPaymentHandler(paymentUseCase *usecase.PaymentUseCase) *PaymentHandler {
	return &PaymentHandler{
		paymentUseCase: paymentUseCase,
	}
}

type createGatewayCustomerRequest struct {
	CustomerID string `json:"customerId" validate:"required"`
	Email      string `json:"email" validate:"omitempty,email"`
	Name       string `json:"name"`
}

type ephemeralKeyRequest struct {
	CustomerID string `json:"customerId" validate:"required"`
}

type createPaymentIntentRequest struct {
	Amount            float64 `json:"amount" validate:"required,gt=0"`
	CustomerID        string  `json:"customerId" validate:"required"`
	ProviderID        string  `json:"providerId"`
	RequestID         string  `json:"requestId"`
	SavePaymentMethod bool    `json:"savePaymentMethod"`
}

type paymentSuccessRequest struct {
	PaymentIntentID string  `json:"paymentIntentId" validate:"required"`
	CustomerID      string  `json:"customerId" validate:"required"`
	ProviderID      string  `json:"providerId" validate:"required"`
	RequestID       string  `json:"requestId" validate:"required"`
	Amount          float64 `json:"amount" validate:"required,gt=0"`
}

func (h *PaymentHandler) CreateGatewayCustomer(c echo.Context) error {
	var req createGatewayCustomerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	gatewayID, err := h.paymentUseCase.CreateGatewayCustomer(c.Request().Context(), req.CustomerID, req.Email, req.Name)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"stripeCustomerId": gatewayID})
}

func (h *PaymentHandler) CreateEphemeralKey(c echo.Context) error {
	var req ephemeralKeyRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	secret, err := h.paymentUseCase.CreateEphemeralKey(c.Request().Context(), req.CustomerID)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]string{"secret": secret})
}

func (h *PaymentHandler) CreatePaymentIntent(c echo.Context) error {
	var req createPaymentIntentRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	intent, err := h.paymentUseCase.CreatePaymentIntent(c.Request().Context(), usecase.CreatePaymentIntentInput{
		Amount:            req.Amount,
		CustomerID:        req.CustomerID,
		ProviderID:        req.ProviderID,
		RequestID:         req.RequestID,
		SavePaymentMethod: req.SavePaymentMethod,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]string{
		"paymentIntentId": intent.ID,
		"clientSecret":    intent.ClientSecret,
	})
}

// HandlePaymentSuccess records a captured payment. Replays return the
// transaction stored by the first call.
func (h *PaymentHandler) HandlePaymentSuccess(c echo.Context) error {
	var req paymentSuccessRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	txn, err := h.paymentUseCase.HandlePaymentSuccess(c.Request().Context(), usecase.PaymentSuccessInput{
		PaymentIntentID: req.PaymentIntentID,
		CustomerID:      req.CustomerID,
		ProviderID:      req.ProviderID,
		RequestID:       req.RequestID,
		Amount:          req.Amount,
	})
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, txn)
}
