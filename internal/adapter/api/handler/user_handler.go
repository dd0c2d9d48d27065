package handler

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/usecase"
	"servibid/pkg/response"
)

type UserHandler struct {
	accountUseCase *usecase.AccountUseCase
}

func NewUserHandler(accountUseCase *usecase.AccountUseCase) *UserHandler {
	return &UserHandler{
		accountUseCase: accountUseCase,
	}
}

type registerCustomerRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Image   string `json:"image"`
}

type updateCustomerRequest struct {
	Name    *string `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
	Image   *string `json:"image"`
}

type registerProviderRequest struct {
	Name            string   `json:"name" validate:"required"`
	Email           string   `json:"email" validate:"required,email"`
	Phone           string   `json:"phone"`
	Description     string   `json:"description"`
	Image           string   `json:"image"`
	ServicesOffered []string `json:"servicesOffered"`
}

type updateProviderRequest struct {
	Name            *string  `json:"name"`
	Phone           *string  `json:"phone"`
	Description     *string  `json:"description"`
	Image           *string  `json:"image"`
	ServicesOffered []string `json:"servicesOffered"`
}

func (h *UserHandler) RegisterCustomer(c echo.Context) error {
	var req registerCustomerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	customer, err := h.accountUseCase.RegisterCustomer(c.Request().Context(), usecase.RegisterCustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Address: req.Address,
		Image:   req.Image,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, customer)
}

func (h *UserHandler) GetCustomerByEmail(c echo.Context) error {
	customer, err := h.accountUseCase.GetCustomerByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, customer)
}

func (h *UserHandler) GetCustomerByID(c echo.Context) error {
	customer, err := h.accountUseCase.GetCustomerByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, customer)
}

func (h *UserHandler) UpdateCustomer(c echo.Context) error {
	var req updateCustomerRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	customer, err := h.accountUseCase.UpdateCustomer(c.Request().Context(), c.Param("email"), usecase.UpdateCustomerInput{
		Name:    req.Name,
		Phone:   req.Phone,
		Address: req.Address,
		Image:   req.Image,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, customer)
}

func (h *UserHandler) RegisterProvider(c echo.Context) error {
	var req registerProviderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	provider, err := h.accountUseCase.RegisterProvider(c.Request().Context(), usecase.RegisterProviderInput{
		Name:            req.Name,
		Email:           req.Email,
		Phone:           req.Phone,
		Description:     req.Description,
		Image:           req.Image,
		ServicesOffered: req.ServicesOffered,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, provider)
}

func (h *UserHandler) GetProviderByEmail(c echo.Context) error {
	provider, err := h.accountUseCase.GetProviderByEmail(c.Request().Context(), c.Param("email"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, provider)
}

func (h *UserHandler) GetProviderByID(c echo.Context) error {
	provider, err := h.accountUseCase.GetProviderByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, provider)
}

func (h *UserHandler) UpdateProvider(c echo.Context) error {
	var req updateProviderRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	provider, err := h.accountUseCase.UpdateProvider(c.Request().Context(), c.Param("id"), usecase.UpdateProviderInput{
		Name:            req.Name,
		Phone:           req.Phone,
		Description:     req.Description,
		Image:           req.Image,
		ServicesOffered: req.ServicesOffered,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, provider)
}

// GetUser resolves either account kind to a participant summary.
func (h *UserHandler) GetUser(c echo.Context) error {
	user, err := h.accountUseCase.GetUser(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, user)
}
