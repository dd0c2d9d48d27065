package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"servibid/internal/usecase"
	"servibid/pkg/errors"
	"servibid/pkg/response"
)

type RequestHandler struct {
	requestUseCase *usecase.RequestUseCase
	uploadUseCase  *usecase.UploadUseCase
}

func NewRequestHandler(requestUseCase *usecase.RequestUseCase, uploadUseCase *usecase.UploadUseCase) *RequestHandler {
	return &RequestHandler{
		requestUseCase: requestUseCase,
		uploadUseCase:  uploadUseCase,
	}
}

type createRequestRequest struct {
	CustomerID  string                 `json:"customerID"`
	Service     string                 `json:"service"`
	Category    string                 `json:"category"`
	Budget      float64                `json:"budget"`
	Date        string                 `json:"date"`
	Description string                 `json:"description"`
	Location    string                 `json:"location"`
	Image       string                 `json:"image"`
	Details     map[string]interface{} `json:"details"`
}

type updateRequestRequest struct {
	ProviderID *string  `json:"providerId"`
	Price      *float64 `json:"price"`
	ReviewID   *string  `json:"reviewId"`
	Image      *string  `json:"image"`
}

type transitionStateRequest struct {
	State      string `json:"state" validate:"required"`
	ProviderID string `json:"providerId"`
}

// CreateRequest accepts JSON or a multipart form with an optional image file.
func (h *RequestHandler) CreateRequest(c echo.Context) error {
	var req createRequestRequest
	if strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEMultipartForm) {
		if err := h.bindMultipartRequest(c, &req); err != nil {
			return response.Error(c, err)
		}
	} else if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	request, err := h.requestUseCase.CreateRequest(c.Request().Context(), usecase.CreateRequestInput{
		CustomerID:  req.CustomerID,
		Service:     req.Service,
		Category:    req.Category,
		Budget:      req.Budget,
		Date:        req.Date,
		Description: req.Description,
		Location:    req.Location,
		Image:       req.Image,
		Details:     req.Details,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.SuccessWithMessage(c, http.StatusCreated, "Request submitted successfully", request)
}

func (h *RequestHandler) bindMultipartRequest(c echo.Context, req *createRequestRequest) error {
	req.CustomerID = c.FormValue("customerID")
	req.Service = c.FormValue("service")
	req.Category = c.FormValue("category")
	req.Date = c.FormValue("date")
	req.Description = c.FormValue("description")
	req.Location = c.FormValue("location")

	if budget := c.FormValue("budget"); budget != "" {
		value, err := strconv.ParseFloat(budget, 64)
		if err != nil {
			return errors.Validation("budget must be a number")
		}
		req.Budget = value
	}

	if details := c.FormValue("details"); details != "" {
		if err := json.Unmarshal([]byte(details), &req.Details); err != nil {
			return errors.Validation("details must be a JSON object")
		}
	}

	fileHeader, err := c.FormFile("image")
	if err == http.ErrMissingFile {
		return nil
	}
	if err != nil {
		return errors.BadRequest("Invalid image upload", err)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return errors.BadRequest("Invalid image upload", err)
	}
	defer file.Close()

	uploaded, err := h.uploadUseCase.Upload(c.Request().Context(), fileHeader.Filename, file)
	if err != nil {
		return err
	}
	req.Image = uploaded.FileURL
	return nil
}

func (h *RequestHandler) GetCustomerRequests(c echo.Context) error {
	requests, err := h.requestUseCase.ListByCustomer(c.Request().Context(), c.Param("customerID"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, requests)
}

func (h *RequestHandler) GetProviderRequests(c echo.Context) error {
	requests, err := h.requestUseCase.ListByProvider(c.Request().Context(), c.Param("providerId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, requests)
}

// GetAvailableRequests takes ?service=X or ?services=X,Y.
func (h *RequestHandler) GetAvailableRequests(c echo.Context) error {
	var services []string
	for _, raw := range append(c.QueryParams()["service"], c.QueryParams()["services"]...) {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				services = append(services, s)
			}
		}
	}

	requests, err := h.requestUseCase.ListAvailable(c.Request().Context(), services)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, requests)
}

func (h *RequestHandler) UpdateRequest(c echo.Context) error {
	var req updateRequestRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	request, err := h.requestUseCase.UpdateRequest(c.Request().Context(), c.Param("id"), usecase.UpdateRequestInput{
		ProviderID: req.ProviderID,
		Price:      req.Price,
		ReviewID:   req.ReviewID,
		Image:      req.Image,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, request)
}

func (h *RequestHandler) TransitionState(c echo.Context) error {
	var req transitionStateRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	request, err := h.requestUseCase.TransitionState(c.Request().Context(), c.Param("id"), req.State, req.ProviderID)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, request)
}

func (h *RequestHandler) CancelRequest(c echo.Context) error {
	request, err := h.requestUseCase.CancelRequest(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.SuccessWithMessage(c, http.StatusOK, "Request cancelled", request)
}
