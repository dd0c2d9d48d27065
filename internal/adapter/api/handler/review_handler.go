package handler

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/domain/entity"
	"servibid/internal/usecase"
	"servibid/pkg/response"
	"servibid/pkg/utils"
)

type ReviewHandler struct {
	reviewUseCase *usecase.ReviewUseCase
}

func NewReviewHandler(reviewUseCase *usecase.ReviewUseCase) *ReviewHandler {
	return &ReviewHandler{
		reviewUseCase: reviewUseCase,
	}
}

type createReviewRequest struct {
	RequestID  string `json:"requestId"`
	ProviderID string `json:"providerId"`
	CustomerID string `json:"customerId"`
	Rating     int    `json:"rating"`
	Title      string `json:"title"`
	Comment    string `json:"comment"`
}

type providerReviewsResponse struct {
	Reviews       []*entity.Review `json:"reviews"`
	AverageRating float64          `json:"averageRating"`
	response.PageInfo
}

type reviewExistenceRequest struct {
	RequestIDs []string `json:"requestIds" validate:"required"`
}

// CreateReview leaves field checks to the use case so a missing field and a
// bad rating share one message.
func (h *ReviewHandler) CreateReview(c echo.Context) error {
	var req createReviewRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}

	review, err := h.reviewUseCase.CreateReview(c.Request().Context(), usecase.CreateReviewInput{
		RequestID:  req.RequestID,
		ProviderID: req.ProviderID,
		CustomerID: req.CustomerID,
		Rating:     req.Rating,
		Title:      req.Title,
		Comment:    req.Comment,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, review)
}

func (h *ReviewHandler) DeleteReview(c echo.Context) error {
	deleted, err := h.reviewUseCase.DeleteReview(c.Request().Context(), c.Param("requestId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]bool{"deleted": deleted})
}

func (h *ReviewHandler) GetProviderReviews(c echo.Context) error {
	params := utils.GetPaginationParams(c, 10, 50)

	result, err := h.reviewUseCase.ListByProvider(
		c.Request().Context(),
		c.Param("providerId"),
		c.QueryParam("sort"),
		params.Page,
		params.Limit,
	)
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, providerReviewsResponse{
		Reviews:       result.Reviews,
		AverageRating: result.AverageRating,
		PageInfo:      response.NewPageInfo(result.Total, result.Page, result.Limit),
	})
}

func (h *ReviewHandler) CheckExistence(c echo.Context) error {
	var req reviewExistenceRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	ids, err := h.reviewUseCase.ExistingRequestIDs(c.Request().Context(), req.RequestIDs)
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string][]string{"reviewedRequestIds": ids})
}
