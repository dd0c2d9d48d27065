package handler

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/usecase"
	"servibid/pkg/response"
)

type BidHandler struct {
	bidUseCase *usecase.BidUseCase
}

func NewBidHandler(bidUseCase *usecase.BidUseCase) *BidHandler {
	return &BidHandler{
		bidUseCase: bidUseCase,
	}
}

type placeBidRequest struct {
	RequestID   string  `json:"requestId" validate:"required"`
	ProviderID  string  `json:"providerId" validate:"required"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Description string  `json:"description"`
}

func (h *BidHandler) PlaceBid(c echo.Context) error {
	var req placeBidRequest
	if err := c.Bind(&req); err != nil {
		return response.Error(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return response.Error(c, err)
	}

	bid, err := h.bidUseCase.PlaceBid(c.Request().Context(), usecase.PlaceBidInput{
		RequestID:   req.RequestID,
		ProviderID:  req.ProviderID,
		Price:       req.Price,
		Description: req.Description,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, bid)
}

func (h *BidHandler) GetBids(c echo.Context) error {
	bids, err := h.bidUseCase.ListBids(c.Request().Context(), c.Param("requestId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, bids)
}

func (h *BidHandler) MarkSeen(c echo.Context) error {
	modified, err := h.bidUseCase.MarkSeen(c.Request().Context(), c.Param("requestId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"modifiedCount": modified})
}
