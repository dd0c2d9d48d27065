package handler

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/usecase"
	"servibid/pkg/response"
)

// GamificationHandler serves provider standing: leaderboard, rank, badges
// and revenue history.
type GamificationHandler struct {
	standingUseCase *usecase.StandingUseCase
}

func NewGamificationHandler(standingUseCase *usecase.StandingUseCase) *GamificationHandler {
	return &GamificationHandler{
		standingUseCase: standingUseCase,
	}
}

func (h *GamificationHandler) GetLeaderboard(c echo.Context) error {
	providers, err := h.standingUseCase.Leaderboard(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, providers)
}

func (h *GamificationHandler) AssignBadges(c echo.Context) error {
	updated, err := h.standingUseCase.AssignBadges(c.Request().Context())
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, map[string]int{"updated": updated})
}

func (h *GamificationHandler) GetRankBadges(c echo.Context) error {
	standing, err := h.standingUseCase.Standing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, standing)
}

func (h *GamificationHandler) GetRevenueHistory(c echo.Context) error {
	history, err := h.standingUseCase.RevenueHistory(c.Request().Context(), c.Param("providerId"))
	if err != nil {
		return response.Error(c, err)
	}
	return response.Success(c, history)
}
