package router

import (
	"github.com/labstack/echo/v4"

	"servibid/internal/adapter/api/handler"
)

func SetupGamificationRouter(e *echo.Echo) {
	gamificationHandler := handler.GetGamificationHandler()

	e.GET("/provider-leaderboard", gamificationHandler.GetLeaderboard)
	e.PUT("/auto-assign-badges", gamificationHandler.AssignBadges)
	e.GET("/provider-rank-badges/:id", gamificationHandler.GetRankBadges)
	e.GET("/revenue-history/:providerId", gamificationHandler.GetRevenueHistory)
}
