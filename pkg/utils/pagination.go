package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// PaginationParams represents page-based pagination read from the query string.
type PaginationParams struct {
	Page   int
	Limit  int
	Offset int
}

// GetPaginationParams reads ?page= and ?limit=, falling back to defaultLimit.
// Limits above maxLimit are clamped.
func GetPaginationParams(c echo.Context, defaultLimit, maxLimit int) PaginationParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	return PaginationParams{
		Page:   page,
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
}
