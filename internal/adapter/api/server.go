package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"servibid/internal/adapter/api/middleware"
	"servibid/pkg/response"
)

// NewEcho builds the HTTP server with the validator, error envelope and
// common middleware. Routes are added by router.Setup.
func NewEcho(corsOrigins []string) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = NewValidator()
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		response.Error(c, err)
	}

	e.Use(echomw.Recover())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: corsOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{
			echo.HeaderOrigin,
			echo.HeaderContentType,
			echo.HeaderAccept,
			echo.HeaderAuthorization,
			middleware.HeaderUserID,
			middleware.HeaderRole,
		},
	}))
	e.Use(middleware.RequestLogger())
	e.Use(middleware.Metrics())

	return e
}
