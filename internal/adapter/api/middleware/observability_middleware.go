package middleware

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"servibid/pkg/logger"
	"servibid/pkg/metrics"
)

// Metrics records request count and latency per route template.
func Metrics() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			timer := metrics.NewTimer()
			err := next(c)

			route := c.Path()
			if route == "" {
				route = "unmatched"
			}
			status := c.Response().Status
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				status = httpErr.Code
			} else if err != nil {
				status = http.StatusInternalServerError
			}

			method := c.Request().Method
			metrics.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
			timer.ObserveDurationVec(metrics.HTTPRequestDuration, method, route)
			return err
		}
	}
}

// RequestLogger writes one access log line per request through zerolog.
func RequestLogger() echo.MiddlewareFunc {
	log := logger.WithComponent("http")
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			event := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				event = log.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("ip", v.RemoteIP).
				Str("user", UserID(c)).
				Msg("request")
			return nil
		},
	})
}
