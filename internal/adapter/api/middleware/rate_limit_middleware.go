package middleware

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/labstack/echo/v4"

	"servibid/internal/infrastructure/ratelimit"
	"servibid/pkg/errors"
	"servibid/pkg/logger"
	"servibid/pkg/response"
)

// IPRateLimiter applies one ratelimit action per client IP.
type IPRateLimiter struct {
	limiter *ratelimit.RateLimiter
	action  string
}

// NewIPRateLimiter allows requestsPerMinute per IP and sweeps idle visitors
// until ctx is done.
func NewIPRateLimiter(ctx context.Context, action string, requestsPerMinute int) *IPRateLimiter {
	limiter := ratelimit.NewRateLimiter(map[string]ratelimit.Policy{
		action: ratelimit.PerMinute(requestsPerMinute),
	})
	limiter.Start(ctx, time.Hour)
	return &IPRateLimiter{limiter: limiter, action: action}
}

func (rl *IPRateLimiter) RateLimitMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			allowed, retryAfter := rl.limiter.Allow(ip, rl.action)
			if !allowed {
				seconds := int(math.Ceil(retryAfter.Seconds()))
				logger.Warn("rate limit: blocked %s on %s (retry in %ds)", ip, rl.action, seconds)
				c.Response().Header().Set("Retry-After", fmt.Sprint(seconds))
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded"))
			}
			return next(c)
		}
	}
}
