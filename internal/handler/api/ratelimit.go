package api

import (
	"strconv"

	"MarketFeed/internal/service/ratelimit"
	xhttp "MarketFeed/pkg/http"

	"github.com/labstack/echo/v4"
)

// RateLimit rejects requests once the caller's token bucket is empty.
// Callers are identified by client IP.
func RateLimit(l *ratelimit.Limiter, retryAfterSec int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if l.Allow(c.RealIP()) {
				return next(c)
			}
			if retryAfterSec > 0 {
				c.Response().Header().Set("Retry-After", strconv.Itoa(retryAfterSec))
			}
			return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError(retryAfterSec))
		}
	}
}
