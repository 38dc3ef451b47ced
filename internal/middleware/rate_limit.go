package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// RateLimiter counts requests per key within a rolling window.
type RateLimiter interface {
	IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// RateLimit throttles requests per client IP and route. Limiter errors
// are logged and the request is let through.
func RateLimit(limiter RateLimiter, limit int, window time.Duration) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := fmt.Sprintf("%s:%s", c.RealIP(), c.Path())
			limited, err := limiter.IsRateLimited(c.Request().Context(), key, limit, window)
			if err != nil {
				log.Printf("rate limiter unavailable for %s: %v", key, err)
				return next(c)
			}
			if limited {
				return echo.NewHTTPError(http.StatusTooManyRequests, "Too many requests")
			}
			return next(c)
		}
	}
}
