package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

type stubLimiter struct {
	limited bool
	err     error
	keys    []string
}

func (s *stubLimiter) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	s.keys = append(s.keys, key)
	return s.limited, s.err
}

func invokeRateLimit(limiter *stubLimiter) *httptest.ResponseRecorder {
	e := echo.New()
	handler := RateLimit(limiter, 10, time.Minute)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetPath("/v1/auth/login")

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec
}

func TestRateLimit_UnderLimitPassesThrough(t *testing.T) {
	limiter := &stubLimiter{}

	rec := invokeRateLimit(limiter)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, limiter.keys, 1)
	assert.Contains(t, limiter.keys[0], "/v1/auth/login")
}

func TestRateLimit_OverLimitRejected(t *testing.T) {
	limiter := &stubLimiter{limited: true}

	rec := invokeRateLimit(limiter)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestRateLimit_LimiterErrorLetsRequestThrough(t *testing.T) {
	limiter := &stubLimiter{limited: true, err: errors.New("redis unavailable")}

	rec := invokeRateLimit(limiter)

	assert.Equal(t, http.StatusOK, rec.Code)
}
