package ratelimiter

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// mockLimiter はLimiterインターフェースのモック実装です。
type mockLimiter struct {
	AllowFunc func(ctx context.Context, key string) (bool, error)
}

func (m *mockLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return m.AllowFunc(ctx, key)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name          string
		allowed       bool
		err           error
		wantStatus    int
		wantThrottled int
	}{
		{"allowed", true, nil, http.StatusOK, 0},
		{"throttled", false, nil, http.StatusTooManyRequests, 1},
		{"limiter error fails open", false, errors.New("redis down"), http.StatusOK, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var gotKey string
			l := &mockLimiter{AllowFunc: func(_ context.Context, key string) (bool, error) {
				gotKey = key
				return tt.allowed, tt.err
			}}
			throttled := 0

			r := gin.New()
			r.POST("/refresh", Middleware(l, func() { throttled++ }), func(c *gin.Context) {
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodPost, "/refresh", nil)
			req.RemoteAddr = "192.0.2.1:1234"
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantThrottled, throttled)
			assert.Equal(t, "192.0.2.1", gotKey)
			if tt.wantStatus == http.StatusTooManyRequests {
				assert.JSONEq(t, `{"error":"`+ThrottleMessage+`"}`, w.Body.String())
			}
		})
	}
}
