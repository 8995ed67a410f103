package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"stock_forecast/internal/feature/dashboard/domain"
	dashboardhandler "stock_forecast/internal/feature/dashboard/transport/handler"
	"stock_forecast/internal/platform/metrics"
	"stock_forecast/internal/shared/ratelimiter"
)

type stubController struct{}

func (stubController) Refresh() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}

func (stubController) Snapshot() domain.ViewState { return domain.Initial() }

func newTestRouter(limit int) (*gin.Engine, *metrics.Metrics) {
	gin.SetMode(gin.TestMode)
	m := metrics.New()
	limiter := ratelimiter.NewMemoryLimiter(ratelimiter.Config{Limit: limit, Interval: time.Hour})
	return NewRouter(dashboardhandler.NewDashboardHandler(stubController{}), m, limiter), m
}

func TestNewRouter_Routes(t *testing.T) {
	r, _ := newTestRouter(10)

	tests := []struct {
		method         string
		path           string
		expectedStatus int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodHead, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusServiceUnavailable},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/", http.StatusOK},
		{http.MethodPost, "/refresh", http.StatusSeeOther},
		{http.MethodGet, "/v1/forecast", http.StatusOK},
		{http.MethodPost, "/v1/forecast/refresh", http.StatusAccepted},
		{http.MethodGet, "/v1/unknown", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
		})
	}
}

// TestNewRouter_RefreshThrottled は上限を超えたリフレッシュが429になり、メトリクスに記録されることを検証します。
func TestNewRouter_RefreshThrottled(t *testing.T) {
	r, m := newTestRouter(1)

	first := httptest.NewRecorder()
	r.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/v1/forecast/refresh", nil))
	second := httptest.NewRecorder()
	r.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/v1/forecast/refresh", nil))

	assert.Equal(t, http.StatusAccepted, first.Code)
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.ThrottledRefreshes))

	// 読み取りは制限されない
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v1/forecast", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
