package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMetrics_ObserveCycle(t *testing.T) {
	t.Parallel()

	m := New()

	m.ObserveCycle("success", 2*time.Second, 42)
	m.ObserveCycle("parse", time.Second, 0)
	m.ObserveCycle("success", time.Second, 37)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Cycles.WithLabelValues("success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Cycles.WithLabelValues("parse")))
	assert.Equal(t, 37.0, testutil.ToFloat64(m.Instruments), "failures leave the gauge untouched")
	assert.Equal(t, 2, testutil.CollectAndCount(m.CycleDuration))
}

func TestMetrics_Throttled(t *testing.T) {
	t.Parallel()

	m := New()
	m.Throttled()
	m.Throttled()

	assert.Equal(t, 2.0, testutil.ToFloat64(m.ThrottledRefreshes))
}

func TestMetrics_Handler(t *testing.T) {
	t.Parallel()

	m := New()
	m.ObserveCycle("timeout", 30*time.Second, 0)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `forecast_cycles_total{outcome="timeout"} 1`)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}
