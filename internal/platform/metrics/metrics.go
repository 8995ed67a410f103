// Package metrics exposes Prometheus metrics for fetch cycles and refresh throttling.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stock_forecast/internal/feature/forecast/usecase"
)

// Metrics holds all Prometheus metrics of the service.
type Metrics struct {
	registry *prometheus.Registry

	// Fetch cycle metrics
	Cycles        *prometheus.CounterVec
	CycleDuration *prometheus.HistogramVec
	Instruments   prometheus.Gauge

	// Refresh throttling
	ThrottledRefreshes prometheus.Counter
}

// New creates a Metrics with its own registry, including Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),

		Cycles: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "forecast_cycles_total",
				Help: "Total number of fetch cycles by outcome",
			},
			[]string{"outcome"},
		),

		CycleDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "forecast_cycle_duration_seconds",
				Help:    "Duration of fetch cycles in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 15, 20, 30, 45, 60},
			},
			[]string{"outcome"},
		),

		Instruments: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "forecast_instruments",
				Help: "Number of instruments returned by the last successful cycle",
			},
		),

		ThrottledRefreshes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "forecast_refresh_throttled_total",
				Help: "Total number of refresh requests rejected by the rate limiter",
			},
		),
	}

	m.registry.MustRegister(
		m.Cycles,
		m.CycleDuration,
		m.Instruments,
		m.ThrottledRefreshes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// ObserveCycle records the result of one fetch cycle.
func (m *Metrics) ObserveCycle(outcome string, elapsed time.Duration, instruments int) {
	m.Cycles.WithLabelValues(outcome).Inc()
	m.CycleDuration.WithLabelValues(outcome).Observe(elapsed.Seconds())
	if outcome == usecase.OutcomeSuccess {
		m.Instruments.Set(float64(instruments))
	}
}

// Throttled records one rejected refresh.
func (m *Metrics) Throttled() {
	m.ThrottledRefreshes.Inc()
}

// Registry returns the registry the metrics are registered with.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
