// Package di provides dependency injection factories for creating application components.
package di

import (
	"context"
	"time"

	dashboardusecase "stock_forecast/internal/feature/dashboard/usecase"
	"stock_forecast/internal/feature/forecast/adapters/gemini"
	"stock_forecast/internal/feature/forecast/usecase"
	"stock_forecast/internal/platform/config"
	infrahttp "stock_forecast/internal/platform/http"
)

// clientTimeoutGrace keeps the HTTP client deadline behind the cycle deadline
// so a slow call is always reported against FORECAST_TIMEOUT.
const clientTimeoutGrace = 5 * time.Second

// NewForecastGenerator creates a fully configured GeminiGenerator with HTTP client.
// It returns domain.ErrMissingAPIKey when no API key is set.
func NewForecastGenerator(ctx context.Context, cfg config.Config) (*gemini.GeminiGenerator, error) {
	gcfg := gemini.LoadConfig()
	gcfg.HTTPTimeout = clientTimeout(gcfg.HTTPTimeout, cfg.ForecastTimeout)
	httpClient := infrahttp.NewHTTPClient(gcfg.HTTPTimeout)
	return gemini.NewGeminiGenerator(ctx, gcfg, httpClient)
}

// clientTimeout returns the configured client timeout unless it would fire
// before the cycle deadline.
func clientTimeout(configured, cycle time.Duration) time.Duration {
	if cycle <= 0 {
		return configured
	}
	return max(configured, cycle+clientTimeoutGrace)
}

// NewForecastUsecase creates the fetch cycle. observer may be nil.
func NewForecastUsecase(gen usecase.ForecastGenerator, observer usecase.CycleObserver, cfg config.Config) *usecase.ForecastUsecase {
	return usecase.NewForecastUsecase(gen, observer, usecase.Config{
		Timeout:  cfg.ForecastTimeout,
		Location: cfg.Location,
	})
}

// NewDashboard creates the view controller and starts its first cycle.
func NewDashboard(ctx context.Context, fetcher dashboardusecase.ForecastFetcher, cfg config.Config) *dashboardusecase.Controller {
	return dashboardusecase.NewController(ctx, fetcher, dashboardusecase.Config{Location: cfg.Location})
}
