package router

import (
	"github.com/gin-gonic/gin"

	dashboardhandler "stock_forecast/internal/feature/dashboard/transport/handler"
	"stock_forecast/internal/platform/http/handler"
	"stock_forecast/internal/platform/metrics"
	"stock_forecast/internal/shared/ratelimiter"
)

func NewRouter(dashboard *dashboardhandler.DashboardHandler, m *metrics.Metrics, limiter ratelimiter.Limiter) *gin.Engine {
	r := gin.Default()
	r.SetHTMLTemplate(dashboardhandler.Templates())

	// 導通確認用
	r.GET("/healthz", handler.Health)
	r.HEAD("/healthz", handler.Health)
	// 初回取得が成功しているか
	r.GET("/readyz", dashboard.Ready)
	r.GET("/metrics", handler.Metrics(m.Handler()))

	// 手動リフレッシュはレート制限付き
	throttle := ratelimiter.Middleware(limiter, m.Throttled)

	// HTMLダッシュボード
	r.GET("/", dashboard.Page)
	r.POST("/refresh", throttle, dashboard.RefreshPage)

	// JSON API
	v1 := r.Group("/v1")
	{
		v1.GET("/forecast", dashboard.Forecast)
		v1.POST("/forecast/refresh", throttle, dashboard.Refresh)
	}

	return r
}
