package ratelimiter

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"stock_forecast/internal/api"
)

// ThrottleMessage は制限超過時のレスポンスメッセージです。
const ThrottleMessage = "Too many refresh requests. Please wait a moment and try again."

// Middleware はクライアントIPごとに Limiter を適用するginミドルウェアです。
// onThrottle は制限した際に呼ばれます（nil可）。
// Limiter 自体のエラー時はリクエストを通します（fail-open）。
func Middleware(l Limiter, onThrottle func()) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			slog.Warn("rate limiter unavailable, allowing request", "error", err)
			c.Next()
			return
		}
		if !allowed {
			slog.Info("refresh throttled", "remote_addr", c.ClientIP())
			if onThrottle != nil {
				onThrottle()
			}
			c.AbortWithStatusJSON(http.StatusTooManyRequests, api.ErrorResponse{Error: ThrottleMessage})
			return
		}
		c.Next()
	}
}
