package di

import (
	"github.com/redis/go-redis/v9"

	"stock_forecast/internal/shared/ratelimiter"
)

// NewRefreshLimiter creates the refresh Limiter.
// If Redis is available, it returns a Redis-backed implementation shared by all instances.
// Otherwise, it falls back to an in-process token bucket.
func NewRefreshLimiter(rdb *redis.Client, cfg ratelimiter.Config) ratelimiter.Limiter {
	if rdb != nil {
		return ratelimiter.NewRedisLimiter(rdb, "refresh", cfg)
	}
	return ratelimiter.NewMemoryLimiter(cfg)
}
