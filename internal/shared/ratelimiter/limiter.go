// Package ratelimiter は手動リフレッシュなどの操作頻度を制限します。
package ratelimiter

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

const (
	// DefaultLimit は1ウィンドウあたりの許可回数です。
	DefaultLimit = 6
	// DefaultInterval はカウントをリセットする単位です。
	DefaultInterval = time.Minute
)

// Limiter は、キーごとに操作を許可するかどうかを判定するインターフェースです。
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config はリミッターの設定を保持します。
type Config struct {
	Limit    int           // interval あたりの上限
	Interval time.Duration // どの単位でリセットするか
}

// LoadConfig は環境変数から設定を読み込みます。不正な値はデフォルトに戻します。
func LoadConfig() Config {
	cfg := Config{Limit: DefaultLimit, Interval: DefaultInterval}
	if v := os.Getenv("REFRESH_RATE_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Limit = n
		} else {
			slog.Warn("invalid REFRESH_RATE_LIMIT, using default", "value", v, "default", DefaultLimit)
		}
	}
	if v := os.Getenv("REFRESH_RATE_INTERVAL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.Interval = d
		} else {
			slog.Warn("invalid REFRESH_RATE_INTERVAL, using default", "value", v, "default", DefaultInterval)
		}
	}
	return cfg
}

// MemoryLimiter はプロセス内のトークンバケットでキーごとに制限します。
// interval 以上使われていないキーは満タンのバケットと等価なので削除します。
type MemoryLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*memoryEntry
	every     rate.Limit
	burst     int
	idle      time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var _ Limiter = (*MemoryLimiter)(nil)

// NewMemoryLimiter は interval あたり limit 回まで許可するリミッターを生成します。
func NewMemoryLimiter(cfg Config) *MemoryLimiter {
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &MemoryLimiter{
		limiters: make(map[string]*memoryEntry),
		every:    rate.Every(cfg.Interval / time.Duration(cfg.Limit)),
		burst:    cfg.Limit,
		idle:     cfg.Interval,
		now:      time.Now,
	}
}

// Allow は key のトークンを1つ消費できれば true を返します。
func (l *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	l.sweep(now)

	e, ok := l.limiters[key]
	if !ok {
		e = &memoryEntry{limiter: rate.NewLimiter(l.every, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1), nil
}

// sweep は idle 以上アクセスのないキーを削除します。走査は idle ごとに1回までです。
// l.mu を保持した状態で呼び出してください。
func (l *MemoryLimiter) sweep(now time.Time) {
	if now.Sub(l.lastSweep) < l.idle {
		return
	}
	l.lastSweep = now
	for k, e := range l.limiters {
		if now.Sub(e.lastSeen) >= l.idle {
			delete(l.limiters, k)
		}
	}
}

// RedisLimiter は Redis の固定ウィンドウカウンター（INCR + EXPIRE）で制限します。
// 複数インスタンス間で上限を共有できます。
type RedisLimiter struct {
	client *redis.Client
	prefix string
	cfg    Config
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter は新しいRedisLimiterを生成します。
func NewRedisLimiter(client *redis.Client, prefix string, cfg Config) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	if cfg.Limit <= 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultInterval
	}
	return &RedisLimiter{client: client, prefix: prefix, cfg: cfg, now: time.Now}
}

// windowKey は現在のウィンドウに対応するRedisキーを返します。
func (l *RedisLimiter) windowKey(key string) string {
	window := l.now().UnixNano() / int64(l.cfg.Interval)
	return fmt.Sprintf("%s:%s:%d", l.prefix, key, window)
}

// Allow はウィンドウ内のカウントを増やし、上限以内なら true を返します。
func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	k := l.windowKey(key)
	n, err := l.client.Incr(ctx, k).Result()
	if err != nil {
		return false, fmt.Errorf("failed to increment rate counter: %w", err)
	}
	if n == 1 {
		// ウィンドウの最初の呼び出しでのみ期限を設定
		if err := l.client.Expire(ctx, k, l.cfg.Interval).Err(); err != nil {
			return false, fmt.Errorf("failed to set rate counter expiry: %w", err)
		}
	}
	return n <= int64(l.cfg.Limit), nil
}
