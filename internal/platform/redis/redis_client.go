// Package redis はRedis接続を提供します。
package redis

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNotConfigured はREDIS_HOSTが未設定であることを表します。
var ErrNotConfigured = errors.New("redis is not configured")

// DefaultPort はREDIS_PORT未設定時のポートです。
const DefaultPort = "6379"

// Config はRedis接続設定です。
type Config struct {
	Host        string
	Port        string
	Password    string
	DB          int
	DialTimeout time.Duration
}

// Addr は host:port 形式のアドレスを返します。
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, c.Port)
}

// LoadConfig は環境変数 REDIS_HOST / REDIS_PORT / REDIS_PASSWORD / REDIS_DB を読み込みます。
func LoadConfig() Config {
	cfg := Config{
		Host:        os.Getenv("REDIS_HOST"),
		Port:        os.Getenv("REDIS_PORT"),
		Password:    os.Getenv("REDIS_PASSWORD"),
		DialTimeout: 2 * time.Second,
	}
	if cfg.Port == "" {
		cfg.Port = DefaultPort
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			cfg.DB = n
		} else {
			slog.Warn("invalid REDIS_DB, using 0", "value", v)
		}
	}
	return cfg
}

// NewRedisClient はRedisクライアントを生成し、接続確認を行います。
// Hostが空の場合は ErrNotConfigured を返します。呼び出し側はメモリ実装へフォールバックします。
func NewRedisClient(ctx context.Context, cfg Config) (*redis.Client, error) {
	if cfg.Host == "" {
		return nil, ErrNotConfigured
	}
	addr := cfg.Addr()

	rdb := redis.NewClient(&redis.Options{
		Addr:        addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: cfg.DialTimeout,
	})

	// 接続確認
	pingCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout+time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Error("Redis connection failed", "address", addr, "error", err)
		_ = rdb.Close()
		return nil, err
	}

	slog.Info("Redis connection successful", "address", addr)
	return rdb, nil
}
