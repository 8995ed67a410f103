package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"stock_forecast/internal/app/di"
	"stock_forecast/internal/app/router"
	dashboardhandler "stock_forecast/internal/feature/dashboard/transport/handler"
	"stock_forecast/internal/platform/config"
	"stock_forecast/internal/platform/logging"
	"stock_forecast/internal/platform/metrics"
	infraredis "stock_forecast/internal/platform/redis"
	"stock_forecast/internal/shared/ratelimiter"
)

func main() {
	config.LoadDotEnv()
	logging.Setup(os.Stderr, logging.LoadConfig())

	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	// APIキー未設定は起動時の致命的エラー
	gen, err := di.NewForecastGenerator(ctx, cfg)
	if err != nil {
		return err
	}

	// Redis（共有レート制限）
	var rdb *redisv9.Client
	if tmp, err := infraredis.NewRedisClient(ctx, infraredis.LoadConfig()); err != nil {
		slog.Warn("Redis unavailable. Using in-memory refresh limiter.", "error", err)
	} else {
		rdb = tmp
		defer func() {
			if err := rdb.Close(); err != nil {
				slog.Error("failed to close Redis client", "error", err)
			}
		}()
	}

	// Usecase
	m := metrics.New()
	forecastUC := di.NewForecastUsecase(gen, m, cfg)
	dashboard := di.NewDashboard(ctx, forecastUC, cfg)
	defer dashboard.Close()

	// Handler / ルータ生成
	limiter := di.NewRefreshLimiter(rdb, ratelimiter.LoadConfig())
	r := router.NewRouter(dashboardhandler.NewDashboardHandler(dashboard), m, limiter)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
