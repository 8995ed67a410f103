// Package config loads process-level settings shared by the binaries.
package config

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"stock_forecast/internal/feature/forecast/usecase"
)

// DefaultHTTPAddr is the listen address of the server.
const DefaultHTTPAddr = ":8080"

// Config holds settings read from the environment.
type Config struct {
	HTTPAddr        string
	ForecastTimeout time.Duration
	Location        *time.Location
}

// LoadDotEnv loads .env files into the environment. Variables already set win.
// Missing files are ignored.
func LoadDotEnv(files ...string) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				slog.Warn("failed to load env file", "file", f, "error", err)
			}
			continue
		}
		slog.Debug("loaded env file", "file", f)
	}
}

// LoadConfig reads HTTP_ADDR, FORECAST_TIMEOUT and TZ_DISPLAY. Invalid values fall back to defaults.
func LoadConfig() Config {
	cfg := Config{
		HTTPAddr:        DefaultHTTPAddr,
		ForecastTimeout: usecase.DefaultTimeout,
		Location:        time.Local,
	}
	if v := os.Getenv("HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv("FORECAST_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			cfg.ForecastTimeout = d
		} else {
			slog.Warn("invalid FORECAST_TIMEOUT, using default", "value", v, "default", usecase.DefaultTimeout)
		}
	}
	if v := os.Getenv("TZ_DISPLAY"); v != "" {
		if loc, err := time.LoadLocation(v); err == nil {
			cfg.Location = loc
		} else {
			slog.Warn("invalid TZ_DISPLAY, using local time", "value", v, "error", err)
		}
	}
	return cfg
}
