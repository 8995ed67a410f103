package gemini

import (
	"log/slog"
	"os"
	"strconv"
	"time"
)

const (
	// DefaultModel はGemini APIのデフォルトモデルです。
	DefaultModel = "gemini-2.5-flash"
	// DefaultTemperature は事実性を優先した低めのサンプリング温度です。
	DefaultTemperature float32 = 0.1
	// DefaultHTTPTimeout はHTTPクライアント全体のタイムアウトです。
	// サイクル単位のデッドラインより長く取り、キャンセルはcontext側で行います。
	DefaultHTTPTimeout = 60 * time.Second
)

// Config holds configuration for the Gemini forecast generator.
type Config struct {
	APIKey       string        // API key (GEMINI_API_KEY, GOOGLE_API_KEY or API_KEY)
	Model        string        // model identifier
	Temperature  float32       // sampling temperature
	JSONResponse bool          // request application/json output
	BaseURL      string        // optional endpoint override (proxies, tests)
	HTTPTimeout  time.Duration // HTTP client timeout
}

// LoadConfig loads Gemini configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		APIKey:      firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY", "API_KEY"),
		Model:       os.Getenv("GEMINI_MODEL"),
		Temperature: DefaultTemperature,
		BaseURL:     os.Getenv("GEMINI_BASE_URL"),
		HTTPTimeout: DefaultHTTPTimeout,
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if v := os.Getenv("GEMINI_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 32)
		if err != nil || t < 0 || t > 2 {
			slog.Warn("invalid GEMINI_TEMPERATURE, using default", "value", v, "default", DefaultTemperature)
		} else {
			cfg.Temperature = float32(t)
		}
	}
	if v := os.Getenv("GEMINI_JSON_RESPONSE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			slog.Warn("invalid GEMINI_JSON_RESPONSE, using default", "value", v)
		}
		cfg.JSONResponse = b
	}
	return cfg
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
