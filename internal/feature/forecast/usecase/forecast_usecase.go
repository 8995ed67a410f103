// Package usecase implements the fetch-parse-normalize cycle of the forecast feature.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"stock_forecast/internal/feature/forecast/domain"
	"stock_forecast/internal/feature/forecast/domain/entity"
)

const (
	// DefaultTimeout bounds one fetch cycle.
	DefaultTimeout = 30 * time.Second

	// GlitchMessage replaces provider errors that report an INTERNAL status.
	GlitchMessage = "The search engine encountered a temporary glitch. Please try refreshing in a moment."
	// FallbackMessage is shown when a provider error carries no text.
	FallbackMessage = "Internal Server Error during market sync."
)

// Cycle outcomes reported to the CycleObserver.
const (
	OutcomeSuccess  = "success"
	OutcomeConfig   = "config"
	OutcomeEmpty    = "empty"
	OutcomeParse    = "parse"
	OutcomeTimeout  = "timeout"
	OutcomeCanceled = "canceled"
	OutcomeUpstream = "upstream"
)

// ForecastGenerator sends a prompt to a search-grounded model.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider (adapters).
type ForecastGenerator interface {
	// Generate returns the model's text and its grounding citations.
	Generate(ctx context.Context, prompt string) (*entity.Completion, error)
}

// CycleObserver receives the result of every fetch cycle.
type CycleObserver interface {
	ObserveCycle(outcome string, elapsed time.Duration, instruments int)
}

// Config tunes a ForecastUsecase. Zero values select defaults.
type Config struct {
	Timeout  time.Duration    // per-cycle deadline, DefaultTimeout if zero
	Location *time.Location   // zone for the prompt timestamp, time.Local if nil
	Now      func() time.Time // clock, time.Now if nil
}

// ForecastUsecase asks the model for forecasts and normalizes the reply.
type ForecastUsecase struct {
	gen      ForecastGenerator
	observer CycleObserver
	cfg      Config
}

// NewForecastUsecase creates a ForecastUsecase. observer may be nil.
func NewForecastUsecase(gen ForecastGenerator, observer CycleObserver, cfg Config) *ForecastUsecase {
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &ForecastUsecase{gen: gen, observer: observer, cfg: cfg}
}

// Fetch runs one fetch cycle. Every error it returns is a *domain.FetchError.
func (u *ForecastUsecase) Fetch(ctx context.Context) (*entity.Forecast, error) {
	cycleID := uuid.NewString()
	started := time.Now()

	ctx, cancel := context.WithTimeout(ctx, u.cfg.Timeout)
	defer cancel()

	forecast, err := u.fetch(ctx)
	elapsed := time.Since(started)
	if err != nil {
		fe, outcome := u.toFetchError(err)
		if outcome == OutcomeCanceled {
			// リフレッシュによる打ち切りは通常動作
			slog.Debug("forecast fetch cancelled", "cycle_id", cycleID, "elapsed", elapsed)
		} else {
			slog.Error("forecast fetch failed", "cycle_id", cycleID, "outcome", outcome, "elapsed", elapsed, "error", err)
		}
		u.observe(outcome, elapsed, 0)
		return nil, fe
	}

	slog.Info("forecast fetched", "cycle_id", cycleID, "instruments", len(forecast.Instruments),
		"sources", len(forecast.Sources), "elapsed", elapsed)
	u.observe(OutcomeSuccess, elapsed, len(forecast.Instruments))
	return forecast, nil
}

func (u *ForecastUsecase) fetch(ctx context.Context) (*entity.Forecast, error) {
	if u.gen == nil {
		return nil, domain.ErrMissingAPIKey
	}
	timestamp := FormatTimestamp(u.cfg.Now(), u.cfg.Location)

	completion, err := u.gen.Generate(ctx, BuildPrompt(timestamp))
	if err != nil {
		return nil, err
	}
	if completion == nil || strings.TrimSpace(completion.Text) == "" {
		return nil, domain.ErrEmptyResponse
	}

	raw, err := ExtractArray(completion.Text)
	if err != nil {
		return nil, err
	}

	instruments := DedupeBySymbol(NormalizeInstruments(raw, timestamp))
	if len(instruments) > MaxInstruments {
		instruments = instruments[:MaxInstruments]
	}
	return &entity.Forecast{
		Instruments: instruments,
		Sources:     NormalizeSources(completion.Citations),
	}, nil
}

// toFetchError maps a cycle failure to the message shown to users.
func (u *ForecastUsecase) toFetchError(err error) (*domain.FetchError, string) {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return fe, OutcomeUpstream
	}

	switch {
	case errors.Is(err, domain.ErrMissingAPIKey):
		return &domain.FetchError{Message: domain.ErrMissingAPIKey.Error(), Err: err}, OutcomeConfig
	case errors.Is(err, context.DeadlineExceeded):
		return &domain.FetchError{
			Message: fmt.Sprintf("The market sync timed out after %s. Please try again.", u.cfg.Timeout),
			Err:     fmt.Errorf("%w: %w", domain.ErrTimeout, err),
		}, OutcomeTimeout
	case errors.Is(err, context.Canceled):
		return &domain.FetchError{Message: "The market sync was cancelled.", Err: err}, OutcomeCanceled
	case errors.Is(err, domain.ErrEmptyResponse):
		return &domain.FetchError{Message: "The AI returned an empty response.", Err: err}, OutcomeEmpty
	case errors.Is(err, domain.ErrParse):
		return &domain.FetchError{Message: "Failed to parse stock data JSON.", Err: err}, OutcomeParse
	case strings.Contains(err.Error(), "INTERNAL"):
		return &domain.FetchError{Message: GlitchMessage, Err: err}, OutcomeUpstream
	}

	msg := err.Error()
	if strings.TrimSpace(msg) == "" {
		msg = FallbackMessage
	}
	return &domain.FetchError{Message: msg, Err: err}, OutcomeUpstream
}

func (u *ForecastUsecase) observe(outcome string, elapsed time.Duration, instruments int) {
	if u.observer != nil {
		u.observer.ObserveCycle(outcome, elapsed, instruments)
	}
}
