package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock_forecast/internal/feature/dashboard/domain"
	"stock_forecast/internal/feature/dashboard/usecase"
	"stock_forecast/internal/feature/forecast/domain/entity"
)

type result struct {
	forecast *entity.Forecast
	err      error
}

// gatedFetcher はn回目の呼び出しがgates[n]に結果が届くまでブロックするモックです。
// 遅いプロバイダーを模すため、contextのキャンセルは無視します。
type gatedFetcher struct {
	mu      sync.Mutex
	calls   int
	gates   []chan result
	started chan struct{}
}

func newGatedFetcher(n int) *gatedFetcher {
	f := &gatedFetcher{gates: make([]chan result, n), started: make(chan struct{}, n)}
	for i := range f.gates {
		f.gates[i] = make(chan result, 1)
	}
	return f
}

func (f *gatedFetcher) Fetch(ctx context.Context) (*entity.Forecast, error) {
	f.mu.Lock()
	idx := f.calls
	f.calls++
	f.mu.Unlock()
	f.started <- struct{}{}
	r := <-f.gates[idx]
	return r.forecast, r.err
}

func (f *gatedFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

var (
	pltr = entity.Instrument{Symbol: "PLTR", Name: "Palantir"}
	aapl = entity.Instrument{Symbol: "AAPL", Name: "Apple"}
	now  = time.Date(2026, 10, 19, 9, 5, 0, 0, time.UTC)
)

func forecastOf(ins ...entity.Instrument) *entity.Forecast {
	return &entity.Forecast{Instruments: ins, Sources: []entity.Source{}}
}

func newController(t *testing.T, f usecase.ForecastFetcher) *usecase.Controller {
	t.Helper()
	c := usecase.NewController(context.Background(), f, usecase.Config{
		Location: time.UTC,
		Now:      func() time.Time { return now },
	})
	t.Cleanup(c.Close)
	return c
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for fetch cycle")
	}
}

func TestController_StartsLoadingAndFetchesOnCreation(t *testing.T) {
	f := newGatedFetcher(1)
	c := newController(t, f)

	s := c.Snapshot()
	assert.Equal(t, domain.ModeLoading, s.Mode())

	f.gates[0] <- result{forecast: forecastOf(pltr, aapl)}
	waitFor(t, c.Settled())

	s = c.Snapshot()
	assert.Equal(t, domain.ModeSuccess, s.Mode())
	assert.Equal(t, []entity.Instrument{pltr, aapl}, s.Instruments)
	assert.Equal(t, "9:05 AM", s.LastUpdated)
	assert.Equal(t, 1, f.Calls())
}

func TestController_FailureRetainsPreviousInstruments(t *testing.T) {
	f := newGatedFetcher(2)
	c := newController(t, f)
	f.gates[0] <- result{forecast: forecastOf(pltr)}
	waitFor(t, c.Settled())

	done := c.Refresh()
	assert.True(t, c.Snapshot().Loading)
	f.gates[1] <- result{err: errors.New("The search engine encountered a temporary glitch.")}
	waitFor(t, done)

	s := c.Snapshot()
	assert.Equal(t, domain.ModeFailed, s.Mode())
	assert.Equal(t, "The search engine encountered a temporary glitch.", s.Error)
	assert.Equal(t, []entity.Instrument{pltr}, s.Instruments)
}

// TestController_StaleResponseNeverOverwritesNewer は先に発行した遅い応答が新しい応答を上書きしないことを検証します。
func TestController_StaleResponseNeverOverwritesNewer(t *testing.T) {
	f := newGatedFetcher(2)
	c := newController(t, f)
	first := c.Settled()
	waitFor(t, f.started)

	second := c.Refresh()
	f.gates[1] <- result{forecast: forecastOf(aapl)}
	waitFor(t, second)
	require.Equal(t, []entity.Instrument{aapl}, c.Snapshot().Instruments)

	f.gates[0] <- result{forecast: forecastOf(pltr)}
	waitFor(t, first)

	s := c.Snapshot()
	assert.Equal(t, domain.ModeSuccess, s.Mode())
	assert.Equal(t, []entity.Instrument{aapl}, s.Instruments)
}

func TestController_RefreshCancelsInFlightCycle(t *testing.T) {
	canceled := make(chan struct{})
	firstStarted := make(chan struct{})
	calls := 0
	var mu sync.Mutex
	f := fetchFunc(func(ctx context.Context) (*entity.Forecast, error) {
		mu.Lock()
		calls++
		n := calls
		mu.Unlock()
		if n == 1 {
			close(firstStarted)
			<-ctx.Done()
			close(canceled)
			return nil, ctx.Err()
		}
		return forecastOf(pltr), nil
	})
	c := newController(t, f)
	first := c.Settled()
	waitFor(t, firstStarted)

	waitFor(t, c.Refresh())
	waitFor(t, canceled)
	waitFor(t, first)

	s := c.Snapshot()
	assert.Equal(t, domain.ModeSuccess, s.Mode(), "the cancelled cycle must not write its error")
	assert.Equal(t, []entity.Instrument{pltr}, s.Instruments)
}

func TestController_QueryFiltersWithoutFetching(t *testing.T) {
	f := newGatedFetcher(1)
	c := newController(t, f)
	f.gates[0] <- result{forecast: forecastOf(pltr, aapl)}
	waitFor(t, c.Settled())

	c.SetQuery("plt")

	assert.Equal(t, "plt", c.Query())
	assert.Equal(t, []entity.Instrument{pltr}, c.Visible())
	assert.Equal(t, 1, f.Calls())

	c.SetQuery("")
	assert.Len(t, c.Visible(), 2)
}

func TestController_SubscribeSignalsTransitions(t *testing.T) {
	f := newGatedFetcher(1)
	c := newController(t, f)
	ch, unsubscribe := c.Subscribe()
	defer unsubscribe()

	f.gates[0] <- result{forecast: forecastOf(pltr)}
	waitFor(t, ch)

	c.SetQuery("x")
	waitFor(t, ch)
}

func TestController_SnapshotIsACopy(t *testing.T) {
	f := newGatedFetcher(1)
	c := newController(t, f)
	f.gates[0] <- result{forecast: forecastOf(pltr)}
	waitFor(t, c.Settled())

	s := c.Snapshot()
	s.Instruments[0].Symbol = "MUTATED"

	assert.Equal(t, "PLTR", c.Snapshot().Instruments[0].Symbol)
}

type fetchFunc func(ctx context.Context) (*entity.Forecast, error)

func (f fetchFunc) Fetch(ctx context.Context) (*entity.Forecast, error) { return f(ctx) }
