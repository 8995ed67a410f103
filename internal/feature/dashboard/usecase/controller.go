// Package usecase implements the dashboard view controller.
package usecase

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"stock_forecast/internal/feature/dashboard/domain"
	"stock_forecast/internal/feature/forecast/domain/entity"
)

// ForecastFetcher runs one fetch cycle.
// Following Go convention: interfaces are defined by the consumer (usecase), not the provider.
type ForecastFetcher interface {
	Fetch(ctx context.Context) (*entity.Forecast, error)
}

// Config tunes a Controller. Zero values select defaults.
type Config struct {
	Location *time.Location   // zone of the "last updated" label, time.Local if nil
	Now      func() time.Time // clock, time.Now if nil
}

// Controller owns the dashboard ViewState and the live search query.
//
// Refresh is cancel-and-restart: a new cycle cancels the one in flight and
// only the most recently dispatched cycle may write state.
type Controller struct {
	fetcher ForecastFetcher
	loc     *time.Location
	now     func() time.Time

	ctx  context.Context
	stop context.CancelFunc
	wg   sync.WaitGroup

	mu       sync.Mutex
	state    domain.ViewState
	query    string
	seq      uint64
	inflight context.CancelFunc
	settled  chan struct{}
	subs     map[chan struct{}]struct{}
}

// NewController creates a Controller and immediately starts the first cycle.
// Cycles are cancelled when ctx is done or Close is called.
func NewController(ctx context.Context, fetcher ForecastFetcher, cfg Config) *Controller {
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	cctx, stop := context.WithCancel(ctx)
	c := &Controller{
		fetcher: fetcher,
		loc:     cfg.Location,
		now:     cfg.Now,
		ctx:     cctx,
		stop:    stop,
		state:   domain.Initial(),
		subs:    make(map[chan struct{}]struct{}),
	}
	c.Refresh()
	return c
}

// Refresh starts a new fetch cycle and returns a channel that is closed when
// that cycle ends, whether it completed or was superseded.
func (c *Controller) Refresh() <-chan struct{} {
	c.mu.Lock()
	if c.inflight != nil {
		c.inflight()
	}
	c.seq++
	seq := c.seq
	ctx, cancel := context.WithCancel(c.ctx)
	c.inflight = cancel
	done := make(chan struct{})
	c.settled = done
	c.applyLocked(domain.FetchStarted{})
	c.mu.Unlock()

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		defer close(done)
		defer cancel()

		forecast, err := c.fetcher.Fetch(ctx)

		c.mu.Lock()
		defer c.mu.Unlock()
		if seq != c.seq {
			slog.Debug("discarding superseded fetch cycle", "seq", seq, "latest", c.seq)
			return
		}
		c.inflight = nil
		if err != nil {
			c.applyLocked(domain.FetchFailed{Message: err.Error()})
			return
		}
		var f entity.Forecast
		if forecast != nil {
			f = *forecast
		}
		c.applyLocked(domain.FetchSucceeded{Forecast: f, At: c.now(), Location: c.loc})
	}()
	return done
}

// Settled returns the channel of the most recently dispatched cycle.
func (c *Controller) Settled() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settled
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() domain.ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state.Clone()
}

// SetQuery updates the live search string. It never triggers a fetch.
func (c *Controller) SetQuery(q string) {
	c.mu.Lock()
	c.query = q
	c.mu.Unlock()
	c.notify()
}

// Query returns the live search string.
func (c *Controller) Query() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query
}

// Visible returns the instruments matching the live search string.
func (c *Controller) Visible() []entity.Instrument {
	c.mu.Lock()
	defer c.mu.Unlock()
	return domain.Filter(c.state.Instruments, c.query)
}

// Subscribe returns a channel signalled after every state or query change.
// Signals coalesce; receivers should read Snapshot after each one.
func (c *Controller) Subscribe() (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	c.mu.Lock()
	c.subs[ch] = struct{}{}
	c.mu.Unlock()
	return ch, func() {
		c.mu.Lock()
		delete(c.subs, ch)
		c.mu.Unlock()
	}
}

// Close cancels any cycle in flight and waits for it to return.
func (c *Controller) Close() {
	c.stop()
	c.wg.Wait()
}

func (c *Controller) applyLocked(ev domain.Event) {
	c.state = domain.Apply(c.state, ev)
	c.signalLocked()
}

func (c *Controller) notify() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.signalLocked()
}

func (c *Controller) signalLocked() {
	for ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
