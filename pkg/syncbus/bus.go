// Package syncbus turns medium change events and heartbeat ticks into handler calls
// executed one at a time on a single goroutine per client.
package syncbus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/celerix-dev/painel-store/internal/logging"
	"github.com/celerix-dev/painel-store/pkg/medium"
)

// ErrRunning is returned when Run is called on a bus that is already running.
var ErrRunning = errors.New("bus already running")

// ChangeHandler reacts to a write made by another client.
type ChangeHandler func(medium.Change)

// TickHandler runs on every heartbeat.
type TickHandler func(now time.Time)

type ticker struct {
	interval time.Duration
	handler  TickHandler
}

// event is one unit of work for the dispatch loop. Exactly one field is set.
type event struct {
	change *medium.Change
	tick   TickHandler
	at     time.Time
	fn     func()
}

// Bus is the per-client event loop. Register handlers before Run.
type Bus struct {
	watcher medium.Watcher
	logger  *zap.Logger

	mu      sync.Mutex
	routes  map[string][]ChangeHandler
	tickers []ticker
	running bool

	queueMu sync.Mutex
	queue   []event
	wake    chan struct{}
}

// New returns a bus fed by w.
func New(w medium.Watcher, logger *zap.Logger) *Bus {
	return &Bus{
		watcher: w,
		logger:  logging.OrNop(logger),
		routes:  make(map[string][]ChangeHandler),
		wake:    make(chan struct{}, 1),
	}
}

// OnExternalChange calls h whenever another client writes key.
func (b *Bus) OnExternalChange(key string, h ChangeHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.routes[key] = append(b.routes[key], h)
}

// OnTick calls h every interval while the bus runs.
func (b *Bus) OnTick(interval time.Duration, h TickHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tickers = append(b.tickers, ticker{interval: interval, handler: h})
}

// Post schedules fn on the dispatch goroutine. It never blocks, so handlers may post.
// Work posted while the bus is stopped runs on the next Run.
func (b *Bus) Post(fn func()) {
	b.enqueue(event{fn: fn})
}

func (b *Bus) enqueue(e event) {
	b.queueMu.Lock()
	b.queue = append(b.queue, e)
	b.queueMu.Unlock()

	select {
	case b.wake <- struct{}{}:
	default:
	}
}

func (b *Bus) drain() []event {
	b.queueMu.Lock()
	defer b.queueMu.Unlock()
	out := b.queue
	b.queue = nil
	return out
}

// Run subscribes to the medium, starts the tickers and dispatches events until ctx is done.
// The subscription and tickers are released on every return path.
func (b *Bus) Run(ctx context.Context) error {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return ErrRunning
	}
	tickers := append([]ticker(nil), b.tickers...)
	for _, t := range tickers {
		if t.interval <= 0 {
			b.mu.Unlock()
			return fmt.Errorf("tick interval must be positive, got %s", t.interval)
		}
	}
	b.running = true
	b.mu.Unlock()

	defer func() {
		b.mu.Lock()
		b.running = false
		b.mu.Unlock()
	}()

	cancelWatch, err := b.watcher.Watch(func(c medium.Change) {
		b.enqueue(event{change: &c})
	})
	if err != nil {
		return fmt.Errorf("watch medium: %w", err)
	}
	defer cancelWatch()

	g, gctx := errgroup.WithContext(ctx)
	for _, t := range tickers {
		t := t
		g.Go(func() error {
			tk := time.NewTicker(t.interval)
			defer tk.Stop()
			for {
				select {
				case <-gctx.Done():
					return nil
				case now := <-tk.C:
					b.enqueue(event{tick: t.handler, at: now})
				}
			}
		})
	}
	g.Go(func() error {
		return b.dispatch(gctx)
	})

	b.logger.Debug("bus running", zap.Int("tickers", len(tickers)))
	err = g.Wait()
	b.logger.Debug("bus stopped")
	return err
}

func (b *Bus) dispatch(ctx context.Context) error {
	for {
		for _, e := range b.drain() {
			b.handle(e)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-b.wake:
		}
	}
}

func (b *Bus) handle(e event) {
	switch {
	case e.fn != nil:
		e.fn()
	case e.tick != nil:
		e.tick(e.at)
	case e.change != nil:
		b.mu.Lock()
		handlers := append([]ChangeHandler(nil), b.routes[e.change.Key]...)
		b.mu.Unlock()
		for _, h := range handlers {
			h(*e.change)
		}
	}
}
