package application

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	orders "github.com/Apurer/pos-console/internal/domains/orders/domain"
	orderports "github.com/Apurer/pos-console/internal/domains/orders/ports"
)

const (
	DefaultPollInterval = 5 * time.Second
	pollerTracerName    = "github.com/Apurer/pos-console/internal/domains/console/application"
)

// TickOutcome describes what one poll cycle did.
type TickOutcome string

const (
	TickSkippedBusy     TickOutcome = "skipped_busy"
	TickUnauthenticated TickOutcome = "unauthenticated"
	TickFetchFailed     TickOutcome = "fetch_failed"
	TickDiscarded       TickOutcome = "discarded"
	TickSnapshotFailed  TickOutcome = "snapshot_failed"
	TickNoNewOrder      TickOutcome = "no_new_order"
	TickNotified        TickOutcome = "notified"
)

// TickResult is returned by Tick for diagnostics.
type TickResult struct {
	Outcome      TickOutcome
	Fetched      int
	PendingCount int
	NewOrder     *orders.Order
	Err          error
}

// Observer persists a fetch into the seen history and reports the new order.
type Observer interface {
	Observe(ctx context.Context, fetched []orders.Order) (orders.Detection, error)
}

// Notifier receives the poller's results.
type Notifier interface {
	Ring(ctx context.Context, order orders.Order)
	SetPendingCount(count int)
}

// Poller is the single process-wide order poll loop.
type Poller struct {
	feed     orderports.OrderFeed
	tokens   orderports.TokenStore
	observer Observer
	notifier Notifier

	interval time.Duration
	logger   *slog.Logger
	tracer   trace.Tracer
	ticks    metric.Int64Counter

	inFlight atomic.Bool
	wg       sync.WaitGroup

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

type PollerOption func(*Poller)

func WithInterval(d time.Duration) PollerOption {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

func WithLogger(logger *slog.Logger) PollerOption {
	return func(p *Poller) {
		if logger != nil {
			p.logger = logger
		}
	}
}

func WithTracer(tr trace.Tracer) PollerOption {
	return func(p *Poller) {
		if tr != nil {
			p.tracer = tr
		}
	}
}

func WithMeter(m metric.Meter) PollerOption {
	return func(p *Poller) {
		if m == nil {
			return
		}
		if counter, err := m.Int64Counter("console.poller.ticks"); err == nil {
			p.ticks = counter
		}
	}
}

func NewPoller(feed orderports.OrderFeed, tokens orderports.TokenStore, observer Observer, notifier Notifier, opts ...PollerOption) *Poller {
	p := &Poller{
		feed:     feed,
		tokens:   tokens,
		observer: observer,
		notifier: notifier,
		interval: DefaultPollInterval,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
		tracer:   nooptrace.NewTracerProvider().Tracer(pollerTracerName),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Start launches the loop with an immediate first tick. A second Start while
// running is a no-op.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.done = make(chan struct{})
	go p.run(ctx, p.done)
}

// Stop cancels the loop and waits for outstanding ticks to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done = nil, nil
	p.mu.Unlock()
	if cancel == nil {
		return
	}
	cancel()
	<-done
	p.wg.Wait()
}

func (p *Poller) run(ctx context.Context, done chan struct{}) {
	defer close(done)
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.wg.Add(1)
			go func() {
				defer p.wg.Done()
				p.Tick(ctx)
			}()
		}
	}
}

// Tick runs one poll cycle. A cycle that overlaps an outstanding one is skipped.
func (p *Poller) Tick(ctx context.Context) TickResult {
	if !p.inFlight.CompareAndSwap(false, true) {
		return p.finish(ctx, TickResult{Outcome: TickSkippedBusy})
	}
	defer p.inFlight.Store(false)

	ctx, span := p.tracer.Start(ctx, "Poller.Tick")
	defer span.End()

	result := p.tick(ctx)
	span.SetAttributes(
		attribute.String("poller.outcome", string(result.Outcome)),
		attribute.Int("orders.fetched", result.Fetched),
	)
	if result.Err != nil {
		span.RecordError(result.Err)
		span.SetStatus(codes.Error, result.Err.Error())
	}
	return p.finish(ctx, result)
}

func (p *Poller) tick(ctx context.Context) TickResult {
	token, err := p.tokens.Token(ctx)
	if err != nil {
		return TickResult{Outcome: TickUnauthenticated, Err: err}
	}
	if token == "" {
		return TickResult{Outcome: TickUnauthenticated}
	}

	fetched, err := p.feed.FetchOrders(ctx, token)
	if ctx.Err() != nil {
		return TickResult{Outcome: TickDiscarded, Err: ctx.Err()}
	}
	if err != nil {
		return TickResult{Outcome: TickFetchFailed, Err: err}
	}

	// The token may have been cleared while the request was in flight.
	if current, err := p.tokens.Token(ctx); err != nil || current == "" {
		return TickResult{Outcome: TickDiscarded, Fetched: len(fetched), Err: err}
	}

	detection, err := p.observer.Observe(ctx, fetched)
	if err != nil {
		return TickResult{Outcome: TickSnapshotFailed, Fetched: len(fetched), Err: err}
	}

	pending := orders.PendingCount(fetched)
	p.notifier.SetPendingCount(pending)

	result := TickResult{Outcome: TickNoNewOrder, Fetched: len(fetched), PendingCount: pending}
	if detection.NewOrder != nil {
		result.Outcome = TickNotified
		result.NewOrder = detection.NewOrder
		p.notifier.Ring(ctx, *detection.NewOrder)
	}
	return result
}

func (p *Poller) finish(ctx context.Context, result TickResult) TickResult {
	if p.ticks != nil {
		p.ticks.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(result.Outcome))))
	}
	switch {
	case result.Err == nil:
		p.logger.DebugContext(ctx, "poll tick", slog.String("outcome", string(result.Outcome)))
	case errors.Is(result.Err, context.Canceled), errors.Is(result.Err, context.DeadlineExceeded):
		p.logger.DebugContext(ctx, "poll tick discarded", slog.String("outcome", string(result.Outcome)))
	default:
		p.logger.WarnContext(ctx, "poll tick failed",
			slog.String("outcome", string(result.Outcome)),
			slog.String("error", result.Err.Error()))
	}
	return result
}
