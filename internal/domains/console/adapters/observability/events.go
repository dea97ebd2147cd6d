package observability

import (
	"context"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/pos-console/internal/domains/console/domain"
	"github.com/Apurer/pos-console/internal/domains/console/ports"
)

const tracerName = "github.com/Apurer/pos-console/internal/domains/console/adapters/observability"

type Option func(*Publisher)

func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(p *Publisher) {
		p.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(p *Publisher) {
		if m == nil {
			return
		}
		p.published, _ = m.Int64Counter("console.events.published", metric.WithDescription("New-order events by outcome"))
	}
}

// Publisher decorates the new-order event publisher with tracing, logging, and metrics.
type Publisher struct {
	inner     ports.EventPublisher
	tracer    trace.Tracer
	logger    *slog.Logger
	published metric.Int64Counter
}

func NewPublisher(inner ports.EventPublisher, opts ...Option) *Publisher {
	p := &Publisher{
		inner:  inner,
		tracer: nooptrace.NewTracerProvider().Tracer(tracerName),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	if p.tracer == nil {
		p.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	if p.logger == nil {
		p.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return p
}

func (p *Publisher) PublishNewOrder(ctx context.Context, event domain.NewOrderEvent) error {
	ctx, span := p.tracer.Start(ctx, "EventPublisher.PublishNewOrder",
		trace.WithAttributes(attribute.String("order.id", event.OrderID)))
	defer span.End()

	if err := p.inner.PublishNewOrder(ctx, event); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.record(ctx, "failed")
		p.logger.WarnContext(ctx, "new order event failed",
			slog.String("order.id", event.OrderID), slog.String("error", err.Error()))
		return err
	}
	p.record(ctx, "ok")
	p.logger.DebugContext(ctx, "new order event published", slog.String("order.id", event.OrderID))
	return nil
}

func (p *Publisher) record(ctx context.Context, outcome string) {
	if p.published != nil {
		p.published.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

var _ ports.EventPublisher = (*Publisher)(nil)
