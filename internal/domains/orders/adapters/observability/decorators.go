package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	"github.com/Apurer/pos-console/internal/domains/orders/ports"
)

const tracerName = "github.com/Apurer/pos-console/internal/domains/orders/adapters/observability"

type Option func(*decorator)

func WithLogger(logger *slog.Logger) Option {
	return func(d *decorator) {
		d.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(d *decorator) {
		d.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(d *decorator) {
		d.metrics = newOrderMetrics(m)
	}
}

type decorator struct {
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics orderMetrics
}

func newDecorator(opts []Option) decorator {
	d := decorator{
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newOrderMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&d)
		}
	}
	if d.tracer == nil {
		d.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return d
}

// Feed decorates the order feed with tracing, logging, and metrics.
type Feed struct {
	decorator
	inner ports.OrderFeed
}

// NewFeed wraps the order feed.
func NewFeed(inner ports.OrderFeed, opts ...Option) *Feed {
	return &Feed{decorator: newDecorator(opts), inner: inner}
}

func (f *Feed) FetchOrders(ctx context.Context, token string) ([]domain.Order, error) {
	ctx, span := f.tracer.Start(ctx, "OrderFeed.FetchOrders",
		trace.WithAttributes(attribute.Bool("auth.present", token != "")))
	defer span.End()

	orders, err := f.inner.FetchOrders(ctx, token)
	if err != nil {
		f.metrics.recordFetch(ctx, "failed")
		// Retried on the next tick.
		return nil, f.handleError(ctx, span, slog.LevelWarn, err, "order fetch failed")
	}
	f.metrics.recordFetch(ctx, "ok")
	span.SetAttributes(attribute.Int("orders.count", len(orders)))
	f.log(ctx, slog.LevelDebug, "orders fetched", slog.Int("orders.count", len(orders)))
	return orders, nil
}

// Gateway decorates the status gateway with tracing, logging, and metrics.
type Gateway struct {
	decorator
	inner ports.ActionGateway
}

// NewGateway wraps the action gateway.
func NewGateway(inner ports.ActionGateway, opts ...Option) *Gateway {
	return &Gateway{decorator: newDecorator(opts), inner: inner}
}

func (g *Gateway) SetStatus(ctx context.Context, orderID string, status domain.Status) error {
	ctx, span := g.tracer.Start(ctx, "OrderActionGateway.SetStatus",
		trace.WithAttributes(attribute.String("order.id", orderID), attribute.String("order.status", string(status))))
	defer span.End()

	g.log(ctx, slog.LevelInfo, "updating order status", slog.String("order.id", orderID), slog.String("status", string(status)))
	if err := g.inner.SetStatus(ctx, orderID, status); err != nil {
		g.metrics.recordAction(ctx, status, "failed")
		return g.handleError(ctx, span, slog.LevelError, err, "order status update failed",
			slog.String("order.id", orderID), slog.String("status", string(status)))
	}
	g.metrics.recordAction(ctx, status, "ok")
	g.log(ctx, slog.LevelInfo, "order status updated", slog.String("order.id", orderID), slog.String("status", string(status)))
	return nil
}

func (d *decorator) log(ctx context.Context, level slog.Level, msg string, attrs ...slog.Attr) {
	if d.logger == nil {
		return
	}
	d.logger.LogAttrs(ctx, level, msg, attrs...)
}

func (d *decorator) handleError(ctx context.Context, span trace.Span, level slog.Level, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	var actionErr *ports.ActionError
	if errors.As(err, &actionErr) && actionErr.Message != "" {
		attrs = append(attrs, slog.String("api.message", actionErr.Message))
	}
	d.log(ctx, level, msg, attrs...)
	return err
}

type orderMetrics struct {
	fetches metric.Int64Counter
	actions metric.Int64Counter
}

func newOrderMetrics(m metric.Meter) orderMetrics {
	if m == nil {
		return orderMetrics{}
	}
	fetches, _ := m.Int64Counter("orders.feed.fetches", metric.WithDescription("Order listing fetches by outcome"))
	actions, _ := m.Int64Counter("orders.gateway.actions", metric.WithDescription("Order status transitions by outcome"))
	return orderMetrics{fetches: fetches, actions: actions}
}

func (m orderMetrics) recordFetch(ctx context.Context, outcome string) {
	if m.fetches != nil {
		m.fetches.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
	}
}

func (m orderMetrics) recordAction(ctx context.Context, status domain.Status, outcome string) {
	if m.actions != nil {
		m.actions.Add(ctx, 1, metric.WithAttributes(
			attribute.String("order.status", string(status)),
			attribute.String("outcome", outcome),
		))
	}
}

var (
	_ ports.OrderFeed     = (*Feed)(nil)
	_ ports.ActionGateway = (*Gateway)(nil)
)
