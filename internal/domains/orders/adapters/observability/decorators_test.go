package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Apurer/pos-console/internal/domains/orders/domain"
	"github.com/Apurer/pos-console/internal/domains/orders/ports"
)

type stubFeed struct {
	orders []domain.Order
	err    error
}

func (s stubFeed) FetchOrders(context.Context, string) ([]domain.Order, error) {
	return s.orders, s.err
}

type stubGateway struct{ err error }

func (s stubGateway) SetStatus(context.Context, string, domain.Status) error { return s.err }

func TestFeed_RecordsSpanAndMetric(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))

	feed := NewFeed(stubFeed{orders: []domain.Order{{ID: "1"}}},
		WithTracer(tp.Tracer("test")), WithMeter(mp.Meter("test")))

	orders, err := feed.FetchOrders(context.Background(), "token")
	require.NoError(t, err)
	require.Len(t, orders, 1)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	require.Equal(t, "OrderFeed.FetchOrders", spans[0].Name())

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.NotEmpty(t, rm.ScopeMetrics)
}

func TestFeed_LogsFailureAtWarn(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	feed := NewFeed(stubFeed{err: ports.ErrFetchFailed}, WithLogger(logger))

	_, err := feed.FetchOrders(context.Background(), "token")
	require.ErrorIs(t, err, ports.ErrFetchFailed)
	require.Contains(t, buf.String(), "level=WARN")
	require.Contains(t, buf.String(), "order fetch failed")
}

func TestGateway_PassesActionErrorThrough(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	cause := &ports.ActionError{OrderID: "42", Status: domain.StatusAccepted, Message: "closed", Err: errors.New("409")}
	gateway := NewGateway(stubGateway{err: cause}, WithLogger(logger))

	err := gateway.SetStatus(context.Background(), "42", domain.StatusAccepted)
	require.Same(t, cause, err)
	require.Contains(t, buf.String(), "api.message=closed")
}
