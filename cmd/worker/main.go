package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/pos-console/internal/clients/http/orderapi"
	ordersmemory "github.com/Apurer/pos-console/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/pos-console/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/pos-console/internal/domains/orders/adapters/persistence/postgres"
	ordersremote "github.com/Apurer/pos-console/internal/domains/orders/adapters/remote"
	ordersports "github.com/Apurer/pos-console/internal/domains/orders/ports"
	orderworkflows "github.com/Apurer/pos-console/internal/durable/temporal/workflows/orders"
	platformobservability "github.com/Apurer/pos-console/internal/platform/observability"
	platformpostgres "github.com/Apurer/pos-console/internal/platform/postgres"
	orderactivities "github.com/Apurer/pos-console/internal/platform/temporal/activities/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "pos-console-worker"
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	baseURL := strings.TrimSpace(os.Getenv("ORDER_API_BASE_URL"))
	apiClient, err := orderapi.NewClient(baseURL, orderapi.NewInstrumentedHTTPClient(10*time.Second))
	if err != nil {
		logger.Error("failed to configure order API client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	tokens, cleanupTokens := buildTokenStore(ctx, logger)
	defer cleanupTokens()
	gateway := ordersobs.NewGateway(
		ordersremote.NewGateway(apiClient, tokens),
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.adapters")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.adapters")),
	)
	statusActivities := orderactivities.NewActivities(gateway)

	tracerOptions := temporalotel.TracerOptions{Tracer: instruments.Tracer("temporal-worker")}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		logger.Error("failed to configure Temporal tracing interceptor", slog.String("error", err.Error()))
		os.Exit(1)
	}
	clientOptions := client.Options{
		HostPort:  envOrDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		Namespace: envOrDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		Logger:    workerlog.NewStructuredLogger(logger),
	}
	clientOptions.Interceptors = append(clientOptions.Interceptors, tracingInterceptor)
	temporalClient, err := client.Dial(clientOptions)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.StatusTransitionTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.StatusTransitionWorkflow, workflow.RegisterOptions{Name: orderworkflows.StatusTransitionWorkflowName})
	w.RegisterActivityWithOptions(statusActivities.SetOrderStatus, activity.RegisterOptions{Name: orderactivities.SetOrderStatusActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.StatusTransitionTaskQueue), slog.String("namespace", clientOptions.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}

// The worker reads the operator token the console stored; without postgres it has none.
func buildTokenStore(ctx context.Context, logger *slog.Logger) (ordersports.TokenStore, func()) {
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	if db == nil {
		logger.Warn("worker has no shared token store; status updates will fail until POSTGRES_DSN is set")
		return ordersmemory.NewTokenStore(""), cleanup
	}
	return orderspostgres.NewTokenStore(db), cleanup
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
