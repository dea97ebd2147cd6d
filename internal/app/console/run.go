package console

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.temporal.io/sdk/client"
	temporalotel "go.temporal.io/sdk/contrib/opentelemetry"
	workerlog "go.temporal.io/sdk/log"
	"gorm.io/gorm"

	"github.com/Apurer/pos-console/internal/clients/http/orderapi"
	consoleevents "github.com/Apurer/pos-console/internal/domains/console/adapters/events"
	consolehttp "github.com/Apurer/pos-console/internal/domains/console/adapters/http"
	consoleobs "github.com/Apurer/pos-console/internal/domains/console/adapters/observability"
	"github.com/Apurer/pos-console/internal/domains/console/adapters/sound"
	consoleapp "github.com/Apurer/pos-console/internal/domains/console/application"
	consoleports "github.com/Apurer/pos-console/internal/domains/console/ports"
	ordersmemory "github.com/Apurer/pos-console/internal/domains/orders/adapters/memory"
	ordersobs "github.com/Apurer/pos-console/internal/domains/orders/adapters/observability"
	orderspostgres "github.com/Apurer/pos-console/internal/domains/orders/adapters/persistence/postgres"
	ordersremote "github.com/Apurer/pos-console/internal/domains/orders/adapters/remote"
	ordersworkflows "github.com/Apurer/pos-console/internal/domains/orders/adapters/workflows"
	ordersapp "github.com/Apurer/pos-console/internal/domains/orders/application"
	ordersports "github.com/Apurer/pos-console/internal/domains/orders/ports"
	"github.com/Apurer/pos-console/internal/platform/migrations"
	platformobservability "github.com/Apurer/pos-console/internal/platform/observability"
	platformpostgres "github.com/Apurer/pos-console/internal/platform/postgres"
)

const serviceName = "pos-console"

// Run boots the console: order polling, the notification state machine and its HTTP surface.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName)
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	snapshots, tokens, cleanupStores := buildStores(ctx, cfg, logger)
	defer cleanupStores()

	apiClient, err := orderapi.NewClient(cfg.OrderAPIBaseURL, orderapi.NewInstrumentedHTTPClient(cfg.HTTPTimeout))
	if err != nil {
		return fmt.Errorf("configure order API client: %w", err)
	}
	obsOpts := []ordersobs.Option{
		ordersobs.WithLogger(logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.adapters")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.adapters")),
	}
	feed := ordersobs.NewFeed(ordersremote.NewFeed(apiClient), obsOpts...)
	gateway := ordersobs.NewGateway(ordersremote.NewGateway(apiClient, tokens), obsOpts...)

	var statusWorkflows ordersports.ActionGateway = ordersworkflows.NewInlineStatusWorkflows(gateway)
	if temporalClient, err := connectTemporalClient(cfg, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, sending status updates inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		statusWorkflows = ordersworkflows.NewTemporalStatusWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.TemporalNamespace))
	}
	actions := ordersapp.NewActions(statusWorkflows)
	detector := ordersapp.NewDetector(snapshots)

	rawPublisher, closePublisher := buildEventPublisher(cfg, logger)
	defer closePublisher()
	publisher := consoleobs.NewPublisher(rawPublisher,
		consoleobs.WithLogger(logger),
		consoleobs.WithTracer(instruments.Tracer("internal.console.adapters")),
		consoleobs.WithMeter(instruments.Meter("internal.console.adapters")),
	)

	cue := sound.NewElement(alarmSource(cfg), sound.WithGesturePolicy(cfg.AlarmRequireGesture))
	alarm := consoleapp.NewAlarm(cue, consoleapp.WithAlarmLogger(logger))
	notifier := consoleapp.NewConsole(alarm, actions,
		consoleapp.WithConsoleLogger(logger),
		consoleapp.WithConfirmDelay(cfg.ConfirmDelay),
		consoleapp.WithEventPublisher(publisher),
	)
	poller := consoleapp.NewPoller(feed, tokens, detector, notifier,
		consoleapp.WithInterval(cfg.PollInterval),
		consoleapp.WithLogger(logger),
		consoleapp.WithTracer(instruments.Tracer("internal.console.application")),
		consoleapp.WithMeter(instruments.Meter("internal.console.application")),
	)
	poller.Start(ctx)
	defer poller.Stop()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	consolehttp.NewConsoleAPI(notifier, detector, tokens,
		consolehttp.WithAlarmAsset(cfg.AlarmSoundPath),
	).Register(router)

	server := &http.Server{Addr: cfg.Addr(), Handler: router, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("console listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("console server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("console server shutdown", slog.String("error", err.Error()))
	}
	return nil
}

func buildStores(ctx context.Context, cfg Config, logger *slog.Logger) (ordersports.SnapshotStore, ordersports.TokenStore, func()) {
	if cfg.PostgresDSN == "" {
		logger.Warn("POSTGRES_DSN not set, notified-order history will not survive restarts")
		return ordersmemory.NewSnapshotStore(), ordersmemory.NewTokenStore(""), func() {}
	}
	db, err := platformpostgres.Connect(ctx, cfg.PostgresDSN)
	if err != nil {
		logger.Warn("failed to connect to postgres, falling back to memory", slog.String("error", err.Error()))
		return ordersmemory.NewSnapshotStore(), ordersmemory.NewTokenStore(""), func() {}
	}
	cleanup := closeDB(db)
	if err := migrations.Run(db); err != nil {
		cleanup()
		logger.Warn("failed to migrate postgres schema, falling back to memory", slog.String("error", err.Error()))
		return ordersmemory.NewSnapshotStore(), ordersmemory.NewTokenStore(""), func() {}
	}
	logger.Info("order snapshot and token stores configured with postgres")
	return orderspostgres.NewSnapshotStore(db), orderspostgres.NewTokenStore(db), cleanup
}

func closeDB(db *gorm.DB) func() {
	sqlDB, err := db.DB()
	if err != nil {
		return func() {}
	}
	return func() { _ = sqlDB.Close() }
}

func buildEventPublisher(cfg Config, logger *slog.Logger) (consoleports.EventPublisher, func()) {
	if cfg.NATSURL == "" {
		return consoleports.NoopEventPublisher, func() {}
	}
	publisher, err := consoleevents.Connect(cfg.NATSURL)
	if err != nil {
		logger.Warn("NATS unavailable, new-order events stay local", slog.String("error", err.Error()))
		return consoleports.NoopEventPublisher, func() {}
	}
	logger.Info("publishing new-order events", slog.String("subject", consoleevents.NewOrderSubject))
	return publisher, func() { _ = publisher.Close() }
}

func alarmSource(cfg Config) string {
	if cfg.AlarmSoundPath == "" {
		return ""
	}
	return "/assets/alarm"
}

func connectTemporalClient(cfg Config, instruments *platformobservability.Instruments) (client.Client, error) {
	if cfg.TemporalDisabled {
		return nil, errors.New("temporal disabled via TEMPORAL_DISABLED env")
	}
	tracerOptions := temporalotel.TracerOptions{}
	if instruments != nil {
		tracerOptions.Tracer = instruments.Tracer("temporal-client")
	}
	tracingInterceptor, err := temporalotel.NewTracingInterceptor(tracerOptions)
	if err != nil {
		return nil, err
	}
	options := client.Options{
		HostPort:  cfg.TemporalAddress,
		Namespace: cfg.TemporalNamespace,
		Logger:    workerlog.NewStructuredLogger(effectiveLogger(instruments)),
	}
	options.Interceptors = append(options.Interceptors, tracingInterceptor)
	return client.Dial(options)
}

func effectiveLogger(instruments *platformobservability.Instruments) *slog.Logger {
	if instruments != nil && instruments.Logger != nil {
		return instruments.Logger
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}
