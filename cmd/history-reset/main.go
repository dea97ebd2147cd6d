package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	orderspostgres "github.com/Apurer/pos-console/internal/domains/orders/adapters/persistence/postgres"
	ordersapp "github.com/Apurer/pos-console/internal/domains/orders/application"
	platformpostgres "github.com/Apurer/pos-console/internal/platform/postgres"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	db, cleanup := platformpostgres.ConnectFromEnv(ctx, logger)
	defer cleanup()
	if db == nil {
		log.Fatal("POSTGRES_DSN not set or connection failed; cannot clear order history")
	}

	detector := ordersapp.NewDetector(orderspostgres.NewSnapshotStore(db))
	if err := detector.ClearHistory(ctx); err != nil {
		log.Fatalf("failed to clear order history: %v", err)
	}
	logger.Info("notified-order history cleared; the next poll is treated as a cold start")
}
