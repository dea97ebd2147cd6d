package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const pingTimeout = 5 * time.Second

// A console, its worker and the history reset tool each hold a handful of
// connections at most.
const (
	maxOpenConns    = 4
	maxIdleConns    = 2
	connMaxIdleTime = 5 * time.Minute
)

// Connect opens a GORM handle on dsn, sizes the pool and pings once.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap postgres pool: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// ConnectFromEnv dials POSTGRES_DSN. A missing DSN or failed dial is logged
// and yields a nil DB so callers fall back to in-memory stores; the returned
// cleanup is always safe to call.
func ConnectFromEnv(ctx context.Context, log *slog.Logger) (*gorm.DB, func()) {
	return ConnectDSN(ctx, os.Getenv("POSTGRES_DSN"), log)
}

// ConnectDSN behaves like ConnectFromEnv for an explicit DSN.
func ConnectDSN(ctx context.Context, dsn string, log *slog.Logger) (*gorm.DB, func()) {
	if log == nil {
		log = slog.Default()
	}
	if strings.TrimSpace(dsn) == "" {
		log.Warn("POSTGRES_DSN not set, using in-memory snapshot and token stores")
		return nil, func() {}
	}
	db, err := Connect(ctx, dsn)
	if err != nil {
		log.Warn("postgres unavailable, using in-memory snapshot and token stores", slog.String("error", err.Error()))
		return nil, func() {}
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, func() {}
	}
	log.Info("postgres connection established")
	return db, func() { _ = sqlDB.Close() }
}
