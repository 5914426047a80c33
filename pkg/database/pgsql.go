package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
)

// NewPgxPool creates a new PostgreSQL connection pool. The first ping is
// retried with exponential backoff for up to maxElapsed so the service can
// start alongside its database.
func NewPgxPool(ctx context.Context, databaseURL string, maxElapsed time.Duration, logger *slog.Logger) (*pgxpool.Pool, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("database URL cannot be empty")
	}

	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database config from URL: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	policy := backoff.NewExponentialBackOff()
	policy.MaxElapsedTime = maxElapsed
	err = backoff.RetryNotify(func() error {
		return pool.Ping(ctx)
	}, backoff.WithContext(policy, ctx), func(err error, wait time.Duration) {
		logger.Warn("Database not reachable yet, retrying",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", wait))
	})
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logger.Info("Successfully connected to PostgreSQL database.")
	return pool, nil
}

// ClosePgxPool closes the PostgreSQL connection pool.
func ClosePgxPool(pool *pgxpool.Pool, logger *slog.Logger) {
	if pool != nil {
		pool.Close()
		logger.Info("PostgreSQL connection pool closed.")
	}
}
