package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"github.com/m3rciful/navmenu/core/logger"
)

const connectTimeout = 5 * time.Second

// Connect opens the database connection, configures the pool, and verifies connectivity.
func Connect(ctx context.Context, cfg Config) (*sqlx.DB, error) {
	cfg.Normalize()
	ctx, cancel := context.WithTimeout(ctx, connectTimeout)
	defer cancel()

	start := time.Now()
	db, err := sqlx.ConnectContext(ctx, "postgres", cfg.ConnString())
	took := time.Since(start)
	if err != nil {
		logger.Error(ctx, "db", "db.connect",
			slog.String("driver", "postgres"),
			slog.String("db", cfg.Target()),
			slog.Duration("duration_ms", logger.RoundMS(took)),
			slog.String("err", err.Error()),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxConnections)

	logger.Info(ctx, "db", "db.connect",
		slog.String("driver", "postgres"),
		slog.String("db", cfg.Target()),
		slog.Int("pool_open", cfg.MaxConnections),
		slog.Duration("duration_ms", logger.RoundMS(took)),
	)
	return db, nil
}

// WaitForPostgres pings the database until it answers, ctx ends or timeout passes.
func WaitForPostgres(ctx context.Context, dsn string, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		lastErr := db.PingContext(ctx)
		if lastErr == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout reached waiting for database: %w", lastErr)
		case <-ticker.C:
		}
	}
}
