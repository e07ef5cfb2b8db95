package database

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/m3rciful/eventbot/core/logger"
)

const connectTimeout = 5 * time.Second

// Connect opens the database, configures the pool and verifies connectivity.
// Postgres is retried until wait elapses so the bot can start alongside its database container.
func Connect(ctx context.Context, cfg Config, wait time.Duration) (*sqlx.DB, error) {
	dsn, err := cfg.DSN()
	if err != nil {
		return nil, err
	}

	start := time.Now()
	var db *sqlx.DB
	for {
		cctx, cancel := context.WithTimeout(ctx, connectTimeout)
		db, err = sqlx.ConnectContext(cctx, cfg.Driver, dsn)
		cancel()
		if err == nil || cfg.Driver != DriverPostgres || time.Since(start) > wait {
			break
		}
		logger.DB.LogAttrs(ctx, slog.LevelDebug, "",
			slog.String("event", "db.connect.retry"),
			slog.String("driver", cfg.Driver),
			logger.Err(err),
		)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(2 * time.Second):
		}
	}
	if err != nil {
		logger.DB.LogAttrs(ctx, slog.LevelError, "",
			slog.String("event", "db.connect"),
			slog.String("status", "fail"),
			slog.String("driver", cfg.Driver),
			slog.String("db", cfg.label()),
			slog.Duration("duration", logger.Took(start)),
			logger.Err(err),
		)
		return nil, fmt.Errorf("db connect: %w", err)
	}

	switch cfg.Driver {
	case DriverSQLite:
		// sqlite serialises writers; one connection avoids SQLITE_BUSY under concurrent handlers
		db.SetMaxOpenConns(1)
	default:
		if cfg.MaxConnections > 0 {
			db.SetMaxOpenConns(cfg.MaxConnections)
			db.SetMaxIdleConns(cfg.MaxConnections)
		}
	}

	logger.DB.LogAttrs(ctx, slog.LevelInfo, "",
		slog.String("event", "db.connect"),
		slog.String("status", "ok"),
		slog.String("driver", cfg.Driver),
		slog.String("db", cfg.label()),
		slog.Duration("duration", logger.Took(start)),
	)
	return db, nil
}

func (c Config) label() string {
	if c.Driver == DriverSQLite {
		return c.Path
	}
	return c.Host + ":" + c.Port + "/" + c.Name
}
