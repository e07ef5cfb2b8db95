package database

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/eventbot/core/logger"
)

// RunMigrations applies every up migration found in dir of fsys to db.
// Migrations ship embedded in the binary, so no files are needed at runtime.
func RunMigrations(db *sqlx.DB, fsys fs.FS, dir string) error {
	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("migrations source: %w", err)
	}

	var drv database.Driver
	switch db.DriverName() {
	case DriverPostgres:
		drv, err = postgres.WithInstance(db.DB, &postgres.Config{})
	case DriverSQLite:
		drv, err = sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	default:
		err = fmt.Errorf("unsupported driver %q", db.DriverName())
	}
	if err != nil {
		return fmt.Errorf("migrations driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, db.DriverName(), drv)
	if err != nil {
		return fmt.Errorf("migrations init: %w", err)
	}

	from, _, _ := m.Version()
	start := time.Now()
	upErr := m.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		logger.MIG.Error("",
			slog.String("event", "db.migrate"),
			slog.String("status", "fail"),
			slog.Duration("duration", logger.Took(start)),
			logger.Err(upErr),
		)
		return fmt.Errorf("migration execution failed: %w", upErr)
	}
	to, _, _ := m.Version()

	logger.MIG.Info("",
		slog.String("event", "db.migrate"),
		slog.String("status", "ok"),
		slog.String("driver", db.DriverName()),
		slog.Uint64("from_ver", uint64(from)),
		slog.Uint64("to_ver", uint64(to)),
		slog.Duration("duration", logger.Took(start)),
	)
	return nil
}
