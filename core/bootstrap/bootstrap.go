// Package bootstrap brings up the shared infrastructure before the bot starts.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/jmoiron/sqlx"

	coreconfig "github.com/m3rciful/eventbot/core/config"
	coredatabase "github.com/m3rciful/eventbot/core/database"
	"github.com/m3rciful/eventbot/core/logger"
)

// Options controls the pipeline. A nil Database skips the SQL steps.
type Options struct {
	Config   *coreconfig.Config
	Database *coredatabase.Config

	Migrations    fs.FS
	MigrationsDir string
	// ConnectWait bounds how long a Postgres connection is retried.
	ConnectWait time.Duration

	LoggerInit func(*coreconfig.Config) error
	Connect    func(context.Context, coredatabase.Config, time.Duration) (*sqlx.DB, error)
	Migrate    func(*sqlx.DB, fs.FS, string) error
}

// Result exposes what the pipeline initialised.
type Result struct {
	DB *sqlx.DB
}

// Close releases the database connection, if any.
func (r *Result) Close() error {
	if r == nil || r.DB == nil {
		return nil
	}
	return r.DB.Close()
}

// Run initialises the logger, then connects to the database and applies migrations when configured.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Config == nil {
		return nil, errors.New("bootstrap: nil config provided")
	}

	loggerInit := opts.LoggerInit
	if loggerInit == nil {
		loggerInit = logger.InitLogger
	}
	if err := loggerInit(opts.Config); err != nil {
		return nil, fmt.Errorf("bootstrap: logger init failed: %w", err)
	}

	if opts.Database == nil {
		return &Result{}, nil
	}

	connect := opts.Connect
	if connect == nil {
		connect = coredatabase.Connect
	}
	wait := opts.ConnectWait
	if wait <= 0 {
		wait = 30 * time.Second
	}
	db, err := connect(ctx, *opts.Database, wait)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: database initialization failed: %w", err)
	}

	if opts.Migrations != nil {
		migrate := opts.Migrate
		if migrate == nil {
			migrate = coredatabase.RunMigrations
		}
		if err := migrate(db, opts.Migrations, opts.MigrationsDir); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("bootstrap: migrations failed: %w", err)
		}
	}
	return &Result{DB: db}, nil
}
