// Package app assembles the event bot: storage, sessions, the conversation machine,
// the admin router and the broadcast engine, wired onto the core Telegram runtime.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/eventbot/core/bootstrap"
	"github.com/m3rciful/eventbot/core/buildinfo"
	coreconfig "github.com/m3rciful/eventbot/core/config"
	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/state"
	"github.com/m3rciful/eventbot/internal/admin"
	"github.com/m3rciful/eventbot/internal/broadcast"
	"github.com/m3rciful/eventbot/internal/config"
	"github.com/m3rciful/eventbot/internal/flow"
	"github.com/m3rciful/eventbot/internal/messenger"
	"github.com/m3rciful/eventbot/internal/store"
	"github.com/m3rciful/eventbot/internal/texts"
)

// Options overrides bootstrap steps. Tests use it to keep the logger quiet.
type Options struct {
	LoggerInit func(*coreconfig.Config) error
}

// App owns every long-lived service of the bot.
type App struct {
	cfg  *config.Config
	boot *bootstrap.Result

	store    *store.Store
	sessions state.Manager
	texts    *texts.Texts
	out      *messenger.Telebot
	engine   *broadcast.Engine
	admin    *admin.Router
	machine  *flow.Machine
}

// New bootstraps infrastructure and builds the services.
func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	bopts := bootstrap.Options{Config: cfg.CoreConfig(), LoggerInit: opts.LoggerInit}
	if cfg.Storage.SQL() {
		db := cfg.Storage.Database
		bopts.Database = &db
		bopts.Migrations = store.Migrations
		bopts.MigrationsDir = store.MigrationsDir
	}
	boot, err := bootstrap.Run(ctx, bopts)
	if err != nil {
		return nil, err
	}

	a, err := build(ctx, cfg, boot)
	if err != nil {
		_ = boot.Close()
		return nil, err
	}
	return a, nil
}

func build(ctx context.Context, cfg *config.Config, boot *bootstrap.Result) (*App, error) {
	var backend store.Backend
	switch {
	case cfg.Storage.SQL():
		backend = store.NewSQLBackend(boot.DB)
	case cfg.Storage.Driver == config.StorageMemory:
		backend = store.NewMemoryBackend()
	default:
		backend = store.NewFileBackend(cfg.Storage.Dir)
	}
	st, err := store.Open(ctx, backend, cfg.Event)
	if err != nil {
		return nil, fmt.Errorf("app: open store: %w", err)
	}

	tx, err := texts.Load(cfg.TextsPath)
	if err != nil {
		return nil, err
	}

	a := &App{
		cfg:      cfg,
		boot:     boot,
		store:    st,
		sessions: state.NewMemoryManager(),
		texts:    tx,
		out:      messenger.NewTelebot(),
	}
	operator := cfg.Telegram.AdminID

	a.engine = broadcast.New(st, a.out, &tx.Admin, broadcast.Options{
		Delay:         cfg.Broadcast.Delay(),
		ProgressEvery: cfg.Broadcast.ProgressEvery,
	})
	a.admin = admin.New(admin.Deps{
		Store:     st,
		Sessions:  a.sessions,
		Out:       a.out,
		Texts:     tx,
		Broadcast: a.engine,
	}, admin.Options{OperatorID: operator, PageSize: cfg.Pagination.PageSize})
	a.machine = flow.New(flow.Deps{
		Sessions:  a.sessions,
		Store:     st,
		Out:       a.out,
		Texts:     tx,
		Views:     a.admin,
		Broadcast: a.engine,
	}, flow.Options{
		OperatorID:    operator,
		MinAge:        cfg.Registration.MinAge,
		MaxAge:        cfg.Registration.MaxAge,
		FollowUpDelay: cfg.Registration.FollowUpDelay(),
	})

	logger.Info(ctx, "app", "built",
		slog.String("driver", cfg.Storage.Driver),
		slog.Bool("operator", operator != 0),
		slog.String("version", buildinfo.Summary()),
	)
	return a, nil
}

// Close waits for running broadcasts and releases the database.
func (a *App) Close() error {
	a.engine.Wait()
	return a.boot.Close()
}
