package telegram

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	coreconfig "github.com/m3rciful/eventbot/core/config"
	"github.com/m3rciful/eventbot/core/logger"
	tghelpers "github.com/m3rciful/eventbot/core/telegram/helpers"
	tgsender "github.com/m3rciful/eventbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// Middleware is a global middleware registered with bot.Use.
type Middleware struct {
	Name string
	Use  tele.MiddlewareFunc
}

// Route binds a handler to a telebot endpoint (a command string or one of the tele.On* constants).
type Route struct {
	Endpoint any
	Handler  tele.HandlerFunc
}

// RunOptions controls RunTelegram.
type RunOptions struct {
	Config   *coreconfig.Config
	Registry *Registry

	DispatcherOptions tgsender.Options
	Dispatcher        *tgsender.Dispatcher

	Middlewares []Middleware
	Routes      []Route

	// Offline builds the bot without calling getMe. Used by tests.
	Offline bool

	OnStart func(ctx context.Context, rt Runtime) error
	OnStop  func(ctx context.Context, rt Runtime) error
}

// Runtime exposes the live components to lifecycle hooks.
type Runtime struct {
	Bot        *tele.Bot
	Dispatcher *tgsender.Dispatcher
	Registry   *Registry
}

// RunTelegram builds the bot, wires middlewares and routes, and serves updates until ctx is done.
func RunTelegram(ctx context.Context, opts RunOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg := opts.Config
	if cfg == nil {
		return errors.New("telegram: nil config provided")
	}
	reg := opts.Registry
	if reg == nil {
		reg = NewRegistry()
	}

	poller := BuildPoller(cfg)
	start := time.Now()
	bot, err := tele.NewBot(tele.Settings{
		Token:   cfg.Telegram.Token,
		Poller:  poller,
		Client:  BuildHTTPClient(longPollTimeout(cfg)),
		Offline: opts.Offline,
		// updates are handled one at a time in arrival order
		Synchronous: true,
		OnError: func(err error, c tele.Context) {
			lctx := context.Background()
			if c != nil {
				lctx = tghelpers.BuildContext(c)
			}
			logger.Error(lctx, "tg", "bot.error", slog.String("status", "fail"), logger.Err(err))
		},
	})
	if err != nil {
		return fmt.Errorf("telegram: bot initialization failed: %w", err)
	}
	logMode(ctx, poller, time.Since(start))

	if _, webhook := poller.(*tele.Webhook); !webhook && !opts.Offline {
		if err := bot.RemoveWebhook(); err != nil {
			logger.TG.LogAttrs(ctx, slog.LevelWarn, "",
				slog.String("event", "webhook.delete"),
				slog.String("status", "fail"),
				logger.Err(err),
			)
		}
	}

	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = tgsender.NewDispatcher(opts.DispatcherOptions)
	}
	tghelpers.SetDispatcher(dispatcher)
	defer tghelpers.SetDispatcher(nil)
	defer dispatcher.Close()

	for _, mw := range opts.Middlewares {
		if mw.Use != nil {
			bot.Use(mw.Use)
		}
	}
	for _, route := range opts.Routes {
		if route.Endpoint != nil && route.Handler != nil {
			bot.Handle(route.Endpoint, route.Handler)
		}
	}
	if !opts.Offline {
		InitBotCommands(bot, reg)
	}

	rt := Runtime{Bot: bot, Dispatcher: dispatcher, Registry: reg}
	if opts.OnStart != nil {
		if err := opts.OnStart(ctx, rt); err != nil {
			return err
		}
	}

	done := make(chan struct{})
	go func() {
		bot.Start()
		close(done)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		bot.Stop()
		<-done
		runErr = ctx.Err()
	case <-done:
	}

	if opts.OnStop != nil {
		if err := opts.OnStop(logger.Detach(ctx), rt); err != nil {
			return err
		}
	}
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func logMode(ctx context.Context, poller tele.Poller, took time.Duration) {
	attrs := []slog.Attr{slog.String("event", "mode"), slog.Duration("duration", took)}
	switch p := poller.(type) {
	case *tele.Webhook:
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeWebhook),
			slog.String("listen", p.Listen),
			slog.String("public_url", p.Endpoint.PublicURL),
		)
	case *tele.LongPoller:
		attrs = append(attrs,
			slog.String("mode", coreconfig.RunModeLongpoll),
			slog.Duration("timeout", p.Timeout),
		)
	}
	logger.TG.LogAttrs(ctx, slog.LevelInfo, "", attrs...)
}
