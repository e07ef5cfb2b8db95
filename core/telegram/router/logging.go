package router

import (
	"errors"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/m3rciful/eventbot/core/logger"
	tghelpers "github.com/m3rciful/eventbot/core/telegram/helpers"
	"github.com/m3rciful/eventbot/core/telegram/middleware"
	"github.com/m3rciful/eventbot/core/telegram/state"

	tele "gopkg.in/telebot.v4"
)

// handleWithSummary runs fn and logs one handler.handled line for the update.
func handleWithSummary(c tele.Context, name string, fn tele.HandlerFunc, extras ...slog.Attr) error {
	start := time.Now()
	ctx := tghelpers.WithHandler(c, name)
	err := fn(c)

	msgs, kb := middleware.GetCounters(c)
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("outcome", logger.Status(err)),
		slog.Int("messages", msgs),
		slog.Bool("kb", kb),
		slog.Duration("duration", logger.Took(start)),
	}
	if st := state.FromContext(c); st != state.StateIdle {
		attrs = append(attrs, slog.String("state", st.String()))
	}
	if err != nil {
		attrs = append(attrs, logger.Err(err), slog.String("err_code", errorCode(err)))
	}
	attrs = append(attrs, extras...)
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelInfo, "handler.handled", attrs...)
	return err
}

// skip logs an update that no handler claimed.
func skip(c tele.Context, name, reason string) error {
	ctx := tghelpers.WithHandler(c, name)
	logger.LogEvent(ctx, logger.Component("tg"), slog.LevelDebug, "handler.handled",
		slog.String("status", "skip"),
		slog.String("reason", reason),
	)
	return nil
}

func handlerName(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "/")
	if name == "" {
		return "unknown"
	}
	return strings.ToLower(strings.ReplaceAll(name, " ", "_"))
}

// errorCode prefers an explicit Code() on any error in the chain, then the concrete type name.
func errorCode(err error) string {
	var coder interface{ Code() string }
	if errors.As(err, &coder) {
		if code := strings.TrimSpace(coder.Code()); code != "" {
			return strings.ToUpper(strings.ReplaceAll(code, " ", "_"))
		}
	}
	t := reflect.TypeOf(err)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t != nil && t.Name() != "" {
		return strings.ToUpper(t.Name())
	}
	return "UNKNOWN_ERROR"
}
