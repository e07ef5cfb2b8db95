package middleware

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	tghelpers "github.com/m3rciful/eventbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// recentUpdates remembers update ids for a short while so the receipt line is written once
// even when the middleware wraps several routes.
var (
	recentMu      sync.Mutex
	recentUpdates = make(map[int]time.Time)
	keepFor       = 10 * time.Second
)

func alreadyLogged(updateID int) bool {
	now := time.Now()
	recentMu.Lock()
	defer recentMu.Unlock()
	for id, ts := range recentUpdates {
		if now.Sub(ts) > keepFor {
			delete(recentUpdates, id)
		}
	}
	if _, ok := recentUpdates[updateID]; ok {
		return true
	}
	recentUpdates[updateID] = now
	return false
}

// LoggerMiddleware assigns the rid, stores the logging context and writes one sampled receipt line.
func LoggerMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return func(c tele.Context) error {
		upd := c.Update()
		var chatID, userID int64
		chat := c.Chat()
		if chat != nil {
			chatID = chat.ID
		}
		user := c.Sender()
		if user != nil {
			userID = user.ID
		}

		rid := logger.BuildRID(upd.ID, chatID, userID)
		c.Set("rid", rid)

		ctx := logger.WithRID(context.Background(), rid)
		ctx = logger.WithUpdateMeta(ctx, upd.ID, userID, chatID)
		ctx = logger.WithLogger(ctx, logger.Component("tg"))
		tghelpers.StoreContext(c, ctx)

		if logger.ShouldSampleDebug() && !alreadyLogged(upd.ID) {
			attrs := []slog.Attr{slog.String("status", "ok")}
			if chat != nil {
				attrs = append(attrs, slog.String("chat_type", string(chat.Type)))
			}
			if user != nil && user.Username != "" {
				attrs = append(attrs, slog.String("username", logger.SanitizeLimit(user.Username, 64)))
			}
			switch {
			case upd.Callback != nil:
				unique, data := callbacks.Split(upd.Callback)
				attrs = append(attrs,
					slog.String("cb_key", logger.SanitizeLimit(unique, 64)),
					slog.String("payload", logger.SanitizeLimit(data, 64)),
				)
			case upd.Message != nil && upd.Message.Photo != nil:
				attrs = append(attrs, slog.String("payload", "<photo>"))
			case upd.Message != nil:
				attrs = append(attrs, slog.Int("payload_len", len([]rune(c.Text()))))
			}
			logger.LogEvent(ctx, nil, slog.LevelDebug, "update.received", attrs...)
		}

		return next(c)
	}
}
