package middleware

import (
	"log/slog"

	"github.com/m3rciful/eventbot/core/logger"
	tghelpers "github.com/m3rciful/eventbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions configures the operator gate.
type AdminOptions struct {
	// AdminID is the operator chat. Zero means nobody is the operator.
	AdminID  int64
	OnReject tele.HandlerFunc
}

// IsAdmin reports whether chatID is the configured operator.
func IsAdmin(adminID, chatID int64) bool {
	return adminID != 0 && chatID == adminID
}

// AdminOnlyMiddleware lets only the operator chat reach next.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			chatID := tghelpers.ChatID(c)
			if IsAdmin(opts.AdminID, chatID) {
				return next(c)
			}
			logger.Warn(tghelpers.BuildContext(c), "tg", "admin.denied",
				slog.String("status", "denied"),
				slog.Int64("chat_id", chatID),
			)
			if opts.OnReject != nil {
				return opts.OnReject(c)
			}
			return nil
		}
	}
}
