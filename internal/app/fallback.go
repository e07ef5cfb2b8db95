package app

import (
	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/core/telegram/helpers"
	"github.com/m3rciful/eventbot/core/telegram/keyboard"
	"github.com/m3rciful/eventbot/core/telegram/ui"
	"github.com/m3rciful/eventbot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

type fallbacks struct {
	t *texts.Texts
}

var _ ui.FallbackProvider = fallbacks{}

func (f fallbacks) UnknownText() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendHTML(c, f.t.User.StartHint, keyboard.Single(f.t.Buttons.Register, callbacks.KindRegister))
	}
}

func (f fallbacks) UnknownCommand() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.SendHTML(c, f.t.User.UnknownCommand)
	}
}

func (f fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(c tele.Context) error {
		return c.Respond(&tele.CallbackResponse{Text: f.t.User.UnsupportedAction})
	}
}

func (f fallbacks) AdminDenied() tele.HandlerFunc {
	return func(c tele.Context) error {
		return helpers.Alert(c, f.t.User.AccessDenied)
	}
}

// rateLimited answers updates dropped by the rate limiter.
func (f fallbacks) rateLimited(c tele.Context) error {
	return helpers.Alert(c, f.t.User.RateLimited)
}
