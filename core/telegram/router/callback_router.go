package router

import (
	"log/slog"

	tg "github.com/m3rciful/eventbot/core/telegram"
	"github.com/m3rciful/eventbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// CallbackRoute decodes every button press into a callbacks.Action once, stores it on the
// context and dispatches by kind. Handlers must answer the callback themselves.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		cb := c.Callback()
		if cb == nil {
			return nil
		}

		act, err := callbacks.Parse(cb)
		if err != nil {
			return handleWithSummary(c, "callback.malformed", reg.CallbackNotFound(),
				slog.String("reason", "malformed"))
		}
		callbacks.Store(c, act)

		name := "callback." + act.Kind.String()
		extras := []slog.Attr{slog.String("action", act.Kind.String())}
		if act.Page != 0 {
			extras = append(extras, slog.Int("page", act.Page))
		}
		h, ok := reg.Callback(act.Kind)
		if !ok {
			return handleWithSummary(c, name, reg.CallbackNotFound(),
				append(extras, slog.String("reason", "not_found"))...)
		}
		return handleWithSummary(c, name, h, extras...)
	}
	return tg.Route{Endpoint: tele.OnCallback, Handler: handler}
}
