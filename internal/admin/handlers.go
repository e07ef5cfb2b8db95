package admin

import (
	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// CommandHandler adapts Command for the transport.
func (r *Router) CommandHandler(name string) tele.HandlerFunc {
	return func(c tele.Context) error {
		var args string
		if msg := c.Message(); msg != nil {
			args = msg.Payload
		}
		return r.Command(helpers.BuildContext(c), helpers.ChatID(c), name, args)
	}
}

// CallbackHandler adapts Callback for the transport. The action has already been decoded
// by the callback route.
func (r *Router) CallbackHandler(c tele.Context) error {
	cb := c.Callback()
	if cb == nil {
		return nil
	}
	a, ok := callbacks.From(c)
	if !ok {
		var err error
		if a, err = callbacks.Parse(cb); err != nil {
			return err
		}
	}
	q := Query{ChatID: helpers.ChatID(c), CallbackID: cb.ID, Action: a}
	if cb.Message != nil {
		q.MessageID = cb.Message.ID
	}
	return r.Callback(helpers.BuildContext(c), q)
}
