package state

import tele "gopkg.in/telebot.v4"

const sessionKey = "fsm_state"

// WithSession records the chat's current state in the handler context before routing.
func WithSession(mgr Manager) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			if chat := c.Chat(); chat != nil {
				if s, ok := mgr.Get(chat.ID); ok {
					c.Set(sessionKey, s.State)
				}
			}
			return next(c)
		}
	}
}

// FromContext returns the state stored by WithSession, or StateIdle.
func FromContext(c tele.Context) State {
	if st, ok := c.Get(sessionKey).(State); ok {
		return st
	}
	return StateIdle
}
