package router

import (
	"strings"

	tg "github.com/m3rciful/eventbot/core/telegram"
	"github.com/m3rciful/eventbot/core/telegram/ui"

	tele "gopkg.in/telebot.v4"
)

// Conversation is the state machine as seen by the transport.
type Conversation interface {
	InProgress(chatID int64) bool
	HandleText(c tele.Context) error
	HandlePhoto(c tele.Context) error
}

// MessageRoutes returns the text and photo routes.
//
// Slash-prefixed text never reaches the conversation: telebot dispatches registered
// commands itself, and whatever falls through here (aliases, foreign @mentions,
// unknown commands) is resolved against the registry or answered as unknown.
func MessageRoutes(conv Conversation, reg *tg.Registry, fb ui.FallbackProvider) []tg.Route {
	text := func(c tele.Context) error {
		msg := strings.TrimSpace(c.Text())
		if strings.HasPrefix(msg, "/") {
			if key, cmd, ok := reg.LookupCommand(msg); ok && !cmd.AdminOnly {
				return handleWithSummary(c, "command."+handlerName(key), cmd.Handler)
			}
			if h := unknownCommand(reg, fb); h != nil {
				return handleWithSummary(c, "unknown_command", h)
			}
			return skip(c, "unknown_command", "no_handler")
		}

		if conv != nil && conv.InProgress(c.Chat().ID) {
			return handleWithSummary(c, "fsm.text", conv.HandleText)
		}
		if h := reg.TextFallback(); h != nil {
			return handleWithSummary(c, "fallback", h)
		}
		if fb != nil {
			return handleWithSummary(c, "unknown_text", fb.UnknownText())
		}
		return skip(c, "unknown_text", "no_handler")
	}

	photo := func(c tele.Context) error {
		if conv != nil && conv.InProgress(c.Chat().ID) {
			return handleWithSummary(c, "fsm.photo", conv.HandlePhoto)
		}
		return skip(c, "photo", "no_session")
	}

	return []tg.Route{
		{Endpoint: tele.OnText, Handler: text},
		{Endpoint: tele.OnPhoto, Handler: photo},
	}
}

func unknownCommand(reg *tg.Registry, fb ui.FallbackProvider) tele.HandlerFunc {
	if h := reg.UnknownCommand(); h != nil {
		return h
	}
	if fb != nil {
		return fb.UnknownCommand()
	}
	return nil
}
