// Package ui declares the user-facing replies the core routers need from an application.
package ui

import tele "gopkg.in/telebot.v4"

// FallbackProvider supplies handlers for updates no route claims.
type FallbackProvider interface {
	// UnknownText answers free text while no conversation is active.
	UnknownText() tele.HandlerFunc
	// UnknownCommand answers slash-prefixed text that matches no command.
	UnknownCommand() tele.HandlerFunc
	// UnknownCallback answers undecodable or unbound button presses.
	UnknownCallback() tele.HandlerFunc
	// AdminDenied answers non-operators reaching the admin surface.
	AdminDenied() tele.HandlerFunc
}
