// Package commands describes slash commands exposed by a bot.
package commands

import tele "gopkg.in/telebot.v4"

// Command is a slash command with its handler and menu metadata.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are wrapped with the operator gate and hidden from the public menu.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}
