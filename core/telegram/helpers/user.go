package helpers

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Profile returns the sender's display name and handle, trimmed.
func Profile(c tele.Context) (name, username string) {
	u := c.Sender()
	if u == nil {
		return "", ""
	}
	name = strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	return name, strings.TrimSpace(u.Username)
}

// ChatID returns the chat of the update, falling back to the sender.
func ChatID(c tele.Context) int64 {
	if chat := c.Chat(); chat != nil {
		return chat.ID
	}
	if u := c.Sender(); u != nil {
		return u.ID
	}
	return 0
}
