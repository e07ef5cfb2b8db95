package flow

import (
	"github.com/m3rciful/eventbot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// OnStart handles the start command and the register button.
func (m *Machine) OnStart(c tele.Context) error {
	name, username := helpers.Profile(c)
	err := m.Start(helpers.BuildContext(c), helpers.ChatID(c), name, username)
	if c.Callback() != nil {
		_ = c.Respond()
	}
	return err
}

// OnCancel handles the cancel command and the cancel button.
func (m *Machine) OnCancel(c tele.Context) error {
	err := m.Cancel(helpers.BuildContext(c), helpers.ChatID(c))
	if c.Callback() != nil {
		_ = c.Respond()
	}
	return err
}

// HandleText routes a non-command text message into the session.
func (m *Machine) HandleText(c tele.Context) error {
	return m.Text(helpers.BuildContext(c), helpers.ChatID(c), c.Text())
}

// HandlePhoto routes a photo message into the session. Telegram sends several sizes;
// telebot exposes the largest one.
func (m *Machine) HandlePhoto(c tele.Context) error {
	msg := c.Message()
	if msg == nil || msg.Photo == nil {
		return nil
	}
	return m.Photo(helpers.BuildContext(c), helpers.ChatID(c), msg.Photo.FileID, msg.Caption)
}
