package messenger

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/sender"

	tele "gopkg.in/telebot.v4"
)

// ErrNotBound is returned by Telebot before Bind.
var ErrNotBound = errors.New("messenger: bot not bound")

// Telebot implements Messenger over a live *tele.Bot. The bot only exists once the
// transport runtime has started, so it is attached later with Bind.
type Telebot struct {
	bot  atomic.Pointer[tele.Bot]
	disp atomic.Pointer[sender.Dispatcher]
}

var _ Messenger = (*Telebot)(nil)

// NewTelebot returns an unbound messenger.
func NewTelebot() *Telebot { return &Telebot{} }

// Bind attaches the running bot and the async dispatcher used by Notify. d may be nil.
func (t *Telebot) Bind(bot *tele.Bot, d *sender.Dispatcher) {
	t.bot.Store(bot)
	t.disp.Store(d)
}

func (t *Telebot) live() (*tele.Bot, error) {
	b := t.bot.Load()
	if b == nil {
		return nil, ErrNotBound
	}
	return b, nil
}

func sendOptions(markup *tele.ReplyMarkup) *tele.SendOptions {
	return &tele.SendOptions{ParseMode: tele.ModeHTML, ReplyMarkup: markup}
}

func (t *Telebot) SendText(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	b, err := t.live()
	if err != nil {
		return 0, err
	}
	var id int
	err = observe(ctx, "send.text", chatID, func() error {
		msg, err := b.Send(tele.ChatID(chatID), text, sendOptions(markup))
		if err == nil && msg != nil {
			id = msg.ID
		}
		return err
	})
	return id, err
}

func (t *Telebot) SendPhoto(ctx context.Context, chatID int64, photo Photo, caption string, markup *tele.ReplyMarkup) (int, error) {
	b, err := t.live()
	if err != nil {
		return 0, err
	}
	p := &tele.Photo{Caption: caption}
	if photo.FileID != "" {
		p.File = tele.File{FileID: photo.FileID}
	} else {
		p.File = tele.FromReader(bytes.NewReader(photo.Data))
	}
	var id int
	err = observe(ctx, "send.photo", chatID, func() error {
		msg, err := b.Send(tele.ChatID(chatID), p, sendOptions(markup))
		if err == nil && msg != nil {
			id = msg.ID
		}
		return err
	})
	return id, err
}

func (t *Telebot) SendDocument(ctx context.Context, chatID int64, doc Document) error {
	b, err := t.live()
	if err != nil {
		return err
	}
	d := &tele.Document{
		File:     tele.FromReader(bytes.NewReader(doc.Data)),
		FileName: doc.Name,
		MIME:     doc.MIME,
		Caption:  doc.Caption,
	}
	return observe(ctx, "send.document", chatID, func() error {
		_, err := b.Send(tele.ChatID(chatID), d, sendOptions(nil))
		return err
	})
}

// EditText replaces the text and markup of a message. An unchanged message is not an error.
func (t *Telebot) EditText(ctx context.Context, chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error {
	b, err := t.live()
	if err != nil {
		return err
	}
	target := tele.StoredMessage{MessageID: strconv.Itoa(messageID), ChatID: chatID}
	return observe(ctx, "edit.text", chatID, func() error {
		_, err := b.Edit(target, text, sendOptions(markup))
		if err != nil && strings.Contains(err.Error(), "message is not modified") {
			return nil
		}
		return err
	})
}

func (t *Telebot) Answer(ctx context.Context, callbackID, text string, alert bool) error {
	b, err := t.live()
	if err != nil {
		return err
	}
	return observe(ctx, "callback.answer", 0, func() error {
		return b.Respond(&tele.Callback{ID: callbackID}, &tele.CallbackResponse{Text: text, ShowAlert: alert})
	})
}

// Notify hands the send to the dispatcher. Without one it sends inline.
func (t *Telebot) Notify(ctx context.Context, chatID int64, text string) error {
	b, err := t.live()
	if err != nil {
		return err
	}
	run := func() error {
		_, err := b.Send(tele.ChatID(chatID), text, sendOptions(nil))
		return err
	}
	d := t.disp.Load()
	if d == nil {
		return observe(ctx, "notify", chatID, run)
	}
	return d.Enqueue(ctx, "notify", "sendMessage", run)
}

func (t *Telebot) Username() string {
	if b := t.bot.Load(); b != nil && b.Me != nil {
		return b.Me.Username
	}
	return ""
}

func observe(ctx context.Context, action string, chatID int64, fn func() error) error {
	start := time.Now()
	err := fn()
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.String("action", action),
		slog.Duration("duration", logger.Took(start)),
	}
	if chatID != 0 {
		attrs = append(attrs, slog.Int64("target", chatID))
	}
	if err != nil {
		logger.Warn(ctx, "tg.wire", "api.call", append(attrs, logger.Err(err))...)
		return err
	}
	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, "tg.wire", "api.call", attrs...)
	}
	return nil
}
