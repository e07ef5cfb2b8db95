// Package messengertest provides an in-memory messenger.Messenger for tests.
package messengertest

import (
	"context"
	"errors"
	"sync"

	"github.com/m3rciful/eventbot/internal/messenger"

	tele "gopkg.in/telebot.v4"
)

// Message is one recorded outbound call.
type Message struct {
	ChatID int64
	ID     int
	Text   string
	Markup *tele.ReplyMarkup
	Photo  *messenger.Photo
	Doc    *messenger.Document
	// EditOf is the edited message id, zero for new messages.
	EditOf int
	Queued bool
}

// Answer is one recorded callback acknowledgement.
type Answer struct {
	CallbackID string
	Text       string
	Alert      bool
}

// Recorder records every call. Fail* fields inject errors.
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	answers  []Answer
	nextID   int

	BotName  string
	FailSend map[int64]error
	FailEdit error
}

var _ messenger.Messenger = (*Recorder)(nil)

// New returns an empty Recorder for a bot named botName.
func New(botName string) *Recorder {
	return &Recorder{BotName: botName, FailSend: map[int64]error{}}
}

func (r *Recorder) record(m Message) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailSend[m.ChatID]; err != nil {
		return 0, err
	}
	r.nextID++
	m.ID = r.nextID
	r.messages = append(r.messages, m)
	return m.ID, nil
}

func (r *Recorder) SendText(_ context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (int, error) {
	return r.record(Message{ChatID: chatID, Text: text, Markup: markup})
}

func (r *Recorder) SendPhoto(_ context.Context, chatID int64, photo messenger.Photo, caption string, markup *tele.ReplyMarkup) (int, error) {
	return r.record(Message{ChatID: chatID, Text: caption, Markup: markup, Photo: &photo})
}

func (r *Recorder) SendDocument(_ context.Context, chatID int64, doc messenger.Document) error {
	_, err := r.record(Message{ChatID: chatID, Text: doc.Caption, Doc: &doc})
	return err
}

func (r *Recorder) EditText(_ context.Context, chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailEdit != nil {
		return r.FailEdit
	}
	if messageID <= 0 {
		return errors.New("message to edit not found")
	}
	r.messages = append(r.messages, Message{ChatID: chatID, ID: messageID, Text: text, Markup: markup, EditOf: messageID})
	return nil
}

func (r *Recorder) Answer(_ context.Context, callbackID, text string, alert bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.answers = append(r.answers, Answer{CallbackID: callbackID, Text: text, Alert: alert})
	return nil
}

func (r *Recorder) Notify(_ context.Context, chatID int64, text string) error {
	_, err := r.record(Message{ChatID: chatID, Text: text, Queued: true})
	return err
}

func (r *Recorder) Username() string { return r.BotName }

// To returns the messages addressed to chatID in send order.
func (r *Recorder) To(chatID int64) []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Message
	for _, m := range r.messages {
		if m.ChatID == chatID {
			out = append(out, m)
		}
	}
	return out
}

// Last returns the latest message to chatID.
func (r *Recorder) Last(chatID int64) (Message, bool) {
	msgs := r.To(chatID)
	if len(msgs) == 0 {
		return Message{}, false
	}
	return msgs[len(msgs)-1], true
}

// Answers returns the recorded callback answers.
func (r *Recorder) Answers() []Answer {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Answer(nil), r.answers...)
}

// Len returns the number of recorded messages.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.messages)
}
