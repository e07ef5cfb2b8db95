// Package messenger is the outbound side of the bot: everything the domain packages send.
package messenger

import (
	"context"

	tele "gopkg.in/telebot.v4"
)

// Photo references an uploaded file by id, or carries raw image bytes.
type Photo struct {
	FileID string
	Data   []byte
}

// Document is a file attachment built in memory.
type Document struct {
	Name    string
	MIME    string
	Data    []byte
	Caption string
}

// Messenger sends, edits and answers on behalf of the bot. Text is HTML.
// Methods that return a message id do so for callers that later edit that message.
type Messenger interface {
	SendText(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) (int, error)
	SendPhoto(ctx context.Context, chatID int64, photo Photo, caption string, markup *tele.ReplyMarkup) (int, error)
	SendDocument(ctx context.Context, chatID int64, doc Document) error
	EditText(ctx context.Context, chatID int64, messageID int, text string, markup *tele.ReplyMarkup) error
	// Answer acknowledges a callback query, optionally as a popup alert.
	Answer(ctx context.Context, callbackID, text string, alert bool) error
	// Notify queues a text send and returns without waiting for delivery.
	Notify(ctx context.Context, chatID int64, text string) error
	// Username is the bot's own handle, empty until the bot is bound.
	Username() string
}
