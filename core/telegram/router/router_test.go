package router

import (
	"errors"
	"testing"

	tg "github.com/m3rciful/eventbot/core/telegram"
	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

type fakeContext struct {
	tele.Context
	update tele.Update
	store  map[string]any
}

func textContext(chatID int64, text string) *fakeContext {
	msg := &tele.Message{Chat: &tele.Chat{ID: chatID}, Sender: &tele.User{ID: chatID}, Text: text}
	return &fakeContext{update: tele.Update{ID: 3, Message: msg}, store: map[string]any{}}
}

func callbackContext(chatID int64, data string) *fakeContext {
	cb := &tele.Callback{Data: data, Sender: &tele.User{ID: chatID}, Message: &tele.Message{Chat: &tele.Chat{ID: chatID}}}
	return &fakeContext{update: tele.Update{ID: 4, Callback: cb}, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update { return f.update }
func (f *fakeContext) Callback() *tele.Callback {
	return f.update.Callback
}
func (f *fakeContext) Chat() *tele.Chat {
	if f.update.Callback != nil {
		return f.update.Callback.Message.Chat
	}
	return f.update.Message.Chat
}
func (f *fakeContext) Sender() *tele.User {
	if f.update.Callback != nil {
		return f.update.Callback.Sender
	}
	return f.update.Message.Sender
}
func (f *fakeContext) Text() string {
	if f.update.Message == nil {
		return ""
	}
	return f.update.Message.Text
}
func (f *fakeContext) Get(k string) any    { return f.store[k] }
func (f *fakeContext) Set(k string, v any) { f.store[k] = v }

type fakeConversation struct {
	active bool
	texts  int
	photos int
}

func (f *fakeConversation) InProgress(int64) bool          { return f.active }
func (f *fakeConversation) HandleText(tele.Context) error  { f.texts++; return nil }
func (f *fakeConversation) HandlePhoto(tele.Context) error { f.photos++; return nil }

type fallbacks struct{ unknownText, unknownCommand, unknownCallback, denied int }

func (f *fallbacks) UnknownText() tele.HandlerFunc {
	return func(tele.Context) error { f.unknownText++; return nil }
}
func (f *fallbacks) UnknownCommand() tele.HandlerFunc {
	return func(tele.Context) error { f.unknownCommand++; return nil }
}
func (f *fallbacks) UnknownCallback() tele.HandlerFunc {
	return func(tele.Context) error { f.unknownCallback++; return nil }
}
func (f *fallbacks) AdminDenied() tele.HandlerFunc {
	return func(tele.Context) error { f.denied++; return nil }
}

func textHandler(t *testing.T, conv Conversation, reg *tg.Registry, fb *fallbacks) tele.HandlerFunc {
	t.Helper()
	for _, r := range MessageRoutes(conv, reg, fb) {
		if r.Endpoint == tele.OnText {
			return r.Handler
		}
	}
	t.Fatal("no text route")
	return nil
}

func TestCommandsNeverReachConversation(t *testing.T) {
	conv := &fakeConversation{active: true}
	fb := &fallbacks{}
	h := textHandler(t, conv, tg.NewRegistry(), fb)

	if err := h(textContext(1, "/nonsense")); err != nil {
		t.Fatal(err)
	}
	if conv.texts != 0 || fb.unknownCommand != 1 {
		t.Errorf("texts=%d unknownCommand=%d, want 0/1", conv.texts, fb.unknownCommand)
	}

	if err := h(textContext(1, "Anna")); err != nil {
		t.Fatal(err)
	}
	if conv.texts != 1 {
		t.Errorf("conversation text not delivered")
	}
}

func TestIdleTextFallsBack(t *testing.T) {
	conv := &fakeConversation{}
	fb := &fallbacks{}
	h := textHandler(t, conv, tg.NewRegistry(), fb)
	_ = h(textContext(1, "hello"))
	if fb.unknownText != 1 || conv.texts != 0 {
		t.Errorf("unknownText=%d texts=%d", fb.unknownText, conv.texts)
	}
}

func TestTextResolvesCommandAlias(t *testing.T) {
	reg := tg.NewRegistry()
	var started int
	_ = reg.RegisterCommand("/start", commands.Command{
		Handler:     func(tele.Context) error { started++; return nil },
		Description: "start",
	})
	h := textHandler(t, &fakeConversation{active: true}, reg, &fallbacks{})
	_ = h(textContext(1, "/start@eventbot"))
	if started != 1 {
		t.Errorf("started = %d, want 1", started)
	}
}

func TestCallbackRouteDecodesOnce(t *testing.T) {
	reg := tg.NewRegistry()
	var got callbacks.Action
	_ = reg.RegisterCallback(callbacks.KindUsers, func(c tele.Context) error {
		got, _ = callbacks.From(c)
		return nil
	})
	var notFound int
	reg.SetCallbackNotFound(func(tele.Context) error { notFound++; return nil })
	h := CallbackRoute(reg).Handler

	if err := h(callbackContext(5, "\fusers|p2")); err != nil {
		t.Fatal(err)
	}
	if got.Kind != callbacks.KindUsers || got.Page != 2 {
		t.Errorf("action = %+v", got)
	}

	_ = h(callbackContext(5, "\fgarbage"))
	_ = h(callbackContext(5, "\fstats"))
	if notFound != 2 {
		t.Errorf("notFound = %d, want 2", notFound)
	}
}

type codedErr struct{}

func (codedErr) Error() string { return "x" }
func (codedErr) Code() string  { return "access denied" }

type plainErr struct{}

func (*plainErr) Error() string { return "y" }

func TestErrorCode(t *testing.T) {
	if got := errorCode(codedErr{}); got != "ACCESS_DENIED" {
		t.Errorf("coded = %q", got)
	}
	if got := errorCode(&plainErr{}); got != "PLAINERR" {
		t.Errorf("typed = %q", got)
	}
	if got := errorCode(errors.New("z")); got != "ERRORSTRING" {
		t.Errorf("errors.New = %q", got)
	}
}
