package middleware

import (
	"errors"
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

// fakeContext is the part of tele.Context the middlewares touch.
type fakeContext struct {
	tele.Context
	update tele.Update
	store  map[string]any
}

func newFakeContext(chatID int64) *fakeContext {
	msg := &tele.Message{
		Chat:   &tele.Chat{ID: chatID, Type: tele.ChatPrivate},
		Sender: &tele.User{ID: chatID},
		Text:   "hello",
	}
	return &fakeContext{update: tele.Update{ID: 1, Message: msg}, store: map[string]any{}}
}

func (f *fakeContext) Update() tele.Update      { return f.update }
func (f *fakeContext) Chat() *tele.Chat         { return f.update.Message.Chat }
func (f *fakeContext) Sender() *tele.User       { return f.update.Message.Sender }
func (f *fakeContext) Callback() *tele.Callback { return nil }
func (f *fakeContext) Text() string             { return f.update.Message.Text }
func (f *fakeContext) Get(k string) any         { return f.store[k] }
func (f *fakeContext) Set(k string, v any)      { f.store[k] = v }

func TestAdminOnlyMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		adminID int64
		chatID  int64
		allowed bool
	}{
		{"operator", 42, 42, true},
		{"stranger", 42, 7, false},
		{"prefix is not equality", 42, 4, false},
		{"no operator configured", 0, 0, false},
		{"no operator configured, any chat", 0, 42, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var reached, rejected bool
			mw := AdminOnlyMiddleware(AdminOptions{
				AdminID:  tt.adminID,
				OnReject: func(tele.Context) error { rejected = true; return nil },
			})
			h := mw(func(tele.Context) error { reached = true; return nil })
			if err := h(newFakeContext(tt.chatID)); err != nil {
				t.Fatal(err)
			}
			if reached != tt.allowed || rejected == tt.allowed {
				t.Errorf("reached=%v rejected=%v, want allowed=%v", reached, rejected, tt.allowed)
			}
		})
	}
}

func TestRecoverMiddlewareSwallowsPanic(t *testing.T) {
	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	if err := h(newFakeContext(1)); err != nil {
		t.Fatalf("err = %v, want nil", err)
	}
	want := errors.New("plain")
	h = RecoverMiddleware(func(tele.Context) error { return want })
	if err := h(newFakeContext(1)); !errors.Is(err, want) {
		t.Fatalf("err = %v, want passthrough", err)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	var calls, limited int
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	h := mw(func(tele.Context) error { calls++; return nil })
	c := newFakeContext(9)
	_ = h(c)
	_ = h(c)
	if calls != 1 || limited != 1 {
		t.Errorf("calls=%d limited=%d, want 1/1", calls, limited)
	}

	mw = RateLimitMiddleware(RateLimitOptions{Interval: time.Hour, Exclude: map[string]struct{}{"message": {}}})
	calls = 0
	h = mw(func(tele.Context) error { calls++; return nil })
	_ = h(c)
	_ = h(c)
	if calls != 2 {
		t.Errorf("excluded kind throttled: calls=%d", calls)
	}
}

func TestLoggerMiddlewareSetsRID(t *testing.T) {
	c := newFakeContext(77)
	h := LoggerMiddleware(func(tele.Context) error { return nil })
	if err := h(c); err != nil {
		t.Fatal(err)
	}
	if rid, _ := c.Get("rid").(string); rid != "1:77:77" {
		t.Errorf("rid = %q", rid)
	}
}
