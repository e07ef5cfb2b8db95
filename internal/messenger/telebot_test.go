package messenger

import (
	"context"
	"errors"
	"testing"
)

func TestUnboundTelebot(t *testing.T) {
	m := NewTelebot()
	ctx := context.Background()
	if _, err := m.SendText(ctx, 1, "hi", nil); !errors.Is(err, ErrNotBound) {
		t.Errorf("SendText err = %v", err)
	}
	if err := m.EditText(ctx, 1, 2, "hi", nil); !errors.Is(err, ErrNotBound) {
		t.Errorf("EditText err = %v", err)
	}
	if err := m.Notify(ctx, 1, "hi"); !errors.Is(err, ErrNotBound) {
		t.Errorf("Notify err = %v", err)
	}
	if m.Username() != "" {
		t.Errorf("Username = %q", m.Username())
	}
}

func TestObserveReturnsError(t *testing.T) {
	want := errors.New("boom")
	if err := observe(context.Background(), "send.text", 1, func() error { return want }); !errors.Is(err, want) {
		t.Errorf("err = %v", err)
	}
}
