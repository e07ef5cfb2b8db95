package telegram

import (
	"testing"

	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/core/telegram/commands"

	tele "gopkg.in/telebot.v4"
)

func noop(tele.Context) error { return nil }

func TestLookupCommand(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("/block", commands.Command{Handler: noop, Description: "block", AdminOnly: true}); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "start", Aliases: []string{"go"}}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		text, want string
		ok         bool
	}{
		{"/block 12345", "/block", true},
		{"/start@eventbot", "/start", true},
		{"/go", "/start", true},
		{"/unknown", "", false},
	}
	for _, tt := range tests {
		key, _, ok := reg.LookupCommand(tt.text)
		if key != tt.want || ok != tt.ok {
			t.Errorf("LookupCommand(%q) = %q, %v; want %q, %v", tt.text, key, ok, tt.want, tt.ok)
		}
	}

	visible := reg.ListCommands(true)
	if len(visible) != 1 || visible[0].Text != "start" {
		t.Errorf("visible commands = %+v", visible)
	}
}

func TestRegisterRejectsInvalid(t *testing.T) {
	reg := NewRegistry()
	if err := reg.RegisterCommand("start", commands.Command{Handler: noop, Description: "x"}); err == nil {
		t.Error("command without slash accepted")
	}
	if err := reg.RegisterCallback(callbacks.KindMenu, noop); err != nil {
		t.Fatal(err)
	}
	if err := reg.RegisterCallback(callbacks.KindMenu, noop); err == nil {
		t.Error("duplicate callback accepted")
	}
	if _, ok := reg.Callback(callbacks.KindStats); ok {
		t.Error("unbound kind reported as bound")
	}
}
