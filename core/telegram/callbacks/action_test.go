package callbacks

import (
	"errors"
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestEncodeDecode(t *testing.T) {
	tests := []Action{
		{Kind: KindMenu},
		{Kind: KindUsers, Page: 3},
		{Kind: KindBlock, Target: 123456789},
		{Kind: KindUnblock, Target: -100200300},
		{Kind: KindClearConfirm},
	}
	for _, want := range tests {
		unique, data := Encode(want)
		got, err := Decode(unique, data)
		if err != nil {
			t.Fatalf("Decode(%q, %q): %v", unique, data, err)
		}
		if got != want {
			t.Errorf("Decode(Encode(%+v)) = %+v", want, got)
		}
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	tests := []struct{ unique, data string }{
		{"nope", ""},
		{"users", "pX"},
		{"users", "p-1"},
		{"block", "abc"},
	}
	for _, tt := range tests {
		if _, err := Decode(tt.unique, tt.data); !errors.Is(err, ErrMalformed) {
			t.Errorf("Decode(%q, %q) err = %v, want ErrMalformed", tt.unique, tt.data, err)
		}
	}
}

func TestSplitRawData(t *testing.T) {
	unique, data := Split(&tele.Callback{Data: "\fregs|p2"})
	if unique != "regs" || data != "p2" {
		t.Fatalf("Split = %q, %q", unique, data)
	}
	a, err := Parse(&tele.Callback{Data: "\fblocked"})
	if err != nil || a.Kind != KindBlocked {
		t.Fatalf("Parse = %+v, %v", a, err)
	}
	a, err = Parse(&tele.Callback{Unique: "unblock", Data: "42"})
	if err != nil || a.Target != 42 {
		t.Fatalf("Parse with unique = %+v, %v", a, err)
	}
}

func TestKindsHaveNames(t *testing.T) {
	for _, k := range Kinds() {
		if k.String() == "unknown" {
			t.Errorf("kind %d has no name", k)
		}
	}
}
