package domain

import "testing"

func TestUserMatches(t *testing.T) {
	u := User{ChatID: 123456, Name: "Анна Петрова", Username: "anna_p"}
	tests := []struct {
		q    string
		want bool
	}{
		{"анна", true},
		{"АННА", true},
		{"ANNA_P", true},
		{"3456", true},
		{"boris", false},
		{"   ", false},
	}
	for _, tt := range tests {
		if got := u.Matches(tt.q); got != tt.want {
			t.Errorf("Matches(%q) = %v, want %v", tt.q, got, tt.want)
		}
	}
}

func TestEventWith(t *testing.T) {
	c, ok := DefaultEvent().With(FieldAddress, "пр. Мира, 1")
	if !ok || c.Address != "пр. Мира, 1" || c.Day1 != DefaultEvent().Day1 {
		t.Fatalf("With = %+v, %v", c, ok)
	}
	if _, ok := c.With(EventField(0), "x"); ok {
		t.Error("unknown field accepted")
	}
}

func TestDisplayName(t *testing.T) {
	if got := (User{ChatID: 7, Username: "bob"}).DisplayName(); got != "@bob" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := (User{ChatID: 7}).DisplayName(); got != "7" {
		t.Errorf("DisplayName = %q", got)
	}
}
