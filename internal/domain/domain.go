// Package domain holds the persisted entities of the registration bot.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// User is a chat that has pressed start at least once.
type User struct {
	ChatID     int64     `json:"chat_id"`
	Name       string    `json:"name,omitempty"`
	Username   string    `json:"username,omitempty"`
	FirstSeen  time.Time `json:"first_seen"`
	LastActive time.Time `json:"last_active"`
}

// DisplayName returns the name, the @handle, or the chat id, whichever is known first.
func (u User) DisplayName() string {
	switch {
	case u.Name != "":
		return u.Name
	case u.Username != "":
		return "@" + u.Username
	}
	return strconv.FormatInt(u.ChatID, 10)
}

// Matches reports whether query is a case-insensitive substring of the name, handle or chat id.
func (u User) Matches(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return false
	}
	return strings.Contains(strings.ToLower(u.Name), q) ||
		strings.Contains(strings.ToLower(u.Username), q) ||
		strings.Contains(strconv.FormatInt(u.ChatID, 10), q)
}

// Registration is one completed sign-up. It is never modified after creation.
type Registration struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chat_id"`
	Name      string    `json:"name"`
	Age       int       `json:"age"`
	Phone     string    `json:"phone"`
	CreatedAt time.Time `json:"created_at"`
}

// EventConfig describes the event every templated message refers to.
type EventConfig struct {
	Day1        string `json:"day1" yaml:"day1"`
	Day2        string `json:"day2" yaml:"day2"`
	Address     string `json:"address" yaml:"address"`
	Description string `json:"description" yaml:"description"`
	// Active gates whether new conversations may start.
	Active bool `json:"active" yaml:"active"`
}

// EventField names an operator-editable text field of EventConfig.
type EventField uint8

const (
	FieldDay1 EventField = iota + 1
	FieldDay2
	FieldAddress
	FieldDescription
)

func (f EventField) String() string {
	switch f {
	case FieldDay1:
		return "day1"
	case FieldDay2:
		return "day2"
	case FieldAddress:
		return "address"
	case FieldDescription:
		return "description"
	}
	return "unknown"
}

// With returns a copy of c with field f set to value.
func (c EventConfig) With(f EventField, value string) (EventConfig, bool) {
	switch f {
	case FieldDay1:
		c.Day1 = value
	case FieldDay2:
		c.Day2 = value
	case FieldAddress:
		c.Address = value
	case FieldDescription:
		c.Description = value
	default:
		return c, false
	}
	return c, true
}

// DefaultEvent is the baseline used when nothing has been persisted or configured.
func DefaultEvent() EventConfig {
	return EventConfig{
		Day1:    "22.11.2025 с 11:00 до 15:00",
		Day2:    "23.11.2025 с 11:00 до 15:00",
		Address: "ул. Студенческая, д. 35",
		Description: "Пространство психологических программ и оздоровительных практик, где Вы сможете " +
			"познакомиться с множеством специально подобранных эффективных практик.",
		Active: true,
	}
}

// Stats summarises the store for the operator.
type Stats struct {
	Users         int
	Registrations int
	Blocked       int
	Today         int
	Active        bool
}
