// Package validate checks and normalises registration form input.
package validate

import (
	"fmt"
	"strconv"
	"strings"
)

// Reason classifies a rejected input. The flow maps it to a re-prompt.
type Reason string

const (
	ReasonEmpty      Reason = "empty"
	ReasonNotNumber  Reason = "not_number"
	ReasonOutOfRange Reason = "out_of_range"
	ReasonTooShort   Reason = "too_short"
)

// MinPhoneDigits is the fewest digits a phone number may carry.
const MinPhoneDigits = 10

// Error is returned for input that does not pass validation.
type Error struct {
	Field  string
	Reason Reason
}

func (e *Error) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// Code implements the handler summary's error code hook.
func (e *Error) Code() string { return "validation_" + string(e.Reason) }

// Name trims s and rejects blank input.
func Name(s string) (string, error) {
	name := strings.TrimSpace(s)
	if name == "" {
		return "", &Error{Field: "name", Reason: ReasonEmpty}
	}
	return name, nil
}

// Age parses s as an integer within [min, max].
func Age(s string, min, max int) (int, error) {
	age, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, &Error{Field: "age", Reason: ReasonNotNumber}
	}
	if age < min || age > max {
		return 0, &Error{Field: "age", Reason: ReasonOutOfRange}
	}
	return age, nil
}

// Phone keeps digits and a leading plus, and accepts the result when it has at least
// MinPhoneDigits digits. A Russian trunk-prefixed 8XXXXXXXXXX becomes +7XXXXXXXXXX and
// other numbers of eleven or more digits gain a leading plus.
func Phone(s string) (string, error) {
	var b strings.Builder
	digits := 0
	for _, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
			digits++
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	if digits < MinPhoneDigits {
		return "", &Error{Field: "phone", Reason: ReasonTooShort}
	}

	cleaned := b.String()
	switch {
	case strings.HasPrefix(cleaned, "+"):
		return cleaned, nil
	case digits == 11 && cleaned[0] == '8':
		return "+7" + cleaned[1:], nil
	case digits >= 11:
		return "+" + cleaned, nil
	}
	return cleaned, nil
}
