// Package callbacks converts inline button payloads into typed actions.
// Raw callback data is parsed exactly once, at the transport boundary.
package callbacks

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Kind discriminates inline button actions.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindMenu
	KindStats
	KindUsers
	KindRegistrations
	KindBlocked
	KindBlock
	KindUnblock
	KindSettings
	KindEditDay1
	KindEditDay2
	KindEditAddress
	KindEditDescription
	KindToggleActive
	KindBroadcastText
	KindBroadcastPhoto
	KindFindUser
	KindExport
	KindClearAsk
	KindClearConfirm
	KindQR
	KindCancel
	KindRegister
)

var kindNames = map[Kind]string{
	KindMenu:            "menu",
	KindStats:           "stats",
	KindUsers:           "users",
	KindRegistrations:   "regs",
	KindBlocked:         "blocked",
	KindBlock:           "block",
	KindUnblock:         "unblock",
	KindSettings:        "settings",
	KindEditDay1:        "edit_day1",
	KindEditDay2:        "edit_day2",
	KindEditAddress:     "edit_address",
	KindEditDescription: "edit_desc",
	KindToggleActive:    "toggle_active",
	KindBroadcastText:   "bc_text",
	KindBroadcastPhoto:  "bc_photo",
	KindFindUser:        "find_user",
	KindExport:          "export",
	KindClearAsk:        "clear_ask",
	KindClearConfirm:    "clear_confirm",
	KindQR:              "qr",
	KindCancel:          "cancel",
	KindRegister:        "register",
}

var kindsByName = func() map[string]Kind {
	m := make(map[string]Kind, len(kindNames))
	for k, n := range kindNames {
		m[n] = k
	}
	return m
}()

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return "unknown"
}

// Kinds lists every known kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, len(kindNames))
	for k := KindMenu; k <= KindRegister; k++ {
		out = append(out, k)
	}
	return out
}

// Action is a decoded button press.
// Page is meaningful for list kinds, Target for block and unblock.
type Action struct {
	Kind   Kind
	Page   int
	Target int64
}

// ErrMalformed reports callback data that does not decode into an Action.
var ErrMalformed = errors.New("callbacks: malformed payload")

// Encode returns the button unique id and data for a.
func Encode(a Action) (unique, data string) {
	unique = a.Kind.String()
	switch {
	case a.Target != 0:
		data = strconv.FormatInt(a.Target, 10)
	case a.Page != 0:
		data = "p" + strconv.Itoa(a.Page)
	}
	return unique, data
}

// Decode is the inverse of Encode.
func Decode(unique, data string) (Action, error) {
	kind, ok := kindsByName[strings.TrimSpace(unique)]
	if !ok {
		return Action{}, fmt.Errorf("%w: unknown kind %q", ErrMalformed, unique)
	}
	a := Action{Kind: kind}
	data = strings.TrimSpace(data)
	switch {
	case data == "":
	case strings.HasPrefix(data, "p"):
		page, err := strconv.Atoi(data[1:])
		if err != nil || page < 0 {
			return Action{}, fmt.Errorf("%w: page %q", ErrMalformed, data)
		}
		a.Page = page
	default:
		target, err := strconv.ParseInt(data, 10, 64)
		if err != nil {
			return Action{}, fmt.Errorf("%w: target %q", ErrMalformed, data)
		}
		a.Target = target
	}
	return a, nil
}

// Split extracts unique and data from a callback. Telebot fills Unique only when
// a handler is registered for that exact unique; generic OnCallback handlers see
// the raw "\f<unique>|<data>" form.
func Split(cb *tele.Callback) (string, string) {
	if cb == nil {
		return "", ""
	}
	if cb.Unique != "" {
		return cb.Unique, cb.Data
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	unique, data, _ := strings.Cut(raw, "|")
	return strings.TrimSpace(unique), data
}

// Parse decodes the callback carried by c.
func Parse(cb *tele.Callback) (Action, error) {
	if cb == nil {
		return Action{}, fmt.Errorf("%w: no callback", ErrMalformed)
	}
	return Decode(Split(cb))
}

// Button builds an inline button for a on markup.
func Button(markup *tele.ReplyMarkup, text string, a Action) tele.Btn {
	unique, data := Encode(a)
	if data == "" {
		return markup.Data(text, unique)
	}
	return markup.Data(text, unique, data)
}

const actionKey = "cb_action"

// Store keeps the decoded action on the handler context.
func Store(c tele.Context, a Action) {
	c.Set(actionKey, a)
}

// From returns the action stored by Store.
func From(c tele.Context) (Action, bool) {
	a, ok := c.Get(actionKey).(Action)
	return a, ok
}
