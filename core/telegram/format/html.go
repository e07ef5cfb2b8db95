// Package format renders text for Telegram's HTML parse mode.
package format

import "html"

// Escape makes s safe to embed in an HTML-mode message.
func Escape(s string) string {
	return html.EscapeString(s)
}

// Truncate caps s at max runes, appending an ellipsis when cut.
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 || len(r) <= max {
		return s
	}
	if max == 1 {
		return "…"
	}
	return string(r[:max-1]) + "…"
}
