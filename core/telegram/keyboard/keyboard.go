// Package keyboard builds inline markups from typed callback actions.
package keyboard

import (
	"github.com/m3rciful/eventbot/core/telegram/callbacks"

	tele "gopkg.in/telebot.v4"
)

// Button is one inline button bound to an action.
type Button struct {
	Text   string
	Action callbacks.Action
}

// Btn is shorthand for a Button without parameters.
func Btn(text string, kind callbacks.Kind) Button {
	return Button{Text: text, Action: callbacks.Action{Kind: kind}}
}

// Inline builds an inline keyboard from rows. Empty rows are skipped.
func Inline(rows ...[]Button) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, 0, len(row))
		for _, b := range row {
			btn := callbacks.Button(markup, b.Text, b.Action)
			r = append(r, *btn.Inline())
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// Chunk splits buttons into rows of at most n.
func Chunk(buttons []Button, n int) [][]Button {
	if n <= 0 {
		n = 1
	}
	var rows [][]Button
	for i := 0; i < len(buttons); i += n {
		rows = append(rows, buttons[i:min(i+n, len(buttons))])
	}
	return rows
}

// PageNav returns previous/next buttons for a paged list of kind.
// Directions that do not exist are omitted, so the row may be empty.
func PageNav(kind callbacks.Kind, page int, hasPrev, hasNext bool, prevText, nextText string) []Button {
	var row []Button
	if hasPrev {
		row = append(row, Button{Text: prevText, Action: callbacks.Action{Kind: kind, Page: page - 1}})
	}
	if hasNext {
		row = append(row, Button{Text: nextText, Action: callbacks.Action{Kind: kind, Page: page + 1}})
	}
	return row
}

// Single returns a markup with one button.
func Single(text string, kind callbacks.Kind) *tele.ReplyMarkup {
	return Inline([]Button{Btn(text, kind)})
}
