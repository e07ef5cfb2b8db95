package admin

import (
	"context"
	"strconv"
	"strings"

	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/core/telegram/format"
	"github.com/m3rciful/eventbot/core/telegram/helpers"
	"github.com/m3rciful/eventbot/core/telegram/keyboard"
	"github.com/m3rciful/eventbot/internal/domain"
	"github.com/m3rciful/eventbot/internal/paginate"
	"github.com/m3rciful/eventbot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

func (r *Router) status(active bool) string {
	if active {
		return r.Texts.Admin.StatusOpen
	}
	return r.Texts.Admin.StatusClosed
}

func (r *Router) statsVars() map[string]any {
	st := r.Store.Stats()
	return map[string]any{
		"users":         st.Users,
		"registrations": st.Registrations,
		"today":         st.Today,
		"blocked":       st.Blocked,
		"status":        r.status(st.Active),
	}
}

func (r *Router) back() []keyboard.Button {
	return []keyboard.Button{keyboard.Btn(r.Texts.Buttons.Back, callbacks.KindMenu)}
}

func (r *Router) cancelMarkup() *tele.ReplyMarkup {
	return keyboard.Single(r.Texts.Buttons.Cancel, callbacks.KindCancel)
}

// ShowMenu renders the admin menu.
func (r *Router) ShowMenu(ctx context.Context, chatID int64) error {
	b := r.Texts.Buttons
	markup := keyboard.Inline(
		[]keyboard.Button{keyboard.Btn(b.Users, callbacks.KindUsers), keyboard.Btn(b.Registrations, callbacks.KindRegistrations)},
		[]keyboard.Button{keyboard.Btn(b.Blocked, callbacks.KindBlocked), keyboard.Btn(b.Stats, callbacks.KindStats)},
		[]keyboard.Button{keyboard.Btn(b.Settings, callbacks.KindSettings), keyboard.Btn(b.FindUser, callbacks.KindFindUser)},
		[]keyboard.Button{keyboard.Btn(b.BroadcastText, callbacks.KindBroadcastText), keyboard.Btn(b.BroadcastPhoto, callbacks.KindBroadcastPhoto)},
		[]keyboard.Button{keyboard.Btn(b.Export, callbacks.KindExport), keyboard.Btn(b.QR, callbacks.KindQR)},
		[]keyboard.Button{keyboard.Btn(b.Clear, callbacks.KindClearAsk)},
	)
	return r.show(ctx, chatID, texts.Render(r.Texts.Admin.Menu, r.statsVars()), markup)
}

func (r *Router) showStats(ctx context.Context, chatID int64) error {
	return r.show(ctx, chatID, texts.Render(r.Texts.Admin.Stats, r.statsVars()), keyboard.Inline(r.back()))
}

// ShowSettings renders the event settings with edit buttons.
func (r *Router) ShowSettings(ctx context.Context, chatID int64) error {
	ev := r.Store.Event()
	b := r.Texts.Buttons
	toggle := b.Close
	if !ev.Active {
		toggle = b.Open
	}
	text := texts.Render(r.Texts.Admin.Settings, map[string]any{
		"day1":        format.Escape(ev.Day1),
		"day2":        format.Escape(ev.Day2),
		"address":     format.Escape(ev.Address),
		"description": format.Escape(ev.Description),
		"status":      r.status(ev.Active),
	})
	markup := keyboard.Inline(
		[]keyboard.Button{keyboard.Btn(b.EditDay1, callbacks.KindEditDay1), keyboard.Btn(b.EditDay2, callbacks.KindEditDay2)},
		[]keyboard.Button{keyboard.Btn(b.EditAddress, callbacks.KindEditAddress), keyboard.Btn(b.EditDescription, callbacks.KindEditDescription)},
		[]keyboard.Button{keyboard.Btn(toggle, callbacks.KindToggleActive)},
		r.back(),
	)
	return r.show(ctx, chatID, text, markup)
}

func (r *Router) userLine(u domain.User) string {
	username := ""
	if u.Username != "" {
		username = "@" + u.Username
	}
	return texts.Render(r.Texts.Admin.UserLine, map[string]any{
		"name":        format.Escape(u.Name),
		"username":    format.Escape(username),
		"chat_id":     u.ChatID,
		"last_active": helpers.FormatTime(u.LastActive),
	})
}

func (r *Router) listText(title string, p pageInfo, lines []string) string {
	head := texts.Render(title, map[string]any{"total": p.total, "page": p.number, "pages": p.pages})
	if len(lines) == 0 {
		return head + "\n\n" + r.Texts.Admin.EmptyList
	}
	return head + "\n\n" + strings.Join(lines, "\n\n")
}

type pageInfo struct {
	total, number, pages int
}

func info[T any](p paginate.Page[T]) pageInfo {
	return pageInfo{total: p.Total, number: p.Number(), pages: p.Pages}
}

func (r *Router) nav(kind callbacks.Kind, index int, hasPrev, hasNext bool) []keyboard.Button {
	return keyboard.PageNav(kind, index, hasPrev, hasNext, r.Texts.Buttons.Prev, r.Texts.Buttons.Next)
}

func (r *Router) showUsers(ctx context.Context, chatID int64, page int) error {
	p := paginate.Render(r.Store.Users(), page, r.opts.PageSize, paginate.NewestFirst)
	lines := make([]string, 0, len(p.Items))
	for _, u := range p.Items {
		lines = append(lines, r.userLine(u))
	}
	markup := keyboard.Inline(r.nav(callbacks.KindUsers, p.Index, p.HasPrev, p.HasNext), r.back())
	return r.show(ctx, chatID, r.listText(r.Texts.Admin.UsersTitle, info(p), lines), markup)
}

func (r *Router) showRegistrations(ctx context.Context, chatID int64, page int) error {
	p := paginate.Render(r.Store.Registrations(), page, r.opts.PageSize, paginate.NewestFirst)
	lines := make([]string, 0, len(p.Items))
	for _, reg := range p.Items {
		lines = append(lines, texts.Render(r.Texts.Admin.RegLine, map[string]any{
			"name":    format.Escape(reg.Name),
			"age":     reg.Age,
			"phone":   format.Escape(reg.Phone),
			"created": helpers.FormatTime(reg.CreatedAt),
		}))
	}
	markup := keyboard.Inline(r.nav(callbacks.KindRegistrations, p.Index, p.HasPrev, p.HasNext), r.back())
	return r.show(ctx, chatID, r.listText(r.Texts.Admin.RegsTitle, info(p), lines), markup)
}

func (r *Router) showBlocked(ctx context.Context, chatID int64, page int) error {
	p := paginate.Render(r.Store.Blocked(), page, r.opts.PageSize, paginate.InsertionOrder)
	lines := make([]string, 0, len(p.Items))
	unblock := make([]keyboard.Button, 0, len(p.Items))
	for _, id := range p.Items {
		name := ""
		if u, ok := r.Store.User(id); ok {
			name = u.DisplayName()
		}
		lines = append(lines, texts.Render(r.Texts.Admin.BlockedLine, map[string]any{
			"chat_id": id,
			"name":    format.Escape(name),
		}))
		unblock = append(unblock, r.targetButton(r.Texts.Buttons.Unblock, callbacks.KindUnblock, id))
	}
	rows := keyboard.Chunk(unblock, 2)
	rows = append(rows, r.nav(callbacks.KindBlocked, p.Index, p.HasPrev, p.HasNext), r.back())
	return r.show(ctx, chatID, r.listText(r.Texts.Admin.BlockedTitle, info(p), lines), keyboard.Inline(rows...))
}

func (r *Router) targetButton(label string, kind callbacks.Kind, chatID int64) keyboard.Button {
	return keyboard.Button{
		Text:   texts.Render(label, map[string]any{"chat_id": chatID}),
		Action: callbacks.Action{Kind: kind, Target: chatID},
	}
}

// ShowSearchResults renders find-user matches with a block or unblock button per user.
func (r *Router) ShowSearchResults(ctx context.Context, chatID int64, query string, users []domain.User) error {
	if len(users) == 0 {
		text := texts.Render(r.Texts.Admin.FindNone, map[string]any{"query": format.Escape(format.Truncate(query, 64))})
		return r.show(ctx, chatID, text, keyboard.Inline(r.back()))
	}
	lines := make([]string, 0, len(users)+1)
	lines = append(lines, texts.Render(r.Texts.Admin.FindTitle, map[string]any{"count": len(users)}))
	buttons := make([]keyboard.Button, 0, len(users))
	for _, u := range users {
		lines = append(lines, r.userLine(u))
		if r.Store.IsBlocked(u.ChatID) {
			buttons = append(buttons, r.targetButton(r.Texts.Buttons.Unblock, callbacks.KindUnblock, u.ChatID))
		} else {
			buttons = append(buttons, r.targetButton(r.Texts.Buttons.Block, callbacks.KindBlock, u.ChatID))
		}
	}
	rows := append(keyboard.Chunk(buttons, 2), r.back())
	// results follow the operator's query message, so they go out as a new message
	r.remember(0)
	return r.show(ctx, chatID, strings.Join(lines, "\n\n"), keyboard.Inline(rows...))
}

func (r *Router) prompt(ctx context.Context, chatID int64, text string) error {
	return r.show(ctx, chatID, text, r.cancelMarkup())
}

func (r *Router) showClearAsk(ctx context.Context, chatID int64) error {
	n := len(r.Store.Registrations())
	text := texts.Render(r.Texts.Admin.ClearAsk, map[string]any{"count": strconv.Itoa(n)})
	markup := keyboard.Inline(
		[]keyboard.Button{keyboard.Btn(r.Texts.Buttons.ClearConfirm, callbacks.KindClearConfirm)},
		r.back(),
	)
	return r.show(ctx, chatID, text, markup)
}
