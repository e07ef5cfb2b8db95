package admin

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/core/telegram/state"
	"github.com/m3rciful/eventbot/internal/texts"
)

// Query is one admin button press.
type Query struct {
	ChatID     int64
	CallbackID string
	// MessageID is the message carrying the pressed button. Views edit it in place.
	MessageID int
	Action    callbacks.Action
}

// Kinds lists the callback kinds the router handles.
func Kinds() []callbacks.Kind {
	return []callbacks.Kind{
		callbacks.KindMenu,
		callbacks.KindStats,
		callbacks.KindUsers,
		callbacks.KindRegistrations,
		callbacks.KindBlocked,
		callbacks.KindBlock,
		callbacks.KindUnblock,
		callbacks.KindSettings,
		callbacks.KindEditDay1,
		callbacks.KindEditDay2,
		callbacks.KindEditAddress,
		callbacks.KindEditDescription,
		callbacks.KindToggleActive,
		callbacks.KindBroadcastText,
		callbacks.KindBroadcastPhoto,
		callbacks.KindFindUser,
		callbacks.KindExport,
		callbacks.KindClearAsk,
		callbacks.KindClearConfirm,
		callbacks.KindQR,
	}
}

// Callback handles an admin button press and answers it exactly once.
// Non-operators get an alert and nothing changes.
func (r *Router) Callback(ctx context.Context, q Query) error {
	if err := r.Authorize(q.ChatID); err != nil {
		logger.Warn(ctx, "admin", "access.denied",
			slog.String("status", "denied"),
			slog.String("action", q.Action.Kind.String()),
			slog.Int64("chat_id", q.ChatID),
		)
		return r.Out.Answer(ctx, q.CallbackID, r.Texts.User.AccessDenied, true)
	}
	defer r.Sessions.Lock(q.ChatID)()
	if q.MessageID != 0 {
		r.remember(q.MessageID)
	}

	toast, err := r.dispatch(ctx, q)
	if answerErr := r.Out.Answer(ctx, q.CallbackID, toast, false); answerErr != nil {
		logger.Debug(ctx, "admin", "callback.answer", slog.String("status", "fail"), logger.Err(answerErr))
	}
	return err
}

func (r *Router) dispatch(ctx context.Context, q Query) (string, error) {
	chatID, a := q.ChatID, q.Action
	switch a.Kind {
	case callbacks.KindMenu:
		r.Sessions.Clear(chatID)
		return "", r.ShowMenu(ctx, chatID)
	case callbacks.KindStats:
		return "", r.showStats(ctx, chatID)
	case callbacks.KindUsers:
		return "", r.showUsers(ctx, chatID, a.Page)
	case callbacks.KindRegistrations:
		return "", r.showRegistrations(ctx, chatID, a.Page)
	case callbacks.KindBlocked:
		return "", r.showBlocked(ctx, chatID, a.Page)
	case callbacks.KindBlock:
		if err := r.block(ctx, chatID, a.Target); err != nil {
			return "", err
		}
		return texts.Render(r.Texts.Admin.BlockedOK, map[string]any{"chat_id": a.Target}), r.showBlocked(ctx, chatID, 0)
	case callbacks.KindUnblock:
		if err := r.unblock(ctx, chatID, a.Target); err != nil {
			return "", err
		}
		return texts.Render(r.Texts.Admin.UnblockedOK, map[string]any{"chat_id": a.Target}), r.showBlocked(ctx, chatID, 0)
	case callbacks.KindSettings:
		return "", r.ShowSettings(ctx, chatID)
	case callbacks.KindEditDay1:
		return "", r.enter(ctx, chatID, state.StateAdminEditDay1, r.Texts.Admin.PromptDay1)
	case callbacks.KindEditDay2:
		return "", r.enter(ctx, chatID, state.StateAdminEditDay2, r.Texts.Admin.PromptDay2)
	case callbacks.KindEditAddress:
		return "", r.enter(ctx, chatID, state.StateAdminEditAddress, r.Texts.Admin.PromptAddress)
	case callbacks.KindEditDescription:
		return "", r.enter(ctx, chatID, state.StateAdminEditDescription, r.Texts.Admin.PromptDescription)
	case callbacks.KindToggleActive:
		ev, err := r.Store.SetActive(ctx, !r.Store.Event().Active)
		logger.Info(ctx, "admin", "event.toggled", slog.Bool("active", ev.Active))
		if err := r.persisted(ctx, chatID, err); err != nil {
			return "", err
		}
		return texts.Render(r.Texts.Admin.ActiveToggled, map[string]any{"status": r.status(ev.Active)}), r.ShowSettings(ctx, chatID)
	case callbacks.KindBroadcastText:
		return "", r.enter(ctx, chatID, state.StateAdminBroadcastText, r.Texts.Admin.BroadcastTextPrompt)
	case callbacks.KindBroadcastPhoto:
		return "", r.enter(ctx, chatID, state.StateAdminBroadcastPhoto, r.Texts.Admin.BroadcastPhotoPrompt)
	case callbacks.KindFindUser:
		return "", r.enter(ctx, chatID, state.StateAdminFindUser, r.Texts.Admin.FindPrompt)
	case callbacks.KindExport:
		return "", r.export(ctx, chatID)
	case callbacks.KindClearAsk:
		return "", r.showClearAsk(ctx, chatID)
	case callbacks.KindClearConfirm:
		n, err := r.Store.ClearRegistrations(ctx)
		if err := r.persisted(ctx, chatID, err); err != nil {
			return "", err
		}
		return texts.Render(r.Texts.Admin.ClearDone, map[string]any{"count": n}), r.ShowMenu(ctx, chatID)
	case callbacks.KindQR:
		return "", r.sendQR(ctx, chatID)
	}
	return r.Texts.User.UnsupportedAction, fmt.Errorf("admin: unhandled action %s", a.Kind)
}

// enter opens a one-shot admin state and shows its prompt.
func (r *Router) enter(ctx context.Context, chatID int64, s state.State, prompt string) error {
	r.Sessions.Put(chatID, state.Session{State: s})
	logger.Info(ctx, "admin", "session.enter", slog.String("state", s.String()))
	return r.prompt(ctx, chatID, prompt)
}
