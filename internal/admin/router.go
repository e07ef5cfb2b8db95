// Package admin is the operator control surface: the admin menu, its list and settings
// views, operator-only commands and every admin button.
package admin

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/middleware"
	"github.com/m3rciful/eventbot/core/telegram/state"
	"github.com/m3rciful/eventbot/internal/broadcast"
	"github.com/m3rciful/eventbot/internal/messenger"
	"github.com/m3rciful/eventbot/internal/store"
	"github.com/m3rciful/eventbot/internal/texts"

	tele "gopkg.in/telebot.v4"
)

type accessDenied struct{}

func (accessDenied) Error() string { return "admin: access denied" }
func (accessDenied) Code() string  { return "access_denied" }

// ErrAccessDenied is returned by Authorize for every chat except the operator.
var ErrAccessDenied error = accessDenied{}

// Broadcaster starts a broadcast without waiting for it.
type Broadcaster interface {
	Start(ctx context.Context, operator int64, p broadcast.Payload)
}

// Deps are the services the router drives.
type Deps struct {
	Store     *store.Store
	Sessions  state.Manager
	Out       messenger.Messenger
	Texts     *texts.Texts
	Broadcast Broadcaster
	// Now defaults to time.Now. It names export files.
	Now func() time.Time
}

// Options configures the operator identity and list sizes.
type Options struct {
	OperatorID int64
	PageSize   int
}

// Router serves the operator. It also implements the views the conversation machine
// redisplays after admin input.
type Router struct {
	Deps
	opts Options

	mu     sync.Mutex
	menuID int
}

// New builds a Router.
func New(deps Deps, opts Options) *Router {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	if opts.PageSize <= 0 {
		opts.PageSize = 10
	}
	return &Router{Deps: deps, opts: opts}
}

// Authorize compares chatID with the configured operator exactly.
func (r *Router) Authorize(chatID int64) error {
	if middleware.IsAdmin(r.opts.OperatorID, chatID) {
		return nil
	}
	return ErrAccessDenied
}

func (r *Router) deny(ctx context.Context, chatID int64, what string) error {
	logger.Warn(ctx, "admin", "access.denied",
		slog.String("status", "denied"),
		slog.String("action", what),
		slog.Int64("chat_id", chatID),
	)
	_, err := r.Out.SendText(ctx, chatID, r.Texts.User.AccessDenied, nil)
	return err
}

// remember sets the message that admin views edit in place. Zero forgets it.
func (r *Router) remember(id int) {
	r.mu.Lock()
	r.menuID = id
	r.mu.Unlock()
}

func (r *Router) remembered() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.menuID
}

// show edits the remembered menu message, or sends a new one when there is none or the
// edit fails, and remembers the new message.
func (r *Router) show(ctx context.Context, chatID int64, text string, markup *tele.ReplyMarkup) error {
	if id := r.remembered(); id != 0 {
		err := r.Out.EditText(ctx, chatID, id, text, markup)
		if err == nil {
			return nil
		}
		logger.Debug(ctx, "admin", "view.edit", slog.String("status", "fail"), logger.Err(err))
	}
	id, err := r.Out.SendText(ctx, chatID, text, markup)
	if err != nil {
		return err
	}
	r.remember(id)
	return nil
}

func (r *Router) send(ctx context.Context, chatID int64, text string) error {
	_, err := r.Out.SendText(ctx, chatID, text, nil)
	return err
}

// persisted reports a save failure to the operator without undoing the change.
func (r *Router) persisted(ctx context.Context, chatID int64, err error) error {
	if err == nil {
		return nil
	}
	if !store.IsPersistError(err) {
		return err
	}
	logger.Warn(ctx, "admin", "store.degraded", slog.String("status", "fail"), logger.Err(err))
	return r.send(ctx, chatID, r.Texts.Admin.SaveFailed)
}
