// Package flow is the per-chat conversation state machine.
//
// A registrant walks WaitingName, WaitingAge and WaitingPhone and ends with a stored
// registration. The operator enters one-shot admin states from the admin menu; each of
// them consumes exactly one input and clears the session.
package flow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/core/telegram/format"
	"github.com/m3rciful/eventbot/core/telegram/keyboard"
	"github.com/m3rciful/eventbot/core/telegram/state"
	"github.com/m3rciful/eventbot/internal/broadcast"
	"github.com/m3rciful/eventbot/internal/domain"
	"github.com/m3rciful/eventbot/internal/messenger"
	"github.com/m3rciful/eventbot/internal/store"
	"github.com/m3rciful/eventbot/internal/texts"
	"github.com/m3rciful/eventbot/internal/validate"
)

// Views are the operator screens the machine redisplays after an admin input.
type Views interface {
	ShowMenu(ctx context.Context, chatID int64) error
	ShowSettings(ctx context.Context, chatID int64) error
	ShowSearchResults(ctx context.Context, chatID int64, query string, users []domain.User) error
}

// Broadcaster starts a broadcast without waiting for it.
type Broadcaster interface {
	Start(ctx context.Context, operator int64, p broadcast.Payload)
}

// Scheduler runs f once after d on its own goroutine.
type Scheduler interface {
	AfterFunc(d time.Duration, f func())
}

type timeScheduler struct{}

func (timeScheduler) AfterFunc(d time.Duration, f func()) { time.AfterFunc(d, f) }

// Options holds the tunables of the registration form.
type Options struct {
	OperatorID    int64
	MinAge        int
	MaxAge        int
	FollowUpDelay time.Duration
	SearchLimit   int
}

// Deps are the services the machine drives.
type Deps struct {
	Sessions  state.Manager
	Store     *store.Store
	Out       messenger.Messenger
	Texts     *texts.Texts
	Views     Views
	Broadcast Broadcaster
	// Scheduler defaults to time.AfterFunc.
	Scheduler Scheduler
}

// Machine consumes inbound text and photos for chats with an active session.
type Machine struct {
	Deps
	opts Options
}

// New builds a Machine.
func New(deps Deps, opts Options) *Machine {
	if deps.Scheduler == nil {
		deps.Scheduler = timeScheduler{}
	}
	if opts.MinAge == 0 && opts.MaxAge == 0 {
		opts.MinAge, opts.MaxAge = 18, 100
	}
	if opts.SearchLimit <= 0 {
		opts.SearchLimit = 10
	}
	return &Machine{Deps: deps, opts: opts}
}

// InProgress reports whether chatID has an active session.
func (m *Machine) InProgress(chatID int64) bool {
	return m.Sessions.InProgress(chatID)
}

// Start opens a registration for chatID. Blocked chats are refused and a closed event only
// gets an informational reply; neither creates a session.
func (m *Machine) Start(ctx context.Context, chatID int64, name, username string) error {
	defer m.Sessions.Lock(chatID)()

	if _, created, err := m.Store.TouchUser(ctx, chatID, name, username); err != nil {
		m.persistFailed(ctx, err)
	} else if created {
		logger.Info(ctx, "fsm", "user.created", slog.String("username", username))
	}

	if m.Store.IsBlocked(chatID) {
		logger.Info(ctx, "fsm", "start.refused", slog.String("reason", "blocked"))
		return m.send(ctx, chatID, m.Texts.User.Blocked)
	}
	ev := m.Store.Event()
	if !ev.Active {
		logger.Info(ctx, "fsm", "start.refused", slog.String("reason", "closed"))
		return m.send(ctx, chatID, m.Texts.User.Closed)
	}

	m.transition(ctx, chatID, state.Session{State: state.StateWaitingName})
	return m.send(ctx, chatID, texts.Render(m.Texts.User.Welcome, map[string]any{
		"description": format.Escape(ev.Description),
	}))
}

// Cancel clears any session unconditionally. Without a session it only replies with a hint.
func (m *Machine) Cancel(ctx context.Context, chatID int64) error {
	defer m.Sessions.Lock(chatID)()
	prev, had := m.Sessions.Get(chatID)
	if !had {
		return m.send(ctx, chatID, m.Texts.User.NothingToCancel)
	}
	m.Sessions.Clear(chatID)
	logger.Info(ctx, "fsm", "session.cancelled", slog.String("state", prev.State.String()))

	if err := m.send(ctx, chatID, m.Texts.User.Cancelled); err != nil {
		return err
	}
	if chatID == m.opts.OperatorID && m.opts.OperatorID != 0 {
		return m.Views.ShowMenu(ctx, chatID)
	}
	return nil
}

// Text feeds one text message to the chat's session.
// The chat's session stays locked until the reply is sent, so a second message waits for
// the state the first one leaves behind.
func (m *Machine) Text(ctx context.Context, chatID int64, text string) error {
	defer m.Sessions.Lock(chatID)()
	sess, ok := m.Sessions.Get(chatID)
	if !ok {
		return m.startHint(ctx, chatID)
	}
	if sess.State.Admin() && chatID != m.opts.OperatorID {
		m.Sessions.Clear(chatID)
		return m.startHint(ctx, chatID)
	}

	switch sess.State {
	case state.StateIdle:
		return m.startHint(ctx, chatID)
	case state.StateWaitingName:
		return m.onName(ctx, chatID, sess, text)
	case state.StateWaitingAge:
		return m.onAge(ctx, chatID, sess, text)
	case state.StateWaitingPhone:
		return m.onPhone(ctx, chatID, sess, text)
	case state.StateAdminBroadcastText:
		m.Sessions.Clear(chatID)
		m.Broadcast.Start(ctx, chatID, broadcast.Payload{Text: format.Escape(text)})
		return nil
	case state.StateAdminBroadcastPhoto:
		return m.send(ctx, chatID, m.Texts.Admin.BroadcastNeedPhoto)
	case state.StateAdminEditDay1:
		return m.onEdit(ctx, chatID, domain.FieldDay1, text)
	case state.StateAdminEditDay2:
		return m.onEdit(ctx, chatID, domain.FieldDay2, text)
	case state.StateAdminEditAddress:
		return m.onEdit(ctx, chatID, domain.FieldAddress, text)
	case state.StateAdminEditDescription:
		return m.onEdit(ctx, chatID, domain.FieldDescription, text)
	case state.StateAdminFindUser:
		m.Sessions.Clear(chatID)
		users := m.Store.FindUsers(text, m.opts.SearchLimit)
		logger.Info(ctx, "fsm", "user.search", slog.Int("count", len(users)))
		return m.Views.ShowSearchResults(ctx, chatID, text, users)
	}
	return fmt.Errorf("flow: unhandled state %s", sess.State)
}

// Photo feeds one photo message to the chat's session. Only the photo broadcast state
// accepts it; every other state repeats its question.
func (m *Machine) Photo(ctx context.Context, chatID int64, fileID, caption string) error {
	defer m.Sessions.Lock(chatID)()
	sess, ok := m.Sessions.Get(chatID)
	if !ok {
		return m.startHint(ctx, chatID)
	}
	if sess.State.Admin() && chatID != m.opts.OperatorID {
		m.Sessions.Clear(chatID)
		return m.startHint(ctx, chatID)
	}

	switch sess.State {
	case state.StateIdle:
		return m.startHint(ctx, chatID)
	case state.StateWaitingName:
		return m.send(ctx, chatID, m.Texts.User.NameEmpty)
	case state.StateWaitingAge:
		return m.send(ctx, chatID, m.Texts.User.AgeNotNumber)
	case state.StateWaitingPhone:
		return m.send(ctx, chatID, m.Texts.User.PhoneInvalid)
	case state.StateAdminBroadcastText:
		return m.send(ctx, chatID, m.Texts.Admin.BroadcastNeedText)
	case state.StateAdminBroadcastPhoto:
		m.Sessions.Clear(chatID)
		m.Broadcast.Start(ctx, chatID, broadcast.Payload{Photo: messenger.Photo{FileID: fileID}, Caption: format.Escape(caption)})
		return nil
	case state.StateAdminEditDay1:
		return m.send(ctx, chatID, m.Texts.Admin.PromptDay1)
	case state.StateAdminEditDay2:
		return m.send(ctx, chatID, m.Texts.Admin.PromptDay2)
	case state.StateAdminEditAddress:
		return m.send(ctx, chatID, m.Texts.Admin.PromptAddress)
	case state.StateAdminEditDescription:
		return m.send(ctx, chatID, m.Texts.Admin.PromptDescription)
	case state.StateAdminFindUser:
		return m.send(ctx, chatID, m.Texts.Admin.FindPrompt)
	}
	return fmt.Errorf("flow: unhandled state %s", sess.State)
}

func (m *Machine) onName(ctx context.Context, chatID int64, sess state.Session, text string) error {
	name, err := validate.Name(text)
	if err != nil {
		m.rejected(ctx, err)
		return m.send(ctx, chatID, m.Texts.User.NameEmpty)
	}
	sess.Draft.Name = name
	sess.State = state.StateWaitingAge
	m.transition(ctx, chatID, sess)
	return m.send(ctx, chatID, m.Texts.User.AskAge)
}

func (m *Machine) onAge(ctx context.Context, chatID int64, sess state.Session, text string) error {
	age, err := validate.Age(text, m.opts.MinAge, m.opts.MaxAge)
	if err != nil {
		m.rejected(ctx, err)
		msg := m.Texts.User.AgeNotNumber
		var ve *validate.Error
		if errors.As(err, &ve) && ve.Reason == validate.ReasonOutOfRange {
			msg = texts.Render(m.Texts.User.AgeOutOfRange, map[string]any{"min": m.opts.MinAge, "max": m.opts.MaxAge})
		}
		return m.send(ctx, chatID, msg)
	}
	sess.Draft.Age = age
	sess.State = state.StateWaitingPhone
	m.transition(ctx, chatID, sess)
	return m.send(ctx, chatID, m.Texts.User.AskPhone)
}

// onPhone commits the registration. The session is cleared as soon as the registration
// is stored so a failed confirmation can never produce a second one.
func (m *Machine) onPhone(ctx context.Context, chatID int64, sess state.Session, text string) error {
	phone, err := validate.Phone(text)
	if err != nil {
		m.rejected(ctx, err)
		return m.send(ctx, chatID, m.Texts.User.PhoneInvalid)
	}

	d := sess.Draft
	reg, err := m.Store.AddRegistration(ctx, chatID, d.Name, d.Age, phone)
	if err != nil {
		m.persistFailed(ctx, err)
	}
	m.Sessions.Clear(chatID)
	logger.Info(ctx, "fsm", "registration.created", slog.Int64("id", reg.ID))

	ev := m.Store.Event()
	vars := map[string]any{
		"name":    format.Escape(reg.Name),
		"age":     reg.Age,
		"phone":   format.Escape(reg.Phone),
		"day1":    format.Escape(ev.Day1),
		"day2":    format.Escape(ev.Day2),
		"address": format.Escape(ev.Address),
	}
	sendErr := m.send(ctx, chatID, texts.Render(m.Texts.User.Confirmed, vars))

	m.notifyOperator(ctx, chatID, vars)
	m.scheduleFollowUp(ctx, chatID)
	return sendErr
}

func (m *Machine) onEdit(ctx context.Context, chatID int64, field domain.EventField, text string) error {
	m.Sessions.Clear(chatID)
	if _, err := m.Store.SetEventField(ctx, field, text); err != nil {
		if !store.IsPersistError(err) {
			return err
		}
		m.persistFailed(ctx, err)
	}
	logger.Info(ctx, "fsm", "event.updated", slog.String("field", field.String()))
	if err := m.send(ctx, chatID, m.Texts.Admin.FieldUpdated); err != nil {
		return err
	}
	return m.Views.ShowSettings(ctx, chatID)
}

// notifyOperator is best effort: it is queued and its failures are only logged.
func (m *Machine) notifyOperator(ctx context.Context, chatID int64, vars map[string]any) {
	if m.opts.OperatorID == 0 {
		return
	}
	username := "-"
	if u, ok := m.Store.User(chatID); ok && u.Username != "" {
		username = "@" + u.Username
	}
	vars["username"] = format.Escape(username)
	vars["chat_id"] = strconv.FormatInt(chatID, 10)
	if err := m.Out.Notify(ctx, m.opts.OperatorID, texts.Render(m.Texts.Admin.Notify, vars)); err != nil {
		logger.Warn(ctx, "fsm", "operator.notify", slog.String("status", "fail"), logger.Err(err))
	}
}

func (m *Machine) scheduleFollowUp(ctx context.Context, chatID int64) {
	if m.opts.FollowUpDelay < 0 {
		return
	}
	ctx = logger.Detach(ctx)
	m.Scheduler.AfterFunc(m.opts.FollowUpDelay, func() {
		defer logger.Recover(ctx, "fsm", "followup.panic")
		if err := m.Out.Notify(ctx, chatID, m.Texts.User.RegisterAgain); err != nil {
			logger.Warn(ctx, "fsm", "followup.send", slog.String("status", "fail"), logger.Err(err))
		}
	})
}

func (m *Machine) startHint(ctx context.Context, chatID int64) error {
	_, err := m.Out.SendText(ctx, chatID, m.Texts.User.StartHint,
		keyboard.Single(m.Texts.Buttons.Register, callbacks.KindRegister))
	return err
}

func (m *Machine) transition(ctx context.Context, chatID int64, next state.Session) {
	m.Sessions.Put(chatID, next)
	if logger.ShouldSampleDebug() {
		logger.Debug(ctx, "fsm", "session.transition", slog.String("state", next.State.String()))
	}
}

func (m *Machine) rejected(ctx context.Context, err error) {
	logger.Debug(ctx, "fsm", "input.rejected", slog.String("reason", err.Error()))
}

func (m *Machine) persistFailed(ctx context.Context, err error) {
	logger.Warn(ctx, "fsm", "store.degraded", slog.String("status", "fail"), logger.Err(err))
}

func (m *Machine) send(ctx context.Context, chatID int64, text string) error {
	_, err := m.Out.SendText(ctx, chatID, text, nil)
	return err
}
