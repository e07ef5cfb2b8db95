// Package store keeps users, registrations, the block list and the event settings.
//
// The in-memory copy is authoritative for the running process. Every mutation re-saves
// its collection through the Backend before returning; a failed save is reported as a
// *PersistError but the mutation stays applied.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/m3rciful/eventbot/core/logger"
	"github.com/m3rciful/eventbot/internal/domain"
)

// Persisted collection keys.
const (
	KeyUsers         = "users"
	KeyRegistrations = "registrations"
	KeyBlocked       = "blocked"
	KeyEvent         = "event"
)

// PersistError reports a save that failed after the in-memory state was already updated.
type PersistError struct {
	Key string
	Err error
}

func (e *PersistError) Error() string { return fmt.Sprintf("persist %s: %v", e.Key, e.Err) }
func (e *PersistError) Unwrap() error { return e.Err }
func (e *PersistError) Code() string  { return "persist" }

// IsPersistError reports whether err is only a durability failure.
func IsPersistError(err error) bool {
	var pe *PersistError
	return errors.As(err, &pe)
}

// Store is safe for concurrent use.
type Store struct {
	backend Backend
	now     func() time.Time

	mu      sync.RWMutex
	users   []domain.User
	userIdx map[int64]int
	regs    []domain.Registration
	lastID  int64
	blocked []int64
	event   domain.EventConfig
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// Open loads every collection from backend. Missing keys start from their defaults:
// empty lists and defaultEvent.
func Open(ctx context.Context, backend Backend, defaultEvent domain.EventConfig, opts ...Option) (*Store, error) {
	s := &Store{
		backend: backend,
		now:     time.Now,
		userIdx: make(map[int64]int),
		event:   defaultEvent,
	}
	for _, o := range opts {
		o(s)
	}

	start := time.Now()
	targets := []struct {
		key string
		dst any
	}{
		{KeyUsers, &s.users},
		{KeyRegistrations, &s.regs},
		{KeyBlocked, &s.blocked},
		{KeyEvent, &s.event},
	}
	for _, t := range targets {
		if _, err := backend.Load(ctx, t.key, t.dst); err != nil {
			return nil, fmt.Errorf("store: load %s: %w", t.key, err)
		}
	}

	for i, u := range s.users {
		s.userIdx[u.ChatID] = i
	}
	for _, r := range s.regs {
		s.lastID = max(s.lastID, r.ID)
	}
	s.blocked = dedupe(s.blocked)

	logger.Info(ctx, "store", "store.loaded",
		slog.Int("users", len(s.users)),
		slog.Int("registrations", len(s.regs)),
		slog.Int("blocked", len(s.blocked)),
		slog.Duration("duration", logger.Took(start)),
	)
	return s, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// persist saves v under key. Callers hold s.mu so saves land in mutation order.
func (s *Store) persist(ctx context.Context, key string, v any) error {
	if err := s.backend.Save(ctx, key, v); err != nil {
		logger.Error(ctx, "store", "store.persist",
			slog.String("status", "fail"),
			slog.String("collection", key),
			logger.Err(err),
		)
		return &PersistError{Key: key, Err: err}
	}
	return nil
}

// TouchUser records activity for chatID, creating the user on first sight and
// refreshing name and handle when they are known.
func (s *Store) TouchUser(ctx context.Context, chatID int64, name, username string) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	i, ok := s.userIdx[chatID]
	if !ok {
		s.users = append(s.users, domain.User{ChatID: chatID, FirstSeen: now})
		i = len(s.users) - 1
		s.userIdx[chatID] = i
	}
	u := &s.users[i]
	if name != "" {
		u.Name = name
	}
	if username != "" {
		u.Username = username
	}
	u.LastActive = now
	return *u, !ok, s.persist(ctx, KeyUsers, s.users)
}

// User returns the user with chatID.
func (s *Store) User(chatID int64) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.userIdx[chatID]
	if !ok {
		return domain.User{}, false
	}
	return s.users[i], true
}

// Users returns all users in insertion order.
func (s *Store) Users() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.users)
}

// FindUsers returns up to limit users whose name, handle or id contains query, newest first.
func (s *Store) FindUsers(query string, limit int) []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []domain.User
	for i := len(s.users) - 1; i >= 0 && (limit <= 0 || len(out) < limit); i-- {
		if s.users[i].Matches(query) {
			out = append(out, s.users[i])
		}
	}
	return out
}

// AddRegistration commits a completed form. Ids are unix milliseconds, bumped to stay
// strictly increasing when two registrations land in the same millisecond.
func (s *Store) AddRegistration(ctx context.Context, chatID int64, name string, age int, phone string) (domain.Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	id := max(now.UnixMilli(), s.lastID+1)
	s.lastID = id
	r := domain.Registration{ID: id, ChatID: chatID, Name: name, Age: age, Phone: phone, CreatedAt: now}
	s.regs = append(s.regs, r)
	return r, s.persist(ctx, KeyRegistrations, s.regs)
}

// Registrations returns all registrations in insertion order.
func (s *Store) Registrations() []domain.Registration {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.regs)
}

// ClearRegistrations deletes every registration and returns how many there were.
func (s *Store) ClearRegistrations(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.regs)
	s.regs = []domain.Registration{}
	logger.Warn(ctx, "store", "registrations.cleared", slog.Int("count", n))
	return n, s.persist(ctx, KeyRegistrations, s.regs)
}

// IsBlocked reports block list membership.
func (s *Store) IsBlocked(chatID int64) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Contains(s.blocked, chatID)
}

// Block adds chatID to the block list. changed is false when it was already there.
func (s *Store) Block(ctx context.Context, chatID int64) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.blocked, chatID) {
		return false, nil
	}
	s.blocked = append(s.blocked, chatID)
	return true, s.persist(ctx, KeyBlocked, s.blocked)
}

// Unblock removes chatID from the block list. changed is false when it was not there.
func (s *Store) Unblock(ctx context.Context, chatID int64) (changed bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.Index(s.blocked, chatID)
	if i < 0 {
		return false, nil
	}
	s.blocked = slices.Delete(s.blocked, i, i+1)
	return true, s.persist(ctx, KeyBlocked, s.blocked)
}

// Blocked returns the block list in insertion order.
func (s *Store) Blocked() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.blocked)
}

// Event returns the current event settings.
func (s *Store) Event() domain.EventConfig {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.event
}

// SetEventField overwrites one text field verbatim.
func (s *Store) SetEventField(ctx context.Context, f domain.EventField, value string) (domain.EventConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := s.event.With(f, value)
	if !ok {
		return s.event, fmt.Errorf("store: unknown event field %d", f)
	}
	s.event = next
	return s.event, s.persist(ctx, KeyEvent, s.event)
}

// SetActive opens or closes registration.
func (s *Store) SetActive(ctx context.Context, active bool) (domain.EventConfig, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.event.Active = active
	return s.event, s.persist(ctx, KeyEvent, s.event)
}

// BroadcastTargets returns a point-in-time snapshot of every non-blocked user.
// Users who join after the call are not included.
func (s *Store) BroadcastTargets() []int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]int64, 0, len(s.users))
	for _, u := range s.users {
		if !slices.Contains(s.blocked, u.ChatID) {
			out = append(out, u.ChatID)
		}
	}
	return out
}

// Stats summarises the collections. Today counts registrations since local midnight.
func (s *Store) Stats() domain.Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	now := s.now()
	y, m, d := now.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	today := 0
	for _, r := range s.regs {
		if !r.CreatedAt.Before(midnight) {
			today++
		}
	}
	return domain.Stats{
		Users:         len(s.users),
		Registrations: len(s.regs),
		Blocked:       len(s.blocked),
		Today:         today,
		Active:        s.event.Active,
	}
}
