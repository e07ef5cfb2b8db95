package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/m3rciful/eventbot/core/logger"
)

type memoryManager struct {
	mu       sync.RWMutex
	sessions map[int64]Session

	locksMu sync.Mutex
	locks   map[int64]*chatLock
}

type chatLock struct {
	mu   sync.Mutex
	refs int
}

// NewMemoryManager returns a Manager backed by a map guarded by a mutex.
func NewMemoryManager() Manager {
	return &memoryManager{
		sessions: make(map[int64]Session),
		locks:    make(map[int64]*chatLock),
	}
}

// Lock blocks until no other holder works on chatID. Idle chat locks are dropped on unlock.
func (m *memoryManager) Lock(chatID int64) func() {
	m.locksMu.Lock()
	l, ok := m.locks[chatID]
	if !ok {
		l = &chatLock{}
		m.locks[chatID] = l
	}
	l.refs++
	m.locksMu.Unlock()

	l.mu.Lock()
	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Unlock()
			m.locksMu.Lock()
			if l.refs--; l.refs == 0 {
				delete(m.locks, chatID)
			}
			m.locksMu.Unlock()
		})
	}
}

func (m *memoryManager) Get(chatID int64) (Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	return s, ok
}

func (m *memoryManager) Put(chatID int64, s Session) {
	if s.State == StateIdle {
		m.Clear(chatID)
		return
	}
	m.mu.Lock()
	m.sessions[chatID] = s
	m.mu.Unlock()

	if logger.ShouldSampleDebug() {
		logger.Debug(context.Background(), "fsm", "session.put",
			slog.Int64("chat_id", chatID),
			slog.String("state", s.State.String()),
		)
	}
}

func (m *memoryManager) Clear(chatID int64) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.sessions[chatID]
	delete(m.sessions, chatID)
	return ok
}

func (m *memoryManager) InProgress(chatID int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[chatID]
	return ok && s.State != StateIdle
}

func (m *memoryManager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
