package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/m3rciful/eventbot/internal/domain"
)

type memBackend struct {
	mu    sync.Mutex
	data  map[string][]byte
	fail  error
	saves map[string]int
}

func newMemBackend() *memBackend {
	return &memBackend{data: map[string][]byte{}, saves: map[string]int{}}
}

func (m *memBackend) Load(_ context.Context, key string, dst any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dst)
}

func (m *memBackend) Save(_ context.Context, key string, v any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail != nil {
		return m.fail
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.saves[key]++
	return nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func openStore(t *testing.T, b Backend, opts ...Option) *Store {
	t.Helper()
	s, err := Open(context.Background(), b, domain.DefaultEvent(), opts...)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	return s
}

func TestOpenMissingKeysUseDefaults(t *testing.T) {
	s := openStore(t, newMemBackend())
	if len(s.Users()) != 0 || len(s.Registrations()) != 0 || len(s.Blocked()) != 0 {
		t.Fatal("fresh store is not empty")
	}
	if s.Event() != domain.DefaultEvent() {
		t.Errorf("Event = %+v", s.Event())
	}
}

func TestMutationsPersistAndReload(t *testing.T) {
	ctx := context.Background()
	b := newMemBackend()
	s := openStore(t, b)

	if _, created, err := s.TouchUser(ctx, 1, "Anna", "anna"); err != nil || !created {
		t.Fatalf("TouchUser: created=%v err=%v", created, err)
	}
	if _, created, _ := s.TouchUser(ctx, 1, "", "anna_new"); created {
		t.Error("second touch created a user")
	}
	if _, err := s.AddRegistration(ctx, 1, "Anna", 25, "+79991234567"); err != nil {
		t.Fatal(err)
	}
	if _, err := s.Block(ctx, 2); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetEventField(ctx, domain.FieldAddress, "пр. Мира, 1"); err != nil {
		t.Fatal(err)
	}

	for _, key := range []string{KeyUsers, KeyRegistrations, KeyBlocked, KeyEvent} {
		if b.saves[key] == 0 {
			t.Errorf("%s never saved", key)
		}
	}

	reloaded := openStore(t, b)
	u, ok := reloaded.User(1)
	if !ok || u.Name != "Anna" || u.Username != "anna_new" {
		t.Errorf("user after reload = %+v, %v", u, ok)
	}
	if regs := reloaded.Registrations(); len(regs) != 1 || regs[0].Phone != "+79991234567" {
		t.Errorf("registrations after reload = %+v", regs)
	}
	if !reloaded.IsBlocked(2) {
		t.Error("block list lost")
	}
	if reloaded.Event().Address != "пр. Мира, 1" {
		t.Errorf("event after reload = %+v", reloaded.Event())
	}
}

func TestRegistrationIDsStrictlyIncrease(t *testing.T) {
	now := time.Date(2025, 11, 1, 12, 0, 0, 0, time.UTC)
	s := openStore(t, newMemBackend(), WithClock(fixedClock(now)))
	var last int64
	for i := 0; i < 5; i++ {
		r, err := s.AddRegistration(context.Background(), 1, "A", 30, "+70000000000")
		if err != nil {
			t.Fatal(err)
		}
		if r.ID <= last {
			t.Fatalf("id %d not greater than %d", r.ID, last)
		}
		last = r.ID
	}
	if first := s.Registrations()[0].ID; first != now.UnixMilli() {
		t.Errorf("first id = %d, want %d", first, now.UnixMilli())
	}
}

func TestPersistFailureKeepsMemory(t *testing.T) {
	b := newMemBackend()
	s := openStore(t, b)
	b.fail = errors.New("disk full")

	changed, err := s.Block(context.Background(), 99)
	if !changed {
		t.Error("Block reported no change")
	}
	var pe *PersistError
	if !errors.As(err, &pe) || pe.Key != KeyBlocked || !IsPersistError(err) {
		t.Fatalf("err = %v, want *PersistError for blocked", err)
	}
	if !s.IsBlocked(99) {
		t.Error("in-memory block list rolled back")
	}
}

func TestBlockIsASet(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newMemBackend())
	if changed, _ := s.Block(ctx, 5); !changed {
		t.Error("first block unchanged")
	}
	if changed, _ := s.Block(ctx, 5); changed {
		t.Error("duplicate block changed the list")
	}
	if got := s.Blocked(); len(got) != 1 {
		t.Errorf("Blocked = %v", got)
	}
	if changed, _ := s.Unblock(ctx, 5); !changed {
		t.Error("unblock unchanged")
	}
	if changed, _ := s.Unblock(ctx, 5); changed {
		t.Error("second unblock changed the list")
	}
}

func TestBroadcastTargetsSnapshot(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newMemBackend())
	for id := int64(1); id <= 5; id++ {
		_, _, _ = s.TouchUser(ctx, id, "", "")
	}
	_, _ = s.Block(ctx, 2)
	_, _ = s.Block(ctx, 4)

	targets := s.BroadcastTargets()
	_, _, _ = s.TouchUser(ctx, 6, "late", "")

	want := []int64{1, 3, 5}
	if len(targets) != len(want) {
		t.Fatalf("targets = %v, want %v", targets, want)
	}
	for i := range want {
		if targets[i] != want[i] {
			t.Fatalf("targets = %v, want %v", targets, want)
		}
	}
}

func TestFindUsers(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newMemBackend())
	for i, name := range []string{"Anna", "Boris", "Joanna", "anya"} {
		_, _, _ = s.TouchUser(ctx, int64(100+i), name, "")
	}
	got := s.FindUsers("ANN", 10)
	if len(got) != 2 || got[0].Name != "Joanna" || got[1].Name != "Anna" {
		t.Errorf("FindUsers = %+v", got)
	}
	if got := s.FindUsers("10", 3); len(got) != 3 {
		t.Errorf("limit ignored: %d results", len(got))
	}
}

func TestClearRegistrationsAndStats(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 11, 20, 15, 0, 0, 0, time.Local)
	clock := now.Add(-48 * time.Hour)
	s := openStore(t, newMemBackend(), WithClock(func() time.Time { return clock }))
	_, _ = s.AddRegistration(ctx, 1, "old", 30, "+70000000000")
	clock = now
	_, _ = s.AddRegistration(ctx, 2, "new", 30, "+70000000001")

	st := s.Stats()
	if st.Registrations != 2 || st.Today != 1 {
		t.Errorf("Stats = %+v", st)
	}
	n, err := s.ClearRegistrations(ctx)
	if err != nil || n != 2 || len(s.Registrations()) != 0 {
		t.Errorf("ClearRegistrations = %d, %v", n, err)
	}
}

func TestConcurrentMutations(t *testing.T) {
	ctx := context.Background()
	s := openStore(t, newMemBackend())
	var wg sync.WaitGroup
	for i := int64(0); i < 40; i++ {
		wg.Add(1)
		go func(id int64) {
			defer wg.Done()
			_, _, _ = s.TouchUser(ctx, id, "u", "")
			_, _ = s.AddRegistration(ctx, id, "u", 20, "+70000000000")
			_ = s.BroadcastTargets()
		}(i)
	}
	wg.Wait()
	if len(s.Users()) != 40 || len(s.Registrations()) != 40 {
		t.Errorf("users=%d regs=%d", len(s.Users()), len(s.Registrations()))
	}
}
