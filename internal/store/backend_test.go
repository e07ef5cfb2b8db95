package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	coredatabase "github.com/m3rciful/eventbot/core/database"
	"github.com/m3rciful/eventbot/internal/domain"
)

func TestFileBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	dir := filepath.Join(t.TempDir(), "data")
	b := NewFileBackend(dir)

	var missing []int64
	if found, err := b.Load(ctx, KeyBlocked, &missing); found || err != nil {
		t.Fatalf("missing key: found=%v err=%v", found, err)
	}

	if err := b.Save(ctx, KeyBlocked, []int64{3, 1, 2}); err != nil {
		t.Fatal(err)
	}
	var got []int64
	if found, err := b.Load(ctx, KeyBlocked, &got); !found || err != nil {
		t.Fatalf("found=%v err=%v", found, err)
	}
	if len(got) != 3 || got[0] != 3 {
		t.Errorf("got %v", got)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "blocked.json" {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestFileBackendRejectsCorruptFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "event.json"), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Open(context.Background(), NewFileBackend(dir), domain.DefaultEvent()); err == nil {
		t.Fatal("corrupt collection loaded without error")
	}
}

func TestSQLBackendSQLite(t *testing.T) {
	ctx := context.Background()
	cfg := coredatabase.Config{Driver: coredatabase.DriverSQLite, Path: filepath.Join(t.TempDir(), "bot.db")}
	db, err := coredatabase.Connect(ctx, cfg, 0)
	if err != nil {
		t.Skipf("sqlite unavailable: %v", err)
	}
	defer db.Close()
	if err := coredatabase.RunMigrations(db, Migrations, MigrationsDir); err != nil {
		t.Fatalf("migrations: %v", err)
	}

	b := NewSQLBackend(db)
	s, err := Open(ctx, b, domain.DefaultEvent())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetActive(ctx, false); err != nil {
		t.Fatal(err)
	}
	if _, err := s.SetActive(ctx, true); err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddRegistration(ctx, 7, "Anna", 25, "+79991234567"); err != nil {
		t.Fatal(err)
	}

	reloaded, err := Open(ctx, b, domain.EventConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if !reloaded.Event().Active || reloaded.Event().Day1 != domain.DefaultEvent().Day1 {
		t.Errorf("event = %+v", reloaded.Event())
	}
	if len(reloaded.Registrations()) != 1 {
		t.Errorf("registrations = %+v", reloaded.Registrations())
	}
}
