package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	coredatabase "github.com/m3rciful/eventbot/core/database"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: "123:abc"
  admin_id: 42
event:
  address: "Main st. 1"
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.CoreConfig().Telegram.AdminID != 42 || cfg.Telegram.RunMode != "longpoll" {
		t.Errorf("core = %+v", cfg.Telegram)
	}
	if cfg.Registration.MinAge != 18 || cfg.Registration.MaxAge != 100 || cfg.Registration.FollowUpDelay() != 2*time.Second {
		t.Errorf("registration = %+v", cfg.Registration)
	}
	if cfg.Broadcast.Delay() != 50*time.Millisecond || cfg.Broadcast.ProgressEvery != 10 {
		t.Errorf("broadcast = %+v", cfg.Broadcast)
	}
	if cfg.Storage.Driver != StorageFile || cfg.Storage.Dir != "data" || cfg.Storage.SQL() {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Pagination.PageSize != 10 {
		t.Errorf("page size = %d", cfg.Pagination.PageSize)
	}
	if cfg.Event.Address != "Main st. 1" || cfg.Event.Day1 == "" || !cfg.Event.Active {
		t.Errorf("event = %+v", cfg.Event)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	path := writeConfig(t, "telegram:\n  token: file-token\n")
	t.Setenv("BOT_TOKEN", "env-token")
	t.Setenv("STORAGE_DRIVER", "sqlite")
	t.Setenv("REG_MIN_AGE", "16")
	t.Setenv("REG_MAX_AGE", "99")

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Telegram.Token != "env-token" {
		t.Errorf("token = %q", cfg.Telegram.Token)
	}
	if cfg.Storage.Database.Driver != coredatabase.DriverSQLite || cfg.Storage.Database.Path != "data/eventbot.db" || !cfg.Storage.SQL() {
		t.Errorf("storage = %+v", cfg.Storage)
	}
	if cfg.Registration.MinAge != 16 || cfg.Registration.MaxAge != 99 {
		t.Errorf("registration = %+v", cfg.Registration)
	}
}

func TestNormalizeRejects(t *testing.T) {
	cases := map[string]Config{
		"bad driver":   {Storage: StorageConfig{Driver: "mongo"}},
		"age bounds":   {Registration: RegistrationConfig{MinAge: 50, MaxAge: 20}},
		"postgres":     {Storage: StorageConfig{Driver: StoragePostgres}},
		"broadcast ms": {Broadcast: BroadcastConfig{DelayMS: -1}},
	}
	for name, cfg := range cases {
		if err := Normalize(&cfg); err == nil {
			t.Errorf("%s: accepted", name)
		}
	}
}
