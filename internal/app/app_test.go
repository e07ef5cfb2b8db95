package app

import (
	"context"
	"testing"

	coreconfig "github.com/m3rciful/eventbot/core/config"
	"github.com/m3rciful/eventbot/core/telegram/callbacks"
	"github.com/m3rciful/eventbot/internal/admin"
	"github.com/m3rciful/eventbot/internal/config"
)

func newTestApp(t *testing.T, driver string) *App {
	t.Helper()
	cfg := &config.Config{}
	cfg.Telegram.Token = "123:abc"
	cfg.Telegram.AdminID = 42
	cfg.Storage.Driver = driver
	cfg.Storage.Dir = t.TempDir()
	if err := config.Normalize(cfg); err != nil {
		t.Fatal(err)
	}
	a, err := New(context.Background(), cfg, Options{LoggerInit: func(*coreconfig.Config) error { return nil }})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestRegistryBindsEverything(t *testing.T) {
	a := newTestApp(t, config.StorageMemory)
	reg, err := a.Registry()
	if err != nil {
		t.Fatal(err)
	}

	for _, name := range []string{"/start", "/cancel", "/help"} {
		if _, cmd, ok := reg.LookupCommand(name); !ok || cmd.AdminOnly {
			t.Errorf("%s: ok=%v admin=%v", name, ok, cmd.AdminOnly)
		}
	}
	for _, name := range admin.Commands() {
		if _, cmd, ok := reg.LookupCommand(name + " 1"); !ok || !cmd.AdminOnly {
			t.Errorf("%s: ok=%v admin=%v", name, ok, cmd.AdminOnly)
		}
	}
	for _, kind := range callbacks.Kinds() {
		if _, ok := reg.Callback(kind); !ok {
			t.Errorf("callback %s unbound", kind)
		}
	}
	if visible := reg.ListCommands(true); len(visible) != 3 {
		t.Errorf("public menu = %+v", visible)
	}
}

func TestRunOptions(t *testing.T) {
	a := newTestApp(t, config.StorageFile)
	opts, err := a.TelegramRunOptions()
	if err != nil {
		t.Fatal(err)
	}
	if opts.Config.Telegram.AdminID != 42 || opts.Registry == nil {
		t.Errorf("options = %+v", opts)
	}
	// 3 public + 7 admin commands, one callback route, text and photo
	if len(opts.Routes) != 13 {
		t.Errorf("routes = %d", len(opts.Routes))
	}
	if len(opts.Middlewares) == 0 || opts.OnStart == nil || opts.OnStop == nil {
		t.Error("runtime hooks missing")
	}
}
