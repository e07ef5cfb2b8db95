package database

import (
	"strings"
	"testing"
)

func TestDSN(t *testing.T) {
	pg := Config{Driver: DriverPostgres, Host: "db", Port: "5432", User: "bot", Password: "p@ss", Name: "events"}
	dsn, err := pg.DSN()
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(dsn, "postgres://bot:p%40ss@db:5432/events?") || !strings.Contains(dsn, "sslmode=disable") {
		t.Errorf("postgres dsn = %q", dsn)
	}

	lite := Config{Driver: DriverSQLite, Path: "data/bot.db"}
	if dsn, err = lite.DSN(); err != nil || !strings.HasPrefix(dsn, "file:data/bot.db?") {
		t.Errorf("sqlite dsn = %q, %v", dsn, err)
	}

	if _, err := (Config{Driver: DriverSQLite}).DSN(); err == nil {
		t.Error("sqlite without path accepted")
	}
	if _, err := (Config{Driver: "mysql"}).DSN(); err == nil {
		t.Error("unknown driver accepted")
	}
}
