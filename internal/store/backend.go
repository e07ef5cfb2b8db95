package store

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
)

// Backend persists one serialized value per key.
type Backend interface {
	// Load decodes the value stored under key into dst. A missing key reports found=false and no error.
	Load(ctx context.Context, key string, dst any) (found bool, err error)
	// Save replaces the value stored under key.
	Save(ctx context.Context, key string, v any) error
}

// FileBackend stores each key as <dir>/<key>.json.
type FileBackend struct {
	dir string
}

// NewFileBackend returns a backend rooted at dir. The directory is created on first save.
func NewFileBackend(dir string) *FileBackend {
	return &FileBackend{dir: dir}
}

func (b *FileBackend) path(key string) string {
	return filepath.Join(b.dir, key+".json")
}

func (b *FileBackend) Load(_ context.Context, key string, dst any) (bool, error) {
	data, err := os.ReadFile(b.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

// Save writes to a temporary file in the same directory and renames it over the target,
// so readers never observe a half-written file.
func (b *FileBackend) Save(_ context.Context, key string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := os.MkdirAll(b.dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(b.dir, key+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), b.path(key))
}

// Migrations holds the schema for SQLBackend.
//
//go:embed migrations/*.sql
var Migrations embed.FS

// MigrationsDir is the directory inside Migrations.
const MigrationsDir = "migrations"

// SQLBackend stores values as JSON text in the kv_store table.
type SQLBackend struct {
	db     *sqlx.DB
	load   string
	upsert string
}

// NewSQLBackend returns a backend over db, which must have the kv_store schema applied.
func NewSQLBackend(db *sqlx.DB) *SQLBackend {
	return &SQLBackend{
		db:   db,
		load: db.Rebind(`SELECT value FROM kv_store WHERE key = ?`),
		upsert: db.Rebind(`INSERT INTO kv_store (key, value, updated_at) VALUES (?, ?, ?)
ON CONFLICT (key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`),
	}
}

func (b *SQLBackend) Load(ctx context.Context, key string, dst any) (bool, error) {
	var raw string
	err := b.db.GetContext(ctx, &raw, b.load, key)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (b *SQLBackend) Save(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	_, err = b.db.ExecContext(ctx, b.upsert, key, string(data), time.Now().UTC())
	return err
}

// MemoryBackend keeps serialized values in process memory. Nothing survives a restart.
type MemoryBackend struct {
	mu   sync.Mutex
	data map[string][]byte
}

// NewMemoryBackend returns an empty in-memory backend.
func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{data: make(map[string][]byte)}
}

func (b *MemoryBackend) Load(_ context.Context, key string, dst any) (bool, error) {
	b.mu.Lock()
	raw, ok := b.data[key]
	b.mu.Unlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (b *MemoryBackend) Save(_ context.Context, key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	b.mu.Lock()
	b.data[key] = raw
	b.mu.Unlock()
	return nil
}
