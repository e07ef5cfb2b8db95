// Package config is the event bot's configuration: the core settings plus the
// registration, broadcast, storage, event and pagination sections.
package config

import (
	"fmt"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/eventbot/core/config"
	coredatabase "github.com/m3rciful/eventbot/core/database"
	"github.com/m3rciful/eventbot/internal/domain"
)

// Storage drivers.
const (
	StorageFile     = "file"
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StoragePostgres = "postgres"
)

// RegistrationConfig bounds the registration form.
type RegistrationConfig struct {
	MinAge int `yaml:"min_age" envconfig:"REG_MIN_AGE"`
	MaxAge int `yaml:"max_age" envconfig:"REG_MAX_AGE"`
	// FollowUpDelayMS delays the "register another" prompt. Negative disables it.
	FollowUpDelayMS int `yaml:"follow_up_delay_ms" envconfig:"REG_FOLLOW_UP_DELAY_MS"`
}

// BroadcastConfig paces broadcasts.
type BroadcastConfig struct {
	DelayMS       int `yaml:"delay_ms" envconfig:"BROADCAST_DELAY_MS"`
	ProgressEvery int `yaml:"progress_every" envconfig:"BROADCAST_PROGRESS_EVERY"`
}

// StorageConfig selects where the collections live.
type StorageConfig struct {
	Driver   string              `yaml:"driver" envconfig:"STORAGE_DRIVER"`
	Dir      string              `yaml:"dir" envconfig:"STORAGE_DIR"`
	Database coredatabase.Config `yaml:"database"`
}

// PaginationConfig sizes operator lists.
type PaginationConfig struct {
	PageSize int `yaml:"page_size" envconfig:"PAGE_SIZE"`
}

// Config is the full bot configuration.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Registration RegistrationConfig `yaml:"registration"`
	Broadcast    BroadcastConfig    `yaml:"broadcast"`
	Storage      StorageConfig      `yaml:"storage"`
	// Event seeds the event settings until the operator edits and persists them.
	Event      domain.EventConfig `yaml:"event"`
	Pagination PaginationConfig   `yaml:"pagination"`
	// TextsPath optionally overrides the embedded message catalogue.
	TextsPath string `yaml:"texts_path" envconfig:"TEXTS_PATH"`
}

// CoreConfig exposes the embedded core section to the runner.
func (c *Config) CoreConfig() *coreconfig.Config { return &c.Config }

// Load reads path and the environment, then validates and fills defaults.
func Load(path string) (*Config, error) {
	cfg := Config{Event: domain.DefaultEvent()}
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := coreconfig.Normalize(&cfg.Config); err != nil {
		return nil, err
	}
	if err := Normalize(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates the bot sections and fills their defaults.
func Normalize(cfg *Config) error {
	r := &cfg.Registration
	if r.MinAge == 0 && r.MaxAge == 0 {
		r.MinAge, r.MaxAge = 18, 100
	}
	if r.MinAge < 0 || r.MaxAge < r.MinAge {
		return fmt.Errorf("registration: invalid age bounds [%d, %d]", r.MinAge, r.MaxAge)
	}
	if r.FollowUpDelayMS == 0 {
		r.FollowUpDelayMS = 2000
	}

	if cfg.Broadcast.DelayMS < 0 {
		return fmt.Errorf("broadcast.delay_ms must be >= 0")
	}
	if cfg.Broadcast.DelayMS == 0 {
		cfg.Broadcast.DelayMS = 50
	}
	if cfg.Broadcast.ProgressEvery <= 0 {
		cfg.Broadcast.ProgressEvery = 10
	}
	if cfg.Pagination.PageSize <= 0 {
		cfg.Pagination.PageSize = 10
	}

	s := &cfg.Storage
	s.Driver = strings.ToLower(strings.TrimSpace(s.Driver))
	switch s.Driver {
	case "", StorageFile:
		s.Driver = StorageFile
		if strings.TrimSpace(s.Dir) == "" {
			s.Dir = "data"
		}
	case StorageMemory:
	case StorageSQLite:
		s.Database.Driver = coredatabase.DriverSQLite
		if strings.TrimSpace(s.Database.Path) == "" {
			dir := s.Dir
			if dir == "" {
				dir = "data"
			}
			s.Database.Path = dir + "/eventbot.db"
		}
	case StoragePostgres:
		s.Database.Driver = coredatabase.DriverPostgres
		if s.Database.Host == "" || s.Database.Name == "" {
			return fmt.Errorf("storage.database.host and storage.database.name are required for postgres")
		}
		if s.Database.Port == "" {
			s.Database.Port = "5432"
		}
	default:
		return fmt.Errorf("invalid storage.driver %q; allowed: file, memory, sqlite, postgres", s.Driver)
	}
	return nil
}

// SQL reports whether storage goes through a database connection.
func (s StorageConfig) SQL() bool {
	return s.Driver == StorageSQLite || s.Driver == StoragePostgres
}

// FollowUpDelay returns the follow-up delay as a duration.
func (r RegistrationConfig) FollowUpDelay() time.Duration {
	return time.Duration(r.FollowUpDelayMS) * time.Millisecond
}

// Delay returns the minimum gap between broadcast sends.
func (b BroadcastConfig) Delay() time.Duration {
	return time.Duration(b.DelayMS) * time.Millisecond
}
