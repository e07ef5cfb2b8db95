package database

import (
	"fmt"
	"net/url"
	"strings"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Config holds SQL connection settings.
type Config struct {
	Driver         string `yaml:"driver" envconfig:"DB_DRIVER"`
	Host           string `yaml:"host" envconfig:"DB_HOST"`
	Port           string `yaml:"port" envconfig:"DB_PORT"`
	User           string `yaml:"user" envconfig:"DB_USER"`
	Password       string `yaml:"password" envconfig:"DB_PASSWORD"`
	Name           string `yaml:"name" envconfig:"DB_NAME"`
	SSLMode        string `yaml:"sslmode" envconfig:"DB_SSLMODE"`
	MaxConnections int    `yaml:"max_connections" envconfig:"DB_MAX_CONNECTIONS"`
	// Path is the database file for the sqlite3 driver.
	Path string `yaml:"path" envconfig:"DB_PATH"`
}

// DSN returns the connection string for the configured driver.
func (c Config) DSN() (string, error) {
	switch c.Driver {
	case DriverPostgres:
		u := url.URL{
			Scheme: "postgres",
			User:   url.UserPassword(c.User, c.Password),
			Host:   c.Host + ":" + c.Port,
			Path:   "/" + c.Name,
		}
		q := u.Query()
		q.Set("sslmode", c.sslMode())
		u.RawQuery = q.Encode()
		return u.String(), nil
	case DriverSQLite:
		if strings.TrimSpace(c.Path) == "" {
			return "", fmt.Errorf("database: sqlite path is required")
		}
		return "file:" + c.Path + "?_busy_timeout=5000&_journal_mode=WAL", nil
	}
	return "", fmt.Errorf("database: unsupported driver %q", c.Driver)
}

func (c Config) sslMode() string {
	if c.SSLMode == "" {
		return "disable"
	}
	return c.SSLMode
}
