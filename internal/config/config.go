// Package config reads runtime settings from MATERIALCHECK_-prefixed
// environment variables, optionally seeded from a .env file.
package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dshills/materialcheck/internal/fetch"
	"github.com/dshills/materialcheck/internal/schedule"
)

// Prefix is prepended to every variable name.
const Prefix = "MATERIALCHECK_"

// Config holds the process-level settings. Reminder thresholds live in the
// YAML file named by ReminderConfig.
type Config struct {
	Store            string
	SQLitePath       string
	RedisURL         string
	Schedule         string
	ReminderConfig   string
	CatalogDir       string
	FilesDir         string
	FetchTimeout     time.Duration
	FetchConcurrency int
	AgencyName       string
	PortalURL        string
}

// Load reads envFile (if present) into the environment without overriding
// variables already set, then resolves the configuration. An empty envFile
// means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}
	l := NewLoader(Prefix)
	return &Config{
		Store:            l.String("STORE", "sqlite"),
		SQLitePath:       l.String("SQLITE_PATH", "materialcheck.db"),
		RedisURL:         l.String("REDIS_URL", "redis://localhost:6379/0"),
		Schedule:         l.String("SCHEDULE", schedule.DefaultSpec),
		ReminderConfig:   l.String("REMINDER_CONFIG", ""),
		CatalogDir:       l.String("CATALOG_DIR", ""),
		FilesDir:         l.String("FILES_DIR", "."),
		FetchTimeout:     l.Duration("FETCH_TIMEOUT", fetch.DefaultTimeout),
		FetchConcurrency: l.Int("FETCH_CONCURRENCY", 4),
		AgencyName:       l.String("AGENCY_NAME", ""),
		PortalURL:        l.String("PORTAL_URL", ""),
	}, nil
}

// DSN returns the connection string for the configured store.
func (c *Config) DSN() string {
	switch c.Store {
	case "sqlite":
		return c.SQLitePath
	case "redis":
		return c.RedisURL
	}
	return ""
}

// Loader reads environment variables scoped by a common prefix.
type Loader struct {
	Prefix string
}

// NewLoader constructs a loader with the provided prefix. The prefix is
// automatically suffixed with an underscore when reading variables.
func NewLoader(prefix string) Loader {
	if prefix != "" && prefix[len(prefix)-1] != '_' {
		prefix += "_"
	}
	return Loader{Prefix: prefix}
}

// String returns the environment variable value or the provided default.
func (l Loader) String(key, def string) string {
	if val := os.Getenv(l.Prefix + key); val != "" {
		return val
	}
	return def
}

// Int returns an integer environment variable or the provided default.
func (l Loader) Int(key string, def int) int {
	if val := os.Getenv(l.Prefix + key); val != "" {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
	}
	return def
}

// Duration accepts Go duration syntax ("45s") or a plain number of seconds.
func (l Loader) Duration(key string, def time.Duration) time.Duration {
	val := os.Getenv(l.Prefix + key)
	if val == "" {
		return def
	}
	if d, err := time.ParseDuration(val); err == nil {
		return d
	}
	if secs, err := strconv.ParseFloat(val, 64); err == nil {
		return time.Duration(secs * float64(time.Second))
	}
	return def
}
