// Package config loads client settings from ~/.snapsync/config.toml,
// environment variables and command-line flags, in that order of priority
// (flags win).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/iudanet/snapsync/internal/client/storage"
)

// ErrInvalidConfig is returned by Validate
var ErrInvalidConfig = errors.New("invalid config")

// Environment variables that override the config file
const (
	EnvServer   = "SNAPSYNC_SERVER"
	EnvPushURL  = "SNAPSYNC_PUSH_URL"
	EnvDB       = "SNAPSYNC_DB"
	EnvStore    = "SNAPSYNC_STORE"
	EnvLogLevel = "SNAPSYNC_LOG_LEVEL"
)

const (
	dirName     = ".snapsync"
	fileName    = "config.toml"
	sessionName = "session.json"
	dbName      = "snapsync.db"
)

// Duration is a time.Duration written as "10s" in TOML.
type Duration struct {
	time.Duration
}

// MarshalText implements encoding.TextMarshaler
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler
func (d *Duration) UnmarshalText(text []byte) error {
	parsed, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = parsed
	return nil
}

// Config is the complete client configuration.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Store    StoreConfig    `toml:"store"`
	Session  SessionConfig  `toml:"session"`
	Presence PresenceConfig `toml:"presence"`
	Unread   UnreadConfig   `toml:"unread"`
	Log      LogConfig      `toml:"log"`
}

// ServerConfig describes the backend.
type ServerConfig struct {
	URL string `toml:"url"`
	// PushURL пустой: push-канал выводится из URL
	PushURL        string   `toml:"push_url"`
	RequestTimeout Duration `toml:"request_timeout"`
}

// StoreConfig selects the local key-value store.
type StoreConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path"`
}

// SessionConfig locates the session file written by login.
type SessionConfig struct {
	Path string `toml:"path"`
}

// PresenceConfig configures the heartbeat.
type PresenceConfig struct {
	HeartbeatInterval Duration `toml:"heartbeat_interval"`
}

// UnreadConfig configures the unread synchronizer.
type UnreadConfig struct {
	PollInterval Duration `toml:"poll_interval"`
	PageSize     int      `toml:"page_size"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Dir returns ~/.snapsync, or a relative .snapsync when the home
// directory is unknown.
func Dir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return dirName
	}
	return filepath.Join(home, dirName)
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(Dir(), fileName)
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := Dir()
	return &Config{
		Server: ServerConfig{
			URL:            "http://localhost:8080",
			RequestTimeout: Duration{30 * time.Second},
		},
		Store: StoreConfig{
			Backend: storage.BackendBolt,
			Path:    filepath.Join(dir, dbName),
		},
		Session: SessionConfig{
			Path: filepath.Join(dir, sessionName),
		},
		Presence: PresenceConfig{
			HeartbeatInterval: Duration{60 * time.Second},
		},
		Unread: UnreadConfig{
			PollInterval: Duration{10 * time.Second},
			PageSize:     100,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads path over the defaults without environment overrides or
// validation. Used to edit the file itself.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	return cfg, nil
}

// Save writes the config to path as TOML.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("cannot create config directory: %w", err)
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("cannot marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("cannot write config: %w", err)
	}
	return nil
}

// ApplyEnv overrides fields from environment variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvServer); ok && v != "" {
		c.Server.URL = v
	}
	if v, ok := lookup(EnvPushURL); ok && v != "" {
		c.Server.PushURL = v
	}
	if v, ok := lookup(EnvDB); ok && v != "" {
		c.Store.Path = v
	}
	if v, ok := lookup(EnvStore); ok && v != "" {
		c.Store.Backend = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
}

// Validate checks intervals, the store backend and the log level.
func (c *Config) Validate() error {
	if c.Server.URL == "" {
		return fmt.Errorf("%w: server.url is required", ErrInvalidConfig)
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"server.request_timeout", c.Server.RequestTimeout.Duration},
		{"presence.heartbeat_interval", c.Presence.HeartbeatInterval.Duration},
		{"unread.poll_interval", c.Unread.PollInterval.Duration},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %s", ErrInvalidConfig, d.name, d.value)
		}
	}

	if c.Unread.PageSize <= 0 {
		return fmt.Errorf("%w: unread.page_size must be positive, got %d", ErrInvalidConfig, c.Unread.PageSize)
	}

	switch c.Store.Backend {
	case storage.BackendBolt, storage.BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store.path is required for %s", ErrInvalidConfig, c.Store.Backend)
		}
	case storage.BackendMemory:
	default:
		return fmt.Errorf("%w: unknown store.backend %q (valid: bolt, sqlite, memory)", ErrInvalidConfig, c.Store.Backend)
	}

	if _, err := c.SlogLevel(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// SlogLevel parses Log.Level.
func (c *Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.Log.Level)); err != nil {
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return level, nil
}

// PushEndpoint returns Server.PushURL or, when empty, the push path of Server.URL.
func (c *Config) PushEndpoint() string {
	if c.Server.PushURL != "" {
		return c.Server.PushURL
	}
	return strings.TrimRight(c.Server.URL, "/") + "/api/v1/push"
}

// Set assigns a field by its dotted TOML name (e.g. "server.url").
func (c *Config) Set(key, value string) error {
	section, field, ok := strings.Cut(key, ".")
	if !ok {
		return fmt.Errorf("key must use dot notation: section.field (e.g. server.url)")
	}

	parseDuration := func(dst *Duration) error {
		return dst.UnmarshalText([]byte(value))
	}

	switch section + "." + field {
	case "server.url":
		c.Server.URL = value
	case "server.push_url":
		c.Server.PushURL = value
	case "server.request_timeout":
		return parseDuration(&c.Server.RequestTimeout)
	case "store.backend":
		c.Store.Backend = value
	case "store.path":
		c.Store.Path = value
	case "session.path":
		c.Session.Path = value
	case "presence.heartbeat_interval":
		return parseDuration(&c.Presence.HeartbeatInterval)
	case "unread.poll_interval":
		return parseDuration(&c.Unread.PollInterval)
	case "unread.page_size":
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("unread.page_size must be an integer: %w", err)
		}
		c.Unread.PageSize = n
	case "log.level":
		c.Log.Level = value
	default:
		return fmt.Errorf("unknown config key %q", key)
	}
	return nil
}
