// Package config handles loading and saving todos configuration.
//
// Configuration follows the XDG Base Directory specification:
//   - Config: ~/.config/todos/config.yaml
//   - Data:   ~/.local/share/todos/ (entries.json or entries.db)
//   - State:  ~/.local/state/todos/ (todos.log)
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"todos/store"
)

const appName = "todos"

var (
	ErrInvalidBackend = errors.New("invalid storage backend")
	ErrInvalidLevel   = errors.New("invalid log level")
	ErrInvalidFormat  = errors.New("invalid log format")
	ErrInvalidBackups = errors.New("backups must be >= 0")
)

// StorageConfig selects where entries are persisted.
type StorageConfig struct {
	Backend string `yaml:"backend,omitempty"` // json, sqlite
	Path    string `yaml:"path,omitempty"`    // Defaults under DataDir
	Backups int    `yaml:"backups"`           // Rotating backups for the json backend
}

// LogConfig controls the slog output. The terminal belongs to the UI, so logs
// always go to a file.
type LogConfig struct {
	Level  string `yaml:"level,omitempty"`  // debug, info, warn, error
	Format string `yaml:"format,omitempty"` // text, json
	File   string `yaml:"file,omitempty"`   // "-" disables logging
}

// UIConfig holds UI preference settings.
type UIConfig struct {
	Watch bool `yaml:"watch"` // Reload when the entries file changes on disk
	Help  bool `yaml:"help"`  // Show the key hint line
}

// Config is the top-level configuration.
type Config struct {
	Storage StorageConfig `yaml:"storage"`
	Log     LogConfig     `yaml:"log"`
	UI      UIConfig      `yaml:"ui"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Storage: StorageConfig{
			Backend: store.BackendJSON,
			Backups: store.DefaultBackups,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		UI: UIConfig{
			Watch: true,
			Help:  true,
		},
	}
}

// ConfigDir returns the XDG config directory.
func ConfigDir() string {
	return xdgDir("XDG_CONFIG_HOME", ".config")
}

// DataDir returns the XDG data directory.
func DataDir() string {
	return xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share"))
}

// StateDir returns the XDG state directory.
func StateDir() string {
	return xdgDir("XDG_STATE_HOME", filepath.Join(".local", "state"))
}

func xdgDir(env, fallback string) string {
	if dir := os.Getenv(env); dir != "" {
		return filepath.Join(dir, appName)
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, fallback, appName)
}

// ConfigPath returns the full path to config.yaml.
func ConfigPath() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "config.yaml")
}

// Load reads the config file from the XDG config directory.
// Returns DefaultConfig if the file doesn't exist.
func Load() (Config, error) {
	path := ConfigPath()
	if path == "" {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads config from a specific path.
// Returns DefaultConfig if the file doesn't exist.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Log.File = expandHome(cfg.Log.File)
	return cfg, nil
}

// SaveTo writes the config to a specific path.
func SaveTo(cfg Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// Validate rejects values the rest of the program cannot act on.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case store.BackendJSON, store.BackendSQLite:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBackend, c.Storage.Backend)
	}
	if c.Storage.Backups < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidBackups, c.Storage.Backups)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLevel, c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidFormat, c.Log.Format)
	}
	return nil
}

// StoragePath is the configured entries location, or the backend's default
// file under DataDir.
func (c Config) StoragePath() string {
	if c.Storage.Path != "" {
		return c.Storage.Path
	}
	name := "entries.json"
	if c.Storage.Backend == store.BackendSQLite {
		name = "entries.db"
	}
	return filepath.Join(DataDir(), name)
}

// LogPath is the configured log file, the default under StateDir, or "" when
// logging is disabled with "-".
func (c Config) LogPath() string {
	switch c.Log.File {
	case "-":
		return ""
	case "":
		return filepath.Join(StateDir(), appName+".log")
	default:
		return c.Log.File
	}
}

// WatchEnabled reports whether live reload applies: it needs a plain file.
func (c Config) WatchEnabled() bool {
	return c.UI.Watch && c.Storage.Backend == store.BackendJSON
}

func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
