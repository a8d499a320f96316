// Package logging builds the application's slog logger.
//
// The terminal is owned by the UI, so records go to a file. Setting
// TODOS_DEBUG to any non-empty value forces debug level:
//
//	TODOS_DEBUG=1 todos
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// DebugEnv forces debug level when set.
const DebugEnv = "TODOS_DEBUG"

// Options describes where and how to log.
type Options struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	Path   string // empty discards
}

// New opens the log file and returns a logger writing to it. The returned
// close function must be called on exit.
func New(opts Options) (*slog.Logger, func() error, error) {
	if opts.Path == "" {
		return slog.New(slog.DiscardHandler), func() error { return nil }, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(opts.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return NewWriter(f, opts), f.Close, nil
}

// NewWriter returns a logger writing to w.
func NewWriter(w io.Writer, opts Options) *slog.Logger {
	level := ParseLevel(opts.Level)
	if os.Getenv(DebugEnv) != "" {
		level = slog.LevelDebug
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var h slog.Handler
	if strings.EqualFold(opts.Format, "json") {
		h = slog.NewJSONHandler(w, handlerOpts)
	} else {
		h = slog.NewTextHandler(w, handlerOpts)
	}
	return slog.New(h)
}

// ParseLevel maps a config level name to a slog level, defaulting to info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
