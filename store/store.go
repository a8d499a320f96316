// Package store persists the entry sequence between sessions.
//
// Two backends exist: a JSON file written atomically with rotating backups,
// and a SQLite database holding the same JSON document in a key-value table.
// Both treat absent or malformed data as an empty list.
package store

import (
	"errors"
	"fmt"
	"log/slog"

	"todos/model"
)

const (
	BackendJSON   = "json"
	BackendSQLite = "sqlite"
)

// DefaultBackups is how many rotating backups the file backend keeps.
const DefaultBackups = 10

var ErrUnknownBackend = errors.New("unknown storage backend")

// Store loads and saves the entry sequence.
type Store interface {
	// Load returns the persisted entries, or an empty slice when nothing
	// usable is stored. Only genuine I/O failures are returned as errors.
	Load() ([]model.Entry, error)
	Save(entries []model.Entry) error
	Close() error
}

// Options selects and configures a backend.
type Options struct {
	Backend string
	Path    string
	Backups int
	Logger  *slog.Logger
}

// Open returns the backend named by opts.Backend.
func Open(opts Options) (Store, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	switch opts.Backend {
	case BackendJSON, "":
		return NewFile(opts.Path, opts.Backups, logger), nil
	case BackendSQLite:
		return OpenSQLite(opts.Path, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, opts.Backend)
	}
}
