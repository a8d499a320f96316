package store

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/goccy/go-json"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"todos/model"
)

// EntriesKey is the key the entry list is stored under.
const EntriesKey = "todomvc.entries"

//go:embed migrations/*.sql
var embedMigrations embed.FS

// SQLite keeps entries as one JSON value in a key-value table.
type SQLite struct {
	db   *sql.DB
	path string
	log  *slog.Logger
}

// OpenSQLite opens (creating if needed) the database at path and migrates it.
func OpenSQLite(path string, logger *slog.Logger) (*SQLite, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if err := ensureDir(path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	// One writer; the UI never issues concurrent statements.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLite{db: db, path: path, log: logger}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}
	return goose.Up(db, "migrations")
}

// Load returns the stored entries. A missing row or an undecodable value
// yields an empty list.
func (s *SQLite) Load() ([]model.Entry, error) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, EntriesKey).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return []model.Entry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read entries: %w", err)
	}

	entries, err := decodeEntries([]byte(value))
	if err != nil {
		s.log.Warn("stored entries unreadable, starting empty", "path", s.path, "error", err)
		return []model.Entry{}, nil
	}
	return entries, nil
}

func (s *SQLite) Save(entries []model.Entry) error {
	if entries == nil {
		entries = []model.Entry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO kv (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		EntriesKey, string(data),
	)
	if err != nil {
		return fmt.Errorf("write entries: %w", err)
	}
	return nil
}

func (s *SQLite) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
