package store

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"todos/model"
)

var errNoValidBackup = errors.New("no valid backup found")

// ErrMalformed reports a file that exists but does not hold an entry list.
var ErrMalformed = errors.New("malformed entries file")

// File keeps entries in a JSON document on disk.
type File struct {
	path    string
	backups int
	log     *slog.Logger
}

// NewFile returns a file store at path keeping up to backups rotating copies.
// backups <= 0 disables the .bak files entirely.
func NewFile(path string, backups int, logger *slog.Logger) *File {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &File{path: path, backups: backups, log: logger}
}

// Path is the entries file location.
func (f *File) Path() string {
	return f.path
}

// Load reads entries from the file. A missing file yields no entries. A file
// that cannot be decoded is moved aside and also yields no entries.
func (f *File) Load() ([]model.Entry, error) {
	entries, err := readEntries(f.path)
	if err == nil {
		return entries, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return []model.Entry{}, nil
	}
	if !isDecodeError(err) {
		return nil, err
	}

	corruptPath, moveErr := moveCorruptFile(f.path)
	if moveErr != nil {
		return nil, fmt.Errorf("move corrupt file: %w", moveErr)
	}
	f.log.Warn("entries file unreadable, starting empty", "path", f.path, "moved_to", corruptPath, "error", err)
	return []model.Entry{}, nil
}

// Reload reads the file for a session that already holds entries. Unlike Load
// it never moves the file aside: undecodable content is returned as an error
// wrapping ErrMalformed so the caller can keep what it has.
func (f *File) Reload() ([]model.Entry, error) {
	entries, err := readEntries(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return []model.Entry{}, nil
	}
	return entries, err
}

// LoadWithRecovery is Load, except that a corrupt file is replaced by the
// newest backup that still decodes. The returned message describes what was
// done and is empty when the file was fine.
func (f *File) LoadWithRecovery() ([]model.Entry, string, error) {
	entries, err := readEntries(f.path)
	if err == nil {
		return entries, "", nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return []model.Entry{}, "", nil
	}
	if !isDecodeError(err) {
		return nil, "", err
	}

	corruptPath, moveErr := moveCorruptFile(f.path)
	if moveErr != nil {
		return nil, "", fmt.Errorf("move corrupt file: %w", moveErr)
	}

	recovered, backupPath, backupErr := f.latestValidBackup()
	if backupErr == nil {
		if err := writeEntries(f.path, recovered); err != nil {
			return nil, "", fmt.Errorf("restore backup: %w", err)
		}
		msg := fmt.Sprintf("Recovered entries from %s", filepath.Base(backupPath))
		if corruptPath != "" {
			msg += fmt.Sprintf(" (bad file moved to %s)", filepath.Base(corruptPath))
		}
		f.log.Warn("entries recovered from backup", "backup", backupPath, "moved_to", corruptPath)
		return recovered, msg, nil
	}
	if !errors.Is(backupErr, errNoValidBackup) {
		return nil, "", fmt.Errorf("inspect backups: %w", backupErr)
	}

	msg := "Entries file was corrupt and no backup decoded; starting empty"
	if corruptPath != "" {
		msg += fmt.Sprintf(" (bad file moved to %s)", filepath.Base(corruptPath))
	}
	f.log.Warn("no usable backup, starting empty", "moved_to", corruptPath)
	return []model.Entry{}, msg, nil
}

// Save writes entries through a temporary file and an atomic rename, after
// copying the previous file to .bak and a timestamped rotating backup.
func (f *File) Save(entries []model.Entry) error {
	if err := ensureDir(f.path); err != nil {
		return err
	}
	if f.backups > 0 {
		if err := f.backup(); err != nil {
			return err
		}
	}

	data, err := encodeEntries(entries)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(f.path), filepath.Base(f.path)+".tmp-")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmpName, f.path)
}

func (f *File) Close() error {
	return nil
}

func (f *File) backup() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}

	if err := os.WriteFile(f.path+".bak", data, 0o644); err != nil {
		return err
	}

	// Only content changes get a rotating copy; buffer-only saves rewrite the
	// same list and would otherwise push real history out.
	if newest, ok := f.newestRotatingBackup(); ok {
		if prev, err := os.ReadFile(newest); err == nil && bytes.Equal(prev, data) {
			return nil
		}
	}

	timestamp := time.Now().UTC().Format("20060102-150405.000000000")
	rotatingPath := fmt.Sprintf("%s.bak.%s", f.path, timestamp)
	if err := os.WriteFile(rotatingPath, data, 0o644); err != nil {
		return err
	}

	return f.pruneRotatingBackups()
}

func (f *File) pruneRotatingBackups() error {
	files, err := filepath.Glob(f.path + ".bak.*")
	if err != nil {
		return err
	}
	if len(files) <= f.backups {
		return nil
	}

	sort.Strings(files)
	for _, old := range files[:len(files)-f.backups] {
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
	}
	return nil
}

func (f *File) newestRotatingBackup() (string, bool) {
	files, err := filepath.Glob(f.path + ".bak.*")
	if err != nil || len(files) == 0 {
		return "", false
	}
	sort.Strings(files)
	return files[len(files)-1], true
}

func (f *File) latestValidBackup() ([]model.Entry, string, error) {
	candidates := make([]string, 0, f.backups+1)
	latest := f.path + ".bak"
	if _, err := os.Stat(latest); err == nil {
		candidates = append(candidates, latest)
	}
	rotating, err := filepath.Glob(f.path + ".bak.*")
	if err != nil {
		return nil, "", err
	}
	// Timestamped names sort chronologically; newest first.
	sort.Sort(sort.Reverse(sort.StringSlice(rotating)))
	candidates = append(candidates, rotating...)

	for _, candidate := range candidates {
		entries, err := readEntries(candidate)
		if err != nil {
			continue
		}
		return entries, candidate, nil
	}
	return nil, "", errNoValidBackup
}

// decodeError marks bytes that were read but are not an entry list.
type decodeError struct{ err error }

func (e *decodeError) Error() string { return "decode entries: " + e.err.Error() }
func (e *decodeError) Unwrap() error { return e.err }
func (e *decodeError) Is(target error) bool {
	return target == ErrMalformed
}

func isDecodeError(err error) bool {
	var de *decodeError
	return errors.As(err, &de)
}

func readEntries(path string) ([]model.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return decodeEntries(data)
}

func decodeEntries(data []byte) ([]model.Entry, error) {
	if strings.TrimSpace(string(data)) == "" {
		return nil, &decodeError{err: errors.New("empty document")}
	}
	var entries []model.Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, &decodeError{err: err}
	}
	if entries == nil {
		entries = []model.Entry{}
	}
	return entries, nil
}

func encodeEntries(entries []model.Entry) ([]byte, error) {
	if entries == nil {
		entries = []model.Entry{}
	}
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func writeEntries(path string, entries []model.Entry) error {
	if err := ensureDir(path); err != nil {
		return err
	}
	data, err := encodeEntries(entries)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

func moveCorruptFile(path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	timestamp := time.Now().UTC().Format("20060102-150405")
	corruptPath := filepath.Join(filepath.Dir(path), fmt.Sprintf("%s.corrupt-%s%s", name, timestamp, ext))
	if err := os.Rename(path, corruptPath); err != nil {
		return "", err
	}
	return corruptPath, nil
}
