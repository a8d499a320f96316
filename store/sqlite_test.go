package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestSQLite(t *testing.T) (*SQLite, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "db", "entries.db")
	s, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s, path
}

func TestSQLiteEmptyDatabaseLoadsEmpty(t *testing.T) {
	s, _ := openTestSQLite(t)

	entries, err := s.Load()
	require.NoError(t, err)
	assert.NotNil(t, entries)
	assert.Empty(t, entries)
}

func TestSQLiteRoundTrip(t *testing.T) {
	s, _ := openTestSQLite(t)
	want := sampleEntries("sql")

	require.NoError(t, s.Save(want))
	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// Overwrites rather than appending rows.
	require.NoError(t, s.Save(want[:1]))
	got, err = s.Load()
	require.NoError(t, err)
	assert.Equal(t, want[:1], got)
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	s, path := openTestSQLite(t)
	want := sampleEntries("reopen")
	require.NoError(t, s.Save(want))
	require.NoError(t, s.Close())

	reopened, err := OpenSQLite(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestSQLiteMalformedValueLoadsEmpty(t *testing.T) {
	s, _ := openTestSQLite(t)
	_, err := s.db.Exec(`INSERT INTO kv (key, value) VALUES (?, ?)`, EntriesKey, "{not json")
	require.NoError(t, err)

	entries, err := s.Load()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestSQLiteSaveNilStoresEmptyList(t *testing.T) {
	s, _ := openTestSQLite(t)
	require.NoError(t, s.Save(nil))

	var value string
	require.NoError(t, s.db.QueryRow(`SELECT value FROM kv WHERE key = ?`, EntriesKey).Scan(&value))
	assert.Equal(t, "[]", value)
}

func TestOpenSelectsBackend(t *testing.T) {
	dir := t.TempDir()

	js, err := Open(Options{Backend: BackendJSON, Path: filepath.Join(dir, "entries.json")})
	require.NoError(t, err)
	assert.IsType(t, &File{}, js)

	db, err := Open(Options{Backend: BackendSQLite, Path: filepath.Join(dir, "entries.db")})
	require.NoError(t, err)
	defer db.Close()
	assert.IsType(t, &SQLite{}, db)

	_, err = Open(Options{Backend: "redis"})
	assert.ErrorIs(t, err, ErrUnknownBackend)
}
