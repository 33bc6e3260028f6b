package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestStore opens a migrated, empty store in a temp dir.
func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

// newSeededStore returns a store with the alphabet loaded.
func newSeededStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	_, err := s.Letters().SeedAlphabet()
	require.NoError(t, err)
	return s
}

func schemaHas(t *testing.T, s *Store, kind, name string) bool {
	t.Helper()
	var n int
	err := s.DB().QueryRow(
		"SELECT COUNT(*) FROM sqlite_master WHERE type = ? AND name = ?", kind, name,
	).Scan(&n)
	require.NoError(t, err)
	return n == 1
}

func TestNew_CreatesParentDirs(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "dir", "test.db")
	_, err := os.Stat(path)
	require.ErrorIs(t, err, os.ErrNotExist)

	s, err := New(path)
	require.NoError(t, err)
	defer s.Close()

	assert.FileExists(t, path)
	assert.Equal(t, path, s.Path())
}

func TestNew_Schema(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"letters", "users", "recognitions", "practice_progress", "bindings", "schema_migrations"} {
		assert.True(t, schemaHas(t, s, "table", table), "table %s", table)
	}
	for _, idx := range []string{"idx_recognitions_user_id", "idx_recognitions_letter_id", "idx_practice_progress_user_id"} {
		assert.True(t, schemaHas(t, s, "index", idx), "index %s", idx)
	}
}

func TestNew_Pragmas(t *testing.T) {
	s := newTestStore(t)

	var fk, busy int
	require.NoError(t, s.DB().QueryRow("PRAGMA foreign_keys").Scan(&fk))
	require.NoError(t, s.DB().QueryRow("PRAGMA busy_timeout").Scan(&busy))
	assert.Equal(t, 1, fk)
	assert.Equal(t, 5000, busy)
}

func TestNew_ReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := New(path)
	require.NoError(t, err)
	_, err = s.Letters().SeedAlphabet()
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Letters().Count()
	require.NoError(t, err)
	assert.Equal(t, 26, n)
}

func TestNew_Memory(t *testing.T) {
	s, err := New(MemoryPath)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Letters().SeedAlphabet()
	require.NoError(t, err)
	n, err := s.Letters().Count()
	require.NoError(t, err)
	assert.Equal(t, 26, n)
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = s.DB().Exec("SELECT 1")
	assert.Error(t, err, "queries should fail once closed")
}

func TestMigrations_Versioned(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := New(path)
	require.NoError(t, err)

	v, err := s.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 2, v)
	require.NoError(t, s.Close())

	// Reopening applies nothing new.
	s, err = New(path)
	require.NoError(t, err)
	defer s.Close()

	var rows int
	require.NoError(t, s.DB().QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&rows))
	assert.Equal(t, 2, rows)
}

func TestPendingMigrations(t *testing.T) {
	all, err := pendingMigrations(0)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].version)
	assert.Equal(t, "002_bindings.up.sql", all[1].name)

	rest, err := pendingMigrations(1)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.Equal(t, 2, rest[0].version)

	none, err := pendingMigrations(2)
	require.NoError(t, err)
	assert.Empty(t, none)
}
