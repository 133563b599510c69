package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAppliesMigrations(t *testing.T) {
	t.Parallel()

	database, err := Open(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	for _, table := range []string{"documents", "blobs"} {
		var name string
		err := database.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&name)
		require.NoError(t, err, table)
		assert.Equal(t, table, name)
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), FileName)
	first, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Close())

	second, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, second.Close())
}

func TestTryLockIsExclusive(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	lock, err := TryLock(dir)
	require.NoError(t, err)

	_, err = TryLock(dir)
	assert.ErrorIs(t, err, ErrLocked)

	require.NoError(t, lock.Release())
	again, err := TryLock(dir)
	require.NoError(t, err)
	require.NoError(t, again.Release())
}

func TestOpenAppliesPragmas(t *testing.T) {
	t.Parallel()

	database, err := Open(filepath.Join(t.TempDir(), FileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	var mode string
	require.NoError(t, database.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, database.QueryRow(`PRAGMA foreign_keys`).Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestOpenMemory(t *testing.T) {
	t.Parallel()

	database, err := Open(Memory)
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	_, err = database.Exec(`INSERT INTO blobs (path, content_type, data, created_at) VALUES ('a', 'text/plain', x'00', CURRENT_TIMESTAMP)`)
	require.NoError(t, err)

	var n int
	require.NoError(t, database.QueryRow(`SELECT COUNT(*) FROM blobs`).Scan(&n))
	assert.Equal(t, 1, n)
}
