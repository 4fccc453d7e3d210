package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_CreatesDirectoryAndMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snapshots.db")

	db, err := New(Config{Path: path, Name: "snapshots"})
	require.NoError(t, err)
	defer db.Close()

	assert.Equal(t, path, db.Path())
	assert.Equal(t, "snapshots", db.Name())

	require.NoError(t, db.Migrate())
	// idempotent
	require.NoError(t, db.Migrate())

	var count int
	err = db.Conn().QueryRow(`SELECT COUNT(*) FROM snapshots`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	assert.NoError(t, db.HealthCheck(context.Background()))
}

func TestMigrate_UnknownName(t *testing.T) {
	db, err := New(Config{Path: "file::memory:?cache=shared", Profile: ProfileCache, Name: "nope"})
	require.NoError(t, err)
	defer db.Close()

	assert.Error(t, db.Migrate())
}

func TestWithTransaction(t *testing.T) {
	db, err := New(Config{Path: "file::memory:", Profile: ProfileCache, Name: "snapshots"})
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Conn().Exec(`CREATE TABLE t (v INTEGER)`)
	require.NoError(t, err)

	t.Run("commit", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, err := tx.Exec(`INSERT INTO t (v) VALUES (1)`)
			return err
		})
		require.NoError(t, err)
	})

	t.Run("rollback on error", func(t *testing.T) {
		boom := errors.New("boom")
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, _ = tx.Exec(`INSERT INTO t (v) VALUES (2)`)
			return boom
		})
		assert.ErrorIs(t, err, boom)
	})

	t.Run("rollback on panic", func(t *testing.T) {
		err := WithTransaction(db.Conn(), func(tx *sql.Tx) error {
			_, _ = tx.Exec(`INSERT INTO t (v) VALUES (3)`)
			panic("kaboom")
		})
		assert.ErrorContains(t, err, "kaboom")
	})

	var total int
	require.NoError(t, db.Conn().QueryRow(`SELECT COALESCE(SUM(v), 0) FROM t`).Scan(&total))
	assert.Equal(t, 1, total)

	assert.Error(t, WithTransaction(nil, func(*sql.Tx) error { return nil }))
}

func TestBuildConnectionString(t *testing.T) {
	assert.Contains(t, buildConnectionString("/tmp/a.db", ProfileStandard), "/tmp/a.db?_pragma=journal_mode(WAL)")
	assert.Contains(t, buildConnectionString("/tmp/a.db", ProfileStandard), "synchronous(NORMAL)")
	assert.Contains(t, buildConnectionString("file::memory:?cache=shared", ProfileCache), "cache=shared&_pragma=")
	assert.Contains(t, buildConnectionString("file::memory:", ProfileCache), "synchronous(OFF)")
}

func TestMaintenanceHelpers(t *testing.T) {
	dir := t.TempDir()
	db, err := New(Config{Path: filepath.Join(dir, "client_data.db"), Name: "client_data"})
	require.NoError(t, err)
	defer db.Close()
	require.NoError(t, db.Migrate())

	ctx := context.Background()
	_, err = db.Conn().Exec(`INSERT INTO fund_pages (fund_code, data, expires_at) VALUES ('AAK', '{}', 0)`)
	require.NoError(t, err)

	require.NoError(t, db.Checkpoint(ctx))

	size, err := db.SizeBytes(ctx)
	require.NoError(t, err)
	assert.Positive(t, size)

	target := filepath.Join(dir, "copy.db")
	require.NoError(t, db.BackupTo(ctx, target))
	assert.FileExists(t, target)
	assert.Error(t, db.BackupTo(ctx, target), "existing target")

	cp, err := New(Config{Path: target, Name: "client_data"})
	require.NoError(t, err)
	defer cp.Close()
	var n int
	require.NoError(t, cp.Conn().QueryRow(`SELECT COUNT(*) FROM fund_pages`).Scan(&n))
	assert.Equal(t, 1, n)
}
