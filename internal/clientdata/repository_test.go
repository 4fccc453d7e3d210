package clientdata

import (
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testSchema mirrors client_data_schema.sql
const testSchema = `
CREATE TABLE fund_pages (fund_code TEXT PRIMARY KEY, data TEXT NOT NULL, expires_at INTEGER NOT NULL);
CREATE INDEX idx_fund_pages_expires ON fund_pages(expires_at);
`

func setupTestDB(t *testing.T) *sql.DB {
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1) // each :memory: connection is its own database

	_, err = db.Exec(testSchema)
	require.NoError(t, err)

	t.Cleanup(func() { db.Close() })
	return db
}

// newClockedRepo returns a repository whose clock the test controls
func newClockedRepo(t *testing.T) (*Repository, *time.Time) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)
	repo := NewRepository(setupTestDB(t))
	repo.now = func() time.Time { return now }
	return repo, &now
}

type page struct {
	HTML string `json:"html"`
}

func TestStoreAndGetIfFresh(t *testing.T) {
	repo, now := newClockedRepo(t)

	require.NoError(t, repo.Store(TablePages, "AAK", page{HTML: "<html>AAK</html>"}, time.Hour))

	data, err := repo.GetIfFresh(TablePages, "AAK")
	require.NoError(t, err)
	require.NotNil(t, data)

	var got page
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "<html>AAK</html>", got.HTML)

	*now = now.Add(2 * time.Hour)

	data, err = repo.GetIfFresh(TablePages, "AAK")
	require.NoError(t, err)
	assert.Nil(t, data, "expired entries are not fresh")

	stale, err := repo.Get(TablePages, "AAK")
	require.NoError(t, err)
	assert.NotNil(t, stale, "Get ignores expiry")
}

func TestStore_Upserts(t *testing.T) {
	repo, _ := newClockedRepo(t)

	require.NoError(t, repo.Store(TablePages, "AAK", page{HTML: "old"}, time.Hour))
	require.NoError(t, repo.Store(TablePages, "AAK", page{HTML: "new"}, time.Hour))

	data, err := repo.Get(TablePages, "AAK")
	require.NoError(t, err)
	var got page
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, "new", got.HTML)
}

func TestGet_Missing(t *testing.T) {
	repo, _ := newClockedRepo(t)

	data, err := repo.Get(TablePages, "NONE")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestInvalidTable(t *testing.T) {
	repo, _ := newClockedRepo(t)

	tests := []struct {
		name string
		call func() error
	}{
		{"store", func() error { return repo.Store("pages; DROP TABLE x", "k", 1, time.Hour) }},
		{"get", func() error { _, err := repo.Get("unknown", "k"); return err }},
		{"fresh", func() error { _, err := repo.GetIfFresh("unknown", "k"); return err }},
		{"delete", func() error { return repo.Delete("unknown", "k") }},
		{"expired", func() error { _, err := repo.DeleteExpired("unknown", 0); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorContains(t, tt.call(), "invalid table name")
		})
	}
}

func TestDelete(t *testing.T) {
	repo, _ := newClockedRepo(t)
	require.NoError(t, repo.Store(TablePages, "AAK", page{}, time.Hour))

	require.NoError(t, repo.Delete(TablePages, "AAK"))

	data, err := repo.Get(TablePages, "AAK")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestDeleteAllExpired(t *testing.T) {
	repo, now := newClockedRepo(t)

	require.NoError(t, repo.Store(TablePages, "AAK", page{}, time.Hour))
	require.NoError(t, repo.Store(TablePages, "CPU", page{}, 48*time.Hour))
	*now = now.Add(3 * time.Hour)

	results, err := repo.DeleteAllExpired(0)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{TablePages: 1}, results)

	data, err := repo.Get(TablePages, "CPU")
	require.NoError(t, err)
	assert.NotNil(t, data)
}

func TestDeleteExpired_Grace(t *testing.T) {
	repo, now := newClockedRepo(t)
	require.NoError(t, repo.Store(TablePages, "AAK", page{}, time.Hour))
	*now = now.Add(3 * time.Hour)

	n, err := repo.DeleteExpired(TablePages, 24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n, "expired two hours ago, inside the grace period")

	*now = now.Add(24 * time.Hour)
	n, err = repo.DeleteExpired(TablePages, 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestCleanupJob(t *testing.T) {
	repo, now := newClockedRepo(t)
	require.NoError(t, repo.Store(TablePages, "AAK", page{}, time.Minute))
	require.NoError(t, repo.Store(TablePages, "CPU", page{}, time.Minute))

	job := NewCleanupJob(repo, 0, zerolog.Nop())
	assert.Equal(t, "page_cache_cleanup", job.Name())

	// Recently expired pages survive as stale fallbacks
	*now = now.Add(time.Hour)
	require.NoError(t, job.Run())
	data, err := repo.Get(TablePages, "AAK")
	require.NoError(t, err)
	assert.NotNil(t, data)

	*now = now.Add(StaleRetention)
	require.NoError(t, job.Run())
	data, err = repo.Get(TablePages, "AAK")
	require.NoError(t, err)
	assert.Nil(t, data)
}
