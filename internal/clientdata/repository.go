// Package clientdata keeps fetched upstream payloads in client_data.db.
//
// Every row is a JSON document with an expiry. Readers ask for a fresh copy
// first and may fall back to an expired one when the upstream is down.
package clientdata

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// TablePages holds rendered fund pages keyed by fund code
const TablePages = "fund_pages"

// keyColumns maps each cache table to its primary key. Table and column
// names are interpolated into SQL, so only names listed here are accepted.
var keyColumns = map[string]string{
	TablePages: "fund_code",
}

// AllTables lists every cache table
var AllTables = []string{TablePages}

// Repository reads and writes cache rows
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

func keyColumn(table string) (string, error) {
	col, ok := keyColumns[table]
	if !ok {
		return "", fmt.Errorf("invalid table name: %s", table)
	}
	return col, nil
}

func validateTable(table string) error {
	_, err := keyColumn(table)
	return err
}

// Store upserts data under key, expiring ttl from now
func (r *Repository) Store(table, key string, data any, ttl time.Duration) error {
	col, err := keyColumn(table)
	if err != nil {
		return err
	}

	doc, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode %s/%s: %w", table, key, err)
	}

	stmt := fmt.Sprintf(`INSERT INTO %[1]s (%[2]s, data, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(%[2]s) DO UPDATE SET data = excluded.data, expires_at = excluded.expires_at`, table, col)
	if _, err := r.db.Exec(stmt, key, string(doc), r.now().Add(ttl).Unix()); err != nil {
		return fmt.Errorf("failed to store %s/%s: %w", table, key, err)
	}
	return nil
}

// GetIfFresh returns the document only while it has not expired.
// A missing or expired row yields nil without an error.
func (r *Repository) GetIfFresh(table, key string) (json.RawMessage, error) {
	return r.load(table, key, true)
}

// Get returns the document whether or not it has expired, nil when missing
func (r *Repository) Get(table, key string) (json.RawMessage, error) {
	return r.load(table, key, false)
}

func (r *Repository) load(table, key string, freshOnly bool) (json.RawMessage, error) {
	col, err := keyColumn(table)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf("SELECT data, expires_at FROM %s WHERE %s = ?", table, col)
	var (
		doc     string
		expires int64
	)
	switch err := r.db.QueryRow(query, key).Scan(&doc, &expires); {
	case errors.Is(err, sql.ErrNoRows):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("failed to read %s/%s: %w", table, key, err)
	}

	if freshOnly && expires <= r.now().Unix() {
		return nil, nil
	}
	return json.RawMessage(doc), nil
}

// Delete removes one row
func (r *Repository) Delete(table, key string) error {
	col, err := keyColumn(table)
	if err != nil {
		return err
	}
	if _, err := r.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", table, col), key); err != nil {
		return fmt.Errorf("failed to delete %s/%s: %w", table, key, err)
	}
	return nil
}

// DeleteExpired removes rows that expired more than grace ago and returns
// how many were removed. A zero grace removes everything past expires_at.
func (r *Repository) DeleteExpired(table string, grace time.Duration) (int64, error) {
	if err := validateTable(table); err != nil {
		return 0, err
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE expires_at < ?", table)
	result, err := r.db.Exec(query, r.now().Add(-grace).Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired from %s: %w", table, err)
	}
	return result.RowsAffected()
}

// DeleteAllExpired runs DeleteExpired on every table
func (r *Repository) DeleteAllExpired(grace time.Duration) (map[string]int64, error) {
	results := make(map[string]int64, len(AllTables))
	for _, table := range AllTables {
		deleted, err := r.DeleteExpired(table, grace)
		if err != nil {
			return results, err
		}
		results[table] = deleted
	}
	return results, nil
}
