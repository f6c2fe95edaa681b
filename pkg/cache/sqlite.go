package cache

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLite is an embedded relational cache backed by a single table.
// Statements run in implicit transactions, so a Set fully replaces a
// prior entry and concurrent readers across processes never observe a
// partial write. Recommended when several processes share one cache.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (or creates) the database at path and ensures the
// cache table exists.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	const schema = `CREATE TABLE IF NOT EXISTS cache (
		key        TEXT PRIMARY KEY,
		status     INTEGER NOT NULL,
		headers    TEXT NOT NULL,
		encoding   TEXT,
		body       BLOB,
		stored_at  TIMESTAMP NOT NULL
	)`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create cache table: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Get returns the entry for key, or a miss when no row exists.
func (s *SQLite) Get(key string) (*Entry, bool, error) {
	row := s.db.QueryRow(
		`SELECT status, headers, encoding, body, stored_at FROM cache WHERE key = ?`, key)

	var (
		status     int
		rawHeaders string
		encoding   sql.NullString
		body       []byte
		storedAt   time.Time
	)
	if err := row.Scan(&status, &rawHeaders, &encoding, &body, &storedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var header http.Header
	if err := json.Unmarshal([]byte(rawHeaders), &header); err != nil {
		return nil, false, err
	}

	return &Entry{
		StatusCode: status,
		Header:     header,
		Body:       body,
		Encoding:   encoding.String,
		StoredAt:   storedAt,
	}, true, nil
}

// Set stores entry under key, replacing any prior row.
func (s *SQLite) Set(key string, entry *Entry) error {
	headers, err := json.Marshal(entry.Header)
	if err != nil {
		return err
	}

	storedAt := entry.StoredAt
	if storedAt.IsZero() {
		storedAt = time.Now().UTC()
	}

	_, err = s.db.Exec(
		`INSERT OR REPLACE INTO cache (key, status, headers, encoding, body, stored_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		key, entry.StatusCode, string(headers), entry.Encoding, entry.Body, storedAt)
	return err
}

// Clear removes all rows from the cache.
func (s *SQLite) Clear() error {
	_, err := s.db.Exec(`DELETE FROM cache`)
	return err
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}

var _ Store = (*SQLite)(nil)
