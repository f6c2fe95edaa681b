// Package cache persists and replays keyed response snapshots.
//
// A Store maps deterministic request keys to response entries. Absent
// keys are a normal miss, never an error. A Set fully replaces any
// prior entry for the key, and a Set followed by a Get returns an
// entry equal in status, headers and body.
package cache

import (
	"net/http"
	"time"
)

// Entry is a stored response snapshot.
type Entry struct {
	StatusCode int         `json:"status_code"`
	Header     http.Header `json:"header"`
	Body       []byte      `json:"body"`
	Encoding   string      `json:"encoding,omitempty"`
	StoredAt   time.Time   `json:"stored_at"`
}

// Store is the common interface implemented by all cache backends.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the entry for key, or (nil, false, nil) on a miss.
	Get(key string) (*Entry, bool, error)
	// Set stores entry under key, replacing any prior entry.
	Set(key string, entry *Entry) error
	// Close releases backend resources.
	Close() error
}
