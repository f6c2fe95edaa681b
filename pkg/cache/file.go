package cache

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// File is a file-per-key cache under a root directory. Each key maps
// deterministically to a path derived from a sha256 digest, split into
// a two-character subdirectory to bound directory fan-out.
//
// Writes go to a temporary file in the same directory and are renamed
// into place, so a concurrent reader never observes a partially
// written entry.
type File struct {
	dir string
	mu  sync.Mutex
}

// fileMeta is the metadata record stored ahead of the raw body.
type fileMeta struct {
	StatusCode int                 `json:"status_code"`
	Header     map[string][]string `json:"header"`
	Encoding   string              `json:"encoding,omitempty"`
	StoredAt   time.Time           `json:"stored_at"`
}

// NewFile creates a file-backed cache rooted at dir, creating the
// directory if needed.
func NewFile(dir string) (*File, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &File{dir: dir}, nil
}

// path converts a cache key to a file path.
func (f *File) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	digest := hex.EncodeToString(sum[:])
	return filepath.Join(f.dir, digest[:2], digest[2:])
}

// Get returns the entry for key. A missing or unreadable file is a
// normal cache miss.
func (f *File) Get(key string) (*Entry, bool, error) {
	data, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, err
	}

	idx := bytes.IndexByte(data, '\n')
	if idx < 0 {
		// truncated record, treat as a miss
		return nil, false, nil
	}

	var meta fileMeta
	if err := json.Unmarshal(data[:idx], &meta); err != nil {
		return nil, false, nil
	}

	return &Entry{
		StatusCode: meta.StatusCode,
		Header:     meta.Header,
		Body:       data[idx+1:],
		Encoding:   meta.Encoding,
		StoredAt:   meta.StoredAt,
	}, true, nil
}

// Set stores entry under key atomically.
func (f *File) Set(key string, entry *Entry) error {
	meta, err := json.Marshal(fileMeta{
		StatusCode: entry.StatusCode,
		Header:     entry.Header,
		Encoding:   entry.Encoding,
		StoredAt:   entry.StoredAt,
	})
	if err != nil {
		return err
	}

	path := f.path(key)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(meta); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write([]byte{'\n'}); err != nil {
		tmp.Close()
		return err
	}
	if _, err := tmp.Write(entry.Body); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}

	return os.Rename(tmp.Name(), path)
}

// Clear removes every stored entry.
func (f *File) Clear() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return err
	}
	for _, e := range entries {
		if e.IsDir() && len(e.Name()) == 2 {
			if err := os.RemoveAll(filepath.Join(f.dir, e.Name())); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close is a no-op for the file backend.
func (f *File) Close() error {
	return nil
}

var _ Store = (*File)(nil)
