package cache

import (
	"net/http"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntry() *Entry {
	return &Entry{
		StatusCode: 200,
		Header: http.Header{
			"Content-Type": []string{"text/html; charset=utf-8"},
			"Etag":         []string{`"abc123"`},
		},
		Body:     []byte("<html>\nhello\nworld</html>"),
		Encoding: "utf-8",
		StoredAt: time.Now().UTC().Truncate(time.Second),
	}
}

// roundTripStore exercises the contract every backend must satisfy:
// a Set followed by a Get returns an equal entry, an absent key is a
// miss (never an error), and a second Set fully replaces the first.
func roundTripStore(t *testing.T, store Store) {
	t.Helper()

	// absent key is a miss
	entry, ok, err := store.Get("http://example.com/missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, entry)

	// round trip
	want := sampleEntry()
	require.NoError(t, store.Set("http://example.com/page", want))

	got, ok, err := store.Get("http://example.com/page")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, want.StatusCode, got.StatusCode)
	assert.Equal(t, want.Header, got.Header)
	assert.Equal(t, want.Body, got.Body)
	assert.Equal(t, want.Encoding, got.Encoding)

	// a write fully replaces the prior entry
	replacement := &Entry{
		StatusCode: 301,
		Header:     http.Header{"Location": []string{"http://example.com/moved"}},
		Body:       []byte("moved"),
		StoredAt:   time.Now().UTC(),
	}
	require.NoError(t, store.Set("http://example.com/page", replacement))

	got, ok, err = store.Get("http://example.com/page")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 301, got.StatusCode)
	assert.Equal(t, []byte("moved"), got.Body)
	assert.Empty(t, got.Header.Get("Etag"))
}

func TestMemoryRoundTrip(t *testing.T) {
	store := NewMemory()
	defer store.Close()
	roundTripStore(t, store)
}

func TestMemoryBounded(t *testing.T) {
	store := NewMemoryWithLimit(2)

	require.NoError(t, store.Set("a", sampleEntry()))
	require.NoError(t, store.Set("b", sampleEntry()))
	require.NoError(t, store.Set("c", sampleEntry()))

	assert.Equal(t, 2, store.Len())

	// the newest write always lands
	_, ok, err := store.Get("c")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryBoundReplaceDoesNotEvict(t *testing.T) {
	store := NewMemoryWithLimit(2)

	require.NoError(t, store.Set("a", sampleEntry()))
	require.NoError(t, store.Set("b", sampleEntry()))
	require.NoError(t, store.Set("a", sampleEntry()))

	assert.Equal(t, 2, store.Len())
	_, ok, _ := store.Get("b")
	assert.True(t, ok, "replacing an existing key must not evict another")
}

func TestFileRoundTrip(t *testing.T) {
	store, err := NewFile(t.TempDir())
	require.NoError(t, err)
	defer store.Close()
	roundTripStore(t, store)
}

func TestFileFanOutLayout(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("http://example.com/page", sampleEntry()))

	matches, err := filepath.Glob(filepath.Join(dir, "??", "*"))
	require.NoError(t, err)
	assert.Len(t, matches, 1, "entry should live under a two-character subdirectory")
}

func TestFileNoPartialEntriesVisible(t *testing.T) {
	dir := t.TempDir()
	store, err := NewFile(dir)
	require.NoError(t, err)

	require.NoError(t, store.Set("k", sampleEntry()))

	// temp files from the atomic write must not linger
	matches, err := filepath.Glob(filepath.Join(dir, "??", ".tmp-*"))
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestFileClear(t *testing.T) {
	store, err := NewFile(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("a", sampleEntry()))
	require.NoError(t, store.Set("b", sampleEntry()))
	require.NoError(t, store.Clear())

	_, ok, err := store.Get("a")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSQLiteRoundTrip(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()
	roundTripStore(t, store)
}

func TestSQLitePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")

	store, err := NewSQLite(path)
	require.NoError(t, err)
	require.NoError(t, store.Set("k", sampleEntry()))
	require.NoError(t, store.Close())

	reopened, err := NewSQLite(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, ok, err := reopened.Get("k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 200, got.StatusCode)
}

func TestSQLiteClear(t *testing.T) {
	store, err := NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Set("k", sampleEntry()))
	require.NoError(t, store.Clear())

	_, ok, err := store.Get("k")
	require.NoError(t, err)
	assert.False(t, ok)
}
