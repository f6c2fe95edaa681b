package cache

import "sync"

// Memory is an in-process cache with no persistence across restarts.
// Lookups and stores are O(1) average; the map is guarded by an
// RWMutex so one instance may be shared across goroutines.
type Memory struct {
	entries    map[string]*Entry
	maxEntries int
	mu         sync.RWMutex
}

// NewMemory creates an unbounded in-memory cache.
func NewMemory() *Memory {
	return NewMemoryWithLimit(0)
}

// NewMemoryWithLimit creates an in-memory cache holding at most
// maxEntries entries (0 means unbounded). When full, an arbitrary
// entry is evicted to make room.
func NewMemoryWithLimit(maxEntries int) *Memory {
	return &Memory{
		entries:    make(map[string]*Entry),
		maxEntries: maxEntries,
	}
}

// Get returns the entry for key, or a miss.
func (m *Memory) Get(key string) (*Entry, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.entries[key]
	return entry, ok, nil
}

// Set stores entry under key, replacing any prior entry.
func (m *Memory) Set(key string, entry *Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxEntries > 0 && len(m.entries) >= m.maxEntries {
		if _, exists := m.entries[key]; !exists {
			for k := range m.entries {
				delete(m.entries, k)
				break
			}
		}
	}

	m.entries[key] = entry
	return nil
}

// Len returns the number of stored entries.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Close is a no-op for the memory backend.
func (m *Memory) Close() error {
	return nil
}

var _ Store = (*Memory)(nil)
