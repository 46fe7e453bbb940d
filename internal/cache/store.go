// ABOUTME: Persistent store boundary for the embedding cache
// ABOUTME: Defines the durable tier contract plus an in-memory implementation
package cache

import (
	"sort"
	"sync"
	"time"
)

// Entry is a cached embedding keyed by exact text content.
type Entry struct {
	Text      string    `json:"text"`
	Vector    []float64 `json:"vector"`
	CreatedAt time.Time `json:"created_at"`
}

// PersistentStore is the durable tier of the embedding cache. Implementations
// must be safe for concurrent use. Recent(n) returns entries ordered newest
// first; n <= 0 returns everything.
type PersistentStore interface {
	Get(text string) (*Entry, bool, error)
	Set(entry Entry) error
	Clear() error
	Count() (int, error)
	Recent(n int) ([]Entry, error)
	Close() error
}

// MemStore is an in-memory PersistentStore for tests and keyless operation.
// It survives Clear-and-refill cycles but not process restarts.
type MemStore struct {
	mu      sync.RWMutex
	entries map[string]Entry
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{entries: make(map[string]Entry)}
}

func (s *MemStore) Get(text string) (*Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[text]
	if !ok {
		return nil, false, nil
	}
	return &entry, true, nil
}

func (s *MemStore) Set(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[entry.Text] = entry
	return nil
}

func (s *MemStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]Entry)
	return nil
}

func (s *MemStore) Count() (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries), nil
}

func (s *MemStore) Recent(n int) ([]Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	all := make([]Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		all = append(all, entry)
	}
	sort.Slice(all, func(i, j int) bool {
		return all[i].CreatedAt.After(all[j].CreatedAt)
	})
	if n > 0 && len(all) > n {
		all = all[:n]
	}
	return all, nil
}

func (s *MemStore) Close() error {
	return nil
}
