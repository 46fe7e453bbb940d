// ABOUTME: Two-tier embedding cache with a bounded memory tier over a durable store
// ABOUTME: Write-through on set, memory-first on get, keyed by exact text
package cache

import (
	"fmt"
	"sync"
	"time"
)

// DefaultMemoryLimit bounds the in-process tier. The persistent tier keeps
// everything, so displacement never loses data.
const DefaultMemoryLimit = 1024

// perEntryOverhead approximates map/struct/key bookkeeping per cached entry.
const perEntryOverhead = 128

// Stats summarizes the cache contents.
type Stats struct {
	Size                int        `json:"size"`
	OldestEntry         *time.Time `json:"oldest_entry,omitempty"`
	NewestEntry         *time.Time `json:"newest_entry,omitempty"`
	MemoryUsageEstimate int64      `json:"memory_usage_estimate"`
}

// EmbeddingCache maps exact text to its embedding vector across two tiers.
// Safe for concurrent use; same-key writes are last-write-wins.
type EmbeddingCache struct {
	mu       sync.Mutex
	store    PersistentStore
	mem      map[string]Entry
	order    []string // insertion order of the memory tier, oldest first
	memLimit int
	size     int // entry count of the persistent tier
	closed   bool
}

// New creates a cache over the given persistent store. memLimit bounds the
// memory tier; values <= 0 use DefaultMemoryLimit.
func New(store PersistentStore, memLimit int) (*EmbeddingCache, error) {
	if memLimit <= 0 {
		memLimit = DefaultMemoryLimit
	}
	count, err := store.Count()
	if err != nil {
		return nil, fmt.Errorf("failed to count persisted entries: %w", err)
	}
	return &EmbeddingCache{
		store:    store,
		mem:      make(map[string]Entry),
		memLimit: memLimit,
		size:     count,
	}, nil
}

// Get returns the cached vector for text, or nil when absent. A persistent-tier
// hit populates the memory tier so the next lookup is fast.
func (c *EmbeddingCache) Get(text string) ([]float64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil, fmt.Errorf("cache is closed")
	}

	if entry, ok := c.mem[text]; ok {
		return copyVector(entry.Vector), nil
	}

	entry, ok, err := c.store.Get(text)
	if err != nil {
		return nil, fmt.Errorf("failed to read persistent tier: %w", err)
	}
	if !ok {
		return nil, nil
	}

	c.admit(*entry)
	return copyVector(entry.Vector), nil
}

// Set writes through to both tiers. Overwrites any prior value for the same
// text without changing the reported size.
func (c *EmbeddingCache) Set(text string, vector []float64) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("cache is closed")
	}

	entry := Entry{
		Text:      text,
		Vector:    copyVector(vector),
		CreatedAt: time.Now(),
	}

	_, existed, err := c.store.Get(text)
	if err != nil {
		return fmt.Errorf("failed to check persistent tier: %w", err)
	}
	if err := c.store.Set(entry); err != nil {
		return fmt.Errorf("failed to write persistent tier: %w", err)
	}

	c.admit(entry)
	if !existed {
		c.size++
	}
	return nil
}

// Has reports whether text is cached in either tier.
func (c *EmbeddingCache) Has(text string) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false, fmt.Errorf("cache is closed")
	}

	if _, ok := c.mem[text]; ok {
		return true, nil
	}
	_, ok, err := c.store.Get(text)
	if err != nil {
		return false, fmt.Errorf("failed to read persistent tier: %w", err)
	}
	return ok, nil
}

// Size returns the number of distinct texts cached.
func (c *EmbeddingCache) Size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.size
}

// Clear empties both tiers.
func (c *EmbeddingCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return fmt.Errorf("cache is closed")
	}

	if err := c.store.Clear(); err != nil {
		return fmt.Errorf("failed to clear persistent tier: %w", err)
	}
	c.mem = make(map[string]Entry)
	c.order = nil
	c.size = 0
	return nil
}

// GetStats scans the persistent tier for entry timestamps and estimates
// memory usage from entry count and vector dimension.
func (c *EmbeddingCache) GetStats() (Stats, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return Stats{}, fmt.Errorf("cache is closed")
	}

	stats := Stats{Size: c.size}
	if c.size == 0 {
		return stats, nil
	}

	entries, err := c.store.Recent(-1)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to scan persistent tier: %w", err)
	}

	var bytes int64
	for i := range entries {
		created := entries[i].CreatedAt
		if stats.OldestEntry == nil || created.Before(*stats.OldestEntry) {
			t := created
			stats.OldestEntry = &t
		}
		if stats.NewestEntry == nil || created.After(*stats.NewestEntry) {
			t := created
			stats.NewestEntry = &t
		}
		bytes += int64(len(entries[i].Vector)*8 + len(entries[i].Text) + perEntryOverhead)
	}
	stats.MemoryUsageEstimate = bytes
	return stats, nil
}

// Preload pulls the n most-recently-created persistent entries into the
// memory tier so warm lookups are fast immediately after a restart.
func (c *EmbeddingCache) Preload(n int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return 0, fmt.Errorf("cache is closed")
	}
	if n <= 0 {
		return 0, nil
	}
	if n > c.memLimit {
		n = c.memLimit
	}

	entries, err := c.store.Recent(n)
	if err != nil {
		return 0, fmt.Errorf("failed to read recent entries: %w", err)
	}

	// Recent returns newest first; admit oldest first so the newest entries
	// are the last displaced.
	for i := len(entries) - 1; i >= 0; i-- {
		c.admit(entries[i])
	}
	return len(entries), nil
}

// Close releases the persistent store. Further calls fail fast.
func (c *EmbeddingCache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	c.mem = nil
	c.order = nil
	return c.store.Close()
}

// admit inserts an entry into the bounded memory tier, displacing the oldest
// insertion when full. Caller must hold the lock.
func (c *EmbeddingCache) admit(entry Entry) {
	if _, ok := c.mem[entry.Text]; ok {
		c.mem[entry.Text] = entry
		return
	}
	for len(c.mem) >= c.memLimit && len(c.order) > 0 {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.mem, oldest)
	}
	c.mem[entry.Text] = entry
	c.order = append(c.order, entry.Text)
}

func copyVector(v []float64) []float64 {
	out := make([]float64, len(v))
	copy(out, v)
	return out
}
