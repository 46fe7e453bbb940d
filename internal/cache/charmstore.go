// ABOUTME: Charm KV implementation of the persistent embedding store
// ABOUTME: Survives restarts and syncs through the charm cloud when enabled
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charmbracelet/charm/kv"
)

// EmbeddingPrefix namespaces embedding entries in the shared KV database.
const EmbeddingPrefix = "embcache:"

// CharmConfig holds charm KV configuration.
type CharmConfig struct {
	Host     string
	DBName   string
	AutoSync bool
}

// DefaultCharmConfig returns the default charm store configuration.
func DefaultCharmConfig() *CharmConfig {
	host := os.Getenv("CHARM_HOST")
	if host == "" {
		host = "cloud.charm.sh"
	}
	return &CharmConfig{
		Host:     host,
		DBName:   "engram",
		AutoSync: true,
	}
}

// CharmStore persists embedding entries in a charm KV database.
type CharmStore struct {
	mu     sync.Mutex
	kv     *kv.KV
	config *CharmConfig
}

// NewCharmStore opens the charm KV database for embedding storage.
func NewCharmStore(cfg *CharmConfig) (*CharmStore, error) {
	if cfg == nil {
		cfg = DefaultCharmConfig()
	}

	// Set CHARM_HOST before opening KV
	os.Setenv("CHARM_HOST", cfg.Host)

	db, err := kv.OpenWithDefaults(cfg.DBName)
	if err != nil {
		return nil, fmt.Errorf("failed to open charm kv: %w", err)
	}

	s := &CharmStore{kv: db, config: cfg}

	// Pull remote data on startup
	if cfg.AutoSync {
		_ = db.Sync()
	}

	return s, nil
}

func entryKey(text string) []byte {
	return []byte(EmbeddingPrefix + text)
}

func (s *CharmStore) Get(text string) (*Entry, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv == nil {
		return nil, false, fmt.Errorf("charm store is closed")
	}

	data, err := s.kv.Get(entryKey(text))
	if err != nil || len(data) == 0 {
		// badger reports missing keys as an error; treat as a miss
		return nil, false, nil
	}

	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal entry: %w", err)
	}
	return &entry, true, nil
}

func (s *CharmStore) Set(entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv == nil {
		return fmt.Errorf("charm store is closed")
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal entry: %w", err)
	}
	if err := s.kv.Set(entryKey(entry.Text), data); err != nil {
		return fmt.Errorf("failed to set entry: %w", err)
	}
	if s.config.AutoSync {
		_ = s.kv.Sync()
	}
	return nil
}

func (s *CharmStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv == nil {
		return fmt.Errorf("charm store is closed")
	}

	keys, err := s.listKeys()
	if err != nil {
		return err
	}
	for _, key := range keys {
		if err := s.kv.Delete([]byte(key)); err != nil {
			return fmt.Errorf("failed to delete key: %w", err)
		}
	}
	if s.config.AutoSync {
		_ = s.kv.Sync()
	}
	return nil
}

func (s *CharmStore) Count() (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv == nil {
		return 0, fmt.Errorf("charm store is closed")
	}

	keys, err := s.listKeys()
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

func (s *CharmStore) Recent(n int) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv == nil {
		return nil, fmt.Errorf("charm store is closed")
	}

	keys, err := s.listKeys()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		data, err := s.kv.Get([]byte(key))
		if err != nil || len(data) == 0 {
			continue
		}
		var entry Entry
		if err := json.Unmarshal(data, &entry); err != nil {
			continue
		}
		entries = append(entries, entry)
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if n > 0 && len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// Close closes the KV database. Further calls fail fast.
func (s *CharmStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.kv != nil {
		err := s.kv.Close()
		s.kv = nil
		return err
	}
	return nil
}

// listKeys returns all embedding keys. Caller must hold the lock.
func (s *CharmStore) listKeys() ([]string, error) {
	keys, err := s.kv.Keys()
	if err != nil {
		return nil, fmt.Errorf("failed to list keys: %w", err)
	}
	var result []string
	for _, key := range keys {
		keyStr := string(key)
		if strings.HasPrefix(keyStr, EmbeddingPrefix) {
			result = append(result, keyStr)
		}
	}
	return result, nil
}
