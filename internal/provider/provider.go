// ABOUTME: Provider abstraction for pluggable language-model backends
// ABOUTME: Capability-typed interface with lifecycle, health, and typed errors
package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mbrook/engram/internal/aierr"
)

// Type distinguishes on-device backends from remote APIs.
type Type string

const (
	TypeLocal Type = "local"
	TypeCloud Type = "cloud"
)

// Capabilities declares what a backend can do.
type Capabilities struct {
	Chat       bool `json:"chat"`
	Embeddings bool `json:"embeddings"`
	Streaming  bool `json:"streaming"`
	Multimodal bool `json:"multimodal"`
}

// HealthState is a provider's coarse lifecycle status.
type HealthState string

const (
	StateUnavailable  HealthState = "unavailable"
	StateInitializing HealthState = "initializing"
	StateReady        HealthState = "ready"
	StateError        HealthState = "error"
)

// Health is the result of a provider health check.
type Health struct {
	Available   bool        `json:"available"`
	Status      HealthState `json:"status"`
	Message     string      `json:"message"`
	LastChecked time.Time   `json:"last_checked"`
}

// Provider is a pluggable language-model backend. Chat and Embed fail with a
// typed not-initialized error before Initialize succeeds or after Dispose.
// Implementations must be safe for concurrent use.
type Provider interface {
	Name() string
	Type() Type
	RequiresAPIKey() bool
	Capabilities() Capabilities

	Initialize(ctx context.Context) error
	Chat(ctx context.Context, message, contextText string) (string, error)
	Embed(ctx context.Context, text string) ([]float64, error)
	HealthCheck(ctx context.Context) Health
	Dispose() error
}

// healthCacheWindow is how long a health check result is reused before the
// backend is probed again.
const healthCacheWindow = 10 * time.Second

// healthCache memoizes an expensive health probe for a short window.
type healthCache struct {
	mu      sync.Mutex
	last    Health
	checked bool
}

// check returns the cached result when fresh, otherwise runs probe and
// caches its result.
func (h *healthCache) check(ctx context.Context, probe func(ctx context.Context) Health) Health {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.checked && time.Since(h.last.LastChecked) < healthCacheWindow {
		return h.last
	}
	h.last = probe(ctx)
	h.checked = true
	return h.last
}

// invalidate drops the cached result so the next check probes again.
func (h *healthCache) invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.checked = false
}

// notInitialized is the fail-fast error for calls outside the ready state.
func notInitialized(name string) error {
	return aierr.New(aierr.CodeInitializationFailed, fmt.Sprintf("provider %s is not initialized", name))
}
