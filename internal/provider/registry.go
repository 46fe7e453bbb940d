// ABOUTME: Provider registry with preference-ordered selection and fallback
// ABOUTME: Owns the provider instances it registers and disposes them on close
package provider

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
)

// NoProviderAvailableError is raised when no registered provider reaches the
// ready state. Its message lists every provider tried.
type NoProviderAvailableError struct {
	Tried []string
}

func (e *NoProviderAvailableError) Error() string {
	return fmt.Sprintf("no provider available, tried: %s", strings.Join(e.Tried, ", "))
}

// Registry holds providers in registration order and selects a working one
// by preference with fallback. Safe for concurrent use.
type Registry struct {
	mu        sync.Mutex
	providers []Provider
	byName    map[string]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]Provider)}
}

// Register appends a provider. Registration order is the fallback order.
// Re-registering a name replaces the prior instance.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prior, ok := r.byName[p.Name()]; ok {
		for i := range r.providers {
			if r.providers[i] == prior {
				r.providers[i] = p
				break
			}
		}
	} else {
		r.providers = append(r.providers, p)
	}
	r.byName[p.Name()] = p
}

// Get returns a registered provider by name.
func (r *Registry) Get(name string) (Provider, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byName[name]
	return p, ok
}

// Names returns provider names in registration order.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, len(r.providers))
	for i, p := range r.providers {
		names[i] = p.Name()
	}
	return names
}

// Select initializes and returns a working provider. The preferred name is
// tried first; on failure the remaining providers are tried in registration
// order, skipping the already-tried preferred one. Returns
// NoProviderAvailableError when everything fails.
func (r *Registry) Select(ctx context.Context, preferred string) (Provider, error) {
	r.mu.Lock()
	ordered := make([]Provider, len(r.providers))
	copy(ordered, r.providers)
	preferredProvider := r.byName[preferred]
	r.mu.Unlock()

	var tried []string

	if preferredProvider != nil {
		if err := preferredProvider.Initialize(ctx); err == nil {
			return preferredProvider, nil
		} else {
			log.Printf("Warning: preferred provider %s failed to initialize: %v", preferred, err)
			tried = append(tried, preferred)
		}
	} else if preferred != "" {
		log.Printf("Warning: preferred provider %s is not registered", preferred)
	}

	for _, p := range ordered {
		if p == preferredProvider {
			continue
		}
		if err := p.Initialize(ctx); err != nil {
			log.Printf("Warning: provider %s failed to initialize: %v", p.Name(), err)
			tried = append(tried, p.Name())
			continue
		}
		return p, nil
	}

	return nil, &NoProviderAvailableError{Tried: tried}
}

// CheckAvailability initializes and health-checks every registered provider,
// reporting availability per name.
func (r *Registry) CheckAvailability(ctx context.Context) map[string]bool {
	r.mu.Lock()
	ordered := make([]Provider, len(r.providers))
	copy(ordered, r.providers)
	r.mu.Unlock()

	result := make(map[string]bool, len(ordered))
	for _, p := range ordered {
		if err := p.Initialize(ctx); err != nil {
			result[p.Name()] = false
			continue
		}
		result[p.Name()] = p.HealthCheck(ctx).Available
	}
	return result
}

// Dispose releases every registered provider. The registry keeps the
// registrations; providers may be re-initialized by a later Select.
func (r *Registry) Dispose() error {
	r.mu.Lock()
	ordered := make([]Provider, len(r.providers))
	copy(ordered, r.providers)
	r.mu.Unlock()

	var firstErr error
	for _, p := range ordered {
		if err := p.Dispose(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to dispose provider %s: %w", p.Name(), err)
		}
	}
	return firstErr
}
