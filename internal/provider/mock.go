// ABOUTME: Deterministic in-memory provider for automated testing
// ABOUTME: Hash-seeded unit embeddings, substring-keyed canned chat, fault injection
package provider

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"strings"
	"sync"
	"time"

	"github.com/mbrook/engram/internal/aierr"
	"github.com/mbrook/engram/internal/vecmath"
)

// DefaultMockDimension matches the reference on-device embedding model.
const DefaultMockDimension = 384

// MockConfig configures the deterministic test provider.
type MockConfig struct {
	Name      string
	Dimension int

	// Responses maps a substring of the incoming message to a canned chat
	// reply. First match in insertion-independent lowercase scan wins.
	Responses       map[string]string
	DefaultResponse string

	// Delay is an artificial latency applied to Chat and Embed, for timing
	// tests.
	Delay time.Duration

	// Fault injection. A non-nil error fails the corresponding operation.
	InitializeErr error
	ChatErr       error
	EmbedErr      error
	HealthErr     error
}

// Mock is a fully deterministic Provider: the same text always embeds to the
// same unit-length vector, and different texts embed differently.
type Mock struct {
	cfg MockConfig

	mu     sync.Mutex
	ready  bool
	canned map[string][]float64 // exact-text embedding overrides for fixtures

	chatCalls  int
	embedCalls int

	health healthCache
}

// NewMock creates a deterministic provider. Zero-value config gets sensible
// defaults: name "mock", 384 dimensions, a generic fallback reply.
func NewMock(cfg MockConfig) *Mock {
	if cfg.Name == "" {
		cfg.Name = "mock"
	}
	if cfg.Dimension <= 0 {
		cfg.Dimension = DefaultMockDimension
	}
	if cfg.DefaultResponse == "" {
		cfg.DefaultResponse = "I don't have a specific answer for that."
	}
	return &Mock{
		cfg:    cfg,
		canned: make(map[string][]float64),
	}
}

func (m *Mock) Name() string         { return m.cfg.Name }
func (m *Mock) Type() Type           { return TypeLocal }
func (m *Mock) RequiresAPIKey() bool { return false }

func (m *Mock) Capabilities() Capabilities {
	return Capabilities{Chat: true, Embeddings: true}
}

func (m *Mock) Initialize(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ready {
		return nil
	}
	if m.cfg.InitializeErr != nil {
		return aierr.InitializationFailed(m.cfg.Name, m.cfg.InitializeErr)
	}
	m.ready = true
	m.health.invalidate()
	return nil
}

func (m *Mock) Chat(ctx context.Context, message, contextText string) (string, error) {
	if err := m.gate(ctx, &m.chatCalls); err != nil {
		return "", err
	}
	if m.cfg.ChatErr != nil {
		return "", aierr.ChatFailed(m.cfg.ChatErr)
	}

	lower := strings.ToLower(message)
	for substr, reply := range m.cfg.Responses {
		if strings.Contains(lower, strings.ToLower(substr)) {
			return reply, nil
		}
	}
	return m.cfg.DefaultResponse, nil
}

func (m *Mock) Embed(ctx context.Context, text string) ([]float64, error) {
	if err := m.gate(ctx, &m.embedCalls); err != nil {
		return nil, err
	}
	if m.cfg.EmbedErr != nil {
		return nil, aierr.EmbeddingFailed(m.cfg.EmbedErr)
	}

	m.mu.Lock()
	fixture, ok := m.canned[text]
	m.mu.Unlock()
	if ok {
		out := make([]float64, len(fixture))
		copy(out, fixture)
		return out, nil
	}

	return deterministicEmbedding(text, m.cfg.Dimension), nil
}

func (m *Mock) HealthCheck(ctx context.Context) Health {
	return m.health.check(ctx, func(ctx context.Context) Health {
		now := time.Now()
		m.mu.Lock()
		healthErr := m.cfg.HealthErr
		ready := m.ready
		m.mu.Unlock()
		if healthErr != nil {
			return Health{Status: StateError, Message: healthErr.Error(), LastChecked: now}
		}
		if !ready {
			return Health{Status: StateUnavailable, Message: "not initialized", LastChecked: now}
		}
		return Health{Available: true, Status: StateReady, Message: "ok", LastChecked: now}
	})
}

func (m *Mock) Dispose() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ready = false
	m.health.invalidate()
	return nil
}

// SetEmbedding overrides the deterministic embedding for an exact text.
// Used by tests that need controlled similarity between fixtures.
func (m *Mock) SetEmbedding(text string, vector []float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.canned[text] = vector
}

// SetHealthError toggles health-check fault injection at runtime and drops
// the cached health result so the change is visible immediately.
func (m *Mock) SetHealthError(err error) {
	m.mu.Lock()
	m.cfg.HealthErr = err
	m.mu.Unlock()
	m.health.invalidate()
}

// ChatCalls returns how many chat calls reached the backend.
func (m *Mock) ChatCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.chatCalls
}

// EmbedCalls returns how many embed calls reached the backend.
func (m *Mock) EmbedCalls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.embedCalls
}

// gate enforces the initialized state, applies the artificial delay, and
// counts the call.
func (m *Mock) gate(ctx context.Context, counter *int) error {
	m.mu.Lock()
	if !m.ready {
		m.mu.Unlock()
		return notInitialized(m.cfg.Name)
	}
	*counter++
	m.mu.Unlock()

	if m.cfg.Delay > 0 {
		timer := time.NewTimer(m.cfg.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// deterministicEmbedding expands a SHA-256 of the text into a unit-length
// vector of the requested dimension.
func deterministicEmbedding(text string, dimension int) []float64 {
	vec := make([]float64, dimension)
	seed := sha256.Sum256([]byte(text))
	block := seed[:]
	for i := 0; i < dimension; i++ {
		if i%4 == 0 && i > 0 {
			next := sha256.Sum256(block)
			block = next[:]
		}
		bits := binary.BigEndian.Uint64(block[(i%4)*8 : (i%4)*8+8])
		// Map onto [-1, 1)
		vec[i] = float64(int64(bits))/float64(1<<63) + float64(i%7)*1e-3
	}
	unit, err := vecmath.Normalize(vec)
	if err != nil {
		// A hash collapsing to the zero vector is not reachable in practice
		vec[0] = 1
		return vec
	}
	return unit
}
