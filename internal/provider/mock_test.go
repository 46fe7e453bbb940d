// ABOUTME: Tests for the deterministic mock provider
// ABOUTME: Covers embedding determinism, canned chat, lifecycle, and delays
package provider

import (
	"context"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/mbrook/engram/internal/aierr"
	"github.com/mbrook/engram/internal/vecmath"
)

func readyMock(t *testing.T, cfg MockConfig) *Mock {
	t.Helper()
	m := NewMock(cfg)
	if err := m.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	return m
}

func TestMock_EmbedDeterministic(t *testing.T) {
	m := readyMock(t, MockConfig{})
	ctx := context.Background()

	v1, err := m.Embed(ctx, "same text")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	v2, _ := m.Embed(ctx, "same text")
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatal("same text must embed identically")
		}
	}

	v3, _ := m.Embed(ctx, "different text")
	same := true
	for i := range v1 {
		if v1[i] != v3[i] {
			same = false
			break
		}
	}
	if same {
		t.Error("different texts must embed differently")
	}
}

func TestMock_EmbedUnitLengthAndDimension(t *testing.T) {
	m := readyMock(t, MockConfig{Dimension: 64})
	v, err := m.Embed(context.Background(), "hello")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if len(v) != 64 {
		t.Errorf("expected configured dimension 64, got %d", len(v))
	}
	if math.Abs(vecmath.Magnitude(v)-1) > 1e-9 {
		t.Errorf("expected unit length, got %v", vecmath.Magnitude(v))
	}
}

func TestMock_DefaultDimension(t *testing.T) {
	m := readyMock(t, MockConfig{})
	v, _ := m.Embed(context.Background(), "x")
	if len(v) != DefaultMockDimension {
		t.Errorf("expected %d dimensions, got %d", DefaultMockDimension, len(v))
	}
}

func TestMock_ChatSubstringMatch(t *testing.T) {
	m := readyMock(t, MockConfig{
		Responses:       map[string]string{"weather": "It is sunny."},
		DefaultResponse: "No idea.",
	})
	ctx := context.Background()

	got, err := m.Chat(ctx, "What's the WEATHER like?", "")
	if err != nil {
		t.Fatalf("chat failed: %v", err)
	}
	if got != "It is sunny." {
		t.Errorf("expected canned reply, got %q", got)
	}

	got, _ = m.Chat(ctx, "Tell me about rocks", "")
	if got != "No idea." {
		t.Errorf("expected default fallback, got %q", got)
	}
}

func TestMock_CallsBeforeInitializeFail(t *testing.T) {
	m := NewMock(MockConfig{})
	ctx := context.Background()

	if _, err := m.Embed(ctx, "x"); aierr.CodeOf(err) != aierr.CodeInitializationFailed {
		t.Errorf("expected not-initialized error, got %v", err)
	}
	if _, err := m.Chat(ctx, "x", ""); aierr.CodeOf(err) != aierr.CodeInitializationFailed {
		t.Errorf("expected not-initialized error, got %v", err)
	}
}

func TestMock_InitializeIdempotent(t *testing.T) {
	m := NewMock(MockConfig{})
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := m.Initialize(ctx); err != nil {
			t.Fatalf("initialize call %d failed: %v", i+1, err)
		}
	}
}

func TestMock_InitializeFailureStaysUninitialized(t *testing.T) {
	m := NewMock(MockConfig{InitializeErr: errors.New("boom")})
	ctx := context.Background()
	if err := m.Initialize(ctx); aierr.CodeOf(err) != aierr.CodeInitializationFailed {
		t.Fatalf("expected initialization error, got %v", err)
	}
	if _, err := m.Embed(ctx, "x"); err == nil {
		t.Error("provider should remain uninitialized after a failed initialize")
	}
}

func TestMock_DisposeThenReinitialize(t *testing.T) {
	m := readyMock(t, MockConfig{})
	ctx := context.Background()
	if err := m.Dispose(); err != nil {
		t.Fatalf("dispose failed: %v", err)
	}
	if _, err := m.Embed(ctx, "x"); err == nil {
		t.Error("embed after dispose should fail fast")
	}
	if err := m.Initialize(ctx); err != nil {
		t.Fatalf("re-initialize after dispose failed: %v", err)
	}
	if _, err := m.Embed(ctx, "x"); err != nil {
		t.Errorf("embed after re-initialize failed: %v", err)
	}
}

func TestMock_HealthCheckCached(t *testing.T) {
	m := readyMock(t, MockConfig{})
	ctx := context.Background()

	h1 := m.HealthCheck(ctx)
	if !h1.Available || h1.Status != StateReady {
		t.Fatalf("expected ready health, got %+v", h1)
	}

	// Fault injected without invalidation is masked by the 10s cache window
	m.cfg.HealthErr = errors.New("backend down")
	h2 := m.HealthCheck(ctx)
	if !h2.Available {
		t.Error("health result should be served from cache within the window")
	}
	if !h2.LastChecked.Equal(h1.LastChecked) {
		t.Error("cached health should keep the original timestamp")
	}

	// Invalidation forces a fresh probe
	m.SetHealthError(errors.New("backend down"))
	h3 := m.HealthCheck(ctx)
	if h3.Available || h3.Status != StateError {
		t.Errorf("expected error health after invalidation, got %+v", h3)
	}
}

func TestMock_SetHealthErrorConcurrentWithHealthCheck(t *testing.T) {
	m := readyMock(t, MockConfig{})
	ctx := context.Background()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			if i%2 == 0 {
				m.SetHealthError(errors.New("backend down"))
			} else {
				m.SetHealthError(nil)
			}
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			m.HealthCheck(ctx)
		}
	}()
	wg.Wait()

	m.SetHealthError(nil)
	if h := m.HealthCheck(ctx); !h.Available {
		t.Errorf("expected ready health after clearing fault, got %+v", h)
	}
}

func TestMock_ArtificialDelay(t *testing.T) {
	m := readyMock(t, MockConfig{Delay: 30 * time.Millisecond})
	start := time.Now()
	if _, err := m.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 30*time.Millisecond {
		t.Errorf("expected at least 30ms delay, got %v", elapsed)
	}
}

func TestMock_DelayRespectsContext(t *testing.T) {
	m := readyMock(t, MockConfig{Delay: 10 * time.Second})
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := m.Embed(ctx, "x"); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected deadline error, got %v", err)
	}
}

func TestMock_SetEmbeddingOverride(t *testing.T) {
	m := readyMock(t, MockConfig{Dimension: 3})
	fixture := []float64{1, 0, 0}
	m.SetEmbedding("pinned", fixture)
	got, err := m.Embed(context.Background(), "pinned")
	if err != nil {
		t.Fatalf("embed failed: %v", err)
	}
	if got[0] != 1 || got[1] != 0 || got[2] != 0 {
		t.Errorf("expected fixture embedding, got %v", got)
	}
}

func TestMock_CallCounters(t *testing.T) {
	m := readyMock(t, MockConfig{})
	ctx := context.Background()
	_, _ = m.Embed(ctx, "a")
	_, _ = m.Embed(ctx, "b")
	_, _ = m.Chat(ctx, "hi", "")
	if m.EmbedCalls() != 2 {
		t.Errorf("expected 2 embed calls, got %d", m.EmbedCalls())
	}
	if m.ChatCalls() != 1 {
		t.Errorf("expected 1 chat call, got %d", m.ChatCalls())
	}
}
