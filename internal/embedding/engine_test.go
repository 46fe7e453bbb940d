// ABOUTME: Tests for the embedding engine over the mock provider
// ABOUTME: Covers cache hits, batches, lifecycle, and input validation
package embedding

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/mbrook/engram/internal/aierr"
	"github.com/mbrook/engram/internal/cache"
	"github.com/mbrook/engram/internal/provider"
)

func newTestEngine(t *testing.T) (*Engine, *provider.Mock, *cache.EmbeddingCache) {
	t.Helper()
	mock := provider.NewMock(provider.MockConfig{Dimension: 32})
	c, err := cache.New(cache.NewMemStore(), 0)
	if err != nil {
		t.Fatalf("cache setup failed: %v", err)
	}
	engine, err := NewEngine(mock, c, "mock-embedder", 32)
	if err != nil {
		t.Fatalf("engine setup failed: %v", err)
	}
	if err := engine.Initialize(context.Background()); err != nil {
		t.Fatalf("initialize failed: %v", err)
	}
	return engine, mock, c
}

func TestEngine_GenerateEmptyTextFails(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	_, err := engine.Generate(context.Background(), "", Options{})
	if aierr.CodeOf(err) != aierr.CodeInvalidInput {
		t.Errorf("expected invalid-input error, got %v", err)
	}
}

func TestEngine_GenerateBeforeInitializeFails(t *testing.T) {
	mock := provider.NewMock(provider.MockConfig{Dimension: 32})
	engine, _ := NewEngine(mock, nil, "mock-embedder", 32)
	_, err := engine.Generate(context.Background(), "text", Options{})
	if aierr.CodeOf(err) != aierr.CodeInitializationFailed {
		t.Errorf("expected not-initialized error, got %v", err)
	}
}

func TestEngine_CacheHitSkipsModel(t *testing.T) {
	engine, mock, _ := newTestEngine(t)
	ctx := context.Background()

	v1, err := engine.Generate(ctx, "repeated text", Options{})
	if err != nil {
		t.Fatalf("first generate failed: %v", err)
	}
	v2, err := engine.Generate(ctx, "repeated text", Options{})
	if err != nil {
		t.Fatalf("second generate failed: %v", err)
	}

	if mock.EmbedCalls() != 1 {
		t.Errorf("expected exactly 1 model call, got %d", mock.EmbedCalls())
	}
	for i := range v1 {
		if v1[i] != v2[i] {
			t.Fatal("same text must return identical vectors")
		}
	}
}

func TestEngine_SkipCacheAlwaysCallsModel(t *testing.T) {
	engine, mock, c := newTestEngine(t)
	ctx := context.Background()

	_, _ = engine.Generate(ctx, "text", Options{SkipCache: true})
	_, _ = engine.Generate(ctx, "text", Options{SkipCache: true})

	if mock.EmbedCalls() != 2 {
		t.Errorf("expected 2 model calls with cache skipped, got %d", mock.EmbedCalls())
	}
	if ok, _ := c.Has("text"); ok {
		t.Error("skip-cache generation must not write the cache")
	}
}

func TestEngine_GenerateWritesCache(t *testing.T) {
	engine, _, c := newTestEngine(t)
	_, err := engine.Generate(context.Background(), "persist me", Options{})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if ok, _ := c.Has("persist me"); !ok {
		t.Error("generated vector should be cached")
	}
}

func TestEngine_GenerateUnicodeAndLongText(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	long := strings.Repeat("a very long passage of text ", 2000)
	if _, err := engine.Generate(ctx, long, Options{}); err != nil {
		t.Errorf("long text failed: %v", err)
	}
	if _, err := engine.Generate(ctx, "日本語のテキスト 🚀 données", Options{}); err != nil {
		t.Errorf("unicode text failed: %v", err)
	}
}

func TestEngine_GenerateBatchEmptyFails(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	_, err := engine.GenerateBatch(context.Background(), nil)
	if aierr.CodeOf(err) != aierr.CodeInvalidInput {
		t.Errorf("expected invalid-input error, got %v", err)
	}
}

func TestEngine_GenerateBatchPreservesOrder(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()
	texts := []string{"first", "second", "third"}

	batch, err := engine.GenerateBatch(ctx, texts)
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if len(batch) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(batch))
	}
	for i, text := range texts {
		single, _ := engine.Generate(ctx, text, Options{})
		for j := range single {
			if batch[i][j] != single[j] {
				t.Fatalf("batch item %d does not match single generation of %q", i, text)
			}
		}
	}
}

func TestEngine_GenerateBatchUsesCache(t *testing.T) {
	engine, mock, _ := newTestEngine(t)
	ctx := context.Background()

	_, _ = engine.Generate(ctx, "warm", Options{})
	before := mock.EmbedCalls()

	_, err := engine.GenerateBatch(ctx, []string{"warm", "cold"})
	if err != nil {
		t.Fatalf("batch failed: %v", err)
	}
	if mock.EmbedCalls() != before+1 {
		t.Errorf("expected 1 new model call for the cold item, got %d", mock.EmbedCalls()-before)
	}
}

func TestEngine_InitializeIdempotentConcurrently(t *testing.T) {
	mock := provider.NewMock(provider.MockConfig{Dimension: 16})
	engine, _ := NewEngine(mock, nil, "mock-embedder", 16)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = engine.Initialize(context.Background())
		}(i)
	}
	wg.Wait()
	for i, err := range errs {
		if err != nil {
			t.Errorf("concurrent initialize %d failed: %v", i, err)
		}
	}
	if !engine.IsReady() {
		t.Error("engine should be ready after initialize")
	}
}

func TestEngine_GetInfo(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	info := engine.GetInfo()
	if info.ModelName != "mock-embedder" || info.Dimension != 32 {
		t.Errorf("unexpected info: %+v", info)
	}
	if !info.IsReady || info.IsLoading {
		t.Errorf("expected ready and not loading, got %+v", info)
	}
}

func TestEngine_DisposeThenReinitialize(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	ctx := context.Background()

	if err := engine.Dispose(); err != nil {
		t.Fatalf("dispose failed: %v", err)
	}
	if engine.IsReady() {
		t.Error("engine should not be ready after dispose")
	}
	if _, err := engine.Generate(ctx, "x", Options{}); err == nil {
		t.Error("generate after dispose should fail fast")
	}

	if err := engine.Initialize(ctx); err != nil {
		t.Fatalf("re-initialize failed: %v", err)
	}
	if _, err := engine.Generate(ctx, "x", Options{}); err != nil {
		t.Errorf("generate after re-initialize failed: %v", err)
	}
}

func TestEngine_InitializeFailureReportsProgressError(t *testing.T) {
	mock := provider.NewMock(provider.MockConfig{
		Dimension:     16,
		InitializeErr: errInit,
	})
	engine, _ := NewEngine(mock, nil, "mock-embedder", 16)

	err := engine.Initialize(context.Background())
	if aierr.CodeOf(err) != aierr.CodeModelLoadFailed {
		t.Fatalf("expected model-load error, got %v", err)
	}
	percent, message := engine.Progress().Current()
	if percent != ErrorProgress {
		t.Errorf("expected error sentinel progress, got %d", percent)
	}
	if !strings.HasPrefix(message, "Error: ") {
		t.Errorf("expected Error: prefix, got %q", message)
	}
}

func TestEngine_ProgressCompletesOnInitialize(t *testing.T) {
	engine, _, _ := newTestEngine(t)
	percent, _ := engine.Progress().Current()
	if percent != 100 {
		t.Errorf("expected 100 after successful initialize, got %d", percent)
	}
}

func TestEngine_RejectsNonEmbeddingProvider(t *testing.T) {
	chatOnly := chatOnlyProvider{}
	if _, err := NewEngine(chatOnly, nil, "x", 16); err == nil {
		t.Error("expected rejection of a provider without embeddings capability")
	}
}

var errInit = aierr.New(aierr.CodeModelLoadFailed, "weights missing")

// chatOnlyProvider declares no embedding capability.
type chatOnlyProvider struct {
	provider.Provider
}

func (chatOnlyProvider) Name() string { return "chat-only" }
func (chatOnlyProvider) Capabilities() provider.Capabilities {
	return provider.Capabilities{Chat: true}
}
