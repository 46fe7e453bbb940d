// ABOUTME: Embedding engine wrapping one embeddings-capable provider plus the cache
// ABOUTME: Cache-or-generate on every request, idempotent init with progress
package embedding

import (
	"context"
	"fmt"
	"sync"

	"github.com/mbrook/engram/internal/aierr"
	"github.com/mbrook/engram/internal/cache"
	"github.com/mbrook/engram/internal/provider"
)

// Options tunes a single generation call. The zero value uses the cache.
type Options struct {
	// SkipCache bypasses both the cache lookup and the write-back.
	SkipCache bool
}

// Info describes the engine's model and state.
type Info struct {
	ModelName string `json:"model_name"`
	Dimension int    `json:"dimension"`
	IsReady   bool   `json:"is_ready"`
	IsLoading bool   `json:"is_loading"`
}

// Engine turns text into embedding vectors through a single provider,
// consulting the two-tier cache before every model call.
type Engine struct {
	prov      provider.Provider
	cache     *cache.EmbeddingCache
	modelName string
	dimension int
	progress  *Progress

	initMu  sync.Mutex // serializes Initialize
	mu      sync.Mutex // guards ready/loading
	ready   bool
	loading bool
}

// NewEngine creates an engine over an embeddings-capable provider. The cache
// may be nil to disable caching entirely. dimension is the expected vector
// length; every generated vector is validated against it.
func NewEngine(p provider.Provider, c *cache.EmbeddingCache, modelName string, dimension int) (*Engine, error) {
	if p == nil {
		return nil, aierr.InvalidInput("provider is required")
	}
	if !p.Capabilities().Embeddings {
		return nil, aierr.InvalidInput(fmt.Sprintf("provider %s does not support embeddings", p.Name()))
	}
	if dimension <= 0 {
		return nil, aierr.InvalidInput("dimension must be positive")
	}
	return &Engine{
		prov:      p,
		cache:     c,
		modelName: modelName,
		dimension: dimension,
		progress:  NewProgress(),
	}, nil
}

// Initialize loads the underlying model. Idempotent: concurrent and repeated
// calls neither error nor double-load.
func (e *Engine) Initialize(ctx context.Context) error {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	e.mu.Lock()
	if e.ready {
		e.mu.Unlock()
		return nil
	}
	e.loading = true
	e.mu.Unlock()

	finish := func(ok bool) {
		e.mu.Lock()
		e.loading = false
		e.ready = ok
		e.mu.Unlock()
	}

	e.progress.Update(10, fmt.Sprintf("Loading %s", e.modelName))
	if err := e.prov.Initialize(ctx); err != nil {
		finish(false)
		e.progress.Error(err.Error())
		return aierr.ModelLoadFailed(e.modelName, err)
	}

	finish(true)
	e.progress.Complete(fmt.Sprintf("%s ready", e.modelName))
	return nil
}

// Generate embeds a single text. Empty text is an invalid-input error. On a
// cache hit the model is never invoked.
func (e *Engine) Generate(ctx context.Context, text string, opts Options) ([]float64, error) {
	if text == "" {
		return nil, aierr.InvalidInput("cannot generate embedding for empty text")
	}
	if !e.IsReady() {
		return nil, aierr.New(aierr.CodeInitializationFailed, "embedding engine is not initialized")
	}

	if !opts.SkipCache && e.cache != nil {
		cached, err := e.cache.Get(text)
		if err != nil {
			return nil, fmt.Errorf("cache lookup failed: %w", err)
		}
		if cached != nil {
			return cached, nil
		}
	}

	vector, err := e.prov.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if len(vector) != e.dimension {
		return nil, aierr.New(aierr.CodeDimensionMismatch,
			fmt.Sprintf("model returned %d dimensions, expected %d", len(vector), e.dimension))
	}

	if !opts.SkipCache && e.cache != nil {
		if err := e.cache.Set(text, vector); err != nil {
			return nil, fmt.Errorf("cache write failed: %w", err)
		}
	}
	return vector, nil
}

// GenerateBatch embeds each text with the same cache-or-generate logic as the
// single path, preserving input order. An empty input list is an error.
func (e *Engine) GenerateBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, aierr.InvalidInput("cannot generate embeddings for an empty batch")
	}

	vectors := make([][]float64, len(texts))
	for i, text := range texts {
		vector, err := e.Generate(ctx, text, Options{})
		if err != nil {
			return nil, fmt.Errorf("batch item %d: %w", i, err)
		}
		vectors[i] = vector
	}
	return vectors, nil
}

// IsReady reports whether the engine can serve requests.
func (e *Engine) IsReady() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.ready
}

// IsLoading reports whether an Initialize is in flight.
func (e *Engine) IsLoading() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.loading
}

// GetInfo returns the model name, dimension, and current state.
func (e *Engine) GetInfo() Info {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Info{
		ModelName: e.modelName,
		Dimension: e.dimension,
		IsReady:   e.ready,
		IsLoading: e.loading,
	}
}

// Progress exposes the load-progress broadcaster.
func (e *Engine) Progress() *Progress {
	return e.progress
}

// Dispose releases the model. A subsequent Initialize succeeds from a clean
// state.
func (e *Engine) Dispose() error {
	e.initMu.Lock()
	defer e.initMu.Unlock()

	e.mu.Lock()
	e.ready = false
	e.loading = false
	e.mu.Unlock()

	e.progress.Reset()
	return e.prov.Dispose()
}
