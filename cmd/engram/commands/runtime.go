// ABOUTME: Shared wiring for CLI commands
// ABOUTME: Builds config, provider registry, cache, and engine for one invocation
package commands

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"
	"github.com/mbrook/engram/internal/cache"
	"github.com/mbrook/engram/internal/config"
	"github.com/mbrook/engram/internal/embedding"
	"github.com/mbrook/engram/internal/provider"
)

// runtime holds the wired components one CLI invocation needs.
type runtime struct {
	cfg      *config.Config
	registry *provider.Registry
	prov     provider.Provider
	cache    *cache.EmbeddingCache
	engine   *embedding.Engine
}

// newRuntime loads config, selects a provider, opens the cache, and
// initializes the embedding engine.
func newRuntime(ctx context.Context) (*runtime, error) {
	// Load .env for API keys
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	registry := newRegistry(cfg)
	selected, err := registry.Select(ctx, cfg.PreferredProvider)
	if err != nil {
		return nil, fmt.Errorf("selecting provider: %w", err)
	}

	embCache, err := openCache(cfg)
	if err != nil {
		return nil, err
	}

	modelName := cfg.EmbeddingModel
	dimension := cfg.VectorDimension
	if oa, ok := selected.(*provider.OpenAI); ok {
		dimension = oa.EmbeddingDimension()
	} else {
		modelName = selected.Name()
	}

	engine, err := embedding.NewEngine(selected, embCache, modelName, dimension)
	if err != nil {
		embCache.Close()
		return nil, fmt.Errorf("creating engine: %w", err)
	}
	if err := engine.Initialize(ctx); err != nil {
		embCache.Close()
		return nil, fmt.Errorf("initializing engine: %w", err)
	}

	return &runtime{
		cfg:      cfg,
		registry: registry,
		prov:     selected,
		cache:    embCache,
		engine:   engine,
	}, nil
}

// newRegistry registers the OpenAI provider when a key is configured and the
// deterministic local provider as the fallback.
func newRegistry(cfg *config.Config) *provider.Registry {
	registry := provider.NewRegistry()
	if cfg.OpenAIKey != "" {
		registry.Register(provider.NewOpenAI(provider.OpenAIConfig{
			APIKey:     cfg.OpenAIKey,
			ChatModel:  cfg.ChatModel,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}))
	}
	registry.Register(provider.NewMock(provider.MockConfig{
		Name:      "local",
		Dimension: cfg.VectorDimension,
	}))
	return registry
}

// openCache opens the two-tier embedding cache, degrading to a memory-only
// store when the charm backend is unreachable.
func openCache(cfg *config.Config) (*cache.EmbeddingCache, error) {
	var store cache.PersistentStore
	charmStore, err := cache.NewCharmStore(&cache.CharmConfig{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		if !quiet {
			log.Printf("Warning: charm store unavailable, cache will not persist: %v", err)
		}
		store = cache.NewMemStore()
	} else {
		store = charmStore
	}
	return cache.New(store, cfg.CacheMemoryLimit)
}

// Close releases the engine and cache.
func (r *runtime) Close() {
	if r.engine != nil {
		_ = r.engine.Dispose()
	}
	if r.cache != nil {
		_ = r.cache.Close()
	}
}
