// ABOUTME: Main entry point for the intelligence MCP server with stdio transport
// ABOUTME: Wires config, providers, cache, engine, monitor, and MCP tools
package main

import (
	"context"
	"log"

	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mbrook/engram/internal/cache"
	"github.com/mbrook/engram/internal/config"
	"github.com/mbrook/engram/internal/embedding"
	"github.com/mbrook/engram/internal/health"
	"github.com/mbrook/engram/internal/mcp"
	"github.com/mbrook/engram/internal/provider"
	"github.com/mbrook/engram/internal/search"
)

func main() {
	// Load .env file if it exists (for API keys)
	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found (this is okay for production): %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	ctx := context.Background()

	registry := provider.NewRegistry()
	if cfg.OpenAIKey != "" {
		registry.Register(provider.NewOpenAI(provider.OpenAIConfig{
			APIKey:     cfg.OpenAIKey,
			ChatModel:  cfg.ChatModel,
			Timeout:    cfg.Timeout,
			MaxRetries: cfg.MaxRetries,
			RetryDelay: cfg.RetryDelay,
		}))
	} else {
		log.Println("Warning: OPENAI_API_KEY not set - falling back to the deterministic local provider")
	}
	registry.Register(provider.NewMock(provider.MockConfig{
		Name:      "local",
		Dimension: cfg.VectorDimension,
	}))

	selected, err := registry.Select(ctx, cfg.PreferredProvider)
	if err != nil {
		log.Fatalf("No usable provider: %v", err)
	}

	// Durable cache tier; degrade to memory-only when charm is unreachable
	var store cache.PersistentStore
	charmStore, err := cache.NewCharmStore(&cache.CharmConfig{
		Host:     cfg.CharmHost,
		DBName:   cfg.CharmDBName,
		AutoSync: cfg.AutoSync,
	})
	if err != nil {
		log.Printf("Warning: charm store unavailable, cache will not persist: %v", err)
		store = cache.NewMemStore()
	} else {
		store = charmStore
	}

	embCache, err := cache.New(store, cfg.CacheMemoryLimit)
	if err != nil {
		log.Fatalf("Failed to create embedding cache: %v", err)
	}
	defer embCache.Close()

	modelName := cfg.EmbeddingModel
	dimension := cfg.VectorDimension
	if oa, ok := selected.(*provider.OpenAI); ok {
		dimension = oa.EmbeddingDimension()
	} else {
		modelName = selected.Name()
	}

	engine, err := embedding.NewEngine(selected, embCache, modelName, dimension)
	if err != nil {
		log.Fatalf("Failed to create embedding engine: %v", err)
	}
	if err := engine.Initialize(ctx); err != nil {
		log.Fatalf("Failed to initialize embedding engine: %v", err)
	}
	defer engine.Dispose()

	monitor := health.NewMonitor(health.MonitorOptions{
		FailureThreshold: cfg.FailureThreshold,
		HistorySize:      cfg.HistoryWindow,
		OnStatusChange: func(from, to health.Status) {
			log.Printf("Provider %s health: %s -> %s", selected.Name(), from, to)
		},
	})
	monitor.Start(selected, cfg.HealthInterval)
	defer monitor.Stop()

	detector := search.NewDetector(selected, cfg.SimilarityThreshold)

	server := mcpserver.NewMCPServer(
		"Engram Intelligence Layer",
		"0.1.0",
	)
	mcp.RegisterTools(server, engine, embCache, registry, monitor, detector)

	log.Printf("Engram MCP server starting on stdio (provider=%s, dim=%d)...", selected.Name(), dimension)
	if err := mcpserver.ServeStdio(server); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
