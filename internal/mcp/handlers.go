// ABOUTME: MCP tool handler implementations for the intelligence server
// ABOUTME: Holds the session memory bank and delegates to engine, search, and cache
package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mbrook/engram/internal/cache"
	"github.com/mbrook/engram/internal/embedding"
	"github.com/mbrook/engram/internal/health"
	"github.com/mbrook/engram/internal/models"
	"github.com/mbrook/engram/internal/provider"
	"github.com/mbrook/engram/internal/search"
)

// Handlers contains the handler functions for all MCP tools
type Handlers struct {
	engine   *embedding.Engine
	cache    *cache.EmbeddingCache
	registry *provider.Registry
	monitor  *health.Monitor
	detector *search.Detector

	mu       *sync.Mutex
	memories []models.Memory // session memory bank, oldest first
}

// StoreMemory handles the store_memory tool
func (h *Handlers) StoreMemory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}

	id := request.GetString("id", "")
	if id == "" {
		id = uuid.New().String()
	}

	vector, err := h.engine.Generate(ctx, content, embedding.Options{})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("embedding failed: %v", err)), nil
	}

	memory := models.Memory{
		ID:        id,
		Content:   content,
		Embedding: vector,
		CreatedAt: time.Now(),
	}

	h.mu.Lock()
	h.memories = append(h.memories, memory)
	count := len(h.memories)
	h.mu.Unlock()

	return jsonResult(map[string]interface{}{
		"id":           id,
		"dimension":    len(vector),
		"memory_count": count,
	})
}

// GenerateEmbedding handles the generate_embedding tool
func (h *Handlers) GenerateEmbedding(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	text, err := request.RequireString("text")
	if err != nil {
		return mcp.NewToolResultError("text argument is required and must be a string"), nil
	}

	skipCache := request.GetBool("skip_cache", false)

	vector, err := h.engine.Generate(ctx, text, embedding.Options{SkipCache: skipCache})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("embedding failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"dimension": len(vector),
		"embedding": vector,
	})
}

// FindSimilar handles the find_similar tool
func (h *Handlers) FindSimilar(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("query argument is required and must be a string"), nil
	}

	threshold := request.GetFloat("threshold", search.DefaultThreshold)
	limit := request.GetInt("limit", search.DefaultLimit)

	queryVector, err := h.engine.Generate(ctx, query, embedding.Options{})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("query embedding failed: %v", err)), nil
	}

	h.mu.Lock()
	candidates := make([]models.Memory, len(h.memories))
	copy(candidates, h.memories)
	h.mu.Unlock()

	matches := search.FindSimilar(queryVector, candidates, search.FindOptions{
		Threshold: threshold,
		Limit:     limit,
	})

	return jsonResult(map[string]interface{}{
		"matches": matches,
		"count":   len(matches),
	})
}

// DetectContradictions handles the detect_contradictions tool
func (h *Handlers) DetectContradictions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := request.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError("content argument is required and must be a string"), nil
	}

	id := request.GetString("id", "")
	if id == "" {
		id = uuid.New().String()
	}

	vector, err := h.engine.Generate(ctx, content, embedding.Options{})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("embedding failed: %v", err)), nil
	}

	h.mu.Lock()
	existing := make([]models.Memory, len(h.memories))
	copy(existing, h.memories)
	h.mu.Unlock()

	verdicts, err := h.detector.DetectContradictions(ctx, id, content, vector, existing)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("contradiction detection failed: %v", err)), nil
	}

	return jsonResult(map[string]interface{}{
		"contradictions": verdicts,
		"count":          len(verdicts),
	})
}

// ProviderStatus handles the provider_status tool
func (h *Handlers) ProviderStatus(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	availability := h.registry.CheckAvailability(ctx)

	response := map[string]interface{}{
		"providers":    h.registry.Names(),
		"availability": availability,
		"engine":       h.engine.GetInfo(),
	}
	if h.monitor != nil {
		response["monitor"] = h.monitor.Status()
	}

	return jsonResult(response)
}

// CacheStats handles the cache_stats tool
func (h *Handlers) CacheStats(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if h.cache == nil {
		return mcp.NewToolResultError("embedding cache is not configured"), nil
	}

	stats, err := h.cache.GetStats()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read cache stats: %v", err)), nil
	}

	return jsonResult(stats)
}

// MemoryCount reports how many memories the session bank holds.
func (h *Handlers) MemoryCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.memories)
}

func jsonResult(v interface{}) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal response: %v", err)), nil
	}
	return mcp.NewToolResultText(string(payload)), nil
}
