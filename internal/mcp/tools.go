// ABOUTME: MCP tool definitions and registration for the intelligence server
// ABOUTME: Defines JSON schemas for all 6 tools and binds them to handlers
package mcp

import (
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/mbrook/engram/internal/cache"
	"github.com/mbrook/engram/internal/embedding"
	"github.com/mbrook/engram/internal/health"
	"github.com/mbrook/engram/internal/provider"
	"github.com/mbrook/engram/internal/search"
)

// RegisterTools registers all MCP tools with the server
func RegisterTools(server *mcpserver.MCPServer, engine *embedding.Engine, embCache *cache.EmbeddingCache, registry *provider.Registry, monitor *health.Monitor, detector *search.Detector) *Handlers {
	handlers := &Handlers{
		engine:   engine,
		cache:    embCache,
		registry: registry,
		monitor:  monitor,
		detector: detector,
		mu:       &sync.Mutex{},
	}

	// 1. store_memory - Add a memory so later searches can find it
	server.AddTool(mcp.Tool{
		Name:        "store_memory",
		Description: "Store a memory with its embedding. The content is embedded immediately so find_similar and detect_contradictions can compare against it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "Memory content to store",
				},
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Optional memory ID. A UUID is generated when omitted.",
				},
			},
			Required: []string{"content"},
		},
	}, handlers.StoreMemory)

	// 2. generate_embedding - Embed a single text
	server.AddTool(mcp.Tool{
		Name:        "generate_embedding",
		Description: "Generate an embedding vector for a text. Cached results are reused unless skip_cache is set.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"text": map[string]interface{}{
					"type":        "string",
					"description": "Text to embed",
				},
				"skip_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "Bypass the embedding cache for this call (default: false)",
					"default":     false,
				},
			},
			Required: []string{"text"},
		},
	}, handlers.GenerateEmbedding)

	// 3. find_similar - Semantic search over stored memories
	server.AddTool(mcp.Tool{
		Name:        "find_similar",
		Description: "Find stored memories semantically similar to a query, ranked by cosine similarity.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query",
				},
				"threshold": map[string]interface{}{
					"type":        "number",
					"description": "Minimum cosine similarity (default: 0.7)",
					"default":     0.7,
				},
				"limit": map[string]interface{}{
					"type":        "number",
					"description": "Maximum number of results (default: 10)",
					"default":     10,
				},
			},
			Required: []string{"query"},
		},
	}, handlers.FindSimilar)

	// 4. detect_contradictions - Check new content against stored memories
	server.AddTool(mcp.Tool{
		Name:        "detect_contradictions",
		Description: "Check whether new content contradicts any stored memory. Only semantically similar memories are sent to the model for judgment.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"content": map[string]interface{}{
					"type":        "string",
					"description": "New content to check",
				},
				"id": map[string]interface{}{
					"type":        "string",
					"description": "Optional ID of the new content, excluded from comparison",
				},
			},
			Required: []string{"content"},
		},
	}, handlers.DetectContradictions)

	// 5. provider_status - Report provider availability and health
	server.AddTool(mcp.Tool{
		Name:        "provider_status",
		Description: "Report registered providers, their availability, the health monitor snapshot, and the embedding engine state.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.ProviderStatus)

	// 6. cache_stats - Embedding cache statistics
	server.AddTool(mcp.Tool{
		Name:        "cache_stats",
		Description: "Report embedding cache statistics: entry count, oldest and newest entries, and estimated memory usage.",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, handlers.CacheStats)

	return handlers
}
