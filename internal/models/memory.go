// ABOUTME: Data model for memories, similarity matches, and contradiction verdicts
// ABOUTME: Shared by the search pipeline, cache, MCP server, and CLI
package models

import "time"

// Memory is a piece of stored knowledge with its embedding vector.
// The embedding may be nil when generation failed; similarity search
// skips such entries rather than erroring.
type Memory struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Embedding []float64 `json:"embedding,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Match is a similarity search result. Produced fresh per query,
// never persisted.
type Match struct {
	ID         string  `json:"id"`
	Similarity float64 `json:"similarity"`
	Content    string  `json:"content"`
}

// Verdict is a contradiction judgment for a pair of memories.
// Confidence is clamped into [0,100] even when the model misbehaves.
type Verdict struct {
	Memory1ID   string `json:"memory1_id"`
	Memory2ID   string `json:"memory2_id"`
	Contradicts bool   `json:"contradicts"`
	Confidence  int    `json:"confidence"`
	Explanation string `json:"explanation"`
}
