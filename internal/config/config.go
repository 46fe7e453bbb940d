// ABOUTME: Centralized configuration for the AI intelligence layer
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the intelligence layer.
type Config struct {
	// Charm settings (persistent cache tier)
	CharmHost   string
	CharmDBName string
	AutoSync    bool

	// OpenAI settings
	OpenAIKey      string
	ChatModel      string
	EmbeddingModel string
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration

	// Provider selection
	PreferredProvider string

	// Embedding settings
	VectorDimension  int
	CacheMemoryLimit int

	// Search settings
	SimilarityThreshold float64
	DuplicateThreshold  float64

	// Health monitoring
	HealthInterval   time.Duration
	FailureThreshold int
	HistoryWindow    int
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		CharmHost:           getEnv("CHARM_HOST", "cloud.charm.sh"),
		CharmDBName:         getEnv("CHARM_DB", "engram"),
		AutoSync:            getEnvBool("CHARM_AUTO_SYNC", true),
		OpenAIKey:           os.Getenv("OPENAI_API_KEY"),
		ChatModel:           getEnv("ENGRAM_OPENAI_MODEL", "gpt-4o-mini"),
		EmbeddingModel:      getEnv("ENGRAM_EMBEDDING_MODEL", "text-embedding-3-small"),
		Timeout:             getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries:          getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay:          getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
		PreferredProvider:   getEnv("ENGRAM_PROVIDER", ""),
		VectorDimension:     getEnvInt("ENGRAM_VECTOR_DIMENSION", 384),
		CacheMemoryLimit:    getEnvInt("ENGRAM_CACHE_MEMORY_LIMIT", 1024),
		SimilarityThreshold: getEnvFloat("ENGRAM_SIMILARITY_THRESHOLD", 0.7),
		DuplicateThreshold:  getEnvFloat("ENGRAM_DUPLICATE_THRESHOLD", 0.85),
		HealthInterval:      getEnvDuration("ENGRAM_HEALTH_INTERVAL", 30*time.Second),
		FailureThreshold:    getEnvInt("ENGRAM_FAILURE_THRESHOLD", 3),
		HistoryWindow:       getEnvInt("ENGRAM_HISTORY_WINDOW", 20),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.SimilarityThreshold < -1 || c.SimilarityThreshold > 1 {
		return fmt.Errorf("ENGRAM_SIMILARITY_THRESHOLD must be -1..1, got %f", c.SimilarityThreshold)
	}
	if c.DuplicateThreshold < -1 || c.DuplicateThreshold > 1 {
		return fmt.Errorf("ENGRAM_DUPLICATE_THRESHOLD must be -1..1, got %f", c.DuplicateThreshold)
	}
	if c.VectorDimension <= 0 {
		return fmt.Errorf("ENGRAM_VECTOR_DIMENSION must be positive, got %d", c.VectorDimension)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	if c.FailureThreshold <= 0 {
		return fmt.Errorf("ENGRAM_FAILURE_THRESHOLD must be positive, got %d", c.FailureThreshold)
	}
	return nil
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultVal
	}
	return v == "true" || v == "1"
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvFloat(key string, defaultVal float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
