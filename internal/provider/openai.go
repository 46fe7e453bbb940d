// ABOUTME: OpenAI-backed provider for chat and embeddings with retry
// ABOUTME: Uses text-embedding-3-small and gpt-4o-mini by default (configurable)
package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mbrook/engram/internal/aierr"
	"github.com/mbrook/engram/internal/util"
	openai "github.com/sashabaranov/go-openai"
)

const (
	// DefaultChatModel is the default model for chat completions
	DefaultChatModel = "gpt-4o-mini"
	// DefaultEmbeddingModel is the default model for embeddings
	DefaultEmbeddingModel = openai.SmallEmbedding3
	// openAIEmbeddingDimension is the vector size of text-embedding-3-small
	openAIEmbeddingDimension = 1536
)

// OpenAIConfig holds configuration for the OpenAI provider.
type OpenAIConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel openai.EmbeddingModel
	Timeout        time.Duration
	MaxRetries     int
	RetryDelay     time.Duration
}

func (c *OpenAIConfig) fillDefaults() {
	if c.ChatModel == "" {
		c.ChatModel = DefaultChatModel
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.Timeout <= 0 {
		c.Timeout = 30 * time.Second
	}
	if c.MaxRetries <= 0 {
		c.MaxRetries = 3
	}
	if c.RetryDelay <= 0 {
		c.RetryDelay = 2 * time.Second
	}
}

// OpenAI is a cloud provider backed by the OpenAI API.
type OpenAI struct {
	cfg OpenAIConfig

	mu     sync.Mutex
	client *openai.Client
	ready  bool

	health healthCache
}

// NewOpenAI creates the provider. Initialize validates the API key and
// constructs the client.
func NewOpenAI(cfg OpenAIConfig) *OpenAI {
	cfg.fillDefaults()
	return &OpenAI{cfg: cfg}
}

func (p *OpenAI) Name() string         { return "openai" }
func (p *OpenAI) Type() Type           { return TypeCloud }
func (p *OpenAI) RequiresAPIKey() bool { return true }

// EmbeddingDimension reports the vector size of the configured embedding model.
func (p *OpenAI) EmbeddingDimension() int {
	if p.cfg.EmbeddingModel == openai.LargeEmbedding3 {
		return 3072
	}
	return openAIEmbeddingDimension
}

func (p *OpenAI) Capabilities() Capabilities {
	return Capabilities{Chat: true, Embeddings: true, Streaming: true}
}

func (p *OpenAI) Initialize(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ready {
		return nil
	}
	if p.cfg.APIKey == "" {
		return aierr.InitializationFailed("openai provider", fmt.Errorf("OPENAI_API_KEY is not set"))
	}
	p.client = openai.NewClient(p.cfg.APIKey)
	p.ready = true
	p.health.invalidate()
	return nil
}

func (p *OpenAI) Chat(ctx context.Context, message, contextText string) (string, error) {
	client, err := p.currentClient()
	if err != nil {
		return "", err
	}

	messages := []openai.ChatCompletionMessage{}
	if contextText != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: contextText,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	return util.WithRetry(ctx, func(ctx context.Context) (string, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()

		resp, err := client.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
			Model:    p.cfg.ChatModel,
			Messages: messages,
		})
		if err != nil {
			return "", aierr.ChatFailed(err)
		}
		if len(resp.Choices) == 0 {
			return "", aierr.ChatFailed(fmt.Errorf("no completion choices returned"))
		}
		return resp.Choices[0].Message.Content, nil
	}, p.retryOptions())
}

func (p *OpenAI) Embed(ctx context.Context, text string) ([]float64, error) {
	client, err := p.currentClient()
	if err != nil {
		return nil, err
	}

	return util.WithRetry(ctx, func(ctx context.Context) ([]float64, error) {
		callCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()

		resp, err := client.CreateEmbeddings(callCtx, openai.EmbeddingRequestStrings{
			Input: []string{text},
			Model: p.cfg.EmbeddingModel,
		})
		if err != nil {
			return nil, aierr.EmbeddingFailed(err)
		}
		if len(resp.Data) == 0 {
			return nil, aierr.EmbeddingFailed(fmt.Errorf("no embeddings returned"))
		}

		// Convert []float32 to []float64
		embedding32 := resp.Data[0].Embedding
		embedding64 := make([]float64, len(embedding32))
		for i, v := range embedding32 {
			embedding64[i] = float64(v)
		}
		return embedding64, nil
	}, p.retryOptions())
}

func (p *OpenAI) HealthCheck(ctx context.Context) Health {
	return p.health.check(ctx, func(ctx context.Context) Health {
		now := time.Now()

		p.mu.Lock()
		ready := p.ready
		client := p.client
		p.mu.Unlock()

		if !ready {
			return Health{Status: StateUnavailable, Message: "not initialized", LastChecked: now}
		}

		probeCtx, cancel := context.WithTimeout(ctx, p.cfg.Timeout)
		defer cancel()
		if _, err := client.ListModels(probeCtx); err != nil {
			return Health{Status: StateError, Message: err.Error(), LastChecked: now}
		}
		return Health{Available: true, Status: StateReady, Message: "ok", LastChecked: now}
	})
}

func (p *OpenAI) Dispose() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.client = nil
	p.ready = false
	p.health.invalidate()
	return nil
}

func (p *OpenAI) currentClient() (*openai.Client, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.ready || p.client == nil {
		return nil, notInitialized(p.Name())
	}
	return p.client, nil
}

func (p *OpenAI) retryOptions() util.RetryOptions {
	return util.RetryOptions{
		MaxAttempts: p.cfg.MaxRetries,
		Delay:       p.cfg.RetryDelay,
		AddJitter:   true,
	}
}
