package llm

import (
	"context"

	"github.com/rotisserie/eris"
)

// Request is a single completion request sent to a provider
type Request struct {
	Prompt       string
	SystemPrompt string
	// Model names a provider model directly and takes precedence over Tier.
	Model        string
	Tier         ModelTier
	Temperature  float32
	MaxTokens    int
}

// Client is an abstraction over LLM providers
type Client interface {
	// GenerateContent generates free text for the request
	GenerateContent(ctx context.Context, req Request) (string, error)
	// GenerateJSON generates JSON content for the request
	GenerateJSON(ctx context.Context, req Request) (string, error)
	// GetModel returns the provider model name for a tier
	GetModel(tier ModelTier) string
	// Close releases any resources held by the client
	Close() error
}

// Credentials carries what each provider needs to authenticate
type Credentials struct {
	APIKey         string
	VertexProject  string
	VertexLocation string
}

// NewClient creates a new LLM client based on configuration
func NewClient(ctx context.Context, config *Config, creds Credentials) (Client, error) {
	if config == nil {
		config = DefaultConfig()
	}

	switch config.Provider {
	case ProviderGemini:
		return NewGeminiClient(ctx, config, creds.APIKey)
	case ProviderAnthropic:
		return NewAnthropicClient(config, creds.APIKey)
	case ProviderVertex:
		return NewVertexClient(ctx, config, creds.VertexProject, creds.VertexLocation)
	default:
		return nil, eris.Errorf("unsupported LLM provider %q", config.Provider)
	}
}

// maxTokensOr returns n, or def when n is unset.
func maxTokensOr(n, def int) int {
	if n > 0 {
		return n
	}
	return def
}

const defaultMaxTokens = 1024
