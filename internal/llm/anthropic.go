package llm

import (
	"context"
	"strings"

	sdk "github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/rotisserie/eris"
)

// AnthropicClient implements Client for Claude models
type AnthropicClient struct {
	client sdk.Client
	config *Config
}

// NewAnthropicClient creates a new Anthropic client backed by the SDK
func NewAnthropicClient(config *Config, apiKey string) (*AnthropicClient, error) {
	if apiKey == "" {
		return nil, eris.New("API key is required")
	}
	return &AnthropicClient{
		client: sdk.NewClient(option.WithAPIKey(apiKey)),
		config: config,
	}, nil
}

// GenerateContent generates text content for the request
func (c *AnthropicClient) GenerateContent(ctx context.Context, req Request) (string, error) {
	modelName := c.config.ModelFor(req)
	if modelName == "" {
		return "", eris.Errorf("no model configured for tier %s", req.Tier)
	}

	params := sdk.MessageNewParams{
		Model:       sdk.Model(modelName),
		MaxTokens:   int64(maxTokensOr(req.MaxTokens, defaultMaxTokens)),
		Messages:    []sdk.MessageParam{sdk.NewUserMessage(sdk.NewTextBlock(req.Prompt))},
		Temperature: sdk.Float(float64(req.Temperature)),
	}
	if req.SystemPrompt != "" {
		params.System = []sdk.TextBlockParam{{Text: req.SystemPrompt}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return "", eris.Wrap(err, "anthropic: create message")
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", eris.New("anthropic: no text in response")
	}
	return sb.String(), nil
}

// GenerateJSON generates JSON content for the request.
// Claude has no JSON response mode here, so the reply is cleaned of fences and preamble.
func (c *AnthropicClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	text, err := c.GenerateContent(ctx, req)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *AnthropicClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close is a no-op; the SDK client holds no resources.
func (c *AnthropicClient) Close() error {
	return nil
}
