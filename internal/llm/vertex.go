package llm

import (
	"context"
	"strings"

	"cloud.google.com/go/vertexai/genai"
	"github.com/rotisserie/eris"
)

// VertexClient implements Client for Gemini models served by Vertex AI
type VertexClient struct {
	client *genai.Client
	config *Config
}

// NewVertexClient creates a new Vertex AI client using application default credentials
func NewVertexClient(ctx context.Context, config *Config, projectID, location string) (*VertexClient, error) {
	if projectID == "" {
		return nil, eris.New("Vertex AI project is required")
	}
	if location == "" {
		location = "us-central1"
	}

	client, err := genai.NewClient(ctx, projectID, location)
	if err != nil {
		return nil, eris.Wrap(err, "failed to create Vertex AI client")
	}

	return &VertexClient{client: client, config: config}, nil
}

func (c *VertexClient) model(req Request) (*genai.GenerativeModel, error) {
	modelName := c.config.ModelFor(req)
	if modelName == "" {
		return nil, eris.Errorf("no model configured for tier %s", req.Tier)
	}

	model := c.client.GenerativeModel(modelName)
	model.SetTemperature(req.Temperature)
	model.SetMaxOutputTokens(int32(maxTokensOr(req.MaxTokens, defaultMaxTokens)))
	if req.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.SystemPrompt)}}
	}
	return model, nil
}

// GenerateContent generates text content for the request
func (c *VertexClient) GenerateContent(ctx context.Context, req Request) (string, error) {
	model, err := c.model(req)
	if err != nil {
		return "", err
	}

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", eris.Wrap(err, "vertex: generate content")
	}
	return vertexText(resp)
}

// GenerateJSON generates JSON content for the request
func (c *VertexClient) GenerateJSON(ctx context.Context, req Request) (string, error) {
	model, err := c.model(req)
	if err != nil {
		return "", err
	}
	model.ResponseMIMEType = "application/json"

	resp, err := model.GenerateContent(ctx, genai.Text(req.Prompt))
	if err != nil {
		return "", eris.Wrap(err, "vertex: generate content")
	}
	text, err := vertexText(resp)
	if err != nil {
		return "", err
	}
	return CleanJSONBlock(text), nil
}

// GetModel returns the model name for a tier
func (c *VertexClient) GetModel(tier ModelTier) string {
	return c.config.GetModel(tier)
}

// Close releases resources held by the client
func (c *VertexClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

func vertexText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", eris.New("vertex: no candidates in response")
	}

	var parts []string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", eris.New("vertex: no text parts in response")
	}
	return strings.Join(parts, ""), nil
}
