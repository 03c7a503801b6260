package llm

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/job-verifier/internal/config"
)

// NewGatewayFromConfig builds the gateway for the configured provider.
// Missing credentials or a client construction failure yield an unavailable gateway, not an error.
func NewGatewayFromConfig(ctx context.Context, cfg *config.Config) *ClientGateway {
	opts := []GatewayOption{
		WithCallTimeout(cfg.LLM.Timeout),
		WithProbeCooldown(cfg.LLM.ProbeCooldown),
	}

	if cfg.LLM.Provider == config.ProviderNone || !cfg.LLMKeyConfigured() {
		zap.L().Info("llm: no provider credentials, running heuristics only",
			zap.String("provider", cfg.LLM.Provider))
		return NewGateway(nil, opts...)
	}

	provider := Provider(cfg.LLM.Provider)
	creds := Credentials{
		VertexProject:  cfg.LLM.VertexProject,
		VertexLocation: cfg.LLM.VertexLocation,
	}
	switch provider {
	case ProviderGemini:
		creds.APIKey = cfg.LLM.GeminiAPIKey
	case ProviderAnthropic:
		creds.APIKey = cfg.LLM.AnthropicAPIKey
	}

	client, err := NewClient(ctx, ConfigFor(provider), creds)
	if err != nil {
		zap.L().Warn("llm: client unavailable", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
		return NewGateway(nil, opts...)
	}

	zap.L().Debug("llm: gateway ready",
		zap.String("provider", cfg.LLM.Provider),
		zap.String("model", client.GetModel(TierStandard)))
	return NewGateway(client, opts...)
}
