// Package llm provides centralized LLM configuration, provider clients, and the best-effort gateway
// the verification stages use for qualitative judgment.
package llm

// ModelTier picks a model by how much reasoning a call needs.
type ModelTier string

const (
	// TierLite answers one-word verdict checks and short summaries.
	TierLite ModelTier = "lite"
	// TierStandard runs content review and structured extraction.
	TierStandard ModelTier = "standard"
	// TierAdvanced is reserved for callers that need the strongest model.
	TierAdvanced ModelTier = "advanced"
)

// Provider names a model vendor. The value matches the llm.provider config key.
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderAnthropic Provider = "anthropic"
	// ProviderVertex serves Gemini models through Google Cloud Vertex AI.
	ProviderVertex Provider = "vertex"
)

var geminiModels = map[ModelTier]string{
	TierLite:     "gemini-2.5-flash-lite",
	TierStandard: "gemini-2.5-flash",
	TierAdvanced: "gemini-2.5-pro",
}

// providerModels holds the default tier table for each provider.
var providerModels = map[Provider]map[ModelTier]string{
	ProviderGemini: geminiModels,
	ProviderVertex: geminiModels,
	ProviderAnthropic: {
		TierLite:     "claude-haiku-4-5-20251001",
		TierStandard: "claude-sonnet-4-5-20250929",
		TierAdvanced: "claude-opus-4-6",
	},
}

// Config binds a provider to its per-tier model names.
type Config struct {
	Provider Provider
	Models   map[ModelTier]string
}

// DefaultConfig is the Gemini configuration.
func DefaultConfig() *Config {
	return ConfigFor(ProviderGemini)
}

// ConfigFor returns a copy of the default tier table for provider. Unknown providers get Gemini.
func ConfigFor(provider Provider) *Config {
	models, ok := providerModels[provider]
	if !ok {
		provider, models = ProviderGemini, geminiModels
	}
	cfg := &Config{Provider: provider, Models: make(map[ModelTier]string, len(models))}
	for tier, name := range models {
		cfg.Models[tier] = name
	}
	return cfg
}

// GetModel returns the model for tier, falling back to the standard then the lite model.
// It returns "" when none of them is configured.
func (c *Config) GetModel(tier ModelTier) string {
	for _, t := range []ModelTier{tier, TierStandard, TierLite} {
		if name := c.Models[t]; name != "" {
			return name
		}
	}
	return ""
}

// ModelFor resolves the model a request runs on: an explicit Model, else the tier's model.
func (c *Config) ModelFor(req Request) string {
	if req.Model != "" {
		return req.Model
	}
	return c.GetModel(req.Tier)
}
