// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (JOBVERIFIER_LLM_PROVIDER, ...).
const EnvPrefix = "JOBVERIFIER"

// Config holds the full application configuration.
type Config struct {
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
	LLM    LLMConfig    `yaml:"llm" mapstructure:"llm"`
	Search SearchConfig `yaml:"search" mapstructure:"search"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Server ServerConfig `yaml:"server" mapstructure:"server"`
	Batch  BatchConfig  `yaml:"batch" mapstructure:"batch"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// LLMConfig selects and authenticates the language model provider.
// An empty key for the selected provider leaves the gateway unavailable.
type LLMConfig struct {
	Provider        string        `yaml:"provider" mapstructure:"provider"`
	GeminiAPIKey    string        `yaml:"gemini_api_key" mapstructure:"gemini_api_key"`
	AnthropicAPIKey string        `yaml:"anthropic_api_key" mapstructure:"anthropic_api_key"`
	VertexProject   string        `yaml:"vertex_project" mapstructure:"vertex_project"`
	VertexLocation  string        `yaml:"vertex_location" mapstructure:"vertex_location"`
	Timeout         time.Duration `yaml:"timeout" mapstructure:"timeout"`
	ProbeCooldown   time.Duration `yaml:"probe_cooldown" mapstructure:"probe_cooldown"`
}

// SearchConfig configures the web search backends.
type SearchConfig struct {
	GoogleAPIKey  string        `yaml:"google_api_key" mapstructure:"google_api_key"`
	GoogleCX      string        `yaml:"google_cx" mapstructure:"google_cx"`
	DuckDuckGo    bool          `yaml:"duckduckgo" mapstructure:"duckduckgo"`
	RatePerSecond float64       `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Timeout       time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// FetchConfig configures page fetching and headless rendering.
type FetchConfig struct {
	Timeout        time.Duration `yaml:"timeout" mapstructure:"timeout"`
	RenderTimeout  time.Duration `yaml:"render_timeout" mapstructure:"render_timeout"`
	BrowserEnabled bool          `yaml:"browser_enabled" mapstructure:"browser_enabled"`
	Chromedp       bool          `yaml:"chromedp" mapstructure:"chromedp"`
	Rod            bool          `yaml:"rod" mapstructure:"rod"`
	ProbeTimeout   time.Duration `yaml:"probe_timeout" mapstructure:"probe_timeout"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr         string        `yaml:"addr" mapstructure:"addr"`
	CORSOrigins  []string      `yaml:"cors_origins" mapstructure:"cors_origins"`
	WriteTimeout time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	RateLimit    bool          `yaml:"rate_limit" mapstructure:"rate_limit"`
	// VerifyPerHour caps verification requests per client IP.
	VerifyPerHour int `yaml:"verify_per_hour" mapstructure:"verify_per_hour"`
}

// BatchConfig configures the batch command.
type BatchConfig struct {
	Concurrency int `yaml:"concurrency" mapstructure:"concurrency"`
}

// Providers accepted by llm.provider
const (
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderVertex    = "vertex"
	ProviderNone      = "none"
)

// Load reads configuration from defaults, an optional YAML file, .env, and the environment.
// path may be empty, in which case ./config.yaml is used when present.
func Load(path string) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	applyProviderEnv(&cfg)

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	v.SetDefault("llm.provider", ProviderGemini)
	v.SetDefault("llm.gemini_api_key", "")
	v.SetDefault("llm.anthropic_api_key", "")
	v.SetDefault("llm.vertex_project", "")
	v.SetDefault("llm.vertex_location", "us-central1")
	v.SetDefault("llm.timeout", 30*time.Second)
	v.SetDefault("llm.probe_cooldown", time.Minute)
	v.SetDefault("search.google_api_key", "")
	v.SetDefault("search.google_cx", "")
	v.SetDefault("search.duckduckgo", true)
	v.SetDefault("search.rate_per_second", 1.0)
	v.SetDefault("search.timeout", 10*time.Second)
	v.SetDefault("fetch.timeout", 10*time.Second)
	v.SetDefault("fetch.render_timeout", 15*time.Second)
	v.SetDefault("fetch.browser_enabled", true)
	v.SetDefault("fetch.chromedp", true)
	v.SetDefault("fetch.rod", true)
	v.SetDefault("fetch.probe_timeout", 10*time.Second)
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.cors_origins", []string{"*"})
	v.SetDefault("server.write_timeout", 120*time.Second)
	v.SetDefault("server.rate_limit", true)
	v.SetDefault("server.verify_per_hour", 60)
	v.SetDefault("batch.concurrency", 4)
}

// applyProviderEnv fills provider keys from the vendor-standard variables when unset.
func applyProviderEnv(cfg *Config) {
	if cfg.LLM.GeminiAPIKey == "" {
		cfg.LLM.GeminiAPIKey = os.Getenv("GEMINI_API_KEY")
	}
	if cfg.LLM.AnthropicAPIKey == "" {
		cfg.LLM.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if cfg.LLM.VertexProject == "" {
		cfg.LLM.VertexProject = os.Getenv("GOOGLE_CLOUD_PROJECT")
	}
	if cfg.Search.GoogleAPIKey == "" {
		cfg.Search.GoogleAPIKey = os.Getenv("GOOGLE_SEARCH_API_KEY")
	}
	if cfg.Search.GoogleCX == "" {
		cfg.Search.GoogleCX = os.Getenv("GOOGLE_SEARCH_CX")
	}
}

// Validate checks that the configuration has valid values.
// Missing credentials are not errors; the affected capability reports unavailable instead.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case ProviderGemini, ProviderAnthropic, ProviderVertex, ProviderNone:
	default:
		return eris.Errorf("config error: unknown llm.provider %q", c.LLM.Provider)
	}

	switch c.Log.Format {
	case "json", "console":
	default:
		return eris.Errorf("config error: log.format must be json or console, got %q", c.Log.Format)
	}

	if c.LLM.Timeout <= 0 {
		return eris.New("config error: llm.timeout must be positive")
	}
	if c.Fetch.Timeout <= 0 || c.Fetch.RenderTimeout <= 0 || c.Fetch.ProbeTimeout <= 0 {
		return eris.New("config error: fetch timeouts must be positive")
	}
	if c.Search.Timeout <= 0 {
		return eris.New("config error: search.timeout must be positive")
	}
	if c.Search.RatePerSecond < 0 {
		return eris.New("config error: search.rate_per_second must be non-negative")
	}
	if c.Server.WriteTimeout <= 0 {
		return eris.New("config error: server.write_timeout must be positive")
	}
	if c.Server.RateLimit && c.Server.VerifyPerHour < 1 {
		return eris.New("config error: server.verify_per_hour must be at least 1 when rate limiting")
	}
	if c.Batch.Concurrency < 1 {
		return eris.New("config error: batch.concurrency must be at least 1")
	}

	return nil
}

// LLMKeyConfigured reports whether the selected provider has the credentials it needs.
func (c *Config) LLMKeyConfigured() bool {
	switch c.LLM.Provider {
	case ProviderGemini:
		return c.LLM.GeminiAPIKey != ""
	case ProviderAnthropic:
		return c.LLM.AnthropicAPIKey != ""
	case ProviderVertex:
		return c.LLM.VertexProject != ""
	}
	return false
}
