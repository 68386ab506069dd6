package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider selects which LLM provider to use.
	// Values: "anthropic", "openai", "gemini", "openrouter", "mock".
	// Empty means no provider has been configured.
	Provider string `env:"DAILYTUTOR_LLM_PROVIDER"`

	Anthropic  AnthropicConfig
	OpenAI     OpenAIConfig
	Gemini     GeminiConfig
	OpenRouter OpenRouterConfig

	// MaxTokens caps every answer.
	MaxTokens int `env:"DAILYTUTOR_LLM_MAX_TOKENS" envDefault:"1024"`

	// Timeout bounds a single provider call.
	Timeout time.Duration `env:"DAILYTUTOR_LLM_TIMEOUT" envDefault:"30s"`
}

// AnthropicConfig holds Anthropic-specific configuration.
type AnthropicConfig struct {
	APIKey string `env:"DAILYTUTOR_ANTHROPIC_API_KEY"`
	Model  string `env:"DAILYTUTOR_ANTHROPIC_MODEL" envDefault:"claude-haiku"`
}

// OpenAIConfig holds OpenAI-specific configuration.
type OpenAIConfig struct {
	APIKey  string `env:"DAILYTUTOR_OPENAI_API_KEY"`
	Model   string `env:"DAILYTUTOR_OPENAI_MODEL" envDefault:"gpt-4o-mini"`
	BaseURL string `env:"DAILYTUTOR_OPENAI_BASE_URL"` // Optional. Any OpenAI-compatible API.
}

// GeminiConfig holds Gemini-specific configuration.
type GeminiConfig struct {
	APIKey string `env:"DAILYTUTOR_GEMINI_API_KEY"`
	Model  string `env:"DAILYTUTOR_GEMINI_MODEL" envDefault:"gemini-flash"`
}

// OpenRouterConfig holds OpenRouter-specific configuration.
type OpenRouterConfig struct {
	APIKey  string `env:"DAILYTUTOR_OPENROUTER_API_KEY"`
	Model   string `env:"DAILYTUTOR_OPENROUTER_MODEL" envDefault:"google/gemini-2.0-flash-exp"`
	BaseURL string `env:"DAILYTUTOR_OPENROUTER_BASE_URL"` // Default: https://openrouter.ai/api/v1
}

// DefaultConfig returns a Config with default models and limits and no
// provider selected.
func DefaultConfig() Config {
	return Config{
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		MaxTokens:  1024,
		Timeout:    30 * time.Second,
	}
}

// ConfigFromEnv builds a Config from DAILYTUTOR_* environment variables.
// When no provider is named explicitly the standard vendor key variables
// are probed, see Discover.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Provider == "" {
		cfg, _ = Discover(cfg)
	}
	return cfg, nil
}

// Discover probes standard API key env vars in priority order
// (Gemini → OpenAI → Anthropic → OpenRouter) and selects the first provider
// whose key is found. Keys already set in cfg win over the probe. It
// reports false and returns cfg unchanged if nothing is found.
func Discover(cfg Config) (Config, bool) {
	probes := []struct {
		provider string
		envVar   string
		key      *string
	}{
		{"gemini", "GEMINI_API_KEY", &cfg.Gemini.APIKey},
		{"openai", "OPENAI_API_KEY", &cfg.OpenAI.APIKey},
		{"anthropic", "ANTHROPIC_API_KEY", &cfg.Anthropic.APIKey},
		{"openrouter", "OPENROUTER_API_KEY", &cfg.OpenRouter.APIKey},
	}

	for _, p := range probes {
		if *p.key != "" {
			cfg.Provider = p.provider
			return cfg, true
		}
	}
	for _, p := range probes {
		if k := os.Getenv(p.envVar); k != "" {
			*p.key = k
			cfg.Provider = p.provider
			return cfg, true
		}
	}
	return cfg, false
}

// Configured reports whether a provider has been selected.
func (c Config) Configured() bool {
	return c.Provider != ""
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("DAILYTUTOR_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("DAILYTUTOR_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("DAILYTUTOR_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("DAILYTUTOR_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock":
		// No API key needed.
	case "":
		return fmt.Errorf("no LLM provider configured")
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	return nil
}
