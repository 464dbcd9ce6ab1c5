package llm

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds all LLM provider configuration.
type Config struct {
	// Provider is one of "anthropic", "openai", "openrouter", "gemini",
	// "mock" or "none".
	Provider string `yaml:"provider"`

	Anthropic  AnthropicConfig  `yaml:"anthropic"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	OpenRouter OpenRouterConfig `yaml:"openrouter"`
	Retry      RetryConfig      `yaml:"retry"`

	// RequestsPerMinute caps outgoing calls; 0 disables the limiter.
	RequestsPerMinute int `yaml:"requests_per_minute"`
	Burst             int `yaml:"burst"`

	// Timeout bounds one logical call, retries included.
	Timeout time.Duration `yaml:"timeout"`
}

// AnthropicConfig is read from the llm.anthropic section.
type AnthropicConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// OpenAIConfig is read from the llm.openai section.
type OpenAIConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// GeminiConfig is read from the llm.gemini section.
type GeminiConfig struct {
	APIKey string `yaml:"api_key"`
	Model  string `yaml:"model"`
}

// OpenRouterConfig is read from the llm.openrouter section.
type OpenRouterConfig struct {
	APIKey  string `yaml:"api_key"`
	Model   string `yaml:"model"`
	BaseURL string `yaml:"base_url"`
}

// RetryConfig controls exponential backoff on transient failures.
type RetryConfig struct {
	MaxAttempts int           `yaml:"max_attempts"`
	InitialWait time.Duration `yaml:"initial_wait"`
	MaxWait     time.Duration `yaml:"max_wait"`
	Multiplier  float64       `yaml:"multiplier"`
}

// DefaultConfig leaves the provider unset, so oracle calls fail as
// not configured until one is chosen.
func DefaultConfig() Config {
	return Config{
		Provider:   "none",
		Anthropic:  AnthropicConfig{Model: "claude-haiku"},
		OpenAI:     OpenAIConfig{Model: "gpt-4o-mini"},
		Gemini:     GeminiConfig{Model: "gemini-flash"},
		OpenRouter: OpenRouterConfig{Model: "google/gemini-2.0-flash-exp"},
		Retry: RetryConfig{
			MaxAttempts: 3,
			InitialWait: 1 * time.Second,
			MaxWait:     10 * time.Second,
			Multiplier:  2.0,
		},
		RequestsPerMinute: 60,
		Burst:             5,
		Timeout:           60 * time.Second,
	}
}

// ApplyEnv overrides cfg from SKILLMAP_* variables. When no provider was
// chosen explicitly, the bare vendor key variables are probed in the order
// Gemini, OpenAI, Anthropic, OpenRouter.
func ApplyEnv(cfg *Config) {
	setString := func(dst *string, key string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}

	setString(&cfg.Provider, "SKILLMAP_LLM_PROVIDER")
	setString(&cfg.Anthropic.APIKey, "SKILLMAP_ANTHROPIC_API_KEY")
	setString(&cfg.Anthropic.Model, "SKILLMAP_ANTHROPIC_MODEL")
	setString(&cfg.OpenAI.APIKey, "SKILLMAP_OPENAI_API_KEY")
	setString(&cfg.OpenAI.Model, "SKILLMAP_OPENAI_MODEL")
	setString(&cfg.OpenAI.BaseURL, "SKILLMAP_OPENAI_BASE_URL")
	setString(&cfg.Gemini.APIKey, "SKILLMAP_GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "SKILLMAP_GEMINI_MODEL")
	setString(&cfg.OpenRouter.APIKey, "SKILLMAP_OPENROUTER_API_KEY")
	setString(&cfg.OpenRouter.Model, "SKILLMAP_OPENROUTER_MODEL")

	if v := os.Getenv("SKILLMAP_LLM_RPM"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.RequestsPerMinute = n
		}
	}

	if cfg.Provider == "" || cfg.Provider == "none" {
		discover(cfg)
	}
}

func discover(cfg *Config) {
	if k := os.Getenv("GEMINI_API_KEY"); k != "" {
		cfg.Provider = "gemini"
		cfg.Gemini.APIKey = k
		return
	}
	if k := os.Getenv("OPENAI_API_KEY"); k != "" {
		cfg.Provider = "openai"
		cfg.OpenAI.APIKey = k
		return
	}
	if k := os.Getenv("ANTHROPIC_API_KEY"); k != "" {
		cfg.Provider = "anthropic"
		cfg.Anthropic.APIKey = k
		return
	}
	if k := os.Getenv("OPENROUTER_API_KEY"); k != "" {
		cfg.Provider = "openrouter"
		cfg.OpenRouter.APIKey = k
	}
}

// Configured reports whether a real or mock provider is selected.
func (c Config) Configured() bool {
	return c.Provider != "" && c.Provider != "none"
}

// Validate checks that the selected provider has its required API key set.
func (c Config) Validate() error {
	switch c.Provider {
	case "anthropic":
		if c.Anthropic.APIKey == "" {
			return fmt.Errorf("SKILLMAP_ANTHROPIC_API_KEY is required for the anthropic provider")
		}
	case "openai":
		if c.OpenAI.APIKey == "" {
			return fmt.Errorf("SKILLMAP_OPENAI_API_KEY is required for the openai provider")
		}
	case "gemini":
		if c.Gemini.APIKey == "" {
			return fmt.Errorf("SKILLMAP_GEMINI_API_KEY is required for the gemini provider")
		}
	case "openrouter":
		if c.OpenRouter.APIKey == "" {
			return fmt.Errorf("SKILLMAP_OPENROUTER_API_KEY is required for the openrouter provider")
		}
	case "mock", "none", "":
	default:
		return fmt.Errorf("unknown LLM provider: %q", c.Provider)
	}
	if c.RequestsPerMinute < 0 {
		return fmt.Errorf("llm requests_per_minute must be >= 0")
	}
	return nil
}
