package llm

import (
	"context"
	"fmt"

	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/store"
)

// NewProvider builds the configured provider wrapped as
// caller → retry → rate limit → logging → base.
func NewProvider(ctx context.Context, cfg Config, calls store.LLMCallRepo, log *logger.Logger) (Provider, error) {
	var base Provider
	var err error

	switch cfg.Provider {
	case "anthropic":
		base, err = NewAnthropicProvider(cfg.Anthropic)
	case "openai":
		base, err = NewOpenAIProvider(cfg.OpenAI)
	case "openrouter":
		base, err = NewOpenRouterProvider(cfg.OpenRouter)
	case "gemini":
		base, err = NewGeminiProvider(ctx, cfg.Gemini)
	case "mock":
		return NewMockProvider(), nil
	case "", "none":
		return nil, ErrNotConfigured
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
	if err != nil {
		return nil, fmt.Errorf("initializing %s provider: %w", cfg.Provider, err)
	}

	p := WithLogging(base, calls, log)
	p = WithRateLimit(p, cfg.RequestsPerMinute, cfg.Burst)
	return WithRetry(p, cfg.Retry), nil
}
