package llm

import (
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

const (
	defaultOpenRouterBaseURL = "https://openrouter.ai/api/v1"
	openRouterReferer        = "https://github.com/abhisek/skillmap"
	openRouterTitle          = "skillmap"
)

// OpenRouter model IDs are vendor-prefixed. The friendly names used for
// the direct providers map onto them so a config can switch provider
// without renaming the model.
var openRouterModels = map[string]string{
	"claude-sonnet": "anthropic/claude-sonnet-4",
	"claude-haiku":  "anthropic/claude-haiku-4.5",
	"gpt-4o":        "openai/gpt-4o",
	"gpt-4o-mini":   "openai/gpt-4o-mini",
	"gemini-flash":  "google/gemini-2.5-flash",
	"gemini-pro":    "google/gemini-2.5-pro",
}

// OpenRouterProvider speaks the OpenAI chat protocol to OpenRouter.
// Generate, stop reasons and error mapping come from OpenAIProvider.
type OpenRouterProvider struct {
	*OpenAIProvider
}

func NewOpenRouterProvider(cfg OpenRouterConfig) (*OpenRouterProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openrouter API key is required")
	}

	config := openai.DefaultConfig(cfg.APIKey)
	config.BaseURL = defaultOpenRouterBaseURL
	if cfg.BaseURL != "" {
		config.BaseURL = cfg.BaseURL
	}
	config.HTTPClient = &http.Client{Transport: attributionTransport{base: http.DefaultTransport}}

	return &OpenRouterProvider{OpenAIProvider: &OpenAIProvider{
		client: openai.NewClientWithConfig(config),
		model:  resolveModel(cfg.Model, openRouterModels),
	}}, nil
}

// attributionTransport adds the headers OpenRouter uses to attribute
// traffic to an application.
type attributionTransport struct {
	base http.RoundTripper
}

func (t attributionTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("HTTP-Referer", openRouterReferer)
	req.Header.Set("X-Title", openRouterTitle)
	return t.base.RoundTrip(req)
}
