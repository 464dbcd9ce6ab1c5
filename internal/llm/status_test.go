package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"google.golang.org/genai"
)

func TestClassifyStatus(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		status int
		want   string
	}{
		{http.StatusTooManyRequests, "rate-limit"},
		{http.StatusBadRequest, "rejected"},
		{http.StatusUnauthorized, "rejected"},
		{http.StatusNotFound, "rejected"},
		{http.StatusInternalServerError, "unavailable"},
		{http.StatusServiceUnavailable, "unavailable"},
		{529, "unavailable"},
		{0, "unavailable"},
	}
	for _, tt := range tests {
		err := classifyStatus(tt.status, cause)
		var (
			rl       *ErrRateLimit
			rejected *ErrRequestRejected
			unavail  *ErrProviderUnavailable
			got      string
		)
		switch {
		case errors.As(err, &rl):
			got = "rate-limit"
		case errors.As(err, &rejected):
			got = "rejected"
		case errors.As(err, &unavail):
			got = "unavailable"
		}
		if got != tt.want {
			t.Errorf("status %d: got %s (%T), want %s", tt.status, got, err, tt.want)
		}
		if !errors.Is(err, cause) {
			t.Errorf("status %d: cause not wrapped", tt.status)
		}
	}
}

func TestCheckStop(t *testing.T) {
	content := json.RawMessage(`{"questions":[`)

	if err := checkStop(StopEnd, content); err != nil {
		t.Fatalf("end: unexpected error %v", err)
	}
	var maxTok *ErrMaxTokensExceeded
	if err := checkStop(StopMaxTokens, content); !errors.As(err, &maxTok) {
		t.Fatalf("max tokens: got %T", err)
	}
	err := checkStop(StopRefused, content)
	if !errors.Is(err, errRefused) || !IsMalformed(err) {
		t.Fatalf("refused: got %v", err)
	}
}

func TestAnthropicProvider_Refusal(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": "{}"}},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "refusal",
			"usage":       map[string]any{"input_tokens": 12, "output_tokens": 1},
		})
	})

	_, err := p.Generate(context.Background(), Request{Schema: skillListSchema(), MaxTokens: 64})
	if !errors.Is(err, errRefused) {
		t.Fatalf("expected refusal, got %T (%v)", err, err)
	}
}

func TestAnthropicProvider_BadKeyRejected(t *testing.T) {
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"type":  "error",
			"error": map[string]any{"type": "authentication_error", "message": "invalid x-api-key"},
		})
	})

	_, err := p.Generate(context.Background(), Request{MaxTokens: 100})
	var rejected *ErrRequestRejected
	if !errors.As(err, &rejected) || rejected.Status != http.StatusUnauthorized {
		t.Fatalf("expected ErrRequestRejected(401), got %T (%v)", err, err)
	}
}

func TestOpenAIProvider_ContentFilter(t *testing.T) {
	p := newTestOpenAIProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openAICompletion("", "content_filter"))
	})

	_, err := p.Generate(context.Background(), Request{Schema: skillListSchema(), MaxTokens: 64})
	if !errors.Is(err, errRefused) {
		t.Fatalf("expected refusal, got %T (%v)", err, err)
	}
}

func TestGeminiStop(t *testing.T) {
	tests := []struct {
		reason genai.FinishReason
		want   string
	}{
		{genai.FinishReasonStop, StopEnd},
		{genai.FinishReasonMaxTokens, StopMaxTokens},
		{genai.FinishReasonSafety, StopRefused},
		{genai.FinishReasonRecitation, StopRefused},
		{genai.FinishReasonOther, StopEnd},
	}
	for _, tt := range tests {
		result := &genai.GenerateContentResponse{
			Candidates: []*genai.Candidate{{FinishReason: tt.reason}},
		}
		if got := geminiStop(result); got != tt.want {
			t.Errorf("%s: got %s, want %s", tt.reason, got, tt.want)
		}
	}
	if got := geminiStop(&genai.GenerateContentResponse{}); got != StopRefused {
		t.Errorf("blocked prompt: got %s", got)
	}
}

func TestMapGeminiError(t *testing.T) {
	var rl *ErrRateLimit
	if err := mapGeminiError(fmt.Errorf("generate: %w", genai.APIError{Code: 429})); !errors.As(err, &rl) {
		t.Errorf("429: got %T", err)
	}
	var rejected *ErrRequestRejected
	if err := mapGeminiError(genai.APIError{Code: 403}); !errors.As(err, &rejected) {
		t.Errorf("403: got %T", err)
	}
	var unavail *ErrProviderUnavailable
	if err := mapGeminiError(genai.APIError{Code: 503}); !errors.As(err, &unavail) {
		t.Errorf("503: got %T", err)
	}
}

func TestOpenRouterProvider_SendsAttribution(t *testing.T) {
	var referer, title, model string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		referer = r.Header.Get("HTTP-Referer")
		title = r.Header.Get("X-Title")
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		model, _ = body["model"].(string)
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openAICompletion(skillPayload, "stop"))
	}))
	t.Cleanup(server.Close)

	p, err := NewOpenRouterProvider(OpenRouterConfig{APIKey: "sk-or-test", Model: "claude-haiku", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp, err := p.Generate(context.Background(), Request{Schema: skillListSchema(), MaxTokens: 64})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StopReason != StopEnd {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
	if referer != openRouterReferer || title != openRouterTitle {
		t.Errorf("attribution headers = %q, %q", referer, title)
	}
	if model != "anthropic/claude-haiku-4.5" {
		t.Errorf("model = %q", model)
	}
}

func TestBuildGeminiSchema_BoundsAndNullable(t *testing.T) {
	schema := buildGeminiSchema(map[string]any{
		"type": "object",
		"properties": map[string]any{
			"options": map[string]any{
				"type":     "array",
				"minItems": 4,
				"maxItems": 4,
				"items":    map[string]any{"type": "string"},
			},
			"difficulty": map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
			"weight":     map[string]any{"type": []any{"number", "null"}, "minimum": 0.0},
		},
		"required": []string{"options", "difficulty"},
	})

	opts := schema.Properties["options"]
	if opts.MinItems == nil || *opts.MinItems != 4 || opts.MaxItems == nil || *opts.MaxItems != 4 {
		t.Errorf("options item bounds = %v..%v", opts.MinItems, opts.MaxItems)
	}
	diff := schema.Properties["difficulty"]
	if diff.Minimum == nil || *diff.Minimum != 1 || diff.Maximum == nil || *diff.Maximum != 5 {
		t.Errorf("difficulty bounds = %v..%v", diff.Minimum, diff.Maximum)
	}
	weight := schema.Properties["weight"]
	if weight.Type != genai.TypeNumber || weight.Nullable == nil || !*weight.Nullable {
		t.Errorf("weight = %+v", weight)
	}
	if len(schema.Required) != 2 {
		t.Errorf("required = %v", schema.Required)
	}
}

func TestAnthropicProvider_CachesSystemPrompt(t *testing.T) {
	var cacheType string
	p := newTestAnthropicProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			System []struct {
				CacheControl struct {
					Type string `json:"type"`
				} `json:"cache_control"`
			} `json:"system"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if len(body.System) == 1 {
			cacheType = body.System[0].CacheControl.Type
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"id":          "msg_test",
			"type":        "message",
			"role":        "assistant",
			"content":     []map[string]any{{"type": "text", "text": skillPayload}},
			"model":       "claude-haiku-4-5-20251001",
			"stop_reason": "end_turn",
			"usage": map[string]any{
				"input_tokens":                10,
				"cache_creation_input_tokens": 0,
				"cache_read_input_tokens":     400,
				"output_tokens":               30,
			},
		})
	})

	resp, err := p.Generate(context.Background(), Request{
		System:    "Extract skills.",
		Messages:  []Message{{Role: RoleUser, Content: "Platform engineer with Kubernetes."}},
		Schema:    skillListSchema(),
		MaxTokens: 256,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cacheType != "ephemeral" {
		t.Errorf("system cache_control = %q", cacheType)
	}
	if resp.StopReason != StopEnd {
		t.Errorf("stop reason = %q", resp.StopReason)
	}
	if resp.Usage.InputTokens != 410 || resp.Usage.TotalTokens != 440 {
		t.Errorf("usage = %+v", resp.Usage)
	}
}
