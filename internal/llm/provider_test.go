package llm

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/store"
)

func TestMockProvider_FIFO(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"a":1}`), Usage: Usage{InputTokens: 10}},
		MockJSON(map[string]int{"b": 2}),
	)

	first, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(first.Content) != `{"a":1}` || first.Usage.InputTokens != 10 {
		t.Fatalf("first response = %s %+v", first.Content, first.Usage)
	}

	second, err := mock.Generate(context.Background(), Request{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(second.Content) != `{"b":2}` {
		t.Fatalf("second response = %s", second.Content)
	}

	_, err = mock.Generate(context.Background(), Request{})
	var unavail *ErrProviderUnavailable
	if !errors.As(err, &unavail) {
		t.Fatalf("expected ErrProviderUnavailable on empty queue, got %T", err)
	}
	if mock.CallCount() != 3 {
		t.Errorf("call count = %d", mock.CallCount())
	}
}

func TestMockProvider_ValidatesSchema(t *testing.T) {
	mock := NewMockProvider(MockResponse{Content: json.RawMessage(`{"skills":"none"}`)})
	_, err := mock.Generate(context.Background(), Request{Schema: skillListSchema()})
	if !IsMalformed(err) {
		t.Fatalf("expected malformed error, got %v", err)
	}
}

func TestPurposeContext(t *testing.T) {
	ctx := context.Background()
	if p := PurposeFrom(ctx); p != PurposeUnknown {
		t.Fatalf("expected 'unknown', got %q", p)
	}
	ctx = WithPurpose(ctx, PurposeQuestions)
	if p := PurposeFrom(ctx); p != "assessment-questions" {
		t.Fatalf("expected 'assessment-questions', got %q", p)
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"anthropic without key", Config{Provider: "anthropic"}, true},
		{"anthropic with key", Config{Provider: "anthropic", Anthropic: AnthropicConfig{APIKey: "k"}}, false},
		{"gemini without key", Config{Provider: "gemini"}, true},
		{"none is valid", Config{Provider: "none"}, false},
		{"mock needs no key", Config{Provider: "mock"}, false},
		{"unknown provider", Config{Provider: "bard"}, true},
		{"negative rpm", Config{Provider: "mock", RequestsPerMinute: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestApplyEnv_DiscoversVendorKey(t *testing.T) {
	t.Setenv("SKILLMAP_LLM_PROVIDER", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	if cfg.Provider != "openai" || cfg.OpenAI.APIKey != "sk-test" {
		t.Fatalf("provider = %q key = %q", cfg.Provider, cfg.OpenAI.APIKey)
	}
	if !cfg.Configured() {
		t.Error("expected Configured")
	}
}

func TestApplyEnv_ExplicitProviderWins(t *testing.T) {
	t.Setenv("SKILLMAP_LLM_PROVIDER", "anthropic")
	t.Setenv("SKILLMAP_ANTHROPIC_API_KEY", "ak")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg := DefaultConfig()
	ApplyEnv(&cfg)
	if cfg.Provider != "anthropic" || cfg.Anthropic.APIKey != "ak" {
		t.Fatalf("provider = %q", cfg.Provider)
	}
}

func TestNewProvider_NotConfigured(t *testing.T) {
	cfg := DefaultConfig()
	_, err := NewProvider(context.Background(), cfg, nil, logger.Nop())
	if !errors.Is(err, ErrNotConfigured) {
		t.Fatalf("expected ErrNotConfigured, got %v", err)
	}
}

type recordingCalls struct {
	calls []*store.LLMCall
}

func (r *recordingCalls) Append(_ context.Context, c *store.LLMCall) error {
	r.calls = append(r.calls, c)
	return nil
}

func (r *recordingCalls) List(context.Context, store.QueryOpts) ([]store.LLMCall, error) {
	return nil, nil
}

func (r *recordingCalls) Get(context.Context, int64) (*store.LLMCall, error) {
	return nil, nil
}

func TestLoggingProvider_RecordsCalls(t *testing.T) {
	rec := &recordingCalls{}
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{"ok":true}`), Usage: Usage{InputTokens: 3, OutputTokens: 4}},
		MockResponse{Err: &ErrProviderUnavailable{Err: errors.New("down")}},
	)
	p := WithLogging(mock, rec, logger.Nop())

	ctx := WithPurpose(context.Background(), PurposeGoalExtract)
	if _, err := p.Generate(ctx, Request{System: "sys", Messages: []Message{{Role: RoleUser, Content: "hi"}}}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("expected error")
	}

	if len(rec.calls) != 2 {
		t.Fatalf("recorded %d calls", len(rec.calls))
	}
	ok := rec.calls[0]
	if !ok.Success || ok.Purpose != "goal-extract" || ok.OutputTokens != 4 {
		t.Errorf("first call = %+v", ok)
	}
	if ok.RequestBody != "[system]\nsys\n\n[user]\nhi\n\n" {
		t.Errorf("request body = %q", ok.RequestBody)
	}
	if rec.calls[1].Success || rec.calls[1].ErrorMessage == "" {
		t.Errorf("second call = %+v", rec.calls[1])
	}
}

func TestRateLimit_BlocksUntilContextDone(t *testing.T) {
	mock := NewMockProvider(
		MockResponse{Content: json.RawMessage(`{}`)},
		MockResponse{Content: json.RawMessage(`{}`)},
	)
	p := WithRateLimit(mock, 1, 1)

	if _, err := p.Generate(context.Background(), Request{}); err != nil {
		t.Fatalf("first call: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := p.Generate(ctx, Request{}); err == nil {
		t.Fatal("second call should wait past the deadline")
	}
	if mock.CallCount() != 1 {
		t.Errorf("inner provider called %d times", mock.CallCount())
	}
}

func TestRateLimit_DisabledPassesThrough(t *testing.T) {
	mock := NewMockProvider()
	if p := WithRateLimit(mock, 0, 0); p != Provider(mock) {
		t.Error("zero rate should return the provider unchanged")
	}
}
