package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/store"
)

// LoggingProvider records every request in the call log and emits a
// structured log line per call.
type LoggingProvider struct {
	inner Provider
	calls store.LLMCallRepo
	log   *logger.Logger
}

// WithLogging wraps p. calls may be nil when no call log is wanted.
func WithLogging(p Provider, calls store.LLMCallRepo, log *logger.Logger) Provider {
	return &LoggingProvider{inner: p, calls: calls, log: log.With("service", "LLM")}
}

func (l *LoggingProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	start := time.Now()
	purpose := PurposeFrom(ctx)

	resp, err := l.inner.Generate(ctx, req)

	call := &store.LLMCall{
		Provider:    l.inner.ModelID(),
		Model:       l.inner.ModelID(),
		Purpose:     string(purpose),
		LatencyMs:   time.Since(start).Milliseconds(),
		Success:     err == nil,
		RequestBody: serializeRequest(req),
	}
	if resp != nil {
		call.InputTokens = resp.Usage.InputTokens
		call.OutputTokens = resp.Usage.OutputTokens
		call.Model = resp.Model
		call.ResponseBody = string(resp.Content)
	}
	if err != nil {
		call.ErrorMessage = err.Error()
		l.log.Warn("llm call failed", "purpose", purpose, "model", call.Model, "latency_ms", call.LatencyMs, "error", err)
	} else {
		l.log.Debug("llm call", "purpose", purpose, "model", call.Model, "latency_ms", call.LatencyMs,
			"input_tokens", call.InputTokens, "output_tokens", call.OutputTokens)
	}

	if l.calls != nil {
		// A failed log write never fails the request.
		if logErr := l.calls.Append(context.WithoutCancel(ctx), call); logErr != nil {
			l.log.Warn("failed to record llm call", "error", logErr)
		}
	}

	return resp, err
}

func (l *LoggingProvider) ModelID() string {
	return l.inner.ModelID()
}

func serializeRequest(req Request) string {
	var b strings.Builder

	if req.System != "" {
		b.WriteString("[system]\n")
		b.WriteString(req.System)
		b.WriteString("\n\n")
	}

	for _, m := range req.Messages {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", m.Role, m.Content)
	}

	if req.Schema != nil {
		if def, err := json.Marshal(req.Schema.Definition); err == nil {
			fmt.Fprintf(&b, "[schema: %s]\n%s\n", req.Schema.Name, def)
		}
	}

	return b.String()
}
