package llm

import (
	"context"
	"encoding/json"
)

// Provider is a text model that can answer with schema-conforming JSON.
// Every structured-extraction call in skillmap goes through a Provider.
type Provider interface {
	// Generate sends req to the model. When req.Schema is set the returned
	// Content has already been validated against it.
	Generate(ctx context.Context, req Request) (*Response, error)

	// ModelID returns the model identifier this provider is configured to use.
	ModelID() string
}

// Request is a single prompt.
type Request struct {
	System   string
	Messages []Message

	// Schema, when set, switches the provider to its native structured
	// output mode. When nil, Content is the raw text.
	Schema *Schema

	MaxTokens   int
	Temperature float64 // 0 means provider default
}

// Message is one turn of the conversation sent to the model.
type Message struct {
	Role    Role
	Content string
}

// Role identifies who sent a Message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Schema names a JSON Schema document the response must satisfy.
type Schema struct {
	// Name is kebab-case, e.g. "assessment-questions". It doubles as the
	// OpenAI schema name and the validation cache key.
	Name        string
	Description string
	Definition  map[string]any
}

// Response is the model output. With a Schema, Content is the validated
// JSON document.
type Response struct {
	Content json.RawMessage
	Usage   Usage
	Model   string

	// StopReason is one of StopEnd, StopMaxTokens or StopRefused.
	StopReason string
}

// Usage is the token count of one call, as reported by the provider.
type Usage struct {
	InputTokens  int
	OutputTokens int
	TotalTokens  int
}
