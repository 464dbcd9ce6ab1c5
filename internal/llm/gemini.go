package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

var geminiModels = map[string]string{
	"gemini-flash": "gemini-2.5-flash",
	"gemini-pro":   "gemini-2.5-pro",
}

// GeminiProvider implements Provider with the Gemini API. JSON schemas
// are translated into genai.Schema for structured output.
type GeminiProvider struct {
	client *genai.Client
	model  string
}

// NewGeminiProvider creates a Gemini API client for cfg.Model.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create Gemini client: %w", err)
	}

	model := resolveModel(cfg.Model, geminiModels)

	return &GeminiProvider{
		client: client,
		model:  model,
	}, nil
}

func (p *GeminiProvider) Generate(ctx context.Context, req Request) (*Response, error) {
	config := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(req.MaxTokens),
	}

	if req.Temperature > 0 {
		temp := float32(req.Temperature)
		config.Temperature = &temp
	}

	if req.System != "" {
		config.SystemInstruction = &genai.Content{
			Parts: []*genai.Part{{Text: req.System}},
		}
	}

	if req.Schema != nil {
		config.ResponseMIMEType = "application/json"
		config.ResponseSchema = buildGeminiSchema(req.Schema.Definition)
	}

	contents := buildGeminiContents(req.Messages)

	result, err := p.client.Models.GenerateContent(ctx, p.model, contents, config)
	if err != nil {
		return nil, mapGeminiError(err)
	}

	content := json.RawMessage(result.Text())
	stop := geminiStop(result)
	if err := checkStop(stop, content); err != nil {
		return nil, err
	}
	if err := validateResponse(req.Schema, content); err != nil {
		return nil, err
	}

	resp := &Response{
		Content:    content,
		Model:      p.model,
		StopReason: stop,
	}

	if result.UsageMetadata != nil {
		resp.Usage = Usage{
			InputTokens:  int(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int(result.UsageMetadata.TotalTokenCount),
		}
	}

	return resp, nil
}

func (p *GeminiProvider) ModelID() string {
	return p.model
}

func buildGeminiContents(msgs []Message) []*genai.Content {
	out := make([]*genai.Content, len(msgs))
	for i, m := range msgs {
		role := "user"
		if m.Role == RoleAssistant {
			role = "model"
		}
		out[i] = &genai.Content{
			Role:  role,
			Parts: []*genai.Part{{Text: m.Content}},
		}
	}
	return out
}

// buildGeminiSchema translates the JSON Schema subset used by the oracle
// schemas. Bounds and item counts are carried over so Gemini constrains
// levels and option counts at generation time; validateResponse still
// checks the result.
func buildGeminiSchema(def map[string]any) *genai.Schema {
	schema := &genai.Schema{}

	switch t := def["type"].(type) {
	case string:
		schema.Type = mapGeminiType(t)
	case []any:
		// ["integer", "null"] style optional fields.
		for _, v := range t {
			name, _ := v.(string)
			if name == "null" {
				schema.Nullable = genai.Ptr(true)
				continue
			}
			schema.Type = mapGeminiType(name)
		}
	}
	schema.Description, _ = def["description"].(string)

	if v, ok := schemaNumber(def["minimum"]); ok {
		schema.Minimum = genai.Ptr(v)
	}
	if v, ok := schemaNumber(def["maximum"]); ok {
		schema.Maximum = genai.Ptr(v)
	}
	if v, ok := schemaNumber(def["minItems"]); ok {
		schema.MinItems = genai.Ptr(int64(v))
	}
	if v, ok := schemaNumber(def["maxItems"]); ok {
		schema.MaxItems = genai.Ptr(int64(v))
	}

	if props, ok := def["properties"].(map[string]any); ok {
		schema.Properties = make(map[string]*genai.Schema, len(props))
		for name, v := range props {
			if sub, ok := v.(map[string]any); ok {
				schema.Properties[name] = buildGeminiSchema(sub)
			}
		}
	}
	schema.Required = schemaStrings(def["required"])
	schema.Enum = schemaStrings(def["enum"])

	if items, ok := def["items"].(map[string]any); ok {
		schema.Items = buildGeminiSchema(items)
	}

	return schema
}

// schemaNumber accepts the numeric types that appear in Go-literal schema
// definitions as well as float64 from decoded JSON.
func schemaNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func schemaStrings(v any) []string {
	var out []string
	switch list := v.(type) {
	case []string:
		out = append(out, list...)
	case []any:
		for _, e := range list {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

func mapGeminiType(t string) genai.Type {
	switch t {
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeString
	}
}

// geminiStop reads the first candidate's finish reason. A response with
// no candidates was blocked at the prompt and counts as refused.
func geminiStop(result *genai.GenerateContentResponse) string {
	if len(result.Candidates) == 0 {
		return StopRefused
	}
	switch result.Candidates[0].FinishReason {
	case genai.FinishReasonMaxTokens:
		return StopMaxTokens
	case genai.FinishReasonSafety,
		genai.FinishReasonRecitation,
		genai.FinishReasonBlocklist,
		genai.FinishReasonProhibitedContent,
		genai.FinishReasonSPII:
		return StopRefused
	default:
		return StopEnd
	}
}

// mapGeminiError matches genai.APIError by value; the client returns it
// unwrapped and not as a pointer.
func mapGeminiError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(apiErr.Code, err)
	}
	return &ErrProviderUnavailable{Err: err}
}
