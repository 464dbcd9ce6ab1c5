package embedding

import (
	"context"

	"google.golang.org/genai"

	"github.com/abhisek/skillmap/internal/apperr"
)

type Gemini struct {
	client *genai.Client
	model  string
	dim    int
}

func NewGemini(ctx context.Context, apiKey, model string, dim int) (*Gemini, error) {
	if apiKey == "" {
		return nil, apperr.Unavailable(apperr.ReasonNotConfigured, "gemini embedding API key is not configured", nil)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, apperr.Unavailable(apperr.ReasonNotConfigured, "create gemini client", err)
	}
	if model == "" {
		model = "gemini-embedding-001"
	}
	return &Gemini{client: client, model: model, dim: dim}, nil
}

func (g *Gemini) Dimension() int { return g.dim }

func (g *Gemini) Embed(ctx context.Context, text string) ([]float32, error) {
	cfg := &genai.EmbedContentConfig{}
	if g.dim > 0 {
		d := int32(g.dim)
		cfg.OutputDimensionality = &d
	}
	resp, err := g.client.Models.EmbedContent(ctx, g.model, genai.Text(text), cfg)
	if err != nil {
		return nil, apperr.Unavailable(apperr.ReasonCallFailed, "gemini embedding call failed", err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, apperr.Unavailable(apperr.ReasonMalformedResponse, "gemini returned no embedding", nil)
	}
	return resp.Embeddings[0].Values, nil
}
