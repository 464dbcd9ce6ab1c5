package embedding

import (
	"context"
	"errors"
	"net/http"

	"github.com/sashabaranov/go-openai"

	"github.com/abhisek/skillmap/internal/apperr"
)

// OpenAI calls the embeddings endpoint of OpenAI or a compatible server.
type OpenAI struct {
	client *openai.Client
	model  openai.EmbeddingModel
	dim    int
}

func NewOpenAI(apiKey, baseURL, model string, dim int) (*OpenAI, error) {
	if apiKey == "" {
		return nil, apperr.Unavailable(apperr.ReasonNotConfigured, "openai embedding API key is not configured", nil)
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = string(openai.SmallEmbedding3)
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg), model: openai.EmbeddingModel(model), dim: dim}, nil
}

func (o *OpenAI) Dimension() int { return o.dim }

func (o *OpenAI) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := o.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input:      []string{text},
		Model:      o.model,
		Dimensions: o.dim,
	})
	if err != nil {
		var apiErr *openai.APIError
		if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusUnauthorized {
			return nil, apperr.Unavailable(apperr.ReasonNotConfigured, "openai rejected the embedding API key", err)
		}
		return nil, apperr.Unavailable(apperr.ReasonCallFailed, "openai embedding call failed", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		return nil, apperr.Unavailable(apperr.ReasonMalformedResponse, "openai returned no embedding", nil)
	}
	return resp.Data[0].Embedding, nil
}
