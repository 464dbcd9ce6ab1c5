// Package embedding turns skill text into fixed-length vectors.
package embedding

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/skillmap/internal/apperr"
	"github.com/abhisek/skillmap/internal/logger"
)

// Embedder returns a vector of length Dimension for a string. Identical
// text yields identical vectors within a process.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() int
}

type Options struct {
	Provider  string // hash, openai, gemini
	Model     string
	Dimension int
	APIKey    string
	BaseURL   string

	Cache    string // none, memory, redis
	RedisURL string
	CacheTTL time.Duration
}

// New builds the configured embedder wrapped in its cache.
func New(ctx context.Context, opts Options, log *logger.Logger) (Embedder, error) {
	var inner Embedder
	switch opts.Provider {
	case "", "hash":
		inner = NewHash(opts.Dimension)
	case "openai":
		e, err := NewOpenAI(opts.APIKey, opts.BaseURL, opts.Model, opts.Dimension)
		if err != nil {
			return nil, err
		}
		inner = e
	case "gemini":
		e, err := NewGemini(ctx, opts.APIKey, opts.Model, opts.Dimension)
		if err != nil {
			return nil, err
		}
		inner = e
	default:
		return nil, apperr.Unavailable(apperr.ReasonNotConfigured,
			fmt.Sprintf("unknown embedding provider %q", opts.Provider), nil)
	}

	var cache Cache
	switch opts.Cache {
	case "", "none":
		return inner, nil
	case "memory":
		cache = NewMemoryCache(10000)
	case "redis":
		ropts, err := redis.ParseURL(opts.RedisURL)
		if err != nil {
			return nil, fmt.Errorf("parse redis url: %w", err)
		}
		cache = NewRedisCache(redis.NewClient(ropts), "skillmap:emb:", opts.CacheTTL)
	default:
		return nil, fmt.Errorf("unknown embedding cache %q", opts.Cache)
	}
	return NewCached(inner, cache, opts.Provider+"/"+opts.Model, log), nil
}
