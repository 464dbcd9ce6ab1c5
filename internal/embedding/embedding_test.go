package embedding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillmap/internal/apperr"
	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/vector"
)

func TestHashDeterministicAndNormalized(t *testing.T) {
	h := NewHash(64)
	ctx := context.Background()

	a, err := h.Embed(ctx, "Terraform infrastructure as code")
	require.NoError(t, err)
	b, err := h.Embed(ctx, "Terraform infrastructure as code")
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)
	assert.InDelta(t, 1.0, vector.Cosine(a, a), 1e-6)
}

func TestHashSimilarTextScoresHigher(t *testing.T) {
	h := NewHash(256)
	ctx := context.Background()
	base, _ := h.Embed(ctx, "Kubernetes container orchestration")
	near, _ := h.Embed(ctx, "kubernetes orchestration of containers")
	far, _ := h.Embed(ctx, "public speaking and negotiation")

	assert.Greater(t, vector.Cosine(base, near), vector.Cosine(base, far))
}

func TestHashEmptyText(t *testing.T) {
	vec, err := NewHash(8).Embed(context.Background(), "  ")
	require.NoError(t, err)
	assert.Equal(t, make([]float32, 8), vec)
}

type countingEmbedder struct {
	calls int
	err   error
}

func (c *countingEmbedder) Dimension() int { return 2 }

func (c *countingEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	c.calls++
	if c.err != nil {
		return nil, c.err
	}
	return []float32{float32(len(text)), 1}, nil
}

func TestCachedMemoizes(t *testing.T) {
	inner := &countingEmbedder{}
	c := NewCached(inner, NewMemoryCache(10), "test", logger.Nop())
	ctx := context.Background()

	first, err := c.Embed(ctx, "go")
	require.NoError(t, err)
	second, err := c.Embed(ctx, "go")
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)

	_, _ = c.Embed(ctx, "rust")
	assert.Equal(t, 2, inner.calls)
}

func TestCachedPropagatesProviderError(t *testing.T) {
	inner := &countingEmbedder{err: errors.New("boom")}
	c := NewCached(inner, NewMemoryCache(10), "test", logger.Nop())
	_, err := c.Embed(context.Background(), "go")
	assert.Error(t, err)
}

func TestMemoryCacheEvictsLeastRecentlyUsed(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryCache(2)
	_ = m.Set(ctx, "a", []float32{1})
	_ = m.Set(ctx, "b", []float32{2})
	_, _, _ = m.Get(ctx, "a")
	_ = m.Set(ctx, "c", []float32{3})

	_, ok, _ := m.Get(ctx, "b")
	assert.False(t, ok, "b should have been evicted")
	_, ok, _ = m.Get(ctx, "a")
	assert.True(t, ok)
}

func TestCachedSurvivesUnreachableRedis(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		MaxRetries:  -1,
		DialTimeout: 200 * time.Millisecond,
	})
	defer client.Close()

	inner := &countingEmbedder{}
	c := NewCached(inner, NewRedisCache(client, "test:", time.Minute), "test", logger.Nop())
	vec, err := c.Embed(context.Background(), "go")
	require.NoError(t, err)
	assert.Equal(t, []float32{2, 1}, vec)
}

func TestCacheKeySeparatesModels(t *testing.T) {
	assert.NotEqual(t, cacheKey("openai/a", "go"), cacheKey("openai/b", "go"))
	assert.Equal(t, cacheKey("m", "go"), cacheKey("m", "go"))
	assert.Len(t, cacheKey("m", "go"), 64)
}

func TestNewRejectsMissingKeys(t *testing.T) {
	ctx := context.Background()
	_, err := New(ctx, Options{Provider: "openai", Dimension: 8}, logger.Nop())
	assert.Equal(t, apperr.ReasonNotConfigured, apperr.ReasonOf(err))

	_, err = New(ctx, Options{Provider: "word2vec", Dimension: 8}, logger.Nop())
	assert.Equal(t, apperr.ReasonNotConfigured, apperr.ReasonOf(err))

	e, err := New(ctx, Options{Provider: "hash", Dimension: 8, Cache: "memory"}, logger.Nop())
	require.NoError(t, err)
	assert.Equal(t, 8, e.Dimension())
}
