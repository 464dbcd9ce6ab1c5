package embedding

import (
	"container/list"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/skillmap/internal/logger"
)

// Cache stores vectors by key. A miss is (nil, false, nil).
type Cache interface {
	Get(ctx context.Context, key string) ([]float32, bool, error)
	Set(ctx context.Context, key string, vec []float32) error
}

// Cached memoizes an Embedder. Cache failures degrade to a direct call.
type Cached struct {
	inner Embedder
	cache Cache
	model string
	log   *logger.Logger
}

func NewCached(inner Embedder, cache Cache, model string, log *logger.Logger) *Cached {
	return &Cached{inner: inner, cache: cache, model: model, log: log.With("service", "EmbeddingCache")}
}

func (c *Cached) Dimension() int { return c.inner.Dimension() }

func (c *Cached) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cacheKey(c.model, text)
	vec, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warn("embedding cache read failed", "error", err)
	} else if ok {
		return vec, nil
	}

	vec, err = c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.cache.Set(ctx, key, vec); err != nil {
		c.log.Warn("embedding cache write failed", "error", err)
	}
	return vec, nil
}

func cacheKey(model, text string) string {
	sum := sha256.Sum256([]byte(model + "\x00" + text))
	return hex.EncodeToString(sum[:])
}

// MemoryCache is a bounded LRU.
type MemoryCache struct {
	mu    sync.Mutex
	max   int
	order *list.List
	items map[string]*list.Element
}

type memItem struct {
	key string
	vec []float32
}

func NewMemoryCache(max int) *MemoryCache {
	if max <= 0 {
		max = 1000
	}
	return &MemoryCache{max: max, order: list.New(), items: make(map[string]*list.Element)}
}

func (m *MemoryCache) Get(_ context.Context, key string) ([]float32, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	el, ok := m.items[key]
	if !ok {
		return nil, false, nil
	}
	m.order.MoveToFront(el)
	return el.Value.(*memItem).vec, true, nil
}

func (m *MemoryCache) Set(_ context.Context, key string, vec []float32) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if el, ok := m.items[key]; ok {
		el.Value.(*memItem).vec = vec
		m.order.MoveToFront(el)
		return nil
	}
	m.items[key] = m.order.PushFront(&memItem{key: key, vec: vec})
	for m.order.Len() > m.max {
		last := m.order.Back()
		m.order.Remove(last)
		delete(m.items, last.Value.(*memItem).key)
	}
	return nil
}

// RedisCache keeps vectors as JSON strings under prefix+key.
type RedisCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, prefix string, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl}
}

func (r *RedisCache) Get(ctx context.Context, key string) ([]float32, bool, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, false, err
	}
	return vec, true, nil
}

func (r *RedisCache) Set(ctx context.Context, key string, vec []float32) error {
	data, err := json.Marshal(vec)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, data, r.ttl).Err()
}
