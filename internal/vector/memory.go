package vector

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
)

type entry struct {
	vec      []float32
	metadata map[string]any
}

// Memory is an in-process Store.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

func (m *Memory) Upsert(_ context.Context, id string, vec []float32, metadata map[string]any) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return fmt.Errorf("vector id is required")
	}
	if len(vec) == 0 {
		return fmt.Errorf("vector %q has empty values", id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[id] = entry{vec: append([]float32(nil), vec...), metadata: cloneMetadata(metadata)}
	return nil
}

func (m *Memory) Fetch(_ context.Context, id string) ([]float32, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, false, nil
	}
	return append([]float32(nil), e.vec...), true, nil
}

func (m *Memory) Query(_ context.Context, vec []float32, topK int, filter map[string]any) ([]Match, error) {
	if len(vec) == 0 {
		return nil, fmt.Errorf("query vector required")
	}
	if topK <= 0 {
		topK = 10
	}

	m.mu.RLock()
	out := make([]Match, 0, len(m.entries))
	for id, e := range m.entries {
		if !matchesFilter(e.metadata, filter) {
			continue
		}
		out = append(out, Match{ID: id, Score: Cosine(vec, e.vec), Metadata: cloneMetadata(e.metadata)})
	}
	m.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len reports the number of stored vectors.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
