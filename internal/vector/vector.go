// Package vector holds skill embeddings and answers nearest-neighbour
// queries by cosine similarity.
package vector

import (
	"context"
	"math"
)

// Epsilon keeps cosine and weighted means finite for zero vectors.
const Epsilon = 1e-8

type Match struct {
	ID       string         `json:"id"`
	Score    float64        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Store is a key to embedding index. Query returns matches ordered by
// descending cosine similarity; filter is metadata equality and may be nil.
type Store interface {
	Upsert(ctx context.Context, id string, vec []float32, metadata map[string]any) error
	Fetch(ctx context.Context, id string) ([]float32, bool, error)
	Query(ctx context.Context, vec []float32, topK int, filter map[string]any) ([]Match, error)
	Delete(ctx context.Context, id string) error
}

// Cosine returns dot(a,b) / (|a||b| + Epsilon). It is 0 when either
// vector is empty or the lengths differ.
func Cosine(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	return dot / (math.Sqrt(na)*math.Sqrt(nb) + Epsilon)
}

func matchesFilter(metadata, filter map[string]any) bool {
	for k, want := range filter {
		got, ok := metadata[k]
		if !ok || got != want {
			return false
		}
	}
	return true
}

func cloneMetadata(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
