package embedding

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"unicode"
)

// Hash is a deterministic feature-hashing embedder. Word tokens and
// character trigrams are hashed into buckets with a sign bit, then the
// vector is scaled to unit length. Texts sharing vocabulary land close
// together, which is enough for tests and offline use.
type Hash struct {
	dim int
}

func NewHash(dim int) *Hash {
	if dim <= 0 {
		dim = 256
	}
	return &Hash{dim: dim}
}

func (h *Hash) Dimension() int { return h.dim }

func (h *Hash) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float64, h.dim)
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '+' && r != '#'
	})
	for _, w := range words {
		h.add(vec, "w:"+w, 1)
		padded := []rune(" " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			h.add(vec, "t:"+string(padded[i:i+3]), 0.5)
		}
	}

	var norm float64
	for _, v := range vec {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	out := make([]float32, h.dim)
	if norm == 0 {
		return out, nil
	}
	for i, v := range vec {
		out[i] = float32(v / norm)
	}
	return out, nil
}

func (h *Hash) add(vec []float64, feature string, weight float64) {
	f := fnv.New64a()
	_, _ = f.Write([]byte(feature))
	sum := f.Sum64()
	idx := int(sum % uint64(h.dim))
	if sum&(1<<63) != 0 {
		weight = -weight
	}
	vec[idx] += weight
}
