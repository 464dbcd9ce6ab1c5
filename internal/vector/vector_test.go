package vector

import (
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillmap/internal/apperr"
	"github.com/abhisek/skillmap/internal/logger"
)

func TestCosine(t *testing.T) {
	tests := []struct {
		name string
		a, b []float32
		want float64
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"scaled", []float32{1, 0}, []float32{5, 0}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 1}, []float32{-1, -1}, -1},
		{"empty", nil, []float32{1}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 1}, 0},
		{"length mismatch", []float32{1}, []float32{1, 1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Cosine(tt.a, tt.b)
			if math.Abs(got-tt.want) > 1e-6 {
				t.Errorf("Cosine = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMemoryQueryOrder(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Upsert(ctx, "b", []float32{1, 0}, map[string]any{"category": "tech"}))
	require.NoError(t, m.Upsert(ctx, "a", []float32{1, 0}, map[string]any{"category": "tech"}))
	require.NoError(t, m.Upsert(ctx, "c", []float32{0, 1}, map[string]any{"category": "soft"}))

	got, err := m.Query(ctx, []float32{1, 0.1}, 10, nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID, "ties break by id")
	assert.Equal(t, "b", got[1].ID)
	assert.Equal(t, "c", got[2].ID)

	got, err = m.Query(ctx, []float32{1, 0}, 1, map[string]any{"category": "soft"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c", got[0].ID)
}

func TestMemoryFetchDelete(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()
	require.NoError(t, m.Upsert(ctx, "x", []float32{0.5, 0.5}, nil))

	vec, ok, err := m.Fetch(ctx, "x")
	require.NoError(t, err)
	require.True(t, ok)
	vec[0] = 9 // callers get a copy
	again, _, _ := m.Fetch(ctx, "x")
	assert.Equal(t, float32(0.5), again[0])

	require.NoError(t, m.Delete(ctx, "x"))
	_, ok, err = m.Fetch(ctx, "x")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Error(t, m.Upsert(ctx, "", []float32{1}, nil))
}

// fakeQdrant records requests and serves a tiny subset of the REST API.
type fakeQdrant struct {
	mu       sync.Mutex
	requests []string
	points   map[string]map[string]any
	exists   bool
}

func (f *fakeQdrant) handler(t *testing.T) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		f.requests = append(f.requests, r.Method+" "+r.URL.Path)

		body, _ := io.ReadAll(r.Body)
		var req map[string]any
		_ = json.Unmarshal(body, &req)

		reply := func(result any) {
			_ = json.NewEncoder(w).Encode(map[string]any{"result": result, "status": "ok", "time": 0.001})
		}
		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/collections/skills":
			if !f.exists {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"status":{"error":"Not found"}}`))
				return
			}
			reply(map[string]any{})
		case r.Method == http.MethodPut && r.URL.Path == "/collections/skills":
			f.exists = true
			reply(true)
		case r.Method == http.MethodPut && r.URL.Path == "/collections/skills/points":
			for _, p := range req["points"].([]any) {
				pt := p.(map[string]any)
				f.points[pt["id"].(string)] = pt
			}
			reply(map[string]any{"status": "completed"})
		case r.Method == http.MethodPost && r.URL.Path == "/collections/skills/points":
			var out []any
			for _, id := range req["ids"].([]any) {
				if pt, ok := f.points[id.(string)]; ok {
					out = append(out, map[string]any{"id": id, "vector": pt["vector"]})
				}
			}
			reply(out)
		case r.Method == http.MethodPost && r.URL.Path == "/collections/skills/points/search":
			var out []any
			for id, pt := range f.points {
				out = append(out, map[string]any{"id": id, "score": 0.9, "payload": pt["payload"]})
			}
			reply(out)
		default:
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
			w.WriteHeader(http.StatusBadRequest)
		}
	})
}

func TestQdrantRoundTrip(t *testing.T) {
	fake := &fakeQdrant{points: map[string]map[string]any{}}
	srv := httptest.NewServer(fake.handler(t))
	defer srv.Close()

	q, err := NewQdrant(logger.Nop(), QdrantConfig{URL: srv.URL, Collection: "skills", Dimension: 2})
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, q.EnsureCollection(ctx))
	require.NoError(t, q.Upsert(ctx, "skill-1", []float32{1, 0}, map[string]any{"name": "Go"}))

	vec, ok, err := q.Fetch(ctx, "skill-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 0}, vec)

	matches, err := q.Query(ctx, []float32{1, 0}, 1, nil)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "skill-1", matches[0].ID)
	assert.Equal(t, "Go", matches[0].Metadata["name"])
	_, leaked := matches[0].Metadata[payloadIDKey]
	assert.False(t, leaked)

	assert.Equal(t, []string{
		"GET /collections/skills",
		"PUT /collections/skills",
		"PUT /collections/skills/points",
		"POST /collections/skills/points",
		"POST /collections/skills/points/search",
	}, fake.requests)
}

func TestQdrantDimensionMismatch(t *testing.T) {
	q, err := NewQdrant(logger.Nop(), QdrantConfig{URL: "http://unused", Dimension: 3})
	require.NoError(t, err)
	err = q.Upsert(context.Background(), "s", []float32{1}, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestQdrantServerErrorIsUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(strings.Repeat("x", 10)))
	}))
	defer srv.Close()

	q, err := NewQdrant(logger.Nop(), QdrantConfig{URL: srv.URL})
	require.NoError(t, err)
	_, err = q.Query(context.Background(), []float32{1}, 1, nil)
	require.Error(t, err)
	assert.Equal(t, apperr.KindDependencyUnavailable, apperr.KindOf(err))
	assert.Equal(t, apperr.ReasonCallFailed, apperr.ReasonOf(err))
}

func TestQdrantNotConfigured(t *testing.T) {
	_, err := NewQdrant(logger.Nop(), QdrantConfig{})
	assert.Equal(t, apperr.ReasonNotConfigured, apperr.ReasonOf(err))
}

func TestTranslateFilter(t *testing.T) {
	got := translateFilter(map[string]any{"domain": "cloud", "category": "tech"})
	raw, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, `{"must":[
		{"key":"category","match":{"value":"tech"}},
		{"key":"domain","match":{"value":"cloud"}}
	]}`, string(raw))
}
