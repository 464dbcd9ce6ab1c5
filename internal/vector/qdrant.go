package vector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/abhisek/skillmap/internal/apperr"
	"github.com/abhisek/skillmap/internal/logger"
)

const (
	payloadIDKey      = "_skillmap_id"
	maxErrorBodyBytes = 1024
)

var pointNamespace = uuid.MustParse("6f2c8a53-2d6e-4b8e-9a51-4c1f3e7d9b20")

type QdrantConfig struct {
	URL        string
	Collection string
	APIKey     string
	Dimension  int
	Timeout    time.Duration
}

// Qdrant is a Store backed by a Qdrant collection over its REST API.
// Point ids are UUIDv5 digests of the caller's id; the caller's id is kept
// in the payload.
type Qdrant struct {
	log     *logger.Logger
	cfg     QdrantConfig
	baseURL string
	http    *http.Client
}

type qdrantEnvelope struct {
	Result json.RawMessage `json:"result"`
	Status json.RawMessage `json:"status"`
}

type qdrantPoint struct {
	ID      json.RawMessage `json:"id"`
	Score   float64         `json:"score"`
	Payload map[string]any  `json:"payload"`
	Vector  []float32       `json:"vector"`
}

func NewQdrant(log *logger.Logger, cfg QdrantConfig) (*Qdrant, error) {
	if strings.TrimSpace(cfg.URL) == "" {
		return nil, apperr.Unavailable(apperr.ReasonNotConfigured, "qdrant url is not configured", nil)
	}
	if cfg.Collection == "" {
		cfg.Collection = "skills"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Qdrant{
		log:     log.With("service", "QdrantVectorStore"),
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.URL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// EnsureCollection creates the collection with cosine distance when it
// does not exist yet.
func (q *Qdrant) EnsureCollection(ctx context.Context) error {
	err := q.doJSON(ctx, http.MethodGet, q.collectionPath(""), nil, nil)
	if err == nil {
		return nil
	}
	var se *statusError
	if !errors.As(err, &se) || se.code != http.StatusNotFound {
		return err
	}
	req := map[string]any{
		"vectors": map[string]any{"size": q.cfg.Dimension, "distance": "Cosine"},
	}
	if err := q.doJSON(ctx, http.MethodPut, q.collectionPath(""), req, nil); err != nil {
		return err
	}
	q.log.Info("qdrant collection created", "collection", q.cfg.Collection, "dimension", q.cfg.Dimension)
	return nil
}

func (q *Qdrant) Upsert(ctx context.Context, id string, vec []float32, metadata map[string]any) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return apperr.Validation("vector id is required")
	}
	if q.cfg.Dimension > 0 && len(vec) != q.cfg.Dimension {
		return apperr.Validation("vector %q dimension mismatch: expected=%d got=%d", id, q.cfg.Dimension, len(vec))
	}
	payload := cloneMetadata(metadata)
	payload[payloadIDKey] = id
	req := map[string]any{
		"points": []map[string]any{{
			"id":      pointID(id),
			"vector":  vec,
			"payload": payload,
		}},
	}
	return q.doJSON(ctx, http.MethodPut, q.collectionPath("/points?wait=true"), req, nil)
}

func (q *Qdrant) Fetch(ctx context.Context, id string) ([]float32, bool, error) {
	req := map[string]any{
		"ids":          []string{pointID(id)},
		"with_vector":  true,
		"with_payload": false,
	}
	var points []qdrantPoint
	if err := q.doJSON(ctx, http.MethodPost, q.collectionPath("/points"), req, &points); err != nil {
		return nil, false, err
	}
	if len(points) == 0 || len(points[0].Vector) == 0 {
		return nil, false, nil
	}
	return points[0].Vector, true, nil
}

func (q *Qdrant) Query(ctx context.Context, vec []float32, topK int, filter map[string]any) ([]Match, error) {
	if len(vec) == 0 {
		return nil, apperr.Validation("query vector required")
	}
	if topK <= 0 {
		topK = 10
	}
	req := map[string]any{
		"vector":       vec,
		"limit":        topK,
		"with_payload": true,
		"with_vector":  false,
	}
	if len(filter) > 0 {
		req["filter"] = translateFilter(filter)
	}

	var points []qdrantPoint
	if err := q.doJSON(ctx, http.MethodPost, q.collectionPath("/points/search"), req, &points); err != nil {
		return nil, err
	}

	out := make([]Match, 0, len(points))
	for _, p := range points {
		id, _ := p.Payload[payloadIDKey].(string)
		if id == "" {
			continue
		}
		meta := cloneMetadata(p.Payload)
		delete(meta, payloadIDKey)
		out = append(out, Match{ID: id, Score: p.Score, Metadata: meta})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score == out[j].Score {
			return out[i].ID < out[j].ID
		}
		return out[i].Score > out[j].Score
	})
	return out, nil
}

func (q *Qdrant) Delete(ctx context.Context, id string) error {
	req := map[string]any{"points": []string{pointID(id)}}
	return q.doJSON(ctx, http.MethodPost, q.collectionPath("/points/delete?wait=true"), req, nil)
}

type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("qdrant http status=%d body=%q", e.code, e.body)
}

func (q *Qdrant) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		var buf bytes.Buffer
		if err := json.NewEncoder(&buf).Encode(in); err != nil {
			return fmt.Errorf("encode qdrant request: %w", err)
		}
		body = &buf
	}

	req, err := http.NewRequestWithContext(ctx, method, q.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build qdrant request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if q.cfg.APIKey != "" {
		req.Header.Set("api-key", q.cfg.APIKey)
	}

	resp, err := q.http.Do(req)
	if err != nil {
		return apperr.Unavailable(apperr.ReasonCallFailed, "qdrant request failed", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 64*maxErrorBodyBytes))
	if err != nil {
		return apperr.Unavailable(apperr.ReasonCallFailed, "read qdrant response", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		se := &statusError{code: resp.StatusCode, body: truncate(raw)}
		if resp.StatusCode == http.StatusNotFound {
			return se
		}
		return apperr.Unavailable(apperr.ReasonCallFailed, "qdrant rejected the request", se)
	}

	var env qdrantEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return apperr.Unavailable(apperr.ReasonMalformedResponse, "decode qdrant envelope", err)
	}
	if msg := envelopeStatus(env.Status); msg != "" {
		return apperr.Unavailable(apperr.ReasonCallFailed, msg, nil)
	}
	if out == nil || len(env.Result) == 0 || string(env.Result) == "null" {
		return nil
	}
	if err := json.Unmarshal(env.Result, out); err != nil {
		return apperr.Unavailable(apperr.ReasonMalformedResponse, "decode qdrant result", err)
	}
	return nil
}

func (q *Qdrant) collectionPath(suffix string) string {
	return "/collections/" + q.cfg.Collection + suffix
}

func pointID(id string) string {
	return uuid.NewSHA1(pointNamespace, []byte(id)).String()
}

func translateFilter(filter map[string]any) map[string]any {
	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	must := make([]any, 0, len(keys))
	for _, k := range keys {
		must = append(must, map[string]any{
			"key":   k,
			"match": map[string]any{"value": filter[k]},
		})
	}
	return map[string]any{"must": must}
}

func envelopeStatus(raw json.RawMessage) string {
	status := strings.TrimSpace(string(raw))
	if status == "" || status == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.EqualFold(s, "ok") {
			return ""
		}
		return fmt.Sprintf("qdrant status=%q", s)
	}
	var obj struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Error != "" {
		return obj.Error
	}
	return "qdrant status=" + status
}

func truncate(raw []byte) string {
	if len(raw) <= maxErrorBodyBytes {
		return string(raw)
	}
	return string(raw[:maxErrorBodyBytes]) + "..."
}
