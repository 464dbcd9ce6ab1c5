package store

import (
	"context"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/skillmap/internal/apperr"
)

var llmCallColumns = []string{
	"created_at", "provider", "model", "purpose", "input_tokens", "output_tokens",
	"latency_ms", "success", "error_message", "request_body", "response_body",
}

type llmCallRepo struct {
	c       conn
	dialect string
}

func (r *llmCallRepo) Append(ctx context.Context, c *LLMCall) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	ins := entsql.Dialect(r.dialect).Insert("llm_calls").
		Columns(llmCallColumns...).
		Values(formatTime(c.CreatedAt), c.Provider, c.Model, c.Purpose, c.InputTokens, c.OutputTokens,
			c.LatencyMs, c.Success, c.ErrorMessage, c.RequestBody, c.ResponseBody)

	if r.dialect == dialect.Postgres {
		ins = ins.Returning("id")
		query, args := ins.Query()
		if err := r.c.QueryRowContext(ctx, query, args...).Scan(&c.ID); err != nil {
			return fmt.Errorf("append llm call: %w", err)
		}
		return nil
	}

	query, args := ins.Query()
	res, err := r.c.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("append llm call: %w", err)
	}
	c.ID, _ = res.LastInsertId()
	return nil
}

// List returns the newest calls first.
func (r *llmCallRepo) List(ctx context.Context, opts QueryOpts) ([]LLMCall, error) {
	b := entsql.Dialect(r.dialect)
	sel := b.Select(append([]string{"id"}, llmCallColumns...)...).
		From(b.Table("llm_calls")).
		OrderBy(entsql.Desc("id"))
	if !opts.From.IsZero() {
		sel = sel.Where(entsql.GTE("created_at", formatTime(opts.From)))
	}
	if opts.Limit > 0 {
		sel = sel.Limit(opts.Limit)
	}
	return r.list(ctx, sel)
}

func (r *llmCallRepo) Get(ctx context.Context, id int64) (*LLMCall, error) {
	b := entsql.Dialect(r.dialect)
	sel := b.Select(append([]string{"id"}, llmCallColumns...)...).
		From(b.Table("llm_calls")).
		Where(entsql.EQ("id", id))
	list, err := r.list(ctx, sel)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperr.NotFound("llm call", fmt.Sprint(id))
	}
	return &list[0], nil
}

func (r *llmCallRepo) list(ctx context.Context, sel *entsql.Selector) ([]LLMCall, error) {
	query, args := sel.Query()
	rows, err := r.c.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query llm calls: %w", err)
	}
	defer rows.Close()

	var out []LLMCall
	for rows.Next() {
		var (
			c         LLMCall
			createdAt string
		)
		if err := rows.Scan(&c.ID, &createdAt, &c.Provider, &c.Model, &c.Purpose, &c.InputTokens,
			&c.OutputTokens, &c.LatencyMs, &c.Success, &c.ErrorMessage, &c.RequestBody, &c.ResponseBody); err != nil {
			return nil, fmt.Errorf("scan llm call: %w", err)
		}
		c.CreatedAt = parseTime(createdAt)
		out = append(out, c)
	}
	return out, rows.Err()
}
