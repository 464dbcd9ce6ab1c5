package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/skillmap/internal/apperr"
)

var moduleColumns = []string{
	"id", "title", "description", "provider", "format", "duration_minutes",
	"difficulty_level", "language", "skills", "content", "is_generated", "created_at",
}

type moduleRepo struct{ repos }

func (r moduleRepo) selectModules() *entsql.Selector {
	return r.b().Select(moduleColumns...).From(r.b().Table("learning_modules"))
}

func (r moduleRepo) Get(ctx context.Context, id string) (*Module, error) {
	list, err := r.list(ctx, r.selectModules().Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperr.NotFound("learning module", id)
	}
	return &list[0], nil
}

// ListBySkill returns modules tagged with skillID ordered by id. Callers
// apply their own difficulty ordering.
func (r moduleRepo) ListBySkill(ctx context.Context, skillID string) ([]Module, error) {
	tagged := r.b().Select("module_id").
		From(r.b().Table("learning_module_skills")).
		Where(entsql.EQ("skill_id", skillID))
	return r.list(ctx, r.selectModules().Where(entsql.In("id", tagged)).OrderBy("id"))
}

func (r moduleRepo) Upsert(ctx context.Context, m *Module) error {
	if m.Title == "" {
		return apperr.Validation("module title is required")
	}
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now().UTC()
	}
	if m.Language == "" {
		m.Language = "en"
	}
	skills, err := encodeJSON(nonNil(m.SkillIDs))
	if err != nil {
		return fmt.Errorf("encode module skills: %w", err)
	}
	var content any
	if m.Content != nil {
		c, err := encodeJSON(m.Content)
		if err != nil {
			return fmt.Errorf("encode module content: %w", err)
		}
		content = c
	}

	var duration, difficulty any
	if m.DurationMinutes != nil {
		duration = *m.DurationMinutes
	}
	if m.Difficulty != nil {
		difficulty = *m.Difficulty
	}

	ins := r.b().Insert("learning_modules").
		Columns(moduleColumns...).
		Values(m.ID, m.Title, m.Description, m.Provider, m.Format, duration,
			difficulty, m.Language, skills, content, m.IsGenerated, formatTime(m.CreatedAt)).
		OnConflict(entsql.ConflictColumns("id"), updateExcluded(moduleColumns[1:11]))
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert module %s: %w", m.ID, err)
	}

	if _, err := r.exec(ctx, r.b().Delete("learning_module_skills").Where(entsql.EQ("module_id", m.ID))); err != nil {
		return fmt.Errorf("clear module skills: %w", err)
	}
	for _, skillID := range m.SkillIDs {
		tag := r.b().Insert("learning_module_skills").
			Columns("module_id", "skill_id").
			Values(m.ID, skillID).
			OnConflict(entsql.ConflictColumns("module_id", "skill_id"), entsql.DoNothing())
		if _, err := r.exec(ctx, tag); err != nil {
			return fmt.Errorf("tag module %s with %s: %w", m.ID, skillID, err)
		}
	}
	return nil
}

func (r moduleRepo) list(ctx context.Context, sel *entsql.Selector) ([]Module, error) {
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query modules: %w", err)
	}
	defer rows.Close()

	var out []Module
	for rows.Next() {
		var (
			m               Module
			duration        sql.NullInt64
			difficulty      sql.NullFloat64
			skills, content sql.NullString
			createdAt       string
		)
		if err := rows.Scan(&m.ID, &m.Title, &m.Description, &m.Provider, &m.Format, &duration,
			&difficulty, &m.Language, &skills, &content, &m.IsGenerated, &createdAt); err != nil {
			return nil, fmt.Errorf("scan module: %w", err)
		}
		if duration.Valid {
			d := int(duration.Int64)
			m.DurationMinutes = &d
		}
		if difficulty.Valid {
			f := difficulty.Float64
			m.Difficulty = &f
		}
		if err := decodeJSON(skills, &m.SkillIDs); err != nil {
			return nil, fmt.Errorf("decode skills of module %s: %w", m.ID, err)
		}
		if content.Valid && content.String != "" {
			m.Content = &ModuleContent{}
			if err := decodeJSON(content, m.Content); err != nil {
				return nil, fmt.Errorf("decode content of module %s: %w", m.ID, err)
			}
		}
		m.CreatedAt = parseTime(createdAt)
		out = append(out, m)
	}
	return out, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
