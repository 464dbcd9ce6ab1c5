package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/abhisek/skillmap/internal/apperr"
)

var skillColumns = []string{
	"id", "name", "category", "domain", "description",
	"parent_skill_id", "is_future_skill", "created_at",
}

type skillRepo struct{ repos }

func (r skillRepo) selectSkills() *entsql.Selector {
	return r.b().Select(skillColumns...).From(r.b().Table("skills"))
}

func (r skillRepo) Get(ctx context.Context, id string) (*Skill, error) {
	list, err := r.list(ctx, r.selectSkills().Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperr.NotFound("skill", id)
	}
	return &list[0], nil
}

// GetByName matches names case-insensitively.
func (r skillRepo) GetByName(ctx context.Context, name string) (*Skill, error) {
	all, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if strings.EqualFold(strings.TrimSpace(all[i].Name), strings.TrimSpace(name)) {
			return &all[i], nil
		}
	}
	return nil, apperr.NotFound("skill", name)
}

func (r skillRepo) List(ctx context.Context) ([]Skill, error) {
	return r.list(ctx, r.selectSkills().OrderBy("name"))
}

func (r skillRepo) Upsert(ctx context.Context, s *Skill) error {
	if strings.TrimSpace(s.Name) == "" {
		return apperr.Validation("skill name is required")
	}
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	ins := r.b().Insert("skills").
		Columns(skillColumns...).
		Values(s.ID, s.Name, s.Category, s.Domain, s.Description,
			nullString(s.ParentSkillID), s.IsFutureSkill, formatTime(s.CreatedAt)).
		OnConflict(entsql.ConflictColumns("id"), updateExcluded(skillColumns[1:7]))
	if _, err := r.exec(ctx, ins); err != nil {
		if isUniqueViolation(err) {
			return apperr.Conflict("skill %q already exists", s.Name)
		}
		return fmt.Errorf("upsert skill %s: %w", s.ID, err)
	}
	return nil
}

func (r skillRepo) Delete(ctx context.Context, id string) error {
	res, err := r.exec(ctx, r.b().Delete("skills").Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete skill %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("skill", id)
	}
	return nil
}

func (r skillRepo) list(ctx context.Context, sel *entsql.Selector) ([]Skill, error) {
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query skills: %w", err)
	}
	defer rows.Close()

	var out []Skill
	for rows.Next() {
		var (
			s         Skill
			parent    sql.NullString
			createdAt string
		)
		if err := rows.Scan(&s.ID, &s.Name, &s.Category, &s.Domain, &s.Description,
			&parent, &s.IsFutureSkill, &createdAt); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		s.ParentSkillID = parent.String
		s.CreatedAt = parseTime(createdAt)
		out = append(out, s)
	}
	return out, rows.Err()
}

func isUniqueViolation(err error) bool {
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || strings.Contains(msg, "duplicate key")
}
