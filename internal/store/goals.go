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

var goalColumns = []string{
	"id", "title", "description", "time_horizon_year", "business_unit",
	"priority", "owner_employee_id", "created_at",
}

var requirementColumns = []string{
	"goal_id", "skill_id", "target_level", "importance_weight", "required_by_year", "seq",
}

type goalRepo struct{ repos }

func (r goalRepo) selectGoals() *entsql.Selector {
	return r.b().Select(goalColumns...).From(r.b().Table("goals"))
}

func (r goalRepo) Get(ctx context.Context, id string) (*Goal, error) {
	list, err := r.list(ctx, r.selectGoals().Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperr.NotFound("goal", id)
	}
	return &list[0], nil
}

func (r goalRepo) List(ctx context.Context) ([]Goal, error) {
	return r.list(ctx, r.selectGoals().OrderBy("title"))
}

func (r goalRepo) Upsert(ctx context.Context, g *Goal) error {
	if g.Title == "" {
		return apperr.Validation("goal title is required")
	}
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now().UTC()
	}
	ins := r.b().Insert("goals").
		Columns(goalColumns...).
		Values(g.ID, g.Title, g.Description, g.TimeHorizonYear, g.BusinessUnit,
			g.Priority, nullString(g.OwnerEmployeeID), formatTime(g.CreatedAt)).
		OnConflict(entsql.ConflictColumns("id"), updateExcluded(goalColumns[1:7]))
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert goal %s: %w", g.ID, err)
	}
	return nil
}

func (r goalRepo) Delete(ctx context.Context, id string) error {
	// Requirements go first so the cascade holds without foreign key support.
	if _, err := r.exec(ctx, r.b().Delete("goal_required_skills").Where(entsql.EQ("goal_id", id))); err != nil {
		return fmt.Errorf("delete requirements of goal %s: %w", id, err)
	}
	res, err := r.exec(ctx, r.b().Delete("goals").Where(entsql.EQ("id", id)))
	if err != nil {
		return fmt.Errorf("delete goal %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("goal", id)
	}
	return nil
}

func (r goalRepo) Requirements(ctx context.Context, goalID string) ([]RequiredSkill, error) {
	sel := r.b().Select(requirementColumns[:5]...).
		From(r.b().Table("goal_required_skills")).
		Where(entsql.EQ("goal_id", goalID)).
		OrderBy("seq", "skill_id")
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query requirements: %w", err)
	}
	defer rows.Close()

	var out []RequiredSkill
	for rows.Next() {
		var req RequiredSkill
		if err := rows.Scan(&req.GoalID, &req.SkillID, &req.TargetLevel, &req.ImportanceWeight, &req.RequiredByYear); err != nil {
			return nil, fmt.Errorf("scan requirement: %w", err)
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

// UpsertRequirement validates ranges and keeps the original position of an
// existing requirement.
func (r goalRepo) UpsertRequirement(ctx context.Context, req *RequiredSkill) error {
	if req.TargetLevel < 1 || req.TargetLevel > 5 {
		return apperr.Validation("target_level must be in [1,5], got %d", req.TargetLevel)
	}
	if req.ImportanceWeight < 0 || req.ImportanceWeight > 1 {
		return apperr.Validation("importance_weight must be in [0,1], got %g", req.ImportanceWeight)
	}
	if _, err := r.Get(ctx, req.GoalID); err != nil {
		return err
	}
	if _, err := (skillRepo{r.repos}).Get(ctx, req.SkillID); err != nil {
		return err
	}

	ins := r.b().Insert("goal_required_skills").
		Columns(requirementColumns...).
		Values(req.GoalID, req.SkillID, req.TargetLevel, req.ImportanceWeight, req.RequiredByYear, time.Now().UnixNano()).
		OnConflict(entsql.ConflictColumns("goal_id", "skill_id"), updateExcluded(requirementColumns[2:5]))
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("upsert requirement %s/%s: %w", req.GoalID, req.SkillID, err)
	}
	return nil
}

func (r goalRepo) DeleteRequirement(ctx context.Context, goalID, skillID string) error {
	del := r.b().Delete("goal_required_skills").
		Where(entsql.And(entsql.EQ("goal_id", goalID), entsql.EQ("skill_id", skillID)))
	res, err := r.exec(ctx, del)
	if err != nil {
		return fmt.Errorf("delete requirement: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperr.NotFound("requirement", goalID+"/"+skillID)
	}
	return nil
}

func (r goalRepo) list(ctx context.Context, sel *entsql.Selector) ([]Goal, error) {
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query goals: %w", err)
	}
	defer rows.Close()

	var out []Goal
	for rows.Next() {
		var (
			g         Goal
			owner     sql.NullString
			createdAt string
		)
		if err := rows.Scan(&g.ID, &g.Title, &g.Description, &g.TimeHorizonYear, &g.BusinessUnit,
			&g.Priority, &owner, &createdAt); err != nil {
			return nil, fmt.Errorf("scan goal: %w", err)
		}
		g.OwnerEmployeeID = owner.String
		g.CreatedAt = parseTime(createdAt)
		out = append(out, g)
	}
	return out, rows.Err()
}
