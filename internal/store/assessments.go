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

var assessmentColumns = []string{
	"id", "employee_id", "skill_id", "questions", "answers", "correct_answers",
	"score", "difficulty_level", "readiness_score", "status",
	"estimated_duration_minutes", "created_at", "completed_at",
}

type assessmentRepo struct{ repos }

func (r assessmentRepo) selectAssessments() *entsql.Selector {
	return r.b().Select(assessmentColumns...).From(r.b().Table("assessments"))
}

func (r assessmentRepo) Create(ctx context.Context, a *Assessment) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}
	if a.Status == "" {
		a.Status = StatusPending
	}
	questions, err := encodeJSON(a.Questions)
	if err != nil {
		return fmt.Errorf("encode questions: %w", err)
	}
	correct, err := encodeJSON(a.CorrectAnswers)
	if err != nil {
		return fmt.Errorf("encode correct answers: %w", err)
	}

	ins := r.b().Insert("assessments").
		Columns(assessmentColumns...).
		Values(a.ID, a.EmployeeID, a.SkillID, questions, nil, correct,
			nil, a.DifficultyLevel, a.ReadinessScore, a.Status,
			a.EstimatedDurationMinutes, formatTime(a.CreatedAt), nil)
	if _, err := r.exec(ctx, ins); err != nil {
		return fmt.Errorf("create assessment: %w", err)
	}
	return nil
}

func (r assessmentRepo) Get(ctx context.Context, id string) (*Assessment, error) {
	list, err := r.list(ctx, r.selectAssessments().Where(entsql.EQ("id", id)))
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, apperr.NotFound("assessment", id)
	}
	return &list[0], nil
}

func (r assessmentRepo) ListByEmployee(ctx context.Context, employeeID, skillID string) ([]Assessment, error) {
	pred := entsql.EQ("employee_id", employeeID)
	if skillID != "" {
		pred = entsql.And(pred, entsql.EQ("skill_id", skillID))
	}
	return r.list(ctx, r.selectAssessments().Where(pred).OrderBy(entsql.Desc("created_at")))
}

func (r assessmentRepo) Complete(ctx context.Context, a *Assessment) error {
	answers, err := encodeJSON(a.Answers)
	if err != nil {
		return fmt.Errorf("encode answers: %w", err)
	}
	correct, err := encodeJSON(a.CorrectAnswers)
	if err != nil {
		return fmt.Errorf("encode correct answers: %w", err)
	}
	completedAt := time.Now().UTC()
	if a.CompletedAt != nil {
		completedAt = *a.CompletedAt
	}
	var score any
	if a.Score != nil {
		score = *a.Score
	}

	upd := r.b().Update("assessments").
		Set("answers", answers).
		Set("correct_answers", correct).
		Set("score", score).
		Set("status", StatusCompleted).
		Set("completed_at", formatTime(completedAt)).
		Where(entsql.And(entsql.EQ("id", a.ID), entsql.EQ("status", StatusPending)))
	res, err := r.exec(ctx, upd)
	if err != nil {
		return fmt.Errorf("complete assessment %s: %w", a.ID, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete assessment %s: %w", a.ID, err)
	}
	if n == 0 {
		return apperr.Conflict("assessment %s is already completed", a.ID)
	}
	a.Status = StatusCompleted
	a.CompletedAt = &completedAt
	return nil
}

func (r assessmentRepo) list(ctx context.Context, sel *entsql.Selector) ([]Assessment, error) {
	rows, err := r.query(ctx, sel)
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	var out []Assessment
	for rows.Next() {
		var (
			a                           Assessment
			questions, answers, correct sql.NullString
			score                       sql.NullFloat64
			createdAt                   string
			completedAt                 sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.EmployeeID, &a.SkillID, &questions, &answers, &correct,
			&score, &a.DifficultyLevel, &a.ReadinessScore, &a.Status,
			&a.EstimatedDurationMinutes, &createdAt, &completedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		if err := decodeJSON(questions, &a.Questions); err != nil {
			return nil, fmt.Errorf("decode questions of %s: %w", a.ID, err)
		}
		if err := decodeJSON(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("decode answers of %s: %w", a.ID, err)
		}
		if err := decodeJSON(correct, &a.CorrectAnswers); err != nil {
			return nil, fmt.Errorf("decode correct answers of %s: %w", a.ID, err)
		}
		if score.Valid {
			s := score.Float64
			a.Score = &s
		}
		a.CreatedAt = parseTime(createdAt)
		a.CompletedAt = parseNullTime(completedAt)
		out = append(out, a)
	}
	return out, rows.Err()
}
