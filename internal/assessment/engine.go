// Package assessment generates calibrated multiple-choice assessments,
// grades submissions and feeds the results into employee profiles.
package assessment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/skillmap/internal/apperr"
	"github.com/abhisek/skillmap/internal/irt"
	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/oracle"
	"github.com/abhisek/skillmap/internal/store"
)

// Engine generates, grades and reconciles skill assessments.
type Engine struct {
	db     store.Gateway
	oracle oracle.ContentOracle
	log    *logger.Logger
	now    func() time.Time
}

// NewEngine creates an Engine. Oracle calls are made outside any
// database transaction.
func NewEngine(db store.Gateway, o oracle.ContentOracle, log *logger.Logger) *Engine {
	return &Engine{
		db:     db,
		oracle: o,
		log:    log.With("service", "AssessmentEngine"),
		now:    time.Now,
	}
}

// Generate creates a pending assessment for one skill. The question
// oracle is called outside of any transaction.
func (e *Engine) Generate(ctx context.Context, in GenerateInput) (*GenerateResult, error) {
	if in.NumQuestions == 0 {
		in.NumQuestions = DefaultNumQuestions
	}
	if in.NumQuestions < 1 || in.NumQuestions > MaxNumQuestions {
		return nil, apperr.Validation("num_questions must be in [1,%d], got %d", MaxNumQuestions, in.NumQuestions)
	}
	if in.ReadinessScore != nil && (*in.ReadinessScore < 0 || *in.ReadinessScore > 1) {
		return nil, apperr.Validation("readiness_score must be in [0,1], got %g", *in.ReadinessScore)
	}

	if in.SkillName == "" || in.SkillDescription == "" {
		skill, err := e.db.Skills().Get(ctx, in.SkillID)
		if err != nil {
			return nil, err
		}
		if in.SkillName == "" {
			in.SkillName = skill.Name
		}
		if in.SkillDescription == "" {
			in.SkillDescription = skill.Description
		}
	}

	emp, err := e.db.Employees().Get(ctx, in.EmployeeID)
	if err != nil {
		return nil, err
	}

	var readiness float64
	if in.ReadinessScore != nil {
		readiness = *in.ReadinessScore
	} else {
		entry, ok := emp.Profile[in.SkillID]
		if !ok {
			entry = irt.NewEntry()
		}
		readiness = irt.Readiness(entry.Theta)
	}
	base, band := DifficultyBand(readiness)

	questions, err := e.oracle.GenerateQuestions(ctx, oracle.QuestionRequest{
		SkillName:        in.SkillName,
		SkillDescription: in.SkillDescription,
		NumQuestions:     in.NumQuestions,
		MinDifficulty:    band.Min,
		MaxDifficulty:    band.Max,
	})
	if err != nil {
		return nil, fmt.Errorf("generate questions for %s: %w", in.SkillName, err)
	}
	for i, q := range questions {
		if err := checkQuestion(i, q); err != nil {
			return nil, err
		}
	}

	questions = dedupe(questions)
	if len(questions) > in.NumQuestions {
		questions = questions[:in.NumQuestions]
	}
	degraded := len(questions) < in.NumQuestions
	if degraded {
		e.log.Warn("fewer unique questions than requested",
			"skill_id", in.SkillID, "requested", in.NumQuestions, "generated", len(questions))
	}

	correct := make(map[string]string, len(questions))
	difficulty := base
	if len(questions) > 0 {
		var sum float64
		for _, q := range questions {
			correct[q.ID] = q.CorrectAnswerID
			sum += q.Difficulty
		}
		difficulty = sum / float64(len(questions))
	}

	a := &store.Assessment{
		EmployeeID:               in.EmployeeID,
		SkillID:                  in.SkillID,
		Questions:                questions,
		CorrectAnswers:           correct,
		DifficultyLevel:          difficulty,
		ReadinessScore:           readiness,
		Status:                   store.StatusPending,
		EstimatedDurationMinutes: estimatedMinutes(in.NumQuestions),
		CreatedAt:                e.now().UTC(),
	}
	if err := e.db.Assessments().Create(ctx, a); err != nil {
		return nil, err
	}
	e.log.Info("assessment generated", "assessment_id", a.ID, "employee_id", in.EmployeeID,
		"skill_id", in.SkillID, "questions", len(questions), "readiness", readiness)

	return &GenerateResult{
		Assessment:     redact(a),
		BaseDifficulty: base,
		Band:           band,
		Requested:      in.NumQuestions,
		Generated:      len(questions),
		Degraded:       degraded,
	}, nil
}

// Get returns the assessment, hiding answers and explanations while it is
// still pending.
func (e *Engine) Get(ctx context.Context, id string) (*store.Assessment, error) {
	a, err := e.db.Assessments().Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return redact(a), nil
}

// History lists an employee's assessments newest first. skillID may be
// empty.
func (e *Engine) History(ctx context.Context, employeeID, skillID string) ([]store.Assessment, error) {
	if _, err := e.db.Employees().Get(ctx, employeeID); err != nil {
		return nil, err
	}
	list, err := e.db.Assessments().ListByEmployee(ctx, employeeID, skillID)
	if err != nil {
		return nil, err
	}
	for i := range list {
		list[i] = *redact(&list[i])
	}
	return list, nil
}

// Submit grades answers and completes the assessment. The status change
// and the profile write share one transaction, and the status change only
// applies to a pending row, so a second submission fails with a conflict
// and leaves the profile alone.
func (e *Engine) Submit(ctx context.Context, id, employeeID string, answers map[string]string) (*SubmitResult, error) {
	var result *SubmitResult
	err := e.db.Transaction(ctx, func(r store.Repos) error {
		a, err := r.Assessments().Get(ctx, id)
		if err != nil {
			return err
		}
		if a.EmployeeID != employeeID {
			return apperr.Authorization("assessment %s does not belong to employee %s", id, employeeID)
		}
		if a.Status == store.StatusCompleted {
			return apperr.Conflict("assessment %s is already completed", id)
		}
		if len(a.Questions) == 0 {
			return apperr.Validation("assessment %s has no questions", id)
		}

		emp, err := r.Employees().Get(ctx, employeeID)
		if err != nil {
			return err
		}

		res, profile := grade(a, emp.Profile, answers)

		now := e.now().UTC()
		a.Answers = answers
		a.CorrectAnswers = correctMap(a.Questions)
		a.Score = &res.ProficiencyScore
		a.CompletedAt = &now
		if err := r.Assessments().Complete(ctx, a); err != nil {
			return err
		}
		if err := r.Employees().SaveProfile(ctx, employeeID, profile); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
		result = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.log.Info("assessment submitted", "assessment_id", id, "employee_id", employeeID,
		"percentage", result.PercentageCorrect, "proficiency", result.UpdatedProficiency)
	return result, nil
}

// grade scores the answers and returns the updated profile.
func grade(a *store.Assessment, profile store.Profile, answers map[string]string) (*SubmitResult, store.Profile) {
	alpha := irt.DefaultAlpha
	if entry, ok := profile[a.SkillID]; ok && entry.Alpha > 0 {
		alpha = entry.Alpha
	}

	res := &SubmitResult{AssessmentID: a.ID, SkillID: a.SkillID, Total: len(a.Questions)}
	batch := make([]irt.SkillResponse, 0, len(a.Questions))
	for _, q := range a.Questions {
		submitted := answers[q.ID]
		ok := strings.EqualFold(strings.TrimSpace(submitted), strings.TrimSpace(q.CorrectAnswerID))
		if ok {
			res.CorrectCount++
		}
		res.Feedback = append(res.Feedback, Feedback{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			Submitted:    submitted,
			Correct:      q.CorrectAnswerID,
			IsCorrect:    ok,
			Explanation:  q.Explanation,
			Difficulty:   q.Difficulty,
		})
		batch = append(batch, irt.SkillResponse{
			SkillID:  a.SkillID,
			Response: irt.Response{Alpha: alpha, Difficulty: q.Difficulty, Correct: ok},
		})
	}

	res.PercentageCorrect = 100 * float64(res.CorrectCount) / float64(res.Total)
	res.ProficiencyScore = ScoreFromPercentage(res.PercentageCorrect)

	updated, _ := irt.ApplyBatch(profile, batch)
	next := updated[a.SkillID]
	res.Theta = next.Theta
	res.IRTLevel = next.Level
	res.UpdatedProficiency = Reconcile(res.PercentageCorrect, res.ProficiencyScore, next.Level)

	next.Level = res.UpdatedProficiency
	updated[a.SkillID] = next
	return res, updated
}

func correctMap(qs []store.Question) map[string]string {
	out := make(map[string]string, len(qs))
	for _, q := range qs {
		out[q.ID] = q.CorrectAnswerID
	}
	return out
}

func redact(a *store.Assessment) *store.Assessment {
	if a.Status != store.StatusPending {
		return a
	}
	cp := *a
	cp.CorrectAnswers = nil
	cp.Questions = make([]store.Question, len(a.Questions))
	for i, q := range a.Questions {
		q.CorrectAnswerID = ""
		q.Explanation = ""
		cp.Questions[i] = q
	}
	return &cp
}
