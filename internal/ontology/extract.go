package ontology

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/skillmap/internal/irt"
	"github.com/abhisek/skillmap/internal/oracle"
	"github.com/abhisek/skillmap/internal/store"
)

const reindexConcurrency = 4

// ExtractForGoal asks the oracle which skills the goal needs and attaches
// each as a requirement. A skill that fails is logged and skipped; the
// count of attached skills is returned.
func (m *Matcher) ExtractForGoal(ctx context.Context, goalID string) (int, error) {
	goal, err := m.db.Goals().Get(ctx, goalID)
	if err != nil {
		return 0, err
	}
	reqs, err := m.oracle.ExtractGoalSkills(ctx, oracle.GoalContext{
		Title:           goal.Title,
		Description:     goal.Description,
		TimeHorizonYear: goal.TimeHorizonYear,
		BusinessUnit:    goal.BusinessUnit,
	})
	if err != nil {
		return 0, fmt.Errorf("extract skills for goal %s: %w", goalID, err)
	}

	n := 0
	for _, r := range reqs {
		if err := m.attach(ctx, goal, r); err != nil {
			m.log.Warn("skipping extracted skill", "goal_id", goalID, "skill", r.Name, "error", err)
			continue
		}
		n++
	}
	m.log.Info("goal skills extracted", "goal_id", goalID, "extracted", len(reqs), "attached", n)
	return n, nil
}

func (m *Matcher) attach(ctx context.Context, goal *store.Goal, r oracle.SkillRequirement) error {
	year := r.RequiredByYear
	if year == 0 {
		year = goal.TimeHorizonYear
	}
	match, err := m.Resolve(ctx, SkillDraft{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Domain:      r.Domain,
		Future:      year > time.Now().Year(),
	}, m.goalThreshold)
	if err != nil {
		return err
	}
	return m.db.Goals().UpsertRequirement(ctx, &store.RequiredSkill{
		GoalID:           goal.ID,
		SkillID:          match.Skill.ID,
		TargetLevel:      r.TargetLevel,
		ImportanceWeight: r.ImportanceWeight,
		RequiredByYear:   year,
	})
}

// ExtractForEmployee seeds the employee's profile from skills the oracle
// finds in their role and description. Existing entries are only ever
// raised. Returns the number of skills applied.
func (m *Matcher) ExtractForEmployee(ctx context.Context, employeeID string) (int, error) {
	emp, err := m.db.Employees().Get(ctx, employeeID)
	if err != nil {
		return 0, err
	}
	found, err := m.oracle.ExtractEmployeeSkills(ctx, oracle.EmployeeContext{
		Name:        emp.Name,
		Role:        emp.Role,
		Description: emp.Description,
	})
	if err != nil {
		return 0, fmt.Errorf("extract skills for employee %s: %w", employeeID, err)
	}

	profile := emp.Profile.Clone()
	n := 0
	for _, s := range found {
		match, err := m.Resolve(ctx, SkillDraft{
			Name:        s.Name,
			Description: s.Description,
			Category:    s.Category,
			Domain:      s.Domain,
		}, m.employeeThreshold)
		if err != nil {
			m.log.Warn("skipping extracted skill", "employee_id", employeeID, "skill", s.Name, "error", err)
			continue
		}
		id := match.Skill.ID
		if entry, ok := profile[id]; !ok {
			profile[id] = irt.EntryFromLevel(s.Proficiency)
		} else if s.Proficiency > entry.Level {
			// Theta moves with the level; the fitted alpha is kept.
			raised := irt.EntryFromLevel(s.Proficiency)
			raised.Alpha = entry.Alpha
			profile[id] = raised
		}
		n++
	}
	if n > 0 {
		if err := m.db.Employees().SaveProfile(ctx, employeeID, profile); err != nil {
			return 0, fmt.Errorf("save profile: %w", err)
		}
	}
	m.log.Info("employee skills extracted", "employee_id", employeeID, "extracted", len(found), "applied", n)
	return n, nil
}

// GoalExtraction reports the goals created from free text. Heuristic is
// set when the oracle failed and goals were split from the text instead.
type GoalExtraction struct {
	Goals     []store.Goal `json:"goals"`
	Heuristic bool         `json:"heuristic"`
}

// ExtractGoals creates goals from a strategy document.
func (m *Matcher) ExtractGoals(ctx context.Context, text, ownerID string) (*GoalExtraction, error) {
	out := &GoalExtraction{Goals: []store.Goal{}}
	drafts, err := m.oracle.ExtractGoals(ctx, text)
	if err != nil {
		m.log.Warn("goal extraction fell back to heuristic", "error", err)
		drafts = oracle.HeuristicGoals(text, time.Now().Year()+1)
		out.Heuristic = true
	}
	for _, d := range drafts {
		g := store.Goal{
			Title:           d.Title,
			Description:     d.Description,
			TimeHorizonYear: d.TimeHorizonYear,
			BusinessUnit:    d.BusinessUnit,
			Priority:        d.Priority,
			OwnerEmployeeID: ownerID,
		}
		if err := m.db.Goals().Upsert(ctx, &g); err != nil {
			m.log.Warn("skipping extracted goal", "title", d.Title, "error", err)
			continue
		}
		out.Goals = append(out.Goals, g)
	}
	return out, nil
}

// Reindex re-embeds every skill, for example after switching embedding
// provider. Returns the number of skills indexed.
func (m *Matcher) Reindex(ctx context.Context) (int, error) {
	skills, err := m.db.Skills().List(ctx)
	if err != nil {
		return 0, err
	}
	var n atomic.Int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(reindexConcurrency)
	for i := range skills {
		s := &skills[i]
		g.Go(func() error {
			if err := m.index(gctx, s); err != nil {
				return err
			}
			n.Add(1)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return int(n.Load()), err
	}
	m.log.Info("skills reindexed", "count", n.Load())
	return int(n.Load()), nil
}
