// Package pathplan turns skill gaps into a time-boxed sequence of learning
// modules, synthesizing modules through the content oracle when none are
// tagged with a skill.
package pathplan

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/abhisek/skillmap/internal/gaps"
	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/oracle"
	"github.com/abhisek/skillmap/internal/store"
)

const (
	// GapPerModule is how much of a skill's gap one allocated module closes.
	GapPerModule = 0.5
	// DefaultMaxHours is the budget used when a caller names none.
	DefaultMaxHours = 40.0
	// stallFactor bounds the loop at stallFactor x skills with a gap.
	stallFactor = 10

	generatedProvider = "skillmap (generated)"
	generatedFormat   = "micro_lesson"
)

// GapSource is the part of the gap scorer the scheduler needs.
type GapSource interface {
	Score(ctx context.Context, employeeID, goalID string) (*gaps.Result, error)
}

// Scheduler builds learning plans greedily, largest remaining gap first.
type Scheduler struct {
	db     store.Repos
	gaps   GapSource
	oracle oracle.ContentOracle
	log    *logger.Logger
	now    func() time.Time
}

// NewScheduler creates a Scheduler. Modules it synthesizes are saved
// through db.
func NewScheduler(db store.Repos, g GapSource, o oracle.ContentOracle, log *logger.Logger) *Scheduler {
	return &Scheduler{db: db, gaps: g, oracle: o, log: log.With("service", "LearningPathScheduler"), now: time.Now}
}

// candidate tracks one skill's remaining gap while the plan is built.
type candidate struct {
	gaps.SkillGap
	seq       int
	remaining float64
	generated int
	total     int
	skipped   bool
}

// Build allocates modules to the largest remaining gap first until the
// budget is spent, every gap is closed, or the stall guard trips. The sum
// of item durations never exceeds maxMinutes.
func (s *Scheduler) Build(ctx context.Context, employeeID, goalID string, maxMinutes int) (*Plan, error) {
	res, err := s.gaps.Score(ctx, employeeID, goalID)
	if err != nil {
		return nil, err
	}
	goal, err := s.db.Goals().Get(ctx, goalID)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		EmployeeID: employeeID,
		GoalID:     goalID,
		Items:      []Item{},
		Meta: Meta{
			Similarity: res.Similarity,
			GapIndex:   res.GapIndex,
			MaxMinutes: maxMinutes,
			YearsLeft:  s.yearsLeft(goal),
		},
	}

	switch {
	case res.Status == gaps.StatusNoRequirements:
		plan.Meta.Message = res.Message
		return plan, nil
	case !res.HasGaps():
		plan.Meta.Message = "employee already meets the required skill levels for this goal"
		return plan, nil
	case maxMinutes <= 0:
		plan.Meta.Message = "no time budget to allocate"
		return plan, nil
	}

	var pool []*candidate
	for i, sg := range res.Skills {
		if sg.Gap <= 0 {
			continue
		}
		pool = append(pool, &candidate{
			SkillGap:  sg,
			seq:       i,
			remaining: sg.Gap,
			total:     max(1, int(sg.Gap/GapPerModule)),
		})
	}

	used := make(map[string]bool)
	total := 0
	guard := stallFactor * len(pool)
	for iter := 0; iter < guard && total < maxMinutes; iter++ {
		c := next(pool)
		if c == nil {
			break
		}

		targetLevel := clampLevel(int(c.CurrentLevel + c.remaining))
		m, err := s.pickModule(ctx, c, targetLevel, used)
		if err != nil {
			return nil, err
		}
		duration := int(moduleDuration(m, targetLevel, c.remaining))

		left := maxMinutes - total
		truncated := false
		if duration > left {
			if left < MinViableMinutes {
				c.skipped = true
				continue
			}
			duration, truncated = left, true
		}

		used[m.ID] = true
		total += duration
		plan.Items = append(plan.Items, Item{
			Order:           len(plan.Items) + 1,
			SkillID:         c.SkillID,
			SkillName:       c.SkillName,
			ModuleID:        m.ID,
			Title:           m.Title,
			Description:     m.Description,
			ExpectedGain:    math.Min(c.remaining, GapPerModule),
			DurationMinutes: duration,
			IsGenerated:     m.IsGenerated,
			Truncated:       truncated,
		})
		c.remaining -= GapPerModule
		if truncated {
			break
		}
	}

	plan.TotalMinutes = total
	plan.TotalHours = math.Round(float64(total)/60*100) / 100
	plan.Meta.UtilizationPercent = math.Round(float64(total)/float64(maxMinutes)*1000) / 10
	if len(plan.Items) == 0 {
		plan.Meta.Message = "skill gaps remain but no module fits the time budget"
	}

	s.log.Info("learning path built", "employee_id", employeeID, "goal_id", goalID,
		"items", len(plan.Items), "minutes", total, "budget", maxMinutes)
	return plan, nil
}

// next returns the candidate with the largest remaining gap, ties going
// to the earlier requirement, or nil when nothing is left.
func next(pool []*candidate) *candidate {
	open := make([]*candidate, 0, len(pool))
	for _, c := range pool {
		if c.remaining > 0 && !c.skipped {
			open = append(open, c)
		}
	}
	if len(open) == 0 {
		return nil
	}
	sort.SliceStable(open, func(i, j int) bool {
		if open[i].remaining != open[j].remaining {
			return open[i].remaining > open[j].remaining
		}
		return open[i].seq < open[j].seq
	})
	return open[0]
}

// pickModule prefers the easiest unused module already tagged with the
// skill and otherwise synthesizes a new one.
func (s *Scheduler) pickModule(ctx context.Context, c *candidate, targetLevel int, used map[string]bool) (*store.Module, error) {
	existing, err := s.db.Modules().ListBySkill(ctx, c.SkillID)
	if err != nil {
		return nil, err
	}
	var free []store.Module
	for _, m := range existing {
		if !used[m.ID] {
			free = append(free, m)
		}
	}
	if len(free) > 0 {
		sort.SliceStable(free, func(i, j int) bool {
			a, b := free[i].Difficulty, free[j].Difficulty
			switch {
			case a == nil:
				return false
			case b == nil:
				return true
			default:
				return *a < *b
			}
		})
		return &free[0], nil
	}
	return s.synthesize(ctx, c, targetLevel)
}

func (s *Scheduler) synthesize(ctx context.Context, c *candidate, targetLevel int) (*store.Module, error) {
	skill, err := s.db.Skills().Get(ctx, c.SkillID)
	if err != nil {
		return nil, err
	}
	c.generated++
	index := c.generated
	total := max(c.total, index)

	draft, err := s.oracle.GenerateModule(ctx, oracle.ModuleRequest{
		SkillName:        skill.Name,
		SkillDescription: skill.Description,
		CurrentLevel:     c.CurrentLevel,
		TargetLevel:      targetLevel,
		ModuleIndex:      index,
		TotalModules:     total,
	})
	if err != nil {
		return nil, fmt.Errorf("generate module for %s: %w", skill.Name, err)
	}

	duration := int(EstimateDuration(len(draft.Content), len(draft.Exercises), len(draft.Assessment), targetLevel))
	difficulty := float64(targetLevel)
	m := &store.Module{
		Title:           draft.Title,
		Description:     draft.Description,
		Provider:        generatedProvider,
		Format:          generatedFormat,
		DurationMinutes: &duration,
		Difficulty:      &difficulty,
		SkillIDs:        []string{skill.ID},
		IsGenerated:     true,
		Content: &store.ModuleContent{
			Content:      draft.Content,
			Exercises:    draft.Exercises,
			Assessment:   draft.Assessment,
			TargetLevel:  targetLevel,
			ModuleIndex:  index,
			TotalModules: total,
		},
	}
	if err := s.db.Modules().Upsert(ctx, m); err != nil {
		return nil, err
	}
	s.log.Info("module generated", "skill_id", skill.ID, "module_id", m.ID,
		"target_level", targetLevel, "index", index, "total", total, "minutes", duration)
	return m, nil
}

// moduleDuration prefers the stored duration, then an estimate from the
// stored content, then a level and gap based fallback.
func moduleDuration(m *store.Module, targetLevel int, gap float64) float64 {
	if m.DurationMinutes != nil && *m.DurationMinutes > 0 {
		return float64(*m.DurationMinutes)
	}
	if c := m.Content; c != nil && c.Content != "" {
		return EstimateDuration(len(c.Content), len(c.Exercises), len(c.Assessment), targetLevel)
	}
	return fallbackDuration(targetLevel, gap)
}

func (s *Scheduler) yearsLeft(g *store.Goal) *float64 {
	if g.TimeHorizonYear == 0 {
		return nil
	}
	y := math.Max(0.5, float64(g.TimeHorizonYear-s.now().Year()))
	return &y
}

func clampLevel(l int) int {
	return max(1, min(5, l))
}
