// Package gaps measures how far an employee is from the skills a goal
// requires, as scalar level deficits plus an embedding-space similarity.
package gaps

import (
	"context"
	"fmt"
	"maps"
	"math"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/oracle"
	"github.com/abhisek/skillmap/internal/store"
	"github.com/abhisek/skillmap/internal/vector"
)

// teamConcurrency bounds parallel member scoring in ScoreTeam.
const teamConcurrency = 4

// Scorer measures employees against the required skills of a goal.
type Scorer struct {
	db      store.Repos
	vectors vector.Store
	oracle  oracle.ContentOracle
	log     *logger.Logger
}

// NewScorer creates a Scorer. vectors must hold an embedding for every
// skill that should count toward similarity.
func NewScorer(db store.Repos, vectors vector.Store, o oracle.ContentOracle, log *logger.Logger) *Scorer {
	return &Scorer{db: db, vectors: vectors, oracle: o, log: log.With("service", "GapScorer")}
}

// Score compares the employee's profile with the goal's requirements. A
// goal without requirements is reported through Status, not as an error.
func (s *Scorer) Score(ctx context.Context, employeeID, goalID string) (*Result, error) {
	emp, err := s.db.Employees().Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	if _, err := s.db.Goals().Get(ctx, goalID); err != nil {
		return nil, err
	}
	reqs, err := s.db.Goals().Requirements(ctx, goalID)
	if err != nil {
		return nil, err
	}
	return s.score(ctx, emp, goalID, reqs)
}

func (s *Scorer) score(ctx context.Context, emp *store.Employee, goalID string, reqs []store.RequiredSkill) (*Result, error) {
	res := &Result{
		EmployeeID: emp.ID,
		GoalID:     goalID,
		Status:     StatusOK,
		ScalarGaps: make(map[string]float64, len(reqs)),
		Skills:     make([]SkillGap, 0, len(reqs)),
	}
	if len(reqs) == 0 {
		res.Status = StatusNoRequirements
		res.Message = "goal has no required skills; extract skills for it first"
		return res, nil
	}

	ids := make([]string, len(reqs))
	current := make([]float64, len(reqs))
	weights := make([]float64, len(reqs))
	var gapSum float64
	for i, r := range reqs {
		level := 0.0
		if entry, ok := emp.Profile[r.SkillID]; ok {
			level = entry.Level
		}
		gap := math.Max(0, float64(r.TargetLevel)-level)

		name := r.SkillID
		if skill, err := s.db.Skills().Get(ctx, r.SkillID); err == nil {
			name = skill.Name
		}

		ids[i], current[i], weights[i] = r.SkillID, level, r.ImportanceWeight
		gapSum += gap
		res.ScalarGaps[r.SkillID] = gap
		res.Skills = append(res.Skills, SkillGap{
			SkillID:      r.SkillID,
			SkillName:    name,
			TargetLevel:  r.TargetLevel,
			CurrentLevel: level,
			Weight:       r.ImportanceWeight,
			Gap:          gap,
		})
	}

	employeeVec, err := s.Bundle(ctx, ids, current)
	if err != nil {
		return nil, err
	}
	requiredVec, err := s.Bundle(ctx, ids, weights)
	if err != nil {
		return nil, err
	}
	res.Similarity = vector.Cosine(employeeVec, requiredVec)
	res.GapIndex = (1 - res.Similarity) + gapSum/float64(len(reqs))

	s.log.Debug("gap scored", "employee_id", emp.ID, "goal_id", goalID,
		"similarity", res.Similarity, "gap_index", res.GapIndex)
	return res, nil
}

// Bundle is the weighted mean of the stored embeddings of ids:
// sum(w*e) / (sum(w) + Epsilon). Ids without an embedding, or whose
// embedding has a different dimension from the first one found, are
// skipped. It returns nil when nothing resolves.
func (s *Scorer) Bundle(ctx context.Context, ids []string, weights []float64) ([]float32, error) {
	if len(ids) != len(weights) {
		return nil, fmt.Errorf("bundle: %d ids but %d weights", len(ids), len(weights))
	}
	var (
		sum   []float64
		wsum  float64
		found int
	)
	for i, id := range ids {
		vec, ok, err := s.vectors.Fetch(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch embedding of %s: %w", id, err)
		}
		if !ok || len(vec) == 0 {
			continue
		}
		if sum == nil {
			sum = make([]float64, len(vec))
		} else if len(vec) != len(sum) {
			s.log.Warn("embedding dimension mismatch", "skill_id", id, "got", len(vec), "want", len(sum))
			continue
		}
		w := weights[i]
		for j, x := range vec {
			sum[j] += w * float64(x)
		}
		wsum += w
		found++
	}
	if found == 0 {
		return nil, nil
	}
	out := make([]float32, len(sum))
	for j, x := range sum {
		out[j] = float32(x / (wsum + vector.Epsilon))
	}
	return out, nil
}

// ScoreTeam scores every direct report of managerID against the goal.
// The team gap index is the mean of the members' gap indexes.
func (s *Scorer) ScoreTeam(ctx context.Context, managerID, goalID string) (*TeamResult, error) {
	if _, err := s.db.Employees().Get(ctx, managerID); err != nil {
		return nil, err
	}
	if _, err := s.db.Goals().Get(ctx, goalID); err != nil {
		return nil, err
	}
	reports, err := s.db.Employees().ListByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	team := &TeamResult{ManagerID: managerID, GoalID: goalID, TeamSize: len(reports), Members: []Result{}}
	if len(reports) == 0 {
		return team, nil
	}
	reqs, err := s.db.Goals().Requirements(ctx, goalID)
	if err != nil {
		return nil, err
	}

	members := make([]Result, len(reports))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(teamConcurrency)
	for i := range reports {
		emp := &reports[i]
		g.Go(func() error {
			res, err := s.score(gctx, emp, goalID, reqs)
			if err != nil {
				return fmt.Errorf("score %s: %w", emp.ID, err)
			}
			members[i] = *res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var sum float64
	for _, m := range members {
		sum += m.GapIndex
	}
	team.Members = members
	team.GapIndex = sum / float64(len(members))
	return team, nil
}

// Analyze asks the content oracle for a semantic comparison of the
// employee's skills with the goal. Oracle failures are returned as is.
func (s *Scorer) Analyze(ctx context.Context, employeeID, goalID string) (*Analysis, error) {
	emp, err := s.db.Employees().Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	goal, err := s.db.Goals().Get(ctx, goalID)
	if err != nil {
		return nil, err
	}
	reqs, err := s.db.Goals().Requirements(ctx, goalID)
	if err != nil {
		return nil, err
	}
	out := &Analysis{EmployeeID: employeeID, GoalID: goalID, Status: StatusOK}
	if len(reqs) == 0 {
		out.Status = StatusNoRequirements
		out.Message = "goal has no required skills; extract skills for it first"
		return out, nil
	}

	req := oracle.GapAnalysisRequest{
		EmployeeName:    emp.Name,
		Role:            emp.Role,
		GoalTitle:       goal.Title,
		GoalDescription: goal.Description,
	}
	for _, r := range reqs {
		req.Required = append(req.Required, oracle.SkillTarget{
			Name:        s.skillName(ctx, r.SkillID),
			TargetLevel: r.TargetLevel,
			Weight:      r.ImportanceWeight,
		})
	}
	for _, id := range slices.Sorted(maps.Keys(emp.Profile)) {
		req.Current = append(req.Current, oracle.SkillLevel{Name: s.skillName(ctx, id), Level: emp.Profile[id].Level})
	}

	analysis, err := s.oracle.AnalyzeGaps(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("analyze gaps for %s: %w", employeeID, err)
	}
	out.GapAnalysis = analysis
	s.log.Info("gap analysis", "employee_id", employeeID, "goal_id", goalID,
		"missing", len(analysis.MissingSkills), "readiness", analysis.OverallReadiness)
	return out, nil
}

func (s *Scorer) skillName(ctx context.Context, id string) string {
	if skill, err := s.db.Skills().Get(ctx, id); err == nil {
		return skill.Name
	}
	return id
}
