package gaps

import (
	"context"
	"fmt"
	"math"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/abhisek/skillmap/internal/apperr"
	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/oracle"
	"github.com/abhisek/skillmap/internal/store"
	"github.com/abhisek/skillmap/internal/vector"
)

type env struct {
	store   *store.Store
	vectors *vector.Memory
	scorer  *Scorer
}

func newEnv(t *testing.T) *env {
	t.Helper()
	s, err := store.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	v := vector.NewMemory()
	return &env{store: s, vectors: v, scorer: NewScorer(s, v, oracle.NewFixture(), logger.Nop())}
}

func (e *env) skill(t *testing.T, name string, vec []float32) string {
	t.Helper()
	sk := &store.Skill{Name: name}
	require.NoError(t, e.store.Skills().Upsert(context.Background(), sk))
	if vec != nil {
		require.NoError(t, e.vectors.Upsert(context.Background(), sk.ID, vec, map[string]any{"name": name}))
	}
	return sk.ID
}

func (e *env) employee(t *testing.T, name, managerID string, profile store.Profile) string {
	t.Helper()
	emp := &store.Employee{Email: name + "@corp.test", Name: name, ManagerID: managerID, Profile: profile}
	require.NoError(t, e.store.Employees().Upsert(context.Background(), emp))
	return emp.ID
}

func (e *env) goal(t *testing.T, reqs ...store.RequiredSkill) string {
	t.Helper()
	ctx := context.Background()
	g := &store.Goal{Title: "Platform migration", TimeHorizonYear: 2030}
	require.NoError(t, e.store.Goals().Upsert(ctx, g))
	for _, r := range reqs {
		r.GoalID = g.ID
		require.NoError(t, e.store.Goals().UpsertRequirement(ctx, &r))
	}
	return g.ID
}

func TestScoreIdenticalDirection(t *testing.T) {
	e := newEnv(t)
	a := e.skill(t, "A", []float32{1, 0, 0})
	emp := e.employee(t, "ana", "", store.Profile{a: {Alpha: 1, Level: 2}})
	goal := e.goal(t, store.RequiredSkill{SkillID: a, TargetLevel: 4, ImportanceWeight: 1})

	res, err := e.scorer.Score(context.Background(), emp, goal)
	require.NoError(t, err)

	assert.Equal(t, StatusOK, res.Status)
	assert.Equal(t, 2.0, res.ScalarGaps[a])
	assert.InDelta(t, 1.0, res.Similarity, 1e-6)
	assert.InDelta(t, 2.0, res.GapIndex, 1e-6)
	require.Len(t, res.Skills, 1)
	assert.Equal(t, "A", res.Skills[0].SkillName)
	assert.True(t, res.HasGaps())
}

func TestScoreGoalMet(t *testing.T) {
	e := newEnv(t)
	a := e.skill(t, "A", []float32{0.3, 0.4, 0})
	emp := e.employee(t, "ana", "", store.Profile{a: {Alpha: 1, Level: 4.5}})
	goal := e.goal(t, store.RequiredSkill{SkillID: a, TargetLevel: 4, ImportanceWeight: 0.8})

	res, err := e.scorer.Score(context.Background(), emp, goal)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.ScalarGaps[a])
	assert.InDelta(t, 0.0, res.GapIndex, 1e-6)
	assert.False(t, res.HasGaps())
}

func TestScoreMeanCoversEveryRequiredSkill(t *testing.T) {
	e := newEnv(t)
	a := e.skill(t, "A", []float32{1, 0})
	b := e.skill(t, "B", []float32{0, 1})
	emp := e.employee(t, "ana", "", store.Profile{a: {Alpha: 1, Level: 4}, b: {Alpha: 1, Level: 1}})
	goal := e.goal(t,
		store.RequiredSkill{SkillID: a, TargetLevel: 4, ImportanceWeight: 1},
		store.RequiredSkill{SkillID: b, TargetLevel: 3, ImportanceWeight: 1},
	)

	res, err := e.scorer.Score(context.Background(), emp, goal)
	require.NoError(t, err)

	// employee bundle (4,1)/5 against required bundle (1,1)/2
	want := 5.0 / (math.Sqrt(17) * math.Sqrt(2))
	assert.InDelta(t, want, res.Similarity, 1e-6)
	assert.InDelta(t, (1-want)+1.0, res.GapIndex, 1e-6)
	assert.Equal(t, []string{a, b}, []string{res.Skills[0].SkillID, res.Skills[1].SkillID})
}

func TestScoreAbsentProfileEntry(t *testing.T) {
	e := newEnv(t)
	a := e.skill(t, "A", []float32{1, 1})
	emp := e.employee(t, "ana", "", nil)
	goal := e.goal(t, store.RequiredSkill{SkillID: a, TargetLevel: 3, ImportanceWeight: 0.5})

	res, err := e.scorer.Score(context.Background(), emp, goal)
	require.NoError(t, err)
	assert.Equal(t, 3.0, res.ScalarGaps[a])
	assert.Equal(t, 0.0, res.Similarity, "zero-weight employee bundle")
	assert.InDelta(t, 4.0, res.GapIndex, 1e-9)
}

func TestScoreWithoutEmbeddings(t *testing.T) {
	e := newEnv(t)
	a := e.skill(t, "A", nil)
	emp := e.employee(t, "ana", "", store.Profile{a: {Alpha: 1, Level: 1}})
	goal := e.goal(t, store.RequiredSkill{SkillID: a, TargetLevel: 2, ImportanceWeight: 1})

	res, err := e.scorer.Score(context.Background(), emp, goal)
	require.NoError(t, err)
	assert.Equal(t, 0.0, res.Similarity)
	assert.InDelta(t, 2.0, res.GapIndex, 1e-9)
}

func TestScoreNoRequirements(t *testing.T) {
	e := newEnv(t)
	emp := e.employee(t, "ana", "", nil)
	goal := e.goal(t)

	res, err := e.scorer.Score(context.Background(), emp, goal)
	require.NoError(t, err)
	assert.Equal(t, StatusNoRequirements, res.Status)
	assert.NotEmpty(t, res.Message)
	assert.Empty(t, res.ScalarGaps)
	assert.Equal(t, 0.0, res.GapIndex)
}

func TestScoreNotFound(t *testing.T) {
	e := newEnv(t)
	emp := e.employee(t, "ana", "", nil)
	goal := e.goal(t)
	ctx := context.Background()

	_, err := e.scorer.Score(ctx, "ghost", goal)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = e.scorer.Score(ctx, emp, "ghost")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestBundle(t *testing.T) {
	e := newEnv(t)
	a := e.skill(t, "A", []float32{2, 0})
	b := e.skill(t, "B", []float32{0, 4})
	c := e.skill(t, "C", []float32{1, 1, 1})
	ctx := context.Background()

	vec, err := e.scorer.Bundle(ctx, []string{a, "missing", b}, []float64{1, 5, 3})
	require.NoError(t, err)
	require.Len(t, vec, 2)
	assert.InDelta(t, 0.5, vec[0], 1e-6)
	assert.InDelta(t, 3.0, vec[1], 1e-6)

	vec, err = e.scorer.Bundle(ctx, []string{a, c}, []float64{1, 1})
	require.NoError(t, err)
	assert.Len(t, vec, 2, "mismatched dimension is skipped")

	vec, err = e.scorer.Bundle(ctx, []string{"x", "y"}, []float64{1, 1})
	require.NoError(t, err)
	assert.Nil(t, vec)

	_, err = e.scorer.Bundle(ctx, []string{a}, nil)
	assert.Error(t, err)
}

func TestScoreTeam(t *testing.T) {
	e := newEnv(t)
	a := e.skill(t, "A", []float32{1, 0})
	boss := e.employee(t, "boss", "", nil)
	e.employee(t, "ana", boss, store.Profile{a: {Alpha: 1, Level: 4}})
	e.employee(t, "bob", boss, store.Profile{a: {Alpha: 1, Level: 2}})
	e.employee(t, "outsider", "", store.Profile{a: {Alpha: 1, Level: 0}})
	goal := e.goal(t, store.RequiredSkill{SkillID: a, TargetLevel: 4, ImportanceWeight: 1})

	team, err := e.scorer.ScoreTeam(context.Background(), boss, goal)
	require.NoError(t, err)
	assert.Equal(t, 2, team.TeamSize)
	require.Len(t, team.Members, 2)
	assert.InDelta(t, 1.0, team.GapIndex, 1e-6, "mean of 0 and 2")
	for _, m := range team.Members {
		assert.Equal(t, goal, m.GoalID)
	}
}

func TestScoreTeamEmptyAndUnknown(t *testing.T) {
	e := newEnv(t)
	boss := e.employee(t, "boss", "", nil)
	goal := e.goal(t)
	ctx := context.Background()

	team, err := e.scorer.ScoreTeam(ctx, boss, goal)
	require.NoError(t, err)
	assert.Equal(t, 0, team.TeamSize)
	assert.Equal(t, 0.0, team.GapIndex)
	assert.Empty(t, team.Members)

	_, err = e.scorer.ScoreTeam(ctx, "ghost", goal)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestAnalyze(t *testing.T) {
	e := newEnv(t)
	a := e.skill(t, "Kubernetes", nil)
	b := e.skill(t, "Terraform", nil)
	emp := e.employee(t, "ana", "", store.Profile{a: {Alpha: 1, Level: 2}})
	goal := e.goal(t,
		store.RequiredSkill{SkillID: a, TargetLevel: 4, ImportanceWeight: 1},
		store.RequiredSkill{SkillID: b, TargetLevel: 3, ImportanceWeight: 0.5},
	)

	res, err := e.scorer.Analyze(context.Background(), emp, goal)
	require.NoError(t, err)
	assert.Equal(t, StatusOK, res.Status)
	require.NotNil(t, res.GapAnalysis)
	require.Len(t, res.SkillMatches, 1)
	assert.Equal(t, "Kubernetes", res.SkillMatches[0].RequiredSkill)
	require.Len(t, res.MissingSkills, 2)
	assert.Equal(t, 2.0, res.MissingSkills[0].GapValue)
	assert.Equal(t, 3.0, res.MissingSkills[1].GapValue)
}

func TestAnalyzeOracleFailureIsNotReplaced(t *testing.T) {
	e := newEnv(t)
	a := e.skill(t, "A", nil)
	emp := e.employee(t, "ana", "", nil)
	goal := e.goal(t, store.RequiredSkill{SkillID: a, TargetLevel: 4, ImportanceWeight: 1})
	scorer := NewScorer(e.store, e.vectors, oracle.NewLive(nil, oracle.DefaultConfig(), logger.Nop()), logger.Nop())

	res, err := scorer.Analyze(context.Background(), emp, goal)
	assert.Nil(t, res)
	assert.Equal(t, apperr.KindDependencyUnavailable, apperr.KindOf(err))
	assert.Equal(t, apperr.ReasonNotConfigured, apperr.ReasonOf(err))
}

func TestAnalyzeNoRequirements(t *testing.T) {
	e := newEnv(t)
	emp := e.employee(t, "ana", "", nil)
	goal := e.goal(t)

	res, err := e.scorer.Analyze(context.Background(), emp, goal)
	require.NoError(t, err)
	assert.Equal(t, StatusNoRequirements, res.Status)
	assert.Nil(t, res.GapAnalysis)
}
