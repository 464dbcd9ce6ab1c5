package store

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/abhisek/skillmap/internal/apperr"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatalf("open test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestPragmasApplied(t *testing.T) {
	s := openTestStore(t)

	tests := []struct {
		pragma string
		want   string
	}{
		// journal_mode reports "memory" for in-memory databases.
		{"foreign_keys", "1"},
		{"synchronous", "1"},
	}
	for _, tt := range tests {
		var got string
		if err := s.DB().QueryRow("PRAGMA " + tt.pragma).Scan(&got); err != nil {
			t.Errorf("PRAGMA %s: %v", tt.pragma, err)
			continue
		}
		if got != tt.want {
			t.Errorf("PRAGMA %s = %q, want %q", tt.pragma, got, tt.want)
		}
	}
}

func TestOpenUnknownDriver(t *testing.T) {
	if _, err := Open("oracle", ""); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestEmployeeRoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	mgr := &Employee{Email: "lead@corp.test", Name: "Lead"}
	if err := s.Employees().Upsert(ctx, mgr); err != nil {
		t.Fatalf("upsert manager: %v", err)
	}
	e := &Employee{
		Email:     "dev@corp.test",
		Name:      "Dev",
		ManagerID: mgr.ID,
		Profile:   Profile{"go": {Theta: 0.5, Alpha: 1, Level: 2.9}},
	}
	if err := s.Employees().Upsert(ctx, e); err != nil {
		t.Fatalf("upsert employee: %v", err)
	}

	got, err := s.Employees().Get(ctx, e.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.ManagerID != mgr.ID || got.Profile["go"].Level != 2.9 {
		t.Errorf("got %+v", got)
	}

	reports, err := s.Employees().ListByManager(ctx, mgr.ID)
	if err != nil {
		t.Fatalf("list by manager: %v", err)
	}
	if len(reports) != 1 || reports[0].ID != e.ID {
		t.Errorf("reports = %+v", reports)
	}

	if err := s.Employees().SaveProfile(ctx, e.ID, Profile{"go": {Theta: 1, Alpha: 1, Level: 3.3}}); err != nil {
		t.Fatalf("save profile: %v", err)
	}
	got, _ = s.Employees().Get(ctx, e.ID)
	if got.Profile["go"].Theta != 1 {
		t.Errorf("profile not overwritten: %+v", got.Profile)
	}
}

func TestEmployeeNotFound(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if _, err := s.Employees().Get(ctx, "missing"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("Get: expected not found, got %v", err)
	}
	if err := s.Employees().SaveProfile(ctx, "missing", Profile{}); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("SaveProfile: expected not found, got %v", err)
	}
}

func TestDuplicateEmailConflict(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.Employees().Upsert(ctx, &Employee{Email: "a@corp.test", Name: "A"}); err != nil {
		t.Fatal(err)
	}
	err := s.Employees().Upsert(ctx, &Employee{Email: "a@corp.test", Name: "B"})
	if !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("expected conflict, got %v", err)
	}
}

func seedGoal(t *testing.T, s *Store) (*Goal, []*Skill) {
	t.Helper()
	ctx := context.Background()
	g := &Goal{Title: "Cloud migration", TimeHorizonYear: 2028}
	if err := s.Goals().Upsert(ctx, g); err != nil {
		t.Fatalf("upsert goal: %v", err)
	}
	var skills []*Skill
	for _, name := range []string{"Terraform", "AWS", "Go"} {
		sk := &Skill{Name: name, Category: "technical"}
		if err := s.Skills().Upsert(ctx, sk); err != nil {
			t.Fatalf("upsert skill: %v", err)
		}
		if err := s.Goals().UpsertRequirement(ctx, &RequiredSkill{GoalID: g.ID, SkillID: sk.ID, TargetLevel: 4, ImportanceWeight: 0.5}); err != nil {
			t.Fatalf("upsert requirement: %v", err)
		}
		skills = append(skills, sk)
	}
	return g, skills
}

func TestRequirementsKeepInsertionOrder(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g, skills := seedGoal(t, s)

	// Updating the first requirement must not move it.
	if err := s.Goals().UpsertRequirement(ctx, &RequiredSkill{GoalID: g.ID, SkillID: skills[0].ID, TargetLevel: 5, ImportanceWeight: 1}); err != nil {
		t.Fatal(err)
	}

	reqs, err := s.Goals().Requirements(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 3 {
		t.Fatalf("expected 3 requirements, got %d", len(reqs))
	}
	for i, sk := range skills {
		if reqs[i].SkillID != sk.ID {
			t.Errorf("requirement %d = %s, want %s", i, reqs[i].SkillID, sk.ID)
		}
	}
	if reqs[0].TargetLevel != 5 || reqs[0].ImportanceWeight != 1 {
		t.Errorf("update lost: %+v", reqs[0])
	}
}

func TestRequirementValidation(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g, skills := seedGoal(t, s)

	err := s.Goals().UpsertRequirement(ctx, &RequiredSkill{GoalID: g.ID, SkillID: skills[0].ID, TargetLevel: 6, ImportanceWeight: 1})
	if !apperr.Is(err, apperr.KindValidation) {
		t.Errorf("target 6: expected validation error, got %v", err)
	}
	err = s.Goals().UpsertRequirement(ctx, &RequiredSkill{GoalID: "nope", SkillID: skills[0].ID, TargetLevel: 3, ImportanceWeight: 1})
	if !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("missing goal: expected not found, got %v", err)
	}
}

func TestGoalDeleteCascades(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	g, _ := seedGoal(t, s)

	if err := s.Goals().Delete(ctx, g.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	reqs, err := s.Goals().Requirements(ctx, g.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(reqs) != 0 {
		t.Errorf("requirements survived delete: %+v", reqs)
	}
}

func TestSkillGetByNameIgnoresCase(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	if err := s.Skills().Upsert(ctx, &Skill{Name: "Kubernetes"}); err != nil {
		t.Fatal(err)
	}
	sk, err := s.Skills().GetByName(ctx, " kubernetes ")
	if err != nil {
		t.Fatalf("get by name: %v", err)
	}
	if sk.Name != "Kubernetes" {
		t.Errorf("name = %q", sk.Name)
	}
}

func TestModulesBySkill(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	easy, hard := 1.5, 4.0
	dur := 45
	mods := []*Module{
		{ID: "m-hard", Title: "Advanced Terraform", SkillIDs: []string{"tf"}, Difficulty: &hard},
		{ID: "m-easy", Title: "Terraform basics", SkillIDs: []string{"tf", "iac"}, Difficulty: &easy, DurationMinutes: &dur},
		{ID: "m-other", Title: "Go", SkillIDs: []string{"go"},
			Content: &ModuleContent{Content: "body", Exercises: []ModuleExercise{{Question: "q", Solution: "s"}}}},
	}
	for _, m := range mods {
		if err := s.Modules().Upsert(ctx, m); err != nil {
			t.Fatalf("upsert %s: %v", m.ID, err)
		}
	}

	got, err := s.Modules().ListBySkill(ctx, "tf")
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 modules, got %d", len(got))
	}
	if got[0].ID != "m-easy" || *got[0].DurationMinutes != 45 {
		t.Errorf("first = %+v", got[0])
	}
	if got[1].DurationMinutes != nil {
		t.Errorf("hard module duration should be nil")
	}

	other, err := s.Modules().Get(ctx, "m-other")
	if err != nil {
		t.Fatal(err)
	}
	if other.Content == nil || len(other.Content.Exercises) != 1 {
		t.Errorf("content = %+v", other.Content)
	}
}

func TestAssessmentCompleteIsCompareAndSet(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	e := &Employee{Email: "x@corp.test", Name: "X"}
	if err := s.Employees().Upsert(ctx, e); err != nil {
		t.Fatal(err)
	}
	a := &Assessment{
		EmployeeID: e.ID,
		SkillID:    "go",
		Questions: []Question{{ID: "q1", Text: "?", CorrectAnswerID: "a",
			Options: []Option{{"a", "1"}, {"b", "2"}, {"c", "3"}, {"d", "4"}}}},
		CorrectAnswers: map[string]string{"q1": "a"},
	}
	if err := s.Assessments().Create(ctx, a); err != nil {
		t.Fatalf("create: %v", err)
	}

	score := 5.0
	a.Answers = map[string]string{"q1": "a"}
	a.Score = &score
	if err := s.Assessments().Complete(ctx, a); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	if err := s.Assessments().Complete(ctx, a); !apperr.Is(err, apperr.KindConflict) {
		t.Fatalf("second complete: expected conflict, got %v", err)
	}

	got, err := s.Assessments().Get(ctx, a.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != StatusCompleted || got.CompletedAt == nil || *got.Score != 5 {
		t.Errorf("stored = %+v", got)
	}
	if got.Answers["q1"] != "a" {
		t.Errorf("answers = %v", got.Answers)
	}
}

func TestTransactionRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	err := s.Transaction(ctx, func(r Repos) error {
		if err := r.Skills().Upsert(ctx, &Skill{ID: "tmp", Name: "Temp"}); err != nil {
			return err
		}
		return fmt.Errorf("abort")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if _, err := s.Skills().Get(ctx, "tmp"); !apperr.Is(err, apperr.KindNotFound) {
		t.Errorf("skill should have been rolled back, got %v", err)
	}
}

func TestLLMCallLog(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	calls := s.LLMCalls()

	for i := range 3 {
		if err := calls.Append(ctx, &LLMCall{Provider: "mock", Model: "mock", Purpose: fmt.Sprintf("p%d", i), Success: true}); err != nil {
			t.Fatalf("append: %v", err)
		}
	}
	list, err := calls.List(ctx, QueryOpts{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(list) != 2 || list[0].Purpose != "p2" {
		t.Fatalf("list = %+v", list)
	}
	one, err := calls.Get(ctx, list[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if one.Purpose != "p1" {
		t.Errorf("get = %+v", one)
	}
}
