// Package oracle is the structured-extraction boundary: question and
// module generation, goal and skill extraction, and semantic gap analysis.
// Every answer is schema-checked before it reaches a caller.
package oracle

import (
	"context"

	"github.com/abhisek/skillmap/internal/store"
)

// ContentOracle is implemented by Live (LLM-backed) and Fixture
// (deterministic). The implementation is picked once when the services
// are wired.
type ContentOracle interface {
	GenerateQuestions(ctx context.Context, req QuestionRequest) ([]store.Question, error)
	GenerateModule(ctx context.Context, req ModuleRequest) (*ModuleDraft, error)
	ExtractGoals(ctx context.Context, text string) ([]GoalDraft, error)
	ExtractGoalSkills(ctx context.Context, goal GoalContext) ([]SkillRequirement, error)
	ExtractEmployeeSkills(ctx context.Context, emp EmployeeContext) ([]EmployeeSkill, error)
	AnalyzeGaps(ctx context.Context, req GapAnalysisRequest) (*GapAnalysis, error)
}

type QuestionRequest struct {
	SkillName        string
	SkillDescription string
	NumQuestions     int
	MinDifficulty    float64
	MaxDifficulty    float64
}

// ModuleRequest asks for one module of a multi-module path. ModuleIndex
// is 1-based.
type ModuleRequest struct {
	SkillName        string
	SkillDescription string
	CurrentLevel     float64
	TargetLevel      int
	ModuleIndex      int
	TotalModules     int
}

type ModuleDraft struct {
	Title       string                  `json:"title"`
	Description string                  `json:"description"`
	Content     string                  `json:"content"`
	Exercises   []store.ModuleExercise  `json:"exercises"`
	Assessment  []store.ModuleCheckItem `json:"assessment"`
}

type GoalDraft struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	TimeHorizonYear int    `json:"time_horizon_year"`
	BusinessUnit    string `json:"business_unit"`
	Priority        int    `json:"priority"`
}

type GoalContext struct {
	Title           string
	Description     string
	TimeHorizonYear int
	BusinessUnit    string
}

type SkillRequirement struct {
	Name             string  `json:"name"`
	Description      string  `json:"description"`
	Category         string  `json:"category"`
	Domain           string  `json:"domain"`
	TargetLevel      int     `json:"target_level"`
	ImportanceWeight float64 `json:"importance_weight"`
	RequiredByYear   int     `json:"required_by_year"`
}

type EmployeeContext struct {
	Name        string
	Role        string
	Description string
}

type EmployeeSkill struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Domain      string  `json:"domain"`
	Proficiency float64 `json:"proficiency"`
}

type SkillLevel struct {
	Name  string
	Level float64
}

type SkillTarget struct {
	Name        string
	TargetLevel int
	Weight      float64
}

type GapAnalysisRequest struct {
	EmployeeName    string
	Role            string
	GoalTitle       string
	GoalDescription string
	Current         []SkillLevel
	Required        []SkillTarget
}

type GapAnalysis struct {
	SkillMatches     []SkillMatch   `json:"skill_matches"`
	MissingSkills    []MissingSkill `json:"missing_skills"`
	OverallReadiness float64        `json:"overall_readiness"`
	Summary          string         `json:"summary"`
}

type SkillMatch struct {
	RequiredSkill string  `json:"required_skill"`
	EmployeeSkill string  `json:"employee_skill"`
	Similarity    float64 `json:"similarity"`
}

type MissingSkill struct {
	Skill    string  `json:"skill"`
	GapValue float64 `json:"gap_value"`
	Reason   string  `json:"reason"`
}
