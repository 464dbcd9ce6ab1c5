package oracle

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/abhisek/skillmap/internal/apperr"
	"github.com/abhisek/skillmap/internal/llm"
	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/store"
)

type Config struct {
	// MaxTokens is the response budget for list-style calls; module
	// generation gets twice as much.
	MaxTokens   int
	Temperature float64
	// Timeout bounds one oracle call; 0 leaves it to the caller.
	Timeout time.Duration
}

func DefaultConfig() Config {
	return Config{MaxTokens: 4096, Temperature: 0.4, Timeout: 90 * time.Second}
}

// Live answers through a text model. A nil provider means no model is
// configured and every call fails with a not_configured dependency error.
type Live struct {
	provider llm.Provider
	cfg      Config
	log      *logger.Logger
}

func NewLive(provider llm.Provider, cfg Config, log *logger.Logger) *Live {
	return &Live{provider: provider, cfg: cfg, log: log.With("service", "ContentOracle")}
}

func (l *Live) GenerateQuestions(ctx context.Context, req QuestionRequest) ([]store.Question, error) {
	var out struct {
		Questions []store.Question `json:"questions"`
	}
	err := l.call(ctx, llm.PurposeQuestions, questionSystemPrompt, buildQuestionMessage(req),
		QuestionSetSchema, l.cfg.MaxTokens, &out)
	if err != nil {
		return nil, err
	}
	return out.Questions, nil
}

func (l *Live) GenerateModule(ctx context.Context, req ModuleRequest) (*ModuleDraft, error) {
	var out ModuleDraft
	err := l.call(ctx, llm.PurposeModuleContent, moduleSystemPrompt, buildModuleMessage(req),
		ModuleSchema, 2*l.cfg.MaxTokens, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (l *Live) ExtractGoals(ctx context.Context, text string) ([]GoalDraft, error) {
	var out struct {
		Goals []GoalDraft `json:"goals"`
	}
	if err := l.call(ctx, llm.PurposeGoalExtract, goalSystemPrompt, buildGoalsMessage(text),
		GoalListSchema, l.cfg.MaxTokens, &out); err != nil {
		return nil, err
	}
	return out.Goals, nil
}

func (l *Live) ExtractGoalSkills(ctx context.Context, goal GoalContext) ([]SkillRequirement, error) {
	var out struct {
		Skills []SkillRequirement `json:"skills"`
	}
	if err := l.call(ctx, llm.PurposeGoalSkills, goalSkillsSystemPrompt, buildGoalSkillsMessage(goal),
		GoalSkillsSchema, l.cfg.MaxTokens, &out); err != nil {
		return nil, err
	}
	return out.Skills, nil
}

func (l *Live) ExtractEmployeeSkills(ctx context.Context, emp EmployeeContext) ([]EmployeeSkill, error) {
	var out struct {
		Skills []EmployeeSkill `json:"skills"`
	}
	if err := l.call(ctx, llm.PurposeEmployeeSkills, employeeSkillsSystemPrompt, buildEmployeeSkillsMessage(emp),
		EmployeeSkillsSchema, l.cfg.MaxTokens, &out); err != nil {
		return nil, err
	}
	return out.Skills, nil
}

func (l *Live) AnalyzeGaps(ctx context.Context, req GapAnalysisRequest) (*GapAnalysis, error) {
	var out GapAnalysis
	if err := l.call(ctx, llm.PurposeGapAnalysis, gapSystemPrompt, buildGapMessage(req),
		GapAnalysisSchema, l.cfg.MaxTokens, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// call runs one schema-constrained request and decodes the validated
// content into out. The content is validated again here so that every
// provider fails closed the same way.
func (l *Live) call(ctx context.Context, purpose llm.Purpose, system, user string, schema *llm.Schema, maxTokens int, out any) error {
	if l.provider == nil {
		return apperr.Unavailable(apperr.ReasonNotConfigured, "no text model is configured", llm.ErrNotConfigured)
	}
	if l.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.cfg.Timeout)
		defer cancel()
	}
	ctx = llm.WithPurpose(ctx, purpose)

	resp, err := l.provider.Generate(ctx, llm.Request{
		System:      system,
		Messages:    []llm.Message{{Role: llm.RoleUser, Content: user}},
		Schema:      schema,
		MaxTokens:   maxTokens,
		Temperature: l.cfg.Temperature,
	})
	if err != nil {
		l.log.Warn("oracle call failed", "purpose", purpose, "error", err)
		return classify(purpose, err)
	}
	if err := llm.ValidateJSON(schema, resp.Content); err != nil {
		return apperr.Malformed(string(purpose)+" response does not match its schema", err)
	}
	if err := json.Unmarshal(resp.Content, out); err != nil {
		return apperr.Malformed(string(purpose)+" response could not be decoded", err)
	}
	return nil
}

func classify(purpose llm.Purpose, err error) error {
	switch {
	case errors.Is(err, llm.ErrNotConfigured):
		return apperr.Unavailable(apperr.ReasonNotConfigured, "no text model is configured", err)
	case llm.IsMalformed(err):
		return apperr.Malformed(string(purpose)+" response was malformed", err)
	default:
		return apperr.Unavailable(apperr.ReasonCallFailed, string(purpose)+" call failed", err)
	}
}
