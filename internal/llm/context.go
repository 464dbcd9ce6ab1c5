package llm

import "context"

// Purpose names the oracle operation behind a call. It is stored with
// every row of the call log.
type Purpose string

const (
	PurposeUnknown        Purpose = "unknown"
	PurposeQuestions      Purpose = "assessment-questions"
	PurposeModuleContent  Purpose = "module-content"
	PurposeGoalExtract    Purpose = "goal-extract"
	PurposeGoalSkills     Purpose = "goal-skills"
	PurposeEmployeeSkills Purpose = "employee-skills"
	PurposeGapAnalysis    Purpose = "gap-analysis"
)

type purposeKey struct{}

func WithPurpose(ctx context.Context, p Purpose) context.Context {
	return context.WithValue(ctx, purposeKey{}, p)
}

// PurposeFrom returns PurposeUnknown for calls made outside the oracle.
func PurposeFrom(ctx context.Context) Purpose {
	if p, ok := ctx.Value(purposeKey{}).(Purpose); ok && p != "" {
		return p
	}
	return PurposeUnknown
}
