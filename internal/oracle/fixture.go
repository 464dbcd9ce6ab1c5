package oracle

import (
	"context"
	"fmt"
	"math"
	"regexp"
	"strings"
	"time"

	"github.com/abhisek/skillmap/internal/store"
)

// Fixture is a deterministic ContentOracle for tests, demos and offline
// use. The same input always produces the same output.
type Fixture struct {
	// Now supplies the current year for defaults; nil means time.Now.
	Now func() time.Time
}

func NewFixture() *Fixture { return &Fixture{} }

func (f *Fixture) year() int {
	if f.Now != nil {
		return f.Now().Year()
	}
	return time.Now().Year()
}

var optionIDs = []string{"a", "b", "c", "d"}

func (f *Fixture) GenerateQuestions(_ context.Context, req QuestionRequest) ([]store.Question, error) {
	n := req.NumQuestions
	out := make([]store.Question, 0, n)
	for i := range n {
		d := req.MinDifficulty
		if n > 1 {
			d += (req.MaxDifficulty - req.MinDifficulty) * float64(i) / float64(n-1)
		}
		d = math.Round(d*10) / 10
		correct := optionIDs[i%len(optionIDs)]
		opts := make([]store.Option, len(optionIDs))
		for j, id := range optionIDs {
			opts[j] = store.Option{ID: id, Text: fmt.Sprintf("Option %s for question %d", strings.ToUpper(id), i+1)}
		}
		out = append(out, store.Question{
			ID:              fmt.Sprintf("q%d", i+1),
			Text:            fmt.Sprintf("Question %d on %s at difficulty %.1f?", i+1, req.SkillName, d),
			Options:         opts,
			CorrectAnswerID: correct,
			Difficulty:      d,
			Explanation:     fmt.Sprintf("Option %s applies %s correctly.", strings.ToUpper(correct), req.SkillName),
		})
	}
	return out, nil
}

func (f *Fixture) GenerateModule(_ context.Context, req ModuleRequest) (*ModuleDraft, error) {
	para := fmt.Sprintf("This section develops %s towards level %d. ", req.SkillName, req.TargetLevel)
	content := strings.Repeat(para, 20*req.TargetLevel)

	draft := &ModuleDraft{
		Title:       fmt.Sprintf("%s: part %d of %d", req.SkillName, req.ModuleIndex, req.TotalModules),
		Description: fmt.Sprintf("Level %d material on %s", req.TargetLevel, req.SkillName),
		Content:     content,
	}
	for i := range 2 {
		draft.Exercises = append(draft.Exercises, store.ModuleExercise{
			Question: fmt.Sprintf("Exercise %d: apply %s", i+1, req.SkillName),
			Solution: "See the worked example in the reading.",
		})
	}
	for i := range 3 {
		draft.Assessment = append(draft.Assessment, store.ModuleCheckItem{
			Question:   fmt.Sprintf("Check %d on %s", i+1, req.SkillName),
			Answer:     "Covered in the reading.",
			Difficulty: float64(req.TargetLevel),
		})
	}
	return draft, nil
}

func (f *Fixture) ExtractGoals(_ context.Context, text string) ([]GoalDraft, error) {
	return HeuristicGoals(text, f.year()+1), nil
}

func (f *Fixture) ExtractGoalSkills(_ context.Context, goal GoalContext) ([]SkillRequirement, error) {
	year := goal.TimeHorizonYear
	if year == 0 {
		year = f.year() + 1
	}
	var out []SkillRequirement
	for i, term := range keyTerms(goal.Title+" "+goal.Description, 3) {
		out = append(out, SkillRequirement{
			Name:             term,
			Description:      fmt.Sprintf("%s as needed for %s", term, goal.Title),
			Category:         "technical",
			Domain:           "general",
			TargetLevel:      3 + i%2,
			ImportanceWeight: 1 - 0.2*float64(i),
			RequiredByYear:   year,
		})
	}
	return out, nil
}

func (f *Fixture) ExtractEmployeeSkills(_ context.Context, emp EmployeeContext) ([]EmployeeSkill, error) {
	var out []EmployeeSkill
	for _, term := range keyTerms(emp.Role+" "+emp.Description, 4) {
		out = append(out, EmployeeSkill{
			Name:        term,
			Description: fmt.Sprintf("%s as evidenced by the profile of %s", term, emp.Name),
			Category:    "technical",
			Domain:      "general",
			Proficiency: 2.5,
		})
	}
	return out, nil
}

// AnalyzeGaps matches skills by case-insensitive name.
func (f *Fixture) AnalyzeGaps(_ context.Context, req GapAnalysisRequest) (*GapAnalysis, error) {
	current := make(map[string]SkillLevel, len(req.Current))
	for _, c := range req.Current {
		current[strings.ToLower(strings.TrimSpace(c.Name))] = c
	}

	out := &GapAnalysis{SkillMatches: []SkillMatch{}, MissingSkills: []MissingSkill{}}
	var ratio float64
	for _, r := range req.Required {
		c, ok := current[strings.ToLower(strings.TrimSpace(r.Name))]
		gap := float64(r.TargetLevel)
		if ok {
			out.SkillMatches = append(out.SkillMatches, SkillMatch{RequiredSkill: r.Name, EmployeeSkill: c.Name, Similarity: 1})
			gap = math.Max(0, float64(r.TargetLevel)-c.Level)
		}
		if gap > 0 {
			out.MissingSkills = append(out.MissingSkills, MissingSkill{
				Skill:    r.Name,
				GapValue: gap,
				Reason:   fmt.Sprintf("needs level %d", r.TargetLevel),
			})
		}
		if r.TargetLevel > 0 {
			ratio += gap / float64(r.TargetLevel)
		}
	}
	out.OverallReadiness = 1
	if len(req.Required) > 0 {
		out.OverallReadiness = math.Max(0, 1-ratio/float64(len(req.Required)))
	}
	out.Summary = fmt.Sprintf("%s covers %d of %d required skills.", req.EmployeeName, len(out.SkillMatches), len(req.Required))
	return out, nil
}

var yearPattern = regexp.MustCompile(`\b(20\d\d)\b`)

// HeuristicGoals turns each non-empty line (or sentence, for single-line
// text) into a goal. A four-digit year in the line becomes its horizon.
func HeuristicGoals(text string, defaultYear int) []GoalDraft {
	lines := strings.Split(text, "\n")
	if len(lines) == 1 {
		lines = strings.Split(text, ".")
	}
	var out []GoalDraft
	for _, line := range lines {
		line = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(line), "-*0123456789.) "))
		if len(line) < 8 {
			continue
		}
		year := defaultYear
		if m := yearPattern.FindString(line); m != "" {
			fmt.Sscanf(m, "%d", &year)
		}
		title := line
		if len(title) > 80 {
			title = strings.TrimSpace(title[:80])
		}
		out = append(out, GoalDraft{
			Title:           title,
			Description:     line,
			TimeHorizonYear: year,
			Priority:        3,
		})
	}
	return out
}

var stopWords = map[string]bool{
	"with": true, "that": true, "this": true, "from": true, "into": true, "have": true,
	"will": true, "their": true, "about": true, "across": true, "years": true, "build": true,
	"make": true, "more": true, "than": true, "over": true, "team": true, "teams": true,
}

// keyTerms returns up to n distinct title-cased words of four or more
// letters, in order of appearance.
func keyTerms(text string, n int) []string {
	seen := make(map[string]bool)
	var out []string
	for _, w := range strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !(r >= 'a' && r <= 'z')
	}) {
		if len(w) < 4 || stopWords[w] || seen[w] {
			continue
		}
		seen[w] = true
		out = append(out, strings.ToUpper(w[:1])+w[1:])
		if len(out) == n {
			break
		}
	}
	return out
}
