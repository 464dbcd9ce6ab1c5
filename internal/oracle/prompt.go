package oracle

import (
	"fmt"
	"strings"
)

const questionSystemPrompt = `You write workplace skill assessments. Questions test applied understanding, not trivia. Every question has exactly four options with ids a, b, c and d, and exactly one correct option.`

const moduleSystemPrompt = `You design short, practical learning modules for working professionals. Content is concrete and builds on what the learner already knows.`

const goalSystemPrompt = `You read strategy documents and extract the concrete strategic goals they commit to.`

const goalSkillsSystemPrompt = `You are a workforce planning analyst. Given a strategic goal, list the skills the organization needs to deliver it, with the proficiency level (1 novice to 5 expert) and relative importance (0 to 1) of each.`

const employeeSkillsSystemPrompt = `You are a talent analyst. Given an employee profile, list the skills it evidences and estimate the proficiency of each on a 0 to 5 scale. Only list skills with clear evidence.`

const gapSystemPrompt = `You compare an employee's skills with the skills a goal requires. Match skills by meaning, not by exact name. Report only what the data supports.`

func buildQuestionMessage(req QuestionRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Skill: %s\n", req.SkillName)
	if req.SkillDescription != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.SkillDescription)
	}
	fmt.Fprintf(&b, "Number of questions: %d\n", req.NumQuestions)
	fmt.Fprintf(&b, "Difficulty range: %.1f to %.1f (1 = entry level, 5 = expert)\n", req.MinDifficulty, req.MaxDifficulty)
	b.WriteString(`
Instructions:
1. Spread difficulties evenly across the range and set each question's difficulty field accordingly.
2. Do not repeat a question or ask the same thing in different words.
3. Distractors must be plausible to someone with a partial understanding.
4. Use question ids q1, q2, ... in order.`)
	return b.String()
}

func buildModuleMessage(req ModuleRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Skill: %s\n", req.SkillName)
	if req.SkillDescription != "" {
		fmt.Fprintf(&b, "Description: %s\n", req.SkillDescription)
	}
	fmt.Fprintf(&b, "Learner's current level: %.1f of 5\n", req.CurrentLevel)
	fmt.Fprintf(&b, "Target level: %d of 5\n", req.TargetLevel)
	fmt.Fprintf(&b, "This is module %d of %d on this skill.\n", req.ModuleIndex, req.TotalModules)
	if req.ModuleIndex > 1 {
		b.WriteString("Earlier modules already covered the introduction; do not repeat introductory material.\n")
	}
	b.WriteString(`
Instructions:
1. Write reading material sized for the target level.
2. Add 2-4 hands-on exercises with reference solutions.
3. Add 3-5 short check questions with answers and a difficulty from 1 to 5.`)
	return b.String()
}

func buildGoalsMessage(text string) string {
	return "Document:\n" + text + "\n\nExtract every strategic goal. Use the current or next year when no horizon is stated."
}

func buildGoalSkillsMessage(g GoalContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Goal: %s\n", g.Title)
	if g.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", g.Description)
	}
	if g.TimeHorizonYear > 0 {
		fmt.Fprintf(&b, "Time horizon: %d\n", g.TimeHorizonYear)
	}
	if g.BusinessUnit != "" {
		fmt.Fprintf(&b, "Business unit: %s\n", g.BusinessUnit)
	}
	b.WriteString("\nList 3-10 required skills. Prefer established skill names over invented ones.")
	return b.String()
}

func buildEmployeeSkillsMessage(e EmployeeContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Employee: %s\n", e.Name)
	if e.Role != "" {
		fmt.Fprintf(&b, "Role: %s\n", e.Role)
	}
	fmt.Fprintf(&b, "Profile:\n%s\n", e.Description)
	return b.String()
}

func buildGapMessage(req GapAnalysisRequest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Employee: %s", req.EmployeeName)
	if req.Role != "" {
		fmt.Fprintf(&b, " (%s)", req.Role)
	}
	fmt.Fprintf(&b, "\nGoal: %s\n", req.GoalTitle)
	if req.GoalDescription != "" {
		fmt.Fprintf(&b, "Goal description: %s\n", req.GoalDescription)
	}

	b.WriteString("\nEmployee skills:\n")
	if len(req.Current) == 0 {
		b.WriteString("None recorded\n")
	}
	for _, s := range req.Current {
		fmt.Fprintf(&b, "- %s: level %.1f\n", s.Name, s.Level)
	}

	b.WriteString("\nRequired skills:\n")
	for _, s := range req.Required {
		fmt.Fprintf(&b, "- %s: target %d, weight %.2f\n", s.Name, s.TargetLevel, s.Weight)
	}
	return b.String()
}
