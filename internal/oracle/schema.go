package oracle

import "github.com/abhisek/skillmap/internal/llm"

func str(desc string) map[string]any {
	return map[string]any{"type": "string", "description": desc}
}

func object(props map[string]any, required ...string) map[string]any {
	req := make([]any, len(required))
	for i, r := range required {
		req[i] = r
	}
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             req,
		"additionalProperties": false,
	}
}

func array(items map[string]any, desc string) map[string]any {
	return map[string]any{"type": "array", "items": items, "description": desc}
}

// QuestionSetSchema is a batch of multiple-choice questions with exactly
// four options each.
var QuestionSetSchema = &llm.Schema{
	Name:        "assessment-questions",
	Description: "Multiple-choice questions for a skill assessment",
	Definition: object(map[string]any{
		"questions": array(object(map[string]any{
			"question_id":   str("Short unique id, e.g. q1"),
			"question_text": str("The question stem"),
			"options": map[string]any{
				"type":     "array",
				"minItems": 4,
				"maxItems": 4,
				"items": object(map[string]any{
					"option_id": str("One of a, b, c, d"),
					"text":      str("Option text"),
				}, "option_id", "text"),
			},
			"correct_answer_id": str("option_id of the correct option"),
			"difficulty": map[string]any{
				"type":    "number",
				"minimum": 1,
				"maximum": 5,
			},
			"explanation": str("Why the correct option is right (1-2 sentences)"),
		}, "question_id", "question_text", "options", "correct_answer_id", "difficulty", "explanation"),
			"The questions, in order"),
	}, "questions"),
}

// ModuleSchema is the body of one learning module.
var ModuleSchema = &llm.Schema{
	Name:        "learning-module",
	Description: "A self-contained learning module with reading, exercises and a short check",
	Definition: object(map[string]any{
		"title":       str("Module title (3-10 words)"),
		"description": str("One sentence summary"),
		"content":     str("Reading material in plain text or markdown"),
		"exercises": array(object(map[string]any{
			"question": str("Hands-on exercise"),
			"solution": str("Reference solution"),
		}, "question", "solution"), "2-4 practical exercises"),
		"assessment": array(object(map[string]any{
			"question": str("Check question"),
			"answer":   str("Expected answer"),
			"difficulty": map[string]any{
				"type":    "number",
				"minimum": 1,
				"maximum": 5,
			},
		}, "question", "answer", "difficulty"), "3-5 check questions"),
	}, "title", "description", "content", "exercises", "assessment"),
}

var GoalListSchema = &llm.Schema{
	Name:        "strategic-goals",
	Description: "Strategic goals extracted from a planning document",
	Definition: object(map[string]any{
		"goals": array(object(map[string]any{
			"title":             str("Goal title"),
			"description":       str("What the goal means for the organization"),
			"time_horizon_year": map[string]any{"type": "integer", "minimum": 2000, "maximum": 2100},
			"business_unit":     str("Owning business unit, empty if unknown"),
			"priority":          map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
		}, "title", "description", "time_horizon_year", "business_unit", "priority"), "Extracted goals"),
	}, "goals"),
}

var GoalSkillsSchema = &llm.Schema{
	Name:        "goal-required-skills",
	Description: "Skills a goal requires, with target proficiency and importance",
	Definition: object(map[string]any{
		"skills": array(object(map[string]any{
			"name":              str("Canonical skill name"),
			"description":       str("One sentence description"),
			"category":          str("technical, domain, leadership or soft"),
			"domain":            str("Knowledge domain, e.g. cloud, finance"),
			"target_level":      map[string]any{"type": "integer", "minimum": 1, "maximum": 5},
			"importance_weight": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
			"required_by_year":  map[string]any{"type": "integer", "minimum": 2000, "maximum": 2100},
		}, "name", "description", "category", "domain", "target_level", "importance_weight", "required_by_year"), "Required skills"),
	}, "skills"),
}

var EmployeeSkillsSchema = &llm.Schema{
	Name:        "employee-skills",
	Description: "Skills evidenced by an employee profile",
	Definition: object(map[string]any{
		"skills": array(object(map[string]any{
			"name":        str("Canonical skill name"),
			"description": str("One sentence description"),
			"category":    str("technical, domain, leadership or soft"),
			"domain":      str("Knowledge domain"),
			"proficiency": map[string]any{"type": "number", "minimum": 0, "maximum": 5},
		}, "name", "description", "category", "domain", "proficiency"), "Evidenced skills"),
	}, "skills"),
}

var GapAnalysisSchema = &llm.Schema{
	Name:        "gap-analysis",
	Description: "Semantic comparison of an employee's skills with a goal's requirements",
	Definition: object(map[string]any{
		"skill_matches": array(object(map[string]any{
			"required_skill": str("Required skill name"),
			"employee_skill": str("Closest employee skill name"),
			"similarity":     map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		}, "required_skill", "employee_skill", "similarity"), "Required skills the employee covers"),
		"missing_skills": array(object(map[string]any{
			"skill":     str("Required skill name"),
			"gap_value": map[string]any{"type": "number", "minimum": 0, "maximum": 5},
			"reason":    str("Why this is a gap"),
		}, "skill", "gap_value", "reason"), "Required skills with a deficit"),
		"overall_readiness": map[string]any{"type": "number", "minimum": 0, "maximum": 1},
		"summary":           str("2-3 sentence assessment"),
	}, "skill_matches", "missing_skills", "overall_readiness", "summary"),
}
