package gaps

import "github.com/abhisek/skillmap/internal/oracle"

const (
	StatusOK             = "ok"
	StatusNoRequirements = "no_requirements"
)

// SkillGap is one required skill of a goal measured against an employee.
type SkillGap struct {
	SkillID      string  `json:"skill_id"`
	SkillName    string  `json:"skill_name"`
	TargetLevel  int     `json:"target_level"`
	CurrentLevel float64 `json:"current_level"`
	Weight       float64 `json:"importance_weight"`
	Gap          float64 `json:"gap"`
}

// Result is derived on demand and never stored. Skills keeps the goal's
// requirement order.
type Result struct {
	EmployeeID string             `json:"employee_id"`
	GoalID     string             `json:"goal_id"`
	Status     string             `json:"status"`
	Message    string             `json:"message,omitempty"`
	ScalarGaps map[string]float64 `json:"scalar_gaps"`
	Skills     []SkillGap         `json:"skills"`
	Similarity float64            `json:"similarity"`
	GapIndex   float64            `json:"gap_index"`
}

// HasGaps reports whether any required skill is still below target.
func (r *Result) HasGaps() bool {
	for _, s := range r.Skills {
		if s.Gap > 0 {
			return true
		}
	}
	return false
}

// TeamResult scores each direct report of a manager. GapIndex is the
// mean over members.
type TeamResult struct {
	ManagerID string   `json:"manager_id"`
	GoalID    string   `json:"goal_id"`
	TeamSize  int      `json:"team_size"`
	GapIndex  float64  `json:"gap_index"`
	Members   []Result `json:"members"`
}

// Analysis is the oracle's narrative view of a gap. GapAnalysis is nil
// when the goal has no requirements.
type Analysis struct {
	EmployeeID string `json:"employee_id"`
	GoalID     string `json:"goal_id"`
	Status     string `json:"status"`
	Message    string `json:"message,omitempty"`
	*oracle.GapAnalysis
}
