package pathplan

// Item is one module allocated to a skill. Truncated is set when the
// module was shortened to the remaining budget.
type Item struct {
	Order           int     `json:"order"`
	SkillID         string  `json:"skill_id"`
	SkillName       string  `json:"skill_name"`
	ModuleID        string  `json:"module_id"`
	Title           string  `json:"title"`
	Description     string  `json:"description,omitempty"`
	ExpectedGain    float64 `json:"expected_gain"`
	DurationMinutes int     `json:"duration_minutes"`
	IsGenerated     bool    `json:"is_generated"`
	Truncated       bool    `json:"truncated,omitempty"`
}

// Meta describes how the plan relates to the gap and the budget.
type Meta struct {
	Similarity         float64  `json:"similarity"`
	GapIndex           float64  `json:"gap_index"`
	MaxMinutes         int      `json:"max_minutes"`
	UtilizationPercent float64  `json:"utilization_percent"`
	YearsLeft          *float64 `json:"years_left,omitempty"`
	Message            string   `json:"message,omitempty"`
}

// Plan is an ordered, time-boxed list of learning items for one goal.
type Plan struct {
	EmployeeID   string  `json:"employee_id"`
	GoalID       string  `json:"goal_id"`
	Items        []Item  `json:"items"`
	TotalMinutes int     `json:"total_minutes"`
	TotalHours   float64 `json:"total_hours"`
	Meta         Meta    `json:"meta"`
}
