package store

import "time"

// ProfileEntry is an employee's latent ability for one skill.
type ProfileEntry struct {
	Theta float64 `json:"theta"`
	Alpha float64 `json:"alpha"`
	Level float64 `json:"level"`
}

// Profile maps skill id to ProfileEntry.
type Profile map[string]ProfileEntry

// Clone returns a copy that can be mutated without touching p.
func (p Profile) Clone() Profile {
	out := make(Profile, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

type Employee struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Role        string     `json:"role,omitempty"`
	ManagerID   string     `json:"manager_id,omitempty"`
	Location    string     `json:"location,omitempty"`
	HireDate    *time.Time `json:"hire_date,omitempty"`
	Profile     Profile    `json:"profile"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

type Skill struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Category      string    `json:"category,omitempty"`
	Domain        string    `json:"domain,omitempty"`
	Description   string    `json:"description,omitempty"`
	ParentSkillID string    `json:"parent_skill_id,omitempty"`
	IsFutureSkill bool      `json:"is_future_skill"`
	CreatedAt     time.Time `json:"created_at"`
}

type Goal struct {
	ID              string    `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description,omitempty"`
	TimeHorizonYear int       `json:"time_horizon_year"`
	BusinessUnit    string    `json:"business_unit,omitempty"`
	Priority        int       `json:"priority"`
	OwnerEmployeeID string    `json:"owner_employee_id,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// RequiredSkill is keyed by (GoalID, SkillID).
type RequiredSkill struct {
	GoalID           string  `json:"goal_id"`
	SkillID          string  `json:"skill_id"`
	TargetLevel      int     `json:"target_level"`
	ImportanceWeight float64 `json:"importance_weight"`
	RequiredByYear   int     `json:"required_by_year,omitempty"`
}

// ModuleContent is the body of a generated learning module.
type ModuleContent struct {
	Content      string            `json:"content"`
	Exercises    []ModuleExercise  `json:"exercises,omitempty"`
	Assessment   []ModuleCheckItem `json:"assessment,omitempty"`
	TargetLevel  int               `json:"target_level,omitempty"`
	ModuleIndex  int               `json:"module_index,omitempty"`
	TotalModules int               `json:"total_modules,omitempty"`
}

type ModuleExercise struct {
	Question string `json:"question"`
	Solution string `json:"solution"`
}

type ModuleCheckItem struct {
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Difficulty float64 `json:"difficulty"`
}

type Module struct {
	ID              string         `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	Provider        string         `json:"provider,omitempty"`
	Format          string         `json:"format,omitempty"`
	DurationMinutes *int           `json:"duration_minutes,omitempty"`
	Difficulty      *float64       `json:"difficulty_level,omitempty"`
	Language        string         `json:"language"`
	SkillIDs        []string       `json:"skill_ids"`
	Content         *ModuleContent `json:"content,omitempty"`
	IsGenerated     bool           `json:"is_generated"`
	CreatedAt       time.Time      `json:"created_at"`
}

const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

type Option struct {
	ID   string `json:"option_id"`
	Text string `json:"text"`
}

type Question struct {
	ID              string   `json:"question_id"`
	Text            string   `json:"question_text"`
	Options         []Option `json:"options"`
	CorrectAnswerID string   `json:"correct_answer_id,omitempty"`
	Difficulty      float64  `json:"difficulty"`
	Explanation     string   `json:"explanation,omitempty"`
}

type Assessment struct {
	ID                       string            `json:"id"`
	EmployeeID               string            `json:"employee_id"`
	SkillID                  string            `json:"skill_id"`
	Questions                []Question        `json:"questions"`
	Answers                  map[string]string `json:"answers,omitempty"`
	CorrectAnswers           map[string]string `json:"correct_answers,omitempty"`
	Score                    *float64          `json:"score,omitempty"`
	DifficultyLevel          float64           `json:"difficulty_level"`
	ReadinessScore           float64           `json:"readiness_score"`
	Status                   string            `json:"status"`
	EstimatedDurationMinutes int               `json:"estimated_duration_minutes"`
	CreatedAt                time.Time         `json:"created_at"`
	CompletedAt              *time.Time        `json:"completed_at,omitempty"`
}

// LLMCall is one logged request to a text model.
type LLMCall struct {
	ID           int64     `json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Provider     string    `json:"provider,omitempty"`
	Model        string    `json:"model"`
	Purpose      string    `json:"purpose"`
	InputTokens  int       `json:"input_tokens"`
	OutputTokens int       `json:"output_tokens"`
	LatencyMs    int64     `json:"latency_ms"`
	Success      bool      `json:"success"`
	ErrorMessage string    `json:"error_message,omitempty"`
	RequestBody  string    `json:"request_body,omitempty"`
	ResponseBody string    `json:"response_body,omitempty"`
}
