package assessment

import "github.com/abhisek/skillmap/internal/store"

const (
	DefaultNumQuestions = 10
	MaxNumQuestions     = 50

	// MinutesPerQuestion drives estimated_duration_minutes.
	MinutesPerQuestion = 1.5
)

type GenerateInput struct {
	EmployeeID       string   `json:"employee_id"`
	SkillID          string   `json:"skill_id"`
	SkillName        string   `json:"skill_name,omitempty"`
	SkillDescription string   `json:"skill_description,omitempty"`
	ReadinessScore   *float64 `json:"readiness_score,omitempty"`
	NumQuestions     int      `json:"num_questions,omitempty"`
}

// Band is the inclusive difficulty range questions are requested in.
type Band struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// GenerateResult carries the redacted pending assessment. Degraded is set
// when deduplication left fewer questions than requested.
type GenerateResult struct {
	Assessment     *store.Assessment `json:"assessment"`
	BaseDifficulty float64           `json:"base_difficulty"`
	Band           Band              `json:"band"`
	Requested      int               `json:"requested"`
	Generated      int               `json:"generated"`
	Degraded       bool              `json:"degraded"`
}

type Feedback struct {
	QuestionID   string  `json:"question_id"`
	QuestionText string  `json:"question_text"`
	Submitted    string  `json:"submitted_answer_id"`
	Correct      string  `json:"correct_answer_id"`
	IsCorrect    bool    `json:"is_correct"`
	Explanation  string  `json:"explanation"`
	Difficulty   float64 `json:"difficulty"`
}

type SubmitResult struct {
	AssessmentID       string     `json:"assessment_id"`
	SkillID            string     `json:"skill_id"`
	CorrectCount       int        `json:"correct_count"`
	Total              int        `json:"total"`
	PercentageCorrect  float64    `json:"percentage_correct"`
	ProficiencyScore   float64    `json:"proficiency_score"`
	Theta              float64    `json:"theta"`
	IRTLevel           float64    `json:"irt_level"`
	UpdatedProficiency float64    `json:"updated_proficiency"`
	Feedback           []Feedback `json:"feedback"`
}
