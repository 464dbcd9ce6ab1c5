package store

import (
	"context"
	"time"
)

// QueryOpts bounds list queries.
type QueryOpts struct {
	Limit int       // 0 = unlimited
	From  time.Time // created_at >= From
}

type EmployeeRepo interface {
	Get(ctx context.Context, id string) (*Employee, error)
	List(ctx context.Context) ([]Employee, error)
	// ListByManager returns the direct reports of managerID.
	ListByManager(ctx context.Context, managerID string) ([]Employee, error)
	Upsert(ctx context.Context, e *Employee) error
	// SaveProfile overwrites the stored profile (last writer wins).
	SaveProfile(ctx context.Context, employeeID string, p Profile) error
	Delete(ctx context.Context, id string) error
}

type SkillRepo interface {
	Get(ctx context.Context, id string) (*Skill, error)
	GetByName(ctx context.Context, name string) (*Skill, error)
	List(ctx context.Context) ([]Skill, error)
	Upsert(ctx context.Context, s *Skill) error
	Delete(ctx context.Context, id string) error
}

type GoalRepo interface {
	Get(ctx context.Context, id string) (*Goal, error)
	List(ctx context.Context) ([]Goal, error)
	Upsert(ctx context.Context, g *Goal) error
	// Delete removes the goal and its requirements.
	Delete(ctx context.Context, id string) error
	// Requirements are returned in insertion order.
	Requirements(ctx context.Context, goalID string) ([]RequiredSkill, error)
	UpsertRequirement(ctx context.Context, r *RequiredSkill) error
	DeleteRequirement(ctx context.Context, goalID, skillID string) error
}

type ModuleRepo interface {
	Get(ctx context.Context, id string) (*Module, error)
	ListBySkill(ctx context.Context, skillID string) ([]Module, error)
	Upsert(ctx context.Context, m *Module) error
}

type AssessmentRepo interface {
	Create(ctx context.Context, a *Assessment) error
	Get(ctx context.Context, id string) (*Assessment, error)
	// ListByEmployee returns newest first; skillID may be empty.
	ListByEmployee(ctx context.Context, employeeID, skillID string) ([]Assessment, error)
	// Complete stores the graded result. It succeeds only while the stored
	// status is still pending and returns a conflict error otherwise.
	Complete(ctx context.Context, a *Assessment) error
}

type LLMCallRepo interface {
	Append(ctx context.Context, c *LLMCall) error
	List(ctx context.Context, opts QueryOpts) ([]LLMCall, error)
	Get(ctx context.Context, id int64) (*LLMCall, error)
}

// Repos groups the repositories that share one connection or transaction.
type Repos interface {
	Employees() EmployeeRepo
	Skills() SkillRepo
	Goals() GoalRepo
	Modules() ModuleRepo
	Assessments() AssessmentRepo
}

// Gateway is Repos plus transactions. Services depend on this rather
// than on *Store.
type Gateway interface {
	Repos
	Transaction(ctx context.Context, fn func(Repos) error) error
}
