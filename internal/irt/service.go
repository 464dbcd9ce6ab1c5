package irt

import (
	"context"
	"fmt"

	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/store"
)

// Estimator applies graded responses to stored employee profiles.
type Estimator struct {
	employees store.EmployeeRepo
	log       *logger.Logger
}

func NewEstimator(employees store.EmployeeRepo, log *logger.Logger) *Estimator {
	return &Estimator{employees: employees, log: log.With("service", "ProficiencyEstimator")}
}

// UpdateEmployee is a read-modify-write of the employee's profile; the
// last writer wins.
func (e *Estimator) UpdateEmployee(ctx context.Context, employeeID string, responses []SkillResponse) (store.Profile, error) {
	emp, err := e.employees.Get(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	profile, touched := ApplyBatch(emp.Profile, responses)
	if err := e.employees.SaveProfile(ctx, employeeID, profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	e.log.Debug("profile updated", "employee_id", employeeID, "skills", len(touched), "responses", len(responses))
	return profile, nil
}
