package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillmap/internal/irt"
	"github.com/abhisek/skillmap/internal/store"
)

type employeeRequest struct {
	Email       string     `json:"email" binding:"required,email"`
	Name        string     `json:"name" binding:"required"`
	Description string     `json:"description"`
	Role        string     `json:"role"`
	ManagerID   string     `json:"manager_id"`
	Location    string     `json:"location"`
	HireDate    *time.Time `json:"hire_date"`
}

// POST /api/v1/employees
func (h *handler) createEmployee(c *gin.Context) {
	var req employeeRequest
	if !h.bind(c, &req) {
		return
	}
	emp := &store.Employee{
		Email:       req.Email,
		Name:        req.Name,
		Description: req.Description,
		Role:        req.Role,
		ManagerID:   req.ManagerID,
		Location:    req.Location,
		HireDate:    req.HireDate,
	}
	if err := h.Store.Employees().Upsert(c.Request.Context(), emp); err != nil {
		h.respondError(c, err)
		return
	}
	respondCreated(c, emp)
}

// GET /api/v1/employees
func (h *handler) listEmployees(c *gin.Context) {
	ctx := c.Request.Context()
	var (
		list []store.Employee
		err  error
	)
	if manager := c.Query("manager_id"); manager != "" {
		list, err = h.Store.Employees().ListByManager(ctx, manager)
	} else {
		list, err = h.Store.Employees().List(ctx)
	}
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"employees": nonNil(list)})
}

// GET /api/v1/employees/:id
func (h *handler) getEmployee(c *gin.Context) {
	emp, err := h.Store.Employees().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, emp)
}

// DELETE /api/v1/employees/:id
func (h *handler) deleteEmployee(c *gin.Context) {
	if err := h.Store.Employees().Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/employees/:id/extract-skills
func (h *handler) extractEmployeeSkills(c *gin.Context) {
	n, err := h.Ontology.ExtractForEmployee(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"employee_id": c.Param("id"), "extracted": n})
}

// GET /api/v1/employees/:id/assessments?skill_id=
func (h *handler) assessmentHistory(c *gin.Context) {
	list, err := h.Assessments.History(c.Request.Context(), c.Param("id"), c.Query("skill_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"assessments": nonNil(list)})
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type responseItem struct {
	SkillID    string   `json:"skill_id" binding:"required"`
	Difficulty float64  `json:"difficulty"`
	Alpha      *float64 `json:"alpha"`
	Correct    bool     `json:"correct"`
}

type responsesRequest struct {
	Responses []responseItem `json:"responses" binding:"required,min=1,dive"`
}

// POST /api/v1/employees/:id/responses applies graded responses gathered
// outside an assessment to the employee's profile.
func (h *handler) recordResponses(c *gin.Context) {
	var req responsesRequest
	if !h.bind(c, &req) {
		return
	}
	batch := make([]irt.SkillResponse, 0, len(req.Responses))
	for _, r := range req.Responses {
		alpha := irt.DefaultAlpha
		if r.Alpha != nil {
			alpha = *r.Alpha
		}
		batch = append(batch, irt.SkillResponse{
			SkillID:  r.SkillID,
			Response: irt.Response{Alpha: alpha, Difficulty: r.Difficulty, Correct: r.Correct},
		})
	}
	profile, err := h.Proficiency.UpdateEmployee(c.Request.Context(), c.Param("id"), batch)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"employee_id": c.Param("id"), "profile": profile})
}
