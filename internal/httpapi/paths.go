package httpapi

import (
	"bytes"
	"fmt"
	"math"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillmap/internal/pathplan"
	"github.com/abhisek/skillmap/internal/report"
)

type pathRequest struct {
	EmployeeID string   `json:"employee_id" binding:"required"`
	GoalID     string   `json:"goal_id" binding:"required"`
	MaxHours   *float64 `json:"max_hours"`
	MaxMinutes *int     `json:"max_minutes"`
}

func (r pathRequest) budget() int {
	if r.MaxMinutes != nil {
		return *r.MaxMinutes
	}
	hours := pathplan.DefaultMaxHours
	if r.MaxHours != nil {
		hours = *r.MaxHours
	}
	return int(math.Round(hours * 60))
}

func (h *handler) plan(c *gin.Context) (*pathplan.Plan, bool) {
	var req pathRequest
	if !h.bind(c, &req) {
		return nil, false
	}
	plan, err := h.Paths.Build(c.Request.Context(), req.EmployeeID, req.GoalID, req.budget())
	if err != nil {
		h.respondError(c, err)
		return nil, false
	}
	return plan, true
}

// POST /api/v1/learning-paths
func (h *handler) buildPath(c *gin.Context) {
	if plan, ok := h.plan(c); ok {
		respondOK(c, plan)
	}
}

// POST /api/v1/learning-paths/pdf
func (h *handler) buildPathPDF(c *gin.Context) {
	plan, ok := h.plan(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()
	emp, err := h.Store.Employees().Get(ctx, plan.EmployeeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	goal, err := h.Store.Goals().Get(ctx, plan.GoalID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	var buf bytes.Buffer
	if err := report.LearningPlanPDF(&buf, plan, emp, goal); err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="learning-plan-%s.pdf"`, emp.ID))
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}
