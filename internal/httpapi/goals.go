package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillmap/internal/store"
)

type goalRequest struct {
	Title           string `json:"title" binding:"required"`
	Description     string `json:"description"`
	TimeHorizonYear int    `json:"time_horizon_year"`
	BusinessUnit    string `json:"business_unit"`
	Priority        int    `json:"priority"`
	OwnerEmployeeID string `json:"owner_employee_id"`
}

// POST /api/v1/goals
func (h *handler) createGoal(c *gin.Context) {
	var req goalRequest
	if !h.bind(c, &req) {
		return
	}
	g := &store.Goal{
		Title:           req.Title,
		Description:     req.Description,
		TimeHorizonYear: req.TimeHorizonYear,
		BusinessUnit:    req.BusinessUnit,
		Priority:        req.Priority,
		OwnerEmployeeID: req.OwnerEmployeeID,
	}
	if err := h.Store.Goals().Upsert(c.Request.Context(), g); err != nil {
		h.respondError(c, err)
		return
	}
	respondCreated(c, g)
}

type extractGoalsRequest struct {
	Text            string `json:"text" binding:"required"`
	OwnerEmployeeID string `json:"owner_employee_id"`
}

// POST /api/v1/goals/extract
func (h *handler) extractGoals(c *gin.Context) {
	var req extractGoalsRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.Ontology.ExtractGoals(c.Request.Context(), req.Text, req.OwnerEmployeeID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondCreated(c, res)
}

// GET /api/v1/goals
func (h *handler) listGoals(c *gin.Context) {
	list, err := h.Store.Goals().List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"goals": nonNil(list)})
}

// GET /api/v1/goals/:id
func (h *handler) getGoal(c *gin.Context) {
	ctx := c.Request.Context()
	g, err := h.Store.Goals().Get(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	reqs, err := h.Store.Goals().Requirements(ctx, g.ID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"goal": g, "requirements": nonNil(reqs)})
}

// DELETE /api/v1/goals/:id
func (h *handler) deleteGoal(c *gin.Context) {
	if err := h.Store.Goals().Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type requirementRequest struct {
	TargetLevel      int      `json:"target_level" binding:"required"`
	ImportanceWeight *float64 `json:"importance_weight"`
	RequiredByYear   int      `json:"required_by_year"`
}

// PUT /api/v1/goals/:id/requirements/:skill_id
func (h *handler) putRequirement(c *gin.Context) {
	var req requirementRequest
	if !h.bind(c, &req) {
		return
	}
	weight := 1.0
	if req.ImportanceWeight != nil {
		weight = *req.ImportanceWeight
	}
	r := &store.RequiredSkill{
		GoalID:           c.Param("id"),
		SkillID:          c.Param("skill_id"),
		TargetLevel:      req.TargetLevel,
		ImportanceWeight: weight,
		RequiredByYear:   req.RequiredByYear,
	}
	if err := h.Store.Goals().UpsertRequirement(c.Request.Context(), r); err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, r)
}

// DELETE /api/v1/goals/:id/requirements/:skill_id
func (h *handler) deleteRequirement(c *gin.Context) {
	if err := h.Store.Goals().DeleteRequirement(c.Request.Context(), c.Param("id"), c.Param("skill_id")); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /api/v1/goals/:id/extract-skills
func (h *handler) extractGoalSkills(c *gin.Context) {
	n, err := h.Ontology.ExtractForGoal(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"goal_id": c.Param("id"), "extracted": n})
}
