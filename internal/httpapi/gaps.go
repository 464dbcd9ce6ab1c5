package httpapi

import "github.com/gin-gonic/gin"

// GET /api/v1/gaps/employees/:employee_id/goals/:goal_id
func (h *handler) scoreGap(c *gin.Context) {
	res, err := h.Gaps.Score(c.Request.Context(), c.Param("employee_id"), c.Param("goal_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, res)
}

// POST /api/v1/gaps/employees/:employee_id/goals/:goal_id/analyze
func (h *handler) analyzeGap(c *gin.Context) {
	res, err := h.Gaps.Analyze(c.Request.Context(), c.Param("employee_id"), c.Param("goal_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, res)
}

// GET /api/v1/gaps/teams/:manager_id/goals/:goal_id
func (h *handler) scoreTeam(c *gin.Context) {
	res, err := h.Gaps.ScoreTeam(c.Request.Context(), c.Param("manager_id"), c.Param("goal_id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, res)
}
