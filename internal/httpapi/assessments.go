package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillmap/internal/assessment"
)

// POST /api/v1/assessments
func (h *handler) generateAssessment(c *gin.Context) {
	var in assessment.GenerateInput
	if !h.bind(c, &in) {
		return
	}
	res, err := h.Assessments.Generate(c.Request.Context(), in)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondCreated(c, res)
}

// GET /api/v1/assessments/:id
func (h *handler) getAssessment(c *gin.Context) {
	a, err := h.Assessments.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, a)
}

type submitRequest struct {
	EmployeeID string            `json:"employee_id" binding:"required"`
	Answers    map[string]string `json:"answers"`
}

// POST /api/v1/assessments/:id/submit
func (h *handler) submitAssessment(c *gin.Context) {
	var req submitRequest
	if !h.bind(c, &req) {
		return
	}
	res, err := h.Assessments.Submit(c.Request.Context(), c.Param("id"), req.EmployeeID, req.Answers)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, res)
}
