package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillmap/internal/ontology"
)

type skillRequest struct {
	Name           string   `json:"name" binding:"required"`
	Description    string   `json:"description"`
	Category       string   `json:"category"`
	Domain         string   `json:"domain"`
	IsFutureSkill  bool     `json:"is_future_skill"`
	MatchThreshold *float64 `json:"match_threshold"`
}

// POST /api/v1/skills creates a skill unless a similar one exists, in
// which case the existing skill is returned with 200.
func (h *handler) createSkill(c *gin.Context) {
	var req skillRequest
	if !h.bind(c, &req) {
		return
	}
	threshold := ontology.GoalMatchThreshold
	if req.MatchThreshold != nil {
		threshold = *req.MatchThreshold
	}
	m, err := h.Ontology.Resolve(c.Request.Context(), ontology.SkillDraft{
		Name:        req.Name,
		Description: req.Description,
		Category:    req.Category,
		Domain:      req.Domain,
		Future:      req.IsFutureSkill,
	}, threshold)
	if err != nil {
		h.respondError(c, err)
		return
	}
	status := http.StatusCreated
	if m.Reused {
		status = http.StatusOK
	}
	c.JSON(status, m)
}

// GET /api/v1/skills
func (h *handler) listSkills(c *gin.Context) {
	list, err := h.Store.Skills().List(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"skills": nonNil(list)})
}

// GET /api/v1/skills/:id
func (h *handler) getSkill(c *gin.Context) {
	s, err := h.Store.Skills().Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, s)
}

type matchRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Threshold   *float64 `json:"threshold"`
}

// POST /api/v1/skills/match
func (h *handler) matchSkill(c *gin.Context) {
	var req matchRequest
	if !h.bind(c, &req) {
		return
	}
	threshold := ontology.EmployeeMatchThreshold
	if req.Threshold != nil {
		threshold = *req.Threshold
	}
	m, err := h.Ontology.Match(c.Request.Context(), req.Name, req.Description, threshold)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"match": m, "threshold": threshold})
}

// POST /api/v1/skills/reindex
func (h *handler) reindexSkills(c *gin.Context) {
	n, err := h.Ontology.Reindex(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respondOK(c, gin.H{"indexed": n})
}
