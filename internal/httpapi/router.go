// Package httpapi exposes the skill-gap services over JSON/HTTP.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/abhisek/skillmap/internal/assessment"
	"github.com/abhisek/skillmap/internal/gaps"
	"github.com/abhisek/skillmap/internal/irt"
	"github.com/abhisek/skillmap/internal/logger"
	"github.com/abhisek/skillmap/internal/ontology"
	"github.com/abhisek/skillmap/internal/pathplan"
	"github.com/abhisek/skillmap/internal/store"
)

type Deps struct {
	Store       store.Gateway
	Assessments *assessment.Engine
	Proficiency *irt.Estimator
	Gaps        *gaps.Scorer
	Paths       *pathplan.Scheduler
	Ontology    *ontology.Matcher
	Log         *logger.Logger
	CORSOrigins []string
}

type handler struct {
	Deps
	log *logger.Logger
}

func NewRouter(d Deps) *gin.Engine {
	h := &handler{Deps: d, log: d.Log.With("component", "httpapi")}

	router := gin.New()
	router.Use(gin.Recovery(), h.requestLog())
	router.Use(cors.New(corsConfig(d.CORSOrigins)))

	router.GET("/healthcheck", h.health)

	v1 := router.Group("/api/v1")
	v1.GET("/health", h.health)

	v1.POST("/employees", h.createEmployee)
	v1.GET("/employees", h.listEmployees)
	v1.GET("/employees/:id", h.getEmployee)
	v1.DELETE("/employees/:id", h.deleteEmployee)
	v1.POST("/employees/:id/extract-skills", h.extractEmployeeSkills)
	v1.GET("/employees/:id/assessments", h.assessmentHistory)
	v1.POST("/employees/:id/responses", h.recordResponses)

	v1.POST("/skills", h.createSkill)
	v1.GET("/skills", h.listSkills)
	v1.GET("/skills/:id", h.getSkill)
	v1.POST("/skills/match", h.matchSkill)
	v1.POST("/skills/reindex", h.reindexSkills)

	v1.POST("/goals", h.createGoal)
	v1.POST("/goals/extract", h.extractGoals)
	v1.GET("/goals", h.listGoals)
	v1.GET("/goals/:id", h.getGoal)
	v1.DELETE("/goals/:id", h.deleteGoal)
	v1.PUT("/goals/:id/requirements/:skill_id", h.putRequirement)
	v1.DELETE("/goals/:id/requirements/:skill_id", h.deleteRequirement)
	v1.POST("/goals/:id/extract-skills", h.extractGoalSkills)

	v1.POST("/assessments", h.generateAssessment)
	v1.GET("/assessments/:id", h.getAssessment)
	v1.POST("/assessments/:id/submit", h.submitAssessment)

	v1.GET("/gaps/employees/:employee_id/goals/:goal_id", h.scoreGap)
	v1.POST("/gaps/employees/:employee_id/goals/:goal_id/analyze", h.analyzeGap)
	v1.GET("/gaps/teams/:manager_id/goals/:goal_id", h.scoreTeam)

	v1.POST("/learning-paths", h.buildPath)
	v1.POST("/learning-paths/pdf", h.buildPathPDF)

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:  []string{"Authorization", "Content-Type", "X-Requested-With"},
		ExposeHeaders: []string{"Content-Disposition"},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 0 || (len(origins) == 1 && origins[0] == "*") {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
		cfg.AllowCredentials = true
	}
	return cfg
}

func (h *handler) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		h.log.Debug("request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds())
	}
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
