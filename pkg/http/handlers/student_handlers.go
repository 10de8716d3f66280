// Package handlers serves the public recommendation API.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/http/middleware"
	"github.com/jgirmay/learnpath/pkg/models"
)

// Service is the recommendation system as seen by the API.
type Service interface {
	Plan(ctx context.Context, studentID string) (*models.LearningPlan, error)
	Progress(studentID string) (models.ProgressSummary, models.ClusterInfo, error)
	Trend(studentID, conceptID string) (*models.TrendPrediction, error)
	SearchResources(filter models.ResourceFilter) []models.Resource
}

// PlanResponse is returned by GET /api/student/:id/recommendations
type PlanResponse struct {
	Success      bool                 `json:"success"`
	StudentID    string               `json:"student_id"`
	Plan         *models.LearningPlan `json:"plan"`
	Explanations Explanations         `json:"explanations"`
}

// Explanations describe how each part of a plan was produced.
type Explanations struct {
	WeakConcepts    string `json:"weak_concepts"`
	LearningPath    string `json:"learning_path"`
	Recommendations string `json:"recommendations"`
	Schedule        string `json:"schedule"`
}

// ProgressResponse is returned by GET /api/student/:id/progress
type ProgressResponse struct {
	Success     bool                   `json:"success"`
	StudentID   string                 `json:"student_id"`
	Progress    models.ProgressSummary `json:"progress"`
	ClusterInfo models.ClusterInfo     `json:"cluster_info"`
}

// TrendResponse is returned by GET /api/student/:id/concepts/:concept_id/trend
type TrendResponse struct {
	Success bool                    `json:"success"`
	Trend   *models.TrendPrediction `json:"trend"`
}

// StudentHandlers serves per-student endpoints
type StudentHandlers struct {
	service Service
}

// NewStudentHandlers creates student handlers
func NewStudentHandlers(service Service) *StudentHandlers {
	return &StudentHandlers{service: service}
}

func explain(plan *models.LearningPlan) Explanations {
	style := plan.LearningStyle
	if style == "" {
		style = "default"
	}
	return Explanations{
		WeakConcepts:    "Identified weak concepts based on performance history",
		LearningPath:    "Learning path follows prerequisite structure",
		Recommendations: "Resources selected based on difficulty & learning style",
		Schedule:        "Optimized for " + style + " learning style",
	}
}

func studentID(c *gin.Context) (string, error) {
	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		return "", errors.BadRequest("student id is required")
	}
	return id, nil
}

// GetRecommendations returns the personalized plan of a student
// GET /api/student/:id/recommendations
func (h *StudentHandlers) GetRecommendations(c *gin.Context) {
	id, err := studentID(c)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	plan, err := h.service.Plan(c.Request.Context(), id)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, PlanResponse{
		Success:      true,
		StudentID:    id,
		Plan:         plan,
		Explanations: explain(plan),
	})
}

// GetProgress returns a student's mastery summary and cluster
// GET /api/student/:id/progress
func (h *StudentHandlers) GetProgress(c *gin.Context) {
	id, err := studentID(c)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	progress, cluster, err := h.service.Progress(id)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, ProgressResponse{
		Success:     true,
		StudentID:   id,
		Progress:    progress,
		ClusterInfo: cluster,
	})
}

// GetTrend predicts a student's next score on a concept
// GET /api/student/:id/concepts/:concept_id/trend
func (h *StudentHandlers) GetTrend(c *gin.Context) {
	id, err := studentID(c)
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	trend, err := h.service.Trend(id, c.Param("concept_id"))
	if err != nil {
		middleware.JSONErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, TrendResponse{Success: true, Trend: trend})
}
