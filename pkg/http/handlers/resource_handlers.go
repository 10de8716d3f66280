package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/http/middleware"
	"github.com/jgirmay/learnpath/pkg/models"
)

// SearchResponse is returned by GET /api/resources/search
type SearchResponse struct {
	Success   bool              `json:"success"`
	Count     int               `json:"count"`
	Resources []models.Resource `json:"resources"`
}

// ResourceHandlers serves catalog endpoints
type ResourceHandlers struct {
	service Service
}

// NewResourceHandlers creates resource handlers
func NewResourceHandlers(service Service) *ResourceHandlers {
	return &ResourceHandlers{service: service}
}

// Search filters the resource catalog by concept, type and difficulty
// GET /api/resources/search
func (h *ResourceHandlers) Search(c *gin.Context) {
	var filter models.ResourceFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		middleware.JSONErrorResponse(c, errors.Validation("invalid search parameters", err.Error()))
		return
	}

	resources := h.service.SearchResources(filter)
	c.JSON(http.StatusOK, SearchResponse{
		Success:   true,
		Count:     len(resources),
		Resources: resources,
	})
}
