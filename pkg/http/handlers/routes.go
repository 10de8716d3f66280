package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/jgirmay/learnpath/internal/health"
	"github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/http/middleware"
	"github.com/jgirmay/learnpath/pkg/logging"
)

// NewRouter builds the public API engine with its middleware chain.
func NewRouter(service Service, checker *health.HealthChecker, logger *logging.Logger) *gin.Engine {
	if logger == nil {
		logger = logging.NewNop()
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestID(),
		middleware.Logger(logger),
		middleware.ErrorHandler(logger),
		middleware.Metrics(),
	)
	engine.NoRoute(func(c *gin.Context) {
		middleware.JSONErrorResponse(c, errors.NotFound("route "+c.Request.URL.Path))
	})

	RegisterRoutes(engine.Group("/api"), service)
	if checker != nil {
		health.NewHealthHandler(checker).RegisterRoutes(engine)
	}
	return engine
}

// RegisterRoutes registers the student and resource endpoints
func RegisterRoutes(api *gin.RouterGroup, service Service) {
	students := NewStudentHandlers(service)
	resources := NewResourceHandlers(service)

	student := api.Group("/student/:id")
	{
		student.GET("/recommendations", students.GetRecommendations)
		student.GET("/progress", students.GetProgress)
		student.GET("/concepts/:concept_id/trend", students.GetTrend)
	}

	api.GET("/resources/search", resources.Search)
}
