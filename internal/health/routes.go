package health

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
)

// HealthHandler provides health check endpoints
type HealthHandler struct {
	checker *HealthChecker
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(checker *HealthChecker) *HealthHandler {
	return &HealthHandler{
		checker: checker,
	}
}

// RegisterRoutes registers health check endpoints
func (h *HealthHandler) RegisterRoutes(engine *gin.Engine) {
	health := engine.Group("/health")
	{
		health.GET("", h.handleHealthStatus)
		health.GET("/liveness", h.handleLiveness)
		health.GET("/readiness", h.handleReadiness)
	}
}

// handleHealthStatus returns complete health status
func (h *HealthHandler) handleHealthStatus(c *gin.Context) {
	status := h.checker.Check(c.Request.Context())
	c.JSON(httpStatus(status), status)
}

// handleLiveness checks if the service is running
func (h *HealthHandler) handleLiveness(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"alive":   h.checker.IsAlive(),
		"message": "Service is running",
	})
}

// handleReadiness checks if the service is ready to serve requests
func (h *HealthHandler) handleReadiness(c *gin.Context) {
	status := h.checker.Check(c.Request.Context())
	if status.Status == StatusUnhealthy {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"ready":   false,
			"message": "Service is not ready: " + status.Message,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ready":   true,
		"message": "Service is ready to serve requests",
	})
}

// ServeHTTP renders the full health status for plain net/http routers.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	status := h.checker.Check(r.Context())
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus(status))
	json.NewEncoder(w).Encode(status)
}

func httpStatus(status *HealthStatus) int {
	if status.Status == StatusUnhealthy {
		return http.StatusServiceUnavailable
	}
	return http.StatusOK
}
