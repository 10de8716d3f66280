package health

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Status values reported by the checker.
const (
	StatusHealthy   = "healthy"
	StatusDegraded  = "degraded"
	StatusUnhealthy = "unhealthy"
)

// HealthStatus represents the overall system health
type HealthStatus struct {
	Status    string                   `json:"status"`
	Timestamp time.Time                `json:"timestamp"`
	Message   string                   `json:"message"`
	Services  map[string]ServiceHealth `json:"services"`
	Pipeline  PipelineHealth           `json:"pipeline"`
	Uptime    string                   `json:"uptime"`
}

// ServiceHealth represents health of a service
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Latency string `json:"latency_ms"`
}

// PipelineHealth describes the bootstrapped dataset
type PipelineHealth struct {
	Status             string    `json:"status"`
	Students           int       `json:"students"`
	Concepts           int       `json:"concepts"`
	Resources          int       `json:"resources"`
	Clusters           int       `json:"clusters"`
	ClassifierAccuracy float64   `json:"classifier_accuracy"`
	LoadedAt           time.Time `json:"loaded_at"`
}

// Pipeline is the view of the recommendation system the checker needs.
type Pipeline interface {
	PipelineHealth() PipelineHealth
}

// HealthChecker performs health checks on system components
type HealthChecker struct {
	db        *sql.DB
	pipeline  Pipeline
	startTime time.Time
}

// NewHealthChecker creates a new health checker. db may be nil when the
// service runs without a database.
func NewHealthChecker(db *sql.DB, pipeline Pipeline) *HealthChecker {
	return &HealthChecker{
		db:        db,
		pipeline:  pipeline,
		startTime: time.Now(),
	}
}

// Check performs a complete health check
func (hc *HealthChecker) Check(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Services:  make(map[string]ServiceHealth),
		Uptime:    hc.calculateUptime(),
	}

	dbHealth := hc.checkDatabase(ctx)
	status.Services["database"] = dbHealth

	if hc.pipeline != nil {
		status.Pipeline = hc.pipeline.PipelineHealth()
	} else {
		status.Pipeline = PipelineHealth{Status: StatusUnhealthy}
	}

	switch {
	case status.Pipeline.Status != StatusHealthy:
		status.Status = StatusUnhealthy
		status.Message = "Recommendation pipeline not loaded"
	case dbHealth.Status != StatusHealthy:
		status.Status = StatusDegraded
		status.Message = "Database connectivity issue"
	default:
		status.Message = fmt.Sprintf("Serving %d students over %d concepts",
			status.Pipeline.Students, status.Pipeline.Concepts)
	}

	return status
}

// IsReady reports whether requests can be served
func (hc *HealthChecker) IsReady(ctx context.Context) bool {
	return hc.Check(ctx).Status != StatusUnhealthy
}

// IsAlive reports whether the process is running
func (hc *HealthChecker) IsAlive() bool {
	return true
}

// checkDatabase verifies database connectivity
func (hc *HealthChecker) checkDatabase(ctx context.Context) ServiceHealth {
	if hc.db == nil {
		return ServiceHealth{Status: StatusDegraded, Message: "No database configured", Latency: "0"}
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	err := hc.db.PingContext(ctx)
	latency := time.Since(start)

	if err != nil {
		return ServiceHealth{
			Status:  StatusUnhealthy,
			Message: "Database connection failed: " + err.Error(),
			Latency: fmt.Sprintf("%d", latency.Milliseconds()),
		}
	}

	return ServiceHealth{
		Status:  StatusHealthy,
		Message: "Database connection successful",
		Latency: fmt.Sprintf("%d", latency.Milliseconds()),
	}
}

// calculateUptime calculates system uptime as human-readable string
func (hc *HealthChecker) calculateUptime() string {
	elapsed := time.Since(hc.startTime)

	days := int(elapsed.Hours()) / 24
	hours := int(elapsed.Hours()) % 24
	minutes := int(elapsed.Minutes()) % 60
	seconds := int(elapsed.Seconds()) % 60

	if days > 0 {
		return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
	} else if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
