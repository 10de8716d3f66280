// Package metrics holds the Prometheus collectors exported on the admin
// listener.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jgirmay/learnpath/pkg/errors"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnpath_http_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnpath_http_request_duration_seconds",
			Help:    "API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	HTTPActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "learnpath_http_active_requests",
			Help: "Number of API requests currently being served",
		},
	)

	// Plan Metrics
	PlanGenerationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "learnpath_plan_generation_duration_seconds",
			Help:    "Time spent building a personalized learning plan",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	PlansGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "learnpath_plans_generated_total",
			Help: "Learning plans requested, by outcome",
		},
		[]string{"outcome"}, // "ok", "not_found", "uninitialized", "error"
	)

	// Pipeline Metrics
	PipelineStageDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "learnpath_pipeline_stage_duration_seconds",
			Help:    "Duration of each bootstrap pipeline stage",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 15, 60},
		},
		[]string{"stage"},
	)

	ClassifierAccuracy = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "learnpath_classifier_accuracy",
			Help: "Held-out accuracy of the mastery classifier from the last bootstrap",
		},
	)

	DatasetRows = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "learnpath_dataset_rows",
			Help: "Rows loaded per table at the last bootstrap",
		},
		[]string{"table"},
	)

	ClusterSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "learnpath_cluster_size",
			Help: "Students per cluster at the last bootstrap",
		},
		[]string{"cluster", "name"},
	)
)

// Plan outcome labels.
const (
	OutcomeOK            = "ok"
	OutcomeNotFound      = "not_found"
	OutcomeUninitialized = "uninitialized"
	OutcomeError         = "error"
)

// RecordHTTPRequest records an API request metric
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// TrackActiveRequest tracks in-flight API requests
func TrackActiveRequest(inc bool) {
	if inc {
		HTTPActiveRequests.Inc()
	} else {
		HTTPActiveRequests.Dec()
	}
}

// RecordPlan records a plan generation and its outcome
func RecordPlan(duration time.Duration, err error) {
	PlanGenerationDuration.Observe(duration.Seconds())
	PlansGenerated.WithLabelValues(PlanOutcome(err)).Inc()
}

// PlanOutcome maps a plan error to its outcome label.
func PlanOutcome(err error) string {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.IsNotFound(err):
		return OutcomeNotFound
	case errors.IsUninitialized(err):
		return OutcomeUninitialized
	default:
		return OutcomeError
	}
}

// RecordStage records how long a bootstrap stage took
func RecordStage(stage string, duration time.Duration) {
	PipelineStageDuration.WithLabelValues(stage).Observe(duration.Seconds())
}

// SetDatasetRows updates the per-table row gauges
func SetDatasetRows(table string, n int) {
	DatasetRows.WithLabelValues(table).Set(float64(n))
}

// SetClusterSize updates the gauge of one cluster
func SetClusterSize(label int, name string, size int) {
	ClusterSize.WithLabelValues(strconv.Itoa(label), name).Set(float64(size))
}
