package app

import (
	"context"
	"time"

	"github.com/jgirmay/learnpath/internal/health"
	"github.com/jgirmay/learnpath/pkg/config"
	"github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/logging"
	"github.com/jgirmay/learnpath/pkg/metrics"
	"github.com/jgirmay/learnpath/pkg/models"
	"github.com/jgirmay/learnpath/pkg/services/features"
	"github.com/jgirmay/learnpath/pkg/services/mastery"
	"github.com/jgirmay/learnpath/pkg/services/recommendation"
	"github.com/jgirmay/learnpath/pkg/services/similarity"
)

// System holds the bootstrapped pipeline. It is read-only after Bootstrap
// returns and safe for concurrent use.
type System struct {
	cfg    config.PipelineConfig
	logger *logging.Logger

	dataset            *models.Dataset
	prepared           *features.Prepared
	records            []models.ConceptMasteryRecord
	classifierAccuracy float64

	clustered    map[string]models.StudentFeatures
	clusterStats []models.ClusterStats
	silhouette   *float64

	analyzer    *mastery.PerformanceAnalyzer
	similarity  *similarity.Engine
	recommender *recommendation.Engine

	loadedAt time.Time
}

// Plan generates the personalized learning plan of a student.
func (s *System) Plan(ctx context.Context, studentID string) (*models.LearningPlan, error) {
	start := time.Now()
	plan, err := s.recommender.GeneratePersonalizedPlan(ctx, studentID)
	metrics.RecordPlan(time.Since(start), err)
	return plan, err
}

// Progress summarizes a student's mastery and reports their cluster. It
// fails with NOT_FOUND when the student has neither a profile nor any
// performance history.
func (s *System) Progress(studentID string) (models.ProgressSummary, models.ClusterInfo, error) {
	records := features.RecordsFor(studentID, s.records)
	if _, ok := s.dataset.Student(studentID); !ok && len(records) == 0 {
		return models.ProgressSummary{}, models.ClusterInfo{}, errors.NotFound("student " + studentID)
	}

	var summary models.ProgressSummary
	summary.TotalConceptsStudied = len(records)
	total := 0.0
	for _, r := range records {
		total += r.MasteryScore
		if r.MasteryScore >= s.cfg.MasteryThreshold {
			summary.MasteredConcepts++
		} else {
			summary.WeakConcepts++
		}
	}
	if len(records) > 0 {
		summary.AverageMastery = total / float64(len(records))
		summary.MasteryPercentage = float64(summary.MasteredConcepts) / float64(len(records)) * 100
	}

	return summary, s.ClusterInfo(studentID), nil
}

// ClusterInfo reports the cluster a student was assigned to.
func (s *System) ClusterInfo(studentID string) models.ClusterInfo {
	st, ok := s.clustered[studentID]
	if !ok || st.ClusterLabel == nil {
		return models.ClusterInfo{ClusterName: models.NotClustered}
	}
	label := *st.ClusterLabel
	return models.ClusterInfo{Clustered: true, ClusterLabel: &label, ClusterName: st.ClusterName}
}

// Trend extrapolates a student's next score on a concept from their running
// accuracy. It fails with NOT_FOUND when the student never answered a
// question on the concept.
func (s *System) Trend(studentID, conceptID string) (*models.TrendPrediction, error) {
	history := features.RunningAccuracy(studentID, conceptID, s.prepared.PerformanceFull)
	if len(history) == 0 {
		return nil, errors.NotFound("performance history for student " + studentID + " on concept " + conceptID)
	}

	out := &models.TrendPrediction{StudentID: studentID, ConceptID: conceptID, History: history}
	if next, ok := s.analyzer.PredictPerformanceTrend(history); ok {
		out.Predicted = &next
	}
	return out, nil
}

// SearchResources filters the resource catalog.
func (s *System) SearchResources(filter models.ResourceFilter) []models.Resource {
	return s.recommender.SearchResources(filter)
}

// ClusterStats returns the per-cluster summaries, ordered by label. It is
// empty when clustering was skipped.
func (s *System) ClusterStats() []models.ClusterStats {
	out := make([]models.ClusterStats, len(s.clusterStats))
	copy(out, s.clusterStats)
	return out
}

// Silhouette returns the mean silhouette coefficient of the clustering, if
// it could be evaluated.
func (s *System) Silhouette() (float64, bool) {
	if s.silhouette == nil {
		return 0, false
	}
	return *s.silhouette, true
}

// ClassifierAccuracy returns the held-out accuracy of the mastery classifier.
func (s *System) ClassifierAccuracy() float64 {
	return s.classifierAccuracy
}

// Dataset returns the tables the system was built from.
func (s *System) Dataset() *models.Dataset {
	return s.dataset
}

// LoadedAt returns when bootstrap completed.
func (s *System) LoadedAt() time.Time {
	return s.loadedAt
}

// PipelineHealth reports what the system was bootstrapped with.
func (s *System) PipelineHealth() health.PipelineHealth {
	return health.PipelineHealth{
		Status:             health.StatusHealthy,
		Students:           len(s.dataset.Students),
		Concepts:           len(s.dataset.Concepts),
		Resources:          len(s.dataset.Resources),
		Clusters:           len(s.clusterStats),
		ClassifierAccuracy: s.classifierAccuracy,
		LoadedAt:           s.loadedAt,
	}
}
