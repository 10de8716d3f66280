// Package mastery classifies concept mastery and identifies weak concepts.
package mastery

import (
	"math"
	"math/rand"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/jgirmay/learnpath/pkg/logging"
	"github.com/jgirmay/learnpath/pkg/models"
)

// Options tunes the analyzer.
type Options struct {
	// MasteryThreshold is the score at or above which a concept counts as mastered.
	MasteryThreshold float64
	// MinSamples is the smallest dataset the classifier is trained on.
	MinSamples int
	TestRatio  float64
	MaxIter    int
	Seed       int64
}

// DefaultOptions returns the standard analyzer settings.
func DefaultOptions() Options {
	return Options{
		MasteryThreshold: 70,
		MinSamples:       5,
		TestRatio:        0.2,
		MaxIter:          500,
		Seed:             42,
	}
}

const minTrendPoints = 3

// PerformanceAnalyzer levels, classifies and filters concept mastery records.
type PerformanceAnalyzer struct {
	opts   Options
	logger *logging.Logger
}

// NewPerformanceAnalyzer creates an analyzer. A nil logger discards output.
func NewPerformanceAnalyzer(opts Options, logger *logging.Logger) *PerformanceAnalyzer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &PerformanceAnalyzer{opts: opts, logger: logger}
}

// LevelFor maps a mastery score to its band.
func LevelFor(score float64) models.MasteryLevel {
	switch {
	case score >= 85:
		return models.LevelAdvanced
	case score >= 70:
		return models.LevelIntermediate
	case score >= 50:
		return models.LevelBeginner
	default:
		return models.LevelStruggling
	}
}

// AnalyzeConceptMastery returns a copy of records with MasteryLevel set.
func (a *PerformanceAnalyzer) AnalyzeConceptMastery(records []models.ConceptMasteryRecord) []models.ConceptMasteryRecord {
	if len(records) == 0 {
		a.logger.Warn("no mastery records to analyze")
		return records
	}
	out := make([]models.ConceptMasteryRecord, len(records))
	for i, r := range records {
		r.MasteryLevel = LevelFor(r.MasteryScore)
		out[i] = r
	}
	return out
}

// ClassifyConceptMastery trains a logistic classifier predicting whether a
// concept is mastered from accuracy, time, attempts and question count, and
// annotates a copy of records with its predictions. The returned accuracy is
// measured on a held-out split. Below MinSamples rows the labels themselves
// are used as predictions and the accuracy is 0.
func (a *PerformanceAnalyzer) ClassifyConceptMastery(records []models.ConceptMasteryRecord) ([]models.ConceptMasteryRecord, float64) {
	if len(records) == 0 {
		a.logger.Warn("no mastery records to classify")
		return records, 0
	}

	X := make([][]float64, len(records))
	y := make([]int, len(records))
	for i, r := range records {
		X[i] = []float64{r.Accuracy, r.AvgTimeTaken, r.AvgAttempts, float64(r.TotalQuestions)}
		if r.MasteryScore >= a.opts.MasteryThreshold {
			y[i] = 1
		}
	}
	imputeColumnMeans(X)

	out := make([]models.ConceptMasteryRecord, len(records))
	copy(out, records)

	if len(records) < a.opts.MinSamples {
		a.logger.Warn("insufficient samples for mastery classifier, using labels",
			zap.Int("samples", len(records)),
			zap.Int("min_samples", a.opts.MinSamples),
		)
		for i := range out {
			label := y[i]
			prob := float64(label)
			out[i].PredictedMastery = &label
			out[i].MasteryProbability = &prob
		}
		return out, 0
	}

	trainIdx, testIdx := splitIndices(len(records), a.opts.TestRatio, a.opts.Seed)
	trainX := make([][]float64, len(trainIdx))
	trainY := make([]int, len(trainIdx))
	for i, idx := range trainIdx {
		trainX[i] = X[idx]
		trainY[i] = y[idx]
	}

	model := fitLogistic(trainX, trainY, a.opts.MaxIter, 1.0)

	for i := range out {
		pred := model.predict(X[i])
		prob := model.probability(X[i])
		out[i].PredictedMastery = &pred
		out[i].MasteryProbability = &prob
	}

	hits := 0
	for _, idx := range testIdx {
		if model.predict(X[idx]) == y[idx] {
			hits++
		}
	}
	accuracy := 0.0
	if len(testIdx) > 0 {
		accuracy = float64(hits) / float64(len(testIdx))
	}

	a.logger.Debug("mastery classifier trained",
		zap.Int("train", len(trainIdx)),
		zap.Int("test", len(testIdx)),
		zap.Float64("accuracy", accuracy),
	)
	return out, accuracy
}

// splitIndices shuffles 0..n-1 with seed and returns (train, test) where the
// test part holds ceil(ratio*n) indices.
func splitIndices(n int, ratio float64, seed int64) ([]int, []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n)
	nTest := int(math.Ceil(ratio * float64(n)))
	if nTest >= n {
		nTest = n - 1
	}
	return perm[nTest:], perm[:nTest]
}

// GetWeakConcepts returns the student's Struggling and Beginner concepts,
// weakest first. Records must already carry a MasteryLevel.
func (a *PerformanceAnalyzer) GetWeakConcepts(studentID string, records []models.ConceptMasteryRecord) []models.WeakConcept {
	weak := make([]models.WeakConcept, 0)
	for _, r := range records {
		if r.StudentID != studentID || !r.MasteryLevel.IsWeak() {
			continue
		}
		weak = append(weak, models.WeakConcept{
			ConceptID:    r.ConceptID,
			ConceptName:  r.ConceptName,
			MasteryScore: r.MasteryScore,
			MasteryLevel: r.MasteryLevel,
		})
	}
	sort.SliceStable(weak, func(i, j int) bool {
		return weak[i].MasteryScore < weak[j].MasteryScore
	})
	return weak
}

// PredictPerformanceTrend fits a line through history (one point per step)
// and extrapolates the next step, clamped to [0, 100]. It reports false when
// fewer than three points are available.
func (a *PerformanceAnalyzer) PredictPerformanceTrend(history []float64) (float64, bool) {
	if len(history) < minTrendPoints {
		return 0, false
	}
	xs := make([]float64, len(history))
	for i := range xs {
		xs[i] = float64(i)
	}
	alpha, beta := stat.LinearRegression(xs, history, nil, false)
	next := alpha + beta*float64(len(history))
	return math.Max(0, math.Min(100, next)), true
}
