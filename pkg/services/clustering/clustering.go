// Package clustering groups students into cohorts by their aggregate
// performance and names each cohort relative to the others.
package clustering

import (
	"fmt"
	"math/rand"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	apperrors "github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/logging"
	"github.com/jgirmay/learnpath/pkg/models"
)

// Cohort names
const (
	HighPerformers     = "High Performers"
	StrugglingLearners = "Struggling Learners"
	CarefulThinkers    = "Careful Thinkers"
	AverageLearners    = "Average Learners"
)

// Options tunes k-means.
type Options struct {
	Clusters int
	Restarts int
	MaxIter  int
	Seed     int64
}

// DefaultOptions returns four clusters, ten restarts and seed 42.
func DefaultOptions() Options {
	return Options{Clusters: 4, Restarts: 10, MaxIter: 300, Seed: 42}
}

// StudentClustering standardizes student features and clusters them.
type StudentClustering struct {
	opts   Options
	scaler StandardScaler
	logger *logging.Logger
}

// NewStudentClustering creates a clusterer. A nil logger discards output.
func NewStudentClustering(opts Options, logger *logging.Logger) *StudentClustering {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StudentClustering{opts: opts, logger: logger}
}

// FeatureMatrix extracts the clustering features of each student.
func FeatureMatrix(students []models.StudentFeatures) [][]float64 {
	X := make([][]float64, len(students))
	for i, s := range students {
		X[i] = s.ClusteringVector()
	}
	return X
}

// ApplyClustering scales features and assigns each row a cluster label.
func (c *StudentClustering) ApplyClustering(features [][]float64) ([]int, error) {
	scaled, err := c.fitScaled(features)
	if err != nil {
		return nil, err
	}
	res := kmeans(scaled, c.opts.Clusters, c.opts.Restarts, c.opts.MaxIter, rand.New(rand.NewSource(c.opts.Seed)))
	c.logger.Debug("students clustered",
		zap.Int("samples", len(features)),
		zap.Int("clusters", c.opts.Clusters),
		zap.Float64("inertia", res.inertia),
	)
	return res.labels, nil
}

func (c *StudentClustering) fitScaled(features [][]float64) ([][]float64, error) {
	if len(features) < c.opts.Clusters {
		return nil, apperrors.Validation(
			"not enough students to cluster",
			fmt.Sprintf("n_samples=%d should be >= n_clusters=%d", len(features), c.opts.Clusters),
		)
	}
	return c.scaler.FitTransform(features), nil
}

// AnalyzeClusters summarizes each cluster and names it by ranking it
// against the others: best accuracy and fastest time make High Performers,
// worst accuracy makes Struggling Learners, slower than the median cluster
// makes Careful Thinkers, and the rest are Average Learners. Names are
// therefore relative to the population clustered. The returned students
// are a labelled copy of the input.
func (c *StudentClustering) AnalyzeClusters(students []models.StudentFeatures, labels []int) ([]models.StudentFeatures, []models.ClusterStats, error) {
	if len(students) != len(labels) {
		return nil, nil, apperrors.Validation(
			"cluster labels do not match students",
			fmt.Sprintf("%d students, %d labels", len(students), len(labels)),
		)
	}
	if len(students) == 0 {
		return nil, nil, nil
	}

	members := make(map[int][]models.StudentFeatures)
	for i, s := range students {
		members[labels[i]] = append(members[labels[i]], s)
	}
	clusterIDs := make([]int, 0, len(members))
	for id := range members {
		clusterIDs = append(clusterIDs, id)
	}
	sort.Ints(clusterIDs)

	stats := make([]models.ClusterStats, len(clusterIDs))
	for i, id := range clusterIDs {
		group := members[id]
		var acc, tm, att, mas, tq []float64
		for _, s := range group {
			acc = append(acc, s.Accuracy)
			tm = append(tm, s.AvgTimeTaken)
			att = append(att, s.AvgAttempts)
			mas = append(mas, s.MasteryScore)
			tq = append(tq, float64(s.TotalQuestions))
		}
		stats[i] = models.ClusterStats{
			ClusterLabel:   id,
			Size:           len(group),
			Accuracy:       stat.Mean(acc, nil),
			AvgTimeTaken:   stat.Mean(tm, nil),
			AvgAttempts:    stat.Mean(att, nil),
			MasteryScore:   stat.Mean(mas, nil),
			TotalQuestions: stat.Mean(tq, nil),
		}
	}

	assignRanks(stats)

	times := make([]float64, len(stats))
	for i, s := range stats {
		times[i] = s.AvgTimeTaken
	}
	medianTime := median(times)

	names := make(map[int]string, len(stats))
	for i := range stats {
		stats[i].ClusterName = nameFor(stats[i], len(stats), medianTime)
		names[stats[i].ClusterLabel] = stats[i].ClusterName
	}

	labelled := make([]models.StudentFeatures, len(students))
	for i, s := range students {
		label := labels[i]
		s.ClusterLabel = &label
		s.ClusterName = names[label]
		labelled[i] = s
	}
	return labelled, stats, nil
}

// assignRanks ranks clusters by accuracy (descending) and time (ascending).
// Ties are broken by cluster order.
func assignRanks(stats []models.ClusterStats) {
	order := make([]int, len(stats))
	for i := range order {
		order[i] = i
	}

	byAccuracy := append([]int(nil), order...)
	sort.SliceStable(byAccuracy, func(a, b int) bool {
		return stats[byAccuracy[a]].Accuracy > stats[byAccuracy[b]].Accuracy
	})
	for rank, idx := range byAccuracy {
		stats[idx].AccuracyRank = rank + 1
	}

	byTime := append([]int(nil), order...)
	sort.SliceStable(byTime, func(a, b int) bool {
		return stats[byTime[a]].AvgTimeTaken < stats[byTime[b]].AvgTimeTaken
	})
	for rank, idx := range byTime {
		stats[idx].TimeRank = rank + 1
	}
}

func nameFor(s models.ClusterStats, clusters int, medianTime float64) string {
	switch {
	case s.AccuracyRank == 1 && s.TimeRank == 1:
		return HighPerformers
	case s.AccuracyRank == clusters:
		return StrugglingLearners
	case s.AvgTimeTaken > medianTime:
		return CarefulThinkers
	default:
		return AverageLearners
	}
}

// median averages the two middle values for even-length input.
func median(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// EvaluateClusters refits the clustering on features and returns the mean
// silhouette coefficient of the result on the scaled features.
func (c *StudentClustering) EvaluateClusters(features [][]float64) (float64, error) {
	scaled, err := c.fitScaled(features)
	if err != nil {
		return 0, err
	}
	res := kmeans(scaled, c.opts.Clusters, c.opts.Restarts, c.opts.MaxIter, rand.New(rand.NewSource(c.opts.Seed)))

	distinct := make(map[int]struct{})
	for _, l := range res.labels {
		distinct[l] = struct{}{}
	}
	if len(distinct) < 2 || len(distinct) > len(features)-1 {
		return 0, apperrors.Validation(
			"silhouette needs between 2 and n-1 clusters",
			fmt.Sprintf("%d clusters for %d samples", len(distinct), len(features)),
		)
	}
	return silhouette(scaled, res.labels), nil
}
