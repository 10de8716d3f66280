// Package app wires the pipeline components into one System that the HTTP
// server and the CLI share.
package app

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/jgirmay/learnpath/pkg/config"
	"github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/logging"
	"github.com/jgirmay/learnpath/pkg/metrics"
	"github.com/jgirmay/learnpath/pkg/models"
	"github.com/jgirmay/learnpath/pkg/repository"
	"github.com/jgirmay/learnpath/pkg/services/clustering"
	"github.com/jgirmay/learnpath/pkg/services/features"
	"github.com/jgirmay/learnpath/pkg/services/mastery"
	"github.com/jgirmay/learnpath/pkg/services/recommendation"
	"github.com/jgirmay/learnpath/pkg/services/similarity"
)

// Pipeline stage names, used in logs and metrics.
const (
	StageLoad       = "load"
	StagePrepare    = "prepare"
	StageMastery    = "mastery"
	StageClassify   = "classify"
	StageCluster    = "cluster"
	StageSimilarity = "similarity"
)

// Load reads the dataset through the registry and bootstraps a System.
func Load(ctx context.Context, registry *repository.Registry, cfg config.PipelineConfig, logger *logging.Logger) (*System, error) {
	if logger == nil {
		logger = logging.NewNop()
	}

	start := time.Now()
	ds, err := registry.LoadDataset(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to load dataset")
	}
	recordStage(logger, StageLoad, start)

	return Bootstrap(ctx, ds, cfg, logger)
}

// Bootstrap runs the offline stages over ds: feature preparation, mastery
// levels, classification, clustering and similarity. A clustering failure is
// logged and leaves every student unclustered.
func Bootstrap(ctx context.Context, ds *models.Dataset, cfg config.PipelineConfig, logger *logging.Logger) (*System, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logger.Named("pipeline")

	metrics.SetDatasetRows("learning_resources", len(ds.Resources))
	metrics.SetDatasetRows("concepts", len(ds.Concepts))
	metrics.SetDatasetRows("students", len(ds.Students))
	metrics.SetDatasetRows("questions", len(ds.Questions))
	metrics.SetDatasetRows("student_performance", len(ds.Performance))

	sys := &System{
		cfg:       cfg,
		logger:    logger,
		dataset:   ds,
		clustered: make(map[string]models.StudentFeatures),
	}

	start := time.Now()
	sys.prepared = features.PrepareData(ds)
	recordStage(logger, StagePrepare, start, zap.Int("student_concepts", len(sys.prepared.StudentConcepts)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	sys.analyzer = mastery.NewPerformanceAnalyzer(mastery.Options{
		MasteryThreshold: cfg.MasteryThreshold,
		MinSamples:       cfg.ClassifierMinSamples,
		TestRatio:        cfg.ClassifierTestRatio,
		MaxIter:          cfg.ClassifierMaxIter,
		Seed:             cfg.Seed,
	}, logger)

	start = time.Now()
	records := sys.analyzer.AnalyzeConceptMastery(sys.prepared.StudentConcepts)
	recordStage(logger, StageMastery, start)

	start = time.Now()
	records, sys.classifierAccuracy = sys.analyzer.ClassifyConceptMastery(records)
	metrics.ClassifierAccuracy.Set(sys.classifierAccuracy)
	recordStage(logger, StageClassify, start, zap.Float64("accuracy", sys.classifierAccuracy))
	sys.records = records
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	sys.cluster(features.BuildStudentLevelFeatures(records))
	recordStage(logger, StageCluster, start, zap.Int("clusters", len(sys.clusterStats)))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start = time.Now()
	sys.similarity = similarity.NewEngine()
	vectors := sys.similarity.CreateStudentVectors(records, ds.ConceptIDs())
	if vectors.Len() > 0 {
		if _, err := sys.similarity.ComputeSimilarity(); err != nil {
			return nil, errors.Wrap(err, "failed to compute similarity")
		}
	}
	recordStage(logger, StageSimilarity, start,
		zap.Int("students", vectors.Len()),
		zap.Int("concepts", len(vectors.ConceptIDs)),
	)

	sys.recommender = recommendation.NewEngine(ds, records, sys.analyzer, sys.similarity, recommendation.Options{
		SimilarTopK:             cfg.SimilarTopK,
		PeerStrengthThreshold:   cfg.PeerStrengthThreshold,
		SelfSufficientThreshold: cfg.SelfSufficientThreshold,
		ContentPerConcept:       cfg.ContentPerConcept,
		ContentLimit:            cfg.ContentLimit,
		PlanRecommendations:     cfg.PlanRecommendations,
		ScheduleSlots:           cfg.ScheduleSlots,
		TargetMastery:           cfg.TargetMastery,
		SearchLimit:             cfg.SearchLimit,
	}, logger)

	sys.loadedAt = time.Now()
	logger.Info("recommendation system ready",
		zap.Int("students", len(ds.Students)),
		zap.Int("concepts", len(ds.Concepts)),
		zap.Int("resources", len(ds.Resources)),
		zap.Int("student_concepts", len(records)),
	)
	return sys, nil
}

// cluster labels students and records per-cluster stats. Failures leave the
// system without clusters.
func (s *System) cluster(students []models.StudentFeatures) {
	clusterer := clustering.NewStudentClustering(clustering.Options{
		Clusters: s.cfg.Clusters,
		Restarts: s.cfg.ClusterRestarts,
		MaxIter:  clustering.DefaultOptions().MaxIter,
		Seed:     s.cfg.Seed,
	}, s.logger)

	X := clustering.FeatureMatrix(students)
	labels, err := clusterer.ApplyClustering(X)
	if err != nil {
		s.logger.Warn("clustering skipped", zap.Error(err), zap.Int("students", len(students)))
		return
	}

	labelled, stats, err := clusterer.AnalyzeClusters(students, labels)
	if err != nil {
		s.logger.Warn("cluster analysis failed", zap.Error(err))
		return
	}

	for _, st := range labelled {
		s.clustered[st.StudentID] = st
	}
	s.clusterStats = stats
	for _, st := range stats {
		metrics.SetClusterSize(st.ClusterLabel, st.ClusterName, st.Size)
	}

	if score, err := clusterer.EvaluateClusters(X); err == nil {
		s.silhouette = &score
		s.logger.Info("cluster quality", zap.Float64("silhouette", score))
	} else {
		s.logger.Debug("cluster quality not evaluated", zap.Error(err))
	}
}

func recordStage(logger *logging.Logger, stage string, start time.Time, fields ...zap.Field) {
	d := time.Since(start)
	metrics.RecordStage(stage, d)
	logger.Info("pipeline stage complete", append([]zap.Field{zap.String("stage", stage), zap.Duration("duration", d)}, fields...)...)
}
