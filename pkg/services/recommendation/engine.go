// Package recommendation builds personalized learning plans from weak
// concepts, peer behavior and the resource catalog.
package recommendation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	apperrors "github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/logging"
	"github.com/jgirmay/learnpath/pkg/models"
)

// WeakConceptFinder selects the concepts a student needs to work on.
type WeakConceptFinder interface {
	GetWeakConcepts(studentID string, records []models.ConceptMasteryRecord) []models.WeakConcept
}

// PeerFinder finds similar students and what they are strong at.
type PeerFinder interface {
	FindSimilarStudents(studentID string, topK int) ([]models.PeerSimilarity, error)
	AnalyzePeerPatterns(studentID string, topK int, threshold float64) ([]models.PeerPattern, error)
}

// Options tunes plan generation.
type Options struct {
	SimilarTopK int
	// PeerStrengthThreshold is the score at which a peer's concept counts as strong.
	PeerStrengthThreshold float64
	// SelfSufficientThreshold skips peer suggestions the student already masters.
	SelfSufficientThreshold float64
	ContentPerConcept       int
	ContentLimit            int
	PlanRecommendations     int
	ScheduleSlots           int
	TargetMastery           float64
	SearchLimit             int
}

// DefaultOptions returns the standard plan settings.
func DefaultOptions() Options {
	return Options{
		SimilarTopK:             5,
		PeerStrengthThreshold:   70,
		SelfSufficientThreshold: 80,
		ContentPerConcept:       3,
		ContentLimit:            10,
		PlanRecommendations:     5,
		ScheduleSlots:           7,
		TargetMastery:           80,
		SearchLimit:             20,
	}
}

type masteryKey struct {
	studentID string
	conceptID string
}

// Engine generates learning plans. The dataset and mastery records are
// treated as read-only and may be shared with other components.
type Engine struct {
	dataset  *models.Dataset
	records  []models.ConceptMasteryRecord
	mastery  map[masteryKey]float64
	analyzer WeakConceptFinder
	peers    PeerFinder
	opts     Options
	logger   *logging.Logger
}

// NewEngine creates a recommendation engine. records must carry mastery levels.
func NewEngine(dataset *models.Dataset, records []models.ConceptMasteryRecord, analyzer WeakConceptFinder, peers PeerFinder, opts Options, logger *logging.Logger) *Engine {
	if logger == nil {
		logger = logging.NewNop()
	}
	mastery := make(map[masteryKey]float64, len(records))
	for _, r := range records {
		k := masteryKey{r.StudentID, r.ConceptID}
		if _, ok := mastery[k]; !ok {
			mastery[k] = r.MasteryScore
		}
	}
	return &Engine{
		dataset:  dataset,
		records:  records,
		mastery:  mastery,
		analyzer: analyzer,
		peers:    peers,
		opts:     opts,
		logger:   logger,
	}
}

// GeneratePersonalizedPlan assembles the full plan for one student. It fails
// with NOT_FOUND when the student has no mastery vector or no profile.
func (e *Engine) GeneratePersonalizedPlan(ctx context.Context, studentID string) (*models.LearningPlan, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	weak := e.analyzer.GetWeakConcepts(studentID, e.records)

	similar, err := e.peers.FindSimilarStudents(studentID, e.opts.SimilarTopK)
	if err != nil {
		return nil, err
	}
	patterns, err := e.peers.AnalyzePeerPatterns(studentID, e.opts.SimilarTopK, e.opts.PeerStrengthThreshold)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	content := e.ContentBasedRecommendations(weak)
	behavior := e.BehaviorBasedRecommendations(studentID, patterns)

	merged := NewOrderedRecommendations()
	merged.PutAll(content)
	merged.PutAll(behavior)

	profile, ok := e.dataset.Student(studentID)
	if !ok {
		return nil, apperrors.NotFound("learning profile for student " + studentID)
	}

	plan := &models.LearningPlan{
		StudentID:         studentID,
		LearningStyle:     profile.LearningStyle,
		WeakConceptsCount: len(weak),
		LearningPath:      e.CreateLearningPath(weak),
		Recommendations:   merged.First(e.opts.PlanRecommendations),
		StudySchedule:     e.CreateStudySchedule(merged.Values()),
	}

	e.logger.Debug("personalized plan generated",
		zap.String("student_id", studentID),
		zap.Int("weak_concepts", len(weak)),
		zap.Int("similar_students", len(similar)),
		zap.Int("content_candidates", len(content)),
		zap.Int("behavior_candidates", len(behavior)),
		zap.Int("merged", merged.Len()),
	)
	return plan, nil
}

// difficultiesFor lists the resource difficulties suitable for a mastery
// level; nil means any difficulty.
func difficultiesFor(level models.MasteryLevel) map[string]bool {
	switch level {
	case models.LevelStruggling:
		return map[string]bool{"Beginner": true}
	case models.LevelBeginner:
		return map[string]bool{"Beginner": true, "Intermediate": true}
	default:
		return nil
	}
}

// ContentBasedRecommendations suggests catalog resources for each weak
// concept, in the order given. Resources are matched by concept id, falling
// back to a case-insensitive substring match on the concept name.
func (e *Engine) ContentBasedRecommendations(weak []models.WeakConcept) []models.RecommendationItem {
	out := make([]models.RecommendationItem, 0)

	for _, w := range weak {
		candidates := e.resourcesForConcept(w.ConceptID)
		if len(candidates) == 0 {
			candidates = e.resourcesMatchingName(w.ConceptName)
		}
		if len(candidates) == 0 {
			continue
		}

		level := w.MasteryLevel
		if level == "" {
			level = models.LevelBeginner
		}
		allowed := difficultiesFor(level)

		suitable := make([]models.Resource, 0, len(candidates))
		for _, r := range candidates {
			if allowed == nil || allowed[r.Difficulty] {
				suitable = append(suitable, r)
			}
		}
		sortByRatingThenViews(suitable)
		if len(suitable) > e.opts.ContentPerConcept {
			suitable = suitable[:e.opts.ContentPerConcept]
		}

		reason := fmt.Sprintf("Low mastery in %s (%.1f%%)", w.ConceptName, w.MasteryScore)
		for _, r := range suitable {
			out = append(out, models.NewRecommendationItem(w.ConceptID, w.ConceptName, r, reason))
		}
	}

	if len(out) > e.opts.ContentLimit {
		out = out[:e.opts.ContentLimit]
	}
	return out
}

// BehaviorBasedRecommendations suggests the top-rated resource for every
// concept a similar peer is strong at, unless the student already masters it.
func (e *Engine) BehaviorBasedRecommendations(studentID string, patterns []models.PeerPattern) []models.RecommendationItem {
	out := make([]models.RecommendationItem, 0)

	for _, p := range patterns {
		reason := fmt.Sprintf("Used by similar student %s (similarity %.2f)", p.PeerID, p.Similarity)
		for _, strong := range p.StrongConcepts {
			if score, ok := e.mastery[masteryKey{studentID, strong.ConceptID}]; ok && score >= e.opts.SelfSufficientThreshold {
				continue
			}

			candidates := e.resourcesForConcept(strong.ConceptID)
			if len(candidates) == 0 {
				continue
			}
			sort.SliceStable(candidates, func(i, j int) bool {
				return candidates[i].Rating > candidates[j].Rating
			})

			out = append(out, models.NewRecommendationItem(strong.ConceptID, e.conceptName(strong.ConceptID), candidates[0], reason))
		}
	}
	return out
}

// CreateLearningPath orders weak concepts by curriculum level, then by
// mastery, skipping concepts without metadata and repeated concepts.
func (e *Engine) CreateLearningPath(weak []models.WeakConcept) []models.LearningPathStep {
	type enriched struct {
		models.WeakConcept
		level        int
		prerequisite string
	}

	rows := make([]enriched, 0, len(weak))
	for _, w := range weak {
		meta, ok := e.dataset.Concept(w.ConceptID)
		if !ok {
			continue
		}
		rows = append(rows, enriched{WeakConcept: w, level: meta.Level, prerequisite: meta.PrerequisiteID})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].level != rows[j].level {
			return rows[i].level < rows[j].level
		}
		return rows[i].MasteryScore < rows[j].MasteryScore
	})

	path := make([]models.LearningPathStep, 0, len(rows))
	visited := make(map[string]bool, len(rows))
	for _, r := range rows {
		if visited[r.ConceptID] {
			continue
		}
		visited[r.ConceptID] = true
		path = append(path, models.LearningPathStep{
			Type:           "main",
			ConceptID:      r.ConceptID,
			ConceptName:    r.ConceptName,
			Level:          r.level,
			PrerequisiteID: r.prerequisite,
			CurrentMastery: r.MasteryScore,
			TargetMastery:  e.opts.TargetMastery,
		})
	}
	return path
}

// CreateStudySchedule spreads the first ScheduleSlots recommendations over
// the week, one per day in order, wrapping after Sunday.
func (e *Engine) CreateStudySchedule(recs []models.RecommendationItem) models.StudySchedule {
	schedule := models.NewStudySchedule()
	if len(recs) > e.opts.ScheduleSlots {
		recs = recs[:e.opts.ScheduleSlots]
	}
	for i, rec := range recs {
		day := models.Weekdays[i%len(models.Weekdays)]
		schedule[day] = append(schedule[day], models.ScheduleEntry{
			Concept:  rec.ConceptName,
			Activity: rec.ResourceType,
			Duration: fmt.Sprintf("%d minutes", rec.DurationMinutes),
			Resource: rec.ResourceName,
		})
	}
	return schedule
}

// SearchResources filters the catalog and returns the best rated matches.
func (e *Engine) SearchResources(filter models.ResourceFilter) []models.Resource {
	out := make([]models.Resource, 0)
	for _, r := range e.dataset.Resources {
		if filter.ConceptID != "" && r.ConceptID != filter.ConceptID {
			continue
		}
		if filter.ResourceType != "" && r.ResourceType != filter.ResourceType {
			continue
		}
		if filter.Difficulty != "" && r.Difficulty != filter.Difficulty {
			continue
		}
		out = append(out, r)
	}
	sortByRatingThenViews(out)
	if len(out) > e.opts.SearchLimit {
		out = out[:e.opts.SearchLimit]
	}
	return out
}

func (e *Engine) resourcesForConcept(conceptID string) []models.Resource {
	var out []models.Resource
	for _, r := range e.dataset.Resources {
		if r.ConceptID == conceptID {
			out = append(out, r)
		}
	}
	return out
}

func (e *Engine) resourcesMatchingName(name string) []models.Resource {
	if strings.TrimSpace(name) == "" {
		return nil
	}
	needle := strings.ToLower(name)
	var out []models.Resource
	for _, r := range e.dataset.Resources {
		if strings.Contains(strings.ToLower(r.ConceptName), needle) {
			out = append(out, r)
		}
	}
	return out
}

func (e *Engine) conceptName(conceptID string) string {
	if c, ok := e.dataset.Concept(conceptID); ok && c.ConceptName != "" {
		return c.ConceptName
	}
	return conceptID
}

func sortByRatingThenViews(resources []models.Resource) {
	sort.SliceStable(resources, func(i, j int) bool {
		if resources[i].Rating != resources[j].Rating {
			return resources[i].Rating > resources[j].Rating
		}
		return resources[i].ViewCount > resources[j].ViewCount
	})
}
