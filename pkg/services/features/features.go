// Package features turns raw performance records into per-(student, concept)
// mastery records and per-student aggregates.
package features

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"github.com/jgirmay/learnpath/pkg/models"
)

const (
	// WeakThreshold is the mastery score below which a concept is weak.
	WeakThreshold = 70.0

	slowAnswerSeconds = 60.0
	maxTimePenalty    = 10.0
	retryAttempts     = 1.5
	maxAttemptPenalty = 5.0
)

// EnrichedPerformance is a performance record joined with its question and
// concept metadata. Unresolved joins leave the metadata fields empty.
type EnrichedPerformance struct {
	models.PerformanceRecord
	ConceptID   string `json:"concept_id"`
	Difficulty  string `json:"difficulty"`
	ConceptName string `json:"concept_name"`
	Subject     string `json:"subject"`
	Level       int    `json:"level"`
}

// Prepared is the output of PrepareData.
type Prepared struct {
	StudentConcepts []models.ConceptMasteryRecord
	PerformanceFull []EnrichedPerformance
	Resources       []models.Resource
	Concepts        []models.Concept
	Students        []models.Student
}

// MasteryScore combines accuracy with penalties for slow answers and retries.
// The result is floored at 0.
func MasteryScore(accuracy, avgTimeTaken, avgAttempts float64) float64 {
	base := accuracy * 100

	timePenalty := 0.0
	if avgTimeTaken > slowAnswerSeconds {
		timePenalty = math.Min(maxTimePenalty, (avgTimeTaken-slowAnswerSeconds)/10)
	}

	attemptPenalty := 0.0
	if avgAttempts > retryAttempts {
		attemptPenalty = math.Min(maxAttemptPenalty, (avgAttempts-1)*2)
	}

	return math.Max(0, base-timePenalty-attemptPenalty)
}

// Enrich joins every performance record with its question and concept.
func Enrich(ds *models.Dataset) []EnrichedPerformance {
	out := make([]EnrichedPerformance, 0, len(ds.Performance))
	for _, p := range ds.Performance {
		row := EnrichedPerformance{PerformanceRecord: p}
		if q, ok := ds.Question(p.QuestionID); ok {
			row.ConceptID = q.ConceptID
			row.Difficulty = q.Difficulty
			if c, ok := ds.Concept(q.ConceptID); ok {
				row.ConceptName = c.ConceptName
				row.Subject = c.Subject
				row.Level = c.Level
			}
		}
		out = append(out, row)
	}
	return out
}

type groupKey struct {
	studentID string
	conceptID string
}

type group struct {
	first    EnrichedPerformance
	correct  []float64
	times    []float64
	attempts []float64
}

// PrepareData aggregates performance per (student, concept), attaches the
// student profile and scores mastery. Records are ordered by student id,
// then concept id. Answers whose question has no concept are not aggregated.
func PrepareData(ds *models.Dataset) *Prepared {
	enriched := Enrich(ds)

	groups := make(map[groupKey]*group)
	keys := make([]groupKey, 0)
	for _, row := range enriched {
		if row.ConceptID == "" {
			continue
		}
		k := groupKey{row.StudentID, row.ConceptID}
		g, ok := groups[k]
		if !ok {
			g = &group{first: row}
			groups[k] = g
			keys = append(keys, k)
		}
		c := 0.0
		if row.Correct {
			c = 1
		}
		g.correct = append(g.correct, c)
		g.times = append(g.times, row.TimeTaken)
		g.attempts = append(g.attempts, float64(row.Attempts))
	}

	sort.Slice(keys, func(i, j int) bool {
		if keys[i].studentID != keys[j].studentID {
			return keys[i].studentID < keys[j].studentID
		}
		return keys[i].conceptID < keys[j].conceptID
	})

	records := make([]models.ConceptMasteryRecord, 0, len(keys))
	for _, k := range keys {
		records = append(records, aggregate(ds, k, groups[k]))
	}

	return &Prepared{
		StudentConcepts: records,
		PerformanceFull: enriched,
		Resources:       ds.Resources,
		Concepts:        ds.Concepts,
		Students:        ds.Students,
	}
}

func aggregate(ds *models.Dataset, k groupKey, g *group) models.ConceptMasteryRecord {
	n := len(g.correct)
	correctCount := 0
	for _, c := range g.correct {
		if c == 1 {
			correctCount++
		}
	}

	rec := models.ConceptMasteryRecord{
		StudentID:      k.studentID,
		ConceptID:      k.conceptID,
		ConceptName:    g.first.ConceptName,
		Subject:        g.first.Subject,
		Level:          g.first.Level,
		Accuracy:       stat.Mean(g.correct, nil),
		TotalQuestions: n,
		CorrectCount:   correctCount,
		AvgTimeTaken:   stat.Mean(g.times, nil),
		AvgAttempts:    stat.Mean(g.attempts, nil),
	}
	if n > 1 {
		sd := stat.StdDev(g.times, nil)
		rec.TimeStd = &sd
	}

	if s, ok := ds.Student(k.studentID); ok {
		rec.LearningStyle = s.LearningStyle
		rec.AvgAccuracy = s.AvgAccuracy
		rec.AvgResponseTime = s.AvgResponseTime
	}

	rec.MasteryScore = MasteryScore(rec.Accuracy, rec.AvgTimeTaken, rec.AvgAttempts)
	rec.IsWeakConcept = rec.MasteryScore < WeakThreshold
	return rec
}

// BuildStudentLevelFeatures collapses mastery records into one row per
// student, ordered by student id. Totals are summed; everything else is the
// mean over the student's concepts.
func BuildStudentLevelFeatures(records []models.ConceptMasteryRecord) []models.StudentFeatures {
	if len(records) == 0 {
		return nil
	}

	type acc struct {
		accuracy, time, attempts, mastery, weak []float64
		total                                   int
	}
	byStudent := make(map[string]*acc)
	ids := make([]string, 0)
	for _, r := range records {
		a, ok := byStudent[r.StudentID]
		if !ok {
			a = &acc{}
			byStudent[r.StudentID] = a
			ids = append(ids, r.StudentID)
		}
		a.accuracy = append(a.accuracy, r.Accuracy)
		a.time = append(a.time, r.AvgTimeTaken)
		a.attempts = append(a.attempts, r.AvgAttempts)
		a.mastery = append(a.mastery, r.MasteryScore)
		weak := 0.0
		if r.IsWeakConcept {
			weak = 1
		}
		a.weak = append(a.weak, weak)
		a.total += r.TotalQuestions
	}
	sort.Strings(ids)

	out := make([]models.StudentFeatures, 0, len(ids))
	for _, id := range ids {
		a := byStudent[id]
		out = append(out, models.StudentFeatures{
			StudentID:        id,
			Accuracy:         stat.Mean(a.accuracy, nil),
			AvgTimeTaken:     stat.Mean(a.time, nil),
			AvgAttempts:      stat.Mean(a.attempts, nil),
			TotalQuestions:   a.total,
			MasteryScore:     stat.Mean(a.mastery, nil),
			WeakConceptRatio: stat.Mean(a.weak, nil),
		})
	}
	return out
}

// RecordsFor returns the mastery records of one student, preserving order.
func RecordsFor(studentID string, records []models.ConceptMasteryRecord) []models.ConceptMasteryRecord {
	var out []models.ConceptMasteryRecord
	for _, r := range records {
		if r.StudentID == studentID {
			out = append(out, r)
		}
	}
	return out
}

// RunningAccuracy returns the cumulative accuracy (0-100) after each answer a
// student gave on a concept, in record order.
func RunningAccuracy(studentID, conceptID string, rows []EnrichedPerformance) []float64 {
	var history []float64
	answered, correct := 0, 0
	for _, row := range rows {
		if row.StudentID != studentID || row.ConceptID != conceptID {
			continue
		}
		answered++
		if row.Correct {
			correct++
		}
		history = append(history, float64(correct)/float64(answered)*100)
	}
	return history
}
