package features

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgirmay/learnpath/pkg/models"
)

func float(v float64) *float64 { return &v }

func answers(studentID, questionID string, correct, total int, timeTaken float64, attempts int) []models.PerformanceRecord {
	out := make([]models.PerformanceRecord, 0, total)
	for i := 0; i < total; i++ {
		out = append(out, models.PerformanceRecord{
			StudentID:  studentID,
			QuestionID: questionID,
			Correct:    i < correct,
			TimeTaken:  timeTaken,
			Attempts:   attempts,
		})
	}
	return out
}

func fixture() *models.Dataset {
	var perf []models.PerformanceRecord
	perf = append(perf, answers("S2", "Q2", 1, 2, 90, 2)...)
	perf = append(perf, answers("S1", "Q1", 9, 10, 40, 1)...)
	perf = append(perf, answers("S1", "Q2", 1, 1, 30, 1)...)
	perf = append(perf, models.PerformanceRecord{StudentID: "S1", QuestionID: "Q404", Correct: true, TimeTaken: 10, Attempts: 1})

	return models.NewDataset(
		nil,
		[]models.Concept{
			{ConceptID: "C1", ConceptName: "Addition", Subject: "Math", Level: 1},
			{ConceptID: "C2", ConceptName: "Fractions", Subject: "Math", Level: 2, PrerequisiteID: "C1"},
		},
		[]models.Student{
			{StudentID: "S1", LearningStyle: "visual", AvgAccuracy: float(0.8), AvgResponseTime: float(35)},
		},
		[]models.Question{
			{QuestionID: "Q1", ConceptID: "C1", Difficulty: "Easy"},
			{QuestionID: "Q2", ConceptID: "C2", Difficulty: "Medium"},
		},
		perf,
	)
}

func TestMasteryScore(t *testing.T) {
	tests := []struct {
		name     string
		accuracy float64
		time     float64
		attempts float64
		want     float64
	}{
		{"fast single attempt", 0.9, 40, 1, 90},
		{"slow with retries", 0.5, 90, 2, 45},
		{"time penalty capped", 1.0, 500, 1, 90},
		{"attempt penalty capped", 1.0, 10, 9, 95},
		{"attempts at threshold not penalized", 0.8, 60, 1.5, 80},
		{"floored at zero", 0.05, 200, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MasteryScore(tt.accuracy, tt.time, tt.attempts), 1e-9)
		})
	}
}

func TestPrepareData(t *testing.T) {
	prepared := PrepareData(fixture())

	require.Len(t, prepared.StudentConcepts, 3)
	assert.Len(t, prepared.PerformanceFull, 14)

	first := prepared.StudentConcepts[0]
	assert.Equal(t, "S1", first.StudentID)
	assert.Equal(t, "C1", first.ConceptID)
	assert.Equal(t, "Addition", first.ConceptName)
	assert.Equal(t, 10, first.TotalQuestions)
	assert.Equal(t, 9, first.CorrectCount)
	assert.InDelta(t, 0.9, first.Accuracy, 1e-9)
	assert.InDelta(t, 90, first.MasteryScore, 1e-9)
	assert.False(t, first.IsWeakConcept)
	require.NotNil(t, first.TimeStd)
	assert.InDelta(t, 0, *first.TimeStd, 1e-9)
	assert.Equal(t, "visual", first.LearningStyle)
	require.NotNil(t, first.AvgAccuracy)
	assert.InDelta(t, 0.8, *first.AvgAccuracy, 1e-9)

	single := prepared.StudentConcepts[1]
	assert.Equal(t, "C2", single.ConceptID)
	assert.Nil(t, single.TimeStd)

	weak := prepared.StudentConcepts[2]
	assert.Equal(t, "S2", weak.StudentID)
	assert.InDelta(t, 45, weak.MasteryScore, 1e-9)
	assert.True(t, weak.IsWeakConcept)
	assert.Empty(t, weak.LearningStyle)
	assert.Nil(t, weak.AvgAccuracy)
}

func TestPrepareDataEmpty(t *testing.T) {
	prepared := PrepareData(models.NewDataset(nil, nil, nil, nil, nil))
	assert.Empty(t, prepared.StudentConcepts)
}

func TestEnrichLeavesUnresolvedBlank(t *testing.T) {
	rows := Enrich(fixture())
	last := rows[len(rows)-1]
	assert.Equal(t, "Q404", last.QuestionID)
	assert.Empty(t, last.ConceptID)
	assert.Empty(t, last.ConceptName)
}

func TestBuildStudentLevelFeatures(t *testing.T) {
	prepared := PrepareData(fixture())
	students := BuildStudentLevelFeatures(prepared.StudentConcepts)

	require.Len(t, students, 2)
	s1 := students[0]
	assert.Equal(t, "S1", s1.StudentID)
	assert.Equal(t, 11, s1.TotalQuestions)
	assert.InDelta(t, (0.9+1.0)/2, s1.Accuracy, 1e-9)
	assert.InDelta(t, (40.0+30.0)/2, s1.AvgTimeTaken, 1e-9)
	assert.InDelta(t, (90.0+100.0)/2, s1.MasteryScore, 1e-9)
	assert.InDelta(t, 0, s1.WeakConceptRatio, 1e-9)

	s2 := students[1]
	assert.InDelta(t, 1, s2.WeakConceptRatio, 1e-9)

	assert.Nil(t, BuildStudentLevelFeatures(nil))
}

func TestRunningAccuracy(t *testing.T) {
	rows := Enrich(fixture())
	history := RunningAccuracy("S2", "C2", rows)
	assert.Equal(t, []float64{100, 50}, history)
	assert.Empty(t, RunningAccuracy("S9", "C1", rows))
}
