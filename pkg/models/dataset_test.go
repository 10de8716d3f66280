package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatasetLookups(t *testing.T) {
	ds := NewDataset(
		nil,
		[]Concept{{ConceptID: "C2", ConceptName: "Fractions"}, {ConceptID: "C1", ConceptName: "Addition"}, {ConceptID: "C2", ConceptName: "Duplicate"}},
		[]Student{{StudentID: "S1", LearningStyle: "visual"}},
		[]Question{{QuestionID: "Q1", ConceptID: "C1"}},
		nil,
	)

	c, ok := ds.Concept("C2")
	require.True(t, ok)
	assert.Equal(t, "Fractions", c.ConceptName)

	_, ok = ds.Concept("C9")
	assert.False(t, ok)

	s, ok := ds.Student("S1")
	require.True(t, ok)
	assert.Equal(t, "visual", s.LearningStyle)

	q, ok := ds.Question("Q1")
	require.True(t, ok)
	assert.Equal(t, "C1", q.ConceptID)

	assert.Equal(t, []string{"C2", "C1"}, ds.ConceptIDs())
}

func TestMasteryLevelIsWeak(t *testing.T) {
	assert.True(t, LevelStruggling.IsWeak())
	assert.True(t, LevelBeginner.IsWeak())
	assert.False(t, LevelIntermediate.IsWeak())
	assert.False(t, LevelAdvanced.IsWeak())
}

func TestNewStudyScheduleHasEveryDay(t *testing.T) {
	s := NewStudySchedule()
	assert.Len(t, s, 7)
	for _, day := range Weekdays {
		assert.NotNil(t, s[day], day)
		assert.Empty(t, s[day], day)
	}
}
