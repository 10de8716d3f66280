package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/models"
)

func setupRegistry(t *testing.T) *Registry {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllTables()...))

	registry := NewRegistry(db)
	require.NoError(t, registry.Initialize())
	t.Cleanup(func() { registry.Close() })
	return registry
}

func TestInitializeWithoutDB(t *testing.T) {
	assert.Error(t, NewRegistry(nil).Initialize())
}

func TestUpsertReplacesRows(t *testing.T) {
	ctx := context.Background()
	registry := setupRegistry(t)

	require.NoError(t, registry.ConceptRepository.Upsert(ctx, []models.Concept{
		{ConceptID: "C1", ConceptName: "Addition", Level: 1},
		{ConceptID: "C2", ConceptName: "Fractions", Level: 2},
	}))
	require.NoError(t, registry.ConceptRepository.Upsert(ctx, []models.Concept{
		{ConceptID: "C1", ConceptName: "Addition & Subtraction", Level: 1},
	}))

	concepts, err := registry.ConceptRepository.List(ctx)
	require.NoError(t, err)
	require.Len(t, concepts, 2)
	assert.Equal(t, "Addition & Subtraction", concepts[0].ConceptName)

	c, err := registry.ConceptRepository.GetByID(ctx, "C2")
	require.NoError(t, err)
	assert.Equal(t, 2, c.Level)

	_, err = registry.ConceptRepository.GetByID(ctx, "C9")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestStudentRepository(t *testing.T) {
	ctx := context.Background()
	registry := setupRegistry(t)

	acc := 0.75
	require.NoError(t, registry.StudentRepository.Upsert(ctx, []models.Student{
		{StudentID: "S2", LearningStyle: "auditory"},
		{StudentID: "S1", LearningStyle: "visual", AvgAccuracy: &acc},
	}))

	students, err := registry.StudentRepository.List(ctx)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "S1", students[0].StudentID)
	require.NotNil(t, students[0].AvgAccuracy)
	assert.Equal(t, 0.75, *students[0].AvgAccuracy)
	assert.Nil(t, students[1].AvgAccuracy)

	_, err = registry.StudentRepository.GetByID(ctx, "S9")
	assert.True(t, apperrors.IsNotFound(err))
}

func TestPerformanceRepository(t *testing.T) {
	ctx := context.Background()
	registry := setupRegistry(t)
	repo := registry.PerformanceRepository

	require.NoError(t, repo.CreateBatch(ctx, []models.PerformanceRecord{
		{StudentID: "S1", QuestionID: "Q2", Correct: true, TimeTaken: 12, Attempts: 1},
		{StudentID: "S2", QuestionID: "Q1", Correct: false, TimeTaken: 70, Attempts: 3},
		{StudentID: "S1", QuestionID: "Q1", Correct: false, TimeTaken: 30, Attempts: 2},
	}))
	require.NoError(t, repo.CreateBatch(ctx, nil))

	n, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	s1, err := repo.ListByStudent(ctx, "S1")
	require.NoError(t, err)
	require.Len(t, s1, 2)
	assert.Equal(t, "Q2", s1[0].QuestionID)
	assert.Equal(t, "Q1", s1[1].QuestionID)

	require.NoError(t, repo.DeleteAll(ctx))
	n, err = repo.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestLoadDataset(t *testing.T) {
	ctx := context.Background()
	registry := setupRegistry(t)

	require.NoError(t, registry.ResourceRepository.Upsert(ctx, []models.Resource{
		{ResourceID: "R2", ConceptID: "C1", ResourceName: "Video", Rating: 4.1},
		{ResourceID: "R1", ConceptID: "C2", ResourceName: "Article", Rating: 3.9},
	}))
	require.NoError(t, registry.ConceptRepository.Upsert(ctx, []models.Concept{{ConceptID: "C1"}, {ConceptID: "C2"}}))
	require.NoError(t, registry.StudentRepository.Upsert(ctx, []models.Student{{StudentID: "S1", LearningStyle: "visual"}}))
	require.NoError(t, registry.QuestionRepository.Upsert(ctx, []models.Question{{QuestionID: "Q1", ConceptID: "C1"}}))
	require.NoError(t, registry.PerformanceRepository.CreateBatch(ctx, []models.PerformanceRecord{{StudentID: "S1", QuestionID: "Q1", Correct: true}}))

	ds, err := registry.LoadDataset(ctx)
	require.NoError(t, err)

	assert.Len(t, ds.Resources, 2)
	assert.Equal(t, "R1", ds.Resources[0].ResourceID)
	assert.Equal(t, []string{"C1", "C2"}, ds.ConceptIDs())
	_, ok := ds.Student("S1")
	assert.True(t, ok)
	q, ok := ds.Question("Q1")
	require.True(t, ok)
	assert.Equal(t, "C1", q.ConceptID)
	assert.Len(t, ds.Performance, 1)

	byConcept, err := registry.ResourceRepository.ListByConcept(ctx, "C1")
	require.NoError(t, err)
	require.Len(t, byConcept, 1)
	assert.Equal(t, "R2", byConcept[0].ResourceID)
}
