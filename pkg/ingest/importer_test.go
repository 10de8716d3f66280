package ingest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	apperrors "github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/models"
	"github.com/jgirmay/learnpath/pkg/repository"
)

func setupImporter(t *testing.T) (*Importer, *repository.Registry) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.AllTables()...))

	registry := repository.NewRegistry(db)
	require.NoError(t, registry.Initialize())
	t.Cleanup(func() { registry.Close() })
	return NewImporter(registry, nil), registry
}

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(strings.TrimLeft(body, "\n")), 0o644))
	}
	return dir
}

var fixture = map[string]string{
	ConceptsFile: `
concept_id,concept_name,subject,level,prerequisite_id
C1,Addition,Math,1,nan
C2,Fractions,Math,2.0,C1
`,
	QuestionsFile: `
question_id,concept_id,difficulty
Q1,C1,Easy
Q2,C2,Hard
`,
	StudentsFile: `
student_id,learning_style,avg_accuracy,avg_response_time
S1,Visual,0.8,42.5
S2,Reading,,
`,
	ResourcesFile: `
resource_id,concept_id,concept_name,resource_name,resource_type,difficulty,duration_minutes,rating,view_count,url
R1,C1,Addition,Adding Up,Video,Beginner,15,4.5,120,http://example.com/r1
R2,C2,Fractions,Fraction Drills,Exercise,Intermediate,30,3.9,40,http://example.com/r2
`,
	PerformanceFile: `
student_id,question_id,correct,time_taken,attempts
S1,Q1,1,30,1
S1,Q2,0,75.5,2
S2,Q1,True,20,1
`,
}

func TestImportDir(t *testing.T) {
	ctx := context.Background()
	im, registry := setupImporter(t)

	summary, err := im.ImportDir(ctx, writeFiles(t, fixture), true)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Concepts)
	assert.Equal(t, 2, summary.Questions)
	assert.Equal(t, 2, summary.Students)
	assert.Equal(t, 2, summary.Resources)
	assert.Equal(t, 3, summary.Performance)
	assert.Empty(t, summary.Skipped)

	ds, err := registry.LoadDataset(ctx)
	require.NoError(t, err)

	c1, ok := ds.Concept("C1")
	require.True(t, ok)
	assert.Empty(t, c1.PrerequisiteID)
	c2, _ := ds.Concept("C2")
	assert.Equal(t, 2, c2.Level)
	assert.Equal(t, "C1", c2.PrerequisiteID)

	s2, ok := ds.Student("S2")
	require.True(t, ok)
	assert.Nil(t, s2.AvgAccuracy)
	assert.Nil(t, s2.AvgResponseTime)

	require.Len(t, ds.Performance, 3)
	assert.True(t, ds.Performance[0].Correct)
	assert.False(t, ds.Performance[1].Correct)
	assert.Equal(t, 75.5, ds.Performance[1].TimeTaken)
	assert.True(t, ds.Performance[2].Correct)
}

func TestImportDirReplaceAndAppend(t *testing.T) {
	ctx := context.Background()
	im, registry := setupImporter(t)
	dir := writeFiles(t, fixture)

	_, err := im.ImportDir(ctx, dir, false)
	require.NoError(t, err)
	_, err = im.ImportDir(ctx, dir, false)
	require.NoError(t, err)
	n, err := registry.PerformanceRepository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(6), n)

	_, err = im.ImportDir(ctx, dir, true)
	require.NoError(t, err)
	n, err = registry.PerformanceRepository.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	resources, err := registry.ResourceRepository.List(ctx)
	require.NoError(t, err)
	assert.Len(t, resources, 2)
}

func TestImportDirSkipsMissingFiles(t *testing.T) {
	im, _ := setupImporter(t)
	dir := writeFiles(t, map[string]string{ConceptsFile: fixture[ConceptsFile]})

	summary, err := im.ImportDir(context.Background(), dir, false)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Concepts)
	assert.ElementsMatch(t, []string{QuestionsFile, StudentsFile, ResourcesFile, PerformanceFile}, summary.Skipped)
}

func TestImportDirErrors(t *testing.T) {
	tests := []struct {
		name    string
		files   map[string]string
		details string
	}{
		{
			name:    "missing column",
			files:   map[string]string{QuestionsFile: "question_id,difficulty\nQ1,Easy\n"},
			details: `missing column "concept_id"`,
		},
		{
			name:    "bad number",
			files:   map[string]string{PerformanceFile: "student_id,question_id,correct,time_taken,attempts\nS1,Q1,1,fast,1\n"},
			details: "line 2 column time_taken",
		},
		{
			name:    "bad boolean",
			files:   map[string]string{PerformanceFile: "student_id,question_id,correct,time_taken,attempts\nS1,Q1,maybe,10,1\n"},
			details: `invalid boolean "maybe"`,
		},
		{
			name:    "rating out of range",
			files:   map[string]string{ResourcesFile: "resource_id,concept_id,rating\nR1,C1,9\n"},
			details: "Rating",
		},
		{
			name:    "blank id",
			files:   map[string]string{StudentsFile: "student_id,learning_style\n,Visual\n"},
			details: "StudentID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			im, _ := setupImporter(t)
			_, err := im.ImportDir(context.Background(), writeFiles(t, tt.files), false)
			require.Error(t, err)
			appErr, ok := apperrors.As(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.CodeValidation, appErr.Code)
			assert.Contains(t, appErr.Details, tt.details)
		})
	}
}

func TestImportDirNotADirectory(t *testing.T) {
	im, _ := setupImporter(t)
	_, err := im.ImportDir(context.Background(), filepath.Join(t.TempDir(), "absent"), false)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
}
