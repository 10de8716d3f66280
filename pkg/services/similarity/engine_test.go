package similarity

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/models"
)

func rec(student, concept string, score float64) models.ConceptMasteryRecord {
	return models.ConceptMasteryRecord{StudentID: student, ConceptID: concept, MasteryScore: score}
}

func sampleRecords() []models.ConceptMasteryRecord {
	return []models.ConceptMasteryRecord{
		rec("S3", "C1", 90), rec("S3", "C2", 10),
		rec("S1", "C1", 80), rec("S1", "C2", 20),
		rec("S2", "C1", 10), rec("S2", "C2", 90),
		rec("S4", "C2", 95),
	}
}

func TestCreateStudentVectors(t *testing.T) {
	engine := NewEngine()
	records := append(sampleRecords(), rec("S1", "C1", 60))

	vectors := engine.CreateStudentVectors(records, []string{"C9", "C1", "C2"})

	assert.Equal(t, []string{"S1", "S2", "S3", "S4"}, vectors.StudentIDs)
	assert.Equal(t, []string{"C1", "C2", "C9"}, vectors.ConceptIDs)
	assert.Equal(t, []float64{70, 20, 0}, vectors.Values[0])
	assert.Equal(t, []float64{0, 95, 0}, vectors.Values[3])
	for _, row := range vectors.Values {
		assert.Len(t, row, 3)
	}
}

func TestComputeSimilarityRequiresVectors(t *testing.T) {
	_, err := NewEngine().ComputeSimilarity()
	require.Error(t, err)
	assert.True(t, apperrors.IsUninitialized(err))

	engine := NewEngine()
	engine.CreateStudentVectors(nil, []string{"C1"})
	_, err = engine.ComputeSimilarity()
	assert.True(t, apperrors.IsUninitialized(err))
}

func TestComputeSimilarityIsSymmetricWithUnitDiagonal(t *testing.T) {
	engine := NewEngine()
	engine.CreateStudentVectors(sampleRecords(), nil)

	matrix, err := engine.ComputeSimilarity()
	require.NoError(t, err)

	for i := range matrix {
		assert.InDelta(t, 1.0, matrix[i][i], 1e-9)
		for j := range matrix {
			assert.Equal(t, matrix[i][j], matrix[j][i])
		}
	}
}

func TestZeroVectorHasZeroSimilarity(t *testing.T) {
	engine := NewEngine()
	engine.CreateStudentVectors([]models.ConceptMasteryRecord{rec("S1", "C1", 0), rec("S2", "C1", 50)}, nil)

	matrix, err := engine.ComputeSimilarity()
	require.NoError(t, err)
	assert.Equal(t, 0.0, matrix[0][0])
	assert.Equal(t, 0.0, matrix[0][1])
}

func TestFindSimilarStudents(t *testing.T) {
	engine := NewEngine()
	engine.CreateStudentVectors(sampleRecords(), nil)

	peers, err := engine.FindSimilarStudents("S1", 5)
	require.NoError(t, err)

	require.Len(t, peers, 3)
	assert.Equal(t, "S3", peers[0].StudentID)
	for i, p := range peers {
		assert.NotEqual(t, "S1", p.StudentID)
		if i > 0 {
			assert.GreaterOrEqual(t, peers[i-1].Similarity, p.Similarity)
		}
	}

	top, err := engine.FindSimilarStudents("S1", 1)
	require.NoError(t, err)
	assert.Len(t, top, 1)
}

func TestFindSimilarStudentsUnknown(t *testing.T) {
	engine := NewEngine()
	engine.CreateStudentVectors(sampleRecords(), nil)

	_, err := engine.FindSimilarStudents("S404", 5)
	assert.True(t, apperrors.IsNotFound(err))
}

func TestFindSimilarStudentsUninitialized(t *testing.T) {
	_, err := NewEngine().FindSimilarStudents("S1", 5)
	assert.True(t, apperrors.IsUninitialized(err))
}

func TestFindSimilarStudentsTiesKeepRowOrder(t *testing.T) {
	engine := NewEngine()
	engine.CreateStudentVectors([]models.ConceptMasteryRecord{
		rec("A", "C1", 50), rec("C", "C1", 70), rec("B", "C1", 90),
	}, nil)

	peers, err := engine.FindSimilarStudents("A", 5)
	require.NoError(t, err)
	require.Len(t, peers, 2)
	assert.Equal(t, "B", peers[0].StudentID)
	assert.Equal(t, "C", peers[1].StudentID)
}

func TestRoundTripEveryStudentSeesAllOthers(t *testing.T) {
	engine := NewEngine()
	engine.CreateStudentVectors(sampleRecords(), nil)
	n := engine.Vectors().Len()

	for _, id := range engine.Vectors().StudentIDs {
		peers, err := engine.FindSimilarStudents(id, n-1)
		require.NoError(t, err)
		assert.Len(t, peers, n-1)
	}
}

func TestRebuildInvalidatesMatrix(t *testing.T) {
	engine := NewEngine()
	engine.CreateStudentVectors(sampleRecords(), nil)
	_, err := engine.FindSimilarStudents("S1", 5)
	require.NoError(t, err)

	engine.CreateStudentVectors([]models.ConceptMasteryRecord{rec("S1", "C1", 80), rec("S9", "C1", 40)}, nil)

	peers, err := engine.FindSimilarStudents("S1", 5)
	require.NoError(t, err)
	require.Len(t, peers, 1)
	assert.Equal(t, "S9", peers[0].StudentID)
}

func TestAnalyzePeerPatterns(t *testing.T) {
	records := []models.ConceptMasteryRecord{rec("S1", "C1", 50)}
	for _, c := range []string{"C1", "C2", "C3", "C4", "C5", "C6", "C7"} {
		records = append(records, rec("S2", c, 75))
	}
	records = append(records, rec("S2", "C0", 40))

	engine := NewEngine()
	engine.CreateStudentVectors(records, nil)

	patterns, err := engine.AnalyzePeerPatterns("S1", DefaultTopK, DefaultStrengthThreshold)
	require.NoError(t, err)

	require.Len(t, patterns, 1)
	assert.Equal(t, "S2", patterns[0].PeerID)
	require.Len(t, patterns[0].StrongConcepts, MaxStrongConcepts)
	ids := make([]string, 0, MaxStrongConcepts)
	for _, c := range patterns[0].StrongConcepts {
		ids = append(ids, c.ConceptID)
	}
	assert.Equal(t, []string{"C1", "C2", "C3", "C4", "C5"}, ids)
}

func TestAnalyzePeerPatternsWithoutPeers(t *testing.T) {
	engine := NewEngine()
	engine.CreateStudentVectors([]models.ConceptMasteryRecord{rec("S1", "C1", 50)}, nil)

	patterns, err := engine.AnalyzePeerPatterns("S1", DefaultTopK, DefaultStrengthThreshold)
	require.NoError(t, err)
	assert.Empty(t, patterns)
}

func TestConcurrentQueries(t *testing.T) {
	engine := NewEngine()
	engine.CreateStudentVectors(sampleRecords(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := engine.AnalyzePeerPatterns("S2", 3, 70)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
}
