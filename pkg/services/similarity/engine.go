// Package similarity compares students by their concept mastery vectors.
package similarity

import (
	"sort"
	"sync"

	"gonum.org/v1/gonum/floats"

	apperrors "github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/models"
)

const (
	// DefaultTopK is the number of peers considered when none is given.
	DefaultTopK = 5
	// DefaultStrengthThreshold is the score at which a peer's concept counts as strong.
	DefaultStrengthThreshold = 70.0
	// MaxStrongConcepts caps the strong concepts reported per peer.
	MaxStrongConcepts = 5
)

// StudentVectors is a student x concept matrix of mastery scores.
type StudentVectors struct {
	StudentIDs []string
	ConceptIDs []string
	Values     [][]float64
}

// Len returns the number of students.
func (v *StudentVectors) Len() int {
	if v == nil {
		return 0
	}
	return len(v.StudentIDs)
}

// Engine holds student vectors and a lazily computed cosine similarity
// matrix. It is safe for concurrent use.
type Engine struct {
	mu      sync.RWMutex
	vectors *StudentVectors
	index   map[string]int
	matrix  [][]float64
}

// NewEngine creates an empty engine.
func NewEngine() *Engine {
	return &Engine{}
}

// CreateStudentVectors pivots mastery records into one vector per student.
// Rows are sorted by student id. Columns are the concept ids present in
// records (sorted), followed by any of allConcepts not yet seen, in the order
// given. Missing cells are 0 and duplicate (student, concept) rows are
// averaged. Rebuilding vectors discards any cached similarity matrix.
func (e *Engine) CreateStudentVectors(records []models.ConceptMasteryRecord, allConcepts []string) *StudentVectors {
	type cell struct {
		sum   float64
		count int
	}
	cells := make(map[string]map[string]*cell)
	conceptSet := make(map[string]struct{})
	for _, r := range records {
		row, ok := cells[r.StudentID]
		if !ok {
			row = make(map[string]*cell)
			cells[r.StudentID] = row
		}
		c, ok := row[r.ConceptID]
		if !ok {
			c = &cell{}
			row[r.ConceptID] = c
		}
		c.sum += r.MasteryScore
		c.count++
		conceptSet[r.ConceptID] = struct{}{}
	}

	studentIDs := make([]string, 0, len(cells))
	for id := range cells {
		studentIDs = append(studentIDs, id)
	}
	sort.Strings(studentIDs)

	conceptIDs := make([]string, 0, len(conceptSet))
	for id := range conceptSet {
		conceptIDs = append(conceptIDs, id)
	}
	sort.Strings(conceptIDs)
	for _, id := range allConcepts {
		if _, ok := conceptSet[id]; ok {
			continue
		}
		conceptSet[id] = struct{}{}
		conceptIDs = append(conceptIDs, id)
	}

	values := make([][]float64, len(studentIDs))
	index := make(map[string]int, len(studentIDs))
	for i, sid := range studentIDs {
		index[sid] = i
		row := make([]float64, len(conceptIDs))
		for j, cid := range conceptIDs {
			if c, ok := cells[sid][cid]; ok {
				row[j] = c.sum / float64(c.count)
			}
		}
		values[i] = row
	}

	vectors := &StudentVectors{StudentIDs: studentIDs, ConceptIDs: conceptIDs, Values: values}

	e.mu.Lock()
	e.vectors = vectors
	e.index = index
	e.matrix = nil
	e.mu.Unlock()

	return vectors
}

// Vectors returns the current student vectors, or nil before they are built.
func (e *Engine) Vectors() *StudentVectors {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.vectors
}

// ComputeSimilarity (re)computes the pairwise cosine similarity matrix.
// A student with an all-zero vector has similarity 0 with everyone.
func (e *Engine) ComputeSimilarity() ([][]float64, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.computeLocked()
}

func (e *Engine) computeLocked() ([][]float64, error) {
	if e.vectors.Len() == 0 {
		return nil, apperrors.Uninitialized("student vectors not initialized; call CreateStudentVectors first")
	}

	rows := e.vectors.Values
	n := len(rows)
	norms := make([]float64, n)
	for i, row := range rows {
		norms[i] = floats.Norm(row, 2)
	}

	matrix := make([][]float64, n)
	for i := range matrix {
		matrix[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			sim := 0.0
			if norms[i] > 0 && norms[j] > 0 {
				sim = floats.Dot(rows[i], rows[j]) / (norms[i] * norms[j])
			}
			matrix[i][j] = sim
			matrix[j][i] = sim
		}
	}

	e.matrix = matrix
	return matrix, nil
}

// snapshot returns the vectors, index and matrix, computing the matrix on
// first use.
func (e *Engine) snapshot() (*StudentVectors, map[string]int, [][]float64, error) {
	e.mu.RLock()
	vectors, index, matrix := e.vectors, e.index, e.matrix
	e.mu.RUnlock()
	if matrix != nil {
		return vectors, index, matrix, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.matrix == nil {
		if _, err := e.computeLocked(); err != nil {
			return nil, nil, nil, err
		}
	}
	return e.vectors, e.index, e.matrix, nil
}

// HasStudent reports whether studentID has a vector.
func (e *Engine) HasStudent(studentID string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.index[studentID]
	return ok
}

// FindSimilarStudents returns up to topK other students ordered by
// descending similarity. Ties keep vector row order.
func (e *Engine) FindSimilarStudents(studentID string, topK int) ([]models.PeerSimilarity, error) {
	vectors, index, matrix, err := e.snapshot()
	if err != nil {
		return nil, err
	}
	return findSimilar(vectors, index, matrix, studentID, topK)
}

func findSimilar(vectors *StudentVectors, index map[string]int, matrix [][]float64, studentID string, topK int) ([]models.PeerSimilarity, error) {
	self, ok := index[studentID]
	if !ok {
		return nil, apperrors.NotFound("student " + studentID)
	}

	peers := make([]models.PeerSimilarity, 0, len(matrix)-1)
	for idx, score := range matrix[self] {
		if idx == self {
			continue
		}
		peers = append(peers, models.PeerSimilarity{StudentID: vectors.StudentIDs[idx], Similarity: score})
	}
	sort.SliceStable(peers, func(i, j int) bool {
		return peers[i].Similarity > peers[j].Similarity
	})

	if topK < 0 {
		topK = 0
	}
	if topK < len(peers) {
		peers = peers[:topK]
	}
	return peers, nil
}

// AnalyzePeerPatterns lists, for each of the topK most similar peers, the
// concepts they score at or above threshold on. At most MaxStrongConcepts
// are kept per peer, in column order.
func (e *Engine) AnalyzePeerPatterns(studentID string, topK int, threshold float64) ([]models.PeerPattern, error) {
	vectors, index, matrix, err := e.snapshot()
	if err != nil {
		return nil, err
	}

	peers, err := findSimilar(vectors, index, matrix, studentID, topK)
	if err != nil {
		return nil, err
	}

	patterns := make([]models.PeerPattern, 0, len(peers))
	for _, peer := range peers {
		row := vectors.Values[index[peer.StudentID]]
		strong := make([]models.StrongConcept, 0, MaxStrongConcepts)
		for j, score := range row {
			if score < threshold {
				continue
			}
			strong = append(strong, models.StrongConcept{ConceptID: vectors.ConceptIDs[j], MasteryScore: score})
			if len(strong) == MaxStrongConcepts {
				break
			}
		}
		patterns = append(patterns, models.PeerPattern{
			PeerID:         peer.StudentID,
			Similarity:     peer.Similarity,
			StrongConcepts: strong,
		})
	}
	return patterns, nil
}
