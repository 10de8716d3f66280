package repository

import (
	"context"

	"github.com/jgirmay/learnpath/pkg/models"
)

// PerformanceRepository defines operations for raw performance records
type PerformanceRepository interface {
	// CreateBatch inserts records in batches
	CreateBatch(ctx context.Context, records []models.PerformanceRecord) error

	// List retrieves all records in insertion order
	List(ctx context.Context) ([]models.PerformanceRecord, error)

	// ListByStudent retrieves a student's records in insertion order
	ListByStudent(ctx context.Context, studentID string) ([]models.PerformanceRecord, error)

	// Count returns the number of stored records
	Count(ctx context.Context) (int64, error)

	// DeleteAll removes every record
	DeleteAll(ctx context.Context) error
}

// QuestionRepository defines operations for questions
type QuestionRepository interface {
	// Upsert inserts questions, replacing rows with the same id
	Upsert(ctx context.Context, questions []models.Question) error

	// List retrieves all questions
	List(ctx context.Context) ([]models.Question, error)
}

// ConceptRepository defines operations for concept metadata
type ConceptRepository interface {
	// Upsert inserts concepts, replacing rows with the same id
	Upsert(ctx context.Context, concepts []models.Concept) error

	// List retrieves all concepts
	List(ctx context.Context) ([]models.Concept, error)

	// GetByID retrieves a concept by id
	GetByID(ctx context.Context, conceptID string) (*models.Concept, error)
}

// StudentRepository defines operations for student profiles
type StudentRepository interface {
	// Upsert inserts students, replacing rows with the same id
	Upsert(ctx context.Context, students []models.Student) error

	// List retrieves all students
	List(ctx context.Context) ([]models.Student, error)

	// GetByID retrieves a student by id
	GetByID(ctx context.Context, studentID string) (*models.Student, error)
}

// ResourceRepository defines operations for the resource catalog
type ResourceRepository interface {
	// Upsert inserts resources, replacing rows with the same id
	Upsert(ctx context.Context, resources []models.Resource) error

	// List retrieves the whole catalog
	List(ctx context.Context) ([]models.Resource, error)

	// ListByConcept retrieves resources attached to a concept
	ListByConcept(ctx context.Context, conceptID string) ([]models.Resource, error)
}
