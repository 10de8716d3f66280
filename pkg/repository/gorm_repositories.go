package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/models"
)

const batchSize = 500

var upsertAll = clause.OnConflict{UpdateAll: true}

// PerformanceRepositoryImpl implements PerformanceRepository
type PerformanceRepositoryImpl struct {
	db *gorm.DB
}

// NewPerformanceRepository creates a new performance repository
func NewPerformanceRepository(db *gorm.DB) PerformanceRepository {
	return &PerformanceRepositoryImpl{db: db}
}

// CreateBatch inserts records in batches
func (r *PerformanceRepositoryImpl) CreateBatch(ctx context.Context, records []models.PerformanceRecord) error {
	if len(records) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).CreateInBatches(&records, batchSize).Error
}

// List retrieves all records in insertion order
func (r *PerformanceRepositoryImpl) List(ctx context.Context) ([]models.PerformanceRecord, error) {
	var records []models.PerformanceRecord
	err := r.db.WithContext(ctx).Order("id").Find(&records).Error
	return records, err
}

// ListByStudent retrieves a student's records in insertion order
func (r *PerformanceRepositoryImpl) ListByStudent(ctx context.Context, studentID string) ([]models.PerformanceRecord, error) {
	var records []models.PerformanceRecord
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).Order("id").Find(&records).Error
	return records, err
}

// Count returns the number of stored records
func (r *PerformanceRepositoryImpl) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.PerformanceRecord{}).Count(&n).Error
	return n, err
}

// DeleteAll removes every record
func (r *PerformanceRepositoryImpl) DeleteAll(ctx context.Context) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&models.PerformanceRecord{}).Error
}

// QuestionRepositoryImpl implements QuestionRepository
type QuestionRepositoryImpl struct {
	db *gorm.DB
}

// NewQuestionRepository creates a new question repository
func NewQuestionRepository(db *gorm.DB) QuestionRepository {
	return &QuestionRepositoryImpl{db: db}
}

// Upsert inserts questions, replacing rows with the same id
func (r *QuestionRepositoryImpl) Upsert(ctx context.Context, questions []models.Question) error {
	if len(questions) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(upsertAll).CreateInBatches(&questions, batchSize).Error
}

// List retrieves all questions
func (r *QuestionRepositoryImpl) List(ctx context.Context) ([]models.Question, error) {
	var questions []models.Question
	err := r.db.WithContext(ctx).Order("question_id").Find(&questions).Error
	return questions, err
}

// ConceptRepositoryImpl implements ConceptRepository
type ConceptRepositoryImpl struct {
	db *gorm.DB
}

// NewConceptRepository creates a new concept repository
func NewConceptRepository(db *gorm.DB) ConceptRepository {
	return &ConceptRepositoryImpl{db: db}
}

// Upsert inserts concepts, replacing rows with the same id
func (r *ConceptRepositoryImpl) Upsert(ctx context.Context, concepts []models.Concept) error {
	if len(concepts) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(upsertAll).CreateInBatches(&concepts, batchSize).Error
}

// List retrieves all concepts
func (r *ConceptRepositoryImpl) List(ctx context.Context) ([]models.Concept, error) {
	var concepts []models.Concept
	err := r.db.WithContext(ctx).Order("concept_id").Find(&concepts).Error
	return concepts, err
}

// GetByID retrieves a concept by id
func (r *ConceptRepositoryImpl) GetByID(ctx context.Context, conceptID string) (*models.Concept, error) {
	var concept models.Concept
	err := r.db.WithContext(ctx).Where("concept_id = ?", conceptID).First(&concept).Error
	if err != nil {
		return nil, notFound(err, "concept "+conceptID)
	}
	return &concept, nil
}

// StudentRepositoryImpl implements StudentRepository
type StudentRepositoryImpl struct {
	db *gorm.DB
}

// NewStudentRepository creates a new student repository
func NewStudentRepository(db *gorm.DB) StudentRepository {
	return &StudentRepositoryImpl{db: db}
}

// Upsert inserts students, replacing rows with the same id
func (r *StudentRepositoryImpl) Upsert(ctx context.Context, students []models.Student) error {
	if len(students) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(upsertAll).CreateInBatches(&students, batchSize).Error
}

// List retrieves all students
func (r *StudentRepositoryImpl) List(ctx context.Context) ([]models.Student, error) {
	var students []models.Student
	err := r.db.WithContext(ctx).Order("student_id").Find(&students).Error
	return students, err
}

// GetByID retrieves a student by id
func (r *StudentRepositoryImpl) GetByID(ctx context.Context, studentID string) (*models.Student, error) {
	var student models.Student
	err := r.db.WithContext(ctx).Where("student_id = ?", studentID).First(&student).Error
	if err != nil {
		return nil, notFound(err, "student "+studentID)
	}
	return &student, nil
}

// ResourceRepositoryImpl implements ResourceRepository
type ResourceRepositoryImpl struct {
	db *gorm.DB
}

// NewResourceRepository creates a new resource repository
func NewResourceRepository(db *gorm.DB) ResourceRepository {
	return &ResourceRepositoryImpl{db: db}
}

// Upsert inserts resources, replacing rows with the same id
func (r *ResourceRepositoryImpl) Upsert(ctx context.Context, resources []models.Resource) error {
	if len(resources) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(upsertAll).CreateInBatches(&resources, batchSize).Error
}

// List retrieves the whole catalog
func (r *ResourceRepositoryImpl) List(ctx context.Context) ([]models.Resource, error) {
	var resources []models.Resource
	err := r.db.WithContext(ctx).Order("resource_id").Find(&resources).Error
	return resources, err
}

// ListByConcept retrieves resources attached to a concept
func (r *ResourceRepositoryImpl) ListByConcept(ctx context.Context, conceptID string) ([]models.Resource, error) {
	var resources []models.Resource
	err := r.db.WithContext(ctx).Where("concept_id = ?", conceptID).Order("resource_id").Find(&resources).Error
	return resources, err
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.NotFound(what)
	}
	return apperrors.Wrap(err, "failed to load "+what)
}
