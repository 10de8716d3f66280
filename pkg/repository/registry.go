// Package repository provides the data access layer for the raw tables
package repository

import (
	"context"
	"fmt"
	"sync"

	"gorm.io/gorm"

	"github.com/jgirmay/learnpath/pkg/models"
)

// Registry provides centralized access to all repositories
type Registry struct {
	PerformanceRepository PerformanceRepository
	QuestionRepository    QuestionRepository
	ConceptRepository     ConceptRepository
	StudentRepository     StudentRepository
	ResourceRepository    ResourceRepository

	db *gorm.DB
	mu sync.RWMutex
}

// NewRegistry creates a new repository registry
func NewRegistry(db *gorm.DB) *Registry {
	return &Registry{
		db: db,
	}
}

// Initialize initializes all repositories
func (r *Registry) Initialize() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db == nil {
		return fmt.Errorf("registry has no database connection")
	}

	r.PerformanceRepository = NewPerformanceRepository(r.db)
	r.QuestionRepository = NewQuestionRepository(r.db)
	r.ConceptRepository = NewConceptRepository(r.db)
	r.StudentRepository = NewStudentRepository(r.db)
	r.ResourceRepository = NewResourceRepository(r.db)

	return nil
}

// LoadDataset reads every table into an immutable dataset.
func (r *Registry) LoadDataset(ctx context.Context) (*models.Dataset, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	resources, err := r.ResourceRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load resources: %w", err)
	}
	concepts, err := r.ConceptRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load concepts: %w", err)
	}
	students, err := r.StudentRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load students: %w", err)
	}
	questions, err := r.QuestionRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load questions: %w", err)
	}
	performance, err := r.PerformanceRepository.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load performance: %w", err)
	}

	return models.NewDataset(resources, concepts, students, questions, performance), nil
}

// GetDB returns the database connection
func (r *Registry) GetDB() *gorm.DB {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.db
}

// Close closes the registry and all resources
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.db != nil {
		sqlDB, err := r.db.DB()
		if err != nil {
			return fmt.Errorf("failed to get database connection: %w", err)
		}
		if err := sqlDB.Close(); err != nil {
			return fmt.Errorf("failed to close database connection: %w", err)
		}
	}

	return nil
}
