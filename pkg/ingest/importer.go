// Package ingest loads the CSV exports of the raw tables into the database.
package ingest

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/jgirmay/learnpath/pkg/errors"
	"github.com/jgirmay/learnpath/pkg/logging"
	"github.com/jgirmay/learnpath/pkg/models"
	"github.com/jgirmay/learnpath/pkg/repository"
	"github.com/jgirmay/learnpath/pkg/validation"
)

// File names expected in an import directory.
const (
	ResourcesFile   = "learning_resources_full.csv"
	QuestionsFile   = "question_table.csv"
	ConceptsFile    = "concept_table.csv"
	StudentsFile    = "student_table.csv"
	PerformanceFile = "student_performance.csv"
)

// Summary reports how many rows each table received.
type Summary struct {
	Resources   int           `json:"resources"`
	Questions   int           `json:"questions"`
	Concepts    int           `json:"concepts"`
	Students    int           `json:"students"`
	Performance int           `json:"performance"`
	Skipped     []string      `json:"skipped,omitempty"`
	Duration    time.Duration `json:"duration"`
}

// Importer writes CSV tables through the repository registry.
type Importer struct {
	registry *repository.Registry
	logger   *logging.Logger
}

// NewImporter creates an importer. A nil logger discards output.
func NewImporter(registry *repository.Registry, logger *logging.Logger) *Importer {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Importer{registry: registry, logger: logger.Named("ingest")}
}

// ImportDir imports every known file found in dir. Missing files are
// reported in Summary.Skipped. When replace is set the performance table is
// emptied before new records are inserted; the other tables are upserted.
func (im *Importer) ImportDir(ctx context.Context, dir string, replace bool) (*Summary, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, errors.Validation("import directory is not readable", err.Error())
	}
	if !info.IsDir() {
		return nil, errors.Validation("import path is not a directory", dir)
	}

	start := time.Now()
	summary := &Summary{}

	steps := []struct {
		file string
		run  func(io.Reader) (int, error)
		dst  *int
	}{
		{ConceptsFile, func(r io.Reader) (int, error) { return im.importConcepts(ctx, r) }, &summary.Concepts},
		{QuestionsFile, func(r io.Reader) (int, error) { return im.importQuestions(ctx, r) }, &summary.Questions},
		{StudentsFile, func(r io.Reader) (int, error) { return im.importStudents(ctx, r) }, &summary.Students},
		{ResourcesFile, func(r io.Reader) (int, error) { return im.importResources(ctx, r) }, &summary.Resources},
		{PerformanceFile, func(r io.Reader) (int, error) { return im.importPerformance(ctx, r, replace) }, &summary.Performance},
	}

	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(dir, step.file)
		f, err := os.Open(path)
		if os.IsNotExist(err) {
			im.logger.Warn("import file not found, skipping", zap.String("file", step.file))
			summary.Skipped = append(summary.Skipped, step.file)
			continue
		}
		if err != nil {
			return nil, errors.Wrap(err, "failed to open "+step.file)
		}

		n, err := step.run(f)
		f.Close()
		if err != nil {
			return nil, err
		}
		*step.dst = n
		im.logger.Info("imported table", zap.String("file", step.file), zap.Int("rows", n))
	}

	summary.Duration = time.Since(start)
	return summary, nil
}

func checkRow(name string, line int, v interface{}) error {
	if errs := validation.Validate(v); errs != nil {
		return errors.Validation(fmt.Sprintf("%s line %d is invalid", name, line), validation.Summary(errs))
	}
	return nil
}

func (im *Importer) importConcepts(ctx context.Context, r io.Reader) (int, error) {
	t, err := readTable(ConceptsFile, r, "concept_id")
	if err != nil {
		return 0, errors.Validation("failed to read concepts", err.Error())
	}

	concepts := make([]models.Concept, 0, len(t.rows))
	err = t.each(func(row row) error {
		level, err := row.int("level")
		if err != nil {
			return err
		}
		c := models.Concept{
			ConceptID:      row.str("concept_id"),
			ConceptName:    row.str("concept_name"),
			Subject:        row.str("subject"),
			Level:          level,
			PrerequisiteID: row.optional("prerequisite_id"),
		}
		if err := checkRow(t.name, row.line, c); err != nil {
			return err
		}
		concepts = append(concepts, c)
		return nil
	})
	if err != nil {
		return 0, asValidation(err)
	}

	if err := im.registry.ConceptRepository.Upsert(ctx, concepts); err != nil {
		return 0, err
	}
	return len(concepts), nil
}

func (im *Importer) importQuestions(ctx context.Context, r io.Reader) (int, error) {
	t, err := readTable(QuestionsFile, r, "question_id", "concept_id")
	if err != nil {
		return 0, errors.Validation("failed to read questions", err.Error())
	}

	questions := make([]models.Question, 0, len(t.rows))
	err = t.each(func(row row) error {
		q := models.Question{
			QuestionID: row.str("question_id"),
			ConceptID:  row.str("concept_id"),
			Difficulty: row.str("difficulty"),
		}
		if err := checkRow(t.name, row.line, q); err != nil {
			return err
		}
		questions = append(questions, q)
		return nil
	})
	if err != nil {
		return 0, asValidation(err)
	}

	if err := im.registry.QuestionRepository.Upsert(ctx, questions); err != nil {
		return 0, err
	}
	return len(questions), nil
}

func (im *Importer) importStudents(ctx context.Context, r io.Reader) (int, error) {
	t, err := readTable(StudentsFile, r, "student_id")
	if err != nil {
		return 0, errors.Validation("failed to read students", err.Error())
	}

	students := make([]models.Student, 0, len(t.rows))
	err = t.each(func(row row) error {
		acc, err := row.optFloat("avg_accuracy")
		if err != nil {
			return err
		}
		rt, err := row.optFloat("avg_response_time")
		if err != nil {
			return err
		}
		s := models.Student{
			StudentID:       row.str("student_id"),
			LearningStyle:   row.str("learning_style"),
			AvgAccuracy:     acc,
			AvgResponseTime: rt,
		}
		if err := checkRow(t.name, row.line, s); err != nil {
			return err
		}
		students = append(students, s)
		return nil
	})
	if err != nil {
		return 0, asValidation(err)
	}

	if err := im.registry.StudentRepository.Upsert(ctx, students); err != nil {
		return 0, err
	}
	return len(students), nil
}

func (im *Importer) importResources(ctx context.Context, r io.Reader) (int, error) {
	t, err := readTable(ResourcesFile, r, "resource_id", "concept_id")
	if err != nil {
		return 0, errors.Validation("failed to read resources", err.Error())
	}

	resources := make([]models.Resource, 0, len(t.rows))
	err = t.each(func(row row) error {
		duration, err := row.int("duration_minutes")
		if err != nil {
			return err
		}
		rating, err := row.float("rating")
		if err != nil {
			return err
		}
		views, err := row.int("view_count")
		if err != nil {
			return err
		}
		res := models.Resource{
			ResourceID:      row.str("resource_id"),
			ConceptID:       row.str("concept_id"),
			ConceptName:     row.str("concept_name"),
			ResourceName:    row.str("resource_name"),
			ResourceType:    row.str("resource_type"),
			Difficulty:      row.str("difficulty"),
			DurationMinutes: duration,
			Rating:          rating,
			ViewCount:       views,
			URL:             row.str("url"),
		}
		if err := checkRow(t.name, row.line, res); err != nil {
			return err
		}
		resources = append(resources, res)
		return nil
	})
	if err != nil {
		return 0, asValidation(err)
	}

	if err := im.registry.ResourceRepository.Upsert(ctx, resources); err != nil {
		return 0, err
	}
	return len(resources), nil
}

func (im *Importer) importPerformance(ctx context.Context, r io.Reader, replace bool) (int, error) {
	t, err := readTable(PerformanceFile, r, "student_id", "question_id", "correct")
	if err != nil {
		return 0, errors.Validation("failed to read performance", err.Error())
	}

	records := make([]models.PerformanceRecord, 0, len(t.rows))
	err = t.each(func(row row) error {
		correct, err := row.bool("correct")
		if err != nil {
			return err
		}
		taken, err := row.float("time_taken")
		if err != nil {
			return err
		}
		attempts, err := row.int("attempts")
		if err != nil {
			return err
		}
		rec := models.PerformanceRecord{
			StudentID:  row.str("student_id"),
			QuestionID: row.str("question_id"),
			Correct:    correct,
			TimeTaken:  taken,
			Attempts:   attempts,
		}
		if err := checkRow(t.name, row.line, rec); err != nil {
			return err
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return 0, asValidation(err)
	}

	if replace {
		if err := im.registry.PerformanceRepository.DeleteAll(ctx); err != nil {
			return 0, err
		}
	}
	if err := im.registry.PerformanceRepository.CreateBatch(ctx, records); err != nil {
		return 0, err
	}
	return len(records), nil
}

// asValidation keeps AppErrors from row checks and wraps parse errors.
func asValidation(err error) error {
	if _, ok := errors.As(err); ok {
		return err
	}
	return errors.Validation("invalid csv data", err.Error())
}
