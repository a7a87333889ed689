package seed

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/gokatarajesh/mymath-exams/internal/catalog"
	"github.com/gokatarajesh/mymath-exams/internal/db/queries"
)

const optionsPerQuestion = 4

// File is the YAML document describing exam content.
type File struct {
	Categories []Category `yaml:"categories"`
}

type Category struct {
	Name  string `yaml:"name"`
	Grade string `yaml:"grade"`
	Exams []Exam `yaml:"exams"`
}

type Exam struct {
	Title     string     `yaml:"title"`
	Questions []Question `yaml:"questions"`
}

// Question lists options in display order; Answer is the 1-based index of
// the correct one.
type Question struct {
	Text        string   `yaml:"text"`
	Options     []string `yaml:"options"`
	Answer      int      `yaml:"answer"`
	Explanation string   `yaml:"explanation"`
}

// Parse decodes and validates a seed document.
func Parse(r io.Reader) (*File, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// Validate checks every question before anything is written.
func (f *File) Validate() error {
	var errs []error
	for _, c := range f.Categories {
		switch c.Grade {
		case catalog.GradeElementary, catalog.GradeJunior, catalog.GradeHigh:
		default:
			errs = append(errs, fmt.Errorf("category %q: unknown grade %q", c.Name, c.Grade))
		}
		for _, e := range c.Exams {
			if len(e.Questions) == 0 {
				errs = append(errs, fmt.Errorf("exam %q: no questions", e.Title))
			}
			for i, q := range e.Questions {
				if len(q.Options) != optionsPerQuestion {
					errs = append(errs, fmt.Errorf("exam %q question %d: want %d options, got %d", e.Title, i+1, optionsPerQuestion, len(q.Options)))
				}
				if q.Answer < 1 || q.Answer > optionsPerQuestion {
					errs = append(errs, fmt.Errorf("exam %q question %d: answer %d out of range", e.Title, i+1, q.Answer))
				}
			}
		}
	}
	return errors.Join(errs...)
}

// Store is the write side of the query layer.
type Store interface {
	CreateCategory(ctx context.Context, arg queries.CreateCategoryParams) (queries.Category, error)
	CreateExam(ctx context.Context, arg queries.CreateExamParams) (int64, error)
	InsertQuestion(ctx context.Context, arg queries.InsertQuestionParams) (queries.Question, error)
}

// Stats counts what Apply wrote.
type Stats struct {
	Categories int
	Exams      int
	Questions  int
}

// Apply writes the document. Questions are numbered in file order.
func Apply(ctx context.Context, store Store, f *File, logger zerolog.Logger) (Stats, error) {
	var stats Stats
	for _, c := range f.Categories {
		cat, err := store.CreateCategory(ctx, queries.CreateCategoryParams{Name: c.Name, Grade: c.Grade})
		if err != nil {
			return stats, fmt.Errorf("create category %q: %w", c.Name, err)
		}
		stats.Categories++

		for _, e := range c.Exams {
			examID, err := store.CreateExam(ctx, queries.CreateExamParams{Title: e.Title, CategoryID: cat.CategoryID})
			if err != nil {
				return stats, fmt.Errorf("create exam %q: %w", e.Title, err)
			}
			stats.Exams++

			for _, q := range e.Questions {
				row, err := store.InsertQuestion(ctx, queries.InsertQuestionParams{
					ExamID:        examID,
					Text:          q.Text,
					Options:       q.Options,
					CorrectOption: int16(q.Answer),
					Explanation:   q.Explanation,
				})
				if err != nil {
					return stats, fmt.Errorf("insert question into %q: %w", e.Title, err)
				}
				stats.Questions++
				logger.Debug().Int64("exam_id", examID).Int16("number", row.Number).Msg("question inserted")
			}
			logger.Info().Int64("exam_id", examID).Str("title", e.Title).Int("questions", len(e.Questions)).Msg("exam seeded")
		}
	}
	return stats, nil
}
