package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/gokatarajesh/mymath-exams/internal/catalog"
	"github.com/gokatarajesh/mymath-exams/internal/db/queries"
)

type catalogStore interface {
	ListExams(ctx context.Context) ([]queries.Exam, error)
	GetExam(ctx context.Context, examID int64) (queries.Exam, error)
	ListQuestionsByExam(ctx context.Context, examID int64) ([]queries.Question, error)
}

// CatalogRepository reads exams and questions for the catalog service.
type CatalogRepository struct {
	store catalogStore
}

var _ catalog.Store = (*CatalogRepository)(nil)

func NewCatalogRepository(store catalogStore) *CatalogRepository {
	return &CatalogRepository{store: store}
}

// ListExams returns every exam in creation order.
func (r *CatalogRepository) ListExams(ctx context.Context) ([]catalog.Exam, error) {
	rows, err := r.store.ListExams(ctx)
	if err != nil {
		return nil, err
	}
	exams := make([]catalog.Exam, len(rows))
	for i, row := range rows {
		exams[i] = examFromRow(row)
	}
	return exams, nil
}

func (r *CatalogRepository) GetExam(ctx context.Context, examID int64) (catalog.Exam, error) {
	row, err := r.store.GetExam(ctx, examID)
	if errors.Is(err, pgx.ErrNoRows) {
		return catalog.Exam{}, catalog.ErrExamNotFound
	}
	if err != nil {
		return catalog.Exam{}, err
	}
	return examFromRow(row), nil
}

// ListQuestions returns the exam's questions ordered by number.
func (r *CatalogRepository) ListQuestions(ctx context.Context, examID int64) ([]catalog.Question, error) {
	rows, err := r.store.ListQuestionsByExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	questions := make([]catalog.Question, len(rows))
	for i, row := range rows {
		questions[i] = catalog.Question{
			ID:            row.QuestionID,
			ExamID:        row.ExamID,
			Position:      int(row.Number),
			Text:          row.Text,
			Options:       row.Options,
			CorrectOption: int(row.CorrectOption),
			Explanation:   row.Explanation,
		}
	}
	return questions, nil
}

func examFromRow(row queries.Exam) catalog.Exam {
	return catalog.Exam{
		ID:            row.ExamID,
		Title:         row.Title,
		Category:      row.CategoryName,
		Grade:         row.Grade,
		QuestionCount: int(row.QuestionCount),
	}
}
