package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gokatarajesh/mymath-exams/internal/db/queries"
	"github.com/gokatarajesh/mymath-exams/internal/exam"
)

const uniqueViolation = "23505"

type answerStore interface {
	InsertAnswerIfAbsent(ctx context.Context, arg queries.InsertAnswerParams) (queries.AttemptAnswer, error)
	GetAnswer(ctx context.Context, arg queries.GetAnswerParams) (queries.AttemptAnswer, error)
	ListAnswersByAttempt(ctx context.Context, attemptID int64) ([]queries.AttemptAnswer, error)
}

// AnswerRepository is the durable answer ledger: one row per
// (attempt, question), and the first write stands.
type AnswerRepository struct {
	store answerStore
}

var _ exam.AnswerLedger = (*AnswerRepository)(nil)

// NewAnswerRepository constructs an answer repository.
func NewAnswerRepository(store answerStore) *AnswerRepository {
	return &AnswerRepository{store: store}
}

// Record inserts rec unless the pair is already answered. A conflict, whether
// swallowed by ON CONFLICT or raised as a unique violation, reports created=false.
func (r *AnswerRepository) Record(ctx context.Context, rec exam.AnswerRecord) (bool, error) {
	_, err := r.store.InsertAnswerIfAbsent(ctx, queries.InsertAnswerParams{
		AttemptID:  rec.AttemptID,
		QuestionID: rec.QuestionID,
		Selected:   int16(rec.Selected),
		Correct:    rec.Correct,
	})
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return false, nil
	}
	return false, err
}

func (r *AnswerRepository) Get(ctx context.Context, attemptID, questionID int64) (exam.AnswerRecord, bool, error) {
	row, err := r.store.GetAnswer(ctx, queries.GetAnswerParams{AttemptID: attemptID, QuestionID: questionID})
	if errors.Is(err, pgx.ErrNoRows) {
		return exam.AnswerRecord{}, false, nil
	}
	if err != nil {
		return exam.AnswerRecord{}, false, err
	}
	return answerFromRow(row), true, nil
}

// List returns the attempt's answers ordered by question number.
func (r *AnswerRepository) List(ctx context.Context, attemptID int64) ([]exam.AnswerRecord, error) {
	rows, err := r.store.ListAnswersByAttempt(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	records := make([]exam.AnswerRecord, len(rows))
	for i, row := range rows {
		records[i] = answerFromRow(row)
	}
	return records, nil
}

func answerFromRow(row queries.AttemptAnswer) exam.AnswerRecord {
	return exam.AnswerRecord{
		AttemptID:  row.AttemptID,
		QuestionID: row.QuestionID,
		Position:   int(row.QuestionNumber),
		Selected:   int(row.Selected),
		Correct:    row.Correct,
	}
}
