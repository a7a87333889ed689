package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/gokatarajesh/mymath-exams/internal/db/queries"
	"github.com/gokatarajesh/mymath-exams/internal/exam"
)

type attemptStore interface {
	CreateAttempt(ctx context.Context, arg queries.CreateAttemptParams) (queries.ExamAttempt, error)
	GetAttempt(ctx context.Context, attemptID int64) (queries.ExamAttempt, error)
	UpdateAttemptScore(ctx context.Context, arg queries.UpdateAttemptScoreParams) error
	ListAttemptsByUserExam(ctx context.Context, arg queries.ListAttemptsByUserExamParams) ([]queries.ExamAttempt, error)
}

// AttemptRepository persists numbered exam attempts per account.
type AttemptRepository struct {
	store attemptStore
}

var _ exam.AttemptTracker = (*AttemptRepository)(nil)

// NewAttemptRepository constructs an attempt repository.
func NewAttemptRepository(store attemptStore) *AttemptRepository {
	return &AttemptRepository{store: store}
}

// Open inserts the next attempt for (user, exam), numbered one past the
// highest existing attempt.
func (r *AttemptRepository) Open(ctx context.Context, userID uuid.UUID, examID int64) (exam.Attempt, error) {
	row, err := r.store.CreateAttempt(ctx, queries.CreateAttemptParams{
		UserID: toPgUUID(userID),
		ExamID: examID,
	})
	if err != nil {
		return exam.Attempt{}, fmt.Errorf("create attempt: %w", err)
	}
	return attemptFromRow(row), nil
}

func (r *AttemptRepository) Get(ctx context.Context, attemptID int64) (exam.Attempt, error) {
	row, err := r.store.GetAttempt(ctx, attemptID)
	if errors.Is(err, pgx.ErrNoRows) {
		return exam.Attempt{}, exam.ErrAttemptNotFound
	}
	if err != nil {
		return exam.Attempt{}, err
	}
	return attemptFromRow(row), nil
}

// SetScore overwrites the attempt's score; writing the same value twice is harmless.
func (r *AttemptRepository) SetScore(ctx context.Context, attemptID int64, score int) error {
	return r.store.UpdateAttemptScore(ctx, queries.UpdateAttemptScoreParams{
		AttemptID: attemptID,
		Score:     int32(score),
	})
}

// List returns the account's attempts at an exam, newest first.
func (r *AttemptRepository) List(ctx context.Context, userID uuid.UUID, examID int64) ([]exam.Attempt, error) {
	rows, err := r.store.ListAttemptsByUserExam(ctx, queries.ListAttemptsByUserExamParams{
		UserID: toPgUUID(userID),
		ExamID: examID,
	})
	if err != nil {
		return nil, err
	}
	attempts := make([]exam.Attempt, len(rows))
	for i, row := range rows {
		attempts[i] = attemptFromRow(row)
	}
	return attempts, nil
}

func attemptFromRow(row queries.ExamAttempt) exam.Attempt {
	return exam.Attempt{
		ID:        row.AttemptID,
		UserID:    fromPgUUID(row.UserID),
		ExamID:    row.ExamID,
		Number:    int(row.AttemptNo),
		Score:     int(row.Score),
		CreatedAt: row.CreatedAt.Time,
	}
}
