package queries

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
)

const createAttempt = `-- name: CreateAttempt :one
INSERT INTO exam_attempts (user_id, exam_id, attempt_no)
SELECT $1, $2, COALESCE(MAX(attempt_no), 0) + 1
FROM exam_attempts
WHERE user_id = $1 AND exam_id = $2
RETURNING attempt_id, user_id, exam_id, attempt_no, score, created_at
`

type CreateAttemptParams struct {
	UserID pgtype.UUID
	ExamID int64
}

func (q *Queries) CreateAttempt(ctx context.Context, arg CreateAttemptParams) (ExamAttempt, error) {
	row := q.db.QueryRow(ctx, createAttempt, arg.UserID, arg.ExamID)
	var i ExamAttempt
	err := row.Scan(
		&i.AttemptID,
		&i.UserID,
		&i.ExamID,
		&i.AttemptNo,
		&i.Score,
		&i.CreatedAt,
	)
	return i, err
}

const getAttempt = `-- name: GetAttempt :one
SELECT attempt_id, user_id, exam_id, attempt_no, score, created_at
FROM exam_attempts
WHERE attempt_id = $1
`

func (q *Queries) GetAttempt(ctx context.Context, attemptID int64) (ExamAttempt, error) {
	row := q.db.QueryRow(ctx, getAttempt, attemptID)
	var i ExamAttempt
	err := row.Scan(
		&i.AttemptID,
		&i.UserID,
		&i.ExamID,
		&i.AttemptNo,
		&i.Score,
		&i.CreatedAt,
	)
	return i, err
}

const updateAttemptScore = `-- name: UpdateAttemptScore :exec
UPDATE exam_attempts SET score = $2 WHERE attempt_id = $1
`

type UpdateAttemptScoreParams struct {
	AttemptID int64
	Score     int32
}

func (q *Queries) UpdateAttemptScore(ctx context.Context, arg UpdateAttemptScoreParams) error {
	_, err := q.db.Exec(ctx, updateAttemptScore, arg.AttemptID, arg.Score)
	return err
}

const listAttemptsByUserExam = `-- name: ListAttemptsByUserExam :many
SELECT attempt_id, user_id, exam_id, attempt_no, score, created_at
FROM exam_attempts
WHERE user_id = $1 AND exam_id = $2
ORDER BY attempt_no DESC, created_at DESC
`

type ListAttemptsByUserExamParams struct {
	UserID pgtype.UUID
	ExamID int64
}

func (q *Queries) ListAttemptsByUserExam(ctx context.Context, arg ListAttemptsByUserExamParams) ([]ExamAttempt, error) {
	rows, err := q.db.Query(ctx, listAttemptsByUserExam, arg.UserID, arg.ExamID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []ExamAttempt
	for rows.Next() {
		var i ExamAttempt
		if err := rows.Scan(
			&i.AttemptID,
			&i.UserID,
			&i.ExamID,
			&i.AttemptNo,
			&i.Score,
			&i.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}
