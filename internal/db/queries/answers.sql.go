package queries

import (
	"context"
)

// Returns pgx.ErrNoRows when the (attempt_id, question_id) pair already exists.
const insertAnswerIfAbsent = `-- name: InsertAnswerIfAbsent :one
INSERT INTO attempt_answers (attempt_id, question_id, selected, correct)
VALUES ($1, $2, $3, $4)
ON CONFLICT (attempt_id, question_id) DO NOTHING
RETURNING attempt_id, question_id, selected, correct, answered_at
`

type InsertAnswerParams struct {
	AttemptID  int64
	QuestionID int64
	Selected   int16
	Correct    bool
}

func (q *Queries) InsertAnswerIfAbsent(ctx context.Context, arg InsertAnswerParams) (AttemptAnswer, error) {
	row := q.db.QueryRow(ctx, insertAnswerIfAbsent, arg.AttemptID, arg.QuestionID, arg.Selected, arg.Correct)
	var i AttemptAnswer
	err := row.Scan(
		&i.AttemptID,
		&i.QuestionID,
		&i.Selected,
		&i.Correct,
		&i.AnsweredAt,
	)
	return i, err
}

const getAnswer = `-- name: GetAnswer :one
SELECT a.attempt_id, a.question_id, q.number, a.selected, a.correct, a.answered_at
FROM attempt_answers a
JOIN questions q ON q.question_id = a.question_id
WHERE a.attempt_id = $1 AND a.question_id = $2
`

type GetAnswerParams struct {
	AttemptID  int64
	QuestionID int64
}

func (q *Queries) GetAnswer(ctx context.Context, arg GetAnswerParams) (AttemptAnswer, error) {
	row := q.db.QueryRow(ctx, getAnswer, arg.AttemptID, arg.QuestionID)
	var i AttemptAnswer
	err := row.Scan(
		&i.AttemptID,
		&i.QuestionID,
		&i.QuestionNumber,
		&i.Selected,
		&i.Correct,
		&i.AnsweredAt,
	)
	return i, err
}

const listAnswersByAttempt = `-- name: ListAnswersByAttempt :many
SELECT a.attempt_id, a.question_id, q.number, a.selected, a.correct, a.answered_at
FROM attempt_answers a
JOIN questions q ON q.question_id = a.question_id
WHERE a.attempt_id = $1
ORDER BY q.number
`

func (q *Queries) ListAnswersByAttempt(ctx context.Context, attemptID int64) ([]AttemptAnswer, error) {
	rows, err := q.db.Query(ctx, listAnswersByAttempt, attemptID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []AttemptAnswer
	for rows.Next() {
		var i AttemptAnswer
		if err := rows.Scan(
			&i.AttemptID,
			&i.QuestionID,
			&i.QuestionNumber,
			&i.Selected,
			&i.Correct,
			&i.AnsweredAt,
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
