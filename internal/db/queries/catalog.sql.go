package queries

import (
	"context"
)

const listExams = `-- name: ListExams :many
SELECT e.exam_id, e.title, e.category_id, c.name, c.grade,
       (SELECT count(*) FROM questions q WHERE q.exam_id = e.exam_id)::int AS question_count,
       e.created_at
FROM exams e
JOIN categories c ON c.category_id = e.category_id
ORDER BY e.exam_id
`

func (q *Queries) ListExams(ctx context.Context) ([]Exam, error) {
	rows, err := q.db.Query(ctx, listExams)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Exam
	for rows.Next() {
		var i Exam
		if err := rows.Scan(
			&i.ExamID,
			&i.Title,
			&i.CategoryID,
			&i.CategoryName,
			&i.Grade,
			&i.QuestionCount,
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

const getExam = `-- name: GetExam :one
SELECT e.exam_id, e.title, e.category_id, c.name, c.grade,
       (SELECT count(*) FROM questions q WHERE q.exam_id = e.exam_id)::int AS question_count,
       e.created_at
FROM exams e
JOIN categories c ON c.category_id = e.category_id
WHERE e.exam_id = $1
`

func (q *Queries) GetExam(ctx context.Context, examID int64) (Exam, error) {
	row := q.db.QueryRow(ctx, getExam, examID)
	var i Exam
	err := row.Scan(
		&i.ExamID,
		&i.Title,
		&i.CategoryID,
		&i.CategoryName,
		&i.Grade,
		&i.QuestionCount,
		&i.CreatedAt,
	)
	return i, err
}

const listQuestionsByExam = `-- name: ListQuestionsByExam :many
SELECT question_id, exam_id, number, text, options, correct_option, explanation
FROM questions
WHERE exam_id = $1
ORDER BY number
`

func (q *Queries) ListQuestionsByExam(ctx context.Context, examID int64) ([]Question, error) {
	rows, err := q.db.Query(ctx, listQuestionsByExam, examID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Question
	for rows.Next() {
		var i Question
		if err := rows.Scan(
			&i.QuestionID,
			&i.ExamID,
			&i.Number,
			&i.Text,
			&i.Options,
			&i.CorrectOption,
			&i.Explanation,
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

const createCategory = `-- name: CreateCategory :one
INSERT INTO categories (name, grade)
VALUES ($1, $2)
RETURNING category_id, name, grade
`

type CreateCategoryParams struct {
	Name  string
	Grade string
}

func (q *Queries) CreateCategory(ctx context.Context, arg CreateCategoryParams) (Category, error) {
	row := q.db.QueryRow(ctx, createCategory, arg.Name, arg.Grade)
	var i Category
	err := row.Scan(&i.CategoryID, &i.Name, &i.Grade)
	return i, err
}

const createExam = `-- name: CreateExam :one
INSERT INTO exams (title, category_id)
VALUES ($1, $2)
RETURNING exam_id
`

type CreateExamParams struct {
	Title      string
	CategoryID int64
}

func (q *Queries) CreateExam(ctx context.Context, arg CreateExamParams) (int64, error) {
	row := q.db.QueryRow(ctx, createExam, arg.Title, arg.CategoryID)
	var examID int64
	err := row.Scan(&examID)
	return examID, err
}

// Numbers are assigned in creation order and never reassigned; the unique
// (exam_id, number) constraint rejects a concurrent insert that lost the race.
const insertQuestion = `-- name: InsertQuestion :one
INSERT INTO questions (exam_id, number, text, options, correct_option, explanation)
SELECT $1, COALESCE(MAX(number), 0) + 1, $2, $3, $4, $5
FROM questions
WHERE exam_id = $1
RETURNING question_id, exam_id, number, text, options, correct_option, explanation
`

type InsertQuestionParams struct {
	ExamID        int64
	Text          string
	Options       []string
	CorrectOption int16
	Explanation   string
}

func (q *Queries) InsertQuestion(ctx context.Context, arg InsertQuestionParams) (Question, error) {
	row := q.db.QueryRow(ctx, insertQuestion,
		arg.ExamID,
		arg.Text,
		arg.Options,
		arg.CorrectOption,
		arg.Explanation,
	)
	var i Question
	err := row.Scan(
		&i.QuestionID,
		&i.ExamID,
		&i.Number,
		&i.Text,
		&i.Options,
		&i.CorrectOption,
		&i.Explanation,
	)
	return i, err
}
