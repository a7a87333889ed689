package queries

import (
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	UserID       pgtype.UUID
	Email        pgtype.Text
	PasswordHash pgtype.Text
	DisplayName  string
	Metadata     []byte
	CreatedAt    pgtype.Timestamptz
	LastLoginAt  pgtype.Timestamptz
}

type Category struct {
	CategoryID int64
	Name       string
	Grade      string
}

// Exam is an exams row joined with its category and question count.
type Exam struct {
	ExamID        int64
	Title         string
	CategoryID    int64
	CategoryName  string
	Grade         string
	QuestionCount int32
	CreatedAt     pgtype.Timestamptz
}

type Question struct {
	QuestionID    int64
	ExamID        int64
	Number        int16
	Text          string
	Options       []string
	CorrectOption int16
	Explanation   string
}

type ExamAttempt struct {
	AttemptID int64
	UserID    pgtype.UUID
	ExamID    int64
	AttemptNo int32
	Score     int32
	CreatedAt pgtype.Timestamptz
}

// AttemptAnswer is an attempt_answers row; QuestionNumber is only populated
// by queries that join questions.
type AttemptAnswer struct {
	AttemptID      int64
	QuestionID     int64
	QuestionNumber int16
	Selected       int16
	Correct        bool
	AnsweredAt     pgtype.Timestamptz
}
