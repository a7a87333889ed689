package exam

import (
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/gokatarajesh/mymath-exams/internal/catalog"
)

// Identity is who is taking the exam. A zero UserID means an anonymous
// visitor whose answers live only in the visit store.
type Identity struct {
	UserID  uuid.UUID
	VisitID string
}

// Durable reports whether answers are persisted against an account.
func (i Identity) Durable() bool {
	return i.UserID != uuid.Nil
}

const (
	modeDurable   = "durable"
	modeEphemeral = "ephemeral"
)

func (i Identity) mode() string {
	if i.Durable() {
		return modeDurable
	}
	return modeEphemeral
}

// Attempt is one account's full run through one exam.
type Attempt struct {
	ID        int64     `json:"id"`
	UserID    uuid.UUID `json:"user_id"`
	ExamID    int64     `json:"exam_id"`
	Number    int       `json:"number"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// AnswerRecord is the ledger row for (attempt, question).
type AnswerRecord struct {
	AttemptID  int64
	QuestionID int64
	Position   int
	Selected   int
	Correct    bool
}

// Answer is a recorded selection at a position.
type Answer struct {
	Position int  `json:"position"`
	Selected int  `json:"selected"`
	Correct  bool `json:"correct"`
}

// Summary describes a compiled attempt. AttemptNumber is 0 for anonymous
// runs, which have no numbering.
type Summary struct {
	ExamID        int64  `json:"exam_id"`
	ExamTitle     string `json:"exam_title"`
	AttemptNumber int    `json:"-"`
	Score         int    `json:"score"`
	Correct       int    `json:"correct"`
	Total         int    `json:"total"`
}

// AttemptLabel renders the attempt number, "*" when there is none.
func (s Summary) AttemptLabel() string {
	if s.AttemptNumber == 0 {
		return "*"
	}
	return strconv.Itoa(s.AttemptNumber)
}

// Result is a compiled attempt with one answer per position, ascending.
type Result struct {
	Summary Summary  `json:"summary"`
	Answers []Answer `json:"answers"`
}

// State of the progression machine.
type State int

const (
	StateAwaitingAnswer State = iota
	StateCompleted
)

func (s State) String() string {
	switch s {
	case StateAwaitingAnswer:
		return "awaiting_answer"
	case StateCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Transition is the outcome of Advance. Position is set when the next state
// is StateAwaitingAnswer; Result is set on StateCompleted.
type Transition struct {
	State    State
	Position int
	Result   *Result
}

// Entry is what a caller needs to present a question.
type Entry struct {
	Exam     catalog.Exam
	Question catalog.Question
	Answer   *Answer
}

// Acknowledgment is the feedback view for an answered position.
type Acknowledgment struct {
	Exam     catalog.Exam
	Question catalog.Question
	Answer   Answer
}
