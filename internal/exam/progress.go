package exam

import (
	"context"

	"github.com/google/uuid"

	"github.com/gokatarajesh/mymath-exams/internal/catalog"
	"github.com/gokatarajesh/mymath-exams/internal/session"
)

// Progress is where one identity mode keeps answers. The engine's rules are
// written once against it; LedgerProgress and VisitProgress differ only in
// storage and in how a repeated answer is handled.
type Progress interface {
	// Begin opens the run at position 1.
	Begin(ctx context.Context, id Identity, exam catalog.Exam) error
	// Resume checks that a run for exam is open.
	Resume(ctx context.Context, id Identity, exam catalog.Exam) error
	// RecordAnswer reports whether the selection was stored. It is false
	// when an earlier answer for the position stands.
	RecordAnswer(ctx context.Context, id Identity, exam catalog.Exam, q catalog.Question, selected int, correct bool) (bool, error)
	Lookup(ctx context.Context, id Identity, exam catalog.Exam, q catalog.Question) (Answer, bool, error)
	Compile(ctx context.Context, id Identity, exam catalog.Exam, questions []catalog.Question) (*Result, error)
}

// AttemptTracker persists attempts and their scores.
type AttemptTracker interface {
	Open(ctx context.Context, userID uuid.UUID, examID int64) (Attempt, error)
	Get(ctx context.Context, attemptID int64) (Attempt, error)
	SetScore(ctx context.Context, attemptID int64, score int) error
	List(ctx context.Context, userID uuid.UUID, examID int64) ([]Attempt, error)
}

// AnswerLedger persists at most one answer per (attempt, question).
type AnswerLedger interface {
	// Record stores rec unless the pair already exists; created reports
	// whether this call wrote it.
	Record(ctx context.Context, rec AnswerRecord) (created bool, err error)
	Get(ctx context.Context, attemptID, questionID int64) (AnswerRecord, bool, error)
	// List returns the attempt's answers ordered by position.
	List(ctx context.Context, attemptID int64) ([]AnswerRecord, error)
}

// AttemptHandles remembers which attempt a visit is working on.
type AttemptHandles interface {
	CurrentAttempt(ctx context.Context, visitID string) (int64, bool, error)
	SetCurrentAttempt(ctx context.Context, visitID string, attemptID int64) error
}

// RunStore holds anonymous runs.
type RunStore interface {
	LoadRun(ctx context.Context, visitID string) (*session.Run, error)
	SaveRun(ctx context.Context, visitID string, run *session.Run) error
}

// Score converts a correct count into points; a full attempt is worth 100.
func Score(correct, total int) int {
	if total <= 0 {
		return 0
	}
	return correct * 100 / total
}
