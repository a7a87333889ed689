package exam

import (
	"context"
	"errors"
	"fmt"

	"github.com/gokatarajesh/mymath-exams/internal/catalog"
)

// ErrAttemptNotFound is returned by AttemptTracker.Get for unknown ids.
var ErrAttemptNotFound = errors.New("attempt not found")

// LedgerProgress keeps an account's answers in the durable ledger. A repeated
// answer for a position is a no-op: the first selection stands.
type LedgerProgress struct {
	attempts AttemptTracker
	ledger   AnswerLedger
	handles  AttemptHandles
}

var _ Progress = (*LedgerProgress)(nil)

func NewLedgerProgress(attempts AttemptTracker, ledger AnswerLedger, handles AttemptHandles) *LedgerProgress {
	return &LedgerProgress{attempts: attempts, ledger: ledger, handles: handles}
}

func (p *LedgerProgress) Begin(ctx context.Context, id Identity, exam catalog.Exam) error {
	attempt, err := p.attempts.Open(ctx, id.UserID, exam.ID)
	if err != nil {
		return fmt.Errorf("open attempt: %w", err)
	}
	if err := p.handles.SetCurrentAttempt(ctx, id.VisitID, attempt.ID); err != nil {
		return fmt.Errorf("remember attempt: %w", err)
	}
	return nil
}

func (p *LedgerProgress) Resume(ctx context.Context, id Identity, exam catalog.Exam) error {
	_, err := p.current(ctx, id, exam)
	return err
}

// current resolves the visit's open attempt; it must belong to this user
// and exam.
func (p *LedgerProgress) current(ctx context.Context, id Identity, exam catalog.Exam) (Attempt, error) {
	attemptID, ok, err := p.handles.CurrentAttempt(ctx, id.VisitID)
	if err != nil {
		return Attempt{}, err
	}
	if !ok {
		return Attempt{}, ErrNoOpenAttempt
	}
	attempt, err := p.attempts.Get(ctx, attemptID)
	if errors.Is(err, ErrAttemptNotFound) {
		return Attempt{}, ErrNoOpenAttempt
	}
	if err != nil {
		return Attempt{}, fmt.Errorf("load attempt: %w", err)
	}
	if attempt.UserID != id.UserID || attempt.ExamID != exam.ID {
		return Attempt{}, ErrNoOpenAttempt
	}
	return attempt, nil
}

func (p *LedgerProgress) RecordAnswer(ctx context.Context, id Identity, exam catalog.Exam, q catalog.Question, selected int, correct bool) (bool, error) {
	attempt, err := p.current(ctx, id, exam)
	if err != nil {
		return false, err
	}
	created, err := p.ledger.Record(ctx, AnswerRecord{
		AttemptID:  attempt.ID,
		QuestionID: q.ID,
		Position:   q.Position,
		Selected:   selected,
		Correct:    correct,
	})
	if err != nil {
		return false, fmt.Errorf("record answer: %w", err)
	}
	return created, nil
}

func (p *LedgerProgress) Lookup(ctx context.Context, id Identity, exam catalog.Exam, q catalog.Question) (Answer, bool, error) {
	attempt, err := p.current(ctx, id, exam)
	if err != nil {
		return Answer{}, false, err
	}
	rec, ok, err := p.ledger.Get(ctx, attempt.ID, q.ID)
	if err != nil || !ok {
		return Answer{}, false, err
	}
	return Answer{Position: q.Position, Selected: rec.Selected, Correct: rec.Correct}, true, nil
}

func (p *LedgerProgress) Compile(ctx context.Context, id Identity, exam catalog.Exam, questions []catalog.Question) (*Result, error) {
	attempt, err := p.current(ctx, id, exam)
	if err != nil {
		return nil, err
	}
	records, err := p.ledger.List(ctx, attempt.ID)
	if err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	byQuestion := make(map[int64]AnswerRecord, len(records))
	for _, rec := range records {
		byQuestion[rec.QuestionID] = rec
	}

	answers := make([]Answer, 0, len(questions))
	correct := 0
	for _, q := range questions {
		rec, ok := byQuestion[q.ID]
		if !ok {
			return nil, fmt.Errorf("%w: position %d", ErrIncompleteRun, q.Position)
		}
		if rec.Correct {
			correct++
		}
		answers = append(answers, Answer{Position: q.Position, Selected: rec.Selected, Correct: rec.Correct})
	}

	score := Score(correct, len(questions))
	if err := p.attempts.SetScore(ctx, attempt.ID, score); err != nil {
		return nil, fmt.Errorf("save score: %w", err)
	}

	return &Result{
		Summary: Summary{
			ExamID:        exam.ID,
			ExamTitle:     exam.Title,
			AttemptNumber: attempt.Number,
			Score:         score,
			Correct:       correct,
			Total:         len(questions),
		},
		Answers: answers,
	}, nil
}
