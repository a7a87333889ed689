package exam

import (
	"context"
	"fmt"

	"github.com/gokatarajesh/mymath-exams/internal/catalog"
	"github.com/gokatarajesh/mymath-exams/internal/session"
)

// VisitProgress keeps an anonymous visitor's answers in the visit store.
// A repeated answer overwrites the previous one.
type VisitProgress struct {
	runs RunStore
}

var _ Progress = (*VisitProgress)(nil)

func NewVisitProgress(runs RunStore) *VisitProgress {
	return &VisitProgress{runs: runs}
}

// Begin starts a run unless one for the same exam is already in progress.
func (p *VisitProgress) Begin(ctx context.Context, id Identity, exam catalog.Exam) error {
	run, err := p.runs.LoadRun(ctx, id.VisitID)
	if err != nil {
		return err
	}
	if run != nil && run.ExamID == exam.ID {
		return nil
	}
	return p.runs.SaveRun(ctx, id.VisitID, session.NewRun(exam.ID))
}

func (p *VisitProgress) Resume(ctx context.Context, id Identity, exam catalog.Exam) error {
	_, err := p.current(ctx, id, exam)
	return err
}

func (p *VisitProgress) current(ctx context.Context, id Identity, exam catalog.Exam) (*session.Run, error) {
	run, err := p.runs.LoadRun(ctx, id.VisitID)
	if err != nil {
		return nil, err
	}
	if run == nil || run.ExamID != exam.ID {
		return nil, ErrNoOpenAttempt
	}
	return run, nil
}

func (p *VisitProgress) RecordAnswer(ctx context.Context, id Identity, exam catalog.Exam, q catalog.Question, selected int, correct bool) (bool, error) {
	run, err := p.current(ctx, id, exam)
	if err != nil {
		return false, err
	}
	run.Set(q.Position, selected, correct)
	if err := p.runs.SaveRun(ctx, id.VisitID, run); err != nil {
		return false, fmt.Errorf("save run: %w", err)
	}
	return true, nil
}

func (p *VisitProgress) Lookup(ctx context.Context, id Identity, exam catalog.Exam, q catalog.Question) (Answer, bool, error) {
	run, err := p.current(ctx, id, exam)
	if err != nil {
		return Answer{}, false, err
	}
	selected, correct, ok := run.Get(q.Position)
	if !ok {
		return Answer{}, false, nil
	}
	return Answer{Position: q.Position, Selected: selected, Correct: correct}, true, nil
}

func (p *VisitProgress) Compile(ctx context.Context, id Identity, exam catalog.Exam, questions []catalog.Question) (*Result, error) {
	run, err := p.current(ctx, id, exam)
	if err != nil {
		return nil, err
	}

	answers := make([]Answer, 0, len(questions))
	correct := 0
	for position := 1; position <= len(questions); position++ {
		selected, isCorrect, recorded := run.Get(position)
		if !recorded {
			return nil, fmt.Errorf("%w: position %d", ErrIncompleteRun, position)
		}
		if isCorrect {
			correct++
		}
		answers = append(answers, Answer{Position: position, Selected: selected, Correct: isCorrect})
	}

	return &Result{
		Summary: Summary{
			ExamID:    exam.ID,
			ExamTitle: exam.Title,
			Score:     Score(correct, len(questions)),
			Correct:   correct,
			Total:     len(questions),
		},
		Answers: answers,
	}, nil
}
