package exam

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gokatarajesh/mymath-exams/internal/catalog"
)

// Catalog is the read-only exam content the engine needs.
type Catalog interface {
	ListExams(ctx context.Context) ([]catalog.Exam, error)
	GetExam(ctx context.Context, examID int64) (catalog.Exam, error)
	Questions(ctx context.Context, examID int64) ([]catalog.Question, error)
}

// ScoreRecorder is notified of every compiled account result.
type ScoreRecorder interface {
	RecordScore(ctx context.Context, examID int64, userID uuid.UUID, score int) error
}

// EngineOptions configures the progression engine.
type EngineOptions struct {
	Scores ScoreRecorder
}

// Engine moves an identity through an exam one position at a time:
// AwaitingAnswer(1) … AwaitingAnswer(N) → Completed.
type Engine struct {
	catalog   Catalog
	durable   Progress
	ephemeral Progress
	attempts  AttemptTracker
	scores    ScoreRecorder
	logger    zerolog.Logger
}

// NewEngine wires the engine. durable serves accounts, ephemeral serves
// anonymous visitors; attempts backs the history listing.
func NewEngine(cat Catalog, durable, ephemeral Progress, attempts AttemptTracker, opts EngineOptions, logger zerolog.Logger) *Engine {
	return &Engine{
		catalog:   cat,
		durable:   durable,
		ephemeral: ephemeral,
		attempts:  attempts,
		scores:    opts.Scores,
		logger:    logger.With().Str("component", "exam_engine").Logger(),
	}
}

func (e *Engine) progress(id Identity) Progress {
	if id.Durable() {
		return e.durable
	}
	return e.ephemeral
}

func (e *Engine) load(ctx context.Context, examID int64) (catalog.Exam, []catalog.Question, error) {
	exam, err := e.catalog.GetExam(ctx, examID)
	if errors.Is(err, catalog.ErrExamNotFound) {
		return catalog.Exam{}, nil, fmt.Errorf("exam %d: %w", examID, ErrNotFound)
	}
	if err != nil {
		return catalog.Exam{}, nil, fmt.Errorf("load exam: %w", err)
	}
	questions, err := e.catalog.Questions(ctx, examID)
	if err != nil {
		return catalog.Exam{}, nil, fmt.Errorf("load questions: %w", err)
	}
	// Positions follow sequence order; stored question numbers may skip.
	seq := make([]catalog.Question, len(questions))
	for i, q := range questions {
		q.Position = i + 1
		seq[i] = q
	}
	return exam, seq, nil
}

func (e *Engine) loadAt(ctx context.Context, examID int64, position int) (catalog.Exam, []catalog.Question, catalog.Question, error) {
	exam, questions, err := e.load(ctx, examID)
	if err != nil {
		return catalog.Exam{}, nil, catalog.Question{}, err
	}
	if position < 1 || position > len(questions) {
		return catalog.Exam{}, nil, catalog.Question{}, ErrNoSuchPosition
	}
	return exam, questions, questions[position-1], nil
}

// Enter presents a position. Position 1 opens a run; any later position
// requires one to be open already.
func (e *Engine) Enter(ctx context.Context, id Identity, examID int64, position int) (*Entry, error) {
	exam, _, q, err := e.loadAt(ctx, examID, position)
	if err != nil {
		return nil, err
	}

	p := e.progress(id)
	if position == 1 {
		if err := p.Begin(ctx, id, exam); err != nil {
			return nil, err
		}
		attemptsStarted.WithLabelValues(id.mode()).Inc()
		e.logger.Debug().Int64("exam_id", examID).Str("mode", id.mode()).Msg("run started")
	} else if err := p.Resume(ctx, id, exam); err != nil {
		return nil, err
	}

	entry := &Entry{Exam: exam, Question: q}
	ans, ok, err := p.Lookup(ctx, id, exam, q)
	if err != nil {
		return nil, err
	}
	if ok {
		entry.Answer = &ans
	}
	return entry, nil
}

// Submit records the selection for a position and returns the answer that
// is now on record, which for accounts may be an earlier one. It never
// advances.
func (e *Engine) Submit(ctx context.Context, id Identity, examID int64, position int, selected *int) (Answer, error) {
	exam, _, q, err := e.loadAt(ctx, examID, position)
	if err != nil {
		return Answer{}, err
	}
	if selected == nil {
		return Answer{}, ErrNoSelection
	}
	if *selected < 1 || *selected > len(q.Options) {
		return Answer{}, ErrInvalidOption
	}

	p := e.progress(id)
	correct := *selected == q.CorrectOption
	created, err := p.RecordAnswer(ctx, id, exam, q, *selected, correct)
	if err != nil {
		return Answer{}, err
	}
	if !created {
		stored, ok, err := p.Lookup(ctx, id, exam, q)
		if err != nil {
			return Answer{}, err
		}
		if !ok {
			return Answer{}, fmt.Errorf("answer at position %d was rejected but is not on record", position)
		}
		return stored, nil
	}
	answersRecorded.WithLabelValues(id.mode(), fmt.Sprint(correct)).Inc()
	return Answer{Position: q.Position, Selected: *selected, Correct: correct}, nil
}

// Acknowledge returns the recorded answer for a position with its explanation.
func (e *Engine) Acknowledge(ctx context.Context, id Identity, examID int64, position int) (*Acknowledgment, error) {
	exam, _, q, err := e.loadAt(ctx, examID, position)
	if err != nil {
		return nil, err
	}
	ans, ok, err := e.progress(id).Lookup(ctx, id, exam, q)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotAnswered
	}
	return &Acknowledgment{Exam: exam, Question: q, Answer: ans}, nil
}

// Advance moves past an answered position. Leaving the last position
// compiles and stores the result.
func (e *Engine) Advance(ctx context.Context, id Identity, examID int64, position int) (Transition, error) {
	exam, questions, q, err := e.loadAt(ctx, examID, position)
	if err != nil {
		return Transition{}, err
	}
	p := e.progress(id)
	if _, ok, err := p.Lookup(ctx, id, exam, q); err != nil {
		return Transition{}, err
	} else if !ok {
		return Transition{}, ErrNotAnswered
	}

	if position < len(questions) {
		return Transition{State: StateAwaitingAnswer, Position: position + 1}, nil
	}

	result, err := e.compile(ctx, id, exam, questions)
	if err != nil {
		return Transition{}, err
	}
	resultsFinalized.WithLabelValues(id.mode()).Inc()
	finalScores.WithLabelValues(id.mode()).Observe(float64(result.Summary.Score))
	e.logger.Info().
		Int64("exam_id", examID).
		Str("mode", id.mode()).
		Int("score", result.Summary.Score).
		Msg("exam completed")
	return Transition{State: StateCompleted, Result: result}, nil
}

// Result compiles the identity's current run. Recompiling is safe.
func (e *Engine) Result(ctx context.Context, id Identity, examID int64) (*Result, error) {
	exam, questions, err := e.load(ctx, examID)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, ErrIncompleteRun
	}
	return e.compile(ctx, id, exam, questions)
}

func (e *Engine) compile(ctx context.Context, id Identity, exam catalog.Exam, questions []catalog.Question) (*Result, error) {
	result, err := e.progress(id).Compile(ctx, id, exam, questions)
	if err != nil {
		return nil, err
	}
	if id.Durable() && e.scores != nil {
		if err := e.scores.RecordScore(ctx, exam.ID, id.UserID, result.Summary.Score); err != nil {
			e.logger.Warn().Err(err).Int64("exam_id", exam.ID).Msg("leaderboard update failed")
		}
	}
	return result, nil
}

// History lists an account's attempts at an exam, newest first.
func (e *Engine) History(ctx context.Context, userID uuid.UUID, examID int64) ([]Attempt, error) {
	if _, _, err := e.load(ctx, examID); err != nil {
		return nil, err
	}
	return e.attempts.List(ctx, userID, examID)
}

// ListExams returns the exam index.
func (e *Engine) ListExams(ctx context.Context) ([]catalog.Exam, error) {
	return e.catalog.ListExams(ctx)
}
