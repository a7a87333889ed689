package exam

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/gokatarajesh/mymath-exams/internal/catalog"
	"github.com/gokatarajesh/mymath-exams/internal/session"
)

type memCatalog struct {
	packs map[int64]catalog.Pack
}

func (c *memCatalog) ListExams(_ context.Context) ([]catalog.Exam, error) {
	var out []catalog.Exam
	for _, p := range c.packs {
		out = append(out, p.Exam)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (c *memCatalog) GetExam(_ context.Context, examID int64) (catalog.Exam, error) {
	p, ok := c.packs[examID]
	if !ok {
		return catalog.Exam{}, catalog.ErrExamNotFound
	}
	return p.Exam, nil
}

func (c *memCatalog) Questions(_ context.Context, examID int64) ([]catalog.Question, error) {
	p, ok := c.packs[examID]
	if !ok {
		return nil, catalog.ErrExamNotFound
	}
	return p.Questions, nil
}

// newPack builds an exam of n questions whose correct option is always 1.
func newPack(examID int64, n int) catalog.Pack {
	qs := make([]catalog.Question, n)
	for i := range qs {
		qs[i] = catalog.Question{
			ID:            examID*100 + int64(i+1),
			ExamID:        examID,
			Position:      i + 1,
			Text:          "question",
			Options:       []string{"a", "b", "c", "d"},
			CorrectOption: 1,
			Explanation:   "a is right",
		}
	}
	return catalog.Pack{
		Exam:      catalog.Exam{ID: examID, Title: "Exam", QuestionCount: n},
		Questions: qs,
	}
}

type memAttempts struct {
	mu          sync.Mutex
	rows        map[int64]Attempt
	nextID      int64
	scoreWrites int
}

func newMemAttempts() *memAttempts {
	return &memAttempts{rows: map[int64]Attempt{}}
}

func (m *memAttempts) Open(_ context.Context, userID uuid.UUID, examID int64) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	number := 0
	for _, a := range m.rows {
		if a.UserID == userID && a.ExamID == examID && a.Number > number {
			number = a.Number
		}
	}
	m.nextID++
	a := Attempt{ID: m.nextID, UserID: userID, ExamID: examID, Number: number + 1, CreatedAt: time.Now()}
	m.rows[a.ID] = a
	return a, nil
}

func (m *memAttempts) Get(_ context.Context, attemptID int64) (Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.rows[attemptID]
	if !ok {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, nil
}

func (m *memAttempts) SetScore(_ context.Context, attemptID int64, score int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	a := m.rows[attemptID]
	a.Score = score
	m.rows[attemptID] = a
	m.scoreWrites++
	return nil
}

func (m *memAttempts) List(_ context.Context, userID uuid.UUID, examID int64) ([]Attempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Attempt
	for _, a := range m.rows {
		if a.UserID == userID && a.ExamID == examID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number > out[j].Number })
	return out, nil
}

type ledgerKey struct {
	attemptID  int64
	questionID int64
}

type memLedger struct {
	mu   sync.Mutex
	rows map[ledgerKey]AnswerRecord
}

func newMemLedger() *memLedger {
	return &memLedger{rows: map[ledgerKey]AnswerRecord{}}
}

func (l *memLedger) Record(_ context.Context, rec AnswerRecord) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := ledgerKey{rec.AttemptID, rec.QuestionID}
	if _, exists := l.rows[k]; exists {
		return false, nil
	}
	l.rows[k] = rec
	return true, nil
}

func (l *memLedger) Get(_ context.Context, attemptID, questionID int64) (AnswerRecord, bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	rec, ok := l.rows[ledgerKey{attemptID, questionID}]
	return rec, ok, nil
}

func (l *memLedger) List(_ context.Context, attemptID int64) ([]AnswerRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []AnswerRecord
	for k, rec := range l.rows {
		if k.attemptID == attemptID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, nil
}

type recordedScore struct {
	examID int64
	userID uuid.UUID
	score  int
}

type memScores struct {
	calls []recordedScore
}

func (s *memScores) RecordScore(_ context.Context, examID int64, userID uuid.UUID, score int) error {
	s.calls = append(s.calls, recordedScore{examID, userID, score})
	return nil
}

type harness struct {
	engine   *Engine
	attempts *memAttempts
	ledger   *memLedger
	visits   *session.Store
	scores   *memScores
	mr       *miniredis.Miniredis
}

func newHarness(t *testing.T, packs ...catalog.Pack) *harness {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	visits := session.NewStore(client, time.Hour, zerolog.Nop())

	cat := &memCatalog{packs: map[int64]catalog.Pack{}}
	for _, p := range packs {
		cat.packs[p.Exam.ID] = p
	}

	h := &harness{
		attempts: newMemAttempts(),
		ledger:   newMemLedger(),
		visits:   visits,
		scores:   &memScores{},
		mr:       mr,
	}
	h.engine = NewEngine(
		cat,
		NewLedgerProgress(h.attempts, h.ledger, visits),
		NewVisitProgress(visits),
		h.attempts,
		EngineOptions{Scores: h.scores},
		zerolog.Nop(),
	)
	return h
}

func intPtr(v int) *int { return &v }

func accountIdentity() Identity {
	return Identity{UserID: uuid.New(), VisitID: uuid.NewString()}
}

func anonymousIdentity() Identity {
	return Identity{VisitID: uuid.NewString()}
}
