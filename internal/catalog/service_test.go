package catalog

import (
	"context"
	"errors"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubStore struct {
	exams     map[int64]Exam
	questions map[int64][]Question
	loads     int
}

func (s *stubStore) ListExams(_ context.Context) ([]Exam, error) {
	var out []Exam
	for _, e := range s.exams {
		out = append(out, e)
	}
	return out, nil
}

func (s *stubStore) GetExam(_ context.Context, examID int64) (Exam, error) {
	s.loads++
	e, ok := s.exams[examID]
	if !ok {
		return Exam{}, ErrExamNotFound
	}
	return e, nil
}

func (s *stubStore) ListQuestions(_ context.Context, examID int64) ([]Question, error) {
	return s.questions[examID], nil
}

func newStub() *stubStore {
	return &stubStore{
		exams: map[int64]Exam{
			7: {ID: 7, Title: "Fractions", Category: "arithmetic", Grade: GradeElementary},
		},
		questions: map[int64][]Question{
			7: {
				{ID: 70, ExamID: 7, Position: 1, Text: "1/2 + 1/2", Options: []string{"1", "2", "1/4", "0"}, CorrectOption: 1},
				{ID: 71, ExamID: 7, Position: 2, Text: "1/3 * 3", Options: []string{"1", "3", "1/9", "0"}, CorrectOption: 1},
			},
		},
	}
}

func TestPackIsCachedInRedis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	store := newStub()
	svc := NewService(store, NewCache(client, 0), zerolog.Nop())

	pack, err := svc.Pack(context.Background(), 7)
	require.NoError(t, err)
	assert.Equal(t, 2, pack.Exam.QuestionCount)
	assert.True(t, mr.Exists("catalog:exam:7"))

	questions, err := svc.Questions(context.Background(), 7)
	require.NoError(t, err)
	assert.Len(t, questions, 2)
	assert.Equal(t, 1, store.loads, "second read should be served from cache")
}

func TestGetExamNotFound(t *testing.T) {
	svc := NewService(newStub(), nil, zerolog.Nop())

	_, err := svc.GetExam(context.Background(), 99)
	assert.True(t, errors.Is(err, ErrExamNotFound))
}
