package catalog

import (
	"context"
	"fmt"
	"strconv"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Store is the persistence the catalog reads from.
type Store interface {
	ListExams(ctx context.Context) ([]Exam, error)
	GetExam(ctx context.Context, examID int64) (Exam, error)
	ListQuestions(ctx context.Context, examID int64) ([]Question, error)
}

// PackCache stores assembled exam packs.
type PackCache interface {
	Get(ctx context.Context, examID int64) (*Pack, error)
	Set(ctx context.Context, pack Pack) error
}

// Service serves exam content. Content is immutable while attempts run, so
// packs are cached and concurrent misses for one exam share a single load.
type Service struct {
	store  Store
	cache  PackCache
	sf     singleflight.Group
	logger zerolog.Logger
}

// NewService builds a catalog service; cache may be nil.
func NewService(store Store, cache PackCache, logger zerolog.Logger) *Service {
	return &Service{
		store:  store,
		cache:  cache,
		logger: logger.With().Str("component", "catalog").Logger(),
	}
}

// ListExams returns every exam header.
func (s *Service) ListExams(ctx context.Context) ([]Exam, error) {
	return s.store.ListExams(ctx)
}

// GetExam returns the exam header or ErrExamNotFound.
func (s *Service) GetExam(ctx context.Context, examID int64) (Exam, error) {
	pack, err := s.Pack(ctx, examID)
	if err != nil {
		return Exam{}, err
	}
	return pack.Exam, nil
}

// Questions returns the exam's questions ordered by position.
func (s *Service) Questions(ctx context.Context, examID int64) ([]Question, error) {
	pack, err := s.Pack(ctx, examID)
	if err != nil {
		return nil, err
	}
	return pack.Questions, nil
}

// Pack returns the exam together with its questions.
func (s *Service) Pack(ctx context.Context, examID int64) (*Pack, error) {
	if s.cache != nil {
		cached, err := s.cache.Get(ctx, examID)
		if err != nil {
			s.logger.Warn().Err(err).Int64("exam_id", examID).Msg("catalog cache read failed")
		} else if cached != nil {
			return cached, nil
		}
	}

	result, err, _ := s.sf.Do(strconv.FormatInt(examID, 10), func() (interface{}, error) {
		return s.load(ctx, examID)
	})
	if err != nil {
		return nil, err
	}
	return result.(*Pack), nil
}

func (s *Service) load(ctx context.Context, examID int64) (*Pack, error) {
	exam, err := s.store.GetExam(ctx, examID)
	if err != nil {
		return nil, err
	}
	questions, err := s.store.ListQuestions(ctx, examID)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	exam.QuestionCount = len(questions)
	pack := &Pack{Exam: exam, Questions: questions}

	if s.cache != nil {
		if err := s.cache.Set(ctx, *pack); err != nil {
			s.logger.Warn().Err(err).Int64("exam_id", examID).Msg("catalog cache write failed")
		}
	}
	return pack, nil
}
