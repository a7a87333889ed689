package leaderboard

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// Entry is one ranked account on an exam's board.
type Entry struct {
	Rank   int       `json:"rank"`
	UserID uuid.UUID `json:"user_id"`
	Score  int       `json:"score"`
}

// ServiceOptions configures leaderboard service behavior.
type ServiceOptions struct {
	TopN           int
	RedisKeyPrefix string
}

// Service keeps each account's best score per exam in a Redis sorted set.
type Service struct {
	redis  *redis.Client
	logger zerolog.Logger
	topN   int
	prefix string
}

// NewService constructs a leaderboard service instance.
func NewService(redis *redis.Client, logger zerolog.Logger, opts ServiceOptions) *Service {
	topN := opts.TopN
	if topN <= 0 {
		topN = 10
	}
	prefix := opts.RedisKeyPrefix
	if prefix == "" {
		prefix = "lb"
	}

	return &Service{
		redis:  redis,
		logger: logger.With().Str("component", "leaderboard").Logger(),
		topN:   topN,
		prefix: prefix,
	}
}

// RecordScore keeps score if it beats the account's previous best. Recording
// the same result again changes nothing.
func (s *Service) RecordScore(ctx context.Context, examID int64, userID uuid.UUID, score int) error {
	err := s.redis.ZAddArgs(ctx, s.examKey(examID), redis.ZAddArgs{
		GT:      true,
		Members: []redis.Z{{Score: float64(score), Member: userID.String()}},
	}).Err()
	if err != nil {
		return fmt.Errorf("record score: %w", err)
	}
	s.logger.Debug().Int64("exam_id", examID).Int("score", score).Msg("score recorded")
	return nil
}

// Top returns up to limit best scores for an exam, highest first.
func (s *Service) Top(ctx context.Context, examID int64, limit int) ([]Entry, error) {
	if limit <= 0 || limit > s.topN {
		limit = s.topN
	}

	results, err := s.redis.ZRevRangeWithScores(ctx, s.examKey(examID), 0, int64(limit-1)).Result()
	if err != nil {
		return nil, fmt.Errorf("fetch leaderboard: %w", err)
	}

	entries := make([]Entry, 0, len(results))
	for _, z := range results {
		member, _ := z.Member.(string)
		userID, err := uuid.Parse(member)
		if err != nil {
			s.logger.Warn().Err(err).Str("member", member).Msg("skipping malformed leaderboard member")
			continue
		}
		entries = append(entries, Entry{
			Rank:   len(entries) + 1,
			UserID: userID,
			Score:  int(z.Score),
		})
	}
	return entries, nil
}

func (s *Service) examKey(examID int64) string {
	return fmt.Sprintf("%s:exam:%d", s.prefix, examID)
}
