package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	defaultVisitTTL = 2 * time.Hour

	fieldRun     = "exam"
	fieldAttempt = "current_attempt"
	fieldFlash   = "flash"
)

// Store keeps per-visit transient state in one Redis hash per visit. Every
// write refreshes the TTL; an idle visit expires with everything in it.
type Store struct {
	redis  *redis.Client
	ttl    time.Duration
	logger zerolog.Logger
}

// NewStore creates a visit store backed by Redis.
func NewStore(client *redis.Client, ttl time.Duration, logger zerolog.Logger) *Store {
	if ttl <= 0 {
		ttl = defaultVisitTTL
	}
	return &Store{
		redis:  client,
		ttl:    ttl,
		logger: logger.With().Str("component", "visit_store").Logger(),
	}
}

func (s *Store) key(visitID string) string {
	return fmt.Sprintf("visit:%s", visitID)
}

func (s *Store) write(ctx context.Context, visitID string, values ...interface{}) error {
	key := s.key(visitID)
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.HSet(ctx, key, values...)
		pipe.Expire(ctx, key, s.ttl)
		return nil
	})
	return err
}

// LoadRun returns the visit's exam run, or nil if none was started.
func (s *Store) LoadRun(ctx context.Context, visitID string) (*Run, error) {
	data, err := s.redis.HGet(ctx, s.key(visitID), fieldRun).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run: %w", err)
	}

	var run Run
	if err := json.Unmarshal(data, &run); err != nil {
		if errors.Is(err, ErrCorruptRun) {
			s.logger.Warn().Err(err).Str("visit_id", visitID).Msg("discarding corrupt run")
			return nil, nil
		}
		return nil, fmt.Errorf("unmarshal run: %w", err)
	}
	return &run, nil
}

// SaveRun replaces the visit's exam run.
func (s *Store) SaveRun(ctx context.Context, visitID string, run *Run) error {
	data, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}
	return s.write(ctx, visitID, fieldRun, data)
}

// CurrentAttempt returns the attempt handle remembered for this visit.
func (s *Store) CurrentAttempt(ctx context.Context, visitID string) (int64, bool, error) {
	raw, err := s.redis.HGet(ctx, s.key(visitID), fieldAttempt).Result()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get attempt handle: %w", err)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false, fmt.Errorf("parse attempt handle: %w", err)
	}
	return id, true, nil
}

// SetCurrentAttempt remembers the attempt opened at position 1.
func (s *Store) SetCurrentAttempt(ctx context.Context, visitID string, attemptID int64) error {
	return s.write(ctx, visitID, fieldAttempt, attemptID)
}

// AddFlash queues a one-shot message for the next page view.
func (s *Store) AddFlash(ctx context.Context, visitID, message string) error {
	var messages []string
	raw, err := s.redis.HGet(ctx, s.key(visitID), fieldFlash).Bytes()
	switch {
	case err == redis.Nil:
	case err != nil:
		return fmt.Errorf("get flash: %w", err)
	default:
		if err := json.Unmarshal(raw, &messages); err != nil {
			s.logger.Warn().Err(err).Str("visit_id", visitID).Msg("dropping unreadable flash messages")
			messages = nil
		}
	}

	data, err := json.Marshal(append(messages, message))
	if err != nil {
		return fmt.Errorf("marshal flash: %w", err)
	}
	return s.write(ctx, visitID, fieldFlash, data)
}

// PopFlashes returns and clears queued messages.
func (s *Store) PopFlashes(ctx context.Context, visitID string) ([]string, error) {
	key := s.key(visitID)
	var get *redis.StringCmd
	_, err := s.redis.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		get = pipe.HGet(ctx, key, fieldFlash)
		pipe.HDel(ctx, key, fieldFlash)
		return nil
	})
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("pop flash: %w", err)
	}

	raw, err := get.Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pop flash: %w", err)
	}
	var messages []string
	if err := json.Unmarshal(raw, &messages); err != nil {
		return nil, fmt.Errorf("unmarshal flash: %w", err)
	}
	return messages, nil
}

// Clear drops everything stored for the visit.
func (s *Store) Clear(ctx context.Context, visitID string) error {
	return s.redis.Del(ctx, s.key(visitID)).Err()
}
