package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultCacheTTL = 5 * time.Minute

// Cache keeps exam packs in Redis so every question view does not hit Postgres.
type Cache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ PackCache = (*Cache)(nil)

func NewCache(client *redis.Client, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{client: client, ttl: ttl}
}

func (c *Cache) key(examID int64) string {
	return fmt.Sprintf("catalog:exam:%d", examID)
}

func (c *Cache) Get(ctx context.Context, examID int64) (*Pack, error) {
	data, err := c.client.Get(ctx, c.key(examID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, err
	}
	var pack Pack
	if err := json.Unmarshal(data, &pack); err != nil {
		return nil, err
	}
	return &pack, nil
}

func (c *Cache) Set(ctx context.Context, pack Pack) error {
	data, err := json.Marshal(pack)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(pack.Exam.ID), data, c.ttl).Err()
}
