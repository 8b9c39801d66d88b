package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/soyeahso/frontdesk/internal/domain"
)

// RedisTokenStore keeps the token record under a single redis key, for
// kiosks that share a resume slot with a reception terminal.
type RedisTokenStore struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisTokenStore creates a store writing to key. A zero ttl keeps the
// record until it is cleared.
func NewRedisTokenStore(client *redis.Client, key string, ttl time.Duration) *RedisTokenStore {
	if client == nil {
		panic("store: redis client cannot be nil")
	}
	if key == "" {
		key = DefaultSlot
	}
	return &RedisTokenStore{client: client, key: key, ttl: ttl}
}

func (s *RedisTokenStore) Save(ctx context.Context, rec domain.TokenRecord) error {
	data, err := domain.EncodeTokenRecord(rec)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *RedisTokenStore) Load(ctx context.Context) (domain.TokenRecord, error) {
	data, err := s.client.Get(ctx, s.key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.TokenRecord{}, ErrNotFound
		}
		return domain.TokenRecord{}, fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return decodeSlot(data)
}

func (s *RedisTokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}
