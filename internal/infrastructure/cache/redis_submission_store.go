package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stockledger/backend/internal/domain/shared"
)

// DefaultKeyPrefix namespaces submission keys in redis
const DefaultKeyPrefix = "stockledger:submission:"

// RedisSubmissionStore implements SubmissionStore on redis so that every
// server instance sees the same keys
type RedisSubmissionStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisSubmissionStore connects and pings redis
func NewRedisSubmissionStore(ctx context.Context, opts *redis.Options) (*RedisSubmissionStore, error) {
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisSubmissionStoreWithClient(client, ""), nil
}

// NewRedisSubmissionStoreWithClient wraps an existing client
func NewRedisSubmissionStoreWithClient(client *redis.Client, keyPrefix string) *RedisSubmissionStore {
	if keyPrefix == "" {
		keyPrefix = DefaultKeyPrefix
	}
	return &RedisSubmissionStore{client: client, keyPrefix: keyPrefix}
}

// Claim sets the key with SETNX so concurrent claims have one winner
func (s *RedisSubmissionStore) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim submission key: %w", err)
	}
	return ok, nil
}

// Release deletes the key
func (s *RedisSubmissionStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release submission key: %w", err)
	}
	return nil
}

// Seen reports whether the key exists
func (s *RedisSubmissionStore) Seen(ctx context.Context, key string) (bool, error) {
	n, err := s.client.Exists(ctx, s.keyPrefix+key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check submission key: %w", err)
	}
	return n > 0, nil
}

// Close closes the Redis client
func (s *RedisSubmissionStore) Close() error {
	return s.client.Close()
}

var _ shared.SubmissionStore = (*RedisSubmissionStore)(nil)
