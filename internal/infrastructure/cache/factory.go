package cache

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/stockledger/backend/internal/domain/shared"
	"github.com/stockledger/backend/internal/infrastructure/config"
	"go.uber.org/zap"
)

// SubmissionStoreFactory picks the submission store from configuration
type SubmissionStoreFactory struct {
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// SubmissionStoreFactoryOption configures the factory
type SubmissionStoreFactoryOption func(*SubmissionStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) SubmissionStoreFactoryOption {
	return func(f *SubmissionStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable redis falls back to
// the in-memory store. Default is true.
func WithInMemoryFallback(allow bool) SubmissionStoreFactoryOption {
	return func(f *SubmissionStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewSubmissionStoreFactory creates a new factory
func NewSubmissionStoreFactory(cfg config.RedisConfig, opts ...SubmissionStoreFactoryOption) *SubmissionStoreFactory {
	f := &SubmissionStoreFactory{
		redisConfig:           cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateStore returns a redis store when redis is enabled and reachable,
// otherwise an in-memory store
func (f *SubmissionStoreFactory) CreateStore(ctx context.Context) (shared.SubmissionStore, error) {
	if !f.redisConfig.Enabled {
		f.logger.Info("redis disabled, using in-memory submission store")
		return NewInMemorySubmissionStore(0), nil
	}

	store, err := NewRedisSubmissionStore(ctx, &redis.Options{
		Addr:     f.redisConfig.Addr(),
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	})
	if err == nil {
		f.logger.Info("using redis submission store", zap.String("addr", f.redisConfig.Addr()))
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("redis required for submission store but unavailable: %w", err)
	}
	f.logger.Warn("redis unavailable, falling back to in-memory submission store", zap.Error(err))
	return NewInMemorySubmissionStore(0), nil
}
