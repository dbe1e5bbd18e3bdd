package cache

import (
	"Novii/internal/pkg/redis"
	"context"
	"time"
)

// RedisStore 基于全局 Redis 客户端的缓存实现
type RedisStore struct{}

func NewRedisStore() *RedisStore {
	return &RedisStore{}
}

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	return redis.GetValue(ctx, key)
}

func (s *RedisStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	return redis.SetWithExpiration(ctx, key, value, ttl)
}

func (s *RedisStore) SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error) {
	return redis.SetIfAbsent(ctx, key, value, ttl)
}

func (s *RedisStore) DeleteIfEquals(ctx context.Context, key string, value string) (bool, error) {
	return redis.DeleteIfEquals(ctx, key, value)
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return redis.DeleteKey(ctx, keys...)
}
