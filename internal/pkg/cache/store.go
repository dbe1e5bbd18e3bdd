package cache

import (
	"context"
	"time"

	"github.com/goccy/go-json"
)

// Store 键值缓存抽象，未命中时 Get 返回空字符串
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	SetNX(ctx context.Context, key string, value string, ttl time.Duration) (bool, error)
	// DeleteIfEquals 仅当当前值等于 value 时删除
	DeleteIfEquals(ctx context.Context, key string, value string) (bool, error)
	Delete(ctx context.Context, keys ...string) error
}

// GetJSON 读取并反序列化缓存，返回是否命中
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, err := s.Get(ctx, key)
	if err != nil || raw == "" {
		return false, err
	}
	if err = json.Unmarshal([]byte(raw), dst); err != nil {
		return false, err
	}
	return true, nil
}

// SetJSON 序列化后写入缓存
func SetJSON(ctx context.Context, s Store, key string, value any, ttl time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Set(ctx, key, string(b), ttl)
}
