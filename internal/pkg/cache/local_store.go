package cache

import (
	"context"
	"strings"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

const (
	defaultLocalCap = 4096
	sweepInterval   = time.Minute
)

// CacheItem 包装缓存数据和过期时间
type CacheItem struct {
	Data      string
	ExpiresAt time.Time
}

func (i CacheItem) expired(now time.Time) bool {
	return !i.ExpiresAt.IsZero() && now.After(i.ExpiresAt)
}

// LocalStore 进程内缓存，未配置 Redis 时使用
// 普通键放在容量受限的 LRU 中；命中 pinnedPrefixes 的键（如 Token 黑名单）单独存放，
// 不会被淘汰，只在过期后清理
type LocalStore struct {
	mu             sync.Mutex
	lruCache       *lru.Cache[string, CacheItem]
	pinned         map[string]CacheItem
	pinnedPrefixes []string
	lastSweep      time.Time
	now            func() time.Time
}

func NewLocalStore(capacity int, pinnedPrefixes ...string) (*LocalStore, error) {
	if capacity <= 0 {
		capacity = defaultLocalCap
	}
	l, err := lru.New[string, CacheItem](capacity)
	if err != nil {
		return nil, err
	}
	return &LocalStore{
		lruCache:       l,
		pinned:         make(map[string]CacheItem),
		pinnedPrefixes: pinnedPrefixes,
		now:            time.Now,
	}, nil
}

// Get 获取缓存，若不存在或已过期则返回空字符串
func (s *LocalStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(key), nil
}

// Set 设置缓存，ttl 为 0 时不过期
func (s *LocalStore) Set(_ context.Context, key string, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(key, value, ttl)
	return nil
}

func (s *LocalStore) SetNX(_ context.Context, key string, value string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.get(key) != "" {
		return false, nil
	}
	s.put(key, value, ttl)
	return true, nil
}

func (s *LocalStore) DeleteIfEquals(_ context.Context, key string, value string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing := s.get(key); existing == "" || existing != value {
		return false, nil
	}
	s.remove(key)
	return true, nil
}

func (s *LocalStore) Delete(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		s.remove(key)
	}
	return nil
}

func (s *LocalStore) isPinned(key string) bool {
	for _, prefix := range s.pinnedPrefixes {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

func (s *LocalStore) get(key string) string {
	now := s.now()
	if s.isPinned(key) {
		item, ok := s.pinned[key]
		if !ok {
			return ""
		}
		if item.expired(now) {
			delete(s.pinned, key)
			return ""
		}
		return item.Data
	}

	item, ok := s.lruCache.Get(key)
	if !ok {
		return ""
	}
	if item.expired(now) {
		s.lruCache.Remove(key)
		return ""
	}
	return item.Data
}

func (s *LocalStore) put(key string, value string, ttl time.Duration) {
	item := CacheItem{Data: value}
	if ttl > 0 {
		item.ExpiresAt = s.now().Add(ttl)
	}
	if s.isPinned(key) {
		s.pinned[key] = item
		s.sweepPinned()
		return
	}
	s.lruCache.Add(key, item)
}

func (s *LocalStore) remove(key string) {
	if s.isPinned(key) {
		delete(s.pinned, key)
		return
	}
	s.lruCache.Remove(key)
}

// sweepPinned 每个周期最多清理一次已过期的固定键
func (s *LocalStore) sweepPinned() {
	now := s.now()
	if now.Sub(s.lastSweep) < sweepInterval {
		return
	}
	s.lastSweep = now
	for key, item := range s.pinned {
		if item.expired(now) {
			delete(s.pinned, key)
		}
	}
}
