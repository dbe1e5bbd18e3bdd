package job

import (
	"Novii/internal/pkg/cache"
	"context"
	"time"

	"github.com/google/uuid"
)

// acquire 多实例部署时保证同一任务同一时刻只有一个实例执行
func acquire(ctx context.Context, store cache.Store, key string, ttl time.Duration) (func(), bool) {
	owner := uuid.NewString()
	ok, err := store.SetNX(ctx, key, owner, ttl)
	if err != nil || !ok {
		return nil, false
	}
	return func() {
		_, _ = store.DeleteIfEquals(context.Background(), key, owner)
	}, true
}
