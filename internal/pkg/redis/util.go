package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// 仅当值与持有者一致时删除，避免释放他人持有的锁
var compareAndDelete = redis.NewScript(`
if redis.call('get', KEYS[1]) == ARGV[1] then
	return redis.call('del', KEYS[1])
end
return 0`)

// GetValue 获取字符串类型的值，键不存在时返回空字符串
func GetValue(ctx context.Context, key string) (string, error) {
	value, err := Rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", nil
		}
		return "", err
	}
	return value, nil
}

// SetWithExpiration 设置键值对，expiration 为 0 时不过期
func SetWithExpiration(ctx context.Context, key string, value string, expiration time.Duration) error {
	return Rdb.Set(ctx, key, value, expiration).Err()
}

// SetIfAbsent 键不存在时写入，返回是否写入成功
func SetIfAbsent(ctx context.Context, key string, value string, expiration time.Duration) (bool, error) {
	return Rdb.SetNX(ctx, key, value, expiration).Result()
}

// DeleteIfEquals 当前值等于 value 时删除键
func DeleteIfEquals(ctx context.Context, key string, value string) (bool, error) {
	n, err := compareAndDelete.Run(ctx, Rdb, []string{key}, value).Int()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// DeleteKey 删除一个或多个键
func DeleteKey(ctx context.Context, keys ...string) error {
	return Rdb.Del(ctx, keys...).Err()
}
