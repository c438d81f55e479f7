package storage

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

const scanLockPrefix = "scanlock:"

// RedisAdapter provides the advisory scan lock. The TTL is the only
// release guarantee when a holder crashes mid-scan.
type RedisAdapter struct {
	client *redis.Client
}

func NewRedisAdapter(client *redis.Client) *RedisAdapter {
	return &RedisAdapter{client: client}
}

func (r *RedisAdapter) AcquireScanLock(ctx context.Context, name string, ttl time.Duration) (bool, error) {
	ok, err := r.client.SetNX(ctx, scanLockPrefix+name, 1, ttl).Result()
	if err != nil {
		return false, err
	}

	return ok, nil
}

func (r *RedisAdapter) ReleaseScanLock(ctx context.Context, name string) error {
	return r.client.Del(ctx, scanLockPrefix+name).Err()
}
