package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/mahmudalamin/zbooksapp-sub000/internal/usecase"
)

// RedisIdempotencyStore enforces at-most-one order per checkout key.
// The lock key wins the race; the map key remembers which order a
// previously seen checkout produced.
type RedisIdempotencyStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotencyStore(rdb *redis.Client, ttl time.Duration) *RedisIdempotencyStore {
	return &RedisIdempotencyStore{rdb: rdb, ttl: ttl}
}

func (s *RedisIdempotencyStore) TryLock(ctx context.Context, scope, key string) (bool, error) {
	return s.rdb.SetNX(ctx, "checkout:lock:"+scope+":"+key, "1", s.ttl).Result()
}

func (s *RedisIdempotencyStore) Unlock(ctx context.Context, scope, key string) error {
	return s.rdb.Del(ctx, "checkout:lock:"+scope+":"+key).Err()
}

func (s *RedisIdempotencyStore) Remember(ctx context.Context, scope, key, value string) error {
	return s.rdb.Set(ctx, "checkout:order:"+scope+":"+key, value, s.ttl).Err()
}

func (s *RedisIdempotencyStore) Recall(ctx context.Context, scope, key string) (string, bool, error) {
	val, err := s.rdb.Get(ctx, "checkout:order:"+scope+":"+key).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

var _ usecase.IdempotencyStore = (*RedisIdempotencyStore)(nil)
