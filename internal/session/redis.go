package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "impactfest:session:"

// RedisStore keeps each session as a hash; every write refreshes its TTL.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisStore{rdb: rdb, ttl: ttl}
}

func (s *RedisStore) Get(ctx context.Context, sid, key string) (string, error) {
	v, err := s.rdb.HGet(ctx, redisKeyPrefix+sid, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNoToken
		}
		return "", err
	}
	return v, nil
}

func (s *RedisStore) Set(ctx context.Context, sid, key, value string) error {
	k := redisKeyPrefix + sid

	pipe := s.rdb.TxPipeline()
	pipe.HSet(ctx, k, key, value)
	pipe.Expire(ctx, k, s.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (s *RedisStore) Delete(ctx context.Context, sid, key string) error {
	return s.rdb.HDel(ctx, redisKeyPrefix+sid, key).Err()
}
