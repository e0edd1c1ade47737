package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
)

const defaultRedisPrefix = "authdemo"

// RedisBackend stores values as plain Redis strings under prefix:key.
type RedisBackend struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisBackend wraps an existing client. An empty prefix selects
// "authdemo".
func NewRedisBackend(redisClient redis.UniversalClient, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = defaultRedisPrefix
	}
	return &RedisBackend{redis: redisClient, prefix: prefix}
}

func (r *RedisBackend) key(key string) string {
	return r.prefix + ":" + key
}

func (r *RedisBackend) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidKey
	}
	raw, err := r.redis.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, oops.Code("STORAGE_READ_FAILED").With("key", key).Wrap(err)
	}
	return raw, nil
}

func (r *RedisBackend) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidKey
	}
	if err := r.redis.Set(ctx, r.key(key), value, 0).Err(); err != nil {
		return oops.Code("STORAGE_WRITE_FAILED").With("key", key).Wrap(err)
	}
	return nil
}

func (r *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := r.redis.Del(ctx, r.key(key)).Err(); err != nil {
		return oops.Code("STORAGE_DELETE_FAILED").With("key", key).Wrap(err)
	}
	return nil
}
