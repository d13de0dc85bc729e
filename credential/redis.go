package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisBackend is a durable-tier backend for shared or daemon deployments
// where several SDK processes serve the same operator session.
type RedisBackend struct {
	redis  redis.UniversalClient
	prefix string
}

// NewRedisBackend creates a Redis-backed tier. prefix namespaces the two
// credential keys, e.g. "seatrans:cred".
func NewRedisBackend(client redis.UniversalClient, prefix string) *RedisBackend {
	if prefix == "" {
		prefix = "seatrans:cred"
	}
	return &RedisBackend{
		redis:  client,
		prefix: prefix,
	}
}

func (b *RedisBackend) key(key string) string {
	return b.prefix + ":" + key
}

func (b *RedisBackend) Get(ctx context.Context, key string) (string, error) {
	value, err := b.redis.Get(ctx, b.key(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrKeyNotFound
		}
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return value, nil
}

func (b *RedisBackend) Set(ctx context.Context, key, value string) error {
	if err := b.redis.Set(ctx, b.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	if err := b.redis.Del(ctx, b.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
