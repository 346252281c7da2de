package storage

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/partygames/truthordare/internal/observability"
)

type RedisKV struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisKV(client redis.UniversalClient, prefix string) *RedisKV {
	if prefix == "" {
		prefix = "tod"
	}
	return &RedisKV{client: client, prefix: prefix}
}

func (s *RedisKV) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := s.client.Get(ctx, s.dataKey(key)).Result()
	if err == redis.Nil {
		observability.RecordStorageOperation(ctx, "redis", "get", "not_found")
		return "", false, nil
	}
	if err != nil {
		observability.RecordStorageOperation(ctx, "redis", "get", "error")
		return "", false, err
	}
	observability.RecordStorageOperation(ctx, "redis", "get", "success")
	return v, true, nil
}

func (s *RedisKV) Apply(ctx context.Context, b Batch) error {
	if b.empty() {
		return nil
	}
	pipe := s.client.TxPipeline()
	for k, v := range b.Set {
		pipe.Set(ctx, s.dataKey(k), v, 0)
	}
	if len(b.Delete) > 0 {
		keys := make([]string, 0, len(b.Delete))
		for _, k := range b.Delete {
			keys = append(keys, s.dataKey(k))
		}
		pipe.Del(ctx, keys...)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		observability.RecordStorageOperation(ctx, "redis", "apply", "error")
		return err
	}
	observability.RecordStorageOperation(ctx, "redis", "apply", "success")
	return nil
}

func (s *RedisKV) Close() error {
	return s.client.Close()
}

func (s *RedisKV) dataKey(key string) string {
	return fmt.Sprintf("%s:device:%s", s.prefix, key)
}
