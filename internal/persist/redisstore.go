package persist

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

type RedisStore struct {
	rdb   redis.UniversalClient
	quota int64
}

func NewRedisStore(rdb redis.UniversalClient, quota int64) *RedisStore {
	return &RedisStore{rdb: rdb, quota: quota}
}

func (r *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := r.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "get snapshot %s", key)
	}
	return data, nil
}

func (r *RedisStore) Set(ctx context.Context, key string, data []byte) error {
	if err := checkQuota(r.quota, data); err != nil {
		return err
	}
	if err := r.rdb.Set(ctx, key, data, 0).Err(); err != nil {
		return errors.Wrapf(err, "set snapshot %s", key)
	}
	return nil
}

func (r *RedisStore) Remove(ctx context.Context, key string) error {
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		return errors.Wrapf(err, "remove snapshot %s", key)
	}
	return nil
}
