package cache

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one string value per key. SET replaces values atomically.
type RedisStore struct {
	cli    *redis.Client
	prefix string
}

// NewRedisStore connects to addr/db. Records never expire.
func NewRedisStore(addr string, db int, prefix string) *RedisStore {
	return NewRedisStoreFromClient(redis.NewClient(&redis.Options{Addr: addr, DB: db}), prefix)
}

// NewRedisStoreFromClient uses an existing client.
func NewRedisStoreFromClient(cli *redis.Client, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "wrapped"
	}
	return &RedisStore{cli: cli, prefix: prefix}
}

func (r *RedisStore) Close() error { return r.cli.Close() }

// Ping checks connectivity.
func (r *RedisStore) Ping(ctx context.Context) error {
	return r.cli.Ping(ctx).Err()
}

// Load implements Store.
func (r *RedisStore) Load(ctx context.Context, key Key) ([]byte, error) {
	data, err := r.cli.Get(ctx, r.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return data, nil
}

// Save implements Store.
func (r *RedisStore) Save(ctx context.Context, entry Entry) error {
	return r.cli.Set(ctx, r.key(entry.Key), entry.Document, 0).Err()
}

// Delete implements Store.
func (r *RedisStore) Delete(ctx context.Context, key Key) error {
	n, err := r.cli.Del(ctx, r.key(key)).Result()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RedisStore) key(key Key) string {
	return fmt.Sprintf("%s:%s:%d", r.prefix, key.ChannelID, key.Year)
}
