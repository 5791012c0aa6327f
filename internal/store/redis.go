package store

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const snapshotKeyPrefix = "starcharts:discoveries:"

// RedisStore persists ledger snapshots in redis with an optional TTL
// (zero keeps them forever).
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// OpenRedis connects via a redis URL and verifies the connection with a
// bounded ping before returning.
func OpenRedis(url string, ttl time.Duration) (*RedisStore, error) {
	logger := slog.With("component", "store", "backend", "redis")

	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	logger.Info("redis connection established", "addr", opts.Addr)
	return &RedisStore{client: client, ttl: ttl}, nil
}

func (r *RedisStore) Save(ctx context.Context, key string, data []byte) error {
	if err := r.client.Set(ctx, snapshotKeyPrefix+key, data, r.ttl).Err(); err != nil {
		return fmt.Errorf("save snapshot %q: %w", key, err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context, key string) ([]byte, error) {
	data, err := r.client.Get(ctx, snapshotKeyPrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load snapshot %q: %w", key, err)
	}
	return data, nil
}

func (r *RedisStore) Close() error {
	if r == nil || r.client == nil {
		return nil
	}
	return r.client.Close()
}
