package tilecache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/heatfall/heatfall/internal/core/observability"
)

// Redis caches tiles in a shared Redis instance so multiple renderer
// processes reuse each other's fetches.
type Redis struct {
	rdb *redis.Client
}

type RedisOption func(*redis.Options)

func WithPoolSize(n int) RedisOption {
	return func(o *redis.Options) { o.PoolSize = n }
}

func WithDialTimeout(d time.Duration) RedisOption {
	return func(o *redis.Options) { o.DialTimeout = d }
}

func WithReadTimeout(d time.Duration) RedisOption {
	return func(o *redis.Options) { o.ReadTimeout = d }
}

func WithWriteTimeout(d time.Duration) RedisOption {
	return func(o *redis.Options) { o.WriteTimeout = d }
}

func NewRedis(ctx context.Context, addr string, opts ...RedisOption) (*Redis, error) {
	if addr == "" {
		return nil, errors.New("redis address is required")
	}

	ro := &redis.Options{
		Addr:         addr,
		PoolSize:     16,
		MinIdleConns: 2,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  time.Second,
		WriteTimeout: time.Second,
	}
	for _, f := range opts {
		f(ro)
	}

	rdb := redis.NewClient(ro)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		observability.ObserveTileCache("redis", "miss")
		return nil, false, nil
	case err != nil:
		observability.ObserveTileCache("redis", "error")
		return nil, false, fmt.Errorf("redis get: %w", err)
	}
	observability.ObserveTileCache("redis", "hit")
	return val, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if err := r.rdb.Set(ctx, key, val, ttl).Err(); err != nil {
		observability.ObserveTileCache("redis", "error")
		return fmt.Errorf("redis set: %w", err)
	}
	observability.ObserveTileCache("redis", "store")
	return nil
}

func (r *Redis) Close() error { return r.rdb.Close() }
