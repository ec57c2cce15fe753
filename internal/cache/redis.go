package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const (
	keyPrefix   = "solarweather:"
	pingTimeout = 5 * time.Second
	scanCount   = 500
)

// Redis is a Cache backed by a Redis server. Keys are namespaced so Clear
// never touches data owned by other applications.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the server at url (redis://host:port/db) and pings it.
func NewRedis(url string) (*Redis, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: client}, nil
}

var _ Cache = (*Redis)(nil)

func (r *Redis) Get(ctx context.Context, key string) (float64, bool, error) {
	v, err := r.client.Get(ctx, keyPrefix+key).Float64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("redis get %q: %w", key, err)
	}
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value float64, ttl time.Duration) error {
	if err := r.client.Set(ctx, keyPrefix+key, value, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

func (r *Redis) Clear(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, keyPrefix+"*", scanCount).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

func (r *Redis) Close() error {
	return r.client.Close()
}
