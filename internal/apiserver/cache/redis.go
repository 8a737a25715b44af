package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Store shared by every API server instance
type Redis struct {
	client redis.UniversalClient
	prefix string
	stats  counters
}

// NewRedis wraps client; every key is written under prefix
func NewRedis(client redis.UniversalClient, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) key(k string) string { return r.prefix + k }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.Get(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.stats.record(false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	r.stats.record(true)
	return v, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < 0 {
		ttl = 0
	}
	return r.client.Set(ctx, r.key(key), value, ttl).Err()
}

func (r *Redis) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	return r.client.Del(ctx, full...).Err()
}

func (r *Redis) Take(ctx context.Context, key string) ([]byte, bool, error) {
	v, err := r.client.GetDel(ctx, r.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		r.stats.record(false)
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	r.stats.record(true)
	return v, true, nil
}

// Stats returns hit and miss counts
func (r *Redis) Stats() Stats { return r.stats.snapshot() }

func (r *Redis) Close() error { return r.client.Close() }
