package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache keeps every key under namespace so cached values never collide
// with the session or stream keys that share the Redis database.
type RedisCache struct {
	rdb       *redis.Client
	namespace string
	observe   Observer
}

func NewRedisCache(rdb *redis.Client, namespace string) *RedisCache {
	return &RedisCache{rdb: rdb, namespace: strings.TrimSuffix(namespace, ":")}
}

// WithObserver sets the lookup hook, typically a metrics counter.
func (c *RedisCache) WithObserver(o Observer) *RedisCache {
	c.observe = o
	return c
}

func (c *RedisCache) key(k string) string {
	if c.namespace == "" {
		return k
	}
	return c.namespace + ":" + k
}

func (c *RedisCache) record(result string) {
	if c.observe != nil {
		c.observe(result)
	}
}

func (c *RedisCache) GetJSON(ctx context.Context, key string, dst any) (bool, error) {
	k := c.key(key)
	s, err := c.rdb.Get(ctx, k).Result()
	if errors.Is(err, redis.Nil) {
		c.record(ResultMiss)
		return false, nil
	}
	if err != nil {
		c.record(ResultError)
		return false, err
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		// corrupt entries are dropped and reported as a miss
		_ = c.rdb.Del(ctx, k).Err()
		c.record(ResultCorrupt)
		return false, nil
	}
	c.record(ResultHit)
	return true, nil
}

func (c *RedisCache) SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error {
	b, err := json.Marshal(val)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(key), b, ttl).Err()
}

func (c *RedisCache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	return c.rdb.Del(ctx, full...).Err()
}
