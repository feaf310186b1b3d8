package cache

import (
	"context"
	"time"
)

// Cache stores JSON values for read paths that can be recomputed on a miss.
type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (hit bool, err error)
	SetJSON(ctx context.Context, key string, val any, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// Lookup outcomes passed to an Observer.
const (
	ResultHit     = "hit"
	ResultMiss    = "miss"
	ResultCorrupt = "corrupt"
	ResultError   = "error"
)

// Observer is told the outcome of every GetJSON.
type Observer func(result string)
