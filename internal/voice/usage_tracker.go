package voice

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/octavia-ai/octavia/internal/concurrency"
)

const (
	activeKey     = "voice:active"
	peakKeyPrefix = "voice:peak:"
	peakRetention = 8 * 24 * time.Hour
	weekDays      = 7
)

// acquireScript prunes expired sessions, registers the session and raises
// today's peak if the live count exceeds it.
var acquireScript = redis.NewScript(`
redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', ARGV[1])
redis.call('ZADD', KEYS[1], ARGV[2], ARGV[3])
local n = redis.call('ZCARD', KEYS[1])
local peak = tonumber(redis.call('GET', KEYS[2]) or '0')
if n > peak then
  redis.call('SET', KEYS[2], n, 'EX', ARGV[4])
end
return n
`)

// UsageTracker counts live voice sessions in Redis so every server instance
// shares one view of concurrency. Sessions expire after ttl unless touched.
type UsageTracker struct {
	rdb *redis.Client
	ttl time.Duration
	now func() time.Time
}

func NewUsageTracker(rdb *redis.Client, ttl time.Duration) *UsageTracker {
	if ttl <= 0 {
		ttl = 20 * time.Minute
	}
	return &UsageTracker{
		rdb: rdb,
		ttl: ttl,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Acquire registers or refreshes a live session and returns the live count.
func (t *UsageTracker) Acquire(ctx context.Context, sessionID string) (int, error) {
	now := t.now()
	n, err := acquireScript.Run(ctx, t.rdb,
		[]string{activeKey, peakKey(now)},
		now.Unix(),
		now.Add(t.ttl).Unix(),
		sessionID,
		int(peakRetention.Seconds()),
	).Int()
	if err != nil {
		return 0, err
	}
	return n, nil
}

// Touch pushes a held session's expiry out by ttl. A released or expired
// session is not re-registered.
func (t *UsageTracker) Touch(ctx context.Context, sessionID string) error {
	return t.rdb.ZAddXX(ctx, activeKey, redis.Z{
		Score:  float64(t.now().Add(t.ttl).Unix()),
		Member: sessionID,
	}).Err()
}

func (t *UsageTracker) Release(ctx context.Context, sessionID string) error {
	return t.rdb.ZRem(ctx, activeKey, sessionID).Err()
}

// Usage reports live sessions, today's peak and the max over the last 7 days.
func (t *UsageTracker) Usage(ctx context.Context) (concurrency.Usage, error) {
	now := t.now()
	cutoff := strconv.FormatInt(now.Unix(), 10)
	if err := t.rdb.ZRemRangeByScore(ctx, activeKey, "-inf", cutoff).Err(); err != nil {
		return concurrency.Usage{}, err
	}
	active, err := t.rdb.ZCard(ctx, activeKey).Result()
	if err != nil {
		return concurrency.Usage{}, err
	}

	keys := make([]string, weekDays)
	for i := 0; i < weekDays; i++ {
		keys[i] = peakKey(now.AddDate(0, 0, -i))
	}
	vals, err := t.rdb.MGet(ctx, keys...).Result()
	if err != nil {
		return concurrency.Usage{}, err
	}

	u := concurrency.Usage{Active: int(active)}
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			continue
		}
		p, err := strconv.Atoi(s)
		if err != nil {
			continue
		}
		if i == 0 {
			u.PeakToday = p
		}
		if p > u.PeakWeek {
			u.PeakWeek = p
		}
	}
	if u.Active > u.PeakToday {
		u.PeakToday = u.Active
	}
	if u.PeakToday > u.PeakWeek {
		u.PeakWeek = u.PeakToday
	}
	return u, nil
}

func peakKey(t time.Time) string {
	return peakKeyPrefix + t.UTC().Format("20060102")
}
