package voice

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTracker(t *testing.T) (*UsageTracker, *miniredis.Miniredis, *time.Time) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	now := time.Date(2026, 5, 4, 12, 0, 0, 0, time.UTC)
	tr := NewUsageTracker(rdb, 10*time.Minute)
	tr.now = func() time.Time { return now }
	return tr, mr, &now
}

func TestUsageTrackerCountsAndPeaks(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	for _, id := range []string{"a", "b", "c"} {
		_, err := tr.Acquire(ctx, id)
		require.NoError(t, err)
	}
	// refreshing an existing session does not add one
	n, err := tr.Acquire(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	require.NoError(t, tr.Release(ctx, "b"))
	require.NoError(t, tr.Release(ctx, "c"))

	u, err := tr.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, u.Active)
	assert.Equal(t, 3, u.PeakToday)
	assert.Equal(t, 3, u.PeakWeek)
}

func TestUsageTrackerPeakNeverDecreases(t *testing.T) {
	tr, _, _ := newTracker(t)
	ctx := context.Background()

	_, _ = tr.Acquire(ctx, "a")
	_, _ = tr.Acquire(ctx, "b")
	require.NoError(t, tr.Release(ctx, "a"))
	require.NoError(t, tr.Release(ctx, "b"))
	_, err := tr.Acquire(ctx, "c")
	require.NoError(t, err)

	u, err := tr.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, u.Active)
	assert.Equal(t, 2, u.PeakToday)
}

func TestUsageTrackerExpiresStaleSessions(t *testing.T) {
	tr, _, now := newTracker(t)
	ctx := context.Background()

	_, _ = tr.Acquire(ctx, "a")
	*now = now.Add(11 * time.Minute)

	u, err := tr.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, u.Active)
	assert.Equal(t, 1, u.PeakToday)
}

func TestUsageTrackerTouchKeepsPausedSessionLive(t *testing.T) {
	tr, _, now := newTracker(t)
	ctx := context.Background()

	_, _ = tr.Acquire(ctx, "a")
	_, _ = tr.Acquire(ctx, "b")
	*now = now.Add(8 * time.Minute)
	require.NoError(t, tr.Touch(ctx, "a"))
	*now = now.Add(8 * time.Minute)

	u, err := tr.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, u.Active)

	// touching a released session does not bring it back
	require.NoError(t, tr.Release(ctx, "a"))
	require.NoError(t, tr.Touch(ctx, "a"))
	u, err = tr.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, u.Active)
}

func TestUsageTrackerWeekPeakSpansDays(t *testing.T) {
	tr, mr, now := newTracker(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(peakKey(now.AddDate(0, 0, -3)), "9"))
	require.NoError(t, mr.Set(peakKey(now.AddDate(0, 0, -8)), "40"))
	_, _ = tr.Acquire(ctx, "a")

	u, err := tr.Usage(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, u.PeakToday)
	assert.Equal(t, 9, u.PeakWeek)
}
