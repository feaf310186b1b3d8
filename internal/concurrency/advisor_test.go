package concurrency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octavia-ai/octavia/internal/cache"
	"github.com/octavia-ai/octavia/internal/utils"
)

func TestRecommendAdditionalSlots(t *testing.T) {
	tests := []struct {
		limit, peak, want int
	}{
		{10, 9, 5},   // 9 >= 8, ceil((10.8-10)/5)*5 = 5
		{10, 7, 0},   // below 80%
		{10, 8, 0},   // 9.6 - 10 < 0
		{10, 10, 5},  // ceil(2/5)*5
		{10, 0, 0},
		{50, 40, 0},  // 48 - 50 < 0
		{50, 45, 5},  // 54 - 50 = 4
		{50, 50, 10}, // 60 - 50 = 10
		{50, 55, 20}, // 66 - 50 = 16
		{100, 200, 140},
		{0, 10, 0},
	}
	for _, tc := range tests {
		got := RecommendAdditionalSlots(tc.limit, tc.peak)
		assert.Equalf(t, tc.want, got, "limit=%d peak=%d", tc.limit, tc.peak)
		assert.Zero(t, got%5)
		if got > 0 {
			assert.GreaterOrEqual(t, float64(tc.peak), 0.8*float64(tc.limit))
		}
	}
}

func TestLevelFor(t *testing.T) {
	assert.Equal(t, LevelHealthy, LevelFor(7, 10))
	assert.Equal(t, LevelWarning, LevelFor(8, 10))
	assert.Equal(t, LevelWarning, LevelFor(9, 10))
	assert.Equal(t, LevelCritical, LevelFor(10, 10))
	assert.Equal(t, LevelHealthy, LevelFor(0, 10))
}

type stubSource struct {
	u     Usage
	err   error
	calls int
}

func (s *stubSource) Usage(context.Context) (Usage, error) {
	s.calls++
	return s.u, s.err
}

func TestAdvisorRefreshAndCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	src := &stubSource{u: Usage{Active: 3, PeakToday: 6, PeakWeek: 10}}
	a := NewAdvisor(10, src, cache.NewRedisCache(rdb, "cache"), time.Minute)
	fixed := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	a.now = func() time.Time { return fixed }

	ctx := context.Background()
	snap, err := a.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, Snapshot{
		Limit: 10, Active: 3, PeakToday: 6, PeakWeek: 10,
		Recommended: 5, Level: LevelHealthy, UpdatedAt: fixed,
	}, snap)

	again, err := a.Current(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, src.calls)
	assert.Equal(t, snap.Recommended, again.Recommended)

	_, err = a.Refresh(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, src.calls)
}

func TestAdvisorSourceError(t *testing.T) {
	a := NewAdvisor(10, &stubSource{err: errors.New("down")}, nil, 0)
	_, err := a.Refresh(context.Background())
	require.Error(t, err)
	assert.True(t, utils.IsCode(err, utils.CodeUnavailable))
}
