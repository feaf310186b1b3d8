package concurrency

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticSource struct {
	u   Usage
	err error
}

func (s staticSource) Usage(context.Context) (Usage, error) { return s.u, s.err }

type staticHistory struct {
	peak  int
	err   error
	since time.Time
}

func (h *staticHistory) MaxActiveSince(_ context.Context, since time.Time) (int, error) {
	h.since = since
	return h.peak, h.err
}

func TestHistorySource(t *testing.T) {
	now := time.Date(2026, 5, 8, 12, 0, 0, 0, time.UTC)
	live := staticSource{u: Usage{Active: 2, PeakToday: 4, PeakWeek: 6}}

	hist := &staticHistory{peak: 9}
	u, err := HistorySource{Live: live, History: hist, Now: func() time.Time { return now }}.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Usage{Active: 2, PeakToday: 4, PeakWeek: 9}, u)
	assert.Equal(t, now.Add(-7*24*time.Hour), hist.since)

	u, err = HistorySource{Live: live, History: &staticHistory{peak: 3}}.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, u.PeakWeek)

	u, err = HistorySource{Live: live, History: &staticHistory{err: errors.New("pg down")}}.Usage(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, u.PeakWeek)

	_, err = HistorySource{Live: staticSource{err: errors.New("redis down")}}.Usage(context.Background())
	assert.Error(t, err)
}
