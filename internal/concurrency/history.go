package concurrency

import (
	"context"
	"time"

	"github.com/octavia-ai/octavia/internal/models"
)

const week = 7 * 24 * time.Hour

// PeakHistory reads the highest active count persisted since t.
type PeakHistory interface {
	MaxActiveSince(ctx context.Context, since time.Time) (int, error)
}

// SampleReader lists persisted samples oldest first.
type SampleReader interface {
	Since(ctx context.Context, since time.Time) ([]models.ConcurrencySample, error)
}

// HistorySource raises the live weekly peak to the persisted one, so a
// flushed Redis does not hide last week's load. A history error falls back
// to the live figures.
type HistorySource struct {
	Live    UsageSource
	History PeakHistory
	Now     func() time.Time
}

func (h HistorySource) Usage(ctx context.Context) (Usage, error) {
	u, err := h.Live.Usage(ctx)
	if err != nil {
		return Usage{}, err
	}
	if h.History == nil {
		return u, nil
	}
	now := time.Now
	if h.Now != nil {
		now = h.Now
	}
	if stored, err := h.History.MaxActiveSince(ctx, now().Add(-week)); err == nil && stored > u.PeakWeek {
		u.PeakWeek = stored
	}
	return u, nil
}
