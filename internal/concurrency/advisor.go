// Package concurrency compares voice-session usage against the provisioned
// limit and recommends extra capacity.
package concurrency

import (
	"context"
	"errors"
	"time"

	"github.com/octavia-ai/octavia/internal/cache"
	"github.com/octavia-ai/octavia/internal/utils"
)

type Level string

const (
	LevelHealthy  Level = "healthy"
	LevelWarning  Level = "warning"
	LevelCritical Level = "critical"
)

const slotStep = 5

// Usage is the raw session counts reported by the voice layer.
type Usage struct {
	Active    int
	PeakToday int
	PeakWeek  int
}

type UsageSource interface {
	Usage(ctx context.Context) (Usage, error)
}

type Snapshot struct {
	Limit       int       `json:"total_concurrency_limit"`
	Active      int       `json:"current_active_sessions"`
	PeakToday   int       `json:"peak_sessions_today"`
	PeakWeek    int       `json:"peak_sessions_this_week"`
	Recommended int       `json:"recommended_additional_slots"`
	Level       Level     `json:"level"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// RecommendAdditionalSlots returns ceil((1.2*peakWeek - limit)/5)*5 when
// peakWeek >= 0.8*limit, else 0. Integer math keeps 1.2*10 exactly 12.
func RecommendAdditionalSlots(limit, peakWeek int) int {
	if limit <= 0 || 5*peakWeek < 4*limit {
		return 0
	}
	// (6*peak - 5*limit) / 5 is the shortfall; one more /5 for the step.
	need := 6*peakWeek - 5*limit
	if need <= 0 {
		return 0
	}
	const denom = 5 * slotStep
	return (need + denom - 1) / denom * slotStep
}

// LevelFor classifies active/limit: above 90% critical, above 70% warning.
func LevelFor(active, limit int) Level {
	if limit <= 0 {
		return LevelCritical
	}
	switch {
	case active*100 > 90*limit:
		return LevelCritical
	case active*100 > 70*limit:
		return LevelWarning
	default:
		return LevelHealthy
	}
}

// Compute derives a snapshot from raw usage.
func Compute(limit int, u Usage, now time.Time) Snapshot {
	return Snapshot{
		Limit:       limit,
		Active:      u.Active,
		PeakToday:   u.PeakToday,
		PeakWeek:    u.PeakWeek,
		Recommended: RecommendAdditionalSlots(limit, u.PeakWeek),
		Level:       LevelFor(u.Active, limit),
		UpdatedAt:   now,
	}
}

const snapshotKey = "concurrency:snapshot"

type Advisor struct {
	limit  int
	source UsageSource
	cache  cache.Cache
	ttl    time.Duration
	now    func() time.Time
}

// NewAdvisor builds an advisor. c may be nil to disable snapshot caching.
func NewAdvisor(limit int, source UsageSource, c cache.Cache, ttl time.Duration) *Advisor {
	return &Advisor{
		limit:  limit,
		source: source,
		cache:  c,
		ttl:    ttl,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (a *Advisor) Limit() int { return a.limit }

// Refresh always reads fresh usage. Concurrent refreshes are independent.
func (a *Advisor) Refresh(ctx context.Context) (Snapshot, error) {
	const op = "Advisor.Refresh"

	if a.source == nil {
		return Snapshot{}, utils.E(utils.CodeUnavailable, op, "usage source is not configured", errors.New("nil source"))
	}
	u, err := a.source.Usage(ctx)
	if err != nil {
		return Snapshot{}, utils.E(utils.CodeUnavailable, op, "failed to read usage", err)
	}

	snap := Compute(a.limit, u, a.now())
	if a.cache != nil && a.ttl > 0 {
		_ = a.cache.SetJSON(ctx, snapshotKey, snap, a.ttl)
	}
	return snap, nil
}

// Current serves the cached snapshot when present and refreshes otherwise.
func (a *Advisor) Current(ctx context.Context) (Snapshot, error) {
	if a.cache != nil {
		var snap Snapshot
		if hit, err := a.cache.GetJSON(ctx, snapshotKey, &snap); err == nil && hit {
			return snap, nil
		}
	}
	return a.Refresh(ctx)
}
