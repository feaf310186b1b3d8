package workers

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/octavia-ai/octavia/internal/concurrency"
	"github.com/octavia-ai/octavia/internal/metrics"
	"github.com/octavia-ai/octavia/internal/models"
	pgrepo "github.com/octavia-ai/octavia/internal/repositories/postgres"
)

// ConcurrencyMonitor refreshes the concurrency advisory on a cron schedule,
// records each snapshot and exports it as metrics.
type ConcurrencyMonitor struct {
	Advisor  *concurrency.Advisor
	Samples  pgrepo.ConcurrencyRepo
	Schedule string
	Logger   *logrus.Logger

	cron *cron.Cron
}

func (m *ConcurrencyMonitor) Start(ctx context.Context) error {
	if m.Advisor == nil {
		return errors.New("ConcurrencyMonitor missing dependency: Advisor must be set")
	}
	if m.Schedule == "" {
		m.Schedule = "@every 5m"
	}
	if m.Logger == nil {
		m.Logger = logrus.New()
	}

	m.cron = cron.New()
	_, err := m.cron.AddFunc(m.Schedule, func() {
		if _, err := m.RunOnce(ctx); err != nil {
			m.Logger.WithError(err).Warn("concurrency refresh failed")
		}
	})
	if err != nil {
		return fmt.Errorf("schedule concurrency refresh: %w", err)
	}
	m.cron.Start()
	m.Logger.WithField("schedule", m.Schedule).Info("concurrency monitor started")
	return nil
}

// Stop halts scheduling and returns a context done when running jobs finish.
func (m *ConcurrencyMonitor) Stop() context.Context {
	if m.cron == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return m.cron.Stop()
}

// RunOnce refreshes, persists and publishes one snapshot.
func (m *ConcurrencyMonitor) RunOnce(ctx context.Context) (concurrency.Snapshot, error) {
	if m.Logger == nil {
		m.Logger = logrus.New()
	}
	snap, err := m.Advisor.Refresh(ctx)
	if err != nil {
		return concurrency.Snapshot{}, err
	}

	metrics.ObserveConcurrency(snap.Limit, snap.Active, snap.PeakToday, snap.PeakWeek, snap.Recommended)

	if m.Samples != nil {
		err := m.Samples.Insert(ctx, &models.ConcurrencySample{
			SampledAt:   snap.UpdatedAt,
			Limit:       snap.Limit,
			Active:      snap.Active,
			PeakToday:   snap.PeakToday,
			PeakWeek:    snap.PeakWeek,
			Recommended: snap.Recommended,
			Level:       string(snap.Level),
		})
		if err != nil {
			m.Logger.WithError(err).Warn("failed to store concurrency sample")
		}
	}

	log := m.Logger.WithFields(logrus.Fields{
		"active":      snap.Active,
		"limit":       snap.Limit,
		"peak_week":   snap.PeakWeek,
		"recommended": snap.Recommended,
	})
	switch snap.Level {
	case concurrency.LevelCritical:
		log.Error("voice concurrency critical")
	case concurrency.LevelWarning:
		log.Warn("voice concurrency high")
	default:
		log.Debug("voice concurrency refreshed")
	}
	return snap, nil
}
