package workers

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/octavia-ai/octavia/internal/concurrency"
	"github.com/octavia-ai/octavia/internal/logger"
	"github.com/octavia-ai/octavia/internal/models"
	pgrepo "github.com/octavia-ai/octavia/internal/repositories/postgres"
)

type usageFunc func(context.Context) (concurrency.Usage, error)

func (f usageFunc) Usage(ctx context.Context) (concurrency.Usage, error) { return f(ctx) }

func newSampleRepo(t *testing.T) pgrepo.ConcurrencyRepo {
	t.Helper()
	dsn := fmt.Sprintf("file:mon%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.ConcurrencySample{}))
	return pgrepo.NewConcurrencyRepo(db)
}

func TestConcurrencyMonitorRunOnce(t *testing.T) {
	repo := newSampleRepo(t)
	src := usageFunc(func(context.Context) (concurrency.Usage, error) {
		return concurrency.Usage{Active: 8, PeakToday: 9, PeakWeek: 10}, nil
	})
	m := &ConcurrencyMonitor{
		Advisor: concurrency.NewAdvisor(10, src, nil, 0),
		Samples: repo,
		Logger:  logger.Discard(),
	}

	snap, err := m.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, concurrency.LevelWarning, snap.Level)
	assert.Equal(t, 5, snap.Recommended)

	rows, err := repo.Since(context.Background(), time.Now().Add(-time.Hour))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 8, rows[0].Active)
	assert.Equal(t, "warning", rows[0].Level)
}

func TestConcurrencyMonitorSourceError(t *testing.T) {
	repo := newSampleRepo(t)
	src := usageFunc(func(context.Context) (concurrency.Usage, error) { return concurrency.Usage{}, errors.New("redis down") })
	m := &ConcurrencyMonitor{Advisor: concurrency.NewAdvisor(10, src, nil, 0), Samples: repo, Logger: logger.Discard()}

	_, err := m.RunOnce(context.Background())
	require.Error(t, err)
	rows, err := repo.Since(context.Background(), time.Time{})
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestConcurrencyMonitorStart(t *testing.T) {
	m := &ConcurrencyMonitor{Logger: logger.Discard()}
	assert.Error(t, m.Start(context.Background()))

	m = &ConcurrencyMonitor{Advisor: concurrency.NewAdvisor(10, nil, nil, 0), Schedule: "not a spec", Logger: logger.Discard()}
	assert.Error(t, m.Start(context.Background()))

	m = &ConcurrencyMonitor{Advisor: concurrency.NewAdvisor(10, nil, nil, 0), Logger: logger.Discard()}
	require.NoError(t, m.Start(context.Background()))
	<-m.Stop().Done()
}
