package postgres

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/octavia-ai/octavia/internal/models"
)

type ConcurrencyRepo interface {
	Insert(ctx context.Context, s *models.ConcurrencySample) error
	Since(ctx context.Context, since time.Time) ([]models.ConcurrencySample, error)
	MaxActiveSince(ctx context.Context, since time.Time) (int, error)
}

type concurrencyRepo struct {
	db *gorm.DB
}

func NewConcurrencyRepo(db *gorm.DB) ConcurrencyRepo {
	return &concurrencyRepo{db: db}
}

func (r *concurrencyRepo) Insert(ctx context.Context, s *models.ConcurrencySample) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *concurrencyRepo) Since(ctx context.Context, since time.Time) ([]models.ConcurrencySample, error) {
	var rows []models.ConcurrencySample
	err := r.db.WithContext(ctx).
		Where("sampled_at >= ?", since).
		Order("sampled_at ASC").
		Find(&rows).Error
	return rows, err
}

func (r *concurrencyRepo) MaxActiveSince(ctx context.Context, since time.Time) (int, error) {
	var maxActive *int
	err := r.db.WithContext(ctx).
		Model(&models.ConcurrencySample{}).
		Where("sampled_at >= ?", since).
		Select("MAX(active_sessions)").
		Scan(&maxActive).Error
	if err != nil {
		return 0, err
	}
	if maxActive == nil {
		return 0, nil
	}
	return *maxActive, nil
}
