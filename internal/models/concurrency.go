package models

import "time"

// ConcurrencySample is one persisted refresh of the concurrency advisory.
type ConcurrencySample struct {
	ID          uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	SampledAt   time.Time `gorm:"column:sampled_at;type:timestamptz;index" json:"sampled_at"`
	Limit       int       `gorm:"column:concurrency_limit" json:"total_concurrency_limit"`
	Active      int       `gorm:"column:active_sessions" json:"current_active_sessions"`
	PeakToday   int       `gorm:"column:peak_today" json:"peak_sessions_today"`
	PeakWeek    int       `gorm:"column:peak_week" json:"peak_sessions_this_week"`
	Recommended int       `gorm:"column:recommended_slots" json:"recommended_additional_slots"`
	Level       string    `gorm:"column:level;type:text" json:"level"`
}

func (ConcurrencySample) TableName() string { return "concurrency_samples" }
