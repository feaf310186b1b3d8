package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/octavia-ai/octavia/internal/models"
)

type ConversationRepo interface {
	Insert(ctx context.Context, turn *models.ConversationTurn) error
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error)
	NextSeq(ctx context.Context, conversationID string) (int64, error)
	CountByConversation(ctx context.Context, conversationID string) (int64, error)
}

type conversationRepo struct {
	db *gorm.DB
}

func NewConversationRepo(db *gorm.DB) ConversationRepo {
	return &conversationRepo{db: db}
}

func (r *conversationRepo) Insert(ctx context.Context, turn *models.ConversationTurn) error {
	return r.db.WithContext(ctx).Create(turn).Error
}

// ListByConversation returns turns in conversational order.
func (r *conversationRepo) ListByConversation(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	if limit <= 0 {
		limit = 500
	}

	var rows []models.ConversationTurn
	err := r.db.WithContext(ctx).
		Where("conversation_id = ?", conversationID).
		Order("seq ASC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *conversationRepo) NextSeq(ctx context.Context, conversationID string) (int64, error) {
	var maxSeq *int64
	err := r.db.WithContext(ctx).
		Model(&models.ConversationTurn{}).
		Where("conversation_id = ?", conversationID).
		Select("MAX(seq)").
		Scan(&maxSeq).Error
	if err != nil {
		return 0, err
	}
	if maxSeq == nil {
		return 1, nil
	}
	return *maxSeq + 1, nil
}

func (r *conversationRepo) CountByConversation(ctx context.Context, conversationID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.ConversationTurn{}).
		Where("conversation_id = ?", conversationID).
		Count(&n).Error
	return n, err
}
