package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/octavia-ai/octavia/internal/models"
	pgrepo "github.com/octavia-ai/octavia/internal/repositories/postgres"
	"github.com/octavia-ai/octavia/internal/utils"
)

type ConversationService interface {
	AppendTurn(ctx context.Context, conversationID, interviewID string, role models.TurnRole, content string) error
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error)
}

type conversationService struct {
	convos pgrepo.ConversationRepo
	now    func() time.Time
}

func NewConversationService(convos pgrepo.ConversationRepo) ConversationService {
	return &conversationService{convos: convos, now: func() time.Time { return time.Now().UTC() }}
}

func (s *conversationService) AppendTurn(ctx context.Context, conversationID, interviewID string, role models.TurnRole, content string) error {
	const op = "ConversationService.AppendTurn"

	if conversationID == "" || role == "" || content == "" {
		return utils.E(utils.CodeInvalidArgument, op, "conversation_id, role, and content are required", nil)
	}
	if role != models.RoleAssistant && role != models.RoleUser {
		return utils.E(utils.CodeInvalidArgument, op, "role must be assistant or user", nil)
	}

	seq, err := s.convos.NextSeq(ctx, conversationID)
	if err != nil {
		return utils.E(utils.CodeInternal, op, "failed to read sequence", err)
	}

	row := &models.ConversationTurn{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		InterviewID:    interviewID,
		Seq:            seq,
		Role:           role,
		Content:        content,
		Timestamp:      s.now(),
	}
	if err := s.convos.Insert(ctx, row); err != nil {
		return utils.E(utils.CodePersistence, op, "failed to insert conversation turn", err)
	}
	return nil
}

func (s *conversationService) ListByConversation(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error) {
	const op = "ConversationService.ListByConversation"

	if conversationID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "conversation_id is required", nil)
	}

	rows, err := s.convos.ListByConversation(ctx, conversationID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list conversation turns", err)
	}
	return rows, nil
}
