package services

import (
	"context"
	"strings"

	"github.com/octavia-ai/octavia/internal/models"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/utils"
)

const (
	MessageBroadcast = "broadcast"
	MessageTargeted  = "targeted"
	messageSent      = "sent"
)

type MessageService interface {
	List(ctx context.Context, target string) ([]models.Message, error)
	Get(ctx context.Context, id string) (*models.Message, error)
	Create(ctx context.Context, in *models.Message) (*models.Message, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Broadcast(ctx context.Context, title, content, institutionID string) (*models.Message, error)
	SendTargeted(ctx context.Context, title, content string, studentIDs []string) ([]string, error)

	Inquiries(ctx context.Context) ([]models.ContactInquiry, error)
	Inquiry(ctx context.Context, id string) (*models.ContactInquiry, error)
	SubmitInquiry(ctx context.Context, in *models.ContactInquiry) (*models.ContactInquiry, error)
	UpdateInquiry(ctx context.Context, id string, fields map[string]any) error
	DeleteInquiry(ctx context.Context, id string) error
}

type messageService struct {
	messages  mongorepo.RecordStore[models.Message]
	inquiries mongorepo.RecordStore[models.ContactInquiry]
}

func NewMessageService(messages mongorepo.RecordStore[models.Message], inquiries mongorepo.RecordStore[models.ContactInquiry]) MessageService {
	return &messageService{messages: messages, inquiries: inquiries}
}

func (s *messageService) List(ctx context.Context, target string) ([]models.Message, error) {
	filter := mongorepo.Filter{}
	if target != "" {
		filter["target"] = target
	}
	rows, err := s.messages.List(ctx, filter, mongorepo.ListOptions{SortBy: "date", Desc: true})
	if err != nil {
		return nil, readErr("MessageService.List", "messages", err)
	}
	return rows, nil
}

func (s *messageService) Get(ctx context.Context, id string) (*models.Message, error) {
	const op = "MessageService.Get"

	if err := requireID(op, "message_id", id); err != nil {
		return nil, err
	}
	m, err := s.messages.Get(ctx, id)
	if err != nil {
		return nil, readErr(op, "message", err)
	}
	return m, nil
}

func (s *messageService) Create(ctx context.Context, in *models.Message) (*models.Message, error) {
	const op = "MessageService.Create"

	if in == nil || strings.TrimSpace(in.Title) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title is required", nil)
	}
	in.ID = ""
	if in.Date.IsZero() {
		in.Date = timeNow()
	}
	if _, err := s.messages.Create(ctx, in); err != nil {
		return nil, writeErr(op, "message", err)
	}
	return in, nil
}

func (s *messageService) Update(ctx context.Context, id string, fields map[string]any) error {
	const op = "MessageService.Update"

	if err := requireID(op, "message_id", id); err != nil {
		return err
	}
	set, err := cleanFields(op, messagePatch, fields)
	if err != nil {
		return err
	}
	if err := s.messages.Update(ctx, id, set); err != nil {
		return writeErr(op, "message", err)
	}
	return nil
}

func (s *messageService) Delete(ctx context.Context, id string) error {
	const op = "MessageService.Delete"

	if err := requireID(op, "message_id", id); err != nil {
		return err
	}
	if err := s.messages.Delete(ctx, id); err != nil {
		return writeErr(op, "message", err)
	}
	return nil
}

// Broadcast records a message addressed to every student of an institution.
// Delivery itself happens elsewhere; the record is marked sent.
func (s *messageService) Broadcast(ctx context.Context, title, content, institutionID string) (*models.Message, error) {
	const op = "MessageService.Broadcast"

	if err := requireID(op, "institution_id", institutionID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title and content are required", nil)
	}
	m := s.sent(title, content, MessageBroadcast, institutionID)
	if _, err := s.messages.Create(ctx, m); err != nil {
		return nil, writeErr(op, "message", err)
	}
	return m, nil
}

// SendTargeted records one message per student and returns their ids.
func (s *messageService) SendTargeted(ctx context.Context, title, content string, studentIDs []string) ([]string, error) {
	const op = "MessageService.SendTargeted"

	if len(studentIDs) == 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "student_ids are required", nil)
	}
	if strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title and content are required", nil)
	}

	ids := make([]string, 0, len(studentIDs))
	for _, sid := range studentIDs {
		if sid == "" {
			continue
		}
		id, err := s.messages.Create(ctx, s.sent(title, content, MessageTargeted, sid))
		if err != nil {
			return ids, writeErr(op, "message", err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func (s *messageService) sent(title, content, typ, target string) *models.Message {
	return &models.Message{
		Title:        title,
		Content:      content,
		Type:         typ,
		Target:       target,
		Status:       messageSent,
		Date:         timeNow(),
		DeliveryRate: 100,
	}
}

func (s *messageService) Inquiries(ctx context.Context) ([]models.ContactInquiry, error) {
	rows, err := s.inquiries.List(ctx, nil, mongorepo.ListOptions{SortBy: "submission_date", Desc: true})
	if err != nil {
		return nil, readErr("MessageService.Inquiries", "contact inquiries", err)
	}
	return rows, nil
}

func (s *messageService) Inquiry(ctx context.Context, id string) (*models.ContactInquiry, error) {
	const op = "MessageService.Inquiry"

	if err := requireID(op, "inquiry_id", id); err != nil {
		return nil, err
	}
	in, err := s.inquiries.Get(ctx, id)
	if err != nil {
		return nil, readErr(op, "contact inquiry", err)
	}
	return in, nil
}

func (s *messageService) SubmitInquiry(ctx context.Context, in *models.ContactInquiry) (*models.ContactInquiry, error) {
	const op = "MessageService.SubmitInquiry"

	if in == nil || strings.TrimSpace(in.Email) == "" || strings.TrimSpace(in.InstitutionName) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "institution_name and email are required", nil)
	}
	in.ID = ""
	in.SubmissionDate = timeNow()
	if _, err := s.inquiries.Create(ctx, in); err != nil {
		return nil, writeErr(op, "contact inquiry", err)
	}
	return in, nil
}

func (s *messageService) UpdateInquiry(ctx context.Context, id string, fields map[string]any) error {
	const op = "MessageService.UpdateInquiry"

	if err := requireID(op, "inquiry_id", id); err != nil {
		return err
	}
	set, err := cleanFields(op, inquiryPatch, fields)
	if err != nil {
		return err
	}
	if err := s.inquiries.Update(ctx, id, set); err != nil {
		return writeErr(op, "contact inquiry", err)
	}
	return nil
}

func (s *messageService) DeleteInquiry(ctx context.Context, id string) error {
	const op = "MessageService.DeleteInquiry"

	if err := requireID(op, "inquiry_id", id); err != nil {
		return err
	}
	if err := s.inquiries.Delete(ctx, id); err != nil {
		return writeErr(op, "contact inquiry", err)
	}
	return nil
}

var messagePatch = patchSpec{
	"title":         kindString,
	"type":          kindString,
	"target":        kindString,
	"content":       kindString,
	"status":        kindString,
	"date":          kindTime,
	"delivery_rate": kindFloat,
}

var inquiryPatch = patchSpec{
	"institution_name": kindString,
	"contact_name":     kindString,
	"email":            kindString,
	"phone":            kindString,
	"student_capacity": kindString,
	"message":          kindString,
}
