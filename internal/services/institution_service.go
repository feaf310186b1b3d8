package services

import (
	"context"
	"strings"

	"github.com/octavia-ai/octavia/internal/models"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/utils"
)

type InstitutionService interface {
	List(ctx context.Context) ([]models.Institution, error)
	Get(ctx context.Context, id string) (*models.Institution, error)
	Create(ctx context.Context, in *models.Institution) (*models.Institution, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
}

type institutionService struct {
	institutions mongorepo.RecordStore[models.Institution]
}

func NewInstitutionService(institutions mongorepo.RecordStore[models.Institution]) InstitutionService {
	return &institutionService{institutions: institutions}
}

func (s *institutionService) List(ctx context.Context) ([]models.Institution, error) {
	rows, err := s.institutions.List(ctx, nil, mongorepo.ListOptions{SortBy: "name"})
	if err != nil {
		return nil, readErr("InstitutionService.List", "institutions", err)
	}
	return rows, nil
}

func (s *institutionService) Get(ctx context.Context, id string) (*models.Institution, error) {
	const op = "InstitutionService.Get"

	if err := requireID(op, "institution_id", id); err != nil {
		return nil, err
	}
	in, err := s.institutions.Get(ctx, id)
	if err != nil {
		return nil, readErr(op, "institution", err)
	}
	return in, nil
}

func (s *institutionService) Create(ctx context.Context, in *models.Institution) (*models.Institution, error) {
	const op = "InstitutionService.Create"

	if in == nil || strings.TrimSpace(in.Name) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "name is required", nil)
	}
	in.ID = ""
	for i, d := range in.EmailDomains {
		in.EmailDomains[i] = normalizeDomain(d)
	}
	if _, err := s.institutions.Create(ctx, in); err != nil {
		return nil, writeErr(op, "institution", err)
	}
	return in, nil
}

func (s *institutionService) Update(ctx context.Context, id string, fields map[string]any) error {
	const op = "InstitutionService.Update"

	if err := requireID(op, "institution_id", id); err != nil {
		return err
	}
	set, err := cleanFields(op, institutionPatch, fields)
	if err != nil {
		return err
	}
	if err := s.institutions.Update(ctx, id, set); err != nil {
		return writeErr(op, "institution", err)
	}
	return nil
}

func (s *institutionService) Delete(ctx context.Context, id string) error {
	const op = "InstitutionService.Delete"

	if err := requireID(op, "institution_id", id); err != nil {
		return err
	}
	if err := s.institutions.Delete(ctx, id); err != nil {
		return writeErr(op, "institution", err)
	}
	return nil
}

func normalizeDomain(d string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@"))
}

var institutionPatch = patchSpec{
	"name":                 kindString,
	"type":                 kindString,
	"website":              kindString,
	"address":              kindString,
	"admin_name":           kindString,
	"admin_email":          kindString,
	"admin_phone":          kindString,
	"admin_title":          kindString,
	"subscription_plan":    kindString,
	"email_domains":        kindStrings,
	"licenses":             kindInt,
	"price_per_license":    kindFloat,
	"session_minutes":      kindInt,
	"extra_minutes_rate":   kindFloat,
	"signup_link":          kindString,
	"platform_engagement":  kindString,
	"total_users":          kindInt,
	"interviews_completed": kindInt,
	"average_session_time": kindFloat,
	"engagement_rate":      kindFloat,
}
