package services

import (
	"context"
	"strings"

	"github.com/octavia-ai/octavia/internal/models"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/utils"
)

type StudentService interface {
	List(ctx context.Context, institutionID string) ([]models.Student, error)
	Get(ctx context.Context, id string) (*models.Student, error)
	Create(ctx context.Context, in *models.Student) (*models.Student, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Pending(ctx context.Context, institutionID string) ([]models.Student, error)
	Approve(ctx context.Context, id string) error
	Reject(ctx context.Context, id string) error
	ValidateInstitutionEmail(ctx context.Context, email, institutionID string) (bool, error)
}

type studentService struct {
	students      mongorepo.RecordStore[models.Student]
	institutions  mongorepo.RecordStore[models.Institution]
	enforceDomain bool
}

// NewStudentService builds the roster service. With enforceDomain set, new
// students must sign up with one of their institution's email domains.
func NewStudentService(students mongorepo.RecordStore[models.Student], institutions mongorepo.RecordStore[models.Institution], enforceDomain bool) StudentService {
	return &studentService{students: students, institutions: institutions, enforceDomain: enforceDomain}
}

func (s *studentService) List(ctx context.Context, institutionID string) ([]models.Student, error) {
	filter := mongorepo.Filter{}
	if institutionID != "" {
		filter["institution_id"] = institutionID
	}
	rows, err := s.students.List(ctx, filter, mongorepo.ListOptions{SortBy: "full_name"})
	if err != nil {
		return nil, readErr("StudentService.List", "students", err)
	}
	return rows, nil
}

func (s *studentService) Get(ctx context.Context, id string) (*models.Student, error) {
	const op = "StudentService.Get"

	if err := requireID(op, "student_id", id); err != nil {
		return nil, err
	}
	st, err := s.students.Get(ctx, id)
	if err != nil {
		return nil, readErr(op, "student", err)
	}
	return st, nil
}

func (s *studentService) Create(ctx context.Context, in *models.Student) (*models.Student, error) {
	const op = "StudentService.Create"

	if in == nil || in.InstitutionID == "" || in.Email == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "institution_id and email are required", nil)
	}
	if s.enforceDomain {
		ok, err := s.ValidateInstitutionEmail(ctx, in.Email, in.InstitutionID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, utils.E(utils.CodeInvalidArgument, op, "email domain not allowed for this institution", nil)
		}
	}

	in.ID = ""
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	if in.Status == "" {
		in.Status = models.StudentPending
	}
	now := timeNow()
	if in.SignupDate.IsZero() {
		in.SignupDate = now
	}
	in.LastActivity = now

	if _, err := s.students.Create(ctx, in); err != nil {
		return nil, writeErr(op, "student", err)
	}
	return in, nil
}

func (s *studentService) Update(ctx context.Context, id string, fields map[string]any) error {
	const op = "StudentService.Update"

	if err := requireID(op, "student_id", id); err != nil {
		return err
	}
	set, err := cleanFields(op, studentPatch, fields)
	if err != nil {
		return err
	}
	if err := s.students.Update(ctx, id, set); err != nil {
		return writeErr(op, "student", err)
	}
	return nil
}

func (s *studentService) Delete(ctx context.Context, id string) error {
	const op = "StudentService.Delete"

	if err := requireID(op, "student_id", id); err != nil {
		return err
	}
	if err := s.students.Delete(ctx, id); err != nil {
		return writeErr(op, "student", err)
	}
	return nil
}

func (s *studentService) Pending(ctx context.Context, institutionID string) ([]models.Student, error) {
	const op = "StudentService.Pending"

	if err := requireID(op, "institution_id", institutionID); err != nil {
		return nil, err
	}
	rows, err := s.students.List(ctx, mongorepo.Filter{
		"institution_id": institutionID,
		"status":         models.StudentPending,
	}, mongorepo.ListOptions{SortBy: "signup_date"})
	if err != nil {
		return nil, readErr(op, "students", err)
	}
	return rows, nil
}

func (s *studentService) Approve(ctx context.Context, id string) error {
	return s.setStatus(ctx, "StudentService.Approve", id, models.StudentActive)
}

func (s *studentService) Reject(ctx context.Context, id string) error {
	return s.setStatus(ctx, "StudentService.Reject", id, models.StudentRejected)
}

func (s *studentService) setStatus(ctx context.Context, op, id string, status models.StudentStatus) error {
	if err := requireID(op, "student_id", id); err != nil {
		return err
	}
	if err := s.students.Update(ctx, id, mongorepo.Fields{"status": status}); err != nil {
		return writeErr(op, "student", err)
	}
	return nil
}

// ValidateInstitutionEmail reports whether email uses one of the
// institution's allowed domains. No configured domains means not allowed.
func (s *studentService) ValidateInstitutionEmail(ctx context.Context, email, institutionID string) (bool, error) {
	const op = "StudentService.ValidateInstitutionEmail"

	if err := requireID(op, "institution_id", institutionID); err != nil {
		return false, err
	}
	in, err := s.institutions.Get(ctx, institutionID)
	if err != nil {
		return false, readErr(op, "institution", err)
	}

	at := strings.LastIndex(email, "@")
	if at < 0 || at == len(email)-1 {
		return false, nil
	}
	domain := normalizeDomain(email[at+1:])
	for _, d := range in.EmailDomains {
		if normalizeDomain(d) == domain {
			return true, nil
		}
	}
	return false, nil
}

// status changes only through Approve and Reject.
var studentPatch = patchSpec{
	"full_name":        kindString,
	"email":            kindString,
	"linkedin_profile": kindString,
	"session_minutes":  kindInt,
}
