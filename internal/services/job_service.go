package services

import (
	"context"
	"strings"

	"github.com/octavia-ai/octavia/internal/models"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/utils"
)

type JobService interface {
	List(ctx context.Context) ([]models.Job, error)
	Get(ctx context.Context, id string) (*models.Job, error)
	Create(ctx context.Context, in *models.Job) (*models.Job, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Search(ctx context.Context, keyword string) ([]models.Job, error)

	Applications(ctx context.Context, studentID, jobID string) ([]models.JobApplication, error)
	Application(ctx context.Context, id string) (*models.JobApplication, error)
	Apply(ctx context.Context, in *models.JobApplication) (*models.JobApplication, error)
	UpdateApplication(ctx context.Context, id string, fields map[string]any) error
}

type jobService struct {
	jobs         mongorepo.RecordStore[models.Job]
	applications mongorepo.RecordStore[models.JobApplication]
}

func NewJobService(jobs mongorepo.RecordStore[models.Job], applications mongorepo.RecordStore[models.JobApplication]) JobService {
	return &jobService{jobs: jobs, applications: applications}
}

func (s *jobService) List(ctx context.Context) ([]models.Job, error) {
	rows, err := s.jobs.List(ctx, nil, mongorepo.ListOptions{SortBy: "created_at", Desc: true})
	if err != nil {
		return nil, readErr("JobService.List", "jobs", err)
	}
	return rows, nil
}

func (s *jobService) Get(ctx context.Context, id string) (*models.Job, error) {
	const op = "JobService.Get"

	if err := requireID(op, "job_id", id); err != nil {
		return nil, err
	}
	j, err := s.jobs.Get(ctx, id)
	if err != nil {
		return nil, readErr(op, "job", err)
	}
	return j, nil
}

func (s *jobService) Create(ctx context.Context, in *models.Job) (*models.Job, error) {
	const op = "JobService.Create"

	if in == nil || strings.TrimSpace(in.Title) == "" || strings.TrimSpace(in.Company) == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "title and company are required", nil)
	}
	in.ID = ""
	if _, err := s.jobs.Create(ctx, in); err != nil {
		return nil, writeErr(op, "job", err)
	}
	return in, nil
}

func (s *jobService) Update(ctx context.Context, id string, fields map[string]any) error {
	const op = "JobService.Update"

	if err := requireID(op, "job_id", id); err != nil {
		return err
	}
	set, err := cleanFields(op, jobPatch, fields)
	if err != nil {
		return err
	}
	if err := s.jobs.Update(ctx, id, set); err != nil {
		return writeErr(op, "job", err)
	}
	return nil
}

func (s *jobService) Delete(ctx context.Context, id string) error {
	const op = "JobService.Delete"

	if err := requireID(op, "job_id", id); err != nil {
		return err
	}
	if err := s.jobs.Delete(ctx, id); err != nil {
		return writeErr(op, "job", err)
	}
	return nil
}

// Search matches keyword case-insensitively against title, company and
// description.
func (s *jobService) Search(ctx context.Context, keyword string) ([]models.Job, error) {
	const op = "JobService.Search"

	kw := strings.ToLower(strings.TrimSpace(keyword))
	if kw == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "keyword is required", nil)
	}
	rows, err := s.jobs.List(ctx, nil, mongorepo.ListOptions{})
	if err != nil {
		return nil, readErr(op, "jobs", err)
	}

	out := make([]models.Job, 0)
	for _, j := range rows {
		if strings.Contains(strings.ToLower(j.Title), kw) ||
			strings.Contains(strings.ToLower(j.Company), kw) ||
			strings.Contains(strings.ToLower(j.Description), kw) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (s *jobService) Applications(ctx context.Context, studentID, jobID string) ([]models.JobApplication, error) {
	filter := mongorepo.Filter{}
	if studentID != "" {
		filter["student_id"] = studentID
	}
	if jobID != "" {
		filter["job_id"] = jobID
	}
	rows, err := s.applications.List(ctx, filter, mongorepo.ListOptions{SortBy: "application_date", Desc: true})
	if err != nil {
		return nil, readErr("JobService.Applications", "job applications", err)
	}
	return rows, nil
}

func (s *jobService) Application(ctx context.Context, id string) (*models.JobApplication, error) {
	const op = "JobService.Application"

	if err := requireID(op, "application_id", id); err != nil {
		return nil, err
	}
	a, err := s.applications.Get(ctx, id)
	if err != nil {
		return nil, readErr(op, "job application", err)
	}
	return a, nil
}

func (s *jobService) Apply(ctx context.Context, in *models.JobApplication) (*models.JobApplication, error) {
	const op = "JobService.Apply"

	if in == nil || in.JobID == "" || in.StudentID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "job_id and student_id are required", nil)
	}
	if _, err := s.jobs.Get(ctx, in.JobID); err != nil {
		return nil, readErr(op, "job", err)
	}

	in.ID = ""
	if in.ApplicationDate.IsZero() {
		in.ApplicationDate = timeNow()
	}
	if in.Status == "" {
		in.Status = "submitted"
	}
	if _, err := s.applications.Create(ctx, in); err != nil {
		return nil, writeErr(op, "job application", err)
	}
	return in, nil
}

func (s *jobService) UpdateApplication(ctx context.Context, id string, fields map[string]any) error {
	const op = "JobService.UpdateApplication"

	if err := requireID(op, "application_id", id); err != nil {
		return err
	}
	set, err := cleanFields(op, applicationPatch, fields)
	if err != nil {
		return err
	}
	if err := s.applications.Update(ctx, id, set); err != nil {
		return writeErr(op, "job application", err)
	}
	return nil
}

var jobPatch = patchSpec{
	"title":            kindString,
	"company":          kindString,
	"location":         kindString,
	"type":             kindString,
	"salary":           kindString,
	"description":      kindString,
	"job_board_source": kindString,
	"job_url":          kindString,
}

var applicationPatch = patchSpec{
	"personal_information": kindString,
	"resume":               kindString,
	"cover_letter":         kindString,
	"linkedin_profile":     kindString,
	"portfolio_website":    kindString,
	"availability":         kindString,
	"status":               kindString,
}
