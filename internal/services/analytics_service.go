package services

import (
	"context"
	"math"
	"sort"

	"github.com/octavia-ai/octavia/internal/models"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/utils"
)

const maxResumeViews = 50

type AnalyticsService interface {
	ResumeAnalytics(ctx context.Context, studentID, departmentID string) ([]models.ResumeAnalytics, error)
	InterviewAnalytics(ctx context.Context, studentID, departmentID string) ([]models.InterviewAnalytics, error)
	ResumeViews(ctx context.Context, resumeID string) ([]models.ResumeView, error)
	RecordResumeView(ctx context.Context, in *models.ResumeView) (*models.ResumeView, error)
	InstitutionPerformance(ctx context.Context) ([]models.InstitutionPerformance, error)
}

type AnalyticsDeps struct {
	Institutions       mongorepo.RecordStore[models.Institution]
	Students           mongorepo.RecordStore[models.Student]
	Results            mongorepo.RecordStore[models.InterviewResult]
	ResumeViews        mongorepo.RecordStore[models.ResumeView]
	ResumeAnalytics    mongorepo.RecordStore[models.ResumeAnalytics]
	InterviewAnalytics mongorepo.RecordStore[models.InterviewAnalytics]
}

type analyticsService struct {
	d AnalyticsDeps
}

func NewAnalyticsService(d AnalyticsDeps) AnalyticsService {
	return &analyticsService{d: d}
}

func studentDeptFilter(studentID, departmentID string) mongorepo.Filter {
	f := mongorepo.Filter{}
	if studentID != "" {
		f["student_id"] = studentID
	}
	if departmentID != "" {
		f["department_id"] = departmentID
	}
	return f
}

func (s *analyticsService) ResumeAnalytics(ctx context.Context, studentID, departmentID string) ([]models.ResumeAnalytics, error) {
	rows, err := s.d.ResumeAnalytics.List(ctx, studentDeptFilter(studentID, departmentID), mongorepo.ListOptions{})
	if err != nil {
		return nil, readErr("AnalyticsService.ResumeAnalytics", "resume analytics", err)
	}
	return rows, nil
}

func (s *analyticsService) InterviewAnalytics(ctx context.Context, studentID, departmentID string) ([]models.InterviewAnalytics, error) {
	rows, err := s.d.InterviewAnalytics.List(ctx, studentDeptFilter(studentID, departmentID), mongorepo.ListOptions{})
	if err != nil {
		return nil, readErr("AnalyticsService.InterviewAnalytics", "interview analytics", err)
	}
	return rows, nil
}

func (s *analyticsService) ResumeViews(ctx context.Context, resumeID string) ([]models.ResumeView, error) {
	const op = "AnalyticsService.ResumeViews"

	if err := requireID(op, "resume_id", resumeID); err != nil {
		return nil, err
	}
	rows, err := s.d.ResumeViews.List(ctx, mongorepo.Filter{"resume_id": resumeID}, mongorepo.ListOptions{SortBy: "view_date", Desc: true, Limit: maxResumeViews})
	if err != nil {
		return nil, readErr(op, "resume views", err)
	}
	return rows, nil
}

func (s *analyticsService) RecordResumeView(ctx context.Context, in *models.ResumeView) (*models.ResumeView, error) {
	const op = "AnalyticsService.RecordResumeView"

	if in == nil || in.ResumeID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "resume_id is required", nil)
	}
	in.ID = ""
	in.ViewDate = timeNow()
	if _, err := s.d.ResumeViews.Create(ctx, in); err != nil {
		return nil, writeErr(op, "resume view", err)
	}
	return in, nil
}

// InstitutionPerformance rolls students and interview results up per
// institution for the admin overview.
func (s *analyticsService) InstitutionPerformance(ctx context.Context) ([]models.InstitutionPerformance, error) {
	const op = "AnalyticsService.InstitutionPerformance"

	institutions, err := s.d.Institutions.List(ctx, nil, mongorepo.ListOptions{})
	if err != nil {
		return nil, readErr(op, "institutions", err)
	}
	students, err := s.d.Students.List(ctx, nil, mongorepo.ListOptions{})
	if err != nil {
		return nil, readErr(op, "students", err)
	}
	results, err := s.d.Results.List(ctx, nil, mongorepo.ListOptions{})
	if err != nil {
		return nil, readErr(op, "interview results", err)
	}

	byID := make(map[string]*models.InstitutionPerformance, len(institutions))
	scoreSum := make(map[string]int, len(institutions))
	out := make([]models.InstitutionPerformance, len(institutions))
	for i, in := range institutions {
		out[i] = models.InstitutionPerformance{InstitutionID: in.ID, Name: in.Name}
		byID[in.ID] = &out[i]
	}

	studentInst := make(map[string]string, len(students))
	for _, st := range students {
		p, ok := byID[st.InstitutionID]
		if !ok {
			continue
		}
		studentInst[st.ID] = st.InstitutionID
		p.Students++
		if st.Status == models.StudentActive {
			p.ActiveStudents++
		}
	}

	for _, r := range results {
		instID, ok := studentInst[r.StudentID]
		if !ok {
			continue
		}
		byID[instID].InterviewsCompleted++
		scoreSum[instID] += r.Score
	}

	for i, in := range institutions {
		p := &out[i]
		if p.InterviewsCompleted > 0 {
			p.AverageScore = round1(float64(scoreSum[in.ID]) / float64(p.InterviewsCompleted))
		}
		if in.Licenses > 0 {
			p.LicenseUtilization = round1(float64(p.Students) * 100 / float64(in.Licenses))
		}
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].AverageScore > out[j].AverageScore })
	return out, nil
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
