package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/utils"
)

func TestInstitutionPerformance(t *testing.T) {
	insts := newMemStore[models.Institution]()
	students := newMemStore[models.Student]()
	results := newMemStore[models.InterviewResult]()

	state := insts.put(models.Institution{Name: "State", Licenses: 4})
	tech := insts.put(models.Institution{Name: "Tech", Licenses: 0})
	quiet := insts.put(models.Institution{Name: "Quiet", Licenses: 10})

	a := students.put(models.Student{InstitutionID: state, Status: models.StudentActive})
	b := students.put(models.Student{InstitutionID: state, Status: models.StudentPending})
	c := students.put(models.Student{InstitutionID: tech, Status: models.StudentActive})
	students.put(models.Student{InstitutionID: "gone", Status: models.StudentActive})

	results.put(models.InterviewResult{StudentID: a, Score: 80})
	results.put(models.InterviewResult{StudentID: b, Score: 71})
	results.put(models.InterviewResult{StudentID: c, Score: 92})
	results.put(models.InterviewResult{StudentID: "stranger", Score: 50})

	svc := NewAnalyticsService(AnalyticsDeps{Institutions: insts, Students: students, Results: results})
	rows, err := svc.InstitutionPerformance(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, tech, rows[0].InstitutionID)
	assert.Equal(t, 92.0, rows[0].AverageScore)
	assert.Equal(t, 0.0, rows[0].LicenseUtilization)

	assert.Equal(t, state, rows[1].InstitutionID)
	assert.Equal(t, 2, rows[1].Students)
	assert.Equal(t, 1, rows[1].ActiveStudents)
	assert.Equal(t, 2, rows[1].InterviewsCompleted)
	assert.Equal(t, 75.5, rows[1].AverageScore)
	assert.Equal(t, 50.0, rows[1].LicenseUtilization)

	assert.Equal(t, quiet, rows[2].InstitutionID)
	assert.Zero(t, rows[2].InterviewsCompleted)
}

func TestAnalyticsFilters(t *testing.T) {
	ra := newMemStore[models.ResumeAnalytics]()
	ra.put(models.ResumeAnalytics{StudentID: "s1", DepartmentID: "cs", ResumeViews: 3})
	ra.put(models.ResumeAnalytics{StudentID: "s2", DepartmentID: "cs", ResumeViews: 5})
	ra.put(models.ResumeAnalytics{StudentID: "s3", DepartmentID: "ee", ResumeViews: 1})
	svc := NewAnalyticsService(AnalyticsDeps{ResumeAnalytics: ra})

	rows, err := svc.ResumeAnalytics(context.Background(), "", "cs")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = svc.ResumeAnalytics(context.Background(), "s3", "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 1, rows[0].ResumeViews)
}

func TestResumeViews(t *testing.T) {
	views := newMemStore[models.ResumeView]()
	svc := NewAnalyticsService(AnalyticsDeps{ResumeViews: views})

	_, err := svc.ResumeViews(context.Background(), "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	for i := 0; i < 3; i++ {
		_, err := svc.RecordResumeView(context.Background(), &models.ResumeView{ResumeID: "r1"})
		require.NoError(t, err)
	}
	rows, err := svc.ResumeViews(context.Background(), "r1")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
