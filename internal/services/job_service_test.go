package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/utils"
)

func TestJobSearch(t *testing.T) {
	jobs := newMemStore[models.Job]()
	jobs.put(models.Job{Title: "Backend Engineer", Company: "Acme"})
	jobs.put(models.Job{Title: "Designer", Company: "GoFast", Description: "Figma"})
	jobs.put(models.Job{Title: "Analyst", Company: "Data Co", Description: "SQL and go tooling"})
	svc := NewJobService(jobs, newMemStore[models.JobApplication]())

	rows, err := svc.Search(context.Background(), "  GO ")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = svc.Search(context.Background(), "engineer")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Company)

	_, err = svc.Search(context.Background(), "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestApply(t *testing.T) {
	jobs := newMemStore[models.Job]()
	jobID := jobs.put(models.Job{Title: "Backend Engineer"})
	apps := newMemStore[models.JobApplication]()
	svc := NewJobService(jobs, apps)

	_, err := svc.Apply(context.Background(), &models.JobApplication{JobID: "missing", StudentID: "s1"})
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))

	app, err := svc.Apply(context.Background(), &models.JobApplication{JobID: jobID, StudentID: "s1"})
	require.NoError(t, err)
	assert.Equal(t, "submitted", app.Status)
	assert.False(t, app.ApplicationDate.IsZero())

	rows, err := svc.Applications(context.Background(), "s1", "")
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	require.NoError(t, svc.UpdateApplication(context.Background(), app.ID, map[string]any{"status": "interviewing"}))
	got, err := svc.Application(context.Background(), app.ID)
	require.NoError(t, err)
	assert.Equal(t, "interviewing", got.Status)
}
