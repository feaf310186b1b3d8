package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/utils"
)

func newInterviewFixture(now time.Time) (*interviewService, *memStore[models.Interview], *memStore[models.InterviewResult]) {
	ivs := newMemStore[models.Interview]()
	res := newMemStore[models.InterviewResult]()
	svc := NewInterviewService(ivs, res).(*interviewService)
	svc.now = func() time.Time { return now }
	return svc, ivs, res
}

func TestScheduleInterview(t *testing.T) {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc, _, _ := newInterviewFixture(now)

	_, err := svc.Schedule(context.Background(), &models.Interview{Date: now})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	_, err = svc.Schedule(context.Background(), &models.Interview{StudentID: "s1"})
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))

	iv, err := svc.Schedule(context.Background(), &models.Interview{
		StudentID: "s1",
		Date:      now.Add(24 * time.Hour),
		Status:    models.InterviewCompleted,
		Title:     "Backend mock",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, iv.ID)
	assert.NotEmpty(t, iv.ConversationID)
	assert.Equal(t, models.InterviewScheduled, iv.Status)

	got, err := svc.Get(context.Background(), iv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Backend mock", got.Title)
}

func TestUpcomingAndPast(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, ivs, _ := newInterviewFixture(now)

	ivs.put(models.Interview{StudentID: "s1", Title: "old", Date: now.Add(-72 * time.Hour)})
	ivs.put(models.Interview{StudentID: "s1", Title: "recent", Date: now.Add(-time.Hour)})
	ivs.put(models.Interview{StudentID: "s1", Title: "later", Date: now.Add(48 * time.Hour)})
	ivs.put(models.Interview{StudentID: "s1", Title: "now", Date: now})
	ivs.put(models.Interview{StudentID: "s2", Title: "other", Date: now.Add(time.Hour)})

	up, err := svc.Upcoming(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, up, 2)
	assert.Equal(t, "now", up[0].Title)
	assert.Equal(t, "later", up[1].Title)

	past, err := svc.Past(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, past, 2)
	assert.Equal(t, "recent", past[0].Title)
	assert.Equal(t, "old", past[1].Title)

	_, err = svc.Upcoming(context.Background(), "")
	assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument))
}

func TestBeginInterview(t *testing.T) {
	svc, ivs, _ := newInterviewFixture(time.Now())

	id := ivs.put(models.Interview{StudentID: "s1", Status: models.InterviewScheduled})
	iv, err := svc.Begin(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewInProgress, iv.Status)
	assert.NotEmpty(t, iv.ConversationID)

	stored, err := ivs.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, iv.ConversationID, stored.ConversationID)

	done := ivs.put(models.Interview{StudentID: "s1", Status: models.InterviewCompleted})
	_, err = svc.Begin(context.Background(), done)
	assert.True(t, utils.IsCode(err, utils.CodeInvalidState))

	_, err = svc.Begin(context.Background(), "missing")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestCompleteInterview(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc, ivs, _ := newInterviewFixture(now)
	id := ivs.put(models.Interview{StudentID: "s1", Status: models.InterviewInProgress})

	require.NoError(t, svc.Complete(context.Background(), id, 754*time.Second))

	iv, err := ivs.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewCompleted, iv.Status)
	assert.Equal(t, int64(754), iv.DurationSeconds)
	require.NotNil(t, iv.CompletedAt)
	assert.True(t, iv.CompletedAt.Equal(now))

	err = svc.Complete(context.Background(), "missing", time.Second)
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestInterviewUpdateAllowList(t *testing.T) {
	svc, ivs, _ := newInterviewFixture(time.Now())
	id := ivs.put(models.Interview{StudentID: "s1", Status: models.InterviewScheduled})

	for _, fields := range []map[string]any{
		{"_id": "x", "created_at": time.Now()},
		{"status": "completed"},
		{"title": "renamed", "status": "completed"},
		{"conversation_id": "c-1"},
		{"duration_seconds": 600.0},
		{"student_id": "s2"},
		{"questions": "tell me about yourself"},
	} {
		err := svc.Update(context.Background(), id, fields)
		assert.True(t, utils.IsCode(err, utils.CodeInvalidArgument), "fields %v", fields)
	}
	iv, err := ivs.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, models.InterviewScheduled, iv.Status)
	assert.Empty(t, iv.Title)

	require.NoError(t, svc.Update(context.Background(), id, map[string]any{
		"title":     "renamed",
		"date":      "2026-11-02",
		"questions": []any{"Why us?"},
	}))
	iv, err = ivs.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "renamed", iv.Title)
	assert.Equal(t, []string{"Why us?"}, iv.Questions)
	assert.True(t, iv.Date.Equal(time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, models.InterviewScheduled, iv.Status)
}

func TestInterviewDeleteMissing(t *testing.T) {
	svc, _, _ := newInterviewFixture(time.Now())
	err := svc.Delete(context.Background(), "nope")
	assert.True(t, utils.IsCode(err, utils.CodeNotFound))
}

func TestInterviewResults(t *testing.T) {
	svc, _, res := newInterviewFixture(time.Now())
	res.put(models.InterviewResult{InterviewID: "i1", StudentID: "s1", Score: 80})
	res.put(models.InterviewResult{InterviewID: "i2", StudentID: "s1", Score: 72})
	res.put(models.InterviewResult{InterviewID: "i3", StudentID: "s2", Score: 90})

	rows, err := svc.Results(context.Background(), "s1", "")
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = svc.Results(context.Background(), "", "i3")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 90, rows[0].Score)

	r, err := svc.Result(context.Background(), rows[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "s2", r.StudentID)
}
