package services

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"github.com/octavia-ai/octavia/internal/models"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/session"
	"github.com/octavia-ai/octavia/internal/utils"
)

// ReportRequester queues report generation for an interview.
type ReportRequester interface {
	Enqueue(ctx context.Context, interviewID string) error
}

// InterviewFinisher is the end-of-interview flow of a session: the interview
// is marked completed, practice minutes are credited to the student, and the
// report is queued.
type InterviewFinisher struct {
	interviews InterviewService
	students   mongorepo.RecordStore[models.Student]
	reports    ReportRequester
	log        *logrus.Logger
}

func NewInterviewFinisher(interviews InterviewService, students mongorepo.RecordStore[models.Student], reports ReportRequester, log *logrus.Logger) *InterviewFinisher {
	if log == nil {
		log = logrus.New()
	}
	return &InterviewFinisher{interviews: interviews, students: students, reports: reports, log: log}
}

var _ session.Finisher = (*InterviewFinisher)(nil)

func (f *InterviewFinisher) Finish(ctx context.Context, s session.Summary) error {
	const op = "InterviewFinisher.Finish"

	if s.InterviewID == "" {
		return utils.E(utils.CodeInvalidArgument, op, "interview_id is required", nil)
	}

	if err := f.interviews.Complete(ctx, s.InterviewID, secondsToDuration(s.ElapsedSeconds)); err != nil {
		return err
	}
	f.creditMinutes(ctx, s)

	if f.reports == nil {
		return utils.E(utils.CodeUnavailable, op, "report queue is not configured", nil)
	}
	if err := f.reports.Enqueue(ctx, s.InterviewID); err != nil {
		return utils.E(utils.CodeUnavailable, op, "failed to queue report", err)
	}

	f.log.WithFields(logrus.Fields{
		"interview_id": s.InterviewID,
		"elapsed":      s.ElapsedSeconds,
		"reason":       s.Reason,
	}).Info("interview completed, report queued")
	return nil
}

func (f *InterviewFinisher) creditMinutes(ctx context.Context, s session.Summary) {
	if f.students == nil || s.StudentID == "" || s.ElapsedSeconds <= 0 {
		return
	}
	st, err := f.students.Get(ctx, s.StudentID)
	if err != nil {
		if !errors.Is(err, utils.ErrNotFound) {
			f.log.WithError(err).Warn("failed to load student for minutes")
		}
		return
	}
	minutes := (s.ElapsedSeconds + 59) / 60
	err = f.students.Update(ctx, s.StudentID, mongorepo.Fields{
		"session_minutes": st.SessionMinutes + minutes,
		"last_activity":   timeNow(),
	})
	if err != nil {
		f.log.WithError(err).Warn("failed to credit session minutes")
	}
}
