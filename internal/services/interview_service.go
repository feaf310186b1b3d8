package services

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/octavia-ai/octavia/internal/models"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/utils"
)

type InterviewService interface {
	List(ctx context.Context, studentID string) ([]models.Interview, error)
	Get(ctx context.Context, id string) (*models.Interview, error)
	Schedule(ctx context.Context, in *models.Interview) (*models.Interview, error)
	Update(ctx context.Context, id string, fields map[string]any) error
	Delete(ctx context.Context, id string) error
	Upcoming(ctx context.Context, studentID string) ([]models.Interview, error)
	Past(ctx context.Context, studentID string) ([]models.Interview, error)

	// Begin moves an interview into progress and makes sure it carries a
	// conversation reference for its transcript.
	Begin(ctx context.Context, id string) (*models.Interview, error)
	Complete(ctx context.Context, id string, elapsed time.Duration) error

	Results(ctx context.Context, studentID, interviewID string) ([]models.InterviewResult, error)
	Result(ctx context.Context, resultID string) (*models.InterviewResult, error)
}

type interviewService struct {
	interviews mongorepo.RecordStore[models.Interview]
	results    mongorepo.RecordStore[models.InterviewResult]
	now        func() time.Time
}

func NewInterviewService(interviews mongorepo.RecordStore[models.Interview], results mongorepo.RecordStore[models.InterviewResult]) InterviewService {
	return &interviewService{
		interviews: interviews,
		results:    results,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *interviewService) List(ctx context.Context, studentID string) ([]models.Interview, error) {
	const op = "InterviewService.List"

	filter := mongorepo.Filter{}
	if studentID != "" {
		filter["student_id"] = studentID
	}
	rows, err := s.interviews.List(ctx, filter, mongorepo.ListOptions{SortBy: "date", Desc: true})
	if err != nil {
		return nil, readErr(op, "interviews", err)
	}
	return rows, nil
}

func (s *interviewService) Get(ctx context.Context, id string) (*models.Interview, error) {
	const op = "InterviewService.Get"

	if err := requireID(op, "interview_id", id); err != nil {
		return nil, err
	}
	iv, err := s.interviews.Get(ctx, id)
	if err != nil {
		return nil, readErr(op, "interview", err)
	}
	return iv, nil
}

func (s *interviewService) Schedule(ctx context.Context, in *models.Interview) (*models.Interview, error) {
	const op = "InterviewService.Schedule"

	if in == nil || in.StudentID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "student_id is required", nil)
	}
	if in.Date.IsZero() {
		return nil, utils.E(utils.CodeInvalidArgument, op, "date is required", nil)
	}
	in.ID = ""
	in.Status = models.InterviewScheduled
	in.CompletedAt = nil
	if in.ConversationID == "" {
		in.ConversationID = uuid.NewString()
	}

	if _, err := s.interviews.Create(ctx, in); err != nil {
		return nil, writeErr(op, "interview", err)
	}
	return in, nil
}

func (s *interviewService) Update(ctx context.Context, id string, fields map[string]any) error {
	const op = "InterviewService.Update"

	if err := requireID(op, "interview_id", id); err != nil {
		return err
	}
	set, err := cleanFields(op, interviewPatch, fields)
	if err != nil {
		return err
	}
	if err := s.interviews.Update(ctx, id, set); err != nil {
		return writeErr(op, "interview", err)
	}
	return nil
}

func (s *interviewService) Delete(ctx context.Context, id string) error {
	const op = "InterviewService.Delete"

	if err := requireID(op, "interview_id", id); err != nil {
		return err
	}
	if err := s.interviews.Delete(ctx, id); err != nil {
		return writeErr(op, "interview", err)
	}
	return nil
}

func (s *interviewService) Upcoming(ctx context.Context, studentID string) ([]models.Interview, error) {
	return s.split(ctx, "InterviewService.Upcoming", studentID, true)
}

func (s *interviewService) Past(ctx context.Context, studentID string) ([]models.Interview, error) {
	return s.split(ctx, "InterviewService.Past", studentID, false)
}

// split returns the student's interviews dated from now on (upcoming) or
// before now (past). Upcoming is soonest first, past is latest first.
func (s *interviewService) split(ctx context.Context, op, studentID string, upcoming bool) ([]models.Interview, error) {
	if err := requireID(op, "student_id", studentID); err != nil {
		return nil, err
	}
	rows, err := s.interviews.List(ctx, mongorepo.Filter{"student_id": studentID}, mongorepo.ListOptions{})
	if err != nil {
		return nil, readErr(op, "interviews", err)
	}

	now := s.now()
	out := make([]models.Interview, 0, len(rows))
	for _, iv := range rows {
		ahead := !iv.Date.Before(now)
		if ahead == upcoming {
			out = append(out, iv)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if upcoming {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *interviewService) Begin(ctx context.Context, id string) (*models.Interview, error) {
	const op = "InterviewService.Begin"

	iv, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if iv.Status == models.InterviewCompleted {
		return nil, utils.E(utils.CodeInvalidState, op, "interview is already completed", nil)
	}

	set := mongorepo.Fields{"status": models.InterviewInProgress}
	if iv.ConversationID == "" {
		iv.ConversationID = uuid.NewString()
		set["conversation_id"] = iv.ConversationID
	}
	if err := s.interviews.Update(ctx, id, set); err != nil {
		return nil, writeErr(op, "interview", err)
	}
	iv.Status = models.InterviewInProgress
	return iv, nil
}

func (s *interviewService) Complete(ctx context.Context, id string, elapsed time.Duration) error {
	const op = "InterviewService.Complete"

	if err := requireID(op, "interview_id", id); err != nil {
		return err
	}
	now := s.now()
	err := s.interviews.Update(ctx, id, mongorepo.Fields{
		"status":           models.InterviewCompleted,
		"completed_at":     now,
		"duration_seconds": int64(elapsed / time.Second),
	})
	if err != nil {
		return writeErr(op, "interview", err)
	}
	return nil
}

func (s *interviewService) Results(ctx context.Context, studentID, interviewID string) ([]models.InterviewResult, error) {
	const op = "InterviewService.Results"

	filter := mongorepo.Filter{}
	if studentID != "" {
		filter["student_id"] = studentID
	}
	if interviewID != "" {
		filter["interview_id"] = interviewID
	}
	rows, err := s.results.List(ctx, filter, mongorepo.ListOptions{SortBy: "created_at", Desc: true})
	if err != nil {
		return nil, readErr(op, "interview results", err)
	}
	return rows, nil
}

func (s *interviewService) Result(ctx context.Context, resultID string) (*models.InterviewResult, error) {
	const op = "InterviewService.Result"

	if err := requireID(op, "interview_result_id", resultID); err != nil {
		return nil, err
	}
	r, err := s.results.Get(ctx, resultID)
	if err != nil {
		return nil, readErr(op, "interview result", err)
	}
	return r, nil
}

// status, conversation_id and the completion fields move only through Begin and Complete.
var interviewPatch = patchSpec{
	"date":      kindTime,
	"time":      kindString,
	"type":      kindString,
	"title":     kindString,
	"questions": kindStrings,
	"job_title": kindString,
	"resume_id": kindString,
}
