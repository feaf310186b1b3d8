package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/octavia-ai/octavia/internal/cache"
	"github.com/octavia-ai/octavia/internal/models"
	mongorepo "github.com/octavia-ai/octavia/internal/repositories/mongo"
	"github.com/octavia-ai/octavia/internal/report"
	"github.com/octavia-ai/octavia/internal/utils"
)

// TurnSource reads the transcript of a conversation in order.
type TurnSource interface {
	ListByConversation(ctx context.Context, conversationID string, limit int) ([]models.ConversationTurn, error)
}

type ReportService interface {
	Generate(ctx context.Context, interviewID string) (*report.Report, error)
}

type reportService struct {
	interviews mongorepo.RecordStore[models.Interview]
	results    mongorepo.RecordStore[models.InterviewResult]
	students   mongorepo.RecordStore[models.Student]
	turns      TurnSource
	gen        *report.Generator
	cache      cache.Cache
	ttl        time.Duration
	log        *logrus.Logger
}

type ReportDeps struct {
	Interviews mongorepo.RecordStore[models.Interview]
	Results    mongorepo.RecordStore[models.InterviewResult]
	Students   mongorepo.RecordStore[models.Student]
	Turns      TurnSource
	Generator  *report.Generator
	Cache      cache.Cache
	CacheTTL   time.Duration
	Logger     *logrus.Logger
}

func NewReportService(d ReportDeps) ReportService {
	if d.Generator == nil {
		d.Generator = report.NewGenerator(nil)
	}
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	return &reportService{
		interviews: d.Interviews,
		results:    d.Results,
		students:   d.Students,
		turns:      d.Turns,
		gen:        d.Generator,
		cache:      d.Cache,
		ttl:        d.CacheTTL,
		log:        d.Logger,
	}
}

const maxReportTurns = 1000

func reportCacheKey(interviewID string) string { return "report:" + interviewID }

// Generate scores a completed interview's transcript and stores the result. A
// result already stored for the interview is returned as is.
func (s *reportService) Generate(ctx context.Context, interviewID string) (*report.Report, error) {
	const op = "ReportService.Generate"

	if err := requireID(op, "interviewId", interviewID); err != nil {
		return nil, err
	}

	if s.cache != nil {
		var cached report.Report
		if hit, err := s.cache.GetJSON(ctx, reportCacheKey(interviewID), &cached); err == nil && hit {
			return &cached, nil
		}
	}

	iv, err := s.interviews.Get(ctx, interviewID)
	if err != nil {
		return nil, readErr(op, "interview", err)
	}
	if iv.Status != models.InterviewCompleted {
		return nil, utils.E(utils.CodeInvalidState, op, "interview is not completed yet", nil)
	}
	if iv.ConversationID == "" {
		return nil, utils.E(utils.CodeInvalidState, op, "interview has no conversation reference", nil)
	}

	if existing, err := s.existing(ctx, interviewID); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read interview results", err)
	} else if existing != nil {
		return s.remember(ctx, interviewID, fromResult(existing)), nil
	}

	rows, err := s.turns.ListByConversation(ctx, iv.ConversationID, maxReportTurns)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to read transcript", err)
	}
	turns := make([]report.Turn, 0, len(rows))
	for _, r := range rows {
		turns = append(turns, report.Turn{Role: string(r.Role), Content: r.Content})
	}

	rep := s.gen.Generate(turns)

	result := &models.InterviewResult{
		InterviewID:        iv.ID,
		StudentID:          iv.StudentID,
		Score:              rep.Score,
		Feedback:           rep.Feedback,
		FeedbackCategories: rep.Categories,
	}
	if _, err := s.results.Create(ctx, result); err != nil {
		if mongorepo.IsDuplicateKey(err) {
			// another request stored it first
			if existing, lerr := s.existing(ctx, interviewID); lerr == nil && existing != nil {
				return s.remember(ctx, interviewID, fromResult(existing)), nil
			}
		}
		return nil, utils.E(utils.CodePersistence, op, "failed to store interview result", err)
	}

	log := s.log.WithFields(logrus.Fields{"interview_id": iv.ID, "score": rep.Score, "turns": len(turns)})
	log.Info("interview report generated")

	if iv.StudentID != "" {
		if err := s.students.Update(ctx, iv.StudentID, mongorepo.Fields{"first_interview_completed": true}); err != nil && !errors.Is(err, utils.ErrNotFound) {
			log.WithError(err).Warn("failed to flag first interview")
		}
	}

	return s.remember(ctx, interviewID, rep), nil
}

func (s *reportService) existing(ctx context.Context, interviewID string) (*models.InterviewResult, error) {
	rows, err := s.results.List(ctx, mongorepo.Filter{"interview_id": interviewID}, mongorepo.ListOptions{Limit: 1})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

func (s *reportService) remember(ctx context.Context, interviewID string, rep report.Report) *report.Report {
	if s.cache != nil && s.ttl > 0 {
		if err := s.cache.SetJSON(ctx, reportCacheKey(interviewID), rep, s.ttl); err != nil {
			s.log.WithError(err).Debug("report cache set failed")
		}
	}
	return &rep
}

func fromResult(r *models.InterviewResult) report.Report {
	return report.Report{Score: r.Score, Feedback: r.Feedback, Categories: r.FeedbackCategories}
}
