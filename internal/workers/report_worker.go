package workers

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/octavia-ai/octavia/internal/metrics"
	"github.com/octavia-ai/octavia/internal/services"
	"github.com/octavia-ai/octavia/internal/utils"
)

const (
	DefaultReportStream = "reports:stream"
	DefaultReportGroup  = "report-workers"
	defaultMaxAttempts  = 3
	streamMaxLen        = 10000
	defaultClaimIdle    = 2 * time.Minute
	defaultClaimEvery   = 30 * time.Second
)

// ReportQueue appends report requests to a Redis stream.
type ReportQueue struct {
	rdb    *redis.Client
	stream string
}

func NewReportQueue(rdb *redis.Client, stream string) *ReportQueue {
	if stream == "" {
		stream = DefaultReportStream
	}
	return &ReportQueue{rdb: rdb, stream: stream}
}

var _ services.ReportRequester = (*ReportQueue)(nil)

func (q *ReportQueue) Enqueue(ctx context.Context, interviewID string) error {
	return q.enqueue(ctx, interviewID, 1)
}

func (q *ReportQueue) enqueue(ctx context.Context, interviewID string, attempt int) error {
	if interviewID == "" {
		return errors.New("report queue: empty interview id")
	}
	return q.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: q.stream,
		MaxLen: streamMaxLen,
		Approx: true,
		Values: map[string]any{
			"interview_id": interviewID,
			"attempt":      strconv.Itoa(attempt),
			"requested_at": time.Now().UTC().Format(time.RFC3339),
		},
	}).Err()
}

// ReportWorkerPool consumes report requests and runs report generation.
// Transient failures are re-queued up to MaxAttempts. Entries left pending by
// a consumer that died before acking are claimed again once idle for ClaimIdle.
type ReportWorkerPool struct {
	Redis      *redis.Client
	Reports    services.ReportService
	NumWorkers int

	Logger *logrus.Logger

	Stream         string
	Group          string
	ConsumerPrefix string
	MaxAttempts    int
	ClaimIdle      time.Duration
	ClaimEvery     time.Duration
}

func (p *ReportWorkerPool) Start(ctx context.Context) error {
	if p.Redis == nil || p.Reports == nil {
		return errors.New("ReportWorkerPool missing dependency: Redis/Reports must be set")
	}
	p.defaults()

	// BUSYGROUP when the group exists
	_ = p.Redis.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err()

	for i := 0; i < p.NumWorkers; i++ {
		consumer := p.ConsumerPrefix + "-" + strconv.Itoa(i+1)
		go p.runConsumer(ctx, consumer)
	}
	go p.runReclaimer(ctx, p.ConsumerPrefix+"-reclaim")
	return nil
}

func (p *ReportWorkerPool) defaults() {
	if p.Stream == "" {
		p.Stream = DefaultReportStream
	}
	if p.Group == "" {
		p.Group = DefaultReportGroup
	}
	if p.ConsumerPrefix == "" {
		p.ConsumerPrefix = "c"
	}
	if p.NumWorkers <= 0 {
		p.NumWorkers = 2
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = defaultMaxAttempts
	}
	if p.ClaimIdle <= 0 {
		p.ClaimIdle = defaultClaimIdle
	}
	if p.ClaimEvery <= 0 {
		p.ClaimEvery = defaultClaimEvery
	}
	if p.Logger == nil {
		p.Logger = logrus.New()
	}
}

func (p *ReportWorkerPool) runConsumer(ctx context.Context, consumer string) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		res, err := p.Redis.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    p.Group,
			Consumer: consumer,
			Streams:  []string{p.Stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()

		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			p.Logger.WithError(err).Warn("report stream read failed")
			time.Sleep(500 * time.Millisecond)
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				p.handleMsg(ctx, msg)
				_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			}
		}
	}
}

func (p *ReportWorkerPool) runReclaimer(ctx context.Context, consumer string) {
	t := time.NewTicker(p.ClaimEvery)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if n, err := p.reclaim(ctx, consumer); err != nil {
				if ctx.Err() == nil {
					p.Logger.WithError(err).Warn("report stream reclaim failed")
				}
			} else if n > 0 {
				p.Logger.WithField("reclaimed", n).Info("reclaimed stale report requests")
			}
		}
	}
}

// reclaim takes over every pending entry idle for at least ClaimIdle,
// processes it and acks it. It returns how many entries it handled.
func (p *ReportWorkerPool) reclaim(ctx context.Context, consumer string) (int, error) {
	handled := 0
	start := "0-0"
	for {
		msgs, next, err := p.Redis.XAutoClaim(ctx, &redis.XAutoClaimArgs{
			Stream:   p.Stream,
			Group:    p.Group,
			Consumer: consumer,
			MinIdle:  p.ClaimIdle,
			Start:    start,
			Count:    10,
		}).Result()
		if err != nil {
			return handled, err
		}
		for _, msg := range msgs {
			p.handleMsg(ctx, msg)
			_ = p.Redis.XAck(ctx, p.Stream, p.Group, msg.ID).Err()
			handled++
		}
		if next == "0-0" || next == "" {
			return handled, nil
		}
		start = next
	}
}

func (p *ReportWorkerPool) handleMsg(ctx context.Context, msg redis.XMessage) {
	getStr := func(k string) string {
		s, _ := msg.Values[k].(string)
		return s
	}

	interviewID := getStr("interview_id")
	if interviewID == "" {
		return
	}
	attempt, _ := strconv.Atoi(getStr("attempt"))
	if attempt <= 0 {
		attempt = 1
	}

	log := p.Logger.WithFields(logrus.Fields{
		"redis_id":     msg.ID,
		"interview_id": interviewID,
		"attempt":      attempt,
	})

	rep, err := p.Reports.Generate(ctx, interviewID)
	if err == nil {
		metrics.ReportGenerated()
		p.publish(ctx, interviewID, map[string]any{"status": "done", "score": rep.Score})
		return
	}

	metrics.ReportFailed()
	if retryable(err) && attempt < p.MaxAttempts {
		log.WithError(err).Warn("report generation failed, retrying")
		q := &ReportQueue{rdb: p.Redis, stream: p.Stream}
		if qerr := q.enqueue(ctx, interviewID, attempt+1); qerr == nil {
			return
		}
	}
	log.WithError(err).Error("report generation failed")
	p.publish(ctx, interviewID, map[string]any{"status": "failed", "code": utils.CodeOf(err)})
}

func (p *ReportWorkerPool) publish(ctx context.Context, interviewID string, payload map[string]any) {
	payload["type"] = "report_status"
	payload["interview_id"] = interviewID
	b, _ := json.Marshal(payload)
	_ = p.Redis.Publish(ctx, ReportStatusChannel(interviewID), string(b)).Err()
}

// ReportStatusChannel is the pub/sub channel that announces the outcome of
// report generation for one interview.
func ReportStatusChannel(interviewID string) string {
	return "report:" + interviewID + ":status"
}

func retryable(err error) bool {
	switch utils.CodeOf(err) {
	case utils.CodeInvalidArgument, utils.CodeInvalidState, utils.CodeNotFound:
		return false
	}
	return true
}
