package workers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octavia-ai/octavia/internal/logger"
	"github.com/octavia-ai/octavia/internal/report"
	"github.com/octavia-ai/octavia/internal/utils"
)

type fakeReports struct {
	mu    sync.Mutex
	calls []string
	errs  []error
}

func (f *fakeReports) Generate(_ context.Context, id string) (*report.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, id)
	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &report.Report{Score: 80}, nil
}

func (f *fakeReports) called() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return rdb
}

func streamLen(t *testing.T, rdb *redis.Client) int64 {
	t.Helper()
	n, err := rdb.XLen(context.Background(), DefaultReportStream).Result()
	require.NoError(t, err)
	return n
}

func TestReportQueueEnqueue(t *testing.T) {
	rdb := newTestRedis(t)
	q := NewReportQueue(rdb, "")

	require.NoError(t, q.Enqueue(context.Background(), "iv-1"))
	assert.Error(t, q.Enqueue(context.Background(), ""))

	msgs, err := rdb.XRange(context.Background(), DefaultReportStream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "iv-1", msgs[0].Values["interview_id"])
	assert.Equal(t, "1", msgs[0].Values["attempt"])
}

func TestHandleMsgPublishesOutcome(t *testing.T) {
	rdb := newTestRedis(t)
	reports := &fakeReports{}
	p := &ReportWorkerPool{Redis: rdb, Reports: reports, Logger: logger.Discard()}
	p.defaults()

	sub := rdb.Subscribe(context.Background(), ReportStatusChannel("iv-1"))
	defer sub.Close()
	_, err := sub.Receive(context.Background())
	require.NoError(t, err)

	p.handleMsg(context.Background(), redis.XMessage{ID: "1-0", Values: map[string]any{"interview_id": "iv-1"}})
	assert.Equal(t, []string{"iv-1"}, reports.called())

	msg, err := sub.ReceiveMessage(context.Background())
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(msg.Payload), &payload))
	assert.Equal(t, "done", payload["status"])
	assert.Equal(t, 80.0, payload["score"])
}

func TestHandleMsgRetriesTransientFailures(t *testing.T) {
	rdb := newTestRedis(t)
	transient := utils.E(utils.CodePersistence, "op", "write failed", errors.New("timeout"))
	reports := &fakeReports{errs: []error{transient, transient, transient}}
	p := &ReportWorkerPool{Redis: rdb, Reports: reports, Logger: logger.Discard(), MaxAttempts: 2}
	p.defaults()

	p.handleMsg(context.Background(), redis.XMessage{Values: map[string]any{"interview_id": "iv-1", "attempt": "1"}})
	assert.Equal(t, int64(1), streamLen(t, rdb))

	p.handleMsg(context.Background(), redis.XMessage{Values: map[string]any{"interview_id": "iv-1", "attempt": "2"}})
	assert.Equal(t, int64(1), streamLen(t, rdb))
}

func TestHandleMsgDropsPermanentFailures(t *testing.T) {
	rdb := newTestRedis(t)
	reports := &fakeReports{errs: []error{utils.E(utils.CodeNotFound, "op", "interview not found", utils.ErrNotFound)}}
	p := &ReportWorkerPool{Redis: rdb, Reports: reports, Logger: logger.Discard()}
	p.defaults()

	p.handleMsg(context.Background(), redis.XMessage{Values: map[string]any{"interview_id": "gone"}})
	assert.Equal(t, int64(0), streamLen(t, rdb))

	p.handleMsg(context.Background(), redis.XMessage{Values: map[string]any{}})
	assert.Len(t, reports.called(), 1)
}

func TestWorkerPoolConsumesQueue(t *testing.T) {
	rdb := newTestRedis(t)
	reports := &fakeReports{}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := &ReportWorkerPool{Redis: rdb, Reports: reports, NumWorkers: 1, Logger: logger.Discard()}
	require.NoError(t, p.Start(ctx))
	require.NoError(t, NewReportQueue(rdb, "").Enqueue(ctx, "iv-7"))

	require.Eventually(t, func() bool {
		return len(reports.called()) == 1
	}, 10*time.Second, 20*time.Millisecond)
	assert.Equal(t, "iv-7", reports.called()[0])

	assert.Error(t, (&ReportWorkerPool{}).Start(ctx))
}

func TestReclaimProcessesAbandonedEntries(t *testing.T) {
	rdb := newTestRedis(t)
	ctx := context.Background()
	reports := &fakeReports{}
	p := &ReportWorkerPool{Redis: rdb, Reports: reports, Logger: logger.Discard(), ClaimIdle: 20 * time.Millisecond}
	p.defaults()
	require.NoError(t, rdb.XGroupCreateMkStream(ctx, p.Stream, p.Group, "0").Err())

	q := NewReportQueue(rdb, "")
	require.NoError(t, q.Enqueue(ctx, "iv-lost"))
	require.NoError(t, q.Enqueue(ctx, "iv-fresh"))

	// a consumer reads the first entry and dies without acking
	_, err := rdb.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group: p.Group, Consumer: "c-dead", Streams: []string{p.Stream, ">"}, Count: 1,
	}).Result()
	require.NoError(t, err)

	// not idle long enough yet
	n, err := p.reclaim(ctx, "c-reclaim")
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, reports.called())

	time.Sleep(50 * time.Millisecond)
	n, err = p.reclaim(ctx, "c-reclaim")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.Equal(t, []string{"iv-lost"}, reports.called())

	pending, err := rdb.XPending(ctx, p.Stream, p.Group).Result()
	require.NoError(t, err)
	assert.Zero(t, pending.Count)
}
