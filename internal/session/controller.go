// Package session drives one voice interview attempt through
// idle -> connecting -> recording <-> paused -> ended, with a visible
// elapsed-time counter, a hard time limit and a one-time late warning.
package session

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/octavia-ai/octavia/internal/utils"
	"github.com/octavia-ai/octavia/internal/voice"
)

type Controller struct {
	conv     voice.Conversation
	gate     PermissionGate
	finisher Finisher
	listener Listener
	opts     Options
	log      *logrus.Entry

	// opMu serialises Start/Pause/Resume/Stop/Close; mu guards the fields below.
	opMu sync.Mutex

	mu       sync.Mutex
	state    State
	version  uint64
	req      StartRequest
	gen      uint64
	warned   bool
	closed   bool
	ticker   Ticker
	tickStop chan struct{}
	dismiss  Timer

	// emitMu orders listener delivery; emitted is the last delivered version.
	emitMu  sync.Mutex
	emitted uint64
}

func NewController(conv voice.Conversation, gate PermissionGate, finisher Finisher, listener Listener, opts Options, log *logrus.Logger) *Controller {
	if listener == nil {
		listener = nopListener{}
	}
	if log == nil {
		log = logrus.New()
	}
	opts = opts.withDefaults()
	c := &Controller{
		conv:     conv,
		gate:     gate,
		finisher: finisher,
		listener: listener,
		opts:     opts,
		log:      log.WithField("component", "session"),
	}
	c.state = State{Status: StatusIdle, RemainingSecs: c.maxSeconds()}
	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Start requests the microphone and opens the voice conversation. Permission
// and collaborator failures return the controller to idle so Start can be
// retried.
func (c *Controller) Start(ctx context.Context, req StartRequest) error {
	const op = "Controller.Start"

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.closed || c.state.Status != StatusIdle {
		st := c.state.Status
		c.mu.Unlock()
		return utils.E(utils.CodeInvalidState, op, "interview cannot start from "+string(st), nil)
	}
	c.gen++
	g := c.gen
	c.req = req
	c.warned = false
	c.state = State{Status: StatusConnecting, RemainingSecs: c.maxSeconds()}
	snap, v := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap, v)

	if c.gate != nil {
		if err := c.gate.RequestMicrophone(ctx); err != nil {
			c.resetIdle(g)
			c.notify(Notification{Kind: NotifyPermissionDenied, Message: "Microphone access is required to start the interview.", Err: err})
			return utils.E(utils.CodePermissionDenied, op, "microphone permission denied", err)
		}
	}

	cfg := voice.Config{
		AssistantID:  c.opts.AssistantID,
		Metadata:     req.metadata(),
		OnTranscript: func(text string) { c.onTranscript(g, text) },
		OnError:      func(err error) { c.onError(g, err) },
	}
	if err := c.conv.Start(ctx, cfg); err != nil {
		c.resetIdle(g)
		c.notify(Notification{Kind: NotifyCollaboratorInit, Message: "Could not connect to the interviewer. Please try again.", Err: err})
		return utils.E(utils.CodeCollaboratorInit, op, "failed to start voice conversation", err)
	}

	c.mu.Lock()
	if c.gen != g || c.state.Status != StatusConnecting {
		// Close landed while connecting
		c.mu.Unlock()
		_ = c.conv.Stop(context.Background())
		return utils.E(utils.CodeInvalidState, op, "interview was interrupted while connecting", nil)
	}
	c.state.Status = StatusRecording
	c.state.Connected = true
	c.state.MicEnabled = true
	c.startTickerLocked(g)
	snap, v = c.snapshotLocked()
	c.mu.Unlock()

	c.log.WithField("interview_id", req.InterviewID).Info("interview recording")
	c.emit(snap, v)
	return nil
}

func (c *Controller) Pause(ctx context.Context) error {
	return c.setPaused(ctx, true)
}

func (c *Controller) Resume(ctx context.Context) error {
	return c.setPaused(ctx, false)
}

func (c *Controller) setPaused(ctx context.Context, pause bool) error {
	const op = "Controller.SetPaused"

	from, to := StatusRecording, StatusPaused
	if !pause {
		from, to = StatusPaused, StatusRecording
	}

	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.state.Status != from {
		st := c.state.Status
		c.mu.Unlock()
		return utils.E(utils.CodeInvalidState, op, "cannot go to "+string(to)+" from "+string(st), nil)
	}
	g := c.gen
	c.mu.Unlock()

	if err := c.conv.SetMuted(ctx, pause); err != nil {
		c.notify(Notification{Kind: NotifyCollaboratorError, Message: "Could not change the microphone state.", Err: err})
		return utils.E(utils.CodeCollaboratorRuntime, op, "failed to change mute state", err)
	}

	c.mu.Lock()
	if c.gen != g || c.state.Status != from {
		c.mu.Unlock()
		return nil
	}
	c.state.Status = to
	c.state.MicEnabled = !pause
	snap, v := c.snapshotLocked()
	c.mu.Unlock()

	c.emit(snap, v)
	return nil
}

// Stop ends a recording or paused interview. Calling it again, or before the
// interview started, does nothing.
func (c *Controller) Stop(ctx context.Context) error {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	g := c.gen
	c.mu.Unlock()

	c.finish(ctx, g, EndStopped, nil)
	return nil
}

// Close tears the attempt down when the client goes away. It cancels the
// counter and the conversation but does not request a report.
func (c *Controller) Close(ctx context.Context) {
	c.opMu.Lock()
	defer c.opMu.Unlock()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	prev := c.state.Status
	live := prev == StatusConnecting || prev == StatusRecording || prev == StatusPaused
	if live {
		c.gen++
		c.stopTimersLocked()
		c.state.Status = StatusEnded
		c.state.Connected = false
		c.state.MicEnabled = false
		c.state.WarningVisible = false
	}
	c.mu.Unlock()

	if live {
		if err := c.conv.Stop(ctx); err != nil {
			c.log.WithError(err).Warn("failed to stop conversation on close")
		}
	}
}

// Tick advances the counter by one second. The internal ticker calls it;
// tests may call it directly.
func (c *Controller) Tick() {
	c.mu.Lock()
	g := c.gen
	c.mu.Unlock()
	c.tick(g)
}

func (c *Controller) tick(g uint64) {
	c.mu.Lock()
	if c.gen != g || c.state.Status != StatusRecording {
		c.mu.Unlock()
		return
	}

	c.state.ElapsedSeconds++
	limit := c.maxSeconds()
	remaining := limit - c.state.ElapsedSeconds
	if remaining < 0 {
		remaining = 0
	}
	c.state.RemainingSecs = remaining

	warn := false
	if !c.warned && remaining > 0 && remaining <= c.warningSeconds() {
		c.warned = true
		warn = true
		c.state.WarningVisible = true
		c.dismiss = c.opts.Clock.AfterFunc(c.opts.WarningDismiss, func() { c.clearWarning(g) })
	}
	reachedMax := c.state.ElapsedSeconds >= limit
	snap, v := c.snapshotLocked()
	c.mu.Unlock()

	if c.emit(snap, v) && warn {
		c.notify(Notification{Kind: NotifyTimeWarning, Message: warningMessage(snap.RemainingSecs)})
	}
	if reachedMax {
		c.finish(context.Background(), g, EndTimeLimit, nil)
	}
}

func (c *Controller) clearWarning(g uint64) {
	c.mu.Lock()
	if c.gen != g || !c.state.WarningVisible {
		c.mu.Unlock()
		return
	}
	c.state.WarningVisible = false
	snap, v := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap, v)
}

func (c *Controller) onTranscript(g uint64, text string) {
	c.mu.Lock()
	if c.gen != g {
		c.mu.Unlock()
		return
	}
	switch c.state.Status {
	case StatusConnecting, StatusRecording, StatusPaused:
	default:
		c.mu.Unlock()
		return
	}

	if c.opts.TranscriptMode == TranscriptAccumulate && c.state.Transcript != "" {
		if text != "" {
			c.state.Transcript = strings.Join([]string{c.state.Transcript, text}, "\n")
		}
	} else {
		c.state.Transcript = text
	}
	snap, v := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap, v)
}

// onError reports a collaborator runtime error. Once recording has begun the
// interview is ended and the report is still requested.
func (c *Controller) onError(g uint64, err error) {
	c.mu.Lock()
	if c.gen != g {
		c.mu.Unlock()
		return
	}
	st := c.state.Status
	c.mu.Unlock()

	c.log.WithError(err).WithField("status", st).Warn("voice conversation error")
	c.notify(Notification{Kind: NotifyCollaboratorError, Message: "The interview connection had a problem.", Err: err})

	if st == StatusRecording || st == StatusPaused {
		c.finish(context.Background(), g, EndError, err)
	}
}

// finish moves recording/paused to ended exactly once per attempt.
func (c *Controller) finish(ctx context.Context, g uint64, reason EndReason, cause error) bool {
	c.mu.Lock()
	if c.gen != g || (c.state.Status != StatusRecording && c.state.Status != StatusPaused) {
		c.mu.Unlock()
		return false
	}
	c.gen++
	c.stopTimersLocked()
	c.state.Status = StatusEnded
	c.state.Connected = false
	c.state.MicEnabled = false
	c.state.WarningVisible = false
	snap, v := c.snapshotLocked()
	summary := Summary{
		InterviewID:    c.req.InterviewID,
		ConversationID: c.req.ConversationID,
		StudentID:      c.req.StudentID,
		ElapsedSeconds: snap.ElapsedSeconds,
		Transcript:     snap.Transcript,
		Reason:         reason,
	}
	c.mu.Unlock()

	c.emit(snap, v)

	if err := c.conv.Stop(ctx); err != nil {
		c.log.WithError(err).Warn("failed to stop conversation")
	}

	log := c.log.WithFields(logrus.Fields{
		"interview_id": summary.InterviewID,
		"elapsed":      summary.ElapsedSeconds,
		"reason":       reason,
	})
	if cause != nil {
		log = log.WithError(cause)
	}
	log.Info("interview ended")

	if c.finisher != nil {
		if err := c.finisher.Finish(ctx, summary); err != nil {
			log.WithError(err).Error("failed to finish interview")
			c.notify(Notification{Kind: NotifyPersistence, Message: "Your interview ended but the report could not be requested.", Err: err})
		}
	}
	c.notify(Notification{Kind: NotifyEnded, Message: "Interview ended."})
	return true
}

func (c *Controller) resetIdle(g uint64) {
	c.mu.Lock()
	if c.gen != g {
		c.mu.Unlock()
		return
	}
	c.gen++
	c.state = State{Status: StatusIdle, RemainingSecs: c.maxSeconds()}
	snap, v := c.snapshotLocked()
	c.mu.Unlock()
	c.emit(snap, v)
}

func (c *Controller) startTickerLocked(g uint64) {
	t := c.opts.Clock.NewTicker(time.Second)
	stop := make(chan struct{})
	c.ticker = t
	c.tickStop = stop

	go func() {
		for {
			select {
			case <-stop:
				return
			case <-t.C():
				c.tick(g)
			}
		}
	}()
}

func (c *Controller) stopTimersLocked() {
	if c.ticker != nil {
		c.ticker.Stop()
		c.ticker = nil
	}
	if c.tickStop != nil {
		close(c.tickStop)
		c.tickStop = nil
	}
	if c.dismiss != nil {
		c.dismiss.Stop()
		c.dismiss = nil
	}
}

// snapshotLocked copies the state and stamps it with the next version.
func (c *Controller) snapshotLocked() (State, uint64) {
	c.version++
	return c.state, c.version
}

// emit delivers snapshots in version order and drops any that were
// overtaken, so a listener never sees recording after ended.
func (c *Controller) emit(s State, v uint64) bool {
	c.emitMu.Lock()
	defer c.emitMu.Unlock()
	if v <= c.emitted {
		return false
	}
	c.emitted = v
	c.listener.OnStateChange(s)
	return true
}

func (c *Controller) notify(n Notification) {
	c.listener.OnNotification(n)
}

func (c *Controller) maxSeconds() int {
	return int(c.opts.MaxDuration / time.Second)
}

func (c *Controller) warningSeconds() int {
	return int(c.opts.WarningThreshold / time.Second)
}

func (r StartRequest) metadata() map[string]string {
	md := map[string]string{}
	add := func(k, v string) {
		if v != "" {
			md[k] = v
		}
	}
	add(voice.MetaInterviewID, r.InterviewID)
	add(voice.MetaConversationID, r.ConversationID)
	add(voice.MetaStudentID, r.StudentID)
	add(voice.MetaResumeID, r.ResumeID)
	add(voice.MetaJobTitle, r.JobTitle)
	return md
}

func warningMessage(remaining int) string {
	switch {
	case remaining == 60:
		return "Only 1 minute remaining in your interview!"
	case remaining > 60 && remaining%60 == 0:
		return fmt.Sprintf("Only %d minutes remaining in your interview!", remaining/60)
	default:
		return fmt.Sprintf("Only %d seconds remaining in your interview!", remaining)
	}
}
