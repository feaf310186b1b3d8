package handlers

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/octavia-ai/octavia/internal/metrics"
	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/services"
	"github.com/octavia-ai/octavia/internal/session"
	"github.com/octavia-ai/octavia/internal/utils"
	"github.com/octavia-ai/octavia/internal/voice"
)

const (
	wsReadTimeout = 60 * time.Second
	wsPingEvery   = 25 * time.Second
	audioBacklog  = 8
)

// LiveConversation is a voice conversation fed with client audio.
type LiveConversation interface {
	voice.Conversation
	PushAudio(ctx context.Context, audio []byte) error
}

// SlotTracker counts live voice sessions for the concurrency advisory.
type SlotTracker interface {
	Acquire(ctx context.Context, sessionID string) (int, error)
	// Touch extends a held slot so a long pause does not let it expire.
	Touch(ctx context.Context, sessionID string) error
	Release(ctx context.Context, sessionID string) error
}

type InterviewWSDeps struct {
	Interviews      services.InterviewService
	NewConversation func() LiveConversation
	Finisher        session.Finisher
	Slots           SlotTracker
	Options         session.Options
	AllowedOrigins  []string
	Logger          *logrus.Logger
}

// InterviewWSHandler hosts one session controller per WebSocket connection.
type InterviewWSHandler struct {
	d        InterviewWSDeps
	upgrader websocket.Upgrader
}

func NewInterviewWSHandler(d InterviewWSDeps) *InterviewWSHandler {
	if d.Logger == nil {
		d.Logger = logrus.New()
	}
	origins := map[string]struct{}{}
	for _, o := range d.AllowedOrigins {
		origins[strings.TrimRight(o, "/")] = struct{}{}
	}
	return &InterviewWSHandler{
		d: d,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				if len(origins) == 0 {
					return true
				}
				_, ok := origins[r.Header.Get("Origin")]
				return ok
			},
		},
	}
}

type wsClientMsg struct {
	Type        string `json:"type"`
	MicGranted  bool   `json:"mic_granted"`
	AudioBase64 string `json:"audio_base64"`
}

type wsServerMsg struct {
	Type    string                   `json:"type"`
	State   *session.State           `json:"state,omitempty"`
	Kind    session.NotificationKind `json:"kind,omitempty"`
	Code    utils.Code               `json:"code,omitempty"`
	Message string                   `json:"message,omitempty"`
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	_ = w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteJSON(v)
}

func (w *wsConn) ping() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.c.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
}

func (w *wsConn) writeErr(err error) {
	msg := wsServerMsg{Type: "error", Code: utils.CodeOf(err), Message: "internal error"}
	var ae *utils.AppError
	if errors.As(err, &ae) && ae.Message != "" {
		msg.Message = ae.Message
	}
	_ = w.writeJSON(msg)
}

// wsListener forwards controller events to the client.
type wsListener struct {
	wc      *wsConn
	onEnded func()
}

func (l *wsListener) OnStateChange(s session.State) {
	_ = l.wc.writeJSON(wsServerMsg{Type: "state", State: &s})
	if s.Status == session.StatusEnded && l.onEnded != nil {
		l.onEnded()
	}
}

func (l *wsListener) OnNotification(n session.Notification) {
	_ = l.wc.writeJSON(wsServerMsg{Type: "notification", Kind: n.Kind, Message: n.Message})
}

// micGate answers the permission request with what the client reported in
// its start message.
type micGate struct{ granted bool }

func (g micGate) RequestMicrophone(context.Context) error {
	if !g.granted {
		return utils.E(utils.CodePermissionDenied, "micGate", "microphone not granted by client", nil)
	}
	return nil
}

// gateSwitch lets each start message carry its own permission answer.
type gateSwitch struct {
	mu   sync.Mutex
	gate micGate
}

func (s *gateSwitch) set(granted bool) {
	s.mu.Lock()
	s.gate = micGate{granted: granted}
	s.mu.Unlock()
}

func (s *gateSwitch) RequestMicrophone(ctx context.Context) error {
	s.mu.Lock()
	g := s.gate
	s.mu.Unlock()
	return g.RequestMicrophone(ctx)
}

type meteredFinisher struct{ next session.Finisher }

func (f meteredFinisher) Finish(ctx context.Context, s session.Summary) error {
	metrics.SessionEnded(string(s.Reason))
	if f.next == nil {
		return nil
	}
	return f.next.Finish(ctx, s)
}

// InterviewWS serves GET /ws/interview/:interview_id.
func (h *InterviewWSHandler) InterviewWS(c *gin.Context) {
	const op = "InterviewWSHandler.InterviewWS"

	iv, err := h.d.Interviews.Get(c.Request.Context(), c.Param("interview_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	if id, ok := identity(c); ok && id.Role == models.RoleStudent && iv.StudentID != id.UserID {
		writeError(c, utils.E(utils.CodeForbidden, op, "interview belongs to another student", nil))
		return
	}
	if iv.Status == models.InterviewCompleted {
		writeError(c, utils.E(utils.CodeInvalidState, op, "interview is already completed", nil))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader already wrote the response
		return
	}
	defer conn.Close()

	// the session outlives a dropped request context long enough to finish
	ctx, cancel := context.WithCancel(context.WithoutCancel(c.Request.Context()))
	defer cancel()

	wc := &wsConn{c: conn}
	sessionID := uuid.NewString()
	log := h.d.Logger.WithFields(logrus.Fields{"interview_id": iv.ID, "session_id": sessionID})

	slot := &voiceSlot{slots: h.d.Slots, id: sessionID, log: log}
	release := slot.release
	defer release()

	conv := h.d.NewConversation()
	gate := &gateSwitch{}
	ctrl := session.NewController(conv, gate, meteredFinisher{next: h.d.Finisher},
		&wsListener{wc: wc, onEnded: release}, h.d.Options, h.d.Logger)
	defer ctrl.Close(ctx)

	audio := make(chan []byte, audioBacklog)
	defer close(audio)
	go func() {
		for chunk := range audio {
			if err := conv.PushAudio(ctx, chunk); err != nil {
				log.WithError(err).Debug("audio chunk failed")
			}
		}
	}()

	go func() {
		t := time.NewTicker(wsPingEvery)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := wc.ping(); err != nil {
					return
				}
				slot.refresh(ctx)
			}
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsReadTimeout))
	})

	st := ctrl.State()
	_ = wc.writeJSON(wsServerMsg{Type: "state", State: &st})

	for {
		_, data, rerr := conn.ReadMessage()
		if rerr != nil {
			log.WithError(rerr).Debug("interview socket closed")
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(wsReadTimeout))

		var msg wsClientMsg
		if err := json.Unmarshal(data, &msg); err != nil {
			wc.writeErr(utils.E(utils.CodeInvalidArgument, op, "invalid json", err))
			continue
		}

		switch msg.Type {
		case "start":
			if err := h.start(ctx, ctrl, gate, slot, msg.MicGranted, iv); err != nil {
				if ctrl.State().Status == session.StatusIdle {
					release()
				}
				wc.writeErr(err)
			}

		case "pause":
			if err := ctrl.Pause(ctx); err != nil {
				wc.writeErr(err)
			}

		case "resume":
			if err := ctrl.Resume(ctx); err != nil {
				wc.writeErr(err)
				continue
			}
			slot.refresh(ctx)

		case "stop":
			if err := ctrl.Stop(ctx); err != nil {
				wc.writeErr(err)
			}

		case "audio":
			raw := msg.AudioBase64
			if i := strings.Index(raw, ","); i >= 0 {
				raw = raw[i+1:] // strip data:...;base64,
			}
			b, err := base64.StdEncoding.DecodeString(raw)
			if err != nil || len(b) == 0 {
				wc.writeErr(utils.E(utils.CodeInvalidArgument, op, "invalid audio_base64", err))
				continue
			}
			select {
			case audio <- b:
			default:
				wc.writeErr(utils.E(utils.CodeUnavailable, op, "audio backlog full, chunk dropped", nil))
			}

		case "ping":
			slot.refresh(ctx)
			_ = wc.writeJSON(wsServerMsg{Type: "pong"})

		default:
			wc.writeErr(utils.E(utils.CodeInvalidArgument, op, "unknown message type", nil))
		}
	}
}

func (h *InterviewWSHandler) start(ctx context.Context, ctrl *session.Controller, gate *gateSwitch, slot *voiceSlot, granted bool, iv *models.Interview) error {
	if st := ctrl.State().Status; st != session.StatusIdle {
		return utils.E(utils.CodeInvalidState, "InterviewWSHandler.start", "interview cannot start from "+string(st), nil)
	}
	gate.set(granted)

	begun := iv
	if granted {
		slot.acquire(ctx)
		var err error
		if begun, err = h.d.Interviews.Begin(ctx, iv.ID); err != nil {
			return err
		}
	}

	return ctrl.Start(ctx, session.StartRequest{
		InterviewID:    begun.ID,
		ConversationID: begun.ConversationID,
		StudentID:      begun.StudentID,
		ResumeID:       begun.ResumeID,
		JobTitle:       begun.JobTitle,
	})
}

// voiceSlot holds at most one usage slot for a connection.
type voiceSlot struct {
	slots SlotTracker
	id    string
	log   *logrus.Entry

	mu   sync.Mutex
	held bool
}

func (v *voiceSlot) acquire(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.slots == nil || v.held {
		return
	}
	n, err := v.slots.Acquire(ctx, v.id)
	if err != nil {
		v.log.WithError(err).Warn("failed to register voice slot")
		return
	}
	v.held = true
	v.log.WithField("active", n).Debug("voice slot acquired")
}

func (v *voiceSlot) refresh(ctx context.Context) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.held {
		return
	}
	if err := v.slots.Touch(ctx, v.id); err != nil {
		v.log.WithError(err).Warn("failed to refresh voice slot")
	}
}

func (v *voiceSlot) release() {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.held {
		return
	}
	v.held = false
	if err := v.slots.Release(context.Background(), v.id); err != nil {
		v.log.WithError(err).Warn("failed to release voice slot")
	}
}
