package voice

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/providers/llm"
	"github.com/octavia-ai/octavia/internal/providers/stt"
)

var (
	ErrAlreadyStarted = errors.New("voice: conversation already started")
	ErrNotStarted     = errors.New("voice: conversation not started")
)

// TurnSink persists each utterance of the conversation.
type TurnSink interface {
	AppendTurn(ctx context.Context, conversationID, interviewID string, role models.TurnRole, content string) error
}

// Coach is a Conversation backed by speech-to-text and an LLM. Audio arrives
// through PushAudio; each chunk yields a user turn and an interviewer reply.
// Transcript callbacks always carry the whole conversation so far.
type Coach struct {
	stt      stt.Provider
	llm      llm.Provider
	sink     TurnSink
	language string
	log      *logrus.Logger

	mu         sync.Mutex
	cfg        Config
	started    bool
	stopped    bool
	muted      bool
	lines      []string
	history    []string
	processing sync.Mutex
}

func NewCoach(sttP stt.Provider, llmP llm.Provider, sink TurnSink, language string, log *logrus.Logger) *Coach {
	if log == nil {
		log = logrus.New()
	}
	return &Coach{stt: sttP, llm: llmP, sink: sink, language: language, log: log}
}

// Start asks the LLM for an opening question. A provider failure here is
// returned so the caller can treat it as an initialization failure.
func (c *Coach) Start(ctx context.Context, cfg Config) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyStarted
	}
	if c.stt == nil || c.llm == nil {
		c.mu.Unlock()
		return errors.New("voice: speech or llm provider is not configured")
	}
	c.cfg = cfg
	c.started = true
	c.mu.Unlock()

	greeting, err := c.ask(ctx, openingPrompt(cfg.Metadata))
	if err != nil {
		c.mu.Lock()
		c.started = false
		c.mu.Unlock()
		return fmt.Errorf("voice: opening question: %w", err)
	}
	c.record(ctx, models.RoleAssistant, greeting)
	return nil
}

func (c *Coach) Stop(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopped = true
	return nil
}

func (c *Coach) SetMuted(ctx context.Context, muted bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started || c.stopped {
		return ErrNotStarted
	}
	c.muted = muted
	return nil
}

// PushAudio feeds one utterance of candidate audio. Audio is dropped while
// muted or outside a live conversation. Provider failures go to OnError.
func (c *Coach) PushAudio(ctx context.Context, audio []byte) error {
	if len(audio) == 0 || !c.live() {
		return nil
	}

	c.processing.Lock()
	defer c.processing.Unlock()

	text, _, err := c.stt.Transcribe(ctx, audio, c.language)
	if err != nil {
		c.fail(fmt.Errorf("voice: transcribe: %w", err))
		return err
	}
	text = strings.TrimSpace(text)
	if text == "" || !c.live() {
		return nil
	}
	c.record(ctx, models.RoleUser, text)

	reply, err := c.ask(ctx, followUpPrompt(c.metadata(), c.historySnapshot()))
	if err != nil {
		c.fail(fmt.Errorf("voice: reply: %w", err))
		return err
	}
	if c.live() {
		c.record(ctx, models.RoleAssistant, reply)
	}
	return nil
}

func (c *Coach) live() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.started && !c.stopped && !c.muted
}

func (c *Coach) metadata() map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cfg.Metadata
}

func (c *Coach) historySnapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.history...)
}

func (c *Coach) record(ctx context.Context, role models.TurnRole, content string) {
	c.mu.Lock()
	label := "You"
	if role == models.RoleAssistant {
		label = "Interviewer"
	}
	c.lines = append(c.lines, label+": "+content)
	c.history = append(c.history, string(role)+": "+content)
	transcript := strings.Join(c.lines, "\n")
	md := c.cfg.Metadata
	onTranscript := c.cfg.OnTranscript
	c.mu.Unlock()

	if c.sink != nil && md[MetaConversationID] != "" {
		if err := c.sink.AppendTurn(ctx, md[MetaConversationID], md[MetaInterviewID], role, content); err != nil {
			c.log.WithError(err).WithField("conversation_id", md[MetaConversationID]).Warn("failed to persist turn")
		}
	}
	if onTranscript != nil {
		onTranscript(transcript)
	}
}

func (c *Coach) fail(err error) {
	c.mu.Lock()
	onError := c.cfg.OnError
	c.mu.Unlock()
	if onError != nil {
		onError(err)
	}
}

func (c *Coach) ask(ctx context.Context, prompt string) (string, error) {
	chunks, errs := c.llm.StreamAnswer(ctx, prompt)

	var sb strings.Builder
	for chunk := range chunks {
		sb.WriteString(chunk)
	}
	if err := <-errs; err != nil {
		return "", err
	}
	return strings.TrimSpace(sb.String()), nil
}

// InterviewerInstruction is the persona the LLM provider carries as its system instruction.
const InterviewerInstruction = "You are Octavia, a friendly job interviewer running a spoken mock interview. " +
	"Keep every reply short enough to say aloud in under thirty seconds. " +
	"Ask one question at a time and never answer on the candidate's behalf."

func openingPrompt(md map[string]string) string {
	var sb strings.Builder
	if jt := md[MetaJobTitle]; jt != "" {
		sb.WriteString("The candidate is practicing for a " + jt + " role. ")
	}
	if md[MetaResumeID] != "" {
		sb.WriteString("The candidate has shared a resume. ")
	}
	sb.WriteString("Greet the candidate briefly and ask the first interview question.")
	return sb.String()
}

func followUpPrompt(md map[string]string, history []string) string {
	var sb strings.Builder
	if jt := md[MetaJobTitle]; jt != "" {
		sb.WriteString("Role: " + jt + ".\n")
	}
	sb.WriteString("Acknowledge the answer, then ask the next question.\n\nConversation so far:\n")
	for _, h := range history {
		sb.WriteString(h)
		sb.WriteString("\n")
	}
	return sb.String()
}
