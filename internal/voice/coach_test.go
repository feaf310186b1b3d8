package voice

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/octavia-ai/octavia/internal/logger"
	"github.com/octavia-ai/octavia/internal/models"
)

type fakeSTT struct {
	text string
	err  error
}

func (f *fakeSTT) Transcribe(context.Context, []byte, string) (string, float64, error) {
	return f.text, 0.9, f.err
}
func (f *fakeSTT) Close() error { return nil }

type fakeLLM struct {
	mu      sync.Mutex
	replies []string
	err     error
	prompts []string
}

func (f *fakeLLM) StreamAnswer(_ context.Context, prompt string) (<-chan string, <-chan error) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	reply := "ok"
	if len(f.replies) > 0 {
		reply, f.replies = f.replies[0], f.replies[1:]
	}
	err := f.err
	f.mu.Unlock()

	out := make(chan string, 2)
	errs := make(chan error, 1)
	if err != nil {
		errs <- err
	} else {
		out <- reply[:len(reply)/2]
		out <- reply[len(reply)/2:]
	}
	close(out)
	close(errs)
	return out, errs
}
func (f *fakeLLM) Close() error { return nil }

type turnRec struct {
	conv, interview string
	role            models.TurnRole
	content         string
}

type memSink struct {
	mu    sync.Mutex
	turns []turnRec
}

func (m *memSink) AppendTurn(_ context.Context, conv, interview string, role models.TurnRole, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.turns = append(m.turns, turnRec{conv, interview, role, content})
	return nil
}

func TestCoachConversationFlow(t *testing.T) {
	sttP := &fakeSTT{text: "I led a team of five."}
	llmP := &fakeLLM{replies: []string{"Hello! Tell me about yourself.", "Nice. What went wrong?"}}
	sink := &memSink{}
	c := NewCoach(sttP, llmP, sink, "en-US", logger.Discard())

	var transcripts []string
	err := c.Start(context.Background(), Config{
		AssistantID: "octavia",
		Metadata: map[string]string{
			MetaConversationID: "conv-1",
			MetaInterviewID:    "int-1",
			MetaJobTitle:       "Backend Engineer",
		},
		OnTranscript: func(s string) { transcripts = append(transcripts, s) },
	})
	require.NoError(t, err)
	assert.Contains(t, llmP.prompts[0], "Backend Engineer")

	require.NoError(t, c.PushAudio(context.Background(), []byte{1, 2, 3}))

	require.Len(t, transcripts, 3)
	assert.Equal(t, "Interviewer: Hello! Tell me about yourself.", transcripts[0])
	assert.Equal(t, "Interviewer: Hello! Tell me about yourself.\nYou: I led a team of five.\nInterviewer: Nice. What went wrong?", transcripts[2])

	require.Len(t, sink.turns, 3)
	assert.Equal(t, turnRec{"conv-1", "int-1", models.RoleUser, "I led a team of five."}, sink.turns[1])
	assert.Contains(t, llmP.prompts[1], "user: I led a team of five.")
	for _, p := range llmP.prompts {
		assert.NotContains(t, p, "You are Octavia")
	}
}

func TestCoachStartFailure(t *testing.T) {
	c := NewCoach(&fakeSTT{}, &fakeLLM{err: errors.New("quota")}, nil, "en-US", logger.Discard())
	err := c.Start(context.Background(), Config{})
	require.Error(t, err)

	// a failed start can be retried
	c.llm = &fakeLLM{}
	require.NoError(t, c.Start(context.Background(), Config{}))
	assert.ErrorIs(t, c.Start(context.Background(), Config{}), ErrAlreadyStarted)
}

func TestCoachDropsAudioWhileMuted(t *testing.T) {
	llmP := &fakeLLM{}
	c := NewCoach(&fakeSTT{text: "hello"}, llmP, nil, "en-US", logger.Discard())
	var got int
	require.NoError(t, c.Start(context.Background(), Config{OnTranscript: func(string) { got++ }}))

	require.NoError(t, c.SetMuted(context.Background(), true))
	require.NoError(t, c.PushAudio(context.Background(), []byte{1}))
	assert.Equal(t, 1, got)

	require.NoError(t, c.SetMuted(context.Background(), false))
	require.NoError(t, c.PushAudio(context.Background(), []byte{1}))
	assert.Equal(t, 3, got)

	require.NoError(t, c.Stop(context.Background()))
	require.NoError(t, c.PushAudio(context.Background(), []byte{1}))
	assert.Equal(t, 3, got)
	assert.ErrorIs(t, c.SetMuted(context.Background(), true), ErrNotStarted)
}

func TestCoachReportsRuntimeErrors(t *testing.T) {
	c := NewCoach(&fakeSTT{err: errors.New("bad audio")}, &fakeLLM{}, nil, "en-US", logger.Discard())
	var runtimeErr error
	require.NoError(t, c.Start(context.Background(), Config{OnError: func(err error) { runtimeErr = err }}))

	err := c.PushAudio(context.Background(), []byte{1})
	require.Error(t, err)
	require.Error(t, runtimeErr)
	assert.Contains(t, runtimeErr.Error(), "bad audio")
}
