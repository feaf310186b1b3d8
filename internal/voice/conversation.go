// Package voice holds the real-time voice conversation contract the session
// controller drives, and the speech/LLM backed implementation of it.
package voice

import "context"

// Metadata keys passed through Config.Metadata.
const (
	MetaInterviewID    = "interview_id"
	MetaConversationID = "conversation_id"
	MetaResumeID       = "resume_id"
	MetaJobTitle       = "job_title"
	MetaStudentID      = "student_id"
)

type Config struct {
	AssistantID string
	Metadata    map[string]string

	// OnTranscript receives transcript text; OnError receives runtime failures.
	OnTranscript func(text string)
	OnError      func(err error)
}

// Conversation is one live voice session with the interviewer assistant.
type Conversation interface {
	Start(ctx context.Context, cfg Config) error
	Stop(ctx context.Context) error
	SetMuted(ctx context.Context, muted bool) error
}
