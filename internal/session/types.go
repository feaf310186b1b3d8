package session

import (
	"context"
	"time"
)

type Status string

const (
	StatusIdle       Status = "idle"
	StatusConnecting Status = "connecting"
	StatusRecording  Status = "recording"
	StatusPaused     Status = "paused"
	StatusEnded      Status = "ended"
)

// State is the client-visible view of one interview attempt.
type State struct {
	Status         Status `json:"status"`
	ElapsedSeconds int    `json:"elapsed_seconds"`
	RemainingSecs  int    `json:"remaining_seconds"`
	Transcript     string `json:"transcript"`
	Connected      bool   `json:"connected"`
	MicEnabled     bool   `json:"mic_enabled"`
	WarningVisible bool   `json:"warning_visible"`
}

// TranscriptMode says how transcript events combine with earlier ones.
type TranscriptMode string

const (
	// TranscriptReplace treats every event as the full transcript so far.
	TranscriptReplace TranscriptMode = "replace"
	// TranscriptAccumulate treats every event as a new fragment.
	TranscriptAccumulate TranscriptMode = "accumulate"
)

type NotificationKind string

const (
	NotifyPermissionDenied  NotificationKind = "permission_denied"
	NotifyCollaboratorInit  NotificationKind = "collaborator_init_failure"
	NotifyCollaboratorError NotificationKind = "collaborator_runtime_error"
	NotifyTimeWarning       NotificationKind = "time_warning"
	NotifyEnded             NotificationKind = "ended"
	NotifyPersistence       NotificationKind = "persistence_error"
)

// Notification is a user-visible, non-blocking message.
type Notification struct {
	Kind    NotificationKind `json:"kind"`
	Message string           `json:"message"`
	Err     error            `json:"-"`
}

type EndReason string

const (
	EndStopped   EndReason = "stopped"
	EndTimeLimit EndReason = "time_limit"
	EndError     EndReason = "error"
)

// StartRequest carries the references the interview is run against.
type StartRequest struct {
	InterviewID    string
	ConversationID string
	StudentID      string
	ResumeID       string
	JobTitle       string
}

// Summary describes a finished attempt handed to the Finisher.
type Summary struct {
	InterviewID    string
	ConversationID string
	StudentID      string
	ElapsedSeconds int
	Transcript     string
	Reason         EndReason
}

// PermissionGate asks the client for microphone access. A non-nil error
// means access was denied.
type PermissionGate interface {
	RequestMicrophone(ctx context.Context) error
}

// Finisher runs the end-of-interview flow: mark the interview completed and
// request its report.
type Finisher interface {
	Finish(ctx context.Context, s Summary) error
}

type Listener interface {
	OnStateChange(s State)
	OnNotification(n Notification)
}

type Options struct {
	MaxDuration      time.Duration
	WarningThreshold time.Duration
	WarningDismiss   time.Duration
	TranscriptMode   TranscriptMode
	AssistantID      string
	Clock            Clock
}

func (o Options) withDefaults() Options {
	if o.MaxDuration <= 0 {
		o.MaxDuration = 900 * time.Second
	}
	if o.WarningThreshold <= 0 {
		o.WarningThreshold = 120 * time.Second
	}
	if o.WarningDismiss <= 0 {
		o.WarningDismiss = 5 * time.Second
	}
	if o.TranscriptMode == "" {
		o.TranscriptMode = TranscriptReplace
	}
	if o.Clock == nil {
		o.Clock = realClock{}
	}
	return o
}

type nopListener struct{}

func (nopListener) OnStateChange(State) {}
func (nopListener) OnNotification(Notification) {}
