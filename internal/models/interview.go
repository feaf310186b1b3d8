package models

import "time"

type InterviewStatus string

const (
	InterviewScheduled  InterviewStatus = "scheduled"
	InterviewInProgress InterviewStatus = "in_progress"
	InterviewCompleted  InterviewStatus = "completed"
)

type Interview struct {
	ID        string          `bson:"_id,omitempty" json:"interview_id"`
	StudentID string          `bson:"student_id" json:"student_id"`
	Date      time.Time       `bson:"date" json:"date"`
	Time      string          `bson:"time" json:"time"`
	Type      string          `bson:"type" json:"type"`
	Title     string          `bson:"title" json:"title"`
	Questions []string        `bson:"questions" json:"questions"`
	Status    InterviewStatus `bson:"status" json:"status"`

	// conversation_id references the transcript turns of the voice session
	ConversationID  string     `bson:"conversation_id,omitempty" json:"conversation_id,omitempty"`
	JobTitle        string     `bson:"job_title,omitempty" json:"job_title,omitempty"`
	ResumeID        string     `bson:"resume_id,omitempty" json:"resume_id,omitempty"`
	DurationSeconds int64      `bson:"duration_seconds,omitempty" json:"duration_seconds,omitempty"`
	CompletedAt     *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	Timestamps `bson:",inline"`
}

// InterviewResult is written once per completed interview.
type InterviewResult struct {
	ID                 string         `bson:"_id,omitempty" json:"interview_result_id"`
	InterviewID        string         `bson:"interview_id" json:"interview_id"`
	StudentID          string         `bson:"student_id" json:"student_id"`
	Score              int            `bson:"score" json:"score"`
	Feedback           string         `bson:"feedback" json:"feedback"`
	FeedbackCategories map[string]int `bson:"feedback_categories" json:"feedback_categories"`

	Timestamps `bson:",inline"`
}
