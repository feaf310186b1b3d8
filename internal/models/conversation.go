package models

import (
	"time"

	"gorm.io/datatypes"
)

type TurnRole string

const (
	RoleAssistant TurnRole = "assistant"
	RoleUser      TurnRole = "user"
)

// ConversationTurn is one role-tagged utterance of a voice interview.
type ConversationTurn struct {
	ID             string         `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	ConversationID string         `gorm:"column:conversation_id;type:uuid;index:idx_turn_conversation_seq,priority:1" json:"conversation_id"`
	InterviewID    string         `gorm:"column:interview_id;type:text;index" json:"interview_id"`
	Seq            int64          `gorm:"column:seq;index:idx_turn_conversation_seq,priority:2" json:"seq"`
	Role           TurnRole       `gorm:"column:role;type:text" json:"role"`
	Content        string         `gorm:"column:content;type:text" json:"content"`
	Timestamp      time.Time      `gorm:"column:timestamp;type:timestamptz;index" json:"timestamp"`
	Metadata       datatypes.JSON `gorm:"column:metadata;type:jsonb" json:"metadata"`
}

func (ConversationTurn) TableName() string { return "conversation_turns" }
