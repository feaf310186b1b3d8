package models

import "time"

type StudentStatus string

const (
	StudentActive   StudentStatus = "Active"
	StudentPending  StudentStatus = "Pending"
	StudentRejected StudentStatus = "Rejected"
)

type Student struct {
	ID                      string        `bson:"_id,omitempty" json:"student_id"`
	InstitutionID           string        `bson:"institution_id" json:"institution_id"`
	FullName                string        `bson:"full_name" json:"full_name"`
	Email                   string        `bson:"email" json:"email"`
	Status                  StudentStatus `bson:"status" json:"status"`
	ResumeUploaded          bool          `bson:"resume_uploaded" json:"resume_uploaded"`
	LinkedInProfile         string        `bson:"linkedin_profile,omitempty" json:"linkedin_profile,omitempty"`
	FirstInterviewCompleted bool          `bson:"first_interview_completed" json:"first_interview_completed"`
	SignupDate              time.Time     `bson:"signup_date" json:"signup_date"`
	LastActivity            time.Time     `bson:"last_activity" json:"last_activity"`
	SessionMinutes          int           `bson:"session_minutes" json:"session_minutes"`

	Timestamps `bson:",inline"`
}
