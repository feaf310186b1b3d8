package models

import "time"

type Resume struct {
	ID         string    `bson:"_id,omitempty" json:"resume_id"`
	StudentID  string    `bson:"student_id" json:"student_id"`
	ResumeData string    `bson:"resume_data" json:"resume_data"`
	UploadDate time.Time `bson:"upload_date" json:"upload_date"`
	FileURL    string    `bson:"file_url,omitempty" json:"file_url,omitempty"`
	FileName   string    `bson:"file_name,omitempty" json:"file_name,omitempty"`
	FileSize   int64     `bson:"file_size,omitempty" json:"file_size,omitempty"`
	MimeType   string    `bson:"mime_type,omitempty" json:"mime_type,omitempty"`
	ObjectName string    `bson:"object_name,omitempty" json:"-"`

	Timestamps `bson:",inline"`
}

// ResumeView is one employer visit to a shared resume.
type ResumeView struct {
	ID               string    `bson:"_id,omitempty" json:"id"`
	ResumeID         string    `bson:"resume_id" json:"resume_id"`
	ViewDate         time.Time `bson:"view_date" json:"view_date"`
	TimeSpent        string    `bson:"time_spent" json:"time_spent"`
	SectionsEngaged  []string  `bson:"sections_engaged" json:"sections_engaged"`
	Clicks           []string  `bson:"clicks" json:"clicks"`
	ScrollPercentage string    `bson:"scroll_percentage" json:"scroll_percentage"`
	IPAddress        string    `bson:"ip_address" json:"ip_address"`
	Location         string    `bson:"location" json:"location"`

	Timestamps `bson:",inline"`
}
