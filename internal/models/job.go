package models

import "time"

type Job struct {
	ID             string `bson:"_id,omitempty" json:"job_id"`
	Title          string `bson:"title" json:"title"`
	Company        string `bson:"company" json:"company"`
	Location       string `bson:"location" json:"location"`
	Type           string `bson:"type" json:"type"`
	Salary         string `bson:"salary" json:"salary"`
	Description    string `bson:"description" json:"description"`
	JobBoardSource string `bson:"job_board_source,omitempty" json:"job_board_source,omitempty"`
	JobURL         string `bson:"job_url,omitempty" json:"job_url,omitempty"`

	Timestamps `bson:",inline"`
}

type JobApplication struct {
	ID                  string    `bson:"_id,omitempty" json:"application_id"`
	JobID               string    `bson:"job_id" json:"job_id"`
	StudentID           string    `bson:"student_id" json:"student_id"`
	PersonalInformation string    `bson:"personal_information" json:"personal_information"`
	Resume              string    `bson:"resume" json:"resume"`
	CoverLetter         string    `bson:"cover_letter,omitempty" json:"cover_letter,omitempty"`
	LinkedInProfile     string    `bson:"linkedin_profile,omitempty" json:"linkedin_profile,omitempty"`
	PortfolioWebsite    string    `bson:"portfolio_website,omitempty" json:"portfolio_website,omitempty"`
	Availability        string    `bson:"availability" json:"availability"`
	ApplicationDate     time.Time `bson:"application_date" json:"application_date"`
	Status              string    `bson:"status" json:"status"`
	AppliedAfterClick   bool      `bson:"applied_after_click,omitempty" json:"applied_after_click,omitempty"`

	Timestamps `bson:",inline"`
}
