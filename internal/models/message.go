package models

import "time"

type Message struct {
	ID           string    `bson:"_id,omitempty" json:"message_id"`
	Title        string    `bson:"title" json:"title"`
	Type         string    `bson:"type" json:"type"`
	Target       string    `bson:"target" json:"target"`
	Content      string    `bson:"content" json:"content"`
	Status       string    `bson:"status" json:"status"`
	Date         time.Time `bson:"date" json:"date"`
	DeliveryRate float64   `bson:"delivery_rate" json:"delivery_rate"`

	Timestamps `bson:",inline"`
}

type ContactInquiry struct {
	ID              string    `bson:"_id,omitempty" json:"inquiry_id"`
	InstitutionName string    `bson:"institution_name" json:"institution_name"`
	ContactName     string    `bson:"contact_name" json:"contact_name"`
	Email           string    `bson:"email" json:"email"`
	Phone           string    `bson:"phone" json:"phone"`
	StudentCapacity string    `bson:"student_capacity" json:"student_capacity"`
	Message         string    `bson:"message" json:"message"`
	SubmissionDate  time.Time `bson:"submission_date" json:"submission_date"`

	Timestamps `bson:",inline"`
}
