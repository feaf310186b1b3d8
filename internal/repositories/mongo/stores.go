package mongo

import (
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/octavia-ai/octavia/internal/models"
)

// Collection names of the record store.
const (
	ColInstitutions       = "institutions"
	ColStudents           = "students"
	ColResumes            = "resumes"
	ColInterviews         = "interviews"
	ColInterviewResults   = "interview_results"
	ColJobs               = "jobs"
	ColJobApplications    = "job_applications"
	ColMessages           = "messages"
	ColContactInquiries   = "contact_inquiries"
	ColPaymentMethods     = "payment_methods"
	ColBillingHistory     = "billing_history"
	ColResumeViews        = "employer_resume_views"
	ColResumeAnalytics    = "resume_analytics"
	ColInterviewAnalytics = "interview_analytics"
)

// Stores bundles one RecordStore per entity over a single database handle.
type Stores struct {
	Institutions       RecordStore[models.Institution]
	Students           RecordStore[models.Student]
	Resumes            RecordStore[models.Resume]
	Interviews         RecordStore[models.Interview]
	Results            RecordStore[models.InterviewResult]
	Jobs               RecordStore[models.Job]
	Applications       RecordStore[models.JobApplication]
	Messages           RecordStore[models.Message]
	Inquiries          RecordStore[models.ContactInquiry]
	PaymentMethods     RecordStore[models.PaymentMethod]
	Billing            RecordStore[models.BillingRecord]
	ResumeViews        RecordStore[models.ResumeView]
	ResumeAnalytics    RecordStore[models.ResumeAnalytics]
	InterviewAnalytics RecordStore[models.InterviewAnalytics]
}

func NewStores(db *mongo.Database) *Stores {
	return &Stores{
		Institutions:       NewRecordStore[models.Institution](db.Collection(ColInstitutions)),
		Students:           NewRecordStore[models.Student](db.Collection(ColStudents)),
		Resumes:            NewRecordStore[models.Resume](db.Collection(ColResumes)),
		Interviews:         NewRecordStore[models.Interview](db.Collection(ColInterviews)),
		Results:            NewRecordStore[models.InterviewResult](db.Collection(ColInterviewResults)),
		Jobs:               NewRecordStore[models.Job](db.Collection(ColJobs)),
		Applications:       NewRecordStore[models.JobApplication](db.Collection(ColJobApplications)),
		Messages:           NewRecordStore[models.Message](db.Collection(ColMessages)),
		Inquiries:          NewRecordStore[models.ContactInquiry](db.Collection(ColContactInquiries)),
		PaymentMethods:     NewRecordStore[models.PaymentMethod](db.Collection(ColPaymentMethods)),
		Billing:            NewRecordStore[models.BillingRecord](db.Collection(ColBillingHistory)),
		ResumeViews:        NewRecordStore[models.ResumeView](db.Collection(ColResumeViews)),
		ResumeAnalytics:    NewRecordStore[models.ResumeAnalytics](db.Collection(ColResumeAnalytics)),
		InterviewAnalytics: NewRecordStore[models.InterviewAnalytics](db.Collection(ColInterviewAnalytics)),
	}
}
