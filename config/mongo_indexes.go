package config

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func EnsureMongoIndexes(ctx context.Context, db *mongo.Database) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexes := map[string][]mongo.IndexModel{
		"students": {
			{
				Keys:    bson.D{{Key: "institution_id", Value: 1}, {Key: "status", Value: 1}},
				Options: options.Index().SetName("by_institution_status"),
			},
			{
				Keys:    bson.D{{Key: "email", Value: 1}},
				Options: options.Index().SetName("by_email"),
			},
		},
		"resumes": {
			{
				Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "upload_date", Value: -1}},
				Options: options.Index().SetName("by_student_upload"),
			},
		},
		"interviews": {
			{
				Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "date", Value: -1}},
				Options: options.Index().SetName("by_student_date"),
			},
		},
		// one result per interview; a second insert fails with a duplicate key
		"interview_results": {
			{
				Keys: bson.D{{Key: "interview_id", Value: 1}},
				Options: options.Index().
					SetName("uniq_interview_id").
					SetUnique(true),
			},
			{
				Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "created_at", Value: -1}},
				Options: options.Index().SetName("by_student_created"),
			},
		},
		"job_applications": {
			{
				Keys:    bson.D{{Key: "student_id", Value: 1}, {Key: "job_id", Value: 1}},
				Options: options.Index().SetName("by_student_job"),
			},
		},
		"payment_methods": {
			{
				Keys:    bson.D{{Key: "institution_id", Value: 1}, {Key: "default_payment", Value: 1}},
				Options: options.Index().SetName("by_institution_default"),
			},
		},
		"billing_history": {
			{
				Keys:    bson.D{{Key: "institution_id", Value: 1}, {Key: "date", Value: -1}},
				Options: options.Index().SetName("by_institution_date"),
			},
		},
		"employer_resume_views": {
			{
				Keys:    bson.D{{Key: "resume_id", Value: 1}, {Key: "view_date", Value: -1}},
				Options: options.Index().SetName("by_resume_view_date"),
			},
		},
	}

	for name, models := range indexes {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return err
		}
	}
	return nil
}
