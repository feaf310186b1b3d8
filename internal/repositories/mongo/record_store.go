package mongo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/octavia-ai/octavia/internal/utils"
)

// Filter holds equality predicates, ex: {"student_id": id}.
type Filter = bson.M

// Fields is a partial update applied with $set.
type Fields = bson.M

type ListOptions struct {
	SortBy string
	Desc   bool
	Limit  int64
}

// RecordStore is the get/list/create/update/delete contract every entity
// collection exposes.
type RecordStore[T any] interface {
	List(ctx context.Context, filter Filter, opts ListOptions) ([]T, error)
	Get(ctx context.Context, id string) (*T, error)
	Create(ctx context.Context, doc *T) (string, error)
	Update(ctx context.Context, id string, fields Fields) error
	Delete(ctx context.Context, id string) error
}

type recordStore[T any] struct {
	col   *mongo.Collection
	now   func() time.Time
	newID func() string
}

func NewRecordStore[T any](col *mongo.Collection) RecordStore[T] {
	return &recordStore[T]{
		col:   col,
		now:   func() time.Time { return time.Now().UTC() },
		newID: uuid.NewString,
	}
}

func (r *recordStore[T]) List(ctx context.Context, filter Filter, opts ListOptions) ([]T, error) {
	if filter == nil {
		filter = Filter{}
	}
	fo := options.Find()
	if opts.SortBy != "" {
		dir := 1
		if opts.Desc {
			dir = -1
		}
		fo.SetSort(bson.D{{Key: opts.SortBy, Value: dir}})
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}

	cur, err := r.col.Find(ctx, filter, fo)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []T{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *recordStore[T]) Get(ctx context.Context, id string) (*T, error) {
	var doc T
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, utils.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// Create assigns _id, created_at and updated_at, inserts, and decodes the
// stored form back into doc so callers see the assigned values.
func (r *recordStore[T]) Create(ctx context.Context, doc *T) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return "", err
	}

	id, _ := m["_id"].(string)
	if id == "" {
		id = r.newID()
	}
	now := r.now()
	m["_id"] = id
	m["created_at"] = now
	m["updated_at"] = now

	if _, err := r.col.InsertOne(ctx, m); err != nil {
		return "", err
	}

	stored, err := bson.Marshal(m)
	if err != nil {
		return id, nil
	}
	_ = bson.Unmarshal(stored, doc)
	return id, nil
}

func (r *recordStore[T]) Update(ctx context.Context, id string, fields Fields) error {
	set := Fields{}
	for k, v := range fields {
		if k == "_id" || k == "created_at" {
			continue
		}
		set[k] = v
	}
	set["updated_at"] = r.now()

	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

func (r *recordStore[T]) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return utils.ErrNotFound
	}
	return nil
}

// IsDuplicateKey reports a unique index violation.
func IsDuplicateKey(err error) bool {
	return mongo.IsDuplicateKeyError(err)
}
