package mongo

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/octavia-ai/octavia/internal/models"
	"github.com/octavia-ai/octavia/internal/utils"
)

const ns = "octavia.interviews"

func TestRecordStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("get decodes document", func(mt *mtest.T) {
		store := NewRecordStore[models.Interview](mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "iv-1"},
			{Key: "student_id", Value: "st-1"},
			{Key: "title", Value: "Support Specialist"},
			{Key: "status", Value: "scheduled"},
			{Key: "conversation_id", Value: "conv-1"},
		}))

		got, err := store.Get(context.Background(), "iv-1")
		require.NoError(mt, err)
		assert.Equal(mt, "iv-1", got.ID)
		assert.Equal(mt, "st-1", got.StudentID)
		assert.Equal(mt, models.InterviewScheduled, got.Status)
		assert.Equal(mt, "conv-1", got.ConversationID)
	})

	mt.Run("get missing maps to not found", func(mt *mtest.T) {
		store := NewRecordStore[models.Interview](mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := store.Get(context.Background(), "nope")
		assert.ErrorIs(mt, err, utils.ErrNotFound)
	})

	mt.Run("list returns every document", func(mt *mtest.T) {
		store := NewRecordStore[models.Interview](mt.Coll)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "iv-1"}, {Key: "student_id", Value: "st-1"}},
			bson.D{{Key: "_id", Value: "iv-2"}, {Key: "student_id", Value: "st-1"}},
		))

		got, err := store.List(context.Background(), Filter{"student_id": "st-1"}, ListOptions{SortBy: "date", Desc: true})
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, "iv-2", got[1].ID)
	})

	mt.Run("create assigns id and timestamps", func(mt *mtest.T) {
		store := NewRecordStore[models.Interview](mt.Coll).(*recordStore[models.Interview])
		fixed := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		store.now = func() time.Time { return fixed }
		store.newID = func() string { return "iv-new" }
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		doc := &models.Interview{StudentID: "st-1", Title: "Mock"}
		id, err := store.Create(context.Background(), doc)
		require.NoError(mt, err)
		assert.Equal(mt, "iv-new", id)
		assert.Equal(mt, "iv-new", doc.ID)
		assert.True(mt, doc.CreatedAt.Equal(fixed))
		assert.True(mt, doc.UpdatedAt.Equal(fixed))
	})

	mt.Run("create surfaces duplicate key", func(mt *mtest.T) {
		store := NewRecordStore[models.InterviewResult](mt.Coll)
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "E11000 duplicate key error",
		}))

		_, err := store.Create(context.Background(), &models.InterviewResult{InterviewID: "iv-1"})
		require.Error(mt, err)
		assert.True(mt, IsDuplicateKey(err))
	})

	mt.Run("update unmatched maps to not found", func(mt *mtest.T) {
		store := NewRecordStore[models.Interview](mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		err := store.Update(context.Background(), "nope", Fields{"status": "completed"})
		assert.ErrorIs(mt, err, utils.ErrNotFound)
	})

	mt.Run("update matched", func(mt *mtest.T) {
		store := NewRecordStore[models.Interview](mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 1},
		))

		err := store.Update(context.Background(), "iv-1", Fields{"status": "completed"})
		assert.NoError(mt, err)
	})

	mt.Run("delete", func(mt *mtest.T) {
		store := NewRecordStore[models.Interview](mt.Coll)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		assert.NoError(mt, store.Delete(context.Background(), "iv-1"))
		assert.ErrorIs(mt, store.Delete(context.Background(), "iv-1"), utils.ErrNotFound)
	})
}
