package lead

import (
	"context"
	"testing"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestLeadRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("insert if absent stores new lead", func(mt *mtest.T) {
		repo := NewLeadRepository(&database.MongodbDB{DB: mt.DB})
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
			bson.E{Key: "upserted", Value: bson.A{
				bson.D{{Key: "index", Value: 0}, {Key: "_id", Value: primitive.NewObjectID()}},
			}},
		))

		l := &Lead{ExternalLeadID: "L1", FormID: "F1", SubmittedAt: time.Now()}
		inserted, err := repo.InsertIfAbsent(context.Background(), l)
		require.NoError(mt, err)
		assert.True(mt, inserted)
		assert.Equal(mt, "L1", l.LegacyID)
		assert.Equal(mt, StatusNew, l.Status)
		assert.False(mt, l.CreatedAt.IsZero())

		started := mt.GetStartedEvent()
		require.NotNil(mt, started)
		assert.Equal(mt, "update", started.CommandName)
		update := started.Command.Lookup("updates").Array().Index(0).Value().Document()
		assert.True(mt, update.Lookup("upsert").Boolean())
		_, err = update.Lookup("u", "$setOnInsert").Document().LookupErr("external_lead_id")
		assert.NoError(mt, err)
		_, err = update.Lookup("u").Document().LookupErr("$set")
		assert.Error(mt, err, "stored leads must never be overwritten")
	})

	mt.Run("insert if absent is a no-op for known lead", func(mt *mtest.T) {
		repo := NewLeadRepository(&database.MongodbDB{DB: mt.DB})
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		inserted, err := repo.InsertIfAbsent(context.Background(), &Lead{ExternalLeadID: "L1"})
		require.NoError(mt, err)
		assert.False(mt, inserted)
	})

	mt.Run("duplicate key race counts as skip", func(mt *mtest.T) {
		repo := NewLeadRepository(&database.MongodbDB{DB: mt.DB})
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "E11000 duplicate key error collection: db.leads",
		}))

		inserted, err := repo.InsertIfAbsent(context.Background(), &Lead{ExternalLeadID: "L1"})
		require.NoError(mt, err)
		assert.False(mt, inserted)
	})

	mt.Run("other write errors surface", func(mt *mtest.T) {
		repo := NewLeadRepository(&database.MongodbDB{DB: mt.DB})
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 121, Message: "Document failed validation",
		}))

		_, err := repo.InsertIfAbsent(context.Background(), &Lead{ExternalLeadID: "L1"})
		assert.Error(mt, err)
	})

	mt.Run("insert requires external id", func(mt *mtest.T) {
		repo := NewLeadRepository(&database.MongodbDB{DB: mt.DB})
		_, err := repo.InsertIfAbsent(context.Background(), &Lead{})
		assert.ErrorIs(mt, err, ErrMissingExternalID)
	})

	mt.Run("exists", func(mt *mtest.T) {
		repo := NewLeadRepository(&database.MongodbDB{DB: mt.DB})
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "db.leads", mtest.FirstBatch, bson.D{{Key: "_id", Value: primitive.NewObjectID()}}),
			mtest.CreateCursorResponse(0, "db.leads", mtest.FirstBatch),
		)

		found, err := repo.Exists(context.Background(), "L1")
		require.NoError(mt, err)
		assert.True(mt, found)

		found, err = repo.Exists(context.Background(), "L2")
		require.NoError(mt, err)
		assert.False(mt, found)
	})
}
