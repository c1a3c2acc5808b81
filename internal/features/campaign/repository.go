package campaign

import (
	"context"
	"errors"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type CampaignRepository interface {
	// UpsertByExternalID overwrites the synced fields of the campaign with
	// the same external id, creating it when absent. It reports whether a
	// new document was inserted.
	UpsertByExternalID(ctx context.Context, c *Campaign) (bool, error)
	// FindByExternalID returns nil, nil when no campaign matches.
	FindByExternalID(ctx context.Context, externalID string) (*Campaign, error)
	EnsureIndexes(ctx context.Context) error
}

type CampaignRepositoryImpl struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewCampaignRepository(db *database.MongodbDB) CampaignRepository {
	return &CampaignRepositoryImpl{
		collection: db.DB.Collection("campaigns"),
		now:        time.Now,
	}
}

func (r *CampaignRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "external_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_external_id"),
		},
		{
			Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "status", Value: 1}},
		},
	})
	return err
}

func (r *CampaignRepositoryImpl) UpsertByExternalID(ctx context.Context, c *Campaign) (bool, error) {
	if c.ExternalID == "" {
		return false, errors.New("campaign external id is required")
	}
	now := r.now()
	c.LastSyncedAt = now
	c.UpdatedAt = now

	// Full replace of the tracked fields, metrics included
	set := bson.M{
		"account_id":     c.AccountID,
		"name":           c.Name,
		"status":         c.Status,
		"objective":      c.Objective,
		"start_date":     c.StartDate,
		"end_date":       c.EndDate,
		"budget":         c.Budget,
		"metrics":        c.Metrics,
		"source":         c.Source,
		"last_synced_at": now,
		"updated_at":     now,
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"created_at":       now,
			"assigned_callers": bson.A{},
		},
	}
	filter := bson.M{"external_id": c.ExternalID}
	opts := options.Update().SetUpsert(true)

	res, err := r.collection.UpdateOne(ctx, filter, update, opts)
	if mongo.IsDuplicateKeyError(err) {
		// A concurrent run inserted it first; the retry matches and updates.
		res, err = r.collection.UpdateOne(ctx, filter, update, opts)
	}
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func (r *CampaignRepositoryImpl) FindByExternalID(ctx context.Context, externalID string) (*Campaign, error) {
	var c Campaign
	err := r.collection.FindOne(ctx, bson.M{"external_id": externalID}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}
