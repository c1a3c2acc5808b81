package lead

import (
	"context"
	"errors"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/database"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var ErrMissingExternalID = errors.New("lead external id is required")

type LeadRepository interface {
	// Exists reports whether a lead with this external or legacy id is stored.
	Exists(ctx context.Context, externalID string) (bool, error)
	// InsertIfAbsent stores the lead unless one with the same external or
	// legacy id exists. Stored leads are never modified.
	InsertIfAbsent(ctx context.Context, l *Lead) (bool, error)
	EnsureIndexes(ctx context.Context) error
}

type LeadRepositoryImpl struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewLeadRepository(db *database.MongodbDB) LeadRepository {
	return &LeadRepositoryImpl{
		collection: db.DB.Collection("leads"),
		now:        time.Now,
	}
}

func (r *LeadRepositoryImpl) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "external_lead_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_external_lead_id"),
		},
		{
			Keys:    bson.D{{Key: "legacy_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true).SetName("uniq_legacy_id"),
		},
		{
			Keys: bson.D{{Key: "form_id", Value: 1}, {Key: "submitted_at", Value: -1}},
		},
	})
	return err
}

func byIdentity(externalID string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"external_lead_id": externalID},
		bson.M{"legacy_id": externalID},
	}}
}

func (r *LeadRepositoryImpl) Exists(ctx context.Context, externalID string) (bool, error) {
	if externalID == "" {
		return false, ErrMissingExternalID
	}
	err := r.collection.FindOne(ctx, byIdentity(externalID), options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *LeadRepositoryImpl) InsertIfAbsent(ctx context.Context, l *Lead) (bool, error) {
	if l.ExternalLeadID == "" {
		return false, ErrMissingExternalID
	}
	if l.LegacyID == "" {
		l.LegacyID = l.ExternalLeadID
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = r.now()
	}
	if l.Status == "" {
		l.Status = StatusNew
	}

	res, err := r.collection.UpdateOne(ctx,
		byIdentity(l.ExternalLeadID),
		bson.M{"$setOnInsert": l},
		options.Update().SetUpsert(true),
	)
	if mongo.IsDuplicateKeyError(err) {
		// Lost an insert race to another run; the stored copy wins.
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}
