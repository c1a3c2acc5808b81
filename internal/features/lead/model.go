package lead

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	StatusNew      = "new"
	SourceFacebook = "facebook"
)

// Lead is a form submission ingested from the ad platform. The pipeline only
// ever inserts it; later changes belong to the CRUD layer.
type Lead struct {
	ID             primitive.ObjectID  `json:"id" bson:"_id,omitempty"`
	ExternalLeadID string              `json:"external_lead_id" bson:"external_lead_id"`
	LegacyID       string              `json:"legacy_id" bson:"legacy_id"`
	FormID         string              `json:"form_id" bson:"form_id"`
	AdID           string              `json:"ad_id,omitempty" bson:"ad_id,omitempty"`
	AdSetID        string              `json:"adset_id,omitempty" bson:"adset_id,omitempty"`
	CampaignID     string              `json:"campaign_id,omitempty" bson:"campaign_id,omitempty"`
	AdCreativeID   string              `json:"ad_creative_id,omitempty" bson:"ad_creative_id,omitempty"`
	CampaignRef    *primitive.ObjectID `json:"campaign_ref,omitempty" bson:"campaign_ref,omitempty"`
	SubmittedAt    time.Time           `json:"submitted_at" bson:"submitted_at"`
	Fields         Fields              `json:"fields" bson:"fields"`
	Name           string              `json:"name,omitempty" bson:"name,omitempty"`
	Phone          string              `json:"phone,omitempty" bson:"phone,omitempty"`
	Email          string              `json:"email,omitempty" bson:"email,omitempty"`
	City           string              `json:"city,omitempty" bson:"city,omitempty"`
	State          string              `json:"state,omitempty" bson:"state,omitempty"`
	Source         string              `json:"source" bson:"source"`
	Status         string              `json:"status" bson:"status"`
	AssignedTo     *string             `json:"assigned_to" bson:"assigned_to"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
}
