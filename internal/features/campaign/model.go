package campaign

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusPaused    Status = "paused"
	StatusCompleted Status = "completed"
	StatusDraft     Status = "draft"
)

const SourceFacebook = "facebook"

// CallerWeight is one roster entry used to route new leads. Percentages are
// relative weights and need not add up to 100.
type CallerWeight struct {
	CallerID   primitive.ObjectID `json:"caller_id" bson:"caller_id"`
	Percentage float64            `json:"percentage" bson:"percentage"`
}

type Metrics struct {
	Impressions int64   `json:"impressions" bson:"impressions"`
	Clicks      int64   `json:"clicks" bson:"clicks"`
	Spend       float64 `json:"spend" bson:"spend"`
	Leads       int64   `json:"leads" bson:"leads"`
	CTR         float64 `json:"ctr" bson:"ctr"`
	CPC         float64 `json:"cpc" bson:"cpc"`
}

// Campaign is the CRM's record of an ad campaign. The sync pipeline owns
// every field except AssignedCallers, which the CRUD layer maintains.
type Campaign struct {
	ID              primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	ExternalID      string             `json:"external_id" bson:"external_id"`
	AccountID       string             `json:"account_id" bson:"account_id"`
	Name            string             `json:"name" bson:"name"`
	Status          Status             `json:"status" bson:"status"`
	Objective       string             `json:"objective,omitempty" bson:"objective,omitempty"`
	StartDate       *time.Time         `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate         *time.Time         `json:"end_date,omitempty" bson:"end_date,omitempty"`
	Budget          float64            `json:"budget" bson:"budget"`
	Metrics         Metrics            `json:"metrics" bson:"metrics"`
	AssignedCallers []CallerWeight     `json:"assigned_callers" bson:"assigned_callers"`
	Source          string             `json:"source" bson:"source"`
	LastSyncedAt    time.Time          `json:"last_synced_at" bson:"last_synced_at"`
	CreatedAt       time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt       time.Time          `json:"updated_at" bson:"updated_at"`
}
