package models

import (
	"time"
)

type ContextKey string

// Log is one row of the logs collection written by the logger's DB tee.
type Log struct {
	Message      string    `bson:"message" json:"message"`
	LogLevelId   int       `bson:"log_level_id" json:"log_level_id"`
	Scope        string    `bson:"scope,omitempty" json:"scope,omitempty"`
	AdAccount    string    `bson:"ad_account,omitempty" json:"ad_account,omitempty"`
	FormID       string    `bson:"form_id,omitempty" json:"form_id,omitempty"`
	RunID        string    `bson:"run_id,omitempty" json:"run_id,omitempty"`
	Caller       string    `bson:"caller,omitempty" json:"caller,omitempty"`
	AppId        string    `bson:"app_id" json:"app_id"`
	CreatedOnUtc time.Time `bson:"created_on_utc" json:"created_on_utc"`
}
