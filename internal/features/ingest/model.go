package ingest

import (
	"bytes"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/lead"
)

// FlexID accepts identifiers the platform encodes either as strings or as
// bare JSON numbers.
type FlexID string

func (id *FlexID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexID(strings.TrimSpace(s))
		return nil
	}
	*id = FlexID(b)
	return nil
}

// Number accepts numeric values sent as JSON numbers or numeric strings.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		*n = 0
		return nil
	}
	s := string(b)
	if b[0] == '"' {
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			*n = 0
			return nil
		}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return err
	}
	*n = Number(v)
	return nil
}

type CallToAction struct {
	Type  string `json:"type"`
	Value *struct {
		LeadGenFormID FlexID `json:"lead_gen_form_id"`
	} `json:"value,omitempty"`
}

type StoryData struct {
	CallToAction *CallToAction `json:"call_to_action,omitempty"`
}

type ObjectStorySpec struct {
	LinkData  *StoryData `json:"link_data,omitempty"`
	VideoData *StoryData `json:"video_data,omitempty"`
}

type Creative struct {
	ID               string           `json:"id"`
	ObjectStorySpec  *ObjectStorySpec `json:"object_story_spec,omitempty"`
	CallToActionType string           `json:"call_to_action_type,omitempty"`
	CallToAction     *CallToAction    `json:"call_to_action,omitempty"`
	AssetFeedSpec    json.RawMessage  `json:"asset_feed_spec,omitempty"`
}

type Ad struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	CampaignID string    `json:"campaign_id"`
	AdSetID    string    `json:"adset_id"`
	Creative   *Creative `json:"creative,omitempty"`
}

// RawLead is one row of a form's leads edge.
type RawLead struct {
	ID          string          `json:"id"`
	CreatedTime string          `json:"created_time"`
	AdID        string          `json:"ad_id"`
	AdSetID     string          `json:"adset_id"`
	CampaignID  string          `json:"campaign_id"`
	FormID      string          `json:"form_id"`
	FieldData   []lead.RawField `json:"field_data"`

	// Not sent by the platform; filled from the attribution index.
	AdCreativeID string `json:"-"`
}

const graphTimeLayout = "2006-01-02T15:04:05-0700"

// SubmittedAt parses created_time. The boolean is false when the row carries
// no usable timestamp.
func (r RawLead) SubmittedAt() (time.Time, bool) {
	if r.CreatedTime == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{graphTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, r.CreatedTime); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

type Action struct {
	ActionType string `json:"action_type"`
	Value      Number `json:"value"`
}

type Insights struct {
	Impressions Number   `json:"impressions"`
	Clicks      Number   `json:"clicks"`
	Spend       Number   `json:"spend"`
	CPC         Number   `json:"cpc"`
	CTR         Number   `json:"ctr"`
	Actions     []Action `json:"actions"`
}

type CampaignRow struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Status          string `json:"status"`
	EffectiveStatus string `json:"effective_status"`
	Objective       string `json:"objective"`
	StartTime       string `json:"start_time"`
	StopTime        string `json:"stop_time"`
	DailyBudget     Number `json:"daily_budget"`
	LifetimeBudget  Number `json:"lifetime_budget"`
	Insights        *struct {
		Data []Insights `json:"data"`
	} `json:"insights,omitempty"`
}

// Options narrows or overrides the configured sync inputs for one run.
// Zero values fall back to configuration.
type Options struct {
	AccountIDs []string  `json:"accountIds"`
	FormIDs    []string  `json:"formIds"`
	Since      time.Time `json:"since"`
	PageSize   int       `json:"pageSize"`
	Statuses   []string  `json:"effectiveStatus"`
}
