package ingest

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/goccy/go-json"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/graph"
)

const (
	adFields       = "id,name,campaign_id,adset_id,creative{id,object_story_spec,call_to_action_type,call_to_action,asset_feed_spec}"
	leadFields     = "id,created_time,ad_id,adset_id,campaign_id,form_id,field_data"
	campaignFields = "id,name,status,effective_status,objective,start_time,stop_time,daily_budget,lifetime_budget," +
		"insights.date_preset(maximum){impressions,clicks,spend,cpc,ctr,actions}"

	adsPageSize       = 200
	campaignsPageSize = 100
	defaultLeadsPage  = 100
)

// Source reads ads, campaigns and leads from the Graph API.
type Source struct {
	client graph.Getter
}

func NewSource(client graph.Getter) *Source {
	return &Source{client: client}
}

func statusFilter(statuses []string) (string, error) {
	if len(statuses) == 0 {
		statuses = []string{"ACTIVE"}
	}
	b, err := json.Marshal(statuses)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ListAdsWithCreatives returns every ad of the account together with its
// creative. Ad volume per account is bounded, so all pages are kept.
func (s *Source) ListAdsWithCreatives(ctx context.Context, accountID string, statuses []string) ([]Ad, error) {
	filter, err := statusFilter(statuses)
	if err != nil {
		return nil, err
	}
	q := url.Values{}
	q.Set("fields", adFields)
	q.Set("effective_status", filter)
	q.Set("limit", strconv.Itoa(adsPageSize))

	var ads []Ad
	err = graph.Paginate(ctx, s.client, accountID+"/ads", q, func(page []Ad) error {
		ads = append(ads, page...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list ads for %s: %w", accountID, err)
	}
	return ads, nil
}

// ListCampaigns streams the account's campaigns with lifetime insights
// attached, one page at a time.
func (s *Source) ListCampaigns(ctx context.Context, accountID string, statuses []string, fn func([]CampaignRow) error) error {
	filter, err := statusFilter(statuses)
	if err != nil {
		return err
	}
	q := url.Values{}
	q.Set("fields", campaignFields)
	q.Set("effective_status", filter)
	q.Set("limit", strconv.Itoa(campaignsPageSize))

	if err := graph.Paginate(ctx, s.client, accountID+"/campaigns", q, fn); err != nil {
		return fmt.Errorf("list campaigns for %s: %w", accountID, err)
	}
	return nil
}

type leadFilter struct {
	Field    string `json:"field"`
	Operator string `json:"operator"`
	Value    int64  `json:"value"`
}

// ProcessFormLeads pages through a form's leads submitted at or after since
// and hands each page to onBatch before asking for the next one. A zero since
// fetches everything. It returns the number of rows fetched.
func (s *Source) ProcessFormLeads(ctx context.Context, formID string, pageSize int, since time.Time, onBatch func([]RawLead) error) (int, error) {
	if pageSize <= 0 {
		pageSize = defaultLeadsPage
	}
	q := url.Values{}
	q.Set("fields", leadFields)
	q.Set("limit", strconv.Itoa(pageSize))
	if !since.IsZero() {
		b, err := json.Marshal([]leadFilter{{
			Field:    "time_created",
			Operator: "GREATER_THAN_OR_EQUAL",
			Value:    since.Unix(),
		}})
		if err != nil {
			return 0, err
		}
		q.Set("filtering", string(b))
	}

	fetched := 0
	err := graph.Paginate(ctx, s.client, formID+"/leads", q, func(page []RawLead) error {
		fetched += len(page)
		return onBatch(page)
	})
	if err != nil {
		return fetched, fmt.Errorf("leads for form %s: %w", formID, err)
	}
	return fetched, nil
}
