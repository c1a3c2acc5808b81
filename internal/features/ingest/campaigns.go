package ingest

import (
	"strings"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/campaign"
)

var leadActionTypes = map[string]struct{}{
	"lead":                             {},
	"leadgen_grouped":                  {},
	"onsite_conversion.lead_grouped":   {},
	"offsite_conversion.fb_pixel_lead": {},
}

// MapStatus folds the platform's campaign statuses into the CRM's four.
func MapStatus(platform string) campaign.Status {
	switch strings.ToUpper(strings.TrimSpace(platform)) {
	case "ACTIVE":
		return campaign.StatusActive
	case "PAUSED", "CAMPAIGN_PAUSED", "ADSET_PAUSED":
		return campaign.StatusPaused
	case "ARCHIVED", "DELETED", "COMPLETED":
		return campaign.StatusCompleted
	default:
		return campaign.StatusDraft
	}
}

// MapCampaign converts a campaigns row to the local shape. Budgets arrive in
// minor currency units.
func MapCampaign(accountID string, row CampaignRow) *campaign.Campaign {
	status := row.EffectiveStatus
	if status == "" {
		status = row.Status
	}

	budget := float64(row.DailyBudget)
	if budget <= 0 {
		budget = float64(row.LifetimeBudget)
	}

	c := &campaign.Campaign{
		ExternalID: row.ID,
		AccountID:  accountID,
		Name:       row.Name,
		Status:     MapStatus(status),
		Objective:  row.Objective,
		StartDate:  parseGraphTime(row.StartTime),
		EndDate:    parseGraphTime(row.StopTime),
		Budget:     budget / 100,
		Source:     campaign.SourceFacebook,
	}
	if row.Insights != nil && len(row.Insights.Data) > 0 {
		c.Metrics = mapMetrics(row.Insights.Data[0])
	}
	return c
}

func mapMetrics(in Insights) campaign.Metrics {
	m := campaign.Metrics{
		Impressions: int64(in.Impressions),
		Clicks:      int64(in.Clicks),
		Spend:       float64(in.Spend),
		CTR:         float64(in.CTR),
		CPC:         float64(in.CPC),
	}
	// The same leads are reported under several action aliases
	for _, a := range in.Actions {
		if _, ok := leadActionTypes[a.ActionType]; ok && int64(a.Value) > m.Leads {
			m.Leads = int64(a.Value)
		}
	}
	if m.CTR == 0 && m.Impressions > 0 {
		m.CTR = float64(m.Clicks) * 100 / float64(m.Impressions)
	}
	if m.CPC == 0 && m.Clicks > 0 {
		m.CPC = m.Spend / float64(m.Clicks)
	}
	return m
}

func parseGraphTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{graphTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t
		}
	}
	return nil
}
