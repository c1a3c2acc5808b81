package ingest

import (
	"context"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/campaign"
)

// CampaignCache memoizes campaign lookups by platform id for a single run,
// misses included. It is not safe for concurrent use; a run is sequential.
type CampaignCache struct {
	repo    campaign.CampaignRepository
	entries map[string]*campaign.Campaign
}

func NewCampaignCache(repo campaign.CampaignRepository) *CampaignCache {
	return &CampaignCache{
		repo:    repo,
		entries: make(map[string]*campaign.Campaign),
	}
}

// Get returns the local campaign for externalID, or nil when none is stored.
// Lookup errors are not cached.
func (c *CampaignCache) Get(ctx context.Context, externalID string) (*campaign.Campaign, error) {
	if externalID == "" {
		return nil, nil
	}
	if cached, ok := c.entries[externalID]; ok {
		return cached, nil
	}
	found, err := c.repo.FindByExternalID(ctx, externalID)
	if err != nil {
		return nil, err
	}
	c.entries[externalID] = found
	return found, nil
}

func (c *CampaignCache) Len() int { return len(c.entries) }
