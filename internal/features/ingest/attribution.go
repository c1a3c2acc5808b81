package ingest

type Attribution struct {
	AdSetID      string
	CampaignID   string
	AdCreativeID string
}

// AttributionIndex maps an ad id to the ids it belongs to. It lives for one
// account pass.
type AttributionIndex map[string]Attribution

func BuildIndex(ads []Ad) AttributionIndex {
	idx := make(AttributionIndex, len(ads))
	for _, ad := range ads {
		if ad.ID == "" {
			continue
		}
		a := Attribution{AdSetID: ad.AdSetID, CampaignID: ad.CampaignID}
		if ad.Creative != nil {
			a.AdCreativeID = ad.Creative.ID
		}
		idx[ad.ID] = a
	}
	return idx
}

// Backfill fills attribution the lead row left empty. Values the row already
// carries are kept.
func (idx AttributionIndex) Backfill(r *RawLead) {
	a, ok := idx[r.AdID]
	if !ok {
		return
	}
	if r.AdSetID == "" {
		r.AdSetID = a.AdSetID
	}
	if r.CampaignID == "" {
		r.CampaignID = a.CampaignID
	}
	if r.AdCreativeID == "" {
		r.AdCreativeID = a.AdCreativeID
	}
}
