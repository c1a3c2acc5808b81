package ingest

import (
	"context"
	"math/rand/v2"
	"net/url"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"go.uber.org/zap/zaptest"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/campaign"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/graph"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/lead"
)

type graphCall struct {
	path  string
	query url.Values
}

// fakeGraph serves canned JSON bodies keyed by path or next URL.
type fakeGraph struct {
	mu    sync.Mutex
	pages map[string]any
	errs  map[string]error
	calls []graphCall
	hook  func(path string)
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{pages: map[string]any{}, errs: map[string]error{}}
}

func (f *fakeGraph) GetJSON(ctx context.Context, path string, q url.Values, out any) error {
	f.mu.Lock()
	f.calls = append(f.calls, graphCall{path: path, query: q})
	body, ok := f.pages[path]
	err := f.errs[path]
	hook := f.hook
	f.mu.Unlock()

	if hook != nil {
		hook(path)
	}
	if err != nil {
		return err
	}
	if !ok {
		return &graph.UpstreamError{Status: 400, Code: 100, Message: "unsupported get request: " + path}
	}
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, out)
}

func (f *fakeGraph) callsTo(path string) []graphCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []graphCall
	for _, c := range f.calls {
		if c.path == path {
			out = append(out, c)
		}
	}
	return out
}

type obj = map[string]any

func page(data []any, next string) obj {
	p := obj{"data": data}
	if next != "" {
		p["paging"] = obj{"next": next}
	}
	return p
}

func leadGenCTA(formID any) obj {
	return obj{"type": "SIGN_UP", "value": obj{"lead_gen_form_id": formID}}
}

type fakeLeadRepo struct {
	mu        sync.Mutex
	leads     map[string]*lead.Lead
	failOn    map[string]error
	lostRaces map[string]bool
	inserts   int
}

func newFakeLeadRepo(existing ...string) *fakeLeadRepo {
	r := &fakeLeadRepo{leads: map[string]*lead.Lead{}, failOn: map[string]error{}, lostRaces: map[string]bool{}}
	for _, id := range existing {
		r.leads[id] = &lead.Lead{ExternalLeadID: id, LegacyID: id}
	}
	return r
}

func (r *fakeLeadRepo) Exists(ctx context.Context, externalID string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.leads[externalID]
	return ok, nil
}

func (r *fakeLeadRepo) InsertIfAbsent(ctx context.Context, l *lead.Lead) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.inserts++
	if err := r.failOn[l.ExternalLeadID]; err != nil {
		return false, err
	}
	if r.lostRaces[l.ExternalLeadID] {
		r.leads[l.ExternalLeadID] = &lead.Lead{ExternalLeadID: l.ExternalLeadID}
		return false, nil
	}
	if _, ok := r.leads[l.ExternalLeadID]; ok {
		return false, nil
	}
	cp := *l
	r.leads[l.ExternalLeadID] = &cp
	return true, nil
}

func (r *fakeLeadRepo) EnsureIndexes(ctx context.Context) error { return nil }

func (r *fakeLeadRepo) get(id string) *lead.Lead {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.leads[id]
}

type fakeCampaignRepo struct {
	mu      sync.Mutex
	byExt   map[string]*campaign.Campaign
	failOn  map[string]error
	finds   int
	upserts []*campaign.Campaign
}

func newFakeCampaignRepo(existing ...*campaign.Campaign) *fakeCampaignRepo {
	r := &fakeCampaignRepo{byExt: map[string]*campaign.Campaign{}, failOn: map[string]error{}}
	for _, c := range existing {
		r.byExt[c.ExternalID] = c
	}
	return r
}

func (r *fakeCampaignRepo) UpsertByExternalID(ctx context.Context, c *campaign.Campaign) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.failOn[c.ExternalID]; err != nil {
		return false, err
	}
	r.upserts = append(r.upserts, c)
	_, existed := r.byExt[c.ExternalID]
	r.byExt[c.ExternalID] = c
	return !existed, nil
}

func (r *fakeCampaignRepo) FindByExternalID(ctx context.Context, externalID string) (*campaign.Campaign, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.finds++
	return r.byExt[externalID], nil
}

func (r *fakeCampaignRepo) EnsureIndexes(ctx context.Context) error { return nil }

func testConfig(accounts ...string) *config.Config {
	if len(accounts) == 0 {
		accounts = []string{"act_1"}
	}
	return &config.Config{Meta: config.MetaConfig{
		AccessToken:       "tok",
		AdAccountIDs:      accounts,
		LeadsPageSize:     100,
		AdEffectiveStatus: []string{"ACTIVE"},
		DefaultLeadSource: "facebook_lead_ads",
		DefaultCountry:    "IN",
	}}
}

func newTestService(t *testing.T, cfg *config.Config, g graph.Getter, leads lead.LeadRepository, campaigns campaign.CampaignRepository) *IngestServiceImpl {
	t.Helper()
	assigner := lead.NewAssigner(rand.New(rand.NewPCG(1, 2)))
	return NewIngestService(cfg, NewSource(g), leads, campaigns, assigner, zaptest.NewLogger(t)).(*IngestServiceImpl)
}
