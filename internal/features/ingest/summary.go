package ingest

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/metrics"
)

type Kind string

const (
	KindCampaigns Kind = "campaigns"
	KindLeads     Kind = "leads"
)

// Error scopes recorded in a summary.
const (
	ScopeAdAccount      = "ad-account"
	ScopeFormDiscovery  = "form-discovery"
	ScopeForm           = "form"
	ScopeCampaignUpsert = "campaign-upsert"
	ScopeLeadUpsert     = "lead-upsert"
)

type SyncError struct {
	Scope   string `json:"scope"`
	ID      string `json:"id"`
	Message string `json:"message"`
}

// SyncSummary is the outcome of one sync run. It is never persisted.
type SyncSummary struct {
	RunID             string      `json:"run_id"`
	Kind              Kind        `json:"kind"`
	StartedAt         time.Time   `json:"started_at"`
	FinishedAt        *time.Time  `json:"finished_at,omitempty"`
	AccountsProcessed int         `json:"accounts_processed"`
	CampaignsFetched  int         `json:"campaigns_fetched"`
	CampaignsUpserted int         `json:"campaigns_upserted"`
	FormsDetected     int         `json:"forms_detected"`
	FormsSynced       int         `json:"forms_synced"`
	LeadsFetched      int         `json:"leads_fetched"`
	LeadsInserted     int         `json:"leads_inserted"`
	LeadsSkipped      int         `json:"leads_skipped"`
	Errors            []SyncError `json:"errors"`
}

// Tracker accumulates a SyncSummary while a run is in flight. Readers may
// call Snapshot concurrently with the run.
type Tracker struct {
	mu sync.Mutex
	s  SyncSummary
}

func NewTracker(kind Kind, now time.Time) *Tracker {
	return &Tracker{s: SyncSummary{
		RunID:     uuid.NewString(),
		Kind:      kind,
		StartedAt: now,
		Errors:    []SyncError{},
	}}
}

func (t *Tracker) RunID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.s.RunID
}

// Update applies fn to the summary under the tracker's lock.
func (t *Tracker) Update(fn func(s *SyncSummary)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fn(&t.s)
}

func (t *Tracker) AddError(scope, id string, err error) {
	metrics.SyncErrors.WithLabelValues(scope).Inc()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.s.Errors = append(t.s.Errors, SyncError{Scope: scope, ID: id, Message: err.Error()})
}

func (t *Tracker) Finish(now time.Time) *SyncSummary {
	t.mu.Lock()
	t.s.FinishedAt = &now
	t.mu.Unlock()
	return t.Snapshot()
}

// Snapshot returns a copy that is safe to hand to another goroutine.
func (t *Tracker) Snapshot() *SyncSummary {
	t.mu.Lock()
	defer t.mu.Unlock()
	cp := t.s
	cp.Errors = append([]SyncError{}, t.s.Errors...)
	if t.s.FinishedAt != nil {
		f := *t.s.FinishedAt
		cp.FinishedAt = &f
	}
	return &cp
}
