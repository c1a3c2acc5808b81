package ingest

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/campaign"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/lead"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/metrics"

	"go.uber.org/zap"
)

var (
	ErrSyncInProgress = errors.New("a sync of this kind is already running")
	errLeadWithoutID  = errors.New("lead row has no id")
	errCampaignNoID   = errors.New("campaign row has no id")
)

type IngestService interface {
	SyncCampaigns(ctx context.Context, opts Options) (*SyncSummary, error)
	SyncLeads(ctx context.Context, opts Options) (*SyncSummary, error)
	// LastSummary returns the most recent run of kind, finished or still in
	// flight, or nil when none ran since startup.
	LastSummary(kind Kind) *SyncSummary
	EnsureIndexes(ctx context.Context) error
}

type IngestServiceImpl struct {
	cfg          config.MetaConfig
	source       *Source
	leadRepo     lead.LeadRepository
	campaignRepo campaign.CampaignRepository
	normalizer   *lead.Normalizer
	assigner     *lead.Assigner
	log          *zap.Logger
	now          func() time.Time

	campaignsMu sync.Mutex
	leadsMu     sync.Mutex

	lastMu sync.RWMutex
	last   map[Kind]*Tracker
}

func NewIngestService(
	cfg *config.Config,
	source *Source,
	leadRepo lead.LeadRepository,
	campaignRepo campaign.CampaignRepository,
	assigner *lead.Assigner,
	log *zap.Logger,
) IngestService {
	return &IngestServiceImpl{
		cfg:          cfg.Meta,
		source:       source,
		leadRepo:     leadRepo,
		campaignRepo: campaignRepo,
		normalizer:   lead.NewNormalizer(cfg.Meta.DefaultLeadSource, cfg.Meta.DefaultCountry),
		assigner:     assigner,
		log:          log.Named("ingest"),
		now:          time.Now,
		last:         make(map[Kind]*Tracker),
	}
}

func (s *IngestServiceImpl) EnsureIndexes(ctx context.Context) error {
	if err := s.leadRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("lead indexes: %w", err)
	}
	if err := s.campaignRepo.EnsureIndexes(ctx); err != nil {
		return fmt.Errorf("campaign indexes: %w", err)
	}
	return nil
}

func (s *IngestServiceImpl) LastSummary(kind Kind) *SyncSummary {
	s.lastMu.RLock()
	t := s.last[kind]
	s.lastMu.RUnlock()
	if t == nil {
		return nil
	}
	return t.Snapshot()
}

type runParams struct {
	accounts []string
	forms    []string
	since    time.Time
	pageSize int
	statuses []string
}

// resolve merges per-run overrides over configuration and checks the
// preconditions no run can do without. The status filter applies to ads for
// lead runs and to campaigns for campaign runs.
func (s *IngestServiceImpl) resolve(kind Kind, opts Options) (runParams, error) {
	p := runParams{
		accounts: s.cfg.AdAccountIDs,
		forms:    s.cfg.FormIDs,
		since:    s.cfg.LeadsSince,
		pageSize: s.cfg.LeadsPageSize,
		statuses: s.cfg.AdEffectiveStatus,
	}
	if kind == KindCampaigns {
		p.statuses = s.cfg.CampaignEffectiveStatus
		if len(p.statuses) == 0 {
			p.statuses = config.DefaultCampaignStatuses
		}
	}
	if ids := config.NormalizeAdAccountIDs(opts.AccountIDs); len(ids) > 0 {
		p.accounts = ids
	}
	if len(opts.FormIDs) > 0 {
		p.forms = opts.FormIDs
	}
	if !opts.Since.IsZero() {
		p.since = opts.Since
	}
	if opts.PageSize > 0 {
		p.pageSize = opts.PageSize
	}
	if len(opts.Statuses) > 0 {
		p.statuses = opts.Statuses
	}

	check := s.cfg
	check.AdAccountIDs = p.accounts
	if err := check.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func (s *IngestServiceImpl) begin(kind Kind) *Tracker {
	t := NewTracker(kind, s.now())
	s.lastMu.Lock()
	s.last[kind] = t
	s.lastMu.Unlock()
	return t
}

func (s *IngestServiceImpl) finish(t *Tracker, kind Kind) *SyncSummary {
	summary := t.Finish(s.now())
	metrics.SyncDuration.WithLabelValues(string(kind)).Observe(summary.FinishedAt.Sub(summary.StartedAt).Seconds())
	s.log.Info("Sync finished",
		zap.String("kind", string(kind)),
		zap.String("run_id", summary.RunID),
		zap.Int("accounts", summary.AccountsProcessed),
		zap.Int("campaigns_upserted", summary.CampaignsUpserted),
		zap.Int("leads_fetched", summary.LeadsFetched),
		zap.Int("leads_inserted", summary.LeadsInserted),
		zap.Int("leads_skipped", summary.LeadsSkipped),
		zap.Int("errors", len(summary.Errors)),
	)
	return summary
}

func (s *IngestServiceImpl) SyncCampaigns(ctx context.Context, opts Options) (*SyncSummary, error) {
	p, err := s.resolve(KindCampaigns, opts)
	if err != nil {
		return nil, err
	}
	if !s.campaignsMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.campaignsMu.Unlock()

	t := s.begin(KindCampaigns)
	runID := t.RunID()

	for _, account := range p.accounts {
		log := s.log.With(zap.String("run_id", runID), zap.String("ad_account", account))

		err := s.source.ListCampaigns(ctx, account, p.statuses, func(rows []CampaignRow) error {
			// a fetched page is always written out; cancellation stops the
			// run before the next page
			writeCtx := context.WithoutCancel(ctx)
			for _, row := range rows {
				s.upsertCampaign(writeCtx, log, t, account, row)
			}
			return ctx.Err()
		})
		if err != nil {
			log.Warn("Campaign sync aborted for account", zap.String("scope", ScopeAdAccount), zap.Error(err))
			t.AddError(ScopeAdAccount, account, err)
			continue
		}
		t.Update(func(sum *SyncSummary) { sum.AccountsProcessed++ })
	}

	return s.finish(t, KindCampaigns), nil
}

func (s *IngestServiceImpl) upsertCampaign(ctx context.Context, log *zap.Logger, t *Tracker, account string, row CampaignRow) {
	t.Update(func(sum *SyncSummary) { sum.CampaignsFetched++ })
	if row.ID == "" {
		t.AddError(ScopeCampaignUpsert, account, errCampaignNoID)
		return
	}

	c := MapCampaign(account, row)
	if _, err := s.campaignRepo.UpsertByExternalID(ctx, c); err != nil {
		log.Warn("Campaign upsert failed", zap.String("scope", ScopeCampaignUpsert), zap.String("campaign_id", row.ID), zap.Error(err))
		t.AddError(ScopeCampaignUpsert, row.ID, err)
		return
	}
	metrics.CampaignsUpserted.Inc()
	t.Update(func(sum *SyncSummary) { sum.CampaignsUpserted++ })
}

func (s *IngestServiceImpl) SyncLeads(ctx context.Context, opts Options) (*SyncSummary, error) {
	p, err := s.resolve(KindLeads, opts)
	if err != nil {
		return nil, err
	}
	if !s.leadsMu.TryLock() {
		return nil, ErrSyncInProgress
	}
	defer s.leadsMu.Unlock()

	t := s.begin(KindLeads)
	runID := t.RunID()
	cache := NewCampaignCache(s.campaignRepo)

	for _, account := range p.accounts {
		log := s.log.With(zap.String("run_id", runID), zap.String("ad_account", account))

		ads, err := s.source.ListAdsWithCreatives(ctx, account, p.statuses)
		if err != nil {
			log.Warn("Form discovery failed", zap.String("scope", ScopeFormDiscovery), zap.Error(err))
			t.AddError(ScopeFormDiscovery, account, err)
			continue
		}

		forms := FilterAllowed(DetectFormIDs(ads), p.forms)
		t.Update(func(sum *SyncSummary) { sum.FormsDetected += len(forms) })
		idx := BuildIndex(ads)
		log.Info("Discovered lead forms", zap.Int("ads", len(ads)), zap.Strings("forms", forms))

		for _, formID := range forms {
			formLog := log.With(zap.String("form_id", formID))
			_, err := s.source.ProcessFormLeads(ctx, formID, p.pageSize, p.since, func(rows []RawLead) error {
				writeCtx := context.WithoutCancel(ctx)
				for i := range rows {
					s.ingestLead(writeCtx, formLog, t, idx, cache, formID, rows[i])
				}
				return ctx.Err()
			})
			if err != nil {
				formLog.Warn("Form sync aborted", zap.String("scope", ScopeForm), zap.Error(err))
				t.AddError(ScopeForm, formID, err)
				continue
			}
			t.Update(func(sum *SyncSummary) { sum.FormsSynced++ })
		}
		t.Update(func(sum *SyncSummary) { sum.AccountsProcessed++ })
	}

	return s.finish(t, KindLeads), nil
}

// ingestLead persists one row. Failures are recorded against the row and
// never stop the page.
func (s *IngestServiceImpl) ingestLead(ctx context.Context, log *zap.Logger, t *Tracker, idx AttributionIndex, cache *CampaignCache, formID string, row RawLead) {
	metrics.LeadsFetched.Inc()
	t.Update(func(sum *SyncSummary) { sum.LeadsFetched++ })

	inserted, err := s.storeLead(ctx, idx, cache, formID, row)
	if err != nil {
		id := row.ID
		if id == "" {
			id = formID
		}
		log.Warn("Lead upsert failed", zap.String("scope", ScopeLeadUpsert), zap.String("lead_id", row.ID), zap.Error(err))
		t.AddError(ScopeLeadUpsert, id, err)
		return
	}
	if inserted {
		metrics.LeadsInserted.Inc()
		t.Update(func(sum *SyncSummary) { sum.LeadsInserted++ })
		return
	}
	metrics.LeadsSkipped.Inc()
	t.Update(func(sum *SyncSummary) { sum.LeadsSkipped++ })
}

func (s *IngestServiceImpl) storeLead(ctx context.Context, idx AttributionIndex, cache *CampaignCache, formID string, row RawLead) (bool, error) {
	if row.ID == "" {
		return false, errLeadWithoutID
	}
	idx.Backfill(&row)
	if row.FormID == "" {
		row.FormID = formID
	}

	// Known leads are skipped before assignment so a re-run never draws an
	// operator for a row it will not insert.
	exists, err := s.leadRepo.Exists(ctx, row.ID)
	if err != nil {
		return false, fmt.Errorf("lookup lead: %w", err)
	}
	if exists {
		return false, nil
	}

	fields := s.normalizer.Normalize(row.FieldData)
	contact := lead.ExtractContact(fields)

	camp, err := cache.Get(ctx, row.CampaignID)
	if err != nil {
		return false, fmt.Errorf("lookup campaign %s: %w", row.CampaignID, err)
	}

	submittedAt, ok := row.SubmittedAt()
	if !ok {
		submittedAt = s.now().UTC()
	}

	l := &lead.Lead{
		ExternalLeadID: row.ID,
		LegacyID:       row.ID,
		FormID:         row.FormID,
		AdID:           row.AdID,
		AdSetID:        row.AdSetID,
		CampaignID:     row.CampaignID,
		AdCreativeID:   row.AdCreativeID,
		SubmittedAt:    submittedAt,
		Fields:         fields,
		Name:           contact.Name,
		Phone:          contact.Phone,
		Email:          contact.Email,
		City:           contact.City,
		State:          contact.State,
		Source:         lead.SourceFacebook,
		Status:         lead.StatusNew,
		CreatedAt:      s.now(),
	}
	if camp != nil {
		ref := camp.ID
		l.CampaignRef = &ref
		l.AssignedTo = s.assigner.Pick(camp.AssignedCallers)
	}

	return s.leadRepo.InsertIfAbsent(ctx, l)
}
