package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/ingest"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	JobCampaigns = "sync-campaigns"
	JobLeads     = "sync-leads"
)

type EntryInfo struct {
	Name string     `json:"name"`
	Spec string     `json:"spec"`
	Next *time.Time `json:"next,omitempty"`
	Prev *time.Time `json:"prev,omitempty"`
}

type SchedulerService interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Entries() []EntryInfo
}

type job struct {
	name string
	spec string
	id   cron.EntryID
}

type SchedulerServiceImpl struct {
	schedule config.ScheduleConfig
	ingest   ingest.IngestService
	log      *zap.Logger

	mu      sync.Mutex
	cron    *cron.Cron
	jobs    []job
	timeout time.Duration
}

func NewSchedulerService(cfg *config.Config, svc ingest.IngestService, log *zap.Logger) SchedulerService {
	timeout := cfg.Schedule.RunTimeout
	if timeout <= 0 {
		timeout = 2 * time.Hour
	}
	return &SchedulerServiceImpl{
		schedule: cfg.Schedule,
		ingest:   svc,
		log:      log.Named("scheduler"),
		timeout:  timeout,
	}
}

// Start registers the configured sync schedules and starts ticking. An
// empty schedule leaves that sync to manual triggers.
func (s *SchedulerServiceImpl) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cl := cronLogger{log: s.log.Sugar()}
	c := cron.New(
		cron.WithLogger(cl),
		cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
	)

	specs := []struct {
		name string
		spec string
		kind ingest.Kind
	}{
		{JobCampaigns, s.schedule.Campaigns, ingest.KindCampaigns},
		{JobLeads, s.schedule.Leads, ingest.KindLeads},
	}
	s.jobs = s.jobs[:0]
	for _, sp := range specs {
		if sp.spec == "" {
			s.log.Info("Sync schedule disabled", zap.String("job", sp.name))
			continue
		}
		kind := sp.kind
		id, err := c.AddFunc(sp.spec, func() { s.run(kind) })
		if err != nil {
			return fmt.Errorf("invalid schedule for %s: %w", sp.name, err)
		}
		s.jobs = append(s.jobs, job{name: sp.name, spec: sp.spec, id: id})
		s.log.Info("Registered sync schedule", zap.String("job", sp.name), zap.String("spec", sp.spec))
	}

	c.Start()
	s.cron = c
	return nil
}

// Stop waits for running jobs to finish or for ctx to expire.
func (s *SchedulerServiceImpl) Stop(ctx context.Context) error {
	s.mu.Lock()
	c := s.cron
	s.mu.Unlock()
	if c == nil {
		return nil
	}

	select {
	case <-c.Stop().Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *SchedulerServiceImpl) Entries() []EntryInfo {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]EntryInfo, 0, len(s.jobs))
	for _, j := range s.jobs {
		info := EntryInfo{Name: j.name, Spec: j.spec}
		if s.cron != nil {
			e := s.cron.Entry(j.id)
			if !e.Next.IsZero() {
				next := e.Next
				info.Next = &next
			}
			if !e.Prev.IsZero() {
				prev := e.Prev
				info.Prev = &prev
			}
		}
		out = append(out, info)
	}
	return out
}

// run executes one sync under the configured timeout. The ingest service
// only checks the deadline between pages, so an expired run ends after the
// page it is writing.
func (s *SchedulerServiceImpl) run(kind ingest.Kind) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	var (
		summary *ingest.SyncSummary
		err     error
	)
	switch kind {
	case ingest.KindCampaigns:
		summary, err = s.ingest.SyncCampaigns(ctx, ingest.Options{})
	default:
		summary, err = s.ingest.SyncLeads(ctx, ingest.Options{})
	}

	switch {
	case errors.Is(err, ingest.ErrSyncInProgress):
		s.log.Info("Skipped scheduled sync, previous run still active", zap.String("kind", string(kind)))
	case err != nil:
		s.log.Error("Scheduled sync failed", zap.String("kind", string(kind)), zap.Error(err))
	default:
		s.log.Info("Scheduled sync completed",
			zap.String("kind", string(kind)),
			zap.String("run_id", summary.RunID),
			zap.Int("errors", len(summary.Errors)),
		)
	}
}
