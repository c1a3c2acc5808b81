package scheduler

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/ingest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

type fakeIngest struct {
	mu        sync.Mutex
	campaigns int
	leads     int
	err       error
	deadlines []time.Time
}

func (f *fakeIngest) SyncCampaigns(ctx context.Context, opts ingest.Options) (*ingest.SyncSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campaigns++
	if d, ok := ctx.Deadline(); ok {
		f.deadlines = append(f.deadlines, d)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &ingest.SyncSummary{RunID: "c", Kind: ingest.KindCampaigns}, nil
}

func (f *fakeIngest) SyncLeads(ctx context.Context, opts ingest.Options) (*ingest.SyncSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.leads++
	if d, ok := ctx.Deadline(); ok {
		f.deadlines = append(f.deadlines, d)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &ingest.SyncSummary{RunID: "l", Kind: ingest.KindLeads}, nil
}

func (f *fakeIngest) LastSummary(kind ingest.Kind) *ingest.SyncSummary { return nil }

func (f *fakeIngest) EnsureIndexes(ctx context.Context) error { return nil }

func newScheduler(schedule config.ScheduleConfig, svc ingest.IngestService) (*SchedulerServiceImpl, *observer.ObservedLogs) {
	core, logs := observer.New(zap.DebugLevel)
	cfg := &config.Config{Schedule: schedule}
	return NewSchedulerService(cfg, svc, zap.New(core)).(*SchedulerServiceImpl), logs
}

func TestStartRegistersConfiguredSchedules(t *testing.T) {
	s, _ := newScheduler(config.ScheduleConfig{Campaigns: "0 * * * *", Leads: "*/15 * * * *"}, &fakeIngest{})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	entries := s.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, JobCampaigns, entries[0].Name)
	assert.Equal(t, "0 * * * *", entries[0].Spec)
	assert.Equal(t, JobLeads, entries[1].Name)
	for _, e := range entries {
		require.NotNil(t, e.Next, e.Name)
		assert.Nil(t, e.Prev, e.Name)
	}
}

func TestStartSkipsEmptySchedules(t *testing.T) {
	s, logs := newScheduler(config.ScheduleConfig{Leads: "@every 1h"}, &fakeIngest{})

	require.NoError(t, s.Start(context.Background()))
	defer s.Stop(context.Background())

	entries := s.Entries()
	require.Len(t, entries, 1)
	assert.Equal(t, JobLeads, entries[0].Name)
	assert.Equal(t, 1, logs.FilterMessage("Sync schedule disabled").Len())
}

func TestStartRejectsInvalidSchedule(t *testing.T) {
	s, _ := newScheduler(config.ScheduleConfig{Campaigns: "every tuesday"}, &fakeIngest{})
	assert.Error(t, s.Start(context.Background()))
}

func TestStopWithoutStart(t *testing.T) {
	s, _ := newScheduler(config.ScheduleConfig{}, &fakeIngest{})
	assert.NoError(t, s.Stop(context.Background()))
	assert.Empty(t, s.Entries())
}

func TestRunDispatchesByKind(t *testing.T) {
	svc := &fakeIngest{}
	s, logs := newScheduler(config.ScheduleConfig{}, svc)

	s.run(ingest.KindCampaigns)
	s.run(ingest.KindLeads)
	s.run(ingest.KindLeads)

	assert.Equal(t, 1, svc.campaigns)
	assert.Equal(t, 2, svc.leads)
	assert.Equal(t, 3, logs.FilterMessage("Scheduled sync completed").Len())
}

func TestRunLogsOverlapAndFailure(t *testing.T) {
	svc := &fakeIngest{err: ingest.ErrSyncInProgress}
	s, logs := newScheduler(config.ScheduleConfig{}, svc)

	s.run(ingest.KindLeads)
	assert.Equal(t, 1, logs.FilterMessage("Skipped scheduled sync, previous run still active").Len())

	svc.err = errors.New("meta access token is not configured")
	s.run(ingest.KindCampaigns)
	failed := logs.FilterMessage("Scheduled sync failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zap.ErrorLevel, failed[0].Level)
}

func TestRunUsesConfiguredTimeout(t *testing.T) {
	svc := &fakeIngest{}
	core, _ := observer.New(zap.DebugLevel)
	cfg := &config.Config{Schedule: config.ScheduleConfig{RunTimeout: 10 * time.Minute}}
	s := NewSchedulerService(cfg, svc, zap.New(core)).(*SchedulerServiceImpl)

	before := time.Now()
	s.run(ingest.KindLeads)

	require.Len(t, svc.deadlines, 1)
	assert.WithinDuration(t, before.Add(10*time.Minute), svc.deadlines[0], 5*time.Second)
}

func TestNewSchedulerDefaultsTimeout(t *testing.T) {
	s, _ := newScheduler(config.ScheduleConfig{}, &fakeIngest{})
	assert.Equal(t, 2*time.Hour, s.timeout)
}
