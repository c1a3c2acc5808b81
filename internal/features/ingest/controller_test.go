package ingest

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
)

type fakeIngestService struct {
	gotOpts Options
	err     error
	summary *SyncSummary
	last    map[Kind]*SyncSummary
}

func (f *fakeIngestService) SyncCampaigns(ctx context.Context, opts Options) (*SyncSummary, error) {
	f.gotOpts = opts
	return f.summary, f.err
}

func (f *fakeIngestService) SyncLeads(ctx context.Context, opts Options) (*SyncSummary, error) {
	f.gotOpts = opts
	return f.summary, f.err
}

func (f *fakeIngestService) LastSummary(kind Kind) *SyncSummary { return f.last[kind] }

func (f *fakeIngestService) EnsureIndexes(ctx context.Context) error { return nil }

func newTestApp(svc IngestService) *fiber.App {
	app := fiber.New()
	NewIngestApi(NewIngestController(svc), &config.Config{SkipAuth: true}).Setup(app)
	return app
}

func TestControllerSyncLeads(t *testing.T) {
	svc := &fakeIngestService{summary: &SyncSummary{RunID: "r1", Kind: KindLeads, LeadsInserted: 2}}
	app := newTestApp(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/ingest/leads/sync",
		strings.NewReader(`{"accountIds":["123"],"formIds":["F1"],"pageSize":50}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data SyncSummary `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "r1", body.Data.RunID)
	assert.Equal(t, 2, body.Data.LeadsInserted)
	assert.Equal(t, Options{AccountIDs: []string{"123"}, FormIDs: []string{"F1"}, PageSize: 50}, svc.gotOpts)
}

func TestControllerSyncErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"overlap", ErrSyncInProgress, fiber.StatusConflict},
		{"missing token", config.ErrMissingAccessToken, fiber.StatusUnprocessableEntity},
		{"missing accounts", config.ErrMissingAdAccounts, fiber.StatusUnprocessableEntity},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(&fakeIngestService{err: tt.err})
			resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/api/ingest/campaigns/sync", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestControllerBadBody(t *testing.T) {
	app := newTestApp(&fakeIngestService{})
	req := httptest.NewRequest(http.MethodPost, "/api/ingest/leads/sync", strings.NewReader(`{"pageSize":`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestControllerLastRun(t *testing.T) {
	svc := &fakeIngestService{last: map[Kind]*SyncSummary{
		KindCampaigns: {RunID: "c1", Kind: KindCampaigns, Errors: []SyncError{}},
	}}
	app := newTestApp(svc)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/ingest/runs/last", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/ingest/runs/last?kind=bogus", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/ingest/runs/last?kind=campaigns", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/ingest/runs/last/export?kind=campaigns", nil), -1)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", resp.Header.Get("Content-Type"))
	assert.Contains(t, resp.Header.Get("Content-Disposition"), "sync_campaigns_c1.xlsx")
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.True(t, len(data) > 0 && string(data[:2]) == "PK", "xlsx is a zip archive")
}
