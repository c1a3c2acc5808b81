package system

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/tndevelopers2024/medagg-crm-sub002/internal/config"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/features/scheduler"
	"github.com/tndevelopers2024/medagg-crm-sub002/internal/metrics"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct{ err error }

func (p fakePinger) Ping(ctx context.Context) error { return p.err }

type fakeScheduler struct{}

func (fakeScheduler) Start(ctx context.Context) error { return nil }
func (fakeScheduler) Stop(ctx context.Context) error  { return nil }
func (fakeScheduler) Entries() []scheduler.EntryInfo {
	return []scheduler.EntryInfo{{Name: scheduler.JobLeads, Spec: "*/15 * * * *"}}
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"up", nil, fiber.StatusOK},
		{"store down", errors.New("server selection timeout"), fiber.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			(&HealthApi{db: fakePinger{err: tt.err}}).Setup(app)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestMetricsEndpoint(t *testing.T) {
	metrics.LeadsInserted.Add(0)
	app := fiber.New()
	NewMetricsApi().Setup(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "lead_sync_leads_inserted_total")
}

func TestDebugRoutes(t *testing.T) {
	app := fiber.New()
	NewDebugApi(NewDebugController(fakeScheduler{}), &config.Config{SkipAuth: true}).Setup(app)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/api/debug/me", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/api/debug/schedule", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data []scheduler.EntryInfo `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, scheduler.JobLeads, body.Data[0].Name)
}
