package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecdo/creator-engine/store/sqlite"
)

// =============================================================================
// TEST HARNESS
// =============================================================================

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	server := httptest.NewServer(NewRouter(NewHandler(store)))
	t.Cleanup(server.Close)
	return server
}

func doJSON(t *testing.T, server *httptest.Server, method, path string, body any, out any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, server.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	if out != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func sampleUploads() []RecordUpload {
	return []RecordUpload{
		{Date: "2026-08-18", Creator: "amelia", Content: "post-1", Platform: "tiktok", Spend: 30, GMV: 400, Earning: 40, Status: "Active"},
		{Date: "2026-08-19", Creator: "amelia", Content: "post-1", Platform: "tiktok", Spend: 30, GMV: 500, Earning: 50, Status: "running"},
		{Date: "2026-08-20", Creator: "amelia", Content: "post-1", Platform: "tiktok", Spend: 40, GMV: 600, Earning: 60, Status: "running"},
	}
}

func sampleSchedule() map[string]any {
	return map[string]any{
		"creator":               "amelia",
		"data_month":            "2026-08",
		"total_shipped_revenue": "6000",
		"shipped_rev_organic":   "1500",
		"commission_ads":        "1200",
		"tiers": []map[string]string{
			{"name": "bronze", "threshold": "1000", "bonus": "50"},
			{"name": "silver", "threshold": "5000", "bonus": "200"},
			{"name": "gold", "threshold": "10000", "bonus": "500"},
		},
	}
}

// =============================================================================
// RECORD ENDPOINTS
// =============================================================================

func TestIngestRecords_SavesAndReportsRejects(t *testing.T) {
	server := newTestServer(t)

	uploads := append(sampleUploads(),
		RecordUpload{Date: "not-a-date", Creator: "bruno", Content: "post-2", Spend: 10, GMV: 10, Earning: 1},
		RecordUpload{Date: "2026-08-20", Creator: "", Content: "post-3", Spend: 10, GMV: 10, Earning: 1},
		RecordUpload{Date: "2026-08-20", Creator: "bruno", Content: "post-4", Spend: -5, GMV: 10, Earning: 1},
	)

	var resp IngestResponse
	httpResp := doJSON(t, server, http.MethodPost, "/api/records", uploads, &resp)
	assert.Equal(t, http.StatusCreated, httpResp.StatusCode)
	assert.Equal(t, 3, resp.Saved)
	require.Len(t, resp.Rejected, 3)
	assert.Equal(t, 3, resp.Rejected[0].Index, "bad date keeps its upload index")
	assert.Equal(t, 4, resp.Rejected[1].Index)
	assert.Equal(t, 5, resp.Rejected[2].Index)
}

func TestListRecords_EnrichedAndWindowed(t *testing.T) {
	server := newTestServer(t)
	doJSON(t, server, http.MethodPost, "/api/records", sampleUploads(), nil)

	var all []RecordDTO
	doJSON(t, server, http.MethodGet, "/api/records", nil, &all)
	require.Len(t, all, 3)
	assert.Equal(t, "post-1-1", all[0].ID)
	assert.InDelta(t, 100, all[2].CumulativeSpend, 1e-9)
	assert.Equal(t, "running", all[0].Status, "vendor status normalized on ingest")

	var windowed []RecordDTO
	doJSON(t, server, http.MethodGet, "/api/records?start=2026-08-19&end=2026-08-20", nil, &windowed)
	assert.Len(t, windowed, 2)
}

// =============================================================================
// KPI ENDPOINT
// =============================================================================

func TestGetKPI_TotalsAndBreakdown(t *testing.T) {
	server := newTestServer(t)
	doJSON(t, server, http.MethodPost, "/api/records", sampleUploads(), nil)

	var resp KPIResponse
	doJSON(t, server, http.MethodGet, "/api/kpi?dimension=creator", nil, &resp)

	assert.InDelta(t, 100, resp.Totals.TotalSpend, 1e-9)
	assert.InDelta(t, 1500, resp.Totals.TotalGMV, 1e-9)
	assert.Equal(t, 1, resp.Totals.Creators)
	require.Len(t, resp.Rows, 1)
	assert.Equal(t, "amelia", resp.Rows[0].Key)

	badDim := doJSON(t, server, http.MethodGet, "/api/kpi?dimension=campaign", nil, nil)
	assert.Equal(t, http.StatusBadRequest, badDim.StatusCode)
}

// =============================================================================
// PROGRESS ENDPOINT
// =============================================================================

func TestGetCreatorProgress_WithRush(t *testing.T) {
	server := newTestServer(t)
	doJSON(t, server, http.MethodPost, "/api/records", sampleUploads(), nil)

	saved := doJSON(t, server, http.MethodPost, "/api/snapshots", []map[string]any{sampleSchedule()}, nil)
	assert.Equal(t, http.StatusCreated, saved.StatusCode)

	var progress TierProgressDTO
	doJSON(t, server, http.MethodGet, "/api/creators/amelia/progress?now=2026-08-21", nil, &progress)

	require.NotNil(t, progress.CurrentTier)
	assert.Equal(t, "silver", progress.CurrentTier.Name)
	require.NotNil(t, progress.NextTier)
	assert.Equal(t, "gold", progress.NextTier.Name)
	assert.InDelta(t, 4000, progress.GapToNextTier, 1e-9)
	assert.Equal(t, 11, progress.DaysRemaining)
	require.NotNil(t, progress.Rush, "active month with a gap gets a rush plan")
	// 500/day over 11 days clears the 4000 gap.
	assert.True(t, progress.Rush.CanReachNaturally)
}

func TestGetCreatorProgress_SnapshotMissing(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, server, http.MethodGet, "/api/creators/ghost/progress?now=2026-08-21", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

// =============================================================================
// SETTLEMENT ENDPOINT
// =============================================================================

func TestGetSettlements_MonthlyCommission(t *testing.T) {
	server := newTestServer(t)
	doJSON(t, server, http.MethodPost, "/api/records", sampleUploads(), nil)
	doJSON(t, server, http.MethodPost, "/api/snapshots", []map[string]any{sampleSchedule()}, nil)

	// Settle August after it closed.
	var resp SettlementResponse
	doJSON(t, server, http.MethodGet, "/api/settlements?start=2026-08-01&end=2026-08-31&monthly=true&now=2026-09-02", nil, &resp)

	assert.True(t, resp.UseMonthlyCommission)
	require.Len(t, resp.Settlements, 1)
	s := resp.Settlements[0]
	assert.Equal(t, "amelia", s.Creator)
	assert.True(t, s.HasSnapshot)
	assert.InDelta(t, 100, s.AdSpend, 1e-9)
	assert.InDelta(t, 1200, s.CommissionEarning, 1e-9, "monthly commission from snapshot")
	// Revenue 6000 reaches silver (200); organic 1500 reaches bronze (50).
	assert.InDelta(t, 150, s.BonusDiff, 1e-9)
	assert.True(t, s.IsProfitable)
	assert.InDelta(t, resp.Totals.TotalPayment, s.TotalPayment, 1e-9)
}

func TestGetSettlements_CustomWindowUsesWindowedCommission(t *testing.T) {
	server := newTestServer(t)
	doJSON(t, server, http.MethodPost, "/api/records", sampleUploads(), nil)

	var resp SettlementResponse
	doJSON(t, server, http.MethodGet, "/api/settlements?start=2026-08-18&end=2026-08-19&now=2026-09-02", nil, &resp)

	assert.False(t, resp.UseMonthlyCommission, "custom window defaults to windowed commission")
	require.Len(t, resp.Settlements, 1)
	assert.InDelta(t, 90, resp.Settlements[0].CommissionEarning, 1e-9, "sum of in-window earning")
}

func TestGetSettlements_InvalidWindow(t *testing.T) {
	server := newTestServer(t)

	resp := doJSON(t, server, http.MethodGet, "/api/settlements?start=2026-08-10&end=2026-08-01", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// SCENARIO ENDPOINTS
// =============================================================================

func TestScenarios_LoadAndReset(t *testing.T) {
	server := newTestServer(t)

	var list []ScenarioDTO
	doJSON(t, server, http.MethodGet, "/api/scenarios", nil, &list)
	assert.NotEmpty(t, list)

	loaded := doJSON(t, server, http.MethodPost, "/api/scenarios/load?now=2026-08-21",
		LoadScenarioRequest{ScenarioID: "tier-chase"}, nil)
	assert.Equal(t, http.StatusOK, loaded.StatusCode)

	var current ScenarioDTO
	doJSON(t, server, http.MethodGet, "/api/scenarios/current", nil, &current)
	assert.Equal(t, "tier-chase", current.ID)

	var records []RecordDTO
	doJSON(t, server, http.MethodGet, "/api/records", nil, &records)
	assert.NotEmpty(t, records, "scenario seeds ad records")

	reset := doJSON(t, server, http.MethodPost, "/api/scenarios/reset", nil, nil)
	assert.Equal(t, http.StatusOK, reset.StatusCode)
	var after []RecordDTO
	doJSON(t, server, http.MethodGet, "/api/records", nil, &after)
	assert.Empty(t, after)

	unknown := doJSON(t, server, http.MethodPost, "/api/scenarios/load",
		LoadScenarioRequest{ScenarioID: "nope"}, nil)
	assert.Equal(t, http.StatusNotFound, unknown.StatusCode)
}
