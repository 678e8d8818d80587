/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the database with realistic
	data for testing and demos. Each scenario creates ad records and bonus
	snapshots that demonstrate specific engine behaviors.

AVAILABLE SCENARIOS:

	tier-chase:       One creator mid-ladder in the active month, rushable gap
	profitable-month: Closed month where ads paid for themselves
	losing-month:     Closed month where the platform eats the loss
	mixed-roster:     Several creators, one without a snapshot (degraded)

HOW SCENARIOS WORK:
 1. Reset database (clear all data)
 2. Insert daily ad records
 3. Insert bonus snapshots with tier ladders

SCENARIO DATES:
  Scenarios are anchored to "now" so active-month behavior (days
  remaining, rush analysis) actually shows up: records land in the
  current month for active scenarios and in the previous month for
  closed-month ones.

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "tier-chase"}

NOTE:

	Scenarios reset the database. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Shared helpers and route handlers
  - factory/schedule.go: The schedule shape snapshots are built from
*/
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/tecdo/creator-engine/engine"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "tier-chase",
		Name:        "Tier Chase",
		Description: "Creator mid-ladder in the active month with a closable gap - shows rush analysis",
	},
	{
		ID:          "profitable-month",
		Name:        "Profitable Month",
		Description: "Closed month where commission + bonus differential beat ad spend",
	},
	{
		ID:          "losing-month",
		Name:        "Losing Month",
		Description: "Closed month where the platform absorbs the loss in full",
	},
	{
		ID:          "mixed-roster",
		Name:        "Mixed Roster",
		Description: "Several creators with uneven performance, one missing a snapshot",
	},
}

// ListScenarios returns available scenarios.
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the currently loaded scenario, if any.
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	if h.currentScenario == "" {
		writeJSON(w, http.StatusOK, nil)
		return
	}
	for _, s := range scenarios {
		if s.ID == h.currentScenario {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, ScenarioDTO{
		ID:          h.currentScenario,
		Name:        h.currentScenario,
		Description: "Currently loaded scenario",
	})
}

// LoadScenario loads a predefined scenario.
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()

	// Reset first
	if err := h.Store.Reset(ctx); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""

	now, err := parseNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid now parameter (use YYYY-MM-DD)", err)
		return
	}

	var loadErr error
	switch req.ScenarioID {
	case "tier-chase":
		loadErr = loadTierChase(ctx, h, now)
	case "profitable-month":
		loadErr = loadProfitableMonth(ctx, h, now)
	case "losing-month":
		loadErr = loadLosingMonth(ctx, h, now)
	case "mixed-roster":
		loadErr = loadMixedRoster(ctx, h, now)
	default:
		writeError(w, http.StatusNotFound, "Unknown scenario: "+req.ScenarioID, nil)
		return
	}
	if loadErr != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load scenario", loadErr)
		return
	}

	h.currentScenario = req.ScenarioID
	writeJSON(w, http.StatusOK, map[string]string{"status": "loaded", "scenario_id": req.ScenarioID})
}

// ResetDatabase clears all data.
func (h *Handler) ResetDatabase(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to reset database", err)
		return
	}
	h.currentScenario = ""
	writeJSON(w, http.StatusOK, map[string]string{"status": "reset"})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

func money(n float64) decimal.Decimal { return decimal.NewFromFloat(n) }

func demoRecord(date engine.Day, creator, content string, spend, gmv, earning float64, status engine.AdStatus) engine.AdRecord {
	return engine.AdRecord{
		Date:     date,
		Creator:  creator,
		Content:  content,
		Platform: "tiktok",
		Category: "beauty",
		Theme:    "unboxing",
		Spend:    money(spend),
		GMV:      money(gmv),
		Earning:  money(earning),
		Status:   status,
	}
}

func demoLadder() []engine.TierLevel {
	return []engine.TierLevel{
		{Name: "bronze", Threshold: money(1000), Bonus: money(50)},
		{Name: "silver", Threshold: money(5000), Bonus: money(200)},
		{Name: "gold", Threshold: money(10000), Bonus: money(500)},
	}
}

// loadTierChase: amelia sits at 6000 revenue against the 10000 gold
// threshold with a few days of recent post data. Progress for the
// current month shows the gap, the pace, and a rush plan.
func loadTierChase(ctx context.Context, h *Handler, now engine.Day) error {
	var records []engine.AdRecord
	for i := 2; i >= 0; i-- {
		date := now.AddDays(-i)
		records = append(records,
			demoRecord(date, "amelia", "lipgloss-review", 40, 520, 55, engine.StatusRunning),
			demoRecord(date, "amelia", "skincare-routine", 25, 180, 20, engine.StatusRunning),
		)
	}
	if err := h.Store.SaveRecords(ctx, records); err != nil {
		return err
	}

	return h.Store.SaveSnapshot(ctx, engine.CreatorBonusSnapshot{
		Creator:             "amelia",
		DataMonth:           now.YearMonth(),
		TotalShippedRevenue: money(6000),
		ShippedRevOrganic:   money(2000),
		CommissionAds:       money(700),
		Tiers:               demoLadder(),
	})
}

// loadProfitableMonth: last month closed with ads clearly paying for
// themselves. The settlement report shows the profitable payment split.
func loadProfitableMonth(ctx context.Context, h *Handler, now engine.Day) error {
	lastMonth := now.AddDays(-now.DayOfMonth()).YearMonth()
	var records []engine.AdRecord
	for day := 1; day <= lastMonth.DaysIn(); day += 2 {
		date := engine.NewDay(lastMonth.Year, lastMonth.Month, day)
		records = append(records,
			demoRecord(date, "amelia", "lipgloss-review", 60, 700, 75, engine.StatusStopped))
	}
	if err := h.Store.SaveRecords(ctx, records); err != nil {
		return err
	}

	return h.Store.SaveSnapshot(ctx, engine.CreatorBonusSnapshot{
		Creator:             "amelia",
		DataMonth:           lastMonth,
		TotalShippedRevenue: money(11000),
		ShippedRevOrganic:   money(4000),
		CommissionAds:       money(1400),
		Tiers:               demoLadder(),
	})
}

// loadLosingMonth: last month's spend went nowhere. The settlement
// report shows the platform absorbing the loss and the degraded-free
// payment phases.
func loadLosingMonth(ctx context.Context, h *Handler, now engine.Day) error {
	lastMonth := now.AddDays(-now.DayOfMonth()).YearMonth()
	var records []engine.AdRecord
	for day := 1; day <= 20; day++ {
		date := engine.NewDay(lastMonth.Year, lastMonth.Month, day)
		records = append(records,
			demoRecord(date, "bruno", "gadget-teardown", 80, 150, 12, engine.StatusStopped))
	}
	if err := h.Store.SaveRecords(ctx, records); err != nil {
		return err
	}

	return h.Store.SaveSnapshot(ctx, engine.CreatorBonusSnapshot{
		Creator:             "bruno",
		DataMonth:           lastMonth,
		TotalShippedRevenue: money(3500),
		ShippedRevOrganic:   money(3000),
		CommissionAds:       money(300),
		Tiers:               demoLadder(),
	})
}

// loadMixedRoster: three creators in the current month - a steady
// performer, a struggler, and one with ad data but no snapshot, which
// exercises the degraded settlement path.
func loadMixedRoster(ctx context.Context, h *Handler, now engine.Day) error {
	var records []engine.AdRecord
	for i := 4; i >= 0; i-- {
		date := now.AddDays(-i)
		records = append(records,
			demoRecord(date, "amelia", "lipgloss-review", 50, 600, 65, engine.StatusRunning),
			demoRecord(date, "bruno", "gadget-teardown", 90, 200, 15, engine.StatusRunning),
			demoRecord(date, "carla", "thrift-haul", 20, 300, 35, engine.StatusPaused),
		)
	}
	if err := h.Store.SaveRecords(ctx, records); err != nil {
		return err
	}

	month := now.YearMonth()
	for creator, figures := range map[string][3]float64{
		"amelia": {7200, 2500, 900},
		"bruno":  {2100, 1600, 180},
		// carla intentionally has no snapshot
	} {
		err := h.Store.SaveSnapshot(ctx, engine.CreatorBonusSnapshot{
			Creator:             creator,
			DataMonth:           month,
			TotalShippedRevenue: money(figures[0]),
			ShippedRevOrganic:   money(figures[1]),
			CommissionAds:       money(figures[2]),
			Tiers:               demoLadder(),
		})
		if err != nil {
			return fmt.Errorf("snapshot for %s: %w", creator, err)
		}
	}
	return nil
}
