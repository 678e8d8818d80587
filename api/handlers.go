/*
handlers.go - HTTP API handlers for the creator marketing engine

PURPOSE:
  Exposes the calculation engine via REST API. Handles HTTP
  request/response, JSON serialization, and delegates to domain logic.

ENDPOINTS:
  Records:
    POST   /api/records                Ingest a batch of ad rows
    GET    /api/records                List enriched records (optional window)

  KPI:
    GET    /api/kpi                    Dashboard totals + optional breakdown

  Snapshots:
    POST   /api/snapshots              Upload creator bonus schedules

  Creators:
    GET    /api/creators               List creators seen in ad data
    GET    /api/creators/{name}/progress  Tier progress + rush analysis

  Settlements:
    GET    /api/settlements            Settlement report for a window

  Scenarios:
    GET    /api/scenarios              List demo scenarios
    POST   /api/scenarios/load         Load a demo scenario
    POST   /api/scenarios/reset        Clear the database

TIME HANDLING:
  The engine never reads the clock. Every time-dependent endpoint takes
  ?now=YYYY-MM-DD and defaults to the server date HERE, at the edge -
  which is also what makes these handlers reproducible in tests.

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 500: Internal errors

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo scenario loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tecdo/creator-engine/engine"
	"github.com/tecdo/creator-engine/factory"
	"github.com/tecdo/creator-engine/ingest"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store           engine.Store
	ScheduleFactory *factory.ScheduleFactory

	// Track currently loaded scenario
	currentScenario string
}

// NewHandler creates a new handler with the given store.
func NewHandler(store engine.Store) *Handler {
	return &Handler{
		Store:           store,
		ScheduleFactory: factory.NewScheduleFactory(),
	}
}

// =============================================================================
// RECORD HANDLERS
// =============================================================================

// IngestRecords validates and stores a batch of ad rows.
// POST /api/records
func (h *Handler) IngestRecords(w http.ResponseWriter, r *http.Request) {
	var uploads []RecordUpload
	if err := json.NewDecoder(r.Body).Decode(&uploads); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Date parse failures become rejects alongside validation failures,
	// keeping row indexes aligned with the upload.
	resp := IngestResponse{}
	var rows []engine.AdRecord
	rowIndex := make([]int, 0, len(uploads))
	for i, u := range uploads {
		record, err := toAdRecord(u)
		if err != nil {
			resp.Rejected = append(resp.Rejected, RejectDTO{
				Index: i, Creator: u.Creator, Content: u.Content, Reason: err.Error(),
			})
			continue
		}
		rows = append(rows, record)
		rowIndex = append(rowIndex, i)
	}

	good, bad := ingest.Clean(rows)
	for _, reject := range bad {
		resp.Rejected = append(resp.Rejected, RejectDTO{
			Index:   rowIndex[reject.Index],
			Creator: reject.Creator,
			Content: reject.Content,
			Reason:  reject.Err.Error(),
		})
	}

	if len(good) > 0 {
		if err := h.Store.SaveRecords(r.Context(), good); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save records", err)
			return
		}
	}
	resp.Saved = len(good)
	writeJSON(w, http.StatusCreated, resp)
}

// ListRecords returns enriched records, optionally filtered to a window.
// GET /api/records?start=YYYY-MM-DD&end=YYYY-MM-DD&creator=
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	records, ok := h.loadEnriched(w, r)
	if !ok {
		return
	}
	if creator := r.URL.Query().Get("creator"); creator != "" {
		records = engine.FilterCreator(records, creator)
	}
	writeJSON(w, http.StatusOK, toRecordDTOs(records))
}

// =============================================================================
// KPI HANDLERS
// =============================================================================

// GetKPI returns the dashboard totals, plus a breakdown when a grouping
// dimension is requested.
// GET /api/kpi?dimension=creator&start=&end=
func (h *Handler) GetKPI(w http.ResponseWriter, r *http.Request) {
	records, ok := h.loadEnriched(w, r)
	if !ok {
		return
	}

	resp := KPIResponse{Totals: toKPITotalsDTO(engine.Totals(records))}
	if name := r.URL.Query().Get("dimension"); name != "" {
		dim, valid := engine.ParseDimension(name)
		if !valid {
			writeError(w, http.StatusBadRequest, "Unknown dimension: "+name, nil)
			return
		}
		resp.Rows = toKPIRowDTOs(engine.AggregateBy(records, dim))
	}
	writeJSON(w, http.StatusOK, resp)
}

// =============================================================================
// SNAPSHOT HANDLERS
// =============================================================================

// UploadSnapshots stores a batch of creator bonus schedules.
// POST /api/snapshots
func (h *Handler) UploadSnapshots(w http.ResponseWriter, r *http.Request) {
	var schedules []factory.ScheduleJSON
	if err := json.NewDecoder(r.Body).Decode(&schedules); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	// Schedules are configuration, not telemetry: one bad schedule fails
	// the whole upload so the operator fixes the file instead of running
	// a month with half a ladder.
	saved := 0
	for _, sj := range schedules {
		snapshot, err := h.ScheduleFactory.FromJSON(sj)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid schedule", err)
			return
		}
		if err := h.Store.SaveSnapshot(r.Context(), snapshot); err != nil {
			writeError(w, http.StatusInternalServerError, "Failed to save snapshot", err)
			return
		}
		saved++
	}
	writeJSON(w, http.StatusCreated, map[string]int{"saved": saved})
}

// =============================================================================
// CREATOR HANDLERS
// =============================================================================

// ListCreators returns the creators present in ad data with their KPI
// aggregates.
// GET /api/creators
func (h *Handler) ListCreators(w http.ResponseWriter, r *http.Request) {
	records, ok := h.loadEnriched(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toKPIRowDTOs(engine.AggregateBy(records, engine.DimensionCreator)))
}

// GetCreatorProgress returns tier progress with rush analysis for one
// creator's data month.
// GET /api/creators/{name}/progress?month=YYYY-MM&now=YYYY-MM-DD
func (h *Handler) GetCreatorProgress(w http.ResponseWriter, r *http.Request) {
	creator := chi.URLParam(r, "name")
	now, err := parseNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid now parameter (use YYYY-MM-DD)", err)
		return
	}

	dataMonth := now.YearMonth()
	if raw := r.URL.Query().Get("month"); raw != "" {
		dataMonth, err = engine.ParseMonth(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid month parameter (use YYYY-MM)", err)
			return
		}
	}

	snapshot, err := h.Store.Snapshot(r.Context(), creator, dataMonth)
	if errors.Is(err, engine.ErrSnapshotNotFound) {
		writeError(w, http.StatusNotFound, "No bonus snapshot for "+creator+" in "+dataMonth.String(), nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshot", err)
		return
	}

	rows, err := h.Store.RecordsInRange(r.Context(), dataMonth.Start(), dataMonth.End())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}

	progress := engine.ProgressWithRush(snapshot.TierSnapshot(), now, engine.Enrich(rows), engine.DefaultRushPolicy())
	writeJSON(w, http.StatusOK, toProgressDTO(progress, dataMonth))
}

// =============================================================================
// SETTLEMENT HANDLERS
// =============================================================================

// GetSettlements returns the settlement report for a reporting window.
// GET /api/settlements?start=&end=&monthly=true&now=
// Defaults to the current month of 'now' with monthly commission.
func (h *Handler) GetSettlements(w http.ResponseWriter, r *http.Request) {
	now, err := parseNow(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid now parameter (use YYYY-MM-DD)", err)
		return
	}

	window := engine.MonthPeriod(now.YearMonth())
	useMonthly := true
	q := r.URL.Query()
	if q.Get("start") != "" || q.Get("end") != "" {
		start, err := engine.ParseDay(q.Get("start"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start parameter (use YYYY-MM-DD)", err)
			return
		}
		end, err := engine.ParseDay(q.Get("end"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end parameter (use YYYY-MM-DD)", err)
			return
		}
		if end.Before(start) {
			writeError(w, http.StatusBadRequest, "Invalid window", engine.ErrInvalidPeriod)
			return
		}
		window = engine.Period{Start: start, End: end}
		// Custom windows default to windowed commission.
		useMonthly = false
	}
	if raw := q.Get("monthly"); raw != "" {
		useMonthly = raw == "true" || raw == "1"
	}

	rows, err := h.Store.RecordsInRange(r.Context(), window.Start, window.End)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return
	}
	snapshots, err := h.Store.SnapshotsForMonth(r.Context(), window.End.YearMonth())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load snapshots", err)
		return
	}

	summary := engine.Settle(engine.Enrich(rows), snapshots, window, useMonthly, now)
	writeJSON(w, http.StatusOK, toSettlementResponse(summary))
}

// =============================================================================
// SHARED HELPERS
// =============================================================================

// loadEnriched reads records (optionally windowed by start/end query
// params) and runs enrichment. Writes the error response itself.
func (h *Handler) loadEnriched(w http.ResponseWriter, r *http.Request) ([]engine.EnrichedRecord, bool) {
	q := r.URL.Query()
	var rows []engine.AdRecord
	var err error

	if q.Get("start") != "" || q.Get("end") != "" {
		var start, end engine.Day
		if start, err = engine.ParseDay(q.Get("start")); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start parameter (use YYYY-MM-DD)", err)
			return nil, false
		}
		if end, err = engine.ParseDay(q.Get("end")); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end parameter (use YYYY-MM-DD)", err)
			return nil, false
		}
		rows, err = h.Store.RecordsInRange(r.Context(), start, end)
	} else {
		rows, err = h.Store.Records(r.Context())
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load records", err)
		return nil, false
	}
	return engine.Enrich(rows), true
}

// parseNow reads ?now=, defaulting to the server's current date. This is
// the only place outside cmd/ that touches the wall clock.
func parseNow(r *http.Request) (engine.Day, error) {
	if raw := r.URL.Query().Get("now"); raw != "" {
		return engine.ParseDay(raw)
	}
	return engine.DayOf(time.Now()), nil
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
