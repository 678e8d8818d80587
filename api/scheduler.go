/*
scheduler.go - Automated month-close settlement scheduler

PURPOSE:
  Periodically checks whether a data month has closed since the last
  check and, when it has, computes and logs the settlement report for
  that month. The report itself stays on-demand via the API; this job
  exists so the finance channel gets the headline numbers the morning
  after month close without anyone curling the endpoint.

DESIGN:
  - Runs a background goroutine with configurable check interval
  - Detects the month boundary by comparing the current month with the
    last month it settled
  - Idempotent per month: a restart mid-month re-logs at most once

CONFIGURATION:
  - CheckInterval: How often to check (default: 1 hour)
  - Enabled: Whether scheduler is active (default: true)

USAGE:
  scheduler := NewSettlementScheduler(store)
  scheduler.Start()
  // ... later
  scheduler.Stop()

SEE ALSO:
  - handlers.go: GetSettlements endpoint (on-demand reports)
  - engine/settlement.go: The calculation this schedules
*/
package api

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/tecdo/creator-engine/engine"
)

// SettlementScheduler logs the settlement report for each month once it
// closes.
type SettlementScheduler struct {
	Store         engine.Store
	CheckInterval time.Duration
	Enabled       bool

	ticker      *time.Ticker
	stop        chan bool
	wg          sync.WaitGroup
	mu          sync.Mutex
	lastSettled string // month already reported, "" on fresh start
}

// NewSettlementScheduler creates a new scheduler.
func NewSettlementScheduler(store engine.Store) *SettlementScheduler {
	return &SettlementScheduler{
		Store:         store,
		CheckInterval: 1 * time.Hour,
		Enabled:       true,
		stop:          make(chan bool),
	}
}

// Start begins the scheduler.
func (ss *SettlementScheduler) Start() {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	if !ss.Enabled {
		log.Println("[Scheduler] Disabled, not starting")
		return
	}

	ss.ticker = time.NewTicker(ss.CheckInterval)
	ss.wg.Add(1)

	go ss.run(ss.ticker)

	log.Printf("[Scheduler] Started with check interval: %v", ss.CheckInterval)
}

// Stop stops the scheduler and waits for any in-flight check to finish.
// Safe to call more than once.
func (ss *SettlementScheduler) Stop() {
	ss.mu.Lock()
	ticker := ss.ticker
	ss.ticker = nil
	ss.mu.Unlock()

	if ticker == nil {
		return
	}
	ticker.Stop()
	close(ss.stop)

	// Wait with the lock released: checkAndSettle takes ss.mu for
	// lastSettled, so holding it here would wedge the shutdown.
	ss.wg.Wait()
	log.Println("[Scheduler] Stopped")
}

func (ss *SettlementScheduler) run(ticker *time.Ticker) {
	defer ss.wg.Done()

	// Run immediately on start
	ss.checkAndSettle()

	for {
		select {
		case <-ticker.C:
			ss.checkAndSettle()
		case <-ss.stop:
			return
		}
	}
}

func (ss *SettlementScheduler) checkAndSettle() {
	ctx := context.Background()
	now := engine.DayOf(time.Now())

	// The month to report is the one before the current one.
	closed := now.AddDays(-now.DayOfMonth()).YearMonth()

	ss.mu.Lock()
	already := ss.lastSettled == closed.String()
	ss.mu.Unlock()
	if already {
		return
	}

	log.Printf("[Scheduler] Settling closed month %s", closed)

	window := engine.MonthPeriod(closed)
	rows, err := ss.Store.RecordsInRange(ctx, window.Start, window.End)
	if err != nil {
		log.Printf("[Scheduler] Error loading records for %s: %v", closed, err)
		return
	}
	snapshots, err := ss.Store.SnapshotsForMonth(ctx, closed)
	if err != nil {
		log.Printf("[Scheduler] Error loading snapshots for %s: %v", closed, err)
		return
	}

	if len(rows) == 0 {
		log.Printf("[Scheduler] No ad data for %s, nothing to settle", closed)
	} else {
		summary := engine.Settle(engine.Enrich(rows), snapshots, window, true, now)
		profitable := 0
		for _, s := range summary.Settlements {
			if s.IsProfitable {
				profitable++
			}
		}
		log.Printf("[Scheduler] %s: %d creators (%d profitable), spend %s, profit %s, margin %s, payable %s",
			closed, len(summary.Settlements), profitable,
			summary.Totals.AdSpend, summary.Totals.TotalProfit,
			summary.Totals.MarginTecdo, summary.Totals.TotalPayment)
	}

	ss.mu.Lock()
	ss.lastSettled = closed.String()
	ss.mu.Unlock()
}
