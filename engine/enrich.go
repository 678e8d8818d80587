/*
enrich.go - Record enrichment: daily ROI and running cumulative totals

PURPOSE:
  Turns raw daily ad records into enriched records carrying per-day ROI
  and per-content running totals. Everything downstream (tier progress,
  rush analysis, settlement) consumes enriched records.

ALGORITHM:
  1. Copy and stable-sort the records by date ascending. Ties keep the
     original input order, so re-enriching the same set yields identical
     output and identical IDs.
  2. Walk chronologically, keeping one running {spend, earning}
     accumulator per content, created lazily on first sight.
  3. For each record: daily ROI, add to the accumulator, cumulative ROI
     from the post-add totals, emit.

INVARIANTS:
  - CumulativeSpend/CumulativeEarning are non-decreasing within a
    content's chronological sequence (spend and earning are >= 0 by the
    ingest contract).
  - Spend of zero on any day yields ROI 0, never NaN/Inf (SafeDiv).
  - Accumulators are rebuilt from scratch per call; no state survives
    between calls.

OUTPUT ORDER:
  Ascending by date. Callers needing the original order must re-sort.
*/
package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// contentAccumulator is the running state for one content's cumulative
// totals during a single Enrich pass.
type contentAccumulator struct {
	spend   decimal.Decimal
	earning decimal.Decimal
	seq     int
}

// Enrich computes daily ROI and per-content cumulative totals for a set
// of raw ad records. The input slice is not modified.
func Enrich(records []AdRecord) []EnrichedRecord {
	sorted := make([]AdRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	accumulators := make(map[string]*contentAccumulator)
	enriched := make([]EnrichedRecord, 0, len(sorted))

	for _, rec := range sorted {
		acc, ok := accumulators[rec.Content]
		if !ok {
			acc = &contentAccumulator{spend: decimal.Zero, earning: decimal.Zero}
			accumulators[rec.Content] = acc
		}

		acc.spend = acc.spend.Add(rec.Spend)
		acc.earning = acc.earning.Add(rec.Earning)
		acc.seq++

		enriched = append(enriched, EnrichedRecord{
			AdRecord:          rec,
			ID:                fmt.Sprintf("%s-%d", rec.Content, acc.seq),
			ROI:               SafeDiv(rec.Earning, rec.Spend),
			CumulativeSpend:   acc.spend,
			CumulativeEarning: acc.earning,
			CumulativeROI:     SafeDiv(acc.earning, acc.spend),
		})
	}

	return enriched
}

// FilterPeriod returns the enriched records whose date falls inside the
// inclusive window, preserving order.
func FilterPeriod(records []EnrichedRecord, window Period) []EnrichedRecord {
	var out []EnrichedRecord
	for _, r := range records {
		if window.Contains(r.Date) {
			out = append(out, r)
		}
	}
	return out
}

// FilterCreator returns the enriched records belonging to one creator,
// preserving order.
func FilterCreator(records []EnrichedRecord, creator string) []EnrichedRecord {
	var out []EnrichedRecord
	for _, r := range records {
		if r.Creator == creator {
			out = append(out, r)
		}
	}
	return out
}
