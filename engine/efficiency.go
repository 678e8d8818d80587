/*
efficiency.go - Windowed per-post efficiency

PURPOSE:
  Summarizes each post's recent spend/sales performance over a trailing
  window. These summaries feed the rush analyzer and the settlement
  engine's month-end projection.

WINDOW SEMANTICS:
  The window trails from the LATEST DATE PRESENT in the supplied records,
  not from wall-clock today. A dataset whose freshest row is three days
  old still gets a meaningful trailing-3-day view; an empty dataset gets
  an empty result.
*/
package engine

import "sort"

// DefaultEfficiencyWindowDays is the trailing window used for rush
// analysis and month-end projection.
const DefaultEfficiencyWindowDays = 3

// PostEfficiencies groups the trailing-window slice of the records per
// content and summarizes each post. windowDays <= 0 falls back to the
// default. Output is sorted by content name for determinism; the rush
// analyzer re-ranks by ROAS for display.
func PostEfficiencies(records []EnrichedRecord, windowDays int) []PostEfficiency {
	if len(records) == 0 {
		return nil
	}
	if windowDays <= 0 {
		windowDays = DefaultEfficiencyWindowDays
	}

	latest := records[0].Date
	for _, r := range records[1:] {
		if r.Date.After(latest) {
			latest = r.Date
		}
	}
	window := Period{Start: latest.AddDays(-(windowDays - 1)), End: latest}

	type postAgg struct {
		eff  PostEfficiency
		days map[string]struct{}
	}
	byContent := make(map[string]*postAgg)
	var order []string

	for _, r := range records {
		if !window.Contains(r.Date) {
			continue
		}
		agg, ok := byContent[r.Content]
		if !ok {
			agg = &postAgg{
				eff:  PostEfficiency{Content: r.Content},
				days: make(map[string]struct{}),
			}
			byContent[r.Content] = agg
			order = append(order, r.Content)
		}
		agg.eff.TotalSpend = agg.eff.TotalSpend.Add(r.Spend)
		agg.eff.TotalGMV = agg.eff.TotalGMV.Add(r.GMV)
		agg.eff.TotalEarning = agg.eff.TotalEarning.Add(r.Earning)
		agg.days[r.Date.String()] = struct{}{}
	}

	sort.Strings(order)
	out := make([]PostEfficiency, 0, len(order))
	for _, content := range order {
		agg := byContent[content]
		eff := agg.eff
		eff.DaysWithData = len(agg.days)
		eff.IsNewPost = eff.DaysWithData < NewPostDayThreshold
		eff.ROAS = SafeDiv(eff.TotalGMV, eff.TotalSpend)
		eff.ROI = SafeDiv(eff.TotalEarning, eff.TotalSpend)
		eff.AvgDailyGMV = SafeDiv(eff.TotalGMV, intDecimal(eff.DaysWithData))
		out = append(out, eff)
	}
	return out
}
