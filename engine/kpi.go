/*
kpi.go - Dashboard KPI aggregation

PURPOSE:
  Overall and grouped spend/GMV/earning totals for the dashboard's KPI
  strip and breakdown tables. Grouping is a typed dimension dispatched
  via a switch - no stringly-typed field access.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// Dimension selects how KPI rows are grouped.
type Dimension string

const (
	DimensionCreator  Dimension = "creator"
	DimensionContent  Dimension = "content"
	DimensionPlatform Dimension = "platform"
	DimensionCategory Dimension = "category"
	DimensionTheme    Dimension = "theme"
	DimensionDate     Dimension = "date"
)

// ParseDimension validates a dimension name from the outside world.
func ParseDimension(s string) (Dimension, bool) {
	switch d := Dimension(s); d {
	case DimensionCreator, DimensionContent, DimensionPlatform,
		DimensionCategory, DimensionTheme, DimensionDate:
		return d, true
	}
	return "", false
}

func (d Dimension) keyOf(r EnrichedRecord) string {
	switch d {
	case DimensionCreator:
		return r.Creator
	case DimensionContent:
		return r.Content
	case DimensionPlatform:
		return r.Platform
	case DimensionCategory:
		return r.Category
	case DimensionTheme:
		return r.Theme
	case DimensionDate:
		return r.Date.String()
	default:
		return r.Creator
	}
}

// KPIRow is one grouped aggregate.
type KPIRow struct {
	Key     string
	Spend   decimal.Decimal
	GMV     decimal.Decimal
	Earning decimal.Decimal
	ROI     decimal.Decimal // Earning / Spend
	ROAS    decimal.Decimal // GMV / Spend
	Records int
}

// KPISummary is the overall totals strip.
type KPISummary struct {
	TotalSpend    decimal.Decimal
	TotalGMV      decimal.Decimal
	TotalEarning  decimal.Decimal
	OverallROI    decimal.Decimal
	OverallROAS   decimal.Decimal
	Creators      int
	Contents      int
	ActiveContent int // contents whose latest record is still running
	Records       int
}

// AggregateBy groups the records along a dimension. Rows are sorted by
// descending spend, key as tiebreak.
func AggregateBy(records []EnrichedRecord, dim Dimension) []KPIRow {
	byKey := make(map[string]*KPIRow)
	var order []string
	for _, r := range records {
		key := dim.keyOf(r)
		row, ok := byKey[key]
		if !ok {
			row = &KPIRow{Key: key}
			byKey[key] = row
			order = append(order, key)
		}
		row.Spend = row.Spend.Add(r.Spend)
		row.GMV = row.GMV.Add(r.GMV)
		row.Earning = row.Earning.Add(r.Earning)
		row.Records++
	}

	rows := make([]KPIRow, 0, len(order))
	for _, key := range order {
		row := byKey[key]
		row.ROI = SafeDiv(row.Earning, row.Spend)
		row.ROAS = SafeDiv(row.GMV, row.Spend)
		rows = append(rows, *row)
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Spend.Equal(rows[j].Spend) {
			return rows[i].Spend.GreaterThan(rows[j].Spend)
		}
		return rows[i].Key < rows[j].Key
	})
	return rows
}

// Totals computes the overall KPI strip for a record set.
func Totals(records []EnrichedRecord) KPISummary {
	summary := KPISummary{Records: len(records)}
	creators := make(map[string]struct{})

	// Latest status per content decides "active".
	type contentState struct {
		date   Day
		status AdStatus
	}
	contents := make(map[string]contentState)

	for _, r := range records {
		summary.TotalSpend = summary.TotalSpend.Add(r.Spend)
		summary.TotalGMV = summary.TotalGMV.Add(r.GMV)
		summary.TotalEarning = summary.TotalEarning.Add(r.Earning)
		creators[r.Creator] = struct{}{}
		if state, ok := contents[r.Content]; !ok || r.Date.AfterOrEqual(state.date) {
			contents[r.Content] = contentState{date: r.Date, status: r.Status}
		}
	}

	summary.OverallROI = SafeDiv(summary.TotalEarning, summary.TotalSpend)
	summary.OverallROAS = SafeDiv(summary.TotalGMV, summary.TotalSpend)
	summary.Creators = len(creators)
	summary.Contents = len(contents)
	for _, state := range contents {
		if state.status == StatusRunning {
			summary.ActiveContent++
		}
	}
	return summary
}
