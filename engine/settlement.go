/*
settlement.go - Creator profit/loss settlement and payment phases

PURPOSE:
  Computes, per creator and for a reporting window, the advertising
  spend, commission, incremental tier bonus attributable to paid
  promotion, total profit, the platform/creator margin split, and the
  resulting two-phase payment schedule.

COMMISSION SOURCE DUALITY:
  Commission comes from one of two places depending on the caller's
  period type, selected by useMonthlyCommission:
    true:  the month-level CommissionAds figure from the bonus snapshot
           (correct for "this month" / "last month" reports; independent
           of the filtered window)
    false: the sum of the earning field over the filtered window
           (correct for "this week" / custom windows)
  The two paths produce settlements with different semantics. This is a
  documented design choice inherited from the dashboard, preserved here
  rather than unified; callers own picking the right flag.

MARGIN RULE (asymmetric, non-negotiable):
  Profitable:   platform takes half the profit.
  Unprofitable: platform absorbs the whole loss.
  Profitability is STRICT: a break-even window is not profitable.

PAYMENT PHASES (amounts owed to the platform):
  M+1 rewards:    the bonus differential - halved when profitable.
  M+2 commission: when profitable, totalProfit/2 + adSpend - bonusDiff/2;
                  when not, the raw commission only (the platform eats
                  the spend).

DEGRADED SETTLEMENT:
  Creators present in ad data but missing from the snapshot feed settle
  with no bonus differential and windowed commission regardless of the
  flag; the margin rule is unchanged.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

var two = decimal.NewFromInt(2)

// Settle produces the settlement report for a reporting window.
// 'now' determines how many days remain in the window-end month for the
// month-end revenue projection (0 once the month is closed).
func Settle(records []EnrichedRecord, snapshots []CreatorBonusSnapshot, window Period, useMonthlyCommission bool, now Day) EarningsSummary {
	windowed := FilterPeriod(records, window)

	snapshotByCreator := make(map[string]CreatorBonusSnapshot, len(snapshots))
	for _, s := range snapshots {
		snapshotByCreator[s.Creator] = s
	}

	// 1. Per-creator window aggregates.
	type creatorAgg struct {
		adSpend       decimal.Decimal
		windowEarning decimal.Decimal
		records       []EnrichedRecord
	}
	byCreator := make(map[string]*creatorAgg)
	var creators []string
	for _, r := range windowed {
		agg, ok := byCreator[r.Creator]
		if !ok {
			agg = &creatorAgg{}
			byCreator[r.Creator] = agg
			creators = append(creators, r.Creator)
		}
		agg.adSpend = agg.adSpend.Add(r.Spend)
		agg.windowEarning = agg.windowEarning.Add(r.Earning)
		agg.records = append(agg.records, r)
	}

	// 2. Window-to-month proration factor.
	endMonth := window.End.YearMonth()
	periodRatio := SafeDiv(intDecimal(window.DayCount()), intDecimal(endMonth.DaysIn()))
	daysRemaining := endMonth.DaysRemaining(now)

	summary := EarningsSummary{Window: window, UseMonthlyCommission: useMonthlyCommission}

	for _, creator := range creators {
		agg := byCreator[creator]

		snapshot, hasSnapshot := snapshotByCreator[creator]
		var settlement CreatorSettlement
		if hasSnapshot {
			settlement = settleWithSnapshot(creator, agg.adSpend, agg.windowEarning, agg.records, snapshot, useMonthlyCommission, periodRatio, daysRemaining)
		} else {
			settlement = settleDegraded(creator, agg.adSpend, agg.windowEarning)
		}
		summary.Settlements = append(summary.Settlements, settlement)
	}

	// Presentation order: biggest spenders first, name as tiebreak.
	sort.SliceStable(summary.Settlements, func(i, j int) bool {
		a, b := summary.Settlements[i], summary.Settlements[j]
		if !a.AdSpend.Equal(b.AdSpend) {
			return a.AdSpend.GreaterThan(b.AdSpend)
		}
		return a.Creator < b.Creator
	})

	for _, s := range summary.Settlements {
		summary.Totals.add(s)
	}
	return summary
}

func settleWithSnapshot(creator string, adSpend, windowEarning decimal.Decimal, records []EnrichedRecord, snapshot CreatorBonusSnapshot, useMonthlyCommission bool, periodRatio decimal.Decimal, daysRemaining int) CreatorSettlement {
	// 3. Commission source per period type.
	commission := windowEarning
	if useMonthlyCommission {
		commission = snapshot.CommissionAds
	}

	// 4. Month-end revenue projection from the trailing efficiency window.
	projectedGMV := decimal.Zero
	for _, post := range PostEfficiencies(records, DefaultEfficiencyWindowDays) {
		projectedGMV = projectedGMV.Add(post.AvgDailyGMV.Mul(intDecimal(daysRemaining)))
	}
	projectedTotalRevenue := snapshot.TotalShippedRevenue.Add(projectedGMV)

	// 5. Bonus differential: projected vs. organic-only.
	totalTierBonus := bonusAt(projectedTotalRevenue, snapshot.Tiers)
	organicTierBonus := bonusAt(snapshot.ShippedRevOrganic, snapshot.Tiers)
	bonusDiff := totalTierBonus.Sub(organicTierBonus)

	// 6. Proration applies only to sub-month windows.
	bonusDiffProrated := bonusDiff
	if !useMonthlyCommission {
		bonusDiffProrated = bonusDiff.Mul(periodRatio)
	}

	settlement := CreatorSettlement{
		Creator:           creator,
		HasSnapshot:       true,
		AdSpend:           adSpend,
		CommissionEarning: commission,
		TotalTierBonus:    totalTierBonus,
		OrganicTierBonus:  organicTierBonus,
		BonusDiff:         bonusDiff,
		BonusDiffProrated: bonusDiffProrated,
	}
	settlement.finish()
	return settlement
}

// settleDegraded handles creators with ad data but no bonus snapshot:
// no tier information means no differential, and commission can only
// come from the window regardless of the period type.
func settleDegraded(creator string, adSpend, windowEarning decimal.Decimal) CreatorSettlement {
	settlement := CreatorSettlement{
		Creator:           creator,
		HasSnapshot:       false,
		AdSpend:           adSpend,
		CommissionEarning: windowEarning,
	}
	settlement.finish()
	return settlement
}

// finish derives profit, margin, and the payment phases from the
// aggregate fields (steps 7-9).
func (s *CreatorSettlement) finish() {
	s.TotalEarning = s.CommissionEarning.Add(s.BonusDiffProrated)
	s.TotalProfit = s.TotalEarning.Sub(s.AdSpend)
	s.IsProfitable = s.TotalProfit.IsPositive() // strict: zero is not profitable

	if s.IsProfitable {
		s.MarginTecdo = s.TotalProfit.Div(two)
		s.RewardsPaymentM1 = s.BonusDiff.Div(two)
		s.CommissionPaymentM2 = s.TotalProfit.Div(two).Add(s.AdSpend).Sub(s.BonusDiff.Div(two))
	} else {
		s.MarginTecdo = s.TotalProfit
		s.RewardsPaymentM1 = s.BonusDiff
		s.CommissionPaymentM2 = s.CommissionEarning
	}
	s.TotalPayment = s.RewardsPaymentM1.Add(s.CommissionPaymentM2)
}

// bonusAt resolves the bonus earned at a revenue level, zero when no
// tier is reached.
func bonusAt(revenue decimal.Decimal, tiers []TierLevel) decimal.Decimal {
	current, _ := ResolveTier(revenue, tiers)
	if current == nil {
		return decimal.Zero
	}
	return current.Bonus
}

func (t *SettlementTotals) add(s CreatorSettlement) {
	t.AdSpend = t.AdSpend.Add(s.AdSpend)
	t.CommissionEarning = t.CommissionEarning.Add(s.CommissionEarning)
	t.BonusDiff = t.BonusDiff.Add(s.BonusDiff)
	t.BonusDiffProrated = t.BonusDiffProrated.Add(s.BonusDiffProrated)
	t.TotalEarning = t.TotalEarning.Add(s.TotalEarning)
	t.TotalProfit = t.TotalProfit.Add(s.TotalProfit)
	t.MarginTecdo = t.MarginTecdo.Add(s.MarginTecdo)
	t.RewardsPaymentM1 = t.RewardsPaymentM1.Add(s.RewardsPaymentM1)
	t.CommissionPaymentM2 = t.CommissionPaymentM2.Add(s.CommissionPaymentM2)
	t.TotalPayment = t.TotalPayment.Add(s.TotalPayment)
}
