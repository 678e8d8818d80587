/*
tier.go - Bonus tier resolution and progress

PURPOSE:
  Given a revenue figure and a creator's tier ladder, resolves which tier
  has been reached, which comes next, and the gap/pace metrics toward it.

BOUNDARY SEMANTICS:
  Revenue exactly equal to a threshold counts as having reached that tier
  (>=, not >). With tiers sorted ascending by threshold, the resolved
  bonus is monotonically non-decreasing in revenue.

DEFENSIVENESS:
  The ladder is sorted ascending on a copy before every resolution - the
  engine never trusts input order. Duplicate thresholds violate the feed
  invariant and are rejected upstream by the factory package; if one
  slips through, the stable sort keeps the first and resolution stays
  deterministic.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// sortedTiers returns a copy of the ladder sorted ascending by threshold.
func sortedTiers(tiers []TierLevel) []TierLevel {
	sorted := make([]TierLevel, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Threshold.LessThan(sorted[j].Threshold)
	})
	return sorted
}

// ResolveTier returns the achieved tier (greatest threshold <= revenue)
// and the tier immediately above it. Either may be nil: current is nil
// below the lowest threshold (next is then the lowest tier), next is nil
// at the top of the ladder. An empty ladder yields (nil, nil).
func ResolveTier(revenue decimal.Decimal, tiers []TierLevel) (current, next *TierLevel) {
	if len(tiers) == 0 {
		return nil, nil
	}

	sorted := sortedTiers(tiers)
	currentIdx := -1
	for i := range sorted {
		if revenue.GreaterThanOrEqual(sorted[i].Threshold) {
			currentIdx = i
		}
	}

	if currentIdx >= 0 {
		current = &sorted[currentIdx]
	}
	if currentIdx+1 < len(sorted) {
		next = &sorted[currentIdx+1]
	}
	return current, next
}

// Progress computes a creator's position on their ladder for the
// snapshot's data month. daysRemaining is the caller's view of how many
// days are left in that month (0 for a closed month); it is never read
// from a clock here. Rush analysis is attached separately - see
// ProgressWithRush.
func Progress(snapshot CreatorTierSnapshot, daysRemaining int) TierProgress {
	current, next := ResolveTier(snapshot.CurrentShippedRevenue, snapshot.Tiers)

	currentBonus := decimal.Zero
	if current != nil {
		currentBonus = current.Bonus
	}

	gap := decimal.Zero
	if next != nil {
		gap = decimal.Max(decimal.Zero, next.Threshold.Sub(snapshot.CurrentShippedRevenue))
	}

	dailyNeeded := decimal.Zero
	if daysRemaining > 0 {
		dailyNeeded = SafeDiv(gap, decimal.NewFromInt(int64(daysRemaining)))
	}

	return TierProgress{
		Creator:        snapshot.Creator,
		CurrentRevenue: snapshot.CurrentShippedRevenue,
		CurrentTier:    current,
		CurrentBonus:   currentBonus,
		NextTier:       next,
		GapToNextTier:  gap,
		DaysRemaining:  daysRemaining,
		DailyGMVNeeded: dailyNeeded,
	}
}

// ProgressWithRush computes tier progress and, when there is a gap to the
// next tier and the snapshot's data month is still active at 'now',
// attaches a rush analysis built from the creator's enriched records.
func ProgressWithRush(snapshot CreatorTierSnapshot, now Day, records []EnrichedRecord, policy RushPolicy) TierProgress {
	daysRemaining := snapshot.DataMonth.DaysRemaining(now)
	progress := Progress(snapshot, daysRemaining)

	if progress.NextTier == nil || !progress.GapToNextTier.IsPositive() {
		return progress
	}
	if daysRemaining == 0 {
		// Closed or not-yet-started month: nothing left to rush.
		return progress
	}

	bonusIncrease := progress.NextTier.Bonus.Sub(progress.CurrentBonus)
	posts := PostEfficiencies(FilterCreator(records, snapshot.Creator), DefaultEfficiencyWindowDays)
	progress.Rush = AnalyzeRush(progress.GapToNextTier, posts, daysRemaining, bonusIncrease, policy)
	return progress
}
