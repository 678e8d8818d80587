/*
Package engine provides the settlement and tier-projection calculation core.

PURPOSE:
  This package contains the pure numeric logic behind the creator-marketing
  dashboard: per-record ROI enrichment, bonus-tier resolution, rush-spend
  analysis, and creator profit/loss settlement. It consumes typed ad
  records and tier snapshots and produces typed result records for the
  view layer.

KEY CONCEPTS IN THIS FILE (types.go):
  - AdRecord:             One creator/content/day of ad performance
  - EnrichedRecord:       AdRecord + daily ROI + running cumulative totals
  - TierLevel:            A (threshold, bonus) pair in a creator's schedule
  - CreatorTierSnapshot:  Month-to-date revenue + tier schedule
  - CreatorBonusSnapshot: Extended snapshot used for settlement
  - PostEfficiency:       Windowed per-post spend/sales efficiency

DESIGN PRINCIPLES:
  1. Purity: every exported function is deterministic in its inputs;
     "today" is always an injected Day, never the system clock.
  2. Precision: decimal.Decimal for all money and ratio values.
  3. Zero-division policy: SafeDiv maps x/0 to 0, uniformly. The engine
     never produces NaN or Inf and never panics on empty input.
  4. Statelessness: nothing is cached between calls; enrichment and
     settlement recompute in full from the records they are handed.

SEE ALSO:
  - enrich.go:     Record enrichment (cumulative ROI)
  - tier.go:       Tier resolution and progress
  - rush.go:       Rush-spend analysis
  - settlement.go: Profit/loss settlement and payment phases
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// SAFE DIVISION - The one zero-division policy for the whole engine
// =============================================================================

// SafeDiv returns a/b, or zero when b is zero. Every ratio in this
// package (ROI, ROAS, pacing, proration) goes through here so the
// zero-divisor policy cannot drift between call sites.
func SafeDiv(a, b decimal.Decimal) decimal.Decimal {
	if b.IsZero() {
		return decimal.Zero
	}
	return a.Div(b)
}

// intDecimal converts a day/record count for use in decimal arithmetic.
func intDecimal(n int) decimal.Decimal {
	return decimal.NewFromInt(int64(n))
}

// =============================================================================
// AD RECORDS - Raw input and enriched form
// =============================================================================

// AdStatus is the normalized delivery state of an ad record. Upstream
// ingestion maps vendor-specific strings onto these four values.
type AdStatus string

const (
	StatusRunning AdStatus = "running"
	StatusPaused  AdStatus = "paused"
	StatusStopped AdStatus = "stopped"
	StatusUnknown AdStatus = "unknown"
)

// AdRecord is one day of advertising performance for one piece of content.
// Produced by the ingestion collaborator, consumed read-only here.
// Spend, GMV and Earning are non-negative by the ingest contract; the
// engine does not re-validate (see ingest package).
type AdRecord struct {
	Date     Day
	Creator  string
	Content  string
	Platform string
	Category string
	Theme    string
	Spend    decimal.Decimal
	GMV      decimal.Decimal // gross merchandise value (sales)
	Earning  decimal.Decimal // creator commission-equivalent revenue
	Status   AdStatus
}

// EnrichedRecord is an AdRecord with derived daily and cumulative fields.
// Cumulative totals run per Content in ascending date order and are
// recomputed in full on every Enrich call.
type EnrichedRecord struct {
	AdRecord

	// ID is stable across re-enrichment of the same record set:
	// "<content>-<per-content sequence>".
	ID string

	ROI               decimal.Decimal // Earning / Spend for the day
	CumulativeSpend   decimal.Decimal
	CumulativeEarning decimal.Decimal
	CumulativeROI     decimal.Decimal // CumulativeEarning / CumulativeSpend
}

// =============================================================================
// TIER SCHEDULE - Monthly bonus thresholds per creator
// =============================================================================

// TierLevel is one rung of a creator's bonus ladder: reach Threshold in
// shipped revenue, earn the flat Bonus. A creator has at most five tiers
// with strictly increasing thresholds; the engine sorts defensively and
// never trusts input order.
type TierLevel struct {
	Name      string
	Threshold decimal.Decimal
	Bonus     decimal.Decimal
}

// CreatorTierSnapshot is the tier-schedule feed's view of a creator for
// one data month: revenue shipped so far plus the bonus ladder.
// Immutable for the month once fetched.
type CreatorTierSnapshot struct {
	Creator               string
	DataMonth             Month
	CurrentShippedRevenue decimal.Decimal
	Tiers                 []TierLevel
}

// CreatorBonusSnapshot is the extended snapshot used for settlement. It
// splits revenue and commission into organic vs. ads-driven components.
// Invariant (not enforced here): TotalShippedRevenue >= ShippedRevOrganic.
type CreatorBonusSnapshot struct {
	Creator             string
	DataMonth           Month
	TotalShippedRevenue decimal.Decimal
	ShippedRevOrganic   decimal.Decimal
	ShippedRevAds       decimal.Decimal
	CommissionOrganic   decimal.Decimal
	CommissionAds       decimal.Decimal
	Tiers               []TierLevel
}

// TierSnapshot narrows a bonus snapshot to the basic progress view.
func (s CreatorBonusSnapshot) TierSnapshot() CreatorTierSnapshot {
	return CreatorTierSnapshot{
		Creator:               s.Creator,
		DataMonth:             s.DataMonth,
		CurrentShippedRevenue: s.TotalShippedRevenue,
		Tiers:                 s.Tiers,
	}
}

// =============================================================================
// POST EFFICIENCY - Windowed per-post performance
// =============================================================================

// NewPostDayThreshold marks posts with fewer distinct data days as "new":
// their averages are too thin to project from with confidence.
const NewPostDayThreshold = 3

// PostEfficiency summarizes one post's performance over an analysis
// window (by default the trailing three days of data actually present,
// not wall-clock days). Computed fresh per window by PostEfficiencies.
type PostEfficiency struct {
	Content      string
	TotalSpend   decimal.Decimal
	TotalGMV     decimal.Decimal
	TotalEarning decimal.Decimal
	ROAS         decimal.Decimal // TotalGMV / TotalSpend
	ROI          decimal.Decimal // TotalEarning / TotalSpend
	DaysWithData int             // distinct calendar days with any record
	IsNewPost    bool            // DaysWithData < NewPostDayThreshold
	AvgDailyGMV  decimal.Decimal // TotalGMV / DaysWithData
}

// =============================================================================
// RESULT RECORDS - What the view layer consumes
// =============================================================================

// TierProgress reports where a creator stands on their bonus ladder for
// the snapshot's data month.
type TierProgress struct {
	Creator        string
	CurrentRevenue decimal.Decimal

	// CurrentTier is the highest tier whose threshold the revenue meets,
	// nil when below the lowest threshold. Boundary is inclusive: revenue
	// exactly at a threshold has reached that tier.
	CurrentTier  *TierLevel
	CurrentBonus decimal.Decimal

	// NextTier is the rung immediately above CurrentTier, nil at the top.
	NextTier       *TierLevel
	GapToNextTier  decimal.Decimal // max(0, NextTier.Threshold - revenue)
	DaysRemaining  int             // in the active month; 0 for a closed month
	DailyGMVNeeded decimal.Decimal // GapToNextTier / DaysRemaining

	// Rush is present only when there is a gap and the data month is the
	// active month.
	Rush *RushAnalysis
}

// Recommendation is the rush analyzer's verdict on buying the gap.
type Recommendation string

const (
	RecommendRush     Recommendation = "rush"     // net gain positive
	RecommendConsider Recommendation = "consider" // loss smaller than the policy's share of the bonus
	RecommendSkip     Recommendation = "skip"
)

// PostRushPlan is the per-post slice of a rush analysis: the organic
// projection for the post plus its allocation of the extra spend.
type PostRushPlan struct {
	Content        string
	ROAS           decimal.Decimal
	ROI            decimal.Decimal
	IsNewPost      bool
	ProjectedGMV   decimal.Decimal // AvgDailyGMV x daysRemaining
	ProjectedSpend decimal.Decimal // avg daily spend x daysRemaining
	ExtraGMV       decimal.Decimal // share of the shortfall
	ExtraSpend     decimal.Decimal // ExtraGMV / ROAS
	ExtraCost      decimal.Decimal // ExtraSpend x (1 - ROI); negative when ROI > 1
}

// RushAnalysis answers: is it worth pushing extra ad spend to cross the
// next bonus tier before month end?
type RushAnalysis struct {
	CanReachNaturally bool            // organic trajectory already clears the gap
	Gap               decimal.Decimal
	TotalProjectedGMV decimal.Decimal
	Shortfall         decimal.Decimal // max(0, Gap - TotalProjectedGMV)

	// Posts carry the allocation, ranked by descending ROAS for display.
	Posts []PostRushPlan

	TotalExtraSpend decimal.Decimal
	TotalExtraCost  decimal.Decimal
	BonusIncrease   decimal.Decimal
	NetGain         decimal.Decimal // BonusIncrease - TotalExtraCost
	Recommendation  Recommendation
}

// CreatorSettlement is one creator's profit/loss settlement for a
// reporting window, including the two-phase payment split.
type CreatorSettlement struct {
	Creator string

	// HasSnapshot is false for creators present in ad data but absent
	// from the bonus-snapshot feed; their settlement degrades to
	// windowed commission with no bonus differential.
	HasSnapshot bool

	AdSpend           decimal.Decimal
	CommissionEarning decimal.Decimal

	TotalTierBonus    decimal.Decimal // bonus at projected month-end revenue
	OrganicTierBonus  decimal.Decimal // bonus at organic-only revenue
	BonusDiff         decimal.Decimal // full-month differential
	BonusDiffProrated decimal.Decimal // window-scaled

	TotalEarning decimal.Decimal // CommissionEarning + BonusDiffProrated
	TotalProfit  decimal.Decimal // TotalEarning - AdSpend
	IsProfitable bool            // strict: TotalProfit > 0

	// MarginTecdo is the platform's share: half of any profit, all of
	// any loss. The asymmetry is the core business rule.
	MarginTecdo decimal.Decimal

	// Two-phase payment schedule (amounts owed to the platform).
	RewardsPaymentM1    decimal.Decimal // due one month after the data month
	CommissionPaymentM2 decimal.Decimal // due two months after
	TotalPayment        decimal.Decimal
}

// SettlementTotals is the elementwise sum of every per-creator field.
type SettlementTotals struct {
	AdSpend             decimal.Decimal
	CommissionEarning   decimal.Decimal
	BonusDiff           decimal.Decimal
	BonusDiffProrated   decimal.Decimal
	TotalEarning        decimal.Decimal
	TotalProfit         decimal.Decimal
	MarginTecdo         decimal.Decimal
	RewardsPaymentM1    decimal.Decimal
	CommissionPaymentM2 decimal.Decimal
	TotalPayment        decimal.Decimal
}

// EarningsSummary is the settlement report for a window: per-creator
// settlements (descending ad spend) plus totals.
type EarningsSummary struct {
	Window               Period
	UseMonthlyCommission bool
	Settlements          []CreatorSettlement
	Totals               SettlementTotals
}
