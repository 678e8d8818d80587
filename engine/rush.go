/*
rush.go - Rush-spend analysis

PURPOSE:
  Decides whether buying extra ad spend to cross the next bonus tier
  before month end is worth it. Projects each post's organic trajectory
  forward, allocates any remaining shortfall across posts in proportion
  to their current spend, and prices that allocation with each post's
  own efficiency.

THE COST MODEL:
  For a post with ROAS r and ROI i, generating extraGMV of sales takes
  extraSpend = extraGMV / r, of which extraSpend * i comes straight back
  as commission. Net cost is extraSpend * (1 - i) - NEGATIVE when i > 1,
  meaning the incremental spend pays for itself and the "rush" is free.

THE VERDICT:
  netGain = bonusIncrease - totalExtraCost.
    rush:     netGain > 0
    consider: netGain > -ConsiderLossRatio x bonusIncrease
    skip:     otherwise
  These thresholds are a judgment heuristic, carried as a policy struct,
  not a derived optimum.
*/
package engine

import (
	"sort"

	"github.com/shopspring/decimal"
)

// RushPolicy holds the recommendation thresholds. Tune per program; the
// defaults match the dashboard's original behavior.
type RushPolicy struct {
	// ConsiderLossRatio is the tolerable loss as a fraction of the bonus
	// increase before the verdict drops from "consider" to "skip".
	ConsiderLossRatio decimal.Decimal
}

// DefaultRushPolicy tolerates losing up to half the bonus value.
func DefaultRushPolicy() RushPolicy {
	return RushPolicy{ConsiderLossRatio: decimal.NewFromFloat(0.5)}
}

// AnalyzeRush evaluates closing 'gap' of revenue within 'daysRemaining'
// given the posts' recent efficiency. bonusIncrease is the bonus gained
// by crossing the tier. Returns nil when gap <= 0 or there is no post
// data - nothing to analyze.
func AnalyzeRush(gap decimal.Decimal, posts []PostEfficiency, daysRemaining int, bonusIncrease decimal.Decimal, policy RushPolicy) *RushAnalysis {
	if !gap.IsPositive() || len(posts) == 0 {
		return nil
	}

	days := intDecimal(daysRemaining)

	// 1. Organic projection per post.
	plans := make([]PostRushPlan, 0, len(posts))
	totalProjected := decimal.Zero
	totalCurrentSpend := decimal.Zero
	for _, p := range posts {
		projectedGMV := p.AvgDailyGMV.Mul(days)
		projectedSpend := SafeDiv(p.TotalSpend, intDecimal(p.DaysWithData)).Mul(days)
		plans = append(plans, PostRushPlan{
			Content:        p.Content,
			ROAS:           p.ROAS,
			ROI:            p.ROI,
			IsNewPost:      p.IsNewPost,
			ProjectedGMV:   projectedGMV,
			ProjectedSpend: projectedSpend,
		})
		totalProjected = totalProjected.Add(projectedGMV)
		totalCurrentSpend = totalCurrentSpend.Add(p.TotalSpend)
	}

	analysis := &RushAnalysis{
		Gap:               gap,
		TotalProjectedGMV: totalProjected,
		Shortfall:         decimal.Max(decimal.Zero, gap.Sub(totalProjected)),
		BonusIncrease:     bonusIncrease,
	}

	// 2. Shortfall allocation, skipped when the organic trajectory
	// already clears the tier.
	if analysis.Shortfall.IsZero() {
		analysis.CanReachNaturally = true
	} else {
		equalShare := SafeDiv(decimal.NewFromInt(1), intDecimal(len(plans)))
		for i := range plans {
			spendRatio := equalShare
			if totalCurrentSpend.IsPositive() {
				spendRatio = posts[i].TotalSpend.Div(totalCurrentSpend)
			}
			extraGMV := analysis.Shortfall.Mul(spendRatio)
			extraSpend := SafeDiv(extraGMV, plans[i].ROAS)
			extraCost := extraSpend.Mul(decimal.NewFromInt(1).Sub(plans[i].ROI))

			plans[i].ExtraGMV = extraGMV
			plans[i].ExtraSpend = extraSpend
			plans[i].ExtraCost = extraCost
			analysis.TotalExtraSpend = analysis.TotalExtraSpend.Add(extraSpend)
			analysis.TotalExtraCost = analysis.TotalExtraCost.Add(extraCost)
		}
	}

	// 3. Verdict.
	analysis.NetGain = bonusIncrease.Sub(analysis.TotalExtraCost)
	analysis.Recommendation = policy.recommend(analysis.NetGain, bonusIncrease)

	// Display order: best converters first.
	sort.SliceStable(plans, func(i, j int) bool {
		return plans[i].ROAS.GreaterThan(plans[j].ROAS)
	})
	analysis.Posts = plans

	return analysis
}

func (p RushPolicy) recommend(netGain, bonusIncrease decimal.Decimal) Recommendation {
	switch {
	case netGain.IsPositive():
		return RecommendRush
	case netGain.GreaterThan(p.ConsiderLossRatio.Neg().Mul(bonusIncrease)):
		return RecommendConsider
	default:
		return RecommendSkip
	}
}
