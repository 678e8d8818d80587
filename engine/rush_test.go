package engine_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tecdo/creator-engine/engine"
)

// =============================================================================
// POST EFFICIENCY TESTS
// =============================================================================

func TestPostEfficiencies_TrailingWindowFromDataNotClock(t *testing.T) {
	// GIVEN: Freshest record on Aug 20, plus an old record on Aug 10
	// WHEN: Computing the trailing 3-day window
	// THEN: Window is Aug 18-20; the Aug 10 record is excluded

	records := engine.Enrich([]engine.AdRecord{
		rec(day(2026, time.August, 10), "amelia", "post-1", 999, 9999, 999),
		rec(day(2026, time.August, 18), "amelia", "post-1", 30, 400, 40),
		rec(day(2026, time.August, 20), "amelia", "post-1", 30, 600, 60),
	})

	posts := engine.PostEfficiencies(records, 3)
	if len(posts) != 1 {
		t.Fatalf("expected 1 post, got %d", len(posts))
	}
	eq(t, d(60), posts[0].TotalSpend, "window spend excludes stale record")
	if posts[0].DaysWithData != 2 {
		t.Errorf("expected 2 distinct days, got %d", posts[0].DaysWithData)
	}
	if !posts[0].IsNewPost {
		t.Error("2 days of data should mark the post as new")
	}
	eq(t, d(500), posts[0].AvgDailyGMV, "avg daily gmv = 1000/2")
}

func TestPostEfficiencies_EmptyInput(t *testing.T) {
	if posts := engine.PostEfficiencies(nil, 3); posts != nil {
		t.Errorf("expected nil for empty input, got %v", posts)
	}
}

func TestPostEfficiencies_ZeroSpendRatios(t *testing.T) {
	// GIVEN: A post with sales but no spend in the window
	// WHEN: Summarizing
	// THEN: ROAS and ROI are 0, not Inf

	records := engine.Enrich([]engine.AdRecord{
		rec(day(2026, time.August, 20), "amelia", "post-1", 0, 500, 50),
	})
	posts := engine.PostEfficiencies(records, 3)
	eq(t, decimal.Zero, posts[0].ROAS, "roas with zero spend")
	eq(t, decimal.Zero, posts[0].ROI, "roi with zero spend")
}

// =============================================================================
// RUSH ANALYZER TESTS
// =============================================================================

func post(content string, spend, gmv, earning float64, days int) engine.PostEfficiency {
	return engine.PostEfficiency{
		Content:      content,
		TotalSpend:   d(spend),
		TotalGMV:     d(gmv),
		TotalEarning: d(earning),
		DaysWithData: days,
		IsNewPost:    days < engine.NewPostDayThreshold,
		ROAS:         engine.SafeDiv(d(gmv), d(spend)),
		ROI:          engine.SafeDiv(d(earning), d(spend)),
		AvgDailyGMV:  engine.SafeDiv(d(gmv), d(float64(days))),
	}
}

func TestAnalyzeRush_NilWhenNothingToAnalyze(t *testing.T) {
	// GIVEN: No gap, or no post data
	// THEN: nil analysis

	posts := []engine.PostEfficiency{post("post-1", 100, 1000, 100, 3)}
	if engine.AnalyzeRush(decimal.Zero, posts, 10, d(300), engine.DefaultRushPolicy()) != nil {
		t.Error("gap 0 should yield nil")
	}
	if engine.AnalyzeRush(d(-50), posts, 10, d(300), engine.DefaultRushPolicy()) != nil {
		t.Error("negative gap should yield nil")
	}
	if engine.AnalyzeRush(d(1000), nil, 10, d(300), engine.DefaultRushPolicy()) != nil {
		t.Error("no posts should yield nil")
	}
}

func TestAnalyzeRush_ShortfallAllocationReconciles(t *testing.T) {
	// GIVEN: Two posts with spends 100 and 300 (exact 1/4 - 3/4 split),
	//        combined projection short of the gap
	// WHEN: Allocating the shortfall
	// THEN: Per-post extraGMV sums to the shortfall; extraSpend/extraCost
	//       sums match the reported totals

	posts := []engine.PostEfficiency{
		post("post-a", 100, 600, 50, 3),  // roas 6, roi 0.5, avg 200/day
		post("post-b", 300, 1200, 150, 3), // roas 4, roi 0.5, avg 400/day
	}

	// 5 days remaining: projection = (200+400)*5 = 3000; gap 5000 -> shortfall 2000.
	analysis := engine.AnalyzeRush(d(5000), posts, 5, d(600), engine.DefaultRushPolicy())
	if analysis == nil {
		t.Fatal("expected analysis")
	}
	if analysis.CanReachNaturally {
		t.Error("projection 3000 < gap 5000 cannot reach naturally")
	}
	eq(t, d(2000), analysis.Shortfall, "shortfall")

	sumGMV, sumSpend, sumCost := decimal.Zero, decimal.Zero, decimal.Zero
	for _, plan := range analysis.Posts {
		sumGMV = sumGMV.Add(plan.ExtraGMV)
		sumSpend = sumSpend.Add(plan.ExtraSpend)
		sumCost = sumCost.Add(plan.ExtraCost)
	}
	eq(t, analysis.Shortfall, sumGMV, "extra gmv reconciles to shortfall")
	eq(t, analysis.TotalExtraSpend, sumSpend, "extra spend reconciles")
	eq(t, analysis.TotalExtraCost, sumCost, "extra cost reconciles")

	// post-a: extraGMV 500, spend 500/6; post-b: extraGMV 1500, spend 375.
	eq(t, d(2000).Div(d(4)).Div(d(6)).Add(d(375)), analysis.TotalExtraSpend, "total extra spend")
}

func TestAnalyzeRush_ProfitableROIMakesCostNegative(t *testing.T) {
	// GIVEN: A post with ROI > 1 (every rushed dollar comes back bigger)
	// WHEN: Allocating a shortfall
	// THEN: ExtraCost is negative and netGain exceeds the bonus increase

	posts := []engine.PostEfficiency{post("post-hot", 100, 1000, 200, 3)} // roi 2
	// avg 333.33/day x 1 day remaining, gap 2000 -> large shortfall.
	analysis := engine.AnalyzeRush(d(2000), posts, 1, d(300), engine.DefaultRushPolicy())
	if analysis == nil {
		t.Fatal("expected analysis")
	}
	if !analysis.TotalExtraCost.IsNegative() {
		t.Errorf("roi 2 should make extra cost negative, got %v", analysis.TotalExtraCost)
	}
	if !analysis.NetGain.GreaterThan(analysis.BonusIncrease) {
		t.Errorf("negative cost should push net gain above the bonus, got %v", analysis.NetGain)
	}
	if analysis.Recommendation != engine.RecommendRush {
		t.Errorf("expected rush, got %s", analysis.Recommendation)
	}
}

func TestAnalyzeRush_ZeroROASPostCostsNothing(t *testing.T) {
	// GIVEN: A post with zero ROAS (spend but no sales)
	// WHEN: Allocating
	// THEN: Its extraSpend is 0 by the zero-division policy

	posts := []engine.PostEfficiency{
		post("post-dead", 100, 0, 0, 3),
		post("post-live", 100, 400, 40, 3),
	}
	analysis := engine.AnalyzeRush(d(5000), posts, 2, d(300), engine.DefaultRushPolicy())
	if analysis == nil {
		t.Fatal("expected analysis")
	}
	for _, plan := range analysis.Posts {
		if plan.Content == "post-dead" {
			eq(t, decimal.Zero, plan.ExtraSpend, "zero-roas extra spend")
			eq(t, decimal.Zero, plan.ExtraCost, "zero-roas extra cost")
		}
	}
}

func TestAnalyzeRush_EqualSplitWhenNoCurrentSpend(t *testing.T) {
	// GIVEN: Two posts with zero current spend
	// WHEN: Allocating a shortfall
	// THEN: The shortfall splits equally

	posts := []engine.PostEfficiency{
		post("post-a", 0, 100, 0, 1),
		post("post-b", 0, 100, 0, 1),
	}
	analysis := engine.AnalyzeRush(d(1000), posts, 1, d(300), engine.DefaultRushPolicy())
	if analysis == nil {
		t.Fatal("expected analysis")
	}
	for _, plan := range analysis.Posts {
		eq(t, d(400), plan.ExtraGMV, "equal share of shortfall 800")
	}
}

func TestAnalyzeRush_RecommendationThresholds(t *testing.T) {
	// GIVEN: A single post whose rush cost can be tuned via the gap
	// WHEN: Net gain is positive / a small loss / a deep loss
	// THEN: rush / consider / skip

	policy := engine.DefaultRushPolicy()
	// roas 1, roi 0: every extra dollar of gmv costs a full dollar.
	posts := []engine.PostEfficiency{post("post-1", 100, 100, 0, 1)}

	// Projection 100x1=100. Gap 150 -> shortfall 50 -> cost 50 < bonus 300.
	rush := engine.AnalyzeRush(d(150), posts, 1, d(300), policy)
	if rush.Recommendation != engine.RecommendRush {
		t.Errorf("net +250 should recommend rush, got %s", rush.Recommendation)
	}

	// Gap 500 -> shortfall 400 -> cost 400; net -100 > -150 (half of 300).
	consider := engine.AnalyzeRush(d(500), posts, 1, d(300), policy)
	if consider.Recommendation != engine.RecommendConsider {
		t.Errorf("net -100 should recommend consider, got %s", consider.Recommendation)
	}

	// Gap 1000 -> shortfall 900 -> cost 900; net -600 < -150.
	skip := engine.AnalyzeRush(d(1000), posts, 1, d(300), policy)
	if skip.Recommendation != engine.RecommendSkip {
		t.Errorf("net -600 should recommend skip, got %s", skip.Recommendation)
	}
}

func TestAnalyzeRush_PostsRankedByROAS(t *testing.T) {
	// GIVEN: Posts with distinct ROAS
	// WHEN: Analyzing
	// THEN: Output posts are in descending ROAS order

	posts := []engine.PostEfficiency{
		post("post-low", 100, 200, 20, 3),
		post("post-high", 100, 900, 90, 3),
		post("post-mid", 100, 500, 50, 3),
	}
	analysis := engine.AnalyzeRush(d(10000), posts, 2, d(300), engine.DefaultRushPolicy())
	if analysis == nil {
		t.Fatal("expected analysis")
	}
	want := []string{"post-high", "post-mid", "post-low"}
	for i, plan := range analysis.Posts {
		if plan.Content != want[i] {
			t.Errorf("rank %d: expected %s, got %s", i, want[i], plan.Content)
		}
	}
}
