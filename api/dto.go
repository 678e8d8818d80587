/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract, allowing:
  - Field renaming without breaking clients
  - API-specific validation
  - Version evolution

DECIMALS:
  The engine computes in exact decimals; the API serves floats. The
  conversion happens here, at the very edge, via InexactFloat64 - the
  dashboard charts don't care about the 16th digit, the settlement math
  does, and the math is done before these types exist.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

SEE ALSO:
  - handlers.go: Uses these types
  - factory/schedule.go: ScheduleJSON, reused verbatim for snapshot upload
*/
package api

import (
	"github.com/shopspring/decimal"

	"github.com/tecdo/creator-engine/engine"
)

// =============================================================================
// RECORD TYPES
// =============================================================================

// RecordUpload is one row of the ingest request body. Money arrives as
// JSON numbers; spreadsheet exports don't produce anything better.
type RecordUpload struct {
	Date     string  `json:"date"` // YYYY-MM-DD
	Creator  string  `json:"creator"`
	Content  string  `json:"content"`
	Platform string  `json:"platform,omitempty"`
	Category string  `json:"category,omitempty"`
	Theme    string  `json:"theme,omitempty"`
	Spend    float64 `json:"spend"`
	GMV      float64 `json:"gmv"`
	Earning  float64 `json:"earning"`
	Status   string  `json:"status,omitempty"`
}

// IngestResponse reports how an upload batch fared.
type IngestResponse struct {
	Saved    int         `json:"saved"`
	Rejected []RejectDTO `json:"rejected,omitempty"`
}

// RejectDTO is one rejected upload row with the reason.
type RejectDTO struct {
	Index   int    `json:"index"`
	Creator string `json:"creator,omitempty"`
	Content string `json:"content,omitempty"`
	Reason  string `json:"reason"`
}

// RecordDTO is an enriched record in API responses.
type RecordDTO struct {
	ID                string  `json:"id"`
	Date              string  `json:"date"`
	Creator           string  `json:"creator"`
	Content           string  `json:"content"`
	Platform          string  `json:"platform,omitempty"`
	Category          string  `json:"category,omitempty"`
	Theme             string  `json:"theme,omitempty"`
	Spend             float64 `json:"spend"`
	GMV               float64 `json:"gmv"`
	Earning           float64 `json:"earning"`
	Status            string  `json:"status"`
	ROI               float64 `json:"roi"`
	CumulativeSpend   float64 `json:"cumulative_spend"`
	CumulativeEarning float64 `json:"cumulative_earning"`
	CumulativeROI     float64 `json:"cumulative_roi"`
}

// =============================================================================
// KPI TYPES
// =============================================================================

// KPIResponse is the dashboard strip plus an optional breakdown.
type KPIResponse struct {
	Totals KPITotalsDTO `json:"totals"`
	Rows   []KPIRowDTO  `json:"rows,omitempty"`
}

// KPITotalsDTO is the overall totals strip.
type KPITotalsDTO struct {
	TotalSpend    float64 `json:"total_spend"`
	TotalGMV      float64 `json:"total_gmv"`
	TotalEarning  float64 `json:"total_earning"`
	OverallROI    float64 `json:"overall_roi"`
	OverallROAS   float64 `json:"overall_roas"`
	Creators      int     `json:"creators"`
	Contents      int     `json:"contents"`
	ActiveContent int     `json:"active_content"`
	Records       int     `json:"records"`
}

// KPIRowDTO is one grouped aggregate.
type KPIRowDTO struct {
	Key     string  `json:"key"`
	Spend   float64 `json:"spend"`
	GMV     float64 `json:"gmv"`
	Earning float64 `json:"earning"`
	ROI     float64 `json:"roi"`
	ROAS    float64 `json:"roas"`
	Records int     `json:"records"`
}

// =============================================================================
// PROGRESS / RUSH TYPES
// =============================================================================

// TierDTO is one ladder rung.
type TierDTO struct {
	Name      string  `json:"name"`
	Threshold float64 `json:"threshold"`
	Bonus     float64 `json:"bonus"`
}

// TierProgressDTO reports a creator's ladder position.
type TierProgressDTO struct {
	Creator        string           `json:"creator"`
	DataMonth      string           `json:"data_month"`
	CurrentRevenue float64          `json:"current_revenue"`
	CurrentTier    *TierDTO         `json:"current_tier,omitempty"`
	CurrentBonus   float64          `json:"current_bonus"`
	NextTier       *TierDTO         `json:"next_tier,omitempty"`
	GapToNextTier  float64          `json:"gap_to_next_tier"`
	DaysRemaining  int              `json:"days_remaining"`
	DailyGMVNeeded float64          `json:"daily_gmv_needed"`
	Rush           *RushAnalysisDTO `json:"rush,omitempty"`
}

// RushAnalysisDTO is the rush verdict with its per-post plan.
type RushAnalysisDTO struct {
	CanReachNaturally bool              `json:"can_reach_naturally"`
	Gap               float64           `json:"gap"`
	TotalProjectedGMV float64           `json:"total_projected_gmv"`
	Shortfall         float64           `json:"shortfall"`
	Posts             []PostRushPlanDTO `json:"posts"`
	TotalExtraSpend   float64           `json:"total_extra_spend"`
	TotalExtraCost    float64           `json:"total_extra_cost"`
	BonusIncrease     float64           `json:"bonus_increase"`
	NetGain           float64           `json:"net_gain"`
	Recommendation    string            `json:"recommendation"`
}

// PostRushPlanDTO is one post's slice of the rush plan.
type PostRushPlanDTO struct {
	Content        string  `json:"content"`
	ROAS           float64 `json:"roas"`
	ROI            float64 `json:"roi"`
	IsNewPost      bool    `json:"is_new_post"`
	ProjectedGMV   float64 `json:"projected_gmv"`
	ProjectedSpend float64 `json:"projected_spend"`
	ExtraGMV       float64 `json:"extra_gmv"`
	ExtraSpend     float64 `json:"extra_spend"`
	ExtraCost      float64 `json:"extra_cost"`
}

// =============================================================================
// SETTLEMENT TYPES
// =============================================================================

// SettlementResponse is the settlement report for a window.
type SettlementResponse struct {
	Start                string               `json:"start"`
	End                  string               `json:"end"`
	UseMonthlyCommission bool                 `json:"use_monthly_commission"`
	Settlements          []SettlementDTO      `json:"settlements"`
	Totals               SettlementTotalsDTO  `json:"totals"`
}

// SettlementDTO is one creator's settlement.
type SettlementDTO struct {
	Creator             string  `json:"creator"`
	HasSnapshot         bool    `json:"has_snapshot"`
	AdSpend             float64 `json:"ad_spend"`
	CommissionEarning   float64 `json:"commission_earning"`
	TotalTierBonus      float64 `json:"total_tier_bonus"`
	OrganicTierBonus    float64 `json:"organic_tier_bonus"`
	BonusDiff           float64 `json:"bonus_diff"`
	BonusDiffProrated   float64 `json:"bonus_diff_prorated"`
	TotalEarning        float64 `json:"total_earning"`
	TotalProfit         float64 `json:"total_profit"`
	IsProfitable        bool    `json:"is_profitable"`
	MarginTecdo         float64 `json:"margin_tecdo"`
	RewardsPaymentM1    float64 `json:"rewards_payment_m1"`
	CommissionPaymentM2 float64 `json:"commission_payment_m2"`
	TotalPayment        float64 `json:"total_payment"`
}

// SettlementTotalsDTO mirrors SettlementDTO's monetary fields.
type SettlementTotalsDTO struct {
	AdSpend             float64 `json:"ad_spend"`
	CommissionEarning   float64 `json:"commission_earning"`
	BonusDiff           float64 `json:"bonus_diff"`
	BonusDiffProrated   float64 `json:"bonus_diff_prorated"`
	TotalEarning        float64 `json:"total_earning"`
	TotalProfit         float64 `json:"total_profit"`
	MarginTecdo         float64 `json:"margin_tecdo"`
	RewardsPaymentM1    float64 `json:"rewards_payment_m1"`
	CommissionPaymentM2 float64 `json:"commission_payment_m2"`
	TotalPayment        float64 `json:"total_payment"`
}

// =============================================================================
// SCENARIO TYPES
// =============================================================================

// ScenarioDTO represents a demo scenario.
type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LoadScenarioRequest picks a scenario to load.
type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func f(d decimal.Decimal) float64 { return d.InexactFloat64() }

func toRecordDTO(r engine.EnrichedRecord) RecordDTO {
	return RecordDTO{
		ID:                r.ID,
		Date:              r.Date.String(),
		Creator:           r.Creator,
		Content:           r.Content,
		Platform:          r.Platform,
		Category:          r.Category,
		Theme:             r.Theme,
		Spend:             f(r.Spend),
		GMV:               f(r.GMV),
		Earning:           f(r.Earning),
		Status:            string(r.Status),
		ROI:               f(r.ROI),
		CumulativeSpend:   f(r.CumulativeSpend),
		CumulativeEarning: f(r.CumulativeEarning),
		CumulativeROI:     f(r.CumulativeROI),
	}
}

func toRecordDTOs(records []engine.EnrichedRecord) []RecordDTO {
	dtos := make([]RecordDTO, len(records))
	for i, r := range records {
		dtos[i] = toRecordDTO(r)
	}
	return dtos
}

func toKPITotalsDTO(s engine.KPISummary) KPITotalsDTO {
	return KPITotalsDTO{
		TotalSpend:    f(s.TotalSpend),
		TotalGMV:      f(s.TotalGMV),
		TotalEarning:  f(s.TotalEarning),
		OverallROI:    f(s.OverallROI),
		OverallROAS:   f(s.OverallROAS),
		Creators:      s.Creators,
		Contents:      s.Contents,
		ActiveContent: s.ActiveContent,
		Records:       s.Records,
	}
}

func toKPIRowDTOs(rows []engine.KPIRow) []KPIRowDTO {
	dtos := make([]KPIRowDTO, len(rows))
	for i, row := range rows {
		dtos[i] = KPIRowDTO{
			Key:     row.Key,
			Spend:   f(row.Spend),
			GMV:     f(row.GMV),
			Earning: f(row.Earning),
			ROI:     f(row.ROI),
			ROAS:    f(row.ROAS),
			Records: row.Records,
		}
	}
	return dtos
}

func toTierDTO(t *engine.TierLevel) *TierDTO {
	if t == nil {
		return nil
	}
	return &TierDTO{Name: t.Name, Threshold: f(t.Threshold), Bonus: f(t.Bonus)}
}

func toProgressDTO(p engine.TierProgress, dataMonth engine.Month) TierProgressDTO {
	return TierProgressDTO{
		Creator:        p.Creator,
		DataMonth:      dataMonth.String(),
		CurrentRevenue: f(p.CurrentRevenue),
		CurrentTier:    toTierDTO(p.CurrentTier),
		CurrentBonus:   f(p.CurrentBonus),
		NextTier:       toTierDTO(p.NextTier),
		GapToNextTier:  f(p.GapToNextTier),
		DaysRemaining:  p.DaysRemaining,
		DailyGMVNeeded: f(p.DailyGMVNeeded),
		Rush:           toRushDTO(p.Rush),
	}
}

func toRushDTO(a *engine.RushAnalysis) *RushAnalysisDTO {
	if a == nil {
		return nil
	}
	dto := &RushAnalysisDTO{
		CanReachNaturally: a.CanReachNaturally,
		Gap:               f(a.Gap),
		TotalProjectedGMV: f(a.TotalProjectedGMV),
		Shortfall:         f(a.Shortfall),
		TotalExtraSpend:   f(a.TotalExtraSpend),
		TotalExtraCost:    f(a.TotalExtraCost),
		BonusIncrease:     f(a.BonusIncrease),
		NetGain:           f(a.NetGain),
		Recommendation:    string(a.Recommendation),
	}
	for _, plan := range a.Posts {
		dto.Posts = append(dto.Posts, PostRushPlanDTO{
			Content:        plan.Content,
			ROAS:           f(plan.ROAS),
			ROI:            f(plan.ROI),
			IsNewPost:      plan.IsNewPost,
			ProjectedGMV:   f(plan.ProjectedGMV),
			ProjectedSpend: f(plan.ProjectedSpend),
			ExtraGMV:       f(plan.ExtraGMV),
			ExtraSpend:     f(plan.ExtraSpend),
			ExtraCost:      f(plan.ExtraCost),
		})
	}
	return dto
}

func toSettlementResponse(summary engine.EarningsSummary) SettlementResponse {
	resp := SettlementResponse{
		Start:                summary.Window.Start.String(),
		End:                  summary.Window.End.String(),
		UseMonthlyCommission: summary.UseMonthlyCommission,
		Settlements:          []SettlementDTO{},
		Totals:               toSettlementTotalsDTO(summary.Totals),
	}
	for _, s := range summary.Settlements {
		resp.Settlements = append(resp.Settlements, SettlementDTO{
			Creator:             s.Creator,
			HasSnapshot:         s.HasSnapshot,
			AdSpend:             f(s.AdSpend),
			CommissionEarning:   f(s.CommissionEarning),
			TotalTierBonus:      f(s.TotalTierBonus),
			OrganicTierBonus:    f(s.OrganicTierBonus),
			BonusDiff:           f(s.BonusDiff),
			BonusDiffProrated:   f(s.BonusDiffProrated),
			TotalEarning:        f(s.TotalEarning),
			TotalProfit:         f(s.TotalProfit),
			IsProfitable:        s.IsProfitable,
			MarginTecdo:         f(s.MarginTecdo),
			RewardsPaymentM1:    f(s.RewardsPaymentM1),
			CommissionPaymentM2: f(s.CommissionPaymentM2),
			TotalPayment:        f(s.TotalPayment),
		})
	}
	return resp
}

func toSettlementTotalsDTO(t engine.SettlementTotals) SettlementTotalsDTO {
	return SettlementTotalsDTO{
		AdSpend:             f(t.AdSpend),
		CommissionEarning:   f(t.CommissionEarning),
		BonusDiff:           f(t.BonusDiff),
		BonusDiffProrated:   f(t.BonusDiffProrated),
		TotalEarning:        f(t.TotalEarning),
		TotalProfit:         f(t.TotalProfit),
		MarginTecdo:         f(t.MarginTecdo),
		RewardsPaymentM1:    f(t.RewardsPaymentM1),
		CommissionPaymentM2: f(t.CommissionPaymentM2),
		TotalPayment:        f(t.TotalPayment),
	}
}

func toAdRecord(u RecordUpload) (engine.AdRecord, error) {
	date, err := engine.ParseDay(u.Date)
	if err != nil {
		return engine.AdRecord{}, err
	}
	return engine.AdRecord{
		Date:     date,
		Creator:  u.Creator,
		Content:  u.Content,
		Platform: u.Platform,
		Category: u.Category,
		Theme:    u.Theme,
		Spend:    decimal.NewFromFloat(u.Spend),
		GMV:      decimal.NewFromFloat(u.GMV),
		Earning:  decimal.NewFromFloat(u.Earning),
		Status:   engine.AdStatus(u.Status),
	}, nil
}
