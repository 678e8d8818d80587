/*
Package factory provides JSON to Go bonus-schedule conversion.

PURPOSE:
  Converts JSON tier-schedule definitions into engine.CreatorBonusSnapshot
  values. This enables schedule configuration without code changes - the
  operations team can define a creator's monthly tier ladder in JSON, and
  the factory creates the proper Go structs with validated decimals.

WHY JSON?
  - Non-developers can maintain tier ladders
  - Easy integration with the admin UI
  - Version control for schedule definitions
  - Database storage of schedule configs

JSON SCHEMA:
  {
    "creator": "amelia",
    "data_month": "2026-08",
    "total_shipped_revenue": "6000",
    "shipped_rev_organic": "1500",
    "shipped_rev_ads": "4500",
    "commission_organic": "300",
    "commission_ads": "1200",
    "tiers": [
      {"name": "bronze", "threshold": "1000", "bonus": "50"},
      {"name": "silver", "threshold": "5000", "bonus": "200"},
      {"name": "gold", "threshold": "10000", "bonus": "500"}
    ]
  }

  Monetary fields are JSON strings parsed as exact decimals; float
  literals are rejected by shopspring's strict string path only when
  malformed, so "1200.50" is fine but "1,200" is not.

VALIDATION:
  - data_month must parse as "2006-01"
  - at most MaxTiers tiers per schedule
  - thresholds strictly increasing once sorted ascending (the upload
    order is free; duplicates are configuration errors)
  - all monetary figures non-negative

SEE ALSO:
  - engine/types.go: CreatorBonusSnapshot and TierLevel definitions
  - store/sqlite: persists schedules in the shape this factory emits
*/
package factory

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/tecdo/creator-engine/engine"
)

// MaxTiers bounds a schedule's ladder. Real ladders have 3-5 rungs; more
// is a sign of a malformed upload.
const MaxTiers = 5

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// ScheduleJSON is the JSON representation of a creator's monthly bonus
// schedule.
type ScheduleJSON struct {
	Creator             string     `json:"creator"`
	DataMonth           string     `json:"data_month"`
	TotalShippedRevenue string     `json:"total_shipped_revenue"`
	ShippedRevOrganic   string     `json:"shipped_rev_organic"`
	ShippedRevAds       string     `json:"shipped_rev_ads"`
	CommissionOrganic   string     `json:"commission_organic"`
	CommissionAds       string     `json:"commission_ads"`
	Tiers               []TierJSON `json:"tiers"`
}

// TierJSON represents one ladder rung.
type TierJSON struct {
	Name      string `json:"name"`
	Threshold string `json:"threshold"`
	Bonus     string `json:"bonus"`
}

// =============================================================================
// SCHEDULE FACTORY
// =============================================================================

// ScheduleFactory converts JSON schedules to engine snapshots.
type ScheduleFactory struct{}

// NewScheduleFactory creates a new schedule factory.
func NewScheduleFactory() *ScheduleFactory {
	return &ScheduleFactory{}
}

// ParseSchedule parses a JSON string into a CreatorBonusSnapshot.
func (f *ScheduleFactory) ParseSchedule(jsonStr string) (engine.CreatorBonusSnapshot, error) {
	var sj ScheduleJSON
	if err := json.Unmarshal([]byte(jsonStr), &sj); err != nil {
		return engine.CreatorBonusSnapshot{}, fmt.Errorf("failed to parse schedule JSON: %w", err)
	}
	return f.FromJSON(sj)
}

// FromJSON converts ScheduleJSON to an engine.CreatorBonusSnapshot.
func (f *ScheduleFactory) FromJSON(sj ScheduleJSON) (engine.CreatorBonusSnapshot, error) {
	var snapshot engine.CreatorBonusSnapshot

	if sj.Creator == "" {
		return snapshot, fmt.Errorf("schedule: %w", engine.ErrMissingIdentity)
	}
	dataMonth, err := engine.ParseMonth(sj.DataMonth)
	if err != nil {
		return snapshot, fmt.Errorf("schedule for %s: %w", sj.Creator, err)
	}

	totalShipped, err := parseMoney("total_shipped_revenue", sj.TotalShippedRevenue)
	if err != nil {
		return snapshot, fmt.Errorf("schedule for %s: %w", sj.Creator, err)
	}
	organic, err := parseMoney("shipped_rev_organic", sj.ShippedRevOrganic)
	if err != nil {
		return snapshot, fmt.Errorf("schedule for %s: %w", sj.Creator, err)
	}
	adsRevenue, err := parseMoney("shipped_rev_ads", sj.ShippedRevAds)
	if err != nil {
		return snapshot, fmt.Errorf("schedule for %s: %w", sj.Creator, err)
	}
	commissionOrganic, err := parseMoney("commission_organic", sj.CommissionOrganic)
	if err != nil {
		return snapshot, fmt.Errorf("schedule for %s: %w", sj.Creator, err)
	}
	commission, err := parseMoney("commission_ads", sj.CommissionAds)
	if err != nil {
		return snapshot, fmt.Errorf("schedule for %s: %w", sj.Creator, err)
	}

	tiers, err := parseTiers(sj.Tiers)
	if err != nil {
		return snapshot, fmt.Errorf("schedule for %s: %w", sj.Creator, err)
	}

	return engine.CreatorBonusSnapshot{
		Creator:             sj.Creator,
		DataMonth:           dataMonth,
		TotalShippedRevenue: totalShipped,
		ShippedRevOrganic:   organic,
		ShippedRevAds:       adsRevenue,
		CommissionOrganic:   commissionOrganic,
		CommissionAds:       commission,
		Tiers:               tiers,
	}, nil
}

// ToJSON converts a snapshot back to its JSON shape, for the admin UI
// and for round-tripping through the database.
func (f *ScheduleFactory) ToJSON(snapshot engine.CreatorBonusSnapshot) ScheduleJSON {
	sj := ScheduleJSON{
		Creator:             snapshot.Creator,
		DataMonth:           snapshot.DataMonth.String(),
		TotalShippedRevenue: snapshot.TotalShippedRevenue.String(),
		ShippedRevOrganic:   snapshot.ShippedRevOrganic.String(),
		ShippedRevAds:       snapshot.ShippedRevAds.String(),
		CommissionOrganic:   snapshot.CommissionOrganic.String(),
		CommissionAds:       snapshot.CommissionAds.String(),
	}
	for _, tier := range snapshot.Tiers {
		sj.Tiers = append(sj.Tiers, TierJSON{
			Name:      tier.Name,
			Threshold: tier.Threshold.String(),
			Bonus:     tier.Bonus.String(),
		})
	}
	return sj
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

// parseMoney parses a non-negative decimal field. Empty means zero - the
// upload format omits fields that don't apply yet (e.g. commission early
// in the month).
func parseMoney(field, s string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	value, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%s: invalid decimal %q: %w", field, s, err)
	}
	if value.IsNegative() {
		return decimal.Zero, fmt.Errorf("%s: %w: %s", field, engine.ErrNegativeAmount, s)
	}
	return value, nil
}

func parseTiers(tiers []TierJSON) ([]engine.TierLevel, error) {
	if len(tiers) > MaxTiers {
		return nil, fmt.Errorf("%d tiers exceeds the maximum of %d", len(tiers), MaxTiers)
	}

	var parsed []engine.TierLevel
	for i, tj := range tiers {
		if tj.Name == "" {
			return nil, fmt.Errorf("tier %d: missing name", i)
		}
		threshold, err := parseMoney(fmt.Sprintf("tier %q threshold", tj.Name), tj.Threshold)
		if err != nil {
			return nil, err
		}
		bonus, err := parseMoney(fmt.Sprintf("tier %q bonus", tj.Name), tj.Bonus)
		if err != nil {
			return nil, err
		}

		parsed = append(parsed, engine.TierLevel{Name: tj.Name, Threshold: threshold, Bonus: bonus})
	}

	// Upload order is free; only equal thresholds are a configuration
	// error, since they make tier resolution ambiguous. Sort ascending,
	// then check adjacency.
	sort.SliceStable(parsed, func(i, j int) bool {
		return parsed[i].Threshold.LessThan(parsed[j].Threshold)
	})
	for i := 1; i < len(parsed); i++ {
		if parsed[i].Threshold.Equal(parsed[i-1].Threshold) {
			return nil, fmt.Errorf("tiers %q and %q share threshold %s",
				parsed[i-1].Name, parsed[i].Name, parsed[i].Threshold)
		}
	}
	return parsed, nil
}
