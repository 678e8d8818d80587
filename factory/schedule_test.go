package factory

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tecdo/creator-engine/engine"
)

func validSchedule() string {
	return `{
		"creator": "amelia",
		"data_month": "2026-08",
		"total_shipped_revenue": "6000",
		"shipped_rev_organic": "1500",
		"shipped_rev_ads": "4500",
		"commission_organic": "300",
		"commission_ads": "1200.50",
		"tiers": [
			{"name": "bronze", "threshold": "1000", "bonus": "50"},
			{"name": "silver", "threshold": "5000", "bonus": "200"},
			{"name": "gold", "threshold": "10000", "bonus": "500"}
		]
	}`
}

func TestParseSchedule_Valid(t *testing.T) {
	factory := NewScheduleFactory()

	snapshot, err := factory.ParseSchedule(validSchedule())
	require.NoError(t, err)

	assert.Equal(t, "amelia", snapshot.Creator)
	assert.Equal(t, engine.Month{Year: 2026, Month: time.August}, snapshot.DataMonth)
	assert.Equal(t, "6000", snapshot.TotalShippedRevenue.String())
	assert.Equal(t, "4500", snapshot.ShippedRevAds.String())
	assert.Equal(t, "300", snapshot.CommissionOrganic.String())
	assert.Equal(t, "1200.5", snapshot.CommissionAds.String())
	require.Len(t, snapshot.Tiers, 3)
	assert.Equal(t, "silver", snapshot.Tiers[1].Name)
	assert.Equal(t, "5000", snapshot.Tiers[1].Threshold.String())
}

func TestParseSchedule_RoundTrip(t *testing.T) {
	factory := NewScheduleFactory()

	snapshot, err := factory.ParseSchedule(validSchedule())
	require.NoError(t, err)

	again, err := factory.FromJSON(factory.ToJSON(snapshot))
	require.NoError(t, err)
	assert.Equal(t, snapshot, again)
}

func TestParseSchedule_MissingCreator(t *testing.T) {
	factory := NewScheduleFactory()

	_, err := factory.ParseSchedule(`{"data_month": "2026-08"}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrMissingIdentity))
}

func TestParseSchedule_BadMonth(t *testing.T) {
	factory := NewScheduleFactory()

	_, err := factory.ParseSchedule(`{"creator": "amelia", "data_month": "August 2026"}`)
	assert.Error(t, err)
}

func TestParseSchedule_NegativeFigure(t *testing.T) {
	factory := NewScheduleFactory()

	_, err := factory.ParseSchedule(`{
		"creator": "amelia",
		"data_month": "2026-08",
		"commission_ads": "-5"
	}`)
	require.Error(t, err)
	assert.True(t, errors.Is(err, engine.ErrNegativeAmount))
}

func TestParseSchedule_EmptyFiguresDefaultToZero(t *testing.T) {
	factory := NewScheduleFactory()

	snapshot, err := factory.ParseSchedule(`{"creator": "amelia", "data_month": "2026-08"}`)
	require.NoError(t, err)
	assert.True(t, snapshot.CommissionAds.IsZero())
	assert.Empty(t, snapshot.Tiers)
}

func TestParseTiers_RejectsDuplicateThresholds(t *testing.T) {
	factory := NewScheduleFactory()

	duplicate := `{
		"creator": "amelia",
		"data_month": "2026-08",
		"tiers": [
			{"name": "a", "threshold": "1000", "bonus": "50"},
			{"name": "b", "threshold": "1000", "bonus": "80"}
		]
	}`
	_, err := factory.ParseSchedule(duplicate)
	assert.Error(t, err, "equal thresholds make resolution ambiguous")
}

func TestParseTiers_AcceptsUnorderedLadder(t *testing.T) {
	factory := NewScheduleFactory()

	unordered := `{
		"creator": "amelia",
		"data_month": "2026-08",
		"tiers": [
			{"name": "gold", "threshold": "10000", "bonus": "500"},
			{"name": "bronze", "threshold": "1000", "bonus": "50"},
			{"name": "silver", "threshold": "5000", "bonus": "200"}
		]
	}`
	snapshot, err := factory.ParseSchedule(unordered)
	require.NoError(t, err)
	require.Len(t, snapshot.Tiers, 3)
	assert.Equal(t, "bronze", snapshot.Tiers[0].Name)
	assert.Equal(t, "silver", snapshot.Tiers[1].Name)
	assert.Equal(t, "gold", snapshot.Tiers[2].Name)
}

func TestParseTiers_RejectsOversizedLadder(t *testing.T) {
	factory := NewScheduleFactory()

	sj := ScheduleJSON{Creator: "amelia", DataMonth: "2026-08"}
	for i := 0; i <= MaxTiers; i++ {
		sj.Tiers = append(sj.Tiers, TierJSON{
			Name:      string(rune('a' + i)),
			Threshold: strconv.Itoa(1000 * (i + 1)),
			Bonus:     "10",
		})
	}
	_, err := factory.FromJSON(sj)
	assert.Error(t, err)
}
