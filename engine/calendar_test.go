package engine_test

import (
	"testing"
	"time"

	"github.com/tecdo/creator-engine/engine"
)

// =============================================================================
// CALENDAR TESTS
// =============================================================================

func TestParseDay(t *testing.T) {
	parsed, err := engine.ParseDay("2026-08-21")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !parsed.Equal(day(2026, time.August, 21)) {
		t.Errorf("expected 2026-08-21, got %s", parsed)
	}

	if _, err := engine.ParseDay("08/21/2026"); err == nil {
		t.Error("expected error for non-ISO format")
	}
}

func TestParseMonth(t *testing.T) {
	m, err := engine.ParseMonth("2026-02")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if m.DaysIn() != 28 {
		t.Errorf("Feb 2026 has 28 days, got %d", m.DaysIn())
	}

	if _, err := engine.ParseMonth("2026-2"); err == nil {
		t.Error("expected error for unpadded month")
	}
}

func TestMonth_DaysRemaining(t *testing.T) {
	// GIVEN: August (31 days)
	// THEN: Today counts toward the remainder; outside the month -> 0

	august := month(2026, time.August)

	cases := []struct {
		now  engine.Day
		want int
	}{
		{day(2026, time.August, 1), 31},
		{day(2026, time.August, 21), 11},
		{day(2026, time.August, 31), 1},
		{day(2026, time.July, 31), 0},   // month not started
		{day(2026, time.September, 1), 0}, // month closed
	}
	for _, c := range cases {
		if got := august.DaysRemaining(c.now); got != c.want {
			t.Errorf("DaysRemaining(%s) = %d, expected %d", c.now, got, c.want)
		}
	}
}

func TestPeriod_DayCountAndContains(t *testing.T) {
	p := engine.Period{Start: day(2026, time.February, 1), End: day(2026, time.February, 7)}

	if p.DayCount() != 7 {
		t.Errorf("inclusive day count: expected 7, got %d", p.DayCount())
	}
	if !p.Contains(day(2026, time.February, 1)) || !p.Contains(day(2026, time.February, 7)) {
		t.Error("endpoints are inside the period")
	}
	if p.Contains(day(2026, time.February, 8)) {
		t.Error("day after the end is outside the period")
	}
}

func TestMonthPeriod_CoversWholeMonth(t *testing.T) {
	p := engine.MonthPeriod(month(2026, time.February))
	if p.DayCount() != 28 {
		t.Errorf("expected 28 days, got %d", p.DayCount())
	}
	if !p.End.Equal(day(2026, time.February, 28)) {
		t.Errorf("expected end Feb 28, got %s", p.End)
	}
}

func TestDaysBetween_SignedWholeDays(t *testing.T) {
	a, b := day(2026, time.August, 1), day(2026, time.August, 20)
	if got := engine.DaysBetween(a, b); got != 19 {
		t.Errorf("expected 19, got %d", got)
	}
	if got := engine.DaysBetween(b, a); got != -19 {
		t.Errorf("expected -19, got %d", got)
	}
}

func TestDayOf_TruncatesToUTC(t *testing.T) {
	// 23:30 in UTC+2 is 21:30 UTC, same calendar day.
	loc := time.FixedZone("UTC+2", 2*3600)
	stamp := time.Date(2026, time.August, 21, 23, 30, 0, 0, loc)
	if !engine.DayOf(stamp).Equal(day(2026, time.August, 21)) {
		t.Errorf("expected 2026-08-21, got %s", engine.DayOf(stamp))
	}
}
