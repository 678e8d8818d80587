package engine

import (
	"fmt"
	"time"
)

// =============================================================================
// DAY - Calendar-day time point
// =============================================================================

// Day is a calendar day in UTC. All engine functions that depend on
// "today" take a Day parameter; nothing in this package reads the system
// clock.
type Day struct {
	Time time.Time
}

func NewDay(year int, month time.Month, day int) Day {
	return Day{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DayOf truncates an arbitrary timestamp to its UTC calendar day.
func DayOf(t time.Time) Day {
	u := t.UTC()
	return NewDay(u.Year(), u.Month(), u.Day())
}

// ParseDay parses "2006-01-02".
func ParseDay(s string) (Day, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Day{}, fmt.Errorf("invalid day %q: %w", s, err)
	}
	return DayOf(t), nil
}

// Comparison
func (d Day) Before(other Day) bool        { return d.normalize().Before(other.normalize()) }
func (d Day) After(other Day) bool         { return d.normalize().After(other.normalize()) }
func (d Day) Equal(other Day) bool         { return d.normalize().Equal(other.normalize()) }
func (d Day) BeforeOrEqual(other Day) bool { return d.Before(other) || d.Equal(other) }
func (d Day) AfterOrEqual(other Day) bool  { return d.After(other) || d.Equal(other) }

func (d Day) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Day) AddDays(n int) Day { return Day{Time: d.normalize().AddDate(0, 0, n)} }

// Properties
func (d Day) Year() int         { return d.Time.Year() }
func (d Day) Month() time.Month { return d.Time.Month() }
func (d Day) DayOfMonth() int   { return d.Time.Day() }
func (d Day) IsZero() bool      { return d.Time.IsZero() }

func (d Day) String() string { return d.normalize().Format("2006-01-02") }

// YearMonth returns the month this day belongs to.
func (d Day) YearMonth() Month { return Month{Year: d.Year(), Month: d.Month()} }

// DaysBetween returns the number of whole days from 'from' to 'to'.
// Negative when 'to' precedes 'from'.
func DaysBetween(from, to Day) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// MONTH - Year-month, the granularity of tier snapshots
// =============================================================================

// Month identifies a data month ("2026-08"). Bonus snapshots are keyed by
// creator + Month.
type Month struct {
	Year  int
	Month time.Month
}

// ParseMonth parses "2006-01".
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("invalid month %q: %w", s, err)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

func (m Month) String() string {
	return time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC).Format("2006-01")
}

func (m Month) Start() Day { return NewDay(m.Year, m.Month, 1) }

func (m Month) End() Day {
	return Day{Time: time.Date(m.Year, m.Month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)}
}

// DaysIn returns the number of calendar days in the month.
func (m Month) DaysIn() int { return m.End().DayOfMonth() }

// Contains reports whether the day falls inside this month.
func (m Month) Contains(d Day) bool {
	return d.Year() == m.Year && d.Month() == m.Month
}

// DaysRemaining returns how many days of this month are still ahead of
// 'now', counting 'now' itself (a sale today still counts toward the
// month). Returns 0 when 'now' is outside the month: a closed month has
// nothing remaining, and a future month has no meaningful "pace" yet.
func (m Month) DaysRemaining(now Day) int {
	if !m.Contains(now) {
		return 0
	}
	return m.DaysIn() - now.DayOfMonth() + 1
}

// =============================================================================
// PERIOD - Inclusive reporting window
// =============================================================================

// Period is an inclusive [Start, End] day range. Settlement windows and
// KPI filters are always periods.
type Period struct {
	Start Day
	End   Day
}

func (p Period) Contains(d Day) bool {
	return d.AfterOrEqual(p.Start) && d.BeforeOrEqual(p.End)
}

// DayCount returns the number of days covered, both endpoints included.
func (p Period) DayCount() int {
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// MonthPeriod returns the period spanning a full month.
func MonthPeriod(m Month) Period {
	return Period{Start: m.Start(), End: m.End()}
}
