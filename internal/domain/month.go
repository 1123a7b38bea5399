package domain

import (
	"fmt"
	"time"
)

// MonthLayout is the layout of a month token ("YYYY-MM").
const MonthLayout = "2006-01"

// Month identifies one calendar month. The zero value is not a valid month;
// construct it with ParseMonth or CurrentMonth.
type Month struct {
	Year  int
	Month time.Month
}

// MonthRange is the inclusive pair of calendar days covering one month.
type MonthRange struct {
	Start time.Time
	End   time.Time
}

// ParseMonth parses a strict "YYYY-MM" token.
// Free-form dates, single-digit months, out-of-range months and any trailing
// text are rejected with ErrInvalidMonth.
func ParseMonth(token string) (Month, error) {
	t, err := time.Parse(MonthLayout, token)
	if err != nil {
		return Month{}, fmt.Errorf("%w: %q", ErrInvalidMonth, token)
	}
	return Month{Year: t.Year(), Month: t.Month()}, nil
}

// CurrentMonth returns the month containing now.
func CurrentMonth(now time.Time) Month {
	return Month{Year: now.Year(), Month: now.Month()}
}

// MonthRangeOf parses token and returns its inclusive day range.
func MonthRangeOf(token string) (MonthRange, error) {
	m, err := ParseMonth(token)
	if err != nil {
		return MonthRange{}, err
	}
	return m.Range(), nil
}

// Range returns the first and last calendar day of the month, both at
// midnight UTC.
func (m Month) Range() MonthRange {
	start := time.Date(m.Year, m.Month, 1, 0, 0, 0, 0, time.UTC)
	// Day 0 of the next month normalizes to the last day of this one.
	end := time.Date(m.Year, m.Month+1, 0, 0, 0, 0, 0, time.UTC)
	return MonthRange{Start: start, End: end}
}

// String renders the month as "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Label renders the month for people, e.g. "March 2024".
func (m Month) Label() string {
	return fmt.Sprintf("%s %d", m.Month, m.Year)
}

// Contains reports whether d falls on a day inside the range.
func (r MonthRange) Contains(d time.Time) bool {
	day := d.Format(DateLayout)
	return day >= r.Start.Format(DateLayout) && day <= r.End.Format(DateLayout)
}

// StartString returns the first day as "YYYY-MM-DD".
func (r MonthRange) StartString() string { return r.Start.Format(DateLayout) }

// EndString returns the last day as "YYYY-MM-DD".
func (r MonthRange) EndString() string { return r.End.Format(DateLayout) }
