package engine

import (
	"time"
)

// =============================================================================
// DATE - Day-granularity point in time
// =============================================================================

// Date is a calendar day. All balance arithmetic is date-only: callers must
// not rely on sub-day precision for eligibility windows, so every comparison
// strips time-of-day before comparing.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its calendar day.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() Date {
	return DateOf(time.Now())
}

// Comparison
func (d Date) Before(other Date) bool        { return d.t.Before(other.t) }
func (d Date) After(other Date) bool         { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool         { return d.t.Equal(other.t) }
func (d Date) BeforeOrEqual(other Date) bool { return !d.t.After(other.t) }
func (d Date) AfterOrEqual(other Date) bool  { return !d.t.Before(other.t) }

// Arithmetic
func (d Date) AddDays(n int) Date  { return Date{t: d.t.AddDate(0, 0, n)} }
func (d Date) AddYears(n int) Date { return Date{t: d.t.AddDate(n, 0, 0)} }

// Properties
func (d Date) Year() int         { return d.t.Year() }
func (d Date) Month() time.Month { return d.t.Month() }
func (d Date) Day() int          { return d.t.Day() }
func (d Date) IsZero() bool      { return d.t.IsZero() }
func (d Date) Time() time.Time   { return d.t }

func (d Date) String() string { return d.t.Format("2006-01-02") }

// =============================================================================
// DAY COUNTING
// =============================================================================

// DaysBetween returns the inclusive day count between two dates: both
// endpoints are counted, so DaysBetween(d, d) == 1. Never negative.
func DaysBetween(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	return int(to.t.Sub(from.t).Hours()/24) + 1
}

// DaysBetweenExclusive counts days excluding the end date, so
// DaysBetweenExclusive(d, d) == 0. Never negative. Used for pause-day
// subtraction where the resume day itself is a working day.
func DaysBetweenExclusive(from, to Date) int {
	if to.Before(from) {
		return 0
	}
	return int(to.t.Sub(from.t).Hours() / 24)
}

func IsLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

func DaysInYear(year int) int {
	if IsLeapYear(year) {
		return 366
	}
	return 365
}

// =============================================================================
// YEAR BOUNDS AND EXTREMA
// =============================================================================

func StartOfYear(year int) Date { return NewDate(year, time.January, 1) }
func EndOfYear(year int) Date   { return NewDate(year, time.December, 31) }

// InRange reports whether d falls within [from, to], inclusive both ends.
func InRange(d, from, to Date) bool {
	return d.AfterOrEqual(from) && d.BeforeOrEqual(to)
}

func MinDate(a, b Date) Date {
	if b.Before(a) {
		return b
	}
	return a
}

func MaxDate(a, b Date) Date {
	if b.After(a) {
		return b
	}
	return a
}

// daysInMonth returns the number of days in the given month, leap-aware.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
