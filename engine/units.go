/*
units.go - Day/minute conversion and rounding

PURPOSE:
  Minutes are the internal unit of truth for every balance figure; days are
  a derived view computed through a per-contract workday-minute figure.
  Conversions happen only at the boundary so day and minute representations
  are never mixed mid-calculation.

TWO KINDS OF ROUNDING:
  RoundDays:       Internal 2-decimal precision, applied to day views.
  RoundingPolicy:  Organization-facing rounding to a multiple of a unit
                   (0.5, 0.25, ...). Applied ONLY to the final output day
                   fields of a VacationBalance, never to intermediate
                   accrual arithmetic.

SEE ALSO:
  - service.go: Applies RoundingPolicy as the last transformation
  - policy package: Supplies unit/mode defaults for misconfigured orgs
*/
package engine

import (
	"github.com/shopspring/decimal"
)

// DefaultWorkdayMinutes is the fallback workday length (8 hours) used when
// a contract carries neither an explicit override nor usable weekly hours.
const DefaultWorkdayMinutes = 480

// DaysToMinutes converts a day amount to whole minutes, rounding to the
// nearest minute.
func DaysToMinutes(days decimal.Decimal, workdayMinutes int) int64 {
	if workdayMinutes <= 0 {
		workdayMinutes = DefaultWorkdayMinutes
	}
	return days.Mul(decimal.NewFromInt(int64(workdayMinutes))).Round(0).IntPart()
}

// MinutesToDays converts minutes to a fractional day amount. Returns zero
// if workdayMinutes is zero rather than dividing by zero.
func MinutesToDays(minutes int64, workdayMinutes int) decimal.Decimal {
	if workdayMinutes <= 0 {
		return decimal.Zero
	}
	return decimal.NewFromInt(minutes).Div(decimal.NewFromInt(int64(workdayMinutes)))
}

// WorkdayMinutes derives the length of one working day from the contract's
// weekly hours and working days per week. Falls back to
// DefaultWorkdayMinutes when working days per week is zero.
func WorkdayMinutes(weeklyHours decimal.Decimal, workingDaysPerWeek int) int {
	if workingDaysPerWeek <= 0 {
		return DefaultWorkdayMinutes
	}
	minutes := weeklyHours.
		Div(decimal.NewFromInt(int64(workingDaysPerWeek))).
		Mul(decimal.NewFromInt(60)).
		Round(0).
		IntPart()
	return int(minutes)
}

// RoundDays rounds a day amount to the engine's internal 2-decimal precision.
func RoundDays(days decimal.Decimal) decimal.Decimal {
	return days.Round(2)
}

// =============================================================================
// ORGANIZATION ROUNDING POLICY
// =============================================================================

type RoundingMode string

const (
	RoundNearest RoundingMode = "NEAREST"
	RoundUp      RoundingMode = "UP"
	RoundDown    RoundingMode = "DOWN"
)

// RoundingPolicy rounds day figures to a multiple of Unit (e.g. half days,
// quarter days) before they are shown to an employee.
type RoundingPolicy struct {
	Unit decimal.Decimal
	Mode RoundingMode
}

// Apply rounds days to the nearest multiple of the policy unit. Applying it
// twice is a no-op. A non-positive unit degrades to plain 2-decimal rounding.
func (p RoundingPolicy) Apply(days decimal.Decimal) decimal.Decimal {
	if !p.Unit.IsPositive() {
		return RoundDays(days)
	}
	q := days.Div(p.Unit)
	switch p.Mode {
	case RoundUp:
		q = q.Ceil()
	case RoundDown:
		q = q.Floor()
	default:
		q = q.Round(0)
	}
	return q.Mul(p.Unit)
}
