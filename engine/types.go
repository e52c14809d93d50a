/*
Package engine computes vacation balances for an HR platform.

PURPOSE:
  Given an employee's active employment contract and the leave requests that
  affect its vacation balance, the engine answers: as of any cut-off date,
  how many vacation days/minutes has the employee accrued, used, pending,
  and available - including carry-over from the prior year and the
  organization's rounding policy.

KEY CONCEPTS IN THIS FILE (types.go):
  - ContractInfo / PauseHistoryEntry: Snapshot of the employment contract
  - LeaveRequest: Usage input for the aggregator
  - AccruedResult: Output of an accrual strategy
  - VacationBalance: The final answer handed to callers
  - PTOPolicy: Organization-wide carry-over and rounding configuration

DESIGN PRINCIPLES:
  1. Value objects: Everything here is constructed fresh per calculation
     from storage reads; the engine owns no persistent state and never
     writes.
  2. Precision: Minutes (int64) are the source of truth; day figures use
     decimal.Decimal to avoid floating-point drift.
  3. Policy as data: Carry-over and rounding rules are threaded through the
     call as PTOPolicy, never read from ambient state.

SEE ALSO:
  - strategy.go: Accrual strategy selection
  - service.go: The orchestrating pipeline
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// EMPLOYEE AND ORGANIZATION
// =============================================================================

type Employee struct {
	ID             string
	OrganizationID string
	Name           string
	Email          string
}

type Organization struct {
	ID     string
	Name   string
	Policy PTOPolicy
}

// =============================================================================
// PTO POLICY - Organization-wide configuration
// =============================================================================

type CarryoverMode string

const (
	CarryoverNone      CarryoverMode = "NONE"
	CarryoverUnlimited CarryoverMode = "UNLIMITED"
	CarryoverUntilDate CarryoverMode = "UNTIL_DATE"
)

// Deadline is a recurring month/day pair (e.g. "January 31"). The day is
// clamped to the last valid day of the month for the year it is resolved in.
type Deadline struct {
	Month time.Month
	Day   int
}

// DateIn resolves the deadline within a concrete year.
func (dl Deadline) DateIn(year int) Date {
	day := dl.Day
	if day < 1 {
		day = 1
	}
	if max := daysInMonth(year, dl.Month); day > max {
		day = max
	}
	return NewDate(year, dl.Month, day)
}

func (dl Deadline) IsZero() bool { return dl.Month == 0 && dl.Day == 0 }

// PTOPolicy is the organization's vacation configuration. Use the policy
// package to build one from stored JSON with the documented defaults.
type PTOPolicy struct {
	AnnualDays decimal.Decimal

	CarryoverMode CarryoverMode
	// RequestDeadline: carried-over days must belong to requests submitted
	// before this date of the following year (UNTIL_DATE mode).
	RequestDeadline Deadline
	// UsageDeadline: carried-over days must be taken before this date of
	// the following year (UNTIL_DATE mode).
	UsageDeadline Deadline

	RoundingUnit decimal.Decimal
	RoundingMode RoundingMode
}

func (p PTOPolicy) Rounding() RoundingPolicy {
	return RoundingPolicy{Unit: p.RoundingUnit, Mode: p.RoundingMode}
}

// =============================================================================
// CONTRACT SNAPSHOT
// =============================================================================

type ContractType string

const (
	ContractOrdinary           ContractType = "ordinary"
	ContractTemporary          ContractType = "temporary"
	ContractInternship         ContractType = "internship"
	ContractFixedDiscontinuous ContractType = "fixed_discontinuous"
)

type DiscontinuousStatus string

const (
	DiscontinuousActive DiscontinuousStatus = "ACTIVE"
	DiscontinuousPaused DiscontinuousStatus = "PAUSED"
)

type PauseAction string

const (
	ActionPause  PauseAction = "PAUSE"
	ActionResume PauseAction = "RESUME"
)

// PauseHistoryEntry is one PAUSE or RESUME event on a fixed-discontinuous
// contract. A PAUSE with a nil EndDate is still open.
type PauseHistoryEntry struct {
	ID          string
	Action      PauseAction
	StartDate   Date
	EndDate     *Date
	Reason      string
	PerformedAt time.Time
}

// ContractInfo is the immutable snapshot of the employment contract relevant
// to accrual. PauseHistory is sorted ascending by start date; at most one
// entry has a nil EndDate and it must be the chronologically last one.
type ContractInfo struct {
	ID                 string
	Type               ContractType
	StartDate          Date
	EndDate            *Date
	WeeklyHours        decimal.Decimal
	WorkingDaysPerWeek int
	// WorkdayMinutesOverride, when positive, wins over the value derived
	// from WeeklyHours/WorkingDaysPerWeek.
	WorkdayMinutesOverride int
	DiscontinuousStatus    DiscontinuousStatus
	PauseHistory           []PauseHistoryEntry
}

// WorkdayMinutes resolves the contract's minutes-per-working-day figure.
func (c ContractInfo) WorkdayMinutes() int {
	if c.WorkdayMinutesOverride > 0 {
		return c.WorkdayMinutesOverride
	}
	return WorkdayMinutes(c.WeeklyHours, c.WorkingDaysPerWeek)
}

// =============================================================================
// LEAVE REQUEST - Usage input
// =============================================================================

type RequestStatus string

const (
	RequestApproved  RequestStatus = "APPROVED"
	RequestPending   RequestStatus = "PENDING"
	RequestRejected  RequestStatus = "REJECTED"
	RequestCancelled RequestStatus = "CANCELLED"
	RequestDraft     RequestStatus = "DRAFT"
)

// LeaveRequest is a PTO-affecting absence request. Its duration is resolved
// with priority EffectiveMinutes > DurationMinutes > WorkingDays converted
// through workday minutes; zero means "unset" for all three.
type LeaveRequest struct {
	ID              string
	Status          RequestStatus
	StartDate       Date
	EndDate         Date // inclusive
	EffectiveMinutes int64
	DurationMinutes  int64
	WorkingDays      decimal.Decimal
	SubmittedAt      *time.Time
}

// =============================================================================
// BALANCE ADJUSTMENTS
// =============================================================================

// Adjustment is a manual or recurring correction to the annual allowance,
// expressed in days. Recurring adjustments apply from StartYear onward.
type Adjustment struct {
	ID        string
	Days      decimal.Decimal
	Year      int
	Recurring bool
	StartYear int
	Reason    string
}

// AppliesTo reports whether the adjustment affects the given year.
func (a Adjustment) AppliesTo(year int) bool {
	if a.Recurring {
		return a.StartYear <= year
	}
	return a.Year == year
}

// =============================================================================
// STRATEGY OUTPUT AND DISPLAY
// =============================================================================

// AccruedResult is the output of an accrual strategy.
type AccruedResult struct {
	AccruedDays    decimal.Decimal
	AccruedMinutes int64

	// AssignedDays is the full-year prorated allotment (Standard strategy
	// only): the annual allowance shown to the employee independent of the
	// cut-off. Nil for strategies without an assignment concept.
	AssignedDays *decimal.Decimal

	// Diagnostic counts (Discontinuous strategy only).
	ActiveDays int
	PausedDays int
}

// VacationDisplayInfo describes how a strategy's balance should be labelled
// in a UI.
type VacationDisplayInfo struct {
	Label               string
	Sublabel            string
	ShowFrozenIndicator bool
	FrozenSince         *Date
}

// =============================================================================
// FINAL BALANCE
// =============================================================================

// VacationBalance is the engine's final output. All *Days fields have the
// organization's rounding policy applied; AvailableMinutes is clamped to
// zero or above.
type VacationBalance struct {
	EmployeeID string
	Year       int

	AnnualAllowanceDays decimal.Decimal

	AccruedDays    decimal.Decimal
	AccruedMinutes int64

	UsedDays    decimal.Decimal
	UsedMinutes int64

	PendingDays    decimal.Decimal
	PendingMinutes int64

	CarryoverDays    decimal.Decimal
	CarryoverMinutes int64

	AvailableDays    decimal.Decimal
	AvailableMinutes int64

	WorkdayMinutes int

	DisplayLabel        string
	ContractType        ContractType
	DiscontinuousStatus DiscontinuousStatus

	RoundingUnit decimal.Decimal
	RoundingMode RoundingMode
}

// =============================================================================
// CALCULATION OPTIONS
// =============================================================================

// AccrualMode selects which strategy figure feeds the balance.
type AccrualMode string

const (
	// AccrualAssigned uses the strategy's full prorated allotment when one
	// exists. This is what an active employee sees.
	AccrualAssigned AccrualMode = "ASSIGNED"
	// AccrualAccrued uses the literal as-of-cutoff accrual. Used for
	// settlement.
	AccrualAccrued AccrualMode = "ACCRUED"
)

// CalculateBalanceOptions controls a balance calculation. The zero value is
// not useful; start from DefaultOptions.
type CalculateBalanceOptions struct {
	// CutoffDate is the as-of date. Nil means today.
	CutoffDate *Date
	// Year is the target balance year. Zero means the cutoff's year.
	Year           int
	IncludePending bool
	AccrualMode    AccrualMode
	// IncludeCarryover guards the recursive prior-year evaluation; the
	// service disables it when looking back so recursion stays bounded.
	IncludeCarryover bool
}

// DefaultOptions returns the options used for an employee-facing balance:
// as of today, pending included, assigned-mode accrual, carry-over on.
func DefaultOptions() CalculateBalanceOptions {
	return CalculateBalanceOptions{
		IncludePending:   true,
		AccrualMode:      AccrualAssigned,
		IncludeCarryover: true,
	}
}
