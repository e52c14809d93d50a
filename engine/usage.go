/*
usage.go - Leave-request usage aggregation

PURPOSE:
  Folds an employee's leave requests into used and pending minute totals
  within a date window. Only APPROVED and PENDING requests count; everything
  else (rejected, cancelled, draft) is ignored entirely.

WINDOW PRORATION:
  A request that only partially overlaps the window contributes minutes
  proportional to overlapDays/totalDays (date-only, inclusive both ends).
  The proration is linear and uniform across the request's days - it does
  not model partial days or non-working-day structure.

USED vs PENDING:
  PENDING requests only ever land in pending minutes, and only when
  IncludePending is set. APPROVED requests land in used minutes when they
  end on or before the cutoff; future-dated approved leave counts as
  pending instead (or is dropped when pending is excluded).

SUBMITTED-BEFORE CUTOFF:
  The carry-over deadline clamp needs "minutes used via requests submitted
  before date D". SubmittedBefore excludes late-filed requests for that one
  caller; requests with no submission timestamp are kept.
*/
package engine

import (
	"time"

	"github.com/shopspring/decimal"
)

// UsageOptions controls one aggregation pass.
type UsageOptions struct {
	IncludePending bool
	// CutoffDate splits approved requests into used (ended on/before) and
	// pending (still in the future).
	CutoffDate Date
	// Optional window for proration. Both must be set together.
	WindowStart *Date
	WindowEnd   *Date
	// Optional submission-time cutoff for carry-over eligibility.
	SubmittedBefore *time.Time
}

// UsageTotals is the aggregation result. Minutes are whole; day views carry
// the engine's internal 2-decimal precision and are NOT policy-rounded.
type UsageTotals struct {
	UsedMinutes    int64
	PendingMinutes int64
	UsedDays       decimal.Decimal
	PendingDays    decimal.Decimal
}

// AggregateUsage computes used and pending minutes for a set of leave
// requests under the given options.
func AggregateUsage(requests []LeaveRequest, workdayMinutes int, opts UsageOptions) UsageTotals {
	var used, pending int64

	for _, req := range requests {
		if req.Status != RequestApproved && req.Status != RequestPending {
			continue
		}
		if opts.SubmittedBefore != nil && req.SubmittedAt != nil && req.SubmittedAt.After(*opts.SubmittedBefore) {
			continue
		}

		minutes := resolveRequestMinutes(req, workdayMinutes)
		if minutes <= 0 {
			continue
		}

		if opts.WindowStart != nil && opts.WindowEnd != nil {
			minutes = prorateToWindow(req, minutes, *opts.WindowStart, *opts.WindowEnd)
			if minutes <= 0 {
				continue
			}
		}

		switch req.Status {
		case RequestPending:
			if opts.IncludePending {
				pending += minutes
			}
		case RequestApproved:
			if req.EndDate.BeforeOrEqual(opts.CutoffDate) {
				used += minutes
			} else if opts.IncludePending {
				pending += minutes
			}
		}
	}

	return UsageTotals{
		UsedMinutes:    used,
		PendingMinutes: pending,
		UsedDays:       RoundDays(MinutesToDays(used, workdayMinutes)),
		PendingDays:    RoundDays(MinutesToDays(pending, workdayMinutes)),
	}
}

// resolveRequestMinutes picks the request's duration with priority:
// explicit effective minutes, then explicit duration minutes, then a
// working-days count converted through workday minutes.
func resolveRequestMinutes(req LeaveRequest, workdayMinutes int) int64 {
	if req.EffectiveMinutes > 0 {
		return req.EffectiveMinutes
	}
	if req.DurationMinutes > 0 {
		return req.DurationMinutes
	}
	if req.WorkingDays.IsPositive() {
		return DaysToMinutes(req.WorkingDays, workdayMinutes)
	}
	return 0
}

// prorateToWindow scales minutes by the request's day overlap with
// [windowStart, windowEnd]. Zero overlap yields zero.
func prorateToWindow(req LeaveRequest, minutes int64, windowStart, windowEnd Date) int64 {
	overlapStart := MaxDate(req.StartDate, windowStart)
	overlapEnd := MinDate(req.EndDate, windowEnd)
	if overlapStart.After(overlapEnd) {
		return 0
	}

	totalDays := DaysBetween(req.StartDate, req.EndDate)
	overlapDays := DaysBetween(overlapStart, overlapEnd)
	if overlapDays >= totalDays {
		return minutes
	}

	prorated := decimal.NewFromInt(minutes).
		Mul(decimal.NewFromInt(int64(overlapDays))).
		Div(decimal.NewFromInt(int64(totalDays)))
	return prorated.Round(0).IntPart()
}
