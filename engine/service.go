/*
service.go - Vacation balance orchestrator

PURPOSE:
  The single entry point external callers use. Resolves the employee's
  active contract, organization policy and rounding configuration, selects
  the accrual strategy, adds balance adjustments, computes carry-over from
  the prior year, aggregates leave-request usage, and assembles the final
  VacationBalance.

PIPELINE (per calculation):
  1. Load employee, organization (policy), active contract + pause history
  2. Resolve workday minutes (contract override, else weekly hours)
  3. Select strategy by contract type; compute AccruedResult
  4. Sum manual + recurring adjustments for the year
  5. Pick accrual base per AccrualMode; add adjustment minutes
  6. Aggregate usage over the full year window
  7. Carry-over: recursively evaluate year-1 under non-carrying options
  8. available = accrued - (used + pending) + carryover
  9. Policy-round every day output; clamp available minutes to >= 0

CARRY-OVER RECURSION:
  Computing year Y may trigger computing year Y-1. UNTIL_DATE mode looks
  back exactly one year (the recursive call carries IncludeCarryover=false).
  UNLIMITED mode walks further but is bounded by maxCarryoverLookback and
  stops before the contract's start year. The engine never recurses
  unguarded.

FAILURE SEMANTICS:
  Missing employee or active contract is fatal: the error propagates and no
  partial balance is returned. CanRequestVacation is the one call site that
  downgrades errors into {CanRequest:false, Reason} because it sits on the
  request-submission hot path.
*/
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// maxCarryoverLookback bounds the recursive prior-year walk for UNLIMITED
// carry-over mode.
const maxCarryoverLookback = 5

// =============================================================================
// STORE - Read-only persistence boundary
// =============================================================================

// Store supplies the records a balance calculation reads. The engine never
// writes; callers needing balance-enforced writes must re-check availability
// under their own transaction.
type Store interface {
	// Employee returns the employee record or ErrEmployeeNotFound.
	Employee(ctx context.Context, id string) (*Employee, error)

	// Organization returns the org record (with its PTO policy) or
	// ErrOrganizationNotFound.
	Organization(ctx context.Context, id string) (*Organization, error)

	// ActiveContract returns the employee's single active contract with its
	// pause history ordered by start date, or ErrNoActiveContract.
	ActiveContract(ctx context.Context, employeeID string) (*ContractInfo, error)

	// LeaveRequests returns the employee's leave requests overlapping the
	// given year.
	LeaveRequests(ctx context.Context, employeeID string, year int) ([]LeaveRequest, error)

	// Adjustments returns balance adjustments that may apply to the year
	// (manual per-year plus recurring).
	Adjustments(ctx context.Context, employeeID string, year int) ([]Adjustment, error)
}

// =============================================================================
// SERVICE
// =============================================================================

type Service struct {
	store Store
	log   *zap.Logger
}

func NewService(store Store, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{store: store, log: log}
}

// CalculateVacationBalance computes the employee's vacation balance for the
// target year as of the cut-off date.
func (s *Service) CalculateVacationBalance(ctx context.Context, employeeID string, opts CalculateBalanceOptions) (*VacationBalance, error) {
	return s.calculate(ctx, employeeID, opts, 0)
}

// CalculateSettlementBalance is the settlement wrapper: literal accrual as
// of the settlement date instead of the assigned full-year allotment.
func (s *Service) CalculateSettlementBalance(ctx context.Context, employeeID string, settlementDate Date) (*VacationBalance, error) {
	opts := DefaultOptions()
	opts.CutoffDate = &settlementDate
	opts.Year = settlementDate.Year()
	opts.AccrualMode = AccrualAccrued
	return s.CalculateVacationBalance(ctx, employeeID, opts)
}

// GetVacationDisplayInfo renders the UI-facing description of the accrual
// rule applying to the employee's active contract.
func (s *Service) GetVacationDisplayInfo(ctx context.Context, employeeID string) (*VacationDisplayInfo, error) {
	contract, err := s.store.ActiveContract(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	info := StrategyFor(contract.Type).DisplayInfo(*contract)
	return &info, nil
}

// RequestEligibility is the result of CanRequestVacation.
type RequestEligibility struct {
	CanRequest    bool
	AvailableDays decimal.Decimal
	Reason        string
}

// CanRequestVacation checks whether the employee can request the given
// number of days right now. It never returns an error: failures become a
// structured refusal, and a paused discontinuous contract blocks requests
// regardless of balance.
func (s *Service) CanRequestVacation(ctx context.Context, employeeID string, requestedDays decimal.Decimal) RequestEligibility {
	balance, err := s.CalculateVacationBalance(ctx, employeeID, DefaultOptions())
	if err != nil {
		return RequestEligibility{Reason: err.Error()}
	}
	if balance.DiscontinuousStatus == DiscontinuousPaused {
		return RequestEligibility{
			AvailableDays: balance.AvailableDays,
			Reason:        "contract is currently paused",
		}
	}
	if requestedDays.GreaterThan(balance.AvailableDays) {
		return RequestEligibility{
			AvailableDays: balance.AvailableDays,
			Reason:        "insufficient vacation balance",
		}
	}
	return RequestEligibility{CanRequest: true, AvailableDays: balance.AvailableDays}
}

// =============================================================================
// CALCULATION PIPELINE
// =============================================================================

func (s *Service) calculate(ctx context.Context, employeeID string, opts CalculateBalanceOptions, depth int) (*VacationBalance, error) {
	cutoff := Today()
	if opts.CutoffDate != nil {
		cutoff = *opts.CutoffDate
	}
	year := opts.Year
	if year == 0 {
		year = cutoff.Year()
	}

	employee, err := s.store.Employee(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("load employee %s: %w", employeeID, err)
	}
	org, err := s.store.Organization(ctx, employee.OrganizationID)
	if err != nil {
		return nil, fmt.Errorf("load organization %s: %w", employee.OrganizationID, err)
	}
	contract, err := s.store.ActiveContract(ctx, employeeID)
	if err != nil {
		return nil, fmt.Errorf("load active contract for %s: %w", employeeID, err)
	}

	policy := org.Policy
	workday := contract.WorkdayMinutes()

	strategy := StrategyFor(contract.Type)
	accrued := strategy.Accrue(*contract, AccrualInput{
		Cutoff:         cutoff,
		Year:           year,
		AnnualDays:     policy.AnnualDays,
		WorkdayMinutes: workday,
	})

	// Manual + recurring adjustments for the year.
	adjustments, err := s.store.Adjustments(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("load adjustments for %s: %w", employeeID, err)
	}
	adjustmentDays := decimal.Zero
	for _, adj := range adjustments {
		if adj.AppliesTo(year) {
			adjustmentDays = adjustmentDays.Add(adj.Days)
		}
	}
	adjustmentMinutes := DaysToMinutes(adjustmentDays, workday)

	// Annual allowance shown to the employee: assigned base plus
	// adjustments. Strategies without an assignment concept fall back to
	// the nominal annual allowance.
	assignedBase := policy.AnnualDays
	if accrued.AssignedDays != nil {
		assignedBase = *accrued.AssignedDays
	}
	annualAllowanceDays := assignedBase.Add(adjustmentDays)

	// Accrual base per mode. ASSIGNED shows the full prorated allotment
	// where one exists; ACCRUED (settlement) always takes the literal
	// as-of-cutoff figure.
	accrualBaseDays := accrued.AccruedDays
	if opts.AccrualMode != AccrualAccrued && accrued.AssignedDays != nil {
		accrualBaseDays = *accrued.AssignedDays
	}
	accruedMinutes := DaysToMinutes(accrualBaseDays, workday) + adjustmentMinutes

	requests, err := s.store.LeaveRequests(ctx, employeeID, year)
	if err != nil {
		return nil, fmt.Errorf("load leave requests for %s: %w", employeeID, err)
	}
	yearStart := StartOfYear(year)
	yearEnd := EndOfYear(year)
	usage := AggregateUsage(requests, workday, UsageOptions{
		IncludePending: opts.IncludePending,
		CutoffDate:     cutoff,
		WindowStart:    &yearStart,
		WindowEnd:      &yearEnd,
	})

	var carryoverMinutes int64
	if opts.IncludeCarryover &&
		policy.CarryoverMode != CarryoverNone &&
		depth < maxCarryoverLookback &&
		year-1 >= contract.StartDate.Year() {
		carryoverMinutes, err = s.carryover(ctx, employeeID, year, cutoff, policy, workday, requests, depth)
		if err != nil {
			return nil, err
		}
	}

	availableMinutes := accruedMinutes - (usage.UsedMinutes + usage.PendingMinutes) + carryoverMinutes
	if availableMinutes < 0 {
		s.log.Debug("balance over-used before clamping",
			zap.String("employee_id", employeeID),
			zap.Int("year", year),
			zap.Int64("available_minutes", availableMinutes))
	}

	round := policy.Rounding()
	availableDays := round.Apply(MinutesToDays(availableMinutes, workday))
	if availableDays.IsNegative() {
		availableDays = decimal.Zero
	}
	if availableMinutes < 0 {
		availableMinutes = 0
	}

	return &VacationBalance{
		EmployeeID: employeeID,
		Year:       year,

		AnnualAllowanceDays: round.Apply(annualAllowanceDays),

		AccruedDays:    round.Apply(MinutesToDays(accruedMinutes, workday)),
		AccruedMinutes: accruedMinutes,

		UsedDays:    round.Apply(usage.UsedDays),
		UsedMinutes: usage.UsedMinutes,

		PendingDays:    round.Apply(usage.PendingDays),
		PendingMinutes: usage.PendingMinutes,

		CarryoverDays:    round.Apply(MinutesToDays(carryoverMinutes, workday)),
		CarryoverMinutes: carryoverMinutes,

		AvailableDays:    availableDays,
		AvailableMinutes: availableMinutes,

		WorkdayMinutes: workday,

		DisplayLabel:        strategy.DisplayInfo(*contract).Label,
		ContractType:        contract.Type,
		DiscontinuousStatus: contract.DiscontinuousStatus,

		RoundingUnit: policy.RoundingUnit,
		RoundingMode: policy.RoundingMode,
	}, nil
}

// =============================================================================
// CARRY-OVER
// =============================================================================

// carryover evaluates the previous year's balance under the same rules and
// returns the minutes that roll into the target year. For UNTIL_DATE mode,
// once the cutoff is past the organization's deadlines the carry-over is
// clamped to what was actually used in time - unused-but-unclaimed
// carry-over expires.
func (s *Service) carryover(ctx context.Context, employeeID string, year int, cutoff Date, policy PTOPolicy, workday int, requests []LeaveRequest, depth int) (int64, error) {
	prevCutoff := EndOfYear(year - 1)
	prevOpts := CalculateBalanceOptions{
		CutoffDate:     &prevCutoff,
		Year:           year - 1,
		IncludePending: true,
		AccrualMode:    AccrualAssigned,
		// Only UNLIMITED mode keeps walking back; UNTIL_DATE looks back
		// exactly one year.
		IncludeCarryover: policy.CarryoverMode == CarryoverUnlimited,
	}
	previous, err := s.calculate(ctx, employeeID, prevOpts, depth+1)
	if err != nil {
		return 0, fmt.Errorf("carry-over for year %d: %w", year, err)
	}

	carry := previous.AvailableMinutes
	if carry <= 0 {
		return 0, nil
	}

	if policy.CarryoverMode == CarryoverUntilDate {
		usageDeadline := policy.effectiveUsageDeadline().DateIn(year)
		requestDeadline := policy.effectiveRequestDeadline().DateIn(year)

		if cutoff.After(usageDeadline) || cutoff.After(requestDeadline) {
			// Submissions on the deadline day itself still count.
			submittedBefore := requestDeadline.AddDays(1).Time()
			yearStart := StartOfYear(year)
			usedInTime := AggregateUsage(requests, workday, UsageOptions{
				IncludePending:  false,
				CutoffDate:      usageDeadline,
				WindowStart:     &yearStart,
				WindowEnd:       &usageDeadline,
				SubmittedBefore: &submittedBefore,
			})
			if usedInTime.UsedMinutes < carry {
				carry = usedInTime.UsedMinutes
			}
		}
	}

	return carry, nil
}

// effectiveUsageDeadline applies the documented misconfiguration default:
// missing deadline fields fall back to January 29.
func (p PTOPolicy) effectiveUsageDeadline() Deadline {
	if p.UsageDeadline.IsZero() {
		return Deadline{Month: time.January, Day: 29}
	}
	return p.UsageDeadline
}

// effectiveRequestDeadline falls back to the usage deadline when absent.
func (p PTOPolicy) effectiveRequestDeadline() Deadline {
	if p.RequestDeadline.IsZero() {
		return p.effectiveUsageDeadline()
	}
	return p.RequestDeadline
}
