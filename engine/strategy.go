/*
strategy.go - Accrual strategy selection

PURPOSE:
  Accrual behavior differs by contract type. Ordinary contracts get their
  vacation conceptually ASSIGNED at the start of the year, prorated by
  tenure within it. Fixed-discontinuous contracts EARN vacation day by day,
  only while the contract is active.

  The closed set {Standard, Discontinuous} is dispatched on contract type;
  the service never branches on contract type anywhere else.

SEE ALSO:
  - standard.go: Ordinary contracts
  - discontinuous.go: Fixed-discontinuous contracts
*/
package engine

import "github.com/shopspring/decimal"

// AccrualInput carries everything a strategy needs besides the contract.
type AccrualInput struct {
	Cutoff         Date
	Year           int
	AnnualDays     decimal.Decimal
	WorkdayMinutes int
}

// AccrualStrategy computes accrued vacation for one contract type.
type AccrualStrategy interface {
	Accrue(contract ContractInfo, in AccrualInput) AccruedResult
	DisplayInfo(contract ContractInfo) VacationDisplayInfo
}

// StrategyFor selects the strategy for a contract type. Every type except
// fixed-discontinuous accrues the standard way.
func StrategyFor(t ContractType) AccrualStrategy {
	if t == ContractFixedDiscontinuous {
		return discontinuousStrategy{}
	}
	return standardStrategy{}
}

// =============================================================================
// SHARED PERIOD HELPERS
// =============================================================================

// effectiveStartDate is the later of the contract start and Jan 1 of the year.
func effectiveStartDate(c ContractInfo, year int) Date {
	return MaxDate(c.StartDate, StartOfYear(year))
}

// effectiveEndDate is the earliest of the cutoff, Dec 31 of the year, and
// the contract end date when one is set.
func effectiveEndDate(c ContractInfo, cutoff Date, year int) Date {
	end := MinDate(cutoff, EndOfYear(year))
	if c.EndDate != nil {
		end = MinDate(end, *c.EndDate)
	}
	return end
}

// contractTypeName returns the human label used in display sublabels.
func contractTypeName(t ContractType) string {
	switch t {
	case ContractOrdinary:
		return "Contrato ordinario"
	case ContractTemporary:
		return "Contrato temporal"
	case ContractInternship:
		return "Contrato de prácticas"
	case ContractFixedDiscontinuous:
		return "Contrato fijo-discontinuo"
	default:
		return string(t)
	}
}
