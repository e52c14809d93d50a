package engine

import "github.com/shopspring/decimal"

// standardStrategy covers ordinary contracts: the full-year entitlement is
// assigned up front, prorated by how much of the year the contract spans.
type standardStrategy struct{}

// Accrue computes both figures the service may need:
//
//	assignedDays - the full-year prorated allotment, independent of cutoff.
//	              This is what an active employee is shown as their
//	              entitlement.
//	accruedDays  - the literal as-of-cutoff accrual, used in ACCRUED mode
//	              (settlement).
//
// Both prorate AnnualDays by inclusive day counts over the real year length,
// so a contract active the whole of a leap year earns exactly AnnualDays.
func (standardStrategy) Accrue(c ContractInfo, in AccrualInput) AccruedResult {
	yearDays := decimal.NewFromInt(int64(DaysInYear(in.Year)))
	start := effectiveStartDate(c, in.Year)
	end := effectiveEndDate(c, in.Cutoff, in.Year)

	assigned := decimal.Zero
	if start.BeforeOrEqual(EndOfYear(in.Year)) {
		span := decimal.NewFromInt(int64(DaysBetween(start, EndOfYear(in.Year))))
		assigned = in.AnnualDays.Mul(span).Div(yearDays)
	}

	accrued := decimal.Zero
	if start.BeforeOrEqual(end) {
		span := decimal.NewFromInt(int64(DaysBetween(start, end)))
		accrued = in.AnnualDays.Mul(span).Div(yearDays)
	}

	assigned = RoundDays(assigned)
	accrued = RoundDays(accrued)

	return AccruedResult{
		AccruedDays:    accrued,
		AccruedMinutes: DaysToMinutes(accrued, in.WorkdayMinutes),
		AssignedDays:   &assigned,
	}
}

func (standardStrategy) DisplayInfo(c ContractInfo) VacationDisplayInfo {
	return VacationDisplayInfo{
		Label:    "Vacaciones asignadas",
		Sublabel: contractTypeName(c.Type),
	}
}
