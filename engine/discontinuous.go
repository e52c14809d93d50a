package engine

import "github.com/shopspring/decimal"

// discontinuousStrategy covers fixed-discontinuous (intermittent) contracts:
// vacation accrues strictly at a daily rate, and only during ACTIVE spans.
// There is no assignment concept - zero entitlement at hire.
type discontinuousStrategy struct{}

func (discontinuousStrategy) Accrue(c ContractInfo, in AccrualInput) AccruedResult {
	start := effectiveStartDate(c, in.Year)
	end := effectiveEndDate(c, in.Cutoff, in.Year)

	// No active period yet.
	if start.After(end) {
		return AccruedResult{AccruedDays: decimal.Zero}
	}

	totalDays := DaysBetweenExclusive(start, end)
	pausedDays := PausedDays(c.PauseHistory, start, end)
	activeDays := totalDays - pausedDays
	if activeDays < 0 {
		activeDays = 0
	}

	accrued := in.AnnualDays.
		Div(decimal.NewFromInt(int64(DaysInYear(in.Year)))).
		Mul(decimal.NewFromInt(int64(activeDays)))
	accrued = RoundDays(accrued)

	return AccruedResult{
		AccruedDays:    accrued,
		AccruedMinutes: DaysToMinutes(accrued, in.WorkdayMinutes),
		ActiveDays:     activeDays,
		PausedDays:     pausedDays,
	}
}

func (discontinuousStrategy) DisplayInfo(c ContractInfo) VacationDisplayInfo {
	info := VacationDisplayInfo{
		Label:    "Vacaciones devengadas",
		Sublabel: contractTypeName(c.Type),
	}
	if since, paused := PausedSince(c.PauseHistory); paused {
		info.ShowFrozenIndicator = true
		frozenSince := since
		info.FrozenSince = &frozenSince
	}
	return info
}
