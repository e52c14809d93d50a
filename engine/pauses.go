package engine

// =============================================================================
// PAUSE-HISTORY REDUCER
// =============================================================================
// Fixed-discontinuous contracts alternate ACTIVE and PAUSED spans. These
// reducers fold the chronological PAUSE/RESUME event list into the figures
// the discontinuous strategy needs.

// PausedDays counts the paused days inside [from, to]. Each PAUSE interval
// is clipped to the window; an open pause (nil EndDate) runs to the window
// end. Multiple pauses in the window are cumulative - the contract invariant
// prevents overlap in practice.
func PausedDays(history []PauseHistoryEntry, from, to Date) int {
	total := 0
	for _, entry := range history {
		if entry.Action != ActionPause {
			continue
		}
		end := to
		if entry.EndDate != nil {
			end = MinDate(*entry.EndDate, to)
		}
		start := MaxDate(entry.StartDate, from)
		if start.After(end) {
			continue
		}
		total += DaysBetweenExclusive(start, end)
	}
	return total
}

// IsCurrentlyPaused reports whether the chronologically last PAUSE entry is
// still open.
func IsCurrentlyPaused(history []PauseHistoryEntry) bool {
	_, paused := PausedSince(history)
	return paused
}

// PausedSince returns the start date of the open pause, if any.
func PausedSince(history []PauseHistoryEntry) (Date, bool) {
	var last *PauseHistoryEntry
	for i := range history {
		if history[i].Action == ActionPause {
			last = &history[i]
		}
	}
	if last == nil || last.EndDate != nil {
		return Date{}, false
	}
	return last.StartDate, true
}
