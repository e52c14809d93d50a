package engine

import "errors"

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================
// The orchestrator only fails for data-integrity reasons: a balance cannot
// be computed without an employee and an active contract. Low-level
// utilities never return errors; degenerate inputs (zero workday minutes,
// inverted periods) yield zero accrual instead.

var (
	// ErrEmployeeNotFound is returned when the employee does not exist.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrNoActiveContract is returned when the employee has no active
	// employment contract.
	ErrNoActiveContract = errors.New("employee has no active contract")

	// ErrOrganizationNotFound is returned when the employee's organization
	// record is missing.
	ErrOrganizationNotFound = errors.New("organization not found")
)

// IsNotFound reports whether the error is one of the calculation-fatal
// missing-record cases.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrNoActiveContract) ||
		errors.Is(err, ErrOrganizationNotFound)
}
