/*
errors.go - Error types for administrative edits

PURPOSE:
  The calculators never fail: malformed input is clamped or defaulted and
  degenerate cases surface as ordinary zero results. Errors exist only for
  edits that address something that is not there (an unknown employee, a
  goal index past the end of a pillar).

USAGE:
  if errors.Is(err, incentive.ErrEmployeeNotFound) {
      // 404
  }

SEE ALSO:
  - edit.go: returns these errors
  - api/handlers.go: maps them to HTTP status codes
*/
package incentive

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrEmployeeNotFound is returned when an edit names an unknown employee.
	ErrEmployeeNotFound = errors.New("employee not found")

	// ErrDuplicateEmployee is returned when adding an employee whose ID is taken.
	ErrDuplicateEmployee = errors.New("duplicate employee id")

	// ErrOverrideNotFound is returned when editing an override that does not exist.
	ErrOverrideNotFound = errors.New("override not found")

	// ErrUnknownPillar is returned for a pillar key outside fin/ops/ind.
	ErrUnknownPillar = errors.New("unknown pillar")

	// ErrGoalIndex is returned when a goal or fulfillment index is out of range.
	ErrGoalIndex = errors.New("goal index out of range")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// GoalIndexError carries the offending index and the pillar's goal count.
type GoalIndexError struct {
	Pillar PillarKey
	Index  int
	Count  int
}

func (e *GoalIndexError) Error() string {
	return fmt.Sprintf("goal index %d out of range for pillar %s (%d goals)", e.Index, e.Pillar, e.Count)
}

func (e *GoalIndexError) Unwrap() error {
	return ErrGoalIndex
}

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEmployeeNotFound) ||
		errors.Is(err, ErrOverrideNotFound)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrDuplicateEmployee) ||
		errors.Is(err, ErrUnknownPillar) ||
		errors.Is(err, ErrGoalIndex)
}
