/*
errors.go - Error types for the pay engine

ERROR CATEGORIES:
  1. Clock-time parse failures (TimeParseError)
  2. Shift labels outside {日勤, 夜勤} (UnknownShiftTypeError)

Neither is fatal. Compute recovers from parse failures by treating the time
as 0 hours; the strict entry points return them so callers can refuse a row.

SEE ALSO:
  - clock.go: ParseClockTimeStrict returns TimeParseError
  - sheet/row.go: wraps both with the offending row number
*/
package pay

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrInvalidClockTime is returned when a clock time is neither H[:MM[:SS]]
	// nor a decimal number of hours.
	ErrInvalidClockTime = errors.New("invalid clock time")

	// ErrUnknownShiftType is returned when a shift label is neither day nor night.
	ErrUnknownShiftType = errors.New("unknown shift type")

	// ErrClockOutOfRange is returned for a readable clock time farther than
	// MaxClockHours from 0.
	ErrClockOutOfRange = errors.New("clock time out of range")
)

// =============================================================================
// STRUCTURED ERRORS
// =============================================================================

// TimeParseError carries the text that failed to parse.
type TimeParseError struct {
	Text string
	Err  error
}

func (e *TimeParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("invalid clock time %q: %v", e.Text, e.Err)
	}
	return fmt.Sprintf("invalid clock time %q", e.Text)
}

func (e *TimeParseError) Unwrap() error { return ErrInvalidClockTime }

// UnknownShiftTypeError carries the rejected shift label.
type UnknownShiftTypeError struct {
	Value string
}

func (e *UnknownShiftTypeError) Error() string {
	return fmt.Sprintf("unknown shift type %q (want %s or %s)", e.Value, ShiftDay, ShiftNight)
}

func (e *UnknownShiftTypeError) Unwrap() error { return ErrUnknownShiftType }

// IsClientError returns true if the error is due to invalid input data.
func IsClientError(err error) bool {
	return errors.Is(err, ErrInvalidClockTime) ||
		errors.Is(err, ErrUnknownShiftType) ||
		errors.Is(err, ErrClockOutOfRange)
}
