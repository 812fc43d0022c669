/*
Package pay provides the daily pay computation engine for shift workers.

PURPOSE:
  Turns one attendance row (shift type, clock-in/clock-out, break, benefit
  percentage) into an itemized daily pay breakdown. Everything outside this
  package (file parsing, summaries, download) calls in here once per row.

KEY CONCEPTS IN THIS FILE (types.go):
  - ShiftType: the two-member shift domain {日勤, 夜勤}
  - AttendanceRecord: one immutable input row
  - PayBreakdown: the itemized, truncated result for that row

DESIGN PRINCIPLES:
  1. Purity: Compute reads only its argument and the calculator's rates
  2. Totality: Compute never fails; unparseable times degrade to 0 hours
  3. Reproducibility: every allowance is truncated before it is summed

USAGE:
  calc := pay.NewCalculator(pay.DefaultRates())
  b := calc.Compute(pay.AttendanceRecord{
      ShiftType:   pay.ShiftNight,
      BenefitRate: 15,
      StartTime:   "18:00",
      EndTime:     "32:29",
      BreakHours:  1,
  })

SEE ALSO:
  - clock.go: clock-time parsing and worked-hours derivation
  - calculator.go: the shift-dependent wage formula
  - rates.go: the wage table
*/
package pay

import (
	"strings"
)

// =============================================================================
// SHIFT TYPE
// =============================================================================

// ShiftType identifies the shift a record was worked on. The labels are the
// ones written in the attendance sheet.
type ShiftType string

const (
	ShiftDay   ShiftType = "日勤"
	ShiftNight ShiftType = "夜勤"
)

// ParseShiftType maps a sheet cell to a ShiftType. Besides the sheet labels it
// accepts "day" and "night" in any letter case. Anything else is
// ErrUnknownShiftType; callers decide whether to reject or fall back.
func ParseShiftType(s string) (ShiftType, error) {
	v := strings.TrimSpace(s)
	switch {
	case v == string(ShiftDay), strings.EqualFold(v, "day"):
		return ShiftDay, nil
	case v == string(ShiftNight), strings.EqualFold(v, "night"):
		return ShiftNight, nil
	}
	return "", &UnknownShiftTypeError{Value: s}
}

func (s ShiftType) IsDay() bool    { return s == ShiftDay }
func (s ShiftType) String() string { return string(s) }

// =============================================================================
// ATTENDANCE RECORD - one input row
// =============================================================================

// AttendanceRecord is one attendance row. Date and EmployeeName are opaque and
// passed through untouched.
type AttendanceRecord struct {
	Date         string
	EmployeeName string
	ShiftType    ShiftType
	BenefitRate  float64 // percent, 18 means 18%
	StartTime    string  // "H", "H:MM" or "H:MM:SS"; hour may exceed 23
	EndTime      string
	BreakHours   float64 // 0 when the sheet leaves it blank
}

// =============================================================================
// PAY BREAKDOWN - one output row
// =============================================================================

// PayBreakdown is the itemized result for one AttendanceRecord. Currency
// amounts are whole yen, truncated toward zero.
type PayBreakdown struct {
	BasicPay          int64
	NightAllowance    int64
	MidnightAllowance int64
	OvertimeAllowance int64
	BenefitAllowance  int64
	DailyTotal        int64

	WorkedHours float64 // rounded to 0.1 for display
	BreakHours  float64 // rounded to 0.1 for display

	// Unrounded values kept for calculation-detail display.
	SpanHours     float64
	OvertimeHours float64
}

// Allowances returns the five summed components in sheet order.
func (b PayBreakdown) Allowances() [5]int64 {
	return [5]int64{b.BasicPay, b.NightAllowance, b.MidnightAllowance, b.OvertimeAllowance, b.BenefitAllowance}
}
