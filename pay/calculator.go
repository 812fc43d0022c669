/*
calculator.go - Shift-dependent daily wage formula

FORMULA:
  Day shift (日勤):
    basic   = worked × DayHourly
    benefit = worked × BenefitHourly × rate%

  Night shift (夜勤), and any record whose ShiftType is not 日勤:
    basic    = worked × NightHourly
    night    = NightFlat      (even for 0 worked hours)
    midnight = MidnightFlat   (even for 0 worked hours)
    overtime = max(0, worked - OvertimeThreshold) × OvertimeHourly × OvertimePremium
    benefit  = worked × BenefitHourly × rate%

TRUNCATION:
  Each component is truncated to whole yen first; DailyTotal is the sum of
  the truncated components. Truncating the float sum instead can come out up
  to 4 yen higher. Results must be reproducible to the yen, so the order of
  float operations above is fixed.

  Amounts are never negative: a component that comes out negative or NaN
  (negative rate, absurd rates table) is 0, one beyond int64 is clamped to
  math.MaxInt64, and the sum saturates the same way.

SHIFT DISPATCH:
  The core only asks "is this 日勤?". Rejecting labels outside the two-member
  domain happens at ingestion (sheet package); a record that reaches Compute
  with an unknown label is paid as a night shift.

SEE ALSO:
  - clock.go: WorkedHours
  - batch.go: ComputeBatch over many records
*/
package pay

import "math"

// Calculator applies a Rates table to attendance records. The zero value is
// not useful; use NewCalculator.
type Calculator struct {
	Rates Rates
}

// NewCalculator creates a calculator for the given wage table.
func NewCalculator(rates Rates) *Calculator {
	return &Calculator{Rates: rates}
}

// Compute returns the pay breakdown for one record. It never fails:
// unparseable clock times are read as 0 hours.
func (c *Calculator) Compute(rec AttendanceRecord) PayBreakdown {
	start := ParseClockTime(rec.StartTime)
	end := ParseClockTime(rec.EndTime)
	return c.compute(rec, spanHours(start, end))
}

// ComputeStrict is Compute but refuses records with unparseable clock times.
func (c *Calculator) ComputeStrict(rec AttendanceRecord) (PayBreakdown, error) {
	start, err := ParseClockTimeStrict(rec.StartTime)
	if err != nil {
		return PayBreakdown{}, err
	}
	end, err := ParseClockTimeStrict(rec.EndTime)
	if err != nil {
		return PayBreakdown{}, err
	}
	return c.compute(rec, spanHours(start, end)), nil
}

func (c *Calculator) compute(rec AttendanceRecord, span float64) PayBreakdown {
	r := c.Rates
	worked := netHours(span, rec.BreakHours)
	rate := rec.BenefitRate / 100

	var basic, night, midnight, overtime, benefit, overtimeHours float64
	if rec.ShiftType.IsDay() {
		basic = worked * r.DayHourly
		benefit = worked * r.BenefitHourly * rate
	} else {
		basic = worked * r.NightHourly
		night = r.NightFlat
		midnight = r.MidnightFlat
		if over := worked - r.OvertimeThreshold; over > 0 {
			overtimeHours = over
		}
		overtime = overtimeHours * r.OvertimeHourly * r.OvertimePremium
		benefit = worked * r.BenefitHourly * rate
	}

	b := PayBreakdown{
		BasicPay:          truncate(basic),
		NightAllowance:    truncate(night),
		MidnightAllowance: truncate(midnight),
		OvertimeAllowance: truncate(overtime),
		BenefitAllowance:  truncate(benefit),
		WorkedHours:       RoundTenth(worked),
		BreakHours:        RoundTenth(rec.BreakHours),
		SpanHours:         span,
		OvertimeHours:     overtimeHours,
	}
	parts := b.Allowances()
	b.DailyTotal = SumAmounts(parts[:]...)
	return b
}

// truncate drops the fraction of an amount, toward zero.
func truncate(x float64) int64 {
	switch {
	case !(x > 0):
		return 0
	case x >= math.MaxInt64:
		return math.MaxInt64
	}
	return int64(x)
}

// SumAmounts adds non-negative yen amounts, saturating at math.MaxInt64.
func SumAmounts(amounts ...int64) int64 {
	var total int64
	for _, a := range amounts {
		if a > math.MaxInt64-total {
			return math.MaxInt64
		}
		total += a
	}
	return total
}
