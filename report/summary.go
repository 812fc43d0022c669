package report

import (
	"math"
	"slices"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-pay/pay"
)

// Entry is one computed row.
type Entry struct {
	Record    pay.AttendanceRecord
	Breakdown pay.PayBreakdown
}

// =============================================================================
// SUMMARY TYPES
// =============================================================================

// Summary is everything reported about one batch of rows.
type Summary struct {
	Employees []EmployeeSummary
	Overall   Overall

	// PayrollTotal is the sum of DailyTotal over every row, before
	// duplicates are collapsed.
	PayrollTotal int64
}

// EmployeeSummary totals one employee's distinct shifts.
type EmployeeSummary struct {
	Name        string
	Days        int
	WorkedHours decimal.Decimal // unrounded per-shift hours, summed
	TotalPay    int64
	Shifts      []Entry // sorted by date
	Latest      pay.PayBreakdown
}

// Overall totals every distinct shift of the batch.
type Overall struct {
	Records     int
	DayShifts   int
	NightShifts int

	WorkedHours decimal.Decimal // sum of the displayed 0.1h values
	BreakHours  decimal.Decimal

	BasicPay          int64
	NightAllowance    int64
	MidnightAllowance int64
	OvertimeAllowance int64
	BenefitAllowance  int64
	GrandTotal        int64
}

// =============================================================================
// SUMMARIZE
// =============================================================================

type shiftKey struct {
	date, name string
	shift      pay.ShiftType
	start, end string
}

// Dedupe keeps the first entry of each (date, employee, shift, start, end).
func Dedupe(entries []Entry) []Entry {
	seen := make(map[shiftKey]bool, len(entries))
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		r := e.Record
		k := shiftKey{r.Date, r.EmployeeName, r.ShiftType, r.StartTime, r.EndTime}
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, e)
	}
	return out
}

// Summarize builds the employee and overall summaries. Employees appear in
// the order they first occur in entries.
func Summarize(entries []Entry) Summary {
	var s Summary
	for _, e := range entries {
		s.PayrollTotal = pay.SumAmounts(s.PayrollTotal, e.Breakdown.DailyTotal)
	}

	distinct := Dedupe(entries)
	s.Employees = employees(distinct)
	s.Overall = overall(distinct)
	return s
}

func employees(entries []Entry) []EmployeeSummary {
	var order []string
	byName := make(map[string][]Entry)
	for _, e := range entries {
		name := e.Record.EmployeeName
		if _, ok := byName[name]; !ok {
			order = append(order, name)
		}
		byName[name] = append(byName[name], e)
	}

	out := make([]EmployeeSummary, 0, len(order))
	for _, name := range order {
		shifts := byName[name]
		slices.SortStableFunc(shifts, func(a, b Entry) int {
			return strings.Compare(a.Record.Date, b.Record.Date)
		})

		es := EmployeeSummary{Name: name, Days: len(shifts), Shifts: shifts, WorkedHours: decimal.Zero}
		for _, e := range shifts {
			es.WorkedHours = es.WorkedHours.Add(hoursDecimal(netHours(e)))
			es.TotalPay = pay.SumAmounts(es.TotalPay, e.Breakdown.DailyTotal)
		}
		es.Latest = shifts[len(shifts)-1].Breakdown
		out = append(out, es)
	}
	return out
}

func overall(entries []Entry) Overall {
	o := Overall{Records: len(entries), WorkedHours: decimal.Zero, BreakHours: decimal.Zero}
	for _, e := range entries {
		b := e.Breakdown
		if e.Record.ShiftType.IsDay() {
			o.DayShifts++
		} else {
			o.NightShifts++
		}
		o.WorkedHours = o.WorkedHours.Add(hoursDecimal(b.WorkedHours))
		o.BreakHours = o.BreakHours.Add(hoursDecimal(b.BreakHours))

		o.BasicPay = pay.SumAmounts(o.BasicPay, b.BasicPay)
		o.NightAllowance = pay.SumAmounts(o.NightAllowance, b.NightAllowance)
		o.MidnightAllowance = pay.SumAmounts(o.MidnightAllowance, b.MidnightAllowance)
		o.OvertimeAllowance = pay.SumAmounts(o.OvertimeAllowance, b.OvertimeAllowance)
		o.BenefitAllowance = pay.SumAmounts(o.BenefitAllowance, b.BenefitAllowance)
		o.GrandTotal = pay.SumAmounts(o.GrandTotal, b.DailyTotal)
	}
	return o
}

// netHours is the unrounded worked time of one entry.
func netHours(e Entry) float64 {
	h := e.Breakdown.SpanHours - e.Record.BreakHours
	if !(h > 0) {
		return 0
	}
	return h
}

// hoursDecimal converts an hour value for summing. Ingestion keeps hours
// finite; a NaN or infinite value from a record built elsewhere counts as 0.
func hoursDecimal(h float64) decimal.Decimal {
	if math.IsNaN(h) || math.IsInf(h, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(h)
}

// FormatDecimalHours renders a decimal hour total with one decimal place.
func FormatDecimalHours(d decimal.Decimal) string {
	return d.StringFixed(1)
}
