/*
Package report turns computed pay rows into what a payroll clerk reads:
yen and hour strings, per-row calculation details, per-employee totals and
the overall summary of one upload.

DEDUPLICATION:
  Summaries count a shift once. Rows sharing (date, employee, shift, start,
  end) are collapsed to the first occurrence before anything is totalled.

HOURS:
  Hour totals are summed as decimals and shown with one decimal place, so a
  column of 0.1h values never drifts to 2.9999999.

SEE ALSO:
  - detail.go: calculation-detail lines
  - summary.go: employee and overall totals
*/
package report

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// FormatYen renders whole yen with digit grouping: ¥12,345, -¥800.
func FormatYen(n int64) string {
	p := message.NewPrinter(language.Japanese)
	if n < 0 {
		return "-¥" + p.Sprintf("%d", -n)
	}
	return "¥" + p.Sprintf("%d", n)
}

// formatYenRate renders a rate-table amount, rounded to whole yen.
func formatYenRate(x float64) string {
	return FormatYen(int64(math.Round(x)))
}

// FormatHours renders hours with one decimal place.
func FormatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', 1, 64)
}

// FormatPercent renders a percentage without trailing zeros: 18, 12.5.
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', -1, 64)
}
