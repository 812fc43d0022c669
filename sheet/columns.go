/*
Package sheet is the attendance-sheet boundary: it reads uploaded CSV, XLSX
and XLS files into validated pay.AttendanceRecord rows, and writes the
template and the enriched result sheet back out.

COLUMNS:
  Input (Japanese header, English alias):
    日付 (date), 日勤 or 夜勤 (shift), 従業員名 (employee),
    処遇改善加算％ (benefit_rate), 勤務開始時間 (start), 勤務終了時間 (end),
    休憩時間 (break, optional)

  Output, appended when absent and overwritten when present:
    基本給, 夜勤手当, 深夜手当, 残業手当, 処遇改善加算手当, 日当, 勤務時間, 休憩時間

VALIDATION:
  Each row is validated once here and never again inside pay. Row errors
  carry the 1-based sheet line so the uploader can find them.

SEE ALSO:
  - read.go: file decoding
  - row.go: row -> AttendanceRecord
  - write.go: template and result export
*/
package sheet

import "strings"

// Input column headers as written in the template.
const (
	ColDate        = "日付"
	ColShift       = "日勤 or 夜勤"
	ColEmployee    = "従業員名"
	ColBenefitRate = "処遇改善加算％"
	ColStart       = "勤務開始時間"
	ColEnd         = "勤務終了時間"
	ColBreak       = "休憩時間"
)

// Output column headers.
const (
	ColBasicPay    = "基本給"
	ColNight       = "夜勤手当"
	ColMidnight    = "深夜手当"
	ColOvertime    = "残業手当"
	ColBenefit     = "処遇改善加算手当"
	ColDailyTotal  = "日当"
	ColWorkedHours = "勤務時間"
)

// InputColumns lists the input columns in template order.
var InputColumns = []string{ColDate, ColShift, ColEmployee, ColBenefitRate, ColStart, ColEnd, ColBreak}

// ResultColumns lists the computed columns in export order. 休憩時間 is an
// input column and is rewritten in place, so it is not repeated here.
var ResultColumns = []string{ColBasicPay, ColNight, ColMidnight, ColOvertime, ColBenefit, ColDailyTotal, ColWorkedHours}

var requiredColumns = []string{ColDate, ColShift, ColEmployee, ColBenefitRate, ColStart, ColEnd}

var aliases = map[string]string{
	"date":          ColDate,
	"shift":         ColShift,
	"shift_type":    ColShift,
	"日勤or夜勤":        ColShift,
	"勤務形態":          ColShift,
	"employee":      ColEmployee,
	"employee_name": ColEmployee,
	"name":          ColEmployee,
	"benefit_rate":  ColBenefitRate,
	"処遇改善加算%":       ColBenefitRate,
	"start":         ColStart,
	"start_time":    ColStart,
	"end":           ColEnd,
	"end_time":      ColEnd,
	"break":         ColBreak,
	"break_hours":   ColBreak,
}

// canonicalColumn maps a header cell to its canonical name. Unknown headers
// are returned trimmed and are carried through to the export untouched.
func canonicalColumn(h string) string {
	h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	for _, c := range InputColumns {
		if h == c {
			return c
		}
	}
	for _, c := range ResultColumns {
		if h == c {
			return c
		}
	}
	if c, ok := aliases[strings.ToLower(h)]; ok {
		return c
	}
	return h
}
