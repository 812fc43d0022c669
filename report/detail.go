package report

import (
	"fmt"
	"math"

	"github.com/warp/shift-pay/pay"
)

// Details explains how a breakdown was reached, one line per component:
//
//	勤務時間: 09:00 ～ 18:00 (総時間: 9.0時間, 休憩: 1.0時間, 実働: 8.0時間)
//	基本給: 8.0時間 × ¥1,300 = ¥10,400
//	処遇改善加算手当: 8.0時間 × ¥1,200 × 18% = ¥1,728
//
// Night shifts also list the flat allowances and overtime. The hours shown
// are the displayed (rounded) worked hours, so the overtime line reads
// 実働 - 8 of what the sheet shows; the amount is the computed one.
func Details(rates pay.Rates, rec pay.AttendanceRecord, b pay.PayBreakdown) []string {
	worked := FormatHours(b.WorkedHours)
	lines := []string{
		fmt.Sprintf("勤務時間: %s ～ %s (総時間: %s時間, 休憩: %s時間, 実働: %s時間)",
			rec.StartTime, rec.EndTime, FormatHours(b.SpanHours), FormatHours(b.BreakHours), worked),
	}

	benefit := fmt.Sprintf("処遇改善加算手当: %s時間 × %s × %s%% = %s",
		worked, formatYenRate(rates.BenefitHourly), FormatPercent(rec.BenefitRate), FormatYen(b.BenefitAllowance))

	if rec.ShiftType.IsDay() {
		return append(lines,
			fmt.Sprintf("基本給: %s時間 × %s = %s", worked, formatYenRate(rates.DayHourly), FormatYen(b.BasicPay)),
			benefit,
		)
	}

	overtimeHours := math.Max(0, b.WorkedHours-rates.OvertimeThreshold)
	return append(lines,
		fmt.Sprintf("基本給: %s時間 × %s = %s", worked, formatYenRate(rates.NightHourly), FormatYen(b.BasicPay)),
		fmt.Sprintf("夜勤手当: 固定 = %s", FormatYen(b.NightAllowance)),
		fmt.Sprintf("深夜手当: 固定 = %s", FormatYen(b.MidnightAllowance)),
		fmt.Sprintf("残業手当: %s時間 × %s × %s%% = %s",
			FormatHours(overtimeHours), formatYenRate(rates.OvertimeHourly),
			FormatPercent(rates.OvertimePremium*100), FormatYen(b.OvertimeAllowance)),
		benefit,
	)
}
