/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the pay/report/session types from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients
  - *Response: Complex response wrappers

AMOUNTS:
  Yen amounts are JSON integers. Fields ending in _display carry the same
  amount formatted for people (¥12,345). Hours are numbers rounded to 0.1.

SEE ALSO:
  - handlers.go: Uses these types
  - report/summary.go: Summary types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-pay/pay"
	"github.com/warp/shift-pay/report"
	"github.com/warp/shift-pay/session"
	"github.com/warp/shift-pay/sheet"
)

// =============================================================================
// RECORDS
// =============================================================================

// ComputeRequest is one attendance record posted for a one-off calculation.
type ComputeRequest struct {
	Date         string  `json:"date"`
	EmployeeName string  `json:"employee_name"`
	ShiftType    string  `json:"shift_type"`
	BenefitRate  float64 `json:"benefit_rate"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	BreakHours   float64 `json:"break_hours"`
}

// RecordDTO echoes an attendance record.
type RecordDTO struct {
	Date         string  `json:"date"`
	EmployeeName string  `json:"employee_name"`
	ShiftType    string  `json:"shift_type"`
	BenefitRate  float64 `json:"benefit_rate"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	BreakHours   float64 `json:"break_hours"`
}

// BreakdownDTO is a computed pay breakdown.
type BreakdownDTO struct {
	BasicPay          int64   `json:"basic_pay"`
	NightAllowance    int64   `json:"night_allowance"`
	MidnightAllowance int64   `json:"midnight_allowance"`
	OvertimeAllowance int64   `json:"overtime_allowance"`
	BenefitAllowance  int64   `json:"benefit_allowance"`
	DailyTotal        int64   `json:"daily_total"`
	DailyTotalDisplay string  `json:"daily_total_display"`
	WorkedHours       float64 `json:"worked_hours"`
	BreakHours        float64 `json:"break_hours"`
}

// ComputeResponse is the answer to POST /api/compute.
type ComputeResponse struct {
	Record    RecordDTO    `json:"record"`
	Breakdown BreakdownDTO `json:"breakdown"`
	Details   []string     `json:"details"`
}

// =============================================================================
// SESSIONS
// =============================================================================

// RowDTO is one computed row of an uploaded sheet.
type RowDTO struct {
	Line      int          `json:"line"`
	Record    RecordDTO    `json:"record"`
	Breakdown BreakdownDTO `json:"breakdown"`
	Details   []string     `json:"details"`
}

// SessionDTO is an uploaded sheet with its results.
type SessionDTO struct {
	ID         string     `json:"id"`
	SourceName string     `json:"source_name"`
	Header     []string   `json:"header"`
	CreatedAt  string     `json:"created_at"`
	ExpiresAt  string     `json:"expires_at"`
	Rows       []RowDTO   `json:"rows"`
	Summary    SummaryDTO `json:"summary"`
}

// =============================================================================
// SUMMARIES
// =============================================================================

// SummaryDTO wraps the employee and overall summaries.
type SummaryDTO struct {
	PayrollTotal        int64                `json:"payroll_total"`
	PayrollTotalDisplay string               `json:"payroll_total_display"`
	Employees           []EmployeeSummaryDTO `json:"employees"`
	Overall             OverallDTO           `json:"overall"`
}

// ShiftDTO is one line of an employee's shift list.
type ShiftDTO struct {
	Date        string  `json:"date"`
	ShiftType   string  `json:"shift_type"`
	StartTime   string  `json:"start_time"`
	EndTime     string  `json:"end_time"`
	WorkedHours float64 `json:"worked_hours"`
	BreakHours  float64 `json:"break_hours"`
	DailyTotal  int64   `json:"daily_total"`
}

// EmployeeSummaryDTO totals one employee.
type EmployeeSummaryDTO struct {
	Name            string       `json:"name"`
	Days            int          `json:"days"`
	WorkedHours     float64      `json:"worked_hours"`
	TotalPay        int64        `json:"total_pay"`
	TotalPayDisplay string       `json:"total_pay_display"`
	Shifts          []ShiftDTO   `json:"shifts"`
	Latest          BreakdownDTO `json:"latest"`
}

// OverallDTO totals every distinct shift of a session.
type OverallDTO struct {
	Records           int     `json:"records"`
	DayShifts         int     `json:"day_shifts"`
	NightShifts       int     `json:"night_shifts"`
	WorkedHours       float64 `json:"worked_hours"`
	BreakHours        float64 `json:"break_hours"`
	BasicPay          int64   `json:"basic_pay"`
	NightAllowance    int64   `json:"night_allowance"`
	MidnightAllowance int64   `json:"midnight_allowance"`
	OvertimeAllowance int64   `json:"overtime_allowance"`
	BenefitAllowance  int64   `json:"benefit_allowance"`
	GrandTotal        int64   `json:"grand_total"`
	GrandTotalDisplay string  `json:"grand_total_display"`
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details any    `json:"details,omitempty"`
}

// RowErrorDTO points at one invalid cell of an upload.
type RowErrorDTO struct {
	Line    int    `json:"line"`
	Column  string `json:"column"`
	Value   string `json:"value"`
	Message string `json:"message"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRecordDTO(rec pay.AttendanceRecord) RecordDTO {
	return RecordDTO{
		Date:         rec.Date,
		EmployeeName: rec.EmployeeName,
		ShiftType:    rec.ShiftType.String(),
		BenefitRate:  rec.BenefitRate,
		StartTime:    rec.StartTime,
		EndTime:      rec.EndTime,
		BreakHours:   rec.BreakHours,
	}
}

func toBreakdownDTO(b pay.PayBreakdown) BreakdownDTO {
	return BreakdownDTO{
		BasicPay:          b.BasicPay,
		NightAllowance:    b.NightAllowance,
		MidnightAllowance: b.MidnightAllowance,
		OvertimeAllowance: b.OvertimeAllowance,
		BenefitAllowance:  b.BenefitAllowance,
		DailyTotal:        b.DailyTotal,
		DailyTotalDisplay: report.FormatYen(b.DailyTotal),
		WorkedHours:       b.WorkedHours,
		BreakHours:        b.BreakHours,
	}
}

func hours(d decimal.Decimal) float64 {
	return d.Round(1).InexactFloat64()
}

func toSummaryDTO(s report.Summary) SummaryDTO {
	dto := SummaryDTO{
		PayrollTotal:        s.PayrollTotal,
		PayrollTotalDisplay: report.FormatYen(s.PayrollTotal),
		Employees:           make([]EmployeeSummaryDTO, 0, len(s.Employees)),
		Overall: OverallDTO{
			Records:           s.Overall.Records,
			DayShifts:         s.Overall.DayShifts,
			NightShifts:       s.Overall.NightShifts,
			WorkedHours:       hours(s.Overall.WorkedHours),
			BreakHours:        hours(s.Overall.BreakHours),
			BasicPay:          s.Overall.BasicPay,
			NightAllowance:    s.Overall.NightAllowance,
			MidnightAllowance: s.Overall.MidnightAllowance,
			OvertimeAllowance: s.Overall.OvertimeAllowance,
			BenefitAllowance:  s.Overall.BenefitAllowance,
			GrandTotal:        s.Overall.GrandTotal,
			GrandTotalDisplay: report.FormatYen(s.Overall.GrandTotal),
		},
	}

	for _, e := range s.Employees {
		shifts := make([]ShiftDTO, len(e.Shifts))
		for i, sh := range e.Shifts {
			shifts[i] = ShiftDTO{
				Date:        sh.Record.Date,
				ShiftType:   sh.Record.ShiftType.String(),
				StartTime:   sh.Record.StartTime,
				EndTime:     sh.Record.EndTime,
				WorkedHours: sh.Breakdown.WorkedHours,
				BreakHours:  sh.Breakdown.BreakHours,
				DailyTotal:  sh.Breakdown.DailyTotal,
			}
		}
		dto.Employees = append(dto.Employees, EmployeeSummaryDTO{
			Name:            e.Name,
			Days:            e.Days,
			WorkedHours:     hours(e.WorkedHours),
			TotalPay:        e.TotalPay,
			TotalPayDisplay: report.FormatYen(e.TotalPay),
			Shifts:          shifts,
			Latest:          toBreakdownDTO(e.Latest),
		})
	}
	return dto
}

func toSessionDTO(sess *session.Session, rates pay.Rates) SessionDTO {
	rows := make([]RowDTO, len(sess.Rows))
	for i, r := range sess.Rows {
		rows[i] = RowDTO{
			Line:      r.Line,
			Record:    toRecordDTO(r.Record),
			Breakdown: toBreakdownDTO(r.Breakdown),
			Details:   report.Details(rates, r.Record, r.Breakdown),
		}
	}
	return SessionDTO{
		ID:         sess.ID,
		SourceName: sess.SourceName,
		Header:     sess.Header,
		CreatedAt:  sess.CreatedAt.Format(time.RFC3339),
		ExpiresAt:  sess.ExpiresAt.Format(time.RFC3339),
		Rows:       rows,
		Summary:    toSummaryDTO(report.Summarize(sess.Entries())),
	}
}

func toRowErrorDTOs(v *sheet.ValidationError) []RowErrorDTO {
	out := make([]RowErrorDTO, len(v.Rows))
	for i, r := range v.Rows {
		out[i] = RowErrorDTO{Line: r.Line, Column: r.Column, Value: r.Value, Message: r.Err.Error()}
	}
	return out
}
