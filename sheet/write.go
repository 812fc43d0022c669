package sheet

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/warp/shift-pay/pay"
	"github.com/xuri/excelize/v2"
)

const (
	utf8BOM   = "\ufeff"
	sheetName = "Sheet1"
)

// Format is a download format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat defaults to CSV for an empty string.
func ParseFormat(s string) (Format, error) {
	switch s {
	case "", "csv":
		return FormatCSV, nil
	case "xlsx":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, s)
}

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// =============================================================================
// TEMPLATE
// =============================================================================

// Template returns the blank attendance sheet with two sample rows.
func Template() *Table {
	header := append(append([]string{}, InputColumns...), ResultColumns[:6]...)
	return &Table{
		Header: header,
		Rows: [][]string{
			{"2024-01-15", string(pay.ShiftDay), "山田 太郎", "18", "09:00", "18:00", "1.0", "", "", "", "", "", ""},
			{"2024-01-15", string(pay.ShiftNight), "佐藤 花子", "15", "18:00", "32:29", "1.0", "", "", "", "", "", ""},
		},
	}
}

// TemplateFileName is the download name of the template.
func TemplateFileName(f Format) string {
	return "給与計算テンプレート." + string(f)
}

// ResultFileName is the download name of a result sheet built at now.
func ResultFileName(now time.Time, f Format) string {
	return fmt.Sprintf("給与計算結果_%s.%s", now.Format("20060102_150405"), f)
}

// =============================================================================
// ENRICHMENT
// =============================================================================

// Enrich returns a copy of the sheet with the computed columns filled in for
// each row. Input columns and any extra columns keep their original text,
// except 休憩時間 which is rewritten rounded to 0.1.
func Enrich(header []string, rows []Row, results []pay.PayBreakdown) *Table {
	out := &Table{Header: append([]string{}, header...)}
	pos := make(map[string]int)
	for _, c := range append([]string{ColBreak}, ResultColumns...) {
		i := indexOf(out.Header, c)
		if i < 0 {
			i = len(out.Header)
			out.Header = append(out.Header, c)
		}
		pos[c] = i
	}

	for n, row := range rows {
		cells := make([]string, len(out.Header))
		copy(cells, row.Cells)
		b := results[n]

		cells[pos[ColBasicPay]] = strconv.FormatInt(b.BasicPay, 10)
		cells[pos[ColNight]] = strconv.FormatInt(b.NightAllowance, 10)
		cells[pos[ColMidnight]] = strconv.FormatInt(b.MidnightAllowance, 10)
		cells[pos[ColOvertime]] = strconv.FormatInt(b.OvertimeAllowance, 10)
		cells[pos[ColBenefit]] = strconv.FormatInt(b.BenefitAllowance, 10)
		cells[pos[ColDailyTotal]] = strconv.FormatInt(b.DailyTotal, 10)
		cells[pos[ColWorkedHours]] = strconv.FormatFloat(b.WorkedHours, 'f', 1, 64)
		cells[pos[ColBreak]] = strconv.FormatFloat(b.BreakHours, 'f', 1, 64)
		out.Rows = append(out.Rows, cells)
	}
	return out
}

func indexOf(header []string, col string) int {
	for i, h := range header {
		if h == col {
			return i
		}
	}
	return -1
}

// =============================================================================
// WRITERS
// =============================================================================

// Write encodes t in the given format.
func Write(w io.Writer, t *Table, f Format) error {
	if f == FormatXLSX {
		return WriteXLSX(w, t)
	}
	return WriteCSV(w, t)
}

// WriteCSV writes UTF-8 CSV with a BOM so Excel opens it with the right
// encoding.
func WriteCSV(w io.Writer, t *Table) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(t.Header); err != nil {
		return err
	}
	if err := cw.WriteAll(t.Rows); err != nil {
		return fmt.Errorf("failed to write CSV: %w", err)
	}
	return nil
}

// WriteXLSX writes a single-sheet workbook. Cells of the computed columns
// are stored as numbers.
func WriteXLSX(w io.Writer, t *Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	numeric := make(map[int]bool)
	for _, c := range append([]string{ColBenefitRate, ColBreak}, ResultColumns...) {
		if i := indexOf(t.Header, c); i >= 0 {
			numeric[i] = true
		}
	}

	header := make([]any, len(t.Header))
	for i, h := range t.Header {
		header[i] = h
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return err
	}

	for r, row := range t.Rows {
		values := make([]any, len(row))
		for i, v := range row {
			values[i] = v
			if numeric[i] {
				if n, err := strconv.ParseFloat(v, 64); err == nil {
					values[i] = n
				}
			}
		}
		cellName, err := excelize.CoordinatesToCellName(1, r+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheetName, cellName, &values); err != nil {
			return err
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	lastCol, err := excelize.ColumnNumberToName(max(len(t.Header), 1))
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", lastCol+"1", bold); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "A", lastCol, 14); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
