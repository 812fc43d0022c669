package sheet

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/warp/shift-pay/pay"
	"golang.org/x/text/width"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrMissingColumn is returned when a required input column is absent.
	ErrMissingColumn = errors.New("missing required column")

	// ErrInvalidNumber is returned when a numeric cell cannot be read.
	ErrInvalidNumber = errors.New("invalid number")

	// ErrNegativeNumber is returned for a negative break or benefit rate.
	ErrNegativeNumber = errors.New("must not be negative")
)

// MissingColumnError lists every required column the header lacks.
type MissingColumnError struct {
	Columns []string
}

func (e *MissingColumnError) Error() string {
	return fmt.Sprintf("missing required column(s): %s", strings.Join(e.Columns, ", "))
}

func (e *MissingColumnError) Unwrap() error { return ErrMissingColumn }

// RowError pins a validation failure to a sheet line and column.
type RowError struct {
	Line   int // 1-based; the header is line 1
	Column string
	Value  string
	Err    error
}

func (e *RowError) Error() string {
	if e.Line == 0 {
		return fmt.Sprintf("%s %q: %v", e.Column, e.Value, e.Err)
	}
	return fmt.Sprintf("line %d, %s %q: %v", e.Line, e.Column, e.Value, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// ValidationError collects every RowError found in one sheet.
type ValidationError struct {
	Rows []*RowError
}

func (e *ValidationError) Error() string {
	if len(e.Rows) == 1 {
		return e.Rows[0].Error()
	}
	return fmt.Sprintf("%d invalid cells; first: %v", len(e.Rows), e.Rows[0])
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, len(e.Rows))
	for i, r := range e.Rows {
		errs[i] = r
	}
	return errs
}

// IsClientError returns true if the error is due to the uploaded content.
func IsClientError(err error) bool {
	return errors.Is(err, ErrMissingColumn) ||
		errors.Is(err, ErrInvalidNumber) ||
		errors.Is(err, ErrNegativeNumber) ||
		errors.Is(err, ErrEmptySheet) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		pay.IsClientError(err)
}

// =============================================================================
// ROWS
// =============================================================================

// Row is one validated data row.
type Row struct {
	Line   int
	Cells  []string // aligned with Table.Header
	Record pay.AttendanceRecord
}

// Options controls how strictly rows are validated.
type Options struct {
	// StrictShiftTypes rejects shift labels other than 日勤/夜勤 (and
	// day/night). When false such rows are paid as night shifts and a
	// warning is logged.
	StrictShiftTypes bool

	// StrictTimes rejects clock times pay.ParseClockTimeStrict refuses.
	// When false they are computed as 0 hours.
	StrictTimes bool
}

// Records validates every data row of t. Blank rows are skipped. When any
// cell is invalid the valid rows are still returned together with a
// *ValidationError listing all failures.
func Records(t *Table, opts Options) ([]Row, error) {
	idx := make(map[string]int, len(InputColumns))
	for _, c := range InputColumns {
		idx[c] = t.Index(c)
	}
	var missing []string
	for _, c := range requiredColumns {
		if idx[c] < 0 {
			missing = append(missing, c)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnError{Columns: missing}
	}

	var (
		rows []Row
		errs []*RowError
	)
	for i, raw := range t.Rows {
		line := i + 2
		if isBlank(raw) {
			continue
		}
		cells := make([]string, len(t.Header))
		copy(cells, raw)

		rec, rowErrs := parseRecord(line, cells, idx, opts)
		if len(rowErrs) > 0 {
			errs = append(errs, rowErrs...)
			continue
		}
		rows = append(rows, Row{Line: line, Cells: cells, Record: rec})
	}

	if len(errs) > 0 {
		return rows, &ValidationError{Rows: errs}
	}
	return rows, nil
}

func parseRecord(line int, cells []string, idx map[string]int, opts Options) (pay.AttendanceRecord, []*RowError) {
	var errs []*RowError
	fail := func(col string, err error) {
		errs = append(errs, &RowError{Line: line, Column: col, Value: cell(cells, idx[col]), Err: err})
	}

	rec := pay.AttendanceRecord{
		Date:         cell(cells, idx[ColDate]),
		EmployeeName: cell(cells, idx[ColEmployee]),
		StartTime:    normalize(cell(cells, idx[ColStart])),
		EndTime:      normalize(cell(cells, idx[ColEnd])),
	}

	shift, err := ResolveShiftType(normalize(cell(cells, idx[ColShift])), opts)
	if err != nil {
		fail(ColShift, err)
	}
	rec.ShiftType = shift

	rate, err := parseNumber(strings.TrimSuffix(normalize(cell(cells, idx[ColBenefitRate])), "%"), false)
	if err == nil {
		err = checkNonNegative(rate)
	}
	if err != nil {
		fail(ColBenefitRate, err)
	}
	rec.BenefitRate = rate

	brk, err := parseNumber(normalize(cell(cells, idx[ColBreak])), true)
	if err == nil {
		err = checkNonNegative(brk)
	}
	if err != nil {
		fail(ColBreak, err)
	}
	rec.BreakHours = brk

	if err := checkClockTime(rec.StartTime, opts); err != nil {
		fail(ColStart, err)
	}
	if err := checkClockTime(rec.EndTime, opts); err != nil {
		fail(ColEnd, err)
	}

	return rec, errs
}

// CheckRecord applies the row rules to a record that was not read from a
// sheet, such as a JSON request. The shift label is resolved separately by
// ResolveShiftType. Failures come back as a *ValidationError whose RowErrors
// have no line.
func CheckRecord(rec pay.AttendanceRecord, opts Options) error {
	var errs []*RowError
	check := func(col, value string, err error) {
		if err != nil {
			errs = append(errs, &RowError{Column: col, Value: value, Err: err})
		}
	}
	check(ColBenefitRate, strconv.FormatFloat(rec.BenefitRate, 'g', -1, 64), checkNonNegative(rec.BenefitRate))
	check(ColBreak, strconv.FormatFloat(rec.BreakHours, 'g', -1, 64), checkNonNegative(rec.BreakHours))
	check(ColStart, rec.StartTime, checkClockTime(rec.StartTime, opts))
	check(ColEnd, rec.EndTime, checkClockTime(rec.EndTime, opts))

	if len(errs) > 0 {
		return &ValidationError{Rows: errs}
	}
	return nil
}

func checkNonNegative(v float64) error {
	if v < 0 {
		return ErrNegativeNumber
	}
	return nil
}

// checkClockTime refuses unreadable text only under StrictTimes (Compute
// reads it as 0 hours otherwise). A readable time outside
// ±pay.MaxClockHours is always refused.
func checkClockTime(text string, opts Options) error {
	h, err := pay.ParseClockTimeStrict(text)
	if err != nil {
		if opts.StrictTimes {
			return err
		}
		return nil
	}
	return pay.CheckClockRange(h)
}

// ResolveShiftType parses a shift label. Unless opts.StrictShiftTypes is set,
// an unknown label is paid as a night shift and a warning is logged.
func ResolveShiftType(label string, opts Options) (pay.ShiftType, error) {
	shift, err := pay.ParseShiftType(label)
	if err == nil {
		return shift, nil
	}
	if opts.StrictShiftTypes {
		return "", err
	}
	logrus.WithField("shift", label).Warn("unrecognized shift type, paying as night shift")
	return pay.ShiftNight, nil
}

// parseNumber reads a finite decimal. A blank cell is 0 when optional.
func parseNumber(s string, optional bool) (float64, error) {
	if s == "" {
		if optional {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: value required", ErrInvalidNumber)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidNumber
	}
	return v, nil
}

// normalize trims the cell and folds full-width digits and punctuation
// ("０９：００") to their ASCII forms.
func normalize(s string) string {
	return strings.TrimSpace(width.Narrow.String(strings.TrimSpace(s)))
}

func cell(cells []string, i int) string {
	if i < 0 || i >= len(cells) {
		return ""
	}
	return cells[i]
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
