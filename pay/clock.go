package pay

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
)

// =============================================================================
// CLOCK TIME PARSING
// =============================================================================

// ParseClockTimeStrict converts a clock time to fractional hours.
//
// Accepted forms, surrounding whitespace ignored:
//
//	"H:MM:SS" -> H + MM/60 + SS/3600
//	"H:MM"    -> H + MM/60
//	"H"       -> parsed as a decimal number of hours ("7.75" is 7.75)
//
// The hour may be 24 or more; "32:29" is 08:29 on the following day and is
// returned as 32.48..., never wrapped. Fields after the third are ignored.
func ParseClockTimeStrict(text string) (float64, error) {
	s := strings.TrimSpace(text)
	if s == "" {
		return 0, &TimeParseError{Text: text}
	}

	if !strings.Contains(s, ":") {
		h, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, &TimeParseError{Text: text, Err: err}
		}
		if math.IsNaN(h) || math.IsInf(h, 0) {
			return 0, &TimeParseError{Text: text}
		}
		return h, nil
	}

	parts := strings.Split(s, ":")
	var fields [3]int
	for i := 0; i < len(parts) && i < len(fields); i++ {
		n, err := strconv.Atoi(strings.TrimSpace(parts[i]))
		if err != nil {
			return 0, &TimeParseError{Text: text, Err: err}
		}
		fields[i] = n
	}

	return float64(fields[0]) + float64(fields[1])/60 + float64(fields[2])/3600, nil
}

// MaxClockHours bounds the clock times ingestion accepts. Over-24 notation
// for a shift ending the next morning ("32:29") is far inside it.
const MaxClockHours = 1000

// CheckClockRange returns ErrClockOutOfRange when h is farther than
// MaxClockHours from 0.
func CheckClockRange(h float64) error {
	if math.Abs(h) > MaxClockHours {
		return fmt.Errorf("%w: %g hours", ErrClockOutOfRange, h)
	}
	return nil
}

// ParseClockTime is the fail-soft form of ParseClockTimeStrict: an
// unparseable time is logged and read as 0 hours.
func ParseClockTime(text string) float64 {
	h, err := ParseClockTimeStrict(text)
	if err != nil {
		logrus.WithField("text", text).WithError(err).Warn("clock time unparseable, using 0 hours")
		return 0
	}
	return h
}

// =============================================================================
// WORKED HOURS
// =============================================================================

// spanHours returns end-start, adding 24 to end first when it is numerically
// before start. Over-24 notation ("18:00" -> "32:29") is already ordered and
// is not adjusted again.
func spanHours(start, end float64) float64 {
	if end < start {
		end += 24
	}
	return end - start
}

// netHours deducts the break and floors at zero. A NaN break also yields 0.
func netHours(span, breakHours float64) float64 {
	worked := span - breakHours
	if !(worked > 0) {
		return 0
	}
	return worked
}

// WorkedHours derives net worked hours from clock-in, clock-out and a break.
// Unparseable times count as 0 hours (see ParseClockTime). The result is
// never negative and is not rounded.
func WorkedHours(start, end string, breakHours float64) float64 {
	return netHours(spanHours(ParseClockTime(start), ParseClockTime(end)), breakHours)
}

// WorkedHoursStrict is WorkedHours but returns the first parse failure.
func WorkedHoursStrict(start, end string, breakHours float64) (float64, error) {
	s, err := ParseClockTimeStrict(start)
	if err != nil {
		return 0, err
	}
	e, err := ParseClockTimeStrict(end)
	if err != nil {
		return 0, err
	}
	return netHours(spanHours(s, e), breakHours), nil
}

// RoundTenth rounds to one decimal place the way the sheet displays hours:
// correctly rounded from the binary value, ties to even.
func RoundTenth(h float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(h, 'f', 1, 64), 64)
	if err != nil {
		return h
	}
	return r
}
