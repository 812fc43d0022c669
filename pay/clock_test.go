package pay_test

import (
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-pay/pay"
)

// =============================================================================
// CLOCK TIME PARSING
// =============================================================================

func TestParseClockTime_Forms(t *testing.T) {
	tests := []struct {
		text string
		want float64
	}{
		{"09:00", 9.0},
		{"18:00", 18.0},
		{"9", 9.0},
		{"7.75", 7.75},
		{"  9:30  ", 9.5},
		{"8:15:36", 8.26},
		{"0:00", 0},
		{"24:00", 24.0},
		{"32:29", 32 + 29.0/60},
		{"9:", 0},  // empty minute field fails, recovered as 0
		{"", 0},    // empty string, recovered as 0
		{"abc", 0}, // non-numeric, recovered as 0
		{"9.5:00", 0},
		{"inf", 0},
		{"NaN", 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.text), func(t *testing.T) {
			assert.InDelta(t, tt.want, pay.ParseClockTime(tt.text), 1e-12)
		})
	}
}

func TestParseClockTime_HourMinuteProperty(t *testing.T) {
	// For every H:MM with H in [0,47] the result is exactly H + MM/60.
	for h := 0; h < 48; h++ {
		for m := 0; m < 60; m++ {
			text := fmt.Sprintf("%d:%02d", h, m)
			got := pay.ParseClockTime(text)
			assert.Equal(t, float64(h)+float64(m)/60, got, text)
		}
	}
}

func TestParseClockTime_ExtraFieldsIgnored(t *testing.T) {
	assert.InDelta(t, 1+2.0/60+3.0/3600, pay.ParseClockTime("1:02:03:04"), 1e-12)
}

func TestParseClockTimeStrict_Errors(t *testing.T) {
	for _, text := range []string{"", "  ", "abc", "9:xx", "9:", ":30", "nan", "-inf", "9.5:00"} {
		t.Run(fmt.Sprintf("%q", text), func(t *testing.T) {
			_, err := pay.ParseClockTimeStrict(text)
			require.Error(t, err)
			assert.ErrorIs(t, err, pay.ErrInvalidClockTime)

			var perr *pay.TimeParseError
			require.ErrorAs(t, err, &perr)
			assert.Equal(t, text, perr.Text)
			assert.True(t, pay.IsClientError(err))
		})
	}
}

func TestParseClockTimeStrict_Negative(t *testing.T) {
	// Negative hours are not rejected here; they are data, not syntax.
	h, err := pay.ParseClockTimeStrict("-1:30")
	require.NoError(t, err)
	assert.Equal(t, -0.5, h)
}

func TestCheckClockRange(t *testing.T) {
	for _, h := range []float64{0, 32 + 29.0/60, -12, pay.MaxClockHours, -pay.MaxClockHours} {
		assert.NoError(t, pay.CheckClockRange(h), h)
	}
	for _, h := range []float64{pay.MaxClockHours + 0.5, -1e308, 1e16, math.Inf(1)} {
		err := pay.CheckClockRange(h)
		assert.ErrorIs(t, err, pay.ErrClockOutOfRange, h)
		assert.True(t, pay.IsClientError(err))
	}
}

// =============================================================================
// WORKED HOURS
// =============================================================================

func TestWorkedHours_DayShift(t *testing.T) {
	// GIVEN: 09:00-18:00 with a 1h break
	// THEN: 8h worked
	assert.Equal(t, 8.0, pay.WorkedHours("09:00", "18:00", 1.0))
}

func TestWorkedHours_OverTwentyFourNotation(t *testing.T) {
	// GIVEN: end written as 32:29 (08:29 next day)
	// THEN: no wraparound is added on top; 14.48h span minus 1h break
	got := pay.WorkedHours("18:00", "32:29", 1.0)
	assert.InDelta(t, 13.4833333, got, 1e-6)
	assert.Equal(t, 13.483333333333334, got)
}

func TestWorkedHours_SameDayNotationWraps(t *testing.T) {
	// GIVEN: 22:00 -> 06:00 written in same-day notation
	// THEN: end becomes 30:00 and the span is 8h
	assert.Equal(t, 8.0, pay.WorkedHours("22:00", "06:00", 0))
}

func TestWorkedHours_BothConventionsAgree(t *testing.T) {
	// 22:00 -> 06:00 and 22:00 -> 30:00 describe the same shift. The +24 is
	// applied to the parsed value, so the two may differ in the last bit.
	for m := 0; m < 60; m += 7 {
		sameDay := pay.WorkedHours("22:00", fmt.Sprintf("6:%02d", m), 0.5)
		over24 := pay.WorkedHours("22:00", fmt.Sprintf("30:%02d", m), 0.5)
		assert.InDelta(t, over24, sameDay, 1e-9, "minute %d", m)
	}
}

func TestWorkedHours_BreakExceedsSpanClampsToZero(t *testing.T) {
	assert.Equal(t, 0.0, pay.WorkedHours("09:00", "10:00", 2))
	assert.Equal(t, 0.0, pay.WorkedHours("09:00", "09:00", 0))
}

func TestWorkedHours_NaNBreakClampsToZero(t *testing.T) {
	assert.Equal(t, 0.0, pay.WorkedHours("09:00", "18:00", math.NaN()))
}

func TestWorkedHours_UnparseableTimeReadsAsZero(t *testing.T) {
	// "abc" is 0h, so 0 -> 18 is 18h minus the 1h break
	assert.Equal(t, 17.0, pay.WorkedHours("abc", "18:00", 1))
	// 9 -> 0 wraps: 0+24-9 = 15h
	assert.Equal(t, 15.0, pay.WorkedHours("09:00", "", 0))
}

func TestWorkedHours_NeverNegativeProperty(t *testing.T) {
	breaks := []float64{-1, 0, 0.5, 1, 8, 30}
	for sh := 0; sh < 48; sh += 3 {
		for eh := 0; eh < 48; eh += 5 {
			for _, br := range breaks {
				got := pay.WorkedHours(fmt.Sprintf("%d:15", sh), fmt.Sprintf("%d:40", eh), br)
				assert.GreaterOrEqual(t, got, 0.0)
			}
		}
	}
}

func TestWorkedHoursStrict(t *testing.T) {
	h, err := pay.WorkedHoursStrict("09:00", "18:00", 1)
	require.NoError(t, err)
	assert.Equal(t, 8.0, h)

	_, err = pay.WorkedHoursStrict("09:00", "late", 1)
	assert.ErrorIs(t, err, pay.ErrInvalidClockTime)
}

func TestRoundTenth(t *testing.T) {
	assert.Equal(t, 13.5, pay.RoundTenth(13.483333333333334))
	assert.Equal(t, 8.2, pay.RoundTenth(8.25)) // exact tie goes to even
	assert.Equal(t, 0.1, pay.RoundTenth(0.15)) // 0.15 is just below the tie
	assert.Equal(t, 7.8, pay.RoundTenth(7.833333333333332))
}
