package pay

import "fmt"

// Rates is the wage table applied by Calculator. Amounts are yen.
type Rates struct {
	DayHourly         float64 // base pay per worked hour on a day shift
	NightHourly       float64 // base pay per worked hour on a night shift
	NightFlat         float64 // night-shift allowance per shift
	MidnightFlat      float64 // late-night allowance per shift
	OvertimeThreshold float64 // night-shift hours before overtime starts
	OvertimePremium   float64 // fraction of OvertimeHourly paid per overtime hour
	OvertimeHourly    float64
	BenefitHourly     float64 // base the benefit percentage is applied to
}

// DefaultRates returns the standard table: 1300/h day, 1200/h night,
// 3000 night and 1800 late-night flat allowances, 25% overtime after 8h,
// benefit premium on a 1200/h base.
func DefaultRates() Rates {
	return Rates{
		DayHourly:         1300,
		NightHourly:       1200,
		NightFlat:         3000,
		MidnightFlat:      1800,
		OvertimeThreshold: 8,
		OvertimePremium:   0.25,
		OvertimeHourly:    1200,
		BenefitHourly:     1200,
	}
}

// Validate rejects negative amounts.
func (r Rates) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"day_hourly", r.DayHourly},
		{"night_hourly", r.NightHourly},
		{"night_flat", r.NightFlat},
		{"midnight_flat", r.MidnightFlat},
		{"overtime_threshold", r.OvertimeThreshold},
		{"overtime_premium", r.OvertimePremium},
		{"overtime_hourly", r.OvertimeHourly},
		{"benefit_hourly", r.BenefitHourly},
	}
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("rate %s must not be negative: %v", f.name, f.v)
		}
	}
	return nil
}
