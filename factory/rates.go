/*
Package factory provides JSON to Go wage-table conversion.

PURPOSE:
  Converts JSON wage-table definitions into pay.Rates. Payroll staff can
  adjust hourly rates and allowances in a file (RATES_FILE) without a code
  change; every omitted field keeps its standard value.

JSON SCHEMA:
  {
    "name": "2024 standard",
    "day_hourly": 1300,
    "night_hourly": 1200,
    "night_flat": 3000,
    "midnight_flat": 1800,
    "overtime_threshold_hours": 8,
    "overtime_premium_percent": 25,
    "overtime_hourly": 1200,
    "benefit_hourly": 1200
  }

  Numbers may also be given as strings ("1300"); they are read as exact
  decimals before conversion.

USAGE:
  f := factory.NewRatesFactory()
  rates, err := f.ParseRates(jsonString)
  calc := pay.NewCalculator(rates)

SEE ALSO:
  - pay/rates.go: Rates type and standard values
  - config/config.go: RATES_FILE
*/
package factory

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/shopspring/decimal"
	"github.com/warp/shift-pay/pay"
)

// =============================================================================
// JSON SCHEMA TYPES
// =============================================================================

// RatesJSON is the JSON representation of a wage table. Nil fields take the
// standard value.
type RatesJSON struct {
	Name                   string           `json:"name,omitempty"`
	DayHourly              *decimal.Decimal `json:"day_hourly,omitempty"`
	NightHourly            *decimal.Decimal `json:"night_hourly,omitempty"`
	NightFlat              *decimal.Decimal `json:"night_flat,omitempty"`
	MidnightFlat           *decimal.Decimal `json:"midnight_flat,omitempty"`
	OvertimeThresholdHours *decimal.Decimal `json:"overtime_threshold_hours,omitempty"`
	OvertimePremiumPercent *decimal.Decimal `json:"overtime_premium_percent,omitempty"`
	OvertimeHourly         *decimal.Decimal `json:"overtime_hourly,omitempty"`
	BenefitHourly          *decimal.Decimal `json:"benefit_hourly,omitempty"`
}

var hundred = decimal.NewFromInt(100)

// =============================================================================
// RATES FACTORY
// =============================================================================

// RatesFactory converts JSON wage tables to pay.Rates.
type RatesFactory struct {
	base pay.Rates
}

// NewRatesFactory creates a factory whose omitted fields fall back to
// pay.DefaultRates.
func NewRatesFactory() *RatesFactory {
	return &RatesFactory{base: pay.DefaultRates()}
}

// ParseRates parses a JSON string into validated Rates.
func (f *RatesFactory) ParseRates(jsonStr string) (pay.Rates, error) {
	var rj RatesJSON
	if err := json.Unmarshal([]byte(jsonStr), &rj); err != nil {
		return pay.Rates{}, fmt.Errorf("failed to parse rates JSON: %w", err)
	}
	return f.FromJSON(rj)
}

// LoadFile reads and parses a wage-table file.
func (f *RatesFactory) LoadFile(path string) (pay.Rates, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pay.Rates{}, fmt.Errorf("failed to read rates file: %w", err)
	}
	return f.ParseRates(string(data))
}

// FromJSON converts RatesJSON to pay.Rates and validates the result.
func (f *RatesFactory) FromJSON(rj RatesJSON) (pay.Rates, error) {
	r := f.base
	set(&r.DayHourly, rj.DayHourly)
	set(&r.NightHourly, rj.NightHourly)
	set(&r.NightFlat, rj.NightFlat)
	set(&r.MidnightFlat, rj.MidnightFlat)
	set(&r.OvertimeThreshold, rj.OvertimeThresholdHours)
	set(&r.OvertimeHourly, rj.OvertimeHourly)
	set(&r.BenefitHourly, rj.BenefitHourly)
	if rj.OvertimePremiumPercent != nil {
		frac := rj.OvertimePremiumPercent.Div(hundred)
		r.OvertimePremium, _ = frac.Float64()
	}

	if err := r.Validate(); err != nil {
		return pay.Rates{}, fmt.Errorf("invalid rates %q: %w", rj.Name, err)
	}
	return r, nil
}

// ToJSON converts Rates back to the JSON form, every field set.
func (f *RatesFactory) ToJSON(r pay.Rates) RatesJSON {
	premium := decimal.NewFromFloat(r.OvertimePremium).Mul(hundred)
	return RatesJSON{
		DayHourly:              dec(r.DayHourly),
		NightHourly:            dec(r.NightHourly),
		NightFlat:              dec(r.NightFlat),
		MidnightFlat:           dec(r.MidnightFlat),
		OvertimeThresholdHours: dec(r.OvertimeThreshold),
		OvertimePremiumPercent: &premium,
		OvertimeHourly:         dec(r.OvertimeHourly),
		BenefitHourly:          dec(r.BenefitHourly),
	}
}

// =============================================================================
// PARSING HELPERS
// =============================================================================

func set(dst *float64, v *decimal.Decimal) {
	if v == nil {
		return
	}
	*dst, _ = v.Float64()
}

func dec(v float64) *decimal.Decimal {
	d := decimal.NewFromFloat(v)
	return &d
}
