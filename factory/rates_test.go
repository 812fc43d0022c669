package factory_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/shift-pay/factory"
	"github.com/warp/shift-pay/pay"
)

func TestParseRates_EmptyObjectIsDefault(t *testing.T) {
	r, err := factory.NewRatesFactory().ParseRates(`{}`)
	require.NoError(t, err)
	assert.Equal(t, pay.DefaultRates(), r)
}

func TestParseRates_Overrides(t *testing.T) {
	// GIVEN: a table raising the day rate and the overtime premium
	r, err := factory.NewRatesFactory().ParseRates(`{
		"name": "2025 revision",
		"day_hourly": 1350,
		"overtime_premium_percent": "35",
		"night_flat": "3500"
	}`)
	require.NoError(t, err)

	// THEN: overridden fields change, the rest keep standard values
	assert.Equal(t, 1350.0, r.DayHourly)
	assert.Equal(t, 0.35, r.OvertimePremium)
	assert.Equal(t, 3500.0, r.NightFlat)
	assert.Equal(t, 1200.0, r.NightHourly)
	assert.Equal(t, 8.0, r.OvertimeThreshold)
}

func TestParseRates_Invalid(t *testing.T) {
	f := factory.NewRatesFactory()

	_, err := f.ParseRates(`{"day_hourly": `)
	assert.Error(t, err)

	_, err = f.ParseRates(`{"name": "broken", "midnight_flat": -10}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "midnight_flat")
}

func TestRates_RoundTrip(t *testing.T) {
	f := factory.NewRatesFactory()
	data, err := json.Marshal(f.ToJSON(pay.DefaultRates()))
	require.NoError(t, err)

	r, err := f.ParseRates(string(data))
	require.NoError(t, err)
	assert.Equal(t, pay.DefaultRates(), r)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rates.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"benefit_hourly": 1250}`), 0o600))

	r, err := factory.NewRatesFactory().LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1250.0, r.BenefitHourly)

	_, err = factory.NewRatesFactory().LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
