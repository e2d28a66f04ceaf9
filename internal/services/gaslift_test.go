// internal/services/gaslift_test.go

package services_test

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrocalc/internal/services"
)

func TestRunGasLiftSweepDefaults(t *testing.T) {
	recs, err := services.RunGasLiftSweep(services.DefaultGasLiftParams())
	require.NoError(t, err)
	require.Len(t, recs, 6*5*4*6)

	first := recs[0]
	assert.Equal(t, 0.5e6, first.GIR)
	assert.Equal(t, 0.8, first.PI)
	assert.Equal(t, 1800.0, first.DomePressure)
	assert.Equal(t, 50.0, first.DeltaP)
	assert.InDelta(t, 876.8, first.QLiqShort, 1e-9)
	assert.InDelta(t, 1009.6, first.QLiqLong, 1e-9)
	assert.InDelta(t, 0.5e6/876.8, first.GLRShort, 1e-9)
	assert.InDelta(t, 0.5e6/1886.4*0.85, first.EnergyEfficiency, 1e-9)
	assert.InDelta(t, 1000, first.CO2Emission, 1e-9)

	assert.True(t, first.Revenue.Equal(decimal.RequireFromString("122616.00")), "revenue=%s", first.Revenue)
	assert.True(t, first.GasCost.Equal(decimal.RequireFromString("1850.00")), "gas cost=%s", first.GasCost)
	assert.True(t, first.Profit.Equal(decimal.RequireFromString("120766.00")), "profit=%s", first.Profit)

	// ΔP adalah loop terdalam, GIR terluar
	assert.Equal(t, 100.0, recs[1].DeltaP)
	assert.Equal(t, 1800.0, recs[1].DomePressure)
	assert.Equal(t, 3.0e6, recs[len(recs)-1].GIR)
	assert.InDelta(t, 1.5, recs[len(recs)-1].PI, 1e-12)
	assert.Equal(t, 2400.0, recs[len(recs)-1].DomePressure)
	assert.Equal(t, 300.0, recs[len(recs)-1].DeltaP)
}

func TestGasLiftProfitConsistent(t *testing.T) {
	recs, err := services.RunGasLiftSweep(services.DefaultGasLiftParams())
	require.NoError(t, err)
	for _, r := range recs {
		assert.True(t, r.Profit.Equal(r.Revenue.Sub(r.GasCost)), "gir=%v pi=%v", r.GIR, r.PI)
	}
}

func TestSweepRangeValues(t *testing.T) {
	v, err := services.SweepRange{Min: 5, Max: 99, Count: 1}.Values()
	require.NoError(t, err)
	assert.Equal(t, []float64{5}, v)

	v, err = services.SweepRange{Min: 50, Max: 300, Count: 6}.Values()
	require.NoError(t, err)
	assert.InDeltaSlice(t, []float64{50, 100, 150, 200, 250, 300}, v, 1e-9)

	_, err = services.SweepRange{Min: 1, Max: 2}.Values()
	assert.ErrorIs(t, err, services.ErrInvalidParameter)
}

func TestRunGasLiftSweepErrors(t *testing.T) {
	p := services.DefaultGasLiftParams()
	p.ReservoirPressureShort = 50
	_, err := services.RunGasLiftSweep(p)
	assert.ErrorIs(t, err, services.ErrInvalidParameter)

	p = services.DefaultGasLiftParams()
	p.PI = services.SweepRange{Min: 0, Max: 1, Count: 3}
	_, err = services.RunGasLiftSweep(p)
	assert.ErrorIs(t, err, services.ErrInvalidParameter)

	p = services.DefaultGasLiftParams()
	p.GasPrice = decimal.NewFromInt(-1)
	_, err = services.RunGasLiftSweep(p)
	assert.ErrorIs(t, err, services.ErrInvalidParameter)
}

func TestWriteSensitivityCSV(t *testing.T) {
	p := services.DefaultGasLiftParams()
	p.GIR.Count, p.PI.Count, p.Dome.Count, p.DeltaP.Count = 1, 1, 1, 2
	recs, err := services.RunGasLiftSweep(p)
	require.NoError(t, err)
	require.Len(t, recs, 2)

	var buf bytes.Buffer
	require.NoError(t, services.WriteSensitivityCSV(&buf, recs))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "gir_scfd", rows[0][0])
	assert.Equal(t, "profit_usd", rows[0][12])
	assert.Equal(t, "122616.00", rows[1][10])
	assert.Equal(t, "1850.00", rows[1][11])
}
