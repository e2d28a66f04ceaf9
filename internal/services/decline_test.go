// internal/services/decline_test.go

package services_test

import (
	"bytes"
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"petrocalc/internal/services"
)

func TestForecastExponential(t *testing.T) {
	fc, err := services.ForecastDecline(services.DeclineExponential, 1000, 0.15, 0, 12)
	require.NoError(t, err)

	require.Len(t, fc.Time, 13)
	require.Len(t, fc.Rate, 13)
	assert.Equal(t, 0.0, fc.Time[0])
	assert.Equal(t, 12.0, fc.Time[12])
	assert.InDelta(t, 1000, fc.Rate[0], 1e-9)
	assert.InDelta(t, 165.2989, fc.Rate[12], 1e-4)
	assert.Zero(t, fc.B)

	for i := 1; i < len(fc.Rate); i++ {
		assert.Less(t, fc.Rate[i], fc.Rate[i-1])
	}
	assert.Greater(t, fc.EUR, 0.0)
}

func TestForecastZeroDeclineIsFlat(t *testing.T) {
	fc, err := services.ForecastDecline(services.DeclineExponential, 500, 0, 0, 24)
	require.NoError(t, err)
	for _, q := range fc.Rate {
		assert.Equal(t, 500.0, q)
	}
	assert.InDelta(t, 500*24, fc.EUR, 1e-9)
}

func TestForecastHarmonicAndHyperbolic(t *testing.T) {
	h, err := services.ForecastDecline(services.DeclineHarmonic, 1000, 0.1, 0, 10)
	require.NoError(t, err)
	assert.InDelta(t, 500, h.Rate[10], 1e-9)

	hy, err := services.ForecastDecline(services.DeclineHyperbolic, 1000, 0.1, 0.5, 10)
	require.NoError(t, err)
	// q = 1000 / (1 + 0.5·0.1·10)^2 = 1000/2.25
	assert.InDelta(t, 444.4444, hy.Rate[10], 1e-4)
	assert.Equal(t, 0.5, hy.B)

	// hyperbolic b=1 sama dengan harmonic
	hy1, err := services.ForecastDecline(services.DeclineHyperbolic, 1000, 0.1, 1, 10)
	require.NoError(t, err)
	assert.InDeltaSlice(t, h.Rate, hy1.Rate, 1e-9)
}

func TestForecastEURGrowsWithHorizon(t *testing.T) {
	prev := -1.0
	for _, tEnd := range []int{0, 1, 6, 12, 60} {
		fc, err := services.ForecastDecline(services.DeclineExponential, 1000, 0.05, 0, tEnd)
		require.NoError(t, err)
		assert.GreaterOrEqual(t, fc.EUR, prev, "tEnd=%d", tEnd)
		prev = fc.EUR
	}

	fc, err := services.ForecastDecline(services.DeclineExponential, 1000, 0.05, 0, 0)
	require.NoError(t, err)
	assert.Len(t, fc.Rate, 1)
	assert.Zero(t, fc.EUR)
}

func TestForecastErrors(t *testing.T) {
	tests := []struct {
		name  string
		model services.DeclineModel
		qi    float64
		d     float64
		b     float64
		tEnd  int
	}{
		{"negative qi", services.DeclineExponential, -1, 0.1, 0, 12},
		{"negative d", services.DeclineExponential, 1000, -0.1, 0, 12},
		{"negative horizon", services.DeclineExponential, 1000, 0.1, 0, -1},
		{"hyperbolic b zero", services.DeclineHyperbolic, 1000, 0.1, 0, 12},
		{"nan qi", services.DeclineHarmonic, math.NaN(), 0.1, 0, 12},
		{"unknown model", services.DeclineModel("power"), 1000, 0.1, 0, 12},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := services.ForecastDecline(tc.model, tc.qi, tc.d, tc.b, tc.tEnd)
			assert.ErrorIs(t, err, services.ErrInvalidParameter)
		})
	}
}

func TestParseDeclineModel(t *testing.T) {
	m, err := services.ParseDeclineModel("")
	require.NoError(t, err)
	assert.Equal(t, services.DeclineExponential, m)

	m, err = services.ParseDeclineModel(" Hyperbolic ")
	require.NoError(t, err)
	assert.Equal(t, services.DeclineHyperbolic, m)

	_, err = services.ParseDeclineModel("stretched")
	assert.ErrorIs(t, err, services.ErrInvalidParameter)
}

func TestFitExponentialDecline(t *testing.T) {
	var hist []services.ProductionPoint
	for i := 0; i < 24; i++ {
		hist = append(hist, services.ProductionPoint{T: float64(i), Rate: 1000 * math.Exp(-0.05*float64(i))})
	}
	// titik shut-in diabaikan
	hist = append(hist, services.ProductionPoint{T: 24, Rate: 0})

	fit, err := services.FitExponentialDecline(hist)
	require.NoError(t, err)
	assert.InDelta(t, 1000, fit.Qi, 1e-6)
	assert.InDelta(t, 0.05, fit.D, 1e-9)
	assert.InDelta(t, 1, fit.R2, 1e-9)
	assert.Equal(t, 24, fit.Points)
}

func TestFitExponentialDeclineErrors(t *testing.T) {
	_, err := services.FitExponentialDecline([]services.ProductionPoint{{T: 0, Rate: 100}})
	assert.ErrorIs(t, err, services.ErrInsufficientData)

	_, err = services.FitExponentialDecline([]services.ProductionPoint{{T: 3, Rate: 100}, {T: 3, Rate: 90}})
	assert.ErrorIs(t, err, services.ErrInsufficientData)

	_, err = services.FitExponentialDecline([]services.ProductionPoint{{T: 0, Rate: 100}, {T: 1, Rate: 120}})
	assert.ErrorIs(t, err, services.ErrInvalidSample)
}

func TestWriteForecastCSV(t *testing.T) {
	fc, err := services.ForecastDecline(services.DeclineExponential, 1000, 0, 0, 2)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, services.WriteForecastCSV(&buf, fc))
	want := "time_months,rate_stbd\n0,1000.0000\n1,1000.0000\n2,1000.0000\n"
	assert.Equal(t, want, buf.String())
	assert.True(t, strings.HasPrefix(buf.String(), "time_months"))
}
