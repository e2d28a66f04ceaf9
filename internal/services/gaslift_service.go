// internal/services/gaslift_service.go
// Sensitivity dual-string gas lift: GIR × PI × dome pressure × ΔP valve.

package services

import (
	"encoding/csv"
	"io"
	"math"

	"github.com/shopspring/decimal"
	"gonum.org/v1/gonum/floats"
)

// SweepRange: grid linear [Min, Max] dengan Count titik (Count=1 → hanya Min).
type SweepRange struct {
	Min   float64 `json:"min" yaml:"min"`
	Max   float64 `json:"max" yaml:"max"`
	Count int     `json:"count" yaml:"count"`
}

func (r SweepRange) Values() ([]float64, error) {
	if r.Count < 1 {
		return nil, invalidParam("sweep count must be at least 1, got %d", r.Count)
	}
	if math.IsNaN(r.Min) || math.IsNaN(r.Max) || math.IsInf(r.Min, 0) || math.IsInf(r.Max, 0) {
		return nil, invalidParam("sweep bounds must be finite")
	}
	if r.Count == 1 {
		return []float64{r.Min}, nil
	}
	return floats.Span(make([]float64, r.Count), r.Min, r.Max), nil
}

// GasLiftParams: data sumur dual string + grid sensitivity + asumsi ekonomi.
type GasLiftParams struct {
	ReservoirPressureShort float64 `json:"reservoir_pressure_short"`
	ReservoirPressureLong  float64 `json:"reservoir_pressure_long"`
	SurfacePressure        float64 `json:"surface_pressure"`

	GIR    SweepRange `json:"gir"`     // scf/d
	PI     SweepRange `json:"pi"`      // STB/d/psi
	Dome   SweepRange `json:"dome"`    // psia
	DeltaP SweepRange `json:"delta_p"` // psia

	OilPrice         decimal.Decimal `json:"oil_price"` // USD/bbl
	GasPrice         decimal.Decimal `json:"gas_price"` // USD/Mscf
	CO2Factor        float64         `json:"co2_factor"`
	EfficiencyFactor float64         `json:"efficiency_factor"`
}

// DefaultGasLiftParams: nilai studi dual string (short/long string).
func DefaultGasLiftParams() GasLiftParams {
	return GasLiftParams{
		ReservoirPressureShort: 1196,
		ReservoirPressureLong:  1362,
		SurfacePressure:        100,
		GIR:                    SweepRange{Min: 0.5e6, Max: 3.0e6, Count: 6},
		PI:                     SweepRange{Min: 0.8, Max: 1.5, Count: 5},
		Dome:                   SweepRange{Min: 1800, Max: 2400, Count: 4},
		DeltaP:                 SweepRange{Min: 50, Max: 300, Count: 6},
		OilPrice:               decimal.NewFromInt(65),
		GasPrice:               decimal.RequireFromString("3.7"),
		CO2Factor:              0.002,
		EfficiencyFactor:       0.85,
	}
}

// SensitivityRecord: satu baris hasil sweep. Immutable setelah dibuat.
type SensitivityRecord struct {
	GIR              float64         `json:"gir"`
	PI               float64         `json:"pi"`
	DomePressure     float64         `json:"dome_pressure"`
	DeltaP           float64         `json:"delta_p"`
	QLiqShort        float64         `json:"q_liq_short"`
	QLiqLong         float64         `json:"q_liq_long"`
	GLRShort         float64         `json:"glr_short"`
	GLRLong          float64         `json:"glr_long"`
	EnergyEfficiency float64         `json:"energy_efficiency"`
	CO2Emission      float64         `json:"co2_emission"`
	Revenue          decimal.Decimal `json:"revenue"`
	GasCost          decimal.Decimal `json:"gas_cost"`
	Profit           decimal.Decimal `json:"profit"`
}

func (p GasLiftParams) validate() error {
	if !(p.SurfacePressure >= 0) {
		return invalidParam("surface pressure must be non-negative, got %v", p.SurfacePressure)
	}
	if p.ReservoirPressureShort <= p.SurfacePressure {
		return invalidParam("short string reservoir pressure %v must exceed surface pressure %v", p.ReservoirPressureShort, p.SurfacePressure)
	}
	if p.ReservoirPressureLong <= p.SurfacePressure {
		return invalidParam("long string reservoir pressure %v must exceed surface pressure %v", p.ReservoirPressureLong, p.SurfacePressure)
	}
	if p.OilPrice.IsNegative() || p.GasPrice.IsNegative() {
		return invalidParam("prices must be non-negative")
	}
	return nil
}

// RunGasLiftSweep mengevaluasi seluruh kombinasi grid. Urutan baris: GIR, PI, dome, ΔP (nested).
func RunGasLiftSweep(p GasLiftParams) ([]SensitivityRecord, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	girs, err := p.GIR.Values()
	if err != nil {
		return nil, err
	}
	pis, err := p.PI.Values()
	if err != nil {
		return nil, err
	}
	domes, err := p.Dome.Values()
	if err != nil {
		return nil, err
	}
	dps, err := p.DeltaP.Values()
	if err != nil {
		return nil, err
	}
	for _, pi := range pis {
		if !(pi > 0) {
			return nil, invalidParam("productivity index must be positive, got %v", pi)
		}
	}
	for _, gir := range girs {
		if gir < 0 {
			return nil, invalidParam("gas injection rate must be non-negative, got %v", gir)
		}
	}

	out := make([]SensitivityRecord, 0, len(girs)*len(pis)*len(domes)*len(dps))
	for _, gir := range girs {
		for _, pi := range pis {
			for _, dome := range domes {
				for _, dp := range dps {
					out = append(out, p.record(gir, pi, dome, dp))
				}
			}
		}
	}
	return out, nil
}

func (p GasLiftParams) record(gir, pi, dome, dp float64) SensitivityRecord {
	qShort := pi * (p.ReservoirPressureShort - p.SurfacePressure)
	qLong := pi * (p.ReservoirPressureLong - p.SurfacePressure)
	qTotal := qShort + qLong

	revenue := decimal.NewFromFloat(qTotal).Mul(p.OilPrice)
	gasCost := decimal.NewFromFloat(gir).Div(decimal.NewFromInt(1000)).Mul(p.GasPrice)

	return SensitivityRecord{
		GIR:              gir,
		PI:               pi,
		DomePressure:     dome,
		DeltaP:           dp,
		QLiqShort:        qShort,
		QLiqLong:         qLong,
		GLRShort:         gir / qShort,
		GLRLong:          gir / qLong,
		EnergyEfficiency: gir / qTotal * p.EfficiencyFactor,
		CO2Emission:      gir * p.CO2Factor,
		Revenue:          revenue.Round(2),
		GasCost:          gasCost.Round(2),
		Profit:           revenue.Sub(gasCost).Round(2),
	}
}

var sensitivityCSVHeader = []string{
	"gir_scfd", "pi", "dome_psia", "delta_p_psia", "q_liq_short", "q_liq_long",
	"glr_short", "glr_long", "energy_efficiency", "co2_emission", "revenue_usd", "gas_cost_usd", "profit_usd",
}

func WriteSensitivityCSV(w io.Writer, recs []SensitivityRecord) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sensitivityCSVHeader); err != nil {
		return err
	}
	for _, r := range recs {
		row := []string{
			formatFloat(r.GIR), formatFloat(r.PI), formatFloat(r.DomePressure), formatFloat(r.DeltaP),
			formatFloat(r.QLiqShort), formatFloat(r.QLiqLong), formatFloat(r.GLRShort), formatFloat(r.GLRLong),
			formatFloat(r.EnergyEfficiency), formatFloat(r.CO2Emission),
			r.Revenue.StringFixed(2), r.GasCost.StringFixed(2), r.Profit.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
