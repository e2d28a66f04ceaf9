// internal/services/nodal_inflow.go
// IPR (inflow performance relationship): Fetkovich fit, Vogel, linear PI.

package services

import (
	"math"
	"strings"

	"gonum.org/v1/gonum/stat"
)

// WellTestSample adalah satu pasangan (rate, Pwf) hasil well test.
type WellTestSample struct {
	Rate float64 `json:"rate"` // STB/d
	Pwf  float64 `json:"pwf"`  // psig
}

// DefaultWellTestSamples: data uji bawaan (Pr = 1400 psia) dipakai jika caller tidak kirim sampel.
func DefaultWellTestSamples() []WellTestSample {
	return []WellTestSample{
		{Rate: 100, Pwf: 1300},
		{Rate: 250, Pwf: 1200},
		{Rate: 400, Pwf: 1100},
		{Rate: 550, Pwf: 1000},
		{Rate: 700, Pwf: 850},
		{Rate: 850, Pwf: 700},
	}
}

// Inflow memetakan Pwf <-> rate untuk satu reservoir.
type Inflow interface {
	RateAt(pwf float64) float64
	// PressureAt mengembalikan Pwf untuk rate tertentu; ok=false jika rate di luar [0, AOF].
	PressureAt(rate float64) (pwf float64, ok bool)
	ReservoirPressure() float64
	AbsoluteOpenFlow() float64
}

// AnchorMode menentukan cara konstanta C diturunkan setelah regresi.
type AnchorMode string

const (
	// AnchorFirstSample: C = q1 / Δ1^n (perilaku kalkulator lama).
	AnchorFirstSample AnchorMode = "first_sample"
	// AnchorRegression: C dari intercept regresi log-log (memakai semua titik).
	AnchorRegression AnchorMode = "regression"
)

// ParseAnchorMode menerima "" (default first_sample), "first_sample", atau "regression".
func ParseAnchorMode(s string) (AnchorMode, error) {
	switch AnchorMode(strings.ToLower(strings.TrimSpace(s))) {
	case "", AnchorFirstSample:
		return AnchorFirstSample, nil
	case AnchorRegression:
		return AnchorRegression, nil
	}
	return "", invalidParam("unknown anchor mode %q", s)
}

type FitOptions struct {
	Anchor AnchorMode
}

// InflowCurve adalah IPR Fetkovich hasil fit: q = C·(Pr² − Pwf²)^N.
// Immutable; fit ulang jika input berubah.
type InflowCurve struct {
	Pr     float64    `json:"reservoir_pressure"`
	N      float64    `json:"n"`
	C      float64    `json:"c"`
	Anchor AnchorMode `json:"anchor"`
}

// FitInflow mencocokkan IPR Fetkovich dari data well test.
//
// Regresi OLS dilakukan pada log10(Δ) terhadap log10(q) dengan Δ = Pr² − Pwf²,
// sehingga slope = 1/n. C di-anchor ke sampel pertama kecuali opts.Anchor = AnchorRegression.
func FitInflow(samples []WellTestSample, reservoirPressure float64, opts FitOptions) (InflowCurve, error) {
	if !(reservoirPressure > 0) || math.IsInf(reservoirPressure, 0) {
		return InflowCurve{}, invalidParam("reservoir pressure must be positive, got %v", reservoirPressure)
	}
	if len(samples) < 2 {
		return InflowCurve{}, insufficient("need at least 2 well test samples, got %d", len(samples))
	}
	anchor := opts.Anchor
	if anchor == "" {
		anchor = AnchorFirstSample
	}

	pr2 := reservoirPressure * reservoirPressure
	logQ := make([]float64, len(samples))
	logD := make([]float64, len(samples))
	for i, s := range samples {
		if !(s.Rate > 0) || math.IsInf(s.Rate, 0) {
			return InflowCurve{}, invalidSample("sample %d: rate must be positive, got %v", i+1, s.Rate)
		}
		if !(s.Pwf > 0) || math.IsInf(s.Pwf, 0) {
			return InflowCurve{}, invalidSample("sample %d: pwf must be positive, got %v", i+1, s.Pwf)
		}
		d := pr2 - s.Pwf*s.Pwf
		if d <= 0 {
			return InflowCurve{}, invalidSample("sample %d: pwf %v must be below reservoir pressure %v", i+1, s.Pwf, reservoirPressure)
		}
		logQ[i] = math.Log10(s.Rate)
		logD[i] = math.Log10(d)
	}
	if !distinct(logQ) || !distinct(logD) {
		return InflowCurve{}, insufficient("need at least 2 distinct well test samples")
	}

	intercept, slope := stat.LinearRegression(logQ, logD, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) || slope == 0 {
		return InflowCurve{}, insufficient("samples do not define a deliverability slope")
	}
	if slope < 0 {
		return InflowCurve{}, invalidSample("rate decreases with drawdown (slope %.4g)", slope)
	}

	n := 1 / slope
	var c float64
	switch anchor {
	case AnchorRegression:
		c = math.Pow(10, -intercept/slope)
	default:
		d1 := pr2 - samples[0].Pwf*samples[0].Pwf
		c = samples[0].Rate / math.Pow(d1, n)
	}
	if !(c > 0) || math.IsInf(c, 0) {
		return InflowCurve{}, insufficient("fitted constant is not usable (c=%v)", c)
	}
	return InflowCurve{Pr: reservoirPressure, N: n, C: c, Anchor: anchor}, nil
}

func distinct(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return true
		}
	}
	return false
}

// RateAt: q = C·(Pr² − Pwf²)^N. Pwf ≥ Pr → 0, Pwf < 0 diperlakukan sebagai 0 (AOF).
func (c InflowCurve) RateAt(pwf float64) float64 {
	if pwf >= c.Pr {
		return 0
	}
	if pwf < 0 {
		pwf = 0
	}
	return c.C * math.Pow(c.Pr*c.Pr-pwf*pwf, c.N)
}

func (c InflowCurve) PressureAt(rate float64) (float64, bool) {
	if rate < 0 || math.IsNaN(rate) || !(c.C > 0) || !(c.N > 0) {
		return 0, false
	}
	d := math.Pow(rate/c.C, 1/c.N)
	p2 := c.Pr*c.Pr - d
	if p2 < 0 {
		// toleransi pembulatan tepat di AOF
		if p2 > -1e-9*c.Pr*c.Pr {
			return 0, true
		}
		return 0, false
	}
	return math.Sqrt(p2), true
}

func (c InflowCurve) ReservoirPressure() float64 { return c.Pr }

func (c InflowCurve) AbsoluteOpenFlow() float64 { return c.RateAt(0) }

// VogelInflow: q/qmax = 1 − 0.2(Pwf/Pr) − 0.8(Pwf/Pr)².
type VogelInflow struct {
	Pr   float64 `json:"reservoir_pressure"`
	Qmax float64 `json:"qmax"`
}

func NewVogelInflow(pr, qmax float64) (VogelInflow, error) {
	if !(pr > 0) || math.IsInf(pr, 0) {
		return VogelInflow{}, invalidParam("reservoir pressure must be positive, got %v", pr)
	}
	if !(qmax > 0) || math.IsInf(qmax, 0) {
		return VogelInflow{}, invalidParam("qmax must be positive, got %v", qmax)
	}
	return VogelInflow{Pr: pr, Qmax: qmax}, nil
}

func (v VogelInflow) RateAt(pwf float64) float64 {
	if pwf >= v.Pr {
		return 0
	}
	if pwf < 0 {
		pwf = 0
	}
	x := pwf / v.Pr
	return v.Qmax * (1 - 0.2*x - 0.8*x*x)
}

// PressureAt memakai bentuk tertutup Pwf = 0.125·Pr·(√(81 − 80·q/qmax) − 1).
func (v VogelInflow) PressureAt(rate float64) (float64, bool) {
	if rate < 0 || rate > v.Qmax || math.IsNaN(rate) {
		return 0, false
	}
	return 0.125 * v.Pr * (math.Sqrt(81-80*rate/v.Qmax) - 1), true
}

func (v VogelInflow) ReservoirPressure() float64 { return v.Pr }

func (v VogelInflow) AbsoluteOpenFlow() float64 { return v.Qmax }

// LinearInflow: IPR garis lurus q = PI·(Pr − Pwf).
type LinearInflow struct {
	Pr float64 `json:"reservoir_pressure"`
	PI float64 `json:"productivity_index"`
}

func NewLinearInflow(pr, pi float64) (LinearInflow, error) {
	if !(pr > 0) || math.IsInf(pr, 0) {
		return LinearInflow{}, invalidParam("reservoir pressure must be positive, got %v", pr)
	}
	if !(pi > 0) || math.IsInf(pi, 0) {
		return LinearInflow{}, invalidParam("productivity index must be positive, got %v", pi)
	}
	return LinearInflow{Pr: pr, PI: pi}, nil
}

func (l LinearInflow) RateAt(pwf float64) float64 {
	if pwf >= l.Pr {
		return 0
	}
	if pwf < 0 {
		pwf = 0
	}
	return l.PI * (l.Pr - pwf)
}

func (l LinearInflow) PressureAt(rate float64) (float64, bool) {
	if rate < 0 || rate > l.AbsoluteOpenFlow() || math.IsNaN(rate) {
		return 0, false
	}
	return l.Pr - rate/l.PI, true
}

func (l LinearInflow) ReservoirPressure() float64 { return l.Pr }

func (l LinearInflow) AbsoluteOpenFlow() float64 { return l.PI * l.Pr }

// IPRModel memilih model IPR pada layer handler/CLI.
type IPRModel string

const (
	IPRFetkovich IPRModel = "fetkovich"
	IPRVogel     IPRModel = "vogel"
	IPRLinear    IPRModel = "linear"
)

func ParseIPRModel(s string) (IPRModel, error) {
	switch IPRModel(strings.ToLower(strings.TrimSpace(s))) {
	case "", IPRFetkovich:
		return IPRFetkovich, nil
	case IPRVogel:
		return IPRVogel, nil
	case IPRLinear, "pi":
		return IPRLinear, nil
	}
	return "", invalidParam("unknown ipr model %q", s)
}
