// internal/services/nodal_outflow.go
// VLP (vertical lift performance): gradient hidrostatik + friksi empiris.

package services

import (
	"math"
	"strings"
)

// FrictionModel: kehilangan tekanan friksi = K·q^P.
type FrictionModel struct {
	K float64 `json:"k" yaml:"k"`
	P float64 `json:"p" yaml:"p"`
}

// Preset koefisien dari dua varian kalkulator nodal.
var (
	FrictionFetkovich = FrictionModel{K: 0.002, P: 1.5}
	FrictionVogel     = FrictionModel{K: 0.0001, P: 1.1}
)

// FrictionPreset mencari preset berdasarkan nama ("fetkovich" | "vogel").
func FrictionPreset(name string) (FrictionModel, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "fetkovich":
		return FrictionFetkovich, nil
	case "vogel":
		return FrictionVogel, nil
	}
	return FrictionModel{}, invalidParam("unknown vlp preset %q", name)
}

func (f FrictionModel) Validate() error {
	if f.K < 0 || math.IsNaN(f.K) || math.IsInf(f.K, 0) {
		return invalidParam("vlp coefficient k must be non-negative, got %v", f.K)
	}
	if f.P < 0 || math.IsNaN(f.P) || math.IsInf(f.P, 0) {
		return invalidParam("vlp exponent p must be non-negative, got %v", f.P)
	}
	return nil
}

// EvaluateOutflow: Pwf = WHP + gradient·depth + K·rate^P.
func EvaluateOutflow(rate, wellheadPressure, depth, gradient float64, friction FrictionModel) (float64, error) {
	if rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		return 0, invalidParam("rate must be non-negative, got %v", rate)
	}
	if err := finite("wellhead pressure", wellheadPressure); err != nil {
		return 0, err
	}
	if err := finite("depth", depth); err != nil {
		return 0, err
	}
	if err := finite("gradient", gradient); err != nil {
		return 0, err
	}
	if err := friction.Validate(); err != nil {
		return 0, err
	}
	return wellheadPressure + gradient*depth + friction.K*math.Pow(rate, friction.P), nil
}

// Outflow adalah kurva VLP dengan parameter sumur tetap.
type Outflow struct {
	WellheadPressure float64       `json:"wellhead_pressure"`
	Depth            float64       `json:"depth"`
	Gradient         float64       `json:"gradient"`
	Friction         FrictionModel `json:"friction"`
}

func (o Outflow) PressureAt(rate float64) (float64, error) {
	return EvaluateOutflow(rate, o.WellheadPressure, o.Depth, o.Gradient, o.Friction)
}

// OutflowFunc adalah bentuk fungsi VLP yang diterima solver.
type OutflowFunc func(rate float64) (float64, error)

func (o Outflow) Func() OutflowFunc { return o.PressureAt }

func finite(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return invalidParam("%s must be finite, got %v", name, v)
	}
	return nil
}
