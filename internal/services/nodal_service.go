// internal/services/nodal_service.go
// Layanan nodal analysis: IPR + VLP + titik operasi per WHP.

package services

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"runtime"
	"strconv"

	"golang.org/x/sync/errgroup"
)

// NodalInput adalah parameter lengkap satu analisis nodal (satu sumur).
type NodalInput struct {
	Model             IPRModel
	ReservoirPressure float64
	Samples           []WellTestSample // fetkovich; kosong → DefaultWellTestSamples
	Anchor            AnchorMode
	Qmax              float64 // vogel
	PI                float64 // linear

	Depth             float64
	Gradient          float64
	WellheadPressures []float64
	Friction          FrictionModel

	RateMax            float64 // 0 → AOF dari IPR
	Solve              SolveOptions
	CurveSamples       int     // 0 → sama dengan Solve.Samples
	IncludeCurves      bool    // false → ScenarioResult.Curve tidak diisi
	IntersectTolerance float64 // psi
}

// CurvePoint: satu baris tabel IPR/VLP pada rate tertentu.
// InflowPressure nil jika rate di luar AOF.
type CurvePoint struct {
	Rate            float64  `json:"rate"`
	InflowPressure  *float64 `json:"ipr_pwf,omitempty"`
	OutflowPressure float64  `json:"vlp_pwf"`
}

type ScenarioResult struct {
	WellheadPressure float64        `json:"wellhead_pressure"`
	OperatingPoint   OperatingPoint `json:"operating_point"`
	Intersects       bool           `json:"intersects"`
	Curve            []CurvePoint   `json:"curve,omitempty"`
}

type NodalResult struct {
	Model     IPRModel         `json:"ipr_model"`
	Fit       *InflowCurve     `json:"fit,omitempty"`
	Samples   []WellTestSample `json:"samples,omitempty"`
	AOF       float64          `json:"aof"`
	RateMax   float64          `json:"rate_max"`
	Scenarios []ScenarioResult `json:"scenarios"`
}

// BuildInflow membangun model IPR dari input. Untuk Fetkovich, fit dikembalikan juga.
func BuildInflow(in NodalInput) (Inflow, *InflowCurve, error) {
	switch in.Model {
	case "", IPRFetkovich:
		samples := in.Samples
		if len(samples) == 0 {
			samples = DefaultWellTestSamples()
		}
		fit, err := FitInflow(samples, in.ReservoirPressure, FitOptions{Anchor: in.Anchor})
		if err != nil {
			return nil, nil, err
		}
		return fit, &fit, nil
	case IPRVogel:
		v, err := NewVogelInflow(in.ReservoirPressure, in.Qmax)
		return v, nil, err
	case IPRLinear:
		l, err := NewLinearInflow(in.ReservoirPressure, in.PI)
		return l, nil, err
	}
	return nil, nil, invalidParam("unknown ipr model %q", in.Model)
}

// AnalyzeNodal menjalankan fit IPR lalu solve titik operasi untuk setiap WHP.
func AnalyzeNodal(ctx context.Context, in NodalInput) (NodalResult, error) {
	if len(in.WellheadPressures) == 0 {
		return NodalResult{}, invalidParam("at least one wellhead pressure is required")
	}
	if err := in.Friction.Validate(); err != nil {
		return NodalResult{}, err
	}
	inflow, fit, err := BuildInflow(in)
	if err != nil {
		return NodalResult{}, err
	}

	aof := inflow.AbsoluteOpenFlow()
	rateMax := in.RateMax
	if rateMax == 0 {
		rateMax = aof
	}

	outflows := make([]Outflow, len(in.WellheadPressures))
	for i, whp := range in.WellheadPressures {
		if whp >= inflow.ReservoirPressure() {
			return NodalResult{}, degenerate("wellhead pressure %v is not below reservoir pressure %v", whp, inflow.ReservoirPressure())
		}
		outflows[i] = Outflow{WellheadPressure: whp, Depth: in.Depth, Gradient: in.Gradient, Friction: in.Friction}
	}

	points, err := SolveScenarios(ctx, inflow, outflows, rateMax, in.Solve)
	if err != nil {
		return NodalResult{}, err
	}

	curveN := in.CurveSamples
	if curveN == 0 {
		curveN = in.Solve.Samples
	}
	res := NodalResult{
		Model:     in.Model,
		Fit:       fit,
		AOF:       aof,
		RateMax:   rateMax,
		Scenarios: make([]ScenarioResult, len(points)),
	}
	if res.Model == "" {
		res.Model = IPRFetkovich
	}
	if fit != nil {
		res.Samples = in.Samples
		if len(res.Samples) == 0 {
			res.Samples = DefaultWellTestSamples()
		}
	}
	for i, op := range points {
		var curve []CurvePoint
		if in.IncludeCurves {
			if curve, err = SampleCurves(inflow, outflows[i].Func(), rateMax, curveN); err != nil {
				return NodalResult{}, err
			}
		}
		res.Scenarios[i] = ScenarioResult{
			WellheadPressure: outflows[i].WellheadPressure,
			OperatingPoint:   op,
			Intersects:       op.Within(in.IntersectTolerance),
			Curve:            curve,
		}
	}
	return res, nil
}

// SolveScenarios menjalankan satu solve per kurva VLP secara paralel.
// Setiap solve independen; urutan hasil sama dengan urutan input.
func SolveScenarios(ctx context.Context, inflow Inflow, outflows []Outflow, rateMax float64, opts SolveOptions) ([]OperatingPoint, error) {
	out := make([]OperatingPoint, len(outflows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i := range outflows {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			op, err := SolveOperatingPoint(inflow, outflows[i].Func(), rateMax, opts)
			if err != nil {
				return fmt.Errorf("whp %v: %w", outflows[i].WellheadPressure, err)
			}
			out[i] = op
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// SampleCurves mengevaluasi IPR dan VLP pada grid rate yang sama (untuk chart/CSV).
func SampleCurves(inflow Inflow, outflow OutflowFunc, rateMax float64, samples int) ([]CurvePoint, error) {
	if !(rateMax > 0) || math.IsInf(rateMax, 0) {
		return nil, errEmptyDomain(rateMax)
	}
	if samples == 0 {
		samples = DefaultSolveSamples
	}
	grid := RateGrid(rateMax, samples)
	out := make([]CurvePoint, 0, len(grid))
	for _, q := range grid {
		pOut, err := outflow(q)
		if err != nil {
			return nil, err
		}
		pt := CurvePoint{Rate: q, OutflowPressure: pOut}
		if pIn, ok := inflow.PressureAt(q); ok {
			pt.InflowPressure = &pIn
		}
		out = append(out, pt)
	}
	return out, nil
}

var curveCSVHeader = []string{"rate_stbd", "ipr_pwf_psig", "vlp_pwf_psig"}

// WriteCurveCSV menulis tabel IPR/VLP; kolom IPR kosong jika tidak terdefinisi.
func WriteCurveCSV(w io.Writer, pts []CurvePoint) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(curveCSVHeader); err != nil {
		return err
	}
	for _, p := range pts {
		ipr := ""
		if p.InflowPressure != nil {
			ipr = formatFloat(*p.InflowPressure)
		}
		if err := cw.Write([]string{formatFloat(p.Rate), ipr, formatFloat(p.OutflowPressure)}); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', 4, 64)
}
