// internal/services/nodal_solver.go
// Pencarian titik operasi (perpotongan IPR vs VLP).

package services

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

const (
	DefaultSolveSamples   = 200
	defaultBisectMaxIters = 60
)

type SolveOptions struct {
	Samples   int     // jumlah titik grid rate (default 200, minimal 2)
	Refine    bool    // bisection di dalam bracket yang berganti tanda
	Tolerance float64 // toleransi tekanan untuk bisection (psi); 0 → 1e-6
}

// OperatingPoint adalah sampel dengan selisih tekanan IPR−VLP terkecil.
// Bukan akar eksak: error resolusi dibatasi oleh Resolution kecuali Refined.
type OperatingPoint struct {
	Rate            float64 `json:"rate"`
	Pressure        float64 `json:"pressure"` // Pwf dari IPR
	OutflowPressure float64 `json:"outflow_pressure"`
	Gap             float64 `json:"gap"`
	Resolution      float64 `json:"resolution"`
	Samples         int     `json:"samples"`
	Refined         bool    `json:"refined"`
}

// Within melaporkan apakah gap cukup kecil untuk dianggap perpotongan sungguhan.
func (op OperatingPoint) Within(tol float64) bool { return op.Gap <= tol }

// RateGrid membuat grid rate berjarak sama pada [0, rateMax].
func RateGrid(rateMax float64, samples int) []float64 {
	if samples < 2 {
		samples = 2
	}
	return floats.Span(make([]float64, samples), 0, rateMax)
}

// SolveOperatingPoint mencari titik operasi dengan nearest-sample search.
// Kurva yang tidak berpotongan tetap menghasilkan sampel gap minimum; caller
// wajib cek Within(tol) sebelum menganggapnya perpotongan.
func SolveOperatingPoint(inflow Inflow, outflow OutflowFunc, rateMax float64, opts SolveOptions) (OperatingPoint, error) {
	if !(rateMax > 0) || math.IsInf(rateMax, 0) {
		return OperatingPoint{}, errEmptyDomain(rateMax)
	}
	if inflow == nil || outflow == nil {
		return OperatingPoint{}, invalidParam("inflow and outflow are required")
	}
	n := opts.Samples
	if n == 0 {
		n = DefaultSolveSamples
	}
	if n < 2 {
		return OperatingPoint{}, invalidParam("sample count must be at least 2, got %d", n)
	}

	grid := RateGrid(rateMax, n)
	// diff[i] = pIn − pOut; NaN jika IPR tidak terdefinisi di rate tsb.
	diff := make([]float64, n)
	best := -1
	var bestOp OperatingPoint
	for i, q := range grid {
		diff[i] = math.NaN()
		pIn, ok := inflow.PressureAt(q)
		if !ok {
			continue
		}
		pOut, err := outflow(q)
		if err != nil {
			return OperatingPoint{}, err
		}
		diff[i] = pIn - pOut
		gap := math.Abs(diff[i])
		if best < 0 || gap < bestOp.Gap {
			best = i
			bestOp = OperatingPoint{Rate: q, Pressure: pIn, OutflowPressure: pOut, Gap: gap}
		}
	}
	if best < 0 {
		return OperatingPoint{}, degenerate("inflow pressure is undefined over the whole rate domain [0, %v]", rateMax)
	}
	bestOp.Resolution = rateMax / float64(n-1)
	bestOp.Samples = n

	if opts.Refine && bestOp.Gap > 0 {
		if op, ok := refine(inflow, outflow, grid, diff, best, opts.Tolerance); ok && op.Gap <= bestOp.Gap {
			op.Resolution = bestOp.Resolution
			op.Samples = n
			bestOp = op
		}
	}
	return bestOp, nil
}

// refine membelah dua bracket di sekitar sampel terbaik yang berganti tanda.
func refine(inflow Inflow, outflow OutflowFunc, grid, diff []float64, best int, tol float64) (OperatingPoint, bool) {
	if tol <= 0 {
		tol = 1e-6
	}
	var lo, hi int
	switch {
	case best > 0 && signChange(diff[best-1], diff[best]):
		lo, hi = best-1, best
	case best+1 < len(grid) && signChange(diff[best], diff[best+1]):
		lo, hi = best, best+1
	default:
		return OperatingPoint{}, false
	}

	a, b := grid[lo], grid[hi]
	fa := diff[lo]
	var op OperatingPoint
	for i := 0; i < defaultBisectMaxIters; i++ {
		m := 0.5 * (a + b)
		pIn, ok := inflow.PressureAt(m)
		if !ok {
			return OperatingPoint{}, false
		}
		pOut, err := outflow(m)
		if err != nil {
			return OperatingPoint{}, false
		}
		fm := pIn - pOut
		op = OperatingPoint{Rate: m, Pressure: pIn, OutflowPressure: pOut, Gap: math.Abs(fm), Refined: true}
		if op.Gap <= tol {
			break
		}
		if signChange(fa, fm) {
			b = m
		} else {
			a, fa = m, fm
		}
	}
	return op, true
}

func signChange(a, b float64) bool {
	if math.IsNaN(a) || math.IsNaN(b) {
		return false
	}
	return (a <= 0 && b >= 0) || (a >= 0 && b <= 0)
}

func errEmptyDomain(rateMax float64) error {
	return wrapf(ErrEmptyDomain, "rate max must be positive, got %v", rateMax)
}

func degenerate(format string, args ...any) error {
	return wrapf(ErrDegenerateCurve, format, args...)
}
