// internal/services/petro_service.go
// Analisis petrofisika per interval: Vshale, porositas density-neutron, Sw Archie, net pay.

package services

import (
	"encoding/csv"
	"encoding/json"
	"io"
	"math"
	"strings"

	"gonum.org/v1/gonum/floats"
)

// LogCurves adalah data log per kedalaman (sudah di-parse dari LAS/CSV).
type LogCurves struct {
	Depth  []float64
	Curves map[string][]float64 // mnemonic upper-case
	Null   float64              // nilai NULL file (opsional, 0 = tidak ada)
}

type IntervalParams struct {
	Top  float64 `json:"top"`
	Base float64 `json:"base"`

	GRCurve   string `json:"gr_curve"`
	RTCurve   string `json:"rt_curve"`
	RHOBCurve string `json:"rhob_curve"`
	NPHICurve string `json:"nphi_curve"`

	GRClipMin     float64 `json:"gr_clip_min"`
	GRClipMax     float64 `json:"gr_clip_max"`
	MatrixDensity float64 `json:"matrix_density"`
	FluidDensity  float64 `json:"fluid_density"`

	A  float64 `json:"a"`
	M  float64 `json:"m"`
	N  float64 `json:"n"`
	Rw float64 `json:"rw"`

	PhiCutoff float64 `json:"phi_cutoff"`
	SwCutoff  float64 `json:"sw_cutoff"`
	VshCutoff float64 `json:"vsh_cutoff"`
}

// DefaultIntervalParams: Top/Base NaN artinya seluruh rentang kedalaman.
func DefaultIntervalParams() IntervalParams {
	return IntervalParams{
		Top:           math.NaN(),
		Base:          math.NaN(),
		GRCurve:       "GR",
		RTCurve:       "RDEP",
		RHOBCurve:     "RHOB",
		NPHICurve:     "NPHI",
		GRClipMin:     20,
		GRClipMax:     150,
		MatrixDensity: 2.65,
		FluidDensity:  1.0,
		A:             1,
		M:             2,
		N:             2,
		Rw:            0.05,
		PhiCutoff:     0.1,
		SwCutoff:      0.6,
		VshCutoff:     0.35,
	}
}

type LogRow struct {
	Depth float64 `json:"depth"`
	GR    float64 `json:"gr"`
	RT    float64 `json:"rt"`
	RHOB  float64 `json:"rhob"`
	NPHI  float64 `json:"nphi"`
	VSH   float64 `json:"vsh"`
	PHID  float64 `json:"phid"`
	PHIN  float64 `json:"phin"`
	PHIE  float64 `json:"phie"`
	SW    float64 `json:"sw"`
	Pay   bool    `json:"pay"`
}

type PaySummary struct {
	Top            float64 `json:"top"`
	Base           float64 `json:"base"`
	GrossThickness float64 `json:"gross_thickness"`
	NetThickness   float64 `json:"net_thickness"`
	NetToGross     float64 `json:"net_to_gross"`
	AvgPhi         float64 `json:"avg_phi"`
	AvgSw          float64 `json:"avg_sw"`
	AvgVsh         float64 `json:"avg_vsh"`
}

type IntervalResult struct {
	Rows          []LogRow   `json:"rows"`
	Summary       PaySummary `json:"summary"`
	NPHIConverted bool       `json:"nphi_converted"`
}

// Nilai null yang lazim di file LAS.
var lasNullValues = []float64{-999.25, -9999, -999}

func (lc LogCurves) column(name string) ([]float64, error) {
	col, ok := lc.Curves[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return nil, invalidParam("curve %q not found", name)
	}
	if len(col) != len(lc.Depth) {
		return nil, invalidParam("curve %q has %d values, depth has %d", name, len(col), len(lc.Depth))
	}
	return col, nil
}

func (lc LogCurves) isNull(v float64) bool {
	if math.IsNaN(v) {
		return true
	}
	if lc.Null != 0 && v == lc.Null {
		return true
	}
	for _, n := range lasNullValues {
		if v == n {
			return true
		}
	}
	return false
}

// AnalyzeInterval menghitung properti petrofisika dan ringkasan pay untuk [Top, Base].
func AnalyzeInterval(lc LogCurves, p IntervalParams) (IntervalResult, error) {
	if len(lc.Depth) == 0 {
		return IntervalResult{}, insufficient("log has no depth samples")
	}
	gr, err := lc.column(p.GRCurve)
	if err != nil {
		return IntervalResult{}, err
	}
	rt, err := lc.column(p.RTCurve)
	if err != nil {
		return IntervalResult{}, err
	}
	rhob, err := lc.column(p.RHOBCurve)
	if err != nil {
		return IntervalResult{}, err
	}
	nphi, err := lc.column(p.NPHICurve)
	if err != nil {
		return IntervalResult{}, err
	}
	if p.MatrixDensity == p.FluidDensity {
		return IntervalResult{}, invalidParam("matrix and fluid density must differ")
	}
	if !(p.N > 0) {
		return IntervalResult{}, invalidParam("saturation exponent n must be positive, got %v", p.N)
	}

	top, base := p.Top, p.Base
	if math.IsNaN(top) {
		top = floats.Min(lc.Depth)
	}
	if math.IsNaN(base) {
		base = floats.Max(lc.Depth)
	}
	if top > base {
		return IntervalResult{}, invalidParam("top %v is below base %v", top, base)
	}

	clean := func(v float64) float64 {
		if lc.isNull(v) {
			return math.NaN()
		}
		return v
	}
	var rows []LogRow
	for i, d := range lc.Depth {
		if d < top || d > base {
			continue
		}
		rows = append(rows, LogRow{Depth: d, GR: clean(gr[i]), RT: clean(rt[i]), RHOB: clean(rhob[i]), NPHI: clean(nphi[i])})
	}
	if len(rows) == 0 {
		return IntervalResult{}, insufficient("no samples between %v and %v", top, base)
	}

	res := IntervalResult{}
	// NPHI dalam persen → fraksi
	if nanMax(rows, func(r LogRow) float64 { return r.NPHI }) > 1.0 {
		res.NPHIConverted = true
		for i := range rows {
			rows[i].NPHI /= 100
		}
	}

	grMin, grMax := math.Inf(1), math.Inf(-1)
	for _, r := range rows {
		if math.IsNaN(r.GR) {
			continue
		}
		c := math.Min(math.Max(r.GR, p.GRClipMin), p.GRClipMax)
		grMin = math.Min(grMin, c)
		grMax = math.Max(grMax, c)
	}
	span := grMax - grMin

	for i := range rows {
		r := &rows[i]
		switch {
		case math.IsNaN(r.GR):
			r.VSH = math.NaN()
		case span > 0:
			r.VSH = (r.GR - grMin) / span
		default:
			r.VSH = 0
		}
		r.PHID = (p.MatrixDensity - r.RHOB) / (p.MatrixDensity - p.FluidDensity)
		r.PHIN = r.NPHI
		r.PHIE = (r.PHID + r.PHIN) / 2
		r.SW = clip01(math.Pow((p.A*p.Rw)/(r.RT*math.Pow(r.PHIE, p.M)), 1/p.N))
		r.Pay = r.PHIE >= p.PhiCutoff && r.SW <= p.SwCutoff && r.VSH <= p.VshCutoff
	}

	res.Rows = rows
	res.Summary = summarize(rows, top, base)
	return res, nil
}

func summarize(rows []LogRow, top, base float64) PaySummary {
	var step float64
	if len(rows) > 1 {
		step = (rows[len(rows)-1].Depth - rows[0].Depth) / float64(len(rows)-1)
	}
	var pay int
	for _, r := range rows {
		if r.Pay {
			pay++
		}
	}
	s := PaySummary{
		Top:            top,
		Base:           base,
		GrossThickness: float64(len(rows)) * step,
		NetThickness:   float64(pay) * step,
		AvgPhi:         nanMean(rows, func(r LogRow) float64 { return r.PHIE }),
		AvgSw:          nanMean(rows, func(r LogRow) float64 { return r.SW }),
		AvgVsh:         nanMean(rows, func(r LogRow) float64 { return r.VSH }),
	}
	if s.GrossThickness > 0 {
		s.NetToGross = s.NetThickness / s.GrossThickness
	}
	return s
}

func clip01(v float64) float64 {
	if math.IsNaN(v) {
		return v
	}
	return math.Min(math.Max(v, 0), 1)
}

func nanMean(rows []LogRow, f func(LogRow) float64) float64 {
	var sum float64
	var n int
	for _, r := range rows {
		if v := f(r); !math.IsNaN(v) && !math.IsInf(v, 0) {
			sum += v
			n++
		}
	}
	if n == 0 {
		return math.NaN()
	}
	return sum / float64(n)
}

func nanMax(rows []LogRow, f func(LogRow) float64) float64 {
	m := math.Inf(-1)
	for _, r := range rows {
		if v := f(r); !math.IsNaN(v) && v > m {
			m = v
		}
	}
	return m
}

// NaN tidak valid di JSON; dikirim sebagai null.
func jsonFloat(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func (r LogRow) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Depth float64  `json:"depth"`
		GR    *float64 `json:"gr"`
		RT    *float64 `json:"rt"`
		RHOB  *float64 `json:"rhob"`
		NPHI  *float64 `json:"nphi"`
		VSH   *float64 `json:"vsh"`
		PHID  *float64 `json:"phid"`
		PHIN  *float64 `json:"phin"`
		PHIE  *float64 `json:"phie"`
		SW    *float64 `json:"sw"`
		Pay   bool     `json:"pay"`
	}{
		r.Depth, jsonFloat(r.GR), jsonFloat(r.RT), jsonFloat(r.RHOB), jsonFloat(r.NPHI),
		jsonFloat(r.VSH), jsonFloat(r.PHID), jsonFloat(r.PHIN), jsonFloat(r.PHIE), jsonFloat(r.SW), r.Pay,
	})
}

func (s PaySummary) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Top            float64  `json:"top"`
		Base           float64  `json:"base"`
		GrossThickness float64  `json:"gross_thickness"`
		NetThickness   float64  `json:"net_thickness"`
		NetToGross     float64  `json:"net_to_gross"`
		AvgPhi         *float64 `json:"avg_phi"`
		AvgSw          *float64 `json:"avg_sw"`
		AvgVsh         *float64 `json:"avg_vsh"`
	}{
		s.Top, s.Base, s.GrossThickness, s.NetThickness, s.NetToGross,
		jsonFloat(s.AvgPhi), jsonFloat(s.AvgSw), jsonFloat(s.AvgVsh),
	})
}

var intervalCSVHeader = []string{"DEPT", "GR", "RT", "RHOB", "NPHI", "VSH", "PHID", "PHIN", "PHIE", "SW", "PAY"}

func WriteIntervalCSV(w io.Writer, rows []LogRow) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(intervalCSVHeader); err != nil {
		return err
	}
	for _, r := range rows {
		pay := "false"
		if r.Pay {
			pay = "true"
		}
		rec := []string{
			formatFloat(r.Depth), formatFloat(r.GR), formatFloat(r.RT), formatFloat(r.RHOB), formatFloat(r.NPHI),
			formatFloat(r.VSH), formatFloat(r.PHID), formatFloat(r.PHIN), formatFloat(r.PHIE), formatFloat(r.SW), pay,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
