// internal/handlers/mcp/nodal_analysis.go
// MCP Tool: nodal_analysis & fit_ipr

package mcp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"petrocalc/internal/services"
	"petrocalc/internal/util"
)

type nodalReq struct {
	Well              string                    `json:"well,omitempty"`
	IPRModel          string                    `json:"ipr_model,omitempty"`
	ReservoirPressure float64                   `json:"reservoir_pressure,omitempty"`
	Samples           []services.WellTestSample `json:"samples,omitempty"`
	Anchor            string                    `json:"anchor,omitempty"`
	Qmax              float64                   `json:"qmax,omitempty"`
	PI                float64                   `json:"pi,omitempty"`

	Depth             *float64                `json:"depth,omitempty"`    // nil → config; 0 valid
	Gradient          *float64                `json:"gradient,omitempty"` // nil → config; 0 valid
	WellheadPressures []float64               `json:"wellhead_pressures,omitempty"`
	Friction          string                  `json:"friction,omitempty"` // nama preset
	FrictionModel     *services.FrictionModel `json:"friction_model,omitempty"`

	RateMax      float64 `json:"rate_max,omitempty"`
	GridSamples  int     `json:"grid_samples,omitempty"`
	Refine       *bool   `json:"refine,omitempty"`
	IncludeCurve bool    `json:"include_curve,omitempty"`
}

// input melengkapi request dengan default konfigurasi dan (opsional) well test dari DB.
func (q *nodalReq) input(ctx context.Context) (services.NodalInput, error) {
	model, err := services.ParseIPRModel(q.IPRModel)
	if err != nil {
		return services.NodalInput{}, err
	}
	anchor := q.Anchor
	if anchor == "" {
		anchor = cfg.Nodal.Anchor
	}
	anchorMode, err := services.ParseAnchorMode(anchor)
	if err != nil {
		return services.NodalInput{}, err
	}

	if q.Well != "" && model == services.IPRFetkovich && len(q.Samples) == 0 {
		samples, pr, err := wellSamples(ctx, q.Well)
		if err != nil {
			return services.NodalInput{}, err
		}
		q.Samples = samples
		if q.ReservoirPressure == 0 && pr > 0 {
			q.ReservoirPressure = pr
		}
	}
	if q.ReservoirPressure == 0 {
		q.ReservoirPressure = cfg.Nodal.ReservoirPressure
	}
	depth, gradient := cfg.Nodal.Depth, cfg.Nodal.Gradient
	if q.Depth != nil {
		depth = *q.Depth
	}
	if q.Gradient != nil {
		gradient = *q.Gradient
	}
	if len(q.WellheadPressures) == 0 {
		q.WellheadPressures = cfg.Nodal.WellheadPressures
	}
	if len(q.WellheadPressures) > maxScenarios {
		return services.NodalInput{}, util.BadInput(fmt.Sprintf("at most %d wellhead pressures per request", maxScenarios))
	}

	var friction services.FrictionModel
	switch {
	case q.FrictionModel != nil:
		friction = *q.FrictionModel
	case q.Friction != "":
		friction, err = services.FrictionPreset(q.Friction)
	default:
		friction, err = cfg.Nodal.Friction()
	}
	if err != nil {
		return services.NodalInput{}, err
	}

	solve := cfg.Nodal.SolveOptions()
	if q.GridSamples != 0 {
		solve.Samples = q.GridSamples
	}
	if solve.Samples > maxGridSamples {
		return services.NodalInput{}, util.BadInput(fmt.Sprintf("grid_samples must be at most %d", maxGridSamples))
	}
	if q.Refine != nil {
		solve.Refine = *q.Refine
	}

	return services.NodalInput{
		Model:              model,
		ReservoirPressure:  q.ReservoirPressure,
		Samples:            q.Samples,
		Anchor:             anchorMode,
		Qmax:               q.Qmax,
		PI:                 q.PI,
		Depth:              depth,
		Gradient:           gradient,
		WellheadPressures:  q.WellheadPressures,
		Friction:           friction,
		RateMax:            q.RateMax,
		Solve:              solve,
		IntersectTolerance: cfg.Nodal.IntersectTolerance,
	}, nil
}

// NodalAnalysisHandler: POST JSON (body kosong = default konfigurasi).
// ?format=csv&scenario=i mengembalikan tabel IPR/VLP skenario ke-i.
func NodalAnalysisHandler(w http.ResponseWriter, r *http.Request) {
	var in nodalReq
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err, nil)
		return
	}
	in.Well = strings.TrimSpace(firstNonEmpty(in.Well, r.URL.Query().Get("well")))

	ctx, cancel := withTimeout(r)
	defer cancel()

	ni, err := in.input(ctx)
	if err != nil {
		writeError(w, r, err, in)
		return
	}
	ni.IncludeCurves = in.IncludeCurve || wantCSV(r)
	res, err := services.AnalyzeNodal(ctx, ni)
	if err != nil {
		writeError(w, r, err, in)
		return
	}

	if wantCSV(r) {
		idx := 0
		if v := r.URL.Query().Get("scenario"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 || n >= len(res.Scenarios) {
				writeError(w, r, util.BadInput(fmt.Sprintf("scenario must be in [0, %d)", len(res.Scenarios))), in)
				return
			}
			idx = n
		}
		sc := res.Scenarios[idx]
		name := fmt.Sprintf("nodal_whp_%s.csv", strconv.FormatFloat(sc.WellheadPressure, 'f', -1, 64))
		writeCSV(w, name, func(wr io.Writer) error { return services.WriteCurveCSV(wr, sc.Curve) })
		return
	}

	writeJSON(w, http.StatusOK, res)
}

type fitReq struct {
	Well              string                    `json:"well,omitempty"`
	ReservoirPressure float64                   `json:"reservoir_pressure,omitempty"`
	Samples           []services.WellTestSample `json:"samples,omitempty"`
	Anchor            string                    `json:"anchor,omitempty"`
	Points            int                       `json:"points,omitempty"` // jumlah titik tabel IPR
}

type iprPoint struct {
	Pwf  float64 `json:"pwf"`
	Rate float64 `json:"rate"`
}

// FitIPRHandler: fit Fetkovich dari sampel (body atau DB) + tabel q(Pwf) dari Pr ke 0.
func FitIPRHandler(w http.ResponseWriter, r *http.Request) {
	var in fitReq
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, r, err, nil)
		return
	}
	in.Well = strings.TrimSpace(firstNonEmpty(in.Well, r.URL.Query().Get("well")))

	ctx, cancel := withTimeout(r)
	defer cancel()

	if in.Well != "" && len(in.Samples) == 0 {
		samples, pr, err := wellSamples(ctx, in.Well)
		if err != nil {
			writeError(w, r, err, in)
			return
		}
		in.Samples = samples
		if in.ReservoirPressure == 0 {
			in.ReservoirPressure = pr
		}
	}
	if len(in.Samples) == 0 {
		in.Samples = services.DefaultWellTestSamples()
	}
	if in.ReservoirPressure == 0 {
		in.ReservoirPressure = cfg.Nodal.ReservoirPressure
	}
	anchor := in.Anchor
	if anchor == "" {
		anchor = cfg.Nodal.Anchor
	}
	mode, err := services.ParseAnchorMode(anchor)
	if err != nil {
		writeError(w, r, err, in)
		return
	}
	fit, err := services.FitInflow(in.Samples, in.ReservoirPressure, services.FitOptions{Anchor: mode})
	if err != nil {
		writeError(w, r, err, in)
		return
	}

	n := in.Points
	if n <= 1 {
		n = 11
	}
	if n > 1000 {
		n = 1000
	}
	table := make([]iprPoint, n)
	for i := range table {
		pwf := fit.Pr * float64(n-1-i) / float64(n-1)
		table[i] = iprPoint{Pwf: pwf, Rate: fit.RateAt(pwf)}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"fit":     fit,
		"aof":     fit.AbsoluteOpenFlow(),
		"samples": in.Samples,
		"ipr":     table,
	})
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
