// cmd/petrocalc/nodal.go
package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"petrocalc/internal/services"
)

type nodalFlags struct {
	model    string
	pr       float64
	whp      []float64
	depth    float64
	gradient float64
	friction string
	k, p     float64
	samples  int
	refine   bool
	anchor   string
	qmax     float64
	pi       float64
	tests    []string
	json     bool
	curve    int
}

func newNodalCmd(c *cli) *cobra.Command {
	f := &nodalFlags{}
	cmd := &cobra.Command{
		Use:   "nodal",
		Short: "Solve IPR/VLP operating points for one or more wellhead pressures",
		Long: `Fits the inflow model (fetkovich, vogel or linear), builds one outflow
curve per wellhead pressure and reports the operating point of each.
Unset flags fall back to the nodal section of the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := f.input(cmd, c)
			if err != nil {
				return err
			}
			c.log.Debug("nodal", zap.String("model", string(in.Model)), zap.Float64s("whp", in.WellheadPressures))
			res, err := services.AnalyzeNodal(cmd.Context(), in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case f.curve >= 0:
				if f.curve >= len(res.Scenarios) {
					return fmt.Errorf("--curve %d out of range (0..%d)", f.curve, len(res.Scenarios)-1)
				}
				return services.WriteCurveCSV(out, res.Scenarios[f.curve].Curve)
			case f.json:
				return writeJSON(out, res)
			}
			return printNodal(cmd, res)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&f.model, "model", "fetkovich", "IPR model: fetkovich | vogel | linear")
	fl.Float64Var(&f.pr, "pr", 0, "reservoir pressure, psia")
	fl.Float64SliceVar(&f.whp, "whp", nil, "wellhead pressures, psia (comma separated)")
	fl.Float64Var(&f.depth, "depth", 0, "true vertical depth, ft")
	fl.Float64Var(&f.gradient, "gradient", 0, "hydrostatic gradient, psi/ft")
	fl.StringVar(&f.friction, "friction", "", "friction preset: fetkovich | vogel")
	fl.Float64Var(&f.k, "k", 0, "VLP friction coefficient k (overrides preset)")
	fl.Float64Var(&f.p, "p", 0, "VLP friction exponent p (overrides preset)")
	fl.IntVar(&f.samples, "samples", 0, "rate grid samples")
	fl.BoolVar(&f.refine, "refine", false, "bisection refinement inside sign-change bracket")
	fl.StringVar(&f.anchor, "anchor", "", "fetkovich anchor: first_sample | regression")
	fl.Float64Var(&f.qmax, "qmax", 0, "vogel absolute open flow, STB/d")
	fl.Float64Var(&f.pi, "pi", 0, "linear productivity index, STB/d/psi")
	fl.StringArrayVar(&f.tests, "test", nil, "well test sample rate:pwf (repeatable)")
	fl.BoolVar(&f.json, "json", false, "print JSON")
	fl.IntVar(&f.curve, "curve", -1, "print IPR/VLP CSV table of scenario index")
	return cmd
}

func parseTestSample(s string) (services.WellTestSample, error) {
	rate, pwf, ok := strings.Cut(s, ":")
	if !ok {
		return services.WellTestSample{}, fmt.Errorf("--test %q: want rate:pwf", s)
	}
	q, err := strconv.ParseFloat(strings.TrimSpace(rate), 64)
	if err != nil {
		return services.WellTestSample{}, fmt.Errorf("--test %q: bad rate", s)
	}
	p, err := strconv.ParseFloat(strings.TrimSpace(pwf), 64)
	if err != nil {
		return services.WellTestSample{}, fmt.Errorf("--test %q: bad pwf", s)
	}
	return services.WellTestSample{Rate: q, Pwf: p}, nil
}

func (f *nodalFlags) input(cmd *cobra.Command, c *cli) (services.NodalInput, error) {
	nc := c.cfg.Nodal
	model, err := services.ParseIPRModel(f.model)
	if err != nil {
		return services.NodalInput{}, err
	}
	anchorName := nc.Anchor
	if f.anchor != "" {
		anchorName = f.anchor
	}
	anchor, err := services.ParseAnchorMode(anchorName)
	if err != nil {
		return services.NodalInput{}, err
	}
	friction, err := nc.Friction()
	if f.friction != "" {
		friction, err = services.FrictionPreset(f.friction)
	}
	if err != nil {
		return services.NodalInput{}, err
	}
	if cmd.Flags().Changed("k") {
		friction.K = f.k
	}
	if cmd.Flags().Changed("p") {
		friction.P = f.p
	}

	var samples []services.WellTestSample
	for _, s := range f.tests {
		ws, err := parseTestSample(s)
		if err != nil {
			return services.NodalInput{}, err
		}
		samples = append(samples, ws)
	}

	changed := cmd.Flags().Changed
	pick := func(name string, v, def float64) float64 {
		if changed(name) {
			return v
		}
		return def
	}
	solve := nc.SolveOptions()
	if f.samples > 0 {
		solve.Samples = f.samples
	}
	if changed("refine") {
		solve.Refine = f.refine
	}
	whp := nc.WellheadPressures
	if len(f.whp) > 0 {
		whp = f.whp
	}

	return services.NodalInput{
		Model:              model,
		ReservoirPressure:  pick("pr", f.pr, nc.ReservoirPressure),
		Samples:            samples,
		Anchor:             anchor,
		Qmax:               f.qmax,
		PI:                 f.pi,
		Depth:              pick("depth", f.depth, nc.Depth),
		Gradient:           pick("gradient", f.gradient, nc.Gradient),
		WellheadPressures:  whp,
		Friction:           friction,
		Solve:              solve,
		IntersectTolerance: nc.IntersectTolerance,
		IncludeCurves:      f.curve >= 0,
	}, nil
}

func printNodal(cmd *cobra.Command, res services.NodalResult) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, titleStyle.Render("Nodal analysis ("+string(res.Model)+")"))
	if res.Fit != nil {
		fmt.Fprintf(out, "fit: n=%.4f c=%.6g anchor=%s\n", res.Fit.N, res.Fit.C, res.Fit.Anchor)
	}
	fmt.Fprintf(out, "AOF=%s STB/d  rate_max=%s STB/d\n", ff(res.AOF, 2), ff(res.RateMax, 2))

	rows := make([][]string, 0, len(res.Scenarios))
	for _, s := range res.Scenarios {
		op := s.OperatingPoint
		rows = append(rows, []string{
			ff(s.WellheadPressure, 0),
			ff(op.Rate, 3),
			ff(op.Pressure, 3),
			ff(op.Gap, 3),
			strconv.FormatBool(s.Intersects),
		})
	}
	return renderTable(out, []string{"WHP (psia)", "q (STB/d)", "Pwf (psia)", "gap (psi)", "intersects"}, rows)
}
