// cmd/petrocalc/petro.go
package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"petrocalc/internal/repositories/las"
	"petrocalc/internal/services"
)

func newPetroCmd(c *cli) *cobra.Command {
	var (
		top, base float64
		rw        float64
		gr        string
		csv, js   bool
	)
	cmd := &cobra.Command{
		Use:   "petro <file.las>",
		Short: "Vsh / porosity / Sw and net pay summary from a LAS 2.0 file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := las.ReadFile(args[0])
			if err != nil {
				return err
			}
			p := services.DefaultIntervalParams()
			fl := cmd.Flags()
			if fl.Changed("top") {
				p.Top = top
			}
			if fl.Changed("base") {
				p.Base = base
			}
			if fl.Changed("gr-curve") {
				p.GRCurve = gr
			}
			if fl.Changed("rw") {
				p.Rw = rw
			} else if v, ok := f.ParamFloat("RW"); ok {
				p.Rw = v
			}

			res, err := services.AnalyzeInterval(f.LogCurves(), p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			switch {
			case csv:
				return services.WriteIntervalCSV(out, res.Rows)
			case js:
				return writeJSON(out, map[string]any{"well": f.WellName(), "summary": res.Summary, "rows": res.Rows})
			}

			s := res.Summary
			fmt.Fprintln(out, titleStyle.Render("Petrophysics "+f.WellName()))
			return renderTable(out, []string{"top", "base", "gross", "net", "N/G", "avg phi", "avg Sw", "avg Vsh"}, [][]string{{
				ff(s.Top, 2), ff(s.Base, 2), ff(s.GrossThickness, 2), ff(s.NetThickness, 2),
				ff(s.NetToGross, 3), ff(s.AvgPhi, 4), ff(s.AvgSw, 4), ff(s.AvgVsh, 4),
			}})
		},
	}
	fl := cmd.Flags()
	fl.Float64Var(&top, "top", 0, "interval top depth (default: first sample)")
	fl.Float64Var(&base, "base", 0, "interval base depth (default: last sample)")
	fl.Float64Var(&rw, "rw", 0, "formation water resistivity, ohm.m (default: RW parameter or 0.05)")
	fl.StringVar(&gr, "gr-curve", "GR", "gamma ray mnemonic")
	fl.BoolVar(&csv, "csv", false, "print per-depth CSV")
	fl.BoolVar(&js, "json", false, "print JSON")
	cmd.MarkFlagsMutuallyExclusive("csv", "json")
	return cmd
}
