// cmd/petrocalc/gaslift.go
package main

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"petrocalc/internal/services"
)

func newGasLiftCmd(c *cli) *cobra.Command {
	var (
		top int
		csv bool
	)
	cmd := &cobra.Command{
		Use:   "gaslift",
		Short: "Dual-string gas lift sensitivity sweep (GIR x PI x dome x delta-P)",
		Long: `Runs the default sensitivity grid. Oil/gas prices, CO2 factor and
efficiency come from the economics section of the config.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p := services.DefaultGasLiftParams()
			econ := c.cfg.Economics
			p.OilPrice = decimal.NewFromFloat(econ.OilPrice)
			p.GasPrice = decimal.NewFromFloat(econ.GasPrice)
			p.CO2Factor = econ.CO2Factor
			p.EfficiencyFactor = econ.EfficiencyFactor

			recs, err := services.RunGasLiftSweep(p)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if csv {
				return services.WriteSensitivityCSV(out, recs)
			}

			sorted := append([]services.SensitivityRecord(nil), recs...)
			sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Profit.GreaterThan(sorted[j].Profit) })
			if top > 0 && top < len(sorted) {
				sorted = sorted[:top]
			}
			fmt.Fprintln(out, titleStyle.Render("Gas lift sensitivity"))
			fmt.Fprintf(out, "%d records, showing top %d by profit\n", len(recs), len(sorted))
			rows := make([][]string, len(sorted))
			for i, r := range sorted {
				rows[i] = []string{
					ff(r.GIR, 0), ff(r.PI, 3), ff(r.DomePressure, 0), ff(r.DeltaP, 0),
					ff(r.QLiqShort, 1), ff(r.QLiqLong, 1), r.Profit.StringFixed(2),
				}
			}
			return renderTable(out, []string{"GIR (scf/d)", "PI", "dome (psia)", "dP (psia)", "qL short", "qL long", "profit (USD/d)"}, rows)
		},
	}
	cmd.Flags().IntVar(&top, "top", 10, "rows to show, best profit first (0 = all)")
	cmd.Flags().BoolVar(&csv, "csv", false, "print full CSV in sweep order")
	return cmd
}
