// cmd/petrocalc/decline.go
package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"petrocalc/internal/services"
)

func newDeclineCmd(c *cli) *cobra.Command {
	var (
		model  string
		qi, d  float64
		b      float64
		months int
		csv    bool
	)
	cmd := &cobra.Command{
		Use:   "decline",
		Short: "Arps decline forecast (exponential, hyperbolic, harmonic)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := services.ParseDeclineModel(model)
			if err != nil {
				return err
			}
			fc, err := services.ForecastDecline(m, qi, d, b, months)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if csv {
				return services.WriteForecastCSV(out, fc)
			}
			fmt.Fprintln(out, titleStyle.Render("Decline forecast ("+string(fc.Model)+")"))
			fmt.Fprintf(out, "qi=%s D=%s b=%s EUR=%s STB\n", ff(fc.Qi, 2), ff(fc.D, 4), ff(fc.B, 2), ff(fc.EUR, 1))
			rows := make([][]string, len(fc.Time))
			for i := range fc.Time {
				rows[i] = []string{strconv.Itoa(int(fc.Time[i])), ff(fc.Rate[i], 2)}
			}
			return renderTable(out, []string{"month", "rate (STB/d)"}, rows)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&model, "model", "exponential", "exponential | hyperbolic | harmonic")
	fl.Float64Var(&qi, "qi", 0, "initial rate, STB/d")
	fl.Float64Var(&d, "d", 0, "nominal decline, 1/month")
	fl.Float64Var(&b, "b", 0.5, "hyperbolic exponent")
	fl.IntVar(&months, "months", 60, "forecast horizon, months")
	fl.BoolVar(&csv, "csv", false, "print CSV")
	_ = cmd.MarkFlagRequired("qi")
	_ = cmd.MarkFlagRequired("d")
	return cmd
}
