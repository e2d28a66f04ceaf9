// cmd/petrocalc/ofm.go
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"petrocalc/internal/services"
)

func readTableFile(path string) (services.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return services.Table{}, err
	}
	defer f.Close()
	return services.ReadTable(f)
}

func newOFMExportCmd(c *cli) *cobra.Command {
	var (
		prodPath, testPath string
		wells, lifts       []string
		raw                bool
		output             string
	)
	cmd := &cobra.Command{
		Use:   "ofm-export",
		Short: "Merge OFM production and well test exports into one dashboard CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			prod, err := readTableFile(prodPath)
			if err != nil {
				return fmt.Errorf("production: %w", err)
			}
			tests, err := readTableFile(testPath)
			if err != nil {
				return fmt.Errorf("welltest: %w", err)
			}
			t, err := services.OFMExport(prod, tests, services.OFMFilter{Wells: wells, LiftMethods: lifts}, raw)
			if err != nil {
				return err
			}

			if output == "-" {
				return services.WriteTable(cmd.OutOrStdout(), t)
			}
			if output == "" {
				output = services.OFMExportFilename(time.Now())
			}
			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := services.WriteTable(f, t); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			c.log.Debug("ofm export written", zap.String("path", output), zap.Int("rows", len(t.Rows)))
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows (%d wells) to %s\n", len(t.Rows), len(t.Unique("WELL")), output)
			return nil
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&prodPath, "production", "", "OFM production CSV")
	fl.StringVar(&testPath, "welltest", "", "OFM well test CSV")
	fl.StringSliceVar(&wells, "wells", nil, "keep only these wells")
	fl.StringSliceVar(&lifts, "lift", nil, "keep only these lift methods")
	fl.BoolVar(&raw, "raw", false, "input headers already use dashboard column codes")
	fl.StringVarP(&output, "output", "o", "", "output file, - for stdout (default: powerbi_export_<timestamp>.csv)")
	_ = cmd.MarkFlagRequired("production")
	_ = cmd.MarkFlagRequired("welltest")
	return cmd
}
