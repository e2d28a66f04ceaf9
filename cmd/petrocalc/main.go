// cmd/petrocalc/main.go
// CLI offline untuk kalkulator: nodal, decline, gaslift, petro, ofm-export.
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"petrocalc/internal/config"
	"petrocalc/internal/logging"
)

var BuildVersion = "dev" // diisi saat ldflags

// cli: state bersama seluruh subcommand, diisi di PersistentPreRunE.
type cli struct {
	configPath string
	verbose    bool

	cfg *config.Config
	log *zap.Logger
}

var titleStyle = lipgloss.NewStyle().Bold(true)

func newRootCmd() *cobra.Command {
	c := &cli{}
	root := &cobra.Command{
		Use:           "petrocalc",
		Short:         "Petroleum engineering calculators (nodal, decline, gas lift, petrophysics, OFM)",
		Version:       BuildVersion,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file (default: $PETROCALC_CONFIG)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "debug logging to stderr")

	root.AddCommand(
		newNodalCmd(c),
		newDeclineCmd(c),
		newGasLiftCmd(c),
		newPetroCmd(c),
		newOFMExportCmd(c),
	)
	return root
}

func (c *cli) init() error {
	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.log = zap.NewNop()
	if c.verbose {
		if c.log, err = logging.New("debug", "console"); err != nil {
			return err
		}
	}
	return nil
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderTable(w io.Writer, headers []string, rows [][]string) error {
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.Render())
	return err
}

func ff(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
