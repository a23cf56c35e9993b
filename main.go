package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"budgetproposal/config"
	"budgetproposal/logging"
)

var version = "dev"

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// app carries what every subcommand needs once the root command has set up
// configuration and logging.
type app struct {
	v       *viper.Viper
	cfg     *config.Config
	cfgFile string
	out     io.Writer
	errOut  io.Writer
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	a := &app{v: viper.New(), out: out, errOut: errOut}
	config.SetDefaults(a.v)

	root := &cobra.Command{
		Use:   "proposal",
		Short: "Generate event budget proposals",
		Long: `proposal turns a data file of events and priced line items into a
budget proposal workbook, PDF report and CSV export. Every total is computed
from the line items; published figures are only checked for drift.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.init,
	}
	root.SetOut(out)
	root.SetErr(errOut)

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default: ./proposal.yaml)")
	flags.String("data", "", "proposal data file (default: bundled SERA 2026 data)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.Float64("tolerance", 1, "largest difference between a published and a computed total that is not reported")
	_ = a.v.BindPFlag("data", flags.Lookup("data"))
	_ = a.v.BindPFlag("logging.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("logging.format", flags.Lookup("log-format"))
	_ = a.v.BindPFlag("reconcile.tolerance", flags.Lookup("tolerance"))

	root.AddCommand(a.generateCmd())
	root.AddCommand(a.validateCmd())
	root.AddCommand(a.totalsCmd())
	root.AddCommand(a.dataCmd())
	root.AddCommand(versionCmd())
	return root
}

func (a *app) init(_ *cobra.Command, _ []string) error {
	if err := config.ReadFile(a.v, a.cfgFile); err != nil {
		return err
	}
	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	if err := logging.Setup(a.errOut, cfg.Logging.Level, cfg.Logging.Format); err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	a.cfg = cfg
	return nil
}

func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "proposal version %s\n", version)
		},
	}
}
