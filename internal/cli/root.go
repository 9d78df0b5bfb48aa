// Package cli implements the donatraded command line.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/adipundir/donatrade/internal/config"
	"github.com/adipundir/donatrade/internal/log"
	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "0.1.0-dev"

// globalOptions holds the persistent flags shared by every subcommand
type globalOptions struct {
	configFile string
	debug      bool
}

// NewRootCommand builds the donatraded command tree.
func NewRootCommand() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "donatraded",
		Short: "donatrade - confidential private-company share ledger",
		Long: `donatraded runs the donatrade ledger: investors hold settlement tokens
and company shares whose amounts are kept as encrypted handles, companies
sell shares from a primary offering and investors trade them peer to peer
through escrowed offers.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "conf", "", "configuration file path")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable normally suppressed debug logging")

	serverCmd := newServerCmd(opts)
	rootCmd.AddCommand(
		serverCmd,
		newKeygenCmd(),
		newSignCmd(),
		newRPCCmd(),
		newInspectCmd(opts),
		newSnapshotCmd(opts),
		newVersionCmd(),
	)

	// Run the server when no subcommand is given
	rootCmd.RunE = serverCmd.RunE

	return rootCmd
}

// Execute runs the command line and exits non-zero on failure. This is
// called by main.main().
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the configuration selected by --conf and applies the
// --debug override.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(o.configFile)
	if err != nil {
		return nil, err
	}
	if o.debug {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

func newLogger(cfg *config.Config, w io.Writer) (log.Logger, error) {
	return log.New(w, log.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
}
