// Package cmd provides the CLI commands for wquote.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wireless-quote/internal/config"
	"wireless-quote/internal/logging"
)

// Version is the CLI version, overridden at build time with -ldflags
var Version = "0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "wquote",
	Short: "Price multi-line wireless quotes",
	Long: `wquote prices a multi-line wireless order against a reference catalog.

It itemizes plan charges, device installments, protection, accessory lines,
taxes and fees, and totals the monthly bill and the amount due at signing.

Examples:
  wquote quote request.json
  wquote quote --catalog catalog.hcl --format json request.yaml
  wquote catalog validate catalog.hcl`,
	SilenceUsage: true,
}

// Execute runs the CLI
func Execute() error {
	defer logging.Sync()
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (JSON or YAML)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")

	rootCmd.AddCommand(versionCmd)
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	config.Set(cfg)

	if verbose {
		cfg.Logging.Level = "debug"
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
	}
}

// versionCmd prints version information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "wquote version %s\n", Version)
	},
}
