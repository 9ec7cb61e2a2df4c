// Package cmd - quote command
package cmd

import (
	"github.com/spf13/cobra"

	adapter "wireless-quote/adapters/cli"
	"wireless-quote/core/engine"
	"wireless-quote/core/output"
	"wireless-quote/internal/config"
	"wireless-quote/internal/logging"
)

var (
	quoteCatalog string
	quoteFormat  string
	quoteExact   bool
	quoteStrict  bool
)

// quoteCmd prices one request or a list of requests
var quoteCmd = &cobra.Command{
	Use:   "quote <request-file>",
	Short: "Price a quote request",
	Long: `Price a quote request file and print the itemized quote.

The file holds one request object or a list of them, as JSON or YAML.
Without --catalog the built-in reference catalog is used.

Examples:
  wquote quote request.json
  wquote quote --format markdown request.yaml
  wquote quote --catalog catalog.hcl --exact batch.json`,
	Args: cobra.ExactArgs(1),
	RunE: runQuote,
}

func init() {
	quoteCmd.Flags().StringVarP(&quoteCatalog, "catalog", "c", "", "HCL catalog file (default: built-in catalog)")
	quoteCmd.Flags().StringVarP(&quoteFormat, "format", "f", "", "output format (table, json, yaml, markdown, html)")
	quoteCmd.Flags().BoolVar(&quoteExact, "exact", false, "show unrounded amounts next to display amounts")
	quoteCmd.Flags().BoolVar(&quoteStrict, "strict", false, "fail on clamped amounts regardless of environment")

	rootCmd.AddCommand(quoteCmd)
}

func runQuote(cmd *cobra.Command, args []string) error {
	cfg := config.Get()

	if quoteCatalog == "" {
		quoteCatalog = cfg.Catalog.Path
	}
	if quoteFormat == "" {
		quoteFormat = cfg.Output.DefaultFormat
	}
	engineCfg := cfg.Engine
	if cmd.Flags().Changed("strict") {
		engineCfg.StrictInvariants = &quoteStrict
	}

	eng := engine.FromConfig(engineCfg, logging.Named("engine"))
	registry := output.NewRegistry(output.Options{ShowExact: quoteExact || cfg.Output.ShowExact})

	a := adapter.NewCLIAdapter(eng, registry, logging.Named("cli"))
	a.SetOutput(cmd.OutOrStdout())

	return a.Run(&adapter.CLIRequest{
		RequestFile: args[0],
		CatalogPath: quoteCatalog,
		Format:      quoteFormat,
	})
}
