// Package cmd - catalog management commands
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	hclloader "wireless-quote/adapters/hcl"
	"wireless-quote/core/catalog"
	"wireless-quote/core/output"
	"wireless-quote/internal/config"
	ierr "wireless-quote/internal/errors"
	"wireless-quote/internal/logging"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Reference catalog commands",
	Long: `Commands for checking and inspecting reference catalogs.

A catalog file is HCL. It is parsed, validated and sealed with a content
hash before any quote can use it.`,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <catalog-file>",
	Short: "Parse and validate a catalog file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogValidate,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show [catalog-file]",
	Short: "Print a catalog summary or its canonical content",
	Long: `Print a catalog summary. With --format json or yaml the canonical
content that the catalog hash is computed over is printed instead.

Without a file the built-in catalog is shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogShow,
}

var catalogWatchCmd = &cobra.Command{
	Use:   "watch [catalog-file]",
	Short: "Poll a catalog file and report reloads",
	Long: `Poll a catalog file and swap it in whenever its content hash changes.
Invalid edits are reported and the last good catalog is kept.

Stops on interrupt.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCatalogWatch,
}

var (
	showFormat    string
	watchInterval time.Duration
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogShowCmd)
	catalogCmd.AddCommand(catalogWatchCmd)

	catalogShowCmd.Flags().StringVarP(&showFormat, "format", "f", "table", "output format (table, json, yaml)")
	catalogWatchCmd.Flags().DurationVar(&watchInterval, "interval", 0, "poll interval (default from config, or 5s)")
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	c, err := hclloader.NewLoader(logging.Named("catalog")).LoadFile(args[0])
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: OK (version %s, hash %s)\n", args[0], c.Version(), c.Hash().Hex())
	return nil
}

func loadCatalogArg(args []string) (*catalog.Catalog, error) {
	path := config.Get().Catalog.Path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return catalog.Default(), nil
	}
	return hclloader.NewLoader(logging.Named("catalog")).LoadFile(path)
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	c, err := loadCatalogArg(args)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()

	switch showFormat {
	case "json":
		data, err := json.MarshalIndent(c, "", "  ")
		if err != nil {
			return ierr.Internal("encode catalog", err)
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	case "yaml":
		node, err := output.ToYAMLNode(c)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(node); err != nil {
			return ierr.Internal("encode catalog", err)
		}
		return enc.Close()
	case "table":
	default:
		return ierr.InvalidRequest("unknown catalog format %q (want table, json or yaml)", showFormat)
	}

	s := c.Stats()
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Version\t%s\n", s.Version)
	fmt.Fprintf(tw, "Hash\t%s\n", s.Hash)
	fmt.Fprintf(tw, "Plans\t%d\t%v\n", s.Plans, c.PlanIDs())
	fmt.Fprintf(tw, "Devices\t%d\t%d variants\n", s.Devices, s.Variants)
	fmt.Fprintf(tw, "Insurance tiers\t%d\n", s.Tiers)
	fmt.Fprintf(tw, "Jurisdictions\t%d\t%v\n", s.Jurisdictions, c.JurisdictionIDs())
	fmt.Fprintf(tw, "Promotions\t%d\n", s.Promotions)
	return tw.Flush()
}

func runCatalogWatch(cmd *cobra.Command, args []string) error {
	cfg := config.Get()
	path := cfg.Catalog.Path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return ierr.InvalidRequest("no catalog file to watch")
	}

	interval := watchInterval
	if interval <= 0 && cfg.Catalog.ReloadIntervalSeconds > 0 {
		interval = time.Duration(cfg.Catalog.ReloadIntervalSeconds) * time.Second
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	logger := logging.Named("catalog")
	loader := hclloader.NewLoader(logger)
	initial, err := loader.LoadFile(path)
	if err != nil {
		return err
	}
	store, err := catalog.NewStore(initial, logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("watching catalog", zap.String("path", path), zap.Duration("interval", interval))
	store.Watch(ctx, interval, loader.LoadFunc(path))

	fmt.Fprintf(cmd.OutOrStdout(), "stopped; current catalog %s (%s)\n", store.Current().Version(), store.Current().Hash().Hex())
	return nil
}
