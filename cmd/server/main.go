// Package main - Entry point for the quote API server
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	hclloader "wireless-quote/adapters/hcl"
	"wireless-quote/api"
	"wireless-quote/core/catalog"
	"wireless-quote/core/engine"
	"wireless-quote/core/output"
	"wireless-quote/internal/config"
	"wireless-quote/internal/logging"
)

const version = "0.1.0"

func main() {
	addr := flag.String("addr", ":8080", "Server address")
	cfgFile := flag.String("config", "", "Config file (JSON or YAML)")
	flag.Parse()

	if err := run(*addr, *cfgFile); err != nil {
		fmt.Fprintf(os.Stderr, "server: %v\n", err)
		os.Exit(1)
	}
}

func run(addr, cfgFile string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if err := logging.Initialize(cfg.Logging); err != nil {
		return err
	}
	defer logging.Sync()

	logger := logging.Named("server")

	initial := catalog.Default()
	var loader *hclloader.Loader
	if cfg.Catalog.Path != "" {
		loader = hclloader.NewLoader(logging.Named("catalog"))
		if initial, err = loader.LoadFile(cfg.Catalog.Path); err != nil {
			return err
		}
	}
	store, err := catalog.NewStore(initial, logging.Named("catalog"))
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if loader != nil && cfg.Catalog.ReloadIntervalSeconds > 0 {
		interval := time.Duration(cfg.Catalog.ReloadIntervalSeconds) * time.Second
		go store.Watch(ctx, interval, loader.LoadFunc(cfg.Catalog.Path))
	}

	eng := engine.FromConfig(cfg.Engine, logging.Named("engine"))
	registry := output.NewRegistry(output.Options{ShowExact: cfg.Output.ShowExact})

	mux := http.NewServeMux()
	mux.Handle("/api/", http.StripPrefix("/api", api.NewServer(eng, store, registry, version, logging.Named("api"))))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening",
			zap.String("addr", addr),
			zap.String("catalog_version", store.Current().Version()),
			zap.Bool("strict", eng.Strict()),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	return srv.Shutdown(shutdownCtx)
}
