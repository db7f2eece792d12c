// Command fetchdata downloads the datasets listed in a YAML manifest into the
// local data directory, verifying checksums where the manifest pins them.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"alphalab/internal/config"
	"alphalab/internal/fetch"
)

func main() {
	manifestPath := flag.String("manifest", "datasets.yaml", "dataset manifest file")
	dest := flag.String("dest", "", "destination directory (default: configured data directory)")
	concurrency := flag.Int("concurrency", 4, "maximum simultaneous downloads")
	configFile := flag.String("config", "alphalab.yaml", "configuration file")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}
	logger := config.NewLogger(cfg.Logging)
	slog.SetDefault(logger)

	paths, err := config.NewPaths(cfg.Paths)
	if err != nil {
		slog.Error("Failed to initialize paths", "error", err)
		os.Exit(1)
	}

	destDir := *dest
	if destDir == "" {
		destDir = paths.DataDir
	}

	manifest, err := fetch.LoadManifest(*manifestPath)
	if err != nil {
		slog.Error("Failed to load manifest", "path", *manifestPath, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetcher := fetch.NewFetcher(logger, *concurrency)
	if err := fetcher.FetchAll(ctx, manifest, destDir); err != nil {
		slog.Error("Fetch failed", "error", err)
		os.Exit(1)
	}
	slog.Info("All datasets fetched", "count", len(manifest.Datasets), "dest", destDir)
}
