// Command processor replays a previously extracted raw dataset through
// transformation, loading and validation, without hitting the network.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ecisterna/Props-Scraper/internal/config"
	"github.com/ecisterna/Props-Scraper/internal/exporter"
	"github.com/ecisterna/Props-Scraper/internal/infrastructure"
	"github.com/ecisterna/Props-Scraper/internal/normalize"
	"github.com/ecisterna/Props-Scraper/internal/pipeline"
)

func main() {
	rawPath := flag.String("raw", "", "path to a raw dataset artifact (required)")
	flag.Parse()

	if *rawPath == "" {
		fmt.Fprintln(os.Stderr, "Error: -raw is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create directories: %v\n", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = paths.LogPath("processor.log")
	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.ContextWithRunID(ctx)

	exp := exporter.NewExporter(paths, cfg.Search)
	manager := pipeline.NewManager(
		pipeline.NewReplayStage(*rawPath),
		pipeline.NewTransformationStage(normalize.NewNormalizer()),
		pipeline.NewLoadingStage(exp, cfg.Output.Formats),
		pipeline.NewValidationStage(cfg.Thresholds, cfg.Search, paths),
	)

	state, runErr := manager.Execute(ctx)

	report := state.Report
	if report == nil {
		report = pipeline.BuildReport(state, cfg.Thresholds)
		if runErr != nil {
			report.Success = false
			report.FailureReasons = append(report.FailureReasons, runErr.Error())
		}
	}

	fmt.Printf("Run %s: %d records, average quality %.1f\n",
		report.RunID, report.TotalNormalized, report.AverageQuality)
	for _, path := range report.OutputFilePaths {
		fmt.Printf("  %s\n", path)
	}
	if !report.Success {
		for _, reason := range report.FailureReasons {
			fmt.Printf("  FAILED: %s\n", reason)
		}
		os.Exit(1)
	}
}
