// Command etl runs the full scraping pipeline: extraction from the
// property catalog, normalization and scoring, artifact export, and
// threshold validation. The process exit code follows the run report.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ecisterna/Props-Scraper/internal/config"
	"github.com/ecisterna/Props-Scraper/internal/exporter"
	"github.com/ecisterna/Props-Scraper/internal/infrastructure"
	"github.com/ecisterna/Props-Scraper/internal/normalize"
	"github.com/ecisterna/Props-Scraper/internal/pipeline"
	"github.com/ecisterna/Props-Scraper/internal/scraper"
	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

func main() {
	propertyType := flag.String("property", "", "property type slug (e.g. departamentos)")
	operationType := flag.String("operation", "", "operation type slug (e.g. venta)")
	location := flag.String("location", "", "location slug (e.g. capital-federal)")
	priceFrom := flag.Int("price-from", -1, "minimum price")
	priceTo := flag.Int("price-to", -1, "maximum price")
	currency := flag.String("currency", "", "currency slug (e.g. dolares)")
	maxPages := flag.Int("max-pages", 0, "maximum pages to fetch")
	sortBy := flag.String("sort", "", "sort key (e.g. masnuevos)")
	formats := flag.String("formats", "", "comma-separated output formats (csv,json,parquet,xlsx)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load configuration: %v\n", err)
		os.Exit(1)
	}
	applyFlags(cfg, *propertyType, *operationType, *location, *priceFrom, *priceTo, *currency, *maxPages, *sortBy, *formats)
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid configuration: %v\n", err)
		os.Exit(1)
	}

	paths := config.NewPaths(cfg.Paths)
	if err := paths.EnsureDirectories(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create directories: %v\n", err)
		os.Exit(1)
	}

	cfg.Logging.FilePath = paths.LogPath("etl.log")
	if _, err := infrastructure.InitializeLogger(cfg.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logger: %v\n", err)
	}
	defer infrastructure.CloseLogFile()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = infrastructure.ContextWithRunID(ctx)

	fetcher := scraper.NewFetcher(cfg.Fetcher)
	parser := scraper.NewParser(cfg.Fetcher.BaseURL)
	exp := exporter.NewExporter(paths, cfg.Search)

	manager := pipeline.NewManager(
		pipeline.NewExtractionStage(fetcher, parser, cfg.Search, cfg.Fetcher, paths),
		pipeline.NewTransformationStage(normalize.NewNormalizer()),
		pipeline.NewLoadingStage(exp, cfg.Output.Formats),
		pipeline.NewValidationStage(cfg.Thresholds, cfg.Search, paths),
	)

	state, runErr := manager.Execute(ctx)

	report := state.Report
	if report == nil {
		// The run died before validation; synthesize the report so the
		// caller still gets a success/failure verdict.
		report = pipeline.BuildReport(state, cfg.Thresholds)
		if runErr != nil {
			report.Success = false
			report.FailureReasons = append(report.FailureReasons, runErr.Error())
		}
	}

	printReport(report)
	if !report.Success {
		os.Exit(1)
	}
}

func applyFlags(cfg *config.Config, propertyType, operationType, location string, priceFrom, priceTo int, currency string, maxPages int, sortBy, formats string) {
	if propertyType != "" {
		cfg.Search.PropertyType = propertyType
	}
	if operationType != "" {
		cfg.Search.OperationType = operationType
	}
	if location != "" {
		cfg.Search.Location = location
	}
	if priceFrom >= 0 {
		cfg.Search.PriceFrom = priceFrom
	}
	if priceTo >= 0 {
		cfg.Search.PriceTo = priceTo
	}
	if currency != "" {
		cfg.Search.Currency = currency
	}
	if maxPages > 0 {
		cfg.Search.MaxPages = maxPages
	}
	if sortBy != "" {
		cfg.Search.SortBy = sortBy
	}
	if formats != "" {
		cfg.Output.Formats = strings.Split(formats, ",")
	}
}

func printReport(report *domain.DatasetReport) {
	fmt.Printf("Run %s finished\n", report.RunID)
	fmt.Printf("  Raw listings:    %d\n", report.TotalRaw)
	fmt.Printf("  Normalized:      %d\n", report.TotalNormalized)
	fmt.Printf("  Average quality: %.1f\n", report.AverageQuality)
	for _, path := range report.OutputFilePaths {
		fmt.Printf("  Output:          %s\n", path)
	}
	if report.Success {
		fmt.Println("  Result:          success")
		return
	}
	fmt.Println("  Result:          FAILED")
	for _, reason := range report.FailureReasons {
		fmt.Printf("    - %s\n", reason)
	}
}
