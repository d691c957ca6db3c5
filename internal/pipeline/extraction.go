package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/ecisterna/Props-Scraper/internal/config"
	"github.com/ecisterna/Props-Scraper/internal/exporter"
	"github.com/ecisterna/Props-Scraper/internal/infrastructure"
	"github.com/ecisterna/Props-Scraper/internal/scraper"
	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// ListingParser turns one page of markup into raw listings.
type ListingParser interface {
	ParseListings(html string, page int) []domain.RawListing
}

// ExtractionStage walks the catalog pages in order, accumulating raw
// listings until the page limit, an empty page, or too many
// consecutive fetch failures. Whatever was collected is always flushed
// to the raw dataset artifact, including on cancellation.
type ExtractionStage struct {
	fetcher scraper.PageFetcher
	parser  ListingParser
	search  config.SearchConfig
	fcfg    config.FetcherConfig
	paths   *config.Paths
}

// NewExtractionStage creates the extraction stage.
func NewExtractionStage(fetcher scraper.PageFetcher, parser ListingParser, search config.SearchConfig, fcfg config.FetcherConfig, paths *config.Paths) *ExtractionStage {
	return &ExtractionStage{
		fetcher: fetcher,
		parser:  parser,
		search:  search,
		fcfg:    fcfg,
		paths:   paths,
	}
}

func (s *ExtractionStage) ID() string   { return StageIDExtraction }
func (s *ExtractionStage) Name() string { return StageNameExtraction }

// Validate checks the stage preconditions.
func (s *ExtractionStage) Validate(state *RunState) error {
	if s.fetcher == nil {
		return fmt.Errorf("no fetcher configured")
	}
	if s.parser == nil {
		return fmt.Errorf("no parser configured")
	}
	return nil
}

// Execute runs the page state machine and flushes the raw dataset.
// An aborted extraction is not a stage error: partial data still flows
// downstream, with the abort recorded in the result.
func (s *ExtractionStage) Execute(ctx context.Context, state *RunState) error {
	logger := infrastructure.LoggerFromContext(ctx)

	listings, result := s.collect(ctx, logger)
	if listings == nil {
		listings = []domain.RawListing{}
	}
	state.RawListings = listings
	state.Extraction = result

	logger.InfoContext(ctx, "extraction finished",
		slog.String("state", string(result.State)),
		slog.String("reason", result.Reason),
		slog.Int("pages_fetched", result.PagesFetched),
		slog.Int("listings", len(listings)))

	// Flush even when empty or aborted: the raw artifact is the
	// recovery point for replaying transformation.
	rawPath := s.paths.RawDatasetPath(s.search, state.StartTime)
	if err := exporter.WriteJSONFile(rawPath, listings); err != nil {
		return NewOutputError(StageIDExtraction, "raw json", err)
	}
	state.RawPath = rawPath

	logger.InfoContext(ctx, "raw dataset written",
		slog.String("path", rawPath))
	return nil
}

// collect fetches pages until a terminal condition is reached. With
// MaxConcurrency > 1 pages are fetched in windows of that size; the
// termination rules are applied scanning each window in page order, so
// listing order stays identical to the sequential variant.
func (s *ExtractionStage) collect(ctx context.Context, logger *slog.Logger) ([]domain.RawListing, ExtractionResult) {
	var (
		listings []domain.RawListing
		result   = ExtractionResult{State: ExtractionDone}
		failures = 0
	)

	window := s.fcfg.MaxConcurrency
	if window < 1 {
		window = 1
	}

	for start := 1; start <= s.search.MaxPages; start += window {
		if err := ctx.Err(); err != nil {
			result.State = ExtractionAborted
			result.Reason = fmt.Sprintf("cancelled: %v", err)
			return listings, result
		}

		end := start + window - 1
		if end > s.search.MaxPages {
			end = s.search.MaxPages
		}
		results := s.fetchWindow(ctx, start, end)

		for _, page := range results {
			if !page.Success {
				failures++
				result.PagesFailed++
				logger.WarnContext(ctx, "page skipped after failed fetch",
					slog.Int("page", page.Page),
					slog.Int("consecutive_failures", failures))
				if failures >= s.fcfg.AbortThreshold {
					result.State = ExtractionAborted
					result.Reason = fmt.Sprintf("%d consecutive page fetch failures, last: %v", failures, page.Err)
					return listings, result
				}
				continue
			}

			failures = 0
			result.PagesFetched++
			parsed := s.parser.ParseListings(page.HTML, page.Page)
			if len(parsed) == 0 {
				logger.InfoContext(ctx, "empty page, end of results",
					slog.Int("page", page.Page))
				return listings, result
			}
			listings = append(listings, parsed...)
			logger.InfoContext(ctx, "page extracted",
				slog.Int("page", page.Page),
				slog.Int("listings", len(parsed)),
				slog.Int("total", len(listings)))
		}
	}

	return listings, result
}

// fetchWindow fetches pages start..end. The shared rate limiter inside
// the fetcher keeps concurrent workers paced.
func (s *ExtractionStage) fetchWindow(ctx context.Context, start, end int) []scraper.PageResult {
	results := make([]scraper.PageResult, end-start+1)
	if start == end {
		results[0] = s.fetcher.FetchPage(ctx, s.search, start)
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(end - start + 1)
	for i := range results {
		i := i
		page := start + i
		g.Go(func() error {
			results[i] = s.fetcher.FetchPage(gctx, s.search, page)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
