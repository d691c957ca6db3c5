package pipeline

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecisterna/Props-Scraper/internal/config"
	"github.com/ecisterna/Props-Scraper/internal/exporter"
	"github.com/ecisterna/Props-Scraper/internal/scraper"
	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// stubFetcher serves canned page outcomes keyed by page number.
// Pages without an entry fail.
type stubFetcher struct {
	mu      sync.Mutex
	pages   map[int]string
	fetched []int
}

func (f *stubFetcher) FetchPage(ctx context.Context, search config.SearchConfig, page int) scraper.PageResult {
	f.mu.Lock()
	f.fetched = append(f.fetched, page)
	html, ok := f.pages[page]
	f.mu.Unlock()

	if !ok {
		return scraper.PageResult{Page: page, Attempts: 3, Err: errors.New("connection refused")}
	}
	return scraper.PageResult{Page: page, HTML: html, StatusCode: 200, Attempts: 1, Success: true}
}

// stubParser produces one listing per semicolon-separated token.
type stubParser struct{}

func (stubParser) ParseListings(html string, page int) []domain.RawListing {
	if html == "" {
		return nil
	}
	var listings []domain.RawListing
	for _, title := range strings.Split(html, ";") {
		listings = append(listings, domain.RawListing{Title: title, PageNumber: page})
	}
	return listings
}

func newExtractionStage(t *testing.T, fetcher scraper.PageFetcher, maxPages, concurrency int) (*ExtractionStage, *config.Paths) {
	t.Helper()
	cfg := config.Default()
	cfg.Search.MaxPages = maxPages
	cfg.Fetcher.MaxConcurrency = concurrency
	paths := config.NewPaths(config.PathsConfig{DataDir: t.TempDir(), LogsDir: t.TempDir()})
	require.NoError(t, paths.EnsureDirectories())
	return NewExtractionStage(fetcher, stubParser{}, cfg.Search, cfg.Fetcher, paths), paths
}

func titles(listings []domain.RawListing) []string {
	out := make([]string, len(listings))
	for i, l := range listings {
		out[i] = l.Title
	}
	return out
}

func TestExtractionAllPages(t *testing.T) {
	fetcher := &stubFetcher{pages: map[int]string{
		1: "a1;a2",
		2: "b1",
		3: "c1;c2;c3",
	}}
	stage, _ := newExtractionStage(t, fetcher, 3, 1)
	state := NewRunState("run-1")

	require.NoError(t, stage.Execute(context.Background(), state))

	assert.Equal(t, ExtractionDone, state.Extraction.State)
	assert.Empty(t, state.Extraction.Reason)
	assert.Equal(t, 3, state.Extraction.PagesFetched)
	assert.Equal(t, []string{"a1", "a2", "b1", "c1", "c2", "c3"}, titles(state.RawListings))
	assert.FileExists(t, state.RawPath)
}

func TestExtractionStopsOnEmptyPage(t *testing.T) {
	fetcher := &stubFetcher{pages: map[int]string{
		1: "a1",
		2: "",
		3: "never-reached",
	}}
	stage, _ := newExtractionStage(t, fetcher, 5, 1)
	state := NewRunState("run-2")

	require.NoError(t, stage.Execute(context.Background(), state))

	assert.Equal(t, ExtractionDone, state.Extraction.State)
	assert.Equal(t, []string{"a1"}, titles(state.RawListings))
	assert.Equal(t, []int{1, 2}, fetcher.fetched)
}

func TestExtractionAbortsAfterConsecutiveFailures(t *testing.T) {
	// Pages 2 and 3 fail; the threshold of 2 consecutive failures
	// aborts before page 4, keeping page 1's listings.
	fetcher := &stubFetcher{pages: map[int]string{
		1: "a1;a2",
		4: "never-reached",
	}}
	stage, paths := newExtractionStage(t, fetcher, 5, 1)
	state := NewRunState("run-3")

	require.NoError(t, stage.Execute(context.Background(), state))

	assert.Equal(t, ExtractionAborted, state.Extraction.State)
	assert.Contains(t, state.Extraction.Reason, "2 consecutive page fetch failures")
	assert.Equal(t, 2, state.Extraction.PagesFailed)
	assert.Equal(t, []string{"a1", "a2"}, titles(state.RawListings))
	assert.Equal(t, []int{1, 2, 3}, fetcher.fetched)

	// The partial data is still flushed to the raw artifact.
	got, err := exporter.ReadRawDataset(state.RawPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"a1", "a2"}, titles(got))
	assert.Contains(t, state.RawPath, paths.RawDir)
}

func TestExtractionSingleFailureIsSkipped(t *testing.T) {
	fetcher := &stubFetcher{pages: map[int]string{
		1: "a1",
		3: "c1",
	}}
	stage, _ := newExtractionStage(t, fetcher, 3, 1)
	state := NewRunState("run-4")

	require.NoError(t, stage.Execute(context.Background(), state))

	// Page 2 failed once, page 3 succeeded: the failure streak reset.
	assert.Equal(t, ExtractionDone, state.Extraction.State)
	assert.Equal(t, 1, state.Extraction.PagesFailed)
	assert.Equal(t, []string{"a1", "c1"}, titles(state.RawListings))
}

func TestExtractionCancelledFlushesPartialData(t *testing.T) {
	fetcher := &stubFetcher{pages: map[int]string{1: "a1", 2: "b1"}}
	stage, _ := newExtractionStage(t, fetcher, 2, 1)
	state := NewRunState("run-5")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, stage.Execute(ctx, state))

	assert.Equal(t, ExtractionAborted, state.Extraction.State)
	assert.Contains(t, state.Extraction.Reason, "cancelled")
	assert.FileExists(t, state.RawPath)
}

func TestExtractionConcurrentWindowKeepsPageOrder(t *testing.T) {
	fetcher := &stubFetcher{pages: map[int]string{
		1: "a1",
		2: "b1;b2",
		3: "c1",
		4: "d1",
	}}
	stage, _ := newExtractionStage(t, fetcher, 4, 2)
	state := NewRunState("run-6")

	require.NoError(t, stage.Execute(context.Background(), state))

	assert.Equal(t, ExtractionDone, state.Extraction.State)
	assert.Equal(t, []string{"a1", "b1", "b2", "c1", "d1"}, titles(state.RawListings))
}

func TestExtractionZeroResults(t *testing.T) {
	fetcher := &stubFetcher{pages: map[int]string{1: ""}}
	stage, _ := newExtractionStage(t, fetcher, 5, 1)
	state := NewRunState("run-7")

	require.NoError(t, stage.Execute(context.Background(), state))

	assert.Equal(t, ExtractionDone, state.Extraction.State)
	assert.Empty(t, state.RawListings)

	got, err := exporter.ReadRawDataset(state.RawPath)
	require.NoError(t, err)
	assert.Empty(t, got)
}
