// Package scraper fetches and parses catalog result pages. Fetching
// failures are reported as statuses, never as panics or propagated
// errors; the extraction stage decides how to react.
package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
	"golang.org/x/time/rate"

	"github.com/ecisterna/Props-Scraper/internal/config"
	"github.com/ecisterna/Props-Scraper/internal/infrastructure"
)

// userAgents is the identity pool rotated across requests. One entry
// is picked pseudo-randomly per attempt so retries do not reuse the
// identity that just failed.
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/119.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/118.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:121.0) Gecko/20100101 Firefox/121.0",
}

// PageResult is the outcome of fetching one catalog page. A failed
// fetch carries the last error and an empty HTML body.
type PageResult struct {
	Page       int
	URL        string
	HTML       string
	StatusCode int
	Attempts   int
	Success    bool
	Err        error
}

// PageFetcher fetches one search result page. Implementations must be
// safe for concurrent use.
type PageFetcher interface {
	FetchPage(ctx context.Context, search config.SearchConfig, page int) PageResult
}

// Fetcher retrieves catalog pages over HTTP with rate limiting,
// identity rotation and retry with exponential backoff. The limiter is
// shared across all callers so the minimum inter-request delay holds
// even under the concurrent page-window variant.
type Fetcher struct {
	cfg     config.FetcherConfig
	limiter *rate.Limiter
}

// NewFetcher creates a Fetcher from configuration.
func NewFetcher(cfg config.FetcherConfig) *Fetcher {
	return &Fetcher{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Every(cfg.MinDelay), 1),
	}
}

// FetchPage fetches one page, retrying transient failures. It never
// returns an error: exhausted retries yield a PageResult with
// Success=false and the last error attached.
func (f *Fetcher) FetchPage(ctx context.Context, search config.SearchConfig, page int) PageResult {
	logger := infrastructure.LoggerFromContext(ctx)
	result := PageResult{
		Page: page,
		URL:  BuildSearchURL(f.cfg.BaseURL, search, page),
	}

	backoff := f.cfg.BackoffBase
	for attempt := 1; attempt <= f.cfg.MaxAttempts; attempt++ {
		result.Attempts = attempt

		if err := f.limiter.Wait(ctx); err != nil {
			result.Err = err
			return result
		}

		html, status, err := f.doRequest(result.URL)
		result.StatusCode = status
		if err == nil {
			result.HTML = html
			result.Success = true
			result.Err = nil
			return result
		}
		result.Err = err

		logger.WarnContext(ctx, "page fetch attempt failed",
			slog.Int("page", page),
			slog.Int("attempt", attempt),
			slog.Int("status", status),
			slog.String("error", err.Error()))

		if attempt < f.cfg.MaxAttempts {
			if err := sleepContext(ctx, backoff); err != nil {
				result.Err = err
				return result
			}
			backoff *= 2
			if backoff > f.cfg.BackoffMax {
				backoff = f.cfg.BackoffMax
			}
		}
	}

	logger.ErrorContext(ctx, "page fetch exhausted retries",
		slog.Int("page", page),
		slog.String("url", result.URL),
		slog.Int("attempts", result.Attempts))
	return result
}

// doRequest performs a single HTTP round trip with a fresh collector
// and a freshly picked identity. Responses are never cached.
func (f *Fetcher) doRequest(targetURL string) (string, int, error) {
	c := colly.NewCollector(
		colly.UserAgent(userAgents[rand.Intn(len(userAgents))]),
	)
	c.SetRequestTimeout(f.cfg.Timeout)

	var (
		html       string
		statusCode int
		fetchErr   error
	)

	c.OnResponse(func(r *colly.Response) {
		statusCode = r.StatusCode
		html = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		if r != nil {
			statusCode = r.StatusCode
		}
		fetchErr = err
	})

	if err := c.Visit(targetURL); err != nil {
		return "", statusCode, fmt.Errorf("failed to visit %s: %w", targetURL, err)
	}
	if fetchErr != nil {
		return "", statusCode, fmt.Errorf("fetch error for %s: %w", targetURL, fetchErr)
	}
	if statusCode >= 300 {
		return "", statusCode, fmt.Errorf("unexpected status %d for %s", statusCode, targetURL)
	}
	return html, statusCode, nil
}

// BuildSearchURL assembles the catalog search URL. Parameters are
// passed through verbatim; the site is the authority on valid slugs.
// Page one has no page segment.
func BuildSearchURL(baseURL string, search config.SearchConfig, page int) string {
	url := fmt.Sprintf("%s/%s-%s", strings.TrimRight(baseURL, "/"), search.PropertyType, search.OperationType)

	if search.Location != "" {
		url += "/" + search.Location
	}

	var params []string
	if search.PriceFrom > 0 {
		params = append(params, fmt.Sprintf("precio-desde-%d", search.PriceFrom))
	}
	if search.PriceTo > 0 {
		params = append(params, fmt.Sprintf("precio-hasta-%d", search.PriceTo))
	}
	if search.Currency == "dolares" {
		params = append(params, "dolares")
	}
	if search.SortBy != "" {
		params = append(params, "orden-"+search.SortBy)
	}
	if len(params) > 0 {
		url += "/" + strings.Join(params, "/")
	}

	if page > 1 {
		url += fmt.Sprintf("/pagina-%d", page)
	}
	return url
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
