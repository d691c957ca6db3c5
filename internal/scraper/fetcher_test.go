package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecisterna/Props-Scraper/internal/config"
)

func testFetcherConfig(baseURL string) config.FetcherConfig {
	return config.FetcherConfig{
		BaseURL:        baseURL,
		MinDelay:       time.Millisecond,
		Timeout:        2 * time.Second,
		MaxAttempts:    3,
		BackoffBase:    time.Millisecond,
		BackoffMax:     5 * time.Millisecond,
		MaxConcurrency: 1,
		AbortThreshold: 2,
	}
}

func TestBuildSearchURL(t *testing.T) {
	search := config.SearchConfig{
		PropertyType:  "departamentos",
		OperationType: "venta",
		Location:      "capital-federal",
		PriceFrom:     50000,
		PriceTo:       200000,
		Currency:      "dolares",
		SortBy:        "masnuevos",
	}

	assert.Equal(t,
		"https://www.argenprop.com/departamentos-venta/capital-federal/precio-desde-50000/precio-hasta-200000/dolares/orden-masnuevos",
		BuildSearchURL("https://www.argenprop.com", search, 1))

	assert.Equal(t,
		"https://www.argenprop.com/departamentos-venta/capital-federal/precio-desde-50000/precio-hasta-200000/dolares/orden-masnuevos/pagina-4",
		BuildSearchURL("https://www.argenprop.com", search, 4))
}

func TestBuildSearchURLMinimal(t *testing.T) {
	search := config.SearchConfig{
		PropertyType:  "casas",
		OperationType: "alquiler",
		Currency:      "pesos",
	}

	// No location, no price bounds, no sort: only the slug pair.
	// The pesos currency has no URL segment on the source site.
	assert.Equal(t, "https://www.argenprop.com/casas-alquiler",
		BuildSearchURL("https://www.argenprop.com/", search, 1))
}

func TestFetchPageSuccess(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.UserAgent())
		w.Write([]byte("<html><body>ok</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(testFetcherConfig(srv.URL))
	result := f.FetchPage(context.Background(), config.SearchConfig{PropertyType: "departamentos", OperationType: "venta"}, 1)

	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Equal(t, http.StatusOK, result.StatusCode)
	assert.Contains(t, result.HTML, "ok")
	assert.NoError(t, result.Err)
	assert.Contains(t, userAgents, gotUA.Load().(string))
}

func TestFetchPageRetriesThenSucceeds(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte("<html><body>recovered</body></html>"))
	}))
	defer srv.Close()

	f := NewFetcher(testFetcherConfig(srv.URL))
	result := f.FetchPage(context.Background(), config.SearchConfig{PropertyType: "departamentos", OperationType: "venta"}, 1)

	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Contains(t, result.HTML, "recovered")
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPageExhaustsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	f := NewFetcher(testFetcherConfig(srv.URL))
	result := f.FetchPage(context.Background(), config.SearchConfig{PropertyType: "departamentos", OperationType: "venta"}, 2)

	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Empty(t, result.HTML)
	assert.Error(t, result.Err)
	assert.Equal(t, int32(3), calls.Load())
}

func TestFetchPageRespectsCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testFetcherConfig(srv.URL)
	cfg.BackoffBase = time.Minute
	f := NewFetcher(cfg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan PageResult, 1)
	go func() {
		done <- f.FetchPage(ctx, config.SearchConfig{PropertyType: "departamentos", OperationType: "venta"}, 1)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case result := <-done:
		assert.False(t, result.Success)
		require.Error(t, result.Err)
		assert.ErrorIs(t, result.Err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("fetch did not observe cancellation")
	}
}

func TestFetchPagePacesRequests(t *testing.T) {
	var stamps []time.Time
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		stamps = append(stamps, time.Now())
		w.Write([]byte("<html></html>"))
	}))
	defer srv.Close()

	cfg := testFetcherConfig(srv.URL)
	cfg.MinDelay = 100 * time.Millisecond
	f := NewFetcher(cfg)

	search := config.SearchConfig{PropertyType: "departamentos", OperationType: "venta"}
	f.FetchPage(context.Background(), search, 1)
	f.FetchPage(context.Background(), search, 2)
	require.Len(t, stamps, 2)
	assert.GreaterOrEqual(t, stamps[1].Sub(stamps[0]), 80*time.Millisecond)
}
