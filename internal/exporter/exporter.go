// Package exporter persists the normalized dataset in the requested
// artifact formats and computes the aggregate statistics that go into
// the spreadsheet and the metadata file.
//
// Writers are deterministic: exporting the same dataset to the same
// destination twice overwrites the previous artifacts in place.
package exporter

import (
	"time"

	"github.com/ecisterna/Props-Scraper/internal/config"
)

// Exporter writes run artifacts under the configured export
// directory. File names embed the search configuration and run date.
type Exporter struct {
	paths  *config.Paths
	search config.SearchConfig
}

// NewExporter creates an exporter for one search configuration.
func NewExporter(paths *config.Paths, search config.SearchConfig) *Exporter {
	return &Exporter{paths: paths, search: search}
}

func (e *Exporter) exportPath(date time.Time, ext string) string {
	return e.paths.ExportPath(e.search, date, ext)
}
