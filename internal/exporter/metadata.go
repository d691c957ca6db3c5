package exporter

import (
	"time"

	"github.com/ecisterna/Props-Scraper/internal/config"
)

// Metadata describes one exported dataset: its schema, aggregate
// statistics, and the search configuration that produced it. It is
// rebuilt from scratch on every export, so stale fields from earlier
// runs never survive an overwrite.
type Metadata struct {
	Dataset     DatasetInfo         `json:"dataset_info"`
	Schema      []string            `json:"schema"`
	Statistics  *Statistics         `json:"statistics"`
	Search      config.SearchConfig `json:"search_configuration"`
	GeneratedAt time.Time           `json:"generated_at"`
}

// DatasetInfo identifies the dataset artifacts of one run.
type DatasetInfo struct {
	Name    string `json:"name"`
	Source  string `json:"source"`
	RunDate string `json:"run_date"`
	Records int    `json:"records"`
}

// ExportMetadata writes the metadata artifact next to the dataset
// files.
func (e *Exporter) ExportMetadata(stats *Statistics, date time.Time) (string, error) {
	path := e.paths.MetadataPath(e.search, date)

	meta := Metadata{
		Dataset: DatasetInfo{
			Name:    config.DatasetBaseName(e.search, date),
			Source:  "argenprop",
			RunDate: date.Format("2006-01-02"),
			Records: stats.TotalRecords,
		},
		Schema:      csvHeaders,
		Statistics:  stats,
		Search:      e.search,
		GeneratedAt: time.Now(),
	}

	if err := WriteJSONFile(path, meta); err != nil {
		return "", err
	}
	return path, nil
}
