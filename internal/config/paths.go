package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Paths resolves every file location the pipeline touches. Artifact
// names embed the search configuration and the run date so a given
// day's run always writes to the same files.
type Paths struct {
	DataDir    string
	RawDir     string
	ExportsDir string
	LogsDir    string
}

// NewPaths builds the path set from the configured base directories.
// Relative directories are kept relative to the working directory so
// the binaries behave the same under cron and interactive use.
func NewPaths(cfg PathsConfig) *Paths {
	dataDir := cfg.DataDir
	if dataDir == "" {
		dataDir = "data"
	}
	logsDir := cfg.LogsDir
	if logsDir == "" {
		logsDir = "logs"
	}
	return &Paths{
		DataDir:    dataDir,
		RawDir:     filepath.Join(dataDir, "raw"),
		ExportsDir: filepath.Join(dataDir, "exports"),
		LogsDir:    logsDir,
	}
}

// EnsureDirectories creates every directory the pipeline writes into.
func (p *Paths) EnsureDirectories() error {
	for _, dir := range []string{p.DataDir, p.RawDir, p.ExportsDir, p.LogsDir} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

// DatasetBaseName returns the artifact base name for one run:
// propiedades_{property}_{operation}_{YYYYMMDD}.
func DatasetBaseName(search SearchConfig, date time.Time) string {
	return fmt.Sprintf("propiedades_%s_%s_%s",
		search.PropertyType, search.OperationType, date.Format("20060102"))
}

// RawDatasetPath returns the intermediate raw dataset location for one
// run. This file is the recovery point: transformation can be replayed
// from it without re-scraping.
func (p *Paths) RawDatasetPath(search SearchConfig, date time.Time) string {
	return filepath.Join(p.RawDir, fmt.Sprintf("raw_%s.json", DatasetBaseName(search, date)))
}

// ExportPath returns the path of a final artifact with the given
// extension.
func (p *Paths) ExportPath(search SearchConfig, date time.Time, ext string) string {
	return filepath.Join(p.ExportsDir, fmt.Sprintf("%s.%s", DatasetBaseName(search, date), ext))
}

// MetadataPath returns the dataset metadata artifact location.
func (p *Paths) MetadataPath(search SearchConfig, date time.Time) string {
	return filepath.Join(p.ExportsDir, fmt.Sprintf("%s_metadata.json", DatasetBaseName(search, date)))
}

// ReportPath returns the run report location.
func (p *Paths) ReportPath(search SearchConfig, date time.Time) string {
	return filepath.Join(p.ExportsDir, fmt.Sprintf("%s_report.json", DatasetBaseName(search, date)))
}

// LogPath returns the location of the given log file inside LogsDir.
func (p *Paths) LogPath(name string) string {
	return filepath.Join(p.LogsDir, name)
}
