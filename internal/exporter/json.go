package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// WriteJSONFile marshals v with indentation and writes it to path,
// creating parent directories and truncating any previous file.
func WriteJSONFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal json: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

// ReadRawDataset reads back a raw dataset artifact written during
// extraction.
func ReadRawDataset(path string) ([]domain.RawListing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	var listings []domain.RawListing
	if err := json.Unmarshal(data, &listings); err != nil {
		return nil, fmt.Errorf("failed to parse raw dataset %s: %w", path, err)
	}
	return listings, nil
}

// ExportJSON writes the normalized dataset as a JSON array.
func (e *Exporter) ExportJSON(properties []domain.NormalizedProperty, date time.Time) (string, error) {
	path := e.exportPath(date, "json")
	if properties == nil {
		properties = []domain.NormalizedProperty{}
	}
	if err := WriteJSONFile(path, properties); err != nil {
		return "", err
	}
	return path, nil
}
