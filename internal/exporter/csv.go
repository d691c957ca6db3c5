package exporter

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// csvHeaders is the column order of the tabular outputs. The Excel
// data sheet uses the same layout.
var csvHeaders = []string{
	"title",
	"price_value",
	"currency",
	"neighborhood",
	"city",
	"rooms",
	"area_m2",
	"bathrooms",
	"quality_score",
	"quality_level",
	"url",
	"source_page",
	"scraped_at",
}

// ExportCSV writes the dataset as a UTF-8 CSV file. A BOM prefix is
// written so Excel recognizes the encoding.
func (e *Exporter) ExportCSV(properties []domain.NormalizedProperty, date time.Time) (string, error) {
	path := e.exportPath(date, "csv")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return "", fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(csvHeaders); err != nil {
		return "", fmt.Errorf("failed to write headers: %w", err)
	}
	for i := range properties {
		if err := writer.Write(propertyToRow(&properties[i])); err != nil {
			return "", fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return path, nil
}

// propertyToRow renders one property in csvHeaders order. Null fields
// become empty cells.
func propertyToRow(p *domain.NormalizedProperty) []string {
	return []string{
		p.Title,
		formatFloatPtr(p.PriceValue),
		string(p.Currency),
		formatStringPtr(p.Neighborhood),
		formatStringPtr(p.City),
		formatIntPtr(p.Rooms),
		formatFloatPtr(p.AreaM2),
		formatIntPtr(p.Bathrooms),
		strconv.Itoa(p.QualityScore),
		string(p.QualityLevel),
		p.URL,
		strconv.Itoa(p.SourcePage),
		p.ScrapedAt.Format(time.RFC3339),
	}
}

func formatStringPtr(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

// formatFloat renders a float without trailing zeros.
func formatFloat(f float64) string {
	s := strconv.FormatFloat(f, 'f', 2, 64)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
