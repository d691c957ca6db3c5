package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/parquet-go/parquet-go"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// parquetRow is the columnar layout of one property. Nullable fields
// are optional columns.
type parquetRow struct {
	Title        string   `parquet:"title"`
	PriceValue   *float64 `parquet:"price_value,optional"`
	Currency     string   `parquet:"currency"`
	Neighborhood *string  `parquet:"neighborhood,optional"`
	City         *string  `parquet:"city,optional"`
	Rooms        *int32   `parquet:"rooms,optional"`
	AreaM2       *float64 `parquet:"area_m2,optional"`
	Bathrooms    *int32   `parquet:"bathrooms,optional"`
	QualityScore int32    `parquet:"quality_score"`
	QualityLevel string   `parquet:"quality_level"`
	URL          string   `parquet:"url"`
	SourcePage   int32    `parquet:"source_page"`
	ScrapedAt    string   `parquet:"scraped_at"`
}

// ExportParquet writes the dataset as a Parquet file.
func (e *Exporter) ExportParquet(properties []domain.NormalizedProperty, date time.Time) (string, error) {
	path := e.exportPath(date, "parquet")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	rows := make([]parquetRow, 0, len(properties))
	for i := range properties {
		rows = append(rows, toParquetRow(&properties[i]))
	}

	writer := parquet.NewGenericWriter[parquetRow](file)
	if len(rows) > 0 {
		if _, err := writer.Write(rows); err != nil {
			writer.Close()
			return "", fmt.Errorf("failed to write parquet rows: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to close parquet writer: %w", err)
	}
	return path, nil
}

func toParquetRow(p *domain.NormalizedProperty) parquetRow {
	return parquetRow{
		Title:        p.Title,
		PriceValue:   p.PriceValue,
		Currency:     string(p.Currency),
		Neighborhood: p.Neighborhood,
		City:         p.City,
		Rooms:        intPtr32(p.Rooms),
		AreaM2:       p.AreaM2,
		Bathrooms:    intPtr32(p.Bathrooms),
		QualityScore: int32(p.QualityScore),
		QualityLevel: string(p.QualityLevel),
		URL:          p.URL,
		SourcePage:   int32(p.SourcePage),
		ScrapedAt:    p.ScrapedAt.Format(time.RFC3339),
	}
}

func intPtr32(v *int) *int32 {
	if v == nil {
		return nil
	}
	out := int32(*v)
	return &out
}
