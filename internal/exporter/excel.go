package exporter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// Sheet names of the spreadsheet artifact.
const (
	sheetData       = "Properties"
	sheetStatistics = "Statistics"
	sheetQuality    = "Data Quality"
)

// ExportExcel writes the dataset as a workbook with a data sheet, a
// statistics sheet and a data-quality sheet.
func (e *Exporter) ExportExcel(properties []domain.NormalizedProperty, stats *Statistics, date time.Time) (string, error) {
	path := e.exportPath(date, "xlsx")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := writeDataSheet(f, properties); err != nil {
		return "", err
	}
	if err := writeStatisticsSheet(f, stats); err != nil {
		return "", err
	}
	if err := writeQualitySheet(f, stats); err != nil {
		return "", err
	}

	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("failed to save workbook: %w", err)
	}
	return path, nil
}

func writeDataSheet(f *excelize.File, properties []domain.NormalizedProperty) error {
	if err := f.SetSheetName("Sheet1", sheetData); err != nil {
		return fmt.Errorf("failed to rename data sheet: %w", err)
	}

	headers := make([]any, len(csvHeaders))
	for i, h := range csvHeaders {
		headers[i] = h
	}
	if err := f.SetSheetRow(sheetData, "A1", &headers); err != nil {
		return fmt.Errorf("failed to write data headers: %w", err)
	}

	for i := range properties {
		cells := propertyToRow(&properties[i])
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(sheetData, cell, &row); err != nil {
			return fmt.Errorf("failed to write data row %d: %w", i, err)
		}
	}
	return nil
}

func writeStatisticsSheet(f *excelize.File, stats *Statistics) error {
	if _, err := f.NewSheet(sheetStatistics); err != nil {
		return fmt.Errorf("failed to create statistics sheet: %w", err)
	}

	rows := [][]any{
		{"metric", "value"},
		{"total_records", stats.TotalRecords},
		{"average_quality", stats.AverageQuality},
	}
	for _, currency := range sortedCurrencies(stats.PriceByCurrency) {
		ps := stats.PriceByCurrency[currency]
		prefix := fmt.Sprintf("price_%s", currency)
		rows = append(rows,
			[]any{prefix + "_count", ps.Count},
			[]any{prefix + "_average", ps.Average},
			[]any{prefix + "_median", ps.Median},
			[]any{prefix + "_min", ps.Min},
			[]any{prefix + "_max", ps.Max},
		)
	}

	return writeRows(f, sheetStatistics, rows)
}

func writeQualitySheet(f *excelize.File, stats *Statistics) error {
	if _, err := f.NewSheet(sheetQuality); err != nil {
		return fmt.Errorf("failed to create quality sheet: %w", err)
	}

	rows := [][]any{{"level", "count"}}
	for _, level := range []domain.QualityLevel{domain.QualityHigh, domain.QualityMedium, domain.QualityLow} {
		rows = append(rows, []any{string(level), stats.QualityDistribution[level]})
	}

	rows = append(rows, []any{}, []any{"field", "completeness"})
	for _, field := range sortedFields(stats.CompletenessByField) {
		rows = append(rows, []any{field, stats.CompletenessByField[field]})
	}

	return writeRows(f, sheetQuality, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i := range rows {
		if len(rows[i]) == 0 {
			continue
		}
		cell := fmt.Sprintf("A%d", i+1)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i, err)
		}
	}
	return nil
}

func sortedCurrencies(m map[domain.Currency]PriceStats) []domain.Currency {
	out := make([]domain.Currency, 0, len(m))
	for c := range m {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func sortedFields(m map[string]float64) []string {
	out := make([]string, 0, len(m))
	for f := range m {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}
