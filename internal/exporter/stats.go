package exporter

import (
	"sort"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// PriceStats aggregates the prices observed for one currency.
type PriceStats struct {
	Count   int     `json:"count"`
	Average float64 `json:"average"`
	Median  float64 `json:"median"`
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
}

// Statistics is the aggregate view of one normalized dataset, written
// to the spreadsheet statistics sheet and the metadata artifact.
type Statistics struct {
	TotalRecords        int                            `json:"total_records"`
	AverageQuality      float64                        `json:"average_quality"`
	PriceByCurrency     map[domain.Currency]PriceStats `json:"price_by_currency"`
	QualityDistribution map[domain.QualityLevel]int    `json:"quality_distribution"`
	CompletenessByField map[string]float64             `json:"completeness_by_field"`
}

// ComputeStatistics derives the dataset statistics. Records without a
// price do not contribute to the price aggregates of any currency.
func ComputeStatistics(properties []domain.NormalizedProperty, completeness map[string]float64) *Statistics {
	stats := &Statistics{
		TotalRecords:        len(properties),
		PriceByCurrency:     make(map[domain.Currency]PriceStats),
		QualityDistribution: make(map[domain.QualityLevel]int),
		CompletenessByField: completeness,
	}
	if stats.CompletenessByField == nil {
		stats.CompletenessByField = map[string]float64{}
	}

	pricesByCurrency := make(map[domain.Currency][]float64)
	qualitySum := 0
	for i := range properties {
		p := &properties[i]
		qualitySum += p.QualityScore
		stats.QualityDistribution[p.QualityLevel]++
		if p.PriceValue != nil {
			pricesByCurrency[p.Currency] = append(pricesByCurrency[p.Currency], *p.PriceValue)
		}
	}

	if len(properties) > 0 {
		stats.AverageQuality = float64(qualitySum) / float64(len(properties))
	}
	for currency, prices := range pricesByCurrency {
		stats.PriceByCurrency[currency] = priceStats(prices)
	}
	return stats
}

func priceStats(prices []float64) PriceStats {
	sorted := make([]float64, len(prices))
	copy(sorted, prices)
	sort.Float64s(sorted)

	sum := 0.0
	for _, p := range sorted {
		sum += p
	}

	return PriceStats{
		Count:   len(sorted),
		Average: sum / float64(len(sorted)),
		Median:  median(sorted),
		Min:     sorted[0],
		Max:     sorted[len(sorted)-1],
	}
}

// median expects a sorted slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}
