package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

func sampleProperties() []domain.NormalizedProperty {
	return []domain.NormalizedProperty{
		{
			Title:        "Depto Palermo",
			PriceValue:   floatPtr(100000),
			Currency:     domain.CurrencyUSD,
			QualityScore: 100,
			QualityLevel: domain.QualityHigh,
		},
		{
			Title:        "Depto Belgrano",
			PriceValue:   floatPtr(200000),
			Currency:     domain.CurrencyUSD,
			QualityScore: 80,
			QualityLevel: domain.QualityHigh,
		},
		{
			Title:        "PH Caballito",
			PriceValue:   floatPtr(150000),
			Currency:     domain.CurrencyUSD,
			QualityScore: 55,
			QualityLevel: domain.QualityMedium,
		},
		{
			Title:        "Casa Quilmes",
			PriceValue:   floatPtr(50000000),
			Currency:     domain.CurrencyARS,
			QualityScore: 45,
			QualityLevel: domain.QualityLow,
		},
		{
			Title:        "Sin precio",
			Currency:     domain.CurrencyUnknown,
			QualityScore: 20,
			QualityLevel: domain.QualityLow,
		},
	}
}

func TestComputeStatistics(t *testing.T) {
	completeness := map[string]float64{"price_value": 0.8}
	stats := ComputeStatistics(sampleProperties(), completeness)

	assert.Equal(t, 5, stats.TotalRecords)
	assert.InDelta(t, 60.0, stats.AverageQuality, 0.001)

	usd, ok := stats.PriceByCurrency[domain.CurrencyUSD]
	require.True(t, ok)
	assert.Equal(t, 3, usd.Count)
	assert.InDelta(t, 150000.0, usd.Average, 0.001)
	assert.InDelta(t, 150000.0, usd.Median, 0.001)
	assert.InDelta(t, 100000.0, usd.Min, 0.001)
	assert.InDelta(t, 200000.0, usd.Max, 0.001)

	ars, ok := stats.PriceByCurrency[domain.CurrencyARS]
	require.True(t, ok)
	assert.Equal(t, 1, ars.Count)
	assert.InDelta(t, 50000000.0, ars.Median, 0.001)

	// The unpriced record contributes to no currency bucket.
	_, ok = stats.PriceByCurrency[domain.CurrencyUnknown]
	assert.False(t, ok)

	assert.Equal(t, 2, stats.QualityDistribution[domain.QualityHigh])
	assert.Equal(t, 1, stats.QualityDistribution[domain.QualityMedium])
	assert.Equal(t, 2, stats.QualityDistribution[domain.QualityLow])

	assert.Equal(t, completeness, stats.CompletenessByField)
}

func TestComputeStatisticsEmpty(t *testing.T) {
	stats := ComputeStatistics(nil, nil)

	assert.Equal(t, 0, stats.TotalRecords)
	assert.Zero(t, stats.AverageQuality)
	assert.Empty(t, stats.PriceByCurrency)
	assert.NotNil(t, stats.CompletenessByField)
}

func TestMedianEvenCount(t *testing.T) {
	ps := priceStats([]float64{100, 200, 300, 400})
	assert.InDelta(t, 250.0, ps.Median, 0.001)
	assert.InDelta(t, 250.0, ps.Average, 0.001)
}

func floatPtr(v float64) *float64 { return &v }
