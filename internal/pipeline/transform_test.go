package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ecisterna/Props-Scraper/internal/exporter"
	"github.com/ecisterna/Props-Scraper/internal/normalize"
	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

func rawFixture() []domain.RawListing {
	scrapedAt := time.Date(2026, 8, 29, 9, 0, 0, 0, time.UTC)
	return []domain.RawListing{
		{
			Title:       "Departamento en Palermo",
			RawPrice:    "USD 150.000",
			RawLocation: "Palermo, Capital Federal",
			RawFeatures: "3 amb, 85 m²",
			URL:         "https://www.argenprop.com/depto-1",
			PageNumber:  1,
			ScrapedAt:   scrapedAt,
		},
		{
			Title:      "Aviso sin datos",
			RawPrice:   "Consultar",
			PageNumber: 1,
			ScrapedAt:  scrapedAt,
		},
		{
			Title:       "PH en Belgrano",
			RawPrice:    "$ 98.000",
			RawLocation: "Belgrano",
			RawFeatures: "2 amb",
			URL:         "https://www.argenprop.com/ph-2",
			PageNumber:  2,
			ScrapedAt:   scrapedAt,
		},
	}
}

func TestTransformation(t *testing.T) {
	stage := NewTransformationStage(normalize.NewNormalizer())
	state := NewRunState("run-1")
	state.RawListings = rawFixture()

	require.NoError(t, stage.Execute(context.Background(), state))
	require.Len(t, state.Properties, 3)

	// Output order matches input order.
	assert.Equal(t, "Departamento en Palermo", state.Properties[0].Title)
	assert.Equal(t, "Aviso sin datos", state.Properties[1].Title)
	assert.Equal(t, "PH en Belgrano", state.Properties[2].Title)

	first := state.Properties[0]
	require.NotNil(t, first.PriceValue)
	assert.InDelta(t, 150000.0, *first.PriceValue, 0.001)
	assert.Equal(t, 100, first.QualityScore)
	assert.Equal(t, domain.QualityHigh, first.QualityLevel)

	// The all-null record is kept, just scored low.
	second := state.Properties[1]
	assert.Nil(t, second.PriceValue)
	assert.Equal(t, 0, second.QualityScore)
	assert.Equal(t, domain.QualityLow, second.QualityLevel)

	third := state.Properties[2]
	assert.Equal(t, domain.CurrencyUSD, third.Currency)
	assert.Nil(t, third.Neighborhood)
	require.NotNil(t, third.City)
	assert.Equal(t, "Belgrano", *third.City)

	// Completeness tallies non-null fractions per field.
	assert.InDelta(t, 2.0/3.0, state.Completeness["price_value"], 0.001)
	assert.InDelta(t, 1.0/3.0, state.Completeness["neighborhood"], 0.001)
	assert.InDelta(t, 2.0/3.0, state.Completeness["city"], 0.001)
	assert.InDelta(t, 2.0/3.0, state.Completeness["rooms"], 0.001)
	assert.InDelta(t, 1.0/3.0, state.Completeness["area_m2"], 0.001)
	assert.InDelta(t, 0.0, state.Completeness["bathrooms"], 0.001)
	assert.InDelta(t, 1.0, state.Completeness["title"], 0.001)
}

func TestTransformationReplaysRawDataset(t *testing.T) {
	rawPath := t.TempDir() + "/raw.json"
	require.NoError(t, exporter.WriteJSONFile(rawPath, rawFixture()))

	stage := NewTransformationStage(normalize.NewNormalizer())
	state := NewRunState("run-2")
	state.RawPath = rawPath

	require.NoError(t, stage.Execute(context.Background(), state))
	assert.Len(t, state.RawListings, 3)
	assert.Len(t, state.Properties, 3)
}

func TestTransformationEmptyDataset(t *testing.T) {
	stage := NewTransformationStage(normalize.NewNormalizer())
	state := NewRunState("run-3")
	state.RawListings = []domain.RawListing{}

	require.NoError(t, stage.Execute(context.Background(), state))
	assert.Empty(t, state.Properties)
	assert.Zero(t, state.Completeness["price_value"])
}

func TestTransformationValidate(t *testing.T) {
	stage := NewTransformationStage(normalize.NewNormalizer())

	state := NewRunState("run-4")
	assert.Error(t, stage.Validate(state))

	state.RawPath = "somewhere/raw.json"
	assert.NoError(t, stage.Validate(state))
}
