package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ecisterna/Props-Scraper/internal/exporter"
	"github.com/ecisterna/Props-Scraper/internal/infrastructure"
	"github.com/ecisterna/Props-Scraper/internal/normalize"
	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// TransformationStage normalizes and scores every raw listing, in
// input order. A listing that yields no typed fields at all is kept
// and simply scores low; dropping records is not this stage's call.
type TransformationStage struct {
	normalizer *normalize.Normalizer
}

// NewTransformationStage creates the transformation stage.
func NewTransformationStage(normalizer *normalize.Normalizer) *TransformationStage {
	return &TransformationStage{normalizer: normalizer}
}

func (s *TransformationStage) ID() string   { return StageIDTransformation }
func (s *TransformationStage) Name() string { return StageNameTransformation }

// Validate checks the stage preconditions.
func (s *TransformationStage) Validate(state *RunState) error {
	if s.normalizer == nil {
		return fmt.Errorf("no normalizer configured")
	}
	if state.RawListings == nil && state.RawPath == "" {
		return fmt.Errorf("no raw listings and no raw dataset to replay")
	}
	return nil
}

// Execute maps raw listings to normalized properties and tallies
// per-field completeness. When the in-memory listings are absent the
// raw dataset artifact is read back, which is how replay runs work.
func (s *TransformationStage) Execute(ctx context.Context, state *RunState) error {
	logger := infrastructure.LoggerFromContext(ctx)

	listings := state.RawListings
	if listings == nil && state.RawPath != "" {
		var err error
		listings, err = exporter.ReadRawDataset(state.RawPath)
		if err != nil {
			return NewFatalError("failed to read raw dataset", err)
		}
		state.RawListings = listings
		logger.InfoContext(ctx, "raw dataset replayed",
			slog.String("path", state.RawPath),
			slog.Int("listings", len(listings)))
	}

	properties := make([]domain.NormalizedProperty, 0, len(listings))
	for i := range listings {
		p := s.normalizer.Normalize(&listings[i])
		p.QualityScore = normalize.Score(&p)
		p.QualityLevel = normalize.LevelForScore(p.QualityScore)
		properties = append(properties, p)
	}

	state.Properties = properties
	state.Completeness = completeness(properties)

	logger.InfoContext(ctx, "transformation finished",
		slog.Int("raw", len(listings)),
		slog.Int("normalized", len(properties)))
	return nil
}

// completeness tallies the fraction of non-null values per field.
func completeness(properties []domain.NormalizedProperty) map[string]float64 {
	counts := map[string]int{
		"title":        0,
		"price_value":  0,
		"neighborhood": 0,
		"city":         0,
		"rooms":        0,
		"area_m2":      0,
		"bathrooms":    0,
		"url":          0,
	}
	for i := range properties {
		p := &properties[i]
		if p.Title != "" {
			counts["title"]++
		}
		if p.PriceValue != nil {
			counts["price_value"]++
		}
		if p.Neighborhood != nil {
			counts["neighborhood"]++
		}
		if p.City != nil {
			counts["city"]++
		}
		if p.Rooms != nil {
			counts["rooms"]++
		}
		if p.AreaM2 != nil {
			counts["area_m2"]++
		}
		if p.Bathrooms != nil {
			counts["bathrooms"]++
		}
		if p.URL != "" {
			counts["url"]++
		}
	}

	result := make(map[string]float64, len(counts))
	total := len(properties)
	for field, count := range counts {
		if total == 0 {
			result[field] = 0
			continue
		}
		result[field] = float64(count) / float64(total)
	}
	return result
}
