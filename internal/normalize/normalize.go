// Package normalize turns raw scraped text into typed property fields.
// Every parser here is total: unparsable input yields nil fields, never
// an error, so one malformed listing cannot take down a run.
package normalize

import (
	"strings"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// Normalizer converts RawListing records into NormalizedProperty
// records. The separator rule is injectable so the locale heuristic
// for prices can be replaced without touching the parsers.
type Normalizer struct {
	rule SeparatorRule
}

// NewNormalizer returns a Normalizer using the default es-AR separator
// heuristic.
func NewNormalizer() *Normalizer {
	return &Normalizer{rule: DefaultSeparatorRule}
}

// NewNormalizerWithRule returns a Normalizer using a custom separator
// rule.
func NewNormalizerWithRule(rule SeparatorRule) *Normalizer {
	if rule == nil {
		rule = DefaultSeparatorRule
	}
	return &Normalizer{rule: rule}
}

// Normalize derives the typed fields of one listing. The quality score
// is left at zero; scoring is a separate pass owned by the
// transformation stage.
func (n *Normalizer) Normalize(raw *domain.RawListing) domain.NormalizedProperty {
	price, currency := ParsePrice(raw.RawPrice, n.rule)
	neighborhood, city := SplitLocation(raw.RawLocation)
	rooms, area, bathrooms := ParseFeatures(raw.RawFeatures, n.rule)

	return domain.NormalizedProperty{
		Title:        strings.TrimSpace(raw.Title),
		PriceValue:   price,
		Currency:     currency,
		Neighborhood: neighborhood,
		City:         city,
		Rooms:        rooms,
		AreaM2:       area,
		Bathrooms:    bathrooms,
		URL:          raw.URL,
		SourcePage:   raw.PageNumber,
		ScrapedAt:    raw.ScrapedAt,
	}
}
