package domain

import (
	"time"
)

// Currency identifies the currency recovered from a raw price string.
type Currency string

const (
	CurrencyUSD     Currency = "USD"
	CurrencyARS     Currency = "ARS"
	CurrencyUnknown Currency = "unknown"
)

// QualityLevel is the three-bucket classification derived from the
// numeric quality score.
type QualityLevel string

const (
	QualityHigh   QualityLevel = "high"
	QualityMedium QualityLevel = "medium"
	QualityLow    QualityLevel = "low"
)

// RawListing is one scraped record exactly as extracted from a listing
// block. Free-text fields are kept verbatim; typed values are produced
// later by the normalizer. A RawListing is never mutated after the
// parser creates it.
type RawListing struct {
	Title       string    `json:"title"`
	RawPrice    string    `json:"raw_price"`
	RawLocation string    `json:"raw_location"`
	RawFeatures string    `json:"raw_features"`
	URL         string    `json:"url"`
	ImageURLs   []string  `json:"image_urls,omitempty"`
	PageNumber  int       `json:"page_number"`
	ScrapedAt   time.Time `json:"scraped_at"`
}

// NormalizedProperty is derived from exactly one RawListing. Nullable
// fields are pointers: nil means the value could not be recovered from
// the source text. QualityScore is computed once during transformation
// and never mutated afterward.
type NormalizedProperty struct {
	Title        string       `json:"title"`
	PriceValue   *float64     `json:"price_value,omitempty"`
	Currency     Currency     `json:"currency"`
	Neighborhood *string      `json:"neighborhood,omitempty"`
	City         *string      `json:"city,omitempty"`
	Rooms        *int         `json:"rooms,omitempty"`
	AreaM2       *float64     `json:"area_m2,omitempty"`
	Bathrooms    *int         `json:"bathrooms,omitempty"`
	URL          string       `json:"url"`
	QualityScore int          `json:"quality_score"`
	QualityLevel QualityLevel `json:"quality_level"`
	SourcePage   int          `json:"source_page"`
	ScrapedAt    time.Time    `json:"scraped_at"`
}
