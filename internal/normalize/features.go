package normalize

import (
	"regexp"
	"strconv"
)

// The feature patterns mirror the abbreviations the source site uses
// in its card summaries ("3 amb", "85 m²", "2 baños").
var (
	roomsPattern     = regexp.MustCompile(`(?i)(\d+)\s*(?:amb|dor|hab|cuarto)`)
	areaPattern      = regexp.MustCompile(`(?i)(\d+(?:[.,]\d+)?)\s*(?:m²|m2|mts|metros)`)
	bathroomsPattern = regexp.MustCompile(`(?i)(\d+)\s*(?:baño|bath)`)
)

// ParseFeatures extracts rooms, area and bathrooms from free-form
// feature text. The three quantities are matched independently, so a
// missing one never blocks the others.
func ParseFeatures(raw string, rule SeparatorRule) (rooms *int, areaM2 *float64, bathrooms *int) {
	if m := roomsPattern.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			rooms = &v
		}
	}
	if m := areaPattern.FindStringSubmatch(raw); m != nil {
		if v, ok := parseNumber(m[1], rule); ok {
			areaM2 = &v
		}
	}
	if m := bathroomsPattern.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.Atoi(m[1]); err == nil {
			bathrooms = &v
		}
	}
	return rooms, areaM2, bathrooms
}
