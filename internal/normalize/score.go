package normalize

import (
	"net/url"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// Sub-scores summed into the 0-100 quality score.
const (
	scorePrice           = 30
	scoreLocation        = 25
	scoreFeaturesFull    = 25
	scoreFeaturesPartial = 12
	scoreLink            = 20

	levelHighMin   = 80
	levelMediumMin = 50
)

// Score computes the data quality score of a normalized property.
// It is a pure function of the typed fields.
func Score(p *domain.NormalizedProperty) int {
	score := 0
	if p.PriceValue != nil && *p.PriceValue > 0 {
		score += scorePrice
	}
	if p.Neighborhood != nil && p.City != nil {
		score += scoreLocation
	}
	switch {
	case p.Rooms != nil && p.AreaM2 != nil:
		score += scoreFeaturesFull
	case p.Rooms != nil || p.AreaM2 != nil:
		score += scoreFeaturesPartial
	}
	if validLink(p.URL) {
		score += scoreLink
	}
	return score
}

// LevelForScore buckets a quality score into the three levels.
func LevelForScore(score int) domain.QualityLevel {
	switch {
	case score >= levelHighMin:
		return domain.QualityHigh
	case score >= levelMediumMin:
		return domain.QualityMedium
	default:
		return domain.QualityLow
	}
}

func validLink(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && u.Scheme != "" && u.Host != ""
}
