package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

func TestScore(t *testing.T) {
	full := domain.NormalizedProperty{
		PriceValue:   floatPtr(150000),
		Neighborhood: strPtr("Palermo"),
		City:         strPtr("Capital Federal"),
		Rooms:        intPtr(3),
		AreaM2:       floatPtr(85),
		URL:          "https://www.argenprop.com/departamento-x",
	}

	tests := []struct {
		name   string
		mutate func(*domain.NormalizedProperty)
		want   int
	}{
		{
			name:   "complete record scores 100",
			mutate: func(p *domain.NormalizedProperty) {},
			want:   100,
		},
		{
			name:   "missing price",
			mutate: func(p *domain.NormalizedProperty) { p.PriceValue = nil },
			want:   70,
		},
		{
			name:   "zero price does not count",
			mutate: func(p *domain.NormalizedProperty) { p.PriceValue = floatPtr(0) },
			want:   70,
		},
		{
			name:   "missing city halves nothing, location is all or nothing",
			mutate: func(p *domain.NormalizedProperty) { p.City = nil },
			want:   75,
		},
		{
			name:   "only rooms gives partial characteristics credit",
			mutate: func(p *domain.NormalizedProperty) { p.AreaM2 = nil },
			want:   87,
		},
		{
			name:   "only area gives partial characteristics credit",
			mutate: func(p *domain.NormalizedProperty) { p.Rooms = nil },
			want:   87,
		},
		{
			name: "no characteristics",
			mutate: func(p *domain.NormalizedProperty) {
				p.Rooms = nil
				p.AreaM2 = nil
			},
			want: 75,
		},
		{
			name:   "relative url is not a valid link",
			mutate: func(p *domain.NormalizedProperty) { p.URL = "/departamento-x" },
			want:   80,
		},
		{
			name: "empty record scores zero",
			mutate: func(p *domain.NormalizedProperty) {
				*p = domain.NormalizedProperty{}
			},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := full
			tt.mutate(&p)
			got := Score(&p)
			assert.Equal(t, tt.want, got)
			assert.GreaterOrEqual(t, got, 0)
			assert.LessOrEqual(t, got, 100)
		})
	}
}

func TestLevelForScore(t *testing.T) {
	tests := []struct {
		score int
		want  domain.QualityLevel
	}{
		{100, domain.QualityHigh},
		{80, domain.QualityHigh},
		{79, domain.QualityMedium},
		{50, domain.QualityMedium},
		{49, domain.QualityLow},
		{0, domain.QualityLow},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, LevelForScore(tt.score), "score %d", tt.score)
	}
}
