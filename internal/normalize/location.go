package normalize

import "strings"

// SplitLocation splits free-form location text on the first comma into
// neighborhood and city. Text without a comma is taken as the city
// alone. Empty segments become nil.
func SplitLocation(raw string) (neighborhood, city *string) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}

	before, after, found := strings.Cut(raw, ",")
	if !found {
		return nil, nonEmpty(before)
	}
	return nonEmpty(before), nonEmpty(after)
}

func nonEmpty(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
