package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// SeparatorRule decides whether a separator inside a numeric string
// groups thousands. It receives the count of digits between the
// separator and the next separator (or end of string), and whether the
// digit run ends the string. Returning false marks the separator as a
// decimal point.
type SeparatorRule func(digitsAfter int, atEnd bool) bool

// DefaultSeparatorRule treats a separator followed by exactly three
// digits and then end-of-string or another separator as a thousands
// marker. Under this rule "150.000" parses as 150000 and "85,5" as
// 85.5, matching the source site's es-AR formatting.
func DefaultSeparatorRule(digitsAfter int, atEnd bool) bool {
	return digitsAfter == 3
}

var numberPattern = regexp.MustCompile(`[0-9][0-9.,]*`)

// ParsePrice extracts a numeric amount and a currency from free-form
// price text. The currency marker is detected independently of the
// amount, so "USD Consultar" still reports dollars with a null value.
func ParsePrice(raw string, rule SeparatorRule) (*float64, domain.Currency) {
	currency := detectCurrency(raw)

	match := numberPattern.FindString(raw)
	if match == "" {
		return nil, currency
	}
	value, ok := parseNumber(match, rule)
	if !ok {
		return nil, currency
	}
	return &value, currency
}

// detectCurrency recognizes the price markers the source site uses.
// A bare "$" means dollars there, not pesos.
func detectCurrency(raw string) domain.Currency {
	upper := strings.ToUpper(raw)
	switch {
	case strings.Contains(upper, "U$S"), strings.Contains(upper, "USD"):
		return domain.CurrencyUSD
	case strings.Contains(upper, "ARS"), strings.Contains(upper, "PESO"), strings.Contains(upper, "$AR"):
		return domain.CurrencyARS
	case strings.Contains(upper, "$"):
		return domain.CurrencyUSD
	default:
		return domain.CurrencyUnknown
	}
}

// parseNumber interprets a string of digits and "."/"," separators.
// Each separator is classified by the rule; separators classified as
// decimal points keep only the last one (earlier ones are grouping
// noise in malformed input).
func parseNumber(text string, rule SeparatorRule) (float64, bool) {
	if rule == nil {
		rule = DefaultSeparatorRule
	}
	text = strings.Trim(text, ".,")

	type sep struct {
		index   int
		decimal bool
	}
	var seps []sep
	for i, r := range text {
		if r != '.' && r != ',' {
			continue
		}
		digits := 0
		for _, rr := range text[i+1:] {
			if rr == '.' || rr == ',' {
				break
			}
			digits++
		}
		atEnd := i+1+digits == len(text)
		seps = append(seps, sep{index: i, decimal: !rule(digits, atEnd)})
	}

	// Only the final decimal separator survives.
	lastDecimal := -1
	for _, s := range seps {
		if s.decimal {
			lastDecimal = s.index
		}
	}

	var b strings.Builder
	for i, r := range text {
		switch r {
		case '.', ',':
			if i == lastDecimal {
				b.WriteByte('.')
			}
		default:
			b.WriteRune(r)
		}
	}

	value, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return value, true
}
