package scraper

import (
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/ecisterna/Props-Scraper/pkg/contracts/domain"
)

// Parser extracts raw listings from catalog page markup. A block
// missing an element yields an empty field, never an error: the
// normalizer downstream treats empty text as null.
type Parser struct {
	baseURL *url.URL
	now     func() time.Time
}

// NewParser creates a Parser that resolves relative listing links
// against the given base URL.
func NewParser(baseURL string) *Parser {
	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}
	return &Parser{baseURL: base, now: time.Now}
}

// ParseListings extracts every recognizable listing block from one
// page. Zero blocks is a normal outcome that signals end of results.
// Malformed markup never aborts the page: goquery parses what it can.
func (p *Parser) ParseListings(html string, page int) []domain.RawListing {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	blocks := doc.Find("div.listing__item")
	if blocks.Length() == 0 {
		blocks = doc.Find("div.listing__items div.card")
	}

	scrapedAt := p.now()
	listings := make([]domain.RawListing, 0, blocks.Length())
	blocks.Each(func(_ int, block *goquery.Selection) {
		listings = append(listings, p.parseBlock(block, page, scrapedAt))
	})
	return listings
}

func (p *Parser) parseBlock(block *goquery.Selection, page int, scrapedAt time.Time) domain.RawListing {
	listing := domain.RawListing{
		Title:       strings.TrimSpace(block.Find("h2.card__title").First().Text()),
		RawPrice:    strings.TrimSpace(block.Find("p.card__price").First().Text()),
		RawLocation: strings.TrimSpace(block.Find("p.card__address").First().Text()),
		PageNumber:  page,
		ScrapedAt:   scrapedAt,
	}
	if listing.RawLocation == "" {
		listing.RawLocation = strings.TrimSpace(block.Find("p.card__location").First().Text())
	}

	var features []string
	block.Find("div.card__features span").Each(func(_ int, span *goquery.Selection) {
		if text := strings.TrimSpace(span.Text()); text != "" {
			features = append(features, text)
		}
	})
	listing.RawFeatures = strings.Join(features, ", ")

	if href, ok := block.Find("a[href]").First().Attr("href"); ok {
		listing.URL = p.resolveURL(href)
	}

	block.Find("img").Each(func(_ int, img *goquery.Selection) {
		src, ok := img.Attr("src")
		if !ok || src == "" {
			src, ok = img.Attr("data-src")
		}
		if ok && src != "" {
			listing.ImageURLs = append(listing.ImageURLs, p.resolveURL(src))
		}
	})

	return listing
}

// resolveURL makes a listing link absolute. Unparsable links are kept
// verbatim so nothing is silently dropped.
func (p *Parser) resolveURL(href string) string {
	if p.baseURL == nil {
		return href
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return p.baseURL.ResolveReference(ref).String()
}
