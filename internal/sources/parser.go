// Package sources turns raw page markup from the supported rental sites into
// candidate listings. Each source contributes a Rules value; the extraction
// engine here is shared. Parsers never return errors: unparseable input
// yields an empty candidate list and a failed field falls back to its
// default, except that a candidate without a positive price is dropped.
package sources

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"rental-radar/internal/config"
	"rental-radar/internal/models"
	"rental-radar/internal/normalize"
	"rental-radar/internal/score"
)

// Context window around a link's first occurrence. Wide enough to cover the
// listing card the link belongs to, narrow enough to avoid picking up fields
// from neighbouring cards.
const (
	contextBefore = 300
	contextAfter  = 2000
)

// Parser extracts candidate listings for one source.
type Parser struct {
	rules    Rules
	criteria config.Criteria
	weights  config.Weights
}

// NewParser builds a parser from a source's rules and the run configuration.
func NewParser(rules Rules, criteria config.Criteria, weights config.Weights) *Parser {
	return &Parser{rules: rules, criteria: criteria, weights: weights}
}

// Name returns the provenance label this parser stamps on listings.
func (p *Parser) Name() string {
	return p.rules.Name
}

// Parse extracts candidate listings from a result page. Candidates come out
// in the order their links first appear in the page, which keeps the
// downstream first-arrival dedup tie-break deterministic.
func (p *Parser) Parse(html string, now time.Time) []models.Listing {
	paths := p.listingPaths(html)
	if len(paths) == 0 {
		return nil
	}
	log.Printf("[%s] Found %d listing paths", p.rules.Name, len(paths))

	listings := make([]models.Listing, 0, len(paths))
	for _, path := range paths {
		if listing, ok := p.extract(html, path, now); ok {
			listings = append(listings, listing)
		}
	}
	return listings
}

// listingPaths enumerates distinct listing-detail paths in document order.
func (p *Parser) listingPaths(html string) []string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		log.Printf("[%s] Unparseable page: %v", p.rules.Name, err)
		return nil
	}

	var paths []string
	seen := make(map[string]bool)

	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		m := p.rules.LinkRe.FindStringSubmatch(href)
		if len(m) < 2 {
			return
		}
		path := m[1]

		// Pagination and city-index pages have shallow paths.
		if strings.Count(path, "/") < p.rules.MinSlashes {
			return
		}
		if !seen[path] {
			seen[path] = true
			paths = append(paths, path)
		}
	})

	return paths
}

// extract builds one candidate from the text window around the path's first
// occurrence in the page. Returns false only when no positive price was
// found; every other extraction failure degrades to the field's default.
func (p *Parser) extract(html, path string, now time.Time) (models.Listing, bool) {
	pos := strings.Index(html, path)
	if pos < 0 {
		return models.Listing{}, false
	}

	start := pos - contextBefore
	if start < 0 {
		start = 0
	}
	end := pos + contextAfter
	if end > len(html) {
		end = len(html)
	}
	context := html[start:end]

	fields := extractFields(context)

	price := parsePrice(fields["price"])
	if price <= 0 {
		return models.Listing{}, false
	}

	rooms := 0
	if raw, ok := fields["rooms"]; ok {
		rooms = atoiDefault(raw, 0)
	}

	var area *int
	if raw, ok := fields["area"]; ok {
		if v := atoiDefault(raw, 0); v > 0 {
			area = &v
		}
	}

	city := p.criteria.City
	if p.rules.CitySegment >= 0 {
		if c := citySegment(path, p.rules.CitySegment); c != "" {
			city = c
		}
	}

	address := addressFromPath(path)
	if address == "" {
		return models.Listing{}, false
	}

	hasGarden, hasBalcony, gardenSize := detectOutdoor(context)

	fullURL := p.rules.BaseURL + path

	snippet := context
	if len(snippet) > 200 {
		snippet = snippet[:200]
	}

	listing := models.Listing{
		ID:                 models.ListingID(p.rules.Name, fullURL),
		Source:             p.rules.Name,
		URL:                fullURL,
		Address:            address,
		City:               city,
		PostalCode:         strings.TrimSpace(fields["postal"]),
		Price:              price,
		PriceLabel:         models.FormatPriceLabel(price),
		Bedrooms:           rooms,
		AreaM2:             area,
		Status:             detectStatus(context),
		HasGarden:          hasGarden,
		HasBalcony:         hasBalcony,
		GardenSizeM2:       gardenSize,
		DescriptionSnippet: strings.ReplaceAll(snippet, "\n", " "),
		SeenOnSources:      models.StringSlice{p.rules.Name},
		FirstSeen:          now,
	}
	listing.NormalizedAddress = normalize.Address(listing.Address, p.criteria.City)

	// Score immediately so later stages never observe an unscored record.
	score.Apply(&listing, p.criteria, p.weights)

	return listing, true
}

func atoiDefault(s string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return def
	}
	return v
}
