package sources

import (
	"regexp"
	"strconv"
	"strings"

	"rental-radar/internal/models"
)

// Rules describes one source's markup conventions declaratively. Adding a
// source means adding a Rules value and registering it; the extraction engine
// in parser.go is shared.
type Rules struct {
	// Key is the short name used in configuration and CLI source selection.
	Key string
	// Name is the provenance label recorded on extracted listings.
	Name string
	// BaseURL prefixes the relative detail paths found in the page.
	BaseURL string
	// LinkRe matches a listing-detail path inside an href value. The first
	// capture group is the path.
	LinkRe *regexp.Regexp
	// MinSlashes excludes pagination and city-index paths: a detail path must
	// contain at least this many "/" separators.
	MinSlashes int
	// CitySegment is the path-segment index carrying the city name, or -1
	// when the source lists a single city and the configured city applies.
	CitySegment int
}

// contextRule binds a field to the pattern that extracts it from the text
// window around a listing link. Rules are applied in order; a failed match
// leaves the field at its default.
type contextRule struct {
	field string
	re    *regexp.Regexp
}

// Shared field patterns. The sites are all Dutch-market, so the phrasing
// differs per site only in which keywords appear, which the alternations
// cover.
var contextRules = []contextRule{
	{"price", regexp.MustCompile(`€\s*([\d.,]+)`)},
	{"rooms", regexp.MustCompile(`(?i)(\d+)\s*(?:slaapkamers?|kamers?|bedrooms?|rooms?)`)},
	{"area", regexp.MustCompile(`(\d+)\s*m[²2]`)},
	{"postal", regexp.MustCompile(`(\d{4}\s*[A-Z]{2})`)},
}

var gardenSizeRe = regexp.MustCompile(`(?i)tuin[^\d]*(\d+)\s*m[²2]`)

var gardenWords = []string{
	"tuin", "garden", "achtertuin", "voortuin", "zijtuin", "tuinkamer",
}

var balconyWords = []string{
	"balkon", "balcony", "terras", "dakterras", "loggia",
}

// extractFields runs the context rules over a text window and returns the raw
// captures keyed by field name. Missing fields are absent from the map.
func extractFields(context string) map[string]string {
	fields := make(map[string]string, len(contextRules))
	for _, rule := range contextRules {
		if m := rule.re.FindStringSubmatch(context); len(m) > 1 {
			fields[rule.field] = m[1]
		}
	}
	return fields
}

// parsePrice normalizes a Dutch-locale amount ("1.800" or "1.800,50") to a
// whole-euro integer. Returns 0 when no positive amount can be parsed.
func parsePrice(raw string) int {
	raw = strings.ReplaceAll(raw, ".", "")
	if i := strings.Index(raw, ","); i >= 0 {
		raw = raw[:i]
	}
	price, err := strconv.Atoi(raw)
	if err != nil || price <= 0 {
		return 0
	}
	return price
}

// detectStatus downgrades the default availability when the context mentions
// an option or a completed rental, checked in that priority order.
func detectStatus(context string) models.ListingStatus {
	lower := strings.ToLower(context)
	if strings.Contains(lower, "onder optie") || strings.Contains(lower, "under option") {
		return models.StatusUnderOption
	}
	if strings.Contains(lower, "verhuurd") || strings.Contains(lower, "rented") {
		return models.StatusRented
	}
	return models.StatusAvailable
}

// detectOutdoor reports garden and balcony keyword presence, plus a garden
// size when one follows a garden keyword.
func detectOutdoor(context string) (hasGarden, hasBalcony bool, gardenSize *int) {
	lower := strings.ToLower(context)

	for _, w := range gardenWords {
		if strings.Contains(lower, w) {
			hasGarden = true
			break
		}
	}
	for _, w := range balconyWords {
		if strings.Contains(lower, w) {
			hasBalcony = true
			break
		}
	}

	if hasGarden {
		if m := gardenSizeRe.FindStringSubmatch(lower); len(m) > 1 {
			if size, err := strconv.Atoi(m[1]); err == nil {
				gardenSize = &size
			}
		}
	}
	return hasGarden, hasBalcony, gardenSize
}

// addressFromPath derives the display address from the last path segment of a
// detail URL: punctuation becomes spaces and words are title-cased.
func addressFromPath(path string) string {
	path = strings.TrimSuffix(path, "/")
	segments := strings.Split(path, "/")
	if len(segments) == 0 {
		return ""
	}
	last := segments[len(segments)-1]
	last = strings.NewReplacer("-", " ", "_", " ", ".", " ").Replace(last)
	return titleCase(last)
}

// citySegment returns the path segment at the given index, title-cased, or ""
// when the path is too short.
func citySegment(path string, index int) string {
	segments := strings.Split(strings.TrimSuffix(path, "/"), "/")
	if index < 0 || index >= len(segments) {
		return ""
	}
	return titleCase(segments[index])
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
