package sources

import (
	"fmt"
	"regexp"
	"strings"

	"rental-radar/internal/config"
)

// Source pairs a configured search URL with the parser for one site. The
// pipeline queries sources strictly in registry order so the first-arrival
// dedup tie-break stays deterministic across runs.
type Source struct {
	Key    string
	Name   string
	URL    string
	Parser *Parser
}

var pararius = Rules{
	Key:         "pararius",
	Name:        "pararius",
	BaseURL:     "https://www.pararius.nl",
	LinkRe:      regexp.MustCompile(`(/(?:huis|appartement|studio|woning|kamer)-te-huur/[^"?#]+)`),
	MinSlashes:  4,
	CitySegment: -1,
}

var huurwoningen = Rules{
	Key:     "huurwoningen",
	Name:    "huurwoningen.nl",
	BaseURL: "https://www.huurwoningen.nl",
	LinkRe:  regexp.MustCompile(`(/huren/[a-z-]+/[a-f0-9]+/[^/"?#]+/?)`),
	// Paths look like /huren/<city>/<id>/<street>/ — anything shallower is an
	// index page.
	MinSlashes:  4,
	CitySegment: 2,
}

var directwonen = Rules{
	Key:         "directwonen",
	Name:        "directwonen.nl",
	BaseURL:     "https://www.directwonen.nl",
	LinkRe:      regexp.MustCompile(`(/huurwoning/[^"?#]+)`),
	MinSlashes:  2,
	CitySegment: -1,
}

var vbo = Rules{
	Key:         "vbo",
	Name:        "vbo-makelaars",
	BaseURL:     "https://www.vbo.nl",
	LinkRe:      regexp.MustCompile(`(/huurwoning/[^"?#]+)`),
	MinSlashes:  2,
	CitySegment: -1,
}

// registry is the fixed source order. Do not reorder: canonical-record
// selection depends on it.
var registry = []Rules{pararius, huurwoningen, directwonen, vbo}

// All returns every supported source with its search URL and parser, in the
// fixed registry order.
func All(cfg *config.Config) []Source {
	out := make([]Source, 0, len(registry))
	for _, rules := range registry {
		out = append(out, Source{
			Key:    rules.Key,
			Name:   rules.Name,
			URL:    searchURL(rules.Key, cfg.Criteria),
			Parser: NewParser(rules, cfg.Criteria, cfg.Weights),
		})
	}
	return out
}

// Select filters the registry down to the requested source keys, preserving
// registry order. An unknown key is reported without disturbing the others.
func Select(cfg *config.Config, keys []string) ([]Source, []error) {
	if len(keys) == 0 {
		return All(cfg), nil
	}

	wanted := make(map[string]bool, len(keys))
	for _, k := range keys {
		wanted[strings.ToLower(strings.TrimSpace(k))] = true
	}

	var selected []Source
	for _, s := range All(cfg) {
		if wanted[s.Key] {
			selected = append(selected, s)
			delete(wanted, s.Key)
		}
	}

	var errs []error
	for k := range wanted {
		errs = append(errs, fmt.Errorf("unknown source %q", k))
	}
	return selected, errs
}

// searchURL builds the city-scoped result-page URL for a source.
func searchURL(key string, criteria config.Criteria) string {
	city := strings.ToLower(criteria.City)
	switch key {
	case "pararius":
		return fmt.Sprintf("https://www.pararius.nl/huurwoningen/%s/%d-%d", city, criteria.MinPrice, criteria.MaxPrice)
	case "huurwoningen":
		return fmt.Sprintf("https://www.huurwoningen.nl/in/%s/", city)
	case "directwonen":
		return fmt.Sprintf("https://www.directwonen.nl/huurwoningen/%s/", city)
	case "vbo":
		return fmt.Sprintf("https://www.vbo.nl/huurwoning/%s", city)
	default:
		return ""
	}
}
