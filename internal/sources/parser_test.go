package sources

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"rental-radar/internal/config"
	"rental-radar/internal/models"
)

func testConfig() *config.Config {
	return config.DefaultConfig()
}

func parariusParser() *Parser {
	cfg := testConfig()
	return NewParser(pararius, cfg.Criteria, cfg.Weights)
}

// card builds a minimal listing card the way the result pages lay them out:
// link first, descriptive text after it.
func card(path, text string) string {
	return fmt.Sprintf(`<li class="search-list__item">
		<a href="%s">%s</a>
		<div class="listing-search-item">%s</div>
	</li>`, path, path, text)
}

func page(cards ...string) string {
	return "<html><body><ul>" + strings.Join(cards, "\n") + "</ul></body></html>"
}

func TestParseExtractsListing(t *testing.T) {
	p := parariusParser()
	html := page(card("/huis-te-huur/zwolle/abc123/veerallee-23",
		"€ 1.850 per maand 3 slaapkamers 110 m² 8021 AB achtertuin van 40 m²"))

	listings := p.Parse(html, time.Now())
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}

	l := listings[0]
	if l.Source != "pararius" {
		t.Errorf("Source = %q", l.Source)
	}
	if l.URL != "https://www.pararius.nl/huis-te-huur/zwolle/abc123/veerallee-23" {
		t.Errorf("URL = %q", l.URL)
	}
	if l.Address != "Veerallee 23" {
		t.Errorf("Address = %q", l.Address)
	}
	if l.Price != 1850 {
		t.Errorf("Price = %d, want 1850", l.Price)
	}
	if l.PriceLabel != "€1.850/maand" {
		t.Errorf("PriceLabel = %q", l.PriceLabel)
	}
	if l.Bedrooms != 3 {
		t.Errorf("Bedrooms = %d, want 3", l.Bedrooms)
	}
	if l.AreaM2 == nil || *l.AreaM2 != 110 {
		t.Errorf("AreaM2 = %v, want 110", l.AreaM2)
	}
	if l.PostalCode != "8021 AB" {
		t.Errorf("PostalCode = %q", l.PostalCode)
	}
	if !l.HasGarden {
		t.Error("expected HasGarden")
	}
	if l.GardenSizeM2 == nil || *l.GardenSizeM2 != 40 {
		t.Errorf("GardenSizeM2 = %v, want 40", l.GardenSizeM2)
	}
	if l.Status != models.StatusAvailable {
		t.Errorf("Status = %q", l.Status)
	}
	if l.Score == 0 {
		t.Error("listing should be scored at construction")
	}
	if l.NormalizedAddress == "" {
		t.Error("NormalizedAddress should be set at construction")
	}
}

func TestParseDropsListingWithoutPrice(t *testing.T) {
	p := parariusParser()
	// Spacer keeps the priced card out of the priceless card's context window.
	spacer := `<div class="banner">` + strings.Repeat("advertentie ", 60) + `</div>`
	html := page(
		card("/huis-te-huur/zwolle/def456/veerallee-25", "€ 1.900 per maand 2 slaapkamers"),
		spacer,
		card("/huis-te-huur/zwolle/abc123/veerallee-23", "3 slaapkamers 110 m²"),
	)

	listings := p.Parse(html, time.Now())
	if len(listings) != 1 {
		t.Fatalf("expected priceless card to be dropped, got %d listings", len(listings))
	}
	if listings[0].Address != "Veerallee 25" {
		t.Errorf("wrong survivor: %q", listings[0].Address)
	}
}

func TestParseSkipsShallowPaths(t *testing.T) {
	p := parariusParser()
	// City index path has fewer segments than a detail path.
	html := page(
		`<a href="/huis-te-huur/zwolle">Huurwoningen in Zwolle</a>`,
		card("/huis-te-huur/zwolle/abc123/veerallee-23", "€ 1.850 per maand"),
	)

	listings := p.Parse(html, time.Now())
	if len(listings) != 1 {
		t.Fatalf("expected index link to be skipped, got %d listings", len(listings))
	}
}

func TestParseDeduplicatesRepeatedLinks(t *testing.T) {
	p := parariusParser()
	// The same detail link typically appears on the image and the title.
	html := page(
		`<a href="/huis-te-huur/zwolle/abc123/veerallee-23"><img src="x.jpg"></a>`,
		card("/huis-te-huur/zwolle/abc123/veerallee-23", "€ 1.850 per maand"),
	)

	listings := p.Parse(html, time.Now())
	if len(listings) != 1 {
		t.Fatalf("expected repeated link to yield one listing, got %d", len(listings))
	}
}

func TestParseStatusDetection(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.ListingStatus
	}{
		{"default available", "€ 1.850 per maand", models.StatusAvailable},
		{"under option", "€ 1.850 per maand Onder optie", models.StatusUnderOption},
		{"rented", "€ 1.850 per maand Verhuurd", models.StatusRented},
		{"option outranks rented", "€ 1.850 Onder optie eerder verhuurd", models.StatusUnderOption},
	}

	p := parariusParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html := page(card("/huis-te-huur/zwolle/abc123/veerallee-23", tt.text))
			listings := p.Parse(html, time.Now())
			if len(listings) != 1 {
				t.Fatalf("expected 1 listing, got %d", len(listings))
			}
			if listings[0].Status != tt.want {
				t.Errorf("Status = %q, want %q", listings[0].Status, tt.want)
			}
		})
	}
}

func TestParseBalconyDetection(t *testing.T) {
	p := parariusParser()
	html := page(card("/appartement-te-huur/zwolle/abc123/stationsweg-7",
		"€ 1.600 per maand 2 slaapkamers balkon op het zuiden"))

	listings := p.Parse(html, time.Now())
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].HasGarden {
		t.Error("balcony should not count as garden")
	}
	if !listings[0].HasBalcony {
		t.Error("expected HasBalcony")
	}
}

func TestParseEmptyAndGarbageInput(t *testing.T) {
	p := parariusParser()

	if got := p.Parse("", time.Now()); len(got) != 0 {
		t.Errorf("empty input: got %d listings", len(got))
	}
	if got := p.Parse("not html at all {{{", time.Now()); len(got) != 0 {
		t.Errorf("garbage input: got %d listings", len(got))
	}
}

func TestParseDocumentOrderStable(t *testing.T) {
	p := parariusParser()
	html := page(
		card("/huis-te-huur/zwolle/aaa/veerallee-23", "€ 1.850 per maand"),
		card("/huis-te-huur/zwolle/bbb/stationsweg-7", "€ 1.600 per maand"),
		card("/huis-te-huur/zwolle/ccc/dorpsstraat-1", "€ 2.100 per maand"),
	)

	first := p.Parse(html, time.Now())
	for i := 0; i < 5; i++ {
		again := p.Parse(html, time.Now())
		if len(again) != len(first) {
			t.Fatalf("listing count changed: %d vs %d", len(first), len(again))
		}
		for j := range first {
			if again[j].URL != first[j].URL {
				t.Fatalf("order changed at %d: %s vs %s", j, first[j].URL, again[j].URL)
			}
		}
	}
	if first[0].Address != "Veerallee 23" || first[2].Address != "Dorpsstraat 1" {
		t.Errorf("unexpected document order: %s ... %s", first[0].Address, first[2].Address)
	}
}

func TestParseHuurwoningenCityFromPath(t *testing.T) {
	cfg := testConfig()
	p := NewParser(huurwoningen, cfg.Criteria, cfg.Weights)

	html := page(card("/huren/hattem/abc123/dorpsstraat-1/", "€ 1.700 per maand 3 kamers"))

	listings := p.Parse(html, time.Now())
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].City != "Hattem" {
		t.Errorf("City = %q, want Hattem", listings[0].City)
	}
	if listings[0].Source != "huurwoningen.nl" {
		t.Errorf("Source = %q", listings[0].Source)
	}
}

func TestListingIDStability(t *testing.T) {
	url := "https://www.pararius.nl/huis-te-huur/zwolle/abc123/veerallee-23"
	a := models.ListingID("pararius", url)
	b := models.ListingID("pararius", url)
	if a != b {
		t.Errorf("id not stable: %s vs %s", a, b)
	}
	if !strings.HasPrefix(a, "par_") {
		t.Errorf("id should carry the source prefix: %s", a)
	}
	if c := models.ListingID("huurwoningen.nl", url); c == a {
		t.Error("ids from different sources must differ for the same url")
	}
}
