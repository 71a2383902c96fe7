package notify

import (
	"fmt"
	"strings"
	"testing"

	"rental-radar/internal/config"
	"rental-radar/internal/models"
)

func sampleListing() models.Listing {
	area := 110
	return models.Listing{
		ID:            "par_abcd1234",
		Source:        "pararius",
		URL:           "https://www.pararius.nl/huis-te-huur/zwolle/abc/veerallee-23",
		Address:       "Veerallee 23",
		City:          "Zwolle",
		PostalCode:    "8021 AB",
		Price:         1850,
		PriceLabel:    "€1.850/maand",
		Bedrooms:      3,
		AreaM2:        &area,
		Status:        models.StatusAvailable,
		HasGarden:     true,
		SeenOnSources: models.StringSlice{"pararius", "huurwoningen.nl"},
		Score:         90,
	}
}

func TestAlertBlock(t *testing.T) {
	l := sampleListing()
	block := AlertBlock(&l)

	for _, want := range []string{
		"[beschikbaar]",
		"Veerallee 23",
		"(tuin)",
		"€1.850/maand",
		"3 slaapkamers",
		"110m2",
		"8021 AB Zwolle",
		"Score: 90/100",
		"Ook op: pararius, huurwoningen.nl",
		"https://www.pararius.nl/huis-te-huur/zwolle/abc/veerallee-23",
	} {
		if !strings.Contains(block, want) {
			t.Errorf("alert block missing %q:\n%s", want, block)
		}
	}
}

func TestAlertBlockUnknownArea(t *testing.T) {
	l := sampleListing()
	l.AreaM2 = nil

	block := AlertBlock(&l)
	if !strings.Contains(block, "?m2") {
		t.Errorf("unknown area should render as ?, got:\n%s", block)
	}
}

func TestAlertBlockSingleSourceOmitsAlsoOn(t *testing.T) {
	l := sampleListing()
	l.SeenOnSources = models.StringSlice{"pararius"}

	block := AlertBlock(&l)
	if strings.Contains(block, "Ook op") {
		t.Errorf("single-source listing should not list other sources:\n%s", block)
	}
}

func TestMessageEmpty(t *testing.T) {
	msg := Message(nil, config.DefaultConfig().Criteria)
	if msg != "Geen nieuwe woningen gevonden." {
		t.Errorf("empty message = %q", msg)
	}
}

func TestMessageHeaderAndCriteria(t *testing.T) {
	criteria := config.DefaultConfig().Criteria
	msg := Message([]models.Listing{sampleListing()}, criteria)

	if !strings.Contains(msg, "1 nieuwe woning(en) gevonden!") {
		t.Errorf("missing header:\n%s", msg)
	}
	if !strings.Contains(msg, "2-4 slaapkamers") {
		t.Errorf("missing bedroom criteria:\n%s", msg)
	}
	if !strings.Contains(msg, "€1500-2500") {
		t.Errorf("missing price criteria:\n%s", msg)
	}
}

func TestMessageCapsAtTen(t *testing.T) {
	var listings []models.Listing
	for i := 0; i < 13; i++ {
		l := sampleListing()
		l.Address = fmt.Sprintf("Veerallee %d", i)
		listings = append(listings, l)
	}

	msg := Message(listings, config.DefaultConfig().Criteria)

	if !strings.Contains(msg, "13 nieuwe woning(en)") {
		t.Errorf("header should count all listings:\n%s", msg)
	}
	if !strings.Contains(msg, "... en 3 meer") {
		t.Errorf("overflow summary missing:\n%s", msg)
	}
	if strings.Contains(msg, "Veerallee 10") {
		t.Errorf("listing beyond the cap should not be rendered:\n%s", msg)
	}
}
