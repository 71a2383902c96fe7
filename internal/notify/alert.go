// Package notify renders run results as alert text for chat delivery or the
// console. Formatting only; it never mutates listings.
package notify

import (
	"fmt"
	"strings"

	"rental-radar/internal/config"
	"rental-radar/internal/models"
)

// maxPerMessage caps a single chat message; the remainder is summarized.
const maxPerMessage = 10

// AlertBlock formats one listing as a multi-line alert entry.
func AlertBlock(l *models.Listing) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s *%s*%s\n", statusMarker(l.Status), l.Address, outdoorMarker(l))
	fmt.Fprintf(&b, "   %s | %d slaapkamers | %sm2\n", l.PriceLabel, l.Bedrooms, areaLabel(l))
	if l.PostalCode != "" || l.City != "" {
		fmt.Fprintf(&b, "   %s %s\n", l.PostalCode, l.City)
	}
	fmt.Fprintf(&b, "   Score: %d/100 %s\n", l.Score, stars(l.Score))
	if len(l.SeenOnSources) > 1 {
		fmt.Fprintf(&b, "   Ook op: %s\n", strings.Join(l.SeenOnSources, ", "))
	}
	fmt.Fprintf(&b, "   %s", l.URL)

	return b.String()
}

// Message formats a run's new listings as one chat message.
func Message(listings []models.Listing, criteria config.Criteria) string {
	if len(listings) == 0 {
		return "Geen nieuwe woningen gevonden."
	}

	var b strings.Builder
	fmt.Fprintf(&b, "*%d nieuwe woning(en) gevonden!*\n", len(listings))
	fmt.Fprintf(&b, "Criteria: %d-%d slaapkamers, €%d-%d, bij voorkeur met tuin\n\n",
		criteria.MinBedrooms, criteria.MaxBedrooms, criteria.MinPrice, criteria.MaxPrice)

	shown := listings
	if len(shown) > maxPerMessage {
		shown = shown[:maxPerMessage]
	}
	for i := range shown {
		b.WriteString(AlertBlock(&shown[i]))
		b.WriteString("\n\n")
	}

	if rest := len(listings) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "... en %d meer\n", rest)
	}

	return strings.TrimRight(b.String(), "\n")
}

func statusMarker(s models.ListingStatus) string {
	switch s {
	case models.StatusAvailable:
		return "[beschikbaar]"
	case models.StatusUnderOption:
		return "[onder optie]"
	default:
		return "[verhuurd]"
	}
}

func outdoorMarker(l *models.Listing) string {
	if l.HasGarden {
		return " (tuin)"
	}
	if l.HasBalcony {
		return " (balkon)"
	}
	return ""
}

func areaLabel(l *models.Listing) string {
	if l.AreaM2 == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *l.AreaM2)
}

func stars(score int) string {
	switch {
	case score >= 80:
		return "*****"
	case score >= 65:
		return "****"
	case score >= 50:
		return "***"
	case score >= 35:
		return "**"
	default:
		return "*"
	}
}
