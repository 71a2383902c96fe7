// Package score computes the 0-100 preference score for a listing against the
// configured search criteria.
package score

import (
	"strings"

	"rental-radar/internal/config"
	"rental-radar/internal/models"
)

// Breakdown factor names, kept stable so stored breakdowns remain readable.
const (
	FactorBedrooms = "bedrooms"
	FactorOutdoor  = "garden"
	FactorPrice    = "price"
	FactorArea     = "area"
	FactorLocation = "location"
)

// Compute returns the total preference score and the per-factor breakdown for
// a listing. It is a pure function of the listing's fields and the criteria:
// recomputing on an unchanged listing yields identical output. The total is
// bounded to [0, 100] by construction because the factor maxima sum to 100.
func Compute(l *models.Listing, criteria config.Criteria, weights config.Weights) (int, map[string]int) {
	breakdown := make(map[string]int, 5)

	// Bedrooms: the ideal count earns the full weight, one below ideal is
	// still acceptable, four or more means unused rooms but space to grow.
	switch {
	case l.Bedrooms == criteria.IdealBedrooms:
		breakdown[FactorBedrooms] = weights.Bedrooms
	case l.Bedrooms == 2:
		breakdown[FactorBedrooms] = 15
	case l.Bedrooms >= 4:
		breakdown[FactorBedrooms] = 20
	default:
		breakdown[FactorBedrooms] = 0
	}

	// Outdoor space: a garden beats a balcony, nothing scores zero.
	switch {
	case l.HasGarden:
		breakdown[FactorOutdoor] = weights.Outdoor
	case l.HasBalcony:
		breakdown[FactorOutdoor] = 10
	default:
		breakdown[FactorOutdoor] = 0
	}

	// Price: cheaper within the configured window scores strictly higher.
	switch {
	case l.Price <= criteria.MinPrice:
		breakdown[FactorPrice] = weights.Price
	case l.Price >= criteria.MaxPrice:
		breakdown[FactorPrice] = 5
	default:
		ratio := 1 - float64(l.Price-criteria.MinPrice)/float64(criteria.MaxPrice-criteria.MinPrice)
		breakdown[FactorPrice] = int(float64(weights.Price) * ratio)
	}

	// Area: tiered rather than linear. An unknown area is scored as average
	// instead of being penalized.
	switch {
	case l.AreaM2 == nil:
		breakdown[FactorArea] = 5
	case *l.AreaM2 >= 120:
		breakdown[FactorArea] = weights.Area
	case *l.AreaM2 >= 100:
		breakdown[FactorArea] = 12
	case *l.AreaM2 >= 80:
		breakdown[FactorArea] = 8
	default:
		breakdown[FactorArea] = 5
	}

	// Location: target city, wider region, or elsewhere.
	switch {
	case strings.EqualFold(l.City, criteria.City):
		breakdown[FactorLocation] = weights.Location
	case inRegion(l.City, criteria.Region):
		breakdown[FactorLocation] = 8
	default:
		breakdown[FactorLocation] = 3
	}

	total := 0
	for _, v := range breakdown {
		total += v
	}
	return total, breakdown
}

// Apply computes the score and writes it onto the listing. These two fields
// are the only observable effect.
func Apply(l *models.Listing, criteria config.Criteria, weights config.Weights) {
	total, breakdown := Compute(l, criteria, weights)
	l.Score = total
	l.ScoreBreakdown = breakdown
}

func inRegion(city string, region []string) bool {
	for _, r := range region {
		if strings.EqualFold(city, r) {
			return true
		}
	}
	return false
}
