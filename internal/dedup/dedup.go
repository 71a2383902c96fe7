// Package dedup merges candidate listings that describe the same real-world
// unit across sources.
package dedup

import (
	"log"

	"rental-radar/internal/models"
	"rental-radar/internal/normalize"
)

// Merge resolves cross-source duplicates over the candidate sequence. The
// caller supplies candidates in the fixed source-iteration order, which makes
// the first-arrival-wins tie-break fully deterministic: the first candidate
// seen for a normalization key becomes canonical and its displayed fields are
// never overwritten by later duplicates. Only the canonical record's
// SeenOnSources and the duplicate map grow.
//
// Returns the canonical listings in arrival order and a map from canonical id
// to the ids merged away under it.
func Merge(candidates []models.Listing) ([]models.Listing, map[string][]string) {
	byKey := make(map[string]int, len(candidates))
	duplicateMap := make(map[string][]string)

	merged := make([]models.Listing, len(candidates))
	copy(merged, candidates)

	for i := range merged {
		key := normalize.Key(merged[i].Address, merged[i].City, merged[i].Price)

		idx, seen := byKey[key]
		if !seen {
			byKey[key] = i
			continue
		}

		canonical := &merged[idx]
		if !canonical.SeenOnSources.Contains(merged[i].Source) {
			canonical.SeenOnSources = append(canonical.SeenOnSources, merged[i].Source)
		}
		duplicateMap[canonical.ID] = append(duplicateMap[canonical.ID], merged[i].ID)
		merged[i].DuplicateOf = canonical.ID

		log.Printf("[Dedup] Duplicate: %s (%s) = %s (%s)",
			merged[i].Address, merged[i].Source, canonical.Address, canonical.Source)
	}

	unique := make([]models.Listing, 0, len(merged))
	for _, l := range merged {
		if l.IsCanonical() {
			unique = append(unique, l)
		}
	}

	log.Printf("[Dedup] %d -> %d unique (%d duplicates)",
		len(candidates), len(unique), len(candidates)-len(unique))

	return unique, duplicateMap
}
