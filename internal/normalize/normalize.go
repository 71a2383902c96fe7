// Package normalize derives the comparison key used for cross-source identity
// resolution. The key is never used for display.
package normalize

import (
	"fmt"
	"regexp"
	"strings"
)

var (
	nonAlnumRe   = regexp.MustCompile(`[^\p{L}\p{N}\s]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
)

// stopwords are filler terms the listing sites append to street names. Longer
// phrases come first so "te huur" is removed before "huur" would split it.
var stopwords = []string{
	"te huur",
	"huur",
	"woning",
	"appartement",
	"huis",
}

// Address reduces a display address to its comparable core: lower-cased,
// punctuation stripped, whitespace collapsed, filler words and the city name
// removed.
func Address(address, city string) string {
	addr := strings.ToLower(address)
	addr = nonAlnumRe.ReplaceAllString(addr, "")
	addr = whitespaceRe.ReplaceAllString(addr, " ")

	for _, word := range stopwords {
		addr = strings.ReplaceAll(addr, word, "")
	}
	if city != "" {
		addr = strings.ReplaceAll(addr, strings.ToLower(city), "")
	}
	addr = whitespaceRe.ReplaceAllString(addr, " ")
	return strings.TrimSpace(addr)
}

// Key builds the deduplication key from the display address, the city and the
// quoted rent. It is a pure function: the same inputs always produce the same
// key, regardless of which source supplied them. The 100-unit price bucket
// absorbs small cross-source rounding and fee differences while keeping
// listings on the same street at different price points apart.
func Key(address, city string, price int) string {
	bucket := (price / 100) * 100
	return fmt.Sprintf("%s|%s|%d", Address(address, city), strings.ToLower(city), bucket)
}
