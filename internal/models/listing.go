package models

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"time"
)

// Listing is one rental unit as seen from one source. Candidates produced by
// the source parsers and canonical records after deduplication share this
// shape; a merged-away candidate carries the canonical id in DuplicateOf.
type Listing struct {
	// Identity and provenance
	ID     string `gorm:"type:varchar(32);primaryKey" json:"id"`
	Source string `gorm:"type:varchar(32);not null;index" json:"source"`
	URL    string `gorm:"type:varchar(500);not null;uniqueIndex" json:"url"`

	// Descriptive fields
	Address    string `gorm:"type:text" json:"address"`
	City       string `gorm:"type:varchar(100);index" json:"city"`
	PostalCode string `gorm:"type:varchar(10)" json:"postal_code"`
	Price      int    `gorm:"type:int;not null;index" json:"price"`
	PriceLabel string `gorm:"type:varchar(32)" json:"price_label"`
	Bedrooms   int    `gorm:"type:int;index" json:"bedrooms"`
	AreaM2     *int   `gorm:"type:int" json:"area_m2,omitempty"`

	Status             ListingStatus `gorm:"type:varchar(20);not null;default:'available';index" json:"status"`
	HasGarden          bool          `gorm:"type:bool" json:"has_garden"`
	HasBalcony         bool          `gorm:"type:bool" json:"has_balcony"`
	GardenSizeM2       *int          `gorm:"type:int" json:"garden_size_m2,omitempty"`
	DescriptionSnippet string        `gorm:"type:text" json:"description_snippet,omitempty"`

	// Deduplication fields. NormalizedAddress is computed once at construction
	// and never mutated; DuplicateOf is empty on the canonical record.
	NormalizedAddress string      `gorm:"type:varchar(255);index" json:"normalized_address"`
	DuplicateOf       string      `gorm:"type:varchar(32)" json:"duplicate_of,omitempty"`
	SeenOnSources     StringSlice `gorm:"type:text" json:"seen_on_sources"`

	// Scoring
	Score          int      `gorm:"type:int;index" json:"score"`
	ScoreBreakdown ScoreMap `gorm:"type:text" json:"score_breakdown"`

	// Lifecycle
	FirstSeen time.Time `gorm:"type:datetime;not null" json:"first_seen"`
	CreatedAt time.Time `gorm:"type:datetime;not null;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"type:datetime;not null;autoUpdateTime" json:"updated_at"`
}

// ListingStatus is the availability state extracted from the source page.
type ListingStatus string

const (
	StatusAvailable   ListingStatus = "available"
	StatusUnderOption ListingStatus = "under_option"
	StatusRented      ListingStatus = "rented"
)

// TableName pins the archive table name.
func (Listing) TableName() string {
	return "listings"
}

// IsCanonical reports whether this record survived deduplication.
func (l *Listing) IsCanonical() bool {
	return l.DuplicateOf == ""
}

// IsAvailable reports whether the listing is still on the market.
func (l *Listing) IsAvailable() bool {
	return l.Status == StatusAvailable
}

// ListingID derives the stable listing id from source name and canonical URL.
// The source name is part of the hash input so ids from different sources can
// never collide, and the short source prefix keeps ids readable in logs.
func ListingID(source, url string) string {
	hash := md5.Sum([]byte(source + ":" + url))
	prefix := source
	if len(prefix) > 3 {
		prefix = prefix[:3]
	}
	return fmt.Sprintf("%s_%s", prefix, hex.EncodeToString(hash[:])[:8])
}

// FormatPriceLabel renders the display price the way the listing sites do,
// with a dot as thousands separator.
func FormatPriceLabel(price int) string {
	s := fmt.Sprintf("%d", price)
	if len(s) > 3 {
		s = s[:len(s)-3] + "." + s[len(s)-3:]
	}
	return fmt.Sprintf("€%s/maand", s)
}
