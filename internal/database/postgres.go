package database

import (
	"database/sql"
	"fmt"
	"time"

	"rental-radar/internal/models"

	_ "github.com/lib/pq"
)

// DB is the PostgreSQL variant of the listing archive, selected with
// database.type=postgres in the config.
type DB struct {
	conn *sql.DB
}

func NewDB(host string, port int, user, password, dbname, sslmode string) (*DB, error) {
	if sslmode == "" {
		sslmode = "disable"
	}
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	conn, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, err
	}

	if err := conn.Ping(); err != nil {
		return nil, err
	}

	return &DB{conn: conn}, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

// InitSchema creates the listings table if it doesn't exist
func (db *DB) InitSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS listings (
		id VARCHAR(32) PRIMARY KEY,
		source VARCHAR(32) NOT NULL,
		url TEXT NOT NULL UNIQUE,
		address TEXT,
		city VARCHAR(100),
		postal_code VARCHAR(10),
		price INTEGER NOT NULL,
		price_label VARCHAR(32),
		bedrooms INTEGER,
		area_m2 INTEGER,
		status VARCHAR(20) NOT NULL DEFAULT 'available',
		has_garden BOOLEAN NOT NULL DEFAULT FALSE,
		has_balcony BOOLEAN NOT NULL DEFAULT FALSE,
		garden_size_m2 INTEGER,
		description_snippet TEXT,
		normalized_address VARCHAR(255),
		duplicate_of VARCHAR(32),
		seen_on_sources TEXT,
		score INTEGER,
		score_breakdown TEXT,
		first_seen TIMESTAMP NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMP NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_listings_source ON listings(source);
	CREATE INDEX IF NOT EXISTS idx_listings_city ON listings(city);
	CREATE INDEX IF NOT EXISTS idx_listings_price ON listings(price);
	CREATE INDEX IF NOT EXISTS idx_listings_score ON listings(score DESC);
	CREATE INDEX IF NOT EXISTS idx_listings_status ON listings(status);
	`
	_, err := db.conn.Exec(query)
	return err
}

// SaveListing upserts a listing by URL, preserving first_seen and created_at.
func (db *DB) SaveListing(l *models.Listing) error {
	if l.ID == "" {
		l.ID = models.ListingID(l.Source, l.URL)
	}
	if l.FirstSeen.IsZero() {
		l.FirstSeen = time.Now()
	}
	if l.Status == "" {
		l.Status = models.StatusAvailable
	}

	query := `
	INSERT INTO listings (
		id, source, url, address, city, postal_code,
		price, price_label, bedrooms, area_m2,
		status, has_garden, has_balcony, garden_size_m2, description_snippet,
		normalized_address, duplicate_of, seen_on_sources,
		score, score_breakdown,
		first_seen, created_at, updated_at
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
	        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
	        $21, NOW(), NOW())
	ON CONFLICT (url) DO UPDATE SET
		address = EXCLUDED.address,
		city = EXCLUDED.city,
		postal_code = EXCLUDED.postal_code,
		price = EXCLUDED.price,
		price_label = EXCLUDED.price_label,
		bedrooms = EXCLUDED.bedrooms,
		area_m2 = EXCLUDED.area_m2,
		status = EXCLUDED.status,
		has_garden = EXCLUDED.has_garden,
		has_balcony = EXCLUDED.has_balcony,
		garden_size_m2 = EXCLUDED.garden_size_m2,
		description_snippet = EXCLUDED.description_snippet,
		normalized_address = EXCLUDED.normalized_address,
		duplicate_of = EXCLUDED.duplicate_of,
		seen_on_sources = EXCLUDED.seen_on_sources,
		score = EXCLUDED.score,
		score_breakdown = EXCLUDED.score_breakdown,
		updated_at = NOW()
	`

	seen, err := l.SeenOnSources.Value()
	if err != nil {
		return err
	}
	breakdown, err := l.ScoreBreakdown.Value()
	if err != nil {
		return err
	}

	_, err = db.conn.Exec(query,
		l.ID, l.Source, l.URL, l.Address, l.City, l.PostalCode,
		l.Price, l.PriceLabel, l.Bedrooms, l.AreaM2,
		string(l.Status), l.HasGarden, l.HasBalcony, l.GardenSizeM2, l.DescriptionSnippet,
		l.NormalizedAddress, l.DuplicateOf, seen,
		l.Score, breakdown,
		l.FirstSeen)
	return err
}

// GetAllListings retrieves the archive, best score first.
func (db *DB) GetAllListings() ([]models.Listing, error) {
	query := `
		SELECT id, source, url, address, city, postal_code,
		       price, price_label, bedrooms, area_m2,
		       status, has_garden, has_balcony, garden_size_m2, description_snippet,
		       normalized_address, duplicate_of, seen_on_sources,
		       score, score_breakdown,
		       first_seen, created_at, updated_at
		FROM listings
		ORDER BY score DESC, first_seen DESC
	`

	rows, err := db.conn.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var listings []models.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, err
		}
		listings = append(listings, *l)
	}

	return listings, rows.Err()
}

// GetListingByID retrieves one listing.
func (db *DB) GetListingByID(id string) (*models.Listing, error) {
	query := `
		SELECT id, source, url, address, city, postal_code,
		       price, price_label, bedrooms, area_m2,
		       status, has_garden, has_balcony, garden_size_m2, description_snippet,
		       normalized_address, duplicate_of, seen_on_sources,
		       score, score_breakdown,
		       first_seen, created_at, updated_at
		FROM listings
		WHERE id = $1
	`
	return scanListing(db.conn.QueryRow(query, id))
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(r rowScanner) (*models.Listing, error) {
	var l models.Listing
	var status string
	var seen, breakdown sql.NullString

	err := r.Scan(
		&l.ID, &l.Source, &l.URL, &l.Address, &l.City, &l.PostalCode,
		&l.Price, &l.PriceLabel, &l.Bedrooms, &l.AreaM2,
		&status, &l.HasGarden, &l.HasBalcony, &l.GardenSizeM2, &l.DescriptionSnippet,
		&l.NormalizedAddress, &l.DuplicateOf, &seen,
		&l.Score, &breakdown,
		&l.FirstSeen, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	l.Status = models.ListingStatus(status)
	if seen.Valid {
		if err := l.SeenOnSources.Scan(seen.String); err != nil {
			return nil, err
		}
	}
	if breakdown.Valid {
		if err := l.ScoreBreakdown.Scan(breakdown.String); err != nil {
			return nil, err
		}
	}

	return &l, nil
}
