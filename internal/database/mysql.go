package database

import (
	"fmt"
	"time"

	"rental-radar/internal/models"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// GormDB archives canonical listings in MySQL. The file state under
// internal/state stays the source of truth for seen/new decisions; the
// archive exists for the API, stats and search indexing.
type GormDB struct {
	db *gorm.DB
}

func NewGormDB(host string, port int, user, password, dbname string) (*GormDB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		user, password, host, port, dbname)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, err
	}

	return &GormDB{db: db}, nil
}

// NewGormDBFromDB wraps an existing gorm.DB instance. Used by tests with an
// in-memory driver.
func NewGormDBFromDB(db *gorm.DB) *GormDB {
	return &GormDB{db: db}
}

// DB returns the underlying gorm.DB instance
func (gdb *GormDB) DB() *gorm.DB {
	return gdb.db
}

func (gdb *GormDB) Close() error {
	sqlDB, err := gdb.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InitSchema creates the listings table if it does not exist.
func (gdb *GormDB) InitSchema() error {
	return gdb.db.AutoMigrate(&models.Listing{})
}

// SaveListing upserts a listing by URL. The first-seen timestamp and id of an
// existing row are preserved; everything else follows the fresh record.
func (gdb *GormDB) SaveListing(l *models.Listing) error {
	if l.ID == "" {
		l.ID = models.ListingID(l.Source, l.URL)
	}
	if l.FirstSeen.IsZero() {
		l.FirstSeen = time.Now()
	}
	if l.Status == "" {
		l.Status = models.StatusAvailable
	}

	var existing models.Listing
	result := gdb.db.Where("url = ?", l.URL).First(&existing)

	if result.Error == gorm.ErrRecordNotFound {
		return gdb.db.Create(l).Error
	} else if result.Error != nil {
		return result.Error
	}

	l.ID = existing.ID
	l.FirstSeen = existing.FirstSeen
	l.CreatedAt = existing.CreatedAt
	return gdb.db.Save(l).Error
}

// SaveListings archives a batch, continuing past individual failures.
func (gdb *GormDB) SaveListings(listings []models.Listing) error {
	var firstErr error
	for i := range listings {
		if err := gdb.SaveListing(&listings[i]); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// GetAllListings retrieves the archive, best score first.
func (gdb *GormDB) GetAllListings() ([]models.Listing, error) {
	var listings []models.Listing
	err := gdb.db.Order("score DESC, first_seen DESC").Find(&listings).Error
	return listings, err
}

// GetListingsWithSort retrieves all listings with custom sorting.
func (gdb *GormDB) GetListingsWithSort(sortBy string) ([]models.Listing, error) {
	var listings []models.Listing

	var orderClause string
	switch sortBy {
	case "score", "score_desc":
		orderClause = "score DESC"
	case "price_asc":
		orderClause = "price ASC"
	case "price_desc":
		orderClause = "price DESC"
	case "area_desc":
		orderClause = "CASE WHEN area_m2 IS NULL THEN 1 ELSE 0 END, area_m2 DESC"
	case "first_seen", "first_seen_desc":
		orderClause = "first_seen DESC"
	case "first_seen_asc":
		orderClause = "first_seen ASC"
	default:
		orderClause = "score DESC, first_seen DESC"
	}

	err := gdb.db.Order(orderClause).Find(&listings).Error
	return listings, err
}

// GetListingByID retrieves one listing.
func (gdb *GormDB) GetListingByID(id string) (*models.Listing, error) {
	var l models.Listing
	if err := gdb.db.Where("id = ?", id).First(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}

// GetAvailableListings retrieves listings still on the market.
func (gdb *GormDB) GetAvailableListings() ([]models.Listing, error) {
	var listings []models.Listing
	err := gdb.db.Where("status = ?", models.StatusAvailable).
		Order("score DESC").Find(&listings).Error
	return listings, err
}

// MarkListingStatus updates the availability state of one listing.
func (gdb *GormDB) MarkListingStatus(id string, status models.ListingStatus) error {
	return gdb.db.Model(&models.Listing{}).
		Where("id = ?", id).
		Update("status", status).Error
}

// CountBySource returns how many archived listings each source contributed.
func (gdb *GormDB) CountBySource() (map[string]int64, error) {
	type row struct {
		Source string
		N      int64
	}
	var rows []row
	err := gdb.db.Model(&models.Listing{}).
		Select("source, COUNT(*) AS n").
		Group("source").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Source] = r.N
	}
	return counts, nil
}

// CountByStatus returns how many archived listings are in each state.
func (gdb *GormDB) CountByStatus() (map[string]int64, error) {
	type row struct {
		Status string
		N      int64
	}
	var rows []row
	err := gdb.db.Model(&models.Listing{}).
		Select("status, COUNT(*) AS n").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, r := range rows {
		counts[r.Status] = r.N
	}
	return counts, nil
}
