package main

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"rental-radar/internal/config"
	"rental-radar/internal/database"
	"rental-radar/internal/handlers"
	"rental-radar/internal/models"
	"rental-radar/internal/scheduler"
	"rental-radar/internal/search"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	db           *database.DB
	gormDB       *database.GormDB
	searchClient *search.SearchClient
	appConfig    *config.Config
	appScheduler *scheduler.Scheduler
)

func main() {
	// Load configuration
	configPath := getEnv("CONFIG_PATH", "config/radar.yaml")
	var err error
	appConfig, err = config.LoadConfig(configPath)
	if err != nil {
		log.Printf("Warning: Failed to load config from %s: %v. Using defaults.", configPath, err)
		appConfig = config.DefaultConfig()
	} else {
		log.Printf("Loaded configuration from %s", configPath)
	}

	// Initialize archive database based on configuration
	dbType := appConfig.Database.Type
	if dbType == "" {
		dbType = getEnv("DB_TYPE", "mysql")
	}

	if dbType == "postgres" {
		log.Println("Using PostgreSQL archive")
		pgCfg := appConfig.Database.Postgres
		db, err = database.NewDB(
			getEnvOrConfig(pgCfg.Host, "DB_HOST", "db"),
			portOrDefault(pgCfg.Port, "DB_PORT", 5432),
			getEnvOrConfig(pgCfg.User, "DB_USER", "radar_user"),
			getEnvOrConfig(pgCfg.Password, "DB_PASSWORD", "radar_pass"),
			getEnvOrConfig(pgCfg.Database, "DB_NAME", "radar_db"),
			pgCfg.SSLMode,
		)
		if err != nil {
			log.Fatalf("Failed to connect to PostgreSQL: %v", err)
		}
		defer db.Close()

		if err := db.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	} else {
		log.Println("Using MySQL archive with GORM")
		mysqlCfg := appConfig.Database.MySQL
		gormDB, err = database.NewGormDB(
			getEnvOrConfig(mysqlCfg.Host, "DB_HOST", "mysql"),
			portOrDefault(mysqlCfg.Port, "DB_PORT", 3306),
			getEnvOrConfig(mysqlCfg.User, "DB_USER", "radar_user"),
			getEnvOrConfig(mysqlCfg.Password, "DB_PASSWORD", "radar_pass"),
			getEnvOrConfig(mysqlCfg.Database, "DB_NAME", "radar_db"),
		)
		if err != nil {
			log.Fatalf("Failed to connect to MySQL: %v", err)
		}
		defer gormDB.Close()

		if err := gormDB.InitSchema(); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
	}

	// Initialize Meilisearch using config
	meilisearchHost := appConfig.Search.Meilisearch.Host
	if meilisearchHost == "" {
		meilisearchHost = getEnv("MEILISEARCH_HOST", "http://meilisearch:7700")
	}
	meilisearchKey := appConfig.Search.Meilisearch.APIKey
	if meilisearchKey == "" {
		meilisearchKey = getEnv("MEILISEARCH_KEY", "masterKey123")
	}

	searchClient = search.NewSearchClient(meilisearchHost, meilisearchKey)

	// Wait for Meilisearch to be ready
	time.Sleep(2 * time.Second)

	if err := searchClient.InitIndex(); err != nil {
		log.Printf("Warning: Failed to initialize search index: %v", err)
	}

	// Initialize and start scheduler
	var archive scheduler.Archiver
	if gormDB != nil {
		archive = gormDB
	} else if db != nil {
		archive = db
	}
	appScheduler = scheduler.NewScheduler(appConfig, archive, searchClient)
	if err := appScheduler.Start(); err != nil {
		log.Printf("Warning: Failed to start scheduler: %v", err)
	}
	defer appScheduler.Stop()

	// Setup Gin router
	r := gin.Default()

	// CORS configuration
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5176"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type"},
		AllowCredentials: true,
	}))

	// Routes
	r.GET("/health", healthCheck)
	r.GET("/api/listings", getListings)
	r.GET("/api/listings/:id", getListing)
	r.POST("/api/run", triggerRun)
	r.GET("/api/run/latest", getLatestReport)

	r.GET("/api/search", searchListings)
	r.POST("/api/search/advanced", advancedSearchListings)
	r.GET("/api/search/facets", getSearchFacets)
	r.POST("/api/search/reindex", reindexAllListings)
	r.GET("/api/filter", filterListings)

	// Admin API routes (MySQL archive only)
	if gormDB != nil {
		adminHandler := handlers.NewAdminHandler(gormDB.DB(), appScheduler)

		admin := r.Group("/api/admin")
		{
			admin.GET("/stats", adminHandler.GetStats)
			admin.GET("/activity", adminHandler.GetRecentActivity)
			admin.GET("/city-stats", adminHandler.GetCityStats)
			admin.GET("/price-distribution", adminHandler.GetPriceDistribution)

			admin.POST("/run/trigger", adminHandler.TriggerRun)
			admin.GET("/run/status", adminHandler.GetRunStatus)
		}

		log.Println("Admin API routes registered at /api/admin/*")
	}

	port := getEnv("PORT", "8084")
	log.Printf("Server starting on port %s", port)
	if err := r.Run(":" + port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now(),
	})
}

func getListings(c *gin.Context) {
	sortBy := c.DefaultQuery("sort", "score")

	var listings []models.Listing
	var err error

	if gormDB != nil {
		listings, err = gormDB.GetListingsWithSort(sortBy)
	} else {
		listings, err = db.GetAllListings()
	}

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}

func getListing(c *gin.Context) {
	id := c.Param("id")
	var listing *models.Listing
	var err error

	if gormDB != nil {
		listing, err = gormDB.GetListingByID(id)
	} else {
		listing, err = db.GetListingByID(id)
	}

	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Listing not found"})
		return
	}

	c.JSON(http.StatusOK, listing)
}

// triggerRun starts an aggregation run in the background
func triggerRun(c *gin.Context) {
	go func() {
		if err := appScheduler.RunNow(); err != nil {
			log.Printf("Manual run failed: %v", err)
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Aggregation run started in background",
		"status":  "running",
	})
}

// getLatestReport returns the report of the most recent run
func getLatestReport(c *gin.Context) {
	report := appScheduler.LastReport()
	if report == nil {
		c.JSON(http.StatusOK, gin.H{"status": "no runs yet"})
		return
	}
	c.JSON(http.StatusOK, report)
}

func searchListings(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	// If no query, get all from the archive
	if query == "" {
		var listings []models.Listing
		var err error

		if gormDB != nil {
			listings, err = gormDB.GetAllListings()
		} else {
			listings, err = db.GetAllListings()
		}

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, listings)
		return
	}

	listings, err := searchClient.Search(query, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listings)
}

func filterListings(c *gin.Context) {
	query := c.Query("q")
	limitStr := c.DefaultQuery("limit", "20")

	limit, err := strconv.ParseInt(limitStr, 10, 64)
	if err != nil {
		limit = 20
	}

	params := search.FilterParams{
		Query: query,
		Limit: limit,
	}

	if minPriceStr := c.Query("min_price"); minPriceStr != "" {
		if minPrice, err := strconv.Atoi(minPriceStr); err == nil {
			params.MinPrice = &minPrice
		}
	}
	if maxPriceStr := c.Query("max_price"); maxPriceStr != "" {
		if maxPrice, err := strconv.Atoi(maxPriceStr); err == nil {
			params.MaxPrice = &maxPrice
		}
	}
	if minBedroomsStr := c.Query("min_bedrooms"); minBedroomsStr != "" {
		if minBedrooms, err := strconv.Atoi(minBedroomsStr); err == nil {
			params.MinBedrooms = &minBedrooms
		}
	}
	if minScoreStr := c.Query("min_score"); minScoreStr != "" {
		if minScore, err := strconv.Atoi(minScoreStr); err == nil {
			params.MinScore = &minScore
		}
	}
	if cities := c.QueryArray("city"); len(cities) > 0 {
		params.Cities = cities
	}
	if c.Query("garden") == "true" {
		params.GardenOnly = true
	}
	if sortBy := c.Query("sort_by"); sortBy != "" {
		params.SortBy = sortBy
	}

	// If no query and no filters, get all from the archive
	if query == "" && params.MinPrice == nil && params.MaxPrice == nil &&
		params.MinBedrooms == nil && params.MinScore == nil &&
		len(params.Cities) == 0 && !params.GardenOnly {
		var listings []models.Listing
		var err error

		if gormDB != nil {
			listings, err = gormDB.GetAllListings()
		} else {
			listings, err = db.GetAllListings()
		}

		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, listings)
		return
	}

	listings, err := searchClient.FilterSearch(params)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// advancedSearchListings performs search with filters and facets
func advancedSearchListings(c *gin.Context) {
	var reqBody struct {
		Query       string   `json:"query"`
		Limit       int64    `json:"limit"`
		Offset      int64    `json:"offset"`
		MinPrice    *int     `json:"min_price"`
		MaxPrice    *int     `json:"max_price"`
		MinBedrooms *int     `json:"min_bedrooms"`
		MinScore    *int     `json:"min_score"`
		Cities      []string `json:"cities"`
		GardenOnly  bool     `json:"garden_only"`
		Sort        string   `json:"sort"` // "price_asc", "score_desc", etc.
		Facets      []string `json:"facets"`
	}

	if err := c.ShouldBindJSON(&reqBody); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	filters := []string{}
	if reqBody.MinPrice != nil {
		filters = append(filters, "price >= "+strconv.Itoa(*reqBody.MinPrice))
	}
	if reqBody.MaxPrice != nil {
		filters = append(filters, "price <= "+strconv.Itoa(*reqBody.MaxPrice))
	}
	if reqBody.MinBedrooms != nil {
		filters = append(filters, "bedrooms >= "+strconv.Itoa(*reqBody.MinBedrooms))
	}
	if reqBody.MinScore != nil {
		filters = append(filters, "score >= "+strconv.Itoa(*reqBody.MinScore))
	}
	if len(reqBody.Cities) > 0 {
		cityFilters := make([]string, len(reqBody.Cities))
		for i, city := range reqBody.Cities {
			cityFilters[i] = "city = '" + city + "'"
		}
		filters = append(filters, "("+strings.Join(cityFilters, " OR ")+")")
	}
	if reqBody.GardenOnly {
		filters = append(filters, "has_garden = true")
	}

	sortConditions := []string{}
	switch reqBody.Sort {
	case "price_asc":
		sortConditions = append(sortConditions, "price:asc")
	case "price_desc":
		sortConditions = append(sortConditions, "price:desc")
	case "area_desc":
		sortConditions = append(sortConditions, "area_m2:desc")
	case "score_desc", "":
		sortConditions = append(sortConditions, "score:desc")
	case "newest":
		sortConditions = append(sortConditions, "first_seen:desc")
	}

	facets := reqBody.Facets
	if len(facets) == 0 {
		facets = []string{"city", "source", "status"}
	}

	searchReq := search.SearchRequest{
		Query:  reqBody.Query,
		Limit:  reqBody.Limit,
		Offset: reqBody.Offset,
		Filter: filters,
		Sort:   sortConditions,
		Facets: facets,
	}
	if searchReq.Limit == 0 {
		searchReq.Limit = 20
	}

	result, err := searchClient.AdvancedSearch(searchReq)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hits":            result.Hits,
		"total_hits":      result.TotalHits,
		"facets":          result.Facets,
		"processing_time": result.ProcessingTime,
		"query":           reqBody.Query,
		"filters":         filters,
	})
}

// getSearchFacets retrieves facet distributions
func getSearchFacets(c *gin.Context) {
	facetsParam := c.DefaultQuery("facets", "city,source,status")
	facets := strings.Split(facetsParam, ",")

	facetDist, err := searchClient.GetFacets(facets)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"facets": facetDist,
	})
}

// reindexAllListings re-indexes the whole archive into Meilisearch
func reindexAllListings(c *gin.Context) {
	log.Println("[Reindex] Starting full reindex of all listings")

	var listings []models.Listing
	var err error

	if gormDB != nil {
		listings, err = gormDB.GetAllListings()
	} else {
		listings, err = db.GetAllListings()
	}

	if err != nil {
		log.Printf("[Reindex] Error fetching listings from archive: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error": "Failed to fetch listings from archive",
		})
		return
	}

	log.Printf("[Reindex] Found %d listings in archive", len(listings))

	successCount := 0
	failCount := 0
	for i := range listings {
		if err := searchClient.IndexListing(&listings[i]); err != nil {
			log.Printf("[Reindex] Error indexing listing %s: %v", listings[i].ID, err)
			failCount++
		} else {
			successCount++
		}
	}

	log.Printf("[Reindex] Reindex complete. Success: %d, Failed: %d", successCount, failCount)

	c.JSON(http.StatusOK, gin.H{
		"message": "Reindex complete",
		"total":   len(listings),
		"indexed": successCount,
		"failed":  failCount,
	})
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvOrConfig returns config value if set, otherwise falls back to environment variable, then default
func getEnvOrConfig(configValue, envKey, defaultValue string) string {
	if configValue != "" {
		return configValue
	}
	return getEnv(envKey, defaultValue)
}

// portOrDefault resolves a port from config, environment, then default.
func portOrDefault(configValue int, envKey string, defaultValue int) int {
	if configValue > 0 {
		return configValue
	}
	if v := os.Getenv(envKey); v != "" {
		if p, err := strconv.Atoi(v); err == nil && p > 0 {
			return p
		}
	}
	return defaultValue
}
