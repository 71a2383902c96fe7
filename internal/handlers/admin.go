package handlers

import (
	"log"
	"net/http"
	"strconv"
	"time"

	"rental-radar/internal/models"
	"rental-radar/internal/scheduler"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AdminHandler handles admin-related requests
type AdminHandler struct {
	db        *gorm.DB
	scheduler *scheduler.Scheduler
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(db *gorm.DB, sched *scheduler.Scheduler) *AdminHandler {
	return &AdminHandler{
		db:        db,
		scheduler: sched,
	}
}

// GetStats returns archive statistics
func (h *AdminHandler) GetStats(c *gin.Context) {
	stats := make(map[string]interface{})

	// Listing counts by status
	var available, underOption, rented int64
	h.db.Model(&models.Listing{}).Where("status = ?", models.StatusAvailable).Count(&available)
	h.db.Model(&models.Listing{}).Where("status = ?", models.StatusUnderOption).Count(&underOption)
	h.db.Model(&models.Listing{}).Where("status = ?", models.StatusRented).Count(&rented)

	stats["listings"] = map[string]interface{}{
		"available":    available,
		"under_option": underOption,
		"rented":       rented,
		"total":        available + underOption + rented,
	}

	// Counts per source
	type sourceRow struct {
		Source string
		N      int64
	}
	var sourceRows []sourceRow
	h.db.Model(&models.Listing{}).
		Select("source, COUNT(*) AS n").
		Group("source").
		Scan(&sourceRows)

	bySource := make(map[string]int64, len(sourceRows))
	for _, r := range sourceRows {
		bySource[r.Source] = r.N
	}
	stats["by_source"] = bySource

	// New listings in the last 24 hours and 7 days
	now := time.Now()
	var last24h, last7d int64
	h.db.Model(&models.Listing{}).Where("first_seen >= ?", now.AddDate(0, 0, -1)).Count(&last24h)
	h.db.Model(&models.Listing{}).Where("first_seen >= ?", now.AddDate(0, 0, -7)).Count(&last7d)
	stats["recent_activity"] = map[string]interface{}{
		"new_last_24h":    last24h,
		"new_last_7_days": last7d,
	}

	// Score summary
	type scoreRow struct {
		Avg float64
		Max int
	}
	var sr scoreRow
	h.db.Model(&models.Listing{}).Select("AVG(score) AS avg, MAX(score) AS max").Scan(&sr)
	stats["scores"] = map[string]interface{}{
		"average": sr.Avg,
		"best":    sr.Max,
	}

	c.JSON(http.StatusOK, stats)
}

// GetRecentActivity returns the most recently discovered listings
func (h *AdminHandler) GetRecentActivity(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "50")
	limit, _ := strconv.Atoi(limitStr)

	var listings []models.Listing
	err := h.db.Order("first_seen DESC").Limit(limit).Find(&listings).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"listings": listings,
		"count":    len(listings),
	})
}

// GetPriceDistribution returns listing counts per price bracket
func (h *AdminHandler) GetPriceDistribution(c *gin.Context) {
	brackets := []struct {
		Label string
		Min   int
		Max   int
	}{
		{"under_1000", 0, 999},
		{"1000_1500", 1000, 1499},
		{"1500_2000", 1500, 1999},
		{"2000_2500", 2000, 2499},
		{"2500_plus", 2500, 1 << 30},
	}

	distribution := make(map[string]int64, len(brackets))
	for _, b := range brackets {
		var n int64
		h.db.Model(&models.Listing{}).
			Where("price >= ? AND price <= ?", b.Min, b.Max).
			Count(&n)
		distribution[b.Label] = n
	}

	c.JSON(http.StatusOK, gin.H{"price_distribution": distribution})
}

// GetCityStats returns listing counts and average score per city
func (h *AdminHandler) GetCityStats(c *gin.Context) {
	type cityRow struct {
		City     string  `json:"city"`
		N        int64   `json:"count"`
		AvgScore float64 `json:"avg_score"`
		AvgPrice float64 `json:"avg_price"`
	}
	var rows []cityRow
	err := h.db.Model(&models.Listing{}).
		Select("city, COUNT(*) AS n, AVG(score) AS avg_score, AVG(price) AS avg_price").
		Group("city").
		Order("n DESC").
		Scan(&rows).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"cities": rows})
}

// TriggerRun manually triggers an aggregation run
func (h *AdminHandler) TriggerRun(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available",
		})
		return
	}

	log.Println("[Admin] Manual aggregation run requested")

	// Run in goroutine to avoid blocking
	go func() {
		if err := h.scheduler.RunNow(); err != nil {
			log.Printf("[Admin] Manual run failed: %v", err)
		} else {
			log.Println("[Admin] Manual run completed")
		}
	}()

	c.JSON(http.StatusAccepted, gin.H{
		"message": "Aggregation run started in background",
		"status":  "running",
	})
}

// GetRunStatus returns the latest run report
func (h *AdminHandler) GetRunStatus(c *gin.Context) {
	if h.scheduler == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error": "Scheduler not available",
		})
		return
	}

	report := h.scheduler.LastReport()
	if report == nil {
		c.JSON(http.StatusOK, gin.H{"status": "no runs yet"})
		return
	}

	c.JSON(http.StatusOK, report)
}
