package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"

	"rental-radar/internal/config"
	"rental-radar/internal/models"
	"rental-radar/internal/pipeline"
	"rental-radar/internal/search"

	"github.com/robfig/cron/v3"
)

// Archiver is the subset of the listing archive the scheduler needs. Both
// database backends satisfy it.
type Archiver interface {
	SaveListing(l *models.Listing) error
}

// Scheduler runs the aggregation pipeline on a daily cron and pushes new
// listings into the archive and the search index. It also keeps the latest
// run report for the API.
type Scheduler struct {
	cron      *cron.Cron
	config    *config.Config
	archive   Archiver
	search    *search.SearchClient
	isRunning bool

	mu         sync.Mutex
	lastReport *models.RunReport
}

// NewScheduler creates a scheduler. archive and search may be nil; runs then
// only update the file state.
func NewScheduler(cfg *config.Config, archive Archiver, searchClient *search.SearchClient) *Scheduler {
	return &Scheduler{
		cron:    cron.New(),
		config:  cfg,
		archive: archive,
		search:  searchClient,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	if !s.config.Scheduler.DailyRunEnabled {
		log.Println("[Scheduler] Daily run is disabled in configuration")
		return nil
	}

	cronSpec := s.parseDailyRunTime(s.config.Scheduler.DailyRunTime)

	_, err := s.cron.AddFunc(cronSpec, func() {
		log.Println("[Scheduler] Starting daily aggregation run...")
		if err := s.runOnce(context.Background()); err != nil {
			log.Printf("[Scheduler] Daily run failed: %v", err)
		} else {
			log.Println("[Scheduler] Daily run completed")
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.isRunning = true
	log.Printf("[Scheduler] Started with daily run at %s (cron: %s)", s.config.Scheduler.DailyRunTime, cronSpec)

	return nil
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	if s.isRunning {
		s.cron.Stop()
		s.isRunning = false
		log.Println("[Scheduler] Stopped")
	}
}

// runOnce executes one pipeline run and propagates new listings to the
// archive and the search index.
func (s *Scheduler) runOnce(ctx context.Context) error {
	p := pipeline.New(s.config, pipeline.NewFetcher(s.config))
	report := p.Run(ctx)

	s.mu.Lock()
	s.lastReport = report
	s.mu.Unlock()

	if s.archive != nil {
		archived := 0
		for i := range report.NewListings {
			if err := s.archive.SaveListing(&report.NewListings[i]); err != nil {
				log.Printf("[Scheduler] Failed to archive listing %s: %v", report.NewListings[i].ID, err)
				continue
			}
			archived++
		}
		log.Printf("[Scheduler] Archived %d/%d new listings", archived, len(report.NewListings))
	}

	if s.search != nil && len(report.NewListings) > 0 {
		if err := s.search.IndexListings(report.NewListings); err != nil {
			log.Printf("[Scheduler] Failed to index new listings: %v", err)
		}
	}

	return nil
}

// RunNow immediately executes an aggregation run (for manual trigger).
func (s *Scheduler) RunNow() error {
	log.Println("[Scheduler] Manual trigger - starting aggregation run...")
	return s.runOnce(context.Background())
}

// LastReport returns the most recent run report, or nil before the first run.
func (s *Scheduler) LastReport() *models.RunReport {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

// parseDailyRunTime converts HH:MM format to cron specification
// Example: "08:00" -> "0 8 * * *" (run at 8:00 AM every day)
func (s *Scheduler) parseDailyRunTime(timeStr string) string {
	var hour, minute int
	n, _ := fmt.Sscanf(timeStr, "%d:%d", &hour, &minute)
	if n == 2 {
		return fmt.Sprintf("%d %d * * *", minute, hour)
	}

	log.Printf("[Scheduler] Failed to parse time '%s', using default 08:00", timeStr)
	return "0 8 * * *"
}
