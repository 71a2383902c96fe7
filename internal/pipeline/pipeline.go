// Package pipeline drives a full aggregation run: fetch every source in the
// fixed order, parse and filter candidates, deduplicate across sources,
// score, and diff against the persisted seen-set.
package pipeline

import (
	"context"
	"log"
	"sort"
	"time"

	"rental-radar/internal/config"
	"rental-radar/internal/dedup"
	"rental-radar/internal/fetcher"
	"rental-radar/internal/models"
	"rental-radar/internal/score"
	"rental-radar/internal/sources"
	"rental-radar/internal/state"
)

// Fetcher retrieves one result page. The production implementation is
// internal/fetcher; tests substitute a canned one.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Pipeline runs the aggregation sequence. Sources are queried strictly one
// after another; there is no shared mutable state across them other than the
// aggregation slice owned here.
type Pipeline struct {
	cfg     *config.Config
	fetcher Fetcher
	sources []sources.Source
	errs    []models.SourceError
}

// New builds a pipeline over every registered source.
func New(cfg *config.Config, f Fetcher) *Pipeline {
	return &Pipeline{cfg: cfg, fetcher: f, sources: sources.All(cfg)}
}

// NewForSources builds a pipeline over a subset of sources selected by key.
// Unknown keys are carried into the run report, not fatal.
func NewForSources(cfg *config.Config, f Fetcher, keys []string) *Pipeline {
	selected, errs := sources.Select(cfg, keys)
	p := &Pipeline{cfg: cfg, fetcher: f, sources: selected}
	for _, err := range errs {
		p.errs = append(p.errs, models.SourceError{Source: "config", Error: err.Error()})
	}
	return p
}

// Run executes one full pass and returns the report. It always completes:
// per-source failures and persistence problems degrade, they never abort.
func (p *Pipeline) Run(ctx context.Context) *models.RunReport {
	started := time.Now()
	log.Printf("[Run] Starting aggregation run (%d sources)", len(p.sources))

	store, err := state.Open(p.cfg.Storage.DataDir)
	if err != nil {
		log.Printf("[Run] State unavailable (%v), continuing without persistence", err)
		store = state.NewMemory()
	}

	report := &models.RunReport{
		SourceStats: make(map[string]models.SourceStat, len(p.sources)),
		Errors:      p.errs,
		Timestamp:   started,
	}

	// Aggregate candidates in fixed source order. Only this slice is shared
	// between stages, and only this goroutine touches it.
	var candidates []models.Listing

	for _, src := range p.sources {
		log.Printf("[Run] Searching %s: %s", src.Name, src.URL)

		body, err := p.fetcher.Fetch(ctx, src.URL)
		if err != nil {
			if body == "" {
				log.Printf("[Run] %s failed: %v", src.Name, err)
				report.Errors = append(report.Errors, models.SourceError{Source: src.Name, Error: err.Error()})
				report.SourceStats[src.Name] = models.SourceStat{Error: err.Error()}
				continue
			}
			// Block heuristics returned a body anyway; parse what we got.
			log.Printf("[Run] %s warning: %v", src.Name, err)
		}

		found := src.Parser.Parse(body, time.Now())
		matching := filterByCriteria(found, p.cfg.Criteria)
		log.Printf("[Run] %s: %d found, %d matching criteria", src.Name, len(found), len(matching))

		report.SourceStats[src.Name] = models.SourceStat{Found: len(found), Matching: len(matching)}
		report.TotalFound += len(found)
		candidates = append(candidates, matching...)
	}

	unique, duplicateMap := dedup.Merge(candidates)
	report.UniqueFound = len(unique)

	fresh := store.Diff(unique, duplicateMap)
	if err := store.Save(); err != nil {
		log.Printf("[Run] Failed to persist state: %v", err)
	}

	report.NewListings = fresh
	report.NewCount = len(fresh)
	report.TotalKnown = len(store.Results())
	report.TopAvailable = p.topAvailable(store.Results(), 5)

	log.Printf("[Run] Done in %v: found=%d unique=%d new=%d total=%d",
		time.Since(started).Round(time.Millisecond),
		report.TotalFound, report.UniqueFound, report.NewCount, report.TotalKnown)

	return report
}

// filterByCriteria keeps candidates inside the configured bedroom and price
// window. Parsers have already dropped records without a positive price.
func filterByCriteria(listings []models.Listing, c config.Criteria) []models.Listing {
	matching := make([]models.Listing, 0, len(listings))
	for _, l := range listings {
		if l.Bedrooms < c.MinBedrooms {
			continue
		}
		if l.Price < c.MinPrice || l.Price > c.MaxPrice {
			continue
		}
		matching = append(matching, l)
	}
	return matching
}

// topAvailable rescores the historical result log against the current
// criteria and returns the best still-available listings.
func (p *Pipeline) topAvailable(results []models.Listing, n int) []models.Listing {
	var available []models.Listing
	for _, l := range results {
		if !l.IsAvailable() || l.Price < p.cfg.Criteria.MinPrice {
			continue
		}
		score.Apply(&l, p.cfg.Criteria, p.cfg.Weights)
		available = append(available, l)
	}

	sort.SliceStable(available, func(i, j int) bool {
		return available[i].Score > available[j].Score
	})

	if len(available) > n {
		available = available[:n]
	}
	return available
}

// NewFetcher builds the production fetcher for this configuration.
func NewFetcher(cfg *config.Config) Fetcher {
	return fetcher.New(cfg.Fetcher)
}
