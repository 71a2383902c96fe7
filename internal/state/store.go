// Package state persists the seen-set, the cumulative result log and the
// duplicate index across runs. A missing or corrupt file degrades to empty
// state: the pipeline always produces a best-effort result instead of
// aborting.
package state

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"time"

	"rental-radar/internal/models"
)

const (
	seenFile       = "seen.json"
	resultsFile    = "results.json"
	duplicatesFile = "duplicates.json"
)

// Store owns the file-backed run state under a single data directory.
type Store struct {
	dir string

	seen       map[string]models.SeenEntry
	results    []models.Listing
	duplicates map[string][]string
}

// Open loads existing state from dir, creating the directory if needed.
// Load failures are logged and treated as empty state.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create data dir: %w", err)
	}

	s := &Store{
		dir:        dir,
		seen:       make(map[string]models.SeenEntry),
		duplicates: make(map[string][]string),
	}

	loadJSON(filepath.Join(dir, seenFile), &s.seen)
	loadJSON(filepath.Join(dir, resultsFile), &s.results)
	loadJSON(filepath.Join(dir, duplicatesFile), &s.duplicates)

	if s.seen == nil {
		s.seen = make(map[string]models.SeenEntry)
	}
	if s.duplicates == nil {
		s.duplicates = make(map[string][]string)
	}

	return s, nil
}

// Diff partitions canonical listings into new and previously seen, records
// every new listing in the seen-set and the result log, and merges the run's
// duplicate index. New listings come back sorted by descending score.
func (s *Store) Diff(canonical []models.Listing, duplicateMap map[string][]string) []models.Listing {
	var fresh []models.Listing
	for _, l := range canonical {
		if _, ok := s.seen[l.ID]; ok {
			continue
		}
		s.seen[l.ID] = models.SeenEntry{
			FirstSeen: l.FirstSeen,
			Address:   l.Address,
			URL:       l.URL,
			Score:     l.Score,
		}
		s.results = append(s.results, l)
		fresh = append(fresh, l)
	}

	for canonicalID, dupIDs := range duplicateMap {
		s.duplicates[canonicalID] = append(s.duplicates[canonicalID], dupIDs...)
	}

	sort.SliceStable(fresh, func(i, j int) bool {
		return fresh[i].Score > fresh[j].Score
	})

	return fresh
}

// Seen reports whether a listing id was already reported in a prior run.
func (s *Store) Seen(id string) bool {
	_, ok := s.seen[id]
	return ok
}

// SeenCount returns the size of the seen-set.
func (s *Store) SeenCount() int {
	return len(s.seen)
}

// Results returns the cumulative result log. Append-only: it is never
// reconciled against later dedup decisions.
func (s *Store) Results() []models.Listing {
	return s.results
}

// NewMemory returns a store that never touches disk. Used when the data
// directory cannot be created: the run still completes, it just cannot
// remember anything for next time.
func NewMemory() *Store {
	return &Store{
		seen:       make(map[string]models.SeenEntry),
		duplicates: make(map[string][]string),
	}
}

// Save persists all three state files.
func (s *Store) Save() error {
	if s.dir == "" {
		return nil
	}
	if err := saveJSON(filepath.Join(s.dir, seenFile), s.seen); err != nil {
		return err
	}
	if err := saveJSON(filepath.Join(s.dir, resultsFile), s.results); err != nil {
		return err
	}
	return saveJSON(filepath.Join(s.dir, duplicatesFile), s.duplicates)
}

// loadJSON reads a state file into v. Missing or corrupt files leave v
// untouched so the caller keeps its empty default.
func loadJSON(path string, v interface{}) {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Printf("[State] Failed to read %s: %v (treating as empty)", path, err)
		}
		return
	}
	if err := json.Unmarshal(data, v); err != nil {
		log.Printf("[State] Corrupt state file %s: %v (treating as empty)", path, err)
	}
}

func saveJSON(path string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return os.Rename(tmp, path)
}

// NewSince counts seen-set entries first seen after the cutoff.
func (s *Store) NewSince(cutoff time.Time) int {
	count := 0
	for _, e := range s.seen {
		if e.FirstSeen.After(cutoff) {
			count++
		}
	}
	return count
}
