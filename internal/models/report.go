package models

import "time"

// SourceError records a per-source failure without aborting the run.
type SourceError struct {
	Source string `json:"source"`
	Error  string `json:"error"`
}

// SourceStat summarizes one source's contribution to a run.
type SourceStat struct {
	Found    int    `json:"found"`
	Matching int    `json:"matching"`
	Error    string `json:"error,omitempty"`
}

// RunReport is the final output of one pipeline run. NewListings is sorted by
// descending score before the report is handed to consumers.
type RunReport struct {
	NewListings  []Listing             `json:"new_listings"`
	TopAvailable []Listing             `json:"top_available,omitempty"`
	TotalFound   int                   `json:"total_found"`
	UniqueFound  int                   `json:"unique_found"`
	NewCount     int                   `json:"new_count"`
	TotalKnown   int                   `json:"total_known"`
	SourceStats  map[string]SourceStat `json:"source_stats"`
	Errors       []SourceError         `json:"errors,omitempty"`
	Timestamp    time.Time             `json:"timestamp"`
}

// SeenEntry is the first-seen metadata persisted for every listing id that
// has been reported as new in some run.
type SeenEntry struct {
	FirstSeen time.Time `json:"first_seen"`
	Address   string    `json:"address"`
	URL       string    `json:"url"`
	Score     int       `json:"score"`
}
