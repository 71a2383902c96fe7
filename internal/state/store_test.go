package state

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"rental-radar/internal/models"
)

func listing(id string, score int) models.Listing {
	return models.Listing{
		ID:        id,
		Address:   "Veerallee " + id,
		URL:       "https://example.test/" + id,
		Score:     score,
		FirstSeen: time.Now(),
	}
}

func TestOpenEmptyDir(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if s.SeenCount() != 0 {
		t.Errorf("fresh store should be empty, got %d seen", s.SeenCount())
	}
	if len(s.Results()) != 0 {
		t.Errorf("fresh store should have no results, got %d", len(s.Results()))
	}
}

func TestDiffAndRoundTrip(t *testing.T) {
	dir := t.TempDir()

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	canonical := []models.Listing{listing("a", 60), listing("b", 85), listing("c", 40)}
	fresh := s.Diff(canonical, map[string][]string{"a": {"x"}})

	if len(fresh) != 3 {
		t.Fatalf("expected 3 new listings, got %d", len(fresh))
	}
	// New listings come back best first.
	if fresh[0].ID != "b" || fresh[1].ID != "a" || fresh[2].ID != "c" {
		t.Errorf("wrong sort order: %s %s %s", fresh[0].ID, fresh[1].ID, fresh[2].ID)
	}

	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	// A new store over the same directory sees everything as known.
	s2, err := Open(dir)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if s2.SeenCount() != 3 {
		t.Errorf("reloaded seen count = %d, want 3", s2.SeenCount())
	}
	if !s2.Seen("a") || !s2.Seen("b") || !s2.Seen("c") {
		t.Error("reloaded store should know all three ids")
	}
	if len(s2.Results()) != 3 {
		t.Errorf("reloaded results = %d, want 3", len(s2.Results()))
	}

	again := s2.Diff(canonical, nil)
	if len(again) != 0 {
		t.Errorf("second run should report nothing new, got %d", len(again))
	}
}

func TestDiffPartialOverlap(t *testing.T) {
	s, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	s.Diff([]models.Listing{listing("a", 60)}, nil)

	fresh := s.Diff([]models.Listing{listing("a", 60), listing("b", 70)}, nil)
	if len(fresh) != 1 || fresh[0].ID != "b" {
		t.Errorf("expected only b to be new, got %v", fresh)
	}
	if len(s.Results()) != 2 {
		t.Errorf("result log should hold both, got %d", len(s.Results()))
	}
}

func TestCorruptStateFilesTreatedAsEmpty(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"seen.json", "results.json", "duplicates.json"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("{not json"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	s, err := Open(dir)
	if err != nil {
		t.Fatalf("Open should not fail on corrupt files: %v", err)
	}
	if s.SeenCount() != 0 {
		t.Errorf("corrupt seen file should yield empty set, got %d", s.SeenCount())
	}

	// The store must still be usable and savable afterwards.
	fresh := s.Diff([]models.Listing{listing("a", 50)}, nil)
	if len(fresh) != 1 {
		t.Fatalf("expected 1 new listing, got %d", len(fresh))
	}
	if err := s.Save(); err != nil {
		t.Fatalf("Save after corrupt load: %v", err)
	}
}

func TestMemoryStoreSaveIsNoop(t *testing.T) {
	s := NewMemory()
	s.Diff([]models.Listing{listing("a", 50)}, nil)
	if err := s.Save(); err != nil {
		t.Errorf("memory store Save should be a no-op, got %v", err)
	}
	if !s.Seen("a") {
		t.Error("memory store should still track seen ids within the run")
	}
}

func TestNewSince(t *testing.T) {
	s := NewMemory()

	old := listing("old", 50)
	old.FirstSeen = time.Now().Add(-48 * time.Hour)
	recent := listing("recent", 50)

	s.Diff([]models.Listing{old, recent}, nil)

	if got := s.NewSince(time.Now().Add(-24 * time.Hour)); got != 1 {
		t.Errorf("NewSince(24h) = %d, want 1", got)
	}
}
