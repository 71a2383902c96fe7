package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Criteria.City != "Zwolle" {
		t.Errorf("City = %q", cfg.Criteria.City)
	}
	if cfg.Criteria.MinPrice != 1500 || cfg.Criteria.MaxPrice != 2500 {
		t.Errorf("price window = %d-%d", cfg.Criteria.MinPrice, cfg.Criteria.MaxPrice)
	}
	if cfg.Criteria.IdealBedrooms != 3 {
		t.Errorf("IdealBedrooms = %d", cfg.Criteria.IdealBedrooms)
	}

	sum := cfg.Weights.Bedrooms + cfg.Weights.Outdoor + cfg.Weights.Price +
		cfg.Weights.Area + cfg.Weights.Location
	if sum != 100 {
		t.Errorf("weights sum to %d, want 100", sum)
	}

	if len(cfg.Sources) != 4 {
		t.Errorf("expected 4 default sources, got %v", cfg.Sources)
	}
}

func TestLoadConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("missing file should fall back to defaults, got error: %v", err)
	}
	if cfg.Criteria.City != "Zwolle" {
		t.Errorf("expected defaults, got city %q", cfg.Criteria.City)
	}
}

func TestLoadConfigOverridesDefaults(t *testing.T) {
	yaml := `
criteria:
  city: Hattem
  min_price: 1000
fetcher:
  timeout_seconds: 10
sources:
  - pararius
`
	path := filepath.Join(t.TempDir(), "radar.yaml")
	if err := os.WriteFile(path, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Criteria.City != "Hattem" {
		t.Errorf("City = %q, want Hattem", cfg.Criteria.City)
	}
	if cfg.Criteria.MinPrice != 1000 {
		t.Errorf("MinPrice = %d, want 1000", cfg.Criteria.MinPrice)
	}
	// Untouched fields keep their defaults.
	if cfg.Criteria.MaxPrice != 2500 {
		t.Errorf("MaxPrice = %d, want default 2500", cfg.Criteria.MaxPrice)
	}
	if cfg.Fetcher.TimeoutSeconds != 10 {
		t.Errorf("TimeoutSeconds = %d, want 10", cfg.Fetcher.TimeoutSeconds)
	}
	if len(cfg.Sources) != 1 || cfg.Sources[0] != "pararius" {
		t.Errorf("Sources = %v, want [pararius]", cfg.Sources)
	}
}

func TestLoadConfigInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "radar.yaml")
	if err := os.WriteFile(path, []byte("criteria: [not a map"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for invalid YAML")
	}
}

func TestDurationHelpers(t *testing.T) {
	fc := FetcherConfig{TimeoutSeconds: 30, MinDelaySeconds: 2}
	if fc.GetTimeout() != 30*time.Second {
		t.Errorf("GetTimeout = %v", fc.GetTimeout())
	}
	if fc.GetMinDelay() != 2*time.Second {
		t.Errorf("GetMinDelay = %v", fc.GetMinDelay())
	}
}
