package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Criteria  Criteria        `yaml:"criteria"`
	Weights   Weights         `yaml:"weights"`
	Fetcher   FetcherConfig   `yaml:"fetcher"`
	Storage   StorageConfig   `yaml:"storage"`
	Database  DatabaseConfig  `yaml:"database"`
	Search    SearchConfig    `yaml:"search"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Sources   []string        `yaml:"sources"`
}

// Criteria holds the search preferences the scorer and the candidate filter
// evaluate against. Treated as read-only for the duration of a run.
type Criteria struct {
	City          string   `yaml:"city"`
	Region        []string `yaml:"region"`
	MinPrice      int      `yaml:"min_price"`
	MaxPrice      int      `yaml:"max_price"`
	MinBedrooms   int      `yaml:"min_bedrooms"`
	IdealBedrooms int      `yaml:"ideal_bedrooms"`
	MaxBedrooms   int      `yaml:"max_bedrooms"`
}

// Weights are the per-factor maximum contributions. They sum to 100 so the
// total score is bounded without clamping.
type Weights struct {
	Bedrooms int `yaml:"bedrooms"`
	Outdoor  int `yaml:"outdoor"`
	Price    int `yaml:"price"`
	Area     int `yaml:"area"`
	Location int `yaml:"location"`
}

// FetcherConfig contains page-fetch settings
type FetcherConfig struct {
	TimeoutSeconds   int    `yaml:"timeout_seconds"`
	UserAgent        string `yaml:"user_agent"`
	Headless         bool   `yaml:"headless"`
	MinDelaySeconds  int    `yaml:"min_delay_seconds"`
	RequestsPerHour  int    `yaml:"requests_per_hour"`
	RateLimitEnabled bool   `yaml:"rate_limit_enabled"`
	MinBodyBytes     int    `yaml:"min_body_bytes"`
}

// StorageConfig contains file-state settings
type StorageConfig struct {
	DataDir string `yaml:"data_dir"`
}

// DatabaseConfig contains archive database settings
type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
}

// MySQLConfig contains MySQL connection settings
type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// PostgresConfig contains PostgreSQL connection settings
type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

// SearchConfig contains search engine settings
type SearchConfig struct {
	Meilisearch MeilisearchConfig `yaml:"meilisearch"`
}

// MeilisearchConfig contains Meilisearch connection settings
type MeilisearchConfig struct {
	Host   string `yaml:"host"`
	APIKey string `yaml:"api_key"`
}

// SchedulerConfig contains scheduled-run settings
type SchedulerConfig struct {
	DailyRunEnabled bool   `yaml:"daily_run_enabled"`
	DailyRunTime    string `yaml:"daily_run_time"`
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Criteria: Criteria{
			City:          "Zwolle",
			Region:        []string{"Zwolle", "Hattem", "Wezep", "Oldebroek", "Elburg", "Wijhe", "Heino"},
			MinPrice:      1500,
			MaxPrice:      2500,
			MinBedrooms:   2,
			IdealBedrooms: 3,
			MaxBedrooms:   4,
		},
		Weights: Weights{
			Bedrooms: 25,
			Outdoor:  25,
			Price:    20,
			Area:     15,
			Location: 15,
		},
		Fetcher: FetcherConfig{
			TimeoutSeconds:   30,
			UserAgent:        "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/121.0.0.0 Safari/537.36",
			Headless:         false,
			MinDelaySeconds:  2,
			RequestsPerHour:  120,
			RateLimitEnabled: true,
			MinBodyBytes:     500,
		},
		Storage: StorageConfig{
			DataDir: "data",
		},
		Scheduler: SchedulerConfig{
			DailyRunEnabled: false,
			DailyRunTime:    "08:00",
		},
		Sources: []string{"pararius", "huurwoningen", "directwonen", "vbo"},
	}
}

// LoadConfig loads configuration from a YAML file
func LoadConfig(filepath string) (*Config, error) {
	// Start with default config
	config := DefaultConfig()

	// If file doesn't exist, return default config
	if _, err := os.Stat(filepath); os.IsNotExist(err) {
		return config, nil
	}

	// Read file
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// GetTimeout returns the fetch timeout as a duration
func (c *FetcherConfig) GetTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// GetMinDelay returns the minimum delay between fetches as a duration
func (c *FetcherConfig) GetMinDelay() time.Duration {
	return time.Duration(c.MinDelaySeconds) * time.Second
}
