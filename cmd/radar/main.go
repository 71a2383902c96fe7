package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"rental-radar/internal/config"
	"rental-radar/internal/models"
	"rental-radar/internal/notify"
	"rental-radar/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "config/radar.yaml", "path to the YAML configuration file")
	sourcesFlag := flag.String("sources", "", "comma-separated source keys to query (default: all)")
	jsonOut := flag.Bool("json", false, "print the run report as JSON instead of text")
	alertOut := flag.Bool("alert", false, "print new listings as an alert message")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var p *pipeline.Pipeline
	f := pipeline.NewFetcher(cfg)
	if *sourcesFlag != "" {
		keys := strings.Split(*sourcesFlag, ",")
		for i := range keys {
			keys[i] = strings.TrimSpace(keys[i])
		}
		p = pipeline.NewForSources(cfg, f, keys)
	} else {
		p = pipeline.New(cfg, f)
	}

	report := p.Run(context.Background())

	switch {
	case *jsonOut:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			log.Fatalf("Failed to encode report: %v", err)
		}
	case *alertOut:
		fmt.Println(notify.Message(report.NewListings, cfg.Criteria))
	default:
		printReport(report, cfg)
	}

	if len(report.Errors) > 0 {
		os.Exit(1)
	}
}

func printReport(report *models.RunReport, cfg *config.Config) {
	fmt.Printf("Run %s\n", report.Timestamp.Format("2006-01-02 15:04"))
	fmt.Printf("Found %d listings, %d unique, %d new (total known: %d)\n\n",
		report.TotalFound, report.UniqueFound, report.NewCount, report.TotalKnown)

	for name, stat := range report.SourceStats {
		if stat.Error != "" {
			fmt.Printf("  %-18s ERROR: %s\n", name, stat.Error)
			continue
		}
		fmt.Printf("  %-18s %d found, %d matching\n", name, stat.Found, stat.Matching)
	}

	if len(report.NewListings) > 0 {
		fmt.Printf("\nNew listings:\n\n")
		for i := range report.NewListings {
			fmt.Println(notify.AlertBlock(&report.NewListings[i]))
			fmt.Println()
		}
	} else {
		fmt.Println("\nNo new listings this run.")
	}

	if len(report.TopAvailable) > 0 {
		fmt.Printf("Top available listings:\n\n")
		for i := range report.TopAvailable {
			l := &report.TopAvailable[i]
			fmt.Printf("  %3d  %s, %s  %s  %s\n", l.Score, l.Address, l.City, l.PriceLabel, l.URL)
		}
	}

	for _, e := range report.Errors {
		fmt.Fprintf(os.Stderr, "error: %s: %s\n", e.Source, e.Error)
	}
}
