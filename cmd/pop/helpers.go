package main

import (
	"fmt"
	"log"
	"os"

	"github.com/abelbrown/popcorn/internal/catalog"
	"github.com/abelbrown/popcorn/internal/config"
	"github.com/abelbrown/popcorn/internal/ratings"
	"github.com/abelbrown/popcorn/internal/store"
)

// loadConfig reads config.json and the environment, creating the data dir.
func loadConfig() *config.Config {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}
	return cfg
}

// openDB opens the store or fatals.
func openDB(cfg *config.Config) *store.Store {
	st, err := store.Open(cfg.DBFile())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	return st
}

// openRated loads the rated list from st.
func openRated(cfg *config.Config, st *store.Store) *ratings.Store {
	return ratings.Open(st, ratings.WithKey(cfg.Storage.Key))
}

// newClient builds a catalog client from cfg.
func newClient(cfg *config.Config) *catalog.Client {
	return catalog.NewClient(cfg.Catalog.BaseURL,
		catalog.WithUserAgent(cfg.Catalog.UserAgent),
		catalog.WithRateLimit(cfg.Catalog.RequestsPerSecond, cfg.Catalog.Burst),
	)
}

// optInt formats an optional int, or "-".
func optInt(p *int, unit string) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%d%s", *p, unit)
}

// optFloat formats an optional float, or "-".
func optFloat(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%.1f", *p)
}

// truncate shortens a string to max runes, appending "..." if truncated.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-3]) + "..."
}
