// Command popcorn is a terminal app for finding TV shows and keeping a list
// of the ones you have rated.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/popcorn/internal/catalog"
	"github.com/abelbrown/popcorn/internal/config"
	"github.com/abelbrown/popcorn/internal/coord"
	"github.com/abelbrown/popcorn/internal/hotkey"
	"github.com/abelbrown/popcorn/internal/logging"
	"github.com/abelbrown/popcorn/internal/otel"
	"github.com/abelbrown/popcorn/internal/ratings"
	"github.com/abelbrown/popcorn/internal/store"
	"github.com/abelbrown/popcorn/internal/ui"
)

func main() {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		fatal("Failed to load config: %v", err)
	}
	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		fatal("Failed to create data directory: %v", err)
	}

	// Initialize logging
	if err := logging.Init(logging.Options{
		Dir:        cfg.LogDir(),
		Level:      cfg.Logging.Level,
		MaxSizeMB:  cfg.Logging.MaxSizeMB,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAgeDays: cfg.Logging.MaxAgeDays,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to initialize logging: %v\n", err)
	}
	defer logging.Close()

	// Event log + ring buffer for the debug overlay
	ring := otel.NewRingBuffer(otel.DefaultRingSize)
	events := otel.NewNullLogger()
	if f, err := os.OpenFile(cfg.EventsFile(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644); err != nil {
		logging.Warn("Event log disabled", "path", cfg.EventsFile(), "error", err)
	} else {
		defer f.Close()
		events = otel.NewLogger(f)
	}
	events.SetRingBuffer(ring)
	defer events.Close()

	events.Info(otel.KindStartup, "main", "popcorn starting")
	logging.Info("popcorn starting", "data_dir", cfg.DataDir, "catalog", cfg.Catalog.BaseURL)

	db, err := store.Open(cfg.DBFile())
	if err != nil {
		fatal("Failed to open database: %v", err)
	}
	defer db.Close()
	logging.Info("Store initialized", "path", cfg.DBFile())

	rated := ratings.Open(db, ratings.WithKey(cfg.Storage.Key), ratings.WithEvents(events))
	logging.Info("Rated list loaded", "count", rated.Len())

	client := catalog.NewClient(cfg.Catalog.BaseURL,
		catalog.WithUserAgent(cfg.Catalog.UserAgent),
		catalog.WithRateLimit(cfg.Catalog.RequestsPerSecond, cfg.Catalog.Burst),
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	titles := &ui.TitleQueue{}
	state := coord.New(ctx, coord.Options{
		MinQueryLen: cfg.Search.MinQueryLen,
		Debounce:    cfg.Search.Debounce(),
	}, coord.Deps{
		Catalog: client,
		Ratings: rated,
		Keys:    hotkey.New(),
		Titler:  titles,
		Events:  events,
	})

	app := ui.NewApp(ui.AppConfig{State: state, Titles: titles, Ring: ring, Events: events})
	defer app.Close()

	var opts []tea.ProgramOption
	if cfg.UI.AltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	p := tea.NewProgram(app, opts...)

	logging.Info("Starting UI")
	if _, err := p.Run(); err != nil {
		logging.Error("Application error", "error", err)
		events.Error(otel.KindError, "main", err)
		fatal("Error: %v", err)
	}

	events.Info(otel.KindShutdown, "main", "popcorn exiting")
	logging.Info("popcorn exiting normally", "rated", rated.Len())
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", args...)
	os.Exit(1)
}
