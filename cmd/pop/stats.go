package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/abelbrown/popcorn/internal/ratings"
	"github.com/abelbrown/popcorn/internal/store"
)

func runRated() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "rm":
			runRatedRemove(os.Args[2:])
			return
		case "clear":
			runRatedClear(os.Args[2:])
			return
		}
	}

	fs := flag.NewFlagSet("rated", flag.ExitOnError)
	rawJSON := fs.Bool("json", false, "Output JSON")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openDB(cfg)
	defer st.Close()

	items := openRated(cfg, st).Items()
	if *rawJSON {
		printJSON(items)
		return
	}

	if len(items) == 0 {
		fmt.Println("No rated shows yet.")
		return
	}
	for i, it := range items {
		fmt.Printf("%2d. %-8d %-40s %2d/10  imdb=%-5s  %s\n",
			i+1, it.ID, truncate(it.Name, 40), it.UserRating,
			optFloat(it.AverageRating), optInt(it.RuntimeMinutes, " min"))
	}
}

func runRatedRemove(args []string) {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pop rated rm <id>")
		os.Exit(1)
	}
	id, err := strconv.Atoi(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid id %q\n", args[0])
		os.Exit(1)
	}

	cfg := loadConfig()
	st := openDB(cfg)
	defer st.Close()

	removed, err := openRated(cfg, st).Remove(id)
	if err != nil {
		log.Fatalf("remove %d: %v", id, err)
	}
	if !removed {
		fmt.Printf("%d is not rated\n", id)
		return
	}
	fmt.Printf("Removed %d\n", id)
}

func runRatedClear(args []string) {
	fs := flag.NewFlagSet("rated clear", flag.ExitOnError)
	yes := fs.Bool("yes", false, "Confirm deleting the whole rated list")
	fs.Parse(args)

	if !*yes {
		fmt.Fprintln(os.Stderr, "refusing to clear without -yes")
		os.Exit(1)
	}

	cfg := loadConfig()
	st := openDB(cfg)
	defer st.Close()

	n, err := clearRated(st, cfg.Storage.Key)
	if err != nil {
		log.Fatalf("clear: %v", err)
	}
	fmt.Printf("Cleared %d rated shows\n", n)
}

// clearRated drops the stored rated list under key and reports how many
// items it held.
func clearRated(st *store.Store, key string) (int, error) {
	n := len(ratings.Open(st, ratings.WithKey(key)).Items())
	if err := st.Delete(key); err != nil {
		return 0, err
	}
	return n, nil
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	dbHealth := fs.Bool("db", false, "Include storage section (keys, sizes, timestamps)")
	fs.Parse(os.Args[1:])

	cfg := loadConfig()
	st := openDB(cfg)
	defer st.Close()

	rated := openRated(cfg, st)
	sum := rated.Summary()

	fmt.Printf("Rated shows:           %d\n", sum.Count)
	fmt.Printf("Avg catalog rating:    %.2f\n", sum.AvgCatalogRating)
	fmt.Printf("Avg user rating:       %.2f\n", sum.AvgUserRating)
	fmt.Printf("Avg runtime:           %.0f min\n", sum.AvgRuntime)

	// Rating histogram
	hist := make([]int, 11)
	changes := 0
	for _, it := range rated.Items() {
		if it.UserRating >= 1 && it.UserRating <= 10 {
			hist[it.UserRating]++
		}
		changes += it.DecisionChanges
	}
	if sum.Count > 0 {
		fmt.Printf("Avg rating decisions:  %.1f\n", float64(changes)/float64(sum.Count))
		fmt.Println("\nBy user rating:")
		for r := 10; r >= 1; r-- {
			if hist[r] > 0 {
				fmt.Printf("  %2d  %d\n", r, hist[r])
			}
		}
	}

	// --- Storage section ---
	if !*dbHealth {
		return
	}

	fmt.Println()
	fmt.Println("=== Storage ===")
	fmt.Printf("Database:              %s\n", cfg.DBFile())

	entries, err := st.Entries()
	if err != nil {
		log.Fatalf("list entries: %v", err)
	}
	now := time.Now()
	for _, e := range entries {
		fmt.Printf("  %-20s %8d bytes  updated %s (%.0fh ago)\n",
			e.Key, e.Size, e.Updated.Format(time.RFC3339), now.Sub(e.Updated).Hours())
	}
	if len(entries) == 0 {
		fmt.Println("  (empty)")
	}
}
