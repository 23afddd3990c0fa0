package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/abelbrown/popcorn/internal/catalog"
)

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	limit := fs.Int("n", 20, "Maximum number of results to print")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")
	rawJSON := fs.Bool("json", false, "Output JSON")
	fs.Parse(os.Args[1:])

	query := strings.Join(fs.Args(), " ")
	if query == "" {
		fmt.Fprintln(os.Stderr, "usage: pop search [-n N] [-json] <query>")
		os.Exit(1)
	}

	cfg := loadConfig()
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	t0 := time.Now()
	shows, err := client.Search(ctx, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if len(shows) > *limit {
		shows = shows[:*limit]
	}

	if *rawJSON {
		printJSON(shows)
		return
	}

	fmt.Printf("Found %d results for %q in %v\n", len(shows), query, time.Since(t0).Round(time.Millisecond))
	fmt.Println(strings.Repeat("-", 80))
	for i, s := range shows {
		imdb := s.IMDbID
		if imdb == "" {
			imdb = "(no imdb)"
		}
		year := s.Year()
		if year == "" {
			year = "----"
		}
		fmt.Printf("%2d. %-8d %-11s %s  %s\n", i+1, s.ID, imdb, year, truncate(s.Name, 50))
	}
}

func runLookup() {
	fs := flag.NewFlagSet("lookup", flag.ExitOnError)
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")
	rawJSON := fs.Bool("json", false, "Output JSON")
	fs.Parse(os.Args[1:])

	ids := fs.Args()
	if len(ids) == 0 {
		fmt.Fprintln(os.Stderr, "usage: pop lookup [-json] <imdb-id> [imdb-id...]")
		os.Exit(1)
	}

	cfg := loadConfig()
	client := newClient(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	// Lookups run concurrently; the client's rate limiter paces them.
	details := make([]catalog.Detail, len(ids))
	errs := make([]error, len(ids))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, id := range ids {
		g.Go(func() error {
			details[i], errs[i] = client.Lookup(gctx, id)
			return nil
		})
	}
	g.Wait()

	if *rawJSON {
		var found []catalog.Detail
		for i, d := range details {
			if errs[i] == nil {
				found = append(found, d)
			}
		}
		printJSON(found)
	}

	failed := 0
	for i, id := range ids {
		if err := errs[i]; err != nil {
			failed++
			if errors.Is(err, catalog.ErrNotFound) {
				fmt.Fprintf(os.Stderr, "%s: not found\n", id)
			} else {
				fmt.Fprintf(os.Stderr, "%s: %v\n", id, err)
			}
			continue
		}
		if !*rawJSON {
			printDetail(details[i])
		}
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func printDetail(d catalog.Detail) {
	fmt.Printf("%s (%s)  id=%d  imdb=%s\n", d.Name, d.Year(), d.ID, d.IMDbID)
	fmt.Printf("  runtime: %s  rating: %s  genres: %s\n",
		optInt(d.RuntimeMinutes, " min"), optFloat(d.AverageRating), d.GenreList())
	if syn := d.Synopsis(); syn != "" {
		fmt.Printf("  %s\n", truncate(syn, 200))
	}
	fmt.Println()
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
