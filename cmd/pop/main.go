// Command pop is the popcorn CLI for scripting and debugging.
//
// Usage:
//
//	pop                       Show help
//	pop search <query>        Search the catalog
//	pop lookup <imdb-id>...   Fetch show details
//	pop rated                 List rated shows
//	pop rated rm <id>         Remove a rated show
//	pop rated clear -yes      Delete the whole rated list
//	pop stats                 Rated list summary and storage health
//	pop events                JSONL event log viewer
package main

import (
	"fmt"
	"os"
)

const usage = `pop - popcorn CLI

Usage:
  pop <command> [flags]

Commands:
  search      Search the show catalog
  lookup      Fetch details for one or more IMDb ids (in parallel)
  rated       List rated shows; 'rated rm <id>' removes one,
              'rated clear -yes' deletes all
  stats       Rated list summary and storage health
  events      JSONL event log viewer

Environment:
  POPCORN_HOME               Data directory (default: ~/.popcorn)
  POPCORN_CATALOG_BASE_URL   Catalog API base URL

Run 'pop <command> -h' for command-specific help.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Print(usage)
		os.Exit(0)
	}

	cmd := os.Args[1]
	// Strip the program name + subcommand so flag sets see only their flags
	os.Args = os.Args[1:]

	switch cmd {
	case "search":
		runSearch()
	case "lookup":
		runLookup()
	case "rated":
		runRated()
	case "stats":
		runStats()
	case "events":
		runEvents()
	case "-h", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "pop: unknown command %q\n\n", cmd)
		fmt.Print(usage)
		os.Exit(1)
	}
}
