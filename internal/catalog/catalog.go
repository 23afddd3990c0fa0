// Package catalog talks to the remote show catalog (TVMaze).
//
// The catalog exposes two operations to the rest of popcorn: a free-text show
// search and a lookup by external (IMDb) id. Both take a context so that a
// superseded call aborts its HTTP request.
package catalog

import (
	"errors"
	"strings"
)

// ErrNotFound is returned by Lookup when the catalog answers with a client
// error marker instead of a show record.
var ErrNotFound = errors.New("catalog: show not found")

// Show is a single search hit. Zero values stand in for fields the catalog
// returned as null.
type Show struct {
	ID        int
	Name      string
	Premiered string // YYYY-MM-DD, empty when unknown
	PosterURL string
	IMDbID    string
	Score     float64
}

// Year returns the premiere year, or "" when the premiere date is unknown.
func (s Show) Year() string {
	if len(s.Premiered) >= 4 {
		return s.Premiered[:4]
	}
	return ""
}

// Detail is the full record for a selected show.
type Detail struct {
	Show
	Genres         []string
	Summary        string // raw, may contain HTML markup
	RuntimeMinutes *int
	AverageRating  *float64
}

// Synopsis returns the summary with markup stripped.
func (d Detail) Synopsis() string {
	return StripMarkup(d.Summary)
}

// GenreList joins genres for display.
func (d Detail) GenreList() string {
	return strings.Join(d.Genres, ", ")
}
