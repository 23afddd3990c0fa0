// Package ratings keeps the user's rated shows.
//
// The Store is an insertion-ordered list with at most one Item per show id.
// Every mutation is mirrored to durable storage before it returns, and a
// failed write rolls the mutation back, so the in-memory list and the durable
// copy agree after every completed call.
package ratings

import (
	"errors"
	"fmt"
	"time"

	"github.com/abelbrown/popcorn/internal/catalog"
)

// Rating bounds.
const (
	MinRating = 1
	MaxRating = 10
)

// ErrInvalidRating is returned for a user rating outside MinRating..MaxRating.
var ErrInvalidRating = errors.New("ratings: rating out of range")

// Item is one rated show. Items are immutable once stored.
type Item struct {
	ID              int       `json:"id"`
	Name            string    `json:"name"`
	Premiered       string    `json:"premiered,omitempty"`
	PosterURL       string    `json:"poster,omitempty"`
	IMDbID          string    `json:"imdbID"`
	RuntimeMinutes  *int      `json:"runtime,omitempty"`
	AverageRating   *float64  `json:"imdbRating,omitempty"`
	UserRating      int       `json:"userRating"`
	DecisionChanges int       `json:"countRatingDecisions"`
	RatedAt         time.Time `json:"ratedAt"`
}

// Year returns the premiere year, or "" when unknown.
func (i Item) Year() string {
	if len(i.Premiered) < 4 {
		return ""
	}
	return i.Premiered[:4]
}

// ValidRating reports whether n is an acceptable user rating.
func ValidRating(n int) bool {
	return n >= MinRating && n <= MaxRating
}

// NewItem builds a rated item from a fetched detail. id overrides the
// detail's own id when the detail carries none.
func NewItem(d catalog.Detail, id, rating, changes int) (Item, error) {
	if !ValidRating(rating) {
		return Item{}, fmt.Errorf("%w: %d", ErrInvalidRating, rating)
	}
	if d.ID != 0 {
		id = d.ID
	}
	if changes < 0 {
		changes = 0
	}
	return Item{
		ID:              id,
		Name:            d.Name,
		Premiered:       d.Premiered,
		PosterURL:       d.PosterURL,
		IMDbID:          d.IMDbID,
		RuntimeMinutes:  d.RuntimeMinutes,
		AverageRating:   d.AverageRating,
		UserRating:      rating,
		DecisionChanges: changes,
		RatedAt:         time.Now().UTC(),
	}, nil
}

// Lookup finds id in a snapshot of the store. It is a pure function so the
// answer is always computed from the snapshot the caller holds.
func Lookup(items []Item, id int) (Item, bool) {
	for _, it := range items {
		if it.ID == id {
			return it, true
		}
	}
	return Item{}, false
}
