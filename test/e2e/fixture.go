// Package e2e drives the popcorn binary through a pseudo-terminal against a
// fake catalog.
package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/abelbrown/popcorn/internal/ratings"
	"github.com/abelbrown/popcorn/internal/store"
)

// fixtureShow is a show in the fake catalog, in TVMaze's wire shape.
type fixtureShow struct {
	ID        int      `json:"id"`
	Name      string   `json:"name"`
	Premiered string   `json:"premiered"`
	Genres    []string `json:"genres"`
	Summary   string   `json:"summary"`
	Runtime   int      `json:"runtime"`
	Rating    struct {
		Average float64 `json:"average"`
	} `json:"rating"`
	Externals struct {
		IMDb string `json:"imdb"`
	} `json:"externals"`
}

func fixtureShows() []fixtureShow {
	mk := func(id int, name, premiered, imdb string, runtime int, avg float64) fixtureShow {
		s := fixtureShow{ID: id, Name: name, Premiered: premiered, Runtime: runtime,
			Genres: []string{"Drama"}, Summary: "<p>A deterministic <b>" + name + "</b> for UI tests.</p>"}
		s.Rating.Average = avg
		s.Externals.IMDb = imdb
		return s
	}
	return []fixtureShow{
		mk(42, "Fixture Show One", "1966-01-12", "tt0000042", 30, 7.5),
		mk(43, "Fixture Show Two", "2011-04-17", "tt0000043", 60, 8.9),
	}
}

// newCatalogServer serves /search/shows and /lookup/shows from fixtureShows.
func newCatalogServer() *httptest.Server {
	shows := fixtureShows()
	mux := http.NewServeMux()

	mux.HandleFunc("/search/shows", func(w http.ResponseWriter, r *http.Request) {
		q := strings.ToLower(r.URL.Query().Get("q"))
		type hit struct {
			Score float64     `json:"score"`
			Show  fixtureShow `json:"show"`
		}
		hits := []hit{}
		for _, s := range shows {
			if strings.Contains(strings.ToLower(s.Name), q) {
				hits = append(hits, hit{Score: 0.9, Show: s})
			}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(hits)
	})

	mux.HandleFunc("/lookup/shows", func(w http.ResponseWriter, r *http.Request) {
		imdb := r.URL.Query().Get("imdb")
		for _, s := range shows {
			if s.Externals.IMDb == imdb {
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(s)
				return
			}
		}
		http.NotFound(w, r)
	})

	return httptest.NewServer(mux)
}

// seedRated writes one already-rated show into the data dir's database.
func seedRated(dataDir string) error {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	st, err := store.Open(filepath.Join(dataDir, "popcorn.db"))
	if err != nil {
		return err
	}
	defer st.Close()

	rs := ratings.Open(st)
	_, err = rs.Add(ratings.Item{
		ID:         43,
		Name:       "Fixture Show Two",
		IMDbID:     "tt0000043",
		UserRating: 9,
		RatedAt:    time.Now().UTC(),
	})
	return err
}

// readRated loads the rated list the way the app does.
func readRated(dataDir string) ([]ratings.Item, error) {
	st, err := store.Open(filepath.Join(dataDir, "popcorn.db"))
	if err != nil {
		return nil, err
	}
	defer st.Close()
	return ratings.Open(st).Items(), nil
}
