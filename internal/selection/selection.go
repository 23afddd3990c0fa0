// Package selection holds the single source of truth for which show is
// currently open in the detail view.
package selection

import "errors"

// ErrIncomplete is returned when a selection is missing its id or IMDb id.
var ErrIncomplete = errors.New("selection: id and imdb id are both required")

// Selection identifies the open show. The zero value means nothing is
// selected; ID and IMDbID are either both set or both empty.
type Selection struct {
	ID     int
	IMDbID string
}

// Empty reports whether nothing is selected.
func (s Selection) Empty() bool {
	return s.ID == 0 && s.IMDbID == ""
}

// Coordinator owns the current Selection. It is used only from the UI
// goroutine and is not safe for concurrent use.
type Coordinator struct {
	cur Selection
}

// New returns a Coordinator with nothing selected.
func New() *Coordinator {
	return &Coordinator{}
}

// Select opens the show with the given id. Selecting the id that is already
// open toggles the selection off. The returned Selection is the new current
// value (empty after a toggle-off).
func (c *Coordinator) Select(id int, imdbID string) (Selection, error) {
	if id == 0 || imdbID == "" {
		return c.cur, ErrIncomplete
	}
	if c.cur.ID == id {
		c.cur = Selection{}
		return c.cur, nil
	}
	c.cur = Selection{ID: id, IMDbID: imdbID}
	return c.cur, nil
}

// Clear drops the current selection unconditionally.
func (c *Coordinator) Clear() {
	c.cur = Selection{}
}

// Current returns the open selection, or the zero Selection.
func (c *Coordinator) Current() Selection {
	return c.cur
}
