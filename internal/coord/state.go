// Package coord owns popcorn's application state: the query, the selection,
// the rated list, the search session, and the detail session for whatever
// show is open.
//
// State is driven from the bubbletea Update goroutine. Its methods return
// tea.Cmds for the network calls they start; settled calls come back as
// messages and are routed through Update.
package coord

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/popcorn/internal/catalog"
	"github.com/abelbrown/popcorn/internal/hotkey"
	"github.com/abelbrown/popcorn/internal/otel"
	"github.com/abelbrown/popcorn/internal/ratings"
	"github.com/abelbrown/popcorn/internal/selection"
	"github.com/abelbrown/popcorn/internal/session"
)

// Catalog is the remote show catalog.
type Catalog interface {
	session.Searcher
	session.Looker
}

// Options tunes the query gate.
type Options struct {
	MinQueryLen int
	Debounce    time.Duration
}

// Deps are State's collaborators. Catalog and Ratings are required.
type Deps struct {
	Catalog Catalog
	Ratings *ratings.Store
	Keys    *hotkey.Bus
	Titler  session.Titler
	Events  *otel.Logger
}

// State is the top-level application state.
type State struct {
	ctx    context.Context
	deps   Deps
	query  string
	gate   *session.Gate
	search *session.SearchSession
	sel    *selection.Coordinator
	detail *session.DetailSession // nil when nothing is selected
}

// New returns a State with an empty query and nothing selected. Network
// calls run under contexts derived from ctx.
func New(ctx context.Context, opts Options, deps Deps) *State {
	if deps.Keys == nil {
		deps.Keys = hotkey.New()
	}
	return &State{
		ctx:    ctx,
		deps:   deps,
		gate:   session.NewGate(opts.MinQueryLen, opts.Debounce),
		search: session.NewSearchSession(ctx, deps.Catalog, deps.Events),
		sel:    selection.New(),
	}
}

// Query returns the current raw query.
func (s *State) Query() string { return s.query }

// Gate returns the query gate.
func (s *State) Gate() *session.Gate { return s.gate }

// Search returns the search session.
func (s *State) Search() *session.SearchSession { return s.search }

// Results returns the current result list, or nil when the search is not in
// the success state.
func (s *State) Results() []catalog.Show {
	shows, _ := s.search.State().Value()
	return shows
}

// Selection returns the open selection.
func (s *State) Selection() selection.Selection { return s.sel.Current() }

// Detail returns the detail session for the open show, or nil.
func (s *State) Detail() *session.DetailSession { return s.detail }

// Keys returns the hotkey bus sessions subscribe on.
func (s *State) Keys() *hotkey.Bus { return s.deps.Keys }

// SetQuery applies a change of the raw query. Any change closes the detail
// view. A query below the gate threshold resets the search synchronously;
// otherwise the search starts now or after the debounce delay.
func (s *State) SetQuery(q string) tea.Cmd {
	if q == s.query {
		return nil
	}
	s.query = q
	s.CloseSelection()

	if !s.gate.Qualifies(q) {
		s.gate.Disarm()
		s.search.Reset()
		return nil
	}
	if cmd := s.gate.Schedule(q); cmd != nil {
		// The live call answers a query the user already replaced.
		s.search.Cancel()
		return cmd
	}
	return s.search.Submit(q)
}

// Select toggles the selection to show and recreates the detail session.
func (s *State) Select(show catalog.Show) (tea.Cmd, error) {
	next, err := s.sel.Select(show.ID, show.IMDbID)
	if err != nil {
		return nil, fmt.Errorf("select %q: %w", show.Name, err)
	}

	s.closeDetail()
	if next.Empty() {
		return nil, nil
	}

	s.detail = session.NewDetailSession(s.ctx, next, s.deps.Catalog, session.DetailOptions{
		Titler:  s.deps.Titler,
		Keys:    s.deps.Keys,
		OnClose: s.closeFromKey,
		Events:  s.deps.Events,
	})
	return s.detail.Start(), nil
}

func (s *State) closeFromKey() tea.Cmd {
	s.CloseSelection()
	return nil
}

// CloseSelection clears the selection and tears down the detail session.
func (s *State) CloseSelection() {
	s.sel.Clear()
	s.closeDetail()
}

func (s *State) closeDetail() {
	if s.detail != nil {
		s.detail.Close()
		s.detail = nil
	}
}

// AlreadyRated reports whether the open show is in the rated list, using
// the store's current contents.
func (s *State) AlreadyRated() (ratings.Item, bool) {
	if s.detail == nil {
		return ratings.Item{}, false
	}
	return s.detail.AlreadyRated(s.deps.Ratings.Items())
}

// SetRating records a pending rating on the open show.
func (s *State) SetRating(n int) error {
	if s.detail == nil {
		return session.ErrNotReady
	}
	return s.detail.SetRating(n)
}

// Confirm stores the open show with its pending rating and closes the
// detail view. When the store write fails the view stays open.
func (s *State) Confirm() (ratings.Item, error) {
	if s.detail == nil {
		return ratings.Item{}, session.ErrNotReady
	}
	item, err := s.detail.Confirm(s.deps.Ratings.Items())
	if err != nil {
		return ratings.Item{}, err
	}
	if _, err := s.deps.Ratings.Add(item); err != nil {
		return ratings.Item{}, err
	}
	s.CloseSelection()
	return item, nil
}

// Remove deletes a rated show.
func (s *State) Remove(id int) error {
	_, err := s.deps.Ratings.Remove(id)
	return err
}

// Rated returns the rated list.
func (s *State) Rated() []ratings.Item { return s.deps.Ratings.Items() }

// Summary aggregates the rated list.
func (s *State) Summary() ratings.Summary { return s.deps.Ratings.Summary() }

// Update routes session messages. Reports whether msg was one of them.
func (s *State) Update(msg tea.Msg) (tea.Cmd, bool) {
	switch msg := msg.(type) {
	case session.GateElapsed:
		if s.gate.Accept(msg) && msg.Query == s.query {
			return s.search.Submit(msg.Query), true
		}
		return nil, true

	case session.SearchSettled:
		s.search.Apply(msg)
		return nil, true

	case session.DetailSettled:
		if s.detail != nil {
			s.detail.Apply(msg)
		} else {
			s.deps.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindDetailCancel,
				Comp: "detail", Query: msg.IMDbID, Msg: "no open session"})
		}
		return nil, true
	}
	return nil, false
}

// Close cancels everything in flight.
func (s *State) Close() {
	s.CloseSelection()
	s.gate.Disarm()
	s.search.Reset()
}
