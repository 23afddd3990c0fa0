package session

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/popcorn/internal/catalog"
	"github.com/abelbrown/popcorn/internal/otel"
)

// User-facing messages.
const (
	NoResultMessage       = "No Result!"
	UnknownErrorMessage   = "Unknown Error!"
	DetailNotFoundMessage = "Details Not Found!"
)

// Searcher is the catalog search call. *catalog.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string) ([]catalog.Show, error)
}

// SearchSession turns query submissions into a State over the result list.
type SearchSession struct {
	client Searcher
	ctrl   *Controller
	state  State[[]catalog.Show]
	query  string
	events *otel.Logger
}

// NewSearchSession returns an idle session. Calls run under contexts
// derived from parent.
func NewSearchSession(parent context.Context, client Searcher, events *otel.Logger) *SearchSession {
	return &SearchSession{
		client: client,
		ctrl:   NewController(parent),
		events: events,
	}
}

// State returns the visible state.
func (s *SearchSession) State() State[[]catalog.Show] { return s.state }

// Query returns the query of the most recent submission, or "" after Reset.
func (s *SearchSession) Query() string { return s.query }

// InFlight reports whether a call is live.
func (s *SearchSession) InFlight() bool { return s.ctrl.Live() != nil }

// Submit issues a search for query, superseding any live call. The state
// moves to loading unless an error is showing; in that case the error stays
// up until the new call settles. The returned command performs the call.
func (s *SearchSession) Submit(query string) tea.Cmd {
	if prev := s.ctrl.Live(); prev != nil {
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchCancel, Comp: "search",
			CallID: prev.CallID, Query: s.query, Msg: "superseded"})
	}
	tok := s.ctrl.Begin()
	if s.state.Status() != StatusError {
		s.state = Loading[[]catalog.Show]()
	}
	s.query = query

	s.events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindSearchStart, Comp: "search",
		CallID: tok.CallID, Query: query})

	client := s.client
	return func() tea.Msg {
		start := time.Now()
		shows, err := client.Search(tok.Context(), query)
		return SearchSettled{Token: tok, Query: query, Results: shows, Err: err, Dur: time.Since(start)}
	}
}

// Apply folds a settled call into the state. Results from superseded or
// canceled calls are dropped. Reports whether the state changed.
func (s *SearchSession) Apply(msg SearchSettled) bool {
	if !s.ctrl.Owns(msg.Token) {
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchCancel, Comp: "search",
			CallID: callID(msg.Token), Query: msg.Query, Dur: msg.Dur, Msg: "discarded"})
		return false
	}
	s.ctrl.Release(msg.Token)

	ev := otel.Event{Comp: "search", CallID: msg.Token.CallID, Query: msg.Query, Dur: msg.Dur}
	switch {
	case isCancellation(msg.Err):
		return false
	case msg.Err != nil:
		s.state = Failed[[]catalog.Show](errorMessage(msg.Err))
		ev.Level, ev.Kind, ev.Err = otel.LevelWarn, otel.KindSearchError, msg.Err.Error()
	case len(msg.Results) == 0:
		s.state = Failed[[]catalog.Show](NoResultMessage)
		ev.Level, ev.Kind = otel.LevelInfo, otel.KindSearchEmpty
	default:
		s.state = Success(msg.Results)
		ev.Level, ev.Kind, ev.Count = otel.LevelInfo, otel.KindSearchComplete, len(msg.Results)
	}
	s.events.Emit(ev)
	return true
}

// Cancel aborts the live call, if any, and leaves the visible state as it
// is. Used when a new query is pending but not yet submitted.
func (s *SearchSession) Cancel() {
	if prev := s.ctrl.Cancel(); prev != nil {
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchCancel, Comp: "search",
			CallID: prev.CallID, Query: s.query, Msg: "pending query"})
	}
}

// Reset cancels any live call and returns to idle with no results and no
// error.
func (s *SearchSession) Reset() {
	if prev := s.ctrl.Cancel(); prev != nil {
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchCancel, Comp: "search",
			CallID: prev.CallID, Query: s.query, Msg: "reset"})
	}
	if s.state.Status() != StatusIdle {
		s.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindSearchReset, Comp: "search"})
	}
	s.state = Idle[[]catalog.Show]()
	s.query = ""
}

func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled)
}

func errorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return UnknownErrorMessage
}

func callID(t *Token) string {
	if t == nil {
		return ""
	}
	return t.CallID
}
