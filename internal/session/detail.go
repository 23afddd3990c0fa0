package session

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/abelbrown/popcorn/internal/catalog"
	"github.com/abelbrown/popcorn/internal/hotkey"
	"github.com/abelbrown/popcorn/internal/otel"
	"github.com/abelbrown/popcorn/internal/ratings"
	"github.com/abelbrown/popcorn/internal/selection"
)

// DefaultTitle is the window title when no show is open.
const DefaultTitle = "popcorn"

var (
	// ErrNotReady is returned when rating is attempted before the detail
	// loaded or before a rating was picked.
	ErrNotReady = errors.New("session: detail not ready to rate")

	// ErrAlreadyRated is returned when confirming a show that is already in
	// the rated list.
	ErrAlreadyRated = errors.New("session: show already rated")
)

// Looker is the catalog lookup call. *catalog.Client satisfies it.
type Looker interface {
	Lookup(ctx context.Context, imdbID string) (catalog.Detail, error)
}

// Titler receives window title changes.
type Titler interface {
	SetTitle(title string)
}

// DetailOptions are the collaborators of a DetailSession. All are optional.
type DetailOptions struct {
	Titler Titler
	Keys   *hotkey.Bus
	// OnClose runs when the user presses Escape while the session is open.
	OnClose func() tea.Cmd
	Events  *otel.Logger
}

// DetailSession is the lifecycle of one opened show. It is created when a
// show is selected and closed when the selection changes; it is never
// reused for another show.
type DetailSession struct {
	sel     selection.Selection
	client  Looker
	ctrl    *Controller
	state   State[catalog.Detail]
	opts    DetailOptions
	unsub   func()
	started bool
	closed  bool

	pending int
	changes int
}

// NewDetailSession returns an idle session for sel. Call Start to begin
// the lookup.
func NewDetailSession(parent context.Context, sel selection.Selection, client Looker, opts DetailOptions) *DetailSession {
	return &DetailSession{
		sel:    sel,
		client: client,
		ctrl:   NewController(parent),
		opts:   opts,
	}
}

// Selection returns the show this session is for.
func (d *DetailSession) Selection() selection.Selection { return d.sel }

// State returns the visible state.
func (d *DetailSession) State() State[catalog.Detail] { return d.state }

// Closed reports whether Close has run.
func (d *DetailSession) Closed() bool { return d.closed }

// Start subscribes the close key and issues the lookup. Only the first call
// does anything; later calls and calls after Close return nil.
func (d *DetailSession) Start() tea.Cmd {
	if d.started || d.closed {
		return nil
	}
	d.started = true

	if d.opts.Keys != nil && d.opts.OnClose != nil {
		d.unsub = d.opts.Keys.Subscribe(hotkey.Escape, d.opts.OnClose)
	}

	tok := d.ctrl.Begin()
	d.state = Loading[catalog.Detail]()
	d.opts.Events.Emit(otel.Event{Level: otel.LevelInfo, Kind: otel.KindDetailStart, Comp: "detail",
		CallID: tok.CallID, ItemID: d.sel.ID, Query: d.sel.IMDbID})

	client, imdbID := d.client, d.sel.IMDbID
	return func() tea.Msg {
		start := time.Now()
		detail, err := client.Lookup(tok.Context(), imdbID)
		return DetailSettled{Token: tok, IMDbID: imdbID, Detail: detail, Err: err, Dur: time.Since(start)}
	}
}

// Apply folds a settled lookup into the state. Anything arriving after
// Close, or for a canceled token, is dropped. Reports whether the state
// changed.
func (d *DetailSession) Apply(msg DetailSettled) bool {
	if d.closed || !d.ctrl.Owns(msg.Token) {
		d.opts.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindDetailCancel, Comp: "detail",
			CallID: callID(msg.Token), Query: msg.IMDbID, Dur: msg.Dur, Msg: "discarded"})
		return false
	}
	d.ctrl.Release(msg.Token)

	ev := otel.Event{Comp: "detail", CallID: msg.Token.CallID, ItemID: d.sel.ID, Query: msg.IMDbID, Dur: msg.Dur}
	switch {
	case isCancellation(msg.Err):
		return false
	case errors.Is(msg.Err, catalog.ErrNotFound):
		d.state = Failed[catalog.Detail](DetailNotFoundMessage)
		ev.Level, ev.Kind, ev.Err = otel.LevelWarn, otel.KindDetailError, msg.Err.Error()
	case msg.Err != nil:
		d.state = Failed[catalog.Detail](errorMessage(msg.Err))
		ev.Level, ev.Kind, ev.Err = otel.LevelWarn, otel.KindDetailError, msg.Err.Error()
	default:
		d.state = Success(msg.Detail)
		ev.Level, ev.Kind = otel.LevelInfo, otel.KindDetailComplete
		if d.opts.Titler != nil {
			d.opts.Titler.SetTitle(titleFor(msg.Detail))
		}
	}
	d.opts.Events.Emit(ev)
	return true
}

func titleFor(d catalog.Detail) string {
	if d.Name == "" {
		return DefaultTitle
	}
	return "Show | " + d.Name
}

// Close cancels the lookup, drops the close-key subscription, and restores
// the default title. Idempotent.
func (d *DetailSession) Close() {
	if d.closed {
		return
	}
	d.closed = true

	if tok := d.ctrl.Cancel(); tok != nil {
		d.opts.Events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindDetailCancel, Comp: "detail",
			CallID: tok.CallID, ItemID: d.sel.ID, Msg: "closed"})
	}
	if d.unsub != nil {
		d.unsub()
		d.unsub = nil
	}
	if d.started && d.opts.Titler != nil {
		d.opts.Titler.SetTitle(DefaultTitle)
	}
}

// AlreadyRated looks the selected show up in snapshot. The answer is never
// cached; pass the store's current items on every call.
func (d *DetailSession) AlreadyRated(snapshot []ratings.Item) (ratings.Item, bool) {
	return ratings.Lookup(snapshot, d.sel.ID)
}

// SetRating records the pending rating. Every change to a different value,
// the first included, counts as a decision change.
func (d *DetailSession) SetRating(n int) error {
	if d.closed || d.state.Status() != StatusSuccess {
		return ErrNotReady
	}
	if !ratings.ValidRating(n) {
		return ratings.ErrInvalidRating
	}
	if n != d.pending {
		d.pending = n
		d.changes++
	}
	return nil
}

// PendingRating returns the picked but unconfirmed rating, or 0.
func (d *DetailSession) PendingRating() int { return d.pending }

// DecisionChanges returns how many times the pending rating changed.
func (d *DetailSession) DecisionChanges() int { return d.changes }

// Confirm builds the rated item from the loaded detail and pending rating.
// The caller adds it to the store; the session does not mutate it.
func (d *DetailSession) Confirm(snapshot []ratings.Item) (ratings.Item, error) {
	detail, ok := d.state.Value()
	if d.closed || !ok || d.pending == 0 {
		return ratings.Item{}, ErrNotReady
	}
	if _, rated := d.AlreadyRated(snapshot); rated {
		return ratings.Item{}, ErrAlreadyRated
	}
	return ratings.NewItem(detail, d.sel.ID, d.pending, d.changes)
}
