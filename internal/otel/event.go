// Package otel provides structured observability for popcorn.
//
// Events are typed structs serialized as JSONL lines. The Logger writes
// events asynchronously via a buffered channel and background drain goroutine.
// An optional RingBuffer keeps recent events in memory for the debug overlay.
package otel

import (
	"encoding/json"
	"strings"
	"time"
)

// Level defines event severity for filtering.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// EventKind identifies the category of an observability event.
// Dot-delimited: "<subsystem>.<action>".
type EventKind string

const (
	// Search session
	KindSearchStart    EventKind = "search.start"
	KindSearchComplete EventKind = "search.complete"
	KindSearchEmpty    EventKind = "search.empty"
	KindSearchError    EventKind = "search.error"
	KindSearchCancel   EventKind = "search.cancel"
	KindSearchReset    EventKind = "search.reset"

	// Detail session
	KindDetailStart    EventKind = "detail.start"
	KindDetailComplete EventKind = "detail.complete"
	KindDetailError    EventKind = "detail.error"
	KindDetailCancel   EventKind = "detail.cancel"

	// Rated-item store
	KindRatedAdd    EventKind = "rated.add"
	KindRatedRemove EventKind = "rated.remove"
	KindRatedLoad   EventKind = "rated.load"
	KindStoreError  EventKind = "store.error"

	// UI
	KindKeyPress EventKind = "ui.key"

	// System
	KindStartup  EventKind = "sys.startup"
	KindShutdown EventKind = "sys.shutdown"
	KindError    EventKind = "sys.error"

	// Trace (POPCORN_TRACE)
	KindMsgReceived EventKind = "trace.msg_received"
	KindMsgHandled  EventKind = "trace.msg_handled"
)

// Subsystem returns the part of the kind before the first dot.
func (k EventKind) Subsystem() string {
	s := string(k)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		return s[:i]
	}
	return s
}

// Event is the universal observability record. Every field except Kind and
// Time is optional. Serialized as a single JSONL line.
type Event struct {
	Time      time.Time      `json:"t"`
	Level     Level          `json:"level,omitempty"`
	Kind      EventKind      `json:"kind"`
	Comp      string         `json:"comp,omitempty"`       // "search", "detail", "ratings", "ui", "main"
	SessionID string         `json:"session_id,omitempty"` // same for the entire app run
	CallID    string         `json:"qid,omitempty"`        // correlation id of one catalog call
	Dur       time.Duration  `json:"-"`
	DurMs     float64        `json:"dur_ms,omitempty"` // computed from Dur at marshal time
	Count     int            `json:"count,omitempty"`
	Query     string         `json:"query,omitempty"`
	ItemID    int            `json:"item_id,omitempty"`
	Rating    int            `json:"rating,omitempty"`
	Err       string         `json:"err,omitempty"`
	Msg       string         `json:"msg,omitempty"`
	Extra     map[string]any `json:"extra,omitempty"`
}

// MarshalJSON implements json.Marshaler, converting Dur to DurMs.
func (e Event) MarshalJSON() ([]byte, error) {
	type Alias Event
	a := struct {
		Alias
	}{Alias: Alias(e)}
	if e.Dur > 0 {
		a.DurMs = float64(e.Dur) / float64(time.Millisecond)
	}
	return json.Marshal(a)
}
