package session

import (
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
)

// DefaultMinQueryLen is the shortest query that triggers a search.
const DefaultMinQueryLen = 3

// GateElapsed fires when a debounced query has been stable for the gate's
// delay. Only the newest one is honored.
type GateElapsed struct {
	Seq   uint64
	Query string
}

// Gate decides whether a raw query warrants a search and debounces the
// ones that do. The length check is always synchronous.
type Gate struct {
	minLen int
	delay  time.Duration
	seq    uint64
}

// NewGate returns a Gate. minLen <= 0 uses DefaultMinQueryLen; delay <= 0
// disables debouncing.
func NewGate(minLen int, delay time.Duration) *Gate {
	if minLen <= 0 {
		minLen = DefaultMinQueryLen
	}
	return &Gate{minLen: minLen, delay: delay}
}

// MinLen returns the length threshold in runes.
func (g *Gate) MinLen() int { return g.minLen }

// Delay returns the debounce delay.
func (g *Gate) Delay() time.Duration { return g.delay }

// Qualifies reports whether q is long enough to search. Length is counted
// in runes on the raw input, without trimming.
func (g *Gate) Qualifies(q string) bool {
	return utf8.RuneCountInString(q) >= g.minLen
}

// Schedule supersedes any pending tick and returns a command that delivers
// GateElapsed for q after the delay. Returns nil when debouncing is off.
func (g *Gate) Schedule(q string) tea.Cmd {
	g.seq++
	if g.delay <= 0 {
		return nil
	}
	seq := g.seq
	return tea.Tick(g.delay, func(time.Time) tea.Msg {
		return GateElapsed{Seq: seq, Query: q}
	})
}

// Accept reports whether msg is the newest scheduled tick.
func (g *Gate) Accept(msg GateElapsed) bool {
	return g.delay > 0 && msg.Seq == g.seq
}

// Disarm invalidates any pending tick.
func (g *Gate) Disarm() { g.seq++ }
