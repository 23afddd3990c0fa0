package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/abelbrown/popcorn/internal/otel"
)

// debugPanelChrome is the number of terminal lines consumed by DebugPanel's
// border (top + bottom = 2) and vertical padding (top + bottom = 2).
// Must be updated if DebugPanel style changes.
const debugPanelChrome = 4

// debugOverlay renders the debug panel showing call stats and recent events.
// Pure function with no side effects. Returns empty string if ring is nil.
func debugOverlay(ring *otel.RingBuffer, width, height int) string {
	if ring == nil {
		return ""
	}

	stats := ring.Stats()
	recent := ring.Filter(func(e otel.Event) bool { return e.Kind.Subsystem() != "trace" })
	if len(recent) > 20 {
		recent = recent[len(recent)-20:]
	}

	var lines []string
	lines = append(lines, DebugHeaderStyle.Render("Call Stats"))
	lines = append(lines, fmt.Sprintf("  Searches:   %d started, %d complete, %d empty, %d errors, %d cancelled",
		stats[otel.KindSearchStart], stats[otel.KindSearchComplete], stats[otel.KindSearchEmpty],
		stats[otel.KindSearchError], stats[otel.KindSearchCancel]))
	lines = append(lines, fmt.Sprintf("  Details:    %d started, %d complete, %d errors, %d cancelled",
		stats[otel.KindDetailStart], stats[otel.KindDetailComplete], stats[otel.KindDetailError],
		stats[otel.KindDetailCancel]))
	lines = append(lines, fmt.Sprintf("  Rated:      %d added, %d removed, %d store errors",
		stats[otel.KindRatedAdd], stats[otel.KindRatedRemove], stats[otel.KindStoreError]))
	lines = append(lines, fmt.Sprintf("  Buffer:     %d / %d events", ring.Len(), ring.Cap()))
	lines = append(lines, "")

	lines = append(lines, DebugHeaderStyle.Render("Recent Events"))
	for _, e := range recent {
		line := fmt.Sprintf("  %6s  %-18s", formatAge(time.Since(e.Time)), string(e.Kind))
		if e.Query != "" {
			line += "  " + truncateRunes(fmt.Sprintf("%q", e.Query), 24)
		}
		if e.Msg != "" {
			line += "  " + truncateRunes(e.Msg, 40)
		}
		if e.Err != "" {
			line += "  ERR:" + truncateRunes(e.Err, 30)
		}
		if e.Dur > 0 {
			line += "  " + formatAge(e.Dur)
		}
		if e.CallID != "" {
			qid := e.CallID
			if len(qid) > 8 {
				qid = qid[:8]
			}
			line += fmt.Sprintf("  qid:%s", qid)
		}
		lines = append(lines, line)
	}

	maxHeight := height - debugPanelChrome
	if maxHeight < 1 {
		maxHeight = 1
	}
	if len(lines) > maxHeight {
		lines = lines[:maxHeight]
	}

	panelWidth := 96
	if panelWidth > width-4 {
		panelWidth = width - 4
	}
	if panelWidth < 20 {
		panelWidth = 20
	}

	return DebugPanel.Width(panelWidth).Render(strings.Join(lines, "\n"))
}

// formatAge formats a duration as a compact human string.
// Handles negative durations from clock skew by clamping to "0ms".
func formatAge(d time.Duration) string {
	if d < 0 {
		return "0ms"
	}
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		return fmt.Sprintf("%.0fm", d.Minutes())
	}
}

// debugStatusBar renders the status bar for the debug overlay.
func debugStatusBar(width int) string {
	keys := StatusBarKey.Render("D") + StatusBarText.Render(":close")
	return StatusBar.Width(width).Render("  [DEBUG]  " + keys)
}
