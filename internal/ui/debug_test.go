package ui

import (
	"strings"
	"testing"
	"time"

	"github.com/abelbrown/popcorn/internal/otel"
)

func TestDebugOverlayNilRing(t *testing.T) {
	result := debugOverlay(nil, 80, 24)
	if result != "" {
		t.Errorf("debugOverlay(nil) should return empty string, got %q", result)
	}
}

func TestDebugOverlayRendersStats(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindSearchStart, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindSearchStart, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindSearchComplete, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindSearchCancel, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindDetailStart, Time: time.Now()})
	ring.Push(otel.Event{Kind: otel.KindRatedAdd, Time: time.Now()})

	result := debugOverlay(ring, 120, 40)

	if !strings.Contains(result, "Call Stats") {
		t.Error("overlay should contain 'Call Stats' header")
	}
	if !strings.Contains(result, "2 started, 1 complete, 0 empty, 0 errors, 1 cancelled") {
		t.Errorf("overlay should show search stats, got:\n%s", result)
	}
	if !strings.Contains(result, "1 added, 0 removed") {
		t.Errorf("overlay should show rated stats, got:\n%s", result)
	}
	if !strings.Contains(result, "6 / 64 events") {
		t.Errorf("overlay should show buffer stats, got:\n%s", result)
	}
}

func TestDebugOverlayRecentEvents(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	ring.Push(otel.Event{Kind: otel.KindSearchStart, Time: time.Now(), Query: "bat", CallID: "abcdef1234567890"})
	ring.Push(otel.Event{Kind: otel.KindSearchError, Time: time.Now(), Err: "timeout"})
	ring.Push(otel.Event{Kind: otel.KindDetailCancel, Time: time.Now(), Msg: "superseded"})
	ring.Push(otel.Event{Kind: otel.KindMsgReceived, Time: time.Now(), Msg: "tea.KeyMsg"})

	result := debugOverlay(ring, 120, 40)

	if !strings.Contains(result, "Recent Events") {
		t.Error("overlay should contain 'Recent Events' header")
	}
	if !strings.Contains(result, `"bat"`) {
		t.Errorf("overlay should show the query, got:\n%s", result)
	}
	if !strings.Contains(result, "superseded") {
		t.Errorf("overlay should show event message, got:\n%s", result)
	}
	if !strings.Contains(result, "ERR:timeout") {
		t.Errorf("overlay should show error, got:\n%s", result)
	}
	if !strings.Contains(result, "qid:abcdef12") {
		t.Errorf("overlay should show truncated call ID, got:\n%s", result)
	}
	if strings.Contains(result, "tea.KeyMsg") {
		t.Errorf("trace events should not be listed, got:\n%s", result)
	}
}

func TestDebugOverlayTruncation(t *testing.T) {
	ring := otel.NewRingBuffer(64)
	for i := 0; i < 30; i++ {
		ring.Push(otel.Event{Kind: otel.KindSearchStart, Time: time.Now()})
	}

	result := debugOverlay(ring, 80, 10)
	if result == "" {
		t.Error("overlay should still render with small height")
	}

	// height 10 leaves 6 content lines plus border and padding
	if lines := strings.Count(result, "\n"); lines > 20 {
		t.Errorf("overlay should be truncated, got %d lines", lines)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		dur  time.Duration
		want string
	}{
		{0, "0ms"},
		{50 * time.Millisecond, "50ms"},
		{999 * time.Millisecond, "999ms"},
		{1500 * time.Millisecond, "1.5s"},
		{30 * time.Second, "30.0s"},
		{90 * time.Second, "2m"}, // 1.5 minutes rounds to 2 with %.0f
		{5 * time.Minute, "5m"},
	}
	for _, tt := range tests {
		got := formatAge(tt.dur)
		if got != tt.want {
			t.Errorf("formatAge(%v) = %q, want %q", tt.dur, got, tt.want)
		}
	}
}

func TestFormatAgeNegative(t *testing.T) {
	got := formatAge(-5 * time.Second)
	if got != "0ms" {
		t.Errorf("formatAge(-5s) = %q, want \"0ms\"", got)
	}
}
