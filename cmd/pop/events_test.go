package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeEventLog(t *testing.T, lines ...string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "popcorn.events.jsonl")
	if err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { f.Close() })
	return f
}

func TestReadTailLines(t *testing.T) {
	f := writeEventLog(t,
		`{"kind":"search.start","query":"a"}`,
		`not json`,
		`{"kind":"rated.add","item_id":42}`,
		``,
		`{"kind":"search.complete","query":"b"}`,
		`{"kind":"search.error","query":"c"}`,
	)

	got := readTailLines(f, 2, func(ev eventRecord) bool { return strings.HasPrefix(ev.Kind, "search") })
	if len(got) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(got))
	}
	if got[0].ev.Query != "b" || got[1].ev.Query != "c" {
		t.Errorf("expected the last two search events, got %q and %q", got[0].ev.Query, got[1].ev.Query)
	}
}

func TestReadTailLinesZero(t *testing.T) {
	f := writeEventLog(t, `{"kind":"sys.startup"}`)
	if got := readTailLines(f, 0, func(eventRecord) bool { return true }); len(got) != 0 {
		t.Errorf("tail 0 should return nothing, got %d", len(got))
	}
}

func TestSummarizeCalls(t *testing.T) {
	t0 := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	at := func(ms int) time.Time { return t0.Add(time.Duration(ms) * time.Millisecond) }

	records := []eventRecord{
		{Time: at(0), Kind: "search.start", CallID: "aaaaaaaa-1", Query: "bat"},
		{Time: at(5), Kind: "search.cancel", CallID: "aaaaaaaa-1", Msg: "superseded"},
		{Time: at(5), Kind: "search.start", CallID: "bbbbbbbb-2", Query: "batm"},
		{Time: at(40), Kind: "search.cancel", CallID: "aaaaaaaa-1", Msg: "discarded", DurMs: 38},
		{Time: at(90), Kind: "search.complete", CallID: "bbbbbbbb-2", Query: "batm", DurMs: 84, Count: 3},
		{Time: at(100), Kind: "detail.start", CallID: "cccccccc-3", Query: "tt0059968"},
		{Time: at(160), Kind: "detail.error", CallID: "cccccccc-3", Err: "not found"},
		{Time: at(200), Kind: "detail.start", CallID: "dddddddd-4", Query: "tt2"},
		{Time: at(210), Kind: "rated.add", ItemID: 42},
		{Time: at(220), Kind: "search.complete", CallID: "unknown", DurMs: 1},
	}

	got := summarizeCalls(records)
	if len(got) != 4 {
		t.Fatalf("expected 4 calls, got %d: %+v", len(got), got)
	}

	want := []struct {
		id, comp, outcome string
		latency           time.Duration
	}{
		{"aaaaaaaa-1", "search", "cancel", 5 * time.Millisecond},
		{"bbbbbbbb-2", "search", "complete", 84 * time.Millisecond},
		{"cccccccc-3", "detail", "error", 60 * time.Millisecond},
		{"dddddddd-4", "detail", "pending", 0},
	}
	for i, w := range want {
		c := got[i]
		if c.CallID != w.id || c.Comp != w.comp || c.Outcome != w.outcome || c.Latency != w.latency {
			t.Errorf("call %d = {%s %s %s %v}, want {%s %s %s %v}",
				i, c.CallID, c.Comp, c.Outcome, c.Latency, w.id, w.comp, w.outcome, w.latency)
		}
	}
	if got[1].Count != 3 || got[1].Query != "batm" {
		t.Errorf("completed search = %+v", got[1])
	}
	if got[2].Err != "not found" {
		t.Errorf("detail error = %q", got[2].Err)
	}
}

func TestPrintCalls(t *testing.T) {
	t0 := time.Date(2026, 10, 16, 12, 0, 0, 0, time.UTC)
	calls := []callSummary{
		{CallID: "aaaaaaaa-1", Comp: "search", Query: "bat", Start: t0, Outcome: "cancel", Latency: 5 * time.Millisecond},
		{CallID: "bbbbbbbb-2", Comp: "search", Query: "batm", Start: t0, Outcome: "complete", Latency: 80 * time.Millisecond, Count: 3},
		{CallID: "cccccccc-3", Comp: "detail", Query: "tt2", Start: t0, Outcome: "pending"},
	}

	var buf bytes.Buffer
	printCalls(&buf, calls, 2)
	out := buf.String()

	if strings.Contains(out, "aaaaaaaa") {
		t.Errorf("only the last 2 calls should be listed, got:\n%s", out)
	}
	for _, want := range []string{
		`bbbbbbbb complete   80.0ms  q="batm" n=3`,
		`cccccccc pending`,
		"search calls=2 settled=1 canceled=1 avg=80.0ms max=80.0ms",
		"detail calls=1 settled=0 canceled=0 avg=- max=0.00ms",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output should contain %q, got:\n%s", want, out)
		}
	}

	buf.Reset()
	printCalls(&buf, nil, 10)
	if !strings.Contains(buf.String(), "No search or detail calls") {
		t.Errorf("empty summary = %q", buf.String())
	}
}

func TestEventFilter(t *testing.T) {
	ev := eventRecord{Kind: "search.error", Level: "warn", Comp: "search", CallID: "abcdef12-34", SessionID: "s1"}
	tests := []struct {
		name   string
		filter eventFilter
		want   bool
	}{
		{"empty", eventFilter{}, true},
		{"kind prefix", eventFilter{kind: "search"}, true},
		{"other kind", eventFilter{kind: "detail"}, false},
		{"level at min", eventFilter{level: "warn", minLevel: levelRank("warn")}, true},
		{"level above", eventFilter{level: "error", minLevel: levelRank("error")}, false},
		{"call id prefix", eventFilter{callID: "abcdef12"}, true},
		{"other session", eventFilter{session: "s2"}, false},
	}
	for _, tt := range tests {
		if got := tt.filter.match(ev); got != tt.want {
			t.Errorf("%s: match = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestReadTailLinesAll(t *testing.T) {
	f := writeEventLog(t,
		`{"kind":"search.start","query":"a"}`,
		`{"kind":"search.start","query":"b"}`,
		`{"kind":"search.start","query":"c"}`,
	)
	if got := readTailLines(f, -1, func(eventRecord) bool { return true }); len(got) != 3 {
		t.Errorf("negative n should return every line, got %d", len(got))
	}
}

func TestLevelRank(t *testing.T) {
	if !(levelRank("debug") < levelRank("info") && levelRank("info") < levelRank("warn") &&
		levelRank("warn") < levelRank("error")) {
		t.Error("levels should be ordered debug < info < warn < error")
	}
	if levelRank("bogus") != 0 {
		t.Error("unknown level should rank as debug")
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in   string
		max  int
		want string
	}{
		{"Lost", 10, "Lost"},
		{"Battlestar Galactica", 10, "Battles..."},
		{"Amélie", 6, "Amélie"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.max); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.max, got, tt.want)
		}
	}
}

func TestOptionalFormatting(t *testing.T) {
	rt := 45
	avg := 8.25
	if got := optInt(&rt, " min"); got != "45 min" {
		t.Errorf("optInt = %q", got)
	}
	if got := optInt(nil, " min"); got != "-" {
		t.Errorf("optInt(nil) = %q", got)
	}
	if got := optFloat(&avg); got != "8.2" && got != "8.3" {
		t.Errorf("optFloat = %q", got)
	}
	if got := optFloat(nil); got != "-" {
		t.Errorf("optFloat(nil) = %q", got)
	}
}
