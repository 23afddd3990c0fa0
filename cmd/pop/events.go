package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"
)

// eventRecord mirrors otel.Event for JSON decoding. Decoding the JSONL
// directly keeps older logs readable after the event schema changes.
type eventRecord struct {
	Time      time.Time      `json:"t"`
	Level     string         `json:"level"`
	Kind      string         `json:"kind"`
	Comp      string         `json:"comp"`
	SessionID string         `json:"session_id"`
	CallID    string         `json:"qid"`
	DurMs     float64        `json:"dur_ms"`
	Count     int            `json:"count"`
	Query     string         `json:"query"`
	ItemID    int            `json:"item_id"`
	Rating    int            `json:"rating"`
	Err       string         `json:"err"`
	Msg       string         `json:"msg"`
	Extra     map[string]any `json:"extra"`
}

// levelRank returns a numeric rank for filtering (higher = more severe).
func levelRank(level string) int {
	switch level {
	case "info":
		return 1
	case "warn":
		return 2
	case "error":
		return 3
	default:
		return 0
	}
}

// eventFilter selects events by the command-line filters. Empty fields
// match everything.
type eventFilter struct {
	kind     string
	level    string
	comp     string
	callID   string
	session  string
	minLevel int
}

func (f eventFilter) match(ev eventRecord) bool {
	switch {
	case f.kind != "" && !strings.HasPrefix(ev.Kind, f.kind):
		return false
	case f.level != "" && levelRank(ev.Level) < f.minLevel:
		return false
	case f.comp != "" && ev.Comp != f.comp:
		return false
	case f.callID != "" && !strings.HasPrefix(ev.CallID, f.callID):
		return false
	case f.session != "" && ev.SessionID != f.session:
		return false
	}
	return true
}

func runEvents() {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	tail := fs.Int("tail", 50, "Number of recent lines to show")
	follow := fs.Bool("f", false, "Follow mode (like tail -f)")
	calls := fs.Bool("calls", false, "Summarize search and detail calls (start to outcome, with latency)")
	var filter eventFilter
	fs.StringVar(&filter.kind, "kind", "", "Filter by event kind prefix (e.g. 'search', 'rated')")
	fs.StringVar(&filter.level, "level", "", "Minimum level: debug, info, warn, error")
	fs.StringVar(&filter.comp, "comp", "", "Filter by component name")
	fs.StringVar(&filter.callID, "qid", "", "Filter by call ID (prefix)")
	fs.StringVar(&filter.session, "session", "", "Filter by session ID")
	rawJSON := fs.Bool("json", false, "Output raw JSON lines")
	fs.Parse(os.Args[1:])
	filter.minLevel = levelRank(filter.level)

	logPath := loadConfig().EventsFile()
	f, err := os.Open(logPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		fmt.Fprintf(os.Stderr, "  Event log not found at %s\n", logPath)
		fmt.Fprintf(os.Stderr, "  Run popcorn first to generate events.\n")
		os.Exit(1)
	}
	defer f.Close()

	if *calls {
		lines := readTailLines(f, -1, filter.match)
		records := make([]eventRecord, len(lines))
		for i, l := range lines {
			records[i] = l.ev
		}
		printCalls(os.Stdout, summarizeCalls(records), *tail)
		return
	}

	emit := func(ev eventRecord, raw []byte) {
		if *rawJSON {
			fmt.Println(string(raw))
			return
		}
		fmt.Println(formatEvent(ev))
	}

	for _, l := range readTailLines(f, *tail, filter.match) {
		emit(l.ev, l.raw)
	}
	if *follow {
		followEvents(f, filter.match, emit)
	}
}

// followEvents polls f for appended lines until a read error other than EOF.
func followEvents(f *os.File, match func(eventRecord) bool, emit func(eventRecord, []byte)) {
	reader := bufio.NewReader(f)
	for {
		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		if err != nil {
			return
		}
		line = trimLine(line)
		var ev eventRecord
		if len(line) == 0 || json.Unmarshal(line, &ev) != nil {
			continue
		}
		if match(ev) {
			emit(ev, line)
		}
	}
}

// formatEvent renders one event as a single human-readable line.
func formatEvent(ev eventRecord) string {
	lvl := strings.ToUpper(ev.Level)
	if lvl == "" {
		lvl = "?"
	}
	parts := []string{fmt.Sprintf("%s %-5s [%-7s] %-18s", ev.Time.Format("15:04:05.000"), lvl, ev.Comp, ev.Kind)}

	if ev.Msg != "" {
		parts = append(parts, "- "+ev.Msg)
	}
	if ev.DurMs > 0 {
		parts = append(parts, fmt.Sprintf("(%s)", formatMs(ev.DurMs)))
	}
	if ev.Count > 0 {
		parts = append(parts, fmt.Sprintf("n=%d", ev.Count))
	}
	if ev.Query != "" {
		parts = append(parts, fmt.Sprintf("q=%q", ev.Query))
	}
	if ev.ItemID != 0 {
		parts = append(parts, fmt.Sprintf("id=%d", ev.ItemID))
	}
	if ev.Rating != 0 {
		parts = append(parts, fmt.Sprintf("rating=%d", ev.Rating))
	}
	if ev.CallID != "" {
		parts = append(parts, "qid="+shortID(ev.CallID))
	}
	if ev.Err != "" {
		parts = append(parts, "err="+ev.Err)
	}
	return strings.Join(parts, " ")
}

type parsedLine struct {
	ev  eventRecord
	raw []byte
}

// readTailLines returns the last n decodable lines of f that match. A
// negative n returns every match. With n == 0 nothing is read and the
// offset moves to the end of the file, ready for follow mode.
func readTailLines(f *os.File, n int, match func(eventRecord) bool) []parsedLine {
	if n == 0 {
		f.Seek(0, io.SeekEnd)
		return nil
	}

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 256*1024)

	var lines []parsedLine
	for scanner.Scan() {
		raw := scanner.Bytes()
		var ev eventRecord
		if len(raw) == 0 || json.Unmarshal(raw, &ev) != nil || !match(ev) {
			continue
		}
		lines = append(lines, parsedLine{ev: ev, raw: append([]byte(nil), raw...)})
		if n > 0 && len(lines) > 2*n {
			lines = append(lines[:0], lines[len(lines)-n:]...)
		}
	}
	if n > 0 && len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return lines
}

// callSummary is one search or detail call, from its start event to the
// first event that settled it.
type callSummary struct {
	CallID  string
	Comp    string
	Query   string
	Start   time.Time
	Outcome string // complete, empty, error, cancel, or pending
	Latency time.Duration
	Count   int
	Err     string
}

// summarizeCalls pairs each "<comp>.start" event with the first
// complete/empty/error/cancel event carrying the same call ID. Latency is
// the settled call's own duration when logged, otherwise the gap between
// the two events. Calls with no outcome yet are reported as pending.
// Results are ordered by start time.
func summarizeCalls(records []eventRecord) []callSummary {
	byID := make(map[string]*callSummary)
	var order []*callSummary

	for _, ev := range records {
		if ev.CallID == "" {
			continue
		}
		comp, phase, ok := strings.Cut(ev.Kind, ".")
		if !ok || (comp != "search" && comp != "detail") {
			continue
		}

		c := byID[ev.CallID]
		if phase == "start" {
			if c != nil {
				continue
			}
			c = &callSummary{CallID: ev.CallID, Comp: comp, Query: ev.Query, Start: ev.Time, Outcome: "pending"}
			byID[ev.CallID] = c
			order = append(order, c)
			continue
		}
		if c == nil || c.Outcome != "pending" {
			continue
		}
		switch phase {
		case "complete", "empty", "error", "cancel":
		default:
			continue
		}

		c.Outcome = phase
		c.Count = ev.Count
		c.Err = ev.Err
		if ev.DurMs > 0 {
			c.Latency = time.Duration(ev.DurMs * float64(time.Millisecond))
		} else if !ev.Time.IsZero() && !c.Start.IsZero() {
			c.Latency = ev.Time.Sub(c.Start)
		}
	}

	sort.SliceStable(order, func(i, j int) bool { return order[i].Start.Before(order[j].Start) })
	out := make([]callSummary, len(order))
	for i, c := range order {
		out[i] = *c
	}
	return out
}

// printCalls writes the last n calls followed by per-component totals.
func printCalls(w io.Writer, calls []callSummary, n int) {
	if len(calls) == 0 {
		fmt.Fprintln(w, "No search or detail calls logged.")
		return
	}

	shown := calls
	if n > 0 && len(shown) > n {
		shown = shown[len(shown)-n:]
	}
	for _, c := range shown {
		lat := "-"
		if c.Outcome != "pending" && c.Latency > 0 {
			lat = formatMs(float64(c.Latency) / float64(time.Millisecond))
		}
		line := fmt.Sprintf("%s %-6s %-8s %-8s %8s  q=%q",
			c.Start.Format("15:04:05.000"), c.Comp, shortID(c.CallID), c.Outcome, lat, c.Query)
		if c.Count > 0 {
			line += fmt.Sprintf(" n=%d", c.Count)
		}
		if c.Err != "" {
			line += " err=" + c.Err
		}
		fmt.Fprintln(w, line)
	}

	fmt.Fprintln(w)
	for _, comp := range []string{"search", "detail"} {
		var total, settled, canceled int
		var sum, slowest time.Duration
		for _, c := range calls {
			if c.Comp != comp {
				continue
			}
			total++
			switch c.Outcome {
			case "cancel":
				canceled++
			case "pending":
			default:
				settled++
				sum += c.Latency
				if c.Latency > slowest {
					slowest = c.Latency
				}
			}
		}
		if total == 0 {
			continue
		}
		avg := "-"
		if settled > 0 {
			avg = formatMs(float64(sum/time.Duration(settled)) / float64(time.Millisecond))
		}
		fmt.Fprintf(w, "%-6s calls=%d settled=%d canceled=%d avg=%s max=%s\n",
			comp, total, settled, canceled, avg, formatMs(float64(slowest)/float64(time.Millisecond)))
	}
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func trimLine(b []byte) []byte {
	for len(b) > 0 && (b[len(b)-1] == '\n' || b[len(b)-1] == '\r') {
		b = b[:len(b)-1]
	}
	return b
}

func formatMs(ms float64) string {
	switch {
	case ms >= 100:
		return fmt.Sprintf("%.0fms", ms)
	case ms >= 1:
		return fmt.Sprintf("%.1fms", ms)
	default:
		return fmt.Sprintf("%.2fms", ms)
	}
}
