package ui

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/popcorn/internal/catalog"
	"github.com/abelbrown/popcorn/internal/ratings"
	"github.com/abelbrown/popcorn/internal/session"
)

// truncateRunes shortens s to at most n runes, marking the cut with "…".
func truncateRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	if n == 1 {
		return "…"
	}
	return string(runes[:n-1]) + "…"
}

// scrollStart returns the first visible row so that cursor stays on screen.
func scrollStart(cursor, total, visible int) int {
	if visible <= 0 || total <= visible {
		return 0
	}
	start := cursor - visible/2
	if start < 0 {
		start = 0
	}
	if start > total-visible {
		start = total - visible
	}
	return start
}

// RenderHeader renders the logo, the query input, and the result count.
func RenderHeader(input string, found int, width int) string {
	left := Logo.Render("🍿 popcorn") + "  " + input
	right := ""
	if found > 0 {
		right = ResultCount.Render(fmt.Sprintf("Found %d results", found))
	}
	padding := width - lipgloss.Width(left) - lipgloss.Width(right) - 2
	if padding < 1 {
		padding = 1
	}
	return Header.Width(width).Render(left + strings.Repeat(" ", padding) + right)
}

// RenderResults renders the search pane. Exactly one of the hint, the
// spinner, the error, or the list is drawn.
func RenderResults(st session.State[[]catalog.Show], cursor, openID int, focused bool, spin string, minLen, width, height int) string {
	var body string
	switch st.Status() {
	case session.StatusIdle:
		body = HelpStyle.Render(fmt.Sprintf("Type at least %d characters to search", minLen))
	case session.StatusLoading:
		body = spin + " Loading..."
	case session.StatusError:
		body = ErrorStyle.Render("⛔ " + st.ErrorMessage())
	case session.StatusSuccess:
		shows, _ := st.Value()
		body = renderShowList(shows, cursor, openID, focused, width-4, height)
	}
	return paneBox(focused, width, height).Render(body)
}

func renderShowList(shows []catalog.Show, cursor, openID int, focused bool, width, height int) string {
	start := scrollStart(cursor, len(shows), height)
	end := start + height
	if end > len(shows) {
		end = len(shows)
	}

	lines := make([]string, 0, end-start)
	for i := start; i < end; i++ {
		s := shows[i]
		label := s.Name
		if y := s.Year(); y != "" {
			label += " (" + y + ")"
		}
		label = truncateRunes(label, width-2)

		switch {
		case i == cursor && focused:
			lines = append(lines, SelectedItem.Render(label))
		case s.ID == openID:
			lines = append(lines, OpenItem.Render(label))
		default:
			lines = append(lines, NormalItem.Render(label))
		}
	}
	return strings.Join(lines, "\n")
}

// RenderStars renders a ten-star widget with n filled.
func RenderStars(n int) string {
	if n < 0 {
		n = 0
	}
	if n > ratings.MaxRating {
		n = ratings.MaxRating
	}
	return StarOn.Render(strings.Repeat("★", n)) + StarOff.Render(strings.Repeat("☆", ratings.MaxRating-n))
}

// RenderDetail renders the detail pane for an open show.
func RenderDetail(d *session.DetailSession, prev ratings.Item, rated bool, focused bool, spin string, width, height int) string {
	st := d.State()
	var body string
	switch st.Status() {
	case session.StatusIdle, session.StatusLoading:
		body = spin + " Loading..."
	case session.StatusError:
		body = ErrorStyle.Render("⛔ " + st.ErrorMessage())
	case session.StatusSuccess:
		detail, _ := st.Value()
		body = renderDetailBody(detail, d, prev, rated, width-4)
	}
	body += "\n\n" + MetaItem.Render("esc: back")
	return paneBox(focused, width, height).Render(body)
}

func renderDetailBody(detail catalog.Detail, d *session.DetailSession, prev ratings.Item, rated bool, width int) string {
	var lines []string
	lines = append(lines, DetailTitle.Render(truncateRunes(detail.Name, width)))

	var meta []string
	if detail.Premiered != "" {
		meta = append(meta, detail.Premiered)
	}
	if detail.RuntimeMinutes != nil {
		meta = append(meta, fmt.Sprintf("%d min", *detail.RuntimeMinutes))
	}
	if len(meta) > 0 {
		lines = append(lines, MetaItem.Render(strings.Join(meta, " · ")))
	}
	if g := detail.GenreList(); g != "" {
		lines = append(lines, MetaItem.Render(g))
	}
	if detail.AverageRating != nil {
		lines = append(lines, fmt.Sprintf("⭐ %.1f rating", *detail.AverageRating))
	}
	lines = append(lines, "")

	if rated {
		lines = append(lines, fmt.Sprintf("You have already rated this show %d ⭐", prev.UserRating))
	} else {
		pending := d.PendingRating()
		row := RenderStars(pending)
		if pending > 0 {
			row += fmt.Sprintf(" %d", pending)
		}
		lines = append(lines, row)
		if pending > 0 {
			lines = append(lines, AddButton.Render("a: + Add to list"))
		} else {
			lines = append(lines, MetaItem.Render("1-9, 0 for 10, ←/→ to rate"))
		}
	}
	lines = append(lines, "")

	if syn := detail.Synopsis(); syn != "" {
		lines = append(lines, Synopsis.Width(width).Render(syn))
	}
	return strings.Join(lines, "\n")
}

// RenderRated renders the summary and the rated list.
func RenderRated(items []ratings.Item, sum ratings.Summary, cursor int, focused bool, width, height int) string {
	summary := SummaryStyle.Width(width - 4).Render(fmt.Sprintf(
		"Shows you rated\n#️⃣ %d shows  ⭐ %.2f  🌟 %.2f  ⏳ %.0f min",
		sum.Count, sum.AvgCatalogRating, sum.AvgUserRating, sum.AvgRuntime))

	listHeight := height - lipgloss.Height(summary) - 1
	start := scrollStart(cursor, len(items), listHeight)
	end := start + listHeight
	if end > len(items) {
		end = len(items)
	}

	lines := []string{summary, ""}
	for i := start; i < end; i++ {
		it := items[i]
		stats := fmt.Sprintf("🌟 %d", it.UserRating)
		if it.AverageRating != nil {
			stats = fmt.Sprintf("⭐ %.1f  ", *it.AverageRating) + stats
		}
		if it.RuntimeMinutes != nil {
			stats += fmt.Sprintf("  ⏳ %d min", *it.RuntimeMinutes)
		}
		name := truncateRunes(it.Name, width-lipgloss.Width(stats)-8)
		line := name + "  " + MetaItem.Render(stats)
		if focused && i == cursor {
			line = SelectedItem.Render(name + "  " + stats)
		} else {
			line = NormalItem.Render(line)
		}
		lines = append(lines, line)
	}
	return paneBox(focused, width, height).Render(strings.Join(lines, "\n"))
}

// RenderStatusBar renders the bottom bar: a status or error message on the
// left and key hints for the focused pane on the right.
func RenderStatusBar(status string, isErr bool, hints []string, width int) string {
	left := ""
	if status != "" {
		if isErr {
			left = ErrorStyle.Render(status)
		} else {
			left = NoticeStyle.Render(status)
		}
	}
	keyHints := strings.Join(hints, " ")

	padding := width - lipgloss.Width(left) - lipgloss.Width(keyHints) - 2
	if padding < 1 {
		padding = 1
	}
	return StatusBar.Width(width).Render(left + strings.Repeat(" ", padding) + keyHints)
}

func hint(key, desc string) string {
	return StatusBarKey.Render(key) + StatusBarText.Render(":"+desc)
}

func paneBox(focused bool, width, height int) lipgloss.Style {
	st := Box
	if focused {
		st = FocusedBox
	}
	w := width - 2
	if w < 1 {
		w = 1
	}
	h := height
	if h < 1 {
		h = 1
	}
	return st.Width(w).Height(h)
}
