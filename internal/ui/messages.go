// Package ui provides the Bubble Tea TUI for popcorn.
package ui

import tea "github.com/charmbracelet/bubbletea"

// refocusQuery is sent by the Enter hotkey: focus the query input and
// clear it.
type refocusQuery struct{}

// TitleQueue collects window title changes made during an Update and hands
// the latest one to the program afterwards. It satisfies session.Titler.
type TitleQueue struct {
	pending string
	dirty   bool
}

// SetTitle records a title change.
func (q *TitleQueue) SetTitle(title string) {
	q.pending = title
	q.dirty = true
}

// Flush returns a command applying the latest title, or nil.
func (q *TitleQueue) Flush() tea.Cmd {
	if q == nil || !q.dirty {
		return nil
	}
	q.dirty = false
	return tea.SetWindowTitle(q.pending)
}
