// Package hotkey is a small subscription bus for global key bindings.
//
// Components subscribe a binding when they become active and call the
// returned unsubscribe func when they go away. The root model feeds every
// key press through Dispatch before its own handling.
package hotkey

import (
	"slices"
	"sync"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Handler reacts to a matched key. It may return a command for the program.
type Handler func() tea.Cmd

type subscription struct {
	id      uint64
	binding key.Binding
	fn      Handler
}

// Bus routes key presses to subscribed handlers.
type Bus struct {
	mu   sync.Mutex
	next uint64
	subs []subscription
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers fn for binding. The returned func removes exactly this
// subscription; calling it more than once is a no-op.
func (b *Bus) Subscribe(binding key.Binding, fn Handler) (unsubscribe func()) {
	b.mu.Lock()
	b.next++
	id := b.next
	b.subs = append(b.subs, subscription{id: id, binding: binding, fn: fn})
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { b.remove(id) })
	}
}

func (b *Bus) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.id == id })
}

// Dispatch runs every handler whose binding matches msg, in subscription
// order. Handlers may subscribe or unsubscribe while running; the set that
// runs is fixed when Dispatch starts. Reports whether anything matched.
func (b *Bus) Dispatch(msg tea.KeyMsg) (tea.Cmd, bool) {
	b.mu.Lock()
	subs := slices.Clone(b.subs)
	b.mu.Unlock()

	var cmds []tea.Cmd
	matched := false
	for _, s := range subs {
		if !s.binding.Enabled() || !key.Matches(msg, s.binding) {
			continue
		}
		matched = true
		if cmd := s.fn(); cmd != nil {
			cmds = append(cmds, cmd)
		}
	}
	switch len(cmds) {
	case 0:
		return nil, matched
	case 1:
		return cmds[0], matched
	}
	return tea.Batch(cmds...), matched
}

// Len returns the number of live subscriptions.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

// Global bindings shared by the root model and the detail view.
var (
	Escape = key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "close details"))
	Enter  = key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "new search"))
)
