package ui

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/abelbrown/popcorn/internal/coord"
	"github.com/abelbrown/popcorn/internal/hotkey"
	"github.com/abelbrown/popcorn/internal/logging"
	"github.com/abelbrown/popcorn/internal/otel"
	"github.com/abelbrown/popcorn/internal/ratings"
	"github.com/abelbrown/popcorn/internal/session"
)

// pane identifies which part of the screen has keyboard focus.
type pane int

const (
	paneQuery pane = iota
	paneResults
	paneDetail
	paneRated
)

func (p pane) String() string {
	return [...]string{"query", "results", "detail", "rated"}[p]
}

// AppConfig holds the collaborators of App.
type AppConfig struct {
	State  *coord.State
	Titles *TitleQueue      // receives title changes from the detail session
	Ring   *otel.RingBuffer // optional, feeds the debug overlay
	Events *otel.Logger     // optional
}

// App is the root Bubble Tea model.
// IMPORTANT: App does not run network calls itself. coord.State hands back
// commands and App routes their messages back to it.
type App struct {
	state      *coord.State
	titles     *TitleQueue
	ring       *otel.RingBuffer
	events     *otel.Logger
	unsubEnter func()

	input   textinput.Model
	spinner spinner.Model

	focus       pane
	cursor      int
	ratedCursor int

	status    string
	statusErr bool

	width        int
	height       int
	ready        bool
	debugVisible bool
}

// NewApp creates the root model and subscribes the Enter hotkey for the
// lifetime of the app. Call Close when the program exits.
func NewApp(cfg AppConfig) App {
	input := textinput.New()
	input.Placeholder = "Search shows..."
	input.Prompt = "🔍 "
	input.CharLimit = 120
	input.Focus()

	a := App{
		state:   cfg.State,
		titles:  cfg.Titles,
		ring:    cfg.Ring,
		events:  cfg.Events,
		input:   input,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		focus:   paneQuery,
	}
	a.unsubEnter = cfg.State.Keys().Subscribe(hotkey.Enter, func() tea.Cmd {
		return func() tea.Msg { return refocusQuery{} }
	})
	return a
}

// Close drops the app's hotkey subscription and cancels in-flight calls.
func (a App) Close() {
	if a.unsubEnter != nil {
		a.unsubEnter()
	}
	a.state.Close()
}

// Init starts the cursor blink and the spinner.
func (a App) Init() tea.Cmd {
	return batch(textinput.Blink, a.spinner.Tick, tea.SetWindowTitle(session.DefaultTitle))
}

// Update handles messages and returns the updated model and any commands.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	otel.TraceMsg(a.events, msg)

	a, cmd := a.update(msg)
	a = a.settleFocus()
	return a, batch(cmd, a.titles.Flush())
}

func (a App) update(msg tea.Msg) (App, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.ready = true
		a.input.Width = max(10, msg.Width/2)
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case refocusQuery:
		return a.refocus()
	}

	if cmd, ok := a.state.Update(msg); ok {
		a.cursor = clamp(a.cursor, len(a.state.Results()))
		return a, cmd
	}

	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	return a, cmd
}

// handleKeyMsg processes keyboard input.
func (a App) handleKeyMsg(msg tea.KeyMsg) (App, tea.Cmd) {
	if otel.TraceEnabled() {
		a.events.Emit(otel.Event{Level: otel.LevelDebug, Kind: otel.KindKeyPress, Comp: "ui",
			Msg: msg.String(), Extra: map[string]any{"pane": a.focus.String()}})
	}

	// Clear any status line on key press
	a.status, a.statusErr = "", false

	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	if a.debugVisible {
		if msg.String() == "D" || msg.Type == tea.KeyEsc {
			a.debugVisible = false
		}
		return a, nil
	}

	// Enter on the result list opens a show; everywhere else Enter and
	// Escape belong to the hotkey bus.
	if a.focus != paneResults || msg.Type != tea.KeyEnter {
		if cmd, ok := a.state.Keys().Dispatch(msg); ok {
			return a, cmd
		}
	}

	if a.focus == paneQuery {
		return a.handleQueryKey(msg)
	}

	switch msg.String() {
	case "q":
		return a, tea.Quit
	case "D":
		if a.ring != nil {
			a.debugVisible = true
		}
		return a, nil
	case "/", "i":
		return a.setFocus(paneQuery)
	case "tab":
		return a.setFocus(a.nextPane(1))
	case "shift+tab":
		return a.setFocus(a.nextPane(-1))
	}

	switch a.focus {
	case paneResults:
		return a.handleResultsKey(msg)
	case paneDetail:
		return a.handleDetailKey(msg)
	case paneRated:
		return a.handleRatedKey(msg)
	}
	return a, nil
}

func (a App) handleQueryKey(msg tea.KeyMsg) (App, tea.Cmd) {
	switch msg.String() {
	case "down":
		if len(a.state.Results()) > 0 {
			return a.setFocus(paneResults)
		}
		return a, nil
	case "tab":
		return a.setFocus(a.nextPane(1))
	case "shift+tab":
		return a.setFocus(a.nextPane(-1))
	}

	before := a.input.Value()
	var cmd tea.Cmd
	a.input, cmd = a.input.Update(msg)
	if after := a.input.Value(); after != before {
		a.cursor = 0
		return a, batch(cmd, a.state.SetQuery(after))
	}
	return a, cmd
}

func (a App) handleResultsKey(msg tea.KeyMsg) (App, tea.Cmd) {
	shows := a.state.Results()
	switch msg.String() {
	case "j", "down":
		if a.cursor < len(shows)-1 {
			a.cursor++
		}
	case "k", "up":
		if a.cursor == 0 {
			return a.setFocus(paneQuery)
		}
		a.cursor--
	case "g", "home":
		a.cursor = 0
	case "G", "end":
		if len(shows) > 0 {
			a.cursor = len(shows) - 1
		}
	case "enter", " ":
		if a.cursor >= len(shows) {
			return a, nil
		}
		cmd, err := a.state.Select(shows[a.cursor])
		if err != nil {
			a.status, a.statusErr = "Cannot open this show: no IMDb id", true
			logging.Warn("select failed", "show", shows[a.cursor].Name, "error", err)
			return a, nil
		}
		if a.state.Detail() != nil {
			a.focus = paneDetail
		}
		return a, cmd
	}
	return a, nil
}

func (a App) handleDetailKey(msg tea.KeyMsg) (App, tea.Cmd) {
	d := a.state.Detail()
	if d == nil {
		return a, nil
	}

	key := msg.String()
	switch key {
	case "1", "2", "3", "4", "5", "6", "7", "8", "9", "0":
		n, _ := strconv.Atoi(key)
		if n == 0 {
			n = ratings.MaxRating
		}
		a.setRating(n)
	case "left", "h":
		a.setRating(max(ratings.MinRating, d.PendingRating()-1))
	case "right", "l":
		a.setRating(min(ratings.MaxRating, d.PendingRating()+1))
	case "a", "+":
		return a.confirm()
	case "backspace":
		a.state.CloseSelection()
	}
	return a, nil
}

func (a *App) setRating(n int) {
	if _, rated := a.state.AlreadyRated(); rated {
		return
	}
	if err := a.state.SetRating(n); err != nil && !errors.Is(err, session.ErrNotReady) {
		a.status, a.statusErr = err.Error(), true
	}
}

func (a App) confirm() (App, tea.Cmd) {
	item, err := a.state.Confirm()
	switch {
	case errors.Is(err, session.ErrNotReady):
		a.status, a.statusErr = "Pick a rating first", true
	case errors.Is(err, session.ErrAlreadyRated):
		a.status, a.statusErr = "You have already rated this show", true
	case err != nil:
		a.status, a.statusErr = "Could not save rating: "+err.Error(), true
		logging.Error("confirm rating failed", "error", err)
	default:
		a.status = fmt.Sprintf("Added %s (%d ⭐)", item.Name, item.UserRating)
		logging.Info("rated show", "id", item.ID, "name", item.Name, "rating", item.UserRating,
			"changes", item.DecisionChanges)
	}
	return a, nil
}

func (a App) handleRatedKey(msg tea.KeyMsg) (App, tea.Cmd) {
	items := a.state.Rated()
	switch msg.String() {
	case "j", "down":
		if a.ratedCursor < len(items)-1 {
			a.ratedCursor++
		}
	case "k", "up":
		if a.ratedCursor > 0 {
			a.ratedCursor--
		}
	case "x", "delete":
		if a.ratedCursor >= len(items) {
			return a, nil
		}
		it := items[a.ratedCursor]
		if err := a.state.Remove(it.ID); err != nil {
			a.status, a.statusErr = "Could not remove: "+err.Error(), true
			logging.Error("remove rating failed", "id", it.ID, "error", err)
			return a, nil
		}
		a.status = "Removed " + it.Name
		a.ratedCursor = clamp(a.ratedCursor, len(items)-1)
	}
	return a, nil
}

// refocus handles the Enter hotkey. It does nothing while the query input
// already has focus.
func (a App) refocus() (App, tea.Cmd) {
	if a.focus == paneQuery {
		return a, nil
	}
	a, focusCmd := a.setFocus(paneQuery)
	a.input.SetValue("")
	a.cursor = 0
	return a, batch(focusCmd, a.state.SetQuery(""))
}

func (a App) setFocus(p pane) (App, tea.Cmd) {
	a.focus = p
	if p == paneQuery {
		return a, a.input.Focus()
	}
	a.input.Blur()
	return a, nil
}

// nextPane cycles through the panes that can currently take focus.
func (a App) nextPane(step int) pane {
	var order []pane
	order = append(order, paneQuery)
	if len(a.state.Results()) > 0 {
		order = append(order, paneResults)
	}
	if a.state.Detail() != nil {
		order = append(order, paneDetail)
	} else {
		order = append(order, paneRated)
	}

	idx := 0
	for i, p := range order {
		if p == a.focus {
			idx = i
		}
	}
	return order[(idx+step+len(order))%len(order)]
}

// settleFocus moves focus off panes that disappeared, such as a detail
// view closed by Escape or a result list reset by a short query.
func (a App) settleFocus() App {
	switch {
	case a.focus == paneDetail && a.state.Detail() == nil,
		a.focus == paneResults && len(a.state.Results()) == 0:
		if len(a.state.Results()) > 0 {
			a.focus = paneResults
		} else {
			a.focus = paneQuery
			a.input.Focus()
		}
	case a.focus == paneRated && a.state.Detail() != nil:
		a.focus = paneDetail
	}
	return a
}

// View renders the UI.
func (a App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.debugVisible {
		return debugOverlay(a.ring, a.width, a.height-1) + "\n" + debugStatusBar(a.width)
	}

	found := len(a.state.Results())
	header := RenderHeader(a.input.View(), found, a.width)

	// header (1) + status bar (1) + pane borders (2)
	bodyHeight := a.height - 4
	if bodyHeight < 3 {
		bodyHeight = 3
	}
	leftWidth := a.width * 2 / 5
	rightWidth := a.width - leftWidth

	openID := a.state.Selection().ID
	left := RenderResults(a.state.Search().State(), a.cursor, openID, a.focus == paneResults,
		a.spinner.View(), a.state.Gate().MinLen(), leftWidth, bodyHeight)

	var right string
	if d := a.state.Detail(); d != nil {
		prev, rated := a.state.AlreadyRated()
		right = RenderDetail(d, prev, rated, a.focus == paneDetail, a.spinner.View(), rightWidth, bodyHeight)
	} else {
		right = RenderRated(a.state.Rated(), a.state.Summary(), a.ratedCursor, a.focus == paneRated,
			rightWidth, bodyHeight)
	}

	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)
	return lipgloss.JoinVertical(lipgloss.Left, header, body,
		RenderStatusBar(a.status, a.statusErr, a.hints(), a.width))
}

func (a App) hints() []string {
	switch a.focus {
	case paneResults:
		return []string{hint("j/k", "nav"), hint("Enter", "open"), hint("/", "search"),
			hint("Tab", "pane"), hint("D", "debug"), hint("q", "quit")}
	case paneDetail:
		return []string{hint("1-0", "rate"), hint("a", "add"), hint("Esc", "back"),
			hint("Enter", "new search"), hint("q", "quit")}
	case paneRated:
		return []string{hint("j/k", "nav"), hint("x", "remove"), hint("Enter", "new search"),
			hint("Tab", "pane"), hint("q", "quit")}
	}
	return []string{hint("↓", "results"), hint("Tab", "pane"), hint("Esc", "close"), hint("ctrl+c", "quit")}
}

// Query returns the text in the query input (for testing).
func (a App) Query() string {
	return a.input.Value()
}

// Focus returns the name of the focused pane (for testing).
func (a App) Focus() string {
	return a.focus.String()
}

func clamp(i, n int) int {
	if i >= n {
		i = n - 1
	}
	if i < 0 {
		i = 0
	}
	return i
}

// batch is tea.Batch without the wrapper for zero or one command.
func batch(cmds ...tea.Cmd) tea.Cmd {
	var valid []tea.Cmd
	for _, c := range cmds {
		if c != nil {
			valid = append(valid, c)
		}
	}
	switch len(valid) {
	case 0:
		return nil
	case 1:
		return valid[0]
	}
	return tea.Batch(valid...)
}
