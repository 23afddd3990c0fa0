package ui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("62")  // Purple
	colorSecondary = lipgloss.Color("241") // Gray
	colorMuted     = lipgloss.Color("240") // Darker gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorSuccess   = lipgloss.Color("78")  // Green
	colorStar      = lipgloss.Color("220") // Gold
	colorError     = lipgloss.Color("196") // Red
)

// Header style for the top bar holding the logo and query input.
var Header = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// Logo style for the app name in the header.
var Logo = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255"))

// ResultCount style for "Found N results".
var ResultCount = lipgloss.NewStyle().
	Foreground(lipgloss.Color("254"))

// Box style for the two content panes.
var Box = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorMuted).
	Padding(0, 1)

// FocusedBox style for the pane that has keyboard focus.
var FocusedBox = Box.
	BorderForeground(colorPrimary)

// SelectedItem style for the currently highlighted row.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// NormalItem style for other rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Padding(0, 1)

// OpenItem marks the row whose details are showing.
var OpenItem = NormalItem.
	Foreground(colorHighlight)

// MetaItem style for secondary text such as years and runtimes.
var MetaItem = lipgloss.NewStyle().
	Foreground(colorSecondary)

// DetailTitle style for the show name in the detail pane.
var DetailTitle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)

// Synopsis style for the show summary.
var Synopsis = lipgloss.NewStyle().
	Foreground(lipgloss.Color("252")).
	Italic(true)

// StarOn and StarOff render the rating widget.
var (
	StarOn  = lipgloss.NewStyle().Foreground(colorStar)
	StarOff = lipgloss.NewStyle().Foreground(colorMuted)
)

// AddButton style for the add-to-list hint.
var AddButton = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(colorSuccess).
	Bold(true).
	Padding(0, 1)

// SummaryStyle for the rated-list summary block.
var SummaryStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236")).
	Padding(0, 1)

// StatusBarKey style for key hints in status bar.
var StatusBarKey = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// StatusBarText style for descriptive text in status bar.
var StatusBarText = lipgloss.NewStyle().
	Foreground(colorSecondary)

// ErrorStyle for displaying errors.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true).
	Padding(0, 1)

// HelpStyle for idle hints.
var HelpStyle = lipgloss.NewStyle().
	Foreground(colorMuted).
	Padding(1, 2)

// NoticeStyle for confirmations in the status line.
var NoticeStyle = lipgloss.NewStyle().
	Foreground(colorSuccess).
	Bold(true)

// DebugPanel style for the debug overlay.
var DebugPanel = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(colorHighlight).
	Padding(1, 2)

// DebugHeaderStyle for section headers inside the debug overlay.
var DebugHeaderStyle = lipgloss.NewStyle().
	Bold(true).
	Foreground(colorHighlight)
