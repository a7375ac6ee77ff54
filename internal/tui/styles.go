package tui

import "github.com/charmbracelet/lipgloss"

// Colors used in the application.
var (
	colorPrimary   = lipgloss.Color("208") // HN orange
	colorSecondary = lipgloss.Color("241") // Gray
	colorHighlight = lipgloss.Color("212") // Pink
	colorError     = lipgloss.Color("196") // Red
)

// Title style for the header line.
var Title = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(colorPrimary).
	Padding(0, 1)

// SelectedItem style for the row under the cursor.
var SelectedItem = lipgloss.NewStyle().
	Bold(true).
	Foreground(lipgloss.Color("255")).
	Background(lipgloss.Color("236"))

// NormalItem style for other rows.
var NormalItem = lipgloss.NewStyle().
	Foreground(lipgloss.Color("255"))

// Meta style for author, comment and point columns.
var Meta = lipgloss.NewStyle().
	Foreground(colorSecondary)

// HistoryEntry style for previous-search shortcuts.
var HistoryEntry = lipgloss.NewStyle().
	Foreground(colorSecondary).
	Padding(0, 1)

// HistorySelected style for the highlighted shortcut.
var HistorySelected = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true).
	Padding(0, 1)

// SortActive style for the active sort column in the header.
var SortActive = lipgloss.NewStyle().
	Foreground(colorHighlight).
	Bold(true)

// ErrorStyle for the failure indicator.
var ErrorStyle = lipgloss.NewStyle().
	Foreground(colorError).
	Bold(true)

// StatusBar style for the bottom status bar.
var StatusBar = lipgloss.NewStyle().
	Foreground(colorSecondary)
