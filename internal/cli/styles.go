// Package cli holds the terminal styling and prompts shared by ledger commands.
package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Palette.
var (
	AccentColor  = lipgloss.Color("#007AFF")
	SuccessColor = lipgloss.Color("#34C759")
	WarningColor = lipgloss.Color("#FF9500")
	ErrorColor   = lipgloss.Color("#FF3B30")
	InfoColor    = lipgloss.Color("#5AC8FA")
	MutedColor   = lipgloss.Color("241")
	HeaderColor  = lipgloss.Color("86")
	BorderColor  = lipgloss.Color("#333")
)

// Text styles. Budget usage is colored with SuccessStyle, WarningStyle and
// ErrorStyle for under, near and over the limit.
var (
	TitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(AccentColor).MarginBottom(1)
	SuccessStyle = lipgloss.NewStyle().Foreground(SuccessColor)
	WarningStyle = lipgloss.NewStyle().Foreground(WarningColor)
	ErrorStyle   = lipgloss.NewStyle().Foreground(ErrorColor)
	InfoStyle    = lipgloss.NewStyle().Foreground(InfoColor)
	MutedStyle   = lipgloss.NewStyle().Foreground(MutedColor)
	BoldStyle    = lipgloss.NewStyle().Bold(true)
	PromptStyle  = lipgloss.NewStyle().Bold(true).Foreground(AccentColor)

	// HeaderStyle is used for the header row of ledger tables.
	HeaderStyle = lipgloss.NewStyle().Bold(true).Foreground(HeaderColor)

	// BoxStyle frames the overview panels of summary and sync status.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(BorderColor).
			Padding(1, 2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	InfoIcon    = "ℹ️"
	LedgerIcon  = "💰"
	TrendIcon   = "📈"
	SyncIcon    = "🔄"
	RepeatIcon  = "🔁"
)

// FormatSuccess prefixes message with the success icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError prefixes message with the error icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning prefixes message with the warning icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo prefixes message with the info icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle renders a report heading.
func FormatTitle(title string) string {
	return TitleStyle.Render(LedgerIcon + " " + title)
}

// FormatPrompt renders a question waiting for input.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " ")
}

// RenderBox renders content under title in a rounded box.
func RenderBox(title, content string) string {
	return BoxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
		TitleStyle.UnsetMargins().Render(title),
		content))
}

// StyleSuccess colors text as success without an icon.
func StyleSuccess(text string) string { return SuccessStyle.Render(text) }

// StyleWarning colors text as a warning without an icon.
func StyleWarning(text string) string { return WarningStyle.Render(text) }

// StyleError colors text as an error without an icon.
func StyleError(text string) string { return ErrorStyle.Render(text) }

// Bar draws a horizontal bar of width cells filled to fraction, clamped to [0, 1].
func Bar(fraction float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(fraction*float64(width) + 0.5)
	filled = max(0, min(filled, width))
	return InfoStyle.Render(strings.Repeat("█", filled)) + MutedStyle.Render(strings.Repeat("░", width-filled))
}
