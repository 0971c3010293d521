// Package render formats terminal output.
package render

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/runoshun/tpaws/internal/domain"
)

// Colors is the palette shared by all tpaws output.
var Colors = struct {
	Primary   lipgloss.Color
	Secondary lipgloss.Color
	Muted     lipgloss.Color
	Error     lipgloss.Color
	Success   lipgloss.Color
	Warning   lipgloss.Color

	Open      lipgloss.Color
	Planned   lipgloss.Color
	Progress  lipgloss.Color
	Staging   lipgloss.Color
	Closed    lipgloss.Color
	LinkColor lipgloss.Color
}{
	Primary:   lipgloss.Color("#6C5CE7"), // Purple
	Secondary: lipgloss.Color("#A29BFE"), // Lavender
	Muted:     lipgloss.Color("#636E72"), // Gray
	Error:     lipgloss.Color("#D63031"), // Red
	Success:   lipgloss.Color("#00B894"), // Green
	Warning:   lipgloss.Color("#FDCB6E"), // Yellow

	Open:      lipgloss.Color("#74B9FF"), // Light blue
	Planned:   lipgloss.Color("#A29BFE"),
	Progress:  lipgloss.Color("#FDCB6E"),
	Staging:   lipgloss.Color("#00B894"),
	Closed:    lipgloss.Color("#636E72"),
	LinkColor: lipgloss.Color("#74B9FF"),
}

// Styles groups the lipgloss styles used by commands.
type Styles struct {
	Title     lipgloss.Style
	Underline lipgloss.Style
	Label     lipgloss.Style
	Link      lipgloss.Style
	Muted     lipgloss.Style
	Success   lipgloss.Style
	Error     lipgloss.Style
	Warning   lipgloss.Style
	Spinner   lipgloss.Style
}

// DefaultStyles returns the standard styles.
func DefaultStyles() Styles {
	return Styles{
		Title:     lipgloss.NewStyle().Bold(true).Foreground(Colors.Primary),
		Underline: lipgloss.NewStyle().Foreground(Colors.Muted),
		Label:     lipgloss.NewStyle().Bold(true),
		Link:      lipgloss.NewStyle().Foreground(Colors.LinkColor).Underline(true),
		Muted:     lipgloss.NewStyle().Foreground(Colors.Muted),
		Success:   lipgloss.NewStyle().Foreground(Colors.Success),
		Error:     lipgloss.NewStyle().Foreground(Colors.Error),
		Warning:   lipgloss.NewStyle().Foreground(Colors.Warning),
		Spinner:   lipgloss.NewStyle().Foreground(Colors.Secondary),
	}
}

// StateStyle returns the style for a ticket state.
func StateStyle(state domain.EntityState) lipgloss.Style {
	base := lipgloss.NewStyle().Bold(true)
	switch state {
	case domain.EntityStateOpen:
		return base.Foreground(Colors.Open)
	case domain.EntityStatePlanned:
		return base.Foreground(Colors.Planned)
	case domain.EntityStateInProgress:
		return base.Foreground(Colors.Progress)
	case domain.EntityStateInStaging:
		return base.Foreground(Colors.Staging)
	}
	return base.Foreground(Colors.Muted)
}

// StatusStyle returns the style for a pull request status.
func StatusStyle(status domain.PullRequestStatus) lipgloss.Style {
	if status == domain.PullRequestOpen {
		return lipgloss.NewStyle().Foreground(Colors.Success)
	}
	return lipgloss.NewStyle().Foreground(Colors.Closed)
}
