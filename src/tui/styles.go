package tui

import "github.com/charmbracelet/lipgloss"

// StyleConfig holds all customizable style colors for the watch view.
type StyleConfig struct {
	// Primary colors
	PrimaryBlue   lipgloss.Color
	AccentBlue    lipgloss.Color
	TextPrimary   lipgloss.Color
	TextSecondary lipgloss.Color
	BorderColor   lipgloss.Color

	// Build result colors
	Success  lipgloss.Color
	Unstable lipgloss.Color
	Failure  lipgloss.Color
	Aborted  lipgloss.Color
}

// DefaultStyles returns the default color palette
func DefaultStyles() *StyleConfig {
	return &StyleConfig{
		PrimaryBlue:   lipgloss.Color("#8AB4F8"),
		AccentBlue:    lipgloss.Color("#4285F4"),
		TextPrimary:   lipgloss.Color("#E8EAED"),
		TextSecondary: lipgloss.Color("#9AA0A6"),
		BorderColor:   lipgloss.Color("#5F6368"),
		Success:       lipgloss.Color("#34A853"),
		Unstable:      lipgloss.Color("#FBBC04"),
		Failure:       lipgloss.Color("#EA4335"),
		Aborted:       lipgloss.Color("#9AA0A6"),
	}
}

// TitleStyle returns a title lipgloss style using this config
func (s *StyleConfig) TitleStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.PrimaryBlue).
		Bold(true).
		Padding(0, 1)
}

// HelpStyle returns a help text lipgloss style using this config
func (s *StyleConfig) HelpStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(s.TextSecondary).
		Padding(0, 1)
}

// ViewportStyle returns a viewport container lipgloss style using this config
func (s *StyleConfig) ViewportStyle(focused bool) lipgloss.Style {
	border := s.BorderColor
	if focused {
		border = s.AccentBlue
	}
	return lipgloss.NewStyle().
		Foreground(s.TextPrimary).
		Border(lipgloss.RoundedBorder()).
		BorderForeground(border)
}

// ResultStyle colors a build result. Unknown results use the secondary text color.
func (s *StyleConfig) ResultStyle(result string) lipgloss.Style {
	color := s.TextSecondary
	switch result {
	case "SUCCESS":
		color = s.Success
	case "UNSTABLE":
		color = s.Unstable
	case "FAILURE":
		color = s.Failure
	case "ABORTED", "NOT_BUILT":
		color = s.Aborted
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true)
}
