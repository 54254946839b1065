package model

import "github.com/charmbracelet/lipgloss"

// palette adapts to light and dark terminals
var (
	accent = lipgloss.AdaptiveColor{Light: "#1D4ED8", Dark: "#60A5FA"}
	muted  = lipgloss.AdaptiveColor{Light: "#6B7280", Dark: "#9CA3AF"}
	bad    = lipgloss.AdaptiveColor{Light: "#B91C1C", Dark: "#F87171"}
	good   = lipgloss.AdaptiveColor{Light: "#15803D", Dark: "#4ADE80"}
	notice = lipgloss.AdaptiveColor{Light: "#A16207", Dark: "#FACC15"}
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(accent)
	helpStyle    = lipgloss.NewStyle().Foreground(muted)
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(bad)
	successStyle = lipgloss.NewStyle().Foreground(good)
	warningStyle = lipgloss.NewStyle().Foreground(notice)

	subtleStyle = lipgloss.NewStyle().Foreground(muted).Padding(0, 1)
	activeStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1).
			Foreground(lipgloss.AdaptiveColor{Light: "#FFFFFF", Dark: "#111827"}).Background(accent)

	modalStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).Padding(1, 2)
)
