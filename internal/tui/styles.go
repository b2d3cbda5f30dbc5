package tui

import (
	"github.com/charmbracelet/lipgloss"

	"trainload/internal/analysis"
)

// Colors
var (
	primaryColor   = lipgloss.Color("#2563EB") // Blue
	secondaryColor = lipgloss.Color("#10B981") // Green
	warningColor   = lipgloss.Color("#F59E0B") // Amber
	errorColor     = lipgloss.Color("#EF4444") // Red
	mutedColor     = lipgloss.Color("#6B7280") // Gray
	textColor      = lipgloss.Color("#F9FAFB") // Light gray
)

// Styles
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(textColor).
			Background(primaryColor).
			Padding(0, 1).
			MarginBottom(1)

	// Navigation
	navStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginBottom(1)

	navActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	navInactiveStyle = lipgloss.NewStyle().
				Foreground(mutedColor)

	// Cards and boxes
	cardStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(mutedColor).
			Padding(1, 2)

	cardTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor).
			MarginBottom(1)

	// Metrics
	metricLabelStyle = lipgloss.NewStyle().
				Foreground(mutedColor).
				Width(20)

	metricValueStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(textColor)

	// Table
	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(primaryColor).
				BorderBottom(true).
				BorderForeground(mutedColor).
				Padding(0, 1)

	tableRowStyle = lipgloss.NewStyle().
			Padding(0, 1)

	tableSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Background(primaryColor).
				Foreground(textColor).
				Padding(0, 1)

	// Status
	statusStyle = lipgloss.NewStyle().
			Foreground(mutedColor).
			MarginTop(1)

	errorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	successStyle = lipgloss.NewStyle().
			Foreground(secondaryColor)

	warningStyle = lipgloss.NewStyle().
			Foreground(warningColor)

	// Help
	helpKeyStyle = lipgloss.NewStyle().
			Foreground(primaryColor).
			Bold(true)

	helpDescStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	// Progress bar
	progressFullStyle = lipgloss.NewStyle().
				Foreground(secondaryColor)

	progressEmptyStyle = lipgloss.NewStyle().
				Foreground(mutedColor)
)

// riskStyles maps workload risk levels to colors.
var riskStyles = map[analysis.RiskLevel]lipgloss.Style{
	analysis.RiskLow:        successStyle,
	analysis.RiskModerate:   warningStyle,
	analysis.RiskHigh:       errorStyle,
	analysis.RiskDetraining: warningStyle,
}

// RenderRisk renders a risk level in its color.
func RenderRisk(risk analysis.RiskLevel) string {
	if style, ok := riskStyles[risk]; ok {
		return style.Render(string(risk))
	}
	return string(risk)
}

// RenderMetric renders a metric with a label and value.
func RenderMetric(label, value string) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Left,
		metricLabelStyle.Render(label),
		metricValueStyle.Render(value),
	)
}

// RenderProgressBar renders an ASCII progress bar
func RenderProgressBar(percent float64, width int) string {
	filled := int(percent * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}

	bar := ""
	for i := 0; i < width; i++ {
		if i < filled {
			bar += progressFullStyle.Render("█")
		} else {
			bar += progressEmptyStyle.Render("░")
		}
	}
	return bar
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}
