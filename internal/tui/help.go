package tui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct{}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	return m, nil
}

// View renders the help screen
func (m HelpModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard Shortcuts")
	sections = append(sections, title)

	navSection := m.renderSection("Navigation", []keyHelp{
		{"1", "Dashboard"},
		{"2", "Activities list"},
		{"3", "Thresholds"},
		{"4 or s", "Sync screen"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	})
	sections = append(sections, navSection)

	actSection := m.renderSection("Activities List", []keyHelp{
		{"j / down", "Move cursor down"},
		{"k / up", "Move cursor up"},
		{"pgdn", "Next page"},
		{"pgup", "Previous page"},
		{"enter", "View details"},
		{"r", "Refresh list"},
	})
	sections = append(sections, actSection)

	threshSection := m.renderSection("Thresholds", []keyHelp{
		{"c", "Recalibrate from activity history"},
		{"r", "Refresh"},
	})
	sections = append(sections, threshSection)

	syncSection := m.renderSection("Sync Screen", []keyHelp{
		{"s / enter", "Start sync"},
	})
	sections = append(sections, syncSection)

	metricsSection := m.renderMetricsHelp()
	sections = append(sections, metricsSection)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}

func (m HelpModel) renderMetricsHelp() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, lipgloss.NewStyle().Bold(true).Foreground(secondaryColor).Render("Metrics Explained"))
	lines = append(lines, "")

	metrics := []struct {
		name string
		desc string
	}{
		{"Load (UTL)", "Unified training load per activity. Computed from power, pace or heart rate, whichever the data supports."},
		{"Acute load", "Sum of loads over the last 7 days."},
		{"Chronic load", "Weekly average of the last 28 days of load."},
		{"A:C Ratio", "Acute divided by chronic. 0.8-1.3 is the sweet spot; above 1.3 means injury risk, below 0.8 means detraining."},
		{"FTP", "Functional threshold power, estimated from best sustained efforts."},
		{"Threshold pace", "Sustainable running pace, estimated the same way."},
	}

	mutedStyle := lipgloss.NewStyle().Foreground(mutedColor)

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+mutedStyle.Render(metric.desc))
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}
