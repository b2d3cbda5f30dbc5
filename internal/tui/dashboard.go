package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"trainload/internal/analysis"
	"trainload/internal/service"
	"trainload/internal/store"
)

// chartDays is how much daily-load history the dashboard plots.
const chartDays = 28

// DashboardModel is the dashboard screen model
type DashboardModel struct {
	queryService *service.QueryService
	report       *analysis.WorkloadReport
	dailyLoads   []float64
	recent       []store.Activity
	loading      bool
	err          error
}

// NewDashboardModel creates a new dashboard model
func NewDashboardModel(qs *service.QueryService) DashboardModel {
	return DashboardModel{
		queryService: qs,
		loading:      true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return m.loadData
}

type dashboardDataMsg struct {
	report     *analysis.WorkloadReport
	dailyLoads []float64
	recent     []store.Activity
	err        error
}

func (m DashboardModel) loadData() tea.Msg {
	now := time.Now()

	report, err := m.queryService.WorkloadReport(now)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	loads, err := m.queryService.DailyLoads(now, chartDays)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	recent, err := m.queryService.RecentActivities(5)
	if err != nil {
		return dashboardDataMsg{err: err}
	}

	return dashboardDataMsg{report: report, dailyLoads: loads, recent: recent}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.report = msg.report
		m.dailyLoads = msg.dailyLoads
		m.recent = msg.recent
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return "\n  Loading dashboard..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if m.report == nil {
		return "\n  No data available. Press 's' to sync with Strava."
	}

	var sections []string

	workloadCard := m.renderWorkloadCard()
	sportCard := m.renderSportCard()
	topRow := lipgloss.JoinHorizontal(lipgloss.Top, workloadCard, "  ", sportCard)
	sections = append(sections, topRow)

	if hasAnyLoad(m.dailyLoads) {
		sections = append(sections, m.renderChart())
	}

	sections = append(sections, m.renderRecentActivities())

	help := statusStyle.Render("Press 'r' to refresh, 's' to sync, '2' for activities list")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderWorkloadCard() string {
	title := cardTitleStyle.Render("Training Load")
	overall := m.report.Overall
	targets := m.report.Targets

	// Ratio bar runs from 0 to the high-risk ceiling.
	barPos := overall.Ratio / (analysis.RatioCeiling * 1.25)

	lines := []string{
		RenderMetric("Acute (7d)", fmt.Sprintf("%.0f", overall.AcuteLoad)),
		RenderMetric("Chronic (28d avg)", fmt.Sprintf("%.0f", overall.ChronicLoad)),
		RenderMetric("A:C Ratio", fmt.Sprintf("%.2f", overall.Ratio)),
		RenderMetric("Risk", RenderRisk(overall.Risk)),
		"",
		RenderProgressBar(barPos, 30),
		"",
		RenderMetric("Weekly target", fmt.Sprintf("%.0f", targets.TargetWeeklyLoad)),
		RenderMetric("Safe max", fmt.Sprintf("%.0f", targets.MaxSafeWeeklyLoad)),
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderSportCard() string {
	title := cardTitleStyle.Render("By Sport")

	var lines []string
	for _, sport := range []analysis.Sport{analysis.SportRunning, analysis.SportCycling, analysis.SportOther} {
		w := m.report.BySport[sport]
		if w.AcuteLoad == 0 && w.ChronicLoad == 0 {
			continue
		}
		lines = append(lines, RenderMetric(string(sport),
			fmt.Sprintf("%.0f / %.0f  %s", w.AcuteLoad, w.ChronicLoad, RenderRisk(w.Risk))))
	}
	if len(lines) == 0 {
		lines = append(lines, statusStyle.Render("No scored activities yet"))
	}
	lines = append(lines, "", RenderMetric("Combined risk", RenderRisk(m.report.Combined)))

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(42).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m DashboardModel) renderChart() string {
	title := cardTitleStyle.Render("Daily Load - Last 4 Weeks")

	graph := asciigraph.Plot(m.dailyLoads,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(0),
	)

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, graph))
}

func (m DashboardModel) renderRecentActivities() string {
	title := cardTitleStyle.Render("Recent Activities")

	if len(m.recent) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No activities yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %-22s  %8s  %6s  %-24s",
		"Date", "Name", "Distance", "Load", "Method"))

	rows := []string{header}
	for _, a := range m.recent {
		load := "-"
		method := "-"
		if a.UTLScore != nil {
			load = fmt.Sprintf("%.0f", *a.UTLScore)
		}
		if a.UTLMethod != nil {
			method = truncateName(*a.UTLMethod, 24)
		}

		row := tableRowStyle.Render(fmt.Sprintf("%-10s  %-22s  %7.1fkm  %6s  %-24s",
			a.StartDate.Format("Jan 02"),
			truncateName(a.Name, 22),
			a.Distance/1000,
			load,
			method,
		))
		rows = append(rows, row)
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func hasAnyLoad(loads []float64) bool {
	for _, v := range loads {
		if v > 0 {
			return true
		}
	}
	return false
}

func formatDuration(seconds int) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
