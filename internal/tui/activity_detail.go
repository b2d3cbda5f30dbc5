package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainload/internal/analysis"
	"trainload/internal/service"
)

// ActivityDetailModel is the activity detail screen model
type ActivityDetailModel struct {
	queryService *service.QueryService
	activityID   int64
	detail       *service.ActivityDetail
	viewport     viewport.Model
	loading      bool
	err          error
	width        int
	height       int
	ready        bool
}

// NewActivityDetailModel creates a new activity detail model
func NewActivityDetailModel(qs *service.QueryService, activityID int64, width, height int) ActivityDetailModel {
	m := ActivityDetailModel{
		queryService: qs,
		activityID:   activityID,
		loading:      true,
		width:        width,
		height:       height,
	}

	if width > 0 && height > 0 {
		m.viewport = viewport.New(width, height-6) // Reserve space for header/footer
		m.ready = true
	}

	return m
}

// Init initializes the activity detail screen
func (m ActivityDetailModel) Init() tea.Cmd {
	return m.loadDetail
}

type activityDetailLoadedMsg struct {
	detail *service.ActivityDetail
	err    error
}

func (m ActivityDetailModel) loadDetail() tea.Msg {
	detail, err := m.queryService.GetActivityDetail(m.activityID)
	return activityDetailLoadedMsg{detail: detail, err: err}
}

// Update handles messages
func (m ActivityDetailModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activityDetailLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.detail = msg.detail
		if m.ready {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-6)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 6
		}
		if m.detail != nil {
			m.viewport.SetContent(m.renderContent())
		}

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadDetail
		}
	}

	// Handle viewport scrolling
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the activity detail screen
func (m ActivityDetailModel) View() string {
	if m.loading {
		return "\n  Loading activity details..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if !m.ready {
		return "\n  Initializing..."
	}

	footer := statusStyle.Render("  esc: back to list  j/k or arrows: scroll  r: refresh")

	return lipgloss.JoinVertical(lipgloss.Left, m.viewport.View(), footer)
}

func (m ActivityDetailModel) renderContent() string {
	if m.detail == nil {
		return "No data"
	}

	var sections []string
	sections = append(sections, m.renderSummary())

	if sa := m.detail.Analysis; sa != nil {
		if len(sa.Power) > 0 {
			sections = append(sections, m.renderEffortTable("Best Power Efforts", sa.Power, formatWatts))
		}
		if len(sa.Pace) > 0 {
			sections = append(sections, m.renderEffortTable("Best Pace Efforts", sa.Pace, formatPace))
		}
		if sa.MaxHeartrate > 0 {
			hr := []string{
				RenderMetric("Avg HR", fmt.Sprintf("%.0f bpm", sa.AvgHeartrate)),
				RenderMetric("Max HR", fmt.Sprintf("%.0f bpm", sa.MaxHeartrate)),
			}
			card := cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
				cardTitleStyle.Render("Heart Rate"),
				lipgloss.JoinVertical(lipgloss.Left, hr...)))
			sections = append(sections, card)
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ActivityDetailModel) renderSummary() string {
	a := m.detail.Activity
	title := cardTitleStyle.Render(a.Name)

	lines := []string{
		RenderMetric("Date", a.StartDate.Format("Mon Jan 02 15:04")),
		RenderMetric("Type", a.Type),
		RenderMetric("Distance", fmt.Sprintf("%.1f km", a.Distance/1000)),
		RenderMetric("Moving time", formatDuration(a.MovingTime)),
	}
	if a.AverageHeartrate != nil {
		lines = append(lines, RenderMetric("Avg HR", fmt.Sprintf("%.0f bpm", *a.AverageHeartrate)))
	}
	if a.AverageWatts != nil {
		lines = append(lines, RenderMetric("Avg power", fmt.Sprintf("%.0f W", *a.AverageWatts)))
	}
	if a.UTLScore != nil {
		lines = append(lines, "", RenderMetric("Training load", fmt.Sprintf("%.0f", *a.UTLScore)))
	}
	if a.UTLMethod != nil {
		lines = append(lines, RenderMetric("Method", *a.UTLMethod))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m ActivityDetailModel) renderEffortTable(name string, curve analysis.EffortCurve, format func(float64) string) string {
	title := cardTitleStyle.Render(name)

	header := tableHeaderStyle.Render(fmt.Sprintf("%-10s  %10s", "Duration", "Best"))
	rows := []string{header}
	for _, d := range analysis.StandardDurations {
		rec := curve.At(d)
		if rec == nil {
			continue
		}
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-10s  %10s",
			formatDuration(d), format(rec.Value))))
	}

	table := lipgloss.JoinVertical(lipgloss.Left, rows...)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, table))
}

func formatWatts(v float64) string {
	return fmt.Sprintf("%.0f W", v)
}

// formatPace renders a speed in m/s as minutes per kilometer.
func formatPace(v float64) string {
	if v <= 0 {
		return "-"
	}
	secsPerKm := 1000 / v
	return fmt.Sprintf("%d:%02d /km", int(secsPerKm)/60, int(secsPerKm)%60)
}
