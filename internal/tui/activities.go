package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainload/internal/service"
	"trainload/internal/store"
)

// ActivitiesModel is the activities list screen model
type ActivitiesModel struct {
	queryService *service.QueryService
	activities   []store.Activity
	cursor       int
	offset       int
	total        int
	pageSize     int
	loading      bool
	err          error
}

// NewActivitiesModel creates a new activities model
func NewActivitiesModel(qs *service.QueryService) ActivitiesModel {
	return ActivitiesModel{
		queryService: qs,
		pageSize:     15,
		loading:      true,
	}
}

// Init initializes the activities screen
func (m ActivitiesModel) Init() tea.Cmd {
	return m.loadPage
}

type activitiesLoadedMsg struct {
	activities []store.Activity
	total      int
	err        error
}

func (m ActivitiesModel) loadPage() tea.Msg {
	activities, total, err := m.queryService.ActivitiesPage(m.pageSize, m.offset)
	if err != nil {
		return activitiesLoadedMsg{err: err}
	}
	return activitiesLoadedMsg{activities: activities, total: total}
}

// Update handles messages
func (m ActivitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activitiesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.activities = msg.activities
		m.total = msg.total

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				// Go to previous page
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.activities)-1 {
				m.cursor++
			} else if m.offset+len(m.activities) < m.total {
				// Go to next page
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset -= m.pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		case "enter":
			if len(m.activities) > 0 && m.cursor < len(m.activities) {
				activityID := m.activities[m.cursor].ID
				return m, func() tea.Msg {
					return OpenActivityDetailMsg{ActivityID: activityID}
				}
			}
		}
	}
	return m, nil
}

// View renders the activities list
func (m ActivitiesModel) View() string {
	if m.loading {
		return "\n  Loading activities..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.activities) == 0 {
		return "\n  No activities found. Press 's' to sync with Strava."
	}

	var sections []string

	// Title with pagination info
	startNum := m.offset + 1
	endNum := m.offset + len(m.activities)
	title := cardTitleStyle.Render(fmt.Sprintf("Activities (%d-%d of %d)", startNum, endNum, m.total))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-22s  %-14s  %8s  %7s  %6s  %-20s",
		"Date", "Name", "Type", "Distance", "Time", "Load", "Method"))
	sections = append(sections, header)

	for i, a := range m.activities {
		load := "-"
		if a.UTLScore != nil {
			load = fmt.Sprintf("%.0f", *a.UTLScore)
		}
		method := "-"
		if a.UTLMethod != nil {
			method = truncateName(*a.UTLMethod, 20)
		}

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-10s  %-22s  %-14s  %7.1fkm  %7s  %6s  %-20s",
			cursor,
			a.StartDate.Format("Jan 02"),
			truncateName(a.Name, 22),
			truncateName(a.Type, 14),
			a.Distance/1000,
			formatDuration(a.MovingTime),
			load,
			method,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  enter: view details  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
