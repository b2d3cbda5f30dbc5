package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainload/internal/service"
)

// ThresholdsModel is the thresholds screen model. It shows the current
// estimates and lets the user trigger a recalibration run.
type ThresholdsModel struct {
	queryService *service.QueryService
	calibration  *service.CalibrationService

	view        *service.ThresholdsView
	status      service.SyncStatus
	result      *service.CalibrationResult
	calibrating bool
	loading     bool
	err         error
}

// NewThresholdsModel creates a new thresholds model
func NewThresholdsModel(qs *service.QueryService, cs *service.CalibrationService) ThresholdsModel {
	return ThresholdsModel{
		queryService: qs,
		calibration:  cs,
		loading:      true,
	}
}

// Init initializes the thresholds screen
func (m ThresholdsModel) Init() tea.Cmd {
	return m.loadData
}

type thresholdsLoadedMsg struct {
	view   *service.ThresholdsView
	status service.SyncStatus
	err    error
}

// CalibrationDoneMsg is sent when a calibration run finishes
type CalibrationDoneMsg struct {
	Result *service.CalibrationResult
	Err    error
}

func (m ThresholdsModel) loadData() tea.Msg {
	view, err := m.queryService.Thresholds()
	if err != nil {
		return thresholdsLoadedMsg{err: err}
	}
	return thresholdsLoadedMsg{view: view, status: m.queryService.Status()}
}

func (m ThresholdsModel) runCalibration() tea.Msg {
	result, err := m.calibration.Recalibrate(context.Background())
	return CalibrationDoneMsg{Result: result, Err: err}
}

// Update handles messages
func (m ThresholdsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case thresholdsLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.view = msg.view
		m.status = msg.status

	case CalibrationDoneMsg:
		m.calibrating = false
		m.result = msg.Result
		m.err = msg.Err
		return m, m.loadData

	case tea.KeyMsg:
		if m.calibrating {
			break
		}
		switch msg.String() {
		case "c":
			m.calibrating = true
			m.result = nil
			m.err = nil
			return m, m.runCalibration
		case "r":
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the thresholds screen
func (m ThresholdsModel) View() string {
	if m.loading {
		return "\n  Loading thresholds..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	var sections []string
	sections = append(sections, m.renderThresholdsCard())

	if m.calibrating {
		sections = append(sections, statusStyle.Render("\n  Calibrating from activity history, this may take a moment..."))
	} else if m.result != nil {
		sections = append(sections, m.renderResult())
	}

	help := statusStyle.Render("\n  c: recalibrate from history  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ThresholdsModel) renderThresholdsCard() string {
	title := cardTitleStyle.Render("Performance Thresholds")

	e := m.view.Effective
	s := m.view.Stored

	row := func(label string, value *float64, unit string, method *string, overridden bool) string {
		v := "-"
		if value != nil {
			v = fmt.Sprintf("%.1f %s", *value, unit)
		}
		note := ""
		if overridden {
			note = warningStyle.Render("  (manual)")
		} else if method != nil {
			note = statusStyle.Render("  " + *method)
		}
		return RenderMetric(label, v) + note
	}

	lines := []string{
		row("FTP", e.FTPWatts, "W", s.FTPMethod, m.view.Overridden["ftp"]),
		row("Threshold pace", e.FTHPMps, "m/s", s.FTHPMethod, m.view.Overridden["fthp"]),
		row("Max HR", e.MaxHR, "bpm", nil, m.view.Overridden["max_hr"]),
		row("Resting HR", e.RestingHR, "bpm", s.RestingHRMethod, m.view.Overridden["resting_hr"]),
	}

	if !m.status.LastCalibration.IsZero() {
		lines = append(lines, "",
			statusStyle.Render("Last calibration: "+m.status.LastCalibration.Format("Jan 02 15:04")))
	}

	content := lipgloss.JoinVertical(lipgloss.Left, lines...)
	return cardStyle.Width(60).Render(lipgloss.JoinVertical(lipgloss.Left, title, content))
}

func (m ThresholdsModel) renderResult() string {
	r := m.result
	var lines []string
	lines = append(lines, "")

	if !r.Updated {
		lines = append(lines, statusStyle.Render(
			fmt.Sprintf("  Analyzed %d activities, no threshold beat the current values", r.ActivitiesAnalyzed)))
		return strings.Join(lines, "\n")
	}

	lines = append(lines, successStyle.Render(
		fmt.Sprintf("  Analyzed %d activities", r.ActivitiesAnalyzed)))
	if r.FTP != nil {
		lines = append(lines, successStyle.Render(
			fmt.Sprintf("  New FTP: %.0f W (%s)", r.FTP.Value, r.FTP.Method)))
	}
	if r.FTHP != nil {
		lines = append(lines, successStyle.Render(
			fmt.Sprintf("  New threshold pace: %s (%s)", formatPace(r.FTHP.Value), r.FTHP.Method)))
	}
	if r.MaxHR != nil {
		lines = append(lines, successStyle.Render(
			fmt.Sprintf("  New max HR: %.0f bpm", *r.MaxHR)))
	}
	if r.RestingHR != nil {
		lines = append(lines, successStyle.Render(
			fmt.Sprintf("  New resting HR: %.0f bpm (%s)", r.RestingHR.Value, r.RestingHR.Method)))
	}
	if r.Rescored > 0 {
		lines = append(lines, statusStyle.Render(
			fmt.Sprintf("  Recomputed %d training loads", r.Rescored)))
	}
	if len(r.Errors) > 0 {
		lines = append(lines, warningStyle.Render(
			fmt.Sprintf("  %d activities skipped", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
