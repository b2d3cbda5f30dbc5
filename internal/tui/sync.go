package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainload/internal/service"
)

// SyncModel is the sync screen model
type SyncModel struct {
	syncService *service.SyncService
	syncing     bool
	progress    *service.SyncProgress
	progressCh  chan service.SyncProgress
	doneCh      chan SyncDoneMsg
	result      *service.SyncResult
	err         error
	done        bool
}

// NewSyncModel creates a new sync model
func NewSyncModel(ss *service.SyncService) SyncModel {
	return SyncModel{
		syncService: ss,
	}
}

// Init initializes the sync screen
func (m SyncModel) Init() tea.Cmd {
	return nil
}

// SyncDoneMsg is sent when sync finishes
type SyncDoneMsg struct {
	Result *service.SyncResult
	Err    error
}

type syncProgressMsg service.SyncProgress

// Update handles messages
func (m SyncModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case syncProgressMsg:
		p := service.SyncProgress(msg)
		m.progress = &p
		return m, m.waitForSync()

	case SyncDoneMsg:
		m.syncing = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		m.progress = nil
		return m, func() tea.Msg { return SyncCompleteMsg{} }

	case tea.KeyMsg:
		if !m.syncing {
			switch msg.String() {
			case "enter", "s":
				return m.startSync()
			}
		}
	}
	return m, nil
}

// startSync kicks off the sync in a goroutine and begins listening for
// progress updates.
func (m SyncModel) startSync() (SyncModel, tea.Cmd) {
	m.syncing = true
	m.done = false
	m.err = nil
	m.result = nil
	m.progressCh = make(chan service.SyncProgress, 16)
	m.doneCh = make(chan SyncDoneMsg, 1)

	svc := m.syncService
	progress := m.progressCh
	done := m.doneCh
	go func() {
		result, err := svc.SyncAll(context.Background(), progress)
		done <- SyncDoneMsg{Result: result, Err: err}
	}()

	return m, m.waitForSync()
}

// waitForSync returns a command that delivers the next progress update or
// the final result, whichever comes first.
func (m SyncModel) waitForSync() tea.Cmd {
	progress := m.progressCh
	done := m.doneCh
	return func() tea.Msg {
		select {
		case p, ok := <-progress:
			if ok {
				return syncProgressMsg(p)
			}
			return <-done
		case d := <-done:
			return d
		}
	}
}

// View renders the sync screen
func (m SyncModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Sync")
	sections = append(sections, title)

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 's' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done && !m.syncing {
		sections = append(sections, successStyle.Render("\n  Sync complete!"))
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to go to dashboard"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.syncing {
		sections = append(sections, m.renderProgress())
	} else {
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m SyncModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This will sync your training data:")
	lines = append(lines, "")
	lines = append(lines, "  1. Fetch new activities from Strava")
	lines = append(lines, "  2. Download detailed stream data")
	lines = append(lines, "  3. Pull wellness days from intervals.icu")
	lines = append(lines, "  4. Compute training loads")
	lines = append(lines, "")

	// Show rate limit status
	short, daily := m.syncService.RateLimitStatus()
	lines = append(lines, statusStyle.Render(fmt.Sprintf("  API limits: %d (15min), %d (daily) remaining", short, daily)))
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 's' or Enter to start sync"))

	return strings.Join(lines, "\n")
}

var phaseLabels = map[string]string{
	"activities": "Fetching activities",
	"streams":    "Downloading streams",
	"wellness":   "Pulling wellness data",
	"scores":     "Computing training loads",
}

func (m SyncModel) renderProgress() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  Syncing...")
	lines = append(lines, "")

	if p := m.progress; p != nil {
		label := phaseLabels[p.Phase]
		if label == "" {
			label = p.Phase
		}
		if p.Total > 0 {
			lines = append(lines, fmt.Sprintf("  %s: %d/%d", label, p.Completed, p.Total))
			lines = append(lines, "  "+RenderProgressBar(float64(p.Completed)/float64(p.Total), 40))
		} else {
			lines = append(lines, "  "+label)
		}
		if p.CurrentActivity != "" {
			lines = append(lines, statusStyle.Render("  "+truncateName(p.CurrentActivity, 50)))
		}
	}

	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  This may take a moment..."))

	return strings.Join(lines, "\n")
}

func (m SyncModel) renderSummary() string {
	var lines []string

	if m.result == nil {
		return ""
	}

	r := m.result
	lines = append(lines, "")

	if r.ActivitiesStored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d activities synced", r.ActivitiesStored)))
	} else {
		lines = append(lines, statusStyle.Render("  No new activities"))
	}

	if r.StreamsFetched > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d streams downloaded", r.StreamsFetched)))
	}

	if r.WellnessDays > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d wellness days stored", r.WellnessDays)))
	}

	if r.ActivitiesScored > 0 {
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d training loads computed", r.ActivitiesScored)))
	}

	if len(r.Errors) > 0 {
		lines = append(lines, "")
		lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
	}

	return strings.Join(lines, "\n")
}
