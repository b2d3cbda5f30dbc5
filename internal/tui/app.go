package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"trainload/internal/service"
	"trainload/internal/store"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenActivities
	ScreenActivityDetail
	ScreenThresholds
	ScreenSync
	ScreenHelp
)

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	dashboard  DashboardModel
	activities ActivitiesModel
	detail     ActivityDetailModel
	thresholds ThresholdsModel
	syncScreen SyncModel
	help       HelpModel

	// Services
	db           *store.DB
	queryService *service.QueryService
	syncService  *service.SyncService
	calibration  *service.CalibrationService

	// Window dimensions
	width  int
	height int
}

// NewApp creates a new App with all dependencies
func NewApp(db *store.DB, syncService *service.SyncService, calibration *service.CalibrationService, queryService *service.QueryService) *App {
	return &App{
		screen:       ScreenDashboard,
		db:           db,
		queryService: queryService,
		syncService:  syncService,
		calibration:  calibration,
		dashboard:    NewDashboardModel(queryService),
		activities:   NewActivitiesModel(queryService),
		thresholds:   NewThresholdsModel(queryService, calibration),
		syncScreen:   NewSyncModel(syncService),
		help:         NewHelpModel(),
	}
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings, unless a background job is running
		if !a.busy() {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Quit
			case "1":
				a.screen = ScreenDashboard
				a.dashboard = NewDashboardModel(a.queryService)
				return a, a.dashboard.Init()
			case "2":
				a.screen = ScreenActivities
				return a, a.activities.Init()
			case "3":
				a.screen = ScreenThresholds
				return a, a.thresholds.Init()
			case "4", "s":
				if a.screen != ScreenSync {
					a.screen = ScreenSync
					return a, a.syncScreen.Init()
				}
				// Let 's' fall through to the sync screen when already there
			case "?":
				a.prevScreen = a.screen
				a.screen = ScreenHelp
				return a, nil
			case "esc":
				switch a.screen {
				case ScreenHelp:
					a.screen = a.prevScreen
					return a, nil
				case ScreenActivityDetail:
					a.screen = ScreenActivities
					return a, nil
				}
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height

	case OpenActivityDetailMsg:
		a.screen = ScreenActivityDetail
		a.detail = NewActivityDetailModel(a.queryService, msg.ActivityID, a.width, a.height)
		return a, a.detail.Init()

	case SyncCompleteMsg:
		// Refresh dashboard after sync
		a.screen = ScreenDashboard
		a.dashboard = NewDashboardModel(a.queryService)
		return a, a.dashboard.Init()
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenActivities:
		var m tea.Model
		m, cmd = a.activities.Update(msg)
		a.activities = m.(ActivitiesModel)
	case ScreenActivityDetail:
		var m tea.Model
		m, cmd = a.detail.Update(msg)
		a.detail = m.(ActivityDetailModel)
	case ScreenThresholds:
		var m tea.Model
		m, cmd = a.thresholds.Update(msg)
		a.thresholds = m.(ThresholdsModel)
	case ScreenSync:
		var m tea.Model
		m, cmd = a.syncScreen.Update(msg)
		a.syncScreen = m.(SyncModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// busy reports whether a screen has a background job in flight that should
// hold off global navigation.
func (a *App) busy() bool {
	if a.screen == ScreenSync && a.syncScreen.syncing {
		return true
	}
	if a.screen == ScreenThresholds && a.thresholds.calibrating {
		return true
	}
	return false
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenActivities:
		content = a.activities.View()
	case ScreenActivityDetail:
		content = a.detail.View()
	case ScreenThresholds:
		content = a.thresholds.View()
	case ScreenSync:
		content = a.syncScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Training Load Tracker")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Activities", ScreenActivities},
		{"3", "Thresholds", ScreenThresholds},
		{"4", "Sync", ScreenSync},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

// SyncCompleteMsg is sent when sync finishes
type SyncCompleteMsg struct{}

// OpenActivityDetailMsg opens the detail screen for one activity
type OpenActivityDetailMsg struct {
	ActivityID int64
}
