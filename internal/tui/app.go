package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"training-coach/internal/service"
)

// Screen identifiers
type Screen int

const (
	ScreenDashboard Screen = iota
	ScreenProgress
	ScreenHelp
)

// Queries is the read-only data the screens render
type Queries interface {
	GetDashboardData(ctx context.Context, athleteID string, date time.Time) (*service.DashboardData, error)
	GetProgress(ctx context.Context, athleteID string, date time.Time, numWeeks int) (*service.Progress, error)
}

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	dashboard DashboardModel
	progress  ProgressModel
	help      HelpModel

	queries   Queries
	athleteID string
	now       func() time.Time

	width  int
	height int
}

// NewApp creates the dashboard app for one athlete
func NewApp(queries Queries, athleteID string) *App {
	a := &App{
		screen:    ScreenDashboard,
		queries:   queries,
		athleteID: athleteID,
		now:       time.Now,
		help:      NewHelpModel(),
	}
	a.dashboard = NewDashboardModel(queries, athleteID, a.now())
	a.progress = NewProgressModel(queries, athleteID, a.now())
	return a
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	return a.dashboard.Init()
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "1":
			a.screen = ScreenDashboard
			a.dashboard = NewDashboardModel(a.queries, a.athleteID, a.now())
			return a, a.dashboard.Init()
		case "2":
			a.screen = ScreenProgress
			a.progress = NewProgressModel(a.queries, a.athleteID, a.now())
			return a, a.progress.Init()
		case "?":
			a.prevScreen = a.screen
			a.screen = ScreenHelp
			return a, nil
		case "esc":
			if a.screen == ScreenHelp {
				a.screen = a.prevScreen
				return a, nil
			}
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenDashboard:
		var m tea.Model
		m, cmd = a.dashboard.Update(msg)
		a.dashboard = m.(DashboardModel)
	case ScreenProgress:
		var m tea.Model
		m, cmd = a.progress.Update(msg)
		a.progress = m.(ProgressModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

// View renders the app
func (a *App) View() string {
	var content string
	switch a.screen {
	case ScreenDashboard:
		content = a.dashboard.View()
	case ScreenProgress:
		content = a.progress.View()
	case ScreenHelp:
		content = a.help.View()
	}

	return lipgloss.JoinVertical(lipgloss.Left, a.renderHeader(), a.renderNav(), content)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Training Coach · " + a.athleteID)
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Dashboard", ScreenDashboard},
		{"2", "Progress", ScreenProgress},
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
