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
	sections := []string{
		cardTitleStyle.Render("Keyboard Shortcuts"),
		renderKeySection("Navigation", []keyHelp{
			{"1", "Dashboard"},
			{"2", "Weekly progress"},
			{"?", "Help (this screen)"},
			{"q", "Quit"},
			{"esc", "Back / close help"},
		}),
		renderKeySection("Dashboard", []keyHelp{
			{"r", "Refresh data"},
			{"h / left", "Previous day"},
			{"l / right", "Next day"},
		}),
		renderKeySection("Progress", []keyHelp{
			{"j / down", "Move cursor down"},
			{"k / up", "Move cursor up"},
			{"r", "Refresh"},
		}),
		renderMetricsHelp(),
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

type keyHelp struct {
	key  string
	desc string
}

func renderKeySection(title string, keys []keyHelp) string {
	lines := []string{"", sectionStyle.Render(title)}
	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}
	return strings.Join(lines, "\n")
}

func renderMetricsHelp() string {
	lines := []string{"", sectionStyle.Render("Metrics Explained"), ""}

	metrics := []struct {
		name string
		desc string
	}{
		{"Readiness", "0-100 blend of HRV, resting HR, sleep, check-in scores and form."},
		{"CTL (Fitness)", "Chronic training load, 42-day decayed TSS."},
		{"ATL (Fatigue)", "Acute training load, 7-day decayed TSS."},
		{"TSB (Form)", "CTL - ATL. Positive = fresh."},
		{"Z1/Z2/Z3", "Share of time below LT1, between LT1 and LT2, above LT2."},
		{"EF", "Power per heartbeat. Higher = more efficient aerobic system."},
	}

	for _, metric := range metrics {
		lines = append(lines, "  "+helpKeyStyle.Render(metric.name))
		lines = append(lines, "  "+mutedStyle.Render(metric.desc))
		lines = append(lines, "")
	}
	return strings.Join(lines, "\n")
}
