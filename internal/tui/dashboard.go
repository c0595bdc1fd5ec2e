package tui

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"training-coach/internal/service"
)

// DashboardModel is the readiness dashboard screen
type DashboardModel struct {
	queries   Queries
	athleteID string
	date      time.Time
	data      *service.DashboardData
	spinner   spinner.Model
	loading   bool
	err       error
}

// NewDashboardModel creates a new dashboard model for date
func NewDashboardModel(q Queries, athleteID string, date time.Time) DashboardModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(primaryColor)
	return DashboardModel{
		queries:   q,
		athleteID: athleteID,
		date:      date,
		spinner:   s,
		loading:   true,
	}
}

// Init initializes the dashboard
func (m DashboardModel) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.loadData)
}

type dashboardDataMsg struct {
	data *service.DashboardData
	err  error
}

func (m DashboardModel) loadData() tea.Msg {
	data, err := m.queries.GetDashboardData(context.Background(), m.athleteID, m.date)
	return dashboardDataMsg{data: data, err: err}
}

// Update handles messages
func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case dashboardDataMsg:
		m.loading = false
		m.err = msg.err
		m.data = msg.data
	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.loadData)
		case "left", "h":
			m.date = m.date.AddDate(0, 0, -1)
			m.loading = true
			return m, m.loadData
		case "right", "l":
			m.date = m.date.AddDate(0, 0, 1)
			m.loading = true
			return m, m.loadData
		}
	}
	return m, nil
}

// View renders the dashboard
func (m DashboardModel) View() string {
	if m.loading {
		return fmt.Sprintf("\n  %s Loading dashboard...", m.spinner.View())
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.data == nil {
		return "\n  No data available. Submit a check-in or import a FIT file."
	}

	var sections []string

	top := lipgloss.JoinHorizontal(lipgloss.Top, m.renderReadinessCard(), "  ", m.renderLoadCard(), "  ", m.renderWeekCard())
	sections = append(sections, top)

	if len(m.data.ReadinessHistory) > 2 {
		sections = append(sections, renderChart("Readiness - last 28 days", m.data.ReadinessHistory, 0))
	}
	if len(m.data.FitnessHistory) > 2 {
		sections = append(sections, renderChart("Fitness (CTL) - last 28 days", m.data.FitnessHistory, 1))
	}

	sections = append(sections, m.renderRecentActivities())
	sections = append(sections, statusStyle.Render("r: refresh  h/l: previous/next day"))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m DashboardModel) renderReadinessCard() string {
	title := cardTitleStyle.Render("Readiness · " + m.data.Date.Format("Mon Jan 02"))

	if !m.data.HasCheckIn {
		return cardStyle.Width(34).Render(lipgloss.JoinVertical(lipgloss.Left, title, mutedStyle.Render("No check-in for this day")))
	}

	r := m.data.Readiness
	lines := []string{
		readinessStyle(r.Score).Render(fmt.Sprintf("%.0f / 100", r.Score)),
		"",
		RenderMetric("HRV", fmt.Sprintf("%.0f", r.HRV), ""),
		RenderMetric("Resting HR", fmt.Sprintf("%.0f", r.RHR), ""),
		RenderMetric("Sleep", fmt.Sprintf("%.0f", r.Sleep), ""),
		RenderMetric("Subjective", fmt.Sprintf("%.0f", r.Subjective), ""),
		RenderMetric("Form", fmt.Sprintf("%.0f", r.TSB), ""),
	}
	return cardStyle.Width(34).Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m DashboardModel) renderLoadCard() string {
	title := cardTitleStyle.Render("Training Load")

	lines := []string{
		RenderMetric("Fitness (CTL)", fmt.Sprintf("%.1f", m.data.Fitness), ""),
		RenderMetric("Fatigue (ATL)", fmt.Sprintf("%.1f", m.data.Fatigue), ""),
		RenderMetric("Form (TSB)", fmt.Sprintf("%+.1f", m.data.Form), ""),
		RenderMetric("Efficiency", formatEF(m.data.CurrentEF), m.data.EFTrend),
		"",
		mutedStyle.Render(m.data.FormDescription),
		mutedStyle.Render("Recovery: " + m.data.RecoveryStatus),
	}
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func (m DashboardModel) renderWeekCard() string {
	title := cardTitleStyle.Render("This Week")

	d := m.data.WeekDistribution
	c := m.data.WeekCompliance
	lines := []string{
		RenderMetric("Sessions", fmt.Sprintf("%d", m.data.WeekSessions), ""),
		RenderMetric("Time", formatDuration(m.data.WeekSeconds), ""),
		RenderMetric("TSS", formatTSS(m.data.WeekTSS), ""),
		RenderMetric("Z1/Z2/Z3", fmt.Sprintf("%.0f/%.0f/%.0f", d.Distribution.Z1, d.Distribution.Z2, d.Distribution.Z3), ""),
		RenderMetric("Completion", fmt.Sprintf("%.0f%%", c.CompletionPercent), ""),
	}
	if len(c.Flags) > 0 {
		lines = append(lines, "", warningStyle.Render(joinFlags(c.Flags)))
	}
	if m.data.WeekSessions > 0 {
		lines = append(lines, "", mutedStyle.Render(truncateName(d.Recommendation, 34)))
	}
	return cardStyle.Width(40).Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, lines...)))
}

func renderChart(title string, series []float64, precision uint) string {
	graph := asciigraph.Plot(series,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.Precision(precision),
	)
	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, cardTitleStyle.Render(title), graph))
}

func (m DashboardModel) renderRecentActivities() string {
	title := cardTitleStyle.Render("Recent Activities")

	if len(m.data.RecentActivities) == 0 {
		return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, "No activities yet"))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("%-14s  %-20s  %-10s  %8s  %5s  %6s",
		"When", "Name", "Type", "Time", "TSS", "EF"))
	rows := []string{header}

	for _, a := range m.data.RecentActivities {
		when := a.Date
		if d, err := a.Day(); err == nil {
			when = relativeDay(d, m.data.Date)
		}
		ef := "-"
		if a.EfficiencyFactor != nil {
			ef = formatEF(*a.EfficiencyFactor)
		}
		rows = append(rows, tableRowStyle.Render(fmt.Sprintf("%-14s  %-20s  %-10s  %8s  %5.0f  %6s",
			when,
			truncateName(a.Name, 20),
			truncateName(a.Type, 10),
			formatDuration(a.DurationSeconds),
			a.TSS,
			ef,
		)))
	}

	return cardStyle.Render(lipgloss.JoinVertical(lipgloss.Left, title, lipgloss.JoinVertical(lipgloss.Left, rows...)))
}
