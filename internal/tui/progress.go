package tui

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"training-coach/internal/service"
)

// ProgressModel is the weekly progress screen
type ProgressModel struct {
	queries   Queries
	athleteID string
	date      time.Time
	numWeeks  int
	progress  *service.Progress
	cursor    int
	loading   bool
	err       error
}

// NewProgressModel creates a new progress model covering the weeks up to date
func NewProgressModel(q Queries, athleteID string, date time.Time) ProgressModel {
	return ProgressModel{
		queries:   q,
		athleteID: athleteID,
		date:      date,
		numWeeks:  service.ChartWeeks,
		loading:   true,
	}
}

// Init initializes the progress screen
func (m ProgressModel) Init() tea.Cmd {
	return m.loadProgress
}

type progressLoadedMsg struct {
	progress *service.Progress
	err      error
}

func (m ProgressModel) loadProgress() tea.Msg {
	p, err := m.queries.GetProgress(context.Background(), m.athleteID, m.date, m.numWeeks)
	return progressLoadedMsg{progress: p, err: err}
}

// Update handles messages
func (m ProgressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case progressLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.progress = msg.progress
		m.cursor = 0

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			m.loading = true
			return m, m.loadProgress
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.progress != nil && m.cursor < len(m.progress.Weeks)-1 {
				m.cursor++
			}
		}
	}
	return m, nil
}

// View renders the progress screen
func (m ProgressModel) View() string {
	if m.loading {
		return "\n  Loading progress..."
	}
	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}
	if m.progress == nil || len(m.progress.Weeks) == 0 {
		return "\n  No data available. Import some activities first."
	}

	p := m.progress
	var sections []string

	summary := fmt.Sprintf("%d-week streak", p.Summary.CompletionStreak)
	if p.Z2Creep {
		summary += "  " + warningStyle.Render("Z2 creep in at least one week")
	}
	sections = append(sections, cardTitleStyle.Render(fmt.Sprintf("Weekly Progress (%d weeks)", len(p.Weeks))), summary)

	if len(p.Summary.TrainingLoads) > 2 {
		graph := asciigraph.Plot(p.Summary.TrainingLoads,
			asciigraph.Height(6),
			asciigraph.Width(60),
			asciigraph.Precision(0),
			asciigraph.Caption("weekly TSS"),
		)
		sections = append(sections, cardStyle.Render(graph))
	}

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-8s  %8s  %6s  %6s  %14s",
		"Week", "Sessions", "Hours", "TSS", "Z1/Z2/Z3 %"))
	sections = append(sections, header)

	// Most recent first
	for i := len(p.Weeks) - 1; i >= 0; i-- {
		w := p.Weeks[i]
		row := len(p.Weeks) - 1 - i

		cursor := "  "
		if row == m.cursor {
			cursor = "> "
		}

		split := "-"
		if w.Sessions > 0 {
			split = fmt.Sprintf("%.0f/%.0f/%.0f", w.Distribution.Z1, w.Distribution.Z2, w.Distribution.Z3)
		}

		line := fmt.Sprintf("%s%-8s  %8d  %6.1f  %6s  %14s",
			cursor, w.Label, w.Sessions, w.Hours, formatTSS(w.TSS), split)

		style := tableRowStyle
		switch {
		case row == m.cursor:
			style = tableSelectedStyle
		case w.Sessions > 0 && w.Distribution.HasZ2Creep():
			style = tableWarnStyle
		}
		sections = append(sections, style.Render(line))
	}

	sections = append(sections, statusStyle.Render("\n  j/k: navigate  r: refresh"))
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
