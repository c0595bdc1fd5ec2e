package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

func formatDuration(seconds float64) string {
	total := int(seconds + 0.5)
	h := total / 3600
	m := (total % 3600) / 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	return fmt.Sprintf("%dm", m)
}

func formatTSS(tss float64) string {
	return humanize.Comma(int64(tss + 0.5))
}

func formatEF(ef float64) string {
	if ef <= 0 {
		return "-"
	}
	return fmt.Sprintf("%.2f", ef)
}

// relativeDay describes day relative to today at calendar-day granularity
func relativeDay(day, today time.Time) string {
	switch {
	case day.Equal(today):
		return "today"
	case day.Equal(today.AddDate(0, 0, -1)):
		return "yesterday"
	}
	return humanize.RelTime(day, today, "ago", "from now")
}

func joinFlags(flags []string) string {
	return strings.ReplaceAll(strings.Join(flags, ", "), "_", " ")
}

func truncateName(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
