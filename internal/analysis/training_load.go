package analysis

import (
	"fmt"
	"math"
	"time"
)

const (
	// CTLDays is the chronic load window ("fitness")
	CTLDays = 42
	// ATLDays is the acute load window ("fatigue")
	ATLDays = 7
)

// DailyStress is one stored day of training stress
type DailyStress struct {
	Date            time.Time
	TSS             float64
	TrainingMinutes int
}

// TrainingLoadSummary holds load metrics for a single day
type TrainingLoadSummary struct {
	AthleteID       string
	Date            time.Time
	TSS             float64
	CTL             float64 // Chronic Training Load (42-day decay) - "Fitness"
	ATL             float64 // Acute Training Load (7-day decay) - "Fatigue"
	TSB             float64 // Training Stress Balance (CTL - ATL) - "Form"
	TrainingMinutes int
}

// HasTrainingData reports whether the day carried any load
func (s TrainingLoadSummary) HasTrainingData() bool {
	return s.TSS > 0 || s.TrainingMinutes > 0
}

// Day truncates t to its calendar date in UTC
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func daysBetween(from, to time.Time) int {
	return int(math.Round(Day(to).Sub(Day(from)).Hours() / 24))
}

// indexHistory keys stress records by day; a later record for the same day replaces an earlier one
func indexHistory(history []DailyStress) (map[time.Time]DailyStress, error) {
	byDay := make(map[time.Time]DailyStress, len(history))
	for _, h := range history {
		if h.TSS < 0 {
			return nil, fmt.Errorf("TSS on %s is %v: %w", h.Date.Format("2006-01-02"), h.TSS, ErrNegativeValue)
		}
		if h.TrainingMinutes < 0 {
			return nil, fmt.Errorf("training minutes on %s is %d: %w", h.Date.Format("2006-01-02"), h.TrainingMinutes, ErrNegativeValue)
		}
		byDay[Day(h.Date)] = h
	}
	return byDay, nil
}

// decayedLoad sums tss x exp(-daysAgo/window) over stored days within the window,
// then divides by the window length rather than the number of days present.
// Short histories therefore under-estimate the load.
func decayedLoad(byDay map[time.Time]DailyStress, target time.Time, window int) float64 {
	var sum float64
	for daysAgo := 0; daysAgo < window; daysAgo++ {
		h, ok := byDay[target.AddDate(0, 0, -daysAgo)]
		if !ok {
			continue
		}
		sum += h.TSS * math.Exp(-float64(daysAgo)/float64(window))
	}
	return sum / float64(window)
}

func summarize(athleteID string, byDay map[time.Time]DailyStress, date time.Time) TrainingLoadSummary {
	target := Day(date)
	ctl := decayedLoad(byDay, target, CTLDays)
	atl := decayedLoad(byDay, target, ATLDays)
	today := byDay[target]
	return TrainingLoadSummary{
		AthleteID:       athleteID,
		Date:            target,
		TSS:             today.TSS,
		CTL:             ctl,
		ATL:             atl,
		TSB:             ctl - atl,
		TrainingMinutes: today.TrainingMinutes,
	}
}

// CalculateTrainingLoad computes CTL/ATL/TSB for date from the supplied stress history.
// Days absent from history are skipped; records after date are ignored.
func CalculateTrainingLoad(athleteID string, date time.Time, history []DailyStress) (TrainingLoadSummary, error) {
	byDay, err := indexHistory(history)
	if err != nil {
		return TrainingLoadSummary{}, err
	}
	return summarize(athleteID, byDay, date), nil
}

// RecomputeTrainingLoads computes a summary for every day in [start, end].
// Each day is computed from scratch against the full history.
func RecomputeTrainingLoads(athleteID string, start, end time.Time, history []DailyStress) ([]TrainingLoadSummary, error) {
	start, end = Day(start), Day(end)
	if end.Before(start) {
		return nil, fmt.Errorf("range end %s before start %s", end.Format("2006-01-02"), start.Format("2006-01-02"))
	}
	byDay, err := indexHistory(history)
	if err != nil {
		return nil, err
	}
	summaries := make([]TrainingLoadSummary, 0, daysBetween(start, end)+1)
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		summaries = append(summaries, summarize(athleteID, byDay, d))
	}
	return summaries, nil
}

// HistoryWindowStart is the first day whose stress can influence the summary for date
func HistoryWindowStart(date time.Time) time.Time {
	return Day(date).AddDate(0, 0, -(CTLDays - 1))
}

// RecoveryStatus buckets TSB into a coarse recovery label
func RecoveryStatus(tsb float64) string {
	switch {
	case tsb > 15:
		return "optimal"
	case tsb > 0:
		return "good"
	case tsb > -15:
		return "moderate"
	default:
		return "high_load"
	}
}

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}
