package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"training-coach/internal/analysis"
	"training-coach/internal/store"
)

// QueryService provides read-only queries for the dashboard
type QueryService struct {
	store *store.Store
	load  *LoadService
}

// NewQueryService creates a new query service
func NewQueryService(st *store.Store, load *LoadService) *QueryService {
	return &QueryService{store: st, load: load}
}

// DashboardData contains all data needed for the dashboard
type DashboardData struct {
	AthleteID string
	Date      time.Time

	// Today
	HasCheckIn     bool
	Readiness      analysis.ReadinessBreakdown
	RecoveryStatus string

	// Load
	Fitness         float64 // CTL
	Fatigue         float64 // ATL
	Form            float64 // TSB
	FormDescription string

	// This week (Monday start)
	WeekSessions     int
	WeekSeconds      float64
	WeekTSS          float64
	WeekDistribution analysis.DistributionAnalysis
	WeekCompliance   analysis.ComplianceSummary

	// Aerobic efficiency
	CurrentEF float64
	EFTrend   string // "↑" or "↓"

	RecentActivities []store.Activity

	// For charts, oldest first
	ReadinessHistory []float64
	FitnessHistory   []float64
}

// GetDashboardData fetches everything the dashboard shows for date
func (q *QueryService) GetDashboardData(ctx context.Context, athleteID string, date time.Time) (*DashboardData, error) {
	day := analysis.Day(date)
	start := day.AddDate(0, 0, -(DashboardDays - 1))
	data := &DashboardData{AthleteID: athleteID, Date: day}

	snap, err := q.store.GetSnapshot(ctx, athleteID, day)
	switch {
	case err == nil:
		data.HasCheckIn = true
		data.Readiness = analysis.ReadinessComponents(snap.Physiological, snap.Subjective, snap.Load)
	case !errors.Is(err, store.ErrSnapshotNotFound):
		return nil, err
	}

	load, err := q.load.Current(ctx, athleteID, day)
	if err != nil {
		return nil, fmt.Errorf("current load: %w", err)
	}
	data.Fitness, data.Fatigue, data.Form = load.CTL, load.ATL, load.TSB
	data.FormDescription = analysis.FormDescription(load.TSB)
	data.RecoveryStatus = analysis.RecoveryStatus(load.TSB)

	activities, err := q.store.ListActivities(ctx, athleteID, start, day)
	if err != nil {
		return nil, err
	}
	// Newest first
	sort.SliceStable(activities, func(i, j int) bool { return activities[i].Date > activities[j].Date })
	data.RecentActivities = activities
	if len(data.RecentActivities) > RecentActivitiesLimit {
		data.RecentActivities = data.RecentActivities[:RecentActivitiesLimit]
	}

	if err := q.calculateWeek(ctx, data, activities); err != nil {
		return nil, err
	}
	data.CurrentEF, data.EFTrend = calculateCurrentEF(activities, day)

	snaps, err := q.store.ListSnapshots(ctx, athleteID, start, day)
	if err != nil {
		return nil, err
	}
	for _, s := range snaps {
		data.ReadinessHistory = append(data.ReadinessHistory, s.Readiness)
	}

	loads, err := q.store.ListTrainingLoads(ctx, athleteID, start, day)
	if err != nil {
		return nil, err
	}
	for _, l := range loads {
		data.FitnessHistory = append(data.FitnessHistory, l.CTL)
	}

	return data, nil
}

// calculateWeek fills the current-week totals, distribution and compliance
func (q *QueryService) calculateWeek(ctx context.Context, data *DashboardData, activities []store.Activity) error {
	weekStart := getMonday(data.Date)
	zoneMinutes := map[analysis.Zone]float64{}
	for _, a := range activities {
		d, err := a.Day()
		if err != nil {
			return err
		}
		if d.Before(weekStart) {
			continue
		}
		data.WeekSessions++
		data.WeekSeconds += a.DurationSeconds
		data.WeekTSS += a.TSS
		for z, m := range a.ZoneMinutes() {
			zoneMinutes[z] += m
		}
	}

	dist, err := analysis.AnalyzeDistribution(zoneMinutes)
	if err != nil {
		return err
	}
	data.WeekDistribution = dist

	planned, err := q.store.ListPlannedWorkouts(ctx, data.AthleteID, weekStart, data.Date)
	if err != nil {
		return err
	}
	var completed []analysis.CompletedActivity
	for _, a := range activities {
		c, err := a.Completed()
		if err != nil {
			return err
		}
		completed = append(completed, c)
	}
	data.WeekCompliance = analysis.SummarizeCompliance(planned, completed, zoneMinutes, nil, weekStart, data.Date)
	return nil
}

// calculateCurrentEF averages EF over the last 7 days and compares it with the 28-day average
func calculateCurrentEF(activities []store.Activity, day time.Time) (currentEF float64, trend string) {
	recentFrom := day.AddDate(0, 0, -(EFCurrentPeriodDays - 1))
	compareFrom := day.AddDate(0, 0, -(EFTrendCompareDays - 1))

	var efSum, ef28Sum float64
	var efCount, ef28Count int
	for _, a := range activities {
		if a.EfficiencyFactor == nil {
			continue
		}
		d, err := a.Day()
		if err != nil {
			continue
		}
		ef := *a.EfficiencyFactor
		if !d.Before(recentFrom) {
			efSum += ef
			efCount++
		}
		if !d.Before(compareFrom) {
			ef28Sum += ef
			ef28Count++
		}
	}

	if efCount > 0 {
		currentEF = efSum / float64(efCount)
	}
	if ef28Count > 0 && currentEF > 0 {
		ef28Avg := ef28Sum / float64(ef28Count)
		switch {
		case currentEF > ef28Avg:
			trend = "↑"
		case currentEF < ef28Avg:
			trend = "↓"
		}
	}
	return currentEF, trend
}

// PeriodStats holds totals for one week
type PeriodStats struct {
	Label        string
	Start        time.Time
	Sessions     int
	Hours        float64
	TSS          float64
	Distribution analysis.Distribution
}

// Progress holds weekly totals with the completion streak and Z2 creep across weeks
type Progress struct {
	Weeks   []PeriodStats
	Summary analysis.ProgressSummary
	Z2Creep bool
}

// GetProgress returns numWeeks Monday-start weeks ending with the week containing date
func (q *QueryService) GetProgress(ctx context.Context, athleteID string, date time.Time, numWeeks int) (*Progress, error) {
	if numWeeks <= 0 {
		numWeeks = ChartWeeks
	}
	currentWeekStart := getMonday(analysis.Day(date))
	firstWeek := currentWeekStart.AddDate(0, 0, -7*(numWeeks-1))

	activities, err := q.store.ListActivities(ctx, athleteID, firstWeek, currentWeekStart.AddDate(0, 0, 6))
	if err != nil {
		return nil, err
	}

	weeks := make([]PeriodStats, numWeeks)
	zones := make([]map[analysis.Zone]float64, numWeeks)
	for i := range weeks {
		weeks[i].Start = firstWeek.AddDate(0, 0, 7*i)
		weeks[i].Label = weeks[i].Start.Format("Jan 02")
		zones[i] = map[analysis.Zone]float64{}
	}

	for _, a := range activities {
		d, err := a.Day()
		if err != nil {
			return nil, err
		}
		idx := findWeekIndex(d, firstWeek, numWeeks)
		if idx < 0 {
			continue
		}
		weeks[idx].Sessions++
		weeks[idx].Hours += a.DurationSeconds / 3600
		weeks[idx].TSS += a.TSS
		for z, m := range a.ZoneMinutes() {
			zones[idx][z] += m
		}
	}

	volumes := make([]float64, numWeeks)
	loads := make([]float64, numWeeks)
	dists := make([]analysis.Distribution, 0, numWeeks)
	for i := range weeks {
		weeks[i].Distribution = analysis.DistributionFromMinutes(zones[i][analysis.Z1], zones[i][analysis.Z2], zones[i][analysis.Z3])
		volumes[i] = weeks[i].Hours
		loads[i] = weeks[i].TSS
		if weeks[i].Sessions > 0 {
			dists = append(dists, weeks[i].Distribution)
		}
	}

	return &Progress{
		Weeks:   weeks,
		Summary: analysis.SummarizeProgress(volumes, loads),
		Z2Creep: analysis.DetectZ2Creep(dists),
	}, nil
}

// findWeekIndex returns the index of the week bucket for the given date
func findWeekIndex(date, firstWeek time.Time, numWeeks int) int {
	if date.Before(firstWeek) {
		return -1
	}
	idx := int(date.Sub(firstWeek).Hours()/24) / 7
	if idx >= numWeeks {
		return -1
	}
	return idx
}

// getMonday returns the Monday of the week containing t
func getMonday(t time.Time) time.Time {
	daysFromMonday := (int(t.Weekday()) + 6) % 7 // Monday = 0
	monday := t.AddDate(0, 0, -daysFromMonday)
	return time.Date(monday.Year(), monday.Month(), monday.Day(), 0, 0, 0, 0, monday.Location())
}
