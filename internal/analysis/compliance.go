package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// WorkoutType is the kind of a planned or completed session
type WorkoutType string

const (
	WorkoutEndurance WorkoutType = "ENDURANCE"
	WorkoutThreshold WorkoutType = "THRESHOLD"
	WorkoutIntervals WorkoutType = "INTERVALS"
	WorkoutVO2Max    WorkoutType = "VO2_MAX"
	WorkoutSprint    WorkoutType = "SPRINT"
	WorkoutRecovery  WorkoutType = "RECOVERY"
	WorkoutTest      WorkoutType = "TEST"
)

// IsKeySession reports whether the type counts toward key-session completion
func (w WorkoutType) IsKeySession() bool {
	switch WorkoutType(strings.ToUpper(string(w))) {
	case WorkoutThreshold, WorkoutIntervals:
		return true
	}
	return false
}

// Compliance flags
const (
	FlagZ2Creep          = "Z2_CREEP"
	FlagMissedKeySession = "MISSED_KEY_SESSION"
	FlagUnplannedLoad    = "UNPLANNED_LOAD"
)

// ClassificationAdHoc marks a completed activity as unplanned even on a planned day
const ClassificationAdHoc = "ad_hoc"

// PlannedWorkout is a scheduled session with its intended zone split
type PlannedWorkout struct {
	ID              string
	Date            time.Time
	Type            WorkoutType
	DurationMinutes float64
	Intensity       Distribution
}

// NewPlannedWorkout validates the duration and zone split of a planned session
func NewPlannedWorkout(id string, date time.Time, typ WorkoutType, minutes float64, intensity Distribution) (PlannedWorkout, error) {
	if minutes <= 0 {
		return PlannedWorkout{}, fmt.Errorf("planned duration %v must be positive: %w", minutes, ErrNegativeValue)
	}
	if intensity.Z1 < 0 || intensity.Z2 < 0 || intensity.Z3 < 0 {
		return PlannedWorkout{}, fmt.Errorf("planned zone split %+v: %w", intensity, ErrNegativeValue)
	}
	if intensity.Z1+intensity.Z2+intensity.Z3 > 100+normalizeTolerance {
		return PlannedWorkout{}, fmt.Errorf("planned zone split %+v exceeds 100%%", intensity)
	}
	return PlannedWorkout{ID: id, Date: Day(date), Type: typ, DurationMinutes: minutes, Intensity: intensity}, nil
}

// CompletedActivity is an executed session as recorded by a device or platform
type CompletedActivity struct {
	ExternalID      string
	Date            time.Time
	Type            WorkoutType
	DurationSeconds float64
	TSS             float64
}

// ComplianceSummary compares planned against completed work over a date range
type ComplianceSummary struct {
	CompletionPercent           float64
	KeySessionCompletionPercent float64
	ZoneAdherencePercent        float64
	Flags                       []string
	UnplannedLoadMinutes        float64
}

// HasFlag reports whether the summary carries flag
func (c ComplianceSummary) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

func inRange(d, start, end time.Time) bool {
	d = Day(d)
	return !d.Before(Day(start)) && !d.After(Day(end))
}

// SummarizeCompliance compares planned workouts with completed activities in [start, end].
// zoneMinutes is the actual time-in-zone for the range; classifications maps an
// activity's external id to its tag.
func SummarizeCompliance(
	planned []PlannedWorkout,
	completed []CompletedActivity,
	zoneMinutes map[Zone]float64,
	classifications map[string]string,
	start, end time.Time,
) ComplianceSummary {
	var plannedInRange []PlannedWorkout
	for _, p := range planned {
		if inRange(p.Date, start, end) {
			plannedInRange = append(plannedInRange, p)
		}
	}
	var completedInRange []CompletedActivity
	completedDates := make(map[time.Time]bool)
	for _, c := range completed {
		if inRange(c.Date, start, end) {
			completedInRange = append(completedInRange, c)
			completedDates[Day(c.Date)] = true
		}
	}

	completion := 100.0
	if len(plannedInRange) > 0 {
		completion = min(100, float64(len(completedInRange))/float64(len(plannedInRange))*100)
	}

	var keyPlanned, keyDone int
	for _, p := range plannedInRange {
		if !p.Type.IsKeySession() {
			continue
		}
		keyPlanned++
		if completedDates[Day(p.Date)] {
			keyDone++
		}
	}
	keyCompletion := 100.0
	if keyPlanned > 0 {
		keyCompletion = min(100, float64(keyDone)/float64(keyPlanned)*100)
	}

	totalZone := zoneMinutes[Z1] + zoneMinutes[Z2] + zoneMinutes[Z3]
	adherence := 100.0
	if totalZone > 0 {
		adherence = max(0, 100-zoneDeviation(plannedInRange, zoneMinutes, totalZone))
	}

	unplanned := unplannedMinutes(plannedInRange, completedInRange, classifications)

	var flags []string
	if totalZone > 0 && DistributionFromMinutes(zoneMinutes[Z1], zoneMinutes[Z2], zoneMinutes[Z3]).HasZ2Creep() {
		flags = append(flags, FlagZ2Creep)
	}
	if keyDone < keyPlanned {
		flags = append(flags, FlagMissedKeySession)
	}
	if unplanned > 0 {
		flags = append(flags, FlagUnplannedLoad)
	}
	sort.Strings(flags)

	return ComplianceSummary{
		CompletionPercent:           completion,
		KeySessionCompletionPercent: keyCompletion,
		ZoneAdherencePercent:        adherence,
		Flags:                       flags,
		UnplannedLoadMinutes:        unplanned,
	}
}

// plannedZoneSplit is the duration-weighted zone split across planned workouts
func plannedZoneSplit(planned []PlannedWorkout) Distribution {
	var z1, z2, z3, total float64
	for _, p := range planned {
		z1 += p.Intensity.Z1 * p.DurationMinutes
		z2 += p.Intensity.Z2 * p.DurationMinutes
		z3 += p.Intensity.Z3 * p.DurationMinutes
		total += p.DurationMinutes
	}
	return Distribution{
		Z1: safeDiv(z1, total, 0),
		Z2: safeDiv(z2, total, 0),
		Z3: safeDiv(z3, total, 0),
	}
}

// zoneDeviation sums the absolute percentage-point gaps between planned and actual zone split.
// With nothing planned there is no target to deviate from.
func zoneDeviation(planned []PlannedWorkout, actual map[Zone]float64, totalActual float64) float64 {
	if totalActual == 0 || len(planned) == 0 {
		return 0
	}
	target := plannedZoneSplit(planned)
	a1 := safeDiv(actual[Z1], totalActual, 0) * 100
	a2 := safeDiv(actual[Z2], totalActual, 0) * 100
	a3 := safeDiv(actual[Z3], totalActual, 0) * 100
	return math.Abs(target.Z1-a1) + math.Abs(target.Z2-a2) + math.Abs(target.Z3-a3)
}

// unplannedMinutes counts activity time on days with no plan, plus anything tagged ad_hoc
func unplannedMinutes(planned []PlannedWorkout, completed []CompletedActivity, classifications map[string]string) float64 {
	plannedDates := make(map[time.Time]bool, len(planned))
	for _, p := range planned {
		plannedDates[Day(p.Date)] = true
	}
	var minutes float64
	for _, c := range completed {
		adHoc := strings.EqualFold(classifications[c.ExternalID], ClassificationAdHoc)
		if !plannedDates[Day(c.Date)] || adHoc {
			minutes += c.DurationSeconds / 60
		}
	}
	return minutes
}

// ProgressSummary carries weekly trends and the current completion streak
type ProgressSummary struct {
	WeeklyVolumes    []float64
	TrainingLoads    []float64
	CompletionStreak int
}

// SummarizeProgress counts the trailing run of weeks with positive volume
func SummarizeProgress(weeklyVolumes, trainingLoads []float64) ProgressSummary {
	volumes := append([]float64(nil), weeklyVolumes...)
	loads := append([]float64(nil), trainingLoads...)
	streak := 0
	for i := len(volumes) - 1; i >= 0 && volumes[i] > 0; i-- {
		streak++
	}
	return ProgressSummary{WeeklyVolumes: volumes, TrainingLoads: loads, CompletionStreak: streak}
}
