// Package fitimport decodes FIT activity files into power and heart-rate samples.
package fitimport

import (
	"errors"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tormoder/fit"

	"training-coach/internal/analysis"
)

// ErrNoRecords is returned when the activity has no timestamped records
var ErrNoRecords = errors.New("activity file has no records")

// Intensity cut-offs used to label an imported ride
const (
	intervalsIF      = 0.95
	intervalsZ3Share = 20.0
	thresholdIF      = 0.85
	recoveryIF       = 0.65
)

// Activity is a decoded FIT activity
type Activity struct {
	ExternalID string
	Name       string
	Start      time.Time
	Samples    []analysis.Sample
}

// Decode reads a FIT activity file
func Decode(r io.Reader) (*Activity, error) {
	decoded, err := fit.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}

	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	records := make([]*fit.RecordMsg, 0, len(activity.Records))
	for _, rec := range activity.Records {
		if rec == nil || !validTime(rec.Timestamp) {
			continue
		}
		records = append(records, rec)
	}
	if len(records) == 0 {
		return nil, ErrNoRecords
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})

	start := records[0].Timestamp.UTC()
	name := "Ride"
	if len(activity.Sessions) > 0 && activity.Sessions[0] != nil {
		session := activity.Sessions[0]
		if validTime(session.StartTime) && session.StartTime.Before(start) {
			start = session.StartTime.UTC()
		}
		if sport := fmt.Sprint(session.Sport); sport != "" && !strings.Contains(strings.ToLower(sport), "invalid") {
			name = sport
		}
	}

	samples := make([]analysis.Sample, 0, len(records))
	for _, rec := range records {
		s := analysis.Sample{Offset: int(rec.Timestamp.Sub(start) / time.Second)}
		if p, ok := extractPower(rec); ok {
			s.Power = &p
		}
		if hr, ok := extractHeartRate(rec); ok {
			s.HeartRate = &hr
		}
		samples = append(samples, s)
	}

	return &Activity{
		ExternalID: "fit-" + start.Format("20060102T150405Z"),
		Name:       name,
		Start:      start,
		Samples:    samples,
	}, nil
}

// InferWorkoutType labels a ride from its intensity factor and zone split.
// Without an intensity factor the ride counts as endurance.
func InferWorkoutType(m analysis.ActivityMetrics) analysis.WorkoutType {
	if m.IntensityFactor <= 0 {
		return analysis.WorkoutEndurance
	}
	d := m.Distribution()
	switch {
	case m.IntensityFactor >= intervalsIF && d.Z3 >= intervalsZ3Share:
		return analysis.WorkoutIntervals
	case m.IntensityFactor >= thresholdIF:
		return analysis.WorkoutThreshold
	case m.IntensityFactor < recoveryIF:
		return analysis.WorkoutRecovery
	default:
		return analysis.WorkoutEndurance
	}
}

func validTime(t time.Time) bool {
	return !t.IsZero() && !fit.IsBaseTime(t)
}

func extractPower(rec *fit.RecordMsg) (float64, bool) {
	if rec.Power == math.MaxUint16 {
		return 0, false
	}
	return float64(rec.Power), true
}

func extractHeartRate(rec *fit.RecordMsg) (float64, bool) {
	if rec.HeartRate == math.MaxUint8 || rec.HeartRate == 0 {
		return 0, false
	}
	return float64(rec.HeartRate), true
}
