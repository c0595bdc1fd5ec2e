package analysis

import (
	"sort"
	"time"
)

// TrendDirection classifies the direction of a time series
type TrendDirection string

const (
	TrendInsufficientData  TrendDirection = "insufficient_data"
	TrendStable            TrendDirection = "stable"
	TrendSlightImprovement TrendDirection = "slight_improvement"
	TrendImproving         TrendDirection = "improving"
	TrendSlightDecline     TrendDirection = "slight_decline"
	TrendDeclining         TrendDirection = "declining"
)

const (
	minTrendPoints    = 3
	significantChange = 0.05
)

// IsImproving reports improving or slight_improvement
func (t TrendDirection) IsImproving() bool {
	return t == TrendImproving || t == TrendSlightImprovement
}

// IsDeclining reports declining or slight_decline
func (t TrendDirection) IsDeclining() bool {
	return t == TrendDeclining || t == TrendSlightDecline
}

// CalculateTrend compares the average of the second half of a chronological
// series with the first half. Odd-length series put the extra point in the
// second half. A non-positive first-half average has no meaningful relative
// change and yields TrendInsufficientData.
func CalculateTrend(series []float64) TrendDirection {
	if len(series) < minTrendPoints {
		return TrendInsufficientData
	}
	mid := len(series) / 2
	first := mean(series[:mid])
	second := mean(series[mid:])
	if first <= 0 {
		return TrendInsufficientData
	}
	change := safeDiv(second-first, first, 0)

	switch {
	case change > significantChange:
		return TrendImproving
	case change > 0:
		return TrendSlightImprovement
	case change < -significantChange:
		return TrendDeclining
	case change < 0:
		return TrendSlightDecline
	default:
		return TrendStable
	}
}

// WellnessSnapshot is a stored day of wellness with its computed readiness
type WellnessSnapshot struct {
	AthleteID     string
	Date          time.Time
	Physiological *Physiological
	Subjective    *SubjectiveWellness
	Load          *TrainingLoadSummary
	Readiness     float64
}

// WellnessTrends summarizes a window of snapshots
type WellnessTrends struct {
	RHR               TrendDirection
	HRV               TrendDirection
	BodyWeight        TrendDirection
	SleepHours        TrendDirection
	Readiness         TrendDirection
	TSS               TrendDirection
	AverageReadiness  float64
	ReadinessVariance float64
	AverageHRV        float64
	AverageRHR        float64
	AverageSleepHours float64
}

// EmptyWellnessTrends is the result for too few snapshots
func EmptyWellnessTrends() WellnessTrends {
	return WellnessTrends{
		RHR:        TrendInsufficientData,
		HRV:        TrendInsufficientData,
		BodyWeight: TrendInsufficientData,
		SleepHours: TrendInsufficientData,
		Readiness:  TrendInsufficientData,
		TSS:        TrendInsufficientData,
	}
}

// HasSufficientData reports whether resting HR produced a trend
func (w WellnessTrends) HasSufficientData() bool {
	return w.RHR != TrendInsufficientData
}

// collect extracts the present values of one signal in snapshot order
func collect(snapshots []WellnessSnapshot, value func(WellnessSnapshot) (float64, bool)) []float64 {
	var out []float64
	for _, s := range snapshots {
		if v, ok := value(s); ok {
			out = append(out, v)
		}
	}
	return out
}

func physField(get func(*Physiological) *float64) func(WellnessSnapshot) (float64, bool) {
	return func(s WellnessSnapshot) (float64, bool) {
		if s.Physiological == nil {
			return 0, false
		}
		v := get(s.Physiological)
		if v == nil {
			return 0, false
		}
		return *v, true
	}
}

func sleepHours(s WellnessSnapshot) (float64, bool) {
	if s.Physiological == nil || s.Physiological.Sleep == nil {
		return 0, false
	}
	return s.Physiological.Sleep.Hours, true
}

func readiness(s WellnessSnapshot) (float64, bool) {
	return s.Readiness, true
}

func dailyTSS(s WellnessSnapshot) (float64, bool) {
	if s.Load == nil {
		return 0, false
	}
	return s.Load.TSS, true
}

// CalculateWellnessTrends computes per-signal trends and averages over snapshots.
// Snapshots are sorted by date first; each signal only uses the days it is present.
func CalculateWellnessTrends(snapshots []WellnessSnapshot) WellnessTrends {
	if len(snapshots) < minTrendPoints {
		return EmptyWellnessTrends()
	}
	sorted := make([]WellnessSnapshot, len(snapshots))
	copy(sorted, snapshots)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Date.Before(sorted[j].Date) })

	rhr := collect(sorted, physField(func(p *Physiological) *float64 { return p.RestingHR }))
	hrv := collect(sorted, physField(func(p *Physiological) *float64 { return p.HRV }))
	weight := collect(sorted, physField(func(p *Physiological) *float64 { return p.BodyWeightKg }))
	sleep := collect(sorted, sleepHours)
	scores := collect(sorted, readiness)
	tss := collect(sorted, dailyTSS)

	return WellnessTrends{
		RHR:               CalculateTrend(rhr),
		HRV:               CalculateTrend(hrv),
		BodyWeight:        CalculateTrend(weight),
		SleepHours:        CalculateTrend(sleep),
		Readiness:         CalculateTrend(scores),
		TSS:               CalculateTrend(tss),
		AverageReadiness:  mean(scores),
		ReadinessVariance: variance(scores),
		AverageHRV:        mean(hrv),
		AverageRHR:        mean(rhr),
		AverageSleepHours: mean(sleep),
	}
}
