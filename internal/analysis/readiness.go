package analysis

import (
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Readiness blend weights; they sum to 1.0
const (
	hrvWeight        = 0.25
	rhrWeight        = 0.20
	sleepWeight      = 0.20
	subjectiveWeight = 0.25
	tsbWeight        = 0.10
)

const (
	neutralScore     = 50.0
	typicalHRV       = 50.0
	typicalRHR       = 60.0
	optimalSleepHrs  = 8.0
	tsbFullScoreAt   = 15.0
	minWellnessScore = 1
	maxWellnessScore = 10
)

// SleepMetrics is one night of sleep. Quality is on a 1-10 scale.
type SleepMetrics struct {
	Hours     float64
	Quality   int
	DeepHours *float64
	REMHours  *float64
}

// NewSleepMetrics validates hours >= 0 and quality in 1-10
func NewSleepMetrics(hours float64, quality int) (SleepMetrics, error) {
	var err error
	if hours < 0 {
		err = multierr.Append(err, fmt.Errorf("sleep hours %v: %w", hours, ErrNegativeValue))
	}
	if quality < minWellnessScore || quality > maxWellnessScore {
		err = multierr.Append(err, fmt.Errorf("sleep quality %d: %w", quality, ErrInvalidScore))
	}
	if err != nil {
		return SleepMetrics{}, err
	}
	return SleepMetrics{Hours: hours, Quality: quality}, nil
}

// Physiological holds objective signals for a day; every field is optional
type Physiological struct {
	RestingHR    *float64
	HRV          *float64
	BodyWeightKg *float64
	Sleep        *SleepMetrics
}

// Validate rejects negative physiological readings
func (p Physiological) Validate() error {
	var err error
	check := func(name string, v *float64) {
		if v != nil && *v < 0 {
			err = multierr.Append(err, fmt.Errorf("%s %v: %w", name, *v, ErrNegativeValue))
		}
	}
	check("resting heart rate", p.RestingHR)
	check("HRV", p.HRV)
	check("body weight", p.BodyWeightKg)
	if p.Sleep != nil {
		if _, serr := NewSleepMetrics(p.Sleep.Hours, p.Sleep.Quality); serr != nil {
			err = multierr.Append(err, serr)
		}
	}
	return err
}

// SubjectiveWellness is the athlete's self-reported state, each score 1-10
type SubjectiveWellness struct {
	Fatigue      int
	Stress       int
	SleepQuality int
	Motivation   int
	Soreness     int
	Notes        string
}

// NewSubjectiveWellness validates all five scores, reporting every violation at once
func NewSubjectiveWellness(fatigue, stress, sleepQuality, motivation, soreness int, notes string) (SubjectiveWellness, error) {
	s := SubjectiveWellness{
		Fatigue:      fatigue,
		Stress:       stress,
		SleepQuality: sleepQuality,
		Motivation:   motivation,
		Soreness:     soreness,
		Notes:        notes,
	}
	if err := s.Validate(); err != nil {
		return SubjectiveWellness{}, err
	}
	return s, nil
}

// Validate checks every score is within 1-10
func (s SubjectiveWellness) Validate() error {
	var err error
	for _, f := range []struct {
		name  string
		score int
	}{
		{"fatigue", s.Fatigue},
		{"stress", s.Stress},
		{"sleep quality", s.SleepQuality},
		{"motivation", s.Motivation},
		{"soreness", s.Soreness},
	} {
		if f.score < minWellnessScore || f.score > maxWellnessScore {
			err = multierr.Append(err, fmt.Errorf("%s score %d not in [1,10]: %w", f.name, f.score, ErrInvalidScore))
		}
	}
	return err
}

// DailySignal is one athlete's wellness submission for one day
type DailySignal struct {
	AthleteID     string
	Date          time.Time
	Physiological *Physiological
	Subjective    *SubjectiveWellness
}

// Validate checks the signal's identity and its nested values
func (d DailySignal) Validate() error {
	var err error
	if d.AthleteID == "" {
		err = multierr.Append(err, fmt.Errorf("athlete id is required"))
	}
	if d.Date.IsZero() {
		err = multierr.Append(err, fmt.Errorf("date is required"))
	}
	if d.Physiological != nil {
		err = multierr.Append(err, d.Physiological.Validate())
	}
	if d.Subjective != nil {
		err = multierr.Append(err, d.Subjective.Validate())
	}
	return err
}

// ReadinessBreakdown exposes every weighted sub-score alongside the blend
type ReadinessBreakdown struct {
	HRV        float64
	RHR        float64
	Sleep      float64
	Subjective float64
	TSB        float64
	Score      float64
}

func hrvScore(p *Physiological) float64 {
	if p == nil || p.HRV == nil || *p.HRV <= 0 {
		return neutralScore
	}
	return clamp(*p.HRV/typicalHRV*75, 0, 100)
}

// rhrScore is inverted: a lower resting HR scores higher
func rhrScore(p *Physiological) float64 {
	if p == nil || p.RestingHR == nil || *p.RestingHR <= 0 {
		return neutralScore
	}
	return clamp(typicalRHR / *p.RestingHR * 75, 0, 100)
}

// sleepScore sums the hours and quality terms without a final clamp
func sleepScore(p *Physiological) float64 {
	if p == nil || p.Sleep == nil {
		return neutralScore
	}
	hours := min(100, p.Sleep.Hours/optimalSleepHrs*80)
	quality := float64(p.Sleep.Quality-1) / 9 * 20
	return hours + quality
}

func subjectiveScore(s *SubjectiveWellness) float64 {
	if s == nil {
		return neutralScore
	}
	fatigue := float64(11-s.Fatigue) / 10 * 30
	stress := float64(11-s.Stress) / 10 * 25
	motivation := float64(s.Motivation-1) / 9 * 25
	soreness := float64(10-s.Soreness) / 10 * 20
	return clamp(fatigue+stress+motivation+soreness, 0, 100)
}

// tsbScore is neutral for a non-positive balance and saturates at TSB 15
func tsbScore(load *TrainingLoadSummary) float64 {
	if load == nil || load.TSB <= 0 {
		return neutralScore
	}
	return clamp(min(100, load.TSB/tsbFullScoreAt*100), 0, 100)
}

// ReadinessComponents computes every sub-score and the blended readiness.
// Any nil input contributes the neutral score of 50 for its terms.
func ReadinessComponents(p *Physiological, s *SubjectiveWellness, load *TrainingLoadSummary) ReadinessBreakdown {
	b := ReadinessBreakdown{
		HRV:        hrvScore(p),
		RHR:        rhrScore(p),
		Sleep:      sleepScore(p),
		Subjective: subjectiveScore(s),
		TSB:        tsbScore(load),
	}
	blend := b.HRV*hrvWeight +
		b.RHR*rhrWeight +
		b.Sleep*sleepWeight +
		b.Subjective*subjectiveWeight +
		b.TSB*tsbWeight
	b.Score = clamp(blend, 0, 100)
	return b
}

// CalculateReadiness returns the 0-100 readiness score for one day
func CalculateReadiness(p *Physiological, s *SubjectiveWellness, load *TrainingLoadSummary) float64 {
	return ReadinessComponents(p, s, load).Score
}
