package store

import (
	"time"

	"training-coach/internal/analysis"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	return analysis.Day(t).Format(dateLayout)
}

func parseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// snapshotRow is a wellness_snapshots row joined with its training load
type snapshotRow struct {
	AthleteID       string   `db:"athlete_id"`
	Date            string   `db:"date"`
	RestingHR       *float64 `db:"resting_hr"`
	HRV             *float64 `db:"hrv"`
	BodyWeightKg    *float64 `db:"body_weight_kg"`
	SleepHours      *float64 `db:"sleep_hours"`
	SleepQuality    *int     `db:"sleep_quality"`
	Fatigue         *int     `db:"fatigue"`
	Stress          *int     `db:"stress"`
	SubjectiveSleep *int     `db:"subjective_sleep"`
	Motivation      *int     `db:"motivation"`
	Soreness        *int     `db:"soreness"`
	Notes           *string  `db:"notes"`
	LoadTSS         *float64 `db:"load_tss"`
	LoadCTL         *float64 `db:"load_ctl"`
	LoadATL         *float64 `db:"load_atl"`
	LoadTSB         *float64 `db:"load_tsb"`
	LoadMinutes     *int     `db:"load_minutes"`
}

func newSnapshotRow(s analysis.WellnessSnapshot) snapshotRow {
	row := snapshotRow{
		AthleteID: s.AthleteID,
		Date:      formatDate(s.Date),
	}
	if p := s.Physiological; p != nil {
		row.RestingHR = p.RestingHR
		row.HRV = p.HRV
		row.BodyWeightKg = p.BodyWeightKg
		if p.Sleep != nil {
			hours, quality := p.Sleep.Hours, p.Sleep.Quality
			row.SleepHours = &hours
			row.SleepQuality = &quality
		}
	}
	if w := s.Subjective; w != nil {
		fatigue, stress, sleep, motivation, soreness := w.Fatigue, w.Stress, w.SleepQuality, w.Motivation, w.Soreness
		row.Fatigue = &fatigue
		row.Stress = &stress
		row.SubjectiveSleep = &sleep
		row.Motivation = &motivation
		row.Soreness = &soreness
		if w.Notes != "" {
			notes := w.Notes
			row.Notes = &notes
		}
	}
	return row
}

func (r snapshotRow) toSnapshot() (analysis.WellnessSnapshot, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return analysis.WellnessSnapshot{}, err
	}
	s := analysis.WellnessSnapshot{
		AthleteID: r.AthleteID,
		Date:      date,
	}

	if r.RestingHR != nil || r.HRV != nil || r.BodyWeightKg != nil || r.SleepHours != nil {
		p := &analysis.Physiological{
			RestingHR:    r.RestingHR,
			HRV:          r.HRV,
			BodyWeightKg: r.BodyWeightKg,
		}
		if r.SleepHours != nil {
			sleep := &analysis.SleepMetrics{Hours: *r.SleepHours}
			if r.SleepQuality != nil {
				sleep.Quality = *r.SleepQuality
			}
			p.Sleep = sleep
		}
		s.Physiological = p
	}

	if r.Fatigue != nil {
		w := &analysis.SubjectiveWellness{Fatigue: *r.Fatigue}
		if r.Stress != nil {
			w.Stress = *r.Stress
		}
		if r.SubjectiveSleep != nil {
			w.SleepQuality = *r.SubjectiveSleep
		}
		if r.Motivation != nil {
			w.Motivation = *r.Motivation
		}
		if r.Soreness != nil {
			w.Soreness = *r.Soreness
		}
		if r.Notes != nil {
			w.Notes = *r.Notes
		}
		s.Subjective = w
	}

	if r.LoadTSS != nil && r.LoadCTL != nil && r.LoadATL != nil && r.LoadTSB != nil {
		load := &analysis.TrainingLoadSummary{
			AthleteID: r.AthleteID,
			Date:      date,
			TSS:       *r.LoadTSS,
			CTL:       *r.LoadCTL,
			ATL:       *r.LoadATL,
			TSB:       *r.LoadTSB,
		}
		if r.LoadMinutes != nil {
			load.TrainingMinutes = *r.LoadMinutes
		}
		s.Load = load
	}

	s.Readiness = analysis.CalculateReadiness(s.Physiological, s.Subjective, s.Load)
	return s, nil
}

type stressRow struct {
	AthleteID       string  `db:"athlete_id"`
	Date            string  `db:"date"`
	TSS             float64 `db:"tss"`
	TrainingMinutes int     `db:"training_minutes"`
}

type loadRow struct {
	AthleteID       string  `db:"athlete_id"`
	Date            string  `db:"date"`
	TSS             float64 `db:"tss"`
	CTL             float64 `db:"ctl"`
	ATL             float64 `db:"atl"`
	TSB             float64 `db:"tsb"`
	TrainingMinutes int     `db:"training_minutes"`
}

func newLoadRow(l analysis.TrainingLoadSummary) loadRow {
	return loadRow{
		AthleteID:       l.AthleteID,
		Date:            formatDate(l.Date),
		TSS:             l.TSS,
		CTL:             l.CTL,
		ATL:             l.ATL,
		TSB:             l.TSB,
		TrainingMinutes: l.TrainingMinutes,
	}
}

func (r loadRow) toSummary() (analysis.TrainingLoadSummary, error) {
	date, err := parseDate(r.Date)
	if err != nil {
		return analysis.TrainingLoadSummary{}, err
	}
	return analysis.TrainingLoadSummary{
		AthleteID:       r.AthleteID,
		Date:            date,
		TSS:             r.TSS,
		CTL:             r.CTL,
		ATL:             r.ATL,
		TSB:             r.TSB,
		TrainingMinutes: r.TrainingMinutes,
	}, nil
}

type plannedRow struct {
	ID              string  `db:"id"`
	AthleteID       string  `db:"athlete_id"`
	Date            string  `db:"date"`
	Type            string  `db:"type"`
	DurationMinutes float64 `db:"duration_minutes"`
	Z1Pct           float64 `db:"z1_pct"`
	Z2Pct           float64 `db:"z2_pct"`
	Z3Pct           float64 `db:"z3_pct"`
}

// Activity is a completed session with its time-in-zone breakdown
type Activity struct {
	AthleteID        string   `db:"athlete_id"`
	ExternalID       string   `db:"external_id"`
	Date             string   `db:"date"` // YYYY-MM-DD
	Name             string   `db:"name"`
	Type             string   `db:"type"`
	DurationSeconds  float64  `db:"duration_seconds"`
	TSS              float64  `db:"tss"`
	Z1Minutes        float64  `db:"z1_minutes"`
	Z2Minutes        float64  `db:"z2_minutes"`
	Z3Minutes        float64  `db:"z3_minutes"`
	Classification   string   `db:"classification"`
	AveragePower     *float64 `db:"average_power"`     // nullable
	NormalizedPower  *float64 `db:"normalized_power"`  // nullable
	AverageHeartrate *float64 `db:"average_heartrate"` // nullable
	EfficiencyFactor *float64 `db:"efficiency_factor"` // nullable
	Decoupling       *float64 `db:"decoupling"`        // nullable, percent
}

// Day returns the activity date as a UTC midnight time
func (a Activity) Day() (time.Time, error) {
	return parseDate(a.Date)
}

// Completed converts the stored activity into the compliance model
func (a Activity) Completed() (analysis.CompletedActivity, error) {
	d, err := a.Day()
	if err != nil {
		return analysis.CompletedActivity{}, err
	}
	return analysis.CompletedActivity{
		ExternalID:      a.ExternalID,
		Date:            d,
		Type:            analysis.WorkoutType(a.Type),
		DurationSeconds: a.DurationSeconds,
		TSS:             a.TSS,
	}, nil
}

// ZoneMinutes returns the activity's time-in-zone as a map
func (a Activity) ZoneMinutes() map[analysis.Zone]float64 {
	return map[analysis.Zone]float64{
		analysis.Z1: a.Z1Minutes,
		analysis.Z2: a.Z2Minutes,
		analysis.Z3: a.Z3Minutes,
	}
}

type thresholdRow struct {
	AthleteID  string  `db:"athlete_id"`
	Date       string  `db:"date"`
	LT1        float64 `db:"lt1"`
	LT2        float64 `db:"lt2"`
	Method     string  `db:"method"`
	Confidence float64 `db:"confidence"`
}

// AuditEntry records a guardrail decision or override
type AuditEntry struct {
	ID            string    `db:"id"`
	AthleteID     string    `db:"athlete_id"`
	RuleID        string    `db:"rule_id"`
	Decision      string    `db:"decision"`
	Reason        string    `db:"reason"`
	PerformedBy   string    `db:"performed_by"`
	Justification string    `db:"justification"`
	CreatedAt     time.Time `db:"-"`
}

// Audit decisions
const (
	DecisionApproved   = "APPROVED"
	DecisionBlocked    = "BLOCKED"
	DecisionOverridden = "OVERRIDDEN"
)
