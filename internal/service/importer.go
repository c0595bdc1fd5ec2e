package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/rs/zerolog"

	"training-coach/internal/analysis"
	"training-coach/internal/config"
	"training-coach/internal/fitimport"
	"training-coach/internal/store"
)

// ImportService turns FIT files into stored activities and daily stress
type ImportService struct {
	store   *store.Store
	load    *LoadService
	athlete config.AthleteConfig
	log     zerolog.Logger
	metrics *Metrics
}

// NewImportService creates a new import service
func NewImportService(st *store.Store, load *LoadService, athlete config.AthleteConfig, log zerolog.Logger, metrics *Metrics) *ImportService {
	return &ImportService{
		store:   st,
		load:    load,
		athlete: athlete,
		log:     log.With().Str("service", "import").Logger(),
		metrics: metrics,
	}
}

// thresholds returns the athlete's latest stored estimate, falling back to the
// configured LT1/LT2 and then to an FTP-based estimate
func (s *ImportService) thresholds(ctx context.Context, athleteID string) (analysis.Thresholds, float64, error) {
	est, err := s.store.LatestThresholds(ctx, athleteID)
	if err == nil {
		ftp := s.athlete.FTPWatts
		if ftp <= 0 {
			ftp = est.LT2
		}
		return est.Thresholds, ftp, nil
	}
	if !errors.Is(err, store.ErrThresholdsNotFound) {
		return analysis.Thresholds{}, 0, err
	}

	if t, err := analysis.NewThresholds(s.athlete.LT1Watts, s.athlete.LT2Watts); err == nil {
		ftp := s.athlete.FTPWatts
		if ftp <= 0 {
			ftp = t.LT2
		}
		return t, ftp, nil
	}
	if s.athlete.FTPWatts > 0 {
		e, err := analysis.EstimateFromFTP(s.athlete.FTPWatts, analysis.MethodEstimated)
		if err != nil {
			return analysis.Thresholds{}, 0, err
		}
		return e.Thresholds, s.athlete.FTPWatts, nil
	}
	return analysis.Thresholds{}, 0, nil
}

// ImportFIT decodes a FIT file, stores the activity with its zone minutes and
// TSS, then records the day's summed activity stress
func (s *ImportService) ImportFIT(ctx context.Context, athleteID string, r io.Reader) (*store.Activity, error) {
	act, err := fitimport.Decode(r)
	if err != nil {
		return nil, err
	}

	th, ftp, err := s.thresholds(ctx, athleteID)
	if err != nil {
		return nil, fmt.Errorf("resolving thresholds: %w", err)
	}
	if ftp <= 0 {
		s.log.Warn().Str("athlete", athleteID).Msg("no FTP or thresholds configured, TSS and zones will be zero")
	}

	m := analysis.ComputeActivityMetrics(act.Samples, th, ftp)
	day := analysis.Day(act.Start)

	stored := store.Activity{
		AthleteID:       athleteID,
		ExternalID:      act.ExternalID,
		Date:            day.Format("2006-01-02"),
		Name:            act.Name,
		Type:            string(fitimport.InferWorkoutType(m)),
		DurationSeconds: m.DurationSeconds,
		TSS:             m.TSS,
		Z1Minutes:       m.ZoneMinutes[analysis.Z1],
		Z2Minutes:       m.ZoneMinutes[analysis.Z2],
		Z3Minutes:       m.ZoneMinutes[analysis.Z3],
	}
	stored.AveragePower = positive(m.AveragePower)
	stored.NormalizedPower = positive(m.NormalizedPower)
	stored.AverageHeartrate = positive(m.AverageHeartRate)
	stored.EfficiencyFactor = positive(m.EfficiencyFactor)
	if m.Decoupling != 0 {
		d := m.Decoupling
		stored.Decoupling = &d
	}

	if err := s.store.UpsertActivity(ctx, stored); err != nil {
		return nil, err
	}

	dayActivities, err := s.store.ListActivities(ctx, athleteID, day, day)
	if err != nil {
		return nil, err
	}
	var tss, seconds float64
	for _, a := range dayActivities {
		tss += a.TSS
		seconds += a.DurationSeconds
	}
	if err := s.load.RecordDailyStress(ctx, athleteID, day, tss, int(math.Round(seconds/60))); err != nil {
		return nil, fmt.Errorf("recording daily stress: %w", err)
	}

	if s.metrics != nil {
		s.metrics.CounterActivitiesImported.Inc()
	}
	s.log.Info().
		Str("athlete", athleteID).
		Str("activity", stored.ExternalID).
		Str("type", stored.Type).
		Float64("tss", stored.TSS).
		Float64("day_tss", tss).
		Msg("activity imported")

	return &stored, nil
}

func positive(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}
