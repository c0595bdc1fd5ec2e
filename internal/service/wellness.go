package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"training-coach/internal/analysis"
	"training-coach/internal/store"
)

// WellnessService scores and stores daily check-ins
type WellnessService struct {
	store   *store.Store
	log     zerolog.Logger
	metrics *Metrics
}

// NewWellnessService creates a new wellness service
func NewWellnessService(st *store.Store, log zerolog.Logger, metrics *Metrics) *WellnessService {
	return &WellnessService{
		store:   st,
		log:     log.With().Str("service", "wellness").Logger(),
		metrics: metrics,
	}
}

// Submit validates a check-in, scores readiness against the day's load and
// stores it, replacing any earlier check-in for the same day.
// Later reads re-score readiness against whatever load is stored then.
func (s *WellnessService) Submit(ctx context.Context, sig analysis.DailySignal) (*analysis.WellnessSnapshot, error) {
	if err := sig.Validate(); err != nil {
		return nil, fmt.Errorf("invalid check-in: %w", err)
	}
	day := analysis.Day(sig.Date)

	load, err := s.store.GetTrainingLoad(ctx, sig.AthleteID, day)
	if errors.Is(err, store.ErrLoadNotFound) {
		load = nil
	} else if err != nil {
		return nil, err
	}

	snap := analysis.WellnessSnapshot{
		AthleteID:     sig.AthleteID,
		Date:          day,
		Physiological: sig.Physiological,
		Subjective:    sig.Subjective,
		Load:          load,
		Readiness:     analysis.CalculateReadiness(sig.Physiological, sig.Subjective, load),
	}

	if err := s.store.UpsertSnapshot(ctx, snap); err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.CounterReadinessSubmissions.Inc()
	}
	s.log.Info().
		Str("athlete", sig.AthleteID).
		Time("date", day).
		Float64("readiness", snap.Readiness).
		Bool("has_load", load != nil).
		Msg("check-in scored")

	return &snap, nil
}

// Readiness returns the day's readiness with its per-signal breakdown
func (s *WellnessService) Readiness(ctx context.Context, athleteID string, date time.Time) (analysis.ReadinessBreakdown, error) {
	snap, err := s.store.GetSnapshot(ctx, athleteID, date)
	if err != nil {
		return analysis.ReadinessBreakdown{}, err
	}
	return analysis.ReadinessComponents(snap.Physiological, snap.Subjective, snap.Load), nil
}

// Trends returns the snapshots in [start, end] and their trend summary
func (s *WellnessService) Trends(ctx context.Context, athleteID string, start, end time.Time) ([]analysis.WellnessSnapshot, analysis.WellnessTrends, error) {
	snaps, err := s.store.ListSnapshots(ctx, athleteID, start, end)
	if err != nil {
		return nil, analysis.WellnessTrends{}, err
	}
	return snaps, analysis.CalculateWellnessTrends(snaps), nil
}
