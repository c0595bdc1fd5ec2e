package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"training-coach/internal/analysis"
	"training-coach/internal/store"
)

// LoadService keeps stored training load summaries consistent with daily stress
type LoadService struct {
	store   *store.Store
	log     zerolog.Logger
	metrics *Metrics

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewLoadService creates a new load service
func NewLoadService(st *store.Store, log zerolog.Logger, metrics *Metrics) *LoadService {
	return &LoadService{
		store:   st,
		log:     log.With().Str("service", "load").Logger(),
		metrics: metrics,
		locks:   make(map[string]*sync.Mutex),
	}
}

// athleteLock serializes recomputation per athlete
func (s *LoadService) athleteLock(athleteID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[athleteID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[athleteID] = l
	}
	return l
}

// RecordDailyStress stores a day's stress and recomputes every summary it influences:
// from that day through the latest day that has stress, a stored summary or a
// check-in, at most 41 days ahead.
func (s *LoadService) RecordDailyStress(ctx context.Context, athleteID string, date time.Time, tss float64, minutes int) error {
	if tss < 0 || minutes < 0 {
		return fmt.Errorf("daily stress tss=%v minutes=%d: %w", tss, minutes, analysis.ErrNegativeValue)
	}
	day := analysis.Day(date)

	if err := s.store.UpsertDailyStress(ctx, athleteID, analysis.DailyStress{Date: day, TSS: tss, TrainingMinutes: minutes}); err != nil {
		return err
	}

	end, err := s.recomputeEnd(ctx, athleteID, day)
	if err != nil {
		return err
	}

	_, err = s.Recompute(ctx, athleteID, day, end)
	return err
}

// recomputeEnd is the latest day within the load window after day that carries
// stress, a stored summary or a check-in; all of them read CTL/ATL derived from day
func (s *LoadService) recomputeEnd(ctx context.Context, athleteID string, day time.Time) (time.Time, error) {
	horizon := day.AddDate(0, 0, RecomputeMaxAhead)
	end := day
	extend := func(d time.Time) {
		if d.After(end) {
			end = d
		}
	}

	stress, err := s.store.ListDailyStress(ctx, athleteID, day, horizon)
	if err != nil {
		return time.Time{}, err
	}
	for _, d := range stress {
		extend(d.Date)
	}

	loads, err := s.store.ListTrainingLoads(ctx, athleteID, day, horizon)
	if err != nil {
		return time.Time{}, err
	}
	for _, l := range loads {
		extend(l.Date)
	}

	snaps, err := s.store.ListSnapshots(ctx, athleteID, day, horizon)
	if err != nil {
		return time.Time{}, err
	}
	for _, sn := range snaps {
		extend(sn.Date)
	}

	return end, nil
}

// Recompute rebuilds and stores the summary for every day in [start, end]
func (s *LoadService) Recompute(ctx context.Context, athleteID string, start, end time.Time) ([]analysis.TrainingLoadSummary, error) {
	lock := s.athleteLock(athleteID)
	lock.Lock()
	defer lock.Unlock()

	began := time.Now()

	history, err := s.store.ListDailyStress(ctx, athleteID, analysis.HistoryWindowStart(start), end)
	if err != nil {
		return nil, err
	}

	summaries, err := analysis.RecomputeTrainingLoads(athleteID, start, end, history)
	if err != nil {
		return nil, fmt.Errorf("recomputing training loads: %w", err)
	}

	if err := s.store.UpsertTrainingLoads(ctx, summaries); err != nil {
		return nil, err
	}

	elapsed := time.Since(began)
	if s.metrics != nil {
		s.metrics.CounterLoadRecomputations.Inc()
		s.metrics.HistRecomputeDurationSeconds.Observe(elapsed.Seconds())
	}
	s.log.Debug().
		Str("athlete", athleteID).
		Time("start", analysis.Day(start)).
		Time("end", analysis.Day(end)).
		Int("days", len(summaries)).
		Dur("took", elapsed).
		Msg("training loads recomputed")

	return summaries, nil
}

// Current returns the stored summary for date, computing it from history
// (without storing) when none has been stored yet
func (s *LoadService) Current(ctx context.Context, athleteID string, date time.Time) (analysis.TrainingLoadSummary, error) {
	stored, err := s.store.GetTrainingLoad(ctx, athleteID, date)
	if err == nil {
		return *stored, nil
	}
	if !errors.Is(err, store.ErrLoadNotFound) {
		return analysis.TrainingLoadSummary{}, err
	}

	history, err := s.store.ListDailyStress(ctx, athleteID, analysis.HistoryWindowStart(date), date)
	if err != nil {
		return analysis.TrainingLoadSummary{}, err
	}
	return analysis.CalculateTrainingLoad(athleteID, date, history)
}

// WeeklyTSS sums stored daily stress over the seven days ending the day before date
func (s *LoadService) WeeklyTSS(ctx context.Context, athleteID string, date time.Time) (float64, error) {
	end := analysis.Day(date).AddDate(0, 0, -1)
	history, err := s.store.ListDailyStress(ctx, athleteID, end.AddDate(0, 0, -(LoadRampLookback-1)), end)
	if err != nil {
		return 0, err
	}
	var total float64
	for _, d := range history {
		total += d.TSS
	}
	return total, nil
}
