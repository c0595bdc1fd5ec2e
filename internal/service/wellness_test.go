package service

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"training-coach/internal/analysis"
	"training-coach/internal/store"
)

func fptr(v float64) *float64 { return &v }

func signal(athleteID string, dayN int, fatigue int) analysis.DailySignal {
	return analysis.DailySignal{
		AthleteID: athleteID,
		Date:      dayOffset(dayN),
		Physiological: &analysis.Physiological{
			RestingHR: fptr(55),
			HRV:       fptr(60),
			Sleep:     &analysis.SleepMetrics{Hours: 7.5, Quality: 7},
		},
		Subjective: &analysis.SubjectiveWellness{
			Fatigue: fatigue, Stress: 4, SleepQuality: 7, Motivation: 7, Soreness: 3,
		},
	}
}

func TestSubmitWithoutLoad(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, nil)

	sig := signal("a1", 0, 3)
	snap, err := svc.wellness.Submit(ctx, sig)
	require.NoError(t, err)

	assert.Nil(t, snap.Load)
	assert.InDelta(t, analysis.CalculateReadiness(sig.Physiological, sig.Subjective, nil), snap.Readiness, 1e-9)
	assert.Equal(t, float64(1), testutil.ToFloat64(svc.metrics.CounterReadinessSubmissions))

	stored, err := svc.store.GetSnapshot(ctx, "a1", dayOffset(0))
	require.NoError(t, err)
	assert.InDelta(t, snap.Readiness, stored.Readiness, 1e-9)
}

func TestSubmitUsesDayLoad(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, nil)

	require.NoError(t, svc.load.RecordDailyStress(ctx, "a1", dayOffset(0), 90, 100))
	load, err := svc.store.GetTrainingLoad(ctx, "a1", dayOffset(0))
	require.NoError(t, err)

	sig := signal("a1", 0, 3)
	snap, err := svc.wellness.Submit(ctx, sig)
	require.NoError(t, err)
	require.NotNil(t, snap.Load)
	assert.InDelta(t, analysis.CalculateReadiness(sig.Physiological, sig.Subjective, load), snap.Readiness, 1e-9)

	breakdown, err := svc.wellness.Readiness(ctx, "a1", dayOffset(0))
	require.NoError(t, err)
	// Negative TSB scores neutral
	assert.Equal(t, 50.0, breakdown.TSB)
}

func TestSubmitRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, nil)

	_, err := svc.wellness.Submit(ctx, signal("a1", 0, 11))
	require.Error(t, err)

	_, err = svc.wellness.Submit(ctx, signal("", 0, 3))
	require.Error(t, err)

	_, err = svc.store.GetSnapshot(ctx, "a1", dayOffset(0))
	assert.ErrorIs(t, err, store.ErrSnapshotNotFound)
	assert.Equal(t, float64(0), testutil.ToFloat64(svc.metrics.CounterReadinessSubmissions))
}

func TestSubmitLastWriteWins(t *testing.T) {
	ctx := context.Background()
	svc := newServices(t, nil)

	first, err := svc.wellness.Submit(ctx, signal("a1", 0, 2))
	require.NoError(t, err)
	second, err := svc.wellness.Submit(ctx, signal("a1", 0, 9))
	require.NoError(t, err)
	assert.Less(t, second.Readiness, first.Readiness)

	snaps, trends, err := svc.wellness.Trends(ctx, "a1", dayOffset(0), dayOffset(6))
	require.NoError(t, err)
	require.Len(t, snaps, 1)
	assert.Equal(t, 9, snaps[0].Subjective.Fatigue)
	assert.Equal(t, analysis.TrendInsufficientData, trends.Readiness)
}
